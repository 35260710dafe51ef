package cli

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
)

// closest 返回编辑距离最小的候选；距离超过 max(2, len/3) 视为没有相近项
func closest(target string, candidates []string) (string, bool) {
	best, bestDist := "", -1
	t := strings.ToLower(target)
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(t, strings.ToLower(c))
		if bestDist < 0 || d < bestDist {
			best, bestDist = c, d
		}
	}
	if bestDist < 0 {
		return "", false
	}
	limit := max(2, len(target)/3)
	return best, bestDist <= limit
}

// checkID 目录已知且 id 不在其中时报错并给出最接近的建议；目录为空时不校验
func checkID(kind, id string, known []string) error {
	if len(known) == 0 {
		return nil
	}
	for _, k := range known {
		if k == id {
			return nil
		}
	}
	if s, ok := closest(id, known); ok {
		return fmt.Errorf("未知%s %q，是否想用 %q？", kind, id, s)
	}
	return fmt.Errorf("未知%s %q，可选：%s", kind, id, strings.Join(known, ", "))
}
