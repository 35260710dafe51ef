package service

import (
	"fmt"
	"strings"
	"time"
)

// 少于这个次数的策略在报告里标注样本不足
const minReportSamples = 10

// RenderHistoryMarkdown 把历史汇总渲染成 markdown 报告
func RenderHistoryMarkdown(sum HistorySummary, generatedAt time.Time) string {
	var b strings.Builder
	b.WriteString("# 执行历史报告\n\n")
	b.WriteString(fmt.Sprintf("- generated_at: %s\n", generatedAt.Format(time.RFC3339)))
	b.WriteString(fmt.Sprintf("- records: %d\n\n", sum.Total))

	if len(sum.Strategies) == 0 {
		b.WriteString("暂无历史记录。\n")
		return b.String()
	}

	b.WriteString("## 按策略统计\n\n")
	b.WriteString("| 策略 | N | Completed | SuccessRate | CI95 | MeanAccuracy |\n")
	b.WriteString("| --- | ---: | ---: | ---: | --- | ---: |\n")
	for _, s := range sum.Strategies {
		b.WriteString(fmt.Sprintf("| %s | %d | %d | %.3f | [%.3f, %.3f] | %.4f |\n",
			s.Strategy, s.N, s.Completed, s.SuccessRate, s.CI95Low, s.CI95High, s.MeanAccuracy))
	}

	var caveats []string
	for _, s := range sum.Strategies {
		if s.N < minReportSamples {
			caveats = append(caveats, fmt.Sprintf("%s 只有 %d 条记录，置信区间较宽。", s.Strategy, s.N))
		}
	}
	if len(caveats) > 0 {
		b.WriteString("\n### 注意事项\n\n")
		for _, c := range caveats {
			b.WriteString(fmt.Sprintf("- %s\n", c))
		}
	}
	return b.String()
}
