package service

import (
	"math"
	"sort"

	"decision-console/internal/model"
)

const statusCompleted = "completed"

// StrategySummary 单个策略在一页历史里的表现
type StrategySummary struct {
	Strategy     string  `json:"strategy"`
	N            int     `json:"n"`
	Completed    int     `json:"completed"`
	SuccessRate  float64 `json:"success_rate"`
	CI95Low      float64 `json:"ci95_low"`
	CI95High     float64 `json:"ci95_high"`
	MeanAccuracy float64 `json:"mean_accuracy"`
	// 按时间顺序的累计平均准确率，只统计 completed 的记录
	CumulativeAccuracy []float64 `json:"cumulative_accuracy"`
}

type HistorySummary struct {
	Total      int               `json:"total"`
	Strategies []StrategySummary `json:"strategies"`
}

// SummarizeHistory 按策略汇总历史记录；entries 按接口返回的新到旧顺序传入
func SummarizeHistory(entries []model.HistoryEntry) HistorySummary {
	byStrategy := map[string][]model.HistoryEntry{}
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		byStrategy[e.Strategy] = append(byStrategy[e.Strategy], e)
	}

	out := HistorySummary{Total: len(entries), Strategies: make([]StrategySummary, 0, len(byStrategy))}
	for name, list := range byStrategy {
		out.Strategies = append(out.Strategies, summarizeStrategy(name, list))
	}
	sort.Slice(out.Strategies, func(i, j int) bool {
		return out.Strategies[i].Strategy < out.Strategies[j].Strategy
	})
	return out
}

func summarizeStrategy(name string, chronological []model.HistoryEntry) StrategySummary {
	s := StrategySummary{Strategy: name, N: len(chronological)}
	accuracies := make([]float64, 0, len(chronological))
	for _, e := range chronological {
		if e.Status != statusCompleted {
			continue
		}
		s.Completed++
		accuracies = append(accuracies, e.Accuracy)
	}

	if s.N > 0 {
		s.SuccessRate = float64(s.Completed) / float64(s.N)
		s.CI95Low, s.CI95High = wilsonCI(s.Completed, s.N, 1.96)
	}
	s.CumulativeAccuracy = cumulativeMean(accuracies)
	if n := len(s.CumulativeAccuracy); n > 0 {
		s.MeanAccuracy = s.CumulativeAccuracy[n-1]
	}
	return s
}

func cumulativeMean(values []float64) []float64 {
	out := make([]float64, len(values))
	sum := 0.0
	for i, v := range values {
		sum += v
		out[i] = sum / float64(i+1)
	}
	return out
}

// Wilson score interval for proportion
func wilsonCI(k int, n int, z float64) (float64, float64) {
	if n == 0 {
		return 0, 0
	}
	p := float64(k) / float64(n)
	zz := z * z
	den := 1 + zz/float64(n)
	center := (p + zz/(2*float64(n))) / den
	half := (z / den) * math.Sqrt((p*(1-p)+zz/(4*float64(n)))/float64(n))
	return math.Max(0, center-half), math.Min(1, center+half)
}
