package service

import (
	"testing"
	"time"

	"decision-console/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeHistory(t *testing.T) {
	// 新到旧
	entries := []model.HistoryEntry{
		{ID: 4, Strategy: "baseline", Accuracy: 0.8, Status: "completed"},
		{ID: 3, Strategy: "ensemble", Accuracy: 0.9, Status: "completed"},
		{ID: 2, Strategy: "baseline", Accuracy: 0, Status: "failed"},
		{ID: 1, Strategy: "baseline", Accuracy: 0.6, Status: "completed"},
	}

	sum := SummarizeHistory(entries)
	assert.Equal(t, 4, sum.Total)
	require.Len(t, sum.Strategies, 2)

	base := sum.Strategies[0]
	assert.Equal(t, "baseline", base.Strategy)
	assert.Equal(t, 3, base.N)
	assert.Equal(t, 2, base.Completed)
	assert.InDelta(t, 2.0/3.0, base.SuccessRate, 1e-9)
	assert.InDeltaSlice(t, []float64{0.6, 0.7}, base.CumulativeAccuracy, 1e-9)
	assert.InDelta(t, 0.7, base.MeanAccuracy, 1e-9)
	assert.Less(t, base.CI95Low, base.SuccessRate)
	assert.Greater(t, base.CI95High, base.SuccessRate)

	ens := sum.Strategies[1]
	assert.Equal(t, "ensemble", ens.Strategy)
	assert.Equal(t, 1, ens.Completed)
	assert.InDelta(t, 0.9, ens.MeanAccuracy, 1e-9)
}

func TestSummarizeHistory_Empty(t *testing.T) {
	sum := SummarizeHistory(nil)
	assert.Equal(t, 0, sum.Total)
	assert.Empty(t, sum.Strategies)
}

func TestWilsonCI(t *testing.T) {
	low, high := wilsonCI(0, 0, 1.96)
	assert.Zero(t, low)
	assert.Zero(t, high)

	low, high = wilsonCI(10, 10, 1.96)
	assert.InDelta(t, 1.0, high, 1e-9)
	assert.InDelta(t, 0.722, low, 1e-3)
}

func TestRenderHistoryMarkdown(t *testing.T) {
	sum := SummarizeHistory([]model.HistoryEntry{
		{ID: 1, Strategy: "baseline", Accuracy: 0.8, Status: "completed"},
	})
	md := RenderHistoryMarkdown(sum, time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC))

	assert.Contains(t, md, "- generated_at: 2026-10-17T00:00:00Z")
	assert.Contains(t, md, "| baseline | 1 | 1 | 1.000 |")
	assert.Contains(t, md, "baseline 只有 1 条记录")

	empty := RenderHistoryMarkdown(SummarizeHistory(nil), time.Now())
	assert.Contains(t, empty, "暂无历史记录")
}
