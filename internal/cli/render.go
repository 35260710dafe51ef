package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"decision-console/internal/model"
	"decision-console/internal/service"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	colorBorder = lipgloss.Color("#3F4451")
	colorTitle  = lipgloss.Color("#C678DD")
	colorKey    = lipgloss.Color("#61AFEF")
	colorGreen  = lipgloss.Color("#98C379")
	colorYellow = lipgloss.Color("#E5C07B")
	colorRed    = lipgloss.Color("#E06C75")

	titleStyle = lipgloss.NewStyle().Foreground(colorTitle).Bold(true)
	keyStyle   = lipgloss.NewStyle().Foreground(colorKey)
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorTitle).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	successStyle = lipgloss.NewStyle().Foreground(colorGreen)
	warnStyle    = lipgloss.NewStyle().Foreground(colorYellow)
	errorStyle   = lipgloss.NewStyle().Foreground(colorRed)
)

type kv struct {
	key   string
	value string
}

func renderKV(w io.Writer, title string, pairs []kv) {
	width := 0
	for _, p := range pairs {
		width = max(width, lipgloss.Width(p.key))
	}
	lines := make([]string, 0, len(pairs)+1)
	lines = append(lines, titleStyle.Render(title))
	for _, p := range pairs {
		key := keyStyle.Width(width).Render(p.key)
		lines = append(lines, key+"  "+p.value)
	}
	fmt.Fprintln(w, boxStyle.Render(strings.Join(lines, "\n")))
}

func renderTable(w io.Writer, headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorBorder)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	fmt.Fprintln(w, t.Render())
}

func successf(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, successStyle.Render("✓ "+fmt.Sprintf(format, args...)))
}

func warnf(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, warnStyle.Render("⚠ "+fmt.Sprintf(format, args...)))
}

func errorf(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, errorStyle.Render("✗ "+fmt.Sprintf(format, args...)))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func pct(v float64) string {
	return strconv.FormatFloat(v*100, 'f', 1, 64) + "%"
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func renderTasks(w io.Writer, tasks []model.Task, current string) {
	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		mark := ""
		if t.ID == current {
			mark = "●"
		}
		rows = append(rows, []string{mark, t.ID, t.Name, orDash(t.Category), orDash(t.Difficulty)})
	}
	renderTable(w, []string{"", "ID", "名称", "类别", "难度"}, rows)
}

func renderStrategies(w io.Writer, strategies []model.Strategy, current string) {
	rows := make([][]string, 0, len(strategies))
	for _, s := range strategies {
		mark := ""
		if s.ID == current {
			mark = "●"
		}
		rows = append(rows, []string{mark, s.ID, s.Name, pct(s.Accuracy), orDash(s.Speed), orDash(s.Memory)})
	}
	renderTable(w, []string{"", "ID", "名称", "准确率", "速度", "内存"}, rows)
}

func renderResult(w io.Writer, title string, r *model.Result) {
	if r == nil {
		warnf(w, "暂无结果")
		return
	}
	pairs := []kv{
		{"类型", orDash(r.Type)},
		{"模型", orDash(r.Predictions.Model)},
		{"置信度", num(r.Predictions.Confidence)},
		{"accuracy", num(r.Metrics.Accuracy)},
		{"precision", num(r.Metrics.Precision)},
		{"recall", num(r.Metrics.Recall)},
		{"f1_score", num(r.Metrics.F1Score)},
		{"training_time", num(r.Metrics.TrainingTime)},
	}
	switch {
	case len(r.Classes) > 0:
		pairs = append(pairs, kv{"classes", strings.Join(r.Classes, ", ")})
	case len(r.RecommendedItems) > 0:
		pairs = append(pairs, kv{"recommended", strings.Join(r.RecommendedItems, ", ")})
	case len(r.AnomalyScores) > 0:
		pairs = append(pairs, kv{"anomalies", strconv.Itoa(r.AnomalyCount)})
	}
	renderKV(w, title, pairs)
}

func renderComparison(w io.Writer, items []model.Comparison) {
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		if it.Result == nil {
			rows = append(rows, []string{it.Strategy, "-", "-", "-", "-"})
			continue
		}
		m := it.Result.Metrics
		rows = append(rows, []string{it.Strategy, num(m.Accuracy), num(m.Precision), num(m.Recall), num(m.F1Score)})
	}
	renderTable(w, []string{"策略", "accuracy", "precision", "recall", "f1"}, rows)
}

func renderHistory(w io.Writer, page *model.HistoryPage) {
	rows := make([][]string, 0, len(page.Data))
	for _, h := range page.Data {
		rows = append(rows, []string{
			strconv.FormatInt(h.ID, 10), h.Task, h.Strategy, orDash(h.Timestamp), num(h.Accuracy), h.Status,
		})
	}
	renderTable(w, []string{"ID", "任务", "策略", "时间", "准确率", "状态"}, rows)
	fmt.Fprintf(w, "第 %d 页，每页 %d 条，共 %d 条\n", page.Page, page.PageSize, page.Total)
}

func renderSummary(w io.Writer, sum service.HistorySummary) {
	if len(sum.Strategies) == 0 {
		return
	}
	rows := make([][]string, 0, len(sum.Strategies))
	for _, s := range sum.Strategies {
		rows = append(rows, []string{
			s.Strategy,
			strconv.Itoa(s.N),
			fmt.Sprintf("%s [%s, %s]", pct(s.SuccessRate), pct(s.CI95Low), pct(s.CI95High)),
			num(s.MeanAccuracy),
		})
	}
	renderTable(w, []string{"策略", "次数", "完成率 (95% CI)", "平均准确率"}, rows)
}

func renderLogs(w io.Writer, page *model.LogPage) {
	rows := make([][]string, 0, len(page.Data))
	for _, l := range page.Data {
		rows = append(rows, []string{orDash(l.Timestamp), l.Level, l.Message})
	}
	renderTable(w, []string{"时间", "级别", "内容"}, rows)
}

func renderStats(w io.Writer, s model.Stats) {
	pairs := []kv{
		{"任务总数", strconv.Itoa(s.TotalTasks)},
		{"已完成", strconv.Itoa(s.CompletedTasks)},
		{"执行次数", strconv.Itoa(s.TotalExecutions)},
		{"策略数", strconv.Itoa(s.Strategies)},
		{"平均准确率", strconv.FormatFloat(s.AvgAccuracy, 'f', 2, 64)},
	}
	if s.SystemUptime != "" {
		pairs = append(pairs, kv{"运行时长", s.SystemUptime})
	}
	if s.MemoryUsage != "" {
		pairs = append(pairs, kv{"内存", s.MemoryUsage})
	}
	renderKV(w, "统计", pairs)
}
