package model

// HistoryEntry 一次历史执行记录
type HistoryEntry struct {
	ID        int64   `json:"id"`
	Task      string  `json:"task"`
	Strategy  string  `json:"strategy"`
	Timestamp string  `json:"timestamp"`
	Accuracy  float64 `json:"accuracy"`
	Status    string  `json:"status"`
}

// HistoryPage GET /history 的分页信封
type HistoryPage struct {
	Total    int            `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
	Data     []HistoryEntry `json:"data"`
}

type LogEntry struct {
	ID        int64  `json:"id"`
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Message   string `json:"message"`
}

// LogPage GET /logs 的返回
type LogPage struct {
	Total int        `json:"total"`
	Data  []LogEntry `json:"data"`
}

// Stats 仪表盘聚合指标
type Stats struct {
	TotalTasks       int            `json:"total_tasks"`
	CompletedTasks   int            `json:"completed_tasks"`
	TotalExecutions  int            `json:"total_executions"`
	Strategies       int            `json:"strategies"`
	AvgAccuracy      float64        `json:"avg_accuracy"`
	TaskDistribution map[string]int `json:"task_distribution,omitempty"`
	SystemUptime     string         `json:"system_uptime,omitempty"`
	MemoryUsage      string         `json:"memory_usage,omitempty"`
}

// DefaultStats 会话初始化时的静态默认值（不发请求）
func DefaultStats() Stats {
	return Stats{
		TotalTasks:     4,
		CompletedTasks: 0,
		Strategies:     4,
		AvgAccuracy:    87.5,
	}
}

func (s Stats) Clone() Stats {
	if s.TaskDistribution != nil {
		dist := make(map[string]int, len(s.TaskDistribution))
		for k, v := range s.TaskDistribution {
			dist[k] = v
		}
		s.TaskDistribution = dist
	}
	return s
}
