package model

// ExportPayload POST /export 的返回；Data 原样保留
type ExportPayload struct {
	Status string         `json:"status"`
	Format string         `json:"format"`
	Data   map[string]any `json:"data"`
}

// SystemStatus GET /system/status
type SystemStatus struct {
	Status        string        `json:"status"`
	Uptime        string        `json:"uptime"`
	CPUUsage      string        `json:"cpu_usage"`
	MemoryUsage   string        `json:"memory_usage"`
	ActiveTasks   int           `json:"active_tasks"`
	TotalLogs     int           `json:"total_logs"`
	LastExecution *HistoryEntry `json:"last_execution"`
}

// Health GET /health
type Health struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// DataRecord /data 下的数据记录
type DataRecord struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Size      any    `json:"size"`
	CreatedAt string `json:"created_at"`
}

type DataRecordList struct {
	Total int          `json:"total"`
	Data  []DataRecord `json:"data"`
}
