package model

// Task 可执行的任务类型
type Task struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Icon        string `json:"icon,omitempty"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	Difficulty  string `json:"difficulty,omitempty"`
}

// Strategy 可选的模型策略
type Strategy struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Accuracy    float64 `json:"accuracy"`
	Speed       string  `json:"speed,omitempty"`
	Memory      string  `json:"memory,omitempty"`
	Complexity  string  `json:"complexity,omitempty"`
}

// ConfigState GET /config 的返回；未选择时服务端给 null
type ConfigState struct {
	CurrentTask     *string `json:"current_task"`
	CurrentStrategy *string `json:"current_strategy"`
	SystemName      string  `json:"system_name,omitempty"`
	Version         string  `json:"version,omitempty"`
}

func TaskIDs(tasks []Task) []string {
	ids := make([]string, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
	}
	return ids
}

func StrategyIDs(strategies []Strategy) []string {
	ids := make([]string, 0, len(strategies))
	for _, s := range strategies {
		ids = append(ids, s.ID)
	}
	return ids
}
