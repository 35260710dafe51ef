package model

// Metrics 策略的性能指标
type Metrics struct {
	Accuracy     float64 `json:"accuracy"`
	Precision    float64 `json:"precision"`
	Recall       float64 `json:"recall"`
	F1Score      float64 `json:"f1_score"`
	TrainingTime float64 `json:"training_time"`
}

type Prediction struct {
	Values           []float64 `json:"predictions"`
	Confidence       float64   `json:"confidence"`
	Model            string    `json:"model"`
	EnsembleWeights  []float64 `json:"ensemble_weights,omitempty"`
	AttentionWeights []float64 `json:"attention_weights,omitempty"`
}

type ChartData struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// Result 一次运行/查询的结果；不同任务类型只填各自的字段
type Result struct {
	Type        string     `json:"type"`
	Predictions Prediction `json:"predictions"`
	Metrics     Metrics    `json:"metrics"`
	ChartData   *ChartData `json:"chart_data,omitempty"`

	// prediction
	DataShape []int `json:"data_shape,omitempty"`
	// classification
	Classes            []string  `json:"classes,omitempty"`
	ClassProbabilities []float64 `json:"class_probabilities,omitempty"`
	// recommendation
	RecommendedItems []string  `json:"recommended_items,omitempty"`
	Scores           []float64 `json:"scores,omitempty"`
	// anomaly_detection
	AnomalyScores []float64 `json:"anomaly_scores,omitempty"`
	Timestamps    []string  `json:"timestamps,omitempty"`
	AnomalyCount  int       `json:"anomaly_count,omitempty"`
}

// Clone 深拷贝，快照对外只暴露副本
func (r *Result) Clone() *Result {
	if r == nil {
		return nil
	}
	out := *r
	out.Predictions.Values = cloneFloats(r.Predictions.Values)
	out.Predictions.EnsembleWeights = cloneFloats(r.Predictions.EnsembleWeights)
	out.Predictions.AttentionWeights = cloneFloats(r.Predictions.AttentionWeights)
	if r.ChartData != nil {
		cd := ChartData{
			Labels: cloneStrings(r.ChartData.Labels),
			Values: cloneFloats(r.ChartData.Values),
		}
		out.ChartData = &cd
	}
	if r.DataShape != nil {
		out.DataShape = append([]int(nil), r.DataShape...)
	}
	out.Classes = cloneStrings(r.Classes)
	out.ClassProbabilities = cloneFloats(r.ClassProbabilities)
	out.RecommendedItems = cloneStrings(r.RecommendedItems)
	out.Scores = cloneFloats(r.Scores)
	out.AnomalyScores = cloneFloats(r.AnomalyScores)
	out.Timestamps = cloneStrings(r.Timestamps)
	return &out
}

type ProgressStep struct {
	Step   string `json:"step"`
	Status string `json:"status"`
}

// RunResponse POST /run 的完整返回
type RunResponse struct {
	Status      string         `json:"status"`
	Progress    []ProgressStep `json:"progress"`
	Result      *Result        `json:"result"`
	ExecutionID int64          `json:"execution_id"`
}

// Comparison POST /results/compare 中的一项
type Comparison struct {
	Strategy string  `json:"strategy"`
	Result   *Result `json:"result"`
}

func cloneFloats(in []float64) []float64 {
	if in == nil {
		return nil
	}
	return append([]float64(nil), in...)
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}
