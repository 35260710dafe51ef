package model

// 仪表盘视图
const (
	ViewDashboard      = "Dashboard"
	ViewTaskCenter     = "TaskCenter"
	ViewStrategyLab    = "StrategyLab"
	ViewAIRuntime      = "AIRuntime"
	ViewResultAnalysis = "ResultAnalysis"
	ViewSystemDesign   = "SystemDesign"
)

// View 路由表中的一项：路径到视图的映射
type View struct {
	Path string `json:"path"`
	Name string `json:"name"`
}
