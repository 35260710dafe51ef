package router

import "decision-console/internal/model"

// Views 仪表盘路由表：无参数、无守卫、无嵌套
var Views = []model.View{
	{Path: "/", Name: model.ViewDashboard},
	{Path: "/tasks", Name: model.ViewTaskCenter},
	{Path: "/strategy", Name: model.ViewStrategyLab},
	{Path: "/runtime", Name: model.ViewAIRuntime},
	{Path: "/results", Name: model.ViewResultAnalysis},
	{Path: "/design", Name: model.ViewSystemDesign},
}
