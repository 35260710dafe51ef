package handler

import (
	"context"
	"net/http"

	"decision-console/internal/model"
	"decision-console/internal/service"
	"decision-console/internal/store"

	"github.com/gin-gonic/gin"
)

type ViewHandler struct {
	views []model.View
	byKey map[string]model.View
}

func NewViewHandler(views []model.View) *ViewHandler {
	byKey := make(map[string]model.View, len(views))
	for _, v := range views {
		byKey[v.Path] = v
	}
	return &ViewHandler{views: views, byKey: byKey}
}

// Routes 路由表
func (h *ViewHandler) Routes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"routes": h.views})
}

// Show 返回路径对应视图读取的那部分快照；refresh=true 时先拉取该视图依赖的数据
func (h *ViewHandler) Show(c *gin.Context) {
	path := c.Param("path")
	if path == "" {
		path = "/"
	}
	view, ok := h.byKey[path]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "页面不存在"})
		return
	}

	st := storeFrom(c)
	if c.Query("refresh") == "true" {
		if err := h.refresh(c.Request.Context(), st, view.Name); err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"view": view.Name,
		"path": view.Path,
		"data": h.render(view.Name, st.Snapshot()),
	})
}

func (h *ViewHandler) refresh(ctx context.Context, st *store.Store, name string) error {
	switch name {
	case model.ViewDashboard:
		st.FetchConfig(ctx)
		st.FetchStats(ctx)
		st.FetchResults(ctx)
	case model.ViewTaskCenter:
		st.FetchConfig(ctx)
		st.FetchTasks(ctx)
	case model.ViewStrategyLab:
		st.FetchConfig(ctx)
		st.FetchStrategies(ctx)
	case model.ViewAIRuntime:
		st.FetchResults(ctx)
		if _, err := st.FetchLogs(ctx, "", store.DefaultLogLimit); err != nil {
			return err
		}
	case model.ViewResultAnalysis:
		st.FetchResults(ctx)
		if _, err := st.FetchHistory(ctx, store.DefaultPage, store.DefaultPageSize); err != nil {
			return err
		}
	}
	return nil
}

func (h *ViewHandler) render(name string, snap store.Snapshot) gin.H {
	switch name {
	case model.ViewDashboard:
		return gin.H{
			"stats":            snap.Stats,
			"latest_result":    snap.LatestResult,
			"current_task":     snap.CurrentTask,
			"current_strategy": snap.CurrentStrategy,
		}
	case model.ViewTaskCenter:
		return gin.H{"tasks": snap.Tasks, "current_task": snap.CurrentTask}
	case model.ViewStrategyLab:
		return gin.H{"strategies": snap.Strategies, "current_strategy": snap.CurrentStrategy}
	case model.ViewAIRuntime:
		return gin.H{
			"is_loading":    snap.IsLoading,
			"latest_result": snap.LatestResult,
			"logs":          snap.Logs,
		}
	case model.ViewResultAnalysis:
		return gin.H{
			"latest_result": snap.LatestResult,
			"history":       snap.History,
			"summary":       service.SummarizeHistory(snap.History),
		}
	case model.ViewSystemDesign:
		return gin.H{"routes": h.views}
	}
	return gin.H{}
}
