package cli

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type remoteState struct {
	currentTask atomic.Value
	runFails    atomic.Bool
	deleted     atomic.Int64
}

func fakeRemote(t *testing.T) *remoteState {
	t.Helper()
	gin.SetMode(gin.TestMode)
	state := &remoteState{}
	state.currentTask.Store("prediction")

	r := gin.New()
	api := r.Group("/api")
	api.GET("/config", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"current_task": state.currentTask.Load(), "current_strategy": "baseline"})
	})
	api.POST("/config/task", func(c *gin.Context) {
		var req struct {
			Task string `json:"task"`
		}
		_ = c.ShouldBindJSON(&req)
		state.currentTask.Store(req.Task)
		c.JSON(http.StatusOK, gin.H{"status": "success", "task": req.Task})
	})
	api.GET("/tasks", func(c *gin.Context) {
		c.JSON(http.StatusOK, []gin.H{
			{"id": "prediction", "name": "预测分析"},
			{"id": "classification", "name": "智能分类"},
		})
	})
	api.GET("/strategies", func(c *gin.Context) {
		c.JSON(http.StatusOK, []gin.H{
			{"id": "baseline", "name": "基准模型", "accuracy": 0.85},
			{"id": "ensemble", "name": "集成学习", "accuracy": 0.92},
		})
	})
	api.POST("/run", func(c *gin.Context) {
		if state.runFails.Load() {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "model crashed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":       "success",
			"execution_id": 12,
			"progress":     []gin.H{{"step": "数据加载", "status": "completed"}},
			"result":       gin.H{"type": "prediction", "metrics": gin.H{"accuracy": 0.91}},
		})
	})
	api.GET("/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"total_tasks": 4, "completed_tasks": 3, "total_executions": 3, "strategies": 4, "avg_accuracy": 0.9})
	})
	api.GET("/history", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"total": 12, "page": 1, "page_size": 10, "data": []gin.H{
			{"id": 2, "task": "prediction", "strategy": "ensemble", "accuracy": 0.92, "status": "completed"},
			{"id": 1, "task": "prediction", "strategy": "baseline", "accuracy": 0.85, "status": "completed"},
		}})
	})
	api.DELETE("/history/:id", func(c *gin.Context) {
		state.deleted.Add(1)
		c.JSON(http.StatusOK, gin.H{"status": "success"})
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	t.Setenv("DASHBOARD_API_BASE_URL", srv.URL+"/api")
	t.Setenv("DASHBOARD_DB_HOST", "")
	t.Setenv("DASHBOARD_S3_BUCKET", "")
	return state
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd(&out)
	cmd.SetErr(&out)
	cfgPath := filepath.Join(t.TempDir(), "missing.yaml")
	cmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestSetTask_SuggestsClosestID(t *testing.T) {
	fakeRemote(t)

	_, err := runCLI(t, "set-task", "clasification")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"classification"`)
}

func TestSetTask_Success(t *testing.T) {
	state := fakeRemote(t)

	out, err := runCLI(t, "set-task", "classification")
	require.NoError(t, err)
	assert.Contains(t, out, "classification")
	assert.Equal(t, "classification", state.currentTask.Load())
}

func TestRun(t *testing.T) {
	state := fakeRemote(t)

	out, err := runCLI(t, "run", "--strategy", "ensemble")
	require.NoError(t, err)
	assert.Contains(t, out, "执行 #12")
	assert.Contains(t, out, "0.9100")

	state.runFails.Store(true)
	_, err = runCLI(t, "run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "运行失败")
}

func TestRun_UnknownStrategy(t *testing.T) {
	fakeRemote(t)

	_, err := runCLI(t, "run", "--strategy", "ensembel")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"ensemble"`)
}

func TestHistoryWithSummary(t *testing.T) {
	fakeRemote(t)

	out, err := runCLI(t, "history", "--summary")
	require.NoError(t, err)
	assert.Contains(t, out, "共 12 条")
	assert.Contains(t, out, "平均准确率")
	assert.Contains(t, out, "ensemble")
}

func TestDeleteHistory(t *testing.T) {
	state := fakeRemote(t)

	out, err := runCLI(t, "delete-history", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "已删除 #2")
	// 显示服务端总数而不是本页行数
	assert.Contains(t, out, "共 12 条")
	assert.EqualValues(t, 1, state.deleted.Load())

	_, err = runCLI(t, "delete-history", "abc")
	assert.Error(t, err)
}

func TestStats_FallsBackToDefaults(t *testing.T) {
	t.Setenv("DASHBOARD_API_BASE_URL", "http://127.0.0.1:1/api")

	out, err := runCLI(t, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "87.50")
}

func TestExport_RemoteFailure(t *testing.T) {
	fakeRemote(t)

	// 远端没有 /export
	_, err := runCLI(t, "export")
	assert.ErrorContains(t, err, "导出失败")
}

func TestHistoryMarkdown(t *testing.T) {
	fakeRemote(t)

	out, err := runCLI(t, "history", "--markdown")
	require.NoError(t, err)
	assert.Contains(t, out, "# 执行历史报告")
	assert.Contains(t, out, "| ensemble | 1 | 1 |")
}
