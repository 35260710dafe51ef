package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"decision-console/internal/config"
	"decision-console/internal/store"
	"decision-console/internal/svc"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRemote 模拟远端执行服务
func fakeRemote(t *testing.T, runFails *atomic.Bool) string {
	t.Helper()
	r := gin.New()
	api := r.Group("/api")
	api.GET("/config", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"current_task": "prediction", "current_strategy": nil})
	})
	api.POST("/config/task", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "success"})
	})
	api.GET("/tasks", func(c *gin.Context) {
		c.JSON(http.StatusOK, []gin.H{{"id": "prediction", "name": "预测"}, {"id": "classification", "name": "分类"}})
	})
	api.POST("/run", func(c *gin.Context) {
		if runFails.Load() {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "boom"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":       "success",
			"execution_id": 7,
			"result":       gin.H{"type": "prediction", "metrics": gin.H{"accuracy": 0.9}},
		})
	})
	api.GET("/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"total_tasks": 4, "completed_tasks": 1, "total_executions": 1, "strategies": 4, "avg_accuracy": 0.9})
	})
	api.GET("/history", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"total": 1, "page": 1, "page_size": 10, "data": []gin.H{
			{"id": 1, "task": "prediction", "strategy": "baseline", "accuracy": 0.9, "status": "completed"},
		}})
	})
	api.DELETE("/history/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "success"})
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv.URL + "/api"
}

func setup(t *testing.T) (*httptest.Server, *svc.ServiceContext, *atomic.Bool) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	runFails := &atomic.Bool{}

	cfg := config.Default()
	cfg.API.BaseURL = fakeRemote(t, runFails)
	cfg.API.TimeoutSeconds = 2
	svcCtx := svc.NewServiceContext(cfg)
	t.Cleanup(svcCtx.Sessions.CloseAll)

	srv := httptest.NewServer(SetupRouter(svcCtx))
	t.Cleanup(srv.Close)
	return srv, svcCtx, runFails
}

type client struct {
	t      *testing.T
	base   string
	cookie *http.Cookie
}

func (c *client) do(method, path string, body any) (int, map[string]any) {
	c.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, c.base+path, reader)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	for _, ck := range resp.Cookies() {
		if ck.Name == "dashboard_session" {
			c.cookie = ck
		}
	}
	out := map[string]any{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func TestRoutes(t *testing.T) {
	srv, _, _ := setup(t)
	c := &client{t: t, base: srv.URL}

	code, body := c.do(http.MethodGet, "/routes", nil)
	require.Equal(t, http.StatusOK, code)
	routes := body["routes"].([]any)
	require.Len(t, routes, 6)
	assert.Equal(t, map[string]any{"path": "/", "name": "Dashboard"}, routes[0])
	assert.Equal(t, map[string]any{"path": "/design", "name": "SystemDesign"}, routes[5])
}

func TestViews_SessionAndRefresh(t *testing.T) {
	srv, svcCtx, _ := setup(t)
	c := &client{t: t, base: srv.URL}

	code, body := c.do(http.MethodGet, "/views/tasks", nil)
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, c.cookie)
	assert.Equal(t, "TaskCenter", body["view"])
	data := body["data"].(map[string]any)
	assert.Empty(t, data["tasks"])
	assert.Equal(t, "", data["current_task"])

	code, body = c.do(http.MethodGet, "/views/tasks?refresh=true", nil)
	require.Equal(t, http.StatusOK, code)
	data = body["data"].(map[string]any)
	assert.Len(t, data["tasks"], 2)
	assert.Equal(t, "prediction", data["current_task"])
	assert.Equal(t, 1, svcCtx.Sessions.Len())

	code, _ = c.do(http.MethodGet, "/views/nope", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestViews_SessionsAreIsolated(t *testing.T) {
	srv, svcCtx, _ := setup(t)
	a := &client{t: t, base: srv.URL}
	b := &client{t: t, base: srv.URL}

	code, _ := a.do(http.MethodPost, "/actions/task", map[string]any{"task": "classification"})
	require.Equal(t, http.StatusOK, code)

	_, body := b.do(http.MethodGet, "/views/tasks", nil)
	assert.Equal(t, "", body["data"].(map[string]any)["current_task"])

	_, body = a.do(http.MethodGet, "/views/tasks", nil)
	assert.Equal(t, "classification", body["data"].(map[string]any)["current_task"])
	assert.Equal(t, 2, svcCtx.Sessions.Len())
}

func TestActions_RunFailureIs502(t *testing.T) {
	srv, _, runFails := setup(t)
	c := &client{t: t, base: srv.URL}

	code, body := c.do(http.MethodPost, "/actions/run", map[string]any{"task": "prediction", "strategy": "baseline"})
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 7, body["execution_id"])

	_, body = c.do(http.MethodGet, "/views/", nil)
	data := body["data"].(map[string]any)
	assert.NotNil(t, data["latest_result"])
	assert.EqualValues(t, 1, data["stats"].(map[string]any)["completed_tasks"])

	runFails.Store(true)
	code, body = c.do(http.MethodPost, "/actions/run", map[string]any{"task": "prediction", "strategy": "baseline"})
	assert.Equal(t, http.StatusBadGateway, code)
	assert.Contains(t, body["error"], "500")

	_, body = c.do(http.MethodGet, "/views/runtime", nil)
	assert.Equal(t, false, body["data"].(map[string]any)["is_loading"])
}

func TestActions_DeleteHistoryRefetches(t *testing.T) {
	srv, _, _ := setup(t)
	c := &client{t: t, base: srv.URL}

	code, body := c.do(http.MethodDelete, "/actions/history/3", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["history"], 1)
	assert.EqualValues(t, 1, body["total"])

	code, _ = c.do(http.MethodDelete, "/actions/history/abc", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	_, body = c.do(http.MethodGet, "/views/results", nil)
	summary := body["data"].(map[string]any)["summary"].(map[string]any)
	assert.EqualValues(t, 1, summary["total"])
}

func TestActions_ExportFailureIs502(t *testing.T) {
	srv, _, _ := setup(t)
	c := &client{t: t, base: srv.URL}

	// 远端没有 /export 路由，直接 404 -> 502
	code, _ := c.do(http.MethodPost, "/actions/export", map[string]any{"type": "json"})
	assert.Equal(t, http.StatusBadGateway, code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _, _ := setup(t)
	c := &client{t: t, base: srv.URL}
	c.do(http.MethodGet, "/views/tasks?refresh=true", nil)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(resp.Body)
	assert.Contains(t, buf.String(), "dashboard_store_operations_total")
	assert.Contains(t, buf.String(), "dashboard_session_active 1")
}

func TestEndSession(t *testing.T) {
	srv, svcCtx, _ := setup(t)
	c := &client{t: t, base: srv.URL}

	c.do(http.MethodGet, "/session", nil)
	require.Equal(t, 1, svcCtx.Sessions.Len())

	code, _ := c.do(http.MethodDelete, "/session", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 0, svcCtx.Sessions.Len())
}

func TestStream_PushesSnapshotOnChange(t *testing.T) {
	srv, _, _ := setup(t)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	var cookie *http.Cookie
	for _, ck := range resp.Cookies() {
		if ck.Name == "dashboard_session" {
			cookie = ck
		}
	}
	require.NotNil(t, cookie)

	var snap store.Snapshot
	require.NoError(t, conn.ReadJSON(&snap))
	assert.Equal(t, "", snap.CurrentTask)

	c := &client{t: t, base: srv.URL, cookie: cookie}
	code, _ := c.do(http.MethodPost, "/actions/task", map[string]any{"task": "classification"})
	require.Equal(t, http.StatusOK, code)

	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for snap.CurrentTask != "classification" {
		require.NoError(t, conn.ReadJSON(&snap))
	}
}
