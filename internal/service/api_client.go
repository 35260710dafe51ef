package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"decision-console/internal/model"

	"github.com/bytedance/sonic"
)

// APIError 远端返回非 2xx
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) HTTPStatus() int {
	return e.StatusCode
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API返回错误: %s %s http=%d body=%s", e.Method, e.Path, e.StatusCode, e.Body)
}

// APIClient 模型/策略执行服务的 HTTP 客户端，一个方法对应一个端点
type APIClient struct {
	baseURL string
	http    *http.Client
}

func NewAPIClient(baseURL string, timeout time.Duration) *APIClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &APIClient{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *APIClient) BaseURL() string {
	return c.baseURL
}

func (c *APIClient) GetConfig(ctx context.Context) (*model.ConfigState, error) {
	var out model.ConfigState
	if err := c.do(ctx, http.MethodGet, "/config", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *APIClient) SetTask(ctx context.Context, task string) error {
	return c.do(ctx, http.MethodPost, "/config/task", nil, map[string]any{"task": task}, nil)
}

func (c *APIClient) SetStrategy(ctx context.Context, strategy string) error {
	return c.do(ctx, http.MethodPost, "/config/strategy", nil, map[string]any{"strategy": strategy}, nil)
}

func (c *APIClient) ListTasks(ctx context.Context) ([]model.Task, error) {
	var out []model.Task
	if err := c.do(ctx, http.MethodGet, "/tasks", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *APIClient) ListStrategies(ctx context.Context) ([]model.Strategy, error) {
	var out []model.Strategy
	if err := c.do(ctx, http.MethodGet, "/strategies", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *APIClient) Run(ctx context.Context, task, strategy string) (*model.RunResponse, error) {
	var out model.RunResponse
	body := map[string]any{"task": task, "strategy": strategy}
	if err := c.do(ctx, http.MethodPost, "/run", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetResults 服务端还没有结果时返回 null，此时 result 为 nil
func (c *APIClient) GetResults(ctx context.Context) (*model.Result, error) {
	var out *model.Result
	if err := c.do(ctx, http.MethodGet, "/results", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *APIClient) CompareResults(ctx context.Context, strategies []string) ([]model.Comparison, error) {
	if strategies == nil {
		strategies = []string{}
	}
	var out []model.Comparison
	if err := c.do(ctx, http.MethodPost, "/results/compare", nil, map[string]any{"strategies": strategies}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *APIClient) GetHistory(ctx context.Context, page, pageSize int) (*model.HistoryPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("page_size", strconv.Itoa(pageSize))
	var out model.HistoryPage
	if err := c.do(ctx, http.MethodGet, "/history", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *APIClient) DeleteHistory(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/history/"+strconv.FormatInt(id, 10), nil, nil, nil)
}

// GetLogs level 为空时不带过滤参数
func (c *APIClient) GetLogs(ctx context.Context, level string, limit int) (*model.LogPage, error) {
	q := url.Values{}
	if level != "" {
		q.Set("level", level)
	}
	q.Set("limit", strconv.Itoa(limit))
	var out model.LogPage
	if err := c.do(ctx, http.MethodGet, "/logs", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *APIClient) GetStats(ctx context.Context) (*model.Stats, error) {
	var out model.Stats
	if err := c.do(ctx, http.MethodGet, "/stats", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *APIClient) Export(ctx context.Context, exportType string) (*model.ExportPayload, error) {
	var out model.ExportPayload
	if err := c.do(ctx, http.MethodPost, "/export", nil, map[string]any{"type": exportType}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *APIClient) SystemStatus(ctx context.Context) (*model.SystemStatus, error) {
	var out model.SystemStatus
	if err := c.do(ctx, http.MethodGet, "/system/status", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *APIClient) Health(ctx context.Context) (*model.Health, error) {
	var out model.Health
	if err := c.do(ctx, http.MethodGet, "/health", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *APIClient) ListData(ctx context.Context) (*model.DataRecordList, error) {
	var out model.DataRecordList
	if err := c.do(ctx, http.MethodGet, "/data", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *APIClient) CreateData(ctx context.Context, name, dataType string, size any) (*model.DataRecord, error) {
	var out struct {
		Status string           `json:"status"`
		Data   model.DataRecord `json:"data"`
	}
	body := map[string]any{"name": name, "type": dataType, "size": size}
	if err := c.do(ctx, http.MethodPost, "/data", nil, body, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *APIClient) DeleteData(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/data/"+strconv.FormatInt(id, 10), nil, nil, nil)
}

// do 发一次请求；out 为 nil 时忽略响应体
func (c *APIClient) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := sonic.Marshal(body)
		if err != nil {
			return fmt.Errorf("序列化请求失败: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("请求失败 %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("读取响应失败 %s %s: %w", method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       truncate(string(raw), 500),
		}
	}

	if out == nil {
		return nil
	}
	if err := sonic.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("解析响应失败 %s %s: %w", method, path, err)
	}
	return nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
