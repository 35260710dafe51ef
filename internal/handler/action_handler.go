package handler

import (
	"net/http"
	"strconv"

	"decision-console/internal/archive"
	"decision-console/internal/logger"

	"github.com/gin-gonic/gin"
)

// ActionHandler 把仪表盘操作映射到会话 store。
// 对调用方可见的失败统一返回 502，静默类操作总是 200 并带回相应快照字段。
type ActionHandler struct {
	archiver *archive.S3Archiver
}

func NewActionHandler(archiver *archive.S3Archiver) *ActionHandler {
	return &ActionHandler{archiver: archiver}
}

func badGateway(c *gin.Context, err error) {
	c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
}

func (h *ActionHandler) RefreshConfig(c *gin.Context) {
	st := storeFrom(c)
	st.FetchConfig(c.Request.Context())
	snap := st.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"current_task":     snap.CurrentTask,
		"current_strategy": snap.CurrentStrategy,
	})
}

func (h *ActionHandler) RefreshTasks(c *gin.Context) {
	st := storeFrom(c)
	st.FetchTasks(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"tasks": st.Snapshot().Tasks})
}

func (h *ActionHandler) RefreshStrategies(c *gin.Context) {
	st := storeFrom(c)
	st.FetchStrategies(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"strategies": st.Snapshot().Strategies})
}

func (h *ActionHandler) RefreshResults(c *gin.Context) {
	st := storeFrom(c)
	st.FetchResults(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"latest_result": st.Snapshot().LatestResult})
}

// RefreshStats 失败时返回当前（未变化的）统计
func (h *ActionHandler) RefreshStats(c *gin.Context) {
	st := storeFrom(c)
	st.FetchStats(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"stats": st.Snapshot().Stats})
}

// SetTask 选择任务
func (h *ActionHandler) SetTask(c *gin.Context) {
	var req struct {
		Task string `json:"task" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	st := storeFrom(c)
	st.SetTask(c.Request.Context(), req.Task)
	c.JSON(http.StatusOK, gin.H{"current_task": st.Snapshot().CurrentTask})
}

// SetStrategy 选择策略
func (h *ActionHandler) SetStrategy(c *gin.Context) {
	var req struct {
		Strategy string `json:"strategy" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	st := storeFrom(c)
	st.SetStrategy(c.Request.Context(), req.Strategy)
	c.JSON(http.StatusOK, gin.H{"current_strategy": st.Snapshot().CurrentStrategy})
}

// Run 执行一次模型运行
func (h *ActionHandler) Run(c *gin.Context) {
	var req struct {
		Task     string `json:"task"`
		Strategy string `json:"strategy"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	resp, err := storeFrom(c).RunModel(c.Request.Context(), req.Task, req.Strategy)
	if err != nil {
		badGateway(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ActionHandler) Compare(c *gin.Context) {
	var req struct {
		Strategies []string `json:"strategies"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Strategies == nil {
		req.Strategies = []string{}
	}
	out, err := storeFrom(c).CompareResults(c.Request.Context(), req.Strategies)
	if err != nil {
		badGateway(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// History 分页拉取历史，page/page_size 缺省时为 1/10
func (h *ActionHandler) History(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	pageSize, _ := strconv.Atoi(c.Query("page_size"))
	out, err := storeFrom(c).FetchHistory(c.Request.Context(), page, pageSize)
	if err != nil {
		badGateway(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *ActionHandler) DeleteHistory(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id 不合法"})
		return
	}
	page, err := storeFrom(c).DeleteHistory(c.Request.Context(), id)
	if err != nil {
		badGateway(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": page.Data, "total": page.Total})
}

// Logs level 为空不过滤，limit 缺省 50
func (h *ActionHandler) Logs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	out, err := storeFrom(c).FetchLogs(c.Request.Context(), c.Query("level"), limit)
	if err != nil {
		badGateway(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// Export 导出数据；upload=true 且配置了 S3 时同时归档
func (h *ActionHandler) Export(c *gin.Context) {
	var req struct {
		Type   string `json:"type"`
		Upload bool   `json:"upload"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	e := entryFrom(c)
	out, err := e.Store.ExportData(c.Request.Context(), req.Type)
	if err != nil {
		badGateway(c, err)
		return
	}
	if !req.Upload {
		c.JSON(http.StatusOK, out)
		return
	}
	if h.archiver == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "未配置导出归档"})
		return
	}

	location, err := h.archiver.Put(c.Request.Context(), h.archiver.Key(e.ID, out.Format), out)
	if err != nil {
		log := logger.Component("export")
		log.Error().Err(err).Str("session_id", e.ID).Msg("归档导出数据失败")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   out.Status,
		"format":   out.Format,
		"data":     out.Data,
		"location": location,
	})
}

func (h *ActionHandler) SystemStatus(c *gin.Context) {
	out, err := storeFrom(c).FetchSystemStatus(c.Request.Context())
	if err != nil {
		badGateway(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *ActionHandler) Health(c *gin.Context) {
	out, err := storeFrom(c).Health(c.Request.Context())
	if err != nil {
		badGateway(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *ActionHandler) ListData(c *gin.Context) {
	out, err := storeFrom(c).FetchDataRecords(c.Request.Context())
	if err != nil {
		badGateway(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *ActionHandler) CreateData(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
		Type string `json:"type"`
		Size any    `json:"size"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	out, err := storeFrom(c).CreateDataRecord(c.Request.Context(), req.Name, req.Type, req.Size)
	if err != nil {
		badGateway(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": out})
}

func (h *ActionHandler) DeleteData(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id 不合法"})
		return
	}
	if err := storeFrom(c).DeleteDataRecord(c.Request.Context(), id); err != nil {
		badGateway(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}
