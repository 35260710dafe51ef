package handler

import (
	"net/http"
	"strconv"

	"decision-console/internal/db"

	"github.com/gin-gonic/gin"
)

type DiagnosticHandler struct {
	sink *db.DiagnosticSink
}

func NewDiagnosticHandler(sink *db.DiagnosticSink) *DiagnosticHandler {
	return &DiagnosticHandler{sink: sink}
}

// ListDiagnostics 列出当前会话最近的失败记录；all=true 时不按会话过滤
func (h *DiagnosticHandler) ListDiagnostics(c *gin.Context) {
	if h.sink == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "未启用诊断库"})
		return
	}

	limit := 50
	if l := c.Query("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil {
			limit = v
		}
	}
	sessionID := entryFrom(c).ID
	if c.Query("all") == "true" {
		sessionID = ""
	}

	recs, err := h.sink.Recent(c.Request.Context(), sessionID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	counts, err := h.sink.CountByOperation(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"diagnostics":  recs,
		"by_operation": counts,
	})
}
