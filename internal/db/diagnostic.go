package db

import (
	"context"
	"fmt"

	"decision-console/internal/logger"
	"decision-console/internal/model"
	"decision-console/internal/store"

	"gorm.io/gorm"
)

// DiagnosticSink 把 store 的失败写进 diagnostics 表
type DiagnosticSink struct {
	db *gorm.DB
}

func NewDiagnosticSink(db *gorm.DB) *DiagnosticSink {
	return &DiagnosticSink{db: db}
}

func (s *DiagnosticSink) Report(ctx context.Context, f store.Failure) {
	msg := ""
	if f.Err != nil {
		msg = f.Err.Error()
	}
	rec := model.Diagnostic{
		SessionID:  f.SessionID,
		Operation:  f.Operation,
		Class:      string(f.Class),
		StatusCode: f.StatusCode(),
		Message:    msg,
	}
	// 写库失败不能反过来影响 store 操作
	if err := s.db.WithContext(context.WithoutCancel(ctx)).Create(&rec).Error; err != nil {
		log := logger.Component("diagnostics")
		log.Warn().Err(err).Str("op", f.Operation).Msg("写入诊断记录失败")
	}
}

// Recent 最近的诊断记录，sessionID 为空时不过滤
func (s *DiagnosticSink) Recent(ctx context.Context, sessionID string, limit int) ([]model.Diagnostic, error) {
	if limit <= 0 {
		limit = 50
	}
	var out []model.Diagnostic
	query := s.db.WithContext(ctx).Order("created_at DESC").Limit(limit)
	if sessionID != "" {
		query = query.Where("session_id = ?", sessionID)
	}
	if err := query.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("查询诊断记录失败: %w", err)
	}
	return out, nil
}

// CountByOperation 按操作统计失败次数
func (s *DiagnosticSink) CountByOperation(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Operation string `gorm:"column:operation"`
		Total     int64  `gorm:"column:total"`
	}
	if err := s.db.WithContext(ctx).
		Model(&model.Diagnostic{}).
		Select("operation, COUNT(*) AS total").
		Group("operation").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("统计诊断记录失败: %w", err)
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Operation] = r.Total
	}
	return out, nil
}
