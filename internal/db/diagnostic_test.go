package db

import (
	"context"
	"errors"
	"testing"

	"decision-console/internal/config"
	"decision-console/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statusErr struct{ code int }

func (e statusErr) Error() string   { return "remote failed" }
func (e statusErr) HTTPStatus() int { return e.code }

// TestDiagnosticSink_Integration 需要真实的 MySQL（DASHBOARD_DB_* 环境变量）
func TestDiagnosticSink_Integration(t *testing.T) {
	cfg, err := config.LoadConfig("../../config/config.yaml")
	if err != nil || !cfg.Database.Enabled() {
		t.Skip("跳过集成测试：未配置数据库")
		return
	}
	if err := InitDB(cfg); err != nil {
		t.Skip("跳过集成测试：无法连接数据库")
		return
	}

	sink := NewDiagnosticSink(DB)
	ctx := context.Background()
	sessionID := "it-" + t.Name()

	sink.Report(ctx, store.Failure{
		SessionID: sessionID,
		Operation: store.OpRunModel,
		Class:     store.Visible,
		Err:       statusErr{code: 502},
	})
	sink.Report(ctx, store.Failure{
		SessionID: sessionID,
		Operation: store.OpFetchStats,
		Class:     store.Silent,
		Err:       errors.New("connection refused"),
	})

	recs, err := sink.Recent(ctx, sessionID, 10)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	byOp := map[string]int{}
	for _, r := range recs {
		byOp[r.Operation] = r.StatusCode
	}
	assert.Equal(t, 502, byOp[store.OpRunModel])
	assert.Equal(t, 0, byOp[store.OpFetchStats])

	counts, err := sink.CountByOperation(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, counts[store.OpRunModel], int64(1))

	DB.Where("session_id = ?", sessionID).Unscoped().Delete(&recs)
}
