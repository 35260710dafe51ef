package store

import (
	"context"
	"errors"
	"time"

	"decision-console/internal/logger"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Class 失败的处理策略
type Class string

const (
	// Silent 记录后吞掉，调用方拿不到错误
	Silent Class = "silent"
	// Visible 记录后返回给调用方
	Visible Class = "visible"
)

// 操作名，用于诊断、指标与 span
const (
	OpFetchConfig       = "fetchConfig"
	OpSetTask           = "setTask"
	OpSetStrategy       = "setStrategy"
	OpFetchTasks        = "fetchTasks"
	OpFetchStrategies   = "fetchStrategies"
	OpRunModel          = "runModel"
	OpFetchResults      = "fetchResults"
	OpCompareResults    = "compareResults"
	OpFetchHistory      = "fetchHistory"
	OpDeleteHistory     = "deleteHistory"
	OpFetchLogs         = "fetchLogs"
	OpFetchStats        = "fetchStats"
	OpExportData        = "exportData"
	OpFetchSystemStatus = "fetchSystemStatus"
	OpHealth            = "health"
	OpFetchDataRecords  = "fetchDataRecords"
	OpCreateDataRecord  = "createDataRecord"
	OpDeleteDataRecord  = "deleteDataRecord"
)

// Failure 一次操作失败
type Failure struct {
	SessionID string
	Operation string
	Class     Class
	Err       error
}

// StatusCode 远端 HTTP 状态码，非状态码错误返回 0
func (f Failure) StatusCode() int {
	var se interface{ HTTPStatus() int }
	if errors.As(f.Err, &se) {
		return se.HTTPStatus()
	}
	return 0
}

// Reporter 诊断通道
type Reporter interface {
	Report(ctx context.Context, f Failure)
}

type ReporterFunc func(ctx context.Context, f Failure)

func (fn ReporterFunc) Report(ctx context.Context, f Failure) { fn(ctx, f) }

// LogReporter 写到 zerolog，默认的诊断通道
type LogReporter struct{}

func (LogReporter) Report(_ context.Context, f Failure) {
	log := logger.Component("store")
	log.Error().
		Str("session_id", f.SessionID).
		Str("op", f.Operation).
		Str("class", string(f.Class)).
		Int("status", f.StatusCode()).
		Err(f.Err).
		Msg("store 操作失败")
}

// MultiReporter 依次转发给多个通道
type MultiReporter []Reporter

func (m MultiReporter) Report(ctx context.Context, f Failure) {
	for _, r := range m {
		if r != nil {
			r.Report(ctx, f)
		}
	}
}

// Recorder 操作指标，metrics 包实现
type Recorder interface {
	ObserveOp(op string, d time.Duration, err error)
	RunStarted()
	RunFinished()
}

type nopRecorder struct{}

func (nopRecorder) ObserveOp(string, time.Duration, error) {}
func (nopRecorder) RunStarted()                            {}
func (nopRecorder) RunFinished()                           {}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
