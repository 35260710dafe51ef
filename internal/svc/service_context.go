package svc

import (
	"decision-console/internal/archive"
	"decision-console/internal/config"
	"decision-console/internal/db"
	"decision-console/internal/metrics"
	"decision-console/internal/service"
	"decision-console/internal/session"
	"decision-console/internal/store"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
)

type ServiceContext struct {
	Config   *config.Config
	API      *service.APIClient
	Sessions *session.Manager
	Metrics  *metrics.Metrics
	Registry *prometheus.Registry
	// 以下两项按配置启用，可能为 nil
	Diagnostics *db.DiagnosticSink
	Archiver    *archive.S3Archiver
}

func NewServiceContext(cfg *config.Config) *ServiceContext {
	reg := prometheus.NewRegistry()
	svcCtx := &ServiceContext{
		Config:   cfg,
		API:      service.NewAPIClient(cfg.API.BaseURL, cfg.API.Timeout()),
		Registry: reg,
	}
	if cfg.Metrics.Enabled {
		svcCtx.Metrics = metrics.New(metrics.WithNamespace(cfg.Metrics.Namespace), metrics.WithRegistry(reg))
	}
	if db.DB != nil {
		svcCtx.Diagnostics = db.NewDiagnosticSink(db.DB)
	}
	if cfg.Export.Enabled() {
		svcCtx.Archiver = archive.NewFromConfig(cfg.Export)
	}

	opts := []session.Option{session.WithIdleTimeout(cfg.Session.IdleTimeout())}
	if svcCtx.Metrics != nil {
		opts = append(opts,
			session.OnCreate(func(*session.Entry) { svcCtx.Metrics.SessionOpened() }),
			session.OnClose(func(*session.Entry) { svcCtx.Metrics.SessionClosed() }),
		)
	}
	svcCtx.Sessions = session.NewManager(svcCtx.NewStore, opts...)
	return svcCtx
}

// NewStore 按配置组装一个会话 store；CLI 用空 sessionID
func (s *ServiceContext) NewStore(sessionID string) *store.Store {
	reporters := store.MultiReporter{store.LogReporter{}}
	if s.Diagnostics != nil {
		reporters = append(reporters, s.Diagnostics)
	}

	opts := []store.Option{
		store.WithSessionID(sessionID),
		store.WithReporter(reporters),
		store.WithTracer(otel.Tracer(s.Config.Tracing.TracerName)),
	}
	if s.Metrics != nil {
		opts = append(opts, store.WithRecorder(s.Metrics))
	}
	if s.Config.API.StaleGuard {
		opts = append(opts, store.WithStaleGuard())
	}
	return store.New(s.API, opts...)
}
