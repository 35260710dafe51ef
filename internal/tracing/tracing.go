// Package tracing 按配置安装全局 TracerProvider，span 以 JSON 行导出
package tracing

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"decision-console/internal/config"
	"decision-console/internal/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// ShutdownFunc 刷出剩余 span 并释放导出目标
type ShutdownFunc func(ctx context.Context) error

// Init 未启用时返回空的 ShutdownFunc，全局 provider 保持 no-op
func Init(cfg config.TracingConfig) (ShutdownFunc, error) {
	if !cfg.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	w, closeOutput, err := openOutput(cfg.Output)
	if err != nil {
		return nil, err
	}
	exp, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		closeOutput()
		return nil, fmt.Errorf("创建 span 导出器失败: %w", err)
	}

	tp := NewProvider(cfg, sdktrace.WithBatcher(exp))
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	log := logger.Component("tracing")
	log.Info().
		Str("output", cfg.Output).
		Float64("sample_ratio", cfg.SampleRatio).
		Msg("链路追踪已启用")

	return func(ctx context.Context) error {
		defer closeOutput()
		return tp.Shutdown(ctx)
	}, nil
}

// NewProvider 按配置组装采样与资源属性，导出方式由 opts 决定
func NewProvider(cfg config.TracingConfig, opts ...sdktrace.TracerProviderOption) *sdktrace.TracerProvider {
	ratio := cfg.SampleRatio
	if ratio <= 0 || ratio > 1 {
		ratio = 1
	}
	name := cfg.TracerName
	if name == "" {
		name = "decision-console"
	}
	base := []sdktrace.TracerProviderOption{
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))),
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", name))),
	}
	return sdktrace.NewTracerProvider(append(base, opts...)...)
}

func openOutput(output string) (io.Writer, func(), error) {
	switch strings.ToLower(output) {
	case "", "stderr":
		return os.Stderr, func() {}, nil
	case "stdout":
		return os.Stdout, func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return nil, nil, fmt.Errorf("创建 span 输出目录失败: %w", err)
	}
	f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("打开 span 输出文件失败 '%s': %w", output, err)
	}
	return f, func() { _ = f.Close() }, nil
}
