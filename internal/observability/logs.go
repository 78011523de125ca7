package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/log/global"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rl1809/warehouse/internal/config"
)

const (
	logsPath = "/v1/logs"
	logScope = "github.com/rl1809/warehouse"
)

// SetupLogExport installs a global OTLP/HTTP logger provider. Like tracing it
// is a no-op without an endpoint.
func SetupLogExport(ctx context.Context, cfg config.TelemetryConfig) (func(context.Context) error, error) {
	if cfg.Endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}

	res, err := newResource(ctx)
	if err != nil {
		return nil, err
	}

	opts := []otlploghttp.Option{
		otlploghttp.WithEndpoint(cfg.Endpoint),
		otlploghttp.WithURLPath(logsPath),
	}
	if h := authHeaders(cfg); h != nil {
		opts = append(opts, otlploghttp.WithHeaders(h))
	}
	exporter, err := otlploghttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("OTLP log exporter: %w", err)
	}

	lp := sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
	)
	global.SetLoggerProvider(lp)
	return lp.Shutdown, nil
}

// WithLogExport tees logger into the global OTel logger provider. Entries
// carrying a context.Context field are correlated with its span.
func WithLogExport(logger *zap.Logger) *zap.Logger {
	return logger.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, otelzap.NewCore(logScope,
			otelzap.WithLoggerProvider(global.GetLoggerProvider()),
		))
	}))
}
