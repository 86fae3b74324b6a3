package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.10.0"
	"go.uber.org/zap"

	"github.com/five82/episodes/internal/cache"
	"github.com/five82/episodes/internal/config"
)

func initLogger(level, path string) (*zap.SugaredLogger, error) {
	if strings.TrimSpace(path) == "" {
		return zap.NewNop().Sugar(), nil
	}

	lvl, err := zap.ParseAtomicLevel(strings.TrimSpace(level))
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}

	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = lvl
	zapCfg.OutputPaths = []string{path}
	zapCfg.ErrorOutputPaths = []string{path}

	zapLogger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return zapLogger.Sugar(), nil
}

func initTracing(ctx context.Context, cfg config.TracingConfig) (func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }
	if !cfg.Enabled() {
		return noop, nil
	}

	endpoint := otlptracehttp.WithEndpoint(cfg.OTLPEndpoint)
	if strings.Contains(cfg.OTLPEndpoint, "://") {
		endpoint = otlptracehttp.WithEndpointURL(cfg.OTLPEndpoint)
	}
	exp, err := otlptracehttp.New(ctx, endpoint, otlptracehttp.WithInsecure())
	if err != nil {
		return noop, fmt.Errorf("init otlp exporter: %w", err)
	}

	res, err := sdkresource.New(ctx,
		sdkresource.WithAttributes(semconv.ServiceNameKey.String(cfg.ServiceName)),
	)
	if err != nil {
		return noop, fmt.Errorf("init otel resource: %w", err)
	}

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tracerProvider)

	return tracerProvider.Shutdown, nil
}

// initCache returns nil when caching is disabled or Redis is unreachable;
// the tool then runs uncached.
func initCache(ctx context.Context, cfg config.CacheConfig, tracing bool, logger *zap.SugaredLogger) cache.Cache {
	if !cfg.Enabled() {
		return nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rc, err := cache.NewRedisCache(pingCtx, cache.RedisOptions{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		Tracing:  tracing,
	}, logger)
	if err != nil {
		logger.Warnw("response cache disabled", "addr", cfg.RedisAddr, "error", err)
		return nil
	}
	return rc
}
