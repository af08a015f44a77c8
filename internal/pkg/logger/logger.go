// internal/pkg/logger/logger.go
package logger

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

var base zerolog.Logger

func init() {
	base = zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// Init 设置服务名等全局日志字段。
func Init(serviceName string) {
	base = zerolog.New(os.Stdout).With().
		Timestamp().
		Str("service", serviceName).
		Logger()
}

// Logger 返回全局 logger。
func Logger() *zerolog.Logger {
	return &base
}

// Ctx 返回附带了当前 trace_id 的 logger，便于日志与链路关联。
func Ctx(ctx context.Context) *zerolog.Logger {
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		l := base.With().Str("trace_id", sc.TraceID().String()).Logger()
		return &l
	}
	return &base
}
