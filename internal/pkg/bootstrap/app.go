// internal/pkg/bootstrap/app.go
package bootstrap

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"codgate/internal/pkg/config"
	"codgate/internal/pkg/logger"
	"codgate/internal/pkg/tracing"
)

// AppCtx 传递给路由注册回调的上下文。
type AppCtx struct {
	Mux *http.ServeMux
}

// AppInfo 包含了启动一个服务所需的所有特定信息。
type AppInfo struct {
	ServiceName      string
	Port             int
	RegisterHandlers func(appCtx AppCtx) // 允许服务注册自己的 HTTP 路由
	OnShutdown       []func(ctx context.Context) error
}

// Init 加载配置并初始化全局日志。必须在 StartService 之前调用。
func Init() {
	config.Init()
}

// StartService 封装了服务的通用启动和优雅关停逻辑。
func StartService(info AppInfo) {
	logger.Init(info.ServiceName)

	// 1. 初始化 Tracer
	tp, err := tracing.InitTracerProvider(info.ServiceName, config.GetCurrentConfig().Infra.Jaeger.Endpoint)
	if err != nil {
		logger.Logger().Fatal().Err(err).Msg("failed to initialize tracer provider")
	}

	// 2. 创建并启动 HTTP Server
	mux := http.NewServeMux()
	if info.RegisterHandlers != nil {
		info.RegisterHandlers(AppCtx{Mux: mux})
	}
	server := &http.Server{Addr: ":" + strconv.Itoa(info.Port), Handler: mux}
	go func() {
		logger.Logger().Info().Msgf("%s listening on :%d", info.ServiceName, info.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger().Fatal().Err(err).Msgf("could not listen on %s", server.Addr)
		}
	}()

	// 3. 优雅关停
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Logger().Info().Msgf("Shutting down service %s...", info.ServiceName)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// 按顺序执行清理操作 (后进先出)
	if err := server.Shutdown(ctx); err != nil {
		logger.Logger().Error().Err(err).Msg("error shutting down http server")
	}

	for _, fn := range info.OnShutdown {
		if err := fn(ctx); err != nil {
			logger.Logger().Error().Err(err).Msg("error running shutdown hook")
		}
	}

	// 最后关闭 Tracer Provider，确保所有缓冲的 trace 都被发送出去
	if err := tp.Shutdown(ctx); err != nil {
		logger.Logger().Error().Err(err).Msg("error shutting down tracer provider")
	}

	logger.Logger().Info().Msgf("Service %s gracefully shut down.", info.ServiceName)
}
