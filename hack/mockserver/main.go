// Command mockserver runs the in-memory Makima fake behind the REST API so the
// SDK and CLI can be exercised without the real service.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/makima-ai/makima-go/internal/httpserver"
	"github.com/makima-ai/makima-go/internal/httpserver/auth"
	"github.com/makima-ai/makima-go/internal/metrics"
	"github.com/makima-ai/makima-go/pkg/client/fake"
)

func setupLogger(logLevel string) (logr.Logger, *zap.Logger) {
	var zapLevel zapcore.Level
	switch strings.ToLower(logLevel) {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	zapConfig := zap.NewProductionConfig()
	zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	zapConfig.EncoderConfig.TimeKey = "timestamp"
	zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	zapLogger, err := zapConfig.Build()
	if err != nil {
		devConfig := zap.NewDevelopmentConfig()
		devConfig.Level = zap.NewAtomicLevelAt(zapLevel)
		zapLogger, _ = devConfig.Build()
	}
	logger := zapr.NewLogger(zapLogger)
	logger.Info("Logger initialized", "level", logLevel)
	return logger, zapLogger
}

func main() {
	logLevel := flag.String("log-level", "", "Set the logging level (debug, info, warn, error), overrides LOG_LEVEL")
	host := flag.String("host", "", "Set the host address to bind to (default: all interfaces)")
	portFlag := flag.String("port", "", "Set the port to listen on (overrides PORT environment variable)")
	tokenFlag := flag.String("token", "", "Require this bearer token on API requests (overrides MAKIMA_TOKEN)")
	flag.Parse()

	level := *logLevel
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	logger, zapLogger := setupLogger(level)
	defer func() {
		_ = zapLogger.Sync()
	}()

	undoMaxProcs, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		logger.V(1).Info(fmt.Sprintf(format, args...))
	}))
	if err != nil {
		logger.Error(err, "Failed to set GOMAXPROCS")
	}
	defer undoMaxProcs()

	port := *portFlag
	if port == "" {
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = "7777"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config := httpserver.ServerConfig{
		BindAddr:       net.JoinHostPort(*host, port),
		Clients:        fake.NewClientSet(),
		Logger:         logger,
		MetricsHandler: promhttp.HandlerFor(metrics.NewRegistry(), promhttp.HandlerOpts{}),
	}
	token := *tokenFlag
	if token == "" {
		token = os.Getenv("MAKIMA_TOKEN")
	}
	if token != "" {
		config.Auth = &auth.TokenAuthenticator{Token: token}
		logger.Info("Bearer token authentication enabled")
	}

	server := httpserver.NewHTTPServer(config)
	if err := server.Start(ctx); err != nil {
		logger.Error(err, "Failed to start mock server")
		os.Exit(1)
	}

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		logger.Error(err, "Failed to stop mock server")
	}
	logger.Info("Mock server stopped")
}
