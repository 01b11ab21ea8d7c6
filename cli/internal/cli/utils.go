package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/makima-ai/makima-go/cli/internal/config"
	"github.com/makima-ai/makima-go/pkg/client"
)

var (
	ErrServerConnection = errors.New("error connecting to the Makima service, check makima_url or start it with 'go run ./hack/mockserver'")
)

// Runtime carries what every command needs
type Runtime struct {
	Config *config.Config
	Client *client.ClientSet
	Out    io.Writer
	Err    io.Writer

	// Interactive shows progress spinners on Err
	Interactive bool
}

// NewRuntime builds a client for cfg writing to the process streams. Verbose
// configs log every request to stderr.
func NewRuntime(cfg *config.Config) *Runtime {
	var options []client.ClientOption
	if cfg.Verbose {
		options = append(options, client.WithLogger(newLogger()))
	}
	if cfg.Token != "" {
		options = append(options, client.WithHeader("Authorization", "Bearer "+cfg.Token))
	}
	return &Runtime{
		Config:      cfg,
		Client:      client.New(cfg.MakimaURL, options...),
		Out:         os.Stdout,
		Err:         os.Stderr,
		Interactive: true,
	}
}

func newLogger() logr.Logger {
	zapConfig := zap.NewDevelopmentConfig()
	// V(1) maps to zap level -1
	zapConfig.Level = zap.NewAtomicLevelAt(zapcore.Level(-1))
	zapLogger, err := zapConfig.Build()
	if err != nil {
		return logr.Discard()
	}
	return zapr.NewLogger(zapLogger)
}

// CheckServerConnection lists agents with a short timeout to see whether the
// service answers
func CheckServerConnection(ctx context.Context, clients *client.ClientSet) error {
	if clients == nil {
		return ErrServerConnection
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()
	if _, err := clients.Agent.ListAgents(ctx); err != nil {
		var serviceErr *client.ServiceError
		if errors.As(err, &serviceErr) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrServerConnection, err)
	}
	return nil
}
