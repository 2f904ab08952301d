package session

import (
	"context"

	"github.com/crawlora/sequence-runner/pkg/config"
	"github.com/crawlora/sequence-runner/pkg/engine"
	"github.com/crawlora/sequence-runner/pkg/logging"
	"github.com/crawlora/sequence-runner/pkg/status"
	"github.com/crawlora/sequence-runner/pkg/tracking"
)

// NewDefault creates a runner backed by Playwright Chromium with the
// default decorators and the tracking service configured in env.
// Close the runner to stop the Playwright driver.
func NewDefault(env *config.Env, logger *logging.Logger) *Runner {
	if logger == nil {
		logger = logging.Nop()
	}

	pw := engine.NewPlaywright()
	client := tracking.NewClient(env.Crawlora.APIURL, env.Crawlora.APITimeout)

	return NewRunner(engine.NewDefaultFactory(pw), env,
		WithLocator(pw),
		WithTrackingClient(client),
		WithReporter(status.NewReporter(client, env.Crawlora.SequenceID, logger.Named("status"))),
		WithLogger(logger),
	)
}

// NewLogger builds the process logger from the LOG_* environment. A bad
// level falls back to info and an unusable log file to stderr; either is
// reported once as a warning.
func NewLogger(component string, env *config.Env) *logging.Logger {
	logger, err := logging.New(component, logging.Config{
		Level:       env.Logging.Level,
		Development: env.Logging.Development,
		File:        env.Logging.File,
	})
	if err != nil {
		logger.Warnf("logging setup: %v", err)
	}
	return logger
}

// RunSession runs task once with a runner built from the process
// environment, reporting status when CRAWLORA_SEQUENCE_ID is set.
//
// Only the task's own outcome reaches the tracking service. Configuration,
// launch, page and proxy authentication failures happen before in_progress
// is sent, so they are returned to the caller without any status update.
func RunSession(ctx context.Context, task Task, opts config.Options) error {
	env, err := config.LoadEnv()
	if err != nil {
		return err
	}

	logger := NewLogger("sequence-runner", env)
	defer logger.Close()

	runner := NewDefault(env, logger)
	defer func() {
		if err := runner.Close(); err != nil {
			logger.Warnf("failed to stop engine: %v", err)
		}
	}()

	return runner.Run(ctx, task, opts, true)
}
