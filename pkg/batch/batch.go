// Package batch runs one browser session per input item under a single
// tracked status.
package batch

import (
	"context"

	"github.com/crawlora/sequence-runner/pkg/config"
	"github.com/crawlora/sequence-runner/pkg/session"
)

// DefaultDelay is the pause in seconds after each item's task.
const DefaultDelay = 2

// ItemFunc processes one item inside its own session.
type ItemFunc[T any] func(ctx context.Context, h *session.Handles, item T) error

type settings struct {
	delay int
}

// Option configures a batch run.
type Option func(*settings)

// WithDelay sets the pause after each item, in seconds.
func WithDelay(seconds int) Option {
	return func(s *settings) { s.delay = seconds }
}

// Run processes items one at a time, each in a fresh session that does not
// report status on its own. The batch as a whole reports in_progress once
// and then exactly one of success or failed.
//
// The first failing item aborts the batch; remaining items are never
// attempted and that item's error is returned unchanged.
func Run[T any](ctx context.Context, runner *session.Runner, items []T, perItem ItemFunc[T], opts config.Options, options ...Option) error {
	s := settings{delay: DefaultDelay}
	for _, opt := range options {
		opt(&s)
	}

	logger := runner.Logger()

	authKey, err := config.ResolveAuthKey(opts, runner.Env())
	if err != nil {
		logger.Errorf("could not start batch: %v", err)
		return err
	}

	tracker := runner.Reporter().NewTracker(authKey, true)
	tracker.Start(ctx)

	for i, item := range items {
		logger.Debugf("processing item %d of %d", i+1, len(items))

		err := runner.Run(ctx, func(ctx context.Context, h *session.Handles) error {
			if err := perItem(ctx, h, item); err != nil {
				return err
			}
			h.Wait(s.delay)
			return nil
		}, opts, false)
		if err != nil {
			logger.Errorf("item %d failed, aborting batch: %v", i+1, err)
			tracker.Finish(ctx, err)
			return err
		}
	}

	tracker.Finish(ctx, nil)
	logger.Debugf("batch of %d items completed", len(items))
	return nil
}

// RunBatch runs items with a runner built from the process environment.
func RunBatch[T any](ctx context.Context, items []T, perItem ItemFunc[T], opts config.Options, options ...Option) error {
	env, err := config.LoadEnv()
	if err != nil {
		return err
	}

	logger := session.NewLogger("sequence-runner", env)
	defer logger.Close()

	runner := session.NewDefault(env, logger)
	defer func() {
		if err := runner.Close(); err != nil {
			logger.Warnf("failed to stop engine: %v", err)
		}
	}()

	return Run(ctx, runner, items, perItem, opts, options...)
}
