package session

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"go.uber.org/zap"

	"github.com/crawlora/sequence-runner/pkg/config"
	"github.com/crawlora/sequence-runner/pkg/engine"
	"github.com/crawlora/sequence-runner/pkg/logging"
	"github.com/crawlora/sequence-runner/pkg/status"
	"github.com/crawlora/sequence-runner/pkg/tracking"
)

// Task is the caller's automation work for one session.
type Task func(ctx context.Context, h *Handles) error

// OutputSink receives the records a task produces.
type OutputSink interface {
	Create(ctx context.Context, data any) error
}

// Handles is everything a task gets to work with. The browser and page are
// only valid until the task returns.
type Handles struct {
	Browser engine.Browser
	Page    engine.Page
	Output  OutputSink
	Debug   *logging.Logger

	// Wait pauses for the given number of seconds
	Wait func(seconds int)
}

// Launcher starts browsers and prepares their pages.
type Launcher interface {
	Launch(ctx context.Context, opts engine.LaunchOptions) (engine.Browser, error)
	PreparePage(page engine.Page) error
}

// Runner runs sessions one at a time. A Runner must not be used by two
// goroutines at once.
type Runner struct {
	launcher Launcher
	locator  config.BinaryLocator
	env      *config.Env
	reporter *status.Reporter
	client   *tracking.Client
	logger   *logging.Logger
	sleep    func(time.Duration)
	hook     func(State)
}

// Option configures a Runner.
type Option func(*Runner)

// WithLocator sets the bundled binary locator.
func WithLocator(locator config.BinaryLocator) Option {
	return func(r *Runner) { r.locator = locator }
}

// WithReporter sets the status reporter.
func WithReporter(reporter *status.Reporter) Option {
	return func(r *Runner) { r.reporter = reporter }
}

// WithTrackingClient makes task outputs go to client.
func WithTrackingClient(client *tracking.Client) Option {
	return func(r *Runner) { r.client = client }
}

// WithLogger sets the logger; the browser component logger is derived from it.
func WithLogger(logger *logging.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

// WithSleep replaces time.Sleep for the Wait helper.
func WithSleep(sleep func(time.Duration)) Option {
	return func(r *Runner) { r.sleep = sleep }
}

// WithStateHook observes every lifecycle transition.
func WithStateHook(hook func(State)) Option {
	return func(r *Runner) { r.hook = hook }
}

// NewRunner creates a runner launching through launcher.
func NewRunner(launcher Launcher, env *config.Env, opts ...Option) *Runner {
	r := &Runner{
		launcher: launcher,
		env:      env,
		logger:   logging.Nop(),
		sleep:    time.Sleep,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.Named("browser")
	if r.reporter == nil {
		r.reporter = status.NewReporter(nil, "", r.logger)
	}
	return r
}

// Env returns the environment the runner resolves against.
func (r *Runner) Env() *config.Env {
	return r.env
}

// Reporter returns the status reporter.
func (r *Runner) Reporter() *status.Reporter {
	return r.reporter
}

// Logger returns the browser component logger.
func (r *Runner) Logger() *logging.Logger {
	return r.logger
}

// Run executes task in a fresh browser session.
//
// Configuration is resolved before anything is launched. Once a browser
// exists it is closed exactly once, whatever happens afterwards. When
// reportStatus is set and a tracked unit is configured, in_progress is sent
// once the page is ready, followed by success or failed. A task error is
// returned unchanged; setup failures wrap ErrLaunch, ErrPageAcquisition or
// ErrProxyAuth.
func (r *Runner) Run(ctx context.Context, task Task, opts config.Options, reportStatus bool) error {
	lc := &lifecycle{state: Unstarted, logger: r.logger, hook: r.hook}

	cfg, err := config.Resolve(ctx, opts, r.env, r.locator)
	if err != nil {
		r.logger.Errorf("could not resolve launch configuration: %v", err)
		lc.to(Closed)
		return err
	}

	r.logger.Debugf("executable path: %s", cfg.ExecutablePath)
	r.logger.Debugf("headless: %t (decided by %s)", cfg.Headless, cfg.VisibilitySource)
	r.logger.Debugf("proxy: %s", cfg.Proxy)
	if cfg.ProxyIgnored {
		r.logger.Warnf("ignoring caller proxy with a single populated field")
	}
	r.logger.With(zap.Strings("args", cfg.Args)).Debugf("startup arguments")

	lc.to(Launching)
	r.logger.Debugf("launching browser")

	browser, err := r.launcher.Launch(ctx, cfg.LaunchOptions())
	if err != nil {
		lc.to(Closed)
		return fmt.Errorf("%w: %w", ErrLaunch, err)
	}
	r.logger.Debugf("launched browser")

	defer func() {
		r.release(browser)
		lc.to(Closed)
	}()

	page, err := r.acquirePage(browser)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPageAcquisition, err)
	}

	if cfg.Proxy.HasCredentials() {
		if err := page.Authenticate(cfg.Proxy.Credential.Username, cfg.Proxy.Credential.Password); err != nil {
			return fmt.Errorf("%w: %w", ErrProxyAuth, err)
		}
	}
	lc.to(PageReady)
	r.logger.Debugf("launched new page")

	tracker := r.reporter.NewTracker(cfg.AuthKey, reportStatus)
	tracker.Start(ctx)

	handles := &Handles{
		Browser: browser,
		Page:    page,
		Output:  r.output(cfg.AuthKey),
		Debug:   r.logger,
		Wait:    r.Wait,
	}

	lc.to(Running)
	r.logger.Debugf("running callback function")

	if err := r.invoke(ctx, task, handles); err != nil {
		r.logger.Debugf("received an error: %v", err)
		lc.to(Failed)
		tracker.Finish(ctx, err)
		return err
	}

	lc.to(Completed)
	tracker.Finish(ctx, nil)
	r.logger.Debugf("successfully ran callback function")
	return nil
}

// acquirePage leaves the browser with exactly one prepared page.
func (r *Runner) acquirePage(browser engine.Browser) (engine.Page, error) {
	var page engine.Page

	pages := browser.Pages()
	if len(pages) == 0 {
		p, err := browser.NewPage()
		if err != nil {
			return nil, err
		}
		page = p
	} else {
		page = pages[0]
		for _, extra := range pages[1:] {
			if err := extra.Close(); err != nil {
				return nil, fmt.Errorf("failed to close extra page: %w", err)
			}
		}
	}

	if err := r.launcher.PreparePage(page); err != nil {
		return nil, err
	}
	return page, nil
}

// invoke runs task, turning a panic into an ErrTaskPanic error.
func (r *Runner) invoke(ctx context.Context, task Task, h *Handles) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %v\n%s", ErrTaskPanic, p, debug.Stack())
		}
	}()
	return task(ctx, h)
}

// release closes browser. Close errors are logged so they never mask the
// session's own outcome.
func (r *Runner) release(browser engine.Browser) {
	r.logger.Debugf("closing the browser")
	if err := browser.Close(); err != nil {
		r.logger.Warnf("failed to close browser: %v", err)
	}
}

func (r *Runner) output(authKey string) OutputSink {
	if r.client == nil {
		return &discardOutput{logger: r.logger}
	}
	return r.client.Output(authKey, r.reporter.SequenceID())
}

// Wait pauses for seconds (negative counts as zero). It cannot be
// interrupted.
func (r *Runner) Wait(seconds int) {
	if seconds < 0 {
		seconds = 0
	}

	if seconds > 60 {
		r.logger.Debugf("waiting for %g min", float64(seconds)/60)
	} else {
		r.logger.Debugf("waiting for %d sec", seconds)
	}

	r.sleep(time.Duration(seconds) * time.Second)
}

// Close releases the engine when the launcher owns one.
func (r *Runner) Close() error {
	if s, ok := r.launcher.(interface{ Shutdown() error }); ok {
		return s.Shutdown()
	}
	return nil
}

type discardOutput struct {
	logger *logging.Logger
}

func (d *discardOutput) Create(ctx context.Context, data any) error {
	d.logger.Debugf("no tracking client configured, dropping output: %v", data)
	return nil
}
