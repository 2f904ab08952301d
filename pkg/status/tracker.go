package status

import (
	"context"
	"sync"
)

// Tracker reports one unit-run: at most one InProgress, then exactly one of
// Success or Failed. A terminal status is never sent before InProgress.
// Out-of-order or repeated calls are logged and dropped.
type Tracker struct {
	reporter *Reporter
	authKey  string
	enabled  bool

	mu       sync.Mutex
	started  bool
	finished bool
	emitted  []Transition
}

// NewTracker creates a tracker. When enabled is false the tracker still
// enforces ordering but never reports.
func (r *Reporter) NewTracker(authKey string, enabled bool) *Tracker {
	return &Tracker{
		reporter: r,
		authKey:  authKey,
		enabled:  enabled,
	}
}

// Start emits InProgress once.
func (t *Tracker) Start(ctx context.Context) {
	t.mu.Lock()
	if t.started || t.finished {
		t.mu.Unlock()
		t.warnf("ignoring %s: unit-run already started", InProgress)
		return
	}
	t.started = true
	t.mu.Unlock()

	t.emit(ctx, InProgress, "")
}

// Finish emits Success when err is nil and Failed otherwise, once.
func (t *Tracker) Finish(ctx context.Context, err error) {
	transition := Success
	if err != nil {
		transition = Failed
	}

	t.mu.Lock()
	if !t.started {
		t.mu.Unlock()
		t.warnf("ignoring %s: unit-run never started", transition)
		return
	}
	if t.finished {
		t.mu.Unlock()
		t.warnf("ignoring %s: unit-run already finished", transition)
		return
	}
	t.finished = true
	t.mu.Unlock()

	t.emit(ctx, transition, ErrorText(err))
}

// Emitted returns the transitions this tracker decided to send, in order.
func (t *Tracker) Emitted() []Transition {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Transition(nil), t.emitted...)
}

func (t *Tracker) emit(ctx context.Context, transition Transition, errText string) {
	if !t.enabled {
		return
	}

	t.mu.Lock()
	t.emitted = append(t.emitted, transition)
	t.mu.Unlock()

	t.reporter.Report(ctx, transition, t.authKey, errText)
}

func (t *Tracker) warnf(format string, v ...interface{}) {
	if t.reporter != nil {
		t.reporter.logger.Warnf(format, v...)
	}
}
