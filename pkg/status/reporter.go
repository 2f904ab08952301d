package status

import (
	"context"
	"fmt"

	"github.com/crawlora/sequence-runner/pkg/logging"
	"github.com/crawlora/sequence-runner/pkg/tracking"
)

// Transition is a lifecycle status of a tracked unit.
type Transition string

const (
	InProgress Transition = "in_progress"
	Success    Transition = "success"
	Failed     Transition = "failed"
)

// IsTerminal reports whether t ends a unit-run.
func (t Transition) IsTerminal() bool {
	return t == Success || t == Failed
}

// Updater delivers transitions to the tracking service.
type Updater interface {
	UpdateSequence(ctx context.Context, authKey, sequenceID string, update tracking.SequenceUpdate) error
}

// ReportingError is a failed delivery. It is logged and discarded; it never
// reaches the caller of a session or batch.
type ReportingError struct {
	Transition Transition
	SequenceID string
	Err        error
}

func (e *ReportingError) Error() string {
	return fmt.Sprintf("could not update status of %s to %s: %v", e.SequenceID, e.Transition, e.Err)
}

func (e *ReportingError) Unwrap() error {
	return e.Err
}

// Reporter sends transitions for the process's tracked unit.
type Reporter struct {
	updater    Updater
	sequenceID string
	logger     *logging.Logger
}

// NewReporter creates a reporter. An empty sequenceID disables reporting.
func NewReporter(updater Updater, sequenceID string, logger *logging.Logger) *Reporter {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Reporter{
		updater:    updater,
		sequenceID: sequenceID,
		logger:     logger,
	}
}

// Enabled reports whether a tracked unit is configured.
func (r *Reporter) Enabled() bool {
	return r != nil && r.sequenceID != "" && r.updater != nil
}

// SequenceID returns the tracked unit.
func (r *Reporter) SequenceID() string {
	if r == nil {
		return ""
	}
	return r.sequenceID
}

// Report sends transition for the configured tracked unit.
func (r *Reporter) Report(ctx context.Context, transition Transition, authKey, errText string) {
	if !r.Enabled() {
		return
	}
	r.ReportFor(ctx, transition, r.sequenceID, authKey, errText)
}

// ReportFor sends transition for sequenceID. errText is only sent with
// Failed. Cancellation of ctx does not stop the update. It never fails:
// delivery errors are logged as ReportingError and dropped without retry.
func (r *Reporter) ReportFor(ctx context.Context, transition Transition, sequenceID, authKey, errText string) {
	if r == nil || r.updater == nil || sequenceID == "" {
		return
	}

	update := tracking.SequenceUpdate{Status: string(transition)}
	if transition == Failed && errText != "" {
		update.Error = errText
	}

	r.logger.Debugf("updating the status to %s", transition)

	// A terminal status must still be delivered after the caller's context
	// was cancelled; the client timeout bounds the call.
	ctx = context.WithoutCancel(ctx)

	if err := r.updater.UpdateSequence(ctx, authKey, sequenceID, update); err != nil {
		rerr := &ReportingError{Transition: transition, SequenceID: sequenceID, Err: err}
		r.logger.Errorf("%v", rerr)
	}
}

// ErrorText renders err for a failed report, including a stack trace when
// the error carries one through %+v formatting.
func ErrorText(err error) string {
	if err == nil {
		return ""
	}
	if _, ok := err.(fmt.Formatter); ok {
		return fmt.Sprintf("%+v", err)
	}
	return err.Error()
}
