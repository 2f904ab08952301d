package session

import "github.com/crawlora/sequence-runner/pkg/logging"

// State is a step of the session lifecycle:
//
//	Unstarted → Launching → PageReady → Running → {Completed | Failed} → Closed
//
// Closed is always reached once Launching was. Unstarted goes straight to
// Closed only when configuration resolution fails.
type State int

const (
	Unstarted State = iota
	Launching
	PageReady
	Running
	Completed
	Failed
	Closed
)

func (s State) String() string {
	switch s {
	case Unstarted:
		return "unstarted"
	case Launching:
		return "launching"
	case PageReady:
		return "page_ready"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// lifecycle records the state of one session.
type lifecycle struct {
	state  State
	logger *logging.Logger
	hook   func(State)
}

func (l *lifecycle) to(next State) {
	l.logger.Debugf("session %s -> %s", l.state, next)
	l.state = next
	if l.hook != nil {
		l.hook(next)
	}
}
