package session

import "errors"

var (
	// ErrLaunch means the engine could not start a browser.
	ErrLaunch = errors.New("browser launch failed")

	// ErrPageAcquisition means no working page could be prepared.
	ErrPageAcquisition = errors.New("page acquisition failed")

	// ErrProxyAuth means the page rejected the proxy credentials.
	ErrProxyAuth = errors.New("proxy authentication failed")

	// ErrTaskPanic wraps a panic raised by task code.
	ErrTaskPanic = errors.New("task panicked")
)
