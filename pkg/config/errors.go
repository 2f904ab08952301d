package config

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration covers missing or invalid configuration detected
	// before any browser resource is acquired.
	ErrConfiguration = errors.New("configuration error")

	// ErrProxyConfig is an invalid or incomplete proxy. It wraps ErrConfiguration.
	ErrProxyConfig = fmt.Errorf("%w: proxy", ErrConfiguration)

	// ErrBinaryNotFound means no browser executable could be resolved.
	ErrBinaryNotFound = errors.New("browser binary not found")
)
