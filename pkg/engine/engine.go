package engine

import (
	"context"
)

// Engine launches browsers. Implementations must be safe to call from one
// goroutine at a time; the runner never issues overlapping operations.
type Engine interface {
	Launch(ctx context.Context, opts LaunchOptions) (Browser, error)
}

// Browser is a launched browser owned by exactly one session.
type Browser interface {
	// Pages returns the pages the browser currently has open
	Pages() []Page

	// NewPage opens a new blank page
	NewPage() (Page, error)

	// Close releases the browser and everything it owns. The handle must not
	// be used afterwards.
	Close() error
}

// Page is a single tab of a launched browser.
type Page interface {
	// Authenticate confirms the page answers proxy challenges with this
	// credential pair. The pair is supplied at launch through
	// LaunchOptions.Proxy and is never sent as a request header.
	Authenticate(username, password string) error

	// AddInitScript registers JavaScript evaluated before any page script
	AddInitScript(script string) error

	// UserAgent reports the user agent the page currently presents
	UserAgent() (string, error)

	// SetExtraHTTPHeaders merges headers into every request the page makes
	SetExtraHTTPHeaders(headers map[string]string) error

	Goto(url string, opts NavigateOptions) error
	Title() (string, error)
	Text(selector string) (string, error)
	URL() string
	Close() error
}

// LaunchOptions is what an Engine needs to start a browser.
type LaunchOptions struct {
	// Headless controls whether the browser runs without a visible window
	Headless bool

	// ExecutablePath points at the browser binary
	ExecutablePath string

	// Args are the final startup arguments
	Args []string

	// Portal enables remote debugging for this launch
	Portal *PortalOptions

	// Proxy routes all browser traffic through an upstream proxy
	Proxy *ProxyOptions
}

// ProxyOptions is the upstream proxy a browser is launched with. The
// browser answers the proxy's authentication challenges itself, including
// on CONNECT tunnels.
type ProxyOptions struct {
	// Server is <protocol>://<host>:<port>
	Server string

	Username string
	Password string
}

// HasCredentials reports whether both halves of the credential pair are set.
func (p *ProxyOptions) HasCredentials() bool {
	return p != nil && p.Username != "" && p.Password != ""
}

// PortalOptions exposes a launched browser for remote debugging.
type PortalOptions struct {
	// Address to bind the debugging endpoint to (empty means loopback)
	Address string `yaml:"address" json:"address"`

	// Port of the debugging endpoint (0 means DefaultPortalPort)
	Port int `yaml:"port" json:"port"`
}

// NavigateOptions configures page navigation behavior.
type NavigateOptions struct {
	// WaitUntil specifies when to consider navigation successful
	// Valid values: "load", "domcontentloaded", "networkidle"
	WaitUntil string

	// Timeout in milliseconds (0 means default)
	Timeout float64
}

// Default values
const (
	DefaultTimeout    = 30000.0 // 30 seconds in milliseconds
	DefaultPortalPort = 9222
)
