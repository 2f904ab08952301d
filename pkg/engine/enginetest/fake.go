// Package enginetest provides an in-memory engine for tests.
package enginetest

import (
	"context"
	"fmt"
	"sync"

	"github.com/crawlora/sequence-runner/pkg/engine"
)

// Engine records launches and hands out Browsers.
type Engine struct {
	mu sync.Mutex

	// LaunchErr fails every launch when set
	LaunchErr error

	// InitialPages is how many pages a freshly launched browser has
	InitialPages int

	// NewPageErr fails Browser.NewPage when set
	NewPageErr error

	// AuthErr fails Page.Authenticate when set
	AuthErr error

	// CloseErr is returned from Browser.Close when set
	CloseErr error

	Launches []engine.LaunchOptions
	Browsers []*Browser
}

// Launch records opts and returns a new Browser.
func (e *Engine) Launch(ctx context.Context, opts engine.LaunchOptions) (engine.Browser, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.Launches = append(e.Launches, opts)
	if e.LaunchErr != nil {
		return nil, e.LaunchErr
	}

	b := &Browser{engine: e, opts: opts}
	for i := 0; i < e.InitialPages; i++ {
		b.pages = append(b.pages, &Page{browser: b})
	}
	e.Browsers = append(e.Browsers, b)
	return b, nil
}

// LaunchCount returns how many launches were attempted.
func (e *Engine) LaunchCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.Launches)
}

// CloseCount sums Close calls over every browser launched.
func (e *Engine) CloseCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, b := range e.Browsers {
		n += b.CloseCalls
	}
	return n
}

// Browser is a fake launched browser.
type Browser struct {
	engine *Engine
	opts   engine.LaunchOptions
	pages  []*Page

	CloseCalls   int
	NewPageCalls int
}

// Pages returns the pages that have not been closed.
func (b *Browser) Pages() []engine.Page {
	var out []engine.Page
	for _, p := range b.pages {
		if !p.Closed {
			out = append(out, p)
		}
	}
	return out
}

// OpenPages returns the fake pages that have not been closed.
func (b *Browser) OpenPages() []*Page {
	var out []*Page
	for _, p := range b.pages {
		if !p.Closed {
			out = append(out, p)
		}
	}
	return out
}

// NewPage opens a page unless NewPageErr is set.
func (b *Browser) NewPage() (engine.Page, error) {
	b.NewPageCalls++
	if b.engine.NewPageErr != nil {
		return nil, b.engine.NewPageErr
	}
	p := &Page{browser: b}
	b.pages = append(b.pages, p)
	return p, nil
}

// Close counts the call.
func (b *Browser) Close() error {
	b.CloseCalls++
	return b.engine.CloseErr
}

// Credentials is a recorded Authenticate call.
type Credentials struct {
	Username string
	Password string
}

// Page is a fake tab.
type Page struct {
	browser *Browser

	Auth        []Credentials
	InitScripts []string
	Headers     map[string]string
	Visited     []string
	Agent       string
	Closed      bool
}

// Authenticate records the credentials and, like the real engine, fails
// when they differ from the proxy the browser was launched with.
func (p *Page) Authenticate(username, password string) error {
	p.Auth = append(p.Auth, Credentials{Username: username, Password: password})
	if err := p.browser.engine.AuthErr; err != nil {
		return err
	}
	proxy := p.browser.opts.Proxy
	if !proxy.HasCredentials() || proxy.Username != username || proxy.Password != password {
		return fmt.Errorf("credentials for %s do not match launch proxy", username)
	}
	return nil
}

// AddInitScript records the script.
func (p *Page) AddInitScript(script string) error {
	p.InitScripts = append(p.InitScripts, script)
	return nil
}

// UserAgent returns Agent, or a headless Linux Chrome agent when unset.
func (p *Page) UserAgent() (string, error) {
	if p.Agent == "" {
		return "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) HeadlessChrome/124.0.0.0 Safari/537.36", nil
	}
	return p.Agent, nil
}

// SetExtraHTTPHeaders merges headers.
func (p *Page) SetExtraHTTPHeaders(headers map[string]string) error {
	if p.Headers == nil {
		p.Headers = make(map[string]string)
	}
	for k, v := range headers {
		p.Headers[k] = v
	}
	return nil
}

// Goto records the URL.
func (p *Page) Goto(url string, opts engine.NavigateOptions) error {
	p.Visited = append(p.Visited, url)
	return nil
}

// Title returns a title derived from the last visited URL.
func (p *Page) Title() (string, error) {
	if len(p.Visited) == 0 {
		return "", nil
	}
	return "Title of " + p.Visited[len(p.Visited)-1], nil
}

// Text returns an empty body.
func (p *Page) Text(selector string) (string, error) {
	return "", nil
}

// URL returns the last visited URL.
func (p *Page) URL() string {
	if len(p.Visited) == 0 {
		return "about:blank"
	}
	return p.Visited[len(p.Visited)-1]
}

// Close marks the page closed.
func (p *Page) Close() error {
	p.Closed = true
	return nil
}
