package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/playwright-community/playwright-go"
)

// ErrNoBundledBrowser is returned when the playwright-managed Chromium
// binary cannot be located.
var ErrNoBundledBrowser = errors.New("bundled chromium not found")

// ErrProxyCredentials is returned by Authenticate when the pair does not
// match the credentials the browser was launched with.
var ErrProxyCredentials = errors.New("proxy credentials do not match launch configuration")

// Playwright is an Engine backed by playwright-go's Chromium.
type Playwright struct {
	mu          sync.Mutex
	playwright  *playwright.Playwright
	initialized bool
	runOptions  *playwright.RunOptions
}

// NewPlaywright creates an engine; the driver is installed and started
// lazily on first use.
func NewPlaywright() *Playwright {
	return &Playwright{
		runOptions: &playwright.RunOptions{
			Browsers: []string{"chromium"},
			Verbose:  false,
			Stdout:   io.Discard,
			Stderr:   io.Discard,
		},
	}
}

// Initialize installs and starts the Playwright driver. Safe to call more
// than once.
func (p *Playwright) Initialize() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.initializeLocked()
}

func (p *Playwright) initializeLocked() error {
	if p.initialized {
		return nil
	}

	if err := playwright.Install(p.runOptions); err != nil {
		return fmt.Errorf("failed to install playwright: %w", err)
	}

	pw, err := playwright.Run(p.runOptions)
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}

	p.playwright = pw
	p.initialized = true
	return nil
}

// ExecutablePath locates the bundled Chromium binary, installing it if needed.
func (p *Playwright) ExecutablePath(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.initializeLocked(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrNoBundledBrowser, err)
	}

	path := p.playwright.Chromium.ExecutablePath()
	if path == "" {
		return "", ErrNoBundledBrowser
	}
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%w: %w", ErrNoBundledBrowser, err)
	}
	return path, nil
}

// Launch starts Chromium with a fresh temporary profile.
func (p *Playwright) Launch(ctx context.Context, opts LaunchOptions) (Browser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.initializeLocked(); err != nil {
		return nil, err
	}

	userDataDir, err := os.MkdirTemp("", "sequence-runner-")
	if err != nil {
		return nil, fmt.Errorf("failed to create user data dir: %w", err)
	}

	headless := opts.Headless
	launchOpts := playwright.BrowserTypeLaunchPersistentContextOptions{
		Headless: &headless,
		Args:     opts.Args,
	}
	if opts.ExecutablePath != "" {
		launchOpts.ExecutablePath = playwright.String(opts.ExecutablePath)
	}
	if opts.Proxy != nil {
		launchOpts.Proxy = playwrightProxy(opts.Proxy)
	}

	browserContext, err := p.playwright.Chromium.LaunchPersistentContext(userDataDir, launchOpts)
	if err != nil {
		_ = os.RemoveAll(userDataDir)
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	return &PlaywrightBrowser{
		Context:     browserContext,
		userDataDir: userDataDir,
		proxy:       opts.Proxy,
	}, nil
}

func playwrightProxy(opts *ProxyOptions) *playwright.Proxy {
	proxy := &playwright.Proxy{Server: opts.Server}
	if opts.HasCredentials() {
		proxy.Username = playwright.String(opts.Username)
		proxy.Password = playwright.String(opts.Password)
	}
	return proxy
}

// Shutdown stops the Playwright driver.
func (p *Playwright) Shutdown() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized && p.playwright != nil {
		if err := p.playwright.Stop(); err != nil {
			return fmt.Errorf("failed to stop playwright: %w", err)
		}
		p.initialized = false
	}

	return nil
}

// PlaywrightBrowser is a persistent Chromium context and its profile directory.
type PlaywrightBrowser struct {
	// Context is the underlying browser context, for full Playwright access
	Context playwright.BrowserContext

	userDataDir string
	proxy       *ProxyOptions
	closeOnce   sync.Once
	closeErr    error
}

// Pages returns the open pages.
func (b *PlaywrightBrowser) Pages() []Page {
	raw := b.Context.Pages()
	pages := make([]Page, 0, len(raw))
	for _, page := range raw {
		pages = append(pages, newPlaywrightPage(page, b.proxy))
	}
	return pages
}

// NewPage opens a new page.
func (b *PlaywrightBrowser) NewPage() (Page, error) {
	page, err := b.Context.NewPage()
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	return newPlaywrightPage(page, b.proxy), nil
}

// Close closes the browser and removes the temporary profile.
func (b *PlaywrightBrowser) Close() error {
	b.closeOnce.Do(func() {
		var errs []error
		if err := b.Context.Close(); err != nil {
			errs = append(errs, err)
		}
		if err := os.RemoveAll(b.userDataDir); err != nil {
			errs = append(errs, err)
		}
		b.closeErr = errors.Join(errs...)
	})
	return b.closeErr
}

// PlaywrightPage adapts a playwright.Page.
type PlaywrightPage struct {
	// Page is the underlying page, for full Playwright access
	Page playwright.Page

	proxy   *ProxyOptions
	mu      sync.Mutex
	headers map[string]string
}

func newPlaywrightPage(page playwright.Page, proxy *ProxyOptions) *PlaywrightPage {
	page.SetDefaultTimeout(DefaultTimeout)
	return &PlaywrightPage{
		Page:    page,
		proxy:   proxy,
		headers: make(map[string]string),
	}
}

// Authenticate checks the pair against the proxy credentials the browser
// was launched with. Chromium answers the proxy's challenges itself, so
// nothing is sent from here.
func (p *PlaywrightPage) Authenticate(username, password string) error {
	if !p.proxy.HasCredentials() {
		return fmt.Errorf("%w: browser was launched without proxy credentials", ErrProxyCredentials)
	}
	if p.proxy.Username != username || p.proxy.Password != password {
		return fmt.Errorf("%w: user %s", ErrProxyCredentials, username)
	}
	return nil
}

// AddInitScript registers script to run before page scripts.
func (p *PlaywrightPage) AddInitScript(script string) error {
	return p.Page.AddInitScript(playwright.Script{Content: playwright.String(script)})
}

// UserAgent evaluates navigator.userAgent.
func (p *PlaywrightPage) UserAgent() (string, error) {
	value, err := p.Page.Evaluate("() => navigator.userAgent")
	if err != nil {
		return "", err
	}
	ua, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("unexpected user agent type %T", value)
	}
	return ua, nil
}

// SetExtraHTTPHeaders merges headers with those set earlier. Playwright
// replaces the whole set on every call.
func (p *PlaywrightPage) SetExtraHTTPHeaders(headers map[string]string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for k, v := range headers {
		p.headers[k] = v
	}
	merged := make(map[string]string, len(p.headers))
	for k, v := range p.headers {
		merged[k] = v
	}
	return p.Page.SetExtraHTTPHeaders(merged)
}

// Goto navigates the page to url.
func (p *PlaywrightPage) Goto(url string, opts NavigateOptions) error {
	playwrightOpts := playwright.PageGotoOptions{}

	if opts.WaitUntil != "" {
		waitUntil := playwright.WaitUntilState(opts.WaitUntil)
		playwrightOpts.WaitUntil = &waitUntil
	}

	if opts.Timeout > 0 {
		playwrightOpts.Timeout = &opts.Timeout
	}

	if _, err := p.Page.Goto(url, playwrightOpts); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}

// Title returns the document title.
func (p *PlaywrightPage) Title() (string, error) {
	return p.Page.Title()
}

// Text returns the text content of the first element matching selector, or
// of the body when selector is empty.
func (p *PlaywrightPage) Text(selector string) (string, error) {
	if selector == "" {
		selector = "body"
	}

	element, err := p.Page.QuerySelector(selector)
	if err != nil {
		return "", fmt.Errorf("selector query failed: %w", err)
	}
	if element == nil {
		return "", fmt.Errorf("no element found matching selector: %s", selector)
	}

	content, err := element.TextContent()
	if err != nil {
		return "", fmt.Errorf("text extraction failed: %w", err)
	}
	return content, nil
}

// URL returns the current page URL.
func (p *PlaywrightPage) URL() string {
	return p.Page.URL()
}

// Close closes the page.
func (p *PlaywrightPage) Close() error {
	return p.Page.Close()
}
