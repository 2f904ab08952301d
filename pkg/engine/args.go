package engine

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// CompatibilityArgs are the flags the serverless Chromium distribution needs
// to start on minimal Linux hosts.
var CompatibilityArgs = []string{
	"--allow-pre-commit-input",
	"--disable-background-networking",
	"--disable-background-timer-throttling",
	"--disable-backgrounding-occluded-windows",
	"--disable-breakpad",
	"--disable-client-side-phishing-detection",
	"--disable-component-extensions-with-background-pages",
	"--disable-component-update",
	"--disable-default-apps",
	"--disable-dev-shm-usage",
	"--disable-extensions",
	"--disable-hang-monitor",
	"--disable-ipc-flooding-protection",
	"--disable-popup-blocking",
	"--disable-prompt-on-repost",
	"--disable-renderer-backgrounding",
	"--disable-sync",
	"--force-color-profile=srgb",
	"--metrics-recording-only",
	"--no-first-run",
	"--password-store=basic",
	"--use-mock-keychain",
	"--disable-domain-reliability",
	"--disable-print-preview",
	"--disable-speech-api",
	"--disk-cache-size=33554432",
	"--mute-audio",
	"--no-default-browser-check",
	"--no-pings",
	"--single-process",
	"--disable-features=Translate,BackForwardCache,AcceptCHFrame,MediaRouter,OptimizationHints",
	"--enable-features=NetworkServiceInProcess2",
	"--ignore-gpu-blocklist",
	"--in-process-gpu",
	"--window-size=1920,1080",
	"--use-gl=angle",
	"--use-angle=swiftshader",
	"--allow-running-insecure-content",
	"--disable-setuid-sandbox",
	"--disable-site-isolation-trials",
	"--disable-web-security",
	"--no-sandbox",
	"--no-zygote",
	"--headless='shell'",
}

// HardeningArgs are always passed on top of CompatibilityArgs.
var HardeningArgs = []string{
	"--no-sandbox",
	"--disable-web-security",
	"--disable-features=IsolateOrigins,site-per-process,SitePerProcess",
	"--flag-switches-begin",
	"--disable-site-isolation-trials",
	"--flag-switches-end",
	"--incognito",
	"--disable-setuid-sandbox",
	"--disable-dev-shm-usage",
	"--single-process",
}

// DisallowedArgPatterns match flags the desktop distribution rejects or that
// conflict with options the engine sets itself (visibility is a launch option,
// never a raw flag).
var DisallowedArgPatterns = []string{
	"--headless",
	"--headless=*",
	"--single-process",
}

// ArgFilter drops startup arguments matching denied glob patterns.
type ArgFilter struct {
	deniedPatterns []glob.Glob
}

// NewArgFilter compiles the denied patterns.
func NewArgFilter(denied []string) (*ArgFilter, error) {
	f := &ArgFilter{}

	for _, pattern := range denied {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid denied argument pattern '%s': %w", pattern, err)
		}
		f.deniedPatterns = append(f.deniedPatterns, g)
	}

	return f, nil
}

// IsAllowed returns false for blank arguments and for anything a denied
// pattern matches.
func (f *ArgFilter) IsAllowed(arg string) bool {
	if strings.TrimSpace(arg) == "" {
		return false
	}

	for _, pattern := range f.deniedPatterns {
		if pattern.Match(arg) {
			return false
		}
	}

	return true
}

// Sanitize returns the allowed arguments in their original order with exact
// duplicates removed (the first occurrence wins). Sanitize(Sanitize(a)) equals
// Sanitize(a).
func (f *ArgFilter) Sanitize(args []string) []string {
	seen := make(map[string]struct{}, len(args))
	out := make([]string, 0, len(args))

	for _, arg := range args {
		if !f.IsAllowed(arg) {
			continue
		}
		if _, dup := seen[arg]; dup {
			continue
		}
		seen[arg] = struct{}{}
		out = append(out, arg)
	}

	return out
}

var defaultArgFilter = mustArgFilter(DisallowedArgPatterns)

func mustArgFilter(patterns []string) *ArgFilter {
	f, err := NewArgFilter(patterns)
	if err != nil {
		panic(err)
	}
	return f
}

// Sanitize applies the default filter built from DisallowedArgPatterns.
func Sanitize(args []string) []string {
	return defaultArgFilter.Sanitize(args)
}

// BuildArgs assembles the final startup argument list: the proxy flag (empty
// when no proxy is used), the compatibility flags, then the hardening flags,
// sanitized.
func BuildArgs(proxyFlag string) []string {
	raw := make([]string, 0, 1+len(CompatibilityArgs)+len(HardeningArgs))
	raw = append(raw, proxyFlag)
	raw = append(raw, CompatibilityArgs...)
	raw = append(raw, HardeningArgs...)
	return Sanitize(raw)
}

// PortalArgs returns the remote-debugging flags for opts.
func PortalArgs(opts *PortalOptions) []string {
	if opts == nil {
		return nil
	}

	port := opts.Port
	if port == 0 {
		port = DefaultPortalPort
	}

	args := []string{fmt.Sprintf("--remote-debugging-port=%d", port)}
	if opts.Address != "" {
		args = append(args, "--remote-debugging-address="+opts.Address)
	}
	return args
}
