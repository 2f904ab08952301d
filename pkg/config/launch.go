package config

import (
	"context"
	"fmt"

	"github.com/crawlora/sequence-runner/pkg/engine"
)

// LaunchConfiguration is assembled once per session and discarded after
// launch. Treat it as immutable.
type LaunchConfiguration struct {
	// Headless is the single resolved visibility value
	Headless bool

	// VisibilitySource names the layer that decided Headless
	VisibilitySource string

	// AuthKey authorizes calls to the tracking service
	AuthKey string

	// Proxy is nil when no proxy is used
	Proxy *Proxy

	// ProxyIgnored is set when a single-field caller proxy was discarded
	ProxyIgnored bool

	Portal         *engine.PortalOptions
	ExecutablePath string

	// Args are the final, sanitized startup arguments
	Args []string
}

// LaunchOptions converts the configuration into engine launch options.
func (c *LaunchConfiguration) LaunchOptions() engine.LaunchOptions {
	return engine.LaunchOptions{
		Headless:       c.Headless,
		ExecutablePath: c.ExecutablePath,
		Args:           append([]string(nil), c.Args...),
		Portal:         c.Portal,
		Proxy:          c.Proxy.LaunchOptions(),
	}
}

// ResolveAuthKey returns the caller key, else CRAWLORA_AUTH_KEY.
func ResolveAuthKey(opts Options, env *Env) (string, error) {
	if opts.AuthKey != "" {
		return opts.AuthKey, nil
	}
	if env.Crawlora.AuthKey != "" {
		return env.Crawlora.AuthKey, nil
	}
	return "", fmt.Errorf("%w: no auth key found (set CRAWLORA_AUTH_KEY)", ErrConfiguration)
}

// Resolve merges env and caller options into a LaunchConfiguration. Nothing
// is launched; a failure here means no resource exists yet.
func Resolve(ctx context.Context, opts Options, env *Env, locator BinaryLocator) (*LaunchConfiguration, error) {
	authKey, err := ResolveAuthKey(opts, env)
	if err != nil {
		return nil, err
	}

	show, source := ResolveVisibility(opts.ShowBrowser, env)

	proxy, ignored, err := ResolveProxy(opts.Proxy, env)
	if err != nil {
		return nil, err
	}

	executablePath, err := ResolveExecutablePath(ctx, opts.ExecutablePath, env, locator)
	if err != nil {
		return nil, err
	}

	proxyFlag := ""
	if proxy != nil {
		proxyFlag = proxy.Flag()
	}

	return &LaunchConfiguration{
		Headless:         !show,
		VisibilitySource: source,
		AuthKey:          authKey,
		Proxy:            proxy,
		ProxyIgnored:     ignored,
		Portal:           opts.Portal,
		ExecutablePath:   executablePath,
		Args:             engine.BuildArgs(proxyFlag),
	}, nil
}
