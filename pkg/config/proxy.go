package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"golang.org/x/net/idna"

	"github.com/crawlora/sequence-runner/pkg/engine"
)

// Supported proxy protocols
const (
	ProtocolHTTP   = "http"
	ProtocolHTTPS  = "https"
	ProtocolSOCKS4 = "socks4"
	ProtocolSOCKS5 = "socks5"
)

// Proxy describes an upstream proxy.
type Proxy struct {
	Protocol   string      `yaml:"protocol,omitempty" json:"protocol,omitempty"`
	Host       string      `yaml:"host,omitempty" json:"host,omitempty"`
	Port       int         `yaml:"port,omitempty" json:"port,omitempty"`
	Credential *Credential `yaml:"credential,omitempty" json:"credential,omitempty"`
}

// Credential is a proxy username/password pair.
type Credential struct {
	Username string `yaml:"user_name,omitempty" json:"user_name,omitempty"`
	Password string `yaml:"password,omitempty" json:"password,omitempty"`
}

// populatedFields counts the descriptor fields that carry a value.
func (p *Proxy) populatedFields() int {
	if p == nil {
		return 0
	}
	n := 0
	if p.Protocol != "" {
		n++
	}
	if p.Host != "" {
		n++
	}
	if p.Port != 0 {
		n++
	}
	if p.Credential != nil {
		n++
	}
	return n
}

// HasCredentials is true only when both username and password are set. A
// proxy with just one of the two is treated as unauthenticated.
func (p *Proxy) HasCredentials() bool {
	return p != nil && p.Credential != nil &&
		p.Credential.Username != "" && p.Credential.Password != ""
}

// ServerURL returns <protocol>://<host>:<port>.
func (p *Proxy) ServerURL() string {
	return p.Protocol + "://" + net.JoinHostPort(p.Host, strconv.Itoa(p.Port))
}

// Flag returns the --proxy-server startup argument.
func (p *Proxy) Flag() string {
	return "--proxy-server=" + p.ServerURL()
}

// LaunchOptions converts the proxy for the engine. Credentials are only
// carried when both halves are set. A nil proxy yields nil.
func (p *Proxy) LaunchOptions() *engine.ProxyOptions {
	if p == nil {
		return nil
	}
	opts := &engine.ProxyOptions{Server: p.ServerURL()}
	if p.HasCredentials() {
		opts.Username = p.Credential.Username
		opts.Password = p.Credential.Password
	}
	return opts
}

// String renders the proxy without its password.
func (p *Proxy) String() string {
	if p == nil {
		return "none"
	}
	if p.Credential != nil && p.Credential.Username != "" {
		return fmt.Sprintf("%s (user %s)", p.ServerURL(), p.Credential.Username)
	}
	return p.ServerURL()
}

// Validate checks the protocol, host and port.
func (p *Proxy) Validate() error {
	switch p.Protocol {
	case ProtocolHTTP, ProtocolHTTPS, ProtocolSOCKS4, ProtocolSOCKS5:
	default:
		return fmt.Errorf("%w: unsupported protocol %q", ErrProxyConfig, p.Protocol)
	}
	if p.Host == "" {
		return fmt.Errorf("%w: host is required", ErrProxyConfig)
	}
	if net.ParseIP(p.Host) == nil {
		if _, err := idna.Lookup.ToASCII(p.Host); err != nil {
			return fmt.Errorf("%w: invalid host %q: %w", ErrProxyConfig, p.Host, err)
		}
	}
	if p.Port < 1 || p.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrProxyConfig, p.Port)
	}
	return nil
}

// ResolveProxy decides which proxy, if any, a session uses.
//
// A caller descriptor with more than one populated field is explicit and is
// used as given. Otherwise FORCE_USE_PROXY builds one from the FORCE_PROXY_*
// variables, failing hard when they are incomplete. Otherwise there is no
// proxy; ignored reports whether a caller descriptor was discarded.
func ResolveProxy(caller *Proxy, env *Env) (proxy *Proxy, ignored bool, err error) {
	if caller.populatedFields() > 1 {
		p := *caller
		if p.Credential != nil {
			cred := *p.Credential
			p.Credential = &cred
		}
		if err := p.Validate(); err != nil {
			return nil, false, err
		}
		return &p, false, nil
	}

	ignored = caller.populatedFields() == 1

	if !env.Proxy.ForceUse {
		return nil, ignored, nil
	}

	p, err := forcedProxy(&env.Proxy)
	if err != nil {
		return nil, ignored, err
	}
	return p, ignored, nil
}

func forcedProxy(e *ProxyEnv) (*Proxy, error) {
	port, err := strconv.Atoi(strings.TrimSpace(e.Port))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid port value %q cannot convert to number", ErrProxyConfig, e.Port)
	}

	if e.Username == "" || e.Password == "" || e.Host == "" || port == 0 {
		return nil, fmt.Errorf("%w: credentials not found for forced proxy", ErrProxyConfig)
	}

	protocol := e.Protocol
	if protocol == "" {
		protocol = ProtocolHTTP
	}

	p := &Proxy{
		Protocol: protocol,
		Host:     e.Host,
		Port:     port,
		Credential: &Credential{
			Username: e.Username,
			Password: e.Password,
		},
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}
