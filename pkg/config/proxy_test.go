package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func forcedEnv() *Env {
	return &Env{Proxy: ProxyEnv{
		ForceUse: true,
		Protocol: "http",
		Host:     "proxy.test",
		Port:     "8080",
		Username: "u",
		Password: "p",
	}}
}

func TestResolveProxy_Forced(t *testing.T) {
	p, ignored, err := ResolveProxy(nil, forcedEnv())
	require.NoError(t, err)
	require.NotNil(t, p)

	assert.False(t, ignored)
	assert.Equal(t, "http://proxy.test:8080", p.ServerURL())
	assert.Equal(t, "--proxy-server=http://proxy.test:8080", p.Flag())
	assert.True(t, p.HasCredentials())
	assert.Equal(t, "u", p.Credential.Username)
	assert.Equal(t, "p", p.Credential.Password)
}

func TestResolveProxy_ForcedDefaultsProtocol(t *testing.T) {
	env := forcedEnv()
	env.Proxy.Protocol = ""

	p, _, err := ResolveProxy(nil, env)
	require.NoError(t, err)
	assert.Equal(t, ProtocolHTTP, p.Protocol)
}

func TestResolveProxy_ForcedErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ProxyEnv)
	}{
		{"non-numeric port", func(e *ProxyEnv) { e.Port = "eighty" }},
		{"empty port", func(e *ProxyEnv) { e.Port = "" }},
		{"zero port", func(e *ProxyEnv) { e.Port = "0" }},
		{"missing username", func(e *ProxyEnv) { e.Username = "" }},
		{"missing password", func(e *ProxyEnv) { e.Password = "" }},
		{"missing host", func(e *ProxyEnv) { e.Host = "" }},
		{"bad protocol", func(e *ProxyEnv) { e.Protocol = "ftp" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := forcedEnv()
			tt.mutate(&env.Proxy)

			p, _, err := ResolveProxy(nil, env)
			require.Error(t, err)
			assert.Nil(t, p)
			assert.True(t, errors.Is(err, ErrProxyConfig))
			assert.True(t, errors.Is(err, ErrConfiguration))
		})
	}
}

func TestResolveProxy_CallerExplicit(t *testing.T) {
	caller := &Proxy{Protocol: "socks5", Host: "10.0.0.1", Port: 1080}

	p, ignored, err := ResolveProxy(caller, forcedEnv())
	require.NoError(t, err)

	assert.False(t, ignored)
	assert.Equal(t, "socks5://10.0.0.1:1080", p.ServerURL())
	assert.False(t, p.HasCredentials())
	assert.NotSame(t, caller, p)
}

func TestResolveProxy_CallerInvalid(t *testing.T) {
	_, _, err := ResolveProxy(&Proxy{Protocol: "http", Port: 8080}, &Env{})
	assert.ErrorIs(t, err, ErrProxyConfig)
}

func TestResolveProxy_SingleFieldCaller(t *testing.T) {
	t.Run("falls back to forced proxy", func(t *testing.T) {
		p, ignored, err := ResolveProxy(&Proxy{Host: "only.host"}, forcedEnv())
		require.NoError(t, err)
		assert.True(t, ignored)
		assert.Equal(t, "proxy.test", p.Host)
	})

	t.Run("no proxy without force", func(t *testing.T) {
		p, ignored, err := ResolveProxy(&Proxy{Host: "only.host"}, &Env{})
		require.NoError(t, err)
		assert.True(t, ignored)
		assert.Nil(t, p)
	})
}

func TestResolveProxy_NoneConfigured(t *testing.T) {
	p, ignored, err := ResolveProxy(nil, &Env{})
	require.NoError(t, err)
	assert.False(t, ignored)
	assert.Nil(t, p)
}

func TestProxy_HasCredentials(t *testing.T) {
	tests := []struct {
		name string
		p    *Proxy
		want bool
	}{
		{"nil proxy", nil, false},
		{"no credential", &Proxy{}, false},
		{"username only", &Proxy{Credential: &Credential{Username: "u"}}, false},
		{"password only", &Proxy{Credential: &Credential{Password: "p"}}, false},
		{"both", &Proxy{Credential: &Credential{Username: "u", Password: "p"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.p.HasCredentials())
		})
	}
}

func TestProxy_StringHidesPassword(t *testing.T) {
	p := &Proxy{Protocol: "http", Host: "h", Port: 1, Credential: &Credential{Username: "u", Password: "secret"}}
	assert.NotContains(t, p.String(), "secret")
	assert.Equal(t, "none", (*Proxy)(nil).String())
}

func TestProxy_Validate(t *testing.T) {
	tests := []struct {
		name    string
		p       Proxy
		wantErr bool
	}{
		{"http host", Proxy{Protocol: "http", Host: "proxy.test", Port: 8080}, false},
		{"ipv4", Proxy{Protocol: "socks5", Host: "10.0.0.1", Port: 1080}, false},
		{"ipv6", Proxy{Protocol: "https", Host: "::1", Port: 443}, false},
		{"unknown protocol", Proxy{Protocol: "ftp", Host: "proxy.test", Port: 21}, true},
		{"invalid host", Proxy{Protocol: "http", Host: "bad host!", Port: 8080}, true},
		{"port out of range", Proxy{Protocol: "http", Host: "proxy.test", Port: 70000}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrProxyConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProxy_LaunchOptionsDropsHalfCredential(t *testing.T) {
	p := &Proxy{Protocol: "http", Host: "proxy.test", Port: 8080, Credential: &Credential{Username: "u"}}

	opts := p.LaunchOptions()
	assert.Equal(t, "http://proxy.test:8080", opts.Server)
	assert.Empty(t, opts.Username)
	assert.Empty(t, opts.Password)
	assert.Nil(t, (*Proxy)(nil).LaunchOptions())
}
