package config

import (
	"github.com/crawlora/sequence-runner/pkg/engine"
)

// Options are the caller-supplied overrides for one session. The zero value
// defers everything to the environment.
type Options struct {
	// ShowBrowser overrides the SHOW_BROWSER default when set
	ShowBrowser *bool `yaml:"show_browser,omitempty" json:"show_browser,omitempty"`

	// AuthKey overrides CRAWLORA_AUTH_KEY
	AuthKey string `yaml:"auth_key,omitempty" json:"auth_key,omitempty"`

	// Proxy is used as-is when more than one field is populated
	Proxy *Proxy `yaml:"proxy,omitempty" json:"proxy,omitempty"`

	// Portal enables remote debugging
	Portal *engine.PortalOptions `yaml:"portal,omitempty" json:"portal,omitempty"`

	// ExecutablePath overrides BROWSER_EXECUTABLE_PATH and the bundled binary
	ExecutablePath string `yaml:"executable_path,omitempty" json:"executable_path,omitempty"`
}

// Bool returns a pointer to b, for Options.ShowBrowser.
func Bool(b bool) *bool {
	return &b
}
