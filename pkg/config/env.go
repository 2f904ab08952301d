package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Env is the environment-variable surface. It is read once at process
// start and never mutated afterwards.
type Env struct {
	Browser  BrowserEnv
	Proxy    ProxyEnv
	Crawlora CrawloraEnv
	Logging  LogEnv
}

// BrowserEnv holds visibility and executable settings.
type BrowserEnv struct {
	Show           bool   `envconfig:"SHOW_BROWSER" default:"false"`
	ForceShow      bool   `envconfig:"FORCE_SHOW_BROWSER" default:"false"`
	ForceHide      bool   `envconfig:"FORCE_HIDE_BROWSER" default:"false"`
	ExecutablePath string `envconfig:"BROWSER_EXECUTABLE_PATH"`
}

// ProxyEnv holds the operator-forced proxy. Port stays a string so that a
// non-numeric value surfaces as a proxy configuration error rather than a
// generic parse failure.
type ProxyEnv struct {
	ForceUse bool   `envconfig:"FORCE_USE_PROXY" default:"false"`
	Protocol string `envconfig:"FORCE_PROXY_PROTOCOL" default:"http"`
	Host     string `envconfig:"FORCE_PROXY_HOST"`
	Port     string `envconfig:"FORCE_PROXY_PORT"`
	Username string `envconfig:"FORCE_PROXY_USERNAME"`
	Password string `envconfig:"FORCE_PROXY_PASSWORD"`
}

// CrawloraEnv holds the tracking service settings.
type CrawloraEnv struct {
	AuthKey    string        `envconfig:"CRAWLORA_AUTH_KEY"`
	SequenceID string        `envconfig:"CRAWLORA_SEQUENCE_ID"`
	APIURL     string        `envconfig:"CRAWLORA_API_URL" default:"https://api.crawlora.com/api/v1"`
	APITimeout time.Duration `envconfig:"CRAWLORA_API_TIMEOUT" default:"30s"`
}

// LogEnv holds logging configuration.
type LogEnv struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
	File        string `envconfig:"LOG_FILE"`
}

// HasSequenceID reports whether status reporting is enabled for this process.
func (e *Env) HasSequenceID() bool {
	return e.Crawlora.SequenceID != ""
}

// LoadEnv loads an optional .env file from the working directory and then
// reads the environment.
func LoadEnv() (*Env, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: failed to load .env: %w", ErrConfiguration, err)
	}
	return ReadEnv()
}

// ReadEnv reads the environment without touching .env files.
func ReadEnv() (*Env, error) {
	var env Env
	if err := envconfig.Process("", &env); err != nil {
		return nil, fmt.Errorf("%w: failed to load environment: %w", ErrConfiguration, err)
	}
	return &env, nil
}
