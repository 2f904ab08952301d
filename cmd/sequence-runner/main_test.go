package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crawlora/sequence-runner/pkg/engine"
	"github.com/crawlora/sequence-runner/pkg/engine/enginetest"
	"github.com/crawlora/sequence-runner/pkg/logging"
	"github.com/crawlora/sequence-runner/pkg/session"
)

func writeJob(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "job.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadJob_FromFile(t *testing.T) {
	path := writeJob(t, `
urls:
  - https://example.com
selector: h1
wait_until: networkidle
delay: 4
options:
  show_browser: false
  auth_key: file-key
  proxy:
    protocol: socks5
    host: proxy.test
    port: 1080
`)

	job, err := loadJob(&CLIConfig{JobFile: path, Delay: -1})
	require.NoError(t, err)
	require.NoError(t, job.Validate())

	assert.Equal(t, []string{"https://example.com"}, job.URLs)
	assert.Equal(t, "h1", job.Selector)
	assert.Equal(t, 4, job.Delay)
	assert.Equal(t, "networkidle", job.Navigate().WaitUntil)
	require.NotNil(t, job.Options.ShowBrowser)
	assert.False(t, *job.Options.ShowBrowser)
	assert.Equal(t, "file-key", job.Options.AuthKey)
	assert.Equal(t, 1080, job.Options.Proxy.Port)
}

func TestLoadJob_FlagsOverride(t *testing.T) {
	path := writeJob(t, "urls: [https://a.test]\ndelay: 4\n")

	job, err := loadJob(&CLIConfig{JobFile: path, URLs: "https://b.test, ,https://c.test", Delay: 0, Show: true})
	require.NoError(t, err)

	assert.Equal(t, []string{"https://a.test", "https://b.test", "https://c.test"}, job.URLs)
	assert.Equal(t, 0, job.Delay)
	assert.True(t, *job.Options.ShowBrowser)
}

func TestLoadJob_Defaults(t *testing.T) {
	job, err := loadJob(&CLIConfig{URLs: "https://a.test", Delay: -1})
	require.NoError(t, err)

	assert.Equal(t, 2, job.Delay)
	assert.Equal(t, "load", job.WaitUntil)
	assert.Nil(t, job.Options.ShowBrowser)
}

func TestLoadJob_Errors(t *testing.T) {
	_, err := loadJob(&CLIConfig{JobFile: filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(t, err)

	_, err = loadJob(&CLIConfig{JobFile: writeJob(t, "urls: {not: a list")})
	assert.Error(t, err)
}

func TestJobValidate(t *testing.T) {
	tests := []struct {
		name    string
		job     Job
		wantErr bool
	}{
		{"valid", Job{URLs: []string{"https://a.test"}}, false},
		{"no urls", Job{}, true},
		{"relative url", Job{URLs: []string{"/path"}}, true},
		{"bad wait", Job{URLs: []string{"https://a.test"}, WaitUntil: "forever"}, true},
		{"negative delay", Job{URLs: []string{"https://a.test"}, Delay: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.job.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

type recordingOutput struct {
	records []any
}

func (o *recordingOutput) Create(ctx context.Context, data any) error {
	o.records = append(o.records, data)
	return nil
}

func TestVisit(t *testing.T) {
	browser := &enginetest.Engine{InitialPages: 1}
	b, err := browser.Launch(context.Background(), engine.LaunchOptions{})
	require.NoError(t, err)
	page := b.Pages()[0]

	out := &recordingOutput{}
	h := &session.Handles{Browser: b, Page: page, Output: out, Debug: logging.Nop()}

	job := DefaultJob()
	job.Selector = "h1"
	require.NoError(t, visit(job)(context.Background(), h, "https://a.test"))

	require.Len(t, out.records, 1)
	assert.Equal(t, PageResult{URL: "https://a.test", Title: "Title of https://a.test"}, out.records[0])
}
