package main

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/crawlora/sequence-runner/pkg/batch"
	"github.com/crawlora/sequence-runner/pkg/config"
	"github.com/crawlora/sequence-runner/pkg/engine"
)

// Job describes one batch: the pages to visit and how to visit them.
type Job struct {
	URLs []string `yaml:"urls"`

	// Selector, when set, is extracted as text in addition to the title
	Selector string `yaml:"selector,omitempty"`

	// WaitUntil is one of load, domcontentloaded, networkidle, commit
	WaitUntil string `yaml:"wait_until,omitempty"`

	// Delay is the pause in seconds after each page
	Delay int `yaml:"delay"`

	Options config.Options `yaml:"options,omitempty"`
}

// DefaultJob returns a job with the default pacing.
func DefaultJob() *Job {
	return &Job{
		WaitUntil: "load",
		Delay:     batch.DefaultDelay,
	}
}

// Validate checks the job before any browser is launched.
func (j *Job) Validate() error {
	if len(j.URLs) == 0 {
		return fmt.Errorf("at least one url is required")
	}
	for _, raw := range j.URLs {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid url %q", raw)
		}
	}
	switch j.WaitUntil {
	case "", "load", "domcontentloaded", "networkidle", "commit":
	default:
		return fmt.Errorf("invalid wait_until: %s", j.WaitUntil)
	}
	if j.Delay < 0 {
		return fmt.Errorf("delay must not be negative")
	}
	return nil
}

// Navigate returns the navigation options for every page of the job.
func (j *Job) Navigate() engine.NavigateOptions {
	return engine.NavigateOptions{WaitUntil: j.WaitUntil}
}

// loadJob builds the job from the file when one is given, then appends any
// URLs passed on the command line.
func loadJob(cli *CLIConfig) (*Job, error) {
	job := DefaultJob()

	if cli.JobFile != "" {
		data, err := os.ReadFile(cli.JobFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read job file: %w", err)
		}
		if err := yaml.Unmarshal(data, job); err != nil {
			return nil, fmt.Errorf("failed to parse job file: %w", err)
		}
	}

	for _, raw := range strings.Split(cli.URLs, ",") {
		if raw = strings.TrimSpace(raw); raw != "" {
			job.URLs = append(job.URLs, raw)
		}
	}
	if cli.Show {
		job.Options.ShowBrowser = config.Bool(true)
	}
	if cli.Delay >= 0 {
		job.Delay = cli.Delay
	}

	return job, nil
}
