// Package main provides the sequence runner CLI. It visits a list of pages,
// one browser session per page, and records each page's title as output of
// the tracked sequence.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/crawlora/sequence-runner/pkg/batch"
	"github.com/crawlora/sequence-runner/pkg/config"
	"github.com/crawlora/sequence-runner/pkg/session"
)

const version = "0.1.0"

// CLIConfig holds command-line configuration
type CLIConfig struct {
	JobFile     string
	URLs        string
	Delay       int
	Show        bool
	ShowVersion bool
}

// PageResult is the output recorded for each visited page.
type PageResult struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	Text  string `json:"text,omitempty"`
}

func main() {
	cli := parseFlags()

	if cli.ShowVersion {
		fmt.Printf("Sequence Runner v%s\n", version)
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	if err := run(ctx, cli); err != nil {
		cancel()
		log.Printf("Execution failed: %v", err)
		os.Exit(1)
	}
	cancel()
}

// parseFlags parses command line flags
func parseFlags() *CLIConfig {
	cli := &CLIConfig{}

	flag.StringVar(&cli.JobFile, "job", "", "Path to job file (YAML)")
	flag.StringVar(&cli.URLs, "urls", "", "Comma-separated URLs to visit")
	flag.IntVar(&cli.Delay, "delay", -1, "Seconds to pause after each page (overrides the job file)")
	flag.BoolVar(&cli.Show, "show", false, "Show the browser window")
	flag.BoolVar(&cli.ShowVersion, "version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Sequence Runner - sequential browser sessions with status tracking\n\n")
		fmt.Fprintf(os.Stderr, "Usage: sequence-runner [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  sequence-runner -urls https://example.com,https://example.org\n\n")
		fmt.Fprintf(os.Stderr, "  sequence-runner -job job.yaml -show\n\n")
		fmt.Fprintf(os.Stderr, "Environment: CRAWLORA_AUTH_KEY is required, CRAWLORA_SEQUENCE_ID enables status reporting.\n")
	}

	flag.Parse()
	return cli
}

func run(ctx context.Context, cli *CLIConfig) error {
	job, err := loadJob(cli)
	if err != nil {
		return err
	}
	if err := job.Validate(); err != nil {
		return fmt.Errorf("invalid job: %w", err)
	}

	env, err := config.LoadEnv()
	if err != nil {
		return err
	}

	logger := session.NewLogger("sequence-runner", env)
	defer logger.Close()

	runner := session.NewDefault(env, logger)
	defer func() {
		if err := runner.Close(); err != nil {
			logger.Warnf("failed to stop engine: %v", err)
		}
	}()

	logger.Infof("visiting %d pages", len(job.URLs))

	return batch.Run(ctx, runner, job.URLs, visit(job), job.Options, batch.WithDelay(job.Delay))
}

// visit loads one page and records its title, plus the selector text when
// the job names one.
func visit(job *Job) batch.ItemFunc[string] {
	return func(ctx context.Context, h *session.Handles, url string) error {
		if err := h.Page.Goto(url, job.Navigate()); err != nil {
			return err
		}

		result := PageResult{URL: h.Page.URL()}

		title, err := h.Page.Title()
		if err != nil {
			return fmt.Errorf("failed to read title of %s: %w", url, err)
		}
		result.Title = title

		if job.Selector != "" {
			text, err := h.Page.Text(job.Selector)
			if err != nil {
				return fmt.Errorf("failed to read %s on %s: %w", job.Selector, url, err)
			}
			result.Text = text
		}

		h.Debug.Infof("visited %s: %q", result.URL, result.Title)
		return h.Output.Create(ctx, result)
	}
}
