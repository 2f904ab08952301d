// Package session runs caller tasks inside a freshly launched browser.
//
// A Runner resolves the launch configuration, launches through a Launcher,
// prepares exactly one page, authenticates against the proxy when
// credentials are present and then hands the task a Handles value. The
// browser is closed exactly once after it was launched, on every path.
//
// Basic usage:
//
//	env, _ := config.LoadEnv()
//	runner := session.NewDefault(env, logger)
//	defer runner.Close()
//
//	err := runner.Run(ctx, func(ctx context.Context, h *session.Handles) error {
//		if err := h.Page.Goto("https://example.com", engine.NavigateOptions{}); err != nil {
//			return err
//		}
//		title, err := h.Page.Title()
//		if err != nil {
//			return err
//		}
//		return h.Output.Create(ctx, map[string]string{"title": title})
//	}, config.Options{}, true)
//
// Status is reported to the tracking service only when reportStatus is
// set and CRAWLORA_SEQUENCE_ID names a tracked unit. Reporting failures
// are logged and never change the returned error.
package session
