// Package engine is the browser automation capability the session runner
// drives, with a Playwright-backed implementation.
//
// # Architecture
//
// The package is built around four concepts:
//
// 1. Engine: launches a Browser from LaunchOptions
// 2. Browser: one launched browser, exclusively owned by a session until Close
// 3. Page: a single tab the caller's task automates
// 4. Factory: an Engine plus a fixed list of Decorators (stealth,
// user-agent anonymization) registered once per process
//
// # Startup Arguments
//
// BuildArgs assembles the proxy flag, the serverless-Chromium compatibility
// flags and the fixed hardening flags, then Sanitize drops blank entries,
// anything matching DisallowedArgPatterns (explicit headless or single-process
// flags) and exact duplicates. Sanitize is idempotent and keeps the relative
// order of the arguments it retains.
//
// # Example Usage
//
//	factory := engine.NewDefaultFactory(engine.NewPlaywright())
//	browser, err := factory.Launch(ctx, engine.LaunchOptions{
//	    Headless: true,
//	    Args:     engine.BuildArgs(""),
//	})
//	if err != nil {
//	    return err
//	}
//	defer browser.Close()
//
//	page, err := browser.NewPage()
//	if err != nil {
//	    return err
//	}
//	if err := factory.PreparePage(page); err != nil {
//	    return err
//	}
//	err = page.Goto("https://example.com", engine.NavigateOptions{WaitUntil: "networkidle"})
package engine
