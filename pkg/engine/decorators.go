package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Decorator adjusts launches and prepares pages before any task code sees
// them. Decorators are registered once on a Factory and apply to every
// session it launches.
type Decorator interface {
	Name() string

	// DecorateLaunch may append startup arguments or flip launch options
	DecorateLaunch(opts *LaunchOptions)

	// DecoratePage runs once on the session's working page
	DecoratePage(page Page) error
}

// stealthScript hides the most common automation tells.
const stealthScript = `(() => {
  Object.defineProperty(Navigator.prototype, 'webdriver', { get: () => undefined });
  if (!window.chrome) {
    window.chrome = { runtime: {}, app: { isInstalled: false } };
  }
  Object.defineProperty(navigator, 'languages', { get: () => ['en-US', 'en'] });
  if (navigator.plugins.length === 0) {
    Object.defineProperty(navigator, 'plugins', { get: () => [1, 2, 3, 4, 5] });
  }
  const query = window.navigator.permissions && window.navigator.permissions.query;
  if (query) {
    window.navigator.permissions.query = (p) =>
      p && p.name === 'notifications'
        ? Promise.resolve({ state: Notification.permission })
        : query(p);
  }
})();`

// Stealth masks automation fingerprints.
type Stealth struct{}

// NewStealth creates the stealth decorator.
func NewStealth() *Stealth {
	return &Stealth{}
}

// Name returns the decorator name.
func (s *Stealth) Name() string {
	return "stealth"
}

// DecorateLaunch disables the AutomationControlled blink feature.
func (s *Stealth) DecorateLaunch(opts *LaunchOptions) {
	opts.Args = append(opts.Args, "--disable-blink-features=AutomationControlled")
}

// DecoratePage installs the stealth init script.
func (s *Stealth) DecoratePage(page Page) error {
	if err := page.AddInitScript(stealthScript); err != nil {
		return fmt.Errorf("failed to add stealth script: %w", err)
	}
	return nil
}

var platformPattern = regexp.MustCompile(`\([^)]+\)`)

// WindowsPlatform is the platform token AnonymizeUA reports.
const WindowsPlatform = "(Windows NT 10.0; Win64; x64)"

// AnonymizeUA rewrites the user agent so it neither reveals headless mode nor
// the host platform.
type AnonymizeUA struct {
	// StripHeadless replaces HeadlessChrome with Chrome
	StripHeadless bool

	// MakeWindows replaces the platform token with WindowsPlatform
	MakeWindows bool
}

// NewAnonymizeUA creates the decorator with both rewrites enabled.
func NewAnonymizeUA() *AnonymizeUA {
	return &AnonymizeUA{StripHeadless: true, MakeWindows: true}
}

// Name returns the decorator name.
func (a *AnonymizeUA) Name() string {
	return "anonymize-ua"
}

// DecorateLaunch is a no-op; the user agent is only known once a page exists.
func (a *AnonymizeUA) DecorateLaunch(opts *LaunchOptions) {}

// DecoratePage overrides the user agent header and navigator.userAgent.
func (a *AnonymizeUA) DecoratePage(page Page) error {
	ua, err := page.UserAgent()
	if err != nil {
		return fmt.Errorf("failed to read user agent: %w", err)
	}

	anonymized := a.Anonymize(ua)
	if anonymized == ua {
		return nil
	}

	if err := page.SetExtraHTTPHeaders(map[string]string{"User-Agent": anonymized}); err != nil {
		return fmt.Errorf("failed to set user agent header: %w", err)
	}

	script := fmt.Sprintf(
		"Object.defineProperty(Navigator.prototype, 'userAgent', { get: () => %s });",
		strconv.Quote(anonymized),
	)
	if err := page.AddInitScript(script); err != nil {
		return fmt.Errorf("failed to override navigator.userAgent: %w", err)
	}
	return nil
}

// Anonymize applies the configured rewrites to ua.
func (a *AnonymizeUA) Anonymize(ua string) string {
	if a.StripHeadless {
		ua = strings.ReplaceAll(ua, "HeadlessChrome/", "Chrome/")
	}
	if a.MakeWindows {
		loc := platformPattern.FindStringIndex(ua)
		if loc != nil {
			ua = ua[:loc[0]] + WindowsPlatform + ua[loc[1]:]
		}
	}
	return ua
}
