package engine

import (
	"context"
	"fmt"
)

// Factory launches browsers through an Engine with a fixed set of
// decorators. The decorator list is set once at construction and never
// changes, so sessions do not depend on process-wide registration state.
type Factory struct {
	engine     Engine
	decorators []Decorator
}

// NewFactory creates a factory for eng with the given decorators, applied in order.
func NewFactory(eng Engine, decorators ...Decorator) *Factory {
	return &Factory{
		engine:     eng,
		decorators: append([]Decorator(nil), decorators...),
	}
}

// NewDefaultFactory creates a factory with Stealth and AnonymizeUA registered.
func NewDefaultFactory(eng Engine) *Factory {
	return NewFactory(eng, NewStealth(), NewAnonymizeUA())
}

// Decorators returns the registered decorator names.
func (f *Factory) Decorators() []string {
	names := make([]string, 0, len(f.decorators))
	for _, d := range f.decorators {
		names = append(names, d.Name())
	}
	return names
}

// Launch applies every decorator and the portal options to a copy of opts,
// re-sanitizes the arguments and launches.
func (f *Factory) Launch(ctx context.Context, opts LaunchOptions) (Browser, error) {
	final := opts
	final.Args = append([]string(nil), opts.Args...)

	for _, d := range f.decorators {
		d.DecorateLaunch(&final)
	}
	final.Args = append(final.Args, PortalArgs(final.Portal)...)
	final.Args = Sanitize(final.Args)

	return f.engine.Launch(ctx, final)
}

// PreparePage runs every decorator against page.
func (f *Factory) PreparePage(page Page) error {
	for _, d := range f.decorators {
		if err := d.DecoratePage(page); err != nil {
			return fmt.Errorf("decorator %s: %w", d.Name(), err)
		}
	}
	return nil
}

// Shutdown stops the engine when it holds a driver process.
func (f *Factory) Shutdown() error {
	if s, ok := f.engine.(interface{ Shutdown() error }); ok {
		return s.Shutdown()
	}
	return nil
}
