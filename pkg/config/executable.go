package config

import (
	"context"
	"fmt"
)

// BinaryLocator finds the bundled browser binary.
type BinaryLocator interface {
	ExecutablePath(ctx context.Context) (string, error)
}

// ResolveExecutablePath picks the caller path, else BROWSER_EXECUTABLE_PATH,
// else whatever locator finds.
func ResolveExecutablePath(ctx context.Context, explicit string, env *Env, locator BinaryLocator) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if env.Browser.ExecutablePath != "" {
		return env.Browser.ExecutablePath, nil
	}
	if locator == nil {
		return "", fmt.Errorf("%w: no executable path configured and no locator available", ErrBinaryNotFound)
	}

	path, err := locator.ExecutablePath(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrBinaryNotFound, err)
	}
	if path == "" {
		return "", fmt.Errorf("%w: locator returned an empty path", ErrBinaryNotFound)
	}
	return path, nil
}
