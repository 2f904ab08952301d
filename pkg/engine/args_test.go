package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize_DropsHeadlessAndEmpty(t *testing.T) {
	raw := []string{"--a", "--headless", "", "--b", "   ", "--headless='shell'", "--c", "--single-process"}

	got := Sanitize(raw)

	assert.Equal(t, []string{"--a", "--b", "--c"}, got)
}

func TestSanitize_RemovesDuplicatesKeepingFirst(t *testing.T) {
	got := Sanitize([]string{"--x", "--y", "--x", "--z", "--y"})
	assert.Equal(t, []string{"--x", "--y", "--z"}, got)
}

func TestSanitize_Idempotent(t *testing.T) {
	raw := append([]string{"--proxy-server=http://p:1", ""}, CompatibilityArgs...)
	raw = append(raw, HardeningArgs...)

	once := Sanitize(raw)
	twice := Sanitize(once)

	assert.Equal(t, once, twice)
}

func TestSanitize_KeepsSimilarPrefixes(t *testing.T) {
	// Only the exact headless flag and its =value forms are disallowed.
	got := Sanitize([]string{"--headless-mode-probe", "--headless=new"})
	assert.Equal(t, []string{"--headless-mode-probe"}, got)
}

func TestBuildArgs(t *testing.T) {
	t.Run("proxy flag first", func(t *testing.T) {
		args := BuildArgs("--proxy-server=http://proxy.test:8080")

		require.NotEmpty(t, args)
		assert.Equal(t, "--proxy-server=http://proxy.test:8080", args[0])
		assert.Equal(t, 1, countPrefix(args, "--proxy-server="))
	})

	t.Run("no proxy flag", func(t *testing.T) {
		args := BuildArgs("")
		assert.Equal(t, 0, countPrefix(args, "--proxy-server="))
		assert.NotContains(t, args, "")
	})

	t.Run("no disallowed flags", func(t *testing.T) {
		args := BuildArgs("")
		assert.NotContains(t, args, "--single-process")
		assert.NotContains(t, args, "--headless='shell'")
		assert.Contains(t, args, "--no-sandbox")
		assert.Contains(t, args, "--incognito")
		assert.Equal(t, 1, countPrefix(args, "--no-sandbox"))
	})

	t.Run("compatibility before hardening", func(t *testing.T) {
		args := BuildArgs("")
		assert.Less(t, indexOf(args, "--allow-pre-commit-input"), indexOf(args, "--flag-switches-begin"))
		assert.Less(t, indexOf(args, "--flag-switches-begin"), indexOf(args, "--flag-switches-end"))
	})
}

func TestNewArgFilter_InvalidPattern(t *testing.T) {
	_, err := NewArgFilter([]string{"--bad[pattern"})
	assert.Error(t, err)
}

func TestPortalArgs(t *testing.T) {
	assert.Nil(t, PortalArgs(nil))
	assert.Equal(t, []string{"--remote-debugging-port=9222"}, PortalArgs(&PortalOptions{}))
	assert.Equal(t,
		[]string{"--remote-debugging-port=9333", "--remote-debugging-address=0.0.0.0"},
		PortalArgs(&PortalOptions{Port: 9333, Address: "0.0.0.0"}),
	)
}

func countPrefix(args []string, prefix string) int {
	n := 0
	for _, a := range args {
		if len(a) >= len(prefix) && a[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}

func indexOf(args []string, target string) int {
	for i, a := range args {
		if a == target {
			return i
		}
	}
	return -1
}
