package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTestMode(t *testing.T) {
	cases := map[string]bool{
		"1":     true,
		"true":  true,
		" TRUE": true,
		"0":     false,
		"":      false,
		"yes":   false,
	}
	for raw, want := range cases {
		assert.Equal(t, want, parseTestMode(raw), "raw=%q", raw)
	}
}

func TestRefreshTestMode(t *testing.T) {
	t.Setenv(TestModeEnv, "0")
	RefreshTestMode()
	assert.False(t, InTestMode())

	t.Setenv(TestModeEnv, "1")
	assert.False(t, InTestMode(), "cached until refreshed")

	RefreshTestMode()
	assert.True(t, InTestMode())
	t.Cleanup(RefreshTestMode)
}
