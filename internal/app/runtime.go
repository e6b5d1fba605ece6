package app

import (
	"os"
	"strconv"
	"strings"
	"sync"
)

// TestModeEnv makes the binaries exit before opening any connection.
const TestModeEnv = "COTIZACIONES_TEST_MODE"

var testMode struct {
	sync.Mutex
	loaded bool
	on     bool
}

func parseTestMode(raw string) bool {
	on, err := strconv.ParseBool(strings.TrimSpace(raw))
	return err == nil && on
}

// InTestMode reports whether startup should be skipped. The variable is read
// on first use; call RefreshTestMode after changing it.
func InTestMode() bool {
	testMode.Lock()
	defer testMode.Unlock()
	if !testMode.loaded {
		testMode.on = parseTestMode(os.Getenv(TestModeEnv))
		testMode.loaded = true
	}
	return testMode.on
}

// RefreshTestMode re-reads the environment.
func RefreshTestMode() {
	testMode.Lock()
	testMode.loaded = false
	testMode.Unlock()
}
