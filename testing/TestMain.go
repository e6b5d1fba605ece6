// Package testing is imported for its side effects by packages whose tests
// build the HTTP stack. It switches the binaries into test mode and provides
// throwaway secrets so LoadConfig succeeds without a .env file.
package testing

import (
	"os"
	"sync"
	stdtesting "testing"
)

var defaults = map[string]string{
	"COTIZACIONES_TEST_MODE": "1",
	"SESSION_SECRET":         "test-session-secret",
	"CSRF_SECRET":            "test-csrf-secret",
	"CLIENT_TOKEN_SECRET":    "test-client-secret",
	"GOTENBERG_URL":          "http://127.0.0.1:0",
}

var once sync.Once

func applyDefaults() {
	once.Do(func() {
		for key, value := range defaults {
			if _, ok := os.LookupEnv(key); !ok {
				_ = os.Setenv(key, value)
			}
		}
	})
}

func init() {
	applyDefaults()
}

// TestMain can be called from a package's own TestMain.
func TestMain(m *stdtesting.M) {
	applyDefaults()
	os.Exit(m.Run())
}
