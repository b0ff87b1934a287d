// Package guard switches binaries into test mode when imported by a test.
package guard

import (
	"os"
	"sync"
)

// Env is the variable checked by the binaries before touching the network.
const Env = "MYCOLEDGER_TEST_MODE"

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv(Env) == "" {
			_ = os.Setenv(Env, "1")
		}
	})
}
