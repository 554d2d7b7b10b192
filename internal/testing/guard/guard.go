// Package guard forces SCHEDULER_TEST_MODE for test binaries that import it,
// so entry points return before touching Redis, Postgres or the network.
package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("SCHEDULER_TEST_MODE") == "" {
			_ = os.Setenv("SCHEDULER_TEST_MODE", "1")
		}
	})
}
