// Package testutil holds helpers shared by ReelTune tests.
package testutil

import (
	"testing"

	"go.uber.org/goleak"
)

// storeOpener is the pool goroutine every sql.DB keeps until Close. Catalog
// stores opened by fixtures are closed in t.Cleanup, which runs after a
// deferred leak check.
const storeOpener = "database/sql.(*DB).connectionOpener"

// VerifyNoLeaks should be deferred at the start of tests that spawn
// goroutines: transport dispatchers, progress tickers, sleep timers and the
// presenter countdown. Extra options are appended to the defaults.
func VerifyNoLeaks(t *testing.T, opts ...goleak.Option) {
	t.Helper()
	goleak.VerifyNone(t, append([]goleak.Option{goleak.IgnoreAnyFunction(storeOpener)}, opts...)...)
}
