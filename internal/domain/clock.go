package domain

import "github.com/jonboulle/clockwork"

// clock is a package-level time source so tests can freeze time via SetClock.
// Production code uses the real clock; tests inject a fake for deterministic
// alert IDs and timestamps.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source for alert creation. Pass nil to reset to
// real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

// Clock exposes the package time source for components that need to compare
// against alert timestamps, such as the ledger's dedup window.
func Clock() clockwork.Clock { return clock }
