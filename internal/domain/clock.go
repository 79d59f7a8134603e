package domain

import "github.com/jonboulle/clockwork"

// clock is the package-level time source so tests can freeze run timestamps.
// Production code uses the real clock; tests inject a fake for deterministic
// output artifacts.
var clock = clockwork.NewRealClock()

// Clock returns the injectable pipeline time source.
func Clock() clockwork.Clock { return clock }

// SetClock swaps the time source. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}
