//go:build race

package ring

// RaceEnabled is true when the race detector is active. Buffer's own
// tests use it to skip stress variants whose cross-goroutine timing
// assumptions produce false positives under -race rather than real
// data races.
const RaceEnabled = true
