// Package node defines the capability contract a scheduler drives:
// Initializer, Ticker, Shutdowner. A node implements Ticker; Initializer
// and Shutdowner are optional and detected by type assertion when the
// scheduler starts and stops, not forced as empty-default methods on one fat
// interface (per the spec's trait-object-node-polymorphism guidance).
package node

// Ticker is the only capability every node must implement: do one
// unit of work per scheduler tick.
type Ticker interface {
	Tick(info *Info) error
}

// Initializer is an optional capability: a node that needs to acquire
// resources (attach Hub/Link endpoints, open files) before the first
// tick implements it. Detected via a type assertion on the registered
// Ticker at scheduler startup.
type Initializer interface {
	Init(info *Info) error
}

// Shutdowner is an optional capability for releasing resources when
// the scheduler stops. Detected the same way as Initializer.
type Shutdowner interface {
	Shutdown(info *Info) error
}
