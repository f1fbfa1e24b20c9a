package internal

// PortAssigner assigns network ports to node processes and tests.
type PortAssigner interface {
	// NewPort returns a free port that this assigner has not handed out before.
	// Failure to find one is irrecoverable and panics.
	NewPort() int
}
