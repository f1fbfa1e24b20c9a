// Package port hands out loopback ports that are safe to give to a child process.
package port

import (
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/thep2p/go-myso-localnet/internal"
)

// MaxAttempts bounds the retries of Ephemeral before the environment is considered broken.
const MaxAttempts = 1000

// ErrExhausted is returned when no port could be reserved within MaxAttempts.
var ErrExhausted = errors.New("could not find an available port on localhost")

// Ephemeral returns an OS-assigned loopback port left in TIME_WAIT.
//
// A connection is made to the listener and accepted before both ends are closed. The
// port then lingers in TIME_WAIT, so the OS does not hand it to another process for a
// while, while a child binding with SO_REUSEADDR can still take it.
func Ephemeral() (int, error) {
	var lastErr error
	for attempt := 0; attempt < MaxAttempts; attempt++ {
		p, err := reserve()
		if err == nil {
			return p, nil
		}
		lastErr = err
	}
	return 0, fmt.Errorf("%w after %d attempts: %v", ErrExhausted, MaxAttempts, lastErr)
}

// MustEphemeral is Ephemeral for callers that cannot proceed without a port.
func MustEphemeral() int {
	p, err := Ephemeral()
	if err != nil {
		panic(err)
	}
	return p
}

func reserve() (int, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, fmt.Errorf("listen: %w", err)
	}
	defer listener.Close()

	addr := listener.Addr().(*net.TCPAddr)

	sender, err := net.DialTCP("tcp", nil, addr)
	if err != nil {
		return 0, fmt.Errorf("dial: %w", err)
	}
	defer sender.Close()

	incoming, err := listener.Accept()
	if err != nil {
		return 0, fmt.Errorf("accept: %w", err)
	}
	// the accepting side closes first so TIME_WAIT lands on the listening port
	_ = incoming.Close()

	return addr.Port, nil
}

// Assigner hands out ephemeral ports and never returns the same port twice.
type Assigner struct {
	mu       sync.Mutex
	assigned map[int]struct{}
}

var _ internal.PortAssigner = (*Assigner)(nil)

// NewAssigner returns an empty Assigner.
func NewAssigner() *Assigner {
	return &Assigner{assigned: make(map[int]struct{})}
}

// NewPort returns a reserved port not previously returned by this assigner.
func (a *Assigner) NewPort() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	for attempt := 0; attempt < MaxAttempts; attempt++ {
		p := MustEphemeral()
		if _, taken := a.assigned[p]; taken {
			continue
		}
		a.assigned[p] = struct{}{}
		return p
	}
	panic(ErrExhausted)
}
