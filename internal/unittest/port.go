package unittest

import (
	"sync"
	"testing"

	"github.com/thep2p/go-myso-localnet/internal/port"
)

var (
	assignerOnce sync.Once
	assigner     *port.Assigner
)

// NewPort returns a free TCP port that no other test in this binary has been handed.
func NewPort(t *testing.T) int {
	t.Helper()
	assignerOnce.Do(func() {
		assigner = port.NewAssigner()
	})
	return assigner.NewPort()
}
