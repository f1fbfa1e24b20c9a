package unittest_test

import (
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/thep2p/go-myso-localnet/internal/unittest"
)

// TestNewPort_UniqueAndBindable ensures handed out ports never repeat and can be bound by a node.
func TestNewPort_UniqueAndBindable(t *testing.T) {
	seen := make(map[int]struct{})
	for i := 0; i < 20; i++ {
		p := unittest.NewPort(t)
		_, dup := seen[p]
		require.False(t, dup, "port %d handed out twice", p)
		seen[p] = struct{}{}
	}

	p := unittest.NewPort(t)
	l, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", p))
	require.NoError(t, err)
	require.NoError(t, l.Close())
}
