package unittest_test

import (
	"context"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/thep2p/go-myso-localnet/internal/unittest"
)

// TestFakeNode_PortLifecycle checks that the fake node answers on its port and releases it once the test ends.
func TestFakeNode_PortLifecycle(t *testing.T) {
	var port int
	t.Run("serve", func(t *testing.T) {
		n := unittest.NewFakeNode(t)
		u, err := url.Parse(n.URL())
		require.NoError(t, err)
		port, err = strconv.Atoi(u.Port())
		require.NoError(t, err)

		unittest.RequireRpcReadyWithinTimeout(t, context.Background(), port, 5*time.Second)
	})
	unittest.RequirePortClosesWithinTimeout(t, port, 5*time.Second)
}
