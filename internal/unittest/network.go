package unittest

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/require"
	"github.com/thep2p/go-myso-localnet/internal/model"
	"github.com/thep2p/go-myso-localnet/internal/utils"
)

// RequireRpcReadyWithinTimeout is a test helper that fails if the RPC server does not answer a
// chain identifier request within the specified timeout.
func RequireRpcReadyWithinTimeout(t *testing.T, ctx context.Context, port int, timeout time.Duration) {
	t.Helper()
	client, err := rpc.DialContext(ctx, utils.LocalAddress(port))
	require.NoError(t, err)
	defer client.Close()

	require.Eventually(t, func() bool {
		callCtx, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		var chainID string
		return client.CallContext(callCtx, &chainID, model.MethodGetChainIdentifier) == nil && chainID != ""
	}, timeout, 150*time.Millisecond, "RPC not ready on port %d within %s", port, timeout)
}

// RequirePortClosesWithinTimeout is a test helper that fails if the specified port does not close within the timeout.
func RequirePortClosesWithinTimeout(t *testing.T, port int, timeout time.Duration) {
	t.Helper()
	addr := fmt.Sprintf("127.0.0.1:%d", port)
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		conn, err := net.Dial("tcp", addr)
		if err != nil {
			return // port is closed
		}
		_ = conn.Close()
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatalf("port %d did not close within %s", port, timeout)
}
