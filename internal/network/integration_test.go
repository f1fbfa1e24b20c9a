package network_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/thep2p/go-myso-localnet/internal/model"
	"github.com/thep2p/go-myso-localnet/internal/mysorpc"
	"github.com/thep2p/go-myso-localnet/internal/network"
	"github.com/thep2p/go-myso-localnet/internal/txbuilder"
	"github.com/thep2p/go-myso-localnet/internal/unittest"
)

// startRealNetwork boots a single-validator network with the installed node binary, or skips.
func startRealNetwork(t *testing.T) *network.Handle {
	t.Helper()
	bin := unittest.RequireBinary(t)

	h, err := network.Start(context.Background(),
		network.WithBinary(bin),
		network.WithLogger(unittest.Logger(t)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, h.Close())
	})
	return h
}

func ownedObjects(t *testing.T, h *network.Handle, owner model.Address) []mysorpc.Object {
	t.Helper()
	objs, err := h.Client().ListOwnedObjects(context.Background(), owner, mysorpc.FieldMaskFromString(mysorpc.Wildcard))
	require.NoError(t, err)
	return objs
}

// TestIntegration_FundSingleCoin funds one address and reads back exactly one coin.
func TestIntegration_FundSingleCoin(t *testing.T) {
	h := startRealNetwork(t)
	recipient := unittest.RandomAddress(t)

	require.NoError(t, h.Fund(context.Background(), []network.FundRequest{{Address: recipient, Amount: 1_000_000}}))

	objs := ownedObjects(t, h, recipient)
	require.Len(t, objs, 1)
	balance, err := objs[0].Balance()
	require.NoError(t, err)
	require.Equal(t, uint64(1_000_000), balance)
}

// TestIntegration_ZeroValueFunding ensures a zero amount still produces a coin object.
func TestIntegration_ZeroValueFunding(t *testing.T) {
	h := startRealNetwork(t)
	recipient := model.ZeroAddress

	require.NoError(t, h.Fund(context.Background(), []network.FundRequest{{Address: recipient, Amount: 0}}))

	objs := ownedObjects(t, h, recipient)
	require.Len(t, objs, 1)
	balance, err := objs[0].Balance()
	require.NoError(t, err)
	require.Zero(t, balance)
}

// TestIntegration_LargeNumberOfRequests funds 500 coins twice and then builds transactions
// that need many gas coins and merges.
func TestIntegration_LargeNumberOfRequests(t *testing.T) {
	h := startRealNetwork(t)
	recipient := unittest.RandomAddress(t)

	requests := make([]network.FundRequest, 500)
	for i := range requests {
		requests[i] = network.FundRequest{Address: recipient, Amount: model.MistPerMyso}
	}
	require.NoError(t, h.Fund(context.Background(), requests))
	require.NoError(t, h.Fund(context.Background(), requests))

	require.Len(t, ownedObjects(t, h, recipient), 1000)

	for _, useGasCoin := range []bool{true, false} {
		b := txbuilder.NewBuilder()
		b.SetSender(recipient)
		coin := b.Intent(txbuilder.Myso(950).WithUseGasCoin(useGasCoin))
		b.TransferObjects([]txbuilder.Argument{coin}, b.Pure(recipient))
		_, err := b.Build(context.Background(), h.Client())
		require.NoError(t, err, "use gas coin: %v", useGasCoin)
	}
}

// TestIntegration_ValidatorsFunded checks the funding done while building the network.
func TestIntegration_ValidatorsFunded(t *testing.T) {
	h := startRealNetwork(t)
	require.Equal(t, network.StateUpgraded, h.State())

	for addr := range h.ValidatorKeys() {
		coins, err := h.Client().ListCoins(context.Background(), addr, model.MysoCoinType)
		require.NoError(t, err)

		var total uint64
		for _, c := range coins {
			total += uint64(c.Balance)
		}
		require.GreaterOrEqual(t, total, model.DefaultValidatorFunding)
	}
}

// TestIntegration_CheckpointStream reads ten consecutive checkpoints.
func TestIntegration_CheckpointStream(t *testing.T) {
	h := startRealNetwork(t)
	ctx := context.Background()

	var height uint64
	require.Eventually(t, func() bool {
		info, err := h.Client().GetServiceInfo(ctx)
		if err != nil {
			return false
		}
		height = info.CheckpointHeight
		return height >= 10
	}, 30*time.Second, 500*time.Millisecond)

	start := height - 9
	for seq := start; seq < start+10; seq++ {
		cp, err := h.Client().GetCheckpoint(ctx, seq)
		require.NoError(t, err)
		require.Equal(t, seq, uint64(cp.SequenceNumber))
	}
}
