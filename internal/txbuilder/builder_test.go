package txbuilder_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/thep2p/go-myso-localnet/internal/model"
	"github.com/thep2p/go-myso-localnet/internal/mysorpc"
	"github.com/thep2p/go-myso-localnet/internal/txbuilder"
	"github.com/thep2p/go-myso-localnet/internal/txbuilder/wire"
	"github.com/thep2p/go-myso-localnet/internal/unittest"
	"github.com/thep2p/go-myso-localnet/internal/unittest/mocks"
)

const testGasPrice uint64 = 1000

var testGasUsed = mysorpc.GasCostSummary{ComputationCost: 1_000_000, StorageCost: 3_000_000, StorageRebate: 1_000_000}

// offlineBuilder returns a builder with everything a resolver would otherwise provide.
func offlineBuilder(t *testing.T) (*txbuilder.Builder, model.Address) {
	sender := unittest.RandomAddress(t)
	b := txbuilder.NewBuilder()
	b.SetSender(sender)
	b.SetGasPrice(testGasPrice)
	b.SetGasBudget(10_000_000)
	b.AddGasObjects(txbuilder.OwnedObject(unittest.ObjectRefFixture(t, 3)))
	return b, sender
}

func coins(t *testing.T, n int, balance uint64) []mysorpc.Coin {
	out := make([]mysorpc.Coin, n)
	for i := range out {
		out[i] = mysorpc.Coin{
			CoinType:     model.MysoCoinType,
			CoinObjectID: unittest.RandomAddress(t),
			Version:      1,
			Digest:       unittest.RandomDigest(t),
			Balance:      model.Uint64(balance),
		}
	}
	return out
}

func resolver(t *testing.T, sender model.Address, owned []mysorpc.Coin) *mocks.Client {
	r := &mocks.Client{}
	r.On("GetReferenceGasPrice", mock.Anything).Return(testGasPrice, nil).Maybe()
	r.On("ListCoins", mock.Anything, sender, model.MysoCoinType).Return(owned, nil).Maybe()
	r.On("SimulateTransaction", mock.Anything, mock.Anything).Return(&mysorpc.SimulationResult{
		Effects: mysorpc.Effects{Status: mysorpc.ExecutionStatus{Status: mysorpc.StatusSuccess}, GasUsed: testGasUsed},
	}, nil).Maybe()
	t.Cleanup(func() { r.AssertExpectations(t) })
	return r
}

func TestBuild_Offline(t *testing.T) {
	b, sender := offlineBuilder(t)
	recipient := unittest.RandomAddress(t)

	coin := b.SplitCoins(txbuilder.GasCoin, b.Pure(uint64(42)))
	b.TransferObjects([]txbuilder.Argument{coin.Nested(0)}, b.Pure(recipient))

	tx, err := b.Build(context.Background(), nil)
	require.NoError(t, err)

	require.Equal(t, sender, tx.Sender())
	require.Equal(t, sender, tx.GasData().Owner)
	require.Equal(t, testGasPrice, tx.GasData().Price)
	require.Equal(t, uint64(10_000_000), tx.GasData().Budget)
	require.Len(t, tx.GasData().Payment, 1)

	require.Len(t, tx.Inputs(), 2)
	require.Equal(t, []byte{42, 0, 0, 0, 0, 0, 0, 0}, *tx.Inputs()[0].Pure)
	require.Equal(t, recipient[:], *tx.Inputs()[1].Pure)

	cmds := tx.Commands()
	require.Len(t, cmds, 2)
	require.NotNil(t, cmds[0].SplitCoins)
	require.NotNil(t, cmds[0].SplitCoins.Coin.GasCoin)
	require.NotNil(t, cmds[1].TransferObjects)
	require.Equal(t, wire.NestedResultArg(0, 0), cmds[1].TransferObjects.Objects[0])
	require.Equal(t, wire.InputArg(1), cmds[1].TransferObjects.Address)

	require.NotEmpty(t, tx.Bytes())
	require.Equal(t, txbuilder.TransactionDigest(tx.Bytes()), tx.Digest())
}

func TestBuild_Deterministic(t *testing.T) {
	sender := unittest.RandomAddress(t)
	gas := unittest.ObjectRefFixture(t, 9)

	build := func() *txbuilder.Transaction {
		b := txbuilder.NewBuilder()
		b.SetSender(sender)
		b.SetGasPrice(testGasPrice)
		b.SetGasBudget(5_000_000)
		b.AddGasObjects(txbuilder.OwnedObject(gas))
		b.TransferObjects([]txbuilder.Argument{txbuilder.GasCoin}, b.Pure(sender))
		tx, err := b.Build(context.Background(), nil)
		require.NoError(t, err)
		return tx
	}

	first, second := build(), build()
	require.Equal(t, first.Bytes(), second.Bytes())
	require.Equal(t, first.Digest(), second.Digest())
}

func TestBuild_MissingParts(t *testing.T) {
	gas := txbuilder.OwnedObject(unittest.ObjectRefFixture(t, 1))

	t.Run("sender", func(t *testing.T) {
		b := txbuilder.NewBuilder()
		_, err := b.Build(context.Background(), nil)
		require.ErrorIs(t, err, txbuilder.ErrMissingSender)
	})

	t.Run("gas price", func(t *testing.T) {
		b := txbuilder.NewBuilder()
		b.SetSender(unittest.RandomAddress(t))
		_, err := b.Build(context.Background(), nil)
		require.ErrorIs(t, err, txbuilder.ErrMissingGasPrice)
	})

	t.Run("gas objects", func(t *testing.T) {
		b := txbuilder.NewBuilder()
		b.SetSender(unittest.RandomAddress(t))
		b.SetGasPrice(testGasPrice)
		b.SetGasBudget(1)
		_, err := b.Build(context.Background(), nil)
		require.ErrorIs(t, err, txbuilder.ErrMissingGasObjects)
	})

	t.Run("gas budget", func(t *testing.T) {
		b := txbuilder.NewBuilder()
		b.SetSender(unittest.RandomAddress(t))
		b.SetGasPrice(testGasPrice)
		b.AddGasObjects(gas)
		_, err := b.Build(context.Background(), nil)
		require.ErrorIs(t, err, txbuilder.ErrMissingGasBudget)
	})
}

func TestBuild_UnresolvedObjectsOffline(t *testing.T) {
	ref := unittest.ObjectRefFixture(t, 4)

	cases := []struct {
		name     string
		input    txbuilder.ObjectInput
		expected error
	}{
		{"zero id", txbuilder.ObjectByID(model.ZeroAddress), txbuilder.ErrMissingObjectID},
		{"unknown kind", txbuilder.ObjectByID(ref.ObjectID), txbuilder.ErrMissingObjectKind},
		{"missing version", txbuilder.ObjectInput{ID: ref.ObjectID, Kind: txbuilder.ObjectKindOwned}, txbuilder.ErrMissingVersion},
		{"missing digest", txbuilder.ObjectInput{ID: ref.ObjectID, Kind: txbuilder.ObjectKindOwned, Version: 4}, txbuilder.ErrMissingDigest},
		{"shared mutability", txbuilder.ObjectInput{ID: ref.ObjectID, Kind: txbuilder.ObjectKindShared, InitialSharedVersion: 1}, txbuilder.ErrSharedObjectMutability},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b, _ := offlineBuilder(t)
			b.MoveCall(txbuilder.Function{Package: model.FrameworkAddress, Module: "m", Name: "f"}, b.Object(tc.input))
			_, err := b.Build(context.Background(), nil)
			require.ErrorIs(t, err, tc.expected)
		})
	}
}

func TestBuild_SharedGasObjectRejected(t *testing.T) {
	b := txbuilder.NewBuilder()
	b.SetSender(unittest.RandomAddress(t))
	b.SetGasPrice(testGasPrice)
	b.SetGasBudget(1)
	b.AddGasObjects(txbuilder.SharedObject(unittest.RandomAddress(t), 1, true))

	_, err := b.Build(context.Background(), nil)
	require.ErrorIs(t, err, txbuilder.ErrWrongGasObject)
}

func TestBuild_ZeroIntentUsesCoinZero(t *testing.T) {
	b, _ := offlineBuilder(t)
	recipient := unittest.RandomAddress(t)

	coin := b.Intent(txbuilder.Myso(0))
	b.TransferObjects([]txbuilder.Argument{coin}, b.Pure(recipient))

	tx, err := b.Build(context.Background(), nil)
	require.NoError(t, err)

	cmds := tx.Commands()
	require.Len(t, cmds, 2)
	call := cmds[0].MoveCall
	require.NotNil(t, call, "first command must create the zero coin")
	require.Equal(t, model.FrameworkAddress, call.Package)
	require.Equal(t, model.CoinModule, call.Module)
	require.Equal(t, model.CoinZeroFunction, call.Function)
	require.Len(t, call.TypeArguments, 1)
	require.Equal(t, wire.MustParseTypeTag(model.MysoCoinType).String(), call.TypeArguments[0].String())

	require.Equal(t, wire.ResultArg(0), cmds[1].TransferObjects.Objects[0])
}

func TestBuild_GasCoinIntentsShareOneSplit(t *testing.T) {
	b, _ := offlineBuilder(t)
	recipients := unittest.RandomAddresses(t, 3)

	for _, r := range recipients {
		coin := b.Intent(txbuilder.Myso(1_000))
		b.TransferObjects([]txbuilder.Argument{coin}, b.Pure(r))
	}

	tx, err := b.Build(context.Background(), nil)
	require.NoError(t, err)

	cmds := tx.Commands()
	require.Len(t, cmds, 1+len(recipients))
	split := cmds[0].SplitCoins
	require.NotNil(t, split)
	require.NotNil(t, split.Coin.GasCoin)
	require.Len(t, split.Amounts, len(recipients))

	// caller inputs keep their positions, amounts follow them
	require.Len(t, tx.Inputs(), 2*len(recipients))
	for k := range recipients {
		require.Equal(t, wire.NestedResultArg(0, uint16(k)), cmds[1+k].TransferObjects.Objects[0])
		require.Equal(t, wire.InputArg(uint16(k)), cmds[1+k].TransferObjects.Address)
		require.Equal(t, wire.InputArg(uint16(len(recipients)+k)), split.Amounts[k])
	}
}

func TestBuild_ResultsShiftPastResolvedIntents(t *testing.T) {
	b, _ := offlineBuilder(t)
	fn := txbuilder.Function{Package: model.FrameworkAddress, Module: "m", Name: "make"}

	made := b.MoveCall(fn)
	zero := b.Intent(txbuilder.Myso(0))
	b.MergeCoins(made, zero)

	tx, err := b.Build(context.Background(), nil)
	require.NoError(t, err)

	cmds := tx.Commands()
	require.Len(t, cmds, 3)
	require.NotNil(t, cmds[0].MoveCall)
	require.Equal(t, model.CoinZeroFunction, cmds[0].MoveCall.Function)
	require.Equal(t, "make", cmds[1].MoveCall.Function)
	require.Equal(t, wire.ResultArg(1), cmds[2].MergeCoins.Destination)
	require.Equal(t, []wire.Argument{wire.ResultArg(0)}, cmds[2].MergeCoins.Sources)
}

func TestBuild_ResolvesSharedObject(t *testing.T) {
	sender := unittest.RandomAddress(t)
	r := resolver(t, sender, coins(t, 1, 10_000_000_000))
	r.On("GetObject", mock.Anything, model.SystemStateObjectID, mock.Anything).Return(&mysorpc.Object{
		ObjectID: model.SystemStateObjectID,
		Version:  120,
		Owner:    &mysorpc.Owner{Kind: mysorpc.OwnerShared, InitialSharedVersion: 1},
	}, nil).Once()

	b := txbuilder.NewBuilder()
	b.SetSender(sender)
	state := b.Object(txbuilder.ObjectByID(model.SystemStateObjectID))
	b.MoveCall(txbuilder.Function{
		Package: model.SystemPackageAddress,
		Module:  model.SystemModule,
		Name:    model.ActiveValidatorAddressesFunction,
	}, state)

	tx, err := b.Build(context.Background(), r)
	require.NoError(t, err)

	require.Len(t, tx.Inputs(), 1)
	shared := tx.Inputs()[0].Object.SharedObject
	require.NotNil(t, shared)
	require.Equal(t, model.SystemStateObjectID, shared.ObjectID)
	require.Equal(t, uint64(1), shared.InitialSharedVersion)
	require.True(t, shared.Mutable, "shared objects default to mutable")

	require.Equal(t, testGasPrice, tx.GasData().Price)
	require.Equal(t, txbuilder.EstimateBudget(testGasUsed, testGasPrice), tx.GasData().Budget)
	require.Len(t, tx.GasData().Payment, 1)
}

func TestBuild_ResolvesOwnedObject(t *testing.T) {
	sender := unittest.RandomAddress(t)
	ref := unittest.ObjectRefFixture(t, 17)
	r := resolver(t, sender, coins(t, 1, 10_000_000_000))
	r.On("GetObject", mock.Anything, ref.ObjectID, mock.Anything).Return(&mysorpc.Object{
		ObjectID: ref.ObjectID,
		Version:  model.Uint64(ref.Version),
		Digest:   ref.Digest,
		Owner:    &mysorpc.Owner{Kind: mysorpc.OwnerAddress, Address: sender},
	}, nil).Once()

	b := txbuilder.NewBuilder()
	b.SetSender(sender)
	b.TransferObjects([]txbuilder.Argument{b.Object(txbuilder.ObjectByID(ref.ObjectID))}, b.Pure(sender))

	tx, err := b.Build(context.Background(), r)
	require.NoError(t, err)

	owned := tx.Inputs()[0].Object.ImmOrOwnedObject
	require.NotNil(t, owned)
	require.Equal(t, wire.NewObjectRef(ref), *owned)
}

func TestBuild_DuplicateObjectKeepsMutability(t *testing.T) {
	b, _ := offlineBuilder(t)
	id := unittest.RandomAddress(t)

	first := b.Object(txbuilder.SharedObject(id, 2, true))
	second := b.Object(txbuilder.SharedObject(id, 2, false))
	require.Equal(t, first, second)
	b.MoveCall(txbuilder.Function{Package: model.FrameworkAddress, Module: "m", Name: "f"}, first, second)

	tx, err := b.Build(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, tx.Inputs(), 1)
	require.True(t, tx.Inputs()[0].Object.SharedObject.Mutable)
}

func TestBuild_GasSelectionCoversBudget(t *testing.T) {
	sender := unittest.RandomAddress(t)
	budget := txbuilder.EstimateBudget(testGasUsed, testGasPrice)

	// coins too small to cover the budget alone
	owned := coins(t, 10, budget/3)
	r := resolver(t, sender, owned)

	b := txbuilder.NewBuilder()
	b.SetSender(sender)
	b.TransferObjects([]txbuilder.Argument{b.Intent(txbuilder.Myso(5))}, b.Pure(sender))

	tx, err := b.Build(context.Background(), r)
	require.NoError(t, err)
	require.Equal(t, budget, tx.GasData().Budget)
	require.Len(t, tx.GasData().Payment, 4)
}

func TestBuild_GasSelectionCoversGasCoinSplit(t *testing.T) {
	sender := unittest.RandomAddress(t)
	budget := txbuilder.EstimateBudget(testGasUsed, testGasPrice)
	split := 2 * budget

	owned := coins(t, 10, budget/3)
	balances := make(map[model.Address]uint64, len(owned))
	for _, c := range owned {
		balances[c.CoinObjectID] = uint64(c.Balance)
	}
	r := resolver(t, sender, owned)

	b := txbuilder.NewBuilder()
	b.SetSender(sender)
	b.TransferObjects([]txbuilder.Argument{b.Intent(txbuilder.Myso(split))}, b.Pure(sender))

	tx, err := b.Build(context.Background(), r)
	require.NoError(t, err)
	require.Equal(t, budget, tx.GasData().Budget)

	var paid uint64
	for _, ref := range tx.GasData().Payment {
		balance, ok := balances[ref.ObjectID]
		require.True(t, ok, "payment coin %s is not owned by the sender", ref.ObjectID)
		paid += balance
	}
	require.GreaterOrEqual(t, paid, budget+split)
}

func TestBuild_GasCoinSplitAboveBalance(t *testing.T) {
	sender := unittest.RandomAddress(t)
	budget := txbuilder.EstimateBudget(testGasUsed, testGasPrice)
	r := resolver(t, sender, coins(t, 10, budget/3))

	b := txbuilder.NewBuilder()
	b.SetSender(sender)
	b.TransferObjects([]txbuilder.Argument{b.Intent(txbuilder.Myso(4 * budget))}, b.Pure(sender))

	_, err := b.Build(context.Background(), r)
	require.ErrorIs(t, err, txbuilder.ErrInput)
	require.Contains(t, err.Error(), "split off the gas coin")
}

func TestBuild_InsufficientGas(t *testing.T) {
	sender := unittest.RandomAddress(t)
	r := resolver(t, sender, coins(t, 1, 10))

	b := txbuilder.NewBuilder()
	b.SetSender(sender)
	b.TransferObjects([]txbuilder.Argument{txbuilder.GasCoin}, b.Pure(sender))

	_, err := b.Build(context.Background(), r)
	require.ErrorIs(t, err, txbuilder.ErrInput)
}

func TestBuild_NoGasCoins(t *testing.T) {
	sender := unittest.RandomAddress(t)
	r := resolver(t, sender, nil)

	b := txbuilder.NewBuilder()
	b.SetSender(sender)
	b.TransferObjects([]txbuilder.Argument{txbuilder.GasCoin}, b.Pure(sender))

	_, err := b.Build(context.Background(), r)
	require.ErrorIs(t, err, txbuilder.ErrMissingGasObjects)
}

func TestBuild_SimulationFailure(t *testing.T) {
	sender := unittest.RandomAddress(t)
	r := &mocks.Client{}
	r.On("GetReferenceGasPrice", mock.Anything).Return(testGasPrice, nil)
	r.On("ListCoins", mock.Anything, sender, model.MysoCoinType).Return(coins(t, 1, 10_000_000_000), nil)
	r.On("SimulateTransaction", mock.Anything, mock.Anything).Return(&mysorpc.SimulationResult{
		Effects: mysorpc.Effects{Status: mysorpc.ExecutionStatus{Status: "failure", Error: "MoveAbort"}},
	}, nil)

	b := txbuilder.NewBuilder()
	b.SetSender(sender)
	b.MoveCall(txbuilder.Function{Package: model.FrameworkAddress, Module: "m", Name: "abort"})

	_, err := b.Build(context.Background(), r)
	require.ErrorIs(t, err, txbuilder.ErrSimulation)
	require.Contains(t, err.Error(), "MoveAbort")
}

// TestBuild_IntentWithoutGasCoinKeepsCoinsApart splits the intent off one of the sender's coins
// and pays gas with another.
func TestBuild_IntentWithoutGasCoinKeepsCoinsApart(t *testing.T) {
	sender := unittest.RandomAddress(t)
	r := resolver(t, sender, coins(t, 2, 10_000_000_000))

	b := txbuilder.NewBuilder()
	b.SetSender(sender)
	coin := b.Intent(txbuilder.Myso(950).WithUseGasCoin(false))
	b.TransferObjects([]txbuilder.Argument{coin}, b.Pure(sender))

	tx, err := b.Build(context.Background(), r)
	require.NoError(t, err)

	cmds := tx.Commands()
	require.Len(t, cmds, 2, "a single coin covers the amount, nothing to merge")
	split := cmds[0].SplitCoins
	require.NotNil(t, split)
	require.Nil(t, split.Coin.GasCoin, "the gas coin must not be used")
	require.Equal(t, wire.InputArg(1), split.Coin)

	spent := tx.Inputs()[1].Object.ImmOrOwnedObject
	require.NotNil(t, spent)
	require.Len(t, tx.GasData().Payment, 1)
	require.NotEqual(t, spent.ObjectID, tx.GasData().Payment[0].ObjectID)
}

func TestBuild_IntentWithoutGasCoinManyCoins(t *testing.T) {
	sender := unittest.RandomAddress(t)
	owned := coins(t, 1000, 1)
	r := resolver(t, sender, owned)

	b := txbuilder.NewBuilder()
	b.SetSender(sender)
	b.SetGasBudget(10)
	coin := b.Intent(txbuilder.Myso(950).WithUseGasCoin(false))
	b.TransferObjects([]txbuilder.Argument{coin}, b.Pure(sender))

	tx, err := b.Build(context.Background(), r)
	require.NoError(t, err)

	var merges, sources int
	for _, c := range tx.Commands() {
		if c.MergeCoins != nil {
			merges++
			sources += len(c.MergeCoins.Sources)
			require.LessOrEqual(t, len(c.MergeCoins.Sources), txbuilder.MaxMergeSources)
		}
	}
	require.Equal(t, 2, merges)
	require.Equal(t, 949, sources)
	// 950 coin inputs plus the amount and the recipient
	require.Len(t, tx.Inputs(), 952)
	require.Len(t, tx.GasData().Payment, 10)
}

func TestArgument_NestedOnNonResultPanics(t *testing.T) {
	require.Panics(t, func() {
		txbuilder.GasCoin.Nested(0)
	})
}

func TestEstimateBudget(t *testing.T) {
	// storage cost above rebate is added
	require.Equal(t, uint64(1_000_000+1000*10+2_000_000),
		txbuilder.EstimateBudget(mysorpc.GasCostSummary{ComputationCost: 1_000_000, StorageCost: 3_000_000, StorageRebate: 1_000_000}, 10))
	// a net rebate does not lower the budget below computation plus overhead
	require.Equal(t, uint64(1_000_000+1000*10),
		txbuilder.EstimateBudget(mysorpc.GasCostSummary{ComputationCost: 1_000_000, StorageCost: 1_000_000, StorageRebate: 5_000_000}, 10))
}
