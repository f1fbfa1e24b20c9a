package txbuilder

import (
	"context"
	"fmt"
	"math/bits"

	"github.com/fardream/go-bcs/bcs"
	"github.com/thep2p/go-myso-localnet/internal/model"
	"github.com/thep2p/go-myso-localnet/internal/mysorpc"
	"github.com/thep2p/go-myso-localnet/internal/txbuilder/wire"
)

// payGas fills in the gas payment and budget of data.
func (st *buildState) payGas(ctx context.Context, data *wire.TransactionDataV1) error {
	if len(st.b.gasObjects) > 0 {
		payment, err := st.explicitPayment(ctx)
		if err != nil {
			return err
		}
		data.GasData.Payment = payment
		budget, err := st.budget(ctx, data, MaxGasBudget)
		if err != nil {
			return err
		}
		data.GasData.Budget = budget
		return nil
	}

	if st.r == nil {
		return ErrMissingGasObjects
	}
	coins, err := st.r.ListCoins(ctx, *st.b.sender, model.MysoCoinType)
	if err != nil {
		return fmt.Errorf("resolve gas coins: %w", err)
	}
	coins = st.unused(coins)
	if len(coins) == 0 {
		return fmt.Errorf("%w: sender %s has no spare %s coins", ErrMissingGasObjects, *st.b.sender, model.MysoCoinType)
	}
	sortByBalance(coins)
	if len(coins) > MaxGasObjects {
		coins = coins[:MaxGasObjects]
	}

	// simulate with every candidate so the dry run can be paid for
	var available uint64
	for _, c := range coins {
		available += uint64(c.Balance)
	}
	data.GasData.Payment = refs(coins)
	budget, err := st.budget(ctx, data, min(available, MaxGasBudget))
	if err != nil {
		return err
	}

	need, carry := bits.Add64(budget, st.gasSplit, 0)
	if carry != 0 {
		return fmt.Errorf("%w: gas budget %d plus %d split off the gas coin overflows", ErrInput, budget, st.gasSplit)
	}

	var (
		picked []mysorpc.Coin
		sum    uint64
	)
	for _, c := range coins {
		if sum >= need {
			break
		}
		picked = append(picked, c)
		sum += uint64(c.Balance)
	}
	if sum < need {
		return fmt.Errorf("%w: sender balance %d is below gas budget %d plus %d split off the gas coin", ErrInput, sum, budget, st.gasSplit)
	}

	data.GasData.Payment = refs(picked)
	data.GasData.Budget = budget
	return nil
}

func (st *buildState) explicitPayment(ctx context.Context) ([]wire.ObjectRef, error) {
	payment := make([]wire.ObjectRef, 0, len(st.b.gasObjects))
	for _, o := range st.b.gasObjects {
		if _, taken := st.used[o.ID]; taken {
			return nil, fmt.Errorf("%w: gas object %s is also a transaction input", ErrInput, o.ID)
		}
		if o.Kind == ObjectKindShared {
			return nil, fmt.Errorf("%w: %s", ErrWrongGasObject, o.ID)
		}
		arg, err := st.resolveObject(ctx, o)
		if err != nil {
			return nil, fmt.Errorf("gas object: %w", err)
		}
		if arg.ImmOrOwnedObject == nil {
			return nil, fmt.Errorf("%w: %s", ErrWrongGasObject, o.ID)
		}
		payment = append(payment, *arg.ImmOrOwnedObject)
	}
	return payment, nil
}

// budget returns the fixed budget or estimates one from a dry run made with dryRunBudget.
func (st *buildState) budget(ctx context.Context, data *wire.TransactionDataV1, dryRunBudget uint64) (uint64, error) {
	if st.b.gasBudget != nil {
		return *st.b.gasBudget, nil
	}
	if st.r == nil {
		return 0, ErrMissingGasBudget
	}

	data.GasData.Budget = dryRunBudget
	raw, err := bcs.Marshal(wire.TransactionData{V1: data})
	if err != nil {
		return 0, fmt.Errorf("encode transaction for simulation: %w", err)
	}
	res, err := st.r.SimulateTransaction(ctx, raw)
	if err != nil {
		return 0, fmt.Errorf("estimate gas budget: %w", err)
	}
	if !res.Effects.Status.Success() {
		return 0, fmt.Errorf("%w: %s", ErrSimulation, res.Effects.Status.Error)
	}
	return EstimateBudget(res.Effects.GasUsed, data.GasData.Price), nil
}

// EstimateBudget derives a budget from simulated gas usage: the computation cost plus a safety
// overhead, raised by the net storage cost when that is positive.
func EstimateBudget(used mysorpc.GasCostSummary, price uint64) uint64 {
	base := uint64(used.ComputationCost) + GasSafeOverhead*price
	storage := uint64(used.StorageCost)
	rebate := uint64(used.StorageRebate)
	if storage > rebate {
		return base + storage - rebate
	}
	return base
}

func refs(coins []mysorpc.Coin) []wire.ObjectRef {
	out := make([]wire.ObjectRef, len(coins))
	for i, c := range coins {
		out[i] = wire.NewObjectRef(c.Ref())
	}
	return out
}
