package txbuilder

import (
	"context"
	"fmt"
	"math/bits"
	"sort"

	"github.com/fardream/go-bcs/bcs"
	"github.com/thep2p/go-myso-localnet/internal/model"
	"github.com/thep2p/go-myso-localnet/internal/mysorpc"
	"github.com/thep2p/go-myso-localnet/internal/txbuilder/wire"
)

const (
	// MaxGasObjects bounds the number of coins used as gas payment.
	MaxGasObjects = 256
	// MaxMergeSources bounds the sources of a single MergeCoins command.
	MaxMergeSources = 511
	// MaxGasBudget is the budget used while simulating a transaction to estimate its budget.
	MaxGasBudget uint64 = 50_000_000_000
	// GasSafeOverhead is added to the estimated computation cost, in units of the gas price.
	GasSafeOverhead uint64 = 1000
)

// Resolver fills in what the caller left open. *mysorpc.JSONRPCClient satisfies it.
type Resolver interface {
	GetObject(ctx context.Context, id model.ObjectID, mask mysorpc.FieldMask) (*mysorpc.Object, error)
	GetReferenceGasPrice(ctx context.Context) (uint64, error)
	ListCoins(ctx context.Context, owner model.Address, coinType string) ([]mysorpc.Coin, error)
	SimulateTransaction(ctx context.Context, txBytes []byte) (*mysorpc.SimulationResult, error)
}

var objectResolutionMask = mysorpc.FieldMaskFromPaths(mysorpc.FieldOwner, mysorpc.FieldType)

// Build resolves open inputs and serializes the transaction. A nil resolver requires every
// input, the gas price, budget and payment to be given.
func (b *Builder) Build(ctx context.Context, r Resolver) (*Transaction, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.sender == nil {
		return nil, ErrMissingSender
	}

	st := &buildState{
		b:      b,
		r:      r,
		inputs: make([]wire.CallArg, 0, len(b.inputs)),
		used:   make(map[model.ObjectID]struct{}),
	}

	for _, in := range b.inputs {
		if in.object == nil {
			st.inputs = append(st.inputs, wire.PureArg(in.pure))
			continue
		}
		arg, err := st.resolveObject(ctx, *in.object)
		if err != nil {
			return nil, err
		}
		st.inputs = append(st.inputs, wire.CallArg{Object: arg})
		st.used[in.object.ID] = struct{}{}
	}

	price, err := st.gasPrice(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.resolveIntents(ctx); err != nil {
		return nil, err
	}

	commands := make([]wire.Command, 0, len(st.prelude)+len(b.cmds))
	commands = append(commands, st.prelude...)
	for _, c := range b.cmds {
		wc, err := st.command(c)
		if err != nil {
			return nil, err
		}
		commands = append(commands, wc)
	}

	data := wire.TransactionDataV1{
		Kind: wire.TransactionKind{ProgrammableTransaction: &wire.ProgrammableTransaction{
			Inputs:   st.inputs,
			Commands: commands,
		}},
		Sender:     *b.sender,
		GasData:    wire.GasData{Owner: *b.sender, Price: price},
		Expiration: wire.NoExpiration(),
	}

	if err := st.payGas(ctx, &data); err != nil {
		return nil, err
	}

	raw, err := bcs.Marshal(wire.TransactionData{V1: &data})
	if err != nil {
		return nil, fmt.Errorf("encode transaction: %w", err)
	}
	return &Transaction{data: data, bytes: raw}, nil
}

type buildState struct {
	b      *Builder
	r      Resolver
	inputs []wire.CallArg
	// used holds objects taken as inputs; they cannot pay for gas.
	used map[model.ObjectID]struct{}
	// prelude produces coin intents ahead of the caller's commands.
	prelude []wire.Command
	intents []wire.Argument
	// gasSplit is the total split off the gas coin by intents; payment must cover it on top of the budget.
	gasSplit uint64
}

func (st *buildState) resolveObject(ctx context.Context, o ObjectInput) (*wire.ObjectArg, error) {
	if o.ID == model.ZeroAddress {
		return nil, ErrMissingObjectID
	}

	resolved := false
	if needsLookup(o) {
		if st.r == nil {
			return nil, missingObjectField(o)
		}
		obj, err := st.r.GetObject(ctx, o.ID, objectResolutionMask)
		if err != nil {
			return nil, fmt.Errorf("resolve object %s: %w", o.ID, err)
		}
		if obj.Owner == nil {
			return nil, fmt.Errorf("%w: node returned no owner for %s", ErrMissingObjectKind, o.ID)
		}
		o = fillObject(o, obj)
		resolved = true
	}

	switch o.Kind {
	case ObjectKindShared:
		if o.Mutable == nil {
			if !resolved {
				return nil, fmt.Errorf("%w: %s", ErrSharedObjectMutability, o.ID)
			}
			mutable := true
			o.Mutable = &mutable
		}
		return &wire.ObjectArg{SharedObject: &wire.SharedObjectRef{
			ObjectID:             o.ID,
			InitialSharedVersion: o.InitialSharedVersion,
			Mutable:              *o.Mutable,
		}}, nil
	case ObjectKindReceiving:
		ref := wire.NewObjectRef(objectRef(o))
		return &wire.ObjectArg{Receiving: &ref}, nil
	case ObjectKindOwned, ObjectKindImmutable:
		ref := wire.NewObjectRef(objectRef(o))
		return &wire.ObjectArg{ImmOrOwnedObject: &ref}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrMissingObjectKind, o.ID)
	}
}

func needsLookup(o ObjectInput) bool {
	switch o.Kind {
	case ObjectKindUnknown:
		return true
	case ObjectKindShared:
		return o.InitialSharedVersion == 0
	default:
		return o.Version == 0 || o.Digest == nil
	}
}

func missingObjectField(o ObjectInput) error {
	switch {
	case o.Kind == ObjectKindUnknown:
		return fmt.Errorf("%w: %s", ErrMissingObjectKind, o.ID)
	case o.Kind == ObjectKindShared, o.Version == 0:
		return fmt.Errorf("%w: %s", ErrMissingVersion, o.ID)
	default:
		return fmt.Errorf("%w: %s", ErrMissingDigest, o.ID)
	}
}

func fillObject(o ObjectInput, obj *mysorpc.Object) ObjectInput {
	switch obj.Owner.Kind {
	case mysorpc.OwnerShared:
		o.Kind = ObjectKindShared
		o.InitialSharedVersion = obj.Owner.InitialSharedVersion
		return o
	case mysorpc.OwnerImmutable:
		o.Kind = ObjectKindImmutable
	default:
		if o.Kind != ObjectKindReceiving {
			o.Kind = ObjectKindOwned
		}
	}
	d := obj.Digest
	o.Version = uint64(obj.Version)
	o.Digest = &d
	return o
}

func objectRef(o ObjectInput) model.ObjectRef {
	return model.ObjectRef{ObjectID: o.ID, Version: o.Version, Digest: *o.Digest}
}

func (st *buildState) gasPrice(ctx context.Context) (uint64, error) {
	if st.b.gasPrice != nil {
		return *st.b.gasPrice, nil
	}
	if st.r == nil {
		return 0, ErrMissingGasPrice
	}
	price, err := st.r.GetReferenceGasPrice(ctx)
	if err != nil {
		return 0, fmt.Errorf("resolve gas price: %w", err)
	}
	return price, nil
}

func (st *buildState) pure(v any) (wire.Argument, error) {
	raw, err := bcs.Marshal(v)
	if err != nil {
		return wire.Argument{}, fmt.Errorf("%w: encode %T: %v", ErrInput, v, err)
	}
	st.inputs = append(st.inputs, wire.PureArg(raw))
	return wire.InputArg(uint16(len(st.inputs) - 1)), nil
}

func (st *buildState) emit(c wire.Command) uint16 {
	st.prelude = append(st.prelude, c)
	return uint16(len(st.prelude) - 1)
}

// resolveIntents turns coin intents into prelude commands. Zero balances come from
// coin::zero, gas-coin intents share one split of the gas coin, and other intents are split
// off the sender's coins of their type after merging them.
func (st *buildState) resolveIntents(ctx context.Context) error {
	intents := st.b.intents
	st.intents = make([]wire.Argument, len(intents))

	for i, in := range intents {
		if in.Balance != 0 {
			continue
		}
		coinType, err := wire.ParseTypeTag(in.CoinType)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInput, err)
		}
		idx := st.emit(wire.Command{MoveCall: &wire.ProgrammableMoveCall{
			Package:       model.FrameworkAddress,
			Module:        model.CoinModule,
			Function:      model.CoinZeroFunction,
			TypeArguments: []wire.TypeTag{coinType},
		}})
		st.intents[i] = wire.ResultArg(idx)
	}

	type group struct {
		coinType string
		useGas   bool
		members  []int
	}
	var groups []*group
	byKey := make(map[string]*group)
	for i, in := range intents {
		if in.Balance == 0 {
			continue
		}
		key := fmt.Sprintf("%s/%t", in.CoinType, in.useGasCoin)
		g, ok := byKey[key]
		if !ok {
			g = &group{coinType: in.CoinType, useGas: in.useGasCoin}
			byKey[key] = g
			groups = append(groups, g)
		}
		g.members = append(g.members, i)
	}

	for _, g := range groups {
		var total uint64
		for _, i := range g.members {
			sum, carry := bits.Add64(total, intents[i].Balance, 0)
			if carry != 0 {
				return fmt.Errorf("%w: %s intents overflow uint64", ErrInput, g.coinType)
			}
			total = sum
		}

		var source wire.Argument
		if g.useGas {
			source = wire.GasCoinArg()
			st.gasSplit = total
		} else {
			var err error
			source, err = st.selectCoins(ctx, g.coinType, total)
			if err != nil {
				return err
			}
		}

		amounts := make([]wire.Argument, 0, len(g.members))
		for _, i := range g.members {
			a, err := st.pure(intents[i].Balance)
			if err != nil {
				return err
			}
			amounts = append(amounts, a)
		}
		idx := st.emit(wire.Command{SplitCoins: &wire.SplitCoins{Coin: source, Amounts: amounts}})
		for k, i := range g.members {
			st.intents[i] = wire.NestedResultArg(idx, uint16(k))
		}
	}
	return nil
}

// selectCoins adds enough of the sender's coins of coinType to cover total and merges them
// into the first one, which is returned.
func (st *buildState) selectCoins(ctx context.Context, coinType string, total uint64) (wire.Argument, error) {
	if st.r == nil {
		return wire.Argument{}, fmt.Errorf("%w: selecting %s coins requires a resolver", ErrInput, coinType)
	}
	coins, err := st.r.ListCoins(ctx, *st.b.sender, coinType)
	if err != nil {
		return wire.Argument{}, fmt.Errorf("resolve %s coins: %w", coinType, err)
	}
	coins = st.unused(coins)
	sortByBalance(coins)

	var (
		picked []mysorpc.Coin
		sum    uint64
	)
	for _, c := range coins {
		if sum >= total {
			break
		}
		picked = append(picked, c)
		sum += uint64(c.Balance)
	}
	if sum < total {
		return wire.Argument{}, fmt.Errorf("%w: sender holds %d of %s, needs %d", ErrInput, sum, coinType, total)
	}

	args := make([]wire.Argument, len(picked))
	for i, c := range picked {
		ref := wire.NewObjectRef(c.Ref())
		st.inputs = append(st.inputs, wire.CallArg{Object: &wire.ObjectArg{ImmOrOwnedObject: &ref}})
		st.used[c.CoinObjectID] = struct{}{}
		args[i] = wire.InputArg(uint16(len(st.inputs) - 1))
	}

	primary := args[0]
	for rest := args[1:]; len(rest) > 0; {
		n := min(len(rest), MaxMergeSources)
		st.emit(wire.Command{MergeCoins: &wire.MergeCoins{Destination: primary, Sources: rest[:n]}})
		rest = rest[n:]
	}
	return primary, nil
}

func (st *buildState) unused(coins []mysorpc.Coin) []mysorpc.Coin {
	out := make([]mysorpc.Coin, 0, len(coins))
	for _, c := range coins {
		if _, taken := st.used[c.CoinObjectID]; !taken {
			out = append(out, c)
		}
	}
	return out
}

func sortByBalance(coins []mysorpc.Coin) {
	sort.SliceStable(coins, func(i, j int) bool {
		return coins[i].Balance > coins[j].Balance
	})
}

// arg binds a builder argument to its final position.
func (st *buildState) arg(a Argument) (wire.Argument, error) {
	shift := uint16(len(st.prelude))
	switch a.kind {
	case argGasCoin:
		return wire.GasCoinArg(), nil
	case argInput:
		return wire.InputArg(a.index), nil
	case argResult:
		if int(a.index) >= len(st.b.cmds) {
			return wire.Argument{}, fmt.Errorf("%w: result of unknown command %d", ErrInput, a.index)
		}
		return wire.ResultArg(a.index + shift), nil
	case argNestedResult:
		if int(a.index) >= len(st.b.cmds) {
			return wire.Argument{}, fmt.Errorf("%w: result of unknown command %d", ErrInput, a.index)
		}
		return wire.NestedResultArg(a.index+shift, a.nested), nil
	case argIntent:
		return st.intents[a.index], nil
	default:
		return wire.Argument{}, fmt.Errorf("%w: unknown argument kind %d", ErrInput, a.kind)
	}
}

func (st *buildState) args(in []Argument) ([]wire.Argument, error) {
	out := make([]wire.Argument, len(in))
	for i, a := range in {
		w, err := st.arg(a)
		if err != nil {
			return nil, err
		}
		out[i] = w
	}
	return out, nil
}

func (st *buildState) command(c command) (wire.Command, error) {
	args, err := st.args(c.args)
	if err != nil {
		return wire.Command{}, err
	}

	switch c.kind {
	case cmdMoveCall:
		return wire.Command{MoveCall: &wire.ProgrammableMoveCall{
			Package:       c.function.Package,
			Module:        c.function.Module,
			Function:      c.function.Name,
			TypeArguments: c.function.TypeArgs,
			Arguments:     args,
		}}, nil
	case cmdPublish:
		return wire.Command{Publish: &wire.Publish{Modules: c.modules, Dependencies: c.deps}}, nil
	}

	target, err := st.arg(c.target)
	if err != nil {
		return wire.Command{}, err
	}
	switch c.kind {
	case cmdTransferObjects:
		return wire.Command{TransferObjects: &wire.TransferObjects{Objects: args, Address: target}}, nil
	case cmdSplitCoins:
		return wire.Command{SplitCoins: &wire.SplitCoins{Coin: target, Amounts: args}}, nil
	case cmdMergeCoins:
		return wire.Command{MergeCoins: &wire.MergeCoins{Destination: target, Sources: args}}, nil
	default:
		return wire.Command{}, fmt.Errorf("%w: unknown command kind %d", ErrInput, c.kind)
	}
}
