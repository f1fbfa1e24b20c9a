// Package txbuilder assembles programmable transactions. Object inputs, coin intents and
// gas parameters left open by the caller are resolved against the node when building.
package txbuilder

import (
	"fmt"

	"github.com/fardream/go-bcs/bcs"
	"github.com/thep2p/go-myso-localnet/internal/model"
)

type input struct {
	pure   []byte
	object *ObjectInput
}

type commandKind uint8

const (
	cmdMoveCall commandKind = iota
	cmdTransferObjects
	cmdSplitCoins
	cmdMergeCoins
	cmdPublish
)

// command is a command whose arguments are not yet bound to final positions.
type command struct {
	kind     commandKind
	function Function
	// target is the address of TransferObjects, the coin of SplitCoins and the destination of MergeCoins.
	target  Argument
	args    []Argument
	modules [][]byte
	deps    []model.Address
}

// Builder collects the parts of a single transaction. It is not safe for concurrent use.
type Builder struct {
	sender     *model.Address
	gasBudget  *uint64
	gasPrice   *uint64
	gasObjects []ObjectInput

	inputs  []input
	objects map[model.ObjectID]int
	intents []CoinWithBalance
	cmds    []command

	err error
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{objects: make(map[model.ObjectID]int)}
}

// SetSender sets the address that signs and, unless gas objects are given, pays.
func (b *Builder) SetSender(sender model.Address) {
	b.sender = &sender
}

// SetGasBudget fixes the budget. Without it the budget is estimated by simulation.
func (b *Builder) SetGasBudget(budget uint64) {
	b.gasBudget = &budget
}

// SetGasPrice fixes the price. Without it the reference gas price is used.
func (b *Builder) SetGasPrice(price uint64) {
	b.gasPrice = &price
}

// AddGasObjects pays gas with the given coins instead of coins selected from the sender's.
func (b *Builder) AddGasObjects(objs ...ObjectInput) {
	b.gasObjects = append(b.gasObjects, objs...)
}

// Pure adds a BCS-encoded plain value as input.
func (b *Builder) Pure(v any) Argument {
	raw, err := bcs.Marshal(v)
	if err != nil {
		b.fail(fmt.Errorf("%w: encode pure value %T: %v", ErrInput, v, err))
	}
	return b.PureBytes(raw)
}

// PureBytes adds already encoded input bytes.
func (b *Builder) PureBytes(raw []byte) Argument {
	b.inputs = append(b.inputs, input{pure: raw})
	return Argument{kind: argInput, index: uint16(len(b.inputs) - 1)}
}

// Object adds an object input. Adding the same object twice returns the same argument; a
// shared object declared mutable once stays mutable.
func (b *Builder) Object(o ObjectInput) Argument {
	if i, ok := b.objects[o.ID]; ok {
		existing := b.inputs[i].object
		if o.Mutable != nil && (existing.Mutable == nil || *o.Mutable) {
			existing.Mutable = o.Mutable
		}
		if existing.Kind == ObjectKindUnknown {
			existing.Kind = o.Kind
		}
		return Argument{kind: argInput, index: uint16(i)}
	}

	obj := o
	b.inputs = append(b.inputs, input{object: &obj})
	b.objects[o.ID] = len(b.inputs) - 1
	return Argument{kind: argInput, index: uint16(len(b.inputs) - 1)}
}

// Intent adds a coin that is produced when the transaction is built.
func (b *Builder) Intent(c CoinWithBalance) Argument {
	b.intents = append(b.intents, c)
	return Argument{kind: argIntent, index: uint16(len(b.intents) - 1)}
}

// MoveCall calls a Move function and returns its result.
func (b *Builder) MoveCall(f Function, args ...Argument) Argument {
	return b.add(command{kind: cmdMoveCall, function: f, args: args})
}

// TransferObjects sends objects to the address held by recipient.
func (b *Builder) TransferObjects(objects []Argument, recipient Argument) {
	b.add(command{kind: cmdTransferObjects, target: recipient, args: objects})
}

// SplitCoins splits amounts off coin. The result holds one coin per amount; use Nested to address them.
func (b *Builder) SplitCoins(coin Argument, amounts ...Argument) Argument {
	return b.add(command{kind: cmdSplitCoins, target: coin, args: amounts})
}

// MergeCoins merges sources into destination.
func (b *Builder) MergeCoins(destination Argument, sources ...Argument) {
	b.add(command{kind: cmdMergeCoins, target: destination, args: sources})
}

// Publish publishes compiled modules and returns the package's upgrade capability.
func (b *Builder) Publish(modules [][]byte, deps []model.Address) Argument {
	return b.add(command{kind: cmdPublish, modules: modules, deps: deps})
}

func (b *Builder) add(c command) Argument {
	b.cmds = append(b.cmds, c)
	return Argument{kind: argResult, index: uint16(len(b.cmds) - 1)}
}

func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}
