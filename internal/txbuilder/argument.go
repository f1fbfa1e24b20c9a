package txbuilder

import (
	"fmt"

	"github.com/thep2p/go-myso-localnet/internal/model"
	"github.com/thep2p/go-myso-localnet/internal/txbuilder/wire"
)

type argKind uint8

const (
	argGasCoin argKind = iota
	argInput
	argResult
	argNestedResult
	argIntent
)

// Argument is a handle to a value of the transaction under construction. Command results
// and coin intents are only bound to their final positions when the transaction is built.
type Argument struct {
	kind   argKind
	index  uint16
	nested uint16
}

// GasCoin refers to the coin paying for gas.
var GasCoin = Argument{kind: argGasCoin}

// Nested returns the i-th value of a command returning several values.
func (a Argument) Nested(i uint16) Argument {
	if a.kind != argResult {
		panic(fmt.Sprintf("argument of kind %d has no nested results", a.kind))
	}
	return Argument{kind: argNestedResult, index: a.index, nested: i}
}

// Function names a Move function with its type arguments.
type Function struct {
	Package  model.Address
	Module   string
	Name     string
	TypeArgs []wire.TypeTag
}

func (f Function) String() string {
	return fmt.Sprintf("%s::%s::%s", f.Package, f.Module, f.Name)
}

// ObjectKind describes how an object enters a transaction.
type ObjectKind uint8

const (
	// ObjectKindUnknown objects are resolved against the node when the transaction is built.
	ObjectKindUnknown ObjectKind = iota
	ObjectKindOwned
	ObjectKindImmutable
	ObjectKindShared
	ObjectKindReceiving
)

// ObjectInput is an object argument, possibly only partially known.
type ObjectInput struct {
	ID                   model.ObjectID
	Kind                 ObjectKind
	Version              uint64
	Digest               *model.Digest
	InitialSharedVersion uint64
	// Mutable applies to shared objects only. Unset means mutable when resolved against the node.
	Mutable *bool
}

// ObjectByID is an object whose kind and version are looked up at build time.
func ObjectByID(id model.ObjectID) ObjectInput {
	return ObjectInput{ID: id}
}

// OwnedObject is an address-owned object at a known version.
func OwnedObject(ref model.ObjectRef) ObjectInput {
	d := ref.Digest
	return ObjectInput{ID: ref.ObjectID, Kind: ObjectKindOwned, Version: ref.Version, Digest: &d}
}

// ImmutableObject is a frozen object at a known version.
func ImmutableObject(ref model.ObjectRef) ObjectInput {
	o := OwnedObject(ref)
	o.Kind = ObjectKindImmutable
	return o
}

// ReceivingObject is an object sent to another object, received by this transaction.
func ReceivingObject(ref model.ObjectRef) ObjectInput {
	o := OwnedObject(ref)
	o.Kind = ObjectKindReceiving
	return o
}

// SharedObject is a shared object at its initial shared version.
func SharedObject(id model.ObjectID, initialSharedVersion uint64, mutable bool) ObjectInput {
	return ObjectInput{ID: id, Kind: ObjectKindShared, InitialSharedVersion: initialSharedVersion, Mutable: &mutable}
}

// WithMutable declares the mutability of a shared object.
func (o ObjectInput) WithMutable(mutable bool) ObjectInput {
	o.Mutable = &mutable
	return o
}

// CoinWithBalance asks for a coin of exactly Balance to be produced at build time.
type CoinWithBalance struct {
	CoinType   string
	Balance    uint64
	useGasCoin bool
}

// Myso requests a native coin of the given balance, split off the gas coin.
func Myso(balance uint64) CoinWithBalance {
	return CoinWithBalance{CoinType: model.MysoCoinType, Balance: balance, useGasCoin: true}
}

// NewCoinWithBalance requests a coin of any type. Native coins are split off the gas coin
// unless WithUseGasCoin(false) is applied.
func NewCoinWithBalance(coinType string, balance uint64) CoinWithBalance {
	return CoinWithBalance{CoinType: coinType, Balance: balance, useGasCoin: coinType == model.MysoCoinType}
}

// WithUseGasCoin controls whether a native coin is split off the gas coin or off coins
// selected from the sender's other native coins.
func (c CoinWithBalance) WithUseGasCoin(use bool) CoinWithBalance {
	c.useGasCoin = use && c.CoinType == model.MysoCoinType
	return c
}
