// Package wire defines the BCS layout of transaction data. Enums follow go-bcs conventions:
// exactly one pointer field is set and its position is the variant index.
package wire

import (
	"github.com/thep2p/go-myso-localnet/internal/model"
)

// TransactionData is the versioned envelope that gets signed.
type TransactionData struct {
	V1 *TransactionDataV1
}

func (TransactionData) IsBcsEnum() {}

// TransactionDataV1 is the current transaction data layout.
type TransactionDataV1 struct {
	Kind       TransactionKind
	Sender     model.Address
	GasData    GasData
	Expiration TransactionExpiration
}

// TransactionKind only carries the programmable variant; system kinds occupy later indices.
type TransactionKind struct {
	ProgrammableTransaction *ProgrammableTransaction
}

func (TransactionKind) IsBcsEnum() {}

// ProgrammableTransaction is a list of inputs and the commands operating on them.
type ProgrammableTransaction struct {
	Inputs   []CallArg
	Commands []Command
}

// GasData pays for a transaction.
type GasData struct {
	Payment []ObjectRef
	Owner   model.Address
	Price   uint64
	Budget  uint64
}

// ObjectRef pins an object version. The digest is length-prefixed on the wire.
type ObjectRef struct {
	ObjectID model.Address
	Version  uint64
	Digest   []byte
}

// NewObjectRef converts a model reference.
func NewObjectRef(ref model.ObjectRef) ObjectRef {
	return ObjectRef{
		ObjectID: ref.ObjectID,
		Version:  ref.Version,
		Digest:   append([]byte(nil), ref.Digest[:]...),
	}
}

// TransactionExpiration bounds the epochs a transaction is valid in.
type TransactionExpiration struct {
	None  *struct{}
	Epoch *uint64
}

func (TransactionExpiration) IsBcsEnum() {}

// NoExpiration is a transaction valid in any epoch.
func NoExpiration() TransactionExpiration {
	return TransactionExpiration{None: &struct{}{}}
}

// CallArg is a transaction input.
type CallArg struct {
	Pure   *[]byte
	Object *ObjectArg
}

func (CallArg) IsBcsEnum() {}

// PureArg wraps BCS bytes of a plain value.
func PureArg(b []byte) CallArg {
	return CallArg{Pure: &b}
}

// ObjectArg is an object input.
type ObjectArg struct {
	ImmOrOwnedObject *ObjectRef
	SharedObject     *SharedObjectRef
	Receiving        *ObjectRef
}

func (ObjectArg) IsBcsEnum() {}

// SharedObjectRef names a shared object at its initial shared version.
type SharedObjectRef struct {
	ObjectID             model.Address
	InitialSharedVersion uint64
	Mutable              bool
}

// Argument refers to a value available to a command.
type Argument struct {
	GasCoin      *struct{}
	Input        *uint16
	Result       *uint16
	NestedResult *NestedResult
}

func (Argument) IsBcsEnum() {}

// NestedResult is one value of a command returning several.
type NestedResult struct {
	Result uint16
	Index  uint16
}

// GasCoinArg is the coin paying for gas.
func GasCoinArg() Argument {
	return Argument{GasCoin: &struct{}{}}
}

// InputArg refers to the i-th input.
func InputArg(i uint16) Argument {
	return Argument{Input: &i}
}

// ResultArg refers to the single result of the i-th command.
func ResultArg(i uint16) Argument {
	return Argument{Result: &i}
}

// NestedResultArg refers to result j of the i-th command.
func NestedResultArg(i, j uint16) Argument {
	return Argument{NestedResult: &NestedResult{Result: i, Index: j}}
}

// Command is a single step of a programmable transaction.
type Command struct {
	MoveCall        *ProgrammableMoveCall
	TransferObjects *TransferObjects
	SplitCoins      *SplitCoins
	MergeCoins      *MergeCoins
	Publish         *Publish
}

func (Command) IsBcsEnum() {}

// ProgrammableMoveCall calls a public Move function.
type ProgrammableMoveCall struct {
	Package       model.Address
	Module        string
	Function      string
	TypeArguments []TypeTag
	Arguments     []Argument
}

// TransferObjects sends objects to an address argument.
type TransferObjects struct {
	Objects []Argument
	Address Argument
}

// SplitCoins splits amounts off a coin, returning one coin per amount.
type SplitCoins struct {
	Coin    Argument
	Amounts []Argument
}

// MergeCoins merges sources into the destination coin.
type MergeCoins struct {
	Destination Argument
	Sources     []Argument
}

// Publish publishes a package and returns its upgrade capability.
type Publish struct {
	Modules      [][]byte
	Dependencies []model.Address
}
