package mysorpc

import (
	"encoding/json"
	"fmt"

	"github.com/thep2p/go-myso-localnet/internal/model"
)

// ServiceInfo summarizes the node's view of the chain.
type ServiceInfo struct {
	ChainID          string
	Epoch            uint64
	CheckpointHeight uint64
	TimestampMs      uint64
}

// Checkpoint is a certified checkpoint summary.
type Checkpoint struct {
	Epoch                    model.Uint64   `json:"epoch"`
	SequenceNumber           model.Uint64   `json:"sequenceNumber"`
	Digest                   model.Digest   `json:"digest"`
	PreviousDigest           *model.Digest  `json:"previousDigest,omitempty"`
	NetworkTotalTransactions model.Uint64   `json:"networkTotalTransactions"`
	TimestampMs              model.Uint64   `json:"timestampMs"`
	Transactions             []model.Digest `json:"transactions"`
}

// OwnerKind discriminates object ownership.
type OwnerKind int

const (
	OwnerUnknown OwnerKind = iota
	// OwnerAddress objects belong to an account.
	OwnerAddress
	// OwnerObject objects are children of another object.
	OwnerObject
	// OwnerShared objects can be used by anyone, at their initial shared version.
	OwnerShared
	// OwnerImmutable objects are frozen.
	OwnerImmutable
)

func (k OwnerKind) String() string {
	switch k {
	case OwnerAddress:
		return "AddressOwner"
	case OwnerObject:
		return "ObjectOwner"
	case OwnerShared:
		return "Shared"
	case OwnerImmutable:
		return "Immutable"
	default:
		return "Unknown"
	}
}

// Owner describes who can use an object.
type Owner struct {
	Kind OwnerKind
	// Address is set for OwnerAddress and OwnerObject.
	Address model.Address
	// InitialSharedVersion is set for OwnerShared.
	InitialSharedVersion uint64
}

type ownerWire struct {
	AddressOwner *model.Address `json:"AddressOwner,omitempty"`
	ObjectOwner  *model.Address `json:"ObjectOwner,omitempty"`
	Shared       *struct {
		InitialSharedVersion model.Uint64 `json:"initial_shared_version"`
	} `json:"Shared,omitempty"`
}

// UnmarshalJSON decodes either the string "Immutable" or a single-key ownership object.
func (o *Owner) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != OwnerImmutable.String() {
			return fmt.Errorf("unknown owner %q", s)
		}
		*o = Owner{Kind: OwnerImmutable}
		return nil
	}

	var w ownerWire
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("decode owner: %w", err)
	}
	switch {
	case w.AddressOwner != nil:
		*o = Owner{Kind: OwnerAddress, Address: *w.AddressOwner}
	case w.ObjectOwner != nil:
		*o = Owner{Kind: OwnerObject, Address: *w.ObjectOwner}
	case w.Shared != nil:
		*o = Owner{Kind: OwnerShared, InitialSharedVersion: uint64(w.Shared.InitialSharedVersion)}
	default:
		return fmt.Errorf("unknown owner %s", data)
	}
	return nil
}

// MarshalJSON encodes the owner in the node's wire form.
func (o Owner) MarshalJSON() ([]byte, error) {
	switch o.Kind {
	case OwnerImmutable:
		return json.Marshal(OwnerImmutable.String())
	case OwnerAddress:
		return json.Marshal(ownerWire{AddressOwner: &o.Address})
	case OwnerObject:
		return json.Marshal(ownerWire{ObjectOwner: &o.Address})
	case OwnerShared:
		w := ownerWire{Shared: &struct {
			InitialSharedVersion model.Uint64 `json:"initial_shared_version"`
		}{InitialSharedVersion: model.Uint64(o.InitialSharedVersion)}}
		return json.Marshal(w)
	default:
		return nil, fmt.Errorf("cannot encode owner kind %d", o.Kind)
	}
}

// MoveContent is the parsed Move value of an object.
type MoveContent struct {
	DataType string          `json:"dataType"`
	Type     string          `json:"type,omitempty"`
	Fields   json.RawMessage `json:"fields,omitempty"`
}

// Object is an on-chain object as returned by object queries.
type Object struct {
	ObjectID model.ObjectID `json:"objectId"`
	Version  model.Uint64   `json:"version"`
	Digest   model.Digest   `json:"digest"`
	Type     string         `json:"type,omitempty"`
	Owner    *Owner         `json:"owner,omitempty"`
	Content  *MoveContent   `json:"content,omitempty"`
}

// Ref returns the object reference at the returned version.
func (o *Object) Ref() model.ObjectRef {
	return model.ObjectRef{ObjectID: o.ObjectID, Version: uint64(o.Version), Digest: o.Digest}
}

// Balance returns the balance field of a coin object. The object must have been read with
// content selected.
func (o *Object) Balance() (uint64, error) {
	if o.Content == nil || len(o.Content.Fields) == 0 {
		return 0, fmt.Errorf("object %s has no content", o.ObjectID)
	}
	var fields struct {
		Balance *model.Uint64 `json:"balance"`
	}
	if err := json.Unmarshal(o.Content.Fields, &fields); err != nil {
		return 0, fmt.Errorf("decode fields of %s: %w", o.ObjectID, err)
	}
	if fields.Balance == nil {
		return 0, fmt.Errorf("object %s is not a coin", o.ObjectID)
	}
	return uint64(*fields.Balance), nil
}

// ObjectError is the per-object error of a read.
type ObjectError struct {
	Code     string          `json:"code"`
	ObjectID *model.ObjectID `json:"object_id,omitempty"`
}

func (e *ObjectError) Error() string {
	if e.ObjectID != nil {
		return fmt.Sprintf("object %s: %s", e.ObjectID, e.Code)
	}
	return e.Code
}

// ObjectResponse wraps an object read.
type ObjectResponse struct {
	Data  *Object      `json:"data,omitempty"`
	Error *ObjectError `json:"error,omitempty"`
}

// Coin is a coin owned by an account.
type Coin struct {
	CoinType     string         `json:"coinType"`
	CoinObjectID model.ObjectID `json:"coinObjectId"`
	Version      model.Uint64   `json:"version"`
	Digest       model.Digest   `json:"digest"`
	Balance      model.Uint64   `json:"balance"`
}

// Ref returns the coin's object reference.
func (c Coin) Ref() model.ObjectRef {
	return model.ObjectRef{ObjectID: c.CoinObjectID, Version: uint64(c.Version), Digest: c.Digest}
}

// Page is one page of a paginated listing.
type Page[T any] struct {
	Data        []T     `json:"data"`
	NextCursor  *string `json:"nextCursor"`
	HasNextPage bool    `json:"hasNextPage"`
}

// OwnedObjectsQuery filters and shapes an owned-object listing.
type OwnedObjectsQuery struct {
	Filter  *OwnedObjectsFilter `json:"filter,omitempty"`
	Options ObjectDataOptions   `json:"options"`
}

// OwnedObjectsFilter restricts an owned-object listing to one type.
type OwnedObjectsFilter struct {
	StructType string `json:"StructType,omitempty"`
}

// ExecutionStatus is the outcome recorded in transaction effects.
type ExecutionStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// StatusSuccess is the status of a transaction that executed without aborting.
const StatusSuccess = "success"

// Success reports whether execution succeeded.
func (s ExecutionStatus) Success() bool {
	return s.Status == StatusSuccess
}

// GasCostSummary is the gas charged to a transaction.
type GasCostSummary struct {
	ComputationCost         model.Uint64 `json:"computationCost"`
	StorageCost             model.Uint64 `json:"storageCost"`
	StorageRebate           model.Uint64 `json:"storageRebate"`
	NonRefundableStorageFee model.Uint64 `json:"nonRefundableStorageFee"`
}

// OwnedObjectRef is an object reference with its owner after execution.
type OwnedObjectRef struct {
	Owner     Owner     `json:"owner"`
	Reference ObjectRef `json:"reference"`
}

// ObjectRef is the wire form of model.ObjectRef.
type ObjectRef struct {
	ObjectID model.ObjectID `json:"objectId"`
	Version  model.Uint64   `json:"version"`
	Digest   model.Digest   `json:"digest"`
}

// Effects are the effects of an executed or simulated transaction.
type Effects struct {
	Status            ExecutionStatus  `json:"status"`
	ExecutedEpoch     model.Uint64     `json:"executedEpoch"`
	GasUsed           GasCostSummary   `json:"gasUsed"`
	TransactionDigest model.Digest     `json:"transactionDigest"`
	Created           []OwnedObjectRef `json:"created,omitempty"`
	Mutated           []OwnedObjectRef `json:"mutated,omitempty"`
	GasObject         *OwnedObjectRef  `json:"gasObject,omitempty"`
}

// BalanceChange is a per-owner balance delta of one coin type.
type BalanceChange struct {
	Owner    Owner  `json:"owner"`
	CoinType string `json:"coinType"`
	Amount   string `json:"amount"`
}

// TransactionResponse is an executed transaction as reported by the node.
type TransactionResponse struct {
	Digest         model.Digest    `json:"digest"`
	Effects        *Effects        `json:"effects,omitempty"`
	BalanceChanges []BalanceChange `json:"balanceChanges,omitempty"`
	Checkpoint     *model.Uint64   `json:"checkpoint,omitempty"`
	TimestampMs    *model.Uint64   `json:"timestampMs,omitempty"`
	Errors         []string        `json:"errors,omitempty"`
}

// SimulationResult is the outcome of a dry run.
type SimulationResult struct {
	Effects Effects `json:"effects"`
}
