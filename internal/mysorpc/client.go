// Package mysorpc is the client side of the node's JSON-RPC interface, limited to the
// queries and submissions the harness performs.
package mysorpc

import (
	"context"
	"errors"
	"time"

	"github.com/thep2p/go-myso-localnet/internal/keys"
	"github.com/thep2p/go-myso-localnet/internal/model"
)

// ErrCheckpointTimeout is returned when a transaction was not included in a checkpoint in time.
var ErrCheckpointTimeout = errors.New("transaction not checkpointed within timeout")

// ServiceInfoGetter reports the node's chain view. It is all the readiness gate needs.
type ServiceInfoGetter interface {
	GetServiceInfo(ctx context.Context) (*ServiceInfo, error)
}

// Client is the node API used by the harness.
type Client interface {
	ServiceInfoGetter

	// GetCheckpoint returns the checkpoint with the given sequence number.
	GetCheckpoint(ctx context.Context, sequence uint64) (*Checkpoint, error)

	// ExecuteTransactionAndWaitForCheckpoint submits a signed transaction and returns once
	// it is part of a checkpoint, or ErrCheckpointTimeout after timeout.
	ExecuteTransactionAndWaitForCheckpoint(ctx context.Context, req *ExecuteTransactionRequest, timeout time.Duration) (*TransactionResponse, error)

	// ListOwnedObjects returns every object owned by owner, following pagination.
	ListOwnedObjects(ctx context.Context, owner model.Address, mask FieldMask) ([]Object, error)

	// ListCoins returns every coin of coinType owned by owner, following pagination.
	ListCoins(ctx context.Context, owner model.Address, coinType string) ([]Coin, error)

	// GetObject reads one object at its latest version.
	GetObject(ctx context.Context, id model.ObjectID, mask FieldMask) (*Object, error)

	// GetReferenceGasPrice returns the reference gas price of the current epoch.
	GetReferenceGasPrice(ctx context.Context) (uint64, error)

	// SimulateTransaction dry-runs unsigned transaction bytes.
	SimulateTransaction(ctx context.Context, txBytes []byte) (*SimulationResult, error)

	// Close releases the underlying connection.
	Close()
}

// ExecuteTransactionRequest is a signed transaction ready for submission.
type ExecuteTransactionRequest struct {
	TxBytes    []byte
	Signatures []keys.Signature
	ReadMask   FieldMask
}

// NewExecuteTransactionRequest returns a request with the full read mask.
func NewExecuteTransactionRequest(txBytes []byte, sigs ...keys.Signature) *ExecuteTransactionRequest {
	return &ExecuteTransactionRequest{
		TxBytes:    txBytes,
		Signatures: sigs,
		ReadMask:   FieldMaskFromString(Wildcard),
	}
}
