// Package mocks holds testify mocks of the harness's interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/thep2p/go-myso-localnet/internal/model"
	"github.com/thep2p/go-myso-localnet/internal/mysorpc"
)

// Client is a mock implementation of mysorpc.Client using testify/mock.
type Client struct {
	mock.Mock
}

var _ mysorpc.Client = (*Client)(nil)

// GetServiceInfo returns the scripted service info.
func (m *Client) GetServiceInfo(ctx context.Context) (*mysorpc.ServiceInfo, error) {
	args := m.Called(ctx)
	info, _ := args.Get(0).(*mysorpc.ServiceInfo)
	return info, args.Error(1)
}

// GetCheckpoint returns the scripted checkpoint.
func (m *Client) GetCheckpoint(ctx context.Context, sequence uint64) (*mysorpc.Checkpoint, error) {
	args := m.Called(ctx, sequence)
	cp, _ := args.Get(0).(*mysorpc.Checkpoint)
	return cp, args.Error(1)
}

// ExecuteTransactionAndWaitForCheckpoint returns the scripted execution response.
func (m *Client) ExecuteTransactionAndWaitForCheckpoint(
	ctx context.Context,
	req *mysorpc.ExecuteTransactionRequest,
	timeout time.Duration,
) (*mysorpc.TransactionResponse, error) {
	args := m.Called(ctx, req, timeout)
	resp, _ := args.Get(0).(*mysorpc.TransactionResponse)
	return resp, args.Error(1)
}

// ListOwnedObjects returns the scripted objects.
func (m *Client) ListOwnedObjects(ctx context.Context, owner model.Address, mask mysorpc.FieldMask) ([]mysorpc.Object, error) {
	args := m.Called(ctx, owner, mask)
	objs, _ := args.Get(0).([]mysorpc.Object)
	return objs, args.Error(1)
}

// ListCoins returns the scripted coins.
func (m *Client) ListCoins(ctx context.Context, owner model.Address, coinType string) ([]mysorpc.Coin, error) {
	args := m.Called(ctx, owner, coinType)
	coins, _ := args.Get(0).([]mysorpc.Coin)
	return coins, args.Error(1)
}

// GetObject returns the scripted object.
func (m *Client) GetObject(ctx context.Context, id model.ObjectID, mask mysorpc.FieldMask) (*mysorpc.Object, error) {
	args := m.Called(ctx, id, mask)
	obj, _ := args.Get(0).(*mysorpc.Object)
	return obj, args.Error(1)
}

// GetReferenceGasPrice returns the scripted gas price.
func (m *Client) GetReferenceGasPrice(ctx context.Context) (uint64, error) {
	args := m.Called(ctx)
	return args.Get(0).(uint64), args.Error(1)
}

// SimulateTransaction returns the scripted simulation.
func (m *Client) SimulateTransaction(ctx context.Context, txBytes []byte) (*mysorpc.SimulationResult, error) {
	args := m.Called(ctx, txBytes)
	res, _ := args.Get(0).(*mysorpc.SimulationResult)
	return res, args.Error(1)
}

// Close records the call.
func (m *Client) Close() {
	m.Called()
}
