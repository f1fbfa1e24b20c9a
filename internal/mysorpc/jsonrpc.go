package mysorpc

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/rs/zerolog"
	"github.com/thep2p/go-myso-localnet/internal/model"
)

const (
	// DefaultPollInterval spaces the checkpoint inclusion polls of a submitted transaction.
	DefaultPollInterval = 100 * time.Millisecond

	// pageLimit is the page size requested from paginated listings.
	pageLimit = 50
)

// JSONRPCClient implements Client over the node's JSON-RPC endpoint.
type JSONRPCClient struct {
	logger       zerolog.Logger
	rpc          *rpc.Client
	pollInterval time.Duration
}

var _ Client = (*JSONRPCClient)(nil)

// ClientOption modifies a JSONRPCClient.
type ClientOption func(*JSONRPCClient)

// WithPollInterval sets the interval between checkpoint inclusion polls.
func WithPollInterval(d time.Duration) ClientOption {
	return func(c *JSONRPCClient) {
		c.pollInterval = d
	}
}

// Dial connects to the node's JSON-RPC endpoint.
func Dial(ctx context.Context, logger zerolog.Logger, url string, opts ...ClientOption) (*JSONRPCClient, error) {
	c, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return NewJSONRPCClient(logger.With().Str("rpc_url", url).Logger(), c, opts...), nil
}

// NewJSONRPCClient wraps an established rpc.Client.
func NewJSONRPCClient(logger zerolog.Logger, c *rpc.Client, opts ...ClientOption) *JSONRPCClient {
	client := &JSONRPCClient{
		logger:       logger.With().Str("component", "rpc-client").Logger(),
		rpc:          c,
		pollInterval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// GetServiceInfo reads the chain identifier and the latest checkpoint.
func (c *JSONRPCClient) GetServiceInfo(ctx context.Context) (*ServiceInfo, error) {
	var chainID string
	if err := c.rpc.CallContext(ctx, &chainID, model.MethodGetChainIdentifier); err != nil {
		return nil, fmt.Errorf("get chain identifier: %w", err)
	}

	var height model.Uint64
	if err := c.rpc.CallContext(ctx, &height, model.MethodGetLatestCheckpointSequenceNumber); err != nil {
		return nil, fmt.Errorf("get latest checkpoint sequence number: %w", err)
	}

	cp, err := c.GetCheckpoint(ctx, uint64(height))
	if err != nil {
		return nil, err
	}

	return &ServiceInfo{
		ChainID:          chainID,
		Epoch:            uint64(cp.Epoch),
		CheckpointHeight: uint64(height),
		TimestampMs:      uint64(cp.TimestampMs),
	}, nil
}

// GetCheckpoint reads one checkpoint summary.
func (c *JSONRPCClient) GetCheckpoint(ctx context.Context, sequence uint64) (*Checkpoint, error) {
	var cp Checkpoint
	if err := c.rpc.CallContext(ctx, &cp, model.MethodGetCheckpoint, strconv.FormatUint(sequence, 10)); err != nil {
		return nil, fmt.Errorf("get checkpoint %d: %w", sequence, err)
	}
	return &cp, nil
}

// ExecuteTransactionAndWaitForCheckpoint submits the transaction, waiting for local execution,
// then polls it until the node reports the checkpoint that includes it.
func (c *JSONRPCClient) ExecuteTransactionAndWaitForCheckpoint(
	ctx context.Context,
	req *ExecuteTransactionRequest,
	timeout time.Duration,
) (*TransactionResponse, error) {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	sigs := make([]string, len(req.Signatures))
	for i, s := range req.Signatures {
		sigs[i] = s.Base64()
	}
	opts := req.ReadMask.TransactionOptions()

	var resp TransactionResponse
	err := c.rpc.CallContext(waitCtx, &resp, model.MethodExecuteTransactionBlock,
		base64.StdEncoding.EncodeToString(req.TxBytes),
		sigs,
		opts,
		model.ExecuteRequestWaitForLocalExecution,
	)
	if err != nil {
		if timedOut(ctx, waitCtx) {
			return nil, fmt.Errorf("%w: execute after %s: %v", ErrCheckpointTimeout, timeout, err)
		}
		return nil, fmt.Errorf("execute transaction: %w", err)
	}
	if resp.Checkpoint != nil {
		return &resp, nil
	}

	lg := c.logger.With().Str("digest", resp.Digest.String()).Logger()
	lg.Debug().Msg("transaction executed, waiting for checkpoint")

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for attempt := 1; ; attempt++ {
		select {
		case <-waitCtx.Done():
			if timedOut(ctx, waitCtx) {
				return nil, fmt.Errorf("%w: transaction %s after %s", ErrCheckpointTimeout, resp.Digest, timeout)
			}
			return nil, ctx.Err()
		case <-ticker.C:
		}

		var polled TransactionResponse
		err := c.rpc.CallContext(waitCtx, &polled, model.MethodGetTransactionBlock, resp.Digest.String(), opts)
		if err != nil {
			// not yet indexed
			lg.Trace().Err(err).Int("attempt", attempt).Msg("transaction not readable yet")
			continue
		}
		if polled.Checkpoint != nil {
			if polled.Effects == nil {
				polled.Effects = resp.Effects
			}
			lg.Debug().Uint64("checkpoint", uint64(*polled.Checkpoint)).Int("attempt", attempt).Msg("transaction checkpointed")
			return &polled, nil
		}
	}
}

// ListOwnedObjects collects all pages of the owner's objects.
func (c *JSONRPCClient) ListOwnedObjects(ctx context.Context, owner model.Address, mask FieldMask) ([]Object, error) {
	query := OwnedObjectsQuery{Options: mask.ObjectOptions()}
	responses, err := collect(ctx, func(ctx context.Context, cursor *string) (*Page[ObjectResponse], error) {
		var page Page[ObjectResponse]
		err := c.rpc.CallContext(ctx, &page, model.MethodGetOwnedObjects, owner, query, cursor, pageLimit)
		return &page, err
	})
	if err != nil {
		return nil, fmt.Errorf("list objects owned by %s: %w", owner, err)
	}

	out := make([]Object, 0, len(responses))
	for _, r := range responses {
		if r.Error != nil {
			return nil, fmt.Errorf("list objects owned by %s: %w", owner, r.Error)
		}
		if r.Data != nil {
			out = append(out, *r.Data)
		}
	}
	return out, nil
}

// ListCoins collects all pages of the owner's coins of one type.
func (c *JSONRPCClient) ListCoins(ctx context.Context, owner model.Address, coinType string) ([]Coin, error) {
	coins, err := collect(ctx, func(ctx context.Context, cursor *string) (*Page[Coin], error) {
		var page Page[Coin]
		err := c.rpc.CallContext(ctx, &page, model.MethodGetCoins, owner, coinType, cursor, pageLimit)
		return &page, err
	})
	if err != nil {
		return nil, fmt.Errorf("list %s coins of %s: %w", coinType, owner, err)
	}
	return coins, nil
}

// GetObject reads one object.
func (c *JSONRPCClient) GetObject(ctx context.Context, id model.ObjectID, mask FieldMask) (*Object, error) {
	var resp ObjectResponse
	if err := c.rpc.CallContext(ctx, &resp, model.MethodGetObject, id, mask.ObjectOptions()); err != nil {
		return nil, fmt.Errorf("get object %s: %w", id, err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("get object %s: %w", id, resp.Error)
	}
	if resp.Data == nil {
		return nil, fmt.Errorf("get object %s: empty response", id)
	}
	return resp.Data, nil
}

// GetReferenceGasPrice reads the reference gas price.
func (c *JSONRPCClient) GetReferenceGasPrice(ctx context.Context) (uint64, error) {
	var price model.Uint64
	if err := c.rpc.CallContext(ctx, &price, model.MethodGetReferenceGasPrice); err != nil {
		return 0, fmt.Errorf("get reference gas price: %w", err)
	}
	return uint64(price), nil
}

// SimulateTransaction dry-runs the transaction.
func (c *JSONRPCClient) SimulateTransaction(ctx context.Context, txBytes []byte) (*SimulationResult, error) {
	var res SimulationResult
	if err := c.rpc.CallContext(ctx, &res, model.MethodDryRunTransactionBlock, base64.StdEncoding.EncodeToString(txBytes)); err != nil {
		return nil, fmt.Errorf("dry run transaction: %w", err)
	}
	return &res, nil
}

// Close closes the connection.
func (c *JSONRPCClient) Close() {
	c.rpc.Close()
}

// collect follows cursors until the node reports no further page.
func collect[T any](ctx context.Context, fetch func(context.Context, *string) (*Page[T], error)) ([]T, error) {
	var (
		out    []T
		cursor *string
	)
	for {
		page, err := fetch(ctx, cursor)
		if err != nil {
			return nil, err
		}
		out = append(out, page.Data...)
		if !page.HasNextPage {
			return out, nil
		}
		if page.NextCursor == nil {
			return nil, errors.New("node reported a next page without a cursor")
		}
		cursor = page.NextCursor
	}
}

// timedOut reports whether waitCtx expired on its own deadline rather than through its parent.
func timedOut(parent, waitCtx context.Context) bool {
	return parent.Err() == nil && errors.Is(waitCtx.Err(), context.DeadlineExceeded)
}
