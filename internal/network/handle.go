package network

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/looplab/fsm"
	"github.com/rs/zerolog"
	"github.com/thep2p/go-myso-localnet/internal/keys"
	"github.com/thep2p/go-myso-localnet/internal/model"
	"github.com/thep2p/go-myso-localnet/internal/mysorpc"
	"github.com/thep2p/go-myso-localnet/internal/node"
)

// Handle is a running test network. It exclusively owns the node process and the working
// directory until Close.
//
// Harness transactions are signed by the first user key. Callers must serialize Fund calls
// on one handle: concurrent calls may select the same gas coins.
type Handle struct {
	logger zerolog.Logger
	binary string
	dir    string
	rpcURL string

	process *node.Process
	client  mysorpc.Client

	validatorCount int
	epochDuration  time.Duration
	validatorKeys  map[model.Address]keys.PrivateKey
	userKeys       []keys.PrivateKey
	txTimeout      time.Duration

	lifecycle *fsm.FSM

	closeOnce sync.Once
	closeErr  error
}

// Dir returns the working directory holding the genesis output and the node logs.
func (h *Handle) Dir() string {
	return h.dir
}

// RPCURL returns the JSON-RPC endpoint of the node.
func (h *Handle) RPCURL() string {
	return h.rpcURL
}

// Client returns the RPC client of the network. It is closed by Close.
func (h *Handle) Client() mysorpc.Client {
	return h.client
}

// ValidatorCount returns the committee size.
func (h *Handle) ValidatorCount() int {
	return h.validatorCount
}

// EpochDuration returns the epoch length.
func (h *Handle) EpochDuration() time.Duration {
	return h.epochDuration
}

// ValidatorKeys returns the validator account keys by address.
func (h *Handle) ValidatorKeys() map[model.Address]keys.PrivateKey {
	return maps.Clone(h.validatorKeys)
}

// UserKeys returns the pre-funded user keys in genesis order.
func (h *Handle) UserKeys() []keys.PrivateKey {
	return slices.Clone(h.userKeys)
}

// FundingKey returns the key that signs harness transactions.
func (h *Handle) FundingKey() keys.PrivateKey {
	return h.userKeys[0]
}

// State returns the lifecycle state of the handle.
func (h *Handle) State() string {
	return h.lifecycle.Current()
}

// Close kills the node process, closes the client and removes the working directory.
// It is safe to call more than once; later calls return the first result.
func (h *Handle) Close() error {
	h.closeOnce.Do(func() {
		if h.lifecycle.Can(eventClose) {
			_ = h.lifecycle.Event(context.Background(), eventClose)
		}

		var errs []error
		if h.process != nil {
			if err := h.process.Stop(); err != nil {
				errs = append(errs, fmt.Errorf("stop node: %w", err))
			}
		}
		if h.client != nil {
			h.client.Close()
		}
		if err := os.RemoveAll(h.dir); err != nil {
			errs = append(errs, fmt.Errorf("remove working dir: %w", err))
		}
		h.closeErr = errors.Join(errs...)
		h.logger.Info().Msg("network closed")
	})
	return h.closeErr
}

func (h *Handle) checkOpen() error {
	if h.lifecycle.Is(StateClosed) {
		return ErrClosed
	}
	return nil
}
