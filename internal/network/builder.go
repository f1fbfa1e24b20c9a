// Package network boots ephemeral test networks and drives the transactions that make
// them usable: the one-time system state upgrade and account funding.
package network

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/thep2p/go-myso-localnet/internal/binary"
	"github.com/thep2p/go-myso-localnet/internal/genesis"
	"github.com/thep2p/go-myso-localnet/internal/model"
	"github.com/thep2p/go-myso-localnet/internal/node"
	"github.com/thep2p/go-myso-localnet/internal/port"
)

// WorkingDirPattern names the temporary working directory of a network.
const WorkingDirPattern = "myso-localnet-*"

// Builder boots networks. A Builder may be reused; every Build produces an independent network.
type Builder struct {
	opts options
}

// NewBuilder returns a Builder for DefaultConfig modified by opts.
func NewBuilder(opts ...Option) *Builder {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Builder{opts: o}
}

// Config returns the network configuration the builder requests.
func (b *Builder) Config() model.Config {
	return b.opts.config
}

// Build generates genesis, starts the node, waits until it produces checkpoints, upgrades the
// system state and funds the validators. The returned handle owns the process and the working
// directory. On failure everything acquired so far is released and binary.ErrNotFound is
// passed through when no executable is available.
func (b *Builder) Build(ctx context.Context) (_ *Handle, err error) {
	cfg := b.opts.config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := b.opts.readiness.Validate(); err != nil {
		return nil, err
	}

	bin, err := binary.Resolve(cfg.BinaryPath)
	if err != nil {
		return nil, fmt.Errorf("locate binary: %w", err)
	}

	dir, err := os.MkdirTemp("", WorkingDirPattern)
	if err != nil {
		return nil, fmt.Errorf("create working dir: %w", err)
	}

	logger := b.opts.logger.With().Str("component", "network").Str("working_dir", dir).Logger()
	h := &Handle{
		logger:         logger,
		binary:         bin,
		dir:            dir,
		validatorCount: cfg.ValidatorCount,
		epochDuration:  cfg.EpochDuration,
		txTimeout:      b.opts.txTimeout,
		lifecycle:      newLifecycle(logger),
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, h.Close())
		}
	}()

	if err := genesis.NewGenerator(b.opts.logger, bin).Generate(ctx, dir, cfg); err != nil {
		return nil, err
	}

	ks, err := genesis.LoadKeys(dir)
	if err != nil {
		return nil, fmt.Errorf("load keys: %w", err)
	}
	if _, err := ks.FundingKey(); err != nil {
		return nil, fmt.Errorf("load keys: %w", err)
	}
	h.validatorKeys = ks.Validators
	h.userKeys = ks.Users

	rpcPort, err := port.Ephemeral()
	if err != nil {
		return nil, fmt.Errorf("allocate rpc port: %w", err)
	}

	nodeCfg := node.Config{Binary: bin, WorkingDir: dir, RPCPort: rpcPort}
	process, err := node.NewLauncher(b.opts.logger).Launch(nodeCfg)
	if err != nil {
		return nil, fmt.Errorf("launch node: %w", err)
	}
	h.process = process
	h.rpcURL = nodeCfg.RPCURL()

	client, err := b.opts.dialer(ctx, b.opts.logger, h.rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", h.rpcURL, err)
	}
	h.client = client

	gate := node.NewReadinessGate(b.opts.logger, b.opts.readiness)
	if err := gate.Wait(ctx, h.client, h.process.Done()); err != nil {
		return nil, fmt.Errorf("wait for readiness: %w", err)
	}
	if err := h.lifecycle.Event(ctx, eventReady); err != nil {
		return nil, fmt.Errorf("mark ready: %w", err)
	}

	if err := h.UpgradeSystemState(ctx); err != nil {
		return nil, err
	}

	if cfg.FundValidators {
		if err := h.Fund(ctx, h.validatorFunding(cfg.ValidatorFunding)); err != nil {
			return nil, fmt.Errorf("fund validators: %w", err)
		}
	}

	logger.Info().
		Str("rpc_url", h.rpcURL).
		Int("validators", h.validatorCount).
		Uint64("epoch_duration_ms", cfg.EpochDurationMs()).
		Msg("network ready")
	return h, nil
}

// Start boots a network with opts. It is NewBuilder(opts...).Build(ctx).
func Start(ctx context.Context, opts ...Option) (*Handle, error) {
	return NewBuilder(opts...).Build(ctx)
}
