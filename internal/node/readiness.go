package node

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/thep2p/go-myso-localnet/internal/mysorpc"
)

const (
	// DefaultReadinessTimeout bounds the wait for a network to become ready.
	DefaultReadinessTimeout = 30 * time.Second
	// DefaultReadinessInterval is the delay between two readiness probes.
	DefaultReadinessInterval = time.Second
	// DefaultMinCheckpoint is the checkpoint height a ready network must exceed.
	DefaultMinCheckpoint uint64 = 5
)

var (
	// ErrReadinessTimeout is returned when the network does not become ready in time.
	ErrReadinessTimeout = errors.New("network not ready")
	// ErrProcessExited is returned when the node process dies while waiting for readiness.
	ErrProcessExited = errors.New("node process exited")
)

// ReadinessConfig parameterizes a ReadinessGate.
type ReadinessConfig struct {
	Timeout       time.Duration `validate:"gt=0"`
	Interval      time.Duration `validate:"gt=0"`
	MinCheckpoint uint64
}

// DefaultReadinessConfig waits up to 30 seconds, probing every second, for a checkpoint above 5.
func DefaultReadinessConfig() ReadinessConfig {
	return ReadinessConfig{
		Timeout:       DefaultReadinessTimeout,
		Interval:      DefaultReadinessInterval,
		MinCheckpoint: DefaultMinCheckpoint,
	}
}

// Validate checks the configuration against its validation tags.
func (c ReadinessConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid readiness config: %w", err)
	}
	return nil
}

// ReadinessGate blocks until a network produces checkpoints.
type ReadinessGate struct {
	logger zerolog.Logger
	cfg    ReadinessConfig
}

// NewReadinessGate returns a gate using cfg.
func NewReadinessGate(logger zerolog.Logger, cfg ReadinessConfig) *ReadinessGate {
	return &ReadinessGate{
		logger: logger.With().Str("component", "readiness-gate").Logger(),
		cfg:    cfg,
	}
}

// Wait probes the service info until the checkpoint height exceeds the configured minimum.
// Probe errors count as not ready. exited may be nil; when it closes, Wait gives up early.
func (g *ReadinessGate) Wait(ctx context.Context, client mysorpc.ServiceInfoGetter, exited <-chan struct{}) error {
	waitCtx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	ticker := time.NewTicker(g.cfg.Interval)
	defer ticker.Stop()

	for attempt := 1; ; attempt++ {
		info, err := client.GetServiceInfo(waitCtx)
		switch {
		case err != nil:
			g.logger.Debug().Err(err).Int("attempt", attempt).Msg("service info unavailable")
		case info.CheckpointHeight > g.cfg.MinCheckpoint:
			g.logger.Info().
				Uint64("checkpoint", info.CheckpointHeight).
				Str("chain_id", info.ChainID).
				Int("attempt", attempt).
				Msg("network ready")
			return nil
		default:
			g.logger.Debug().Uint64("checkpoint", info.CheckpointHeight).Int("attempt", attempt).Msg("network not ready yet")
		}

		select {
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("%w: no checkpoint above %d within %s", ErrReadinessTimeout, g.cfg.MinCheckpoint, g.cfg.Timeout)
		case <-exited:
			return fmt.Errorf("%w before becoming ready", ErrProcessExited)
		case <-ticker.C:
		}
	}
}
