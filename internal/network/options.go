package network

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/thep2p/go-myso-localnet/internal/model"
	"github.com/thep2p/go-myso-localnet/internal/mysorpc"
	"github.com/thep2p/go-myso-localnet/internal/node"
)

// DefaultTransactionTimeout bounds the wait for a harness transaction to be checkpointed.
const DefaultTransactionTimeout = 10 * time.Second

// Dialer connects to the JSON-RPC endpoint of a started node.
type Dialer func(ctx context.Context, logger zerolog.Logger, url string) (mysorpc.Client, error)

// Option modifies the build of a network before it starts.
//
// Options follow the functional options pattern so callers only name what differs from
// DefaultConfig.
type Option func(*options)

type options struct {
	config    model.Config
	readiness node.ReadinessConfig
	txTimeout time.Duration
	logger    zerolog.Logger
	dialer    Dialer
}

func defaultOptions() options {
	return options{
		config:    model.DefaultConfig(),
		readiness: node.DefaultReadinessConfig(),
		txTimeout: DefaultTransactionTimeout,
		logger:    zerolog.Nop(),
		dialer:    dialJSONRPC,
	}
}

func dialJSONRPC(ctx context.Context, logger zerolog.Logger, url string) (mysorpc.Client, error) {
	c, err := mysorpc.Dial(ctx, logger, url)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// WithValidatorCount sets the committee size.
func WithValidatorCount(n int) Option {
	return func(o *options) {
		o.config.ValidatorCount = n
	}
}

// WithEpochDuration sets the epoch length.
func WithEpochDuration(d time.Duration) Option {
	return func(o *options) {
		o.config.EpochDuration = d
	}
}

// WithBinary uses the node executable at path instead of discovering it.
func WithBinary(path string) Option {
	return func(o *options) {
		o.config.BinaryPath = path
	}
}

// WithoutValidatorFunding skips funding the validator accounts after the upgrade.
func WithoutValidatorFunding() Option {
	return func(o *options) {
		o.config.FundValidators = false
	}
}

// WithValidatorFunding sets the amount each validator receives.
func WithValidatorFunding(amount uint64) Option {
	return func(o *options) {
		o.config.FundValidators = true
		o.config.ValidatorFunding = amount
	}
}

// WithReadiness overrides how long and how often readiness is probed.
func WithReadiness(timeout, interval time.Duration) Option {
	return func(o *options) {
		o.readiness.Timeout = timeout
		o.readiness.Interval = interval
	}
}

// WithTransactionTimeout overrides the checkpoint wait of harness transactions.
func WithTransactionTimeout(d time.Duration) Option {
	return func(o *options) {
		o.txTimeout = d
	}
}

// WithLogger sets the logger of the network and its components.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithDialer replaces the JSON-RPC dialer.
func WithDialer(d Dialer) Option {
	return func(o *options) {
		o.dialer = d
	}
}
