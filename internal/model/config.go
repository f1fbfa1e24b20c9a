package model

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	// DefaultValidatorCount is the committee size used when none is requested.
	DefaultValidatorCount = 1
	// DefaultEpochDuration is the epoch length used when none is requested.
	DefaultEpochDuration = 60 * time.Second
	// MistPerMyso is the number of base units in one MYSO.
	MistPerMyso uint64 = 1_000_000_000
	// DefaultValidatorFunding is the amount each validator receives once the network is up.
	DefaultValidatorFunding = 1_000_000 * MistPerMyso
)

// Config defines the parameters of a test network build request.
// A Config is consumed by a single build and carries no state of its own.
type Config struct {
	// ValidatorCount is the committee size passed to genesis.
	ValidatorCount int `validate:"gte=1"`

	// EpochDuration is the length of an epoch. It is handed to genesis in milliseconds,
	// so it must be at least one millisecond.
	EpochDuration time.Duration `validate:"gte=1ms"`

	// BinaryPath optionally overrides discovery of the node executable.
	BinaryPath string

	// FundValidators determines whether every validator address is funded with
	// ValidatorFunding right after the system state upgrade.
	FundValidators bool

	// ValidatorFunding is the per-validator amount used when FundValidators is set.
	ValidatorFunding uint64 `validate:"required_if=FundValidators true"`
}

// DefaultConfig returns the configuration of a single-validator network with one minute epochs.
func DefaultConfig() Config {
	return Config{
		ValidatorCount:   DefaultValidatorCount,
		EpochDuration:    DefaultEpochDuration,
		FundValidators:   true,
		ValidatorFunding: DefaultValidatorFunding,
	}
}

// EpochDurationMs returns the epoch duration in whole milliseconds.
func (c Config) EpochDurationMs() uint64 {
	return uint64(c.EpochDuration / time.Millisecond)
}

// Validate checks the configuration against its validation tags.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid network config: %w", err)
	}
	return nil
}
