// Package genesis materializes a network working directory with the node's genesis
// subcommand and recovers the key material it writes.
package genesis

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/thep2p/go-myso-localnet/internal/command"
	"github.com/thep2p/go-myso-localnet/internal/model"
)

// Generator runs genesis for a network configuration.
type Generator struct {
	logger zerolog.Logger
	binary string
}

// NewGenerator returns a Generator driving the given executable.
func NewGenerator(logger zerolog.Logger, binary string) *Generator {
	return &Generator{
		logger: logger.With().Str("component", "genesis").Logger(),
		binary: binary,
	}
}

// Generate writes the genesis configuration for cfg into dir, creating dir if needed.
// It blocks until the subcommand exits; a non-zero exit is returned as a *command.Error.
func (g *Generator) Generate(ctx context.Context, dir string, cfg model.Config) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}

	g.logger.Info().
		Str("working_dir", dir).
		Int("validators", cfg.ValidatorCount).
		Uint64("epoch_duration_ms", cfg.EpochDurationMs()).
		Msg("generating genesis")

	_, _, err := command.Run(ctx, g.logger, g.binary,
		model.SubcommandGenesis,
		"--working-dir", dir,
		"--epoch-duration-ms", strconv.FormatUint(cfg.EpochDurationMs(), 10),
		"--committee-size", strconv.Itoa(cfg.ValidatorCount),
		"--with-faucet",
	)
	if err != nil {
		return fmt.Errorf("generate genesis: %w", err)
	}
	return nil
}
