// Package contracts compiles Move packages with the node executable so tests can publish them.
package contracts

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/thep2p/go-myso-localnet/internal/command"
	"github.com/thep2p/go-myso-localnet/internal/model"
	"github.com/thep2p/go-myso-localnet/internal/utils"
)

// BuildEnvironment is the package environment compiled against.
const BuildEnvironment = "testnet"

// BuiltPackage is a compiled Move package ready to publish.
type BuiltPackage struct {
	// Modules holds the bytecode of each module.
	Modules [][]byte
	// Dependencies are the ids of the packages the package links against.
	Dependencies []model.Address
	// Digest is the package digest.
	Digest model.Digest
}

// buildOutput is what `move build --dump-bytecode-as-base64` prints.
type buildOutput struct {
	Modules      []string `json:"modules"`
	Dependencies []string `json:"dependencies"`
	Digest       []int    `json:"digest"`
}

// Compiler drives `move build` of the node executable.
type Compiler struct {
	logger zerolog.Logger
	binary string
}

// NewCompiler returns a Compiler using binary.
func NewCompiler(logger zerolog.Logger, binary string) *Compiler {
	return &Compiler{
		logger: logger.With().Str("component", "move-compiler").Logger(),
		binary: binary,
	}
}

// Build compiles the package in pkgDir using the client configuration at clientConfig.
// A failing compilation returns a *command.Error carrying both output streams.
func (c *Compiler) Build(ctx context.Context, clientConfig string, pkgDir string) (*BuiltPackage, error) {
	if _, err := os.Stat(pkgDir); err != nil {
		return nil, fmt.Errorf("package not found: %w", err)
	}

	stdout, _, err := command.Run(ctx, c.logger, c.binary,
		model.SubcommandMove,
		"--client.config", clientConfig,
		"-p", pkgDir,
		"build",
		"-e", BuildEnvironment,
		"--dump-bytecode-as-base64",
	)
	if err != nil {
		return nil, fmt.Errorf("build package %s: %w", pkgDir, err)
	}

	pkg, err := parseBuildOutput(stdout)
	if err != nil {
		return nil, fmt.Errorf("build package %s: %w", pkgDir, err)
	}

	c.logger.Info().
		Str("package", pkgDir).
		Int("modules", len(pkg.Modules)).
		Str("digest", pkg.Digest.String()).
		Msg("package built")
	return pkg, nil
}

func parseBuildOutput(stdout []byte) (*BuiltPackage, error) {
	var out buildOutput
	if err := json.Unmarshal(stdout, &out); err != nil {
		return nil, fmt.Errorf("unmarshal build output: %w", err)
	}

	modules, err := utils.DecodeBase64All(out.Modules)
	if err != nil {
		return nil, fmt.Errorf("modules: %w", err)
	}

	deps := make([]model.Address, len(out.Dependencies))
	for i, d := range out.Dependencies {
		if deps[i], err = model.AddressFromHex(d); err != nil {
			return nil, fmt.Errorf("dependency %d: %w", i, err)
		}
	}

	raw := make([]byte, len(out.Digest))
	for i, v := range out.Digest {
		if v < 0 || v > 255 {
			return nil, fmt.Errorf("digest byte %d out of range: %d", i, v)
		}
		raw[i] = byte(v)
	}
	digest, err := model.DigestFromBytes(raw)
	if err != nil {
		return nil, fmt.Errorf("digest: %w", err)
	}

	return &BuiltPackage{Modules: modules, Dependencies: deps, Digest: digest}, nil
}
