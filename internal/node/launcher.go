// Package node supervises the node process of a test network and decides when it is ready.
package node

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/thep2p/go-myso-localnet/internal/model"
)

// Launcher starts node processes.
type Launcher struct {
	logger zerolog.Logger
}

// NewLauncher returns a Launcher logging under the node-launcher component.
func NewLauncher(logger zerolog.Logger) *Launcher {
	return &Launcher{logger: logger.With().Str("component", "node-launcher").Logger()}
}

// Launch spawns `start` for the working directory and returns without waiting for the
// process. Its output goes to out.stdout and out.stderr in the working directory.
func (l *Launcher) Launch(cfg Config) (*Process, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	stdout, err := os.Create(filepath.Join(cfg.WorkingDir, model.StdoutFile))
	if err != nil {
		return nil, fmt.Errorf("create stdout log: %w", err)
	}
	stderr, err := os.Create(filepath.Join(cfg.WorkingDir, model.StderrFile))
	if err != nil {
		return nil, errors.Join(fmt.Errorf("create stderr log: %w", err), stdout.Close())
	}

	cmd := exec.Command(cfg.Binary,
		model.SubcommandStart,
		"--network.config", cfg.WorkingDir,
		"--fullnode-rpc-port", strconv.Itoa(cfg.RPCPort),
	)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		return nil, errors.Join(fmt.Errorf("spawn %s: %w", model.SubcommandStart, err), stdout.Close(), stderr.Close())
	}

	p := &Process{
		logger: l.logger.With().Int("pid", cmd.Process.Pid).Logger(),
		cmd:    cmd,
		config: cfg,
		stdout: stdout,
		stderr: stderr,
		done:   make(chan struct{}),
	}
	go p.reap()

	p.logger.Info().
		Str("working_dir", cfg.WorkingDir).
		Int("rpc_port", cfg.RPCPort).
		Msg("node process started")

	return p, nil
}
