package node

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"

	"github.com/rs/zerolog"
)

// Process is a running node process. It is owned by exactly one network handle.
type Process struct {
	logger zerolog.Logger
	cmd    *exec.Cmd
	config Config
	stdout *os.File
	stderr *os.File

	done    chan struct{}
	exitErr error

	stopOnce sync.Once
	stopErr  error
}

func (p *Process) reap() {
	p.exitErr = p.cmd.Wait()
	close(p.done)
	p.logger.Debug().AnErr("exit", p.exitErr).Msg("node process exited")
}

// Pid returns the operating system process id.
func (p *Process) Pid() int {
	return p.cmd.Process.Pid
}

// Config returns the configuration the process was started with.
func (p *Process) Config() Config {
	return p.config
}

// Done is closed once the process has exited and been reaped.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// ExitErr returns how the process exited. It is only meaningful once Done is closed.
func (p *Process) ExitErr() error {
	select {
	case <-p.done:
		return p.exitErr
	default:
		return nil
	}
}

// Stop kills the process, waits for it to be reaped and closes its log files. A process
// that already exited is not an error. Stop is idempotent.
func (p *Process) Stop() error {
	p.stopOnce.Do(func() {
		var errs []error
		if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			errs = append(errs, fmt.Errorf("kill node process: %w", err))
		}
		<-p.done

		if err := p.stdout.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close stdout log: %w", err))
		}
		if err := p.stderr.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close stderr log: %w", err))
		}
		p.stopErr = errors.Join(errs...)
		p.logger.Info().Msg("node process stopped")
	})
	return p.stopErr
}
