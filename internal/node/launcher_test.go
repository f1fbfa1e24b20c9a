package node_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/thep2p/go-myso-localnet/internal/model"
	"github.com/thep2p/go-myso-localnet/internal/node"
	"github.com/thep2p/go-myso-localnet/internal/unittest"
)

// launch is a helper that starts a node process of a fake binary and stops it at cleanup.
func launch(t *testing.T, cfg unittest.FakeBinaryConfig) (*unittest.FakeBinary, node.Config, *node.Process) {
	t.Helper()

	fake := unittest.NewFakeBinary(t, cfg)
	tmp := unittest.NewTempDir(t)
	t.Cleanup(tmp.Remove)
	nodeCfg := node.Config{
		Binary:     fake.Path,
		WorkingDir: tmp.Path(),
		RPCPort:    unittest.NewPort(t),
	}

	proc, err := node.NewLauncher(unittest.Logger(t)).Launch(nodeCfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, proc.Stop())
	})
	return fake, nodeCfg, proc
}

// TestLaunch_StartsProcess verifies the start arguments and that output lands in the working directory.
func TestLaunch_StartsProcess(t *testing.T) {
	fake, cfg, proc := launch(t, unittest.FakeBinaryConfig{})

	require.Greater(t, proc.Pid(), 0)
	require.Equal(t, cfg, proc.Config())
	require.Equal(t, fmt.Sprintf("http://127.0.0.1:%d", cfg.RPCPort), cfg.RPCURL())

	require.Eventually(t, func() bool {
		calls := fake.Calls(t)
		return len(calls) == 1 && calls[0] == fmt.Sprintf("start --network.config %s --fullnode-rpc-port %d", cfg.WorkingDir, cfg.RPCPort)
	}, 5*time.Second, 20*time.Millisecond)

	require.Eventually(t, func() bool {
		out, err := os.ReadFile(filepath.Join(cfg.WorkingDir, model.StdoutFile))
		return err == nil && strings.Contains(string(out), "starting network")
	}, 5*time.Second, 20*time.Millisecond)
	require.FileExists(t, filepath.Join(cfg.WorkingDir, model.StderrFile))

	unittest.ChannelMustNotCloseWithin(t, proc.Done(), 100*time.Millisecond, "process should keep running")
	require.NoError(t, proc.ExitErr())
}

// TestStop_Idempotent ensures that stopping twice kills the process once and reports no error.
func TestStop_Idempotent(t *testing.T) {
	_, _, proc := launch(t, unittest.FakeBinaryConfig{})

	require.NoError(t, proc.Stop())
	unittest.RequireDone(t, proc)
	require.Error(t, proc.ExitErr(), "a killed process exits with a signal")

	unittest.RequireCallMustReturnWithinTimeout(t, func() {
		require.NoError(t, proc.Stop())
	}, time.Second, "second stop must not block")
}

// TestStop_Several stops independent processes; each one is reaped.
func TestStop_Several(t *testing.T) {
	_, cfg1, p1 := launch(t, unittest.FakeBinaryConfig{})
	_, cfg2, p2 := launch(t, unittest.FakeBinaryConfig{})
	require.NotEqual(t, cfg1.WorkingDir, cfg2.WorkingDir)
	require.NotEqual(t, p1.Pid(), p2.Pid())

	require.NoError(t, p1.Stop())
	require.NoError(t, p2.Stop())
	unittest.RequireAllDone(t, p1, p2)
}

// TestProcessExit_ClosesDone covers a node that dies on its own.
func TestProcessExit_ClosesDone(t *testing.T) {
	_, cfg, proc := launch(t, unittest.FakeBinaryConfig{StartExitCode: 3})

	unittest.RequireDone(t, proc)
	require.Error(t, proc.ExitErr())
	require.Contains(t, proc.ExitErr().Error(), "exit status 3")

	require.Eventually(t, func() bool {
		out, err := os.ReadFile(filepath.Join(cfg.WorkingDir, model.StderrFile))
		return err == nil && strings.Contains(string(out), "start failed")
	}, 5*time.Second, 20*time.Millisecond)

	// stopping an exited process is not an error
	require.NoError(t, proc.Stop())
}

func TestLaunch_InvalidConfig(t *testing.T) {
	fake := unittest.NewFakeBinary(t, unittest.FakeBinaryConfig{})
	launcher := node.NewLauncher(unittest.Logger(t))

	cases := map[string]node.Config{
		"missing binary":      {WorkingDir: t.TempDir(), RPCPort: 9000},
		"missing working dir": {Binary: fake.Path, WorkingDir: "/nonexistent/localnet", RPCPort: 9000},
		"zero port":           {Binary: fake.Path, WorkingDir: t.TempDir()},
		"port out of range":   {Binary: fake.Path, WorkingDir: t.TempDir(), RPCPort: 70000},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := launcher.Launch(cfg)
			require.Error(t, err)
			require.Contains(t, err.Error(), "invalid node config")
		})
	}
	require.Empty(t, fake.Calls(t))
}

// TestLaunch_SpawnFailure covers a binary that cannot be executed.
func TestLaunch_SpawnFailure(t *testing.T) {
	dir := t.TempDir()
	notExecutable := filepath.Join(dir, model.BinaryName)
	require.NoError(t, os.WriteFile(notExecutable, []byte("not a program"), 0644))

	_, err := node.NewLauncher(unittest.Logger(t)).Launch(node.Config{
		Binary:     notExecutable,
		WorkingDir: dir,
		RPCPort:    unittest.NewPort(t),
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "spawn start")
}
