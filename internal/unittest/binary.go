package unittest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/thep2p/go-myso-localnet/internal/binary"
	"github.com/thep2p/go-myso-localnet/internal/model"
)

// RequireBinary returns the path of the real node executable, skipping the test when none is
// installed. Set MYSO_BINARY or put myso on PATH to run such tests.
func RequireBinary(t *testing.T) string {
	t.Helper()
	bin, err := binary.Find()
	if errors.Is(err, binary.ErrNotFound) {
		t.Skipf("skipping: %s binary not found, set %s or install it", model.BinaryName, model.BinaryEnvVar)
	}
	require.NoError(t, err)
	return bin
}

// FakeBinaryConfig scripts the behavior of a fake node executable.
type FakeBinaryConfig struct {
	// NetworkConfig is written to network.yaml by the genesis subcommand.
	NetworkConfig string
	// GenesisExitCode makes genesis fail after writing GenesisStderr.
	GenesisExitCode int
	GenesisStderr   string
	// StartExitCode makes start exit immediately instead of running until killed.
	StartExitCode int
	// MoveStdout is printed by the move subcommand.
	MoveStdout   string
	MoveStderr   string
	MoveExitCode int
}

// FakeBinary is a shell script standing in for the node executable.
type FakeBinary struct {
	// Path is the executable to hand to the code under test.
	Path string
	// CallLog receives one line per invocation holding its arguments.
	CallLog string
	// PidFile receives the process id of the last start invocation.
	PidFile string
}

// NewFakeBinary writes a fake node executable into a test-scoped directory.
func NewFakeBinary(t *testing.T, cfg FakeBinaryConfig) *FakeBinary {
	t.Helper()

	dir := t.TempDir()
	fb := &FakeBinary{
		Path:    filepath.Join(dir, model.BinaryName),
		CallLog: filepath.Join(dir, "calls.log"),
		PidFile: filepath.Join(dir, "start.pid"),
	}

	script := fmt.Sprintf(`#!/bin/sh
echo "$@" >> %[1]q
cmd="$1"
shift
case "$cmd" in
genesis)
  dir=""
  while [ $# -gt 0 ]; do
    if [ "$1" = "--working-dir" ]; then dir="$2"; shift; fi
    shift
  done
  if [ %[2]d -ne 0 ]; then
    printf '%%s' %[3]q >&2
    exit %[2]d
  fi
  mkdir -p "$dir"
  cat > "$dir/%[4]s" <<'NETWORK_EOF'
%[5]s
NETWORK_EOF
  echo "keystore: {}" > "$dir/%[6]s"
  ;;
start)
  echo $$ > %[11]q
  echo "starting network"
  if [ %[7]d -ne 0 ]; then
    echo "start failed" >&2
    exit %[7]d
  fi
  exec sleep 3600
  ;;
move)
  printf '%%s' %[8]q
  printf '%%s' %[9]q >&2
  exit %[10]d
  ;;
*)
  echo "unknown subcommand $cmd" >&2
  exit 64
  ;;
esac
`,
		fb.CallLog,
		cfg.GenesisExitCode, cfg.GenesisStderr,
		model.NetworkConfigFile, strings.TrimRight(cfg.NetworkConfig, "\n"), model.ClientConfigFile,
		cfg.StartExitCode,
		cfg.MoveStdout, cfg.MoveStderr, cfg.MoveExitCode,
		fb.PidFile,
	)

	require.NoError(t, os.WriteFile(fb.Path, []byte(script), 0755))
	return fb
}

// Calls returns the argument lines recorded by the fake binary, in invocation order.
func (f *FakeBinary) Calls(t *testing.T) []string {
	t.Helper()
	raw, err := os.ReadFile(f.CallLog)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
}

// StartPID waits for a start invocation to record its process id and returns it. The id stays
// valid after the script execs into its long-running command.
func (f *FakeBinary) StartPID(t *testing.T) int {
	t.Helper()
	var pid int
	require.Eventually(t, func() bool {
		raw, err := os.ReadFile(f.PidFile)
		if err != nil {
			return false
		}
		pid, err = strconv.Atoi(strings.TrimSpace(string(raw)))
		return err == nil
	}, 5*time.Second, 10*time.Millisecond, "start was not invoked")
	return pid
}
