package unittest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/thep2p/go-myso-localnet/internal/model"
)

// TempDir is a scratch network working directory owned by one test.
type TempDir struct {
	t    *testing.T
	path string
}

// NewTempDir creates a working directory under the system temp dir. Call Remove once every
// process using the directory has stopped.
func NewTempDir(t *testing.T) *TempDir {
	t.Helper()
	path, err := os.MkdirTemp("", "myso-localnet-*")
	require.NoError(t, err, "failed to create temp dir")
	return &TempDir{t: t, path: path}
}

// Path returns the path of the directory.
func (td *TempDir) Path() string {
	return td.path
}

// Join returns the path of name inside the directory.
func (td *TempDir) Join(name string) string {
	return filepath.Join(td.path, name)
}

// WriteNetworkConfig writes content as the network.yaml genesis would produce.
func (td *TempDir) WriteNetworkConfig(content string) {
	td.t.Helper()
	require.NoError(td.t, os.WriteFile(td.Join(model.NetworkConfigFile), []byte(content), 0644))
}

// Remove deletes the directory and everything in it.
func (td *TempDir) Remove() {
	td.t.Helper()
	require.NoError(td.t, os.RemoveAll(td.path), "failed to remove temp dir: "+td.path)
}
