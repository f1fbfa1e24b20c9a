// Package binary resolves the node executable the harness drives.
package binary

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"

	"github.com/thep2p/go-myso-localnet/internal/model"
)

// ErrNotFound is returned when neither the override variable nor PATH yields an executable.
// Callers treat it as an unmet environment precondition and skip rather than fail.
var ErrNotFound = errors.New("myso binary not found: install myso or set " + model.BinaryEnvVar)

var locate = sync.OnceValues(Find)

// Locate returns the path of the node executable. The lookup runs once per process and
// its result, including ErrNotFound, is reused afterwards.
func Locate() (string, error) {
	return locate()
}

// Available reports whether Locate resolves a binary.
func Available() bool {
	_, err := Locate()
	return err == nil
}

// Find resolves the executable without caching: the MYSO_BINARY override first, then PATH.
func Find() (string, error) {
	if path := os.Getenv(model.BinaryEnvVar); path != "" {
		return path, nil
	}
	path, err := exec.LookPath(model.BinaryName)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return path, nil
}

// Resolve returns override when it is set and falls back to Locate otherwise.
func Resolve(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	return Locate()
}
