package network

import "errors"

var (
	// ErrTransactionFailed is returned when a harness transaction executes with a failure status.
	ErrTransactionFailed = errors.New("transaction failed")
	// ErrNotUpgraded is returned when funding is attempted before the system state upgrade.
	ErrNotUpgraded = errors.New("system state not upgraded")
	// ErrAlreadyUpgraded is returned when the system state upgrade is attempted a second time.
	ErrAlreadyUpgraded = errors.New("system state already upgraded")
	// ErrClosed is returned by operations on a closed handle.
	ErrClosed = errors.New("network handle closed")
)
