package unittest

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// DefaultDoneTimeout is the default timeout for Done channel checks.
const DefaultDoneTimeout = 10 * time.Second

// DoneAware is implemented by components that signal termination by closing a channel,
// such as a node process.
type DoneAware interface {
	Done() <-chan struct{}
}

// RequireCallMustReturnWithinTimeout is a test helper that invokes the given function and fails the test if the invocation
// does not return prior to the given timeout.
func RequireCallMustReturnWithinTimeout(
	t *testing.T,
	f func(),
	timeout time.Duration,
	failureMsg string) {
	t.Helper()
	done := make(chan struct{})

	go func() {
		f()

		close(done)
	}()

	ChannelMustCloseWithinTimeout(
		t,
		done,
		timeout,
		fmt.Sprintf("function did not return on time: %s", failureMsg),
	)
}

// ChannelMustCloseWithinTimeout is a test helper that fails the test if the channel does not close prior to the given timeout.
func ChannelMustCloseWithinTimeout(
	t *testing.T,
	c <-chan struct{},
	timeout time.Duration,
	failureMsg string) {
	t.Helper()
	select {
	case <-c:
		return
	case <-time.After(timeout):
		require.Fail(t, fmt.Sprintf("channel did not close on time: %s", failureMsg))
	}
}

// ChannelMustNotCloseWithin fails the test if the channel closes before the given duration elapses.
func ChannelMustNotCloseWithin(t *testing.T, c <-chan struct{}, d time.Duration, failureMsg string) {
	t.Helper()
	select {
	case <-c:
		require.Fail(t, fmt.Sprintf("channel closed unexpectedly: %s", failureMsg))
	case <-time.After(d):
	}
}

// RequireDone waits for the component to become done within DefaultDoneTimeout.
func RequireDone(t *testing.T, component DoneAware) {
	t.Helper()
	ChannelMustCloseWithinTimeout(t, component.Done(), DefaultDoneTimeout, "component did not become done")
}

// RequireAllDone waits for all components to become done within DefaultDoneTimeout.
func RequireAllDone(t *testing.T, components ...DoneAware) {
	t.Helper()
	for i, c := range components {
		ChannelMustCloseWithinTimeout(t, c.Done(), DefaultDoneTimeout, fmt.Sprintf("component %d did not become done", i))
	}
}
