package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/agentstation/wikisync/pkg/errors"
)

// ContextWithSignals creates a context that is cancelled when the
// application receives a termination signal. Interrupts are not included:
// SIGINT is handled cooperatively by the run itself.
func ContextWithSignals(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGTERM)
}

// Context is a convenience wrapper around ContextWithSignals using
// context.Background() as the parent.
func Context() (context.Context, context.CancelFunc) {
	return ContextWithSignals(context.Background())
}

// ExitOnError prints the error and exits with a meaningful status code.
func ExitOnError(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	if errors.IsAborted(err) {
		os.Exit(130)
	}
	os.Exit(1)
}
