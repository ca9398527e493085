// Package shutdown turns process signals into context cancellation.
package shutdown

import (
	"context"
	"os/signal"
	"syscall"

	"boardd/pkg/logger"
)

// Context returns a context cancelled on SIGINT or SIGTERM. The stop
// func releases the signal handler; a second signal after cancellation
// kills the process the default way.
func Context(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		if parent.Err() == nil {
			logger.Info("shutdown_signal_received")
		}
	}()
	return ctx, stop
}
