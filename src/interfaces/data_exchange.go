package interfaces

import "context"

// -----------------------------------------------------------------------------
// IDashboardServer is a network surface serving render cycles (HTTP, gRPC).
// -----------------------------------------------------------------------------

type IDashboardServer interface {
	// -----------------------------------------------------------------------------
	// Start serving; blocks until the server stops
	Start() error

	// -----------------------------------------------------------------------------
	// Stop the server gracefully
	Stop(ctx context.Context) error
}
