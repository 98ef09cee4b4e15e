package interfaces

import (
	"context"

	"market-dashboard/src/models"
)

// -----------------------------------------------------------------------------
// IMarketDataProvider is the market-data capability the loader and profile panel use.
// -----------------------------------------------------------------------------

type IMarketDataProvider interface {

	// Name returns the provider identifier
	Name() string

	// -----------------------------------------------------------------------------

	// FetchHistory returns raw rows for a window or date range.
	// An unknown ticker yields zero rows and a nil error; transport failures return an error.
	FetchHistory(ctx context.Context, ticker string, req models.MHistoryRequest) (models.MRawHistory, error)

	// -----------------------------------------------------------------------------

	// FetchQuoteMetadata returns profile fields; each field may be independently absent.
	FetchQuoteMetadata(ctx context.Context, ticker string) (models.MQuoteMetadata, error)
}
