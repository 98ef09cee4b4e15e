package datasource

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"market-dashboard/src/helpers"
	"market-dashboard/src/interfaces"
	"market-dashboard/src/logger"
	"market-dashboard/src/models"
)

// MultiSourceManager serves market data from an ordered list of providers, moving on to the
// next one when a provider fails. A provider that answers with zero rows has answered:
// unknown tickers are not retried elsewhere.
type MultiSourceManager struct {
	Logger *logger.Logger

	mu      sync.RWMutex
	sources []interfaces.IMarketDataProvider
}

// -----------------------------------------------------------------------------

func NewMultiSourceManager(sources []interfaces.IMarketDataProvider, log *logger.Logger) *MultiSourceManager {
	return &MultiSourceManager{
		Logger:  log,
		sources: append([]interfaces.IMarketDataProvider(nil), sources...),
	}
}

func (m *MultiSourceManager) Name() string {
	return "multi"
}

// -----------------------------------------------------------------------------

// AddSource appends a provider at the lowest priority.
func (m *MultiSourceManager) AddSource(source interfaces.IMarketDataProvider) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range m.sources {
		if s.Name() == source.Name() {
			return fmt.Errorf("source %s already exists", source.Name())
		}
	}
	m.sources = append(m.sources, source)
	m.Logger.Info("Added source: %s", source.Name())
	return nil
}

// GetAllSources returns the providers in priority order.
func (m *MultiSourceManager) GetAllSources() []interfaces.IMarketDataProvider {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]interfaces.IMarketDataProvider(nil), m.sources...)
}

// -----------------------------------------------------------------------------

func (m *MultiSourceManager) FetchHistory(ctx context.Context, ticker string, req models.MHistoryRequest) (models.MRawHistory, error) {
	var out models.MRawHistory
	err := m.each(ctx, "history", ticker, func(s interfaces.IMarketDataProvider) error {
		raw, err := s.FetchHistory(ctx, ticker, req)
		if err == nil {
			out = raw
		}
		return err
	})
	return out, err
}

func (m *MultiSourceManager) FetchQuoteMetadata(ctx context.Context, ticker string) (models.MQuoteMetadata, error) {
	var out models.MQuoteMetadata
	err := m.each(ctx, "metadata", ticker, func(s interfaces.IMarketDataProvider) error {
		md, err := s.FetchQuoteMetadata(ctx, ticker)
		if err == nil {
			out = md
		}
		return err
	})
	return out, err
}

// -----------------------------------------------------------------------------

// each runs fn against providers in order until one succeeds or fails with a
// non-provider error (empty result, validation, cancellation).
func (m *MultiSourceManager) each(ctx context.Context, what, ticker string, fn func(interfaces.IMarketDataProvider) error) error {
	sources := m.GetAllSources()
	if len(sources) == 0 {
		return helpers.NewConfigurationError("no market data sources configured", nil)
	}

	var lastErr error
	for _, s := range sources {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := fn(s)
		if err == nil {
			return nil
		}
		if !errors.Is(err, helpers.ErrProvider) {
			return err
		}
		m.Logger.Warning("%s %s from %s failed: %v", what, ticker, s.Name(), err)
		lastErr = err
	}
	return lastErr
}
