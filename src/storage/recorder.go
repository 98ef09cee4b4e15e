package storage

import (
	"market-dashboard/src/helpers"
	"market-dashboard/src/interfaces"
	"market-dashboard/src/logger"
	"market-dashboard/src/models"
)

// NoopRecorder is used when storage.db_type is "none".
type NoopRecorder struct{}

func (NoopRecorder) Initialize() error                       { return nil }
func (NoopRecorder) RecordRender(models.MRenderRecord) error { return nil }
func (NoopRecorder) CleanupOldData() error                   { return nil }
func (NoopRecorder) Close() error                            { return nil }

// -----------------------------------------------------------------------------

// NewRecorder builds and initializes the journal selected by storage.db_type.
func NewRecorder(cfg *models.MConfig, log *logger.Logger) (interfaces.IRenderRecorder, error) {
	var rec interfaces.IRenderRecorder
	var err error

	switch cfg.Storage.DBType {
	case "", "none":
		return NoopRecorder{}, nil
	case "sqlite":
		rec, err = NewAsyncSQLiteDB(cfg, log)
	case "postgres":
		rec, err = NewPostgresDB(cfg, log)
	default:
		return nil, helpers.NewConfigurationError("unknown database type: "+cfg.Storage.DBType, nil)
	}
	if err != nil {
		return nil, err
	}

	if err := rec.Initialize(); err != nil {
		return nil, err
	}
	log.Info("Render journal: %s", cfg.Storage.DBType)
	return rec, nil
}
