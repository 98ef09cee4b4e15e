package storage

import (
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"market-dashboard/src/helpers"
	"market-dashboard/src/logger"
	"market-dashboard/src/models"

	_ "modernc.org/sqlite"
)

// -----------------------------------------------------------------------------

// AsyncSQLiteDB journals renders into a local sqlite file.
type AsyncSQLiteDB struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
	Now    func() time.Time
}

// -----------------------------------------------------------------------------

func NewAsyncSQLiteDB(cfg *models.MConfig, log *logger.Logger) (*AsyncSQLiteDB, error) {
	if cfg.Storage.DBPath == "" {
		return nil, helpers.NewConfigurationError("sqlite journal needs storage.db_path", nil)
	}
	return &AsyncSQLiteDB{
		Config: cfg,
		Logger: log,
		Now:    time.Now,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) Initialize() error {
	if dir := filepath.Dir(d.Config.Storage.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return helpers.NewDatabaseError("create journal directory", err)
		}
	}

	db, err := sql.Open("sqlite", d.Config.Storage.DBPath)
	if err != nil {
		return helpers.NewDatabaseError("open sqlite", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return helpers.NewDatabaseError("ping sqlite", err)
	}

	// one writer; the journal is append-only
	db.SetMaxOpenConns(1)
	d.DB = db

	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	return d.createTables()
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) createTables() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS render_journal (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ticker TEXT NOT NULL,
			period TEXT NOT NULL,
			rows INTEGER NOT NULL,
			bands INTEGER NOT NULL,
			comparison INTEGER NOT NULL,
			forecast INTEGER NOT NULL,
			warnings INTEGER NOT NULL,
			elapsed_ms INTEGER NOT NULL,
			rendered_at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_render_journal_rendered_at ON render_journal (rendered_at);`,
		`CREATE TABLE IF NOT EXISTS tickers (
			ticker TEXT PRIMARY KEY,
			renders INTEGER NOT NULL,
			first_seen INTEGER NOT NULL,
			last_seen INTEGER NOT NULL
		);`,
	}
	for _, q := range stmts {
		if _, err := d.DB.Exec(q); err != nil {
			return helpers.NewDatabaseError("create sqlite tables", err)
		}
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) RecordRender(rec models.MRenderRecord) error {
	tx, err := d.DB.Begin()
	if err != nil {
		return helpers.NewDatabaseError("begin", err)
	}
	defer tx.Rollback()

	ts := rec.RenderedAt.UTC().Unix()
	_, err = tx.Exec(`
		INSERT INTO render_journal (ticker, period, rows, bands, comparison, forecast, warnings, elapsed_ms, rendered_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.Ticker, rec.Period, rec.Rows, rec.Bands, rec.Comparison, rec.Forecast, rec.Warnings, rec.ElapsedMs, ts)
	if err != nil {
		return helpers.NewDatabaseError("insert render", err)
	}

	_, err = tx.Exec(`
		INSERT INTO tickers (ticker, renders, first_seen, last_seen) VALUES (?, 1, ?, ?)
		ON CONFLICT(ticker) DO UPDATE SET renders = renders + 1, last_seen = excluded.last_seen
	`, rec.Ticker, ts, ts)
	if err != nil {
		return helpers.NewDatabaseError("upsert ticker", err)
	}

	return tx.Commit()
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) CleanupOldData() error {
	retentionDays := d.Config.Storage.RetentionDays
	cutoff := d.Now().UTC().AddDate(0, 0, -retentionDays).Unix()

	res, err := d.DB.Exec("DELETE FROM render_journal WHERE rendered_at < ?", cutoff)
	if err != nil {
		return helpers.NewDatabaseError("cleanup render_journal", err)
	}
	if _, err := d.DB.Exec("DELETE FROM tickers WHERE last_seen < ?", cutoff); err != nil {
		return helpers.NewDatabaseError("cleanup tickers", err)
	}

	n, _ := res.RowsAffected()
	d.Logger.Info("Cleanup removed %d journal rows older than %d days", n, retentionDays)
	return nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
