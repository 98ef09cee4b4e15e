package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"market-dashboard/src/helpers"
	"market-dashboard/src/logger"
	"market-dashboard/src/models"

	_ "github.com/lib/pq"
)

var unsafeSchemaChars = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// -----------------------------------------------------------------------------

// PostgresDB journals renders into a per-application schema.
type PostgresDB struct {
	Config *models.MConfig
	DB     *sql.DB
	Schema string
	Logger *logger.Logger
	Now    func() time.Time
}

// -----------------------------------------------------------------------------

// NewPostgresDB names the schema after the application (falling back to the executable name).
func NewPostgresDB(cfg *models.MConfig, log *logger.Logger) (*PostgresDB, error) {
	if cfg.Storage.DBConnectionString == "" {
		return nil, helpers.NewConfigurationError("postgres journal needs storage.db_connection_string", nil)
	}

	name := cfg.Name
	if name == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("failed to get executable name: %w", err)
		}
		name = strings.TrimSuffix(filepath.Base(exe), filepath.Ext(exe))
	}

	return &PostgresDB{
		Config: cfg,
		Schema: SchemaName(name),
		Logger: log,
		Now:    time.Now,
	}, nil
}

// SchemaName lower-cases name and replaces anything outside [a-z0-9_] with '_'.
func SchemaName(name string) string {
	s := unsafeSchemaChars.ReplaceAllString(strings.ToLower(name), "_")
	if s == "" {
		return "dashboard"
	}
	return s
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Initialize() error {
	db, err := sql.Open("postgres", d.Config.Storage.DBConnectionString)
	if err != nil {
		return helpers.NewDatabaseError("open postgres", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return helpers.NewDatabaseError("ping postgres", err)
	}
	d.DB = db

	if _, err := d.DB.Exec(fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS "%s"`, d.Schema)); err != nil {
		return helpers.NewDatabaseError("create schema "+d.Schema, err)
	}
	if err := d.createTables(); err != nil {
		return err
	}

	d.Logger.Info("PostgresDB initialized successfully (Schema: %s)", d.Schema)
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) createTables() error {
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS "%s"."render_journal" (
			id BIGSERIAL PRIMARY KEY,
			ticker TEXT NOT NULL,
			period TEXT NOT NULL,
			rows INTEGER NOT NULL,
			bands BOOLEAN NOT NULL,
			comparison BOOLEAN NOT NULL,
			forecast BOOLEAN NOT NULL,
			warnings INTEGER NOT NULL,
			elapsed_ms BIGINT NOT NULL,
			rendered_at TIMESTAMPTZ NOT NULL
		);`, d.Schema),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_render_journal_rendered_at ON "%s"."render_journal" (rendered_at);`, d.Schema),
	}
	for _, q := range stmts {
		if _, err := d.DB.Exec(q); err != nil {
			return helpers.NewDatabaseError("create postgres tables", err)
		}
	}
	return d.createTickerTable()
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) RecordRender(rec models.MRenderRecord) error {
	tx, err := d.DB.Begin()
	if err != nil {
		return helpers.NewDatabaseError("begin", err)
	}
	defer tx.Rollback()

	query := fmt.Sprintf(`
		INSERT INTO "%s"."render_journal" (ticker, period, rows, bands, comparison, forecast, warnings, elapsed_ms, rendered_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, d.Schema)
	if _, err := tx.Exec(query, rec.Ticker, rec.Period, rec.Rows, rec.Bands, rec.Comparison,
		rec.Forecast, rec.Warnings, rec.ElapsedMs, rec.RenderedAt.UTC()); err != nil {
		return helpers.NewDatabaseError("insert render", err)
	}

	if err := d.touchTicker(tx, rec.Ticker, rec.RenderedAt.UTC()); err != nil {
		return err
	}
	return tx.Commit()
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) CleanupOldData() error {
	retentionDays := d.Config.Storage.RetentionDays
	cutoff := d.Now().UTC().AddDate(0, 0, -retentionDays)

	res, err := d.DB.Exec(fmt.Sprintf(`DELETE FROM "%s"."render_journal" WHERE rendered_at < $1`, d.Schema), cutoff)
	if err != nil {
		return helpers.NewDatabaseError("cleanup render_journal", err)
	}
	if err := d.pruneTickers(cutoff); err != nil {
		return err
	}

	n, _ := res.RowsAffected()
	d.Logger.Info("Cleanup removed %d journal rows older than %d days", n, retentionDays)
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
