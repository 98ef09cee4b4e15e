package storage

import (
	"database/sql"
	"fmt"
	"time"

	"market-dashboard/src/helpers"
)

// Ticker registry: one row per rendered ticker with a render counter.

func (d *PostgresDB) createTickerTable() error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS "%s"."tickers" (
			ticker TEXT PRIMARY KEY,
			renders BIGINT NOT NULL,
			first_seen TIMESTAMPTZ NOT NULL,
			last_seen TIMESTAMPTZ NOT NULL
		);
	`, d.Schema)
	if _, err := d.DB.Exec(query); err != nil {
		return helpers.NewDatabaseError("create tickers table", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) touchTicker(tx *sql.Tx, ticker string, seen time.Time) error {
	query := fmt.Sprintf(`
		INSERT INTO "%s"."tickers" (ticker, renders, first_seen, last_seen)
		VALUES ($1, 1, $2, $2)
		ON CONFLICT (ticker) DO UPDATE
		SET renders = "%s"."tickers".renders + 1, last_seen = EXCLUDED.last_seen
	`, d.Schema, d.Schema)
	if _, err := tx.Exec(query, ticker, seen); err != nil {
		return helpers.NewDatabaseError("upsert ticker", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) pruneTickers(cutoff time.Time) error {
	if _, err := d.DB.Exec(fmt.Sprintf(`DELETE FROM "%s"."tickers" WHERE last_seen < $1`, d.Schema), cutoff); err != nil {
		return helpers.NewDatabaseError("cleanup tickers", err)
	}
	return nil
}
