package offline

import (
	"database/sql"
	"fmt"

	"codeberg.org/mutker/energymon/internal/errors"
	"codeberg.org/mutker/energymon/internal/logger"
)

// SchemaVersion is kept in the database header (PRAGMA user_version).
// A file written by another version is wiped: cached shell resources can
// always be fetched again, so there is nothing worth migrating.
const SchemaVersion = 1

var cacheTables = []string{"cache_entries", "cache_generations"}

const (
	createTablesSQL = `
	   CREATE TABLE cache_generations (
	       seq         INTEGER PRIMARY KEY AUTOINCREMENT,
	       name        TEXT NOT NULL UNIQUE,
	       created_at  TEXT NOT NULL
	   );
	   CREATE TABLE cache_entries (
	       generation  TEXT NOT NULL,
	       url         TEXT NOT NULL,
	       status      INTEGER NOT NULL CHECK (typeof(status) = 'integer'),
	       header      TEXT NOT NULL,
	       body        BLOB NOT NULL,
	       PRIMARY KEY (generation, url)
	   );`

	openGenerationSQL = `
    INSERT OR IGNORE INTO cache_generations (name, created_at)
    VALUES (?, datetime('now'))`

	putEntrySQL = `
    INSERT OR REPLACE INTO cache_entries (generation, url, status, header, body)
    VALUES (?, ?, ?, ?, ?)`

	matchEntrySQL = `
    SELECT status, header, body
    FROM cache_entries
    WHERE generation = ? AND url = ?`

	listGenerationsSQL = `
    SELECT name FROM cache_generations ORDER BY seq`
)

// prepareSchema leaves db holding empty or current-version cache tables.
func prepareSchema(db *sql.DB, log logger.Logger) error {
	errFactory := errors.New()

	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return errFactory.Wrap(ErrSchemaValidationFailed, err)
	}
	if version == SchemaVersion {
		return nil
	}

	if version != 0 {
		log.Warn().
			Int("found", version).
			Int("expected", SchemaVersion).
			Msg("Cache schema outdated, dropping cached generations")
	}

	tx, err := db.Begin()
	if err != nil {
		return errFactory.Wrap(ErrSchemaInitFailed, err)
	}

	committed := false
	defer func() {
		if !committed {
			if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
				log.Debug().Err(err).Msg("Failed to roll back schema change")
			}
		}
	}()

	for _, table := range cacheTables {
		if _, err := tx.Exec("DROP TABLE IF EXISTS " + table); err != nil {
			return errFactory.WithData(ErrSchemaMigrationFailed, struct {
				Table string
				Error string
			}{
				Table: table,
				Error: err.Error(),
			})
		}
	}

	if _, err := tx.Exec(createTablesSQL); err != nil {
		return errFactory.Wrap(ErrSchemaInitFailed, err)
	}
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", SchemaVersion)); err != nil {
		return errFactory.Wrap(ErrSchemaInitFailed, err)
	}

	if err := tx.Commit(); err != nil {
		return errFactory.Wrap(ErrSchemaInitFailed, err)
	}
	committed = true

	log.Debug().Int("version", SchemaVersion).Msg("Cache schema created")

	return nil
}
