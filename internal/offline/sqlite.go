package offline

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"codeberg.org/mutker/energymon/internal/errors"
	"codeberg.org/mutker/energymon/internal/logger"
	_ "github.com/mattn/go-sqlite3"
)

const defaultDirPerm = 0o755

// SQLiteStore persists generations so the shell survives client restarts,
// the way a browser keeps its Cache Storage across reloads.
type SQLiteStore struct {
	db     *sql.DB
	logger logger.Logger
	mu     sync.Mutex
}

func NewSQLiteStore(path string, log logger.Logger) (*SQLiteStore, error) {
	errFactory := errors.New()

	if path == "" {
		return nil, errFactory.New(ErrInvalidDBPath)
	}

	if err := os.MkdirAll(filepath.Dir(path), defaultDirPerm); err != nil {
		return nil, errFactory.WithData(ErrStorageInit, struct {
			Phase string
			Path  string
			Error string
		}{
			Phase: "create_directory",
			Path:  path,
			Error: err.Error(),
		})
	}

	db, err := sql.Open("sqlite3", path+"?_journal=WAL")
	if err != nil {
		return nil, errFactory.WithData(ErrStorageInit, struct {
			Phase string
			Error string
		}{
			Phase: "open_database",
			Error: err.Error(),
		})
	}
	db.SetMaxOpenConns(1)

	if err := prepareSchema(db, log); err != nil {
		db.Close()
		return nil, errFactory.WithData(ErrStorageInit, struct {
			Phase string
			Error string
		}{
			Phase: "schema_version",
			Error: err.Error(),
		})
	}

	log.Info().
		Str("path", path).
		Int("schema_version", SchemaVersion).
		Msg("Cache store initialized")

	return &SQLiteStore{db: db, logger: log}, nil
}

func (s *SQLiteStore) Open(ctx context.Context, generation string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, openGenerationSQL, generation); err != nil {
		return errors.New().Wrap(ErrStorageAccess, err)
	}
	return nil
}

func (s *SQLiteStore) PutAll(ctx context.Context, generation string, entries []Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	errFactory := errors.New()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errFactory.Wrap(ErrTransactionFailed, err)
	}

	committed := false
	defer func() {
		if !committed {
			if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
				s.logger.Error().Err(err).Msg("Failed to roll back transaction")
			}
		}
	}()

	if _, err := tx.ExecContext(ctx, openGenerationSQL, generation); err != nil {
		return errFactory.Wrap(ErrTransactionFailed, err)
	}

	stmt, err := tx.PrepareContext(ctx, putEntrySQL)
	if err != nil {
		return errFactory.Wrap(ErrTransactionFailed, err)
	}
	defer stmt.Close()

	for _, e := range entries {
		header, err := json.Marshal(e.Header)
		if err != nil {
			return errFactory.Wrap(ErrTransactionFailed, err)
		}
		body := e.Body
		if body == nil {
			body = []byte{}
		}
		if _, err := stmt.ExecContext(ctx, generation, e.URL, e.Status, string(header), body); err != nil {
			return errFactory.WithData(ErrTransactionFailed, struct {
				URL   string
				Error string
			}{
				URL:   e.URL,
				Error: err.Error(),
			})
		}
	}

	if err := tx.Commit(); err != nil {
		return errFactory.Wrap(ErrTransactionFailed, err)
	}
	committed = true

	s.logger.Debug().
		Str("generation", generation).
		Int("entries", len(entries)).
		Msg("Stored cache entries")

	return nil
}

func (s *SQLiteStore) Match(ctx context.Context, generation, url string) (Entry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		status int
		header string
		body   []byte
	)
	err := s.db.QueryRowContext(ctx, matchEntrySQL, generation, url).Scan(&status, &header, &body)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, errors.New().Wrap(ErrStorageAccess, err)
	}

	var h http.Header
	if err := json.Unmarshal([]byte(header), &h); err != nil {
		return Entry{}, false, errors.New().Wrap(ErrStorageAccess, err)
	}

	return Entry{URL: url, Status: status, Header: h, Body: body}, true, nil
}

func (s *SQLiteStore) Keys(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, listGenerationsSQL)
	if err != nil {
		return nil, errors.New().Wrap(ErrStorageAccess, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.New().Wrap(ErrStorageAccess, err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.New().Wrap(ErrStorageAccess, err)
	}

	return names, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, generation string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	errFactory := errors.New()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, errFactory.Wrap(ErrTransactionFailed, err)
	}

	committed := false
	defer func() {
		if !committed {
			if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
				s.logger.Error().Err(err).Msg("Failed to roll back transaction")
			}
		}
	}()

	if _, err := tx.ExecContext(ctx, "DELETE FROM cache_entries WHERE generation = ?", generation); err != nil {
		return false, errFactory.Wrap(ErrTransactionFailed, err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM cache_generations WHERE name = ?", generation)
	if err != nil {
		return false, errFactory.Wrap(ErrTransactionFailed, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errFactory.Wrap(ErrTransactionFailed, err)
	}

	if err := tx.Commit(); err != nil {
		return false, errFactory.Wrap(ErrTransactionFailed, err)
	}
	committed = true

	return n > 0, nil
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return errors.New().WithData(ErrStorageClose, struct {
			Phase string
			Error string
		}{
			Phase: "checkpoint_wal",
			Error: err.Error(),
		})
	}

	if err := s.db.Close(); err != nil {
		return errors.New().Wrap(ErrStorageClose, err)
	}

	s.logger.Info().Msg("Cache store closed")

	return nil
}
