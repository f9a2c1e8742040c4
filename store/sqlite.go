package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/sessionkeeper/dbx"
	"github.com/dmitrijs2005/sessionkeeper/models"
	"github.com/dmitrijs2005/sessionkeeper/store/migrations"
)

// SQLiteStore persists the scoped records as JSON blobs in a single
// key/value table.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the state database at dsn and
// runs pending migrations.
func OpenSQLite(ctx context.Context, dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// NewSQLiteStore wraps an already-open database. The caller is
// responsible for the schema (used by tests).
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}

	return goose.UpContext(ctx, db, ".")
}

// DB exposes the underlying handle so callers can run session and
// registry writes in one transaction via dbx.WithTx.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM state WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get state[%s]: %w", key, err)
	}
	return value, nil
}

func (s *SQLiteStore) set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO state (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set state[%s]: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM state WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete state[%s]: %w", key, err)
	}
	return nil
}

// Session returns the stored record. Missing or undecodable data is
// reported as (nil, nil): a corrupt record must behave exactly like an
// absent one.
func (s *SQLiteStore) Session(ctx context.Context) (*models.SessionRecord, error) {
	raw, err := s.get(ctx, KeySession)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}

	var rec models.SessionRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, nil
	}
	return &rec, nil
}

func (s *SQLiteStore) SaveSession(ctx context.Context, rec *models.SessionRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	return s.set(ctx, KeySession, raw)
}

func (s *SQLiteStore) ClearSession(ctx context.Context) error {
	return s.delete(ctx, KeySession)
}

// Registry returns the active-session registry. Absent or corrupt data
// yields an empty map.
func (s *SQLiteStore) Registry(ctx context.Context) (map[string]models.RegistryEntry, error) {
	raw, err := s.get(ctx, KeyRegistry)
	if err != nil {
		return nil, err
	}

	reg := make(map[string]models.RegistryEntry)
	if raw == nil {
		return reg, nil
	}
	if err := json.Unmarshal(raw, &reg); err != nil {
		return make(map[string]models.RegistryEntry), nil
	}
	return reg, nil
}

func (s *SQLiteStore) SaveRegistry(ctx context.Context, reg map[string]models.RegistryEntry) error {
	raw, err := json.Marshal(reg)
	if err != nil {
		return fmt.Errorf("failed to encode registry: %w", err)
	}
	return s.set(ctx, KeyRegistry, raw)
}

func (s *SQLiteStore) DeviceID(ctx context.Context) (string, error) {
	raw, err := s.get(ctx, KeyDeviceID)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (s *SQLiteStore) SaveDeviceID(ctx context.Context, id string) error {
	return s.set(ctx, KeyDeviceID, []byte(id))
}

// SaveLoginState writes the session record and the registry in a
// single transaction, so a crash mid-login never leaves a session
// without its device binding.
func (s *SQLiteStore) SaveLoginState(ctx context.Context, rec *models.SessionRecord, reg map[string]models.RegistryEntry) error {
	recRaw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	regRaw, err := json.Marshal(reg)
	if err != nil {
		return fmt.Errorf("failed to encode registry: %w", err)
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		upsert := `
		INSERT INTO state (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`
		if _, err := tx.ExecContext(ctx, upsert, KeySession, recRaw); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, upsert, KeyRegistry, regRaw); err != nil {
			return err
		}
		return nil
	})
}
