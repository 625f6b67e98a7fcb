// Package vault persists extracted assets in a local SQLite database
// keyed by canonical path. The import orchestrator is its only writer
// and always writes in fixed-size batches.
package vault

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"reliquary/internal/assets"
	"reliquary/internal/config"
)

//go:embed schema.sql
var schemaSQL string

// Metadata describes the most recent completed import.
type Metadata struct {
	ImportID     string
	Engine       string
	GameTitle    string
	ImportedAt   time.Time
	AssetCount   int64
	SkippedCount int64
}

// Store manages asset persistence backed by SQLite. A file lock
// serializes imports across processes.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

// Open initializes or connects to the vault database, acquiring the
// vault lock first.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	lock := flock.New(filepath.Join(cfg.Paths.VaultDir, "vault.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire vault lock: %w", err)
	}
	if !locked {
		return nil, errors.New("vault is locked by another process")
	}

	dbPath := filepath.Join(cfg.Paths.VaultDir, "vault.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db, path: dbPath, lock: lock}, nil
}

// Close releases the database connection and the vault lock.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	var closeErr error
	if s.db != nil {
		closeErr = s.db.Close()
	}
	if s.lock != nil {
		if err := s.lock.Unlock(); err != nil && closeErr == nil {
			closeErr = err
		}
	}
	return closeErr
}

// Path reports the database file location.
func (s *Store) Path() string { return s.path }

// PutBatch upserts a batch of assets in one transaction.
func (s *Store) PutBatch(ctx context.Context, batch []assets.Asset) error {
	if len(batch) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
        INSERT INTO assets (path, content, mime, updated_at) VALUES (?, ?, ?, ?)
        ON CONFLICT(path) DO UPDATE SET
            content = excluded.content,
            mime = excluded.mime,
            updated_at = excluded.updated_at`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, asset := range batch {
		if _, err := stmt.ExecContext(ctx, asset.Path, asset.Content, asset.MIME, now); err != nil {
			return fmt.Errorf("upsert %s: %w", asset.Path, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

// Count reports the number of stored assets.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM assets`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count assets: %w", err)
	}
	return count, nil
}

// Get fetches one asset by canonical path.
func (s *Store) Get(ctx context.Context, path string) (assets.Asset, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT path, content, mime FROM assets WHERE path = ?`, path)
	var asset assets.Asset
	err := row.Scan(&asset.Path, &asset.Content, &asset.MIME)
	if errors.Is(err, sql.ErrNoRows) {
		return assets.Asset{}, false, nil
	}
	if err != nil {
		return assets.Asset{}, false, fmt.Errorf("get asset: %w", err)
	}
	return asset, true, nil
}

// SetImportMetadata records the outcome of an import, replacing any
// previous record.
func (s *Store) SetImportMetadata(ctx context.Context, meta Metadata) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO import_metadata (id, import_id, engine, game_title, imported_at, asset_count, skipped_count)
        VALUES (1, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            import_id = excluded.import_id,
            engine = excluded.engine,
            game_title = excluded.game_title,
            imported_at = excluded.imported_at,
            asset_count = excluded.asset_count,
            skipped_count = excluded.skipped_count`,
		meta.ImportID,
		meta.Engine,
		meta.GameTitle,
		meta.ImportedAt.UTC().Format(time.RFC3339Nano),
		meta.AssetCount,
		meta.SkippedCount,
	)
	if err != nil {
		return fmt.Errorf("set import metadata: %w", err)
	}
	return nil
}

// ImportMetadata returns the most recent import record, if any.
func (s *Store) ImportMetadata(ctx context.Context) (Metadata, bool, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT import_id, engine, game_title, imported_at, asset_count, skipped_count
        FROM import_metadata WHERE id = 1`)
	var meta Metadata
	var importedAt string
	err := row.Scan(&meta.ImportID, &meta.Engine, &meta.GameTitle, &importedAt, &meta.AssetCount, &meta.SkippedCount)
	if errors.Is(err, sql.ErrNoRows) {
		return Metadata{}, false, nil
	}
	if err != nil {
		return Metadata{}, false, fmt.Errorf("get import metadata: %w", err)
	}
	if ts, parseErr := time.Parse(time.RFC3339Nano, importedAt); parseErr == nil {
		meta.ImportedAt = ts
	}
	return meta, true, nil
}
