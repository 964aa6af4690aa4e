package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/avidal-games/complot/internal/journal"
	"github.com/avidal-games/complot/internal/platform/metrics"
)

// snapshotSlot keys the single active playthrough. A multi-save build would
// key this per player.
const snapshotSlot = "default"

// Store wraps the SQLite connection holding snapshots, the journal and meta.
type Store struct {
	db *sqlx.DB
}

// Open opens or creates the database at the given path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		slot TEXT PRIMARY KEY,
		schema_version INTEGER NOT NULL,
		catalog_version TEXT NOT NULL,
		saved_at DATETIME NOT NULL,
		payload TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS journal (
		id TEXT PRIMARY KEY,
		seq INTEGER NOT NULL,
		timestamp DATETIME NOT NULL,
		action_type TEXT NOT NULL,
		target_id TEXT NOT NULL DEFAULT '',
		payload TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_journal_seq ON journal(seq);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveSnapshot upserts the playthrough snapshot.
func (s *Store) SaveSnapshot(ctx context.Context, snap *Snapshot) error {
	start := time.Now()
	err := s.saveSnapshot(ctx, snap)
	metrics.Get().RecordSnapshotWrite(time.Since(start), err)
	return err
}

func (s *Store) saveSnapshot(ctx context.Context, snap *Snapshot) error {
	payload, err := snap.Marshal()
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshots (slot, schema_version, catalog_version, saved_at, payload)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(slot) DO UPDATE SET
			schema_version=excluded.schema_version,
			catalog_version=excluded.catalog_version,
			saved_at=excluded.saved_at,
			payload=excluded.payload`,
		snapshotSlot, snap.SchemaVersion, snap.CatalogVersion, snap.SavedAt, string(payload),
	)
	if err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot returns the saved snapshot, or (nil, nil) when none exists.
// A corrupt payload is reported as an error so the caller can decide to start
// fresh instead of crashing.
func (s *Store) LoadSnapshot(ctx context.Context) (*Snapshot, error) {
	var payload string
	err := s.db.GetContext(ctx, &payload,
		"SELECT payload FROM snapshots WHERE slot = ?", snapshotSlot)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return UnmarshalSnapshot([]byte(payload))
}

// Append implements journal.Persister: write-through of one journal entry.
func (s *Store) Append(e journal.Entry) error {
	err := s.appendEntry(context.Background(), e)
	metrics.Get().RecordJournalAppend(err)
	return err
}

func (s *Store) appendEntry(ctx context.Context, e journal.Entry) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal journal entry: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO journal (id, seq, timestamp, action_type, target_id, payload)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.Seq, e.Timestamp, string(e.Action.Type), e.Action.TargetID, string(payload),
	)
	if err != nil {
		return fmt.Errorf("append journal entry: %w", err)
	}
	return nil
}

// JournalEntries returns up to limit most recent entries, oldest first.
// limit <= 0 returns the whole journal.
func (s *Store) JournalEntries(ctx context.Context, limit int) ([]journal.Entry, error) {
	query := "SELECT payload FROM journal ORDER BY seq ASC"
	args := []interface{}{}
	if limit > 0 {
		query = `SELECT payload FROM (
			SELECT seq, payload FROM journal ORDER BY seq DESC LIMIT ?
		) ORDER BY seq ASC`
		args = append(args, limit)
	}

	var payloads []string
	if err := s.db.SelectContext(ctx, &payloads, query, args...); err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}

	entries := make([]journal.Entry, 0, len(payloads))
	for _, p := range payloads {
		var e journal.Entry
		if err := json.Unmarshal([]byte(p), &e); err != nil {
			return nil, fmt.Errorf("corrupt journal entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// SaveMeta stores a key-value pair (rng seed, content version, ...).
func (s *Store) SaveMeta(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)", key, value)
	return err
}

// GetMeta retrieves a metadata value, empty when absent.
func (s *Store) GetMeta(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.GetContext(ctx, &value, "SELECT value FROM meta WHERE key = ?", key)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// Reset wipes the snapshot and journal for a fresh playthrough.
func (s *Store) Reset(ctx context.Context) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM snapshots"); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM journal"); err != nil {
		return err
	}
	return tx.Commit()
}
