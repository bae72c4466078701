package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DefaultPath is the default database location
const DefaultPath = "/var/lib/pal/inventory.db"

// DB wraps the SQLite inventory of disk snapshots
type DB struct {
	conn *sql.DB
	path string
}

// New opens or creates the SQLite database at the given path
func New(path string) (*DB, error) {
	if path == "" {
		path = DefaultPath
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one writer; snapshot inserts run in a single transaction
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec("PRAGMA foreign_keys = ON; PRAGMA journal_mode = WAL;"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to configure database: %w", err)
	}

	db := &DB{conn: conn, path: path}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func (d *DB) Close() error {
	return d.conn.Close()
}

// Path returns the database file path
func (d *DB) Path() string {
	return d.path
}

// SchemaVersion returns the highest applied migration
func (d *DB) SchemaVersion() (int, error) {
	var version int
	err := d.conn.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version)
	return version, err
}

type migration struct {
	name string
	sql  string
}

// migrations are applied in order; a migration's version is its index + 1
var migrations = []migration{
	{"snapshot schema", migrationV1},
	{"physical device path index", migrationV2},
}

func (d *DB) migrate() error {
	if _, err := d.conn.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("failed to create schema_version: %w", err)
	}

	current, err := d.SchemaVersion()
	if err != nil {
		return err
	}
	for i := current; i < len(migrations); i++ {
		if err := d.apply(i+1, migrations[i]); err != nil {
			return err
		}
	}
	return nil
}

func (d *DB) apply(v int, m migration) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(m.sql); err != nil {
		return fmt.Errorf("migration v%d (%s) failed: %w", v, m.name, err)
	}
	if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", v); err != nil {
		return fmt.Errorf("failed to record migration v%d: %w", v, err)
	}
	return tx.Commit()
}

// migrationV1 creates the snapshot schema
const migrationV1 = `
-- One row per enumeration; taken_at is a CIM datetime
CREATE TABLE IF NOT EXISTS snapshots (
    id TEXT PRIMARY KEY,
    taken_at TEXT NOT NULL,
    taken_at_posix INTEGER NOT NULL,
    agent_version TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_snapshots_time ON snapshots(taken_at_posix);

CREATE TABLE IF NOT EXISTS logical_disks (
    id INTEGER PRIMARY KEY,
    snapshot_id TEXT NOT NULL REFERENCES snapshots(id) ON DELETE CASCADE,
    device TEXT NOT NULL,
    mount_point TEXT NOT NULL,
    fs_type TEXT,
    dm_node TEXT
);

CREATE INDEX IF NOT EXISTS idx_logical_disks_snapshot ON logical_disks(snapshot_id);

CREATE TABLE IF NOT EXISTS physical_devices (
    id INTEGER PRIMARY KEY,
    logical_disk_id INTEGER NOT NULL REFERENCES logical_disks(id) ON DELETE CASCADE,
    path TEXT NOT NULL,
    size_bytes INTEGER
);

CREATE INDEX IF NOT EXISTS idx_physical_devices_disk ON physical_devices(logical_disk_id);
`

// migrationV2 indexes physical devices by path for history lookups
const migrationV2 = `
CREATE INDEX IF NOT EXISTS idx_physical_devices_path ON physical_devices(path);
`

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullInt64(i int64) sql.NullInt64 {
	if i == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: i, Valid: true}
}
