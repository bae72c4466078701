package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/sigreer/pal/internal/caltime"
	"github.com/sigreer/pal/internal/disk"
	"github.com/sigreer/pal/internal/version"
)

// ErrSnapshotNotFound is returned when no snapshot matches
var ErrSnapshotNotFound = errors.New("snapshot not found")

// SnapshotSummary describes a stored snapshot without its disks
type SnapshotSummary struct {
	ID           string
	TakenAt      caltime.CalendarTime
	AgentVersion string
	DiskCount    int
}

// RecordSnapshot stores s under a new ID, which is also written to s.ID
func (d *DB) RecordSnapshot(s *disk.Snapshot) (string, error) {
	if !s.TakenAt.IsInitialized() {
		return "", fmt.Errorf("failed to record snapshot: no timestamp")
	}
	id := uuid.NewString()

	tx, err := d.conn.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO snapshots (id, taken_at, taken_at_posix, agent_version)
		VALUES (?, ?, ?, ?)
	`, id, s.TakenAt.ToCIM(), s.TakenAt.ToPosixTime(), version.Version)
	if err != nil {
		return "", fmt.Errorf("failed to insert snapshot: %w", err)
	}

	for _, ld := range s.Disks {
		res, err := tx.Exec(`
			INSERT INTO logical_disks (snapshot_id, device, mount_point, fs_type, dm_node)
			VALUES (?, ?, ?, ?, ?)
		`, id, ld.Device, ld.MountPoint, nullString(ld.FSType), nullString(ld.DMNode))
		if err != nil {
			return "", fmt.Errorf("failed to insert logical disk %s: %w", ld.Device, err)
		}
		diskID, err := res.LastInsertId()
		if err != nil {
			return "", err
		}
		for _, p := range ld.Physical {
			_, err := tx.Exec(`
				INSERT INTO physical_devices (logical_disk_id, path, size_bytes)
				VALUES (?, ?, ?)
			`, diskID, p.Path, nullInt64(p.SizeBytes))
			if err != nil {
				return "", fmt.Errorf("failed to insert physical device %s: %w", p.Path, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit snapshot: %w", err)
	}
	s.ID = id
	return id, nil
}

// GetSnapshot returns the snapshot with the given ID, disks included
func (d *DB) GetSnapshot(id string) (*disk.Snapshot, error) {
	var takenAt string
	err := d.conn.QueryRow("SELECT taken_at FROM snapshots WHERE id = ?", id).Scan(&takenAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%s: %w", id, ErrSnapshotNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	ts, err := caltime.FromCIM(takenAt)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s has bad timestamp: %w", id, err)
	}
	snap := &disk.Snapshot{ID: id, TakenAt: ts}

	rows, err := d.conn.Query(`
		SELECT l.id, l.device, l.mount_point, l.fs_type, l.dm_node, p.path, p.size_bytes
		FROM logical_disks l
		LEFT JOIN physical_devices p ON p.logical_disk_id = l.id
		WHERE l.snapshot_id = ?
		ORDER BY l.id, p.id
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get logical disks: %w", err)
	}
	defer rows.Close()

	lastID := int64(-1)
	for rows.Next() {
		var (
			diskID         int64
			device, mount  string
			fsType, dmNode sql.NullString
			path           sql.NullString
			size           sql.NullInt64
		)
		if err := rows.Scan(&diskID, &device, &mount, &fsType, &dmNode, &path, &size); err != nil {
			return nil, err
		}
		if diskID != lastID {
			snap.Disks = append(snap.Disks, disk.LogicalDisk{
				Device:     device,
				MountPoint: mount,
				FSType:     fsType.String,
				DMNode:     dmNode.String,
			})
			lastID = diskID
		}
		if path.Valid {
			ld := &snap.Disks[len(snap.Disks)-1]
			ld.Physical = append(ld.Physical, disk.PhysicalDevice{Path: path.String, SizeBytes: size.Int64})
		}
	}
	return snap, rows.Err()
}

// LatestSnapshot returns the most recent snapshot
func (d *DB) LatestSnapshot() (*disk.Snapshot, error) {
	var id string
	err := d.conn.QueryRow("SELECT id FROM snapshots ORDER BY taken_at_posix DESC, rowid DESC LIMIT 1").Scan(&id)
	if err == sql.ErrNoRows {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest snapshot: %w", err)
	}
	return d.GetSnapshot(id)
}

// ListSnapshots returns up to limit snapshots, newest first
func (d *DB) ListSnapshots(limit int) ([]SnapshotSummary, error) {
	if limit <= 0 {
		limit = 100
	}
	return d.querySummaries(`
		SELECT s.id, s.taken_at, s.agent_version, COUNT(l.id)
		FROM snapshots s
		LEFT JOIN logical_disks l ON l.snapshot_id = s.id
		GROUP BY s.id
		ORDER BY s.taken_at_posix DESC, s.rowid DESC
		LIMIT ?
	`, limit)
}

// SnapshotsWithDevice returns the snapshots in which a physical device appeared, newest first
func (d *DB) SnapshotsWithDevice(path string) ([]SnapshotSummary, error) {
	return d.querySummaries(`
		SELECT s.id, s.taken_at, s.agent_version,
			(SELECT COUNT(*) FROM logical_disks c WHERE c.snapshot_id = s.id)
		FROM snapshots s
		WHERE s.id IN (
			SELECT l.snapshot_id FROM logical_disks l
			JOIN physical_devices p ON p.logical_disk_id = l.id
			WHERE p.path = ?
		)
		ORDER BY s.taken_at_posix DESC, s.rowid DESC
	`, path)
}

func (d *DB) querySummaries(query string, args ...any) ([]SnapshotSummary, error) {
	rows, err := d.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var out []SnapshotSummary
	for rows.Next() {
		var s SnapshotSummary
		var takenAt string
		if err := rows.Scan(&s.ID, &takenAt, &s.AgentVersion, &s.DiskCount); err != nil {
			return nil, err
		}
		if s.TakenAt, err = caltime.FromCIM(takenAt); err != nil {
			return nil, fmt.Errorf("snapshot %s has bad timestamp: %w", s.ID, err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// PruneBefore deletes snapshots taken before t and returns how many were removed
func (d *DB) PruneBefore(t caltime.CalendarTime) (int64, error) {
	res, err := d.conn.Exec("DELETE FROM snapshots WHERE taken_at_posix < ?", t.ToPosixTime())
	if err != nil {
		return 0, fmt.Errorf("failed to prune snapshots: %w", err)
	}
	return res.RowsAffected()
}
