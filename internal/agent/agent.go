// Package agent wires configuration, device resolution and the inventory store.
package agent

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sigreer/pal/internal/caltime"
	"github.com/sigreer/pal/internal/config"
	"github.com/sigreer/pal/internal/db"
	"github.com/sigreer/pal/internal/disk"
	"github.com/sigreer/pal/internal/lvm"
	"github.com/sigreer/pal/internal/metrics"
)

// Agent collects disk inventory snapshots
type Agent struct {
	cfg      *config.Config
	log      *slog.Logger
	resolver *lvm.Resolver
	disks    *disk.Enumerator
	store    *db.DB
}

// NewLogger returns a text logger at the configured level
func NewLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: cfg.LogLevel()}))
}

// New builds an Agent. A nil fsys reads the running system; a nil reg skips metrics.
func New(cfg *config.Config, fsys lvm.Filesystem, logger *slog.Logger, reg prometheus.Registerer) (*Agent, error) {
	if fsys == nil {
		fsys = lvm.OSFilesystem{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	var obs lvm.Observer
	if reg != nil {
		obs = metrics.NewResolver(reg)
	}
	resolver := lvm.NewResolver(fsys, cfg.ResolverOptions(logger, obs))

	store, err := db.New(cfg.Inventory.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open inventory: %w", err)
	}

	return &Agent{
		cfg:      cfg,
		log:      logger,
		resolver: resolver,
		disks: disk.NewEnumerator(fsys, resolver, disk.Options{
			DevRoot:    cfg.Paths.DevRoot,
			SysBlock:   cfg.Paths.SysBlock,
			MountTable: cfg.Paths.MountTable,
			SlavesTTL:  cfg.Cache.SlavesTTL,
			Logger:     logger,
		}),
		store: store,
	}, nil
}

// Resolver returns the device-mapper resolver
func (a *Agent) Resolver() *lvm.Resolver { return a.resolver }

// Store returns the inventory database
func (a *Agent) Store() *db.DB { return a.store }

// Collect enumerates logical disks and records the snapshot
func (a *Agent) Collect() (*disk.Snapshot, error) {
	snap, err := a.disks.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate disks: %w", err)
	}
	if _, err := a.store.RecordSnapshot(snap); err != nil {
		return nil, err
	}
	a.log.Info("recorded disk snapshot",
		"id", snap.ID, "taken_at", snap.TakenAt.String(), "disks", len(snap.Disks))
	return snap, nil
}

// Prune removes snapshots older than the configured retention
func (a *Agent) Prune() (int64, error) {
	cutoff, err := caltime.CurrentUTC().SubRelative(caltime.RelativeTime{Days: a.cfg.Inventory.RetentionDays})
	if err != nil {
		return 0, fmt.Errorf("failed to compute retention cutoff: %w", err)
	}
	n, err := a.store.PruneBefore(cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		a.log.Info("pruned disk snapshots", "count", n, "before", cutoff.String())
	}
	return n, nil
}

// VolumeGroups reads the HP-UX lvmtab at the configured path
func (a *Agent) VolumeGroups() ([]lvm.VolumeGroup, error) {
	tab, err := lvm.ReadLvmTab(a.cfg.Paths.LvmTab)
	if err != nil {
		return nil, err
	}
	return tab.VGs, nil
}

// RefreshTopology drops cached slave sets
func (a *Agent) RefreshTopology() {
	a.disks.InvalidateSlaves()
}

// Close closes the inventory store
func (a *Agent) Close() error {
	return a.store.Close()
}
