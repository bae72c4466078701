package agent

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matryer/is"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/sigreer/pal/internal/config"
	"github.com/sigreer/pal/internal/db"
	"github.com/sigreer/pal/internal/lvm"
)

type testFS struct {
	lvm.OSFilesystem
	devs map[string]lvm.DeviceID
}

func (f testFS) StatDevice(path string) (lvm.DeviceID, error) {
	id, ok := f.devs[path]
	if !ok {
		return lvm.DeviceID{}, &fs.PathError{Op: "stat", Path: path, Err: fs.ErrNotExist}
	}
	return id, nil
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newTestAgent(t *testing.T) (*Agent, *prometheus.Registry) {
	t.Helper()
	root := t.TempDir()
	cfg := config.Default()
	cfg.Paths.SysBlock = filepath.Join(root, "sys", "block")
	cfg.Paths.MountTable = filepath.Join(root, "mounts")
	cfg.Paths.LvmTab = filepath.Join(root, "lvmtab")
	cfg.Inventory.DBPath = filepath.Join(root, "inventory.db")

	writeFile(t, cfg.Paths.MountTable, "/dev/mapper/vg0-lv0 / ext4 rw 0 0\n/dev/sdb1 /data xfs rw 0 0\n")
	writeFile(t, filepath.Join(cfg.Paths.SysBlock, "dm-0", "slaves", "sda2", "dev"), "8:2\n")
	writeFile(t, filepath.Join(cfg.Paths.SysBlock, "sda", "sda2", "size"), "2048\n")

	fsys := testFS{devs: map[string]lvm.DeviceID{
		"/dev/mapper/vg0-lv0": {Major: 253, Minor: 0},
		"/dev/dm-0":           {Major: 253, Minor: 0},
		"/dev/sda2":           {Major: 8, Minor: 2},
	}}
	reg := prometheus.NewRegistry()
	a, err := New(cfg, fsys, slog.New(slog.NewTextHandler(io.Discard, nil)), reg)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { a.Close() })
	return a, reg
}

func TestCollect(t *testing.T) {
	is := is.New(t)
	a, reg := newTestAgent(t)

	snap, err := a.Collect()
	is.NoErr(err)
	is.True(snap.ID != "")
	is.Equal(len(snap.Disks), 2)

	stored, err := a.Store().LatestSnapshot()
	is.NoErr(err)
	is.Equal(stored.ID, snap.ID)
	is.Equal(stored.Disks[0].DMNode, "/dev/dm-0")
	is.Equal(stored.Disks[0].Physical[0].Path, "/dev/sda2")
	is.Equal(stored.Disks[0].Physical[0].SizeBytes, int64(1<<20))

	n, err := testutil.GatherAndCount(reg, "pal_lvm_resolutions_total")
	is.NoErr(err)
	is.Equal(n, 2) // resolved, not_applicable
}

func TestPruneKeepsRecentSnapshots(t *testing.T) {
	is := is.New(t)
	a, _ := newTestAgent(t)

	_, err := a.Collect()
	is.NoErr(err)
	n, err := a.Prune()
	is.NoErr(err)
	is.Equal(n, int64(0))

	_, err = a.Store().LatestSnapshot()
	is.NoErr(err)
}

func TestPruneEmptyStore(t *testing.T) {
	is := is.New(t)
	a, _ := newTestAgent(t)

	n, err := a.Prune()
	is.NoErr(err)
	is.Equal(n, int64(0))

	_, err = a.Store().LatestSnapshot()
	is.True(errors.Is(err, db.ErrSnapshotNotFound))
}

func TestVolumeGroupsMissingLvmTab(t *testing.T) {
	is := is.New(t)
	a, _ := newTestAgent(t)

	_, err := a.VolumeGroups()
	is.True(errors.Is(err, fs.ErrNotExist))
}

func TestNewWithoutMetrics(t *testing.T) {
	is := is.New(t)
	cfg := config.Default()
	cfg.Inventory.DBPath = filepath.Join(t.TempDir(), "inventory.db")

	a, err := New(cfg, nil, nil, nil)
	is.NoErr(err)
	defer a.Close()
	is.True(a.Resolver() != nil)
	is.True(!a.Resolver().IsDeviceMapperPath("/dev/sda"))
}

func TestNewLogger(t *testing.T) {
	is := is.New(t)
	cfg := config.Default()
	cfg.Log.Level = "warn"

	var buf bytes.Buffer
	logger := NewLogger(&buf, cfg)
	logger.Info("hidden")
	logger.Warn("shown")

	is.True(!strings.Contains(buf.String(), "hidden"))
	is.True(strings.Contains(buf.String(), "shown"))
}
