// Package disk enumerates mounted logical disks and the physical devices behind them.
package disk

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/sigreer/pal/internal/cache"
	"github.com/sigreer/pal/internal/caltime"
	"github.com/sigreer/pal/internal/lvm"
)

const sectorSize = 512

// PhysicalDevice is a block device backing a logical disk
type PhysicalDevice struct {
	Path      string
	SizeBytes int64
}

func (p PhysicalDevice) String() string {
	return fmt.Sprintf("%s (%s)", p.Path, humanize.IBytes(uint64(p.SizeBytes)))
}

// LogicalDisk is a mounted block device
type LogicalDisk struct {
	Device     string
	MountPoint string
	FSType     string
	DMNode     string // empty unless the device is device-mapper
	Physical   []PhysicalDevice
}

// IsLVM reports whether the disk is a device-mapper device
func (d LogicalDisk) IsLVM() bool {
	return d.DMNode != ""
}

// Snapshot is one enumeration of logical disks
type Snapshot struct {
	ID      string
	TakenAt caltime.CalendarTime
	Disks   []LogicalDisk
}

// Options configures an Enumerator
type Options struct {
	DevRoot    string
	SysBlock   string
	MountTable string
	SlavesTTL  time.Duration
	Logger     *slog.Logger
}

// Enumerator lists logical disks from the mount table
type Enumerator struct {
	fs         lvm.Filesystem
	resolver   *lvm.Resolver
	slaves     *cache.Cache[[]string]
	devRoot    string
	sysBlock   string
	mountTable string
	log        *slog.Logger
	now        func() caltime.CalendarTime
}

// NewEnumerator returns an Enumerator resolving device-mapper mounts through resolver
func NewEnumerator(fsys lvm.Filesystem, resolver *lvm.Resolver, opts Options) *Enumerator {
	if opts.DevRoot == "" {
		opts.DevRoot = lvm.DefaultDevRoot
	}
	if opts.SysBlock == "" {
		opts.SysBlock = lvm.DefaultSysBlock
	}
	if opts.MountTable == "" {
		opts.MountTable = "/proc/mounts"
	}
	if opts.SlavesTTL <= 0 {
		opts.SlavesTTL = cache.TTLSlaves
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Enumerator{
		fs:         fsys,
		resolver:   resolver,
		slaves:     cache.New[[]string](opts.SlavesTTL),
		devRoot:    strings.TrimSuffix(opts.DevRoot, "/"),
		sysBlock:   strings.TrimSuffix(opts.SysBlock, "/"),
		mountTable: opts.MountTable,
		log:        opts.Logger.With("component", "disk"),
		now:        caltime.CurrentUTC,
	}
}

// Snapshot enumerates logical disks and stamps the result with the current UTC time
func (e *Enumerator) Snapshot() (*Snapshot, error) {
	taken := e.now()
	disks, err := e.LogicalDisks()
	if err != nil {
		return nil, err
	}
	return &Snapshot{TakenAt: taken, Disks: disks}, nil
}

// LogicalDisks returns one LogicalDisk per mounted /dev device. Devices with
// inconsistent device-mapper data are logged and skipped. A /dev/mapper entry
// that no longer exists aborts the enumeration.
func (e *Enumerator) LogicalDisks() ([]LogicalDisk, error) {
	mounts, err := ReadMountTable(e.fs, e.mountTable)
	if err != nil {
		return nil, err
	}

	var disks []LogicalDisk
	for _, m := range mounts {
		if !strings.HasPrefix(m.Device, e.devRoot+"/") {
			continue
		}
		d, err := e.logicalDisk(m)
		if errors.Is(err, lvm.ErrBadDevice) {
			e.log.Warn("skipping device", "device", m.Device, "mount", m.MountPoint, "error", err)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to enumerate %s: %w", m.Device, err)
		}
		disks = append(disks, d)
	}
	return disks, nil
}

func (e *Enumerator) logicalDisk(m MountEntry) (LogicalDisk, error) {
	d := LogicalDisk{Device: m.Device, MountPoint: m.MountPoint, FSType: m.FSType}

	node, err := e.resolver.ResolveDeviceMapperNode(m.Device)
	if err != nil {
		return d, err
	}
	if node == "" {
		d.Physical = []PhysicalDevice{e.physical(m.Device)}
		return d, nil
	}
	d.DMNode = node

	slaves, err := e.Slaves(node)
	if err != nil {
		return d, err
	}
	for _, s := range slaves {
		d.Physical = append(d.Physical, e.physical(s))
	}
	return d, nil
}

// Slaves returns the slave set of a dm node, cached per node
func (e *Enumerator) Slaves(node string) ([]string, error) {
	if s, ok := e.slaves.Get(node); ok {
		return s, nil
	}
	s, err := e.resolver.ResolveSlaves(node)
	if err != nil {
		return nil, err
	}
	e.slaves.Set(node, s)
	return s, nil
}

// InvalidateSlaves drops cached slave sets, e.g. after an LVM change
func (e *Enumerator) InvalidateSlaves() {
	e.slaves.Clear()
}

func (e *Enumerator) physical(devPath string) PhysicalDevice {
	p := PhysicalDevice{Path: devPath}
	size, err := e.sizeBytes(devPath)
	if err != nil {
		e.log.Debug("device size unavailable", "device", devPath, "error", err)
		return p
	}
	p.SizeBytes = size
	return p
}

// sizeBytes reads the sysfs size of a disk or partition. Partitions live under
// their parent disk, e.g. /sys/block/sda/sda1/size.
func (e *Enumerator) sizeBytes(devPath string) (int64, error) {
	name := strings.ReplaceAll(strings.TrimPrefix(devPath, e.devRoot+"/"), "/", "!")
	lines, err := e.fs.ReadLines(e.sysBlock + "/" + name + "/size")
	if err != nil {
		parent := parentDisk(name)
		if parent == name {
			return 0, err
		}
		if lines, err = e.fs.ReadLines(e.sysBlock + "/" + parent + "/" + name + "/size"); err != nil {
			return 0, err
		}
	}
	if len(lines) == 0 {
		return 0, fmt.Errorf("empty size file for %s", devPath)
	}
	sectors, err := strconv.ParseInt(strings.TrimSpace(lines[0]), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad size for %s: %w", devPath, err)
	}
	return sectors * sectorSize, nil
}

// parentDisk strips the partition number: sda1 -> sda, nvme0n1p2 -> nvme0n1, cciss!c0d0p1 -> cciss!c0d0.
func parentDisk(name string) string {
	i := len(name)
	for i > 0 && name[i-1] >= '0' && name[i-1] <= '9' {
		i--
	}
	if i == len(name) || i == 0 {
		return name
	}
	if name[i-1] == 'p' && i >= 2 && name[i-2] >= '0' && name[i-2] <= '9' {
		i--
	}
	return name[:i]
}
