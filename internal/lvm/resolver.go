// Package lvm maps device-mapper (LVM) devices to the physical block devices behind them.
package lvm

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"strconv"
	"strings"
)

const (
	// DefaultDevRoot holds the device special files
	DefaultDevRoot = "/dev"

	// DefaultSysBlock is the sysfs block device directory
	DefaultSysBlock = "/sys/block"

	// MaxTraversalSteps bounds ResolveSlaves on a cyclic slaves graph
	MaxTraversalSteps = 1000

	dmPrefix = "dm-"
)

// Resolution outcomes reported to an Observer
const (
	OutcomeFastPath      = "fastpath"
	OutcomeNotApplicable = "not_applicable"
	OutcomeResolved      = "resolved"
	OutcomeResolvedSysfs = "resolved_sysfs"
	OutcomeBadDevice     = "bad_device"
	OutcomeError         = "error"
)

// Observer receives resolver telemetry
type Observer interface {
	ObserveResolution(outcome string)
	ObserveTraversal(steps, slaves int, runaway bool)
}

type nopObserver struct{}

func (nopObserver) ObserveResolution(string)        {}
func (nopObserver) ObserveTraversal(int, int, bool) {}

// Options configures a Resolver. Zero fields take defaults.
type Options struct {
	DevRoot  string
	SysBlock string

	// LegacySysfs is set on systems whose sysfs lacks complete LVM slave
	// information. Missing or empty slaves directories then degrade to an
	// empty result with a warning.
	LegacySysfs bool

	Logger   *slog.Logger
	Observer Observer
}

// Resolver resolves device-mapper devices. It holds no mutable state and is
// safe for concurrent use.
type Resolver struct {
	fs       Filesystem
	devRoot  string
	sysBlock string
	legacy   bool
	log      *slog.Logger
	obs      Observer
}

// NewResolver returns a Resolver reading the system through fsys
func NewResolver(fsys Filesystem, opts Options) *Resolver {
	r := &Resolver{
		fs:       fsys,
		devRoot:  strings.TrimSuffix(opts.DevRoot, "/"),
		sysBlock: strings.TrimSuffix(opts.SysBlock, "/"),
		legacy:   opts.LegacySysfs,
		log:      opts.Logger,
		obs:      opts.Observer,
	}
	if r.devRoot == "" {
		r.devRoot = DefaultDevRoot
	}
	if r.sysBlock == "" {
		r.sysBlock = DefaultSysBlock
	}
	if r.log == nil {
		r.log = slog.Default()
	}
	if r.obs == nil {
		r.obs = nopObserver{}
	}
	r.log = r.log.With("component", "lvm")
	return r
}

// IsDeviceMapperPath reports whether path lies under /dev/mapper/ and is not the control device
func IsDeviceMapperPath(path string) bool {
	return isMapperPath(DefaultDevRoot, path)
}

// IsDeviceMapperPath reports whether path lies under the resolver's mapper directory
func (r *Resolver) IsDeviceMapperPath(path string) bool {
	return isMapperPath(r.devRoot, path)
}

func isMapperPath(devRoot, p string) bool {
	mapper := devRoot + "/mapper/"
	return strings.HasPrefix(p, mapper) && !strings.HasPrefix(p, mapper+"control")
}

// ResolveDeviceMapperNode returns the dm node behind lvmPath. A raw dm node is
// returned unchanged. A path outside the mapper directory returns "" and no
// error. When /dev/dm-<minor> is absent the sysfs dev file is checked instead
// and the bare name "dm-<minor>" is returned.
//
// Any stat error on lvmPath itself is returned, fs.ErrNotExist included, so a
// stale /dev/mapper entry in the mount table is an error for the caller.
func (r *Resolver) ResolveDeviceMapperNode(lvmPath string) (string, error) {
	if strings.HasPrefix(lvmPath, r.devRoot+"/"+dmPrefix) {
		r.log.Debug("device is already a dm node", "device", lvmPath)
		r.obs.ObserveResolution(OutcomeFastPath)
		return lvmPath, nil
	}
	if !r.IsDeviceMapperPath(lvmPath) {
		r.log.Debug("device is not in the mapper directory", "device", lvmPath)
		r.obs.ObserveResolution(OutcomeNotApplicable)
		return "", nil
	}

	id, err := r.fs.StatDevice(lvmPath)
	if err != nil {
		r.obs.ObserveResolution(OutcomeError)
		return "", err
	}

	dmName := dmPrefix + strconv.FormatUint(uint64(id.Minor), 10)
	dmNode := r.devRoot + "/" + dmName

	candidate, err := r.fs.StatDevice(dmNode)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		devFile := r.sysBlock + "/" + dmName + "/dev"
		ok, err := r.matchIDInFile(devFile, id)
		if err != nil {
			return "", r.fail(err)
		}
		if !ok {
			return "", r.fail(&BadDeviceError{
				Path:   lvmPath,
				Reason: fmt.Sprintf("device does not map to %s", dmName),
			})
		}
		r.obs.ObserveResolution(OutcomeResolvedSysfs)
		return dmName, nil
	case err != nil:
		return "", r.fail(err)
	case candidate != id:
		return "", r.fail(&BadDeviceError{
			Path:   lvmPath,
			Reason: fmt.Sprintf("device id %s does not match %s (%s)", id, dmNode, candidate),
		})
	}

	r.log.Debug("resolved dm node", "device", lvmPath, "node", dmNode)
	r.obs.ObserveResolution(OutcomeResolved)
	return dmNode, nil
}

// ResolveSlaves returns the /dev paths of the physical devices behind dmNode,
// walking nested dm devices depth first. A traversal that exceeds
// MaxTraversalSteps returns an empty result.
func (r *Resolver) ResolveSlaves(dmNode string) ([]string, error) {
	type slave struct {
		name string
		dir  string
	}

	stack := []string{path.Base(dmNode)}
	var terminals []slave
	steps := 0

	for len(stack) > 0 {
		steps++
		name := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		dir := r.sysBlock + "/" + name + "/slaves"
		entries, err := r.fs.ListDir(dir)
		if err != nil {
			if r.legacy {
				r.log.Warn("LVM support is limited to logical disk metrics; slaves directory unreadable",
					"device", dmNode, "path", dir, "error", err)
				r.obs.ObserveTraversal(steps, 0, false)
				return nil, nil
			}
			r.log.Error("failed to list slave devices", "device", dmNode, "path", dir, "error", err)
			r.obs.ObserveTraversal(steps, 0, false)
			return nil, err
		}
		for _, e := range entries {
			if strings.HasPrefix(e, dmPrefix) {
				stack = append(stack, e)
			} else {
				terminals = append(terminals, slave{name: e, dir: dir})
			}
		}

		if steps > MaxTraversalSteps {
			r.log.Error("slave traversal exceeded step limit",
				"device", dmNode, "limit", MaxTraversalSteps)
			r.obs.ObserveTraversal(steps, 0, true)
			return nil, nil
		}
	}

	if len(terminals) == 0 {
		if r.legacy {
			r.log.Warn("LVM support is limited to logical disk metrics; slaves directory is empty",
				"device", dmNode)
			r.obs.ObserveTraversal(steps, 0, false)
			return nil, nil
		}
		r.obs.ObserveTraversal(steps, 0, false)
		err := &BadDeviceError{Path: dmNode, Reason: "no slave entries for device"}
		r.log.Error("failed to resolve slave devices", "error", err)
		return nil, err
	}

	var result []string
	for _, s := range terminals {
		if s.name == "" || s.name == "." || s.name == ".." || strings.Contains(s.name, "/") {
			r.log.Warn("ignoring unparseable slave entry", "device", dmNode, "entry", s.name, "path", s.dir)
			continue
		}

		devPath := r.devRoot + "/" + strings.ReplaceAll(s.name, "!", "/")
		id, err := r.fs.StatDevice(devPath)
		if err != nil {
			r.obs.ObserveTraversal(steps, len(result), false)
			return nil, err
		}

		ok, err := r.matchIDInFile(s.dir+"/"+s.name+"/dev", id)
		if err != nil {
			r.obs.ObserveTraversal(steps, len(result), false)
			return nil, err
		}
		if !ok {
			r.log.Warn("slave device id does not match sysfs, ignoring",
				"device", dmNode, "slave", devPath, "id", id.String())
			continue
		}
		result = append(result, devPath)
	}

	r.obs.ObserveTraversal(steps, len(result), false)
	return result, nil
}

// matchIDInFile reports whether the first line of a sysfs dev file is id.
// An empty file is a BadDeviceError.
func (r *Resolver) matchIDInFile(file string, id DeviceID) (bool, error) {
	lines, err := r.fs.ReadLines(file)
	if err != nil {
		return false, err
	}
	if len(lines) == 0 {
		return false, &BadDeviceError{Path: file, Reason: "device id file is empty"}
	}
	if len(lines) > 1 {
		r.log.Warn("device id file has more than one line", "path", file, "lines", len(lines))
	}
	got, err := ParseDeviceID(lines[0])
	if err != nil {
		r.log.Warn("unparseable device id file", "path", file, "error", err)
		return false, nil
	}
	return got == id, nil
}

// fail logs err and records the outcome.
func (r *Resolver) fail(err error) error {
	if errors.Is(err, ErrBadDevice) {
		r.log.Error("bad LVM device", "error", err)
		r.obs.ObserveResolution(OutcomeBadDevice)
	} else {
		r.obs.ObserveResolution(OutcomeError)
	}
	return err
}
