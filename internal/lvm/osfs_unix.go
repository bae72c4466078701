//go:build darwin || freebsd || linux

package lvm

import (
	"io/fs"

	"golang.org/x/sys/unix"
)

// StatDevice returns the device number of the special file at path
func (OSFilesystem) StatDevice(path string) (DeviceID, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return DeviceID{}, &fs.PathError{Op: "stat", Path: path, Err: err}
	}
	return DeviceIDFromRaw(uint64(st.Rdev)), nil
}

// DeviceIDFromRaw splits a raw dev_t
func DeviceIDFromRaw(raw uint64) DeviceID {
	return DeviceID{Major: unix.Major(raw), Minor: unix.Minor(raw)}
}

// Raw returns the platform dev_t encoding of d
func (d DeviceID) Raw() uint64 {
	return unix.Mkdev(d.Major, d.Minor)
}
