//go:build !(darwin || freebsd || linux)

package lvm

import (
	"errors"
	"io/fs"
)

// StatDevice is not available on this platform
func (OSFilesystem) StatDevice(path string) (DeviceID, error) {
	return DeviceID{}, &fs.PathError{Op: "stat", Path: path, Err: errors.ErrUnsupported}
}
