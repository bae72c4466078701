package lvm

import (
	"errors"
	"fmt"
)

var (
	// ErrBadDevice is matched by every BadDeviceError
	ErrBadDevice = errors.New("bad LVM device")

	// ErrLvmTabFormat is returned for a malformed lvmtab file
	ErrLvmTabFormat = errors.New("malformed lvmtab")

	// ErrIndexOutOfRange is returned by LvmTab accessors
	ErrIndexOutOfRange = errors.New("index out of range")
)

// BadDeviceError reports device data that contradicts itself
type BadDeviceError struct {
	Path   string
	Reason string
}

func (e *BadDeviceError) Error() string {
	return fmt.Sprintf("bad LVM device %s: %s", e.Path, e.Reason)
}

func (e *BadDeviceError) Is(target error) bool {
	return target == ErrBadDevice
}
