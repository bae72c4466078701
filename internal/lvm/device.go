package lvm

import (
	"fmt"
	"strconv"
	"strings"
)

// DeviceID is the major/minor number pair of a device special file
type DeviceID struct {
	Major uint32
	Minor uint32
}

// String returns the "maj:min" form used by sysfs dev files
func (d DeviceID) String() string {
	return fmt.Sprintf("%d:%d", d.Major, d.Minor)
}

// ParseDeviceID parses the "maj:min" form
func ParseDeviceID(s string) (DeviceID, error) {
	majStr, minStr, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return DeviceID{}, fmt.Errorf("device id %q: missing ':'", s)
	}
	maj, err := strconv.ParseUint(majStr, 10, 32)
	if err != nil {
		return DeviceID{}, fmt.Errorf("device id %q: bad major: %w", s, err)
	}
	minor, err := strconv.ParseUint(minStr, 10, 32)
	if err != nil {
		return DeviceID{}, fmt.Errorf("device id %q: bad minor: %w", s, err)
	}
	return DeviceID{Major: uint32(maj), Minor: uint32(minor)}, nil
}
