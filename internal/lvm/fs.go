package lvm

// DirectoryLister lists the entry names of a directory
type DirectoryLister interface {
	ListDir(path string) ([]string, error)
}

// DeviceStatProvider returns the device number of a device special file
type DeviceStatProvider interface {
	StatDevice(path string) (DeviceID, error)
}

// LineReader returns the lines of a small text file
type LineReader interface {
	ReadLines(path string) ([]string, error)
}

// Filesystem is everything the resolver needs from the OS
type Filesystem interface {
	DirectoryLister
	DeviceStatProvider
	LineReader
}
