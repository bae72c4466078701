package lvm

import (
	"bufio"
	"os"
	"strings"
)

// OSFilesystem implements Filesystem on the running system
type OSFilesystem struct{}

// ListDir returns the names in path, sorted. Symlinks are listed by link name.
func (OSFilesystem) ListDir(path string) ([]string, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}

// ReadLines returns the lines of path with trailing whitespace removed
func (OSFilesystem) ReadLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), " \t\r"))
	}
	return lines, scanner.Err()
}
