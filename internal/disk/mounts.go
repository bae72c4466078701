package disk

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sigreer/pal/internal/lvm"
)

// MountEntry is one line of a mount table
type MountEntry struct {
	Device     string
	MountPoint string
	FSType     string
	Options    []string
}

// ReadMountTable parses a /proc/mounts style file
func ReadMountTable(r lvm.LineReader, path string) ([]MountEntry, error) {
	lines, err := r.ReadLines(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mount table: %w", err)
	}

	var entries []MountEntry
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		e := MountEntry{
			Device:     unescapeOctal(fields[0]),
			MountPoint: unescapeOctal(fields[1]),
			FSType:     fields[2],
		}
		if len(fields) > 3 {
			e.Options = strings.Split(fields[3], ",")
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// unescapeOctal decodes the \ooo escapes the kernel uses for whitespace in mount fields
func unescapeOctal(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+4 <= len(s) {
			if n, err := strconv.ParseUint(s[i+1:i+4], 8, 8); err == nil {
				b.WriteByte(byte(n))
				i += 3
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
