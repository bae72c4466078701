package lvm

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// DefaultLvmTabPath is the HP-UX volume group table
const DefaultLvmTabPath = "/etc/lvmtab"

const lvmTabNameSize = 1024

// VolumeGroup is one volume group of an lvmtab file
type VolumeGroup struct {
	Name  string
	Parts []string
}

// LvmTab is a parsed HP-UX lvmtab file.
//
// Layout: 7 bytes, VG count (1 byte), 4 bytes, then per VG a 1024 byte name,
// 17 bytes, part count (1 byte), 12 bytes, then per part a 1024 byte name and
// 4 bytes.
type LvmTab struct {
	VGs []VolumeGroup
}

// ReadLvmTab parses the lvmtab file at path
func ReadLvmTab(path string) (*LvmTab, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseLvmTab(f)
}

// ParseLvmTab parses lvmtab data. The data must end exactly after the last record.
func ParseLvmTab(r io.Reader) (*LvmTab, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read lvmtab: %w", err)
	}

	c := &cursor{data: data}
	c.skip(7)
	numVG := int(c.u8())
	c.skip(4)

	tab := &LvmTab{}
	for i := 0; i < numVG && c.good(); i++ {
		vg := VolumeGroup{Name: c.name()}
		c.skip(17)
		numParts := int(c.u8())
		c.skip(12)
		for j := 0; j < numParts && c.good(); j++ {
			vg.Parts = append(vg.Parts, c.name())
			c.skip(4)
		}
		tab.VGs = append(tab.VGs, vg)
	}

	switch {
	case c.pos > len(data):
		return nil, fmt.Errorf("file too short (%d of %d bytes): %w", len(data), c.pos, ErrLvmTabFormat)
	case c.pos < len(data):
		return nil, fmt.Errorf("file too long (%d trailing bytes): %w", len(data)-c.pos, ErrLvmTabFormat)
	}
	return tab, nil
}

// VGCount returns the number of volume groups
func (t *LvmTab) VGCount() int {
	return len(t.VGs)
}

// PartCount returns the number of partitions of volume group vg
func (t *LvmTab) PartCount(vg int) (int, error) {
	if err := t.checkVG(vg); err != nil {
		return 0, err
	}
	return len(t.VGs[vg].Parts), nil
}

// VG returns the name of volume group vg
func (t *LvmTab) VG(vg int) (string, error) {
	if err := t.checkVG(vg); err != nil {
		return "", err
	}
	return t.VGs[vg].Name, nil
}

// Part returns the name of partition part of volume group vg
func (t *LvmTab) Part(vg, part int) (string, error) {
	if err := t.checkVG(vg); err != nil {
		return "", err
	}
	parts := t.VGs[vg].Parts
	if part < 0 || part >= len(parts) {
		return "", fmt.Errorf("partition index %d of volume group %d (have %d): %w", part, vg, len(parts), ErrIndexOutOfRange)
	}
	return parts[part], nil
}

func (t *LvmTab) checkVG(vg int) error {
	if vg < 0 || vg >= len(t.VGs) {
		return fmt.Errorf("volume group index %d (have %d): %w", vg, len(t.VGs), ErrIndexOutOfRange)
	}
	return nil
}

// cursor walks the data. Reads past the end yield zeros and leave pos past
// len(data) so the caller can report a short file.
type cursor struct {
	data []byte
	pos  int
}

func (c *cursor) good() bool { return c.pos <= len(c.data) }

func (c *cursor) skip(n int) { c.pos += n }

func (c *cursor) u8() byte {
	var b byte
	if c.pos < len(c.data) {
		b = c.data[c.pos]
	}
	c.pos++
	return b
}

func (c *cursor) name() string {
	start := min(c.pos, len(c.data))
	end := min(c.pos+lvmTabNameSize, len(c.data))
	raw := c.data[start:end]
	c.pos += lvmTabNameSize
	if i := bytes.IndexByte(raw, 0); i >= 0 {
		raw = raw[:i]
	}
	return string(raw)
}
