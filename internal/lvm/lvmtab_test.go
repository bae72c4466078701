package lvm

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matryer/is"
)

func lvmTabName(name string) []byte {
	b := make([]byte, lvmTabNameSize)
	copy(b, name)
	return b
}

func buildLvmTab(vgs []VolumeGroup) []byte {
	var b bytes.Buffer
	b.Write(make([]byte, 7))
	b.WriteByte(byte(len(vgs)))
	b.Write(make([]byte, 4))
	for _, vg := range vgs {
		b.Write(lvmTabName(vg.Name))
		b.Write(make([]byte, 17))
		b.WriteByte(byte(len(vg.Parts)))
		b.Write(make([]byte, 12))
		for _, p := range vg.Parts {
			b.Write(lvmTabName(p))
			b.Write(make([]byte, 4))
		}
	}
	return b.Bytes()
}

var sampleVGs = []VolumeGroup{
	{Name: "/dev/vg00", Parts: []string{"/dev/disk/disk2_p2"}},
	{Name: "/dev/vg01", Parts: []string{"/dev/dsk/c1t2d0", "/dev/dsk/c2t2d0", "/dev/dsk/c3t2d0"}},
}

func TestParseLvmTab(t *testing.T) {
	is := is.New(t)

	tab, err := ParseLvmTab(bytes.NewReader(buildLvmTab(sampleVGs)))
	is.NoErr(err)
	is.Equal(tab.VGCount(), 2)

	name, err := tab.VG(1)
	is.NoErr(err)
	is.Equal(name, "/dev/vg01")

	n, err := tab.PartCount(1)
	is.NoErr(err)
	is.Equal(n, 3)

	part, err := tab.Part(1, 2)
	is.NoErr(err)
	is.Equal(part, "/dev/dsk/c3t2d0")

	part, err = tab.Part(0, 0)
	is.NoErr(err)
	is.Equal(part, "/dev/disk/disk2_p2")
}

func TestLvmTabIndexErrors(t *testing.T) {
	is := is.New(t)

	tab, err := ParseLvmTab(bytes.NewReader(buildLvmTab(sampleVGs)))
	is.NoErr(err)

	_, err = tab.VG(2)
	is.True(errors.Is(err, ErrIndexOutOfRange))
	_, err = tab.PartCount(-1)
	is.True(errors.Is(err, ErrIndexOutOfRange))
	_, err = tab.Part(0, 1)
	is.True(errors.Is(err, ErrIndexOutOfRange))
}

func TestParseLvmTabLength(t *testing.T) {
	is := is.New(t)
	data := buildLvmTab(sampleVGs)

	_, err := ParseLvmTab(bytes.NewReader(data[:len(data)-1]))
	is.True(errors.Is(err, ErrLvmTabFormat))
	is.True(strings.Contains(err.Error(), "too short"))

	_, err = ParseLvmTab(bytes.NewReader(append(data, 0)))
	is.True(errors.Is(err, ErrLvmTabFormat))
	is.True(strings.Contains(err.Error(), "too long"))

	_, err = ParseLvmTab(bytes.NewReader(nil))
	is.True(errors.Is(err, ErrLvmTabFormat))

	tab, err := ParseLvmTab(bytes.NewReader(buildLvmTab(nil)))
	is.NoErr(err)
	is.Equal(tab.VGCount(), 0)
}

func TestReadLvmTab(t *testing.T) {
	is := is.New(t)
	path := filepath.Join(t.TempDir(), "lvmtab")
	is.NoErr(os.WriteFile(path, buildLvmTab(sampleVGs[:1]), 0o644))

	tab, err := ReadLvmTab(path)
	is.NoErr(err)
	is.Equal(tab.VGs, sampleVGs[:1])

	_, err = ReadLvmTab(path + ".missing")
	is.True(errors.Is(err, fs.ErrNotExist))
}
