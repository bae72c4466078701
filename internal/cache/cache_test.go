package cache

import (
	"testing"
	"time"

	"github.com/matryer/is"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time { return f.t }

func newTestCache(ttl time.Duration) (*Cache[[]string], *fakeClock) {
	clk := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := New[[]string](ttl)
	c.now = clk.now
	return c, clk
}

func TestGetSetExpiry(t *testing.T) {
	is := is.New(t)
	c, clk := newTestCache(time.Minute)

	_, ok := c.Get("dm-0")
	is.True(!ok)

	c.Set("dm-0", []string{"/dev/sda1"})
	v, ok := c.Get("dm-0")
	is.True(ok)
	is.Equal(v, []string{"/dev/sda1"})

	clk.t = clk.t.Add(30 * time.Second)
	age, ok := c.Age("dm-0")
	is.True(ok)
	is.Equal(age, 30*time.Second)

	clk.t = clk.t.Add(31 * time.Second)
	_, ok = c.Get("dm-0")
	is.True(!ok) // expired
	is.Equal(c.Len(), 1)

	c.Cleanup()
	is.Equal(c.Len(), 0)
}

func TestSetWithTTLDeleteClear(t *testing.T) {
	is := is.New(t)
	c, clk := newTestCache(time.Minute)

	c.SetWithTTL("long", []string{"a"}, time.Hour)
	c.Set("short", []string{"b"})
	clk.t = clk.t.Add(2 * time.Minute)

	_, ok := c.Get("long")
	is.True(ok)
	_, ok = c.Get("short")
	is.True(!ok)

	c.Delete("long")
	_, ok = c.Get("long")
	is.True(!ok)

	c.Set("x", nil)
	c.Clear()
	is.Equal(c.Len(), 0)
}
