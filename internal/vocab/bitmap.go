// Package vocab holds the in-memory term table and document table that
// sit on top of the terms/dtmap stores: term interning, posting
// bitmaps, and BK-tree-backed fuzzy term resolution (§4.5, §4.6).
package vocab

import (
	"sort"

	"github.com/bits-and-blooms/bitset"
)

// containerSpan is the number of doc ids covered by one low-order
// container, keyed by the high bits of the doc id — the same high/low
// key-splitting idea the teacher's Roaring bitmap uses for 32-bit ids,
// generalized here to the spec's 64-bit document ids.
const containerSpan = 1 << 16

// denseThreshold is the cardinality at which a sparse array container
// is promoted to a dense bitset container, mirroring the teacher's
// container conversion threshold.
const denseThreshold = 4096

type container interface {
	add(lo uint16) container
	remove(lo uint16) bool
	contains(lo uint16) bool
	cardinality() int
	each(hi uint64, f func(id uint64))
}

type arrayContainer struct {
	vals []uint16 // sorted ascending
}

func (c *arrayContainer) find(lo uint16) (int, bool) {
	i := sort.Search(len(c.vals), func(i int) bool { return c.vals[i] >= lo })
	return i, i < len(c.vals) && c.vals[i] == lo
}

func (c *arrayContainer) add(lo uint16) container {
	i, found := c.find(lo)
	if found {
		return c
	}
	if len(c.vals)+1 > denseThreshold {
		d := &bitsetContainer{bs: bitset.New(containerSpan)}
		for _, v := range c.vals {
			d.bs.Set(uint(v))
		}
		d.bs.Set(uint(lo))
		d.card = len(c.vals) + 1
		return d
	}
	c.vals = append(c.vals, 0)
	copy(c.vals[i+1:], c.vals[i:])
	c.vals[i] = lo
	return c
}

func (c *arrayContainer) remove(lo uint16) bool {
	i, found := c.find(lo)
	if !found {
		return false
	}
	c.vals = append(c.vals[:i], c.vals[i+1:]...)
	return true
}

func (c *arrayContainer) contains(lo uint16) bool {
	_, found := c.find(lo)
	return found
}

func (c *arrayContainer) cardinality() int { return len(c.vals) }

func (c *arrayContainer) each(hi uint64, f func(id uint64)) {
	for _, v := range c.vals {
		f(hi<<16 | uint64(v))
	}
}

type bitsetContainer struct {
	bs   *bitset.BitSet
	card int
}

func (c *bitsetContainer) add(lo uint16) container {
	if !c.bs.Test(uint(lo)) {
		c.bs.Set(uint(lo))
		c.card++
	}
	return c
}

func (c *bitsetContainer) remove(lo uint16) bool {
	if !c.bs.Test(uint(lo)) {
		return false
	}
	c.bs.Clear(uint(lo))
	c.card--
	return true
}

func (c *bitsetContainer) contains(lo uint16) bool { return c.bs.Test(uint(lo)) }
func (c *bitsetContainer) cardinality() int        { return c.card }

func (c *bitsetContainer) each(hi uint64, f func(id uint64)) {
	for i, ok := c.bs.NextSet(0); ok; i, ok = c.bs.NextSet(i + 1) {
		f(hi<<16 | uint64(i))
	}
}

// Bitmap is a compressed set of 64-bit document ids: a Roaring-style
// map of high-key containers, each either a sparse sorted array or,
// past denseThreshold members, a dense bitset (§3 "Posting bitmap").
type Bitmap struct {
	containers map[uint64]container
	card       int
}

// NewBitmap returns an empty posting bitmap.
func NewBitmap() *Bitmap {
	return &Bitmap{containers: make(map[uint64]container)}
}

func split(id uint64) (hi uint64, lo uint16) {
	return id >> 16, uint16(id)
}

// Add inserts id, a no-op if already present.
func (b *Bitmap) Add(id uint64) {
	hi, lo := split(id)
	c, ok := b.containers[hi]
	if !ok {
		c = &arrayContainer{}
	}
	before := c.cardinality()
	c = c.add(lo)
	b.containers[hi] = c
	if c.cardinality() > before {
		b.card++
	}
}

// Remove deletes id, a no-op if absent.
func (b *Bitmap) Remove(id uint64) {
	hi, lo := split(id)
	c, ok := b.containers[hi]
	if !ok {
		return
	}
	if c.remove(lo) {
		b.card--
		if c.cardinality() == 0 {
			delete(b.containers, hi)
		}
	}
}

// Contains reports whether id is a member.
func (b *Bitmap) Contains(id uint64) bool {
	hi, lo := split(id)
	c, ok := b.containers[hi]
	if !ok {
		return false
	}
	return c.contains(lo)
}

// Cardinality returns the number of members.
func (b *Bitmap) Cardinality() int { return b.card }

// Each calls f once per member id, in ascending order within each
// high-key container (containers themselves are visited in map order).
func (b *Bitmap) Each(f func(id uint64)) {
	for hi, c := range b.containers {
		c.each(hi, f)
	}
}

// ToSlice returns the members as a sorted slice.
func (b *Bitmap) ToSlice() []uint64 {
	out := make([]uint64, 0, b.card)
	b.Each(func(id uint64) { out = append(out, id) })
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Union returns a new bitmap containing every id in any of bitmaps.
func Union(bitmaps ...*Bitmap) *Bitmap {
	out := NewBitmap()
	for _, b := range bitmaps {
		if b == nil {
			continue
		}
		b.Each(func(id uint64) { out.Add(id) })
	}
	return out
}

// Intersect returns a new bitmap containing ids present in every
// supplied bitmap. An empty/nil input yields an empty result.
func Intersect(bitmaps ...*Bitmap) *Bitmap {
	out := NewBitmap()
	if len(bitmaps) == 0 {
		return out
	}
	for _, b := range bitmaps {
		if b == nil || b.card == 0 {
			return out
		}
	}
	// iterate the smallest bitmap for efficiency
	smallest := bitmaps[0]
	for _, b := range bitmaps[1:] {
		if b.card < smallest.card {
			smallest = b
		}
	}
	smallest.Each(func(id uint64) {
		for _, b := range bitmaps {
			if b == smallest {
				continue
			}
			if !b.Contains(id) {
				return
			}
		}
		out.Add(id)
	})
	return out
}

// Difference returns the members of left absent from every bitmap in
// rest (used by NOT evaluation, §4.9).
func Difference(left *Bitmap, rest ...*Bitmap) *Bitmap {
	out := NewBitmap()
	if left == nil {
		return out
	}
	left.Each(func(id uint64) {
		for _, b := range rest {
			if b != nil && b.Contains(id) {
				return
			}
		}
		out.Add(id)
	})
	return out
}
