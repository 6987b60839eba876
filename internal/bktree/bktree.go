package bktree

import (
	"errors"
	"math/bits"

	"github.com/rmind/nxsearch/internal/deque"
)

// MaxDistance is the largest edit distance the tree's per-node bitmap
// can index; by design there is no support beyond it (§4.12, §1
// non-goals).
const MaxDistance = 63

// ErrDuplicate is returned by Insert when the value already exists in
// the tree (distance 0 from some existing node).
var ErrDuplicate = errors.New("bktree: duplicate value")

type node struct {
	value       string
	childBitmap uint64
	children    []int32 // arena indices, densely packed in ascending distance order
}

// Tree is an arena-backed BK-tree keyed by string under Levenshtein
// distance. Nodes are addressed by integer index rather than pointer,
// so the arena slice may grow freely without invalidating references
// held elsewhere as indices.
type Tree struct {
	nodes []node
	lev   *Scratch
}

// New returns an empty BK-tree.
func New() *Tree {
	return &Tree{lev: NewScratch()}
}

// Len reports the number of values stored.
func (t *Tree) Len() int { return len(t.nodes) }

// Insert adds value to the tree. It returns ErrDuplicate if an
// identical value is already present.
func (t *Tree) Insert(value string) error {
	if len(t.nodes) == 0 {
		t.nodes = append(t.nodes, node{value: value})
		return nil
	}
	cur := int32(0)
	for {
		d := t.lev.Distance(value, t.nodes[cur].value)
		if d == 0 {
			return ErrDuplicate
		}
		if d > MaxDistance {
			d = MaxDistance
		}
		bit := uint64(1) << uint(d)
		if t.nodes[cur].childBitmap&bit != 0 {
			pos := bits.OnesCount64(t.nodes[cur].childBitmap & (bit - 1))
			cur = t.nodes[cur].children[pos]
			continue
		}
		newIdx := int32(len(t.nodes))
		t.nodes = append(t.nodes, node{value: value})
		pos := bits.OnesCount64(t.nodes[cur].childBitmap & (bit - 1))
		children := t.nodes[cur].children
		children = append(children, 0)
		copy(children[pos+1:], children[pos:])
		children[pos] = newIdx
		t.nodes[cur].children = children
		t.nodes[cur].childBitmap |= bit
		return nil
	}
}

// Search returns every stored value within tolerance edit-distance steps
// of query (§8 invariant 8). tolerance is clamped to MaxDistance.
// Traversal uses a deque-backed worklist per §4.12/§4.11.
func (t *Tree) Search(query string, tolerance int) []string {
	if len(t.nodes) == 0 {
		return nil
	}
	if tolerance > MaxDistance {
		tolerance = MaxDistance
	}
	if tolerance < 0 {
		tolerance = 0
	}
	var results []string
	wl := deque.New[int32](16)
	wl.PushBack(0)
	for wl.Len() > 0 {
		idx, _ := wl.PopFront()
		n := t.nodes[idx]
		d := t.lev.Distance(query, n.value)
		if d <= tolerance {
			results = append(results, n.value)
		}
		lo := d - tolerance
		if lo < 0 {
			lo = 0
		}
		hi := d + tolerance
		if hi > MaxDistance {
			hi = MaxDistance
		}
		for dd := lo; dd <= hi; dd++ {
			bit := uint64(1) << uint(dd)
			if n.childBitmap&bit != 0 {
				pos := bits.OnesCount64(n.childBitmap & (bit - 1))
				wl.PushBack(n.children[pos])
			}
		}
	}
	return results
}
