package vocab

import (
	"fmt"

	"github.com/rmind/nxsearch/internal/bktree"
	"github.com/rmind/nxsearch/internal/termstore"
)

// DefaultFuzzyTolerance is the LEVDIST_TOLERANCE constant used by
// FuzzySearch when the caller doesn't override it (§4.5).
const DefaultFuzzyTolerance = 2

// Term is the in-memory representation of one interned term: its
// identity, its terms-file counter location, and its posting bitmap.
// Per §9's arena guidance, Terms are addressed by ID through TermTable
// rather than linked to each other by pointer.
type Term struct {
	ID            uint32
	Text          string
	CounterOffset int
	Postings      *Bitmap
}

// TermTable is the text<->id<->posting-bitmap map plus the BK-tree used
// for fuzzy resolution (§4.5). It owns no file state directly; counter
// reads/writes are delegated to the supplied termstore.Store.
type TermTable struct {
	store  *termstore.Store
	byText map[string]*Term
	byID   map[uint32]*Term
	order  []*Term
	tree   *bktree.Tree
}

// NewTermTable returns an empty term table backed by store.
func NewTermTable(store *termstore.Store) *TermTable {
	return &TermTable{
		store:  store,
		byText: make(map[string]*Term),
		byID:   make(map[uint32]*Term),
		tree:   bktree.New(),
	}
}

// Lookup finds a term by its exact text.
func (t *TermTable) Lookup(text string) (*Term, bool) {
	term, ok := t.byText[text]
	return term, ok
}

// LookupByID finds a term by its assigned id.
func (t *TermTable) LookupByID(id uint32) (*Term, bool) {
	term, ok := t.byID[id]
	return term, ok
}

// Insert registers a term at a given id, idempotent on duplicate text:
// if text is already known, the existing term is returned unchanged
// (§4.3 step 3, "a peer has already registered the same text").
func (t *TermTable) Insert(id uint32, text string, counterOffset int) *Term {
	if existing, ok := t.byText[text]; ok {
		return existing
	}
	term := &Term{ID: id, Text: text, CounterOffset: counterOffset, Postings: NewBitmap()}
	t.byText[text] = term
	t.byID[id] = term
	t.order = append(t.order, term)
	if err := t.tree.Insert(text); err != nil && err != bktree.ErrDuplicate {
		// BK-tree insertion cannot otherwise fail; the error is ignored,
		// since term registration itself has already succeeded.
		_ = err
	}
	return term
}

// FuzzySearch looks up the terms within DefaultFuzzyTolerance Levenshtein
// distance of text, returning the candidate with the highest global
// occurrence count (ties broken by first-encountered order), or false
// if no candidate falls within tolerance (§4.5).
func (t *TermTable) FuzzySearch(text string) (*Term, bool) {
	return t.FuzzySearchTolerance(text, DefaultFuzzyTolerance)
}

// FuzzySearchTolerance is FuzzySearch with an explicit tolerance.
func (t *TermTable) FuzzySearchTolerance(text string, tolerance int) (*Term, bool) {
	candidates := t.tree.Search(text, tolerance)
	var best *Term
	var bestCount uint64
	for _, text := range candidates {
		term, ok := t.byText[text]
		if !ok {
			continue
		}
		count, err := t.store.Count(term.CounterOffset)
		if err != nil {
			continue
		}
		if best == nil || count > bestCount {
			best = term
			bestCount = count
		}
	}
	return best, best != nil
}

// IncrTotal adds n to term's persisted global occurrence counter.
func (t *TermTable) IncrTotal(term *Term, n uint64) error {
	if err := t.store.AddCount(term.CounterOffset, int64(n)); err != nil {
		return fmt.Errorf("vocab: %w", err)
	}
	return nil
}

// DecrTotal subtracts n from term's persisted global occurrence
// counter, saturating at zero (§4.5, §4.4).
func (t *TermTable) DecrTotal(term *Term, n uint64) error {
	if err := t.store.AddCount(term.CounterOffset, -int64(n)); err != nil {
		return fmt.Errorf("vocab: %w", err)
	}
	return nil
}

// AddDoc records that term occurs in docID.
func (t *TermTable) AddDoc(term *Term, docID uint64) { term.Postings.Add(docID) }

// DelDoc records that term no longer occurs in docID.
func (t *TermTable) DelDoc(term *Term, docID uint64) { term.Postings.Remove(docID) }

// Len reports the number of interned terms.
func (t *TermTable) Len() int { return len(t.order) }

// Each calls f once per term in insertion order.
func (t *TermTable) Each(f func(*Term)) {
	for _, term := range t.order {
		f(term)
	}
}
