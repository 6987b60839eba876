package vocab

import (
	"path/filepath"
	"testing"

	"github.com/rmind/nxsearch/internal/termstore"
)

func newTestTermTable(t *testing.T) (*TermTable, *termstore.Store) {
	t.Helper()
	store, err := termstore.Open(filepath.Join(t.TempDir(), "terms.db"))
	if err != nil {
		t.Fatalf("termstore.Open: %v", err)
	}
	return NewTermTable(store), store
}

func TestInsertIsIdempotentByText(t *testing.T) {
	tt, store := newTestTermTable(t)
	tm, err := store.Append("hello", 1)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	a := tt.Insert(tm.ID, tm.Text, tm.CounterOffset)
	b := tt.Insert(tm.ID, tm.Text, tm.CounterOffset)
	if a != b {
		t.Fatalf("Insert returned different terms for same text")
	}
	if tt.Len() != 1 {
		t.Fatalf("Len = %d, want 1", tt.Len())
	}
}

func TestFuzzySearchFindsNearestWithinTolerance(t *testing.T) {
	tt, store := newTestTermTable(t)
	for _, w := range []string{"search", "research", "march"} {
		tm, err := store.Append(w, 1)
		if err != nil {
			t.Fatalf("Append: %v", err)
		}
		if err := store.Publish(); err != nil {
			t.Fatalf("Publish: %v", err)
		}
		tt.Insert(tm.ID, tm.Text, tm.CounterOffset)
	}
	term, ok := tt.FuzzySearchTolerance("serch", 2)
	if !ok || term.Text != "search" {
		t.Fatalf("FuzzySearchTolerance(serch, 2) = %+v, %v, want search", term, ok)
	}
}

func TestIncrDecrTotal(t *testing.T) {
	tt, store := newTestTermTable(t)
	tm, err := store.Append("x", 1)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	term := tt.Insert(tm.ID, tm.Text, tm.CounterOffset)
	if err := tt.IncrTotal(term, 5); err != nil {
		t.Fatalf("IncrTotal: %v", err)
	}
	if err := tt.DecrTotal(term, 3); err != nil {
		t.Fatalf("DecrTotal: %v", err)
	}
	count, err := store.Count(term.CounterOffset)
	if err != nil || count != 3 {
		t.Fatalf("Count = %d, %v, want 3 (1 initial + 5 - 3)", count, err)
	}
}

func TestAddDocDelDocUpdatesPostings(t *testing.T) {
	tt, store := newTestTermTable(t)
	tm, err := store.Append("term", 1)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	term := tt.Insert(tm.ID, tm.Text, tm.CounterOffset)
	tt.AddDoc(term, 100)
	if !term.Postings.Contains(100) {
		t.Fatalf("postings missing doc 100 after AddDoc")
	}
	tt.DelDoc(term, 100)
	if term.Postings.Contains(100) {
		t.Fatalf("postings still contain doc 100 after DelDoc")
	}
}
