package termstore

import (
	"path/filepath"
	"testing"
)

func TestOpenCreatesFreshHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "terms.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	dataLen, err := s.DataLen()
	if err != nil {
		t.Fatalf("DataLen: %v", err)
	}
	if dataLen != 0 {
		t.Fatalf("fresh store DataLen = %d, want 0", dataLen)
	}
}

func TestAppendPublishSync(t *testing.T) {
	path := filepath.Join(t.TempDir(), "terms.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	t1, err := s.Append("hello", 3)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	t2, err := s.Append("world", 1)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if t1.ID != 1 || t2.ID != 2 {
		t.Fatalf("term ids = %d, %d, want 1, 2", t1.ID, t2.ID)
	}
	if err := s.Publish(); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	count, err := s.Count(t1.CounterOffset)
	if err != nil || count != 3 {
		t.Fatalf("Count(hello) = %d, %v, want 3", count, err)
	}
}

func TestSyncReplaysAppendedTerms(t *testing.T) {
	path := filepath.Join(t.TempDir(), "terms.db")
	w, err := Open(path)
	if err != nil {
		t.Fatalf("Open writer: %v", err)
	}
	if _, err := w.Append("alpha", 1); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := w.Publish(); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open reader: %v", err)
	}
	terms, err := r.Sync()
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if len(terms) != 1 || terms[0].Text != "alpha" || terms[0].ID != 1 {
		t.Fatalf("Sync = %+v, want one term alpha/1", terms)
	}
}

func TestAddCountAgreesWithAppendSeededCounter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "terms.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	term, err := s.Append("y", 1)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	// the initial count is written by Append's big-endian cursor; AddCount
	// must read it back through the same byte order or a seeded count of 1
	// would be misread as a huge value on the next increment.
	if err := s.AddCount(term.CounterOffset, 5); err != nil {
		t.Fatalf("AddCount: %v", err)
	}
	count, err := s.Count(term.CounterOffset)
	if err != nil || count != 6 {
		t.Fatalf("Count = %d, %v, want 6 (1 initial + 5)", count, err)
	}
}

func TestAddCountSaturatesAtZero(t *testing.T) {
	path := filepath.Join(t.TempDir(), "terms.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	term, err := s.Append("x", 2)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := s.AddCount(term.CounterOffset, -10); err != nil {
		t.Fatalf("AddCount: %v", err)
	}
	count, err := s.Count(term.CounterOffset)
	if err != nil || count != 0 {
		t.Fatalf("Count after saturating decrement = %d, %v, want 0", count, err)
	}
}

func TestOpenRejectsBadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "terms.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.mf.EnsureMapped(HeaderSize, true); err != nil {
		t.Fatalf("EnsureMapped: %v", err)
	}
	base := s.mf.Bytes()
	base[0] = 'X'
	if err := s.Sync2(); err != nil {
		t.Fatalf("Sync2: %v", err)
	}
	if err := s.mf.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}

	if _, err := Open(path); err == nil {
		t.Fatalf("Open with corrupted magic = nil error, want error")
	}
}
