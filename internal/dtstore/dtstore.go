// Package dtstore implements the dtmap file: an append-only sequence of
// document records (doc id, length, sorted (term id, count) pairs) with
// deletion tombstones, shared across processes via mmapfile (§4.4).
package dtstore

import (
	"fmt"
	"sort"

	"github.com/rmind/nxsearch/internal/bin"
	"github.com/rmind/nxsearch/internal/mmapfile"
)

var Magic = [5]byte{'N', 'X', 'S', 'D', 'T'}

const Version = 1

// Header layout (§3): 5-byte magic, 1-byte version, 2 reserved, 8-byte
// data length (big-endian, atomically published), 8-byte total token
// count, 4-byte document count, 4 reserved. 32 bytes total.
const (
	HeaderSize    = 32
	offMagic      = 0
	offVersion    = 5
	offDataLen    = 8
	offTokenCount = 16
	offDocCount   = 24
)

// TermCount is one (term id, in-document count) pair within a record.
type TermCount struct {
	TermID uint32
	Count  uint32
}

// PreparedRecord is built by the caller (which owns term resolution and
// posting-bitmap updates) before any file lock is taken, per §4.4
// "Prepare block".
type PreparedRecord struct {
	DocID    uint64
	DocLen   uint32 // total tokens including duplicates
	Pairs    []TermCount
}

func recordSize(numPairs int) int { return 16 + 8*numPairs }

// Encode serializes a PreparedRecord into its on-disk byte layout.
// Pairs must already be sorted ascending by TermID (§3 invariant a).
func (r PreparedRecord) Encode() []byte {
	buf := make([]byte, recordSize(len(r.Pairs)))
	cur := bin.New(buf)
	cur.PutU64(r.DocID)
	cur.PutU32(r.DocLen)
	cur.PutU32(uint32(len(r.Pairs)))
	for _, p := range r.Pairs {
		cur.PutU32(p.TermID)
		cur.PutU32(p.Count)
	}
	return buf
}

// SortPairs orders Pairs ascending by TermID, enabling the binary
// search used by TermCount / §4.6 get_termcount.
func (r *PreparedRecord) SortPairs() {
	sort.Slice(r.Pairs, func(i, j int) bool { return r.Pairs[i].TermID < r.Pairs[j].TermID })
}

// Callbacks lets the in-memory layer (vocab's term/doc tables) react to
// records observed during Sync without dtstore needing to know about
// posting bitmaps or the doc table itself.
type Callbacks struct {
	// ResolveTerm is invoked once per (term id, count) pair in a live
	// record; it must add docID to that term's posting bitmap and
	// return false if termID is unknown to the in-memory term table.
	ResolveTerm func(termID uint32, docID uint64, count uint32) bool
	// Created is invoked once per fully-resolved live record.
	Created func(docID uint64, offset int, docLen uint32)
	// Deleted is invoked once per tombstone record.
	Deleted func(docID uint64)
}

// Store wraps the mmap'd dtmap file with the append/sync/remove
// protocol. Not safe for concurrent goroutine use within one process.
type Store struct {
	mf          *mmapfile.File
	consumedLen uint64
}

// Open opens or creates path, writing a fresh header if just created.
func Open(path string) (*Store, error) {
	mf, created, err := mmapfile.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dtstore: %w", err)
	}
	s := &Store{mf: mf}
	if created {
		err := s.writeHeader()
		s.mf.Unlock() // release the creation lock mmapfile.Open returned holding
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	if err := s.checkHeader(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) writeHeader() error {
	if err := s.mf.EnsureMapped(HeaderSize, true); err != nil {
		return fmt.Errorf("dtstore: header map: %w", err)
	}
	base := s.mf.Bytes()
	copy(base[offMagic:offMagic+5], Magic[:])
	base[offVersion] = Version
	if err := mmapfile.StoreLen64(base, offDataLen, 0); err != nil {
		return fmt.Errorf("dtstore: %w", err)
	}
	if err := mmapfile.StoreLen64(base, offTokenCount, 0); err != nil {
		return fmt.Errorf("dtstore: %w", err)
	}
	if err := mmapfile.StoreLen32(base, offDocCount, 0); err != nil {
		return fmt.Errorf("dtstore: %w", err)
	}
	return nil
}

func (s *Store) checkHeader() error {
	if err := s.mf.EnsureMapped(HeaderSize, false); err != nil {
		return fmt.Errorf("dtstore: header map: %w", err)
	}
	base := s.mf.Bytes()
	if len(base) < HeaderSize {
		return fmt.Errorf("dtstore: fatal: truncated header")
	}
	if string(base[offMagic:offMagic+5]) != string(Magic[:]) {
		return fmt.Errorf("dtstore: fatal: bad magic")
	}
	if base[offVersion] != Version {
		return fmt.Errorf("dtstore: fatal: unsupported version %d", base[offVersion])
	}
	return nil
}

// DataLen performs an acquire load of the published data length.
func (s *Store) DataLen() (uint64, error) {
	base := s.mf.Bytes()
	v, err := mmapfile.LoadLen64(base, offDataLen)
	if err != nil {
		return 0, fmt.Errorf("dtstore: %w", err)
	}
	return v, nil
}

// TokenCount reads the header's total token count.
func (s *Store) TokenCount() (uint64, error) {
	base := s.mf.Bytes()
	v, err := mmapfile.LoadLen64(base, offTokenCount)
	if err != nil {
		return 0, fmt.Errorf("dtstore: %w", err)
	}
	return v, nil
}

// DocCount reads the header's live document count.
func (s *Store) DocCount() (uint32, error) {
	base := s.mf.Bytes()
	v, err := mmapfile.LoadLen32(base, offDocCount)
	if err != nil {
		return 0, fmt.Errorf("dtstore: %w", err)
	}
	return v, nil
}

func (s *Store) ConsumedLen() uint64 { return s.consumedLen }

func (s *Store) LockExcl() error   { return s.mf.LockExcl() }
func (s *Store) LockShared() error { return s.mf.LockShared() }
func (s *Store) Unlock() error     { return s.mf.Unlock() }
func (s *Store) Release() error    { return s.mf.Release() }
func (s *Store) Sync2() error      { return s.mf.Sync() }

// Sync replays document records from the last consumed offset up to
// the currently published data length, invoking cb for each live or
// tombstoned record (§4.4 "Sync"). If partialOK is false, an
// unresolvable term id returns a FATAL-class error; if true, Sync stops
// before that record without error and without advancing past it.
func (s *Store) Sync(cb Callbacks, partialOK bool) error {
	dataLen, err := s.DataLen()
	if err != nil {
		return err
	}
	if dataLen <= s.consumedLen {
		return nil
	}
	if err := s.mf.EnsureMapped(HeaderSize+int(dataLen), false); err != nil {
		return fmt.Errorf("dtstore: sync map: %w", err)
	}
	base := s.mf.Bytes()
	cur := bin.New(base)
	if err := cur.Seek(HeaderSize + int(s.consumedLen)); err != nil {
		return fmt.Errorf("dtstore: fatal: %w", err)
	}
	end := HeaderSize + int(dataLen)

	for cur.Pos() < end {
		recStart := cur.Pos()
		docID, err := cur.FetchU64()
		if err != nil {
			return fmt.Errorf("dtstore: fatal: %w", err)
		}
		docLen, err := cur.FetchU32()
		if err != nil {
			return fmt.Errorf("dtstore: fatal: %w", err)
		}
		n, err := cur.FetchU32()
		if err != nil {
			return fmt.Errorf("dtstore: fatal: %w", err)
		}

		if docID == 0 {
			if err := cur.Advance(int(n) * 8); err != nil {
				return fmt.Errorf("dtstore: fatal: %w", err)
			}
			s.consumedLen = uint64(cur.Pos() - HeaderSize)
			continue
		}
		if docLen == 0 && n == 0 {
			if cb.Deleted != nil {
				cb.Deleted(docID)
			}
			s.consumedLen = uint64(cur.Pos() - HeaderSize)
			continue
		}

		pairs := make([]TermCount, n)
		ok := true
		for i := range pairs {
			termID, err := cur.FetchU32()
			if err != nil {
				return fmt.Errorf("dtstore: fatal: %w", err)
			}
			count, err := cur.FetchU32()
			if err != nil {
				return fmt.Errorf("dtstore: fatal: %w", err)
			}
			pairs[i] = TermCount{TermID: termID, Count: count}
			if cb.ResolveTerm != nil && !cb.ResolveTerm(termID, docID, count) {
				ok = false
			}
		}
		if !ok {
			if partialOK {
				// stop before this record without consuming it
				return nil
			}
			return fmt.Errorf("dtstore: fatal: unresolvable term id in record for doc %d", docID)
		}
		if cb.Created != nil {
			cb.Created(docID, recStart, docLen)
		}
		s.consumedLen = uint64(cur.Pos() - HeaderSize)
	}
	return nil
}

// Append writes a prepared record at the tail of consumed data,
// extending the mapping as needed. It does not publish the new data
// length or update the header counters; the caller does both under the
// exclusive lock per §4.4 step 4.
func (s *Store) Append(rec PreparedRecord) (offset int, err error) {
	enc := rec.Encode()
	newLen := int(s.consumedLen) + len(enc)
	if err := s.mf.EnsureMapped(HeaderSize+newLen, true); err != nil {
		return 0, fmt.Errorf("dtstore: append map: %w", err)
	}
	base := s.mf.Bytes()
	off := HeaderSize + int(s.consumedLen)
	copy(base[off:off+len(enc)], enc)
	s.consumedLen = uint64(newLen)
	return off, nil
}

// PublishCounters sets the header's document/token counters (relaxed,
// since they're only meaningful once the data-length store that follows
// releases the new data length) and then publishes the new data length
// with release ordering.
func (s *Store) PublishCounters(docCount uint32, tokenCount uint64) error {
	base := s.mf.Bytes()
	if err := mmapfile.StoreLen32(base, offDocCount, docCount); err != nil {
		return fmt.Errorf("dtstore: %w", err)
	}
	if err := mmapfile.StoreLen64(base, offTokenCount, tokenCount); err != nil {
		return fmt.Errorf("dtstore: %w", err)
	}
	if err := mmapfile.StoreLen64(base, offDataLen, s.consumedLen); err != nil {
		return fmt.Errorf("dtstore: %w", err)
	}
	return nil
}

// DeleteTombstoneSize is the byte length of a deletion tombstone block.
const DeleteTombstoneSize = 16

// AppendTombstone appends a 16-byte tombstone (doc id, length=0, n=0)
// per §4.4 step 5.
func (s *Store) AppendTombstone(docID uint64) (offset int, err error) {
	rec := PreparedRecord{DocID: docID}
	return s.Append(rec)
}

// ZeroDocID atomically stores 0 into the doc-id field of the record at
// offset (release ordering), per §4.4 remove step 3: this tells fresh
// openers to skip the block on sync.
func (s *Store) ZeroDocID(offset int) error {
	base := s.mf.Bytes()
	if err := mmapfile.StoreLen64(base, offset, 0); err != nil {
		return fmt.Errorf("dtstore: %w", err)
	}
	return nil
}

// ReadRecord reads the document-length and (term id, count) pairs of
// the live record at offset, without mutating sync state. Used by the
// in-memory doc table's get_doclen/get_termcount (§4.6).
func (s *Store) ReadRecord(offset int) (docLen uint32, pairs []TermCount, err error) {
	base := s.mf.Bytes()
	cur := bin.New(base)
	if err := cur.Seek(offset); err != nil {
		return 0, nil, fmt.Errorf("dtstore: %w", err)
	}
	if _, err := cur.FetchU64(); err != nil { // doc id, unused here
		return 0, nil, fmt.Errorf("dtstore: %w", err)
	}
	docLen, err = cur.FetchU32()
	if err != nil {
		return 0, nil, fmt.Errorf("dtstore: %w", err)
	}
	n, err := cur.FetchU32()
	if err != nil {
		return 0, nil, fmt.Errorf("dtstore: %w", err)
	}
	pairs = make([]TermCount, n)
	for i := range pairs {
		termID, err := cur.FetchU32()
		if err != nil {
			return 0, nil, fmt.Errorf("dtstore: %w", err)
		}
		count, err := cur.FetchU32()
		if err != nil {
			return 0, nil, fmt.Errorf("dtstore: %w", err)
		}
		pairs[i] = TermCount{TermID: termID, Count: count}
	}
	return docLen, pairs, nil
}

// TermCountAt performs a binary search over the sorted (term id, count)
// pairs of the record at offset, returning -1 if termID is absent
// (§4.6 get_termcount).
func (s *Store) TermCountAt(offset int, termID uint32) (int, error) {
	_, pairs, err := s.ReadRecord(offset)
	if err != nil {
		return -1, err
	}
	i := sort.Search(len(pairs), func(i int) bool { return pairs[i].TermID >= termID })
	if i < len(pairs) && pairs[i].TermID == termID {
		return int(pairs[i].Count), nil
	}
	return -1, nil
}
