// Package termstore implements the terms file: an append-only term
// dictionary with a per-term 64-bit occurrence counter, shared across
// processes via mmapfile (§4.3).
package termstore

import (
	"fmt"
	"math"

	"github.com/rmind/nxsearch/internal/bin"
	"github.com/rmind/nxsearch/internal/mmapfile"
)

// Magic identifies a terms file. Version is the ABI version this
// package reads and writes.
var Magic = [5]byte{'N', 'X', 'S', 'T', 'M'}

const Version = 1

// Header layout (§3): 5-byte magic, 1-byte version, 4-byte data length
// (big-endian, atomically published), 6 bytes reserved. 16 bytes total.
const (
	HeaderSize  = 16
	offMagic    = 0
	offVersion  = 5
	offDataLen  = 6
	maxTermText = 65535
)

// MaxTermLen is the largest term text this store will append, per §4.3.
const MaxTermLen = maxTermText

// Term describes one record observed in the file, either freshly
// appended or replayed during Sync.
type Term struct {
	ID            uint32 // ordinal position, 1-based
	Text          string
	CounterOffset int // absolute byte offset of the 8-byte counter
}

// Store wraps the mmap'd terms file with the append/sync protocol.
// Not safe for concurrent use from multiple goroutines in one process;
// the public Index type serializes access per §5.
type Store struct {
	mf          *mmapfile.File
	consumedLen uint32
	nextID      uint32
}

// Open opens or creates path, writing a fresh header if the file was
// just created.
func Open(path string) (*Store, error) {
	mf, created, err := mmapfile.Open(path)
	if err != nil {
		return nil, fmt.Errorf("termstore: %w", err)
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
		return fmt.Errorf("termstore: header map: %w", err)
	}
	base := s.mf.Bytes()
	copy(base[offMagic:offMagic+5], Magic[:])
	base[offVersion] = Version
	if err := mmapfile.StoreLen32(base, offDataLen, 0); err != nil {
		return fmt.Errorf("termstore: %w", err)
	}
	return nil
}

func (s *Store) checkHeader() error {
	if err := s.mf.EnsureMapped(HeaderSize, false); err != nil {
		return fmt.Errorf("termstore: header map: %w", err)
	}
	base := s.mf.Bytes()
	if len(base) < HeaderSize {
		return fmt.Errorf("termstore: fatal: truncated header")
	}
	if string(base[offMagic:offMagic+5]) != string(Magic[:]) {
		return fmt.Errorf("termstore: fatal: bad magic")
	}
	if base[offVersion] != Version {
		return fmt.Errorf("termstore: fatal: unsupported version %d", base[offVersion])
	}
	return nil
}

// DataLen performs an acquire load of the published data length.
func (s *Store) DataLen() (uint32, error) {
	base := s.mf.Bytes()
	v, err := mmapfile.LoadLen32(base, offDataLen)
	if err != nil {
		return 0, fmt.Errorf("termstore: %w", err)
	}
	return v, nil
}

// ConsumedLen reports how much of the published data this handle has
// already replayed via Sync/Append.
func (s *Store) ConsumedLen() uint32 { return s.consumedLen }

// NextID reports the term id that would be assigned to the next
// appended or synced term.
func (s *Store) NextID() uint32 { return s.nextID + 1 }

func (s *Store) LockExcl() error   { return s.mf.LockExcl() }
func (s *Store) LockShared() error { return s.mf.LockShared() }
func (s *Store) Unlock() error     { return s.mf.Unlock() }
func (s *Store) Sync2() error      { return s.mf.Sync() }
func (s *Store) Release() error    { return s.mf.Release() }

func blockSize(textLen int) int {
	dataLen := 2 + textLen + 1
	return bin.Align8(dataLen) + 8
}

// Sync replays term blocks from the last consumed offset up to the
// currently published data length, assigning each one the next
// sequential term id. Every handle that replays the same file in order
// arrives at identical id assignments (§4.3).
func (s *Store) Sync() ([]Term, error) {
	dataLen, err := s.DataLen()
	if err != nil {
		return nil, err
	}
	if dataLen <= s.consumedLen {
		return nil, nil
	}
	if err := s.mf.EnsureMapped(HeaderSize+int(dataLen), false); err != nil {
		return nil, fmt.Errorf("termstore: sync map: %w", err)
	}
	base := s.mf.Bytes()
	cur := bin.New(base)
	if err := cur.Seek(HeaderSize + int(s.consumedLen)); err != nil {
		return nil, fmt.Errorf("termstore: fatal: %w", err)
	}

	var out []Term
	end := HeaderSize + int(dataLen)
	for cur.Pos() < end {
		start := cur.Pos()
		textLen, err := cur.FetchU16()
		if err != nil {
			return nil, fmt.Errorf("termstore: fatal: %w", err)
		}
		textBytes, err := cur.FetchBytes(int(textLen))
		if err != nil {
			return nil, fmt.Errorf("termstore: fatal: %w", err)
		}
		if err := cur.Advance(1); err != nil { // NUL
			return nil, fmt.Errorf("termstore: fatal: %w", err)
		}
		dataPortion := 2 + int(textLen) + 1
		pad := bin.Align8(dataPortion) - dataPortion
		if err := cur.Advance(pad); err != nil {
			return nil, fmt.Errorf("termstore: fatal: %w", err)
		}
		counterOff := cur.Pos()
		if err := cur.Advance(8); err != nil {
			return nil, fmt.Errorf("termstore: fatal: %w", err)
		}
		s.nextID++
		out = append(out, Term{ID: s.nextID, Text: string(textBytes), CounterOffset: counterOff})
		_ = start
	}
	s.consumedLen = dataLen
	return out, nil
}

// Append writes one new term block holding text and an initial
// occurrence count, extending the mapping as needed. It does not
// publish the new data length; callers batch a run of appends and then
// call Publish once, matching §4.3 step 3/4. The caller must hold the
// exclusive lock.
func (s *Store) Append(text string, initialCount uint64) (Term, error) {
	if len(text) > maxTermText {
		return Term{}, fmt.Errorf("termstore: limit: term too long (%d)", len(text))
	}
	dataLen, err := s.DataLen()
	if err != nil {
		return Term{}, err
	}
	// consumedLen may lag a freshly observed dataLen if the caller did
	// not Sync first; appends always happen at the tail of consumed data.
	if s.consumedLen < dataLen {
		if _, err := s.Sync(); err != nil {
			return Term{}, err
		}
		dataLen = s.consumedLen
	}
	size := blockSize(len(text))
	newLen := int(dataLen) + size
	if newLen > math.MaxUint32 {
		return Term{}, fmt.Errorf("termstore: limit: terms file too large")
	}
	if err := s.mf.EnsureMapped(HeaderSize+newLen, true); err != nil {
		return Term{}, fmt.Errorf("termstore: append map: %w", err)
	}
	base := s.mf.Bytes()
	cur := bin.New(base)
	if err := cur.Seek(HeaderSize + int(dataLen)); err != nil {
		return Term{}, fmt.Errorf("termstore: %w", err)
	}
	if err := cur.PutU16(uint16(len(text))); err != nil {
		return Term{}, fmt.Errorf("termstore: %w", err)
	}
	if err := cur.StoreBytes([]byte(text)); err != nil {
		return Term{}, fmt.Errorf("termstore: %w", err)
	}
	if err := cur.Zero(1); err != nil {
		return Term{}, fmt.Errorf("termstore: %w", err)
	}
	dataPortion := 2 + len(text) + 1
	pad := bin.Align8(dataPortion) - dataPortion
	if pad > 0 {
		if err := cur.Zero(pad); err != nil {
			return Term{}, fmt.Errorf("termstore: %w", err)
		}
	}
	counterOff := cur.Pos()
	if err := cur.PutU64(initialCount); err != nil {
		return Term{}, fmt.Errorf("termstore: %w", err)
	}

	s.nextID++
	s.consumedLen = uint32(newLen)
	return Term{ID: s.nextID, Text: text, CounterOffset: counterOff}, nil
}

// Publish atomically stores the new data length with release ordering,
// making appended blocks visible to peers. The value published is the
// store's current ConsumedLen (the tail of everything appended so far).
func (s *Store) Publish() error {
	base := s.mf.Bytes()
	if err := mmapfile.StoreLen32(base, offDataLen, s.consumedLen); err != nil {
		return fmt.Errorf("termstore: %w", err)
	}
	return nil
}

// Count reads a term's occurrence counter with an acquire load.
func (s *Store) Count(counterOffset int) (uint64, error) {
	base := s.mf.Bytes()
	v, err := mmapfile.LoadLen64(base, counterOffset)
	if err != nil {
		return 0, fmt.Errorf("termstore: %w", err)
	}
	return v, nil
}

// AddCount adds delta (which may be negative) to a term's occurrence
// counter, saturating at zero on the low end, per §4.4 step 4's
// "decrement ... with saturation".
func (s *Store) AddCount(counterOffset int, delta int64) error {
	base := s.mf.Bytes()
	cur, err := mmapfile.LoadLen64(base, counterOffset)
	if err != nil {
		return fmt.Errorf("termstore: %w", err)
	}
	var next uint64
	if delta >= 0 {
		next = cur + uint64(delta)
	} else {
		d := uint64(-delta)
		if d >= cur {
			next = 0
		} else {
			next = cur - d
		}
	}
	if err := mmapfile.StoreLen64(base, counterOffset, next); err != nil {
		return fmt.Errorf("termstore: %w", err)
	}
	return nil
}
