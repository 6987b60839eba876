package vocab

import (
	"fmt"

	"github.com/rmind/nxsearch/internal/dtstore"
)

// Doc is the in-memory representation of a live document: its id and
// the byte offset of its record in the dtmap file (§4.6).
type Doc struct {
	ID     uint64
	Offset int
}

// DocTable is the id -> offset map over live documents, backed by the
// supplied dtstore.Store for the actual record reads.
type DocTable struct {
	store *dtstore.Store
	byID  map[uint64]*Doc
}

// NewDocTable returns an empty document table backed by store.
func NewDocTable(store *dtstore.Store) *DocTable {
	return &DocTable{store: store, byID: make(map[uint64]*Doc)}
}

// Create registers a new live document. It fails with a duplicate
// report if id is already present (§4.6).
func (d *DocTable) Create(id uint64, offset int) (*Doc, error) {
	if _, ok := d.byID[id]; ok {
		return nil, fmt.Errorf("vocab: exists: document %d already present", id)
	}
	doc := &Doc{ID: id, Offset: offset}
	d.byID[id] = doc
	return doc, nil
}

// Destroy removes id from the live set, a no-op if absent.
func (d *DocTable) Destroy(id uint64) { delete(d.byID, id) }

// Lookup finds a live document by id.
func (d *DocTable) Lookup(id uint64) (*Doc, bool) {
	doc, ok := d.byID[id]
	return doc, ok
}

// Len reports the number of live documents.
func (d *DocTable) Len() int { return len(d.byID) }

// GetDocLen returns doc's total token count including duplicates.
func (d *DocTable) GetDocLen(doc *Doc) (uint32, error) {
	docLen, _, err := d.store.ReadRecord(doc.Offset)
	if err != nil {
		return 0, fmt.Errorf("vocab: %w", err)
	}
	return docLen, nil
}

// GetTermCount returns doc's in-document occurrence count for termID,
// or -1 if the term does not occur in doc (§4.6 binary search).
func (d *DocTable) GetTermCount(doc *Doc, termID uint32) (int, error) {
	n, err := d.store.TermCountAt(doc.Offset, termID)
	if err != nil {
		return -1, fmt.Errorf("vocab: %w", err)
	}
	return n, nil
}
