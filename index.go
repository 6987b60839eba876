package nxsearch

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/rmind/nxsearch/internal/dtstore"
	"github.com/rmind/nxsearch/internal/eval"
	"github.com/rmind/nxsearch/internal/termstore"
	"github.com/rmind/nxsearch/internal/tokenize"
	"github.com/rmind/nxsearch/internal/tokenize/filters"
	"github.com/rmind/nxsearch/internal/vocab"
)

const (
	termsFileName  = "nxsterms.db"
	dtmapFileName  = "nxsdtmap.db"
	paramsFileName = "params.db"
)

// Index is one open, named full-text index: the two mmap'd stores, the
// in-memory term/doc tables built on top of them, and the configured
// filter pipeline (§4.13, §2.13).
type Index struct {
	mu sync.Mutex

	name   string
	dir    string
	log    *slog.Logger
	params *Params
	algo   eval.Algo

	terms     *termstore.Store
	dt        *dtstore.Store
	termTable *vocab.TermTable
	docTable  *vocab.DocTable
	pipeline  *tokenize.Pipeline
}

// IndexCreate validates name, creates its data directory, merges
// params with the §4.13 defaults, persists params.db, and opens the
// new index.
func (e *Engine) IndexCreate(name string, params *Params) (*Index, error) {
	if err := validateIndexName(name); err != nil {
		return nil, e.fail(err.(*Error))
	}
	dir := filepath.Join(e.baseDir, "data", name)
	if _, err := os.Stat(dir); err == nil {
		return nil, e.fail(errExists("index %q already exists", name))
	}
	merged := Merge(DefaultIndexParams(), params)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, e.fail(errSystem(err, "mkdir %s", dir))
	}
	if err := SaveParams(merged, filepath.Join(dir, paramsFileName)); err != nil {
		os.RemoveAll(dir)
		return nil, e.fail(errSystem(err, "save params for %q", name))
	}
	return e.openIndex(name, dir, merged)
}

// IndexOpen loads an existing index's params and opens it, syncing its
// stores to the current in-memory state.
func (e *Engine) IndexOpen(name string) (*Index, error) {
	if err := validateIndexName(name); err != nil {
		return nil, e.fail(err.(*Error))
	}
	dir := filepath.Join(e.baseDir, "data", name)
	if _, err := os.Stat(dir); err != nil {
		return nil, e.fail(errMissing("index %q not found", name))
	}
	params, err := LoadParams(filepath.Join(dir, paramsFileName))
	if err != nil {
		return nil, e.fail(errSystem(err, "load params for %q", name))
	}
	return e.openIndex(name, dir, params)
}

// IndexDestroy removes name's entire data directory (§4.13).
func (e *Engine) IndexDestroy(name string) error {
	if err := validateIndexName(name); err != nil {
		return e.fail(err.(*Error))
	}
	dir := filepath.Join(e.baseDir, "data", name)
	if err := os.RemoveAll(dir); err != nil {
		return e.fail(errSystem(err, "remove %s", dir))
	}
	return nil
}

func buildPipeline(lang string, names []string) (*tokenize.Pipeline, error) {
	fs := make([]tokenize.Filter, 0, len(names))
	for _, n := range names {
		switch n {
		case "normalizer":
			fs = append(fs, filters.NewNormalizer(lang))
		case "stopwords":
			fs = append(fs, filters.NewStopwords(filters.DefaultEnglishStopwords()))
		case "stemmer":
			fs = append(fs, filters.NewStemmer(lang))
		default:
			return nil, errMissing("unknown filter %q", n)
		}
	}
	return tokenize.NewPipeline(fs), nil
}

func (e *Engine) openIndex(name, dir string, params *Params) (*Index, error) {
	lang, _ := params.GetStr("lang")
	filterNames, _ := params.GetStrList("filters")
	pipeline, err := buildPipeline(lang, filterNames)
	if err != nil {
		return nil, e.fail(err.(*Error))
	}
	algoStr, _ := params.GetStr("algo")
	algo := eval.Algo(algoStr)
	if algo != eval.TFIDF && algo != eval.BM25 {
		algo = eval.BM25
	}

	terms, err := termstore.Open(filepath.Join(dir, termsFileName))
	if err != nil {
		return nil, e.fail(errSystem(err, "open terms store for %q", name))
	}
	dt, err := dtstore.Open(filepath.Join(dir, dtmapFileName))
	if err != nil {
		terms.Release()
		return nil, e.fail(errSystem(err, "open dtmap store for %q", name))
	}

	idx := &Index{
		name:      name,
		dir:       dir,
		log:       e.log.With("index", name),
		params:    params,
		algo:      algo,
		terms:     terms,
		dt:        dt,
		termTable: vocab.NewTermTable(terms),
		docTable:  vocab.NewDocTable(dt),
		pipeline:  pipeline,
	}

	if err := idx.syncTerms(); err != nil {
		idx.Close()
		return nil, e.fail(errFatal(err, "initial terms sync for %q", name))
	}
	if err := idx.syncDocs(false); err != nil {
		idx.Close()
		return nil, e.fail(errFatal(err, "initial dtmap sync for %q", name))
	}
	idx.log.Info("index opened", "terms", idx.termTable.Len(), "docs", idx.docTable.Len())
	return idx, nil
}

// Close releases both stores. Reverse order of open, per §4.13.
func (idx *Index) Close() error {
	var firstErr error
	if err := idx.dt.Release(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := idx.terms.Release(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

func (idx *Index) syncTerms() error {
	newTerms, err := idx.terms.Sync()
	if err != nil {
		return err
	}
	for _, t := range newTerms {
		idx.termTable.Insert(t.ID, t.Text, t.CounterOffset)
	}
	return nil
}

func (idx *Index) syncDocs(partialOK bool) error {
	cb := dtstore.Callbacks{
		ResolveTerm: func(termID uint32, docID uint64, count uint32) bool {
			term, ok := idx.termTable.LookupByID(termID)
			if !ok {
				return false
			}
			idx.termTable.AddDoc(term, docID)
			return true
		},
		Created: func(docID uint64, offset int, docLen uint32) {
			idx.docTable.Create(docID, offset)
		},
		Deleted: func(docID uint64) {
			idx.cleanupDoc(docID)
		},
	}
	return idx.dt.Sync(cb, partialOK)
}

// cleanupDoc removes docID from every term's posting bitmap and
// decrements the corresponding global occurrence counters, reading the
// (term id, count) pairs from the still-intact record body (only the
// doc-id field itself is ever zeroed in place), then drops the
// in-memory doc entry. Used both by the removing handle (§4.4 step 4)
// and by peers replaying the removal's tombstone via Sync.
func (idx *Index) cleanupDoc(docID uint64) error {
	doc, ok := idx.docTable.Lookup(docID)
	if !ok {
		return nil
	}
	_, pairs, err := idx.dt.ReadRecord(doc.Offset)
	if err != nil {
		return err
	}
	for _, p := range pairs {
		term, ok := idx.termTable.LookupByID(p.TermID)
		if !ok {
			continue
		}
		idx.termTable.DelDoc(term, docID)
		if err := idx.termTable.DecrTotal(term, uint64(p.Count)); err != nil {
			return err
		}
	}
	idx.docTable.Destroy(docID)
	return nil
}

// TotalDocs implements eval.Corpus.
func (idx *Index) TotalDocs() uint32 {
	n, _ := idx.dt.DocCount()
	return n
}

// TotalTokens implements eval.Corpus.
func (idx *Index) TotalTokens() uint64 {
	n, _ := idx.dt.TokenCount()
	return n
}

// Add tokenizes text, appends any newly seen terms to the terms store,
// then appends a document record to the dtmap store (§4.3, §4.4). Must
// be externally serialized with other writers on this handle (§5).
func (idx *Index) Add(docID uint64, text string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if docID == 0 {
		return errInvalid(nil, "document id must be nonzero")
	}
	if text == "" {
		return errInvalid(nil, "document text must not be empty")
	}
	tokens, err := tokenize.Tokenize(idx.pipeline, text)
	if err != nil {
		return errInvalid(err, "tokenize")
	}

	if err := idx.terms.LockExcl(); err != nil {
		return errSystem(err, "lock terms store")
	}
	freshIDs := make(map[uint32]bool)
	var appendErr error
	func() {
		defer idx.terms.Unlock()
		if err := idx.syncTerms(); err != nil {
			appendErr = err
			return
		}
		for _, entry := range tokens.Entries() {
			if _, ok := idx.termTable.Lookup(entry.Text); ok {
				continue
			}
			t, err := idx.terms.Append(entry.Text, uint64(entry.Count))
			if err != nil {
				appendErr = err
				return
			}
			term := idx.termTable.Insert(t.ID, t.Text, t.CounterOffset)
			freshIDs[term.ID] = true
		}
		if err := idx.terms.Publish(); err != nil {
			appendErr = err
		}
	}()
	if appendErr != nil {
		return classifyCause(appendErr, errSystem, "append terms")
	}

	// Prepare block (§4.4): speculatively update bitmaps/counters before
	// taking the dtmap lock, so that a later EXISTS failure can roll
	// exactly these increments back.
	pairs := make([]dtstore.TermCount, 0, tokens.Len())
	touched := make([]*vocab.Term, 0, tokens.Len())
	for _, entry := range tokens.Entries() {
		term, ok := idx.termTable.Lookup(entry.Text)
		if !ok {
			return errFatal(nil, "term %q missing after append", entry.Text)
		}
		pairs = append(pairs, dtstore.TermCount{TermID: term.ID, Count: uint32(entry.Count)})
		idx.termTable.AddDoc(term, docID)
		if !freshIDs[term.ID] {
			if err := idx.termTable.IncrTotal(term, uint64(entry.Count)); err != nil {
				return errSystem(err, "increment term counter")
			}
		}
		touched = append(touched, term)
	}
	// Undo exactly the speculative updates above if the record turns out
	// to be a duplicate (§4.4 step 4). A freshly created term's counter
	// was seeded with this doc's count at Append time, so it rolls back
	// the same way as an existing term's IncrTotal.
	rollback := func() {
		for i, term := range touched {
			idx.termTable.DelDoc(term, docID)
			idx.termTable.DecrTotal(term, uint64(pairs[i].Count))
		}
	}

	rec := dtstore.PreparedRecord{DocID: docID, DocLen: uint32(tokens.Seen()), Pairs: pairs}
	rec.SortPairs()

	if err := idx.dt.LockExcl(); err != nil {
		rollback()
		return errSystem(err, "lock dtmap store")
	}
	defer idx.dt.Unlock()

	for {
		curLen, err := idx.dt.DataLen()
		if err != nil {
			rollback()
			return errSystem(err, "read dtmap data length")
		}
		if curLen <= idx.dt.ConsumedLen() {
			break
		}
		if err := idx.syncTerms(); err != nil {
			rollback()
			return errFatal(err, "terms sync during add")
		}
		if err := idx.syncDocs(false); err != nil {
			rollback()
			return errFatal(err, "dtmap sync during add")
		}
	}

	if _, ok := idx.docTable.Lookup(docID); ok {
		rollback()
		return errExists("document %d already exists", docID)
	}

	offset, err := idx.dt.Append(rec)
	if err != nil {
		rollback()
		return errSystem(err, "append document record")
	}
	if _, err := idx.docTable.Create(docID, offset); err != nil {
		rollback()
		return errFatal(err, "create doc entry")
	}
	if err := idx.dt.PublishCounters(idx.TotalDocs()+1, idx.TotalTokens()+uint64(rec.DocLen)); err != nil {
		rollback()
		return errSystem(err, "publish dtmap counters")
	}
	idx.dt.Sync2()
	return nil
}

// Remove deletes doc_id: it stops appearing in every term's posting
// bitmap and subsequent lookups, via an in-place zeroed doc-id field
// plus an appended tombstone block (§4.4).
func (idx *Index) Remove(docID uint64) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if err := idx.dt.LockExcl(); err != nil {
		return errSystem(err, "lock dtmap store")
	}
	defer idx.dt.Unlock()

	if err := idx.syncTerms(); err != nil {
		return errFatal(err, "terms sync during remove")
	}
	if err := idx.syncDocs(false); err != nil {
		return errFatal(err, "dtmap sync during remove")
	}

	doc, ok := idx.docTable.Lookup(docID)
	if !ok {
		return errMissing("document %d not found", docID)
	}
	docLen, _, err := idx.dt.ReadRecord(doc.Offset)
	if err != nil {
		return errFatal(err, "read document record")
	}
	offset := doc.Offset

	if err := idx.cleanupDoc(docID); err != nil {
		return errFatal(err, "cleanup document")
	}
	if err := idx.dt.ZeroDocID(offset); err != nil {
		return errSystem(err, "zero doc id")
	}
	if _, err := idx.dt.AppendTombstone(docID); err != nil {
		return errSystem(err, "append tombstone")
	}

	newDocCount := idx.TotalDocs()
	if newDocCount > 0 {
		newDocCount--
	}
	newTokenCount := idx.TotalTokens()
	if newTokenCount >= uint64(docLen) {
		newTokenCount -= uint64(docLen)
	} else {
		newTokenCount = 0
	}
	if err := idx.dt.PublishCounters(newDocCount, newTokenCount); err != nil {
		return errSystem(err, "publish dtmap counters")
	}
	idx.dt.Sync2()
	return nil
}

// Search evaluates queryText and returns its top results (§6.1, §4.9).
// params may be nil, in which case the §6.3 defaults apply; when params
// does not set "algo", the index's configured ranking algorithm is used.
func (idx *Index) Search(queryText string, params *Params) (*Response, error) {
	defaults := DefaultSearchParams()
	defaults.SetStr("algo", string(idx.algo))
	if params == nil {
		params = defaults
	} else {
		params = Merge(defaults, params)
	}
	algoStr, _ := params.GetStr("algo")
	algo := eval.Algo(algoStr)
	if algo != eval.TFIDF && algo != eval.BM25 {
		return nil, errMissing("unknown ranking algorithm %q", algoStr)
	}
	limit, _ := params.GetUint("limit")
	if limit == 0 {
		return nil, errInvalid(nil, "limit must be nonzero")
	}
	fuzzy, _ := params.GetBool("fuzzymatch")

	ev := &eval.Evaluator{
		Terms:      idx.termTable,
		Docs:       idx.docTable,
		Pipeline:   idx.pipeline,
		FuzzyMatch: fuzzy,
		Corpus:     idx,
	}
	matches, err := ev.Evaluate(queryText, algo, uint32(limit))
	if err != nil {
		qerr := classifyCause(err, errInvalid, "search %q", queryText)
		return newErrorResponse(qerr.Error()), qerr
	}
	return newResponse(matches), nil
}

// IndexStats summarizes an index for operational introspection,
// generalizing the teacher's segment-info printer into a structured
// value (§D supplemented feature).
type IndexStats struct {
	TermCount    int
	DocCount     uint32
	TokenCount   uint64
	TermPostings map[string]int
}

// Stats reports the current size of the index.
func (idx *Index) Stats() IndexStats {
	postings := make(map[string]int, idx.termTable.Len())
	idx.termTable.Each(func(t *vocab.Term) {
		postings[t.Text] = t.Postings.Cardinality()
	})
	return IndexStats{
		TermCount:    idx.termTable.Len(),
		DocCount:     idx.TotalDocs(),
		TokenCount:   idx.TotalTokens(),
		TermPostings: postings,
	}
}
