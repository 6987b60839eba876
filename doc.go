// Package nxsearch is an embeddable full-text search engine: a
// persistent, mmap-based inverted index shared by cooperating
// processes, with a boolean query language and TF-IDF/BM25 ranking.
//
// An Engine owns a base directory (BASEDIR, §6.4) holding one or more
// named indexes under BASEDIR/data/<name>/. Each Index persists two
// append-only files — a term dictionary (nxsterms.db) and a
// document-term map (nxsdtmap.db) — plus a human-editable params.db.
// Multiple processes may open the same index concurrently; writes are
// serialized by advisory file-range locking and made visible through
// an atomically published data-length field in each file's header.
//
// The core does not implement Unicode normalization, stemming,
// stop-word filtering, or a query scripting surface; instead it drives
// them through a tokenizer filter pipeline built from named filters
// (internal/tokenize/filters), configured per index via Params.
package nxsearch
