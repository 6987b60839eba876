package nxsearch

import (
	"encoding/json"
	"fmt"

	"github.com/rmind/nxsearch/internal/eval"
)

// ScoredDoc is one ranked search result (§4.10).
type ScoredDoc struct {
	DocID uint64
	Score float64
}

// Response holds a search result set with a stateful iterator, mirroring
// the `resp_iter_reset`/`resp_iter_next` surface of §6.1.
type Response struct {
	results []ScoredDoc
	pos     int
	errMsg  string
}

func newResponse(matches []eval.Match) *Response {
	results := make([]ScoredDoc, len(matches))
	for i, m := range matches {
		results[i] = ScoredDoc{DocID: m.DocID, Score: m.Score}
	}
	return &Response{results: results}
}

func newErrorResponse(msg string) *Response {
	return &Response{errMsg: msg}
}

// ResultCount reports the number of results.
func (r *Response) ResultCount() int { return len(r.results) }

// IterReset rewinds the iterator to the first result.
func (r *Response) IterReset() { r.pos = 0 }

// IterNext returns the next (doc id, score) pair, or ok=false once
// the iterator is exhausted.
func (r *Response) IterNext() (doc ScoredDoc, ok bool) {
	if r.pos >= len(r.results) {
		return ScoredDoc{}, false
	}
	doc = r.results[r.pos]
	r.pos++
	return doc, true
}

// Results returns a copy of every result in ranked order.
func (r *Response) Results() []ScoredDoc {
	out := make([]ScoredDoc, len(r.results))
	copy(out, r.results)
	return out
}

type resultJSON struct {
	DocID uint64  `json:"doc_id"`
	Score float64 `json:"score"`
}

type responseJSON struct {
	Results []resultJSON `json:"results"`
	Count   int          `json:"count"`
	Error   string       `json:"error,omitempty"`
}

// ToJSON serializes the response as `resp_to_json` (§6.1): a results
// array, a count, and an optional embedded error string (§7).
func (r *Response) ToJSON() ([]byte, error) {
	rj := responseJSON{Count: len(r.results), Error: r.errMsg}
	rj.Results = make([]resultJSON, len(r.results))
	for i, res := range r.results {
		rj.Results[i] = resultJSON{DocID: res.DocID, Score: res.Score}
	}
	data, err := json.Marshal(rj)
	if err != nil {
		return nil, fmt.Errorf("response: %w", err)
	}
	return data, nil
}
