// Package eval walks a parsed query AST against posting bitmaps and
// ranks matching documents by TF-IDF or BM25 (§4.9, §2.10).
package eval

import "math"

// Algo selects a ranking function, per §6.3's `algo` search parameter.
type Algo string

const (
	TFIDF Algo = "TF-IDF"
	BM25  Algo = "BM25"
)

// bm25K and bm25B are the fixed BM25 constants from §4.9.
const (
	bm25K = 1.2
	bm25B = 0.75
)

// Score computes one (term, doc) contribution under algo. termCount is
// the term's in-document occurrence count, docFreq is the term's
// posting-bitmap cardinality (documents containing it at least once),
// totalDocs is the corpus's live document count, docLen is the
// document's total token count, and avgDocLen is totalTokens/totalDocs.
// Both ranking functions return NaN when termCount<=0 or (for BM25)
// avgDocLen==0; the evaluator treats NaN as "no score" (§4.9).
func Score(algo Algo, termCount, docFreq int, totalDocs uint32, docLen uint32, avgDocLen float64) float64 {
	if termCount <= 0 {
		return math.NaN()
	}
	tf := math.Log(float64(termCount) + 1)
	switch algo {
	case BM25:
		if avgDocLen == 0 {
			return math.NaN()
		}
		tf25 := tf / (tf + bm25K*(1-bm25B+bm25B*float64(docLen)/avgDocLen))
		idf25 := math.Log(((float64(totalDocs)-float64(docFreq)+0.5)/(float64(docFreq)+0.5))+1)
		return tf25 * idf25
	default: // TFIDF
		idf := math.Log(float64(totalDocs)/float64(docFreq)) + 1
		return tf * idf
	}
}
