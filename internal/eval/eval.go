package eval

import (
	"fmt"
	"math"

	"github.com/rmind/nxsearch/internal/query"
	"github.com/rmind/nxsearch/internal/tokenize"
	"github.com/rmind/nxsearch/internal/topk"
	"github.com/rmind/nxsearch/internal/vocab"
)

// Corpus exposes the aggregate counters the ranking functions need
// (§2.10): the live document count and the sum of document lengths.
type Corpus interface {
	TotalDocs() uint32
	TotalTokens() uint64
}

// Evaluator ties the query parser to the in-memory term/doc tables and
// scores matching documents (§4.9).
type Evaluator struct {
	Terms      *vocab.TermTable
	Docs       *vocab.DocTable
	Pipeline   *tokenize.Pipeline
	FuzzyMatch bool
	Corpus     Corpus
}

// Match is one scored result document.
type Match struct {
	DocID uint64
	Score float64
}

// Evaluate parses queryText, resolves its leaves against the term
// table (optionally falling back to fuzzy search), walks the resulting
// AST combining posting bitmaps, scores every candidate document under
// algo, and returns the top `limit` matches sorted by descending score
// (§4.9, §4.10). A query whose leaves are all dropped by the filters or
// unresolved yields an empty, non-error result; empty query text is a
// syntax error from query.Parse.
func (e *Evaluator) Evaluate(queryText string, algo Algo, limit uint32) ([]Match, error) {
	root, err := query.Parse(queryText)
	if err != nil {
		return nil, err
	}

	resolved := make(map[int]*vocab.Term)
	var queryTerms []*vocab.Term
	seenTerm := make(map[uint32]bool)

	var prepare func(n *query.Node) error
	prepare = func(n *query.Node) error {
		if n.Kind == query.KindToken {
			out, action, err := e.Pipeline.Run(n.Value)
			if err != nil {
				return fmt.Errorf("eval: %w", err)
			}
			if action == tokenize.Drop || out == "" {
				resolved[n.ID] = nil
				return nil
			}
			term, ok := e.Terms.Lookup(out)
			if !ok && e.FuzzyMatch {
				term, ok = e.Terms.FuzzySearch(out)
			}
			if !ok {
				resolved[n.ID] = nil
				return nil
			}
			resolved[n.ID] = term
			if !seenTerm[term.ID] {
				seenTerm[term.ID] = true
				queryTerms = append(queryTerms, term)
			}
			return nil
		}
		for _, c := range n.Children {
			if err := prepare(c); err != nil {
				return err
			}
		}
		return nil
	}
	if err := prepare(root); err != nil {
		return nil, err
	}

	bitmap, err := e.walk(root, resolved, 0)
	if err != nil {
		return nil, err
	}

	if limit == 0 {
		limit = 1000
	}
	totalDocs := e.Corpus.TotalDocs()
	totalTokens := e.Corpus.TotalTokens()
	var avgDocLen float64
	if totalDocs > 0 {
		avgDocLen = float64(totalTokens) / float64(totalDocs)
	}

	heap := topk.New(int(limit))
	seq := 0
	var walkErr error
	bitmap.Each(func(docID uint64) {
		if walkErr != nil {
			return
		}
		doc, ok := e.Docs.Lookup(docID)
		if !ok {
			return
		}
		docLen, err := e.Docs.GetDocLen(doc)
		if err != nil {
			walkErr = fmt.Errorf("eval: %w", err)
			return
		}
		var sum float64
		matched := false
		for _, term := range queryTerms {
			if !term.Postings.Contains(docID) {
				continue
			}
			tc, err := e.Docs.GetTermCount(doc, term.ID)
			if err != nil {
				walkErr = fmt.Errorf("eval: %w", err)
				return
			}
			s := Score(algo, tc, term.Postings.Cardinality(), totalDocs, docLen, avgDocLen)
			if math.IsNaN(s) || s < 0 {
				continue
			}
			sum += s
			matched = true
		}
		if !matched {
			return
		}
		heap.Add(topk.Entry{DocID: docID, Score: sum, Seq: seq})
		seq++
	})
	if walkErr != nil {
		return nil, walkErr
	}

	entries := heap.Sort()
	out := make([]Match, len(entries))
	for i, ent := range entries {
		out[i] = Match{DocID: ent.DocID, Score: ent.Score}
	}
	return out, nil
}

func (e *Evaluator) walk(n *query.Node, resolved map[int]*vocab.Term, depth int) (*vocab.Bitmap, error) {
	if depth > query.MaxNesting {
		return nil, fmt.Errorf("eval: limit: query nesting exceeds %d", query.MaxNesting)
	}
	switch n.Kind {
	case query.KindToken:
		term := resolved[n.ID]
		if term == nil {
			return vocab.NewBitmap(), nil
		}
		return term.Postings, nil
	case query.KindAnd:
		bms := make([]*vocab.Bitmap, len(n.Children))
		for i, c := range n.Children {
			bm, err := e.walk(c, resolved, depth+1)
			if err != nil {
				return nil, err
			}
			bms[i] = bm
		}
		return vocab.Intersect(bms...), nil
	case query.KindOr:
		bms := make([]*vocab.Bitmap, len(n.Children))
		for i, c := range n.Children {
			bm, err := e.walk(c, resolved, depth+1)
			if err != nil {
				return nil, err
			}
			bms[i] = bm
		}
		return vocab.Union(bms...), nil
	case query.KindNot:
		left, err := e.walk(n.Children[0], resolved, depth+1)
		if err != nil {
			return nil, err
		}
		right, err := e.walk(n.Children[1], resolved, depth+1)
		if err != nil {
			return nil, err
		}
		return vocab.Difference(left, right), nil
	default:
		return vocab.NewBitmap(), nil
	}
}
