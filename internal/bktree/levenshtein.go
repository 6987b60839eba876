// Package bktree implements Levenshtein distance and a BK-tree over
// term text for fuzzy resolution of unmatched query tokens (§4.12).
package bktree

// Scratch holds the reusable row buffer for Distance, avoiding an
// allocation per comparison during BK-tree traversal.
type Scratch struct {
	row []int
}

// NewScratch returns a ready-to-use Levenshtein scratch buffer.
func NewScratch() *Scratch { return &Scratch{} }

// Distance computes the Levenshtein edit distance between a and b using
// the single-row Wagner-Fischer optimization: one row of length
// len(b)+1 is updated in place per source character, with the diagonal
// and above values tracked as two scalars instead of a second row.
func (s *Scratch) Distance(a, b string) int {
	ar := []rune(a)
	br := []rune(b)
	if len(ar) == 0 {
		return len(br)
	}
	if len(br) == 0 {
		return len(ar)
	}
	if cap(s.row) < len(br)+1 {
		s.row = make([]int, len(br)+1)
	}
	row := s.row[:len(br)+1]
	for j := range row {
		row[j] = j
	}
	for i := 1; i <= len(ar); i++ {
		diag := row[0]
		row[0] = i
		for j := 1; j <= len(br); j++ {
			above := row[j]
			cost := 1
			if ar[i-1] == br[j-1] {
				cost = 0
			}
			row[j] = minInt(minInt(row[j]+1, row[j-1]+1), diag+cost)
			diag = above
		}
	}
	return row[len(br)]
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
