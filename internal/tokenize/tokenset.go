// Package tokenize splits text into tokens and drives them through a
// filter pipeline, accumulating a token multiset for indexing or query
// preparation (§4.7).
package tokenize

// Entry is one distinct token's post-filter text and in-text
// occurrence count.
type Entry struct {
	Text  string
	Count int
}

// Set is the output of Tokenize: a unique-by-text collection with a
// running seen count (including duplicates) and total distinct-text
// byte size (§3 "Token set").
type Set struct {
	order      []string
	byText     map[string]int // text -> index into order
	counts     []int
	seen       int
	totalBytes int
}

// NewSet returns an empty token set.
func NewSet() *Set {
	return &Set{byText: make(map[string]int)}
}

// Add records one occurrence of text, deduplicating by exact text and
// incrementing its count.
func (s *Set) Add(text string) {
	s.seen++
	if idx, ok := s.byText[text]; ok {
		s.counts[idx]++
		return
	}
	s.byText[text] = len(s.order)
	s.order = append(s.order, text)
	s.counts = append(s.counts, 1)
	s.totalBytes += len(text)
}

// Len reports the number of unique tokens.
func (s *Set) Len() int { return len(s.order) }

// Seen reports the total occurrences counted, including duplicates.
func (s *Set) Seen() int { return s.seen }

// TotalBytes reports the summed byte length of all distinct token text.
func (s *Set) TotalBytes() int { return s.totalBytes }

// Entries returns the unique tokens in first-seen order.
func (s *Set) Entries() []Entry {
	out := make([]Entry, len(s.order))
	for i, text := range s.order {
		out[i] = Entry{Text: text, Count: s.counts[i]}
	}
	return out
}

// Count returns the in-text occurrence count for text, or 0 if absent.
func (s *Set) Count(text string) int {
	if idx, ok := s.byText[text]; ok {
		return s.counts[idx]
	}
	return 0
}
