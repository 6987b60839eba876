package filters

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/bits-and-blooms/bloom/v3"

	"github.com/rmind/nxsearch/internal/tokenize"
)

// Stopwords drops tokens found in a per-language stop-word set,
// standing in for spec's external stop-word dictionary collaborator
// (§1 non-goals, §6.2). A bloom filter fronts the exact set so that the
// overwhelmingly common "not a stopword" case avoids a map probe.
type Stopwords struct {
	words map[string]struct{}
	bf    *bloom.BloomFilter
}

// NewStopwords builds a Stopwords filter from an explicit word list.
func NewStopwords(words []string) *Stopwords {
	bf := bloom.NewWithEstimates(uint(len(words)+1), 0.01)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		bf.AddString(w)
		set[w] = struct{}{}
	}
	return &Stopwords{words: set, bf: bf}
}

// LoadStopwords reads one word per line from path, the on-disk layout
// described in §6.4 (`BASEDIR/filters/stopwords/<lang>`).
func LoadStopwords(path string) (*Stopwords, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("filters: stopwords: %w", err)
	}
	defer f.Close()

	var words []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		w := strings.TrimSpace(scanner.Text())
		if w == "" || strings.HasPrefix(w, "#") {
			continue
		}
		words = append(words, w)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("filters: stopwords: %w", err)
	}
	return NewStopwords(words), nil
}

// DefaultEnglishStopwords returns a small built-in English stop-word
// list used when no dictionary file is configured.
func DefaultEnglishStopwords() []string {
	return []string{
		"a", "an", "and", "are", "as", "at", "be", "by", "for", "from",
		"has", "he", "in", "is", "it", "its", "of", "on", "that", "the",
		"to", "was", "were", "will", "with",
	}
}

func (s *Stopwords) Name() string { return "stopwords" }

func (s *Stopwords) Apply(text string) (string, tokenize.Action, error) {
	if !s.bf.TestString(text) {
		return text, tokenize.Mutation, nil
	}
	if _, ok := s.words[text]; ok {
		return "", tokenize.Drop, nil
	}
	return text, tokenize.Mutation, nil
}
