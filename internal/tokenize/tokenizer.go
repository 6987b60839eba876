package tokenize

import (
	"fmt"
	"strings"
)

// isSeparator reports whether r belongs to the tokenizer's separator
// class (§4.7): `[,.;:| \t\n]`.
func isSeparator(r rune) bool {
	switch r {
	case ',', '.', ';', ':', '|', ' ', '\t', '\n':
		return true
	default:
		return false
	}
}

// Tokenize splits text on the separator class, runs each non-empty
// substring through pipeline, and accumulates the surviving tokens into
// a Set (§4.7). A filter Error aborts the whole call.
func Tokenize(pipeline *Pipeline, text string) (*Set, error) {
	set := NewSet()
	for _, raw := range strings.FieldsFunc(text, isSeparator) {
		out, action, err := pipeline.Run(raw)
		if err != nil {
			return nil, fmt.Errorf("tokenize: %w", err)
		}
		switch action {
		case Drop:
			continue
		case Mutation:
			if out == "" {
				continue
			}
			set.Add(out)
		}
	}
	return set, nil
}
