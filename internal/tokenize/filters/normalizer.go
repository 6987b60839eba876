// Package filters provides the engine's built-in tokenizer filters:
// normalizer, stopwords and stemmer (§6.2, §4.13 defaults).
package filters

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/rmind/nxsearch/internal/tokenize"
)

// Normalizer applies Unicode NFC normalization followed by case
// folding, standing in for spec's external Unicode normalization
// library collaborator (§1 non-goals, §6.2). lang is accepted for
// parity with the other built-in filters' construction signature but
// case folding itself is locale-independent.
type Normalizer struct {
	caser cases.Caser
}

// NewNormalizer returns a Normalizer. lang is currently unused (case
// folding is locale-independent) but kept so callers can construct all
// default filters uniformly from the index's configured language.
func NewNormalizer(lang string) *Normalizer {
	return &Normalizer{caser: cases.Fold(cases.Compact)}
}

func (n *Normalizer) Name() string { return "normalizer" }

func (n *Normalizer) Apply(text string) (string, tokenize.Action, error) {
	normalized := norm.NFC.String(text)
	folded := n.caser.String(normalized)
	if folded == "" {
		return "", tokenize.Drop, nil
	}
	return folded, tokenize.Mutation, nil
}
