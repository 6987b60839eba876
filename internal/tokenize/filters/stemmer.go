package filters

import (
	"github.com/kljensen/snowball"

	"github.com/rmind/nxsearch/internal/tokenize"
)

// Stemmer reduces tokens to their word stem using the Snowball
// algorithm, standing in for spec's external stemmer collaborator (§1
// non-goals, §6.2).
type Stemmer struct {
	lang string
}

// NewStemmer returns a Stemmer for the given ISO 639-1 language code.
// Only "en" (or an empty code) is mapped to a supported Snowball
// language; anything else leaves tokens unchanged.
func NewStemmer(lang string) *Stemmer {
	snowballLang := ""
	if lang == "en" || lang == "" {
		snowballLang = "english"
	}
	return &Stemmer{lang: snowballLang}
}

func (s *Stemmer) Name() string { return "stemmer" }

func (s *Stemmer) Apply(text string) (string, tokenize.Action, error) {
	if s.lang == "" {
		return text, tokenize.Mutation, nil
	}
	stemmed, err := snowball.Stem(text, s.lang, true)
	if err != nil {
		// an unstemmable token (e.g. pure punctuation already filtered
		// upstream) is passed through rather than failing the pipeline
		return text, tokenize.Mutation, nil
	}
	return stemmed, tokenize.Mutation, nil
}
