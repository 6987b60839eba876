package filters

import (
	"testing"

	"github.com/rmind/nxsearch/internal/tokenize"
)

func TestNormalizerFoldsCaseAndNormalizes(t *testing.T) {
	n := NewNormalizer("en")
	out, _, err := n.Apply("HELLO")
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out != "hello" {
		t.Fatalf("Apply(HELLO) = %q, want %q", out, "hello")
	}
}

func TestNormalizerDropsEmpty(t *testing.T) {
	n := NewNormalizer("en")
	_, action, err := n.Apply("")
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if action != tokenize.Drop {
		t.Fatalf("action = %v, want Drop", action)
	}
}

func TestStopwordsDropsKnownWord(t *testing.T) {
	s := NewStopwords(DefaultEnglishStopwords())
	_, action, err := s.Apply("the")
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if action != tokenize.Drop {
		t.Fatalf("action = %v, want Drop", action)
	}
}

func TestStopwordsKeepsUnknownWord(t *testing.T) {
	s := NewStopwords(DefaultEnglishStopwords())
	out, action, err := s.Apply("search")
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if action != tokenize.Mutation {
		t.Fatalf("action = %v, want Mutation", action)
	}
	if out != "search" {
		t.Fatalf("out = %q, want search", out)
	}
}

func TestStemmerStemsEnglish(t *testing.T) {
	s := NewStemmer("en")
	out, _, err := s.Apply("running")
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out != "run" {
		t.Fatalf("stem(running) = %q, want run", out)
	}
}

func TestStemmerPassthroughForUnknownLang(t *testing.T) {
	s := NewStemmer("xx")
	out, _, err := s.Apply("running")
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out != "running" {
		t.Fatalf("passthrough = %q, want running", out)
	}
}
