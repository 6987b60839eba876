package tokenize

import "fmt"

// Action is the outcome of running one token through one filter,
// mirroring the filter plugin ABI's {mutation, drop, error} contract
// (§6.2).
type Action int

const (
	Mutation Action = iota
	Drop
	Error
)

// Filter transforms a token's text in place (by returning a new
// string), possibly requesting it be dropped or failing the whole
// pipeline. Built-in filters (normalizer, stopwords, stemmer) and any
// caller-registered filter implement this (§6.2).
type Filter interface {
	Name() string
	Apply(text string) (out string, action Action, err error)
}

// Pipeline runs text through an ordered sequence of Filters.
type Pipeline struct {
	filters []Filter
}

// NewPipeline returns a pipeline running filters in the given order.
func NewPipeline(filters []Filter) *Pipeline {
	return &Pipeline{filters: filters}
}

// Names reports the configured filter names in pipeline order.
func (p *Pipeline) Names() []string {
	out := make([]string, len(p.filters))
	for i, f := range p.filters {
		out[i] = f.Name()
	}
	return out
}

// Run passes text through every filter in order. It stops and reports
// Drop as soon as any filter drops the token, and stops and reports
// Error as soon as any filter fails.
func (p *Pipeline) Run(text string) (out string, action Action, err error) {
	out = text
	for _, f := range p.filters {
		out, action, err = f.Apply(out)
		if err != nil {
			return "", Error, fmt.Errorf("tokenize: filter %q: %w", f.Name(), err)
		}
		switch action {
		case Drop:
			return "", Drop, nil
		case Mutation:
			continue
		default:
			return "", Error, fmt.Errorf("tokenize: filter %q: unrecognized action", f.Name())
		}
	}
	return out, Mutation, nil
}
