package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/pflag"

	"github.com/rmind/nxsearch"
)

func runStats(args []string) error {
	fs := pflag.NewFlagSet("stats", pflag.ExitOnError)
	basedir := fs.StringP("basedir", "b", "", "engine base directory (or NXS_BASEDIR)")
	index := fs.StringP("index", "i", "", "index name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *index == "" {
		return fmt.Errorf("-index is required")
	}

	e, err := nxsearch.Open(*basedir)
	if err != nil {
		return err
	}
	defer e.Close()

	idx, err := e.IndexOpen(*index)
	if err != nil {
		return err
	}
	defer idx.Close()

	st := idx.Stats()
	fmt.Printf("\n+============== %s ===============\n\n", *index)
	fmt.Printf("Distinct Terms: %d\n", st.TermCount)
	fmt.Printf("Live Documents: %d\n", st.DocCount)
	fmt.Printf("Total Tokens:   %d\n\n", st.TokenCount)

	terms := make([]string, 0, len(st.TermPostings))
	for t := range st.TermPostings {
		terms = append(terms, t)
	}
	sort.Strings(terms)

	fmt.Printf("%-20s\t%s\n", "Term", "Doc Frequency")
	fmt.Println(strings.Repeat("-", 36))
	for _, t := range terms {
		fmt.Printf("%-20s\t%d\n", t, st.TermPostings[t])
	}
	return nil
}
