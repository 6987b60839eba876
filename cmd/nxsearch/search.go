package main

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/rmind/nxsearch"
)

func runSearch(args []string) error {
	fs := pflag.NewFlagSet("search", pflag.ExitOnError)
	basedir := fs.StringP("basedir", "b", "", "engine base directory (or NXS_BASEDIR)")
	index := fs.StringP("index", "i", "", "index name")
	query := fs.StringP("query", "q", "", "query text")
	algo := fs.String("algo", "", "ranking algorithm, defaults to the index's configured algorithm")
	limit := fs.Uint64("limit", 1000, "maximum number of results")
	fuzzy := fs.Bool("fuzzy", false, "enable fuzzy term resolution")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *index == "" || *query == "" {
		return fmt.Errorf("-index and -query are both required")
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

	params := nxsearch.NewParams()
	if *algo != "" {
		params.SetStr("algo", *algo)
	}
	params.SetUint("limit", *limit)
	params.SetBool("fuzzymatch", *fuzzy)

	resp, err := idx.Search(*query, params)
	if err != nil {
		return err
	}

	results := resp.Results()
	fmt.Printf("query: %s\n", *query)
	fmt.Printf("results: %d\n", len(results))
	fmt.Println(strings.Repeat("-", 22))
	fmt.Printf("| %-8s | %-8s |\n", "DocID", "Score")
	fmt.Println(strings.Repeat("-", 22))
	for _, r := range results {
		fmt.Printf("| %-8d | %8.4f |\n", r.DocID, r.Score)
	}
	fmt.Println(strings.Repeat("-", 22))
	return nil
}
