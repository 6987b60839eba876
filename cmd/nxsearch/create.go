package main

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/rmind/nxsearch"
	"github.com/rmind/nxsearch/internal/eval"
)

func runCreate(args []string) error {
	fs := pflag.NewFlagSet("create", pflag.ExitOnError)
	basedir := fs.StringP("basedir", "b", "", "engine base directory (or NXS_BASEDIR)")
	index := fs.StringP("index", "i", "", "index name")
	lang := fs.String("lang", "en", "tokenizer language")
	algo := fs.String("algo", string(eval.BM25), "ranking algorithm (TF-IDF|BM25)")
	filters := fs.StringSlice("filters", []string{"normalizer", "stopwords", "stemmer"}, "filter pipeline, in order")
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

	params := nxsearch.NewParams()
	params.SetStr("lang", *lang)
	params.SetStr("algo", *algo)
	params.SetStrList("filters", *filters)

	idx, err := e.IndexCreate(*index, params)
	if err != nil {
		return err
	}
	defer idx.Close()

	fmt.Printf("index %q created\n", *index)
	return nil
}
