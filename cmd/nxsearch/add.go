package main

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/rmind/nxsearch"
)

func runAdd(args []string) error {
	fs := pflag.NewFlagSet("add", pflag.ExitOnError)
	basedir := fs.StringP("basedir", "b", "", "engine base directory (or NXS_BASEDIR)")
	index := fs.StringP("index", "i", "", "index name")
	doc := fs.Uint64P("doc", "d", 0, "document id")
	text := fs.StringP("text", "t", "", "document text")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *index == "" || *doc == 0 || *text == "" {
		return fmt.Errorf("-index, -doc and -text are all required")
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

	if err := idx.Add(*doc, *text); err != nil {
		return err
	}
	fmt.Printf("document %d added to %q\n", *doc, *index)
	return nil
}
