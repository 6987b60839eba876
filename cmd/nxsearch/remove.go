package main

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/rmind/nxsearch"
)

func runRemove(args []string) error {
	fs := pflag.NewFlagSet("remove", pflag.ExitOnError)
	basedir := fs.StringP("basedir", "b", "", "engine base directory (or NXS_BASEDIR)")
	index := fs.StringP("index", "i", "", "index name")
	doc := fs.Uint64P("doc", "d", 0, "document id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *index == "" || *doc == 0 {
		return fmt.Errorf("-index and -doc are both required")
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

	if err := idx.Remove(*doc); err != nil {
		return err
	}
	fmt.Printf("document %d removed from %q\n", *doc, *index)
	return nil
}
