// Command nxsearch is a thin demonstration CLI over the nxsearch
// library: one subcommand per lifecycle operation, exercising the
// library end to end (create, add, remove, search, stats).
package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	cmd, args := os.Args[1], os.Args[2:]

	var err error
	switch cmd {
	case "create":
		err = runCreate(args)
	case "add":
		err = runAdd(args)
	case "remove":
		err = runRemove(args)
	case "search":
		err = runSearch(args)
	case "stats":
		err = runStats(args)
	default:
		fmt.Fprintf(os.Stderr, "nxsearch: unknown subcommand %q\n", cmd)
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "nxsearch %s: %v\n", cmd, err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: nxsearch <command> [flags]

commands:
  create   create a new index
  add      index a document
  remove   remove a document
  search   run a query
  stats    print index statistics`)
}
