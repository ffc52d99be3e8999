// Command scout is the bookscout debugging CLI.
//
// Usage:
//
//	scout                      Show help
//	scout search <query>       Run one search page against Open Library
//	scout detail <id>          Fetch a work and its authors
//	scout favorites            List stored favorites
//	scout events               JSONL event log viewer
package main

import (
	"fmt"
	"os"
)

const usage = `scout - bookscout debug CLI

Usage:
  scout <command> [flags]

Commands:
  search      Run one search page (flags: --author --year --subject --page)
  detail      Fetch a work by id, e.g. OL45804W
  favorites   List favorites stored in the local database
  events      JSONL event log viewer

Environment:
  BOOKSCOUT_DATA_DIR   Data directory (default: ~/.bookscout)
  BOOKSCOUT_TRACE      Emit debug-level pipeline events when set

Run 'scout <command> -h' for command-specific help.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(0)
	}

	cmd := os.Args[1]
	// Strip the program name + subcommand so flag sets see only their flags
	os.Args = os.Args[1:]

	switch cmd {
	case "search":
		runSearch()
	case "detail":
		runDetail()
	case "favorites":
		runFavorites()
	case "events":
		runEvents()
	case "-h", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "scout: unknown command %q\n\n", cmd)
		fmt.Print(usage)
		os.Exit(1)
	}
}
