package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/abelbrown/bookscout/internal/openlibrary"
)

func runDetail() {
	fs := flag.NewFlagSet("detail", flag.ExitOnError)
	size := fs.String("cover", "M", "Cover size: S, M or L")
	fs.Parse(os.Args[1:])

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: scout detail [--cover S|M|L] <work id>")
		os.Exit(1)
	}
	id := openlibrary.WorkID(fs.Arg(0))

	cfg := loadConfig()
	client := newClient(cfg)
	ctx := context.Background()

	d, err := client.FetchDetail(ctx, id)
	if err != nil {
		if errors.Is(err, openlibrary.ErrNotFound) {
			fmt.Fprintf(os.Stderr, "error: no work %s\n", id)
		} else {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
	d.AuthorNames = client.ResolveAuthors(ctx, d.AuthorKeys)

	fmt.Printf("%s  (%s)\n", d.Title, d.ID)
	fmt.Println(strings.Repeat("=", 80))
	if len(d.AuthorNames) > 0 {
		fmt.Printf("Authors:  %s\n", strings.Join(d.AuthorNames, ", "))
	}
	if d.NumberOfPages > 0 {
		fmt.Printf("Pages:    %d\n", d.NumberOfPages)
	}
	if len(d.Subjects) > 0 {
		fmt.Printf("Subjects: %s\n", truncate(strings.Join(d.Subjects, ", "), 70))
	}
	fmt.Printf("Cover:    %s\n", client.CoverURL(d.CoverID(), openlibrary.CoverSize(strings.ToUpper(*size))))
	fmt.Println()
	if d.Description == "" {
		fmt.Println("No description available.")
	} else {
		fmt.Println(d.Description)
	}
}
