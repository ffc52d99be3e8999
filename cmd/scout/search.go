package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/abelbrown/bookscout/internal/book"
)

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	author := fs.String("author", "", "Author filter")
	year := fs.Int("year", 0, "First publish year filter")
	subject := fs.String("subject", "", "Subject filter")
	page := fs.Int("page", 1, "Page number, starting at 1")
	showURL := fs.Bool("url", false, "Print the request URL")
	fs.Parse(os.Args[1:])

	query := strings.Join(fs.Args(), " ")
	if strings.TrimSpace(query) == "" {
		fmt.Fprintln(os.Stderr, "usage: scout search [--author A] [--year Y] [--subject S] [--page N] <query>")
		os.Exit(1)
	}
	if *page < 1 {
		*page = 1
	}

	cfg := loadConfig()
	client := newClient(cfg)

	c := book.Criteria{}.WithQuery(query).WithAuthor(*author).WithYear(*year).WithSubject(*subject)
	if *showURL {
		fmt.Println(client.SearchURL(c, *page))
	}

	t0 := time.Now()
	res := client.Search(context.Background(), c, *page)
	dur := time.Since(t0)

	fmt.Printf(">>> QUERY: %q  page %d  [%v]\n", query, *page, dur.Round(time.Millisecond))
	fmt.Println(strings.Repeat("-", 80))
	if len(res.Items) == 0 {
		fmt.Println("  no results (or the request failed; see the log)")
		return
	}

	first := (*page-1)*client.PageSize() + 1
	for i, b := range res.Items {
		year := "----"
		if b.PublishYear > 0 {
			year = fmt.Sprint(b.PublishYear)
		}
		fmt.Printf("  %4d. %-12s %s  %s — %s\n", first+i, b.ID, year, truncate(b.Title, 50), truncate(b.Authors(), 30))
	}
	fmt.Println(strings.Repeat("-", 80))
	fmt.Printf("  %d shown, %d total\n", len(res.Items), res.TotalAvailable)
}
