package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
)

func runFavorites() {
	fs := flag.NewFlagSet("favorites", flag.ExitOnError)
	wipe := fs.Bool("clear", false, "Remove every favorite")
	fs.Parse(os.Args[1:])

	cfg := loadConfig()
	st := openDB(cfg)
	defer st.Close()

	if *wipe {
		if err := st.SaveFavorites(nil); err != nil {
			log.Fatalf("clear favorites: %v", err)
		}
		fmt.Println("Favorites cleared.")
		return
	}

	favs, err := st.LoadFavorites()
	if err != nil {
		log.Fatalf("load favorites: %v", err)
	}
	theme, ok, err := st.Get("theme")
	if err != nil {
		log.Fatalf("load theme: %v", err)
	}
	if !ok {
		theme = "(default)"
	}

	fmt.Printf("Database: %s\n", cfg.DBPath())
	fmt.Printf("Theme:    %s\n", theme)
	fmt.Printf("Favorites: %d\n", len(favs))
	fmt.Println(strings.Repeat("-", 80))
	for i, b := range favs {
		fmt.Printf("  %3d. %-12s %s — %s\n", i+1, b.ID, truncate(b.Title, 45), truncate(b.Authors(), 30))
	}
}
