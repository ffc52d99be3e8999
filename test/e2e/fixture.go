package e2e

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
)

// newFixtureServer stands in for Open Library: search.json, works and
// authors, all serving one deterministic Dune catalog.
func newFixtureServer() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/search.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		q := strings.ToLower(r.URL.Query().Get("q"))
		if !strings.Contains(q, "dune") {
			fmt.Fprint(w, `{"numFound":0,"docs":[]}`)
			return
		}
		fmt.Fprint(w, `{"numFound":2,"docs":[
			{"key":"/works/OL893415W","title":"Fixture Dune","author_name":["Frank Herbert"],"first_publish_year":1965,"cover_i":11481354},
			{"key":"/works/OL893526W","title":"Fixture Dune Messiah","author_name":["Frank Herbert"],"first_publish_year":1969}
		]}`)
	})
	mux.HandleFunc("/works/OL893415W.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"title":"Fixture Dune",
			"description":{"type":"/type/text","value":"Arrakis, the desert planet."},
			"authors":[{"author":{"key":"/authors/OL79034A"}}],
			"subjects":["Science fiction"],"covers":[11481354]}`)
	})
	mux.HandleFunc("/authors/OL79034A.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"name":"Frank Herbert"}`)
	})
	return httptest.NewServer(mux)
}

// fixtureEnv points bookscout at srv and at a fresh home directory.
func fixtureEnv(homeDir string, srv *httptest.Server) []string {
	return append(os.Environ(),
		"HOME="+homeDir,
		"BOOKSCOUT_DATA_DIR="+homeDir+"/.bookscout",
		"BOOKSCOUT_SEARCH_URL="+srv.URL+"/search.json",
		"BOOKSCOUT_WORKS_URL="+srv.URL+"/works",
		"BOOKSCOUT_AUTHORS_URL="+srv.URL+"/authors",
		"BOOKSCOUT_QUIET_PERIOD=50ms",
		"BOOKSCOUT_RPS=100",
	)
}
