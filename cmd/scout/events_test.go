package main

import (
	"strings"
	"testing"
)

const sampleLog = `{"t":"2026-01-02T10:00:00Z","level":"info","kind":"search.dispatch","comp":"search","session_id":"s1","qid":"aaaaaaaa-1111","query":"dune","page":1}
not json
{"t":"2026-01-02T10:00:01Z","level":"info","kind":"fetch.complete","comp":"openlibrary","session_id":"s1","qid":"aaaaaaaa-1111","query":"dune","page":1,"count":20,"total":512,"dur_ms":123.4}

{"t":"2026-01-02T10:00:02Z","level":"warn","kind":"fetch.error","comp":"openlibrary","session_id":"s1","qid":"bbbbbbbb-2222","query":"emma","err":"timeout"}
{"t":"2026-01-02T10:00:03Z","level":"error","kind":"detail.error","comp":"openlibrary","session_id":"s2","book_id":"OL1W","err":"status 500"}
`

func TestReadTailLinesKeepsLastN(t *testing.T) {
	all := func(eventRecord) bool { return true }

	got := readTailLines(strings.NewReader(sampleLog), 2, all)
	if len(got) != 2 {
		t.Fatalf("got %d lines, want 2", len(got))
	}
	if got[0].ev.Kind != "fetch.error" || got[1].ev.Kind != "detail.error" {
		t.Errorf("kinds = %s, %s", got[0].ev.Kind, got[1].ev.Kind)
	}

	got = readTailLines(strings.NewReader(sampleLog), 50, all)
	if len(got) != 4 {
		t.Errorf("got %d lines, want 4 (blank and invalid lines skipped)", len(got))
	}

	if got := readTailLines(strings.NewReader(sampleLog), 0, all); got != nil {
		t.Errorf("tail 0 should return nil, got %d lines", len(got))
	}
}

func TestEventFilter(t *testing.T) {
	tests := []struct {
		name   string
		filter eventFilter
		want   []string
	}{
		{"all", eventFilter{}, []string{"search.dispatch", "fetch.complete", "fetch.error", "detail.error"}},
		{"kind prefix", eventFilter{kind: "fetch"}, []string{"fetch.complete", "fetch.error"}},
		{"min level", eventFilter{level: "warn"}, []string{"fetch.error", "detail.error"}},
		{"component", eventFilter{comp: "search"}, []string{"search.dispatch"}},
		{"qid prefix", eventFilter{qid: "aaaaaaaa"}, []string{"search.dispatch", "fetch.complete"}},
		{"session", eventFilter{session: "s2"}, []string{"detail.error"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := readTailLines(strings.NewReader(sampleLog), 50, tt.filter.match)
			var kinds []string
			for _, l := range lines {
				kinds = append(kinds, l.ev.Kind)
			}
			if strings.Join(kinds, ",") != strings.Join(tt.want, ",") {
				t.Errorf("kinds = %v, want %v", kinds, tt.want)
			}
		})
	}
}

func TestFormatEvent(t *testing.T) {
	lines := readTailLines(strings.NewReader(sampleLog), 50, func(eventRecord) bool { return true })

	got := formatEvent(lines[1].ev)
	for _, want := range []string{"10:00:01.000", "INFO", "fetch.complete", "(123ms)", `q="dune"`, "p=1", "n=20", "total=512", "qid=aaaaaaaa"} {
		if !strings.Contains(got, want) {
			t.Errorf("formatEvent() = %q, missing %q", got, want)
		}
	}

	got = formatEvent(lines[3].ev)
	if !strings.Contains(got, "book=OL1W") || !strings.Contains(got, "err=status 500") {
		t.Errorf("formatEvent() = %q", got)
	}
}

func TestDurPrecision(t *testing.T) {
	tests := []struct {
		ms   float64
		want int
	}{
		{250, 0},
		{12.5, 1},
		{0.25, 2},
	}
	for _, tt := range tests {
		if got := durPrecision(tt.ms); got != tt.want {
			t.Errorf("durPrecision(%v) = %d, want %d", tt.ms, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("Dune", 10); got != "Dune" {
		t.Errorf("truncate short = %q", got)
	}
	if got := truncate("The Left Hand of Darkness", 10); got != "The Lef..." {
		t.Errorf("truncate long = %q", got)
	}
}
