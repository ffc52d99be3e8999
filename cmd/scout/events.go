package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// eventRecord mirrors otel.Event for JSON decoding. Decoding the JSONL
// directly keeps old logs readable when the event schema grows.
type eventRecord struct {
	Time      time.Time      `json:"t"`
	Level     string         `json:"level"`
	Kind      string         `json:"kind"`
	Comp      string         `json:"comp"`
	SessionID string         `json:"session_id"`
	QueryID   string         `json:"qid"`
	DurMs     float64        `json:"dur_ms"`
	Count     int            `json:"count"`
	Page      int            `json:"page"`
	Total     int            `json:"total"`
	Query     string         `json:"query"`
	BookID    string         `json:"book_id"`
	Err       string         `json:"err"`
	Msg       string         `json:"msg"`
	Extra     map[string]any `json:"extra"`
}

// levelRank returns a numeric rank for filtering (higher = more severe).
func levelRank(level string) int {
	switch level {
	case "debug":
		return 0
	case "info":
		return 1
	case "warn":
		return 2
	case "error":
		return 3
	default:
		return 0
	}
}

// eventFilter selects events for display. Empty fields match everything.
type eventFilter struct {
	kind    string
	level   string
	comp    string
	qid     string
	session string
}

func (f eventFilter) match(ev eventRecord) bool {
	if f.kind != "" && !strings.HasPrefix(ev.Kind, f.kind) {
		return false
	}
	if f.level != "" && levelRank(ev.Level) < levelRank(f.level) {
		return false
	}
	if f.comp != "" && ev.Comp != f.comp {
		return false
	}
	if f.qid != "" && !strings.HasPrefix(ev.QueryID, f.qid) {
		return false
	}
	if f.session != "" && !strings.HasPrefix(ev.SessionID, f.session) {
		return false
	}
	return true
}

func runEvents() {
	fs := flag.NewFlagSet("events", flag.ExitOnError)
	tail := fs.Int("tail", 50, "Number of recent lines to show")
	follow := fs.Bool("f", false, "Follow mode (like tail -f)")
	var filter eventFilter
	fs.StringVar(&filter.kind, "kind", "", "Filter by event kind prefix (e.g. 'search')")
	fs.StringVar(&filter.level, "level", "", "Minimum level: debug, info, warn, error")
	fs.StringVar(&filter.comp, "comp", "", "Filter by component name")
	fs.StringVar(&filter.qid, "qid", "", "Filter by query ID prefix")
	fs.StringVar(&filter.session, "session", "", "Filter by session ID prefix")
	rawJSON := fs.Bool("json", false, "Output raw JSON lines")
	fs.Parse(os.Args[1:])

	logPath := loadConfig().EventsPath()

	f, err := os.Open(logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		fmt.Fprintf(os.Stderr, "  Event log not found at %s\n", logPath)
		fmt.Fprintf(os.Stderr, "  Run bookscout first to generate events.\n")
		os.Exit(1)
	}
	defer f.Close()

	show := func(ev eventRecord, raw []byte) {
		if *rawJSON {
			fmt.Println(string(raw))
			return
		}
		fmt.Println(formatEvent(ev))
	}

	for _, l := range readTailLines(f, *tail, filter.match) {
		show(l.ev, l.raw)
	}
	if !*follow {
		return
	}

	// Poll for appended lines
	reader := bufio.NewReader(f)
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			if err == io.EOF {
				time.Sleep(100 * time.Millisecond)
				continue
			}
			return
		}
		line = trimLine(line)
		if len(line) == 0 {
			continue
		}
		var ev eventRecord
		if json.Unmarshal(line, &ev) != nil {
			continue
		}
		if filter.match(ev) {
			show(ev, line)
		}
	}
}

// formatEvent renders one event as a single human-readable line.
func formatEvent(ev eventRecord) string {
	ts := ev.Time.Format("15:04:05.000")
	lvl := strings.ToUpper(ev.Level)
	if lvl == "" {
		lvl = "?"
	}

	parts := []string{fmt.Sprintf("%s %-5s [%-11s] %-18s", ts, lvl, ev.Comp, ev.Kind)}

	if ev.Msg != "" {
		parts = append(parts, "- "+ev.Msg)
	}
	if ev.DurMs > 0 {
		parts = append(parts, fmt.Sprintf("(%.*fms)", durPrecision(ev.DurMs), ev.DurMs))
	}
	if ev.Query != "" {
		parts = append(parts, fmt.Sprintf("q=%q", ev.Query))
	}
	if ev.Page > 0 {
		parts = append(parts, fmt.Sprintf("p=%d", ev.Page))
	}
	if ev.Count > 0 {
		parts = append(parts, fmt.Sprintf("n=%d", ev.Count))
	}
	if ev.Total > 0 {
		parts = append(parts, fmt.Sprintf("total=%d", ev.Total))
	}
	if ev.BookID != "" {
		parts = append(parts, "book="+ev.BookID)
	}
	if ev.QueryID != "" {
		qid := ev.QueryID
		if len(qid) > 8 {
			qid = qid[:8]
		}
		parts = append(parts, "qid="+qid)
	}
	if ev.Err != "" {
		parts = append(parts, "err="+ev.Err)
	}

	return strings.Join(parts, " ")
}

type parsedLine struct {
	ev  eventRecord
	raw []byte
}

// readTailLines reads r and returns the last n lines matching the filter.
func readTailLines(r io.Reader, n int, match func(eventRecord) bool) []parsedLine {
	if n <= 0 {
		return nil
	}
	scanner := bufio.NewScanner(r)
	// Allow large lines (some events may have big Extra maps)
	scanner.Buffer(make([]byte, 0, 64*1024), 256*1024)

	ring := make([]parsedLine, 0, n)
	for scanner.Scan() {
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var ev eventRecord
		if json.Unmarshal(raw, &ev) != nil {
			continue
		}
		if !match(ev) {
			continue
		}
		// Make a copy of raw since scanner reuses the buffer
		rawCopy := make([]byte, len(raw))
		copy(rawCopy, raw)

		if len(ring) < n {
			ring = append(ring, parsedLine{ev: ev, raw: rawCopy})
		} else {
			copy(ring, ring[1:])
			ring[n-1] = parsedLine{ev: ev, raw: rawCopy}
		}
	}

	return ring
}

func trimLine(b []byte) []byte {
	for len(b) > 0 && (b[len(b)-1] == '\n' || b[len(b)-1] == '\r') {
		b = b[:len(b)-1]
	}
	return b
}

func durPrecision(ms float64) int {
	if ms >= 100 {
		return 0
	}
	if ms >= 1 {
		return 1
	}
	return 2
}
