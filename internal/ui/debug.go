package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/abelbrown/bookscout/internal/otel"
	"github.com/abelbrown/bookscout/internal/search"
)

// debugPanelChrome is the number of terminal lines consumed by DebugPanel's
// border (top + bottom = 2) and vertical padding (top + bottom = 2).
const debugPanelChrome = 4

// debugOverlay renders pipeline stats, the trail of the in-flight query (if
// inflight is set) and recent events. Returns "" if ring is nil.
func debugOverlay(s Styles, ring *otel.RingBuffer, phase search.Phase, inflight string, session search.Session, width, height int) string {
	if ring == nil {
		return ""
	}

	stats := ring.Stats()
	recent := ring.Last(20)

	var lines []string
	lines = append(lines, s.DebugHeader.Render("Pipeline Stats"))
	lines = append(lines, fmt.Sprintf("  Phase:      %s  page %d  items %d/%d  more=%v",
		phase, session.CurrentPage, len(session.Items), session.TotalAvailable, session.HasMore))
	lines = append(lines, fmt.Sprintf("  Fetches:    %d complete, %d errors, %d skipped",
		stats[otel.KindFetchComplete], stats[otel.KindFetchError], stats[otel.KindFetchSkipped]))
	lines = append(lines, fmt.Sprintf("  Searches:   %d dispatched, %d settled, %d discarded, %d suppressed",
		stats[otel.KindSearchDispatch], stats[otel.KindSearchSettle], stats[otel.KindSearchDiscard], stats[otel.KindSearchSuppress]))
	lines = append(lines, fmt.Sprintf("  Scroll:     %d load-more", stats[otel.KindLoadMore]))
	lines = append(lines, fmt.Sprintf("  Details:    %d complete, %d errors",
		stats[otel.KindDetailComplete], stats[otel.KindDetailError]))
	lines = append(lines, fmt.Sprintf("  Buffer:     %d / %d events", ring.Len(), ring.Cap()))
	lines = append(lines, "")

	if inflight != "" {
		lines = append(lines, s.DebugHeader.Render("In Flight  qid:"+shortQID(inflight)))
		for _, e := range ring.ByQueryID(inflight) {
			lines = append(lines, eventLine(e))
		}
		lines = append(lines, "")
	}

	lines = append(lines, s.DebugHeader.Render("Recent Events"))
	for _, e := range recent {
		lines = append(lines, eventLine(e))
	}

	maxHeight := height - debugPanelChrome
	if maxHeight < 1 {
		maxHeight = 1
	}
	if len(lines) > maxHeight {
		lines = lines[:maxHeight]
	}

	panelWidth := 96
	if panelWidth > width-4 {
		panelWidth = width - 4
	}
	if panelWidth < 20 {
		panelWidth = 20
	}
	return s.DebugPanel.Width(panelWidth).Render(strings.Join(lines, "\n"))
}

func eventLine(e otel.Event) string {
	line := fmt.Sprintf("  %6s  %-18s", formatAge(time.Since(e.Time)), string(e.Kind))
	if e.Query != "" {
		line += "  " + truncateRunes(fmt.Sprintf("%q", e.Query), 20)
	}
	if e.Page > 0 {
		line += fmt.Sprintf(" p%d", e.Page)
	}
	if e.Msg != "" {
		line += "  " + truncateRunes(e.Msg, 30)
	}
	if e.Err != "" {
		line += "  ERR:" + truncateRunes(e.Err, 30)
	}
	if e.QueryID != "" {
		line += "  qid:" + shortQID(e.QueryID)
	}
	return line
}

func shortQID(qid string) string {
	if len(qid) > 8 {
		return qid[:8]
	}
	return qid
}

// formatAge formats a duration as a compact human string.
// Negative durations from clock skew clamp to "0ms".
func formatAge(d time.Duration) string {
	if d < 0 {
		return "0ms"
	}
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return fmt.Sprintf("%.0fm", d.Minutes())
	}
}
