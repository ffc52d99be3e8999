// Package openlibrary is the HTTP client for the Open Library public API.
//
// Search fails soft: any transport, status or parse failure yields an empty
// page and is only logged. FetchDetail fails hard with a *DetailError so the
// detail view can show an error state.
package openlibrary

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/abelbrown/bookscout/internal/book"
	"github.com/abelbrown/bookscout/internal/logging"
	"github.com/abelbrown/bookscout/internal/otel"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	DefaultSearchURL      = "https://openlibrary.org/search.json"
	DefaultWorksURL       = "https://openlibrary.org/works"
	DefaultAuthorsURL     = "https://openlibrary.org/authors"
	DefaultCoversURL      = "https://covers.openlibrary.org/b/id"
	DefaultPlaceholderURL = "https://openlibrary.org/images/icons/avatar_book-sm.png"
	DefaultUserAgent      = "bookscout/0.1 (+https://github.com/abelbrown/bookscout)"
	DefaultPageSize       = 20

	maxBodyBytes = 4 << 20
	authorLimit  = 4
)

// CoverSize selects one of the pre-rendered cover sizes.
type CoverSize string

const (
	CoverSmall  CoverSize = "S"
	CoverMedium CoverSize = "M"
	CoverLarge  CoverSize = "L"
)

// Options configures a Client. Zero values fall back to the defaults above.
type Options struct {
	SearchURL      string
	WorksURL       string
	AuthorsURL     string
	CoversURL      string
	PlaceholderURL string
	UserAgent      string
	RPS            float64 // <= 0 means unlimited
	Timeout        time.Duration
	Events         otel.Emitter
}

// Client talks to Open Library. Safe for concurrent use.
type Client struct {
	httpClient     *http.Client
	userAgent      string
	searchURL      string
	worksURL       string
	authorsURL     string
	coversURL      string
	placeholderURL string
	limiter        *rate.Limiter
	events         otel.Emitter
}

// NewClient creates a client from opts.
func NewClient(opts Options) *Client {
	c := &Client{
		httpClient:     &http.Client{Timeout: 15 * time.Second},
		userAgent:      or(opts.UserAgent, DefaultUserAgent),
		searchURL:      or(opts.SearchURL, DefaultSearchURL),
		worksURL:       strings.TrimRight(or(opts.WorksURL, DefaultWorksURL), "/"),
		authorsURL:     strings.TrimRight(or(opts.AuthorsURL, DefaultAuthorsURL), "/"),
		coversURL:      strings.TrimRight(or(opts.CoversURL, DefaultCoversURL), "/"),
		placeholderURL: or(opts.PlaceholderURL, DefaultPlaceholderURL),
		limiter:        rate.NewLimiter(rate.Inf, 1),
		events:         opts.Events,
	}
	if opts.Timeout > 0 {
		c.httpClient.Timeout = opts.Timeout
	}
	if opts.RPS > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.RPS), 1)
	}
	return c
}

func or(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// PageSize is the fixed number of items requested per page.
func (c *Client) PageSize() int {
	return DefaultPageSize
}

// SearchURL builds the search request URL for criteria and page. Returns ""
// for a blank query.
func (c *Client) SearchURL(criteria book.Criteria, page int) string {
	if criteria.Blank() {
		return ""
	}
	if page < 1 {
		page = 1
	}
	q := url.Values{}
	q.Set("q", strings.TrimSpace(criteria.Query))
	q.Set("limit", strconv.Itoa(DefaultPageSize))
	q.Set("offset", strconv.Itoa((page-1)*DefaultPageSize))
	if a := strings.TrimSpace(criteria.Author); a != "" {
		q.Set("author", a)
	}
	if criteria.Year > 0 {
		q.Set("first_publish_year", strconv.Itoa(criteria.Year))
	}
	if s := strings.TrimSpace(criteria.Subject); s != "" {
		q.Set("subject", s)
	}
	return c.searchURL + "?" + q.Encode()
}

// Search fetches one page of results. It never returns an error: failures
// yield an empty page and are logged.
func (c *Client) Search(ctx context.Context, criteria book.Criteria, page int) book.ResultPage {
	if page < 1 {
		page = 1
	}
	qid := otel.QueryIDFrom(ctx)
	u := c.SearchURL(criteria, page)
	if u == "" {
		otel.Emit(c.events, otel.Event{
			Level: otel.LevelDebug, Kind: otel.KindFetchSkipped, Comp: "openlibrary",
			QueryID: qid, Page: page, Msg: "blank query",
		})
		return book.EmptyPage(page)
	}

	otel.Emit(c.events, otel.Event{
		Level: otel.LevelInfo, Kind: otel.KindFetchStart, Comp: "openlibrary",
		QueryID: qid, Page: page, Query: criteria.Query,
	})
	start := time.Now()

	var res searchResponse
	if _, err := c.getJSON(ctx, u, &res); err != nil {
		if !errors.Is(err, context.Canceled) {
			logging.Warn("search failed", "query", criteria.Query, "page", page, "err", err)
		}
		otel.Emit(c.events, otel.Event{
			Level: otel.LevelWarn, Kind: otel.KindFetchError, Comp: "openlibrary",
			QueryID: qid, Page: page, Query: criteria.Query, Dur: time.Since(start), Err: err.Error(),
		})
		return book.EmptyPage(page)
	}

	out := book.ResultPage{
		Items:          make([]book.Summary, 0, len(res.Docs)),
		TotalAvailable: max(res.NumFound, 0),
		Page:           page,
	}
	for _, d := range res.Docs {
		out.Items = append(out.Items, d.summary())
	}

	otel.Emit(c.events, otel.Event{
		Level: otel.LevelInfo, Kind: otel.KindFetchComplete, Comp: "openlibrary",
		QueryID: qid, Page: page, Query: criteria.Query, Dur: time.Since(start),
		Count: len(out.Items), Total: out.TotalAvailable,
	})
	return out
}

// FetchDetail fetches a work by id ("OL45804W" or "/works/OL45804W").
// Failures are returned as *DetailError.
func (c *Client) FetchDetail(ctx context.Context, id string) (book.Detail, error) {
	id = WorkID(id)
	if id == "" {
		return book.Detail{}, &DetailError{ID: id, Err: errors.New("empty work id")}
	}

	otel.Emit(c.events, otel.Event{
		Level: otel.LevelInfo, Kind: otel.KindDetailStart, Comp: "openlibrary", BookID: id,
	})
	start := time.Now()

	var res workResponse
	status, err := c.getJSON(ctx, c.worksURL+"/"+url.PathEscape(id)+".json", &res)
	if err != nil {
		derr := &DetailError{ID: id, Status: status, Err: err}
		logging.Warn("detail fetch failed", "id", id, "status", status, "err", err)
		otel.Emit(c.events, otel.Event{
			Level: otel.LevelWarn, Kind: otel.KindDetailError, Comp: "openlibrary",
			BookID: id, Dur: time.Since(start), Err: derr.Error(),
		})
		return book.Detail{}, derr
	}

	d := res.detail(id)
	otel.Emit(c.events, otel.Event{
		Level: otel.LevelInfo, Kind: otel.KindDetailComplete, Comp: "openlibrary",
		BookID: id, Dur: time.Since(start),
	})
	return d, nil
}

// FetchAuthorName looks up an author's display name.
func (c *Client) FetchAuthorName(ctx context.Context, key string) (string, error) {
	id := AuthorID(key)
	if id == "" {
		return "", errors.New("empty author key")
	}
	var res authorResponse
	if _, err := c.getJSON(ctx, c.authorsURL+"/"+url.PathEscape(id)+".json", &res); err != nil {
		return "", fmt.Errorf("author %s: %w", id, err)
	}
	if res.Name != "" {
		return res.Name, nil
	}
	return res.PersonalName, nil
}

// ResolveAuthors looks up names for keys concurrently. Best effort: keys that
// fail or have no name are skipped. Order follows keys.
func (c *Client) ResolveAuthors(ctx context.Context, keys []string) []string {
	if len(keys) == 0 {
		return nil
	}
	names := make([]string, len(keys))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(authorLimit)
	for i, key := range keys {
		g.Go(func() error {
			name, err := c.FetchAuthorName(gctx, key)
			if err != nil {
				logging.Debug("author lookup failed", "key", key, "err", err)
				return nil
			}
			names[i] = name
			return nil
		})
	}
	_ = g.Wait()

	out := make([]string, 0, len(names))
	for _, n := range names {
		if n != "" {
			out = append(out, n)
		}
	}
	return out
}

// CoverURL returns the image URL for coverID. A non-positive id yields the
// placeholder.
func (c *Client) CoverURL(coverID int, size CoverSize) string {
	if coverID <= 0 {
		return c.placeholderURL
	}
	switch size {
	case CoverSmall, CoverMedium, CoverLarge:
	default:
		size = CoverMedium
	}
	return fmt.Sprintf("%s/%d-%s.jpg", c.coversURL, coverID, size)
}

// PlaceholderURL is shown when a book has no cover.
func (c *Client) PlaceholderURL() string {
	return c.placeholderURL
}

// getJSON GETs u and decodes the body into target. The returned status is 0
// when no response was received.
func (c *Client) getJSON(ctx context.Context, u string, target any) (int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return 0, fmt.Errorf("request cancelled: %w", ctx.Err())
		}
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return resp.StatusCode, &statusError{Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	if err := json.Unmarshal(body, target); err != nil {
		return resp.StatusCode, fmt.Errorf("parse response: %w", err)
	}
	return resp.StatusCode, nil
}
