package otel

import "context"

type queryIDKey struct{}

// WithQueryID returns a context carrying qid so leaf components can stamp
// their events with the dispatch that caused them.
func WithQueryID(ctx context.Context, qid string) context.Context {
	return context.WithValue(ctx, queryIDKey{}, qid)
}

// QueryIDFrom returns the query id carried by ctx, or "".
func QueryIDFrom(ctx context.Context) string {
	qid, _ := ctx.Value(queryIDKey{}).(string)
	return qid
}
