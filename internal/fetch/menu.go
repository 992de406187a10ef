package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/radaiko/gourmet-cache/internal/model"
	"github.com/radaiko/gourmet-cache/internal/store"
)

// MenuSource fetches the menu days within the half-open range [start, end)
// from upstream.
type MenuSource func(ctx context.Context, start, end time.Time) ([]model.Day, error)

// MenuFetcher refreshes menu data by date window. Reads for display always
// go through the store's range read, so the cache never tracks raw upstream
// responses.
type MenuFetcher struct {
	store  *store.Store
	source MenuSource
}

// NewMenuFetcher creates a fetcher over the given store and upstream
// source.
func NewMenuFetcher(st *store.Store, source MenuSource) *MenuFetcher {
	return &MenuFetcher{store: st, source: source}
}

// Refresh fetches the requested window from upstream and upserts it into
// the store. Existing (date, slot) rows inside the window are overwritten.
func (f *MenuFetcher) Refresh(ctx context.Context, start, end time.Time) error {
	days, err := f.source(ctx, start, end)
	if err != nil {
		if IsUpstreamError(err) {
			return err
		}
		op := fmt.Sprintf("menu days %s..%s", start.Format("2006-01-02"), end.Format("2006-01-02"))
		return &UpstreamError{Op: op, Err: err}
	}
	return f.store.UpsertDays(ctx, days)
}

// Days reads the cached days within [start, end), ordered by date.
func (f *MenuFetcher) Days(ctx context.Context, start, end time.Time) ([]model.Day, error) {
	return f.store.ReadDays(ctx, start, end)
}

// DefaultOrderWindow is the standard display window for order days: from
// today until the Friday of the week after next.
func DefaultOrderWindow(now time.Time) (start, end time.Time) {
	start = model.DateOf(now)
	days := 14 + (5-int(start.Weekday())+7)%7
	return start, start.AddDate(0, 0, days)
}
