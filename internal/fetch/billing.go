package fetch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/radaiko/gourmet-cache/internal/model"
	"github.com/radaiko/gourmet-cache/internal/store"
)

// BillingSource fetches one calendar month of billing data from upstream.
// It returns ErrNoHistory when the service has no data at or before the
// requested month, which ends iteration.
type BillingSource func(ctx context.Context, year int, month time.Month) (*model.BillingMonth, error)

// Freshness decides whether a persisted month can be yielded without a
// network call. The merge policy is deliberately configurable: the upstream
// never marks rows stale, so staleness is a caller decision.
type Freshness func(m *model.BillingMonth, now time.Time) bool

// PreferPersisted treats every persisted month as fresh. This matches the
// behavior of always trusting the local cache once a month was fetched.
func PreferPersisted(*model.BillingMonth, time.Time) bool {
	return true
}

// RefetchCurrent treats every persisted month as fresh except the month
// containing now, which keeps the running month up to date while older,
// immutable months are never fetched twice.
func RefetchCurrent(m *model.BillingMonth, now time.Time) bool {
	return !m.Month.Equal(model.MonthOf(now))
}

// BillingFetcher lazily merges persisted billing months with upstream
// fetches.
type BillingFetcher struct {
	store  *store.Store
	source BillingSource
	fresh  Freshness
	now    func() time.Time
}

// BillingOption configures a BillingFetcher.
type BillingOption func(*BillingFetcher)

// WithFreshness overrides the default PreferPersisted merge policy.
func WithFreshness(fresh Freshness) BillingOption {
	return func(f *BillingFetcher) { f.fresh = fresh }
}

// WithClock overrides the wall clock. Used by tests to pin the current
// month.
func WithClock(now func() time.Time) BillingOption {
	return func(f *BillingFetcher) { f.now = now }
}

// NewBillingFetcher creates a fetcher over the given store and upstream
// source.
func NewBillingFetcher(st *store.Store, source BillingSource, opts ...BillingOption) *BillingFetcher {
	f := &BillingFetcher{
		store:  st,
		source: source,
		fresh:  PreferPersisted,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Months returns a lazy iterator over billing months, most recent first.
// Each call to Next resolves exactly one month, so a consumer can render
// the current month immediately while older months are still unresolved,
// and may stop early at any point without corrupting store state.
//
// Usage follows the sql.Rows idiom:
//
//	it := fetcher.Months(ctx)
//	for it.Next() {
//		render(it.Month())
//	}
//	if err := it.Err(); err != nil { ... }
func (f *BillingFetcher) Months(ctx context.Context) *MonthIterator {
	return &MonthIterator{
		ctx:     ctx,
		fetcher: f,
		cursor:  model.MonthOf(f.now()),
	}
}

// MonthIterator is the lazy sequence produced by BillingFetcher.Months.
// It is not safe for concurrent use; months are resolved strictly in
// most-recent-first order.
type MonthIterator struct {
	ctx     context.Context
	fetcher *BillingFetcher
	cursor  time.Time
	month   *model.BillingMonth
	err     error
	done    bool
}

// Next resolves the next month. It returns false when the upstream signals
// the end of history, when an error occurs, or when the context is
// canceled; check Err afterwards to distinguish exhaustion from failure.
func (it *MonthIterator) Next() bool {
	if it.done {
		return false
	}
	if err := it.ctx.Err(); err != nil {
		it.err = err
		it.done = true
		return false
	}

	month, err := it.fetcher.resolve(it.ctx, it.cursor)
	if errors.Is(err, ErrNoHistory) {
		it.done = true
		return false
	}
	if err != nil {
		it.err = err
		it.done = true
		return false
	}

	it.month = month
	it.cursor = it.cursor.AddDate(0, -1, 0)
	return true
}

// Month returns the month resolved by the last successful call to Next.
func (it *MonthIterator) Month() *model.BillingMonth {
	return it.month
}

// Err returns the error that ended iteration, if any. Months yielded before
// the failure remain valid; retrying is the caller's responsibility.
func (it *MonthIterator) Err() error {
	return it.err
}

// resolve produces one month: persisted data is preferred when the
// freshness policy accepts it, otherwise the month is fetched from
// upstream and written back to the store before being returned. The store
// write commits before the month is yielded, so breaking out of iteration
// never loses fetched data.
func (f *BillingFetcher) resolve(ctx context.Context, month time.Time) (*model.BillingMonth, error) {
	cached, err := f.store.ReadBillingMonth(ctx, month)
	if err != nil {
		return nil, err
	}
	if cached != nil && f.fresh(cached, f.now()) {
		return cached, nil
	}

	fetched, err := f.source(ctx, month.Year(), month.Month())
	if err != nil {
		if errors.Is(err, ErrNoHistory) {
			if cached != nil {
				// The upstream window ended but a stale-marked month is
				// still persisted locally; keep serving it.
				return cached, nil
			}
			return nil, ErrNoHistory
		}
		if IsUpstreamError(err) {
			return nil, err
		}
		return nil, &UpstreamError{Op: fmt.Sprintf("billing month %q", month.Format("2006-01")), Err: err}
	}

	if err := f.store.InsertBillingMonth(ctx, fetched); err != nil {
		return nil, err
	}

	// Re-read so the yielded aggregate reflects the hash-deduplicated merge
	// of upstream data with previously persisted rows.
	merged, err := f.store.ReadBillingMonth(ctx, month)
	if err != nil {
		return nil, err
	}
	if merged == nil {
		// Upstream returned an empty month; yield it as-is.
		return &model.BillingMonth{Month: model.MonthOf(month)}, nil
	}
	return merged, nil
}
