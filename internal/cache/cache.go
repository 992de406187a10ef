// Package cache is the in-process source of truth consumed by UI layers.
//
// It holds observable collections of fully materialized billing months and
// order days, orchestrates the incremental fetchers, coalesces concurrent
// refresh requests into a single in-flight operation per family, and
// publishes loading-state, data-changed and error notifications.
//
// The cache is an explicit context object constructed once at process
// start and injected into consumers; there is no package-level singleton.
package cache

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/radaiko/gourmet-cache/internal/fetch"
	"github.com/radaiko/gourmet-cache/internal/model"
	"github.com/radaiko/gourmet-cache/internal/store"
)

// Family identifies one of the two cached data families.
type Family string

const (
	// FamilyBilling is the monthly billing statement family.
	FamilyBilling Family = "billing"
	// FamilyOrders is the daily menu/order family.
	FamilyOrders Family = "orders"
)

// Cache mediates between the persistent store, the incremental fetchers
// and UI consumers. Collections are mutated only by Initialize and the
// refresh operations, never by consumers (single-writer invariant).
type Cache struct {
	store   *store.Store
	billing *fetch.BillingFetcher
	menus   *fetch.MenuFetcher
	log     logrus.FieldLogger
	now     func() time.Time

	// flight coalesces concurrent initialization/refresh calls per key.
	flight singleflight.Group

	initialized atomic.Bool

	state  *state
	events *notifier
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock overrides the wall clock used to derive the order-day window.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New creates a cache over the given store and fetchers.
func New(st *store.Store, billing *fetch.BillingFetcher, menus *fetch.MenuFetcher, log logrus.FieldLogger, opts ...Option) *Cache {
	if log == nil {
		log = logrus.StandardLogger()
	}
	c := &Cache{
		store:   st,
		billing: billing,
		menus:   menus,
		log:     log,
		now:     time.Now,
		state:   newState(),
		events:  newNotifier(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Initialize loads the persisted billing months and order days into the
// observable collections without any network access. It is idempotent:
// concurrent callers share one initialization run, and a later call after
// a failure retries.
func (c *Cache) Initialize(ctx context.Context) error {
	if c.initialized.Load() {
		return nil
	}

	_, err, _ := c.flight.Do("initialize", func() (interface{}, error) {
		if c.initialized.Load() {
			return nil, nil
		}
		c.log.Debug("initializing cache from store")

		months, err := c.store.ReadBillingMonths(ctx)
		if err != nil {
			return nil, err
		}

		start, end := fetch.DefaultOrderWindow(c.now())
		days, err := c.store.ReadDays(ctx, start, end)
		if err != nil {
			return nil, err
		}

		c.state.setBillingMonths(months)
		c.state.setOrderDays(days)
		c.initialized.Store(true)

		c.events.notifyData(FamilyBilling)
		c.events.notifyData(FamilyOrders)
		c.log.WithFields(logrus.Fields{
			"billing_months": len(months),
			"order_days":     len(days),
		}).Debug("cache initialized")
		return nil, nil
	})
	return err
}

// BillingMonths returns a snapshot of the cached billing months, most
// recent first.
func (c *Cache) BillingMonths() []*model.BillingMonth {
	return c.state.billingMonths()
}

// OrderDays returns a snapshot of the cached order days, ascending by
// date.
func (c *Cache) OrderDays() []model.Day {
	return c.state.orderDays()
}

// IsLoading reports whether a refresh of either family is in flight.
func (c *Cache) IsLoading() bool {
	return c.state.loading()
}

// RefreshBillingMonths drives a fresh pull through the billing fetcher and
// replaces the observable collection. At most one billing refresh runs at
// a time: a call issued while one is in flight awaits the running
// operation and observes its result.
//
// On failure the previously cached collection stays untouched, the loading
// state resets to idle, and the error is published on the error channel as
// well as returned.
func (c *Cache) RefreshBillingMonths(ctx context.Context) error {
	_, err, _ := c.flight.Do("refresh-billing", func() (interface{}, error) {
		c.setLoading(FamilyBilling, true)
		defer c.setLoading(FamilyBilling, false)

		var months []*model.BillingMonth
		it := c.billing.Months(ctx)
		for it.Next() {
			months = append(months, it.Month())
		}
		if err := it.Err(); err != nil {
			return nil, err
		}

		c.state.setBillingMonths(months)
		c.events.notifyData(FamilyBilling)
		c.log.WithField("months", len(months)).Debug("billing refresh finished")
		return nil, nil
	})
	if err != nil {
		c.reportError(FamilyBilling, err)
	}
	return err
}

// RefreshOrderDays refreshes the default order window through the menu
// fetcher and replaces the observable collection. The same single-flight
// and failure semantics as RefreshBillingMonths apply.
func (c *Cache) RefreshOrderDays(ctx context.Context) error {
	_, err, _ := c.flight.Do("refresh-orders", func() (interface{}, error) {
		c.setLoading(FamilyOrders, true)
		defer c.setLoading(FamilyOrders, false)

		start, end := fetch.DefaultOrderWindow(c.now())
		if err := c.menus.Refresh(ctx, start, end); err != nil {
			return nil, err
		}

		days, err := c.menus.Days(ctx, start, end)
		if err != nil {
			return nil, err
		}

		c.state.setOrderDays(days)
		c.events.notifyData(FamilyOrders)
		c.log.WithField("days", len(days)).Debug("order refresh finished")
		return nil, nil
	})
	if err != nil {
		c.reportError(FamilyOrders, err)
	}
	return err
}

// OnLoadingChanged subscribes to the combined loading state. The callback
// fires on every transition between idle and loading. The returned
// function cancels the subscription.
func (c *Cache) OnLoadingChanged(fn func(loading bool)) (cancel func()) {
	return c.events.onLoading(fn)
}

// OnDataChanged subscribes to collection mutations. The callback fires on
// every mutation of either family's collection, with no coalescing.
func (c *Cache) OnDataChanged(fn func(Family)) (cancel func()) {
	return c.events.onData(fn)
}

// OnError subscribes to non-fatal refresh errors. Failures inside the
// fetchers never escape to UI code as panics; they arrive here.
func (c *Cache) OnError(fn func(error)) (cancel func()) {
	return c.events.onError(fn)
}

// setLoading updates one family's loading flag and publishes the combined
// state when it transitions.
func (c *Cache) setLoading(family Family, on bool) {
	prev, cur := c.state.setLoading(family, on)
	if prev != cur {
		c.events.notifyLoading(cur)
	}
	c.log.WithFields(logrus.Fields{"family": family, "loading": on}).Debug("loading state changed")
}

func (c *Cache) reportError(family Family, err error) {
	c.log.WithError(err).WithField("family", family).Error("refresh failed")
	c.events.notifyError(err)
}
