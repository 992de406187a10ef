package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/radaiko/gourmet-cache/internal/fetch"
	"github.com/radaiko/gourmet-cache/internal/model"
)

// BillingUpstream is a scripted in-memory billing source. Months not added
// to the script yield fetch.ErrNoHistory, ending iteration the way the
// real upstream does when its history window is exhausted.
//
// All methods are safe for concurrent use.
type BillingUpstream struct {
	mu     sync.Mutex
	months map[string]*model.BillingMonth
	errs   map[string]error
	calls  []string
}

// NewBillingUpstream creates an empty scripted upstream.
func NewBillingUpstream() *BillingUpstream {
	return &BillingUpstream{
		months: make(map[string]*model.BillingMonth),
		errs:   make(map[string]error),
	}
}

func monthKey(year int, month time.Month) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

// Add scripts a month the upstream will serve.
func (u *BillingUpstream) Add(m *model.BillingMonth) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.months[m.Key()] = m
}

// FailWith scripts a fetch failure for one month key ("YYYY-MM").
func (u *BillingUpstream) FailWith(key string, err error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.errs[key] = err
}

// Calls returns how many fetches were issued so far.
func (u *BillingUpstream) Calls() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.calls)
}

// CalledMonths returns the month keys fetched so far, in call order.
func (u *BillingUpstream) CalledMonths() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]string(nil), u.calls...)
}

// Source returns the fetch.BillingSource backed by this script.
func (u *BillingUpstream) Source() fetch.BillingSource {
	return func(_ context.Context, year int, month time.Month) (*model.BillingMonth, error) {
		u.mu.Lock()
		defer u.mu.Unlock()

		key := monthKey(year, month)
		u.calls = append(u.calls, key)

		if err, ok := u.errs[key]; ok {
			return nil, err
		}
		m, ok := u.months[key]
		if !ok {
			return nil, fetch.ErrNoHistory
		}
		return m, nil
	}
}

// MenuUpstream is a scripted in-memory menu source serving a fixed set of
// days, filtered to the requested window.
//
// All methods are safe for concurrent use.
type MenuUpstream struct {
	mu    sync.Mutex
	days  []model.Day
	err   error
	calls int
}

// NewMenuUpstream creates a scripted upstream serving the given days.
func NewMenuUpstream(days ...model.Day) *MenuUpstream {
	return &MenuUpstream{days: days}
}

// FailWith scripts every subsequent fetch to fail.
func (u *MenuUpstream) FailWith(err error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.err = err
}

// Calls returns how many fetches were issued so far.
func (u *MenuUpstream) Calls() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.calls
}

// Source returns the fetch.MenuSource backed by this script.
func (u *MenuUpstream) Source() fetch.MenuSource {
	return func(_ context.Context, start, end time.Time) ([]model.Day, error) {
		u.mu.Lock()
		defer u.mu.Unlock()

		u.calls++
		if u.err != nil {
			return nil, u.err
		}

		var within []model.Day
		for _, d := range u.days {
			if !d.Date.Before(start) && d.Date.Before(end) {
				within = append(within, d)
			}
		}
		return within, nil
	}
}
