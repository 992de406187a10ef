package cache

import (
	"sync"

	"github.com/radaiko/gourmet-cache/internal/model"
)

// state holds the observable collections and the per-family loading flags
// behind one mutex. Collection accessors hand out copies so consumers can
// never mutate cache internals.
type state struct {
	mu             sync.RWMutex
	months         []*model.BillingMonth
	days           []model.Day
	billingLoading bool
	ordersLoading  bool
}

func newState() *state {
	return &state{}
}

func (s *state) billingMonths() []*model.BillingMonth {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*model.BillingMonth(nil), s.months...)
}

func (s *state) setBillingMonths(months []*model.BillingMonth) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.months = months
}

func (s *state) orderDays() []model.Day {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Day(nil), s.days...)
}

func (s *state) setOrderDays(days []model.Day) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.days = days
}

func (s *state) loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.billingLoading || s.ordersLoading
}

// setLoading flips one family's flag and returns the combined loading
// state before and after, so the caller can detect transitions.
func (s *state) setLoading(family Family, on bool) (prev, cur bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev = s.billingLoading || s.ordersLoading
	switch family {
	case FamilyBilling:
		s.billingLoading = on
	case FamilyOrders:
		s.ordersLoading = on
	}
	cur = s.billingLoading || s.ordersLoading
	return prev, cur
}
