package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/radaiko/gourmet-cache/internal/model"
)

// createTestStore creates a store backed by a temp-dir database file.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	s := New(filepath.Join(t.TempDir(), "cache.db"))
	if err := s.EnsureInitialized(); err != nil {
		t.Fatalf("EnsureInitialized() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestBillingMonth builds a month with the given number of
// transactions, each carrying two positions.
func createTestBillingMonth(month time.Time, transactions int) *model.BillingMonth {
	first := model.MonthOf(month)
	m := &model.BillingMonth{Month: first}
	for i := 0; i < transactions; i++ {
		kind := model.KindGourmet
		if i%2 == 1 {
			kind = model.KindCafePlusCo
		}
		trans := model.Transaction{
			Kind: kind,
			Date: first.AddDate(0, 0, i).Add(12 * time.Hour),
			Positions: []model.Position{
				{Name: "Main dish", Quantity: 1, UnitPrice: 850, Support: 200},
				{Name: "Drink", Quantity: 2, UnitPrice: 120},
			},
		}
		trans.Hash = trans.ComputeHash()
		m.Transactions = append(m.Transactions, trans)
	}
	return m
}

// createTestDay builds a day with all four slots populated.
func createTestDay(date time.Time) model.Day {
	d := model.Day{Date: model.DateOf(date)}
	d.SetSlot(&model.Menu{Slot: model.SlotMenu1, Title: "Schnitzel", Allergens: "AC", Price: 850, Date: d.Date})
	d.SetSlot(&model.Menu{Slot: model.SlotMenu2, Title: "Pasta", Allergens: "AG", Price: 700, Date: d.Date})
	d.SetSlot(&model.Menu{Slot: model.SlotMenu3, Title: "Stir Fry", Allergens: "F", Price: 750, Date: d.Date})
	d.SetSlot(&model.Menu{Slot: model.SlotSoupSalad, Title: "Tomato Soup", Allergens: "G", Price: 600, Date: d.Date})
	return d
}

func countRows(t *testing.T, s *Store, table string) int {
	t.Helper()
	db, err := s.conn()
	if err != nil {
		t.Fatalf("conn() failed: %v", err)
	}
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
		t.Fatalf("count %s failed: %v", table, err)
	}
	return count
}
