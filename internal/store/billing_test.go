package store

import (
	"context"
	"testing"
	"time"

	"github.com/radaiko/gourmet-cache/internal/model"
)

func TestInsertBillingMonth_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	month := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	want := createTestBillingMonth(month, 3)
	if err := s.InsertBillingMonth(ctx, want); err != nil {
		t.Fatalf("InsertBillingMonth() failed: %v", err)
	}

	got, err := s.ReadBillingMonth(ctx, month.AddDate(0, 0, 14))
	if err != nil {
		t.Fatalf("ReadBillingMonth() failed: %v", err)
	}
	if got == nil {
		t.Fatal("ReadBillingMonth() returned nil for a cached month")
	}

	if !got.Month.Equal(want.Month) {
		t.Errorf("month = %v, want %v", got.Month, want.Month)
	}
	if len(got.Transactions) != len(want.Transactions) {
		t.Fatalf("transaction count = %d, want %d", len(got.Transactions), len(want.Transactions))
	}
	if got.Total() != want.Total() {
		t.Errorf("total = %d, want %d", got.Total(), want.Total())
	}
	for _, kind := range []model.TransactionKind{model.KindGourmet, model.KindCafePlusCo} {
		if got.TotalFor(kind) != want.TotalFor(kind) {
			t.Errorf("total for %s = %d, want %d", kind, got.TotalFor(kind), want.TotalFor(kind))
		}
		if got.CountFor(kind) != want.CountFor(kind) {
			t.Errorf("count for %s = %d, want %d", kind, got.CountFor(kind), want.CountFor(kind))
		}
	}

	for i := range want.Transactions {
		wt, gt := want.Transactions[i], got.Transactions[i]
		if gt.Hash != wt.Hash {
			t.Errorf("transaction %d hash = %q, want %q", i, gt.Hash, wt.Hash)
		}
		if gt.Kind != wt.Kind {
			t.Errorf("transaction %d kind = %q, want %q", i, gt.Kind, wt.Kind)
		}
		if !gt.Date.Equal(wt.Date) {
			t.Errorf("transaction %d date = %v, want %v", i, gt.Date, wt.Date)
		}
		if len(gt.Positions) != len(wt.Positions) {
			t.Fatalf("transaction %d position count = %d, want %d", i, len(gt.Positions), len(wt.Positions))
		}
		for j := range wt.Positions {
			wp, gp := wt.Positions[j], gt.Positions[j]
			if gp.Name != wp.Name || gp.Quantity != wp.Quantity ||
				gp.UnitPrice != wp.UnitPrice || gp.Support != wp.Support {
				t.Errorf("transaction %d position %d = %+v, want %+v", i, j, gp, wp)
			}
			if gp.TransactionID != gt.ID {
				t.Errorf("position %d back-reference = %d, want %d", j, gp.TransactionID, gt.ID)
			}
		}
	}
}

func TestInsertBillingMonth_IdempotentByHash(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	month := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)
	m := createTestBillingMonth(month, 4)

	if err := s.InsertBillingMonth(ctx, m); err != nil {
		t.Fatalf("first InsertBillingMonth() failed: %v", err)
	}
	transactions := countRows(t, s, "billing_transactions")
	positions := countRows(t, s, "billing_positions")

	// Re-inserting the same transactions must be a no-op.
	if err := s.InsertBillingMonth(ctx, m); err != nil {
		t.Fatalf("second InsertBillingMonth() failed: %v", err)
	}
	if got := countRows(t, s, "billing_transactions"); got != transactions {
		t.Errorf("transaction rows after re-insert = %d, want %d", got, transactions)
	}
	if got := countRows(t, s, "billing_positions"); got != positions {
		t.Errorf("position rows after re-insert = %d, want %d", got, positions)
	}
}

func TestReadBillingMonth_NeverCached(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	got, err := s.ReadBillingMonth(ctx, time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ReadBillingMonth() failed: %v", err)
	}
	if got != nil {
		t.Errorf("ReadBillingMonth() = %+v, want nil", got)
	}
}

func TestReadBillingMonths_MostRecentFirst(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	// Insert out of order on purpose.
	months := []time.Time{
		time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
	}
	for _, month := range months {
		if err := s.InsertBillingMonth(ctx, createTestBillingMonth(month, 2)); err != nil {
			t.Fatalf("InsertBillingMonth(%v) failed: %v", month, err)
		}
	}

	read, err := s.ReadBillingMonths(ctx)
	if err != nil {
		t.Fatalf("ReadBillingMonths() failed: %v", err)
	}

	wantKeys := []string{"2026-04", "2026-03", "2026-02"}
	if len(read) != len(wantKeys) {
		t.Fatalf("month count = %d, want %d", len(read), len(wantKeys))
	}
	for i, want := range wantKeys {
		if got := read[i].Key(); got != want {
			t.Errorf("read[%d].Key() = %q, want %q", i, got, want)
		}
	}
}

func TestLastTransactionDate(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	got, err := s.LastTransactionDate(ctx)
	if err != nil {
		t.Fatalf("LastTransactionDate() failed: %v", err)
	}
	if !got.IsZero() {
		t.Errorf("LastTransactionDate() on empty store = %v, want zero", got)
	}

	month := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	m := createTestBillingMonth(month, 3)
	if err := s.InsertBillingMonth(ctx, m); err != nil {
		t.Fatalf("InsertBillingMonth() failed: %v", err)
	}

	got, err = s.LastTransactionDate(ctx)
	if err != nil {
		t.Fatalf("LastTransactionDate() failed: %v", err)
	}
	want := m.Transactions[len(m.Transactions)-1].Date
	if !got.Equal(want) {
		t.Errorf("LastTransactionDate() = %v, want %v", got, want)
	}
}
