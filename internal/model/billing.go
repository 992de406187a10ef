package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Cents is a money amount in euro cents. Integer cents keep arithmetic and
// database round-trips exact.
type Cents int64

// Euros returns the amount as a floating point euro value for display.
func (c Cents) Euros() float64 {
	return float64(c) / 100
}

// TransactionKind identifies which of the two billing sources produced a
// transaction.
type TransactionKind string

const (
	// KindGourmet marks transactions billed by the Gourmet menu service.
	KindGourmet TransactionKind = "gourmet"
	// KindCafePlusCo marks transactions billed by the Cafe+Co vending service.
	KindCafePlusCo TransactionKind = "cafe_plus_co"
)

// Position is one line item of a billed transaction. TransactionID is the
// row id of the owning transaction; the back-reference is a plain
// identifier, never a live object reference.
type Position struct {
	Name          string
	Quantity      int
	UnitPrice     Cents
	Support       Cents
	TransactionID int64
}

// Total is the effective price of the position: (unit price - subsidy) *
// quantity.
func (p Position) Total() Cents {
	return (p.UnitPrice - p.Support) * Cents(p.Quantity)
}

// Transaction is one discrete billed event. Hash is the authoritative
// de-duplication key: re-fetching the same remote transaction must not
// create a duplicate row.
type Transaction struct {
	ID        int64
	Kind      TransactionKind
	Date      time.Time
	Hash      string
	Positions []Position
}

// ComputeHash derives the content hash from the transaction fields and all
// of its positions. The hash is stable across fetches of the same remote
// transaction.
func (t *Transaction) ComputeHash() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s|%s", t.Kind, t.Date.UTC().Format(time.RFC3339))
	for _, p := range t.Positions {
		fmt.Fprintf(&b, "|%s|%d|%d|%d", p.Name, p.Quantity, p.UnitPrice, p.Support)
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// Total sums all position totals of the transaction.
func (t *Transaction) Total() Cents {
	var total Cents
	for _, p := range t.Positions {
		total += p.Total()
	}
	return total
}

// BillingMonth aggregates all billed transactions of one calendar month.
// Month is normalized to the first of the month, UTC.
type BillingMonth struct {
	Month        time.Time
	Transactions []Transaction
}

// MonthOf normalizes an arbitrary time to its first-of-month UTC key.
func MonthOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// Key returns the month key in "YYYY-MM" form.
func (m *BillingMonth) Key() string {
	return m.Month.Format("2006-01")
}

// Total is the sum over all transactions in the month.
func (m *BillingMonth) Total() Cents {
	var total Cents
	for i := range m.Transactions {
		total += m.Transactions[i].Total()
	}
	return total
}

// TotalFor sums the transactions of one billing source.
func (m *BillingMonth) TotalFor(kind TransactionKind) Cents {
	var total Cents
	for i := range m.Transactions {
		if m.Transactions[i].Kind == kind {
			total += m.Transactions[i].Total()
		}
	}
	return total
}

// CountFor counts the transactions of one billing source.
func (m *BillingMonth) CountFor(kind TransactionKind) int {
	count := 0
	for i := range m.Transactions {
		if m.Transactions[i].Kind == kind {
			count++
		}
	}
	return count
}
