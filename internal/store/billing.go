package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/radaiko/gourmet-cache/internal/model"
)

// timeFormat is the canonical column encoding for timestamps. UTC RFC 3339
// strings sort lexically in chronological order, so range scans on the date
// column stay correct without any casting.
const timeFormat = time.RFC3339

func encodeTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func decodeTime(s string) (time.Time, error) {
	return time.Parse(timeFormat, s)
}

// InsertBillingMonth upserts a month and its nested transactions and
// positions. Transactions are deduplicated by content hash: re-inserting a
// transaction whose hash is already present is a no-op, not a duplicate.
//
// The whole write runs in a single database transaction, so a failure never
// leaves partial transaction+position rows behind.
func (s *Store) InsertBillingMonth(ctx context.Context, m *model.BillingMonth) error {
	db, err := s.conn()
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return &StorageError{Op: "insert billing month: begin tx", Err: err}
	}
	defer tx.Rollback() // No-op if committed

	for i := range m.Transactions {
		trans := &m.Transactions[i]
		hash := trans.Hash
		if hash == "" {
			hash = trans.ComputeHash()
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO billing_transactions (type, date, hash)
			VALUES (?, ?, ?)
			ON CONFLICT(hash) DO NOTHING
		`, string(trans.Kind), encodeTime(trans.Date), hash)
		if err != nil {
			return &StorageError{Op: "insert billing transaction", Err: err}
		}

		inserted, err := res.RowsAffected()
		if err != nil {
			return &StorageError{Op: "insert billing transaction", Err: err}
		}
		if inserted == 0 {
			// Hash already present: the transaction and its positions were
			// persisted by an earlier fetch.
			continue
		}

		transactionID, err := res.LastInsertId()
		if err != nil {
			return &StorageError{Op: "insert billing transaction", Err: err}
		}

		for _, pos := range trans.Positions {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO billing_positions (name, quantity, unit_price, support, transaction_id)
				VALUES (?, ?, ?, ?, ?)
			`, pos.Name, pos.Quantity, int64(pos.UnitPrice), int64(pos.Support), transactionID)
			if err != nil {
				return &StorageError{Op: "insert billing position", Err: err}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return &StorageError{Op: "insert billing month: commit", Err: err}
	}
	return nil
}

// ReadBillingMonth reconstructs the full month aggregate (transactions with
// their positions) for the month containing the given time. Returns nil if
// the month was never cached.
func (s *Store) ReadBillingMonth(ctx context.Context, month time.Time) (*model.BillingMonth, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	start := model.MonthOf(month)
	end := start.AddDate(0, 1, 0)

	rows, err := db.QueryContext(ctx, `
		SELECT id, type, date, hash
		FROM billing_transactions
		WHERE date >= ? AND date < ?
		ORDER BY date ASC, id ASC
	`, encodeTime(start), encodeTime(end))
	if err != nil {
		return nil, &StorageError{Op: "query billing transactions", Err: err}
	}

	transactions, err := scanTransactions(rows)
	if err != nil {
		return nil, err
	}
	if len(transactions) == 0 {
		return nil, nil
	}

	for i := range transactions {
		positions, err := s.readPositions(ctx, db, transactions[i].ID)
		if err != nil {
			return nil, err
		}
		transactions[i].Positions = positions
	}

	return &model.BillingMonth{Month: start, Transactions: transactions}, nil
}

// ReadBillingMonths returns every cached month as a full aggregate, most
// recent month first.
func (s *Store) ReadBillingMonths(ctx context.Context) ([]*model.BillingMonth, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT DISTINCT strftime('%Y-%m', date) AS month
		FROM billing_transactions
		ORDER BY month DESC
	`)
	if err != nil {
		return nil, &StorageError{Op: "query billing months", Err: err}
	}

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			rows.Close()
			return nil, &StorageError{Op: "scan billing month key", Err: err}
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, &StorageError{Op: "iterate billing months", Err: err}
	}
	rows.Close()

	months := make([]*model.BillingMonth, 0, len(keys))
	for _, key := range keys {
		first, err := time.Parse("2006-01", key)
		if err != nil {
			return nil, &StorageError{Op: "parse billing month key", Err: fmt.Errorf("month %q: %w", key, err)}
		}
		m, err := s.ReadBillingMonth(ctx, first)
		if err != nil {
			return nil, err
		}
		if m != nil {
			months = append(months, m)
		}
	}
	return months, nil
}

// LastTransactionDate returns the date of the most recent persisted billing
// transaction, or the zero time when nothing is cached yet.
func (s *Store) LastTransactionDate(ctx context.Context) (time.Time, error) {
	db, err := s.conn()
	if err != nil {
		return time.Time{}, err
	}

	var last sql.NullString
	err = db.QueryRowContext(ctx, `SELECT MAX(date) FROM billing_transactions`).Scan(&last)
	if err != nil {
		return time.Time{}, &StorageError{Op: "query last transaction date", Err: err}
	}
	if !last.Valid {
		return time.Time{}, nil
	}

	t, err := decodeTime(last.String)
	if err != nil {
		return time.Time{}, &StorageError{Op: "parse last transaction date", Err: err}
	}
	return t, nil
}

func scanTransactions(rows *sql.Rows) ([]model.Transaction, error) {
	defer rows.Close()

	var transactions []model.Transaction
	for rows.Next() {
		var (
			trans model.Transaction
			kind  string
			date  string
		)
		if err := rows.Scan(&trans.ID, &kind, &date, &trans.Hash); err != nil {
			return nil, &StorageError{Op: "scan billing transaction", Err: err}
		}

		parsed, err := decodeTime(date)
		if err != nil {
			return nil, &StorageError{Op: "parse billing transaction date", Err: err}
		}
		trans.Kind = model.TransactionKind(kind)
		trans.Date = parsed
		transactions = append(transactions, trans)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "iterate billing transactions", Err: err}
	}
	return transactions, nil
}

func (s *Store) readPositions(ctx context.Context, db *sql.DB, transactionID int64) ([]model.Position, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT name, quantity, unit_price, support
		FROM billing_positions
		WHERE transaction_id = ?
		ORDER BY id ASC
	`, transactionID)
	if err != nil {
		return nil, &StorageError{Op: "query billing positions", Err: err}
	}
	defer rows.Close()

	var positions []model.Position
	for rows.Next() {
		var (
			pos       model.Position
			unitPrice int64
			support   int64
		)
		if err := rows.Scan(&pos.Name, &pos.Quantity, &unitPrice, &support); err != nil {
			return nil, &StorageError{Op: "scan billing position", Err: err}
		}
		pos.UnitPrice = model.Cents(unitPrice)
		pos.Support = model.Cents(support)
		pos.TransactionID = transactionID
		positions = append(positions, pos)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "iterate billing positions", Err: err}
	}
	return positions, nil
}
