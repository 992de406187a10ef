package store

import (
	"context"
	"time"

	"github.com/radaiko/gourmet-cache/internal/model"
)

// dateFormat encodes Day keys as date-only strings.
const dateFormat = "2006-01-02"

func encodeDate(t time.Time) string {
	return t.UTC().Format(dateFormat)
}

// UpsertDays writes each day's menu slots. Existing (date, slot) rows are
// overwritten: menus change day to day and the freshest fetch wins.
func (s *Store) UpsertDays(ctx context.Context, days []model.Day) error {
	db, err := s.conn()
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return &StorageError{Op: "upsert days: begin tx", Err: err}
	}
	defer tx.Rollback() // No-op if committed

	for i := range days {
		day := &days[i]
		for _, menu := range day.Menus() {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO menus (date, slot, title, allergens, price)
				VALUES (?, ?, ?, ?, ?)
				ON CONFLICT(date, slot) DO UPDATE SET
					title = excluded.title,
					allergens = excluded.allergens,
					price = excluded.price
			`, encodeDate(day.Date), int(menu.Slot), menu.Title, menu.Allergens, int64(menu.Price))
			if err != nil {
				return &StorageError{Op: "upsert menu", Err: err}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return &StorageError{Op: "upsert days: commit", Err: err}
	}
	return nil
}

// ReadDays returns the cached days within the half-open range [start, end),
// ordered ascending by date with slot rows folded into Day aggregates.
func (s *Store) ReadDays(ctx context.Context, start, end time.Time) ([]model.Day, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT date, slot, title, allergens, price
		FROM menus
		WHERE date >= ? AND date < ?
		ORDER BY date ASC, slot ASC
	`, encodeDate(start), encodeDate(end))
	if err != nil {
		return nil, &StorageError{Op: "query menus", Err: err}
	}
	defer rows.Close()

	var days []model.Day
	for rows.Next() {
		var (
			date  string
			slot  int
			menu  model.Menu
			price int64
		)
		if err := rows.Scan(&date, &slot, &menu.Title, &menu.Allergens, &price); err != nil {
			return nil, &StorageError{Op: "scan menu", Err: err}
		}

		parsed, err := time.Parse(dateFormat, date)
		if err != nil {
			return nil, &StorageError{Op: "parse menu date", Err: err}
		}
		menu.Slot = model.Slot(slot)
		menu.Price = model.Cents(price)
		menu.Date = parsed

		if len(days) == 0 || !days[len(days)-1].Date.Equal(parsed) {
			days = append(days, model.Day{Date: parsed})
		}
		m := menu
		days[len(days)-1].SetSlot(&m)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "iterate menus", Err: err}
	}
	return days, nil
}
