// Package upstream provides a deterministic offline data feed.
//
// The real billing and menu transports live in the embedding applications
// and are injected as fetch source functions. The demo feed lets the CLI
// and examples exercise the full fetch/persist/cache pipeline without any
// network or account.
package upstream

import (
	"context"
	"time"

	"github.com/radaiko/gourmet-cache/internal/fetch"
	"github.com/radaiko/gourmet-cache/internal/model"
)

// demoHistoryMonths is how far back the demo billing feed reaches.
const demoHistoryMonths = 6

var demoDishes = []struct {
	title     string
	allergens string
	price     model.Cents
}{
	{"Grilled Chicken with Vegetables", "AC", 850},
	{"Spaghetti Bolognese", "AG", 700},
	{"Vegetarian Stir Fry", "ACG", 750},
	{"Beef Tacos", "A", 800},
	{"Penne Alfredo", "AG", 725},
	{"Quinoa Bowl", "AC", 700},
	{"Teriyaki Salmon", "AD", 900},
	{"Lentil Curry", "AC", 750},
}

var demoSoups = []struct {
	title     string
	allergens string
	price     model.Cents
}{
	{"Tomato Soup and Caesar Salad", "ADG", 600},
	{"Minestrone and Garden Salad", "AD", 575},
	{"Pumpkin Soup and Mixed Greens", "AG", 625},
}

// DemoBilling returns a billing source serving six months of generated
// history relative to the given clock. The data for a month depends only
// on the month itself, so repeated fetches are identical.
func DemoBilling(now func() time.Time) fetch.BillingSource {
	return func(_ context.Context, year int, month time.Month) (*model.BillingMonth, error) {
		first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
		oldest := model.MonthOf(now()).AddDate(0, -(demoHistoryMonths - 1), 0)
		if first.Before(oldest) {
			return nil, fetch.ErrNoHistory
		}

		seed := year*12 + int(month)
		m := &model.BillingMonth{Month: first}
		for day := 2; day <= 26; day += 3 {
			dish := demoDishes[(seed+day)%len(demoDishes)]
			trans := model.Transaction{
				Kind: model.KindGourmet,
				Date: first.AddDate(0, 0, day-1).Add(12 * time.Hour),
				Positions: []model.Position{
					{Name: dish.title, Quantity: 1, UnitPrice: dish.price, Support: 200},
				},
			}
			if day%2 == 0 {
				trans.Kind = model.KindCafePlusCo
				trans.Positions = []model.Position{
					{Name: "Coffee", Quantity: 1 + day%3, UnitPrice: 120},
				}
			}
			trans.Hash = trans.ComputeHash()
			m.Transactions = append(m.Transactions, trans)
		}
		return m, nil
	}
}

// DemoMenus returns a menu source serving generated weekday menus for any
// requested window. Weekends have no offering.
func DemoMenus() fetch.MenuSource {
	return func(_ context.Context, start, end time.Time) ([]model.Day, error) {
		var days []model.Day
		for date := model.DateOf(start); date.Before(end); date = date.AddDate(0, 0, 1) {
			if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
				continue
			}

			seed := date.Year()*1000 + date.YearDay()
			day := model.Day{Date: date}
			for i, slot := range []model.Slot{model.SlotMenu1, model.SlotMenu2, model.SlotMenu3} {
				dish := demoDishes[(seed+i*3)%len(demoDishes)]
				day.SetSlot(&model.Menu{
					Slot:      slot,
					Title:     dish.title,
					Allergens: dish.allergens,
					Price:     dish.price,
					Date:      date,
				})
			}
			soup := demoSoups[seed%len(demoSoups)]
			day.SetSlot(&model.Menu{
				Slot:      model.SlotSoupSalad,
				Title:     soup.title,
				Allergens: soup.allergens,
				Price:     soup.price,
				Date:      date,
			})
			days = append(days, day)
		}
		return days, nil
	}
}
