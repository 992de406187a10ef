package cli

import (
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/radaiko/gourmet-cache/internal/model"
)

// billingMonthJSON is the JSON payload for one billing month.
type billingMonthJSON struct {
	Month        string `json:"month"`
	Gourmet      int    `json:"gourmet_count"`
	GourmetTotal string `json:"gourmet_total"`
	CafePlusCo   int    `json:"cafe_plus_co_count"`
	CafeTotal    string `json:"cafe_plus_co_total"`
	Total        string `json:"total"`
}

// menuJSON is the JSON payload for one menu slot.
type menuJSON struct {
	Slot      string `json:"slot"`
	Title     string `json:"title"`
	Allergens string `json:"allergens,omitempty"`
	Price     string `json:"price"`
}

// dayJSON is the JSON payload for one order day.
type dayJSON struct {
	Date  string     `json:"date"`
	Menus []menuJSON `json:"menus"`
}

func billingPayload(months []*model.BillingMonth) []billingMonthJSON {
	out := make([]billingMonthJSON, 0, len(months))
	for _, m := range months {
		out = append(out, billingMonthJSON{
			Month:        m.Key(),
			Gourmet:      m.CountFor(model.KindGourmet),
			GourmetTotal: euros(m.TotalFor(model.KindGourmet)),
			CafePlusCo:   m.CountFor(model.KindCafePlusCo),
			CafeTotal:    euros(m.TotalFor(model.KindCafePlusCo)),
			Total:        euros(m.Total()),
		})
	}
	return out
}

func daysPayload(days []model.Day) []dayJSON {
	out := make([]dayJSON, 0, len(days))
	for _, d := range days {
		dj := dayJSON{Date: d.Date.Format("2006-01-02")}
		for _, m := range d.Menus() {
			dj.Menus = append(dj.Menus, menuJSON{
				Slot:      m.Slot.String(),
				Title:     m.Title,
				Allergens: m.Allergens,
				Price:     euros(m.Price),
			})
		}
		out = append(out, dj)
	}
	return out
}

// renderBillingMonths writes the billing table, most recent month first.
func renderBillingMonths(w io.Writer, months []*model.BillingMonth) {
	p := message.NewPrinter(language.English)
	if len(months) == 0 {
		p.Fprintln(w, "No billing history cached.")
		return
	}
	p.Fprintf(w, "%-8s  %18s  %18s  %10s\n", "Month", "Gourmet", "Cafe+Co", "Total")
	for _, m := range months {
		p.Fprintf(w, "%-8s  %7dx %9.2f  %7dx %9.2f  %10.2f\n",
			m.Key(),
			m.CountFor(model.KindGourmet), m.TotalFor(model.KindGourmet).Euros(),
			m.CountFor(model.KindCafePlusCo), m.TotalFor(model.KindCafePlusCo).Euros(),
			m.Total().Euros())
	}
}

// renderDays writes the order days with their menu slots.
func renderDays(w io.Writer, days []model.Day) {
	p := message.NewPrinter(language.English)
	if len(days) == 0 {
		p.Fprintln(w, "No order days cached.")
		return
	}
	for i, d := range days {
		if i > 0 {
			p.Fprintln(w)
		}
		p.Fprintf(w, "%s (%s)\n", d.Date.Format("2006-01-02"), d.Date.Weekday())
		for _, m := range d.Menus() {
			p.Fprintf(w, "  %-12s  %-40s  %6.2f", m.Slot, m.Title, m.Price.Euros())
			if m.Allergens != "" {
				p.Fprintf(w, "  [%s]", m.Allergens)
			}
			p.Fprintln(w)
		}
	}
}

func euros(c model.Cents) string {
	p := message.NewPrinter(language.English)
	return p.Sprintf("%.2f", c.Euros())
}
