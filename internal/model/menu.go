package model

import "time"

// Slot identifies one of the four menu slots offered per day.
type Slot int

const (
	SlotMenu1 Slot = iota + 1
	SlotMenu2
	SlotMenu3
	SlotSoupSalad
)

// String returns the display name of the slot.
func (s Slot) String() string {
	switch s {
	case SlotMenu1:
		return "Menu 1"
	case SlotMenu2:
		return "Menu 2"
	case SlotMenu3:
		return "Menu 3"
	case SlotSoupSalad:
		return "Soup & Salad"
	default:
		return "Unknown"
	}
}

// Menu is one offered dish on one day.
type Menu struct {
	Slot      Slot
	Title     string
	Allergens string
	Price     Cents
	Date      time.Time
}

// Day is one calendar day of menu data: up to three primary menus plus the
// soup-and-salad slot. Nil slots mean no offering for that slot.
type Day struct {
	Date         time.Time
	Menu1        *Menu
	Menu2        *Menu
	Menu3        *Menu
	SoupAndSalad *Menu
}

// DateOf normalizes an arbitrary time to a date-only UTC value, the key
// under which Day rows are stored.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Menus returns the non-nil slots of the day in slot order.
func (d *Day) Menus() []*Menu {
	menus := make([]*Menu, 0, 4)
	for _, m := range []*Menu{d.Menu1, d.Menu2, d.Menu3, d.SoupAndSalad} {
		if m != nil {
			menus = append(menus, m)
		}
	}
	return menus
}

// SetSlot assigns a menu to its slot on the day.
func (d *Day) SetSlot(m *Menu) {
	switch m.Slot {
	case SlotMenu1:
		d.Menu1 = m
	case SlotMenu2:
		d.Menu2 = m
	case SlotMenu3:
		d.Menu3 = m
	case SlotSoupSalad:
		d.SoupAndSalad = m
	}
}
