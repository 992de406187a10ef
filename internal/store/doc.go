// Package store provides durable storage for billing and menu data.
// It owns a single SQLite database file and exposes typed insert/read
// operations for the two record families.
//
// Billing transactions are immutable once fetched and deduplicated by
// their content hash; menu rows are keyed by (date, slot) and may be
// overwritten as menus change day to day.
package store
