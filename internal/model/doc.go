// Package model defines the domain types shared by the store, the
// incremental fetchers and the reactive cache: billing months with their
// transactions and positions, and menu days with their four slots.
//
// Billing aggregates are always recomputable from their transactions;
// totals are methods, never stored fields. Transactions carry a SHA-256
// content hash that acts as the stable identity when merging freshly
// fetched data with persisted rows.
package model
