// Package fetch reconciles persisted data with live upstream fetches.
//
// The billing fetcher produces a lazy, most-recent-first sequence of
// billing months: each month is resolved from the persistent store when a
// fresh copy exists, and fetched from upstream (then persisted) otherwise.
// The menu fetcher refreshes a date window from upstream and always serves
// reads through the store's range read.
//
// Upstream transports are injected as plain source functions, so tests can
// substitute recorded fixtures without any network.
package fetch
