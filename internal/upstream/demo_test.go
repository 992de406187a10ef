package upstream_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radaiko/gourmet-cache/internal/fetch"
	"github.com/radaiko/gourmet-cache/internal/upstream"
)

var now = time.Date(2026, time.August, 28, 10, 0, 0, 0, time.UTC)

func clock() time.Time { return now }

func TestDemoBilling_Deterministic(t *testing.T) {
	source := upstream.DemoBilling(clock)

	first, err := source(context.Background(), 2026, time.August)
	require.NoError(t, err)
	second, err := source(context.Background(), 2026, time.August)
	require.NoError(t, err)

	require.Equal(t, len(first.Transactions), len(second.Transactions))
	for i := range first.Transactions {
		assert.Equal(t, first.Transactions[i].Hash, second.Transactions[i].Hash)
	}
}

func TestDemoBilling_HistoryEnds(t *testing.T) {
	source := upstream.DemoBilling(clock)

	_, err := source(context.Background(), 2026, time.March)
	require.NoError(t, err)

	_, err = source(context.Background(), 2026, time.February)
	assert.ErrorIs(t, err, fetch.ErrNoHistory)
}

func TestDemoMenus_SkipsWeekends(t *testing.T) {
	source := upstream.DemoMenus()

	// Saturday Aug 29 through Friday Sep 4.
	start := time.Date(2026, time.August, 29, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, time.September, 5, 0, 0, 0, 0, time.UTC)
	days, err := source(context.Background(), start, end)
	require.NoError(t, err)

	require.Len(t, days, 5)
	for _, d := range days {
		assert.NotEqual(t, time.Saturday, d.Date.Weekday())
		assert.NotEqual(t, time.Sunday, d.Date.Weekday())
		assert.Len(t, d.Menus(), 4)
	}
}
