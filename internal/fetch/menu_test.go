package fetch_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radaiko/gourmet-cache/internal/fetch"
	"github.com/radaiko/gourmet-cache/internal/model"
	"github.com/radaiko/gourmet-cache/internal/testutil"
)

func scriptedDay(date time.Time, title string) model.Day {
	d := model.Day{Date: model.DateOf(date)}
	d.SetSlot(&model.Menu{Slot: model.SlotMenu1, Title: title, Price: 800, Date: d.Date})
	d.SetSlot(&model.Menu{Slot: model.SlotSoupSalad, Title: "Soup", Price: 450, Date: d.Date})
	return d
}

func TestMenuFetcher_RefreshAndRead(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	monday := time.Date(2026, time.August, 24, 0, 0, 0, 0, time.UTC)
	upstream := testutil.NewMenuUpstream(
		scriptedDay(monday, "Schnitzel"),
		scriptedDay(monday.AddDate(0, 0, 1), "Pasta"),
		scriptedDay(monday.AddDate(0, 0, 9), "Outside the window"),
	)

	f := fetch.NewMenuFetcher(s, upstream.Source())
	require.NoError(t, f.Refresh(ctx, monday, monday.AddDate(0, 0, 5)))

	days, err := f.Days(ctx, monday, monday.AddDate(0, 0, 5))
	require.NoError(t, err)
	require.Len(t, days, 2, "only days inside the requested window are fetched")
	assert.Equal(t, "Schnitzel", days[0].Menu1.Title)
	assert.Equal(t, "Pasta", days[1].Menu1.Title)
	assert.Equal(t, 1, upstream.Calls())
}

func TestMenuFetcher_RefreshOverwrites(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	date := time.Date(2026, time.August, 25, 0, 0, 0, 0, time.UTC)
	end := date.AddDate(0, 0, 1)

	first := testutil.NewMenuUpstream(scriptedDay(date, "Pasta"))
	require.NoError(t, fetch.NewMenuFetcher(s, first.Source()).Refresh(ctx, date, end))

	// The menu changed upstream; a later refresh wins.
	second := testutil.NewMenuUpstream(scriptedDay(date, "Goulash"))
	f := fetch.NewMenuFetcher(s, second.Source())
	require.NoError(t, f.Refresh(ctx, date, end))

	days, err := f.Days(ctx, date, end)
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, "Goulash", days[0].Menu1.Title)
}

func TestMenuFetcher_UpstreamFailureLeavesStoreUntouched(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	date := time.Date(2026, time.August, 25, 0, 0, 0, 0, time.UTC)
	end := date.AddDate(0, 0, 5)

	seed := testutil.NewMenuUpstream(scriptedDay(date, "Pasta"))
	f := fetch.NewMenuFetcher(s, seed.Source())
	require.NoError(t, f.Refresh(ctx, date, end))

	failing := testutil.NewMenuUpstream()
	failing.FailWith(errors.New("gateway timeout"))
	f = fetch.NewMenuFetcher(s, failing.Source())

	err := f.Refresh(ctx, date, end)
	require.Error(t, err)
	assert.True(t, fetch.IsUpstreamError(err))

	days, readErr := f.Days(ctx, date, end)
	require.NoError(t, readErr)
	require.Len(t, days, 1, "cached data survives a failed refresh")
	assert.Equal(t, "Pasta", days[0].Menu1.Title)
}

func TestDefaultOrderWindow(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		end  time.Time
	}{
		{
			name: "wednesday extends to friday in two weeks",
			now:  time.Date(2026, time.August, 26, 9, 30, 0, 0, time.UTC),  // Wed
			end:  time.Date(2026, time.September, 11, 0, 0, 0, 0, time.UTC), // Fri +16d
		},
		{
			name: "friday extends exactly fourteen days",
			now:  time.Date(2026, time.August, 28, 23, 0, 0, 0, time.UTC),   // Fri
			end:  time.Date(2026, time.September, 11, 0, 0, 0, 0, time.UTC), // Fri +14d
		},
		{
			name: "saturday rolls to the friday after next",
			now:  time.Date(2026, time.August, 29, 0, 0, 0, 0, time.UTC),    // Sat
			end:  time.Date(2026, time.September, 18, 0, 0, 0, 0, time.UTC), // Fri +20d
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := fetch.DefaultOrderWindow(tt.now)
			assert.Equal(t, model.DateOf(tt.now), start)
			assert.Equal(t, tt.end, end)
		})
	}
}
