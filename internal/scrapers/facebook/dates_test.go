package facebook

import (
	"fbwatch/internal/components/chrono"
	"fbwatch/internal/components/telemetry"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDateParser(t *testing.T) {
	now := time.Date(2020, time.June, 15, 12, 0, 0, 0, time.UTC)
	tel := telemetry.NewTestAPI()
	parser := NewDateParser(chrono.FixedImpl{At: now}, tel)

	testCases := []struct {
		text     string
		expected time.Time
	}{
		{"22 April 2011 at 20:34", time.Date(2011, time.April, 22, 20, 34, 0, 0, time.UTC)},
		{"14 May at 10:05", time.Date(2020, time.May, 14, 10, 5, 0, 0, time.UTC)},
		{"May 2017", time.Date(2017, time.May, 1, 0, 0, 0, 0, time.UTC)},
		{"3 Jan 2015", time.Date(2015, time.January, 3, 0, 0, 0, 0, time.UTC)},
		{"2019-03-01", time.Date(2019, time.March, 1, 0, 0, 0, 0, time.UTC)},
		{"Just now", now},
		{"5 hrs", now.Add(-5 * time.Hour)},
		{"30 mins", now.Add(-30 * time.Minute)},
		{"Yesterday at 09:15", time.Date(2020, time.June, 14, 9, 15, 0, 0, time.UTC)},
		{"Today at 23:59", time.Date(2020, time.June, 15, 23, 59, 0, 0, time.UTC)},
	}

	for _, test := range testCases {
		parsed := parser.Parse(test.text)
		require.True(t, test.expected.Equal(parsed), "%q: expected %v, got %v", test.text, test.expected, parsed)
	}
	require.Empty(t, tel.Reports("warning"))
}

func TestDateParserFallback(t *testing.T) {
	loc, err := time.LoadLocation("Europe/London")
	require.NoError(t, err)
	tel := telemetry.NewTestAPI()
	parser := NewDateParser(chrono.FixedImpl{At: time.Date(2020, time.June, 15, 12, 0, 0, 0, loc)}, tel)

	parsed := parser.Parse("sometime last summer")

	require.True(t, DateFallback(loc).Equal(parsed))
	require.Equal(t, loc, parsed.Location())
	require.Len(t, tel.Reports("warning"), 1)
	require.Equal(t, report_dates_parse, tel.Reports("warning")[0].Id)
}

func TestDateParserUsesLocation(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	parser := NewDateParser(chrono.FixedImpl{At: time.Date(2020, time.June, 15, 12, 0, 0, 0, loc)}, telemetry.NewTestAPI())

	parsed := parser.Parse("22 April 2011 at 20:34")

	require.Equal(t, time.Date(2011, time.April, 23, 0, 34, 0, 0, time.UTC), parsed.UTC())
}
