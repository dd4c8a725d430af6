package telemetry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScopedAPI(t *testing.T) {
	tel := NewTestAPI()
	scoped := NewScopedAPI("fetcher", NewScopedAPI("facebook", tel))

	scoped.ReportBroken("fetch-timeline", errors.New("boom"))
	scoped.ReportWarning("fetch-likers", "limit", 666)
	scoped.ReportCount("posts", 3)
	scoped.ReportDebug("fetch")

	broken := tel.Reports("broken")
	require.Len(t, broken, 1)
	require.Equal(t, "fetcher: facebook: fetch-timeline", broken[0].Id)
	require.EqualError(t, broken[0].Params[0].(error), "boom")

	warnings := tel.Reports("warning")
	require.Len(t, warnings, 1)
	require.Equal(t, []any{"limit", 666}, warnings[0].Params)

	counts := tel.Reports("count")
	require.Len(t, counts, 1)
	require.Equal(t, []any{int64(3)}, counts[0].Params)

	require.Len(t, tel.Reports(""), 4)
	require.Equal(t, []string{"fetcher: facebook: fetch-timeline"}, tel.Broken("timeline"))
	require.Empty(t, tel.Broken("likers"))
}

func TestAttrs(t *testing.T) {
	err := errors.New("boom")
	require.Equal(
		t,
		[]any{"id", "x", "err", err, "p1", 2},
		attrs([]any{"id", "x"}, []any{err, 2}),
	)
	require.Empty(t, attrs(nil, nil))
}
