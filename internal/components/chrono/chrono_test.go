package chrono

import (
	"errors"
	"fbwatch/internal/components/telemetry"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStandardImpl(t *testing.T) {
	utc, err := NewStandardImpl("")
	require.NoError(t, err)
	require.Equal(t, time.UTC, utc.Location())

	london, err := NewStandardImpl("Europe/London")
	require.NoError(t, err)
	require.Equal(t, "Europe/London", london.Now().Location().String())

	_, err = NewStandardImpl("Not/AZone")
	require.Error(t, err)
}

func TestFixedImpl(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, loc)

	fixed := FixedImpl{At: at}
	require.Equal(t, at, fixed.Now())
	require.Equal(t, loc, fixed.Location())
}

func TestStandardCronRejectsBadSpec(t *testing.T) {
	tel := telemetry.NewTestAPI()
	cron := NewStandardCron(FixedImpl{At: time.Unix(0, 0).UTC()}, tel)
	defer cron.Stop()

	require.Error(t, cron.Cron("not a schedule", func() {}))
	require.NoError(t, cron.Cron("@every 1h", func() {}))
}

func TestCronLogger(t *testing.T) {
	tel := telemetry.NewTestAPI()
	logger := cronLogger{tel: tel}

	logger.Info("wake", "now", 1, "dangling")
	logger.Error(errors.New("panic"), "job failed", "entry", 3)

	debug := tel.Reports("debug")
	require.Len(t, debug, 1)
	require.Equal(t, "cron: wake", debug[0].Id)
	require.Equal(t, []any{"now=1"}, debug[0].Params)

	broken := tel.Reports("broken")
	require.Len(t, broken, 1)
	require.Equal(t, "cron", broken[0].Id)
	require.EqualError(t, broken[0].Params[0].(error), "job failed: panic")
	require.Equal(t, "entry=3", broken[0].Params[1])
}
