package service

import (
	"context"
	"fbwatch/internal/components/assert"
	"fbwatch/internal/components/chrono"
	"fbwatch/internal/components/telemetry"
	fb "fbwatch/internal/scrapers/facebook"
	"fbwatch/internal/store"
	"sync"

	om "github.com/wk8/go-ordered-map/v2"
)

const (
	report_tracker_poll  = "tracker.poll"
	report_tracker_watch = "tracker.watch"
	report_tracked_users = "tracker.tracked-users"
)

// FetcherAPI is the part of the crawler the tracker depends on.
//
// note: fault injection point
type FetcherAPI interface {
	FetchLastActiveTimes(ctx context.Context) []fb.PresenceRecord
	FetchUserInfos(ctx context.Context, refs []string, opts fb.UserInfoOptions) *om.OrderedMap[string, fb.UserInfo]
}

// SinkAPI persists processed records.
//
// note: fault injection point
type SinkAPI interface {
	Save(ctx context.Context, records []store.UserRecord) error
}

// Tracker polls the presence feed and keeps the last active times of every
// user seen since it started.
type Tracker struct {
	fetcher  FetcherAPI
	sink     SinkAPI
	tel      telemetry.API
	infoOpts fb.UserInfoOptions

	mutex sync.Mutex
	times fb.ActiveTimes
	infos *om.OrderedMap[string, fb.UserInfo]
}

type trackerConfig struct {
	tel      telemetry.API
	infoOpts fb.UserInfoOptions
}

type TrackerOption func(cfg *trackerConfig)

func WithCustomTelemetryAPI(tel telemetry.API) TrackerOption {
	return func(cfg *trackerConfig) {
		cfg.tel = tel
	}
}

// WithUserInfoOptions sets what is fetched for newly seen users.
func WithUserInfoOptions(opts fb.UserInfoOptions) TrackerOption {
	return func(cfg *trackerConfig) {
		cfg.infoOpts = opts
	}
}

func NewTracker(fetcher FetcherAPI, sink SinkAPI, options ...TrackerOption) *Tracker {
	assert.NotNil(fetcher)
	assert.NotNil(sink)

	cfg := trackerConfig{tel: telemetry.SlogAPI{}}
	for _, opt := range options {
		opt(&cfg)
	}

	return &Tracker{
		fetcher:  fetcher,
		sink:     sink,
		tel:      telemetry.NewScopedAPI("service", cfg.tel),
		infoOpts: cfg.infoOpts,
		times:    fb.NewActiveTimes(),
		infos:    om.New[string, fb.UserInfo](),
	}
}

// Poll fetches the presence feed once. When new times were seen, the infos
// of users not seen before are fetched and every tracked user is saved.
// It returns whether anything changed.
func (t *Tracker) Poll(ctx context.Context) (bool, error) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	records := t.fetcher.FetchLastActiveTimes(ctx)
	if !fb.MergeTimes(records, t.times) {
		t.tel.ReportDebug("poll: no new times", len(records))
		return false, nil
	}

	var unknown []string
	for pair := t.times.Oldest(); pair != nil; pair = pair.Next() {
		if _, ok := t.infos.Get(pair.Key); !ok {
			unknown = append(unknown, pair.Key)
		}
	}
	if len(unknown) > 0 {
		infos := t.fetcher.FetchUserInfos(ctx, unknown, t.infoOpts)
		for pair := infos.Oldest(); pair != nil; pair = pair.Next() {
			t.infos.Set(pair.Key, pair.Value)
		}
	}

	processed := ProcessData(t.times, t.infos, t.tel)
	t.tel.ReportCount(report_tracked_users, int64(len(processed)))

	err := t.sink.Save(ctx, processed)
	if err != nil {
		t.tel.ReportBroken(report_tracker_poll, err)
		return true, err
	}
	return true, nil
}

// Times returns a copy of the times tracked so far.
func (t *Tracker) Times() fb.ActiveTimes {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	out := fb.NewActiveTimes()
	for pair := t.times.Oldest(); pair != nil; pair = pair.Next() {
		out.Set(pair.Key, append(pair.Value[:0:0], pair.Value...))
	}
	return out
}

// Watch polls on the given cron schedule until ctx is done.
func (t *Tracker) Watch(ctx context.Context, cron chrono.CronAPI, schedule string) error {
	assert.NotNil(cron)

	poll := func() {
		if ctx.Err() != nil {
			return
		}
		_, err := t.Poll(ctx)
		if err != nil {
			t.tel.ReportWarning(report_tracker_watch, err)
		}
	}

	err := cron.Cron(schedule, poll)
	if err != nil {
		t.tel.ReportBroken(report_tracker_watch, err, schedule)
		return err
	}
	poll()

	<-ctx.Done()
	cron.Stop()
	return nil
}
