package service

import (
	"fbwatch/internal/components/telemetry"
	fb "fbwatch/internal/scrapers/facebook"
	"fbwatch/internal/store"
	"time"

	om "github.com/wk8/go-ordered-map/v2"
)

const report_process_data = "process-data"

// ProcessData turns tracked times and fetched infos into records. The id of
// a user is taken from its info, a user without info needs a numeric key.
// Users without times are skipped.
func ProcessData(times fb.ActiveTimes, infos *om.OrderedMap[string, fb.UserInfo], tel telemetry.API) []store.UserRecord {
	records := []store.UserRecord{}
	for pair := times.Oldest(); pair != nil; pair = pair.Next() {
		key := pair.Key

		userTimes := make([]time.Time, 0, len(pair.Value))
		for _, t := range pair.Value {
			// the feed reports -1 for users it has no time for
			if t.Unix() == -1 {
				continue
			}
			userTimes = append(userTimes, t)
		}
		if len(userTimes) == 0 {
			tel.ReportDebug("skipping user without times", key)
			continue
		}

		record := store.UserRecord{Times: userTimes}

		info, found := infos.Get(key)
		id, numeric := fb.NumericId(key)
		switch {
		case found && info.Id != 0:
			record.Id = info.Id
			if !numeric {
				record.Username = key
			}
		case numeric:
			record.Id = id
		default:
			tel.ReportWarning(report_process_data, "skipping user with invalid id", key)
			continue
		}

		if found {
			record.Name = info.Name
			record.Birthday = info.Birthday
			record.YearOfBirth = info.YearOfBirth
			record.Gender = info.Gender
			record.Relationship = info.Relationship
			record.Work = info.Work
			record.Education = info.Education
		}

		records = append(records, record)
	}
	return records
}
