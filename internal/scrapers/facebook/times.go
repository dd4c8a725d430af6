package facebook

import (
	"time"

	om "github.com/wk8/go-ordered-map/v2"
)

// ActiveTimes maps a user id to the last active times seen so far, in the
// order they were observed.
type ActiveTimes = *om.OrderedMap[string, []time.Time]

func NewActiveTimes() ActiveTimes {
	return om.New[string, []time.Time]()
}

// MergeTimes appends the new times of every user that are later than the
// last time already recorded, it reports whether anything was appended.
func MergeTimes(records []PresenceRecord, times ActiveTimes) bool {
	changed := false
	for _, record := range records {
		if len(record.Times) == 0 {
			continue
		}
		current, _ := times.Get(record.UserId)
		for _, t := range record.Times {
			if len(current) == 0 || t.After(current[len(current)-1]) {
				current = append(current, t)
				changed = true
			}
		}
		times.Set(record.UserId, current)
	}
	return changed
}
