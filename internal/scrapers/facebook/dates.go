package facebook

import (
	"fbwatch/internal/components/chrono"
	"fbwatch/internal/components/telemetry"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

const (
	report_dates_parse = "dates.parse"
)

// DateFallback is the year 1900 midnight in loc, it is returned when a date
// cannot be understood at all.
func DateFallback(loc *time.Location) time.Time {
	return time.Date(1900, time.January, 1, 0, 0, 0, 0, loc)
}

// DateParser turns the dates shown on posts ("22 April 2011 at 20:34",
// "May 2017", "5 hrs", "Yesterday at 19:34", ...) into absolute times.
type DateParser struct {
	time chrono.API
	tel  telemetry.API
}

func NewDateParser(time chrono.API, tel telemetry.API) DateParser {
	return DateParser{time: time, tel: tel}
}

var (
	leadingDay  = regexp.MustCompile(`^\d+`)
	fourDigits  = regexp.MustCompile(`\d{4}`)
	relativeAgo = regexp.MustCompile(`(?i)^(\d+)\s*(seconds?|secs?|minutes?|mins?|hours?|hrs?|days?)$`)
	dayAt       = regexp.MustCompile(`(?i)^(yesterday|today)\s+at\s+(\d{1,2}):(\d{2})$`)
)

var dateLayouts = []string{"2 January 2006", "2 Jan 2006"}

// Parse never fails, dates that match no known form resolve to DateFallback.
func (p DateParser) Parse(text string) time.Time {
	loc := p.time.Location()
	text = strings.TrimSpace(text)

	parsed, err := time.ParseInLocation("2 January 2006 at 15:04", text, loc)
	if err == nil {
		return parsed
	}

	parsed, err = p.parseIncomplete(text, loc)
	if err == nil {
		return parsed
	}

	parsed, err = dateparse.ParseIn(text, loc)
	if err == nil {
		return parsed
	}

	parsed, err = p.parseRelative(text)
	if err == nil {
		return parsed
	}

	p.tel.ReportWarning(report_dates_parse, fmt.Errorf("unrecognized date %q, using fallback", text))
	return DateFallback(loc)
}

// parseIncomplete fills a missing day with 1 and a missing year with the
// current year.
func (p DateParser) parseIncomplete(text string, loc *time.Location) (time.Time, error) {
	datePart := text
	timePart := "00:00"
	split := strings.Split(text, " at ")
	if len(split) == 2 {
		datePart = split[0]
		timePart = split[1]
	}

	if !leadingDay.MatchString(datePart) {
		datePart = "1 " + datePart
	}
	if !fourDigits.MatchString(datePart) {
		datePart = fmt.Sprintf("%s %d", datePart, p.time.Now().Year())
	}

	clock, err := time.Parse("15:04", strings.TrimSpace(timePart))
	if err != nil {
		return time.Time{}, err
	}

	var lastErr error
	for _, layout := range dateLayouts {
		day, err := time.ParseInLocation(layout, datePart, loc)
		if err != nil {
			lastErr = err
			continue
		}
		return time.Date(
			day.Year(), day.Month(), day.Day(),
			clock.Hour(), clock.Minute(), 0, 0,
			loc,
		), nil
	}
	return time.Time{}, lastErr
}

func (p DateParser) parseRelative(text string) (time.Time, error) {
	now := p.time.Now()

	if strings.EqualFold(text, "just now") {
		return now, nil
	}

	groups := relativeAgo.FindStringSubmatch(text)
	if len(groups) == 3 {
		n, err := strconv.Atoi(groups[1])
		if err != nil {
			return time.Time{}, err
		}
		unit := strings.ToLower(groups[2])
		var step time.Duration
		switch {
		case strings.HasPrefix(unit, "s"):
			step = time.Second
		case strings.HasPrefix(unit, "m"):
			step = time.Minute
		case strings.HasPrefix(unit, "h"):
			step = time.Hour
		case strings.HasPrefix(unit, "d"):
			step = 24 * time.Hour
		}
		return now.Add(-time.Duration(n) * step), nil
	}

	groups = dayAt.FindStringSubmatch(text)
	if len(groups) == 4 {
		hour, _ := strconv.Atoi(groups[2])
		minute, _ := strconv.Atoi(groups[3])
		if hour > 23 || minute > 59 {
			return time.Time{}, fmt.Errorf("invalid clock in %q", text)
		}
		day := now
		if strings.EqualFold(groups[1], "yesterday") {
			day = now.AddDate(0, 0, -1)
		}
		return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, now.Location()), nil
	}

	return time.Time{}, fmt.Errorf("not a relative date: %q", text)
}
