package reminder

import (
	"strings"
	"time"
	// IANA zones must resolve even on hosts without a zoneinfo database.
	_ "time/tzdata"
)

const everyDay = "daily"

var dayCodes = map[string]time.Weekday{
	"sun": time.Sunday,
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
}

// Location resolves an IANA zone name. Unknown or empty names fall back to UTC.
func Location(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ParseDays reads a days_of_week value: "daily" or comma separated three
// letter codes ("mon,wed,fri"). The bool is true when every day is allowed.
// Unknown codes are skipped.
func ParseDays(s string) (map[time.Weekday]bool, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == everyDay {
		return nil, true
	}
	days := make(map[time.Weekday]bool)
	for _, part := range strings.Split(s, ",") {
		code := strings.TrimSpace(part)
		if len(code) > 3 {
			code = code[:3]
		}
		if wd, ok := dayCodes[code]; ok {
			days[wd] = true
		}
	}
	return days, false
}

func allowedOn(daysOfWeek string, wd time.Weekday) bool {
	days, daily := ParseDays(daysOfWeek)
	if daily {
		return true
	}
	return days[wd]
}

func minuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
