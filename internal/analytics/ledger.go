// Package analytics rebuilds the day-by-day Mirror ledger of a user from raw
// session, completion and emotion check-in rows.
package analytics

import (
	"sort"
	"time"

	"github.com/limbo/placebetween/pkg/entity"
)

const (
	DateLayout = "2006-01-02"

	principalPoints   = 10
	recommendedPoints = 20
)

type emotionAcc struct {
	count          int
	intensitySum   int
	intensityCount int
}

func (acc *emotionAcc) add(intensity *int) {
	acc.count++
	if intensity != nil {
		acc.intensitySum += *intensity
		acc.intensityCount++
	}
}

func (acc *emotionAcc) stat() entity.EmotionStat {
	stat := entity.EmotionStat{Count: acc.count}
	if acc.intensityCount > 0 {
		avg := float64(acc.intensitySum) / float64(acc.intensityCount)
		stat.IntensityAvg = &avg
	}
	return stat
}

type activityRow struct {
	entry entity.ActivityEntry
	at    *time.Time
}

type checkinRow struct {
	entry entity.EmotionEntry
	at    *time.Time
}

type dayAcc struct {
	date             time.Time
	pointsTotal      int
	pointsDay        int
	pointsNight      int
	completionsCount int
	principalCount   int
	recommendedCount int
	categories       map[string]int
	emotions         map[string]*emotionAcc
	checkins         []checkinRow
	activities       []activityRow
}

type sessionRef struct {
	day  *dayAcc
	kind entity.SessionType
}

// Ledger holds the accumulators of a single aggregation. It is not safe for
// concurrent use and is meant to be discarded after Report.
type Ledger struct {
	start      time.Time
	end        time.Time
	order      []*dayAcc
	days       map[string]*dayAcc
	sessions   map[int64]sessionRef
	sessionIDs []int64
	categories map[string]int
	emotions   map[string]*emotionAcc
}

// NewLedger creates a zero-valued entry for every calendar day in [start, end].
// An inverted range yields no days.
func NewLedger(start, end time.Time) *Ledger {
	l := &Ledger{
		start:      Day(start),
		end:        Day(end),
		days:       make(map[string]*dayAcc),
		sessions:   make(map[int64]sessionRef),
		categories: make(map[string]int),
		emotions:   make(map[string]*emotionAcc),
	}
	for d := l.start; !d.After(l.end); d = d.AddDate(0, 0, 1) {
		acc := &dayAcc{
			date:       d,
			categories: make(map[string]int),
			emotions:   make(map[string]*emotionAcc),
		}
		l.order = append(l.order, acc)
		l.days[d.Format(DateLayout)] = acc
	}
	return l
}

// AddSession books the session points on its day. Sessions outside the range
// are ignored, and so are their completions and check-ins later on.
func (l *Ledger) AddSession(s entity.Session) {
	day, ok := l.days[Day(s.Date).Format(DateLayout)]
	if !ok {
		return
	}
	if _, seen := l.sessions[s.ID]; !seen {
		l.sessionIDs = append(l.sessionIDs, s.ID)
	}
	l.sessions[s.ID] = sessionRef{day: day, kind: s.Type}
	day.pointsTotal += s.PointsEarned
	if s.Type == entity.SessionDay {
		day.pointsDay += s.PointsEarned
	} else {
		day.pointsNight += s.PointsEarned
	}
}

// SessionIDs lists the sessions booked so far, in insertion order.
func (l *Ledger) SessionIDs() []int64 {
	ids := make([]int64, len(l.sessionIDs))
	copy(ids, l.sessionIDs)
	return ids
}

func (l *Ledger) HasSessions() bool {
	return len(l.sessionIDs) > 0
}

func (l *Ledger) AddCompletion(c entity.Completion) {
	ref, ok := l.sessions[c.SessionID]
	if !ok {
		return
	}
	day := ref.day
	category := categoryName(c.CategoryName)
	day.completionsCount++
	if c.PointsAwarded >= principalPoints {
		day.principalCount++
	}
	if c.PointsAwarded == recommendedPoints {
		day.recommendedCount++
	}
	day.categories[category] += c.PointsAwarded
	l.categories[category] += c.PointsAwarded
	day.activities = append(day.activities, activityRow{
		entry: entity.ActivityEntry{
			ExternalID:   c.ActivityExternalID,
			Name:         activityName(c.ActivityName),
			CategoryName: category,
			Points:       c.PointsAwarded,
			SessionType:  string(ref.kind),
			CompletedAt:  utcString(c.CompletedAt),
		},
		at: c.CompletedAt,
	})
}

func (l *Ledger) AddCheckin(ch entity.EmotionCheckin) {
	ref, ok := l.sessions[ch.SessionID]
	if !ok {
		return
	}
	day := ref.day
	name := emotionName(ch.EmotionName)
	note := ch.Note
	if note != nil && *note == "" {
		note = nil
	}
	day.checkins = append(day.checkins, checkinRow{
		entry: entity.EmotionEntry{
			Name:      name,
			Intensity: ch.Intensity,
			Note:      note,
			CreatedAt: utcString(ch.CreatedAt),
		},
		at: ch.CreatedAt,
	})
	accFor(day.emotions, name).add(ch.Intensity)
	accFor(l.emotions, name).add(ch.Intensity)
}

func accFor(m map[string]*emotionAcc, name string) *emotionAcc {
	acc, ok := m[name]
	if !ok {
		acc = &emotionAcc{}
		m[name] = acc
	}
	return acc
}

// Report renders the ledger. today is only used to cut the current streak so
// that days after it do not break the run.
func (l *Ledger) Report(today time.Time) *entity.RangeReport {
	cutoff := Day(today.UTC())
	if l.end.Before(cutoff) {
		cutoff = l.end
	}
	report := &entity.RangeReport{
		Range: entity.RangeInfo{
			Start:    l.start.Format(DateLayout),
			End:      l.end.Format(DateLayout),
			DayCount: len(l.order),
			Timezone: "UTC",
		},
		Days: make([]entity.DayReport, 0, len(l.order)),
		Distributions: entity.Distributions{
			CategoriesPoints: copyPoints(l.categories),
			Emotions:         stats(l.emotions),
		},
	}
	flagsAll := make([]bool, 0, len(l.order))
	flagsUpToToday := make([]bool, 0, len(l.order))
	for _, day := range l.order {
		consistent := day.principalCount > 0
		flagsAll = append(flagsAll, consistent)
		if !day.date.After(cutoff) {
			flagsUpToToday = append(flagsUpToToday, consistent)
		}
		report.Days = append(report.Days, day.render())

		report.Totals.PointsTotal += day.pointsTotal
		report.Totals.CompletionsTotal += day.completionsCount
		if consistent {
			report.Totals.PrincipalDays++
		}
		if day.recommendedCount > 0 {
			report.Totals.RecommendedDays++
		}
	}
	_, report.Streak.Best = Streaks(flagsAll)
	report.Streak.Current, _ = Streaks(flagsUpToToday)
	return report
}

func (day *dayAcc) render() entity.DayReport {
	activities := make([]activityRow, len(day.activities))
	copy(activities, day.activities)
	// Missing timestamps first.
	sort.SliceStable(activities, func(i, j int) bool {
		a, b := activities[i].at, activities[j].at
		if a == nil || b == nil {
			return a == nil && b != nil
		}
		return a.Before(*b)
	})
	checkins := make([]checkinRow, len(day.checkins))
	copy(checkins, day.checkins)
	// Most recent first, missing timestamps last.
	sort.SliceStable(checkins, func(i, j int) bool {
		a, b := checkins[i].at, checkins[j].at
		if a == nil || b == nil {
			return a != nil && b == nil
		}
		return a.After(*b)
	})

	out := entity.DayReport{
		Date:             day.date.Format(DateLayout),
		PointsTotal:      day.pointsTotal,
		PointsDay:        day.pointsDay,
		PointsNight:      day.pointsNight,
		CompletionsCount: day.completionsCount,
		PrincipalCount:   day.principalCount,
		RecommendedCount: day.recommendedCount,
		Categories:       copyPoints(day.categories),
		Emotions:         stats(day.emotions),
		EmotionEntries:   make([]entity.EmotionEntry, 0, len(checkins)),
		Activities:       make([]entity.ActivityEntry, 0, len(activities)),
	}
	for _, row := range activities {
		out.Activities = append(out.Activities, row.entry)
	}
	for _, row := range checkins {
		out.EmotionEntries = append(out.EmotionEntries, row.entry)
	}
	return out
}

func copyPoints(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func stats(m map[string]*emotionAcc) map[string]entity.EmotionStat {
	out := make(map[string]entity.EmotionStat, len(m))
	for name, acc := range m {
		out[name] = acc.stat()
	}
	return out
}
