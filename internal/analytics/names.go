package analytics

import "time"

const (
	fallbackActivity = "Actividad"
	fallbackCategory = "General"
	fallbackEmotion  = "Desconocida"
)

func activityName(name *string) string {
	return orFallback(name, fallbackActivity)
}

func categoryName(name *string) string {
	return orFallback(name, fallbackCategory)
}

func emotionName(name *string) string {
	return orFallback(name, fallbackEmotion)
}

func orFallback(name *string, fallback string) string {
	if name == nil || *name == "" {
		return fallback
	}
	return *name
}

// utcString renders t as RFC3339 in UTC ("Z" suffix). Nil stays nil.
func utcString(t *time.Time) *string {
	if t == nil || t.IsZero() {
		return nil
	}
	s := t.UTC().Format(time.RFC3339Nano)
	return &s
}

// Day truncates t to its calendar date at UTC midnight.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
