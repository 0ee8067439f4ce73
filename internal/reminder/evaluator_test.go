package reminder_test

import (
	"testing"
	"time"

	"github.com/limbo/placebetween/internal/reminder"
	"github.com/limbo/placebetween/pkg/entity"
	"github.com/stretchr/testify/assert"
)

func ptrTime(t time.Time) *time.Time {
	return &t
}

func ptrInt(i int) *int {
	return &i
}

func inactivityReminder() entity.Reminder {
	return entity.Reminder{
		ID:                   1,
		UserID:               10,
		Type:                 "nudge",
		Mode:                 entity.ReminderInactivity,
		DaysOfWeek:           "daily",
		InactiveAfterMinutes: ptrInt(1440),
		IsActive:             true,
	}
}

func TestShouldSendInactivity(t *testing.T) {
	now := time.Date(2024, 3, 4, 15, 0, 0, 0, time.UTC)
	idle := entity.UserSignal{
		ID:              10,
		Timezone:        "America/Bogota",
		LastActivityAt:  ptrTime(now.Add(-2000 * time.Minute)),
		CreatedAt:       now.AddDate(0, -1, 0),
		IsEmailVerified: true,
	}
	testCases := []struct {
		Desc     string
		Reminder func() entity.Reminder
		User     func() entity.UserSignal
		Force    bool
		Result   bool
	}{
		{
			Desc:     "idle long enough",
			Reminder: inactivityReminder,
			User:     func() entity.UserSignal { return idle },
			Result:   true,
		},
		{
			Desc: "cooldown after a send",
			Reminder: func() entity.Reminder {
				r := inactivityReminder()
				r.LastSentAt = ptrTime(now)
				return r
			},
			User:   func() entity.UserSignal { return idle },
			Result: false,
		},
		{
			Desc: "cooldown holds with force",
			Reminder: func() entity.Reminder {
				r := inactivityReminder()
				r.LastSentAt = ptrTime(now.Add(-23 * time.Hour))
				return r
			},
			User:   func() entity.UserSignal { return idle },
			Force:  true,
			Result: false,
		},
		{
			Desc: "cooldown elapsed",
			Reminder: func() entity.Reminder {
				r := inactivityReminder()
				r.LastSentAt = ptrTime(now.Add(-25 * time.Hour))
				return r
			},
			User:   func() entity.UserSignal { return idle },
			Result: true,
		},
		{
			Desc:     "recently active",
			Reminder: inactivityReminder,
			User: func() entity.UserSignal {
				u := idle
				u.LastActivityAt = ptrTime(now.Add(-30 * time.Minute))
				return u
			},
			Result: false,
		},
		{
			Desc:     "recently active but forced",
			Reminder: inactivityReminder,
			User: func() entity.UserSignal {
				u := idle
				u.LastActivityAt = ptrTime(now.Add(-30 * time.Minute))
				return u
			},
			Force:  true,
			Result: true,
		},
		{
			Desc:     "falls back to last login",
			Reminder: inactivityReminder,
			User: func() entity.UserSignal {
				u := idle
				u.LastActivityAt = nil
				u.LastLoginAt = ptrTime(now.Add(-10 * time.Hour))
				return u
			},
			Result: false,
		},
		{
			Desc:     "falls back to account creation",
			Reminder: inactivityReminder,
			User: func() entity.UserSignal {
				u := idle
				u.LastActivityAt = nil
				u.CreatedAt = now.Add(-2 * time.Hour)
				return u
			},
			Result: false,
		},
		{
			Desc: "too early in the user's zone",
			Reminder: func() entity.Reminder {
				r := inactivityReminder()
				// 15:00 UTC is 10:00 in Bogota
				r.LocalTime = &entity.TimeOfDay{Hour: 11}
				return r
			},
			User:   func() entity.UserSignal { return idle },
			Result: false,
		},
		{
			Desc: "inside the local window",
			Reminder: func() entity.Reminder {
				r := inactivityReminder()
				r.LocalTime = &entity.TimeOfDay{Hour: 9}
				return r
			},
			User:   func() entity.UserSignal { return idle },
			Result: true,
		},
		{
			Desc: "unknown zone falls back to UTC",
			Reminder: func() entity.Reminder {
				r := inactivityReminder()
				r.LocalTime = &entity.TimeOfDay{Hour: 14, Minute: 30}
				return r
			},
			User: func() entity.UserSignal {
				u := idle
				u.Timezone = "Mars/Olympus_Mons"
				return u
			},
			Result: true,
		},
		{
			Desc: "inactive reminder",
			Reminder: func() entity.Reminder {
				r := inactivityReminder()
				r.IsActive = false
				return r
			},
			User:   func() entity.UserSignal { return idle },
			Force:  true,
			Result: false,
		},
		{
			Desc: "fixed mode is not an inactivity reminder",
			Reminder: func() entity.Reminder {
				r := inactivityReminder()
				r.Mode = entity.ReminderFixed
				return r
			},
			User:   func() entity.UserSignal { return idle },
			Result: false,
		},
		{
			Desc: "missing threshold",
			Reminder: func() entity.Reminder {
				r := inactivityReminder()
				r.InactiveAfterMinutes = nil
				return r
			},
			User:   func() entity.UserSignal { return idle },
			Force:  true,
			Result: false,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.Desc, func(t *testing.T) {
			got := reminder.ShouldSend(tc.Reminder(), tc.User(), now, tc.Force)
			assert.Equal(t, tc.Result, got)
		})
	}
}

func TestShouldSendThenCooldown(t *testing.T) {
	now := time.Date(2024, 3, 4, 15, 0, 0, 0, time.UTC)
	r := inactivityReminder()
	u := entity.UserSignal{LastActivityAt: ptrTime(now.Add(-2000 * time.Minute))}

	assert.True(t, reminder.ShouldSend(r, u, now, false))
	// the caller persists last_sent_at
	r.LastSentAt = ptrTime(now)
	assert.False(t, reminder.ShouldSend(r, u, now, false))
	assert.False(t, reminder.ShouldSend(r, u, now.Add(time.Minute), true))
}

func TestShouldFireFixed(t *testing.T) {
	bogota := entity.UserSignal{ID: 10, Timezone: "America/Bogota"}
	r := entity.Reminder{
		ID:         2,
		UserID:     10,
		Mode:       entity.ReminderFixed,
		DaysOfWeek: "daily",
		LocalTime:  &entity.TimeOfDay{Hour: 9},
		IsActive:   true,
	}
	// Monday 2024-03-04, Bogota is UTC-5
	beforeNine := time.Date(2024, 3, 4, 13, 59, 0, 0, time.UTC)
	atNine := time.Date(2024, 3, 4, 14, 0, 30, 0, time.UTC)
	later := time.Date(2024, 3, 4, 20, 0, 0, 0, time.UTC)

	assert.False(t, reminder.ShouldFire(r, bogota, beforeNine))
	assert.True(t, reminder.ShouldFire(r, bogota, atNine))

	r.LastSentAt = ptrTime(atNine)
	assert.False(t, reminder.ShouldFire(r, bogota, later))
	assert.False(t, reminder.ShouldFire(r, bogota, atNine.Add(10*time.Second)))
	// next local day at nine fires again
	assert.True(t, reminder.ShouldFire(r, bogota, atNine.Add(24*time.Hour)))
}

func TestShouldFireLocalDateBoundary(t *testing.T) {
	bogota := entity.UserSignal{Timezone: "America/Bogota"}
	r := entity.Reminder{
		Mode:       entity.ReminderFixed,
		DaysOfWeek: "daily",
		LocalTime:  &entity.TimeOfDay{Hour: 21, Minute: 30},
		IsActive:   true,
		// 2024-03-04 01:00 UTC is the evening of the 3rd in Bogota
		LastSentAt: ptrTime(time.Date(2024, 3, 4, 1, 0, 0, 0, time.UTC)),
	}
	// 2024-03-05 02:30 UTC is 21:30 of the 4th in Bogota
	now := time.Date(2024, 3, 5, 2, 30, 0, 0, time.UTC)
	assert.True(t, reminder.ShouldFire(r, bogota, now))

	r.LastSentAt = ptrTime(time.Date(2024, 3, 4, 18, 0, 0, 0, time.UTC))
	assert.False(t, reminder.ShouldFire(r, bogota, now))
}

func TestShouldFireDaysOfWeek(t *testing.T) {
	utc := entity.UserSignal{Timezone: "UTC"}
	r := entity.Reminder{
		Mode:       entity.ReminderFixed,
		DaysOfWeek: "mon,wed,fri",
		LocalTime:  &entity.TimeOfDay{Hour: 8, Minute: 15},
		IsActive:   true,
	}
	monday := time.Date(2024, 3, 4, 8, 15, 0, 0, time.UTC)
	tuesday := monday.AddDate(0, 0, 1)
	wednesday := monday.AddDate(0, 0, 2)

	assert.True(t, reminder.ShouldFire(r, utc, monday))
	assert.False(t, reminder.ShouldFire(r, utc, tuesday))
	assert.True(t, reminder.ShouldFire(r, utc, wednesday))
}

func TestEvaluateReasons(t *testing.T) {
	now := time.Date(2024, 3, 4, 15, 0, 0, 0, time.UTC)
	u := entity.UserSignal{LastActivityAt: ptrTime(now.Add(-time.Hour))}

	sent, reason := reminder.Evaluate(inactivityReminder(), u, now, false)
	assert.False(t, sent)
	assert.Equal(t, reminder.ReasonBelowThreshold, reason)

	sent, reason = reminder.Evaluate(entity.Reminder{Mode: "weekly", IsActive: true}, u, now, false)
	assert.False(t, sent)
	assert.Equal(t, reminder.ReasonUnsupportedMode, reason)

	fixed := entity.Reminder{Mode: entity.ReminderFixed, IsActive: true, DaysOfWeek: "sat", LocalTime: &entity.TimeOfDay{Hour: 15}}
	sent, reason = reminder.Evaluate(fixed, u, now, false)
	assert.False(t, sent)
	assert.Equal(t, reminder.ReasonDayNotScheduled, reason)
}

func TestParseDays(t *testing.T) {
	days, daily := reminder.ParseDays("daily")
	assert.True(t, daily)
	assert.Nil(t, days)

	days, daily = reminder.ParseDays("Mon, thursday,xyz")
	assert.False(t, daily)
	assert.Equal(t, map[time.Weekday]bool{time.Monday: true, time.Thursday: true}, days)
}

func TestLocation(t *testing.T) {
	assert.Equal(t, time.UTC, reminder.Location(""))
	assert.Equal(t, time.UTC, reminder.Location("Not/AZone"))
	assert.Equal(t, "America/Bogota", reminder.Location("America/Bogota").String())
}
