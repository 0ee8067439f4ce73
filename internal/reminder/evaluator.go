// Package reminder decides whether a reminder policy should fire at a given
// instant. Every function here is pure: persisting last_sent_at after a send
// is up to the caller.
package reminder

import (
	"time"

	"github.com/limbo/placebetween/pkg/entity"
)

const Cooldown = 24 * time.Hour

// Decision reasons reported back by the batch.
const (
	ReasonSent             = "sent"
	ReasonInactive         = "inactive"
	ReasonUnsupportedMode  = "unsupported_mode"
	ReasonMisconfigured    = "misconfigured"
	ReasonCooldown         = "cooldown"
	ReasonBelowThreshold   = "below_threshold"
	ReasonTooEarly         = "too_early"
	ReasonDayNotScheduled  = "day_not_scheduled"
	ReasonAlreadySentToday = "already_sent_today"
	ReasonOutsideMinute    = "outside_minute"
	ReasonEmailNotVerified = "email_not_verified"
	ReasonDeliveryFailed   = "delivery_failed"
)

// ShouldSend evaluates an inactivity reminder. force skips the inactivity and
// local window checks but never the cooldown.
func ShouldSend(r entity.Reminder, u entity.UserSignal, now time.Time, force bool) bool {
	_, reason := evaluateInactivity(r, u, now, force)
	return reason == ReasonSent
}

// ShouldFire evaluates a fixed-time reminder: scheduled weekday, not sent yet
// on the user's local date and the local clock on the configured minute.
func ShouldFire(r entity.Reminder, u entity.UserSignal, now time.Time) bool {
	_, reason := evaluateFixed(r, u, now)
	return reason == ReasonSent
}

// Evaluate dispatches on the reminder mode and explains the outcome.
func Evaluate(r entity.Reminder, u entity.UserSignal, now time.Time, force bool) (bool, string) {
	switch r.Mode {
	case entity.ReminderInactivity:
		return evaluateInactivity(r, u, now, force)
	case entity.ReminderFixed:
		return evaluateFixed(r, u, now)
	}
	return false, ReasonUnsupportedMode
}

func evaluateInactivity(r entity.Reminder, u entity.UserSignal, now time.Time, force bool) (bool, string) {
	switch {
	case !r.IsActive:
		return false, ReasonInactive
	case r.Mode != entity.ReminderInactivity:
		return false, ReasonUnsupportedMode
	case r.InactiveAfterMinutes == nil:
		return false, ReasonMisconfigured
	}
	now = now.UTC()
	if r.LastSentAt != nil && now.Sub(r.LastSentAt.UTC()) < Cooldown {
		return false, ReasonCooldown
	}
	if force {
		return true, ReasonSent
	}
	threshold := time.Duration(*r.InactiveAfterMinutes) * time.Minute
	if now.Sub(LastSignal(u)) < threshold {
		return false, ReasonBelowThreshold
	}
	if r.LocalTime != nil {
		local := now.In(Location(u.Timezone))
		if minuteOfDay(local) < r.LocalTime.Minutes() {
			return false, ReasonTooEarly
		}
	}
	return true, ReasonSent
}

func evaluateFixed(r entity.Reminder, u entity.UserSignal, now time.Time) (bool, string) {
	switch {
	case !r.IsActive:
		return false, ReasonInactive
	case r.Mode != entity.ReminderFixed:
		return false, ReasonUnsupportedMode
	case r.LocalTime == nil:
		return false, ReasonMisconfigured
	}
	loc := Location(u.Timezone)
	local := now.In(loc)
	if !allowedOn(r.DaysOfWeek, local.Weekday()) {
		return false, ReasonDayNotScheduled
	}
	if r.LastSentAt != nil && sameDate(r.LastSentAt.In(loc), local) {
		return false, ReasonAlreadySentToday
	}
	if local.Hour() != r.LocalTime.Hour || local.Minute() != r.LocalTime.Minute {
		return false, ReasonOutsideMinute
	}
	return true, ReasonSent
}

// LastSignal is the latest known sign of life: last activity, else last login,
// else account creation. Columns without zone come out of pgx as UTC already.
func LastSignal(u entity.UserSignal) time.Time {
	switch {
	case u.LastActivityAt != nil:
		return u.LastActivityAt.UTC()
	case u.LastLoginAt != nil:
		return u.LastLoginAt.UTC()
	}
	return u.CreatedAt.UTC()
}
