package errorvalues

import "errors"

var (
	ErrUserNotFound        = errors.New("user doesn't exists")
	ErrInvalidToken        = errors.New("invalid token")
	ErrInvalidRange        = errors.New("invalid date range")
	ErrReminderNotFound    = errors.New("reminder doesn't exists")
	ErrBatchInProgress     = errors.New("reminders batch already in progress")
	ErrMailerNotConfigured = errors.New("mailer is not configured")
)
