package entity

import (
	"fmt"
	"time"
)

type SessionType string

const (
	SessionDay   SessionType = "day"
	SessionNight SessionType = "night"
)

type ReminderMode string

const (
	ReminderFixed      ReminderMode = "fixed"
	ReminderInactivity ReminderMode = "inactivity"
)

type User struct {
	ID       int64
	Username string
	Email    string
}

// Session is a user's day or night record. Date is a calendar day at UTC midnight.
type Session struct {
	ID           int64
	UserID       int64
	Date         time.Time
	Type         SessionType
	PointsEarned int
}

// Completion is an activity completion joined with its activity and category.
// Nil names mean the reference could not be resolved.
type Completion struct {
	ID                 int64
	SessionID          int64
	PointsAwarded      int
	CompletedAt        *time.Time
	ActivityExternalID *string
	ActivityName       *string
	CategoryName       *string
}

type EmotionCheckin struct {
	ID          int64
	SessionID   int64
	EmotionName *string
	Intensity   *int
	Note        *string
	CreatedAt   *time.Time
}

type TimeOfDay struct {
	Hour   int
	Minute int
}

func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

type Reminder struct {
	ID                   int64
	UserID               int64
	Type                 string
	Mode                 ReminderMode
	DaysOfWeek           string
	LocalTime            *TimeOfDay
	InactiveAfterMinutes *int
	LastSentAt           *time.Time
	IsActive             bool
}

// UserSignal is the part of a user the reminder policies look at.
type UserSignal struct {
	ID              int64
	Username        string
	Email           string
	Timezone        string
	LastActivityAt  *time.Time
	LastLoginAt     *time.Time
	CreatedAt       time.Time
	IsEmailVerified bool
}

type ReminderTarget struct {
	Reminder Reminder
	Owner    UserSignal
}

type ReminderDecision struct {
	ReminderID int64  `json:"reminder_id"`
	UserID     int64  `json:"user_id"`
	Sent       bool   `json:"sent"`
	Reason     string `json:"reason"`
	Error      string `json:"error,omitempty"`
}

type BatchReport struct {
	RunID     string             `json:"run_id"`
	Sent      int                `json:"sent"`
	Decisions []ReminderDecision `json:"decisions"`
}

type RangeReport struct {
	Range         RangeInfo     `json:"range"`
	Days          []DayReport   `json:"days"`
	Totals        Totals        `json:"totals"`
	Streak        Streak        `json:"streak"`
	Distributions Distributions `json:"distributions"`
}

type RangeInfo struct {
	Start    string `json:"start"`
	End      string `json:"end"`
	DayCount int    `json:"day_count"`
	Timezone string `json:"timezone"`
}

type DayReport struct {
	Date             string                 `json:"date"`
	PointsTotal      int                    `json:"points_total"`
	PointsDay        int                    `json:"points_day"`
	PointsNight      int                    `json:"points_night"`
	CompletionsCount int                    `json:"completions_count"`
	PrincipalCount   int                    `json:"principal_count"`
	RecommendedCount int                    `json:"recommended_count"`
	Categories       map[string]int         `json:"categories"`
	Emotions         map[string]EmotionStat `json:"emotions"`
	EmotionEntries   []EmotionEntry         `json:"emotion_entries"`
	Activities       []ActivityEntry        `json:"activities"`
}

type ActivityEntry struct {
	ExternalID   *string `json:"external_id"`
	Name         string  `json:"name"`
	CategoryName string  `json:"category_name"`
	Points       int     `json:"points"`
	SessionType  string  `json:"session_type"`
	CompletedAt  *string `json:"completed_at"`
}

type EmotionEntry struct {
	Name      string  `json:"name"`
	Intensity *int    `json:"intensity"`
	Note      *string `json:"note"`
	CreatedAt *string `json:"created_at"`
}

type EmotionStat struct {
	Count        int      `json:"count"`
	IntensityAvg *float64 `json:"intensity_avg"`
}

type Totals struct {
	PointsTotal      int `json:"points_total"`
	CompletionsTotal int `json:"completions_total"`
	PrincipalDays    int `json:"principal_days"`
	RecommendedDays  int `json:"recommended_days"`
}

type Streak struct {
	Current int `json:"current"`
	Best    int `json:"best"`
}

type Distributions struct {
	CategoriesPoints map[string]int         `json:"categories_points"`
	Emotions         map[string]EmotionStat `json:"emotions"`
}
