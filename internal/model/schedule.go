package model

import "time"

// Defaults applied when the schedule document does not exist yet or a
// configuration update omits a field.
const (
	DefaultScheduleTime = "09:00"
	DefaultScheduleTZ   = "UTC"
	DefaultTitle        = "숏츠 체크인"
	DefaultBody         = "오늘 숏츠 상태를 업데이트해 주세요."
)

// Schedule is the singleton daily notification schedule. TimeOfDay is a
// zero-padded 24-hour "HH:MM" wall clock label compared by exact string
// equality against the current time in Timezone. LastSentOn is the
// "YYYY-MM-DD" calendar date (in Timezone) of the last dispatched send,
// empty when never sent.
type Schedule struct {
	Enabled    bool   `json:"enabled"`
	TimeOfDay  string `json:"time"`
	Title      string `json:"title"`
	Body       string `json:"body"`
	Timezone   string `json:"timezone"`
	LastSentOn string `json:"lastSentOn,omitempty"`
}

// DefaultSchedule is the documented defaulted state for an absent document.
func DefaultSchedule() Schedule {
	return Schedule{
		Enabled:   false,
		TimeOfDay: DefaultScheduleTime,
		Title:     DefaultTitle,
		Body:      DefaultBody,
		Timezone:  DefaultScheduleTZ,
	}
}

// Location resolves the schedule timezone, falling back to UTC for an
// empty or unloadable zone name.
func (s Schedule) Location() *time.Location {
	if s.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// SchedulePatch is a partial schedule update; nil fields are left unchanged
// by the store merge.
type SchedulePatch struct {
	Enabled    *bool   `json:"enabled,omitempty"`
	TimeOfDay  *string `json:"time,omitempty"`
	Title      *string `json:"title,omitempty"`
	Body       *string `json:"body,omitempty"`
	Timezone   *string `json:"timezone,omitempty"`
	LastSentOn *string `json:"lastSentOn,omitempty"`
}

// PushSubscription is an opaque web push endpoint descriptor as delivered by
// the browser's PushManager.
type PushSubscription struct {
	Endpoint string               `json:"endpoint"`
	Keys     PushSubscriptionKeys `json:"keys"`
}

type PushSubscriptionKeys struct {
	P256dh string `json:"p256dh"`
	Auth   string `json:"auth"`
}

// NotificationPayload is the JSON document delivered to the service worker.
type NotificationPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url"`
}

// TickResult reports a single scheduler tick outcome. Matches the wire shape
// {"sent": bool, "reason": "..."} returned by the tick endpoint.
type TickResult struct {
	Sent   bool   `json:"sent"`
	Reason string `json:"reason,omitempty"`
}

// Tick skip reasons.
const (
	SkipDisabled    = "disabled"
	SkipNotTime     = "not-time"
	SkipAlreadySent = "already-sent"
)

// FanoutResult counts one fan-out batch. Total is the pre-pruning
// subscription count.
type FanoutResult struct {
	Sent  int `json:"sent"`
	Total int `json:"total"`
}
