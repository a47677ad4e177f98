package domain

import (
	"fmt"
	"strings"
	"time"
)

// Status enumerates the workflow states of an issue. Any status may follow
// any other.
type Status string

const (
	StatusOpen       Status = "Open"
	StatusInProgress Status = "InProgress"
	StatusDone       Status = "Done"
)

// Statuses lists every valid status in declaration order.
var Statuses = []Status{StatusOpen, StatusInProgress, StatusDone}

// ParseStatus converts s to a Status. Matching is exact; there is no default.
func ParseStatus(s string) (Status, error) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("invalid status %q: must be one of %s", s, joinValues(Statuses))
}

// UnmarshalText rejects values outside the enumerated set.
func (s *Status) UnmarshalText(b []byte) error {
	st, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// Priority enumerates how urgent an issue is.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// Priorities lists every valid priority in declaration order.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// ParsePriority converts s to a Priority. Matching is exact; there is no default.
func ParsePriority(s string) (Priority, error) {
	for _, p := range Priorities {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("invalid priority %q: must be one of %s", s, joinValues(Priorities))
}

// UnmarshalText rejects values outside the enumerated set.
func (p *Priority) UnmarshalText(b []byte) error {
	pr, err := ParsePriority(string(b))
	if err != nil {
		return err
	}
	*p = pr
	return nil
}

func joinValues[T ~string](vals []T) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}

// Field limits, counted in Unicode code points.
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 2000
)

// Issue is the tracked work item. ID and CreatedAt never change after
// creation; UpdatedAt is never earlier than CreatedAt.
type Issue struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	Priority    Priority  `json:"priority"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CreateIssueRequest holds the client-supplied fields for a new issue.
// Priority stays a plain string so the validator can report bad values.
type CreateIssueRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

// UpdateIssueRequest holds a partial update. Nil fields keep their
// current value.
type UpdateIssueRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
	Priority    *string `json:"priority,omitempty"`
}

// IsEmpty reports whether no updatable field was supplied.
func (r UpdateIssueRequest) IsEmpty() bool {
	return r.Title == nil && r.Description == nil && r.Status == nil && r.Priority == nil
}

// Timestamp returns t in UTC truncated to millisecond precision, the
// resolution issue timestamps are stored with.
func Timestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

// TimestampLayout is a fixed-width RFC 3339 layout. Stores that sort
// timestamps as strings use it so lexical order matches time order.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// FormatTimestamp renders t with TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return Timestamp(t).Format(TimestampLayout)
}

// ParseTimestamp parses a value written by FormatTimestamp.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(TimestampLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}
