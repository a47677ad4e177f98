// Package validate checks create and update payloads against the issue
// field rules. Functions here are pure: they never touch storage and never
// fail, they only report violations.
package validate

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ignite/issue-tracker/internal/domain"
)

// Violations is an ordered list of human-readable rule failures. Order
// follows field declaration order: title, description, status, priority.
type Violations []string

// OK reports whether no rule failed.
func (v Violations) OK() bool { return len(v) == 0 }

// Error joins all violations into a single message.
func (v Violations) Error() string { return strings.Join(v, "; ") }

// MsgNoFields is the single violation returned for an update that names no field.
const MsgNoFields = "at least one of title, description, status, or priority must be provided"

// Create validates a new-issue payload.
func Create(req domain.CreateIssueRequest) Violations {
	var v Violations
	v = appendIf(v, checkTitle(req.Title))
	v = appendIf(v, checkDescription(req.Description))
	v = appendIf(v, checkPriority(req.Priority))
	return v
}

// Update validates a partial update. Absent fields are skipped; present
// fields follow the same rules as Create.
func Update(req domain.UpdateIssueRequest) Violations {
	if req.IsEmpty() {
		return Violations{MsgNoFields}
	}

	var v Violations
	if req.Title != nil {
		v = appendIf(v, checkTitle(*req.Title))
	}
	if req.Description != nil {
		v = appendIf(v, checkDescription(*req.Description))
	}
	if req.Status != nil {
		v = appendIf(v, checkStatus(*req.Status))
	}
	if req.Priority != nil {
		v = appendIf(v, checkPriority(*req.Priority))
	}
	return v
}

func appendIf(v Violations, msg string) Violations {
	if msg == "" {
		return v
	}
	return append(v, msg)
}

func checkTitle(s string) string {
	return checkText("title", s, domain.MaxTitleLength)
}

func checkDescription(s string) string {
	return checkText("description", s, domain.MaxDescriptionLength)
}

func checkText(field, s string, max int) string {
	if strings.TrimSpace(s) == "" {
		return field + " is required"
	}
	if utf8.RuneCountInString(s) > max {
		return fmt.Sprintf("%s must be %d characters or fewer", field, max)
	}
	return ""
}

func checkStatus(s string) string {
	if _, err := domain.ParseStatus(s); err != nil {
		return "status must be one of Open, InProgress, Done"
	}
	return ""
}

func checkPriority(s string) string {
	if _, err := domain.ParsePriority(s); err != nil {
		return "priority must be one of Low, Medium, High"
	}
	return ""
}
