package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	for _, s := range []string{"Open", "InProgress", "Done"} {
		st, err := ParseStatus(s)
		require.NoError(t, err)
		assert.Equal(t, s, string(st))
	}

	for _, s := range []string{"", "open", "DONE", "Closed", " Open"} {
		_, err := ParseStatus(s)
		assert.Error(t, err, "expected %q to be rejected", s)
	}
}

func TestParsePriority(t *testing.T) {
	p, err := ParsePriority("High")
	require.NoError(t, err)
	assert.Equal(t, PriorityHigh, p)

	_, err = ParsePriority("Urgent")
	assert.ErrorContains(t, err, "Low, Medium, High")
}

func TestIssueJSONRejectsUnknownEnum(t *testing.T) {
	var iss Issue
	err := json.Unmarshal([]byte(`{"id":"1","status":"Closed","priority":"Low"}`), &iss)
	assert.Error(t, err)

	err = json.Unmarshal([]byte(`{"id":"1","status":"Done","priority":"Low"}`), &iss)
	require.NoError(t, err)
	assert.Equal(t, StatusDone, iss.Status)
}

func TestIssueJSONFieldNames(t *testing.T) {
	ts := time.Date(2026, 10, 16, 9, 30, 0, 123000000, time.UTC)
	data, err := json.Marshal(Issue{
		ID: "abc", Title: "Bug", Description: "Login fails",
		Status: StatusOpen, Priority: PriorityHigh, CreatedAt: ts, UpdatedAt: ts,
	})
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "Open", raw["status"])
	assert.Equal(t, "2026-10-16T09:30:00.123Z", raw["createdAt"])
	assert.Contains(t, raw, "updatedAt")
}

func TestTimestampRoundTrip(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 6789012, time.FixedZone("X", 3600))
	s := FormatTimestamp(ts)
	assert.Equal(t, "2026-01-02T02:04:05.006Z", s)

	back, err := ParseTimestamp(s)
	require.NoError(t, err)
	assert.True(t, back.Equal(Timestamp(ts)))

	// Fixed width keeps lexical order equal to time order.
	assert.Less(t, FormatTimestamp(ts), FormatTimestamp(ts.Add(time.Millisecond)))
}

func TestUpdateIssueRequestIsEmpty(t *testing.T) {
	assert.True(t, UpdateIssueRequest{}.IsEmpty())
	done := "Done"
	assert.False(t, UpdateIssueRequest{Status: &done}.IsEmpty())
}
