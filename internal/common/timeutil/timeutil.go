package timeutil

import (
	"encoding/json"
	"fmt"
	"time"
)

// Layout is fixed width so stored timestamps sort lexicographically in
// chronological order.
const Layout = "2006-01-02T15:04:05.000000Z"

// Clock returns the current instant. Services take one so windows can be tested.
type Clock func() time.Time

// Now is the default clock.
func Now() time.Time {
	return time.Now().UTC()
}

func Format(t time.Time) string {
	return t.UTC().Format(Layout)
}

// Parse accepts the storage layout and RFC 3339.
func Parse(s string) (time.Time, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		t, err = time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
		}
	}
	return t.UTC(), nil
}

// DayBounds returns the first and last microsecond of the UTC calendar day
// containing now.
func DayBounds(now time.Time) (time.Time, time.Time) {
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.Add(24*time.Hour - time.Microsecond)
}

// MonthStart returns the first instant of the UTC month containing now.
func MonthStart(now time.Time) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// Timestamp is a time.Time that round-trips through JSON in Layout.
// The zero value encodes as null.
type Timestamp struct {
	time.Time
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC().Truncate(time.Microsecond)}
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(Format(t.Time))
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*t = Timestamp{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*t = Timestamp{}
		return nil
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}
