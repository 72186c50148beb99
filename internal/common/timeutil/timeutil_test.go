package timeutil

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayBounds(t *testing.T) {
	now := time.Date(2024, 3, 15, 17, 42, 0, 0, time.FixedZone("UTC+3", 3*3600))

	start, end := DayBounds(now)

	assert.Equal(t, "2024-03-15T00:00:00.000000Z", Format(start))
	assert.Equal(t, "2024-03-15T23:59:59.999999Z", Format(end))
}

func TestMonthStart(t *testing.T) {
	now := time.Date(2024, 2, 29, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), MonthStart(now))
}

func TestFormatSortsChronologically(t *testing.T) {
	early := Format(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
	late := Format(time.Date(2024, 1, 2, 3, 4, 5, 1000, time.UTC))
	assert.Less(t, early, late)
	assert.Len(t, early, len(late))
}

func TestTimestampJSON(t *testing.T) {
	type doc struct {
		At   Timestamp `json:"at"`
		Seen Timestamp `json:"seen"`
	}

	in := doc{At: NewTimestamp(time.Date(2024, 5, 1, 8, 30, 0, 123456789, time.UTC))}
	raw, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"at":"2024-05-01T08:30:00.123456Z","seen":null}`, string(raw))

	var out doc
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.True(t, in.At.Equal(out.At.Time))
	assert.True(t, out.Seen.IsZero())

	require.NoError(t, json.Unmarshal([]byte(`{"at":"2024-05-01T08:30:00Z"}`), &out))
	assert.Equal(t, 8, out.At.Hour())
}
