package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllAndAnyCollapse(t *testing.T) {
	assert.Nil(t, All())
	assert.Nil(t, All(nil, nil))

	only := Eq("role", "admin")
	assert.Equal(t, only, All(nil, only))

	both := All(only, Eq("name", "x"))
	and, ok := both.(And)
	require.True(t, ok)
	assert.Len(t, and.Predicates, 2)

	_, ok = Any(only, Eq("role", "owner")).(Or)
	assert.True(t, ok)
}

func TestNormalizeTimesAndInts(t *testing.T) {
	leaf := Gte("created_at", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "2024-03-01T00:00:00.000000Z", leaf.Value)

	assert.Equal(t, int64(3), Eq("level", 3).Value)
}

func TestMatch(t *testing.T) {
	rec := map[string]any{
		"role":       "admin",
		"level":      float64(2),
		"published":  true,
		"created_at": "2024-03-15T10:00:00.000000Z",
		"title":      "The Fox and the Grapes",
	}

	cases := []struct {
		name string
		p    Predicate
		want bool
	}{
		{"nil matches", nil, true},
		{"eq string", Eq("role", "admin"), true},
		{"eq string miss", Eq("role", "viewer"), false},
		{"number gte", Gte("level", 2), true},
		{"number gt", Gt("level", 2), false},
		{"bool eq", Eq("published", true), true},
		{"time window", All(Gte("created_at", "2024-03-15T00:00:00.000000Z"), Lte("created_at", "2024-03-15T23:59:59.999999Z")), true},
		{"outside window", Lt("created_at", "2024-03-15T00:00:00.000000Z"), false},
		{"like is case insensitive", Like("title", "fox AND"), true},
		{"missing field", Eq("language", "en"), false},
		{"eq nil on missing field", Eq("language", nil), true},
		{"type mismatch", Eq("level", "2"), false},
		{"or", Any(Eq("role", "owner"), Eq("role", "admin")), true},
		{"empty and", And{}, true},
		{"empty or", Or{}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Match(tc.p, rec))
		})
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(All(Eq("user_id", "u1"), Like("name", "a"))))
	assert.Error(t, Validate(Eq("data'); DROP TABLE records; --", "x")))
	assert.Error(t, Validate(Gt("level", nil)))
	assert.Error(t, Validate(Leaf{Field: "level", Op: "between", Value: int64(1)}))
}
