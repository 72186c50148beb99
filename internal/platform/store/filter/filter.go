// Package filter is the typed predicate tree accepted by every store backend.
//
// A Predicate is either a Leaf comparing one record field with a literal, or an
// And/Or node over child predicates. The interface is sealed so backends can
// switch exhaustively over the node types.
package filter

import (
	"fmt"
	"time"

	"storyfeed-backend/internal/common/timeutil"
)

type Predicate interface {
	predicateNode()
}

type Op string

const (
	OpEq   Op = "eq"
	OpGt   Op = "gt"
	OpGte  Op = "gte"
	OpLt   Op = "lt"
	OpLte  Op = "lte"
	OpLike Op = "like" // case-insensitive substring
)

// Leaf compares Field with Value. Value is one of string, int64, float64, bool
// or nil (Eq only).
type Leaf struct {
	Field string
	Op    Op
	Value any
}

type And struct {
	Predicates []Predicate
}

type Or struct {
	Predicates []Predicate
}

func (Leaf) predicateNode() {}
func (And) predicateNode() {}
func (Or) predicateNode() {}

func Eq(field string, value any) Leaf { return Leaf{Field: field, Op: OpEq, Value: normalize(value)} }
func Gt(field string, value any) Leaf { return Leaf{Field: field, Op: OpGt, Value: normalize(value)} }
func Gte(field string, value any) Leaf { return Leaf{Field: field, Op: OpGte, Value: normalize(value)} }
func Lt(field string, value any) Leaf { return Leaf{Field: field, Op: OpLt, Value: normalize(value)} }
func Lte(field string, value any) Leaf { return Leaf{Field: field, Op: OpLte, Value: normalize(value)} }
func Like(field, substr string) Leaf { return Leaf{Field: field, Op: OpLike, Value: substr} }

// All joins the non-nil predicates with And. It returns nil when nothing is
// left, which backends treat as "match everything".
func All(ps ...Predicate) Predicate {
	kept := compact(ps)
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	}
	return And{Predicates: kept}
}

// Any joins the non-nil predicates with Or.
func Any(ps ...Predicate) Predicate {
	kept := compact(ps)
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	}
	return Or{Predicates: kept}
}

func compact(ps []Predicate) []Predicate {
	kept := make([]Predicate, 0, len(ps))
	for _, p := range ps {
		if p != nil {
			kept = append(kept, p)
		}
	}
	return kept
}

// normalize maps Go values onto the scalar set records are stored with.
// Times become the fixed-width storage layout.
func normalize(v any) any {
	switch x := v.(type) {
	case nil, string, bool, int64, float64:
		return x
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case uint32:
		return int64(x)
	case float32:
		return float64(x)
	case time.Time:
		return timeutil.Format(x)
	case timeutil.Timestamp:
		return timeutil.Format(x.Time)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
