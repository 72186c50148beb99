package filter

import (
	"fmt"
	"regexp"
	"strings"
)

var fieldPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// ValidateField rejects field names that could not be spliced into a JSON path.
func ValidateField(name string) error {
	if !fieldPattern.MatchString(name) {
		return fmt.Errorf("invalid field name %q", name)
	}
	return nil
}

// Validate walks the tree and checks every leaf.
func Validate(p Predicate) error {
	switch n := p.(type) {
	case nil:
		return nil
	case Leaf:
		if err := ValidateField(n.Field); err != nil {
			return err
		}
		switch n.Op {
		case OpEq:
		case OpGt, OpGte, OpLt, OpLte:
			if n.Value == nil {
				return fmt.Errorf("field %s: %s needs a value", n.Field, n.Op)
			}
		case OpLike:
			if _, ok := n.Value.(string); !ok {
				return fmt.Errorf("field %s: like needs a string", n.Field)
			}
		default:
			return fmt.Errorf("field %s: unknown operator %q", n.Field, n.Op)
		}
		return nil
	case And:
		return validateAll(n.Predicates)
	case Or:
		return validateAll(n.Predicates)
	default:
		return fmt.Errorf("unsupported predicate %T", p)
	}
}

func validateAll(ps []Predicate) error {
	for _, p := range ps {
		if err := Validate(p); err != nil {
			return err
		}
	}
	return nil
}

// Match evaluates p against a decoded JSON record. A nil predicate matches.
func Match(p Predicate, rec map[string]any) bool {
	switch n := p.(type) {
	case nil:
		return true
	case Leaf:
		return matchLeaf(n, rec)
	case And:
		for _, child := range n.Predicates {
			if !Match(child, rec) {
				return false
			}
		}
		return true
	case Or:
		for _, child := range n.Predicates {
			if Match(child, rec) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func matchLeaf(l Leaf, rec map[string]any) bool {
	got, present := rec[l.Field]
	if l.Value == nil {
		return l.Op == OpEq && (!present || got == nil)
	}
	if !present || got == nil {
		return false
	}

	if l.Op == OpLike {
		s, ok := got.(string)
		return ok && strings.Contains(strings.ToLower(s), strings.ToLower(l.Value.(string)))
	}

	cmp, ok := Compare(got, l.Value)
	if !ok {
		return false
	}
	switch l.Op {
	case OpEq:
		return cmp == 0
	case OpGt:
		return cmp > 0
	case OpGte:
		return cmp >= 0
	case OpLt:
		return cmp < 0
	case OpLte:
		return cmp <= 0
	}
	return false
}

// Compare orders two scalars of the same kind. Numbers compare numerically,
// strings bytewise, and bools only by equality (true sorts after false).
func Compare(a, b any) (int, bool) {
	if af, ok := toFloat(a); ok {
		bf, ok := toFloat(b)
		if !ok {
			return 0, false
		}
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		}
		return 0, true
	}

	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(av, bv), true
	case bool:
		bv, ok := b.(bool)
		if !ok {
			return 0, false
		}
		switch {
		case av == bv:
			return 0, true
		case bv:
			return -1, true
		}
		return 1, true
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int64:
		return float64(x), true
	case int:
		return float64(x), true
	}
	return 0, false
}
