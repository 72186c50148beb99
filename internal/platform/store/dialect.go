package store

import (
	"fmt"
	"strings"

	"storyfeed-backend/internal/platform/store/filter"
)

// Dialect hides the JSON and placeholder syntax of one SQL engine.
type Dialect interface {
	Name() string
	// Placeholder returns the n-th (1-based) bind parameter.
	Placeholder(n int) string
	// Field is the SQL expression for a top-level JSON field, typed for a
	// comparison against value.
	Field(name string, value any) string
	// SortKey is the expression used in ORDER BY.
	SortKey(name string, desc bool) string
	LikeOperator() string
	// LockClause is appended to the SELECT in Mutate.
	LockClause() string
	LimitOffset(limit, offset int) string
	Schema() []string
}

type postgresDialect struct{}

// Postgres stores records as JSONB and locks rows with SELECT ... FOR UPDATE.
var Postgres Dialect = postgresDialect{}

func (postgresDialect) Name() string { return "postgres" }

func (postgresDialect) Placeholder(n int) string { return fmt.Sprintf("$%d", n) }

func (postgresDialect) Field(name string, value any) string {
	if name == IDField {
		return "id"
	}
	switch value.(type) {
	case int64, float64:
		return fmt.Sprintf("(data->>'%s')::numeric", name)
	case bool:
		return fmt.Sprintf("(data->>'%s')::boolean", name)
	}
	return fmt.Sprintf("data->>'%s'", name)
}

func (postgresDialect) SortKey(name string, desc bool) string {
	key := fmt.Sprintf("data->'%s'", name)
	if name == IDField {
		key = "id"
	}
	if desc {
		return key + " DESC NULLS LAST"
	}
	return key + " ASC NULLS FIRST"
}

func (postgresDialect) LikeOperator() string { return "ILIKE" }

func (postgresDialect) LockClause() string { return " FOR UPDATE" }

func (postgresDialect) LimitOffset(limit, offset int) string {
	var b strings.Builder
	if limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", limit)
	}
	if offset > 0 {
		fmt.Fprintf(&b, " OFFSET %d", offset)
	}
	return b.String()
}

func (postgresDialect) Schema() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS records (
			collection TEXT NOT NULL,
			id TEXT NOT NULL,
			data JSONB NOT NULL,
			inserted_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (collection, id)
		)`,
	}
}

type sqliteDialect struct{}

// SQLite stores records as JSON text and relies on the single writer
// connection for Mutate isolation.
var SQLite Dialect = sqliteDialect{}

func (sqliteDialect) Name() string { return "sqlite" }

func (sqliteDialect) Placeholder(int) string { return "?" }

func (sqliteDialect) Field(name string, _ any) string {
	if name == IDField {
		return "id"
	}
	return fmt.Sprintf("json_extract(data, '$.%s')", name)
}

func (d sqliteDialect) SortKey(name string, desc bool) string {
	key := d.Field(name, nil)
	if desc {
		return key + " DESC"
	}
	return key + " ASC"
}

func (sqliteDialect) LikeOperator() string { return "LIKE" }

func (sqliteDialect) LockClause() string { return "" }

func (sqliteDialect) LimitOffset(limit, offset int) string {
	if limit <= 0 && offset <= 0 {
		return ""
	}
	if limit <= 0 {
		limit = -1
	}
	return fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)
}

func (sqliteDialect) Schema() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS records (
			collection TEXT NOT NULL,
			id TEXT NOT NULL,
			data TEXT NOT NULL,
			inserted_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now')),
			PRIMARY KEY (collection, id)
		)`,
	}
}

// compiler turns a predicate tree into a WHERE fragment. Values are always
// bound as parameters; field names were validated before compilation.
type compiler struct {
	dialect Dialect
	args    []any
}

func (c *compiler) bind(v any) string {
	c.args = append(c.args, v)
	return c.dialect.Placeholder(len(c.args))
}

func (c *compiler) compile(p filter.Predicate) (string, error) {
	switch n := p.(type) {
	case nil:
		return "1 = 1", nil
	case filter.Leaf:
		return c.leaf(n)
	case filter.And:
		return c.join(n.Predicates, " AND ", "1 = 1")
	case filter.Or:
		return c.join(n.Predicates, " OR ", "1 = 0")
	default:
		return "", fmt.Errorf("%w: unsupported predicate %T", ErrInvalidRequest, p)
	}
}

func (c *compiler) join(ps []filter.Predicate, sep, empty string) (string, error) {
	if len(ps) == 0 {
		return empty, nil
	}
	parts := make([]string, 0, len(ps))
	for _, p := range ps {
		sql, err := c.compile(p)
		if err != nil {
			return "", err
		}
		parts = append(parts, sql)
	}
	return "(" + strings.Join(parts, sep) + ")", nil
}

var sqlOps = map[filter.Op]string{
	filter.OpEq:  "=",
	filter.OpGt:  ">",
	filter.OpGte: ">=",
	filter.OpLt:  "<",
	filter.OpLte: "<=",
}

func (c *compiler) leaf(l filter.Leaf) (string, error) {
	field := c.dialect.Field(l.Field, l.Value)
	if l.Value == nil {
		return field + " IS NULL", nil
	}
	if l.Op == filter.OpLike {
		pattern := "%" + escapeLike(l.Value.(string)) + "%"
		return fmt.Sprintf("%s %s %s ESCAPE '\\'", field, c.dialect.LikeOperator(), c.bind(pattern)), nil
	}
	op, ok := sqlOps[l.Op]
	if !ok {
		return "", fmt.Errorf("%w: unknown operator %q", ErrInvalidRequest, l.Op)
	}
	return fmt.Sprintf("%s %s %s", field, op, c.bind(l.Value)), nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
