package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"storyfeed-backend/internal/platform/store/filter"
)

// SQLStore keeps all collections in one `records` table with a JSON column.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
}

func NewSQLStore(db *sql.DB, dialect Dialect) *SQLStore {
	return &SQLStore{db: db, dialect: dialect}
}

// Migrate creates the records table when missing.
func (s *SQLStore) Migrate(ctx context.Context) error {
	for _, stmt := range s.dialect.Schema() {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate %s: %w", s.dialect.Name(), err)
		}
	}
	return nil
}

func (s *SQLStore) DB() *sql.DB {
	return s.db
}

func (s *SQLStore) Insert(ctx context.Context, collection string, rec Record) (string, error) {
	id := rec.ID()
	if id == "" {
		id = uuid.New().String()
	}
	raw, err := encodeData(rec)
	if err != nil {
		return "", err
	}

	c := &compiler{dialect: s.dialect}
	query := fmt.Sprintf("INSERT INTO records (collection, id, data) VALUES (%s, %s, %s)",
		c.bind(collection), c.bind(id), c.bind(string(raw)))
	if _, err := s.db.ExecContext(ctx, query, c.args...); err != nil {
		if isUniqueViolation(err) {
			return "", ErrDuplicateID
		}
		return "", fmt.Errorf("insert into %s: %w", collection, err)
	}
	return id, nil
}

func (s *SQLStore) Get(ctx context.Context, collection, id string) (Record, error) {
	return s.get(ctx, s.db, collection, id, "")
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SQLStore) get(ctx context.Context, q queryer, collection, id, lock string) (Record, error) {
	c := &compiler{dialect: s.dialect}
	query := fmt.Sprintf("SELECT data FROM records WHERE collection = %s AND id = %s%s",
		c.bind(collection), c.bind(id), lock)

	var raw []byte
	if err := q.QueryRowContext(ctx, query, c.args...).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return decodeData(id, raw)
}

func (s *SQLStore) Find(ctx context.Context, collection string, q Query) ([]Record, error) {
	if err := validateQuery(q); err != nil {
		return nil, err
	}
	c := &compiler{dialect: s.dialect}
	where, err := s.where(c, collection, q.Filter)
	if err != nil {
		return nil, err
	}

	order := make([]string, 0, len(q.Sort)+1)
	for _, key := range q.Sort {
		order = append(order, s.dialect.SortKey(key.Field, key.Desc))
	}
	order = append(order, "id ASC")

	query := "SELECT id, data FROM records WHERE " + where +
		" ORDER BY " + strings.Join(order, ", ") +
		s.dialect.LimitOffset(q.Limit, q.Offset)

	rows, err := s.db.QueryContext(ctx, query, c.args...)
	if err != nil {
		return nil, fmt.Errorf("find in %s: %w", collection, err)
	}
	defer rows.Close()

	out := make([]Record, 0)
	for rows.Next() {
		var id string
		var raw []byte
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("scan %s: %w", collection, err)
		}
		rec, err := decodeData(id, raw)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLStore) Update(ctx context.Context, collection, id string, patch Record) error {
	_, err := s.Mutate(ctx, collection, id, func(current Record) (Record, error) {
		return merge(current, patch), nil
	})
	return err
}

// Mutate reads and rewrites the record inside one transaction. Postgres locks
// the row; SQLite runs with a single connection so transactions never overlap.
func (s *SQLStore) Mutate(ctx context.Context, collection, id string, fn MutateFunc) (Record, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin mutate %s/%s: %w", collection, id, err)
	}
	defer func() { _ = tx.Rollback() }()

	current, err := s.get(ctx, tx, collection, id, s.dialect.LockClause())
	if err != nil {
		return nil, err
	}
	next, err := fn(current)
	if err != nil {
		return nil, err
	}
	raw, err := encodeData(next)
	if err != nil {
		return nil, err
	}

	c := &compiler{dialect: s.dialect}
	query := fmt.Sprintf("UPDATE records SET data = %s WHERE collection = %s AND id = %s",
		c.bind(string(raw)), c.bind(collection), c.bind(id))
	if _, err := tx.ExecContext(ctx, query, c.args...); err != nil {
		return nil, fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit mutate %s/%s: %w", collection, id, err)
	}
	return decodeData(id, raw)
}

func (s *SQLStore) Delete(ctx context.Context, collection, id string) error {
	c := &compiler{dialect: s.dialect}
	query := fmt.Sprintf("DELETE FROM records WHERE collection = %s AND id = %s", c.bind(collection), c.bind(id))
	res, err := s.db.ExecContext(ctx, query, c.args...)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) DeleteWhere(ctx context.Context, collection string, f filter.Predicate) (int64, error) {
	if err := validateQuery(Query{Filter: f}); err != nil {
		return 0, err
	}
	c := &compiler{dialect: s.dialect}
	where, err := s.where(c, collection, f)
	if err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx, "DELETE FROM records WHERE "+where, c.args...)
	if err != nil {
		return 0, fmt.Errorf("delete from %s: %w", collection, err)
	}
	return res.RowsAffected()
}

func (s *SQLStore) Count(ctx context.Context, collection string, f filter.Predicate) (int64, error) {
	if err := validateQuery(Query{Filter: f}); err != nil {
		return 0, err
	}
	c := &compiler{dialect: s.dialect}
	where, err := s.where(c, collection, f)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM records WHERE "+where, c.args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", collection, err)
	}
	return n, nil
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) where(c *compiler, collection string, f filter.Predicate) (string, error) {
	head := "collection = " + c.bind(collection)
	if f == nil {
		return head, nil
	}
	cond, err := c.compile(f)
	if err != nil {
		return "", err
	}
	return head + " AND " + cond, nil
}

func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint failed")
}
