// Package store is the content store: schemaless JSON records grouped in named
// collections, queried with typed predicates from the filter package.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storyfeed-backend/internal/common/timeutil"
	"storyfeed-backend/internal/platform/store/filter"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateID    = errors.New("record id already exists")
	ErrInvalidRequest = errors.New("invalid store request")
)

// IDField is the reserved key carrying a record's identifier.
const IDField = "id"

// Record is one decoded JSON document. Values are the JSON scalar types
// (string, float64, bool, nil) plus []any and map[string]any.
type Record map[string]any

// ID returns the record identifier or "".
func (r Record) ID() string {
	id, _ := r[IDField].(string)
	return id
}

type Sort struct {
	Field string
	Desc  bool
}

// Query selects records from one collection. Limit 0 means no limit.
// Results are always ordered; ties (and queries without Sort) fall back to id.
type Query struct {
	Filter filter.Predicate
	Sort   []Sort
	Limit  int
	Offset int
}

// MutateFunc receives the current record and returns the replacement. An
// error aborts the mutation and leaves the record untouched.
type MutateFunc func(current Record) (Record, error)

type Store interface {
	// Insert stores rec and returns its id. A missing id is generated.
	Insert(ctx context.Context, collection string, rec Record) (string, error)
	Get(ctx context.Context, collection, id string) (Record, error)
	Find(ctx context.Context, collection string, q Query) ([]Record, error)
	// Update merges patch into the record's top-level fields.
	Update(ctx context.Context, collection, id string, patch Record) error
	// Mutate is an atomic read-modify-write of one record.
	Mutate(ctx context.Context, collection, id string, fn MutateFunc) (Record, error)
	Delete(ctx context.Context, collection, id string) error
	DeleteWhere(ctx context.Context, collection string, f filter.Predicate) (int64, error)
	Count(ctx context.Context, collection string, f filter.Predicate) (int64, error)
	Ping(ctx context.Context) error
	Close() error
}

// encodeData serializes a record without its id, normalizing time values to
// the storage layout.
func encodeData(rec Record) ([]byte, error) {
	data := make(map[string]any, len(rec))
	for k, v := range rec {
		if k == IDField {
			continue
		}
		switch t := v.(type) {
		case time.Time:
			data[k] = timeutil.Format(t)
		default:
			data[k] = v
		}
	}
	return json.Marshal(data)
}

func decodeData(id string, raw []byte) (Record, error) {
	rec := Record{}
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode record %s: %w", id, err)
	}
	rec[IDField] = id
	return rec, nil
}

// merge returns a copy of current with patch applied on top. The id never changes.
func merge(current, patch Record) Record {
	next := make(Record, len(current)+len(patch))
	for k, v := range current {
		next[k] = v
	}
	for k, v := range patch {
		if k == IDField {
			continue
		}
		next[k] = v
	}
	return next
}

func validateQuery(q Query) error {
	if err := filter.Validate(q.Filter); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	for _, s := range q.Sort {
		if err := filter.ValidateField(s.Field); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
	}
	if q.Limit < 0 || q.Offset < 0 {
		return fmt.Errorf("%w: negative limit or offset", ErrInvalidRequest)
	}
	return nil
}
