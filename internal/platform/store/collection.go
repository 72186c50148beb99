package store

import (
	"context"
	"encoding/json"
	"fmt"

	"storyfeed-backend/internal/platform/store/filter"
)

// Collection is a typed view over one named collection. T must round-trip
// through encoding/json and carry its identifier in an `json:"id"` field.
type Collection[T any] struct {
	store Store
	name  string
}

func NewCollection[T any](s Store, name string) *Collection[T] {
	return &Collection[T]{store: s, name: name}
}

func (c *Collection[T]) Name() string {
	return c.name
}

func (c *Collection[T]) Insert(ctx context.Context, v *T) (string, error) {
	rec, err := Encode(v)
	if err != nil {
		return "", err
	}
	return c.store.Insert(ctx, c.name, rec)
}

func (c *Collection[T]) Get(ctx context.Context, id string) (*T, error) {
	rec, err := c.store.Get(ctx, c.name, id)
	if err != nil {
		return nil, err
	}
	return Decode[T](rec)
}

func (c *Collection[T]) Find(ctx context.Context, q Query) ([]*T, error) {
	recs, err := c.store.Find(ctx, c.name, q)
	if err != nil {
		return nil, err
	}
	out := make([]*T, 0, len(recs))
	for _, rec := range recs {
		v, err := Decode[T](rec)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// FindOne returns the first match or ErrNotFound.
func (c *Collection[T]) FindOne(ctx context.Context, f filter.Predicate, sort ...Sort) (*T, error) {
	found, err := c.Find(ctx, Query{Filter: f, Sort: sort, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, ErrNotFound
	}
	return found[0], nil
}

func (c *Collection[T]) Update(ctx context.Context, id string, patch Record) error {
	return c.store.Update(ctx, c.name, id, patch)
}

// Mutate decodes the current value, lets fn change it in place and writes
// the result back atomically.
func (c *Collection[T]) Mutate(ctx context.Context, id string, fn func(v *T) error) (*T, error) {
	var out *T
	_, err := c.store.Mutate(ctx, c.name, id, func(current Record) (Record, error) {
		v, err := Decode[T](current)
		if err != nil {
			return nil, err
		}
		if err := fn(v); err != nil {
			return nil, err
		}
		out = v
		return Encode(v)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	return c.store.Delete(ctx, c.name, id)
}

func (c *Collection[T]) DeleteWhere(ctx context.Context, f filter.Predicate) (int64, error) {
	return c.store.DeleteWhere(ctx, c.name, f)
}

func (c *Collection[T]) Count(ctx context.Context, f filter.Predicate) (int64, error) {
	return c.store.Count(ctx, c.name, f)
}

// Encode converts a value into a Record through its JSON form.
func Encode(v any) (Record, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	rec := Record{}
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	if rec.ID() == "" {
		delete(rec, IDField)
	}
	return rec, nil
}

// Decode converts a Record into T through its JSON form.
func Decode[T any](rec Record) (*T, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	v := new(T)
	if err := json.Unmarshal(raw, v); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return v, nil
}
