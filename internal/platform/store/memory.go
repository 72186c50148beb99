package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"storyfeed-backend/internal/platform/store/filter"
)

// MemoryStore keeps every collection in process. Records are stored in their
// encoded form so callers never share maps with the store.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]map[string][]byte)}
}

func (m *MemoryStore) Insert(ctx context.Context, collection string, rec Record) (string, error) {
	id := rec.ID()
	if id == "" {
		id = uuid.New().String()
	}
	raw, err := encodeData(rec)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	col := m.collections[collection]
	if col == nil {
		col = make(map[string][]byte)
		m.collections[collection] = col
	}
	if _, exists := col[id]; exists {
		return "", ErrDuplicateID
	}
	col[id] = raw
	return id, nil
}

func (m *MemoryStore) Get(ctx context.Context, collection, id string) (Record, error) {
	m.mu.RLock()
	raw, ok := m.collections[collection][id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return decodeData(id, raw)
}

func (m *MemoryStore) Find(ctx context.Context, collection string, q Query) ([]Record, error) {
	if err := validateQuery(q); err != nil {
		return nil, err
	}
	matched, err := m.scan(collection, q.Filter)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return less(matched[i], matched[j], q.Sort)
	})

	if q.Offset >= len(matched) {
		return []Record{}, nil
	}
	matched = matched[q.Offset:]
	if q.Limit > 0 && q.Limit < len(matched) {
		matched = matched[:q.Limit]
	}
	return matched, nil
}

func (m *MemoryStore) Update(ctx context.Context, collection, id string, patch Record) error {
	_, err := m.Mutate(ctx, collection, id, func(current Record) (Record, error) {
		return merge(current, patch), nil
	})
	return err
}

// Mutate holds the write lock for the whole read-modify-write.
func (m *MemoryStore) Mutate(ctx context.Context, collection, id string, fn MutateFunc) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	raw, ok := m.collections[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	current, err := decodeData(id, raw)
	if err != nil {
		return nil, err
	}
	next, err := fn(current)
	if err != nil {
		return nil, err
	}
	encoded, err := encodeData(next)
	if err != nil {
		return nil, err
	}
	m.collections[collection][id] = encoded
	return decodeData(id, encoded)
}

func (m *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.collections[collection][id]; !ok {
		return ErrNotFound
	}
	delete(m.collections[collection], id)
	return nil
}

func (m *MemoryStore) DeleteWhere(ctx context.Context, collection string, f filter.Predicate) (int64, error) {
	if err := validateQuery(Query{Filter: f}); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for id, raw := range m.collections[collection] {
		rec, err := decodeData(id, raw)
		if err != nil {
			return n, err
		}
		if filter.Match(f, rec) {
			delete(m.collections[collection], id)
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) Count(ctx context.Context, collection string, f filter.Predicate) (int64, error) {
	if err := validateQuery(Query{Filter: f}); err != nil {
		return 0, err
	}
	matched, err := m.scan(collection, f)
	if err != nil {
		return 0, err
	}
	return int64(len(matched)), nil
}

func (m *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (m *MemoryStore) Close() error {
	return nil
}

func (m *MemoryStore) scan(collection string, f filter.Predicate) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Record, 0)
	for id, raw := range m.collections[collection] {
		rec, err := decodeData(id, raw)
		if err != nil {
			return nil, err
		}
		if filter.Match(f, rec) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// less orders by the sort keys and then by id. Missing values sort first.
func less(a, b Record, keys []Sort) bool {
	for _, k := range keys {
		av, bv := a[k.Field], b[k.Field]
		cmp := 0
		switch {
		case av == nil && bv == nil:
		case av == nil:
			cmp = -1
		case bv == nil:
			cmp = 1
		default:
			cmp, _ = filter.Compare(av, bv)
		}
		if cmp == 0 {
			continue
		}
		if k.Desc {
			return cmp > 0
		}
		return cmp < 0
	}
	return a.ID() < b.ID()
}
