package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storyfeed-backend/internal/platform/sqlite"
	"storyfeed-backend/internal/platform/store/filter"
)

// backends returns a fresh instance of every store implementation that runs
// without external services.
func backends(t *testing.T) map[string]Store {
	t.Helper()
	ctx := context.Background()

	db, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "records.db"))
	require.NoError(t, err)
	sqlStore := NewSQLStore(db, SQLite)
	require.NoError(t, sqlStore.Migrate(ctx))
	t.Cleanup(func() { sqlStore.Close() })

	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sqlStore,
	}
}

func eachBackend(t *testing.T, fn func(t *testing.T, s Store)) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) { fn(t, s) })
	}
}

func TestInsertAndGet(t *testing.T) {
	eachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		id, err := s.Insert(ctx, "feeds", Record{"content": "hello", "like_ids": []string{"u1"}})
		require.NoError(t, err)
		require.NotEmpty(t, id)

		rec, err := s.Get(ctx, "feeds", id)
		require.NoError(t, err)
		assert.Equal(t, id, rec.ID())
		assert.Equal(t, "hello", rec["content"])
		assert.Equal(t, []any{"u1"}, rec["like_ids"])

		_, err = s.Insert(ctx, "feeds", Record{"id": id, "content": "again"})
		assert.ErrorIs(t, err, ErrDuplicateID)

		_, err = s.Get(ctx, "feeds", "missing")
		assert.ErrorIs(t, err, ErrNotFound)

		// collections are isolated
		_, err = s.Get(ctx, "feed_comments", id)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestFindFiltersSortsAndPages(t *testing.T) {
	eachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		for i := 1; i <= 5; i++ {
			role := "viewer"
			if i%2 == 0 {
				role = "admin"
			}
			_, err := s.Insert(ctx, "users", Record{
				"id":         fmt.Sprintf("u%d", i),
				"role":       role,
				"name":       fmt.Sprintf("User %d", i),
				"created_at": fmt.Sprintf("2024-03-0%dT00:00:00.000000Z", i),
			})
			require.NoError(t, err)
		}

		viewers, err := s.Find(ctx, "users", Query{
			Filter: filter.Eq("role", "viewer"),
			Sort:   []Sort{{Field: "created_at", Desc: true}},
		})
		require.NoError(t, err)
		require.Len(t, viewers, 3)
		assert.Equal(t, []string{"u5", "u3", "u1"}, ids(viewers))

		page, err := s.Find(ctx, "users", Query{
			Sort:   []Sort{{Field: "created_at"}},
			Limit:  2,
			Offset: 1,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"u2", "u3"}, ids(page))

		tail, err := s.Find(ctx, "users", Query{Offset: 4})
		require.NoError(t, err)
		assert.Equal(t, []string{"u5"}, ids(tail))

		liked, err := s.Find(ctx, "users", Query{Filter: filter.Like("name", "user 4")})
		require.NoError(t, err)
		assert.Equal(t, []string{"u4"}, ids(liked))

		either, err := s.Find(ctx, "users", Query{Filter: filter.Any(filter.Eq("id", "u1"), filter.Eq("id", "u2"))})
		require.NoError(t, err)
		assert.Equal(t, []string{"u1", "u2"}, ids(either))
	})
}

func TestCountWithWindow(t *testing.T) {
	eachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		for _, at := range []string{
			"2024-03-14T23:59:59.999999Z",
			"2024-03-15T00:00:00.000000Z",
			"2024-03-15T12:00:00.000000Z",
			"2024-03-15T23:59:59.999999Z",
			"2024-03-16T00:00:00.000000Z",
		} {
			_, err := s.Insert(ctx, "guesses", Record{"ip": "10.0.0.1", "created_at": at})
			require.NoError(t, err)
		}

		n, err := s.Count(ctx, "guesses", filter.All(
			filter.Eq("ip", "10.0.0.1"),
			filter.Gte("created_at", "2024-03-15T00:00:00.000000Z"),
			filter.Lte("created_at", "2024-03-15T23:59:59.999999Z"),
		))
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)

		total, err := s.Count(ctx, "guesses", nil)
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)
	})
}

func TestUpdateMergesFields(t *testing.T) {
	eachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		id, err := s.Insert(ctx, "stories", Record{"title": "a", "status": "draft"})
		require.NoError(t, err)

		require.NoError(t, s.Update(ctx, "stories", id, Record{"status": "published", "id": "ignored"}))

		rec, err := s.Get(ctx, "stories", id)
		require.NoError(t, err)
		assert.Equal(t, "a", rec["title"])
		assert.Equal(t, "published", rec["status"])
		assert.Equal(t, id, rec.ID())

		assert.ErrorIs(t, s.Update(ctx, "stories", "missing", Record{"x": 1}), ErrNotFound)
	})
}

func TestMutateIsAtomic(t *testing.T) {
	eachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		id, err := s.Insert(ctx, "feeds", Record{"like_ids": []string{}})
		require.NoError(t, err)

		const workers = 20
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, err := s.Mutate(ctx, "feeds", id, func(cur Record) (Record, error) {
					likes, _ := cur["like_ids"].([]any)
					cur["like_ids"] = append(likes, fmt.Sprintf("u%d", i))
					return cur, nil
				})
				assert.NoError(t, err)
			}(i)
		}
		wg.Wait()

		rec, err := s.Get(ctx, "feeds", id)
		require.NoError(t, err)
		assert.Len(t, rec["like_ids"], workers)
	})
}

func TestMutateErrorLeavesRecord(t *testing.T) {
	eachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		id, err := s.Insert(ctx, "feeds", Record{"content": "before"})
		require.NoError(t, err)

		boom := errors.New("boom")
		_, err = s.Mutate(ctx, "feeds", id, func(cur Record) (Record, error) {
			cur["content"] = "after"
			return nil, boom
		})
		assert.ErrorIs(t, err, boom)

		rec, err := s.Get(ctx, "feeds", id)
		require.NoError(t, err)
		assert.Equal(t, "before", rec["content"])

		_, err = s.Mutate(ctx, "feeds", "missing", func(cur Record) (Record, error) { return cur, nil })
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestDeleteAndDeleteWhere(t *testing.T) {
	eachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		for i := 0; i < 3; i++ {
			_, err := s.Insert(ctx, "feed_comments", Record{"feed_id": "f1"})
			require.NoError(t, err)
		}
		keep, err := s.Insert(ctx, "feed_comments", Record{"feed_id": "f2"})
		require.NoError(t, err)

		n, err := s.DeleteWhere(ctx, "feed_comments", filter.Eq("feed_id", "f1"))
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)

		require.NoError(t, s.Delete(ctx, "feed_comments", keep))
		assert.ErrorIs(t, s.Delete(ctx, "feed_comments", keep), ErrNotFound)

		left, err := s.Count(ctx, "feed_comments", nil)
		require.NoError(t, err)
		assert.Zero(t, left)
	})
}

func TestRejectsInvalidFieldNames(t *testing.T) {
	eachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		_, err := s.Count(ctx, "users", filter.Eq("role') OR 1=1 --", "x"))
		assert.ErrorIs(t, err, ErrInvalidRequest)

		_, err = s.Find(ctx, "users", Query{Sort: []Sort{{Field: "Name; DROP"}}})
		assert.ErrorIs(t, err, ErrInvalidRequest)
	})
}

type note struct {
	ID    string   `json:"id"`
	Title string   `json:"title"`
	Tags  []string `json:"tags"`
}

func TestCollection(t *testing.T) {
	eachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		notes := NewCollection[note](s, "notes")

		id, err := notes.Insert(ctx, &note{Title: "first", Tags: []string{}})
		require.NoError(t, err)

		got, err := notes.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, &note{ID: id, Title: "first", Tags: []string{}}, got)

		updated, err := notes.Mutate(ctx, id, func(n *note) error {
			n.Tags = append(n.Tags, "go")
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"go"}, updated.Tags)

		one, err := notes.FindOne(ctx, filter.Eq("title", "first"))
		require.NoError(t, err)
		assert.Equal(t, id, one.ID)

		_, err = notes.FindOne(ctx, filter.Eq("title", "none"))
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestPostgresCompiler(t *testing.T) {
	c := &compiler{dialect: Postgres}
	sql, err := c.compile(filter.All(
		filter.Eq("role", "admin"),
		filter.Gte("level", 2),
		filter.Like("title", "50%_off"),
		filter.Eq("deleted_at", nil),
	))
	require.NoError(t, err)

	assert.Equal(t,
		`(data->>'role' = $1 AND (data->>'level')::numeric >= $2 AND data->>'title' ILIKE $3 ESCAPE '\' AND data->>'deleted_at' IS NULL)`,
		sql)
	assert.Equal(t, []any{"admin", int64(2), `%50\%\_off%`}, c.args)
}

func ids(recs []Record) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.ID())
	}
	return out
}
