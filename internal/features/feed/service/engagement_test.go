package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "storyfeed-backend/internal/common/errors"
	"storyfeed-backend/internal/features/access"
	"storyfeed-backend/internal/features/feed/models"
	"storyfeed-backend/internal/features/feed/repository"
	"storyfeed-backend/internal/platform/store"
)

var fixedNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

type fixture struct {
	svc      FeedService
	feeds    repository.FeedRepository
	comments repository.CommentRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := store.NewMemoryStore()
	f := &fixture{
		feeds:    repository.NewFeedRepository(s),
		comments: repository.NewCommentRepository(s),
	}
	f.svc = NewFeedService(f.feeds, f.comments, func() time.Time { return fixedNow })
	return f
}

func (f *fixture) post(t *testing.T, userID string) *models.Feed {
	t.Helper()
	feed, err := f.svc.CreateFeed(context.Background(), access.Identity{UserID: userID, Role: access.RoleViewer},
		models.CreateFeedRequest{Content: "question", AgentID: "oracle", AgentContent: "answer"})
	require.NoError(t, err)
	return feed
}

func (f *fixture) comment(t *testing.T, userID, feedID string) *models.Comment {
	t.Helper()
	c, err := f.svc.CreateComment(context.Background(), access.Identity{UserID: userID, Role: access.RoleViewer},
		models.CreateCommentRequest{FeedID: feedID, Content: "nice"})
	require.NoError(t, err)
	return c
}

func TestToggleFeedLikeIsInvolution(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	feed := f.post(t, "author")

	first, err := f.svc.ToggleFeedLike(ctx, feed.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, &models.LikeResult{Liked: true, LikeCount: 1}, first)

	second, err := f.svc.ToggleFeedLike(ctx, feed.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, &models.LikeResult{Liked: false, LikeCount: 0}, second)

	got, err := f.svc.GetFeed(ctx, feed.ID)
	require.NoError(t, err)
	assert.Empty(t, got.LikeIDs)

	_, err = f.svc.ToggleFeedLike(ctx, "missing", "u1")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeNotFound))
}

func TestToggleFeedLikeKeepsOtherUsers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	feed := f.post(t, "author")

	for _, u := range []string{"u1", "u2", "u3"} {
		_, err := f.svc.ToggleFeedLike(ctx, feed.ID, u)
		require.NoError(t, err)
	}
	_, err := f.svc.ToggleFeedLike(ctx, feed.ID, "u2")
	require.NoError(t, err)

	got, err := f.svc.GetFeed(ctx, feed.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u3"}, got.LikeIDs)
}

func TestConcurrentLikesAreNotLost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	feed := f.post(t, "author")

	const users = 25
	var wg sync.WaitGroup
	for i := 0; i < users; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.svc.ToggleFeedLike(ctx, feed.ID, fmt.Sprintf("u%d", i))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, err := f.svc.GetFeed(ctx, feed.ID)
	require.NoError(t, err)
	assert.Len(t, got.LikeIDs, users)
}

func TestToggleCommentLike(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	feed := f.post(t, "author")
	c := f.comment(t, "u2", feed.ID)

	res, err := f.svc.ToggleCommentLike(ctx, c.ID, "u1")
	require.NoError(t, err)
	assert.True(t, res.Liked)

	res, err = f.svc.ToggleCommentLike(ctx, c.ID, "u1")
	require.NoError(t, err)
	assert.False(t, res.Liked)
	assert.Zero(t, res.LikeCount)

	_, err = f.svc.ToggleCommentLike(ctx, "missing", "u1")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeNotFound))
}

func TestRetweetCopiesAgentFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	source := f.post(t, "author")
	_, err := f.svc.ToggleFeedLike(ctx, source.ID, "fan")
	require.NoError(t, err)

	var retweetIDs []string
	for i := 0; i < 2; i++ {
		id, err := f.svc.Retweet(ctx, "u1", source.ID, fmt.Sprintf("take %d", i))
		require.NoError(t, err)
		retweetIDs = append(retweetIDs, id)

		rt, err := f.svc.GetFeed(ctx, id)
		require.NoError(t, err)
		want := &models.Feed{
			ID:           id,
			UserID:       "u1",
			Content:      fmt.Sprintf("take %d", i),
			AgentID:      source.AgentID,
			AgentContent: source.AgentContent,
			LikeIDs:      []string{},
			RetweetIDs:   []string{},
			Type:         models.FeedTypeRetweet,
			CreatedAt:    rt.CreatedAt,
			UpdatedAt:    rt.UpdatedAt,
		}
		if diff := cmp.Diff(want, rt); diff != "" {
			t.Errorf("retweet mismatch (-want +got):\n%s", diff)
		}
	}
	assert.NotEqual(t, retweetIDs[0], retweetIDs[1])

	_, err = f.svc.Retweet(ctx, "u2", source.ID, "")
	require.NoError(t, err)

	got, err := f.svc.GetFeed(ctx, source.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u2"}, got.RetweetIDs)
	assert.Equal(t, []string{"fan"}, got.LikeIDs)

	_, err = f.svc.Retweet(ctx, "u1", "missing", "x")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeNotFound))
}

func TestDeleteFeedCascade(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	feed := f.post(t, "author")
	other := f.post(t, "author")
	for i := 0; i < 3; i++ {
		f.comment(t, "u1", feed.ID)
	}
	kept := f.comment(t, "u1", other.ID)

	result, err := f.svc.DeleteFeedCascade(ctx, feed.ID)
	require.NoError(t, err)
	assert.Equal(t, &models.CascadeResult{FeedDeleted: true, CommentsDeleted: true, CommentsRemoved: 3}, result)

	_, err = f.svc.GetFeed(ctx, feed.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeNotFound))
	left, err := f.svc.ListComments(ctx, feed.ID, 0, 0)
	require.NoError(t, err)
	assert.Zero(t, left.Count)

	thread, err := f.svc.ListComments(ctx, other.ID, 0, 0)
	require.NoError(t, err)
	require.Equal(t, 1, thread.Count)
	assert.Equal(t, kept.ID, thread.Comments[0].ID)

	result, err = f.svc.DeleteFeedCascade(ctx, feed.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeNotFound))
	assert.False(t, result.FeedDeleted)
}

type brokenComments struct {
	repository.CommentRepository
}

func (brokenComments) DeleteByFeed(context.Context, string) (int64, error) {
	return 0, errors.New("connection reset")
}

func TestDeleteFeedCascadeReportsPartialFailure(t *testing.T) {
	s := store.NewMemoryStore()
	feeds := repository.NewFeedRepository(s)
	comments := repository.NewCommentRepository(s)
	svc := NewFeedService(feeds, brokenComments{comments}, func() time.Time { return fixedNow })
	ctx := context.Background()

	feed, err := svc.CreateFeed(ctx, access.Identity{UserID: "author"},
		models.CreateFeedRequest{Content: "q", AgentID: "oracle", AgentContent: "a"})
	require.NoError(t, err)
	_, err = svc.CreateComment(ctx, access.Identity{UserID: "u1"}, models.CreateCommentRequest{FeedID: feed.ID, Content: "hi"})
	require.NoError(t, err)

	result, err := svc.DeleteFeedCascade(ctx, feed.ID)
	require.Error(t, err)
	assert.Equal(t, &models.CascadeResult{FeedDeleted: true, CommentsDeleted: false}, result)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeInternal, appErr.Code)
	assert.Equal(t, true, appErr.Details["feed_deleted"])
	assert.Equal(t, false, appErr.Details["comments_deleted"])

	_, err = feeds.GetByID(ctx, feed.ID)
	assert.ErrorIs(t, err, repository.ErrFeedNotFound)
	n, err := s.Count(ctx, repository.CommentsCollection, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
