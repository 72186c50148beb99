package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"storyfeed-backend/internal/features/auth/models"
	"storyfeed-backend/internal/features/auth/repository"
	rplatform "storyfeed-backend/internal/platform/redis"
)

const keyPrefixSession = "session:"

type Repository struct {
	client *rplatform.Client
}

func NewRepository(client *rplatform.Client) repository.SessionRepository {
	return &Repository{client: client}
}

func (r *Repository) Save(ctx context.Context, session *models.Session) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session %s already expired", session.Token)
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := r.client.Set(ctx, keyPrefixSession+session.Token, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, token string) (*models.Session, error) {
	data, err := r.client.Get(ctx, keyPrefixSession+token).Bytes()
	if rplatform.IsNil(err) {
		return nil, repository.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var session models.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

func (r *Repository) Delete(ctx context.Context, token string) error {
	n, err := r.client.Del(ctx, keyPrefixSession+token).Result()
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if n == 0 {
		return repository.ErrSessionNotFound
	}
	return nil
}
