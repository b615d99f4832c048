package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/kcczz8xx/JumpRope-App-sub000/domain"
	"github.com/redis/go-redis/v9"
)

// ContactFlowRepositoryImpl implements domain.ContactFlowRepository using Redis
type ContactFlowRepositoryImpl struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewContactFlowRepository creates a new contact flow repository. Flows
// expire ttl after their last save.
func NewContactFlowRepository(client *redis.Client, ttl time.Duration) domain.ContactFlowRepository {
	return &ContactFlowRepositoryImpl{
		client: client,
		prefix: "contact_flow:",
		ttl:    ttl,
	}
}

func (r *ContactFlowRepositoryImpl) key(userID uint) string {
	return r.prefix + strconv.FormatUint(uint64(userID), 10)
}

// Save implements domain.ContactFlowRepository
func (r *ContactFlowRepositoryImpl) Save(ctx context.Context, flow *domain.ContactChangeFlow) error {
	data, err := json.Marshal(flow)
	if err != nil {
		return fmt.Errorf("failed to marshal contact flow: %w", err)
	}
	if err := r.client.Set(ctx, r.key(flow.UserID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save contact flow: %w", err)
	}
	return nil
}

// Find implements domain.ContactFlowRepository
func (r *ContactFlowRepositoryImpl) Find(ctx context.Context, userID uint) (*domain.ContactChangeFlow, error) {
	data, err := r.client.Get(ctx, r.key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrContactFlowNotFound
		}
		return nil, fmt.Errorf("failed to load contact flow: %w", err)
	}

	var flow domain.ContactChangeFlow
	if err := json.Unmarshal(data, &flow); err != nil {
		return nil, fmt.Errorf("failed to unmarshal contact flow: %w", err)
	}
	return &flow, nil
}

// Delete implements domain.ContactFlowRepository
func (r *ContactFlowRepositoryImpl) Delete(ctx context.Context, userID uint) error {
	return r.client.Del(ctx, r.key(userID)).Err()
}
