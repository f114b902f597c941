package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"movitex/internal/shared/constants"
	"movitex/pkg/cache"
	"movitex/pkg/logger"
)

// Source resolves the caller's profile. Current returns (nil, nil) for
// anonymous callers. An authenticated user without a profile row gets a
// profile carrying only the user id.
type Source interface {
	Current(ctx context.Context) (*Profile, error)
}

type service struct {
	repo  Repository
	cache cache.Service
	ttl   time.Duration
}

func NewService(repo Repository, c cache.Service, ttl time.Duration) Source {
	return &service{repo: repo, cache: c, ttl: ttl}
}

func (s *service) Current(ctx context.Context) (*Profile, error) {
	userID, ok := UserIDFromContext(ctx)
	if !ok {
		return nil, nil
	}

	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID: %w", err)
	}

	cacheKey := constants.BuildUserProfileKey(userID)

	var cached Profile
	if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
		return &cached, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		logger.GetDefault().WithError(err).Warn("profile cache read failed", "user_id", userID)
	}

	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// The id is still usable for booking, there is just nothing to autofill.
			return &Profile{UserID: userID}, nil
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	p := FromUser(user)
	if err := s.cache.Set(ctx, cacheKey, p, s.ttl); err != nil {
		logger.GetDefault().WithError(err).Warn("profile cache write failed", "user_id", userID)
	}
	return p, nil
}
