package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lshigami/orientation-event/config"
	"github.com/lshigami/orientation-event/internal/apperr"
	"github.com/lshigami/orientation-event/internal/cache"
	"github.com/lshigami/orientation-event/internal/dto"
	"github.com/lshigami/orientation-event/internal/orientation"
	"github.com/lshigami/orientation-event/internal/repository"
)

const statsCacheKey = "admin"

type StatsService interface {
	Stats(ctx context.Context) (*dto.StatsDTO, error)
	// Invalidate drops the cached figures after presence or test changes.
	Invalidate(ctx context.Context)
}

type statsService struct {
	users repository.UserRepository
	tests repository.OrientationTestRepository
	cache *cache.Cache
	ttl   time.Duration
}

func NewStatsService(
	users repository.UserRepository,
	tests repository.OrientationTestRepository,
	c *cache.Cache,
	cfg *config.Config,
) StatsService {
	return &statsService{users: users, tests: tests, cache: c, ttl: cfg.Redis.StatsTTL}
}

func (s *statsService) Stats(ctx context.Context) (*dto.StatsDTO, error) {
	var cached dto.StatsDTO
	err := s.cache.Get(ctx, statsCacheKey, &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) && !errors.Is(err, cache.ErrCacheUnavailable) {
		log.Warn().Err(err).Msg("Stats: cache read failed")
	}

	stats, err := s.compute(ctx)
	if err != nil {
		return nil, apperr.Unexpected("Erreur lors du calcul des statistiques", err)
	}
	if err := s.cache.Set(ctx, statsCacheKey, stats, s.ttl); err != nil {
		log.Warn().Err(err).Msg("Stats: cache write failed")
	}
	return stats, nil
}

func (s *statsService) compute(ctx context.Context) (*dto.StatsDTO, error) {
	total, err := s.users.Count(ctx)
	if err != nil {
		return nil, err
	}
	withTests, err := s.tests.CountUsersWithTests(ctx)
	if err != nil {
		return nil, err
	}
	present, err := s.users.CountPresent(ctx)
	if err != nil {
		return nil, err
	}
	tests, err := s.tests.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	var completed int64
	for i := range tests {
		if orientation.AllStepsCompleted(&tests[i]) {
			completed++
		}
	}

	return &dto.StatsDTO{
		TotalUsers:         total,
		UsersWithTests:     withTests,
		CompletedTests:     completed,
		PresentUsers:       present,
		AbsentUsers:        total - present,
		TestCompletionRate: percent(completed, total),
		PresenceRate:       percent(present, total),
	}, nil
}

func (s *statsService) Invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, statsCacheKey); err != nil {
		log.Warn().Err(err).Msg("Stats: cache invalidation failed")
	}
}

// percent is part/total*100 rounded to two decimals, 0 when total is 0.
func percent(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*10000) / 100
}
