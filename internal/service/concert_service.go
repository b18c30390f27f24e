package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/concert-ticketing/internal/model"
	"github.com/iliyamo/concert-ticketing/internal/pkg/logger"
	"github.com/iliyamo/concert-ticketing/internal/repository"
)

// ConcertStore is the persistence surface the concert service needs.
// Implemented by repository.ConcertRepo.
type ConcertStore interface {
	Create(ctx context.Context, c *model.Concert) error
	FindOne(ctx context.Context, id string) (*model.Concert, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, userID string, take, skip int) ([]repository.ConcertWithStatus, error)
	GetSummary(ctx context.Context) (repository.Summary, error)
}

// CreateConcertInput carries the createConcert mutation arguments.
type CreateConcertInput struct {
	Name        string
	Description string
	TotalSeats  uint32
}

// ConcertsPage is the concerts query result: the inventory summary plus a
// page of concerts annotated with the caller's reservation status.
type ConcertsPage struct {
	Summary repository.Summary             `json:"summary"`
	Data    []repository.ConcertWithStatus `json:"data"`
}

// ConcertService manages concert CRUD and the cached read path. The list
// and summary queries hit Redis first (when a client is configured) and
// fall through to the database; create/delete invalidate the cached pages.
type ConcertService struct {
	concerts ConcertStore
	cache    *redis.Client // nil disables caching
	ttl      time.Duration
	prefix   string
}

// NewConcertService wires the concert service. cache may be nil.
func NewConcertService(store ConcertStore, cache *redis.Client, ttl time.Duration, prefix string) *ConcertService {
	if prefix == "" {
		prefix = "cache"
	}
	return &ConcertService{concerts: store, cache: cache, ttl: ttl, prefix: prefix}
}

// Create inserts a concert owned by the given admin username. The available
// counter starts at full capacity.
func (s *ConcertService) Create(ctx context.Context, input CreateConcertInput, createdBy string) (*model.Concert, error) {
	if input.Name == "" {
		return nil, BadRequest("Concert name is required")
	}
	c := &model.Concert{
		Name:           input.Name,
		Description:    input.Description,
		TotalSeats:     input.TotalSeats,
		SeatsAvailable: input.TotalSeats,
		CreatedBy:      createdBy,
	}
	if err := s.concerts.Create(ctx, c); err != nil {
		logger.Error("concert create failed", zap.Error(err))
		return nil, Dependency(err)
	}
	s.invalidate(ctx)
	return c, nil
}

// FindOne returns a concert or a not-found error.
func (s *ConcertService) FindOne(ctx context.Context, id string) (*model.Concert, error) {
	c, err := s.concerts.FindOne(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NotFound("Concert not found")
		}
		logger.Error("concert lookup failed", zap.Error(err))
		return nil, Dependency(err)
	}
	return c, nil
}

// Delete removes a concert. Reservations referencing it cascade away at the
// database level.
func (s *ConcertService) Delete(ctx context.Context, id string) error {
	if err := s.concerts.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return NotFound("Concert not found")
		}
		logger.Error("concert delete failed", zap.Error(err))
		return Dependency(err)
	}
	s.invalidate(ctx)
	return nil
}

// GetConcerts returns the inventory summary and a page of concerts with the
// calling user's reservation status. Results are cached per user and page.
func (s *ConcertService) GetConcerts(ctx context.Context, userID string, take, skip int) (*ConcertsPage, error) {
	if take <= 0 {
		take = 10
	}
	if skip < 0 {
		skip = 0
	}

	key := fmt.Sprintf("%s:concerts:%s:take=%d:skip=%d", s.prefix, userID, take, skip)
	if page, ok := s.cached(ctx, key); ok {
		return page, nil
	}

	summary, err := s.concerts.GetSummary(ctx)
	if err != nil {
		logger.Error("concert summary query failed", zap.Error(err))
		return nil, Dependency(err)
	}
	list, err := s.concerts.List(ctx, userID, take, skip)
	if err != nil {
		logger.Error("concert list query failed", zap.Error(err))
		return nil, Dependency(err)
	}

	page := &ConcertsPage{Summary: summary, Data: list}
	s.store(ctx, key, page)
	return page, nil
}

// cached loads a ConcertsPage from Redis. Cache errors only log; the read
// path must keep working when Redis is down.
func (s *ConcertService) cached(ctx context.Context, key string) (*ConcertsPage, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn("concert cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var page ConcertsPage
	if err := json.Unmarshal([]byte(raw), &page); err != nil {
		return nil, false
	}
	return &page, true
}

func (s *ConcertService) store(ctx context.Context, key string, page *ConcertsPage) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(page)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.ttl).Err(); err != nil {
		logger.Warn("concert cache write failed", zap.Error(err))
	}
}

// invalidate drops all cached concert pages after a create or delete so
// clients never see a stale inventory for longer than one request.
func (s *ConcertService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	iter := s.cache.Scan(ctx, 0, s.prefix+":concerts:*", 0).Iterator()
	for iter.Next(ctx) {
		if err := s.cache.Del(ctx, iter.Val()).Err(); err != nil {
			logger.Warn("concert cache invalidation failed", zap.Error(err))
			return
		}
	}
	if err := iter.Err(); err != nil {
		logger.Warn("concert cache scan failed", zap.Error(err))
	}
}
