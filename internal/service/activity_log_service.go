package service

import (
	"context"
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

// ActivityLogStore is the persistence surface the activity-log service
// needs. Implemented by repository.ActivityLogRepo.
type ActivityLogStore interface {
	Create(ctx context.Context, entry *model.ActivityLog) error
	CountByAdmin(ctx context.Context, adminID string) (int64, error)
	ListByAdmin(ctx context.Context, adminID string, take, skip int) ([]repository.ActivityLogEntry, error)
}

// ActivityLogsPage is the activityLogs query result.
type ActivityLogsPage struct {
	Data  []repository.ActivityLogEntry `json:"data"`
	Total int64                         `json:"total"`
}

// ActivityLogService records reserve/cancel audit entries (written by the
// queue consumer) and serves the per-admin listing with short-lived Redis
// caching.
type ActivityLogService struct {
	logs   ActivityLogStore
	cache  *redis.Client // nil disables caching
	ttl    time.Duration
	prefix string
}

// NewActivityLogService wires the activity-log service. cache may be nil.
func NewActivityLogService(store ActivityLogStore, cache *redis.Client, ttl time.Duration, prefix string) *ActivityLogService {
	if prefix == "" {
		prefix = "cache"
	}
	return &ActivityLogService{logs: store, cache: cache, ttl: ttl, prefix: prefix}
}

// Create persists one audit entry. Called by the activityLog queue worker.
func (s *ActivityLogService) Create(ctx context.Context, entry *model.ActivityLog) error {
	if err := s.logs.Create(ctx, entry); err != nil {
		logger.Error("activity log insert failed", zap.Error(err))
		return Dependency(err)
	}
	return nil
}

// FindAll returns the admin's activity-log page, newest first, with the
// total entry count. Pages are cached per admin/take/skip for the
// configured TTL.
func (s *ActivityLogService) FindAll(ctx context.Context, adminID string, take, skip int) (*ActivityLogsPage, error) {
	if take <= 0 {
		take = 10
	}
	if skip < 0 {
		skip = 0
	}

	key := fmt.Sprintf("%s:activity_logs:%s:take=%d:skip=%d", s.prefix, adminID, take, skip)
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, key).Result()
		if err == nil {
			var page ActivityLogsPage
			if jsonErr := json.Unmarshal([]byte(raw), &page); jsonErr == nil {
				return &page, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			logger.Warn("activity log cache read failed", zap.Error(err))
		}
	}

	total, err := s.logs.CountByAdmin(ctx, adminID)
	if err != nil {
		logger.Error("activity log count failed", zap.Error(err))
		return nil, Dependency(err)
	}
	list, err := s.logs.ListByAdmin(ctx, adminID, take, skip)
	if err != nil {
		logger.Error("activity log list failed", zap.Error(err))
		return nil, Dependency(err)
	}

	page := &ActivityLogsPage{Data: list, Total: total}
	if s.cache != nil {
		if raw, jsonErr := json.Marshal(page); jsonErr == nil {
			if err := s.cache.Set(ctx, key, raw, s.ttl).Err(); err != nil {
				logger.Warn("activity log cache write failed", zap.Error(err))
			}
		}
	}
	return page, nil
}
