package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"evfleet-ops-backend/internal/domain"
	"evfleet-ops-backend/internal/logger"
	"evfleet-ops-backend/internal/repository"
)

// lookupService caches staff search results in Redis with a short TTL.
// The cache is read-side convenience only: transition decisions always go
// through OrderRepository.Get, never through these results.
type lookupService struct {
	orderRepo repository.OrderRepository
	redis     redis.UniversalClient // nil disables caching
	ttl       time.Duration
}

func NewLookupService(orderRepo repository.OrderRepository, redisClient redis.UniversalClient, ttl time.Duration) LookupService {
	return &lookupService{
		orderRepo: orderRepo,
		redis:     redisClient,
		ttl:       ttl,
	}
}

func (s *lookupService) OrdersByPhone(ctx context.Context, phone string) ([]domain.RentalOrder, error) {
	key := fmt.Sprintf("ORDERS:PHONE:%s", phone)
	if cached, ok := s.fromCache(ctx, key); ok {
		return cached, nil
	}

	orders, err := s.orderRepo.FindByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	s.toCache(ctx, key, orders)
	return orders, nil
}

func (s *lookupService) OrdersByStation(ctx context.Context, stationID int64, statusFilter string) ([]domain.RentalOrder, error) {
	var status *domain.OrderStatus
	if statusFilter != "" {
		normalized, ok := domain.NormalizeStatus(statusFilter)
		if !ok {
			return nil, fmt.Errorf("unknown status filter %q", statusFilter)
		}
		status = &normalized
	}

	key := fmt.Sprintf("ORDERS:STATION:%d:%s", stationID, statusFilter)
	if cached, ok := s.fromCache(ctx, key); ok {
		return cached, nil
	}

	orders, err := s.orderRepo.FindByStation(ctx, stationID, status)
	if err != nil {
		return nil, err
	}
	s.toCache(ctx, key, orders)
	return orders, nil
}

func (s *lookupService) fromCache(ctx context.Context, key string) ([]domain.RentalOrder, bool) {
	if s.redis == nil {
		return nil, false
	}
	raw, err := s.redis.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			logger.Warn("Lookup cache read failed", "key", key, "error", err)
		}
		return nil, false
	}
	var orders []domain.RentalOrder
	if err := json.Unmarshal([]byte(raw), &orders); err != nil {
		logger.Warn("Lookup cache entry corrupt", "key", key, "error", err)
		return nil, false
	}
	return orders, true
}

func (s *lookupService) toCache(ctx context.Context, key string, orders []domain.RentalOrder) {
	if s.redis == nil {
		return
	}
	raw, err := json.Marshal(orders)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, key, raw, s.ttl).Err(); err != nil {
		logger.Warn("Lookup cache write failed", "key", key, "error", err)
	}
}
