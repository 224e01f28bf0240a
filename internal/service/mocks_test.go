package service

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"evfleet-ops-backend/internal/domain"
	"evfleet-ops-backend/internal/messaging"
)

// MockOrderRepo
type MockOrderRepo struct {
	mock.Mock
}

func (m *MockOrderRepo) Create(ctx context.Context, o *domain.RentalOrder) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}
func (m *MockOrderRepo) Get(ctx context.Context, id int64) (*domain.RentalOrder, int64, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).(*domain.RentalOrder), args.Get(1).(int64), args.Error(2)
}
func (m *MockOrderRepo) CompareAndSwap(ctx context.Context, id int64, expectedVersion int64, o *domain.RentalOrder) (int64, error) {
	args := m.Called(ctx, id, expectedVersion, o)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockOrderRepo) FindByPhone(ctx context.Context, phone string) ([]domain.RentalOrder, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RentalOrder), args.Error(1)
}
func (m *MockOrderRepo) FindByStation(ctx context.Context, stationID int64, status *domain.OrderStatus) ([]domain.RentalOrder, error) {
	args := m.Called(ctx, stationID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RentalOrder), args.Error(1)
}
func (m *MockOrderRepo) ListOverdueRenting(ctx context.Context, asOf time.Time) ([]domain.RentalOrder, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RentalOrder), args.Error(1)
}

// MockEvidenceStorage
type MockEvidenceStorage struct {
	mock.Mock
}

func (m *MockEvidenceStorage) Upload(ctx context.Context, key string, contentType string, r io.Reader) (string, error) {
	args := m.Called(ctx, key, contentType, r)
	return args.String(0), args.Error(1)
}
func (m *MockEvidenceStorage) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}
func (m *MockEvidenceStorage) Exists(ctx context.Context, key string) (bool, int64, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Get(1).(int64), args.Error(2)
}
func (m *MockEvidenceStorage) Open(key string) (io.ReadCloser, error) {
	args := m.Called(key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

// MockEventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishStatusChange(ev messaging.OrderStatusEvent) error {
	args := m.Called(ev)
	return args.Error(0)
}
func (m *MockEventPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}
