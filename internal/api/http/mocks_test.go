package http

import (
	"context"

	"github.com/stretchr/testify/mock"

	"evfleet-ops-backend/internal/domain"
	"evfleet-ops-backend/internal/service"
)

// MockOrderService
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) CreateOrder(ctx context.Context, req service.CreateOrderRequest) (*domain.RentalOrder, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RentalOrder), args.Error(1)
}
func (m *MockOrderService) GetOrder(ctx context.Context, id int64) (*domain.RentalOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RentalOrder), args.Error(1)
}
func (m *MockOrderService) ApprovePayment(ctx context.Context, actor domain.Actor, orderID int64, paymentRef string) (*domain.RentalOrder, error) {
	args := m.Called(ctx, actor, orderID, paymentRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RentalOrder), args.Error(1)
}
func (m *MockOrderService) Cancel(ctx context.Context, actor domain.Actor, orderID int64, reason string) (*domain.RentalOrder, error) {
	args := m.Called(ctx, actor, orderID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RentalOrder), args.Error(1)
}

// MockHandoverService
type MockHandoverService struct {
	mock.Mock
}

func (m *MockHandoverService) DeliverVehicle(ctx context.Context, actor domain.Actor, req service.DeliverVehicleRequest) (*domain.RentalOrder, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RentalOrder), args.Error(1)
}
func (m *MockHandoverService) ReturnVehicle(ctx context.Context, actor domain.Actor, req service.ReturnVehicleRequest) (*domain.RentalOrder, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RentalOrder), args.Error(1)
}

// MockLookupService
type MockLookupService struct {
	mock.Mock
}

func (m *MockLookupService) OrdersByPhone(ctx context.Context, phone string) ([]domain.RentalOrder, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RentalOrder), args.Error(1)
}
func (m *MockLookupService) OrdersByStation(ctx context.Context, stationID int64, statusFilter string) ([]domain.RentalOrder, error) {
	args := m.Called(ctx, stationID, statusFilter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RentalOrder), args.Error(1)
}
