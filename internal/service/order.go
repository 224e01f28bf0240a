package service

import (
	"context"
	"fmt"
	"time"

	"evfleet-ops-backend/internal/domain"
	"evfleet-ops-backend/internal/logger"
	"evfleet-ops-backend/internal/messaging"
	"evfleet-ops-backend/internal/repository"
	"evfleet-ops-backend/internal/utils"
)

type orderService struct {
	orderRepo repository.OrderRepository
	publisher messaging.EventPublisher
	now       func() time.Time
}

func NewOrderService(orderRepo repository.OrderRepository, publisher messaging.EventPublisher) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		publisher: publisher,
		now:       time.Now,
	}
}

// CreateOrder registers a new PENDING rental for the booking collaborator.
// Billable days and the pre-penalty cost are derived from the planned
// window; the caller never supplies a total.
func (s *orderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*domain.RentalOrder, error) {
	if req.RenterID <= 0 || req.VehicleID <= 0 || req.StationID <= 0 {
		return nil, fmt.Errorf("renter_id, vehicle_id and station_id are required")
	}
	if req.PricePerDayCents <= 0 {
		return nil, fmt.Errorf("price_per_day_cents must be positive")
	}

	start, err := time.Parse("2006-01-02", req.PlannedStartDate)
	if err != nil {
		return nil, fmt.Errorf("invalid planned_start_date: %w", err)
	}
	end, err := time.Parse("2006-01-02", req.PlannedEndDate)
	if err != nil {
		return nil, fmt.Errorf("invalid planned_end_date: %w", err)
	}
	days, err := utils.RentedDays(start, end)
	if err != nil {
		return nil, err
	}

	order := &domain.RentalOrder{
		RenterID:         req.RenterID,
		VehicleID:        req.VehicleID,
		StationID:        req.StationID,
		RenterName:       req.RenterName,
		RenterPhone:      req.RenterPhone,
		RenterEmail:      req.RenterEmail,
		VehiclePlate:     req.VehiclePlate,
		StationName:      req.StationName,
		Status:           domain.OrderStatusPending,
		BookingTime:      s.now(),
		PlannedStartDate: start,
		PlannedEndDate:   end,
		PricePerDayCents: req.PricePerDayCents,
		RentedDays:       days,
		TotalCostCents:   utils.BaseRentalCostCents(req.PricePerDayCents, days),
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}

	logger.Info("Rental order created",
		"order_id", order.ID, "renter_id", order.RenterID,
		"station_id", order.StationID, "rented_days", days)
	return order, nil
}

func (s *orderService) GetOrder(ctx context.Context, id int64) (*domain.RentalOrder, error) {
	order, _, err := s.orderRepo.Get(ctx, id)
	return order, err
}

// ApprovePayment records the payment collaborator's approval fact and
// moves PENDING -> CONFIRMED.
func (s *orderService) ApprovePayment(ctx context.Context, actor domain.Actor, orderID int64, paymentRef string) (*domain.RentalOrder, error) {
	return s.transition(ctx, actor, orderID, domain.EventApprovePayment, domain.PaymentApproval{
		ApprovedAt: s.now(),
		Reference:  paymentRef,
	})
}

// Cancel moves PENDING or CONFIRMED -> CANCELLED. Once a vehicle has been
// handed over the order can only complete through return.
func (s *orderService) Cancel(ctx context.Context, actor domain.Actor, orderID int64, reason string) (*domain.RentalOrder, error) {
	return s.transition(ctx, actor, orderID, domain.EventCancel, domain.CancelRequest{Reason: reason})
}

func (s *orderService) transition(ctx context.Context, actor domain.Actor, orderID int64, event domain.Event, payload any) (*domain.RentalOrder, error) {
	order, version, err := s.orderRepo.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	updated, err := domain.Transition(order, event, payload, actor, s.now())
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	newVersion, err := s.orderRepo.CompareAndSwap(ctx, orderID, version, updated)
	if err != nil {
		return nil, err
	}
	updated.Version = newVersion

	if s.publisher != nil {
		ev := messaging.OrderStatusEvent{
			OrderID:    updated.ID,
			FromStatus: order.Status,
			ToStatus:   updated.Status,
			Event:      event,
			Actor:      actor,
			OccurredAt: s.now(),
		}
		if err := s.publisher.PublishStatusChange(ev); err != nil {
			logger.Warn("Failed to publish order status event", "order_id", orderID, "error", err)
		}
	}
	logger.Info("Order transition committed",
		"order_id", orderID, "event", event,
		"from", order.Status, "to", updated.Status, "staff_id", actor.StaffID)
	return updated, nil
}
