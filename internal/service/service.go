package service

import (
	"context"

	"evfleet-ops-backend/internal/domain"
)

// EvidenceFile is one uploaded asset (photo or signed-contract scan) as it
// arrives from the staff client, before it has a storage reference.
type EvidenceFile struct {
	FileName    string
	ContentType string
	Data        []byte
}

// DeliverVehicleRequest bundles everything a counter action supplies for
// the CONFIRMED -> RENTING handover. Photos are mandatory; contract scans
// and readings are optional.
type DeliverVehicleRequest struct {
	OrderID int64 `validate:"required,gt=0"`
	// Photo presence is a transition guard, not input validation: an empty
	// set must surface as InvalidTransition with the order untouched.
	Photos            []EvidenceFile
	ContractBefore    *EvidenceFile
	ContractAfter     *EvidenceFile
	OdometerOutKm     *int32 `validate:"omitempty,gte=0"`
	BatteryOutPercent *int32 `validate:"omitempty,gte=0,lte=100"`
	Note              string
}

// ReturnVehicleRequest bundles the RENTING -> COMPLETED return action.
type ReturnVehicleRequest struct {
	OrderID          int64 `validate:"required,gt=0"`
	Photos           []EvidenceFile
	PenaltyNote      string
	DamageFeeCents   int64  `validate:"gte=0"`
	OdometerInKm     *int32 `validate:"omitempty,gte=0"`
	BatteryInPercent *int32 `validate:"omitempty,gte=0,lte=100"`
}

// HandoverService orchestrates the two composite handover operations.
// Each call is logically atomic from the caller's point of view: either
// the full evidence set is stored and the transition committed, or the
// order is untouched.
type HandoverService interface {
	DeliverVehicle(ctx context.Context, actor domain.Actor, req DeliverVehicleRequest) (*domain.RentalOrder, error)
	ReturnVehicle(ctx context.Context, actor domain.Actor, req ReturnVehicleRequest) (*domain.RentalOrder, error)
}

// CreateOrderRequest is what the booking collaborator posts to register a
// new rental. Dates are date-only strings (2006-01-02); cost is derived
// here, never taken from the caller.
type CreateOrderRequest struct {
	RenterID         int64  `json:"renter_id"`
	VehicleID        int64  `json:"vehicle_id"`
	StationID        int64  `json:"station_id"`
	RenterName       string `json:"renter_name"`
	RenterPhone      string `json:"renter_phone"`
	RenterEmail      string `json:"renter_email"`
	VehiclePlate     string `json:"vehicle_plate"`
	StationName      string `json:"station_name"`
	PlannedStartDate string `json:"planned_start_date"`
	PlannedEndDate   string `json:"planned_end_date"`
	PricePerDayCents int64  `json:"price_per_day_cents"`
}

// OrderService covers order intake, the single-step transitions and
// canonical reads.
type OrderService interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*domain.RentalOrder, error)
	GetOrder(ctx context.Context, id int64) (*domain.RentalOrder, error)
	ApprovePayment(ctx context.Context, actor domain.Actor, orderID int64, paymentRef string) (*domain.RentalOrder, error)
	Cancel(ctx context.Context, actor domain.Actor, orderID int64, reason string) (*domain.RentalOrder, error)
}

// LookupService is the staff search facade. Results may be stale; callers
// must re-fetch the canonical order via OrderService before acting on one.
type LookupService interface {
	OrdersByPhone(ctx context.Context, phone string) ([]domain.RentalOrder, error)
	OrdersByStation(ctx context.Context, stationID int64, statusFilter string) ([]domain.RentalOrder, error)
}

// EmailService sends renter-facing reminder mail from the scheduled jobs.
type EmailService interface {
	SendReturnReminder(ctx context.Context, email, name string, orderID int64, plannedEnd string) error
	SendOverdueNotice(ctx context.Context, email, name string, orderID int64, daysLate int32) error
}
