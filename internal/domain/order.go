package domain

import (
	"strings"
	"time"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusConfirmed OrderStatus = "CONFIRMED" // payment approved, not yet delivered
	OrderStatusRenting   OrderStatus = "RENTING"   // vehicle handed over
	OrderStatusCompleted OrderStatus = "COMPLETED" // returned and inspected
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// legacyStatusNames maps alternate/legacy status spellings that still exist
// in older rows and client requests to canonical values. Normalization
// happens once at the boundary (repository scan, HTTP query parsing); the
// state machine only ever sees canonical statuses.
var legacyStatusNames = map[string]OrderStatus{
	"PENDING":   OrderStatusPending,
	"CONFIRMED": OrderStatusConfirmed,
	"PAID":      OrderStatusConfirmed,
	"PAYED":     OrderStatusConfirmed,
	"APPROVED":  OrderStatusConfirmed,
	"RENTING":   OrderStatusRenting,
	"ACTIVE":    OrderStatusRenting,
	"COMPLETED": OrderStatusCompleted,
	"DONE":      OrderStatusCompleted,
	"FINISHED":  OrderStatusCompleted,
	"CANCELLED": OrderStatusCancelled,
	"CANCELED":  OrderStatusCancelled,
}

// NormalizeStatus resolves a raw status string to its canonical value.
// The second result is false when the spelling is unknown.
func NormalizeStatus(raw string) (OrderStatus, bool) {
	s, ok := legacyStatusNames[strings.ToUpper(strings.TrimSpace(raw))]
	return s, ok
}

// IsTerminal reports whether no further transitions are defined from s.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// Actor identifies the staff member performing an operation. It is threaded
// explicitly through every mutating call so authorization and auditing are
// testable per call.
type Actor struct {
	StaffID   int64  `json:"staff_id"`
	Name      string `json:"name"`
	StationID int64  `json:"station_id"`
	Role      string `json:"role"`
}

// RentalOrder is the central billing entity. Created externally by the
// booking flow in PENDING; mutated only through state machine transitions.
type RentalOrder struct {
	ID        int64 `json:"id"`
	RenterID  int64 `json:"renter_id"`
	VehicleID int64 `json:"vehicle_id"`
	StationID int64 `json:"station_id"`

	// Denormalized display/search fields. Derived, not authoritative.
	RenterName   string `json:"renter_name"`
	RenterPhone  string `json:"renter_phone"`
	RenterEmail  string `json:"renter_email"`
	VehiclePlate string `json:"vehicle_plate"`
	StationName  string `json:"station_name"`

	Status OrderStatus `json:"status"`

	BookingTime       time.Time  `json:"booking_time"`
	PlannedStartDate  time.Time  `json:"planned_start_date"` // date-only
	PlannedEndDate    time.Time  `json:"planned_end_date"`   // date-only
	ActualPickupAt    *time.Time `json:"actual_pickup_at,omitempty"`
	ActualReturnAt    *time.Time `json:"actual_return_at,omitempty"`
	PaymentApprovedAt *time.Time `json:"payment_approved_at,omitempty"`
	PaymentReference  string     `json:"payment_reference,omitempty"`

	PricePerDayCents int64  `json:"price_per_day_cents"`
	RentedDays       int32  `json:"rented_days"`
	TotalCostCents   int64  `json:"total_cost_cents"`
	PenaltyCostCents *int64 `json:"penalty_cost_cents,omitempty"`

	// Evidence references. Nil/empty until the corresponding transition runs.
	DeliveryPhotoURLs []string `json:"delivery_photo_urls,omitempty"`
	ReturnPhotoURLs   []string `json:"return_photo_urls,omitempty"`
	ContractBeforeURL string   `json:"contract_before_url,omitempty"`
	ContractAfterURL  string   `json:"contract_after_url,omitempty"`

	OdometerOutKm     *int32 `json:"odometer_out_km,omitempty"`
	BatteryOutPercent *int32 `json:"battery_out_percent,omitempty"`
	OdometerInKm      *int32 `json:"odometer_in_km,omitempty"`
	BatteryInPercent  *int32 `json:"battery_in_percent,omitempty"`

	Note string `json:"note,omitempty"`

	// Version is the optimistic concurrency token. Incremented by every
	// successful CompareAndSwap.
	Version int64 `json:"version"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BaseCostCents is the rental cost before any penalty.
func (o *RentalOrder) BaseCostCents() int64 {
	return o.PricePerDayCents * int64(o.RentedDays)
}

// Clone returns a deep copy so state machine transitions never alias the
// caller's slices.
func (o *RentalOrder) Clone() *RentalOrder {
	c := *o
	c.DeliveryPhotoURLs = append([]string(nil), o.DeliveryPhotoURLs...)
	c.ReturnPhotoURLs = append([]string(nil), o.ReturnPhotoURLs...)
	if o.ActualPickupAt != nil {
		t := *o.ActualPickupAt
		c.ActualPickupAt = &t
	}
	if o.ActualReturnAt != nil {
		t := *o.ActualReturnAt
		c.ActualReturnAt = &t
	}
	if o.PaymentApprovedAt != nil {
		t := *o.PaymentApprovedAt
		c.PaymentApprovedAt = &t
	}
	if o.PenaltyCostCents != nil {
		v := *o.PenaltyCostCents
		c.PenaltyCostCents = &v
	}
	if o.OdometerOutKm != nil {
		v := *o.OdometerOutKm
		c.OdometerOutKm = &v
	}
	if o.BatteryOutPercent != nil {
		v := *o.BatteryOutPercent
		c.BatteryOutPercent = &v
	}
	if o.OdometerInKm != nil {
		v := *o.OdometerInKm
		c.OdometerInKm = &v
	}
	if o.BatteryInPercent != nil {
		v := *o.BatteryInPercent
		c.BatteryInPercent = &v
	}
	return &c
}
