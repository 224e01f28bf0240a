package repository

import (
	"context"
	"time"

	"evfleet-ops-backend/internal/domain"
)

// OrderRepository is the persistence boundary for rental orders. Any
// backend may implement it provided CompareAndSwap gives atomic per-order
// conflict detection.
type OrderRepository interface {
	// Create inserts a new PENDING order (booking collaborator path).
	Create(ctx context.Context, o *domain.RentalOrder) error

	// Get returns the order and its current version.
	// Returns domain.ErrNotFound when the id does not resolve.
	Get(ctx context.Context, id int64) (*domain.RentalOrder, int64, error)

	// CompareAndSwap persists o only if the stored version still equals
	// expectedVersion, and returns the new version. Returns
	// domain.ErrConcurrentModification on a version mismatch; the caller
	// must re-fetch and retry.
	CompareAndSwap(ctx context.Context, id int64, expectedVersion int64, o *domain.RentalOrder) (int64, error)

	// Read paths for the lookup index. Results may be stale relative to Get.
	FindByPhone(ctx context.Context, phone string) ([]domain.RentalOrder, error)
	FindByStation(ctx context.Context, stationID int64, status *domain.OrderStatus) ([]domain.RentalOrder, error)

	// ListOverdueRenting returns RENTING orders whose planned end date is
	// before asOf. Used by the reminder jobs.
	ListOverdueRenting(ctx context.Context, asOf time.Time) ([]domain.RentalOrder, error)
}
