package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"evfleet-ops-backend/internal/domain"
	"evfleet-ops-backend/internal/repository"
)

type orderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) repository.OrderRepository {
	return &orderRepository{db: db}
}

const orderColumns = `id, renter_id, vehicle_id, station_id, renter_name, renter_phone, renter_email,
	vehicle_plate, station_name, status, booking_time, planned_start_date, planned_end_date,
	actual_pickup_at, actual_return_at, payment_approved_at, payment_reference,
	price_per_day_cents, rented_days, total_cost_cents, penalty_cost_cents,
	delivery_photo_urls, return_photo_urls, contract_before_url, contract_after_url,
	odometer_out_km, battery_out_percent, odometer_in_km, battery_in_percent,
	note, version, created_on, updated_on`

func (r *orderRepository) Create(ctx context.Context, o *domain.RentalOrder) error {
	query := `INSERT INTO rental_orders (renter_id, vehicle_id, station_id, renter_name, renter_phone,
		renter_email, vehicle_plate, station_name, status, booking_time, planned_start_date,
		planned_end_date, price_per_day_cents, rented_days, total_cost_cents, note, version,
		created_on, updated_on)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, 1, NOW(), NOW())
		RETURNING id, version`
	return r.db.QueryRowContext(ctx, query,
		o.RenterID, o.VehicleID, o.StationID, o.RenterName, o.RenterPhone, o.RenterEmail,
		o.VehiclePlate, o.StationName, o.Status, o.BookingTime, o.PlannedStartDate,
		o.PlannedEndDate, o.PricePerDayCents, o.RentedDays, o.TotalCostCents, o.Note,
	).Scan(&o.ID, &o.Version)
}

func (r *orderRepository) Get(ctx context.Context, id int64) (*domain.RentalOrder, int64, error) {
	query := `SELECT ` + orderColumns + ` FROM rental_orders WHERE id = $1`
	o, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, domain.ErrNotFound
		}
		return nil, 0, err
	}
	return o, o.Version, nil
}

// CompareAndSwap is the single write path for transitions. The version
// predicate makes two concurrent writers resolve to exactly one winner.
func (r *orderRepository) CompareAndSwap(ctx context.Context, id int64, expectedVersion int64, o *domain.RentalOrder) (int64, error) {
	query := `UPDATE rental_orders SET
		status = $1,
		actual_pickup_at = $2,
		actual_return_at = $3,
		payment_approved_at = $4,
		payment_reference = $5,
		total_cost_cents = $6,
		penalty_cost_cents = $7,
		delivery_photo_urls = $8,
		return_photo_urls = $9,
		contract_before_url = $10,
		contract_after_url = $11,
		odometer_out_km = $12,
		battery_out_percent = $13,
		odometer_in_km = $14,
		battery_in_percent = $15,
		note = $16,
		version = version + 1,
		updated_on = NOW()
		WHERE id = $17 AND version = $18`
	res, err := r.db.ExecContext(ctx, query,
		o.Status, o.ActualPickupAt, o.ActualReturnAt, o.PaymentApprovedAt, o.PaymentReference,
		o.TotalCostCents, o.PenaltyCostCents,
		pq.Array(o.DeliveryPhotoURLs), pq.Array(o.ReturnPhotoURLs),
		o.ContractBeforeURL, o.ContractAfterURL,
		o.OdometerOutKm, o.BatteryOutPercent, o.OdometerInKm, o.BatteryInPercent,
		o.Note, id, expectedVersion,
	)
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if affected == 0 {
		// Distinguish a lost race from a bad id.
		var exists bool
		if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM rental_orders WHERE id = $1)`, id).Scan(&exists); err != nil {
			return 0, err
		}
		if !exists {
			return 0, domain.ErrNotFound
		}
		return 0, domain.ErrConcurrentModification
	}
	return expectedVersion + 1, nil
}

func (r *orderRepository) FindByPhone(ctx context.Context, phone string) ([]domain.RentalOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM rental_orders WHERE renter_phone = $1 ORDER BY booking_time DESC`
	return r.queryOrders(ctx, query, phone)
}

func (r *orderRepository) FindByStation(ctx context.Context, stationID int64, status *domain.OrderStatus) ([]domain.RentalOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM rental_orders WHERE station_id = $1`
	args := []interface{}{stationID}
	if status != nil {
		query += ` AND status = $2`
		args = append(args, *status)
	}
	query += ` ORDER BY booking_time DESC`
	return r.queryOrders(ctx, query, args...)
}

func (r *orderRepository) ListOverdueRenting(ctx context.Context, asOf time.Time) ([]domain.RentalOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM rental_orders WHERE status = $1 AND planned_end_date < $2 ORDER BY planned_end_date ASC`
	return r.queryOrders(ctx, query, domain.OrderStatusRenting, asOf)
}

func (r *orderRepository) queryOrders(ctx context.Context, query string, args ...interface{}) ([]domain.RentalOrder, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.RentalOrder
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*domain.RentalOrder, error) {
	var (
		o              domain.RentalOrder
		rawStatus      string
		pickupAt       sql.NullTime
		returnAt       sql.NullTime
		paymentAt      sql.NullTime
		paymentRef     sql.NullString
		penaltyCents   sql.NullInt64
		contractBefore sql.NullString
		contractAfter  sql.NullString
		odoOut         sql.NullInt32
		battOut        sql.NullInt32
		odoIn          sql.NullInt32
		battIn         sql.NullInt32
		note           sql.NullString
	)
	err := row.Scan(
		&o.ID, &o.RenterID, &o.VehicleID, &o.StationID, &o.RenterName, &o.RenterPhone, &o.RenterEmail,
		&o.VehiclePlate, &o.StationName, &rawStatus, &o.BookingTime, &o.PlannedStartDate, &o.PlannedEndDate,
		&pickupAt, &returnAt, &paymentAt, &paymentRef,
		&o.PricePerDayCents, &o.RentedDays, &o.TotalCostCents, &penaltyCents,
		pq.Array(&o.DeliveryPhotoURLs), pq.Array(&o.ReturnPhotoURLs), &contractBefore, &contractAfter,
		&odoOut, &battOut, &odoIn, &battIn,
		&note, &o.Version, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	// Legacy spellings (PAYED, DONE, ...) are folded into canonical
	// statuses here so nothing downstream ever sees them.
	status, ok := domain.NormalizeStatus(rawStatus)
	if !ok {
		return nil, fmt.Errorf("rental order %d has unknown status %q", o.ID, rawStatus)
	}
	o.Status = status

	if pickupAt.Valid {
		o.ActualPickupAt = &pickupAt.Time
	}
	if returnAt.Valid {
		o.ActualReturnAt = &returnAt.Time
	}
	if paymentAt.Valid {
		o.PaymentApprovedAt = &paymentAt.Time
	}
	o.PaymentReference = paymentRef.String
	if penaltyCents.Valid {
		o.PenaltyCostCents = &penaltyCents.Int64
	}
	o.ContractBeforeURL = contractBefore.String
	o.ContractAfterURL = contractAfter.String
	if odoOut.Valid {
		o.OdometerOutKm = &odoOut.Int32
	}
	if battOut.Valid {
		o.BatteryOutPercent = &battOut.Int32
	}
	if odoIn.Valid {
		o.OdometerInKm = &odoIn.Int32
	}
	if battIn.Valid {
		o.BatteryInPercent = &battIn.Int32
	}
	o.Note = note.String
	return &o, nil
}
