package postgres_test

import (
	"context"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evfleet-ops-backend/internal/domain"
	"evfleet-ops-backend/internal/repository/postgres"
)

var orderColumnNames = []string{
	"id", "renter_id", "vehicle_id", "station_id", "renter_name", "renter_phone", "renter_email",
	"vehicle_plate", "station_name", "status", "booking_time", "planned_start_date", "planned_end_date",
	"actual_pickup_at", "actual_return_at", "payment_approved_at", "payment_reference",
	"price_per_day_cents", "rented_days", "total_cost_cents", "penalty_cost_cents",
	"delivery_photo_urls", "return_photo_urls", "contract_before_url", "contract_after_url",
	"odometer_out_km", "battery_out_percent", "odometer_in_km", "battery_in_percent",
	"note", "version", "created_on", "updated_on",
}

func orderRow(id int64, status string, version int64) []driver.Value {
	now := time.Now()
	return []driver.Value{
		id, int64(1), int64(2), int64(3), "Li Wei", "13800001111", "renter@test.com",
		"EV-8821", "Downtown Station", status, now, now, now.Add(48 * time.Hour),
		nil, nil, nil, nil,
		int64(10000), int32(3), int64(30000), nil,
		"{}", "{}", nil, nil,
		nil, nil, nil, nil,
		nil, version, now, now,
	}
}

func TestOrderRepository_Get(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewOrderRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		rows := sqlmock.NewRows(orderColumnNames).AddRow(orderRow(1, "CONFIRMED", 2)...)
		mock.ExpectQuery("SELECT (.+) FROM rental_orders WHERE id = \\$1").
			WithArgs(int64(1)).
			WillReturnRows(rows)

		order, version, err := repo.Get(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(1), order.ID)
		assert.Equal(t, domain.OrderStatusConfirmed, order.Status)
		assert.Equal(t, int64(2), version)
	})

	t.Run("LegacyStatusNormalized", func(t *testing.T) {
		rows := sqlmock.NewRows(orderColumnNames).AddRow(orderRow(2, "PAYED", 1)...)
		mock.ExpectQuery("SELECT (.+) FROM rental_orders WHERE id = \\$1").
			WithArgs(int64(2)).
			WillReturnRows(rows)

		order, _, err := repo.Get(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, domain.OrderStatusConfirmed, order.Status)
	})

	t.Run("UnknownStatusRejected", func(t *testing.T) {
		rows := sqlmock.NewRows(orderColumnNames).AddRow(orderRow(3, "SHIPPED", 1)...)
		mock.ExpectQuery("SELECT (.+) FROM rental_orders WHERE id = \\$1").
			WithArgs(int64(3)).
			WillReturnRows(rows)

		_, _, err := repo.Get(ctx, 3)
		assert.Error(t, err)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM rental_orders WHERE id = \\$1").
			WithArgs(int64(404)).
			WillReturnRows(sqlmock.NewRows(orderColumnNames))

		_, _, err := repo.Get(ctx, 404)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestOrderRepository_CompareAndSwap(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewOrderRepository(db)
	ctx := context.Background()

	order := &domain.RentalOrder{
		ID:             1,
		Status:         domain.OrderStatusConfirmed,
		TotalCostCents: 30000,
	}

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("UPDATE rental_orders SET").
			WillReturnResult(sqlmock.NewResult(0, 1))

		newVersion, err := repo.CompareAndSwap(ctx, 1, 2, order)
		require.NoError(t, err)
		assert.Equal(t, int64(3), newVersion)
	})

	t.Run("VersionConflict", func(t *testing.T) {
		mock.ExpectExec("UPDATE rental_orders SET").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		_, err := repo.CompareAndSwap(ctx, 1, 2, order)
		assert.ErrorIs(t, err, domain.ErrConcurrentModification)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectExec("UPDATE rental_orders SET").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		_, err := repo.CompareAndSwap(ctx, 1, 2, order)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestOrderRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewOrderRepository(db)
	ctx := context.Background()

	order := &domain.RentalOrder{
		RenterID:         1,
		VehicleID:        2,
		StationID:        3,
		Status:           domain.OrderStatusPending,
		BookingTime:      time.Now(),
		PlannedStartDate: time.Now(),
		PlannedEndDate:   time.Now().Add(48 * time.Hour),
		PricePerDayCents: 10000,
		RentedDays:       3,
		TotalCostCents:   30000,
	}

	mock.ExpectQuery("INSERT INTO rental_orders").
		WillReturnRows(sqlmock.NewRows([]string{"id", "version"}).AddRow(42, 1))

	err = repo.Create(ctx, order)
	require.NoError(t, err)
	assert.Equal(t, int64(42), order.ID)
	assert.Equal(t, int64(1), order.Version)
}

func TestOrderRepository_FindByPhone(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewOrderRepository(db)
	ctx := context.Background()

	rows := sqlmock.NewRows(orderColumnNames).
		AddRow(orderRow(1, "RENTING", 3)...).
		AddRow(orderRow(2, "DONE", 5)...)
	mock.ExpectQuery("SELECT (.+) FROM rental_orders WHERE renter_phone = \\$1").
		WithArgs("13800001111").
		WillReturnRows(rows)

	orders, err := repo.FindByPhone(ctx, "13800001111")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, domain.OrderStatusRenting, orders[0].Status)
	assert.Equal(t, domain.OrderStatusCompleted, orders[1].Status)
}

func TestOrderRepository_FindByStation(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewOrderRepository(db)
	ctx := context.Background()

	status := domain.OrderStatusRenting
	rows := sqlmock.NewRows(orderColumnNames).AddRow(orderRow(1, "RENTING", 3)...)
	mock.ExpectQuery("SELECT (.+) FROM rental_orders WHERE station_id = \\$1 AND status = \\$2").
		WithArgs(int64(3), status).
		WillReturnRows(rows)

	orders, err := repo.FindByStation(ctx, 3, &status)
	require.NoError(t, err)
	require.Len(t, orders, 1)
}

func TestOrderRepository_ListOverdueRenting(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewOrderRepository(db)
	ctx := context.Background()

	asOf := time.Now()
	rows := sqlmock.NewRows(orderColumnNames).AddRow(orderRow(9, "RENTING", 4)...)
	mock.ExpectQuery("SELECT (.+) FROM rental_orders WHERE status = \\$1 AND planned_end_date < \\$2").
		WithArgs(domain.OrderStatusRenting, asOf).
		WillReturnRows(rows)

	orders, err := repo.ListOverdueRenting(ctx, asOf)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, int64(9), orders[0].ID)
}
