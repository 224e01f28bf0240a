package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var testInspectionCfg = InspectionConfig{
	LateFeePerDayCents:        5000,
	OdometerLimitKm:           300,
	BatteryDropLimitPercent:   80,
	ExcessUsageSurchargeCents: 10000,
}

func i32(v int32) *int32 { return &v }

func TestLateDays(t *testing.T) {
	end := time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)

	t.Run("EarlyReturn", func(t *testing.T) {
		assert.Equal(t, int32(0), LateDays(end, end.Add(-6*time.Hour)))
	})

	t.Run("ExactlyAtDeadline", func(t *testing.T) {
		assert.Equal(t, int32(0), LateDays(end, end))
	})

	t.Run("OneDayLate", func(t *testing.T) {
		assert.Equal(t, int32(1), LateDays(end, end.Add(24*time.Hour)))
	})

	t.Run("PartialDayRoundsUp", func(t *testing.T) {
		// 2 days and 3 hours past the agreed end counts as 3 late days
		assert.Equal(t, int32(3), LateDays(end, end.Add(51*time.Hour)))
	})

	t.Run("TimeOfDayOnEndDateIgnored", func(t *testing.T) {
		endWithTime := time.Date(2026, 3, 7, 18, 30, 0, 0, time.UTC)
		assert.Equal(t, int32(1), LateDays(endWithTime, time.Date(2026, 3, 7, 5, 0, 0, 1, time.UTC)))
	})
}

func TestRentedDays(t *testing.T) {
	start := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)

	t.Run("InclusiveBothEnds", func(t *testing.T) {
		days, err := RentedDays(start, start.AddDate(0, 0, 2))
		assert.NoError(t, err)
		assert.Equal(t, int32(3), days)
	})

	t.Run("SingleDay", func(t *testing.T) {
		days, err := RentedDays(start, start)
		assert.NoError(t, err)
		assert.Equal(t, int32(1), days)
	})

	t.Run("EndBeforeStart", func(t *testing.T) {
		_, err := RentedDays(start, start.AddDate(0, 0, -1))
		assert.Error(t, err)
	})
}

func TestComputePenalty(t *testing.T) {
	end := time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)

	t.Run("OnTimeNoFindings", func(t *testing.T) {
		res := ComputePenalty(testInspectionCfg, InspectionInput{
			PlannedEndDate: end,
			ActualReturnAt: end.Add(-2 * time.Hour),
		})
		assert.Equal(t, int32(0), res.LateDays)
		assert.Equal(t, int64(0), res.TotalCents)
	})

	t.Run("LateFeeOnly", func(t *testing.T) {
		res := ComputePenalty(testInspectionCfg, InspectionInput{
			PlannedEndDate: end,
			ActualReturnAt: end.Add(51 * time.Hour), // 3 late days
		})
		assert.Equal(t, int32(3), res.LateDays)
		assert.Equal(t, int64(15000), res.LateFeeCents)
		assert.Equal(t, int64(15000), res.TotalCents)
	})

	t.Run("DamageFeeAdded", func(t *testing.T) {
		res := ComputePenalty(testInspectionCfg, InspectionInput{
			PlannedEndDate: end,
			ActualReturnAt: end.Add(24 * time.Hour),
			DamageFeeCents: 20000,
		})
		assert.Equal(t, int64(5000), res.LateFeeCents)
		assert.Equal(t, int64(20000), res.DamageFeeCents)
		assert.Equal(t, int64(25000), res.TotalCents)
	})

	t.Run("OdometerSurcharge", func(t *testing.T) {
		res := ComputePenalty(testInspectionCfg, InspectionInput{
			PlannedEndDate: end,
			ActualReturnAt: end,
			OdometerOutKm:  i32(1000),
			OdometerInKm:   i32(1400), // delta 400 > limit 300
		})
		assert.NotNil(t, res.OdometerDeltaKm)
		assert.Equal(t, int32(400), *res.OdometerDeltaKm)
		assert.Equal(t, int64(10000), res.ExcessSurchargeCents)
		assert.Equal(t, int64(10000), res.TotalCents)
	})

	t.Run("BatteryDropSurcharge", func(t *testing.T) {
		res := ComputePenalty(testInspectionCfg, InspectionInput{
			PlannedEndDate:    end,
			ActualReturnAt:    end,
			BatteryOutPercent: i32(100),
			BatteryInPercent:  i32(10), // drop 90 > limit 80
		})
		assert.NotNil(t, res.BatteryDropPercent)
		assert.Equal(t, int32(90), *res.BatteryDropPercent)
		assert.Equal(t, int64(10000), res.ExcessSurchargeCents)
	})

	t.Run("BothSurchargesStack", func(t *testing.T) {
		res := ComputePenalty(testInspectionCfg, InspectionInput{
			PlannedEndDate:    end,
			ActualReturnAt:    end,
			OdometerOutKm:     i32(0),
			OdometerInKm:      i32(500),
			BatteryOutPercent: i32(100),
			BatteryInPercent:  i32(5),
		})
		assert.Equal(t, int64(20000), res.ExcessSurchargeCents)
	})

	t.Run("MissingReadingsNeverMonetized", func(t *testing.T) {
		res := ComputePenalty(testInspectionCfg, InspectionInput{
			PlannedEndDate: end,
			ActualReturnAt: end,
			OdometerInKm:   i32(99999), // out reading absent
		})
		assert.Nil(t, res.OdometerDeltaKm)
		assert.Equal(t, int64(0), res.TotalCents)
	})

	t.Run("DisabledLimitsNeverSurcharge", func(t *testing.T) {
		cfg := testInspectionCfg
		cfg.OdometerLimitKm = 0
		cfg.BatteryDropLimitPercent = 0
		res := ComputePenalty(cfg, InspectionInput{
			PlannedEndDate:    end,
			ActualReturnAt:    end,
			OdometerOutKm:     i32(0),
			OdometerInKm:      i32(9999),
			BatteryOutPercent: i32(100),
			BatteryInPercent:  i32(0),
		})
		assert.Equal(t, int64(0), res.ExcessSurchargeCents)
	})

	t.Run("NeverNegative", func(t *testing.T) {
		res := ComputePenalty(testInspectionCfg, InspectionInput{
			PlannedEndDate: end,
			ActualReturnAt: end.Add(-72 * time.Hour),
		})
		assert.GreaterOrEqual(t, res.TotalCents, int64(0))
	})
}
