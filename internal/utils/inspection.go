package utils

import "time"

// InspectionConfig holds the tunables for return-time penalty computation.
// Loaded from the penalty section of the application config.
type InspectionConfig struct {
	LateFeePerDayCents        int64 // surcharge per whole late day
	OdometerLimitKm           int32 // odometer delta above this adds the excess surcharge; 0 disables
	BatteryDropLimitPercent   int32 // battery drop above this adds the excess surcharge; 0 disables
	ExcessUsageSurchargeCents int64
}

// InspectionInput is everything the return inspection looks at. Odometer
// and battery readings are optional; missing readings are recorded for
// audit as absent and never monetized.
type InspectionInput struct {
	PlannedEndDate    time.Time
	ActualReturnAt    time.Time
	OdometerOutKm     *int32
	OdometerInKm      *int32
	BatteryOutPercent *int32
	BatteryInPercent  *int32
	DamageFeeCents    int64 // staff-entered monetary amount, taken as-is
}

// InspectionResult breaks the penalty down for auditing. TotalCents is
// what gets folded into the order's total cost.
type InspectionResult struct {
	LateDays             int32
	LateFeeCents         int64
	DamageFeeCents       int64
	OdometerDeltaKm      *int32
	BatteryDropPercent   *int32
	ExcessSurchargeCents int64
	TotalCents           int64
}

// ComputePenalty is deterministic and side-effect-free so it can be tested
// independently of the state machine. The result is never negative: an
// early return does not reduce the bill.
func ComputePenalty(cfg InspectionConfig, in InspectionInput) InspectionResult {
	res := InspectionResult{}

	res.LateDays = LateDays(in.PlannedEndDate, in.ActualReturnAt)
	res.LateFeeCents = int64(res.LateDays) * cfg.LateFeePerDayCents

	if in.DamageFeeCents > 0 {
		res.DamageFeeCents = in.DamageFeeCents
	}

	if in.OdometerOutKm != nil && in.OdometerInKm != nil {
		delta := *in.OdometerInKm - *in.OdometerOutKm
		res.OdometerDeltaKm = &delta
		if cfg.OdometerLimitKm > 0 && delta > cfg.OdometerLimitKm {
			res.ExcessSurchargeCents += cfg.ExcessUsageSurchargeCents
		}
	}
	if in.BatteryOutPercent != nil && in.BatteryInPercent != nil {
		drop := *in.BatteryOutPercent - *in.BatteryInPercent
		res.BatteryDropPercent = &drop
		if cfg.BatteryDropLimitPercent > 0 && drop > cfg.BatteryDropLimitPercent {
			res.ExcessSurchargeCents += cfg.ExcessUsageSurchargeCents
		}
	}

	total := res.LateFeeCents + res.DamageFeeCents + res.ExcessSurchargeCents
	if total < 0 {
		total = 0
	}
	res.TotalCents = total
	return res
}
