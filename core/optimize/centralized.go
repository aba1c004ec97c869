package optimize

import (
	"context"
	"fmt"

	"github.com/kilianp07/vpp/core/logger"
	"github.com/kilianp07/vpp/core/model"
)

// BaselineSatisfaction is reported for every centralized allocation. It is a
// fixed comparison placeholder, not a measured value.
const BaselineSatisfaction = 4.5

// dispatchEpsilon absorbs the 2-decimal rounding of dispatched power.
const dispatchEpsilon = 0.005

// CentralizedAllocator dispatches suppliers directly, without negotiation.
// Suppliers are priced at the assumed opportunity cost of their asset type and
// their preferences are ignored; each ignored preference of a dispatched
// supplier is reported as a violation.
type CentralizedAllocator struct {
	cfg    Config
	solver Solver
	log    logger.Logger
}

// NewCentralizedAllocator returns an allocator. A nil solver selects the gonum
// simplex solver.
func NewCentralizedAllocator(cfg Config, s Solver, log logger.Logger) *CentralizedAllocator {
	cfg.SetDefaults()
	if s == nil {
		s = SimplexSolver{Tol: cfg.Tolerance}
	}
	return &CentralizedAllocator{cfg: cfg, solver: s, log: logger.OrNop(log)}
}

// Allocate runs the baseline over the raw bids of all suppliers. Capacity
// withheld as backup reserve is treated as dispatchable and availability
// flags are disregarded.
func (a *CentralizedAllocator) Allocate(ctx context.Context, opp model.Opportunity, bids []model.SupplierBid) (model.OptimizationResult, error) {
	items := make([]item, 0, len(bids))
	used := make([]model.SupplierBid, 0, len(bids))
	for _, b := range bids {
		capKW := max(b.MaxCapacityKW, b.AvailableKW) + b.Preferences.BackupReserveKW
		if capKW <= 0 {
			continue
		}
		items = append(items, item{id: b.SupplierID, cost: a.cfg.AssetCost(b.AssetType), cap: capKW})
		used = append(used, b)
	}
	res, err := solveDispatch(ctx, "centralized", a.solver, a.log, opp, items)
	if err != nil {
		return res, err
	}
	res.Satisfaction = BaselineSatisfaction
	for i, b := range used {
		res.Violations = append(res.Violations, violations(b, items[i], res.Dispatch[b.SupplierID])...)
	}
	if n := len(res.Violations); n > 0 {
		a.log.Infof("centralized allocation for %s ignores %d supplier preferences", opp.ID, n)
	}
	return res, nil
}

func violations(b model.SupplierBid, it item, dispatched float64) []model.PreferenceViolation {
	if dispatched <= 0 {
		return nil
	}
	var out []model.PreferenceViolation
	p := b.Preferences
	// The reserve sits on top of the offered capacity; only dispatch beyond
	// the offer eats into it.
	if offered := it.cap - p.BackupReserveKW; p.BackupReserveKW > 0 && dispatched > offered+dispatchEpsilon {
		out = append(out, model.PreferenceViolation{
			SupplierID: b.SupplierID,
			Kind:       model.ViolationBackupReserve,
			Detail: fmt.Sprintf("%.2f of %.2f kW backup reserve dispatched (%.1f h backup requested)",
				dispatched-offered, p.BackupReserveKW, p.BackupHours),
		})
	}
	if p.EVChargeNeededKWh > 0 {
		detail := fmt.Sprintf("%.2f kWh still needed", p.EVChargeNeededKWh)
		if !p.ChargeDeadline.IsZero() {
			detail += " before " + p.ChargeDeadline.Format("2006-01-02 15:04")
		}
		out = append(out, model.PreferenceViolation{
			SupplierID: b.SupplierID,
			Kind:       model.ViolationChargingDeadline,
			Detail:     detail,
		})
	}
	if p.CompensationFloor > it.cost {
		out = append(out, model.PreferenceViolation{
			SupplierID: b.SupplierID,
			Kind:       model.ViolationCompensationFloor,
			Detail:     fmt.Sprintf("paid %.2f below floor %.2f", it.cost, p.CompensationFloor),
		})
	}
	return out
}
