package model

// SchemaVersion is bumped whenever the result structs change shape.
const SchemaVersion = 1

// FailureReason markers carried by failed negotiations.
const (
	ReasonNoBids               = "NoBidsError"
	ReasonInsufficientCapacity = "InsufficientCapacityError"
)

// SolverStatus is the outcome reported by the LP solver.
type SolverStatus string

const (
	StatusOptimal    SolverStatus = "OPTIMAL"
	StatusInfeasible SolverStatus = "INFEASIBLE"
	StatusUnbounded  SolverStatus = "UNBOUNDED"
	StatusFailed     SolverStatus = "FAILED"
)

// ViolationKind names a supplier preference the centralized baseline ignored.
type ViolationKind string

const (
	ViolationBackupReserve     ViolationKind = "backup_reserve"
	ViolationChargingDeadline  ViolationKind = "charging_deadline"
	ViolationCompensationFloor ViolationKind = "compensation_floor"
)

// PreferenceViolation records one ignored supplier constraint.
type PreferenceViolation struct {
	SupplierID string        `json:"supplier_id"`
	Kind       ViolationKind `json:"kind"`
	Detail     string        `json:"detail"`
}

// OptimizationResult is the output of a price/dispatch optimization.
type OptimizationResult struct {
	Success        bool                  `json:"success"`
	Status         SolverStatus          `json:"status"`
	UsedFallback   bool                  `json:"used_fallback"`
	TotalBidMW     float64               `json:"total_bid_mw"`
	BidPrice       float64               `json:"bid_price"`
	Dispatch       map[string]float64    `json:"dispatch"` // supplier id -> kW
	ExpectedProfit float64               `json:"expected_profit"`
	Payments       map[string]float64    `json:"payments"` // supplier id -> currency
	Violations     []PreferenceViolation `json:"violations,omitempty"`
	Satisfaction   float64               `json:"satisfaction"`
}

// NegotiationResult is the outcome of one negotiation cycle.
type NegotiationResult struct {
	SchemaVersion    int                 `json:"schema_version"`
	OpportunityID    string              `json:"opportunity_id"`
	Success          bool                `json:"success"`
	FailureReason    string              `json:"failure_reason,omitempty"`
	Coalition        []CoalitionMember   `json:"coalition"`
	TotalCommittedMW float64             `json:"total_committed_mw"`
	RoundsExecuted   int                 `json:"rounds_executed"`
	ClearingPrice    float64             `json:"clearing_price"`
	MeanSatisfaction float64             `json:"mean_satisfaction"`
	Optimization     *OptimizationResult `json:"optimization,omitempty"`
	Log              []string            `json:"log"`
}
