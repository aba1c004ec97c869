package negotiation

import (
	"errors"
	"fmt"
)

// Failure causes. ErrNoBids and ErrInsufficientCapacity end a cycle with an
// unsuccessful result; ErrContractViolation is returned to the caller.
var (
	ErrNoBids               = errors.New("no eligible bids")
	ErrInsufficientCapacity = errors.New("insufficient committed capacity")
	ErrContractViolation    = errors.New("contract violation")
)

// ViolationKind classifies contract violations by suppliers.
type ViolationKind string

const (
	UnknownOffer       ViolationKind = "unknown_offer"
	OfferMismatch      ViolationKind = "offer_mismatch"
	UnknownOpportunity ViolationKind = "unknown_opportunity"
	SupplierMismatch   ViolationKind = "supplier_mismatch"
	UnknownSupplier    ViolationKind = "unknown_supplier"
)

// ContractViolation reports a collaborator that broke the bid/response
// contract. It is never retried.
type ContractViolation struct {
	Kind       ViolationKind
	SupplierID string
	ID         string // offer or opportunity id involved
	Detail     string
}

func (e *ContractViolation) Error() string {
	return fmt.Sprintf("contract violation (%s) by supplier %q on %q: %s", e.Kind, e.SupplierID, e.ID, e.Detail)
}

func (e *ContractViolation) Unwrap() error { return ErrContractViolation }
