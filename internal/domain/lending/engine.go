package lending

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/domain/shared"
)

// QuantityPolicy selects what a new request's quantity is checked against
type QuantityPolicy string

const (
	// PolicyAvailable rejects requests larger than the currently free stock
	// (total minus PENDING and APPROVED reservations).
	PolicyAvailable QuantityPolicy = "available"
	// PolicyTotal only checks the request against the total owned quantity
	// and leaves over-booking of PENDING requests to approval time.
	PolicyTotal QuantityPolicy = "total"
)

// IsValid reports whether p is a known policy
func (p QuantityPolicy) IsValid() bool {
	return p == PolicyAvailable || p == PolicyTotal
}

// ParseQuantityPolicy parses a policy name; empty selects PolicyAvailable
func ParseQuantityPolicy(s string) (QuantityPolicy, error) {
	p := QuantityPolicy(strings.ToLower(strings.TrimSpace(s)))
	if p == "" {
		return PolicyAvailable, nil
	}
	if !p.IsValid() {
		return "", fmt.Errorf("unknown quantity policy %q (want %q or %q)", s, PolicyAvailable, PolicyTotal)
	}
	return p, nil
}

// Clock returns the current time
type Clock func() time.Time

// Engine validates and executes loan lifecycle operations. It is pure: it
// reads the aggregates handed to it, mutates them, and records domain events
// on them. Persistence and notification happen in the caller.
type Engine struct {
	policy QuantityPolicy
	now    Clock
}

// EngineOption configures an Engine
type EngineOption func(*Engine)

// WithPolicy sets the create-time quantity policy
func WithPolicy(p QuantityPolicy) EngineOption {
	return func(e *Engine) {
		e.policy = p
	}
}

// WithClock sets the engine clock
func WithClock(c Clock) EngineOption {
	return func(e *Engine) {
		e.now = c
	}
}

// NewEngine creates an Engine using PolicyAvailable and time.Now by default
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		policy: PolicyAvailable,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Policy returns the configured quantity policy
func (e *Engine) Policy() QuantityPolicy {
	return e.policy
}

// LoanRequest is a borrower's request for an asset
type LoanRequest struct {
	AssetID    uuid.UUID
	UserID     uuid.UUID
	Quantity   int
	BorrowDate time.Time
	// DueAt is the raw due date as supplied; nil means not supplied.
	DueAt      *string
	CostCenter string
	Note       string
}

// RequestLoan validates a borrow request against the asset and its active
// loans and returns a new PENDING loan. Checks run in a fixed order and the
// first failure is returned:
//
//  1. the asset exists
//  2. the asset is AVAILABLE
//  3. 0 < quantity <= asset total (then, under PolicyAvailable, <= free stock)
//  4. the borrow date is not before today
//  5. a supplied due date is non-blank and parseable
func (e *Engine) RequestLoan(asset *Asset, activeLoans []Loan, req LoanRequest) (*Loan, error) {
	if asset == nil {
		return nil, ErrAssetNotFound
	}
	if !asset.IsLendable() {
		return nil, shared.NewDomainError(CodeAssetNotLendable, asset.NotLendableReason())
	}
	if req.Quantity <= 0 || req.Quantity > asset.Quantity {
		return nil, shared.NewDomainError(CodeInvalidQuantity,
			fmt.Sprintf("Quantity must be between 1 and %d (total owned for %s)", asset.Quantity, asset.Code))
	}
	if e.policy == PolicyAvailable {
		availability := CalculateAvailability(asset, activeLoans)
		if req.Quantity > availability.Available {
			return nil, errInsufficientStock(availability.Available)
		}
	}

	now := e.now()
	if req.BorrowDate.IsZero() || dateOf(req.BorrowDate).Before(dateOf(now)) {
		return nil, shared.NewDomainError(CodeInvalidDate, "Borrow date cannot be in the past")
	}

	var dueAt *time.Time
	if req.DueAt != nil {
		raw := strings.TrimSpace(*req.DueAt)
		if raw == "" {
			return nil, shared.NewDomainError(CodeInvalidDueDate, "Due date cannot be blank")
		}
		parsed, err := ParseDate(raw)
		if err != nil {
			return nil, shared.NewDomainError(CodeInvalidDueDate,
				fmt.Sprintf("Due date %q is not a valid date", raw))
		}
		if dateOf(parsed).Before(dateOf(req.BorrowDate)) {
			return nil, shared.NewDomainError(CodeInvalidDueDate, "Due date cannot be before the borrow date")
		}
		dueAt = &parsed
	}

	loan := &Loan{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(now),
		AssetID:           asset.ID,
		UserID:            req.UserID,
		Quantity:          req.Quantity,
		BorrowDate:        req.BorrowDate,
		DueAt:             dueAt,
		Status:            LoanStatusPending,
		Note:              strings.TrimSpace(req.Note),
		CostCenter:        strings.TrimSpace(req.CostCenter),
	}
	loan.AddDomainEvent(NewLoanRequestedEvent(loan, asset, now))
	return loan, nil
}

// Transition moves loan to target. It returns false without touching the
// loan when target equals the current status. assetLoans are the active
// loans of the loan's asset as re-read inside the caller's transaction; the
// loan itself may be among them.
func (e *Engine) Transition(loan *Loan, asset *Asset, assetLoans []Loan, target LoanStatus) (bool, error) {
	if !target.IsValid() {
		return false, shared.NewDomainError(CodeInvalidStatus,
			fmt.Sprintf("Invalid loan status %q: must be one of PENDING, APPROVED, REJECTED, RETURNED", target))
	}
	if loan == nil {
		return false, ErrLoanNotFound
	}
	if loan.Status == target {
		return false, nil
	}
	if !loan.CanTransitionTo(target) {
		return false, shared.NewDomainError(CodeInvalidTransition,
			fmt.Sprintf("Cannot change loan status from %s to %s", loan.Status, target))
	}
	if target == LoanStatusApproved {
		if asset == nil {
			return false, ErrAssetNotFound
		}
		approved := approvedQuantity(asset.ID, assetLoans, loan.ID)
		if approved+loan.Quantity > asset.Quantity {
			return false, errInsufficientStock(max(0, asset.Quantity-approved))
		}
	}

	now := e.now()
	previous := loan.Status
	loan.setStatus(target, now)
	if evt := newTransitionEvent(loan, asset, previous, now); evt != nil {
		loan.AddDomainEvent(evt)
	}
	return true, nil
}

// ParseDate accepts YYYY-MM-DD or RFC3339
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// dateOf drops the clock part, keeping the calendar date as written
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
