package lending

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/domain/shared"
)

// LoanStatus is the lifecycle state of a loan
type LoanStatus string

const (
	LoanStatusPending  LoanStatus = "PENDING"
	LoanStatusApproved LoanStatus = "APPROVED"
	LoanStatusRejected LoanStatus = "REJECTED"
	LoanStatusReturned LoanStatus = "RETURNED"
)

// AllLoanStatuses lists every valid loan status
var AllLoanStatuses = []LoanStatus{LoanStatusPending, LoanStatusApproved, LoanStatusRejected, LoanStatusReturned}

// ActiveLoanStatuses are the statuses that reserve stock
var ActiveLoanStatuses = []LoanStatus{LoanStatusPending, LoanStatusApproved}

// IsValid reports whether s is a known loan status
func (s LoanStatus) IsValid() bool {
	switch s {
	case LoanStatusPending, LoanStatusApproved, LoanStatusRejected, LoanStatusReturned:
		return true
	}
	return false
}

// IsActive reports whether a loan in this status reserves stock
func (s LoanStatus) IsActive() bool {
	return s == LoanStatusPending || s == LoanStatusApproved
}

// IsTerminal reports whether no transition leaves this status
func (s LoanStatus) IsTerminal() bool {
	return len(loanTransitions[s]) == 0
}

// String returns the string representation
func (s LoanStatus) String() string {
	return string(s)
}

// ParseLoanStatus parses a loan status, rejecting unknown values
func ParseLoanStatus(s string) (LoanStatus, error) {
	status := LoanStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !status.IsValid() {
		return "", shared.NewDomainError(CodeInvalidStatus,
			fmt.Sprintf("Invalid loan status %q: must be one of PENDING, APPROVED, REJECTED, RETURNED", s))
	}
	return status, nil
}

// Loan is a single borrow request tying one asset to one borrower.
//
// BorrowedAt is set exactly when the loan has reached APPROVED and
// ReturnedAt exactly when it is RETURNED.
type Loan struct {
	shared.BaseAggregateRoot
	AssetID    uuid.UUID
	UserID     uuid.UUID
	Quantity   int
	BorrowDate time.Time
	DueAt      *time.Time
	Status     LoanStatus
	Note       string
	CostCenter string
	BorrowedAt *time.Time
	ReturnedAt *time.Time
}

// IsActive reports whether the loan currently reserves stock
func (l *Loan) IsActive() bool {
	return l.Status.IsActive()
}

// BelongsTo reports whether the loan was requested by the given user
func (l *Loan) BelongsTo(userID uuid.UUID) bool {
	return l.UserID == userID
}

// CanTransitionTo reports whether target is a legal successor of the
// current status. Re-entering the current status is always allowed.
func (l *Loan) CanTransitionTo(target LoanStatus) bool {
	if l.Status == target {
		return true
	}
	for _, next := range loanTransitions[l.Status] {
		if next == target {
			return true
		}
	}
	return false
}

// setStatus moves the loan to target and applies timestamp side effects.
// Callers have already checked the transition is legal and not a no-op.
func (l *Loan) setStatus(target LoanStatus, now time.Time) {
	previous := l.Status
	l.Status = target
	switch target {
	case LoanStatusApproved:
		if previous != LoanStatusApproved {
			t := now
			l.BorrowedAt = &t
		}
	case LoanStatusReturned:
		if previous != LoanStatusReturned {
			t := now
			l.ReturnedAt = &t
		}
	}
	l.UpdatedAt = now
	l.IncrementVersion()
}
