package lending

import (
	"time"

	"github.com/google/uuid"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/domain/shared"
)

// Aggregate type constants
const (
	AggregateTypeLoan  = "Loan"
	AggregateTypeAsset = "Asset"
)

// Event type constants
const (
	EventTypeLoanRequested     = "LoanRequested"
	EventTypeLoanApproved      = "LoanApproved"
	EventTypeLoanRejected      = "LoanRejected"
	EventTypeLoanReturned      = "LoanReturned"
	EventTypeAssetStockChanged = "AssetStockChanged"
)

// LoanEventTypes lists the lifecycle events a notification dispatcher consumes
var LoanEventTypes = []string{
	EventTypeLoanRequested,
	EventTypeLoanApproved,
	EventTypeLoanRejected,
	EventTypeLoanReturned,
}

// LoanSnapshot is the loan state carried by lifecycle events
type LoanSnapshot struct {
	LoanID     uuid.UUID  `json:"loan_id"`
	AssetID    uuid.UUID  `json:"asset_id"`
	AssetCode  string     `json:"asset_code"`
	AssetName  string     `json:"asset_name"`
	UserID     uuid.UUID  `json:"user_id"`
	Quantity   int        `json:"quantity"`
	Status     LoanStatus `json:"status"`
	BorrowDate time.Time  `json:"borrow_date"`
	DueAt      *time.Time `json:"due_at,omitempty"`
	Note       string     `json:"note,omitempty"`
}

func snapshot(loan *Loan, asset *Asset) LoanSnapshot {
	s := LoanSnapshot{
		LoanID:     loan.ID,
		AssetID:    loan.AssetID,
		UserID:     loan.UserID,
		Quantity:   loan.Quantity,
		Status:     loan.Status,
		BorrowDate: loan.BorrowDate,
		DueAt:      loan.DueAt,
		Note:       loan.Note,
	}
	if asset != nil {
		s.AssetCode = asset.Code
		s.AssetName = asset.Name
	}
	return s
}

// LoanEvent is implemented by every loan lifecycle event
type LoanEvent interface {
	shared.DomainEvent
	Loan() LoanSnapshot
}

// LoanRequestedEvent is raised when a borrower submits a new request
type LoanRequestedEvent struct {
	shared.BaseDomainEvent
	Snapshot LoanSnapshot `json:"loan"`
}

// NewLoanRequestedEvent creates a new LoanRequestedEvent
func NewLoanRequestedEvent(loan *Loan, asset *Asset, at time.Time) *LoanRequestedEvent {
	return &LoanRequestedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLoanRequested, AggregateTypeLoan, loan.ID, at),
		Snapshot:        snapshot(loan, asset),
	}
}

// EventType returns the event type name
func (e *LoanRequestedEvent) EventType() string {
	return EventTypeLoanRequested
}

// Loan returns the loan state at the time of the event
func (e *LoanRequestedEvent) Loan() LoanSnapshot {
	return e.Snapshot
}

// LoanTransitionedEvent carries the fields common to administrator transitions
type LoanTransitionedEvent struct {
	shared.BaseDomainEvent
	Snapshot       LoanSnapshot `json:"loan"`
	PreviousStatus LoanStatus   `json:"previous_status"`
}

// Loan returns the loan state at the time of the event
func (e *LoanTransitionedEvent) Loan() LoanSnapshot {
	return e.Snapshot
}

// LoanApprovedEvent is raised when a loan enters APPROVED
type LoanApprovedEvent struct {
	LoanTransitionedEvent
	BorrowedAt time.Time `json:"borrowed_at"`
}

// EventType returns the event type name
func (e *LoanApprovedEvent) EventType() string {
	return EventTypeLoanApproved
}

// LoanRejectedEvent is raised when a pending loan is rejected
type LoanRejectedEvent struct {
	LoanTransitionedEvent
}

// EventType returns the event type name
func (e *LoanRejectedEvent) EventType() string {
	return EventTypeLoanRejected
}

// LoanReturnedEvent is raised when an approved loan is returned
type LoanReturnedEvent struct {
	LoanTransitionedEvent
	ReturnedAt time.Time `json:"returned_at"`
}

// EventType returns the event type name
func (e *LoanReturnedEvent) EventType() string {
	return EventTypeLoanReturned
}

// newTransitionEvent builds the event matching the loan's new status
func newTransitionEvent(loan *Loan, asset *Asset, previous LoanStatus, at time.Time) shared.DomainEvent {
	base := func(eventType string) LoanTransitionedEvent {
		return LoanTransitionedEvent{
			BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeLoan, loan.ID, at),
			Snapshot:        snapshot(loan, asset),
			PreviousStatus:  previous,
		}
	}
	switch loan.Status {
	case LoanStatusApproved:
		return &LoanApprovedEvent{LoanTransitionedEvent: base(EventTypeLoanApproved), BorrowedAt: *loan.BorrowedAt}
	case LoanStatusRejected:
		return &LoanRejectedEvent{LoanTransitionedEvent: base(EventTypeLoanRejected)}
	case LoanStatusReturned:
		return &LoanReturnedEvent{LoanTransitionedEvent: base(EventTypeLoanReturned), ReturnedAt: *loan.ReturnedAt}
	}
	return nil
}

// AssetStockChangedEvent is raised when an administrator changes total stock
type AssetStockChangedEvent struct {
	shared.BaseDomainEvent
	AssetID          uuid.UUID `json:"asset_id"`
	AssetCode        string    `json:"asset_code"`
	PreviousQuantity int       `json:"previous_quantity"`
	NewQuantity      int       `json:"new_quantity"`
	Committed        int       `json:"committed"`
}

// NewAssetStockChangedEvent creates a new AssetStockChangedEvent
func NewAssetStockChangedEvent(asset *Asset, previous, committed int, at time.Time) *AssetStockChangedEvent {
	return &AssetStockChangedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeAssetStockChanged, AggregateTypeAsset, asset.ID, at),
		AssetID:          asset.ID,
		AssetCode:        asset.Code,
		PreviousQuantity: previous,
		NewQuantity:      asset.Quantity,
		Committed:        committed,
	}
}

// EventType returns the event type name
func (e *AssetStockChangedEvent) EventType() string {
	return EventTypeAssetStockChanged
}
