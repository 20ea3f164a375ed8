package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/domain/lending"
)

// Sink delivers loan lifecycle notices to borrowers and administrators.
// Implementations may be slow or fail; the dispatcher never lets a sink
// error reach the code that changed the loan.
type Sink interface {
	NotifyLoanRequested(ctx context.Context, notice LoanNotice) error
	NotifyLoanApproved(ctx context.Context, notice LoanNotice) error
	NotifyLoanRejected(ctx context.Context, notice LoanNotice) error
	NotifyLoanReturned(ctx context.Context, notice LoanNotice) error
}

// LoanNotice is the payload handed to a Sink
type LoanNotice struct {
	EventID    uuid.UUID          `json:"event_id"`
	EventType  string             `json:"event_type"`
	OccurredAt time.Time          `json:"occurred_at"`
	LoanID     uuid.UUID          `json:"loan_id"`
	UserID     uuid.UUID          `json:"user_id"`
	AssetID    uuid.UUID          `json:"asset_id"`
	AssetCode  string             `json:"asset_code"`
	AssetName  string             `json:"asset_name"`
	Quantity   int                `json:"quantity"`
	Status     lending.LoanStatus `json:"status"`
	BorrowDate string             `json:"borrow_date"`
	DueAt      *time.Time         `json:"due_at,omitempty"`
	Note       string             `json:"note,omitempty"`
}

// NewLoanNotice builds a notice from a loan lifecycle event
func NewLoanNotice(event lending.LoanEvent) LoanNotice {
	loan := event.Loan()
	return LoanNotice{
		EventID:    event.EventID(),
		EventType:  event.EventType(),
		OccurredAt: event.OccurredAt(),
		LoanID:     loan.LoanID,
		UserID:     loan.UserID,
		AssetID:    loan.AssetID,
		AssetCode:  loan.AssetCode,
		AssetName:  loan.AssetName,
		Quantity:   loan.Quantity,
		Status:     loan.Status,
		BorrowDate: loan.BorrowDate.Format(time.DateOnly),
		DueAt:      loan.DueAt,
		Note:       loan.Note,
	}
}
