package lending

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/domain/lending"
)

// AssetSummary is the asset part embedded in loan responses
type AssetSummary struct {
	ID       uuid.UUID `json:"id"`
	Code     string    `json:"code"`
	Name     string    `json:"name"`
	Category string    `json:"category,omitempty"`
	Location string    `json:"location,omitempty"`
}

// BorrowerSummary is the borrower part embedded in loan responses
type BorrowerSummary struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email,omitempty"`
}

// LoanResponse represents a loan in API responses
type LoanResponse struct {
	ID         uuid.UUID          `json:"id"`
	AssetID    uuid.UUID          `json:"asset_id"`
	UserID     uuid.UUID          `json:"user_id"`
	Quantity   int                `json:"quantity"`
	BorrowDate string             `json:"borrow_date"`
	DueAt      *time.Time         `json:"due_at,omitempty"`
	Status     lending.LoanStatus `json:"status"`
	Note       string             `json:"note,omitempty"`
	CostCenter string             `json:"cost_center,omitempty"`
	BorrowedAt *time.Time         `json:"borrowed_at,omitempty"`
	ReturnedAt *time.Time         `json:"returned_at,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
	Version    int                `json:"version"`
	Asset      *AssetSummary      `json:"asset,omitempty"`
	Borrower   *BorrowerSummary   `json:"borrower,omitempty"`
}

// ToLoanResponse converts a domain Loan; asset and borrower may be nil
func ToLoanResponse(loan *lending.Loan, asset *lending.Asset, borrower *BorrowerSummary) LoanResponse {
	resp := LoanResponse{
		ID:         loan.ID,
		AssetID:    loan.AssetID,
		UserID:     loan.UserID,
		Quantity:   loan.Quantity,
		BorrowDate: loan.BorrowDate.Format(time.DateOnly),
		DueAt:      loan.DueAt,
		Status:     loan.Status,
		Note:       loan.Note,
		CostCenter: loan.CostCenter,
		BorrowedAt: loan.BorrowedAt,
		ReturnedAt: loan.ReturnedAt,
		CreatedAt:  loan.CreatedAt,
		UpdatedAt:  loan.UpdatedAt,
		Version:    loan.Version,
		Borrower:   borrower,
	}
	if asset != nil {
		resp.Asset = &AssetSummary{
			ID:       asset.ID,
			Code:     asset.Code,
			Name:     asset.Name,
			Category: asset.Category,
			Location: asset.Location,
		}
	}
	return resp
}

// CreateLoanRequest represents a borrow request submitted by a user
type CreateLoanRequest struct {
	AssetID    uuid.UUID `json:"asset_id" binding:"required"`
	Quantity   int       `json:"quantity"`
	BorrowDate string    `json:"borrow_date" binding:"required"`
	DueAt      *string   `json:"due_at"`
	CostCenter string    `json:"cost_center" binding:"max=100"`
	Note       string    `json:"note" binding:"max=1000"`
}

// TransitionLoanRequest represents an administrator status change
type TransitionLoanRequest struct {
	Status string `json:"status" binding:"required"`
}

// LoanListFilter represents filter options for loan lists
type LoanListFilter struct {
	Status   string `form:"status" binding:"omitempty,loan_status"`
	AssetID  string `form:"asset_id" binding:"omitempty,uuid"`
	UserID   string `form:"user_id" binding:"omitempty,uuid"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by" binding:"omitempty,oneof=created_at borrow_date status quantity"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// AssetResponse represents an asset with its live availability
type AssetResponse struct {
	ID             uuid.UUID           `json:"id"`
	Code           string              `json:"code"`
	Name           string              `json:"name"`
	Description    string              `json:"description,omitempty"`
	Category       string              `json:"category,omitempty"`
	Location       string              `json:"location,omitempty"`
	Status         lending.AssetStatus `json:"status"`
	Quantity       int                 `json:"quantity"`
	Borrowed       int                 `json:"borrowed"`
	Available      int                 `json:"available"`
	Price          *decimal.Decimal    `json:"price,omitempty"`
	AccountingDate *string             `json:"accounting_date,omitempty"`
	CostCenter     string              `json:"cost_center,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
	Version        int                 `json:"version"`
}

// ToAssetResponse converts a domain Asset together with its committed quantity
func ToAssetResponse(asset *lending.Asset, committed int) AssetResponse {
	availability := lending.NewAvailability(asset.ID, asset.Quantity, committed)
	resp := AssetResponse{
		ID:          asset.ID,
		Code:        asset.Code,
		Name:        asset.Name,
		Description: asset.Description,
		Category:    asset.Category,
		Location:    asset.Location,
		Status:      asset.Status,
		Quantity:    asset.Quantity,
		Borrowed:    availability.Borrowed,
		Available:   availability.Available,
		Price:       asset.Price,
		CostCenter:  asset.CostCenter,
		CreatedAt:   asset.CreatedAt,
		UpdatedAt:   asset.UpdatedAt,
		Version:     asset.Version,
	}
	if asset.AccountingDate != nil {
		d := asset.AccountingDate.Format(time.DateOnly)
		resp.AccountingDate = &d
	}
	return resp
}

// CreateAssetRequest represents a request to catalogue a new asset
type CreateAssetRequest struct {
	Code           string           `json:"code" binding:"required,max=100"`
	Name           string           `json:"name" binding:"required,max=200"`
	Description    string           `json:"description" binding:"max=2000"`
	Category       string           `json:"category" binding:"max=100"`
	Location       string           `json:"location" binding:"max=200"`
	Status         string           `json:"status" binding:"omitempty,asset_status"`
	Quantity       int              `json:"quantity"`
	Price          *decimal.Decimal `json:"price"`
	AccountingDate *string          `json:"accounting_date"`
	CostCenter     string           `json:"cost_center" binding:"max=100"`
}

// UpdateAssetRequest is a partial update; omitted fields are unchanged
type UpdateAssetRequest struct {
	Code           *string          `json:"code" binding:"omitempty,max=100"`
	Name           *string          `json:"name" binding:"omitempty,max=200"`
	Description    *string          `json:"description" binding:"omitempty,max=2000"`
	Category       *string          `json:"category" binding:"omitempty,max=100"`
	Location       *string          `json:"location" binding:"omitempty,max=200"`
	Status         *string          `json:"status" binding:"omitempty,asset_status"`
	Quantity       *int             `json:"quantity"`
	Price          *decimal.Decimal `json:"price"`
	AccountingDate *string          `json:"accounting_date"`
	CostCenter     *string          `json:"cost_center" binding:"omitempty,max=100"`
}

// AssetListFilter represents filter options for the asset catalog
type AssetListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,asset_status"`
	Category string `form:"category"`
	Location string `form:"location"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by" binding:"omitempty,oneof=code name category created_at quantity"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// SetStockRequest replaces an asset's total quantity
type SetStockRequest struct {
	AssetID  uuid.UUID `json:"asset_id" binding:"required"`
	Quantity *int      `json:"quantity" binding:"required"`
}

// AdjustStockRequest applies a signed delta to an asset's total quantity
type AdjustStockRequest struct {
	AssetID uuid.UUID `json:"asset_id" binding:"required"`
	Delta   *int      `json:"delta" binding:"required"`
}

// StockResponse reports an asset's stock after a stock operation
type StockResponse struct {
	AssetID   uuid.UUID `json:"asset_id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Quantity  int       `json:"quantity"`
	Borrowed  int       `json:"borrowed"`
	Available int       `json:"available"`
}
