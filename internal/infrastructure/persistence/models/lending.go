package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/domain/lending"
)

// AssetModel is the persistence model for the Asset aggregate.
type AssetModel struct {
	AggregateModel
	Code           string              `gorm:"type:varchar(100);not null;uniqueIndex"`
	Name           string              `gorm:"type:varchar(200);not null"`
	Description    string              `gorm:"type:text"`
	Category       string              `gorm:"type:varchar(100);index"`
	Location       string              `gorm:"type:varchar(200);index"`
	Status         lending.AssetStatus `gorm:"type:varchar(20);not null;default:'AVAILABLE';index"`
	Quantity       int                 `gorm:"not null;default:0"`
	Price          *decimal.Decimal    `gorm:"type:numeric(18,2)"`
	AccountingDate *time.Time          `gorm:"type:date"`
	CostCenter     string              `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (AssetModel) TableName() string {
	return "assets"
}

// ToDomain converts the persistence model to a domain Asset.
func (m *AssetModel) ToDomain() *lending.Asset {
	return &lending.Asset{
		BaseAggregateRoot: m.toAggregate(),
		Code:              m.Code,
		Name:              m.Name,
		Description:       m.Description,
		Category:          m.Category,
		Location:          m.Location,
		Status:            m.Status,
		Quantity:          m.Quantity,
		Price:             m.Price,
		AccountingDate:    m.AccountingDate,
		CostCenter:        m.CostCenter,
	}
}

// FromDomain populates the persistence model from a domain Asset.
func (m *AssetModel) FromDomain(a *lending.Asset) {
	m.fromAggregate(a.BaseAggregateRoot)
	m.Code = a.Code
	m.Name = a.Name
	m.Description = a.Description
	m.Category = a.Category
	m.Location = a.Location
	m.Status = a.Status
	m.Quantity = a.Quantity
	m.Price = a.Price
	m.AccountingDate = a.AccountingDate
	m.CostCenter = a.CostCenter
}

// AssetModelFromDomain creates a new persistence model from a domain Asset.
func AssetModelFromDomain(a *lending.Asset) *AssetModel {
	m := &AssetModel{}
	m.FromDomain(a)
	return m
}

// LoanModel is the persistence model for the Loan aggregate.
// (asset_id, status) is indexed for the committed-quantity sums.
type LoanModel struct {
	AggregateModel
	AssetID    uuid.UUID          `gorm:"type:uuid;not null;index:idx_loans_asset_status,priority:1"`
	Asset      *AssetModel        `gorm:"foreignKey:AssetID;constraint:OnDelete:CASCADE"`
	UserID     uuid.UUID          `gorm:"type:uuid;not null;index"`
	Quantity   int                `gorm:"not null"`
	BorrowDate time.Time          `gorm:"type:date;not null"`
	DueAt      *time.Time         `gorm:"type:date"`
	Status     lending.LoanStatus `gorm:"type:varchar(20);not null;default:'PENDING';index:idx_loans_asset_status,priority:2"`
	Note       string             `gorm:"type:text"`
	CostCenter string             `gorm:"type:varchar(100)"`
	BorrowedAt *time.Time
	ReturnedAt *time.Time
}

// TableName returns the table name for GORM
func (LoanModel) TableName() string {
	return "loans"
}

// ToDomain converts the persistence model to a domain Loan.
func (m *LoanModel) ToDomain() *lending.Loan {
	return &lending.Loan{
		BaseAggregateRoot: m.toAggregate(),
		AssetID:           m.AssetID,
		UserID:            m.UserID,
		Quantity:          m.Quantity,
		BorrowDate:        m.BorrowDate,
		DueAt:             m.DueAt,
		Status:            m.Status,
		Note:              m.Note,
		CostCenter:        m.CostCenter,
		BorrowedAt:        m.BorrowedAt,
		ReturnedAt:        m.ReturnedAt,
	}
}

// FromDomain populates the persistence model from a domain Loan.
func (m *LoanModel) FromDomain(l *lending.Loan) {
	m.fromAggregate(l.BaseAggregateRoot)
	m.AssetID = l.AssetID
	m.UserID = l.UserID
	m.Quantity = l.Quantity
	m.BorrowDate = l.BorrowDate
	m.DueAt = l.DueAt
	m.Status = l.Status
	m.Note = l.Note
	m.CostCenter = l.CostCenter
	m.BorrowedAt = l.BorrowedAt
	m.ReturnedAt = l.ReturnedAt
}

// LoanModelFromDomain creates a new persistence model from a domain Loan.
func LoanModelFromDomain(l *lending.Loan) *LoanModel {
	m := &LoanModel{}
	m.FromDomain(l)
	return m
}

// AllModels lists every persisted model in creation order
func AllModels() []any {
	return []any{&UserModel{}, &AssetModel{}, &LoanModel{}}
}
