package lending

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/domain/shared"
	"golang.org/x/text/unicode/norm"
)

// AssetStatus is the physical condition of a catalogued asset
type AssetStatus string

const (
	AssetStatusAvailable  AssetStatus = "AVAILABLE"
	AssetStatusDamaged    AssetStatus = "DAMAGED"
	AssetStatusOutOfStock AssetStatus = "OUT_OF_STOCK"
)

// AllAssetStatuses lists every valid asset status
var AllAssetStatuses = []AssetStatus{AssetStatusAvailable, AssetStatusDamaged, AssetStatusOutOfStock}

// IsValid reports whether s is a known asset status
func (s AssetStatus) IsValid() bool {
	switch s {
	case AssetStatusAvailable, AssetStatusDamaged, AssetStatusOutOfStock:
		return true
	}
	return false
}

// String returns the string representation
func (s AssetStatus) String() string {
	return string(s)
}

// ParseAssetStatus parses an asset status, rejecting unknown values
func ParseAssetStatus(s string) (AssetStatus, error) {
	status := AssetStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !status.IsValid() {
		return "", shared.NewDomainError(CodeInvalidStatus,
			fmt.Sprintf("Invalid asset status %q: must be one of AVAILABLE, DAMAGED, OUT_OF_STOCK", s))
	}
	return status, nil
}

// Asset is a catalogued, lendable physical item.
// Quantity is the total owned count; loans never decrement it.
type Asset struct {
	shared.BaseAggregateRoot
	Code           string
	Name           string
	Description    string
	Category       string
	Location       string
	Status         AssetStatus
	Quantity       int
	Price          *decimal.Decimal
	AccountingDate *time.Time
	CostCenter     string
}

// AssetInput carries the attributes of a new asset
type AssetInput struct {
	Code           string
	Name           string
	Description    string
	Category       string
	Location       string
	Status         AssetStatus
	Quantity       int
	Price          *decimal.Decimal
	AccountingDate *time.Time
	CostCenter     string
}

// NewAsset creates a validated asset. An empty status defaults to AVAILABLE.
func NewAsset(input AssetInput) (*Asset, error) {
	code := strings.TrimSpace(input.Code)
	if code == "" {
		return nil, shared.NewDomainError(CodeInvalidAsset, "Asset code cannot be empty")
	}
	if len(code) > 100 {
		return nil, shared.NewDomainError(CodeInvalidAsset, "Asset code cannot exceed 100 characters")
	}
	name := normalizeText(input.Name)
	if name == "" {
		return nil, shared.NewDomainError(CodeInvalidAsset, "Asset name cannot be empty")
	}
	status := input.Status
	if status == "" {
		status = AssetStatusAvailable
	}
	if !status.IsValid() {
		return nil, shared.NewDomainError(CodeInvalidStatus,
			fmt.Sprintf("Invalid asset status %q", status))
	}
	if input.Quantity < 0 {
		return nil, shared.NewDomainError(CodeInvalidQuantity, "Quantity cannot be negative")
	}
	if err := validatePrice(input.Price); err != nil {
		return nil, err
	}

	asset := &Asset{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(time.Now()),
		Code:              code,
		Name:              name,
		Description:       normalizeText(input.Description),
		Category:          normalizeText(input.Category),
		Location:          normalizeText(input.Location),
		Status:            status,
		Quantity:          input.Quantity,
		Price:             input.Price,
		AccountingDate:    input.AccountingDate,
		CostCenter:        strings.TrimSpace(input.CostCenter),
	}
	return asset, nil
}

// AssetUpdate is a partial update; nil fields are left untouched
type AssetUpdate struct {
	Code           *string
	Name           *string
	Description    *string
	Category       *string
	Location       *string
	Status         *AssetStatus
	Quantity       *int
	Price          *decimal.Decimal
	AccountingDate *time.Time
	CostCenter     *string
}

// CodeChanged reports whether the update would change the asset code
func (u AssetUpdate) CodeChanged(current string) bool {
	return u.Code != nil && strings.TrimSpace(*u.Code) != current
}

// Apply validates and applies a partial update. committed is the quantity
// reserved by active loans and bounds a quantity change from below.
// On error the asset is left unchanged.
func (a *Asset) Apply(update AssetUpdate, committed int, now time.Time) error {
	code := a.Code
	if update.Code != nil {
		code = strings.TrimSpace(*update.Code)
		if code == "" {
			return shared.NewDomainError(CodeInvalidAsset, "Asset code cannot be empty")
		}
	}
	name := a.Name
	if update.Name != nil {
		name = normalizeText(*update.Name)
		if name == "" {
			return shared.NewDomainError(CodeInvalidAsset, "Asset name cannot be empty")
		}
	}
	if update.Status != nil && !update.Status.IsValid() {
		return shared.NewDomainError(CodeInvalidStatus,
			fmt.Sprintf("Invalid asset status %q", *update.Status))
	}
	if err := validatePrice(update.Price); err != nil {
		return err
	}
	if update.Quantity != nil {
		if err := a.checkQuantity(*update.Quantity, committed); err != nil {
			return err
		}
	}

	a.Code = code
	a.Name = name
	if update.Status != nil {
		a.Status = *update.Status
	}
	if update.Price != nil {
		a.Price = update.Price
	}
	if update.Description != nil {
		a.Description = normalizeText(*update.Description)
	}
	if update.Category != nil {
		a.Category = normalizeText(*update.Category)
	}
	if update.Location != nil {
		a.Location = normalizeText(*update.Location)
	}
	if update.AccountingDate != nil {
		a.AccountingDate = update.AccountingDate
	}
	if update.CostCenter != nil {
		a.CostCenter = strings.TrimSpace(*update.CostCenter)
	}
	if update.Quantity != nil && *update.Quantity != a.Quantity {
		previous := a.Quantity
		a.Quantity = *update.Quantity
		a.AddDomainEvent(NewAssetStockChangedEvent(a, previous, committed, now))
	}

	a.UpdatedAt = now
	a.IncrementVersion()
	return nil
}

// IsLendable reports whether new loans may be requested against the asset
func (a *Asset) IsLendable() bool {
	return a.Status == AssetStatusAvailable
}

// NotLendableReason explains why the asset cannot be borrowed
func (a *Asset) NotLendableReason() string {
	switch a.Status {
	case AssetStatusDamaged:
		return fmt.Sprintf("Asset %s is not in lendable condition: it is marked DAMAGED", a.Code)
	case AssetStatusOutOfStock:
		return fmt.Sprintf("Asset %s is not in lendable condition: it is OUT_OF_STOCK", a.Code)
	default:
		return fmt.Sprintf("Asset %s is not in lendable condition (status %s)", a.Code, a.Status)
	}
}

// SetQuantity replaces the total owned quantity. The new value may not be
// negative nor smaller than the quantity committed to active loans.
// On error the asset is left unchanged.
func (a *Asset) SetQuantity(newQuantity, committed int, now time.Time) error {
	if err := a.checkQuantity(newQuantity, committed); err != nil {
		return err
	}
	if newQuantity == a.Quantity {
		return nil
	}

	previous := a.Quantity
	a.Quantity = newQuantity
	a.UpdatedAt = now
	a.IncrementVersion()
	a.AddDomainEvent(NewAssetStockChangedEvent(a, previous, committed, now))
	return nil
}

func (a *Asset) checkQuantity(newQuantity, committed int) error {
	if newQuantity < 0 {
		return shared.NewDomainError(CodeInvalidQuantity,
			fmt.Sprintf("Quantity cannot be negative (got %d)", newQuantity))
	}
	if newQuantity < committed {
		return shared.NewDomainError(CodeStockBelowCommitted,
			fmt.Sprintf("Cannot set quantity of %s to %d: %d units are committed to active loans",
				a.Code, newQuantity, committed))
	}
	return nil
}

// AdjustQuantity applies a signed delta to the total owned quantity with the
// same floor checks as SetQuantity.
func (a *Asset) AdjustQuantity(delta, committed int, now time.Time) error {
	return a.SetQuantity(a.Quantity+delta, committed, now)
}

func validatePrice(price *decimal.Decimal) error {
	if price != nil && price.IsNegative() {
		return shared.NewDomainError(CodeInvalidAsset, "Price cannot be negative")
	}
	return nil
}

// normalizeText trims and NFC-normalizes free text
func normalizeText(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
