package lending

import (
	"fmt"

	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/domain/shared"
)

// Error codes raised by the lending context. Codes shared with other
// contexts (NOT_FOUND, ALREADY_EXISTS, INSUFFICIENT_STOCK) come from shared.
const (
	CodeAssetNotLendable    = "ASSET_NOT_LENDABLE"
	CodeInvalidQuantity     = "INVALID_QUANTITY"
	CodeInvalidDate         = "INVALID_DATE"
	CodeInvalidDueDate      = "INVALID_DUE_DATE"
	CodeInvalidStatus       = "INVALID_STATUS"
	CodeInvalidTransition   = "INVALID_TRANSITION"
	CodeInvalidAsset        = "INVALID_ASSET"
	CodeStockBelowCommitted = "STOCK_BELOW_COMMITTED"
	CodeAssetInUse          = "ASSET_IN_USE"
)

// ErrAssetNotFound and ErrLoanNotFound carry the generic NOT_FOUND code so
// that errors.Is(err, shared.ErrNotFound) holds for both.
var (
	ErrAssetNotFound = shared.NewDomainError("NOT_FOUND", "Asset not found")
	ErrLoanNotFound  = shared.NewDomainError("NOT_FOUND", "Loan not found")
)

func errInsufficientStock(available int) *shared.DomainError {
	unit := "units"
	if available == 1 {
		unit = "unit"
	}
	return shared.NewDomainError(shared.ErrInsufficientStock.Code,
		fmt.Sprintf("Only %d %s available", available, unit))
}
