package lending

import "github.com/google/uuid"

// Availability is the derived stock picture of one asset.
// It is computed on every read and never stored.
type Availability struct {
	AssetID   uuid.UUID `json:"asset_id"`
	Total     int       `json:"total"`
	Borrowed  int       `json:"borrowed"`
	Available int       `json:"available"`
}

// CalculateAvailability derives borrowed and available quantities for an
// asset from its loans. Borrowed sums active (PENDING or APPROVED) loans of
// that asset; Available is Total minus Borrowed, clamped at zero.
// Loans that belong to other assets are ignored.
func CalculateAvailability(asset *Asset, loans []Loan) Availability {
	borrowed := CommittedQuantity(asset.ID, loans)
	return NewAvailability(asset.ID, asset.Quantity, borrowed)
}

// NewAvailability builds an Availability from already aggregated figures
func NewAvailability(assetID uuid.UUID, total, borrowed int) Availability {
	available := total - borrowed
	if available < 0 {
		available = 0
	}
	return Availability{
		AssetID:   assetID,
		Total:     total,
		Borrowed:  borrowed,
		Available: available,
	}
}

// CommittedQuantity sums the quantity of active loans against assetID
func CommittedQuantity(assetID uuid.UUID, loans []Loan) int {
	sum := 0
	for i := range loans {
		if loans[i].AssetID == assetID && loans[i].IsActive() {
			sum += loans[i].Quantity
		}
	}
	return sum
}

// approvedQuantity sums APPROVED loans against assetID, skipping exclude
func approvedQuantity(assetID uuid.UUID, loans []Loan, exclude uuid.UUID) int {
	sum := 0
	for i := range loans {
		l := &loans[i]
		if l.AssetID == assetID && l.ID != exclude && l.Status == LoanStatusApproved {
			sum += l.Quantity
		}
	}
	return sum
}
