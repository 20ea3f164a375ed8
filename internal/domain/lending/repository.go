package lending

import (
	"context"

	"github.com/google/uuid"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/domain/shared"
)

// AssetRepository defines the interface for asset persistence
type AssetRepository interface {
	// FindByID finds an asset by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Asset, error)

	// FindByIDForUpdate finds an asset by ID and locks its row until the
	// surrounding transaction ends
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Asset, error)

	// FindByCode finds an asset by its exact, case-sensitive code
	FindByCode(ctx context.Context, code string) (*Asset, error)

	// FindByIDs finds assets by IDs; missing IDs are skipped
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Asset, error)

	// FindAll finds assets matching the filter
	FindAll(ctx context.Context, filter AssetFilter) ([]Asset, error)

	// Count counts assets matching the filter
	Count(ctx context.Context, filter AssetFilter) (int64, error)

	// ExistsByCode checks whether another asset already uses code
	ExistsByCode(ctx context.Context, code string, excludeID *uuid.UUID) (bool, error)

	// Save creates or updates an asset
	Save(ctx context.Context, asset *Asset) error

	// Delete deletes an asset
	Delete(ctx context.Context, id uuid.UUID) error
}

// AssetFilter narrows asset queries
type AssetFilter struct {
	shared.Filter
	Status   *AssetStatus
	Category string
	Location string
}

// LoanRepository defines the interface for loan persistence
type LoanRepository interface {
	// FindByID finds a loan by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Loan, error)

	// FindByIDForUpdate finds a loan by ID and locks its row
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Loan, error)

	// FindActiveByAsset returns the PENDING and APPROVED loans of an asset
	FindActiveByAsset(ctx context.Context, assetID uuid.UUID) ([]Loan, error)

	// FindAll finds loans matching the filter
	FindAll(ctx context.Context, filter LoanFilter) ([]Loan, error)

	// Count counts loans matching the filter
	Count(ctx context.Context, filter LoanFilter) (int64, error)

	// CountActiveByAsset counts PENDING and APPROVED loans of an asset
	CountActiveByAsset(ctx context.Context, assetID uuid.UUID) (int64, error)

	// SumActiveQuantityByAssets returns committed quantity per asset ID.
	// Assets without active loans are absent from the map.
	SumActiveQuantityByAssets(ctx context.Context, assetIDs []uuid.UUID) (map[uuid.UUID]int, error)

	// Save creates or updates a loan
	Save(ctx context.Context, loan *Loan) error
}

// LoanFilter narrows loan queries
type LoanFilter struct {
	shared.Filter
	UserID  *uuid.UUID
	AssetID *uuid.UUID
	Status  *LoanStatus
}
