package lending

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/domain/shared"
)

func createTestAsset(t *testing.T, quantity int) *Asset {
	t.Helper()
	asset, err := NewAsset(AssetInput{
		Code:     "NB-" + uuid.NewString()[:8],
		Name:     "Notebook computer",
		Category: "IT",
		Quantity: quantity,
	})
	require.NoError(t, err)
	return asset
}

func loanWith(assetID uuid.UUID, quantity int, status LoanStatus) Loan {
	return Loan{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(time.Now()),
		AssetID:           assetID,
		UserID:            uuid.New(),
		Quantity:          quantity,
		BorrowDate:        time.Now(),
		Status:            status,
	}
}

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func strPtr(s string) *string {
	return &s
}
