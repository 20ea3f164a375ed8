package persistence

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/domain/lending"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/domain/shared"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/infrastructure/config"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/infrastructure/persistence/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupTestDB opens a private in-memory SQLite database with the schema applied
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	database, err := NewDatabase(&config.DatabaseConfig{Driver: "sqlite", SQLitePath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	require.NoError(t, database.DB.AutoMigrate(models.AllModels()...))
	return database.DB
}

// newMockPostgres opens a GORM postgres dialect on top of sqlmock
func newMockPostgres(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func newTestAsset(t *testing.T, code string, quantity int) *lending.Asset {
	t.Helper()
	asset, err := lending.NewAsset(lending.AssetInput{
		Code:     code,
		Name:     "Asset " + code,
		Category: "tools",
		Location: "Building A",
		Quantity: quantity,
	})
	require.NoError(t, err)
	return asset
}

func newTestLoan(assetID, userID uuid.UUID, quantity int, status lending.LoanStatus) *lending.Loan {
	return &lending.Loan{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(time.Now()),
		AssetID:           assetID,
		UserID:            userID,
		Quantity:          quantity,
		BorrowDate:        time.Date(2026, 5, 12, 0, 0, 0, 0, time.UTC),
		Status:            status,
	}
}
