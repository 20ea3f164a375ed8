package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/domain/lending"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/domain/shared"
)

func TestGormAssetRepository_SaveAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormAssetRepository(db)
	ctx := context.Background()

	price := decimal.RequireFromString("1250.50")
	accounted := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	asset, err := lending.NewAsset(lending.AssetInput{
		Code:           "PRJ-001",
		Name:           "Projector",
		Category:       "av",
		Location:       "Room 101",
		Quantity:       3,
		Price:          &price,
		AccountingDate: &accounted,
		CostCenter:     "CC-10",
	})
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, asset))

	t.Run("by id", func(t *testing.T) {
		found, err := repo.FindByID(ctx, asset.ID)
		require.NoError(t, err)
		assert.Equal(t, "PRJ-001", found.Code)
		assert.Equal(t, "Projector", found.Name)
		assert.Equal(t, lending.AssetStatusAvailable, found.Status)
		assert.Equal(t, 3, found.Quantity)
		assert.Equal(t, 1, found.Version)
		require.NotNil(t, found.Price)
		assert.True(t, price.Equal(*found.Price))
		require.NotNil(t, found.AccountingDate)
		assert.True(t, accounted.Equal(found.AccountingDate.UTC()))
		assert.Equal(t, "CC-10", found.CostCenter)
		assert.Empty(t, found.GetDomainEvents())
	})

	t.Run("by code is exact", func(t *testing.T) {
		found, err := repo.FindByCode(ctx, "PRJ-001")
		require.NoError(t, err)
		assert.Equal(t, asset.ID, found.ID)

		_, err = repo.FindByCode(ctx, "prj-001")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("missing id", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("by ids skips missing", func(t *testing.T) {
		found, err := repo.FindByIDs(ctx, []uuid.UUID{asset.ID, uuid.New()})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, asset.ID, found[0].ID)

		empty, err := repo.FindByIDs(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("lock query works on sqlite", func(t *testing.T) {
		found, err := repo.FindByIDForUpdate(ctx, asset.ID)
		require.NoError(t, err)
		assert.Equal(t, asset.ID, found.ID)
	})
}

func TestGormAssetRepository_DuplicateCode(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormAssetRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, newTestAsset(t, "DUP-1", 1)))
	err := repo.Save(ctx, newTestAsset(t, "DUP-1", 2))
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)

	exists, err := repo.ExistsByCode(ctx, "DUP-1", nil)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestGormAssetRepository_ExistsByCodeExcludesSelf(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormAssetRepository(db)
	ctx := context.Background()

	asset := newTestAsset(t, "SELF-1", 1)
	require.NoError(t, repo.Save(ctx, asset))

	exists, err := repo.ExistsByCode(ctx, "SELF-1", &asset.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGormAssetRepository_UpdateAndVersioning(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormAssetRepository(db)
	ctx := context.Background()
	now := time.Now()

	asset := newTestAsset(t, "VER-1", 5)
	require.NoError(t, repo.Save(ctx, asset))

	first, err := repo.FindByID(ctx, asset.ID)
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, asset.ID)
	require.NoError(t, err)

	name := "Renamed"
	require.NoError(t, first.Apply(lending.AssetUpdate{Name: &name}, 0, now))
	require.NoError(t, repo.Save(ctx, first))

	t.Run("update persisted", func(t *testing.T) {
		found, err := repo.FindByID(ctx, asset.ID)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", found.Name)
		assert.Equal(t, 2, found.Version)
	})

	t.Run("stale copy is rejected", func(t *testing.T) {
		require.NoError(t, second.SetQuantity(9, 0, now))
		err := repo.Save(ctx, second)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)

		found, err := repo.FindByID(ctx, asset.ID)
		require.NoError(t, err)
		assert.Equal(t, 5, found.Quantity)
	})
}

func TestGormAssetRepository_FindAll(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormAssetRepository(db)
	ctx := context.Background()

	drill := newTestAsset(t, "TL-002", 4)
	drill.Name = "Cordless Drill"
	saw := newTestAsset(t, "TL-001", 2)
	saw.Name = "Circular Saw"
	saw.Status = lending.AssetStatusDamaged
	camera := newTestAsset(t, "AV-001", 1)
	camera.Name = "Camera 100%"
	camera.Category = "av"
	for _, a := range []*lending.Asset{drill, saw, camera} {
		require.NoError(t, repo.Save(ctx, a))
	}

	t.Run("ordered by code", func(t *testing.T) {
		assets, err := repo.FindAll(ctx, lending.AssetFilter{Filter: shared.Filter{OrderBy: "code", OrderDir: "asc"}})
		require.NoError(t, err)
		require.Len(t, assets, 3)
		assert.Equal(t, []string{"AV-001", "TL-001", "TL-002"}, []string{assets[0].Code, assets[1].Code, assets[2].Code})
	})

	t.Run("search is case-insensitive over code and name", func(t *testing.T) {
		assets, err := repo.FindAll(ctx, lending.AssetFilter{Filter: shared.Filter{Search: "DRILL"}})
		require.NoError(t, err)
		require.Len(t, assets, 1)
		assert.Equal(t, drill.ID, assets[0].ID)

		assets, err = repo.FindAll(ctx, lending.AssetFilter{Filter: shared.Filter{Search: "tl-"}})
		require.NoError(t, err)
		assert.Len(t, assets, 2)
	})

	t.Run("search treats wildcards literally", func(t *testing.T) {
		assets, err := repo.FindAll(ctx, lending.AssetFilter{Filter: shared.Filter{Search: "%"}})
		require.NoError(t, err)
		require.Len(t, assets, 1)
		assert.Equal(t, camera.ID, assets[0].ID)
	})

	t.Run("status and category filters", func(t *testing.T) {
		damaged := lending.AssetStatusDamaged
		assets, err := repo.FindAll(ctx, lending.AssetFilter{Status: &damaged})
		require.NoError(t, err)
		require.Len(t, assets, 1)
		assert.Equal(t, saw.ID, assets[0].ID)

		count, err := repo.Count(ctx, lending.AssetFilter{Category: "tools"})
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})

	t.Run("pagination", func(t *testing.T) {
		filter := lending.AssetFilter{Filter: shared.Filter{Page: 2, PageSize: 2, OrderBy: "code", OrderDir: "asc"}}
		assets, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		require.Len(t, assets, 1)
		assert.Equal(t, "TL-002", assets[0].Code)

		count, err := repo.Count(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})

	t.Run("unknown sort field falls back to code", func(t *testing.T) {
		assets, err := repo.FindAll(ctx, lending.AssetFilter{Filter: shared.Filter{OrderBy: "name; DROP TABLE assets", OrderDir: "asc"}})
		require.NoError(t, err)
		assert.Equal(t, "AV-001", assets[0].Code)
	})
}

func TestGormAssetRepository_Delete(t *testing.T) {
	db := setupTestDB(t)
	assets := NewGormAssetRepository(db)
	loans := NewGormLoanRepository(db)
	ctx := context.Background()

	asset := newTestAsset(t, "DEL-1", 2)
	require.NoError(t, assets.Save(ctx, asset))
	returned := newTestLoan(asset.ID, uuid.New(), 1, lending.LoanStatusReturned)
	require.NoError(t, loans.Save(ctx, returned))

	require.NoError(t, assets.Delete(ctx, asset.ID))

	_, err := assets.FindByID(ctx, asset.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	_, err = loans.FindByID(ctx, returned.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	assert.ErrorIs(t, assets.Delete(ctx, asset.ID), shared.ErrNotFound)
}

func TestGormAssetRepository_FindByIDForUpdate_LocksRow(t *testing.T) {
	db, mock, mockDB := newMockPostgres(t)
	defer mockDB.Close()

	repo := NewGormAssetRepository(db)
	id := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`SELECT \* FROM "assets" WHERE id = \$1 .*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "name", "status", "quantity", "version", "created_at", "updated_at"}).
			AddRow(id.String(), "LCK-1", "Locked", "AVAILABLE", 3, 4, now, now))

	asset, err := repo.FindByIDForUpdate(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "LCK-1", asset.Code)
	assert.Equal(t, 4, asset.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}
