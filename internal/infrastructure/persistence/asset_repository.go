package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/domain/lending"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/domain/shared"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormAssetRepository implements lending.AssetRepository using GORM
type GormAssetRepository struct {
	db *gorm.DB
}

// NewGormAssetRepository creates a new GormAssetRepository
func NewGormAssetRepository(db *gorm.DB) *GormAssetRepository {
	return &GormAssetRepository{db: db}
}

// FindByID finds an asset by ID
func (r *GormAssetRepository) FindByID(ctx context.Context, id uuid.UUID) (*lending.Asset, error) {
	var model models.AssetModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds an asset by ID with a row-level lock (SELECT ... FOR UPDATE).
// Must be called inside a transaction for the lock to be held.
func (r *GormAssetRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*lending.Asset, error) {
	var model models.AssetModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByCode finds an asset by its exact code
func (r *GormAssetRepository) FindByCode(ctx context.Context, code string) (*lending.Asset, error) {
	var model models.AssetModel
	if err := r.db.WithContext(ctx).First(&model, "code = ?", code).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByIDs finds assets by IDs
func (r *GormAssetRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]lending.Asset, error) {
	if len(ids) == 0 {
		return []lending.Asset{}, nil
	}
	var assetModels []models.AssetModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&assetModels).Error; err != nil {
		return nil, err
	}
	return assetsToDomain(assetModels), nil
}

// FindAll finds assets matching the filter
func (r *GormAssetRepository) FindAll(ctx context.Context, filter lending.AssetFilter) ([]lending.Asset, error) {
	var assetModels []models.AssetModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.AssetModel{}), filter)

	query = assetSort.apply(query, filter.OrderBy, filter.OrderDir)
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	if err := query.Find(&assetModels).Error; err != nil {
		return nil, err
	}
	return assetsToDomain(assetModels), nil
}

// Count counts assets matching the filter
func (r *GormAssetRepository) Count(ctx context.Context, filter lending.AssetFilter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&models.AssetModel{}), filter).Count(&count).Error
	return count, err
}

// ExistsByCode checks whether an asset other than excludeID uses code
func (r *GormAssetRepository) ExistsByCode(ctx context.Context, code string, excludeID *uuid.UUID) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.AssetModel{}).Where("code = ?", code)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates a new asset or updates an existing one.
// An update only applies when the stored version precedes the asset's,
// otherwise shared.ErrConcurrencyConflict is returned.
func (r *GormAssetRepository) Save(ctx context.Context, asset *lending.Asset) error {
	model := models.AssetModelFromDomain(asset)
	db := r.db.WithContext(ctx)

	if asset.Version <= 1 {
		return translateError(db.Create(model).Error)
	}

	result := db.Model(&models.AssetModel{}).
		Where("id = ? AND version < ?", model.ID, model.Version).
		Updates(map[string]interface{}{
			"code":            model.Code,
			"name":            model.Name,
			"description":     model.Description,
			"category":        model.Category,
			"location":        model.Location,
			"status":          model.Status,
			"quantity":        model.Quantity,
			"price":           model.Price,
			"accounting_date": model.AccountingDate,
			"cost_center":     model.CostCenter,
			"version":         model.Version,
			"updated_at":      model.UpdatedAt,
		})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}
	return createIfMissing(db, &models.AssetModel{}, model)
}

// Delete deletes an asset together with its remaining (terminal) loan history
func (r *GormAssetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("asset_id = ?", id).Delete(&models.LoanModel{}).Error; err != nil {
		return translateError(err)
	}
	result := db.Delete(&models.AssetModel{}, "id = ?", id)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormAssetRepository) applyFilter(query *gorm.DB, filter lending.AssetFilter) *gorm.DB {
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + escapeLike(strings.ToLower(search)) + "%"
		query = query.Where(`(LOWER(code) LIKE ? ESCAPE '\' OR LOWER(name) LIKE ? ESCAPE '\')`, pattern, pattern)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Location != "" {
		query = query.Where("location = ?", filter.Location)
	}
	return query
}

func assetsToDomain(assetModels []models.AssetModel) []lending.Asset {
	assets := make([]lending.Asset, len(assetModels))
	for i := range assetModels {
		assets[i] = *assetModels[i].ToDomain()
	}
	return assets
}

// createIfMissing inserts model when no row with its ID exists yet. An existing
// row means a concurrent writer already moved the version forward.
func createIfMissing(db *gorm.DB, table any, model interface{ GetID() uuid.UUID }) error {
	var count int64
	if err := db.Model(table).Where("id = ?", model.GetID()).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return shared.ErrConcurrencyConflict
	}
	return translateError(db.Create(model).Error)
}

// Ensure GormAssetRepository implements lending.AssetRepository
var _ lending.AssetRepository = (*GormAssetRepository)(nil)
