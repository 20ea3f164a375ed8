package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/domain/lending"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormLoanRepository implements lending.LoanRepository using GORM
type GormLoanRepository struct {
	db *gorm.DB
}

// NewGormLoanRepository creates a new GormLoanRepository
func NewGormLoanRepository(db *gorm.DB) *GormLoanRepository {
	return &GormLoanRepository{db: db}
}

// FindByID finds a loan by ID
func (r *GormLoanRepository) FindByID(ctx context.Context, id uuid.UUID) (*lending.Loan, error) {
	var model models.LoanModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds a loan by ID with a row-level lock.
// Must be called inside a transaction for the lock to be held.
func (r *GormLoanRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*lending.Loan, error) {
	var model models.LoanModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindActiveByAsset returns the PENDING and APPROVED loans of an asset, oldest first
func (r *GormLoanRepository) FindActiveByAsset(ctx context.Context, assetID uuid.UUID) ([]lending.Loan, error) {
	var loanModels []models.LoanModel
	if err := r.db.WithContext(ctx).
		Where("asset_id = ? AND status IN ?", assetID, lending.ActiveLoanStatuses).
		Order("created_at ASC").
		Find(&loanModels).Error; err != nil {
		return nil, err
	}
	return loansToDomain(loanModels), nil
}

// FindAll finds loans matching the filter
func (r *GormLoanRepository) FindAll(ctx context.Context, filter lending.LoanFilter) ([]lending.Loan, error) {
	var loanModels []models.LoanModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.LoanModel{}), filter)

	query = loanSort.apply(query, filter.OrderBy, filter.OrderDir)
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	if err := query.Find(&loanModels).Error; err != nil {
		return nil, err
	}
	return loansToDomain(loanModels), nil
}

// Count counts loans matching the filter
func (r *GormLoanRepository) Count(ctx context.Context, filter lending.LoanFilter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&models.LoanModel{}), filter).Count(&count).Error
	return count, err
}

// CountActiveByAsset counts PENDING and APPROVED loans of an asset
func (r *GormLoanRepository) CountActiveByAsset(ctx context.Context, assetID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.LoanModel{}).
		Where("asset_id = ? AND status IN ?", assetID, lending.ActiveLoanStatuses).
		Count(&count).Error
	return count, err
}

// SumActiveQuantityByAssets returns the quantity committed to active loans per asset
func (r *GormLoanRepository) SumActiveQuantityByAssets(ctx context.Context, assetIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	committed := make(map[uuid.UUID]int, len(assetIDs))
	if len(assetIDs) == 0 {
		return committed, nil
	}

	var rows []struct {
		AssetID uuid.UUID
		Total   int
	}
	if err := r.db.WithContext(ctx).Model(&models.LoanModel{}).
		Select("asset_id, COALESCE(SUM(quantity), 0) AS total").
		Where("asset_id IN ? AND status IN ?", assetIDs, lending.ActiveLoanStatuses).
		Group("asset_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		committed[row.AssetID] = row.Total
	}
	return committed, nil
}

// Save creates a new loan or updates an existing one
func (r *GormLoanRepository) Save(ctx context.Context, loan *lending.Loan) error {
	model := models.LoanModelFromDomain(loan)
	db := r.db.WithContext(ctx)

	if loan.Version <= 1 {
		return translateError(db.Create(model).Error)
	}

	result := db.Model(&models.LoanModel{}).
		Where("id = ? AND version < ?", model.ID, model.Version).
		Updates(map[string]interface{}{
			"status":      model.Status,
			"due_at":      model.DueAt,
			"note":        model.Note,
			"cost_center": model.CostCenter,
			"borrowed_at": model.BorrowedAt,
			"returned_at": model.ReturnedAt,
			"version":     model.Version,
			"updated_at":  model.UpdatedAt,
		})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}
	return createIfMissing(db, &models.LoanModel{}, model)
}

func (r *GormLoanRepository) applyFilter(query *gorm.DB, filter lending.LoanFilter) *gorm.DB {
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.AssetID != nil {
		query = query.Where("asset_id = ?", *filter.AssetID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	return query
}

func loansToDomain(loanModels []models.LoanModel) []lending.Loan {
	loans := make([]lending.Loan, len(loanModels))
	for i := range loanModels {
		loans[i] = *loanModels[i].ToDomain()
	}
	return loans
}

// Ensure GormLoanRepository implements lending.LoanRepository
var _ lending.LoanRepository = (*GormLoanRepository)(nil)
