package persistence

import (
	"context"

	applending "github.com/thamonwanpho67-art/PMJinventory-sub001/internal/application/lending"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/domain/lending"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// It provides atomic execution of multiple repository operations.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos applending.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// AssetRepo returns the asset repository scoped to the current transaction.
func (r *gormTransactionalRepositories) AssetRepo() lending.AssetRepository {
	return NewGormAssetRepository(r.tx)
}

// LoanRepo returns the loan repository scoped to the current transaction.
func (r *gormTransactionalRepositories) LoanRepo() lending.LoanRepository {
	return NewGormLoanRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ applending.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ applending.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
