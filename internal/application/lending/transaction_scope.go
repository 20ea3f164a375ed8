package lending

import (
	"context"

	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/domain/lending"
)

// TransactionScope provides transactional access to lending repositories.
// When a function is executed within a transaction scope, all repository operations
// will be part of the same database transaction and will be committed or rolled back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the lending repositories within a transaction.
// All repositories returned share the same underlying database transaction.
//
// Every operation that reads availability and then writes a loan or a stock
// figure first locks the asset row through AssetRepo().FindByIDForUpdate, so
// concurrent operations on one asset serialize on that row.
type TransactionalRepositories interface {
	// AssetRepo returns the asset repository scoped to the current transaction
	AssetRepo() lending.AssetRepository
	// LoanRepo returns the loan repository scoped to the current transaction
	LoanRepo() lending.LoanRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use transactions.
// This is useful for testing or when transaction support is not required.
type NoOpTransactionScope struct {
	assetRepo lending.AssetRepository
	loanRepo  lending.LoanRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(assetRepo lending.AssetRepository, loanRepo lending.LoanRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		assetRepo: assetRepo,
		loanRepo:  loanRepo,
	}
}

// Execute runs the function without a real transaction (for testing/compatibility).
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// AssetRepo returns the asset repository.
func (s *NoOpTransactionScope) AssetRepo() lending.AssetRepository {
	return s.assetRepo
}

// LoanRepo returns the loan repository.
func (s *NoOpTransactionScope) LoanRepo() lending.LoanRepository {
	return s.loanRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
