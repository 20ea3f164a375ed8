package lending

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/domain/identity"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/domain/lending"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/domain/shared"
	"go.uber.org/zap"
)

// BorrowerDirectory resolves borrower summaries for loan responses
type BorrowerDirectory interface {
	LookupBorrowers(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]BorrowerSummary, error)
}

// LoanService handles the loan lifecycle: borrow requests, administrator
// transitions and loan listings.
type LoanService struct {
	assetRepo      lending.AssetRepository
	loanRepo       lending.LoanRepository
	txScope        TransactionScope
	engine         *lending.Engine
	borrowers      BorrowerDirectory
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewLoanService creates a new LoanService
func NewLoanService(
	assetRepo lending.AssetRepository,
	loanRepo lending.LoanRepository,
	txScope TransactionScope,
	engine *lending.Engine,
	logger *zap.Logger,
) *LoanService {
	return &LoanService{
		assetRepo: assetRepo,
		loanRepo:  loanRepo,
		txScope:   txScope,
		engine:    engine,
		logger:    logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *LoanService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetBorrowerDirectory sets the directory used to embed borrower summaries
func (s *LoanService) SetBorrowerDirectory(directory BorrowerDirectory) {
	s.borrowers = directory
}

// CreateLoan validates a borrow request and records a PENDING loan. The asset
// row stays locked from the availability read until the loan is written.
func (s *LoanService) CreateLoan(ctx context.Context, actor identity.Actor, req CreateLoanRequest) (*LoanResponse, error) {
	var (
		loan  *lending.Loan
		asset *lending.Asset
	)

	// An unparsable date stays zero and fails the borrow date check,
	// which runs after the asset and quantity checks
	borrowDate, err := lending.ParseDate(strings.TrimSpace(req.BorrowDate))
	if err != nil {
		borrowDate = time.Time{}
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		asset, err = findAssetForUpdate(ctx, repos.AssetRepo(), req.AssetID)
		if err != nil {
			return err
		}

		active, err := repos.LoanRepo().FindActiveByAsset(ctx, asset.ID)
		if err != nil {
			return err
		}

		loan, err = s.engine.RequestLoan(asset, active, lending.LoanRequest{
			AssetID:    req.AssetID,
			UserID:     actor.UserID,
			Quantity:   req.Quantity,
			BorrowDate: borrowDate,
			DueAt:      req.DueAt,
			CostCenter: req.CostCenter,
			Note:       req.Note,
		})
		if err != nil {
			return err
		}

		return repos.LoanRepo().Save(ctx, loan)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Loan requested",
		zap.String("loan_id", loan.ID.String()),
		zap.String("asset_id", asset.ID.String()),
		zap.String("user_id", actor.UserID.String()),
		zap.Int("quantity", loan.Quantity),
		zap.String("policy", string(s.engine.Policy())))

	s.publishDomainEvents(ctx, loan)

	borrowers := s.lookupBorrowers(ctx, []uuid.UUID{loan.UserID})
	response := ToLoanResponse(loan, asset, borrowers[loan.UserID])
	return &response, nil
}

// TransitionLoan moves a loan to a new status. Only administrators may call it.
// Moving a loan to the status it already has succeeds without side effects.
func (s *LoanService) TransitionLoan(ctx context.Context, actor identity.Actor, loanID uuid.UUID, req TransitionLoanRequest) (*LoanResponse, error) {
	if !actor.IsAdmin() {
		return nil, shared.ErrForbidden
	}
	target, err := lending.ParseLoanStatus(req.Status)
	if err != nil {
		return nil, err
	}

	var (
		loan    *lending.Loan
		asset   *lending.Asset
		changed bool
	)
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		loan, err = repos.LoanRepo().FindByIDForUpdate(ctx, loanID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return lending.ErrLoanNotFound
			}
			return err
		}

		asset, err = findAssetForUpdate(ctx, repos.AssetRepo(), loan.AssetID)
		if err != nil {
			return err
		}

		active, err := repos.LoanRepo().FindActiveByAsset(ctx, asset.ID)
		if err != nil {
			return err
		}

		changed, err = s.engine.Transition(loan, asset, active, target)
		if err != nil || !changed {
			return err
		}
		return repos.LoanRepo().Save(ctx, loan)
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.logger.Info("Loan status changed",
			zap.String("loan_id", loan.ID.String()),
			zap.String("status", string(loan.Status)),
			zap.String("admin_id", actor.UserID.String()))
		s.publishDomainEvents(ctx, loan)
	}

	borrowers := s.lookupBorrowers(ctx, []uuid.UUID{loan.UserID})
	response := ToLoanResponse(loan, asset, borrowers[loan.UserID])
	return &response, nil
}

// GetLoan returns a loan visible to the actor. Loans of other users are
// reported as not found.
func (s *LoanService) GetLoan(ctx context.Context, actor identity.Actor, loanID uuid.UUID) (*LoanResponse, error) {
	loan, err := s.loanRepo.FindByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, lending.ErrLoanNotFound
		}
		return nil, err
	}
	if !actor.CanSee(loan.UserID) {
		return nil, lending.ErrLoanNotFound
	}

	asset, err := s.assetRepo.FindByID(ctx, loan.AssetID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	borrowers := s.lookupBorrowers(ctx, []uuid.UUID{loan.UserID})
	response := ToLoanResponse(loan, asset, borrowers[loan.UserID])
	return &response, nil
}

// ListLoans lists loans; administrators see every loan, other users only their own
func (s *LoanService) ListLoans(ctx context.Context, actor identity.Actor, filter LoanListFilter) ([]LoanResponse, int64, error) {
	domainFilter, err := s.buildLoanFilter(actor, filter)
	if err != nil {
		return nil, 0, err
	}

	loans, err := s.loanRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.loanRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	assetIDs := make([]uuid.UUID, 0, len(loans))
	userIDs := make([]uuid.UUID, 0, len(loans))
	for i := range loans {
		assetIDs = append(assetIDs, loans[i].AssetID)
		userIDs = append(userIDs, loans[i].UserID)
	}

	assets, err := s.assetRepo.FindByIDs(ctx, uniqueIDs(assetIDs))
	if err != nil {
		return nil, 0, err
	}
	assetByID := make(map[uuid.UUID]*lending.Asset, len(assets))
	for i := range assets {
		assetByID[assets[i].ID] = &assets[i]
	}
	borrowers := s.lookupBorrowers(ctx, uniqueIDs(userIDs))

	responses := make([]LoanResponse, len(loans))
	for i := range loans {
		responses[i] = ToLoanResponse(&loans[i], assetByID[loans[i].AssetID], borrowers[loans[i].UserID])
	}
	return responses, total, nil
}

func (s *LoanService) buildLoanFilter(actor identity.Actor, filter LoanListFilter) (lending.LoanFilter, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	result := lending.LoanFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
		},
	}

	if filter.Status != "" {
		status, err := lending.ParseLoanStatus(filter.Status)
		if err != nil {
			return result, err
		}
		result.Status = &status
	}
	if filter.AssetID != "" {
		id, err := uuid.Parse(filter.AssetID)
		if err != nil {
			return result, shared.NewDomainError("INVALID_INPUT", "asset_id must be a UUID")
		}
		result.AssetID = &id
	}

	switch {
	case !actor.IsAdmin():
		owner := actor.UserID
		result.UserID = &owner
	case filter.UserID != "":
		id, err := uuid.Parse(filter.UserID)
		if err != nil {
			return result, shared.NewDomainError("INVALID_INPUT", "user_id must be a UUID")
		}
		result.UserID = &id
	}
	return result, nil
}

// lookupBorrowers never fails the request; missing summaries are omitted
func (s *LoanService) lookupBorrowers(ctx context.Context, ids []uuid.UUID) map[uuid.UUID]*BorrowerSummary {
	out := make(map[uuid.UUID]*BorrowerSummary, len(ids))
	if s.borrowers == nil || len(ids) == 0 {
		return out
	}
	found, err := s.borrowers.LookupBorrowers(ctx, ids)
	if err != nil {
		s.logger.Warn("Failed to resolve borrowers", zap.Error(err))
		return out
	}
	for id, summary := range found {
		out[id] = &summary
	}
	return out
}

// publishDomainEvents publishes all domain events recorded on the aggregate
func (s *LoanService) publishDomainEvents(ctx context.Context, aggregate shared.AggregateRoot) {
	publishDomainEvents(ctx, s.eventPublisher, s.logger, aggregate)
}

func publishDomainEvents(ctx context.Context, publisher shared.EventPublisher, logger *zap.Logger, aggregate shared.AggregateRoot) {
	events := aggregate.GetDomainEvents()
	if publisher == nil || len(events) == 0 {
		aggregate.ClearDomainEvents()
		return
	}
	// The state change is already committed; a publish failure is only logged
	if err := publisher.Publish(ctx, events...); err != nil {
		logger.Error("Failed to publish domain events",
			zap.String("aggregate_id", aggregate.GetID().String()),
			zap.Error(err))
	}
	aggregate.ClearDomainEvents()
}

func findAssetForUpdate(ctx context.Context, repo lending.AssetRepository, id uuid.UUID) (*lending.Asset, error) {
	asset, err := repo.FindByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, lending.ErrAssetNotFound
		}
		return nil, err
	}
	return asset, nil
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
