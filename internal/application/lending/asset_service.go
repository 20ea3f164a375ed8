package lending

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/domain/identity"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/domain/lending"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/domain/shared"
	"go.uber.org/zap"
)

// AssetService handles the asset catalog and total stock
type AssetService struct {
	assetRepo      lending.AssetRepository
	loanRepo       lending.LoanRepository
	txScope        TransactionScope
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            lending.Clock
}

// NewAssetService creates a new AssetService
func NewAssetService(
	assetRepo lending.AssetRepository,
	loanRepo lending.LoanRepository,
	txScope TransactionScope,
	logger *zap.Logger,
) *AssetService {
	return &AssetService{
		assetRepo: assetRepo,
		loanRepo:  loanRepo,
		txScope:   txScope,
		logger:    logger,
		now:       time.Now,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *AssetService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create catalogues a new asset
func (s *AssetService) Create(ctx context.Context, actor identity.Actor, req CreateAssetRequest) (*AssetResponse, error) {
	if !actor.IsAdmin() {
		return nil, shared.ErrForbidden
	}

	exists, err := s.assetRepo.ExistsByCode(ctx, strings.TrimSpace(req.Code), nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errDuplicateCode(req.Code)
	}

	accountingDate, err := parseOptionalDate(req.AccountingDate)
	if err != nil {
		return nil, err
	}

	asset, err := lending.NewAsset(lending.AssetInput{
		Code:           req.Code,
		Name:           req.Name,
		Description:    req.Description,
		Category:       req.Category,
		Location:       req.Location,
		Status:         lending.AssetStatus(strings.ToUpper(req.Status)),
		Quantity:       req.Quantity,
		Price:          req.Price,
		AccountingDate: accountingDate,
		CostCenter:     req.CostCenter,
	})
	if err != nil {
		return nil, err
	}

	if err := s.assetRepo.Save(ctx, asset); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, errDuplicateCode(asset.Code)
		}
		return nil, err
	}

	s.logger.Info("Asset created",
		zap.String("asset_id", asset.ID.String()),
		zap.String("code", asset.Code),
		zap.Int("quantity", asset.Quantity))

	response := ToAssetResponse(asset, 0)
	return &response, nil
}

// Update applies a partial update. A quantity change is checked against the
// quantity committed to active loans, like SetStock.
func (s *AssetService) Update(ctx context.Context, actor identity.Actor, id uuid.UUID, req UpdateAssetRequest) (*AssetResponse, error) {
	if !actor.IsAdmin() {
		return nil, shared.ErrForbidden
	}

	update, err := toAssetUpdate(req)
	if err != nil {
		return nil, err
	}

	var (
		asset     *lending.Asset
		committed int
	)
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		asset, err = findAssetForUpdate(ctx, repos.AssetRepo(), id)
		if err != nil {
			return err
		}

		if update.CodeChanged(asset.Code) {
			exists, err := repos.AssetRepo().ExistsByCode(ctx, strings.TrimSpace(*update.Code), &asset.ID)
			if err != nil {
				return err
			}
			if exists {
				return errDuplicateCode(*update.Code)
			}
		}

		active, err := repos.LoanRepo().FindActiveByAsset(ctx, asset.ID)
		if err != nil {
			return err
		}
		committed = lending.CommittedQuantity(asset.ID, active)

		if err := asset.Apply(update, committed, s.now()); err != nil {
			return err
		}
		return repos.AssetRepo().Save(ctx, asset)
	})
	if err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) && update.Code != nil {
			return nil, errDuplicateCode(*update.Code)
		}
		return nil, err
	}

	s.logger.Info("Asset updated", zap.String("asset_id", asset.ID.String()))
	publishDomainEvents(ctx, s.eventPublisher, s.logger, asset)

	response := ToAssetResponse(asset, committed)
	return &response, nil
}

// Delete removes an asset that has no PENDING or APPROVED loans
func (s *AssetService) Delete(ctx context.Context, actor identity.Actor, id uuid.UUID) error {
	if !actor.IsAdmin() {
		return shared.ErrForbidden
	}

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		asset, err := findAssetForUpdate(ctx, repos.AssetRepo(), id)
		if err != nil {
			return err
		}

		active, err := repos.LoanRepo().CountActiveByAsset(ctx, asset.ID)
		if err != nil {
			return err
		}
		if active > 0 {
			return shared.NewDomainError(lending.CodeAssetInUse,
				fmt.Sprintf("Asset %s has %d active loan(s) and cannot be deleted", asset.Code, active))
		}

		return repos.AssetRepo().Delete(ctx, asset.ID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Asset deleted", zap.String("asset_id", id.String()))
	return nil
}

// GetByID returns an asset with its current availability
func (s *AssetService) GetByID(ctx context.Context, id uuid.UUID) (*AssetResponse, error) {
	asset, err := s.assetRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, lending.ErrAssetNotFound
		}
		return nil, err
	}

	committed, err := s.loanRepo.SumActiveQuantityByAssets(ctx, []uuid.UUID{asset.ID})
	if err != nil {
		return nil, err
	}

	response := ToAssetResponse(asset, committed[asset.ID])
	return &response, nil
}

// List returns a page of the catalog, each asset with its availability
func (s *AssetService) List(ctx context.Context, filter AssetListFilter) ([]AssetResponse, int64, error) {
	domainFilter, err := buildAssetFilter(filter)
	if err != nil {
		return nil, 0, err
	}

	assets, err := s.assetRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.assetRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses, err := s.withAvailability(ctx, assets)
	if err != nil {
		return nil, 0, err
	}
	return responses, total, nil
}

// SetStock replaces an asset's total quantity
func (s *AssetService) SetStock(ctx context.Context, actor identity.Actor, req SetStockRequest) (*StockResponse, error) {
	if req.Quantity == nil {
		return nil, shared.NewDomainError(lending.CodeInvalidQuantity, "Quantity is required")
	}
	return s.changeStock(ctx, actor, req.AssetID, func(asset *lending.Asset, committed int, now time.Time) error {
		return asset.SetQuantity(*req.Quantity, committed, now)
	})
}

// AdjustStock applies a signed delta to an asset's total quantity
func (s *AssetService) AdjustStock(ctx context.Context, actor identity.Actor, req AdjustStockRequest) (*StockResponse, error) {
	if req.Delta == nil {
		return nil, shared.NewDomainError(lending.CodeInvalidQuantity, "Delta is required")
	}
	return s.changeStock(ctx, actor, req.AssetID, func(asset *lending.Asset, committed int, now time.Time) error {
		return asset.AdjustQuantity(*req.Delta, committed, now)
	})
}

// changeStock locks the asset, computes its committed quantity and applies
// change. Nothing is written when change fails.
func (s *AssetService) changeStock(
	ctx context.Context,
	actor identity.Actor,
	assetID uuid.UUID,
	change func(asset *lending.Asset, committed int, now time.Time) error,
) (*StockResponse, error) {
	if !actor.IsAdmin() {
		return nil, shared.ErrForbidden
	}

	var (
		asset     *lending.Asset
		committed int
		previous  int
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		asset, err = findAssetForUpdate(ctx, repos.AssetRepo(), assetID)
		if err != nil {
			return err
		}
		previous = asset.Quantity

		active, err := repos.LoanRepo().FindActiveByAsset(ctx, asset.ID)
		if err != nil {
			return err
		}
		committed = lending.CommittedQuantity(asset.ID, active)

		if err := change(asset, committed, s.now()); err != nil {
			return err
		}
		if asset.Quantity == previous {
			return nil
		}
		return repos.AssetRepo().Save(ctx, asset)
	})
	if err != nil {
		return nil, err
	}

	if asset.Quantity != previous {
		s.logger.Info("Asset stock changed",
			zap.String("asset_id", asset.ID.String()),
			zap.Int("previous", previous),
			zap.Int("quantity", asset.Quantity),
			zap.Int("committed", committed),
			zap.String("admin_id", actor.UserID.String()))
	}
	publishDomainEvents(ctx, s.eventPublisher, s.logger, asset)

	availability := lending.NewAvailability(asset.ID, asset.Quantity, committed)
	return &StockResponse{
		AssetID:   asset.ID,
		Code:      asset.Code,
		Name:      asset.Name,
		Quantity:  asset.Quantity,
		Borrowed:  availability.Borrowed,
		Available: availability.Available,
	}, nil
}

func (s *AssetService) withAvailability(ctx context.Context, assets []lending.Asset) ([]AssetResponse, error) {
	ids := make([]uuid.UUID, len(assets))
	for i := range assets {
		ids[i] = assets[i].ID
	}
	committed, err := s.loanRepo.SumActiveQuantityByAssets(ctx, ids)
	if err != nil {
		return nil, err
	}

	responses := make([]AssetResponse, len(assets))
	for i := range assets {
		responses[i] = ToAssetResponse(&assets[i], committed[assets[i].ID])
	}
	return responses, nil
}

func buildAssetFilter(filter AssetListFilter) (lending.AssetFilter, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "code"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "asc"
	}

	result := lending.AssetFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   strings.TrimSpace(filter.Search),
		},
		Category: strings.TrimSpace(filter.Category),
		Location: strings.TrimSpace(filter.Location),
	}
	if filter.Status != "" {
		status, err := lending.ParseAssetStatus(filter.Status)
		if err != nil {
			return result, err
		}
		result.Status = &status
	}
	return result, nil
}

func toAssetUpdate(req UpdateAssetRequest) (lending.AssetUpdate, error) {
	update := lending.AssetUpdate{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Location:    req.Location,
		Quantity:    req.Quantity,
		Price:       req.Price,
		CostCenter:  req.CostCenter,
	}
	if req.Status != nil {
		status, err := lending.ParseAssetStatus(*req.Status)
		if err != nil {
			return update, err
		}
		update.Status = &status
	}
	accountingDate, err := parseOptionalDate(req.AccountingDate)
	if err != nil {
		return update, err
	}
	update.AccountingDate = accountingDate
	return update, nil
}

func parseOptionalDate(raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	t, err := lending.ParseDate(strings.TrimSpace(*raw))
	if err != nil {
		return nil, shared.NewDomainError(lending.CodeInvalidDate,
			fmt.Sprintf("Accounting date %q is not a valid date", *raw))
	}
	return &t, nil
}

func errDuplicateCode(code string) error {
	return shared.NewDomainError(shared.ErrAlreadyExists.Code,
		fmt.Sprintf("Asset code %q already exists", strings.TrimSpace(code)))
}
