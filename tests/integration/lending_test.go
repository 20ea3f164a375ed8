package integration

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	applending "github.com/thamonwanpho67-art/PMJinventory-sub001/internal/application/lending"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/domain/identity"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/domain/lending"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/domain/shared"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/infrastructure/event"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/infrastructure/persistence"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/tests/testutil"
	"go.uber.org/zap"
)

type lendingSuite struct {
	t         *testing.T
	db        *TestDB
	userRepo  *persistence.GormUserRepository
	assetRepo *persistence.GormAssetRepository
	assets    *applending.AssetService
	loans     *applending.LoanService
	recorder  *testutil.RecordingHandler
	admin     identity.Actor
}

func newLendingSuite(t *testing.T) *lendingSuite {
	t.Helper()
	tdb := NewTestDB(t)
	log := zap.NewNop()

	userRepo := persistence.NewGormUserRepository(tdb.DB)
	assetRepo := persistence.NewGormAssetRepository(tdb.DB)
	loanRepo := persistence.NewGormLoanRepository(tdb.DB)
	txScope := persistence.NewGormTransactionScope(tdb.DB)

	bus := event.NewInMemoryEventBus(log)
	recorder := testutil.NewRecordingHandler()
	bus.Subscribe(recorder)

	assets := applending.NewAssetService(assetRepo, loanRepo, txScope, log)
	assets.SetEventPublisher(bus)
	loans := applending.NewLoanService(assetRepo, loanRepo, txScope, lending.NewEngine(), log)
	loans.SetEventPublisher(bus)

	s := &lendingSuite{
		t:         t,
		db:        tdb,
		userRepo:  userRepo,
		assetRepo: assetRepo,
		assets:    assets,
		loans:     loans,
		recorder:  recorder,
	}
	s.admin = s.seedUser("admin", identity.RoleAdmin)
	return s
}

func (s *lendingSuite) seedUser(username string, role identity.Role) identity.Actor {
	s.t.Helper()
	user, err := identity.NewUser(username, "integration-pass", role)
	require.NoError(s.t, err)
	require.NoError(s.t, s.userRepo.Save(context.Background(), user))
	return identity.Actor{UserID: user.ID, Role: user.Role}
}

func (s *lendingSuite) seedAsset(code string, quantity int) *lending.Asset {
	s.t.Helper()
	asset, err := lending.NewAsset(lending.AssetInput{
		Code:     code,
		Name:     "Notebook " + code,
		Category: "IT",
		Quantity: quantity,
	})
	require.NoError(s.t, err)
	require.NoError(s.t, s.assetRepo.Save(context.Background(), asset))
	return asset
}

func today() string {
	return time.Now().Format(time.DateOnly)
}

func TestLending_ConcurrentRequestsForLastUnit(t *testing.T) {
	s := newLendingSuite(t)
	asset := s.seedAsset("NB-001", 1)

	const borrowers = 8
	actors := make([]identity.Actor, borrowers)
	for i := range actors {
		actors[i] = s.seedUser("borrower"+string(rune('a'+i)), identity.RoleUser)
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		codes     []string
	)
	start := make(chan struct{})
	for _, actor := range actors {
		wg.Add(1)
		go func(actor identity.Actor) {
			defer wg.Done()
			<-start
			_, err := s.loans.CreateLoan(context.Background(), actor, applending.CreateLoanRequest{
				AssetID:    asset.ID,
				Quantity:   1,
				BorrowDate: today(),
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
				return
			}
			codes = append(codes, shared.ErrorCode(err))
		}(actor)
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	require.Len(t, codes, borrowers-1)
	for _, code := range codes {
		assert.Equal(t, "INSUFFICIENT_STOCK", code)
	}

	got, err := s.assets.GetByID(context.Background(), asset.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Borrowed)
	assert.Equal(t, 0, got.Available)
}

func TestLending_LoanLifecycle(t *testing.T) {
	s := newLendingSuite(t)
	ctx := context.Background()
	asset := s.seedAsset("NB-002", 3)
	borrower := s.seedUser("somchai", identity.RoleUser)

	loan, err := s.loans.CreateLoan(ctx, borrower, applending.CreateLoanRequest{
		AssetID:    asset.ID,
		Quantity:   2,
		BorrowDate: today(),
	})
	require.NoError(t, err)
	assert.Equal(t, lending.LoanStatusPending, loan.Status)

	approved, err := s.loans.TransitionLoan(ctx, s.admin, loan.ID, applending.TransitionLoanRequest{Status: "APPROVED"})
	require.NoError(t, err)
	assert.Equal(t, lending.LoanStatusApproved, approved.Status)
	assert.NotNil(t, approved.BorrowedAt)

	_, err = s.loans.TransitionLoan(ctx, s.admin, loan.ID, applending.TransitionLoanRequest{Status: "REJECTED"})
	assert.Equal(t, lending.CodeInvalidTransition, shared.ErrorCode(err))

	err = s.assets.Delete(ctx, s.admin, asset.ID)
	assert.Equal(t, lending.CodeAssetInUse, shared.ErrorCode(err))

	one := 1
	_, err = s.assets.SetStock(ctx, s.admin, applending.SetStockRequest{AssetID: asset.ID, Quantity: &one})
	assert.Equal(t, lending.CodeStockBelowCommitted, shared.ErrorCode(err))

	returned, err := s.loans.TransitionLoan(ctx, s.admin, loan.ID, applending.TransitionLoanRequest{Status: "returned"})
	require.NoError(t, err)
	assert.Equal(t, lending.LoanStatusReturned, returned.Status)
	assert.NotNil(t, returned.ReturnedAt)

	got, err := s.assets.GetByID(ctx, asset.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Available)

	require.NoError(t, s.assets.Delete(ctx, s.admin, asset.ID))
	_, err = s.assets.GetByID(ctx, asset.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	assert.Equal(t, []string{
		lending.EventTypeLoanRequested,
		lending.EventTypeLoanApproved,
		lending.EventTypeLoanReturned,
	}, s.recorder.Types())
}

func TestLending_ListLoansScopedToBorrower(t *testing.T) {
	s := newLendingSuite(t)
	ctx := context.Background()
	asset := s.seedAsset("NB-003", 5)
	alice := s.seedUser("alice", identity.RoleUser)
	bob := s.seedUser("bob", identity.RoleUser)

	for _, actor := range []identity.Actor{alice, alice, bob} {
		_, err := s.loans.CreateLoan(ctx, actor, applending.CreateLoanRequest{
			AssetID:    asset.ID,
			Quantity:   1,
			BorrowDate: today(),
		})
		require.NoError(t, err)
	}

	_, total, err := s.loans.ListLoans(ctx, alice, applending.LoanListFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	_, total, err = s.loans.ListLoans(ctx, s.admin, applending.LoanListFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)

	s.db.CleanTables()
	_, total, err = s.loans.ListLoans(ctx, s.admin, applending.LoanListFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
}
