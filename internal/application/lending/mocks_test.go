package lending

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/domain/lending"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/domain/shared"
)

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
	err    error
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{
		events: make([]shared.DomainEvent, 0),
	}
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, events...)
	return nil
}

func (m *MockEventPublisher) GetEvents() []shared.DomainEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]shared.DomainEvent, len(m.events))
	copy(result, m.events)
	return result
}

func (m *MockEventPublisher) GetEventsByType(eventType string) []shared.DomainEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]shared.DomainEvent, 0)
	for _, e := range m.events {
		if e.EventType() == eventType {
			result = append(result, e)
		}
	}
	return result
}

var errPublishFailed = errors.New("broker unavailable")

// MockAssetRepository is a mock implementation of lending.AssetRepository
type MockAssetRepository struct {
	mock.Mock
}

func (m *MockAssetRepository) FindByID(ctx context.Context, id uuid.UUID) (*lending.Asset, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lending.Asset), args.Error(1)
}

func (m *MockAssetRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*lending.Asset, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lending.Asset), args.Error(1)
}

func (m *MockAssetRepository) FindByCode(ctx context.Context, code string) (*lending.Asset, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lending.Asset), args.Error(1)
}

func (m *MockAssetRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]lending.Asset, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]lending.Asset), args.Error(1)
}

func (m *MockAssetRepository) FindAll(ctx context.Context, filter lending.AssetFilter) ([]lending.Asset, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]lending.Asset), args.Error(1)
}

func (m *MockAssetRepository) Count(ctx context.Context, filter lending.AssetFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAssetRepository) ExistsByCode(ctx context.Context, code string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, code, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAssetRepository) Save(ctx context.Context, asset *lending.Asset) error {
	args := m.Called(ctx, asset)
	return args.Error(0)
}

func (m *MockAssetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockLoanRepository is a mock implementation of lending.LoanRepository
type MockLoanRepository struct {
	mock.Mock
}

func (m *MockLoanRepository) FindByID(ctx context.Context, id uuid.UUID) (*lending.Loan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lending.Loan), args.Error(1)
}

func (m *MockLoanRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*lending.Loan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lending.Loan), args.Error(1)
}

func (m *MockLoanRepository) FindActiveByAsset(ctx context.Context, assetID uuid.UUID) ([]lending.Loan, error) {
	args := m.Called(ctx, assetID)
	return args.Get(0).([]lending.Loan), args.Error(1)
}

func (m *MockLoanRepository) FindAll(ctx context.Context, filter lending.LoanFilter) ([]lending.Loan, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]lending.Loan), args.Error(1)
}

func (m *MockLoanRepository) Count(ctx context.Context, filter lending.LoanFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLoanRepository) CountActiveByAsset(ctx context.Context, assetID uuid.UUID) (int64, error) {
	args := m.Called(ctx, assetID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLoanRepository) SumActiveQuantityByAssets(ctx context.Context, assetIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	args := m.Called(ctx, assetIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]int), args.Error(1)
}

func (m *MockLoanRepository) Save(ctx context.Context, loan *lending.Loan) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}

// MockBorrowerDirectory is a mock implementation of BorrowerDirectory
type MockBorrowerDirectory struct {
	mock.Mock
}

func (m *MockBorrowerDirectory) LookupBorrowers(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]BorrowerSummary, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]BorrowerSummary), args.Error(1)
}
