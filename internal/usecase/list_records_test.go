package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gantry-org/gantry-cli/internal/domain"
	"github.com/gantry-org/gantry-cli/internal/domain/config"
	"github.com/gantry-org/gantry-cli/internal/domain/models"
	"github.com/gantry-org/gantry-cli/internal/usecase"
)

// MockRecordRepository is a mock implementation of RecordRepository
type MockRecordRepository struct {
	mock.Mock
}

func (m *MockRecordRepository) GetRecord(ctx context.Context, id string) (*models.Record, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Record), args.Error(1)
}

func (m *MockRecordRepository) FindRecord(ctx context.Context, namespace string, chainID uint64, name string) (*models.Record, error) {
	args := m.Called(ctx, namespace, chainID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Record), args.Error(1)
}

func (m *MockRecordRepository) ListRecords(ctx context.Context, filter domain.RecordFilter) ([]*models.Record, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Record), args.Error(1)
}

func (m *MockRecordRepository) SaveRecord(ctx context.Context, record *models.Record) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockRecordRepository) ListTransactions(ctx context.Context, filter domain.TransactionFilter) ([]*models.Transaction, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Transaction), args.Error(1)
}

func (m *MockRecordRepository) SaveTransaction(ctx context.Context, tx *models.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockRecordRepository) GetHandover(ctx context.Context, id string) (*domain.OwnershipTransfer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OwnershipTransfer), args.Error(1)
}

func (m *MockRecordRepository) SaveHandover(ctx context.Context, transfer *domain.OwnershipTransfer) error {
	args := m.Called(ctx, transfer)
	return args.Error(0)
}

func TestListRecords(t *testing.T) {
	ctx := context.Background()

	t.Run("list all records", func(t *testing.T) {
		// Create test records
		records := []*models.Record{
			{
				Namespace: "default",
				Graph:     "lending-core",
				ChainID:   31337,
				Name:      "Vault",
				Kind:      models.KindComponent,
				Address:   "0x1111111111111111111111111111111111111111",
				Nonce:     1,
				CreatedAt: time.Now(),
			},
			{
				Namespace: "default",
				Graph:     "lending-core",
				ChainID:   31337,
				Name:      "eth-usd",
				Kind:      models.KindOracle,
				Address:   "0x2222222222222222222222222222222222222222",
				Nonce:     0,
				CreatedAt: time.Now(),
			},
			{
				Namespace: "default",
				Graph:     "rates",
				ChainID:   11155111,
				Name:      "Curve",
				Kind:      models.KindComponent,
				Address:   "0x3333333333333333333333333333333333333333",
				Nonce:     0,
				CreatedAt: time.Now(),
			},
		}

		// Setup mocks
		store := new(MockRecordRepository)
		store.On("ListRecords", ctx, domain.RecordFilter{Namespace: "default"}).Return(records, nil)

		progress := &progressRecorder{}

		// Create and run use case
		uc := usecase.NewListRecords(testConfig(), store, progress)
		result, err := uc.Run(ctx, usecase.ListRecordsParams{})

		// Assertions
		require.NoError(t, err)
		assert.Len(t, result.Records, 3)
		assert.Equal(t, 3, result.Summary.Total)
		assert.Equal(t, 2, result.Summary.ByChain[31337])
		assert.Equal(t, 1, result.Summary.ByChain[11155111])
		assert.Equal(t, 2, result.Summary.ByKind[models.KindComponent])
		assert.Equal(t, 1, result.Summary.ByKind[models.KindOracle])
		assert.Equal(t, []string{"lending-core", "rates"}, result.Summary.Graphs)

		// Check progress events
		assert.Len(t, progress.events, 2)
		assert.Equal(t, "loading", progress.events[0].Stage)
		assert.Equal(t, "complete", progress.events[1].Stage)

		// Within one graph the nonce is the creation order.
		assert.Equal(t, "eth-usd", result.Records[0].Name)
		assert.Equal(t, "Vault", result.Records[1].Name)
		assert.Equal(t, "Curve", result.Records[2].Name)

		store.AssertExpectations(t)
	})

	t.Run("selected network narrows the filter to its chain", func(t *testing.T) {
		cfg := testConfig()
		cfg.Network = &config.Network{Name: "sepolia", ChainID: 11155111}

		store := new(MockRecordRepository)
		store.On("ListRecords", ctx, domain.RecordFilter{
			Namespace: "default",
			ChainID:   11155111,
		}).Return([]*models.Record{}, nil)

		uc := usecase.NewListRecords(cfg, store, &progressRecorder{})
		_, err := uc.Run(ctx, usecase.ListRecordsParams{})

		require.NoError(t, err)
		store.AssertExpectations(t)
	})

	t.Run("params map onto the filter", func(t *testing.T) {
		store := new(MockRecordRepository)
		store.On("ListRecords", ctx, domain.RecordFilter{
			Namespace: "default",
			Graph:     "lending-core",
			Kind:      models.KindOracle,
			NameMatch: "usd",
		}).Return([]*models.Record{}, nil)

		uc := usecase.NewListRecords(testConfig(), store, &progressRecorder{})
		result, err := uc.Run(ctx, usecase.ListRecordsParams{
			Graph: "lending-core",
			Kind:  models.KindOracle,
			Name:  "usd",
		})

		// Assertions
		require.NoError(t, err)
		assert.Len(t, result.Records, 0)
		assert.Equal(t, 0, result.Summary.Total)
		assert.Empty(t, result.Summary.ByChain)

		store.AssertExpectations(t)
	})

	t.Run("store error", func(t *testing.T) {
		store := new(MockRecordRepository)
		expectedErr := errors.New("store error")
		store.On("ListRecords", ctx, domain.RecordFilter{Namespace: "default"}).Return(nil, expectedErr)

		progress := &progressRecorder{}

		uc := usecase.NewListRecords(testConfig(), store, progress)
		result, err := uc.Run(ctx, usecase.ListRecordsParams{})

		// Assertions
		assert.Error(t, err)
		assert.Equal(t, expectedErr, err)
		assert.Nil(t, result)

		// Should have loading event but not complete event
		assert.Len(t, progress.events, 1)
		assert.Equal(t, "loading", progress.events[0].Stage)

		store.AssertExpectations(t)
	})
}
