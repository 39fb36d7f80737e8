package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gantry-org/gantry-cli/internal/domain"
	"github.com/gantry-org/gantry-cli/internal/domain/config"
	"github.com/gantry-org/gantry-cli/internal/domain/models"
	"github.com/gantry-org/gantry-cli/internal/usecase"
)

const (
	DeploymentsFile  = "deployments.json"
	TransactionsFile = "transactions.json"
	HandoverFile     = "handover.json"
)

// RegistryStore persists deployment records, submitted transactions and
// handover state as JSON files under the data directory. All maps are
// keyed the way the domain keys them: records by namespace/chain/name,
// transactions by hash, handovers by namespace/chain/authority.
type RegistryStore struct {
	dataDir string

	mu           sync.RWMutex
	records      map[string]*models.Record
	transactions map[string]*models.Transaction
	handovers    map[string]*domain.OwnershipTransfer
}

// NewRegistryStore creates a registry store rooted at the runtime data
// directory, loading any existing registry files.
func NewRegistryStore(cfg *config.RuntimeConfig) (*RegistryStore, error) {
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	s := &RegistryStore{
		dataDir:      cfg.DataDir,
		records:      make(map[string]*models.Record),
		transactions: make(map[string]*models.Transaction),
		handovers:    make(map[string]*domain.OwnershipTransfer),
	}

	if err := s.load(); err != nil {
		return nil, fmt.Errorf("failed to load registry: %w", err)
	}

	return s, nil
}

// load reads all registry files
func (s *RegistryStore) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadFile(DeploymentsFile, &s.records); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to load deployments: %w", err)
	}
	if err := s.loadFile(TransactionsFile, &s.transactions); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to load transactions: %w", err)
	}
	if err := s.loadFile(HandoverFile, &s.handovers); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to load handover state: %w", err)
	}

	return nil
}

func (s *RegistryStore) loadFile(filename string, v interface{}) error {
	data, err := os.ReadFile(filepath.Join(s.dataDir, filename))
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// saveFile writes data to a temp file and renames it into place so a
// crashed run never leaves a half-written registry.
func (s *RegistryStore) saveFile(filename string, v interface{}) error {
	path := filepath.Join(s.dataDir, filename)

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return err
	}

	return os.Rename(tmpPath, path)
}

// GetRecord returns the record with the given namespace/chain/name id.
func (s *RegistryStore) GetRecord(ctx context.Context, id string) (*models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("record %s: %w", id, domain.ErrNotFound)
	}
	return record, nil
}

// FindRecord looks up a record by its coordinates.
func (s *RegistryStore) FindRecord(ctx context.Context, namespace string, chainID uint64, name string) (*models.Record, error) {
	return s.GetRecord(ctx, fmt.Sprintf("%s/%d/%s", namespace, chainID, name))
}

// ListRecords returns all records passing the filter.
func (s *RegistryStore) ListRecords(ctx context.Context, filter domain.RecordFilter) ([]*models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*models.Record
	for _, record := range s.records {
		if filter.Matches(record) {
			result = append(result, record)
		}
	}
	return result, nil
}

// SaveRecord stores a record and persists the registry.
func (s *RegistryStore) SaveRecord(ctx context.Context, record *models.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[record.ID()] = record
	return s.saveFile(DeploymentsFile, s.records)
}

// ListTransactions returns all transactions passing the filter.
func (s *RegistryStore) ListTransactions(ctx context.Context, filter domain.TransactionFilter) ([]*models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*models.Transaction
	for _, tx := range s.transactions {
		if filter.Matches(tx) {
			result = append(result, tx)
		}
	}
	return result, nil
}

// SaveTransaction stores a transaction and persists the registry.
func (s *RegistryStore) SaveTransaction(ctx context.Context, tx *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.transactions[tx.Hash] = tx
	return s.saveFile(TransactionsFile, s.transactions)
}

// GetHandover returns the ownership transfer with the given id.
func (s *RegistryStore) GetHandover(ctx context.Context, id string) (*domain.OwnershipTransfer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	transfer, ok := s.handovers[id]
	if !ok {
		return nil, fmt.Errorf("handover %s: %w", id, domain.ErrNotFound)
	}
	return transfer, nil
}

// SaveHandover stores an ownership transfer and persists the registry.
func (s *RegistryStore) SaveHandover(ctx context.Context, transfer *domain.OwnershipTransfer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.handovers[transfer.ID()] = transfer
	return s.saveFile(HandoverFile, s.handovers)
}

// Ensure RegistryStore implements RecordRepository
var _ usecase.RecordRepository = (*RegistryStore)(nil)
