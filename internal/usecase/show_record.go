package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/gantry-org/gantry-cli/internal/domain"
	"github.com/gantry-org/gantry-cli/internal/domain/config"
	"github.com/gantry-org/gantry-cli/internal/domain/models"
)

// ShowRecordParams contains parameters for showing a record
type ShowRecordParams struct {
	// Identifier is a record ID (namespace/chain/name), a name, or an
	// address.
	Identifier string
}

// ShowRecordResult contains the record and its creation context
type ShowRecordResult struct {
	Record      *models.Record
	Transaction *models.Transaction
	Handover    *domain.OwnershipTransfer
}

// ShowRecord is the use case for showing record details
type ShowRecord struct {
	config   *config.RuntimeConfig
	store    RecordRepository
	selector RecordSelector
	sink     ProgressSink
}

// NewShowRecord creates a new ShowRecord use case
func NewShowRecord(cfg *config.RuntimeConfig, store RecordRepository, selector RecordSelector, sink ProgressSink) *ShowRecord {
	return &ShowRecord{
		config:   cfg,
		store:    store,
		selector: selector,
		sink:     sink,
	}
}

// Run executes the show record use case
func (uc *ShowRecord) Run(ctx context.Context, params ShowRecordParams) (*ShowRecordResult, error) {
	if params.Identifier == "" {
		return nil, fmt.Errorf("a record name, id or address is required")
	}

	record, err := uc.resolve(ctx, params.Identifier)
	if err != nil {
		return nil, err
	}

	result := &ShowRecordResult{Record: record}

	if record.TxHash != "" {
		txs, err := uc.store.ListTransactions(ctx, domain.TransactionFilter{
			Namespace: record.Namespace,
			Graph:     record.Graph,
			ChainID:   record.ChainID,
		})
		if err == nil {
			for _, tx := range txs {
				if tx.Hash == record.TxHash {
					result.Transaction = tx
					break
				}
			}
		}
	}

	// The record may be a handover authority; show the transfer with it.
	transfer, err := uc.store.GetHandover(ctx, domain.HandoverID(record.Namespace, record.ChainID, record.Name))
	if err == nil {
		result.Handover = transfer
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	return result, nil
}

// resolve turns the identifier into exactly one record: by ID, by address,
// by exact name, then by substring with interactive disambiguation.
func (uc *ShowRecord) resolve(ctx context.Context, identifier string) (*models.Record, error) {
	if strings.Count(identifier, "/") == 2 {
		record, err := uc.store.GetRecord(ctx, identifier)
		if err == nil {
			return record, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}

	filter := domain.RecordFilter{Namespace: uc.config.Namespace}
	if uc.config.Network != nil {
		filter.ChainID = uc.config.Network.ChainID
	}
	records, err := uc.store.ListRecords(ctx, filter)
	if err != nil {
		return nil, err
	}

	var candidates []*models.Record
	if common.IsHexAddress(identifier) {
		for _, r := range records {
			if strings.EqualFold(r.Address, identifier) {
				candidates = append(candidates, r)
			}
		}
	} else {
		for _, r := range records {
			if r.Name == identifier {
				candidates = append(candidates, r)
			}
		}
		if len(candidates) == 0 {
			for _, r := range records {
				if strings.Contains(strings.ToLower(r.Name), strings.ToLower(identifier)) {
					candidates = append(candidates, r)
				}
			}
		}
	}

	switch len(candidates) {
	case 0:
		return nil, fmt.Errorf("no record matching %q: %w", identifier, domain.ErrNotFound)
	case 1:
		return candidates[0], nil
	}

	if uc.config.NonInteractive {
		ids := make([]string, len(candidates))
		for i, r := range candidates {
			ids[i] = r.ID()
		}
		return nil, fmt.Errorf("%q is ambiguous, matches: %s", identifier, strings.Join(ids, ", "))
	}
	return uc.selector.SelectRecord(ctx, candidates, fmt.Sprintf("Select record for %q", identifier))
}
