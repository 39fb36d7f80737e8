package usecase

import (
	"context"
	"sort"

	"github.com/gantry-org/gantry-cli/internal/domain"
	"github.com/gantry-org/gantry-cli/internal/domain/config"
	"github.com/gantry-org/gantry-cli/internal/domain/models"
)

// ListRecordsParams contains parameters for listing records
type ListRecordsParams struct {
	// Filter parameters (namespace and chainID come from RuntimeConfig)
	Graph string
	Kind  models.RecordKind
	Name  string
}

// ListRecordsResult contains the result of listing records
type ListRecordsResult struct {
	Records []*models.Record
	Summary RecordSummary
}

// RecordSummary contains summary statistics for a record listing
type RecordSummary struct {
	Total   int
	ByChain map[uint64]int
	ByKind  map[models.RecordKind]int
	Graphs  []string
}

// ListRecords is the use case for listing registry records
type ListRecords struct {
	config *config.RuntimeConfig
	store  RecordRepository
	sink   ProgressSink
}

// NewListRecords creates a new ListRecords use case
func NewListRecords(cfg *config.RuntimeConfig, store RecordRepository, sink ProgressSink) *ListRecords {
	return &ListRecords{
		config: cfg,
		store:  store,
		sink:   sink,
	}
}

// Run executes the list records use case
func (uc *ListRecords) Run(ctx context.Context, params ListRecordsParams) (*ListRecordsResult, error) {
	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   "loading",
		Message: "Loading records from registry",
		Spinner: true,
	})

	filter := domain.RecordFilter{
		Namespace: uc.config.Namespace,
		Graph:     params.Graph,
		Kind:      params.Kind,
		NameMatch: params.Name,
	}
	// Without a selected network the listing spans every chain.
	if uc.config.Network != nil {
		filter.ChainID = uc.config.Network.ChainID
	}

	records, err := uc.store.ListRecords(ctx, filter)
	if err != nil {
		return nil, err
	}

	sortRecords(records)
	summary := summarizeRecords(records)

	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   "complete",
		Current: len(records),
		Total:   len(records),
		Message: "Records loaded",
	})

	return &ListRecordsResult{
		Records: records,
		Summary: summary,
	}, nil
}

// sortRecords orders by namespace, chain, graph, then creation order.
// Within one graph the nonce is the order components came into existence.
func sortRecords(records []*models.Record) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].Namespace != records[j].Namespace {
			return records[i].Namespace < records[j].Namespace
		}
		if records[i].ChainID != records[j].ChainID {
			return records[i].ChainID < records[j].ChainID
		}
		if records[i].Graph != records[j].Graph {
			return records[i].Graph < records[j].Graph
		}
		if records[i].Nonce != records[j].Nonce {
			return records[i].Nonce < records[j].Nonce
		}
		return records[i].Name < records[j].Name
	})
}

// summarizeRecords calculates summary statistics for a listing
func summarizeRecords(records []*models.Record) RecordSummary {
	summary := RecordSummary{
		Total:   len(records),
		ByChain: make(map[uint64]int),
		ByKind:  make(map[models.RecordKind]int),
	}

	graphs := make(map[string]bool)
	for _, r := range records {
		summary.ByChain[r.ChainID]++
		summary.ByKind[r.Kind]++
		graphs[r.Graph] = true
	}
	for g := range graphs {
		summary.Graphs = append(summary.Graphs, g)
	}
	sort.Strings(summary.Graphs)

	return summary
}
