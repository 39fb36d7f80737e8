package domain

import (
	"strings"

	"github.com/gantry-org/gantry-cli/internal/domain/models"
)

// RecordFilter narrows registry queries for list and show.
type RecordFilter struct {
	Namespace string
	Graph     string
	Network   string
	ChainID   uint64
	Kind      models.RecordKind
	NameMatch string
}

// Matches reports whether a record passes the filter.
func (f RecordFilter) Matches(r *models.Record) bool {
	if f.Namespace != "" && r.Namespace != f.Namespace {
		return false
	}
	if f.Graph != "" && r.Graph != f.Graph {
		return false
	}
	if f.Network != "" && r.Network != f.Network {
		return false
	}
	if f.ChainID != 0 && r.ChainID != f.ChainID {
		return false
	}
	if f.Kind != "" && r.Kind != f.Kind {
		return false
	}
	if f.NameMatch != "" && !strings.Contains(strings.ToLower(r.Name), strings.ToLower(f.NameMatch)) {
		return false
	}
	return true
}

// TransactionFilter narrows transaction queries.
type TransactionFilter struct {
	Namespace string
	Graph     string
	ChainID   uint64
	Sender    string
}

// Matches reports whether a transaction passes the filter.
func (f TransactionFilter) Matches(tx *models.Transaction) bool {
	if f.Namespace != "" && tx.Namespace != f.Namespace {
		return false
	}
	if f.Graph != "" && tx.Graph != f.Graph {
		return false
	}
	if f.ChainID != 0 && tx.ChainID != f.ChainID {
		return false
	}
	if f.Sender != "" && !strings.EqualFold(tx.Sender, f.Sender) {
		return false
	}
	return true
}
