package usecase

import (
	"time"

	"github.com/gantry-org/gantry-cli/internal/domain"
	"github.com/gantry-org/gantry-cli/internal/domain/config"
	"github.com/gantry-org/gantry-cli/internal/domain/models"
)

// networkName is what record entries carry for the current network; empty
// when no network is selected.
func networkName(cfg *config.RuntimeConfig) string {
	if cfg.Network != nil {
		return cfg.Network.Name
	}
	return ""
}

// transactionRecord converts a confirmed receipt into its registry entry.
func transactionRecord(cfg *config.RuntimeConfig, graph string, chainID uint64, kind models.TransactionKind, rcpt *domain.Receipt, to, method string) *models.Transaction {
	return &models.Transaction{
		Hash:        rcpt.TxHash.Hex(),
		Namespace:   cfg.Namespace,
		Graph:       graph,
		ChainID:     chainID,
		Kind:        kind,
		Sender:      rcpt.Sender.Hex(),
		Nonce:       rcpt.Nonce,
		To:          to,
		Method:      method,
		Status:      models.TxConfirmed,
		BlockNumber: rcpt.BlockNumber,
		CreatedAt:   time.Now().UTC(),
	}
}
