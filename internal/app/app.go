package app

import (
	"github.com/gantry-org/gantry-cli/internal/domain/config"
	"github.com/gantry-org/gantry-cli/internal/usecase"
)

// App is the main application container that holds all use cases
type App struct {
	// Configuration
	Config *config.RuntimeConfig

	// Shared dependencies
	Selector usecase.RecordSelector

	// Use cases
	ValidatePlan      *usecase.ValidatePlan
	PredictAddresses  *usecase.PredictAddresses
	RunDeployment     *usecase.RunDeployment
	WarmupOracles     *usecase.WarmupOracles
	WireComponents    *usecase.WireComponents
	HandoverOwnership *usecase.HandoverOwnership
	ListRecords       *usecase.ListRecords
	ShowRecord        *usecase.ShowRecord
	ListNetworks      *usecase.ListNetworks
	ShowConfig        *usecase.ShowConfig
	SetConfig         *usecase.SetConfig
	RemoveConfig      *usecase.RemoveConfig
	ManageNode        *usecase.ManageNode

	// Adapters (needed for special cases like log streaming)
	NodeManager usecase.NodeManager
}

// NewApp creates a new application instance with all use cases
func NewApp(
	cfg *config.RuntimeConfig,
	selector usecase.RecordSelector,
	validatePlan *usecase.ValidatePlan,
	predictAddresses *usecase.PredictAddresses,
	runDeployment *usecase.RunDeployment,
	warmupOracles *usecase.WarmupOracles,
	wireComponents *usecase.WireComponents,
	handoverOwnership *usecase.HandoverOwnership,
	listRecords *usecase.ListRecords,
	showRecord *usecase.ShowRecord,
	listNetworks *usecase.ListNetworks,
	showConfig *usecase.ShowConfig,
	setConfig *usecase.SetConfig,
	removeConfig *usecase.RemoveConfig,
	manageNode *usecase.ManageNode,
	nodeManager usecase.NodeManager,
) *App {
	return &App{
		Config:            cfg,
		Selector:          selector,
		ValidatePlan:      validatePlan,
		PredictAddresses:  predictAddresses,
		RunDeployment:     runDeployment,
		WarmupOracles:     warmupOracles,
		WireComponents:    wireComponents,
		HandoverOwnership: handoverOwnership,
		ListRecords:       listRecords,
		ShowRecord:        showRecord,
		ListNetworks:      listNetworks,
		ShowConfig:        showConfig,
		SetConfig:         setConfig,
		RemoveConfig:      removeConfig,
		ManageNode:        manageNode,
		NodeManager:       nodeManager,
	}
}
