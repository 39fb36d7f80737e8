//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"github.com/spf13/viper"

	"github.com/gantry-org/gantry-cli/internal/adapters"
	"github.com/gantry-org/gantry-cli/internal/config"
	"github.com/gantry-org/gantry-cli/internal/logging"
	"github.com/gantry-org/gantry-cli/internal/usecase"
)

// InitApp creates a fully wired App instance from the resolved viper
// configuration.
func InitApp(v *viper.Viper) (*App, error) {
	wire.Build(
		// Runtime configuration
		config.Provider,
		config.ProvideNetworkResolver,
		wire.Bind(new(usecase.NetworkResolver), new(*config.NetworkResolver)),

		// Logging
		logging.LoggingSet,

		// Adapters
		adapters.AllAdapters,

		// Use cases
		usecase.NewValidatePlan,
		usecase.NewPredictAddresses,
		usecase.NewWarmupOracles,
		usecase.NewWireComponents,
		usecase.NewHandoverOwnership,
		usecase.NewRunDeployment,
		usecase.NewListRecords,
		usecase.NewShowRecord,
		usecase.NewListNetworks,
		usecase.NewShowConfig,
		usecase.NewSetConfig,
		usecase.NewRemoveConfig,
		usecase.NewManageNode,

		// App
		NewApp,
	)
	return nil, nil
}
