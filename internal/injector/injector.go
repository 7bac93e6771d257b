//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"
	"github.com/zeusync/xrig/internal/config"
	"github.com/zeusync/xrig/internal/sim"
)

func InitializeEngine(cfg *config.Rig) (*sim.Engine, error) {
	wire.Build(sim.ProviderSet)
	return nil, nil
}
