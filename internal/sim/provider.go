package sim

import (
	"github.com/google/wire"
	"github.com/zeusync/xrig/internal/config"
	"github.com/zeusync/xrig/internal/core/observability/log"
	"github.com/zeusync/xrig/internal/core/observability/metrics"
)

var ProviderSet = wire.NewSet(ProvideLogger, metrics.New, New)

// ProvideLogger builds the engine logger from the rig's log level, falling
// back to info when the level is empty or unknown.
func ProvideLogger(cfg *config.Rig) log.Log {
	level, err := log.ParseLevel(cfg.Simulation.LogLevel)
	if err != nil {
		level = log.LevelInfo
	}
	return log.New(level)
}
