package adapters

import (
	"github.com/google/wire"

	"github.com/trebuchet-org/tally-cli/internal/adapters/clock"
	internalconfig "github.com/trebuchet-org/tally-cli/internal/adapters/config"
	"github.com/trebuchet-org/tally-cli/internal/adapters/fs"
	"github.com/trebuchet-org/tally-cli/internal/adapters/interactive"
	"github.com/trebuchet-org/tally-cli/internal/usecase"
)

// FSSet provides filesystem-based implementations
var FSSet = wire.NewSet(
	fs.NewSnapshotStoreAdapter,
	wire.Bind(new(usecase.UTxOSource), new(*fs.SnapshotStoreAdapter)),

	fs.NewExecutionIndexAdapter,
	wire.Bind(new(usecase.ExecutionIndex), new(*fs.ExecutionIndexAdapter)),
	wire.Bind(new(usecase.ExecutionRecorder), new(*fs.ExecutionIndexAdapter)),

	fs.NewPlanWriterAdapter,
	wire.Bind(new(usecase.PlanWriter), new(*fs.PlanWriterAdapter)),

	fs.NewLocalConfigStoreAdapter,
	wire.Bind(new(usecase.LocalConfigStore), new(*fs.LocalConfigStoreAdapter)),
)

// ConfigSet provides configuration-based implementations
var ConfigSet = wire.NewSet(
	internalconfig.NewScriptRegistryAdapter,
	wire.Bind(new(usecase.ScriptRegistry), new(*internalconfig.ScriptRegistryAdapter)),
)

// InteractiveSet provides interactive implementations
var InteractiveSet = wire.NewSet(
	interactive.NewSelectorAdapter,
	wire.Bind(new(usecase.ProposalSelector), new(*interactive.SelectorAdapter)),
)

// ClockSet provides the clock
var ClockSet = wire.NewSet(
	clock.NewClockAdapter,
	wire.Bind(new(usecase.Clock), new(*clock.ClockAdapter)),
)

// AllAdapters includes all adapter sets
var AllAdapters = wire.NewSet(
	FSSet,
	ConfigSet,
	InteractiveSet,
	ClockSet,
)
