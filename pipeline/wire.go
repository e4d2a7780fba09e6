package pipeline

import "github.com/google/wire"

// Reconciliation provides the event-processing graph: both workflows, the
// escalation watch and the dispatcher that routes callbacks to them. The
// EntityStore, match service and org id come from the consuming set.
var Reconciliation = wire.NewSet(
	NewAccountWorkflow,
	NewOrderWorkflow,
	NewEscalation,
	NewDispatcher,
)
