package relaxation

import (
	"github.com/poiesic/concierge/core"
)

// Monitor provides hooks to observe the relaxation process.
// Implement this interface to track intermediate steps and results during resolution.
type Monitor interface {
	Start(selections core.Selections)
	Queried(working core.Selections, found int)
	Relaxed(field core.Field, working core.Selections)
	Failed(err error)
	Finish(result *Result)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = noopMonitor{}

func (noopMonitor) Start(_ core.Selections)                {}
func (noopMonitor) Queried(_ core.Selections, _ int)       {}
func (noopMonitor) Relaxed(_ core.Field, _ core.Selections) {}
func (noopMonitor) Failed(_ error)                         {}
func (noopMonitor) Finish(_ *Result)                       {}
