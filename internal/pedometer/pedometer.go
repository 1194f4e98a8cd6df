package pedometer

import (
	"sync"

	"github.com/dkovacevic/fittrack/internal/telemetry/metrics"
)

// Pedometer is a monotonically increasing step counter. Step events
// originate outside the core (the old desktop client fired one per
// space-key press, now it is a POST per event). The count is
// process-lifetime state, not tied to any day and not derived from
// workouts logged in step units.
type Pedometer struct {
	mu    sync.Mutex
	steps int

	metricsManager *metrics.Manager
}

func New(metricsManager *metrics.Manager) *Pedometer {
	return &Pedometer{
		metricsManager: metricsManager,
	}
}

// StepTaken registers one step event and returns the new total.
func (p *Pedometer) StepTaken() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.steps++
	if p.metricsManager != nil {
		p.metricsManager.CounterSteps.Inc()
	}
	return p.steps
}

func (p *Pedometer) Steps() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.steps
}

// Set overrides the counter, used for reset.
func (p *Pedometer) Set(steps int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.steps = steps
}
