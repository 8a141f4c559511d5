package coordinator

import (
	"fmt"

	"github.com/dreamware/pokerd/internal/poker"
)

// DefaultMaxSessions is the global ceiling on simultaneously open sessions.
const DefaultMaxSessions = 3

// CapacityStatus is the read-only view of the capacity guard.
type CapacityStatus struct {
	Active     int  `json:"active"`
	Max        int  `json:"max"`
	AtCapacity bool `json:"at_capacity"`
}

// CapacityGuard counts open sessions against a fixed ceiling.
//
// It has no lock of its own: the coordinator only calls it while holding the
// registry lock, so that the admission check and the table insert happen as
// one step and two concurrent creations cannot both slip under the ceiling.
type CapacityGuard struct {
	active int
	max    int
}

// NewCapacityGuard creates a guard admitting at most max sessions.
func NewCapacityGuard(max int) *CapacityGuard {
	if max <= 0 {
		max = DefaultMaxSessions
	}
	return &CapacityGuard{max: max}
}

// TryAdmit takes a slot, or reports why it cannot.
func (g *CapacityGuard) TryAdmit() error {
	if g.active >= g.max {
		return fmt.Errorf("%w: %d of %d sessions active", poker.ErrCapacityExceeded, g.active, g.max)
	}
	g.active++
	return nil
}

// Release returns a slot taken by TryAdmit.
func (g *CapacityGuard) Release() {
	if g.active > 0 {
		g.active--
	}
}

// Status reports the current counts.
func (g *CapacityGuard) Status() CapacityStatus {
	return CapacityStatus{
		Active:     g.active,
		Max:        g.max,
		AtCapacity: g.active >= g.max,
	}
}
