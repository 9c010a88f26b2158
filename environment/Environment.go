// Package environment outlines the interfaces needed to implement and
// wrap concrete environments
package environment

import (
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/rltools/spec"
	"github.com/samuelfneumann/rltools/timestep"
)

// Starter implements a distribution of starting states and samples
// starting states for environments
type Starter interface {
	Start() mat.Vector
}

// Environment implements a simulated environment that an agent
// interacts with through Reset and Step. Environments start ready to
// use after Reset has been called once.
type Environment interface {
	// Reset resets the environment between episodes and returns the
	// first timestep of the new episode
	Reset() (timestep.TimeStep, error)

	// Step takes one environmental step given an action and returns
	// the next timestep and whether the episode has ended
	Step(action *mat.VecDense) (timestep.TimeStep, bool, error)

	ObservationSpec() spec.Environment
	ActionSpec() spec.Environment
	DiscountSpec() spec.Environment
	RewardSpec() spec.Environment

	// Close performs resource cleanup once the environment is no
	// longer needed
	Close() error
}
