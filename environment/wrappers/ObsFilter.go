package wrappers

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/rltools/environment"
	"github.com/samuelfneumann/rltools/spec"
	"github.com/samuelfneumann/rltools/timestep"
)

// ObsFilter wraps an environment, selecting a subset of the
// observation components in a caller-chosen order. Components not
// named by the filter never reach the agent.
//
// ObsFilter itself implements the environment.Environment interface,
// and is therefore itself an Environment.
type ObsFilter struct {
	environment.Environment
	indices []int
}

// NewObsFilter returns a new ObsFilter keeping the observation
// components at the argument indices, in the given order. Indices must
// be non-empty and within the wrapped observation specification.
func NewObsFilter(env environment.Environment,
	indices []int) (*ObsFilter, error) {
	if len(indices) == 0 {
		return nil, fmt.Errorf("newObsFilter: indices cannot be empty")
	}

	dim := env.ObservationSpec().Shape.Len()
	for _, index := range indices {
		if index < 0 || index >= dim {
			return nil, fmt.Errorf("newObsFilter: index %v out of range "+
				"[0, %v)", index, dim)
		}
	}

	kept := make([]int, len(indices))
	copy(kept, indices)
	return &ObsFilter{Environment: env, indices: kept}, nil
}

// Reset resets the wrapped environment and filters the first
// observation of the new episode.
func (o *ObsFilter) Reset() (timestep.TimeStep, error) {
	step, err := o.Environment.Reset()
	if err != nil {
		return timestep.TimeStep{}, fmt.Errorf("reset: %w", err)
	}

	step.Observation = o.filter(step.Observation)
	return step, nil
}

// Step steps the wrapped environment and filters the resulting
// observation.
func (o *ObsFilter) Step(action *mat.VecDense) (timestep.TimeStep, bool,
	error) {
	step, last, err := o.Environment.Step(action)
	if err != nil {
		return timestep.TimeStep{}, true, fmt.Errorf("step: %w", err)
	}

	step.Observation = o.filter(step.Observation)
	return step, last, nil
}

// ObservationSpec reports the filtered observation specification
func (o *ObsFilter) ObservationSpec() spec.Environment {
	obsSpec := o.Environment.ObservationSpec()

	obsSpec.Shape = o.filter(obsSpec.Shape)
	if obsSpec.LowerBound != nil {
		obsSpec.LowerBound = o.filter(obsSpec.LowerBound)
	}
	if obsSpec.UpperBound != nil {
		obsSpec.UpperBound = o.filter(obsSpec.UpperBound)
	}
	return obsSpec
}

// filter selects the kept components of an observation
func (o *ObsFilter) filter(obs mat.Vector) mat.Vector {
	data := make([]float64, len(o.indices))
	for i, index := range o.indices {
		data[i] = obs.AtVec(index)
	}
	return mat.NewVecDense(len(data), data)
}
