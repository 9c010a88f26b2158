package wrappers

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"

	"github.com/samuelfneumann/rltools/environment"
	"github.com/samuelfneumann/rltools/spec"
	"github.com/samuelfneumann/rltools/timestep"
)

// DiscreteActions wraps a continuous-action environment, exposing a
// single discrete action in {0, ..., bins^dims - 1}. Each discrete
// action indexes one point of an evenly spaced grid with bins points
// per dimension over the wrapped environment's action box, so a
// discrete-action agent can act in a continuous-action environment.
//
// DiscreteActions itself implements the environment.Environment
// interface, and is therefore itself an Environment.
type DiscreteActions struct {
	environment.Environment
	bins   int
	bounds []r1.Interval
	count  int
}

// NewDiscreteActions returns a new DiscreteActions with bins grid
// points per action dimension. The bins parameter must be at least 2,
// and env must have a continuous, bounded action specification.
func NewDiscreteActions(env environment.Environment,
	bins int) (*DiscreteActions, error) {
	if bins < 2 {
		return nil, fmt.Errorf("newDiscreteActions: need at least 2 bins "+
			"per dimension, got %v", bins)
	}

	actionSpec := env.ActionSpec()
	if actionSpec.Cardinality != spec.Continuous {
		return nil, fmt.Errorf("newDiscreteActions: wrapped environment " +
			"must have continuous actions")
	}
	if actionSpec.LowerBound == nil || actionSpec.UpperBound == nil {
		return nil, fmt.Errorf("newDiscreteActions: wrapped environment " +
			"must have bounded actions")
	}

	dims := actionSpec.LowerBound.Len()
	bounds := make([]r1.Interval, dims)
	count := 1
	for i := 0; i < dims; i++ {
		bounds[i] = r1.Interval{
			Min: actionSpec.LowerBound.AtVec(i),
			Max: actionSpec.UpperBound.AtVec(i),
		}
		count *= bins
	}

	return &DiscreteActions{
		Environment: env,
		bins:        bins,
		bounds:      bounds,
		count:       count,
	}, nil
}

// Step decodes the discrete action index into its grid point in the
// wrapped environment's action box and steps the wrapped environment
// with the continuous action.
func (d *DiscreteActions) Step(action *mat.VecDense) (timestep.TimeStep, bool,
	error) {
	if action.Len() != 1 {
		return timestep.TimeStep{}, true, fmt.Errorf("step: expected a "+
			"single discrete action, got %v dimensions", action.Len())
	}

	index := int(action.AtVec(0))
	if index < 0 || index >= d.count {
		return timestep.TimeStep{}, true, fmt.Errorf("step: action %v "+
			"out of range [0, %v)", index, d.count)
	}

	continuous := mat.NewVecDense(len(d.bounds), nil)
	for i, interval := range d.bounds {
		digit := index % d.bins
		index /= d.bins

		width := (interval.Max - interval.Min) / float64(d.bins-1)
		continuous.SetVec(i, interval.Min+float64(digit)*width)
	}

	return d.Environment.Step(continuous)
}

// ActionSpec reports the discrete action specification this wrapper
// accepts: a single index in [0, bins^dims - 1]
func (d *DiscreteActions) ActionSpec() spec.Environment {
	shape := mat.NewVecDense(1, nil)
	lowerBound := mat.NewVecDense(1, nil)
	upperBound := mat.NewVecDense(1, []float64{float64(d.count - 1)})

	return spec.NewEnvironment(shape, spec.Action, lowerBound, upperBound,
		spec.Discrete)
}
