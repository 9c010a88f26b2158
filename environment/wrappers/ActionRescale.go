package wrappers

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"

	"github.com/samuelfneumann/rltools/environment"
	"github.com/samuelfneumann/rltools/spec"
	"github.com/samuelfneumann/rltools/timestep"
	"github.com/samuelfneumann/rltools/utils/floatutils"
)

// ActionRescale wraps a continuous-action environment so that it
// accepts actions in [-1, 1] on every dimension, affinely rescaling
// them to the wrapped environment's action bounds before stepping.
// Incoming actions are clipped to the unit box first, so out-of-range
// actions never reach the wrapped environment.
//
// ActionRescale itself implements the environment.Environment
// interface, and is therefore itself an Environment.
type ActionRescale struct {
	environment.Environment
	bounds []r1.Interval
}

// NewActionRescale returns a new ActionRescale around env, which must
// have a continuous, bounded action specification.
func NewActionRescale(env environment.Environment) (*ActionRescale, error) {
	actionSpec := env.ActionSpec()
	if actionSpec.Cardinality != spec.Continuous {
		return nil, fmt.Errorf("newActionRescale: wrapped environment must " +
			"have continuous actions")
	}
	if actionSpec.LowerBound == nil || actionSpec.UpperBound == nil {
		return nil, fmt.Errorf("newActionRescale: wrapped environment must " +
			"have bounded actions")
	}

	dims := actionSpec.LowerBound.Len()
	bounds := make([]r1.Interval, dims)
	for i := 0; i < dims; i++ {
		bounds[i] = r1.Interval{
			Min: actionSpec.LowerBound.AtVec(i),
			Max: actionSpec.UpperBound.AtVec(i),
		}
	}

	return &ActionRescale{Environment: env, bounds: bounds}, nil
}

// Step rescales action from [-1, 1] to the wrapped environment's
// action bounds and steps the wrapped environment with the result.
func (a *ActionRescale) Step(action *mat.VecDense) (timestep.TimeStep, bool,
	error) {
	if action.Len() != len(a.bounds) {
		return timestep.TimeStep{}, true, fmt.Errorf("step: expected "+
			"%v-dimensional action, got %v", len(a.bounds), action.Len())
	}

	scaled := mat.NewVecDense(action.Len(), nil)
	for i := 0; i < action.Len(); i++ {
		unit := floatutils.Clip(action.AtVec(i), -1.0, 1.0)
		interval := a.bounds[i]
		value := interval.Min + (unit+1.0)*(interval.Max-interval.Min)/2.0
		scaled.SetVec(i, floatutils.ClipInterval(value, interval))
	}

	return a.Environment.Step(scaled)
}

// ActionSpec reports the unit action box this wrapper accepts
func (a *ActionRescale) ActionSpec() spec.Environment {
	actionSpec := a.Environment.ActionSpec()

	dims := len(a.bounds)
	low := make([]float64, dims)
	high := make([]float64, dims)
	for i := range a.bounds {
		low[i] = -1.0
		high[i] = 1.0
	}

	actionSpec.LowerBound = mat.NewVecDense(dims, low)
	actionSpec.UpperBound = mat.NewVecDense(dims, high)
	return actionSpec
}
