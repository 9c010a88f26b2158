package wrappers

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/rltools/environment"
	"github.com/samuelfneumann/rltools/spec"
	"github.com/samuelfneumann/rltools/timestep"
)

// FrameStack wraps an environment so that observations are the
// concatenation of the most recent k frames, oldest first. On Reset
// the stack is filled with k copies of the episode's first
// observation, so the stacked observation always has k*dim components.
//
// FrameStack itself implements the environment.Environment interface,
// and is therefore itself an Environment.
type FrameStack struct {
	environment.Environment
	k      int
	dim    int
	frames [][]float64
}

// NewFrameStack returns a new FrameStack stacking the k most recent
// observations. The k parameter must be positive.
func NewFrameStack(env environment.Environment, k int) (*FrameStack, error) {
	if k < 1 {
		return nil, fmt.Errorf("newFrameStack: k must be positive, got %v", k)
	}

	return &FrameStack{
		Environment: env,
		k:           k,
		dim:         env.ObservationSpec().Shape.Len(),
	}, nil
}

// Reset resets the wrapped environment and fills the stack with the
// first observation of the new episode.
func (f *FrameStack) Reset() (timestep.TimeStep, error) {
	step, err := f.Environment.Reset()
	if err != nil {
		return timestep.TimeStep{}, fmt.Errorf("reset: %w", err)
	}

	frame := frameOf(step.Observation)
	f.frames = f.frames[:0]
	for i := 0; i < f.k; i++ {
		f.frames = append(f.frames, frame)
	}

	step.Observation = f.stacked()
	return step, nil
}

// Step steps the wrapped environment, pushes the new observation onto
// the stack, and returns the stacked observation.
func (f *FrameStack) Step(action *mat.VecDense) (timestep.TimeStep, bool,
	error) {
	if len(f.frames) == 0 {
		return timestep.TimeStep{}, true, fmt.Errorf("step: environment " +
			"must be Reset before Step")
	}

	step, last, err := f.Environment.Step(action)
	if err != nil {
		return timestep.TimeStep{}, true, fmt.Errorf("step: %w", err)
	}

	f.frames = append(f.frames[1:], frameOf(step.Observation))
	step.Observation = f.stacked()
	return step, last, nil
}

// ObservationSpec scales the wrapped observation specification by the
// stack size k
func (f *FrameStack) ObservationSpec() spec.Environment {
	obsSpec := f.Environment.ObservationSpec()

	obsSpec.Shape = tile(obsSpec.Shape, f.k)
	obsSpec.LowerBound = tile(obsSpec.LowerBound, f.k)
	obsSpec.UpperBound = tile(obsSpec.UpperBound, f.k)
	return obsSpec
}

// stacked concatenates the stored frames, oldest first
func (f *FrameStack) stacked() mat.Vector {
	data := make([]float64, 0, f.k*f.dim)
	for _, frame := range f.frames {
		data = append(data, frame...)
	}
	return mat.NewVecDense(len(data), data)
}

// frameOf copies an observation into a raw frame
func frameOf(obs mat.Vector) []float64 {
	frame := make([]float64, obs.Len())
	for i := range frame {
		frame[i] = obs.AtVec(i)
	}
	return frame
}

// tile repeats a vector k times end to end, passing nil through
func tile(v mat.Vector, k int) mat.Vector {
	if v == nil {
		return nil
	}

	data := make([]float64, 0, v.Len()*k)
	for i := 0; i < k; i++ {
		for j := 0; j < v.Len(); j++ {
			data = append(data, v.AtVec(j))
		}
	}
	return mat.NewVecDense(len(data), data)
}
