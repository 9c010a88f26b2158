// Package wrappers implements environment wrappers which alter the
// action or observation stream of the environment they wrap. Each
// wrapper embeds the wrapped environment.Environment and delegates
// everything it does not change, so wrappers compose freely.
package wrappers

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/rltools/environment"
	"github.com/samuelfneumann/rltools/timestep"
)

// ActionRepeat wraps an environment so that each action is repeated
// for a fixed number of environmental steps. The rewards accumulated
// over the repeated steps are summed into the returned timestep, and
// the observation of the final step is returned. If the episode ends
// partway through a repeat, the remaining repeats are skipped.
//
// ActionRepeat itself implements the environment.Environment
// interface, and is therefore itself an Environment.
type ActionRepeat struct {
	environment.Environment
	times int
}

// NewActionRepeat returns a new ActionRepeat repeating each action
// times steps. The times parameter must be positive.
func NewActionRepeat(env environment.Environment,
	times int) (*ActionRepeat, error) {
	if times < 1 {
		return nil, fmt.Errorf("newActionRepeat: times must be positive, "+
			"got %v", times)
	}

	return &ActionRepeat{Environment: env, times: times}, nil
}

// Step repeats action in the wrapped environment, summing the rewards
// seen along the way into the returned timestep.
func (a *ActionRepeat) Step(action *mat.VecDense) (timestep.TimeStep, bool,
	error) {
	var step timestep.TimeStep
	var last bool
	var err error

	reward := 0.0
	for i := 0; i < a.times; i++ {
		step, last, err = a.Environment.Step(action)
		if err != nil {
			return timestep.TimeStep{}, true, fmt.Errorf("step: %w", err)
		}

		reward += step.Reward
		if last {
			break
		}
	}

	step.Reward = reward
	return step, last, nil
}
