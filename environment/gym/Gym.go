// Package gym provides access to OpenAI Gym environments through the
// environment.Environment interface.
//
// All environments in the Classic Control and MuJoCo suites can be
// used, with their default tasks and episode cutoffs.
//
// This is made possible through the Go bindings for OpenAI Gym,
// found at https://github.com/samuelfneumann/GoGym.
package gym

import (
	"fmt"

	"github.com/samuelfneumann/gogym"
	"gonum.org/v1/gonum/mat"

	env "github.com/samuelfneumann/rltools/environment"
	"github.com/samuelfneumann/rltools/spec"
	ts "github.com/samuelfneumann/rltools/timestep"
)

// GymEnv implements access to an OpenAI Gym environment using GoGym
type GymEnv struct {
	gogym.Environment

	currentStep ts.TimeStep
	discount    float64
}

// New returns a new GymEnv with the given name, which must be a legal
// name from the OpenAI Gym suite, along with the first timestep of the
// environment.
func New(name string, discount float64, seed uint64) (env.Environment,
	ts.TimeStep, error) {
	goGymEnv, err := gogym.Make(name)
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("new: could not create "+
			"environment: %v", err)
	}

	goGymEnv.Seed(int(seed))
	obs, err := goGymEnv.Reset()
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("new: could not reset "+
			"environment: %v", err)
	}

	gymEnv := &GymEnv{
		Environment: goGymEnv,
		discount:    discount,
	}

	t := ts.New(ts.First, 0, discount, obs, 0)
	gymEnv.currentStep = t

	return gymEnv, t, nil
}

// Step takes a single environmental step
func (g *GymEnv) Step(a *mat.VecDense) (ts.TimeStep, bool, error) {
	obs, reward, done, err := g.Environment.Step(a)
	if err != nil {
		return ts.TimeStep{}, true, fmt.Errorf("step: could not step "+
			"GoGym environment: %v", err)
	}

	t := ts.New(ts.Mid, reward, g.discount, obs, g.currentStep.Number+1)
	if done {
		t.StepType = ts.Last
	}
	g.currentStep = t

	return t, done, nil
}

// Reset resets the environment to some starting state
func (g *GymEnv) Reset() (ts.TimeStep, error) {
	obs, err := g.Environment.Reset()
	if err != nil {
		return ts.TimeStep{}, fmt.Errorf("reset: could not reset "+
			"environment: %v", err)
	}

	t := ts.New(ts.First, 0, g.discount, obs, 0)
	g.currentStep = t

	return t, nil
}

// CurrentTimeStep returns the current timestep in the environment
func (g *GymEnv) CurrentTimeStep() ts.TimeStep {
	return g.currentStep
}

// ObservationSpec returns the observation spec of the environment
func (g *GymEnv) ObservationSpec() spec.Environment {
	return spaceSpec(g.ObservationSpace(), spec.Observation)
}

// ActionSpec returns the action spec of the environment
func (g *GymEnv) ActionSpec() spec.Environment {
	return spaceSpec(g.ActionSpace(), spec.Action)
}

// DiscountSpec returns the discount specification of the environment
func (g *GymEnv) DiscountSpec() spec.Environment {
	shape := mat.NewVecDense(1, nil)
	bound := mat.NewVecDense(1, []float64{g.discount})

	return spec.NewEnvironment(shape, spec.Discount, bound, bound,
		spec.Continuous)
}

// RewardSpec returns the reward specification of the environment. Gym
// does not expose reward ranges, so the bounds are unset.
func (g *GymEnv) RewardSpec() spec.Environment {
	shape := mat.NewVecDense(1, nil)

	return spec.NewEnvironment(shape, spec.Reward, nil, nil,
		spec.Continuous)
}

// Close performs resource cleanup after the environment is no longer
// needed
func (g *GymEnv) Close() error {
	g.Environment.Close()
	return nil
}

// spaceSpec converts a GoGym space into an environment specification
func spaceSpec(space gogym.Space, specType spec.SpecType) spec.Environment {
	var low, high, shape *mat.VecDense
	cardinality := spec.Continuous

	switch space.(type) {
	case *gogym.DiscreteSpace:
		cardinality = spec.Discrete
		low = space.Low()[0]
		high = space.High()[0]
		shape = mat.NewVecDense(low.Len(), nil)
	case *gogym.BoxSpace:
		low = space.Low()[0]
		high = space.High()[0]
		shape = mat.NewVecDense(low.Len(), nil)
	default:
		panic("spaceSpec: invalid space type, package gym supports " +
			"only GoGym's BoxSpace or DiscreteSpace")
	}

	return spec.NewEnvironment(shape, specType, low, high, cardinality)
}
