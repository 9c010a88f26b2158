package wrappers

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/rltools/spec"
	"github.com/samuelfneumann/rltools/timestep"
)

// testEnv is a deterministic environment for exercising wrappers. The
// state starts at the origin, each action is added to the state, the
// reward is the sum of the action components, and episodes end after
// cutoff steps.
type testEnv struct {
	state  *mat.VecDense
	steps  int
	cutoff int
	closed bool
}

func newTestEnv(cutoff int) *testEnv {
	return &testEnv{cutoff: cutoff}
}

func (e *testEnv) Reset() (timestep.TimeStep, error) {
	e.state = mat.NewVecDense(2, nil)
	e.steps = 0
	return timestep.New(timestep.First, 0, 1.0, mat.VecDenseCopyOf(e.state),
		0), nil
}

func (e *testEnv) Step(action *mat.VecDense) (timestep.TimeStep, bool, error) {
	reward := 0.0
	for i := 0; i < action.Len(); i++ {
		e.state.SetVec(i, e.state.AtVec(i)+action.AtVec(i))
		reward += action.AtVec(i)
	}
	e.steps++

	stepType := timestep.Mid
	if e.steps >= e.cutoff {
		stepType = timestep.Last
	}
	step := timestep.New(stepType, reward, 1.0, mat.VecDenseCopyOf(e.state),
		e.steps)
	return step, step.Last(), nil
}

func (e *testEnv) ObservationSpec() spec.Environment {
	return spec.NewEnvironment(mat.NewVecDense(2, nil), spec.Observation,
		nil, nil, spec.Continuous)
}

func (e *testEnv) ActionSpec() spec.Environment {
	lowerBound := mat.NewVecDense(2, []float64{-2.0, -2.0})
	upperBound := mat.NewVecDense(2, []float64{2.0, 2.0})
	return spec.NewEnvironment(mat.NewVecDense(2, nil), spec.Action,
		lowerBound, upperBound, spec.Continuous)
}

func (e *testEnv) DiscountSpec() spec.Environment {
	bound := mat.NewVecDense(1, []float64{1.0})
	return spec.NewEnvironment(mat.NewVecDense(1, nil), spec.Discount,
		bound, bound, spec.Continuous)
}

func (e *testEnv) RewardSpec() spec.Environment {
	return spec.NewEnvironment(mat.NewVecDense(1, nil), spec.Reward,
		nil, nil, spec.Continuous)
}

func (e *testEnv) Close() error {
	e.closed = true
	return nil
}

// expectObs fails the test if obs does not equal want
func expectObs(t *testing.T, obs mat.Vector, want []float64) {
	t.Helper()
	if obs.Len() != len(want) {
		t.Fatalf("expected observation %v, got %v", want, obs)
	}
	for i, value := range want {
		if math.Abs(obs.AtVec(i)-value) > 1e-12 {
			t.Fatalf("expected observation %v, got %v", want, obs)
		}
	}
}

func TestActionRepeat(t *testing.T) {
	env, err := NewActionRepeat(newTestEnv(10), 3)
	if err != nil {
		t.Fatalf("newActionRepeat: %v", err)
	}
	if _, err := env.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}

	step, last, err := env.Step(mat.NewVecDense(2, []float64{1.0, 1.0}))
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if last {
		t.Error("episode should not have ended")
	}
	if step.Reward != 6.0 {
		t.Errorf("expected summed reward 6, got %v", step.Reward)
	}
	expectObs(t, step.Observation, []float64{3.0, 3.0})
	if step.Number != 3 {
		t.Errorf("expected 3 underlying steps, got %v", step.Number)
	}
}

func TestActionRepeatStopsAtEpisodeEnd(t *testing.T) {
	env, err := NewActionRepeat(newTestEnv(4), 3)
	if err != nil {
		t.Fatalf("newActionRepeat: %v", err)
	}
	if _, err := env.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}

	if _, _, err := env.Step(mat.NewVecDense(2,
		[]float64{1.0, 1.0})); err != nil {
		t.Fatalf("step: %v", err)
	}

	// Only one of the three repeats fits before the cutoff
	step, last, err := env.Step(mat.NewVecDense(2, []float64{1.0, 1.0}))
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if !last {
		t.Error("episode should have ended at the cutoff")
	}
	if step.Reward != 2.0 {
		t.Errorf("expected reward 2 for the single repeat, got %v",
			step.Reward)
	}
}

func TestActionRepeatInvalidTimes(t *testing.T) {
	if _, err := NewActionRepeat(newTestEnv(10), 0); err == nil {
		t.Error("expected an error for non-positive times")
	}
}

func TestActionRescale(t *testing.T) {
	env, err := NewActionRescale(newTestEnv(10))
	if err != nil {
		t.Fatalf("newActionRescale: %v", err)
	}
	if _, err := env.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}

	// The unit box [-1, 1] maps onto the wrapped bounds [-2, 2]
	step, _, err := env.Step(mat.NewVecDense(2, []float64{-1.0, 0.5}))
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	expectObs(t, step.Observation, []float64{-2.0, 1.0})

	// Out-of-range actions are clipped to the unit box first
	step, _, err = env.Step(mat.NewVecDense(2, []float64{5.0, 0.0}))
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	expectObs(t, step.Observation, []float64{0.0, 1.0})
}

func TestActionRescaleActionSpec(t *testing.T) {
	env, err := NewActionRescale(newTestEnv(10))
	if err != nil {
		t.Fatalf("newActionRescale: %v", err)
	}

	actionSpec := env.ActionSpec()
	for i := 0; i < actionSpec.LowerBound.Len(); i++ {
		if actionSpec.LowerBound.AtVec(i) != -1.0 ||
			actionSpec.UpperBound.AtVec(i) != 1.0 {
			t.Errorf("expected unit bounds, got [%v, %v]",
				actionSpec.LowerBound.AtVec(i), actionSpec.UpperBound.AtVec(i))
		}
	}
}

func TestDiscreteActions(t *testing.T) {
	env, err := NewDiscreteActions(newTestEnv(10), 3)
	if err != nil {
		t.Fatalf("newDiscreteActions: %v", err)
	}
	if _, err := env.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}

	// Index 5 in base 3 is (2, 1): dimension 0 takes grid point 2 of
	// {-2, 0, 2} and dimension 1 takes grid point 1
	step, _, err := env.Step(mat.NewVecDense(1, []float64{5.0}))
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	expectObs(t, step.Observation, []float64{2.0, 0.0})
}

func TestDiscreteActionsActionSpec(t *testing.T) {
	env, err := NewDiscreteActions(newTestEnv(10), 3)
	if err != nil {
		t.Fatalf("newDiscreteActions: %v", err)
	}

	actionSpec := env.ActionSpec()
	if actionSpec.Cardinality != spec.Discrete {
		t.Error("expected a discrete action spec")
	}
	if actionSpec.UpperBound.AtVec(0) != 8.0 {
		t.Errorf("expected 9 actions, got upper bound %v",
			actionSpec.UpperBound.AtVec(0))
	}
}

func TestDiscreteActionsOutOfRange(t *testing.T) {
	env, err := NewDiscreteActions(newTestEnv(10), 3)
	if err != nil {
		t.Fatalf("newDiscreteActions: %v", err)
	}
	if _, err := env.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}

	if _, _, err := env.Step(mat.NewVecDense(1, []float64{9.0})); err == nil {
		t.Error("expected an error for an out-of-range action")
	}
}

func TestFrameStack(t *testing.T) {
	env, err := NewFrameStack(newTestEnv(10), 3)
	if err != nil {
		t.Fatalf("newFrameStack: %v", err)
	}

	step, err := env.Reset()
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	expectObs(t, step.Observation, []float64{0, 0, 0, 0, 0, 0})

	step, _, err = env.Step(mat.NewVecDense(2, []float64{1.0, 1.0}))
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	expectObs(t, step.Observation, []float64{0, 0, 0, 0, 1, 1})

	step, _, err = env.Step(mat.NewVecDense(2, []float64{1.0, 0.0}))
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	expectObs(t, step.Observation, []float64{0, 0, 1, 1, 2, 1})

	if env.ObservationSpec().Shape.Len() != 6 {
		t.Errorf("expected stacked shape 6, got %v",
			env.ObservationSpec().Shape.Len())
	}
}

func TestFrameStackStepBeforeReset(t *testing.T) {
	env, err := NewFrameStack(newTestEnv(10), 2)
	if err != nil {
		t.Fatalf("newFrameStack: %v", err)
	}

	if _, _, err := env.Step(mat.NewVecDense(2, nil)); err == nil {
		t.Error("expected an error when stepping before Reset")
	}
}

func TestObsFilter(t *testing.T) {
	env, err := NewObsFilter(newTestEnv(10), []int{1, 0})
	if err != nil {
		t.Fatalf("newObsFilter: %v", err)
	}

	step, err := env.Reset()
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	expectObs(t, step.Observation, []float64{0, 0})

	step, _, err = env.Step(mat.NewVecDense(2, []float64{1.0, 2.0}))
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	expectObs(t, step.Observation, []float64{2.0, 1.0})

	if env.ObservationSpec().Shape.Len() != 2 {
		t.Errorf("expected filtered shape 2, got %v",
			env.ObservationSpec().Shape.Len())
	}
}

func TestObsFilterInvalidIndex(t *testing.T) {
	if _, err := NewObsFilter(newTestEnv(10), []int{2}); err == nil {
		t.Error("expected an error for an out-of-range index")
	}
	if _, err := NewObsFilter(newTestEnv(10), nil); err == nil {
		t.Error("expected an error for empty indices")
	}
}

func TestWrappersCompose(t *testing.T) {
	inner := newTestEnv(10)
	rescaled, err := NewActionRescale(inner)
	if err != nil {
		t.Fatalf("newActionRescale: %v", err)
	}
	env, err := NewFrameStack(rescaled, 2)
	if err != nil {
		t.Fatalf("newFrameStack: %v", err)
	}

	if _, err := env.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	step, _, err := env.Step(mat.NewVecDense(2, []float64{1.0, 1.0}))
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	expectObs(t, step.Observation, []float64{0, 0, 2, 2})

	if err := env.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !inner.closed {
		t.Error("expected Close to reach the wrapped environment")
	}
}
