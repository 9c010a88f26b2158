package gym_test

import (
	"os"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/rltools/environment/gym"
	ts "github.com/samuelfneumann/rltools/timestep"
)

// TestNew steps real Gym environments and therefore needs a working
// Python installation with gym available. Set RLTOOLS_TEST_GYM to run
// it.
func TestNew(t *testing.T) {
	if os.Getenv("RLTOOLS_TEST_GYM") == "" {
		t.Skip("set RLTOOLS_TEST_GYM to run Gym integration tests")
	}

	envs := []string{
		"MountainCarContinuous-v0",
		"Pendulum-v0",
	}

	for _, envName := range envs {
		env, step, err := gym.New(envName, 0.99, 123)
		if err != nil {
			t.Fatalf("env %v: %v", envName, err)
		}
		if (step == ts.TimeStep{}) {
			t.Error("new: first timestep should not be empty")
		}

		size := env.ActionSpec().LowerBound.Len()
		for i := 0; i < 15; i++ {
			next, done, err := env.Step(mat.NewVecDense(size, nil))
			if err != nil {
				t.Errorf("env %v: %v", envName, err)
			} else if (next == ts.TimeStep{}) {
				t.Errorf("step: timestep %v should not be empty", i)
			}

			if done {
				if _, err := env.Reset(); err != nil {
					t.Errorf("reset: %v", err)
				}
			}
		}

		if err := env.Close(); err != nil {
			t.Errorf("close: %v", err)
		}
	}
}
