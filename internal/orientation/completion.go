package orientation

import "github.com/lshigami/orientation-event/internal/model"

// CompletedSteps returns the required steps that hold non-empty data, in
// the order of RequiredSteps.
func CompletedSteps(test *model.OrientationTest) []string {
	done := []string{}
	if test == nil || len(test.StepData) == 0 {
		return done
	}
	data := Data(test.StepData)
	for _, s := range steps {
		if s.completed(data) {
			done = append(done, string(s.kind))
		}
	}
	return done
}

// AllStepsCompleted is the finished signal used by reports, stats, listings
// and check-in. The IsCompleted column is not consulted.
func AllStepsCompleted(test *model.OrientationTest) bool {
	return len(CompletedSteps(test)) == len(steps)
}

func (s step) completed(d Data) bool {
	for _, key := range s.keys {
		if !isEmpty(d[key]) {
			return true
		}
	}
	return false
}
