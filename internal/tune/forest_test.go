package tune

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func linearRows(n int) []Row {
	rows := make([]Row, n)
	for i := 0; i < n; i++ {
		x := float64(i) / float64(n)
		rows[i] = Row{Features: map[string]float64{"x": x}, Target: 2*x + 1}
	}
	return rows
}

func TestFit_PredictsWithinRangeOfTargets(t *testing.T) {
	rows := linearRows(40)
	forest := Fit(rows, ForestConfig{Trees: 15, SampleSeed: 7})

	pred := forest.Predict(map[string]float64{"x": 0.5})
	assert.GreaterOrEqual(t, pred, 1.0)
	assert.LessOrEqual(t, pred, 3.0)
}

func TestEvaluate_FitsBetterThanMeanBaseline(t *testing.T) {
	rows := linearRows(50)
	forest := Fit(rows, DefaultForestConfig())

	rSquared, mse := forest.Evaluate(rows)
	assert.Greater(t, rSquared, 0.0)
	assert.GreaterOrEqual(t, mse, 0.0)
}

func TestFit_EmptyRowsProducesZeroPrediction(t *testing.T) {
	forest := Fit(nil, DefaultForestConfig())
	assert.Equal(t, 0.0, forest.Predict(map[string]float64{"x": 1}))
}

func TestCandidateThresholds_SkipsDuplicateValues(t *testing.T) {
	rows := []Row{
		{Features: map[string]float64{"x": 1}, Target: 1},
		{Features: map[string]float64{"x": 1}, Target: 2},
		{Features: map[string]float64{"x": 2}, Target: 3},
	}
	thresholds := candidateThresholds(rows, "x")
	assert.Equal(t, []float64{1.5}, thresholds)
}
