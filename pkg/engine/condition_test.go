package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexuslab/vigil/pkg/models"
)

func floatPtr(v float64) *float64 {
	return &v
}

func TestEvaluateCondition(t *testing.T) {
	tests := []struct {
		name         string
		value        float64
		operator     models.Operator
		threshold    float64
		thresholdMax *float64
		want         bool
	}{
		{name: "greater than true", value: 40, operator: models.OperatorGreaterThan, threshold: 35, want: true},
		{name: "greater than boundary is false", value: 35, operator: models.OperatorGreaterThan, threshold: 35, want: false},
		{name: "less than true", value: 20, operator: models.OperatorLessThan, threshold: 35, want: true},
		{name: "less than boundary is false", value: 35, operator: models.OperatorLessThan, threshold: 35, want: false},
		{name: "greater or equal boundary is true", value: 35, operator: models.OperatorGreaterOrEqual, threshold: 35, want: true},
		{name: "less or equal boundary is true", value: 35, operator: models.OperatorLessOrEqual, threshold: 35, want: true},
		{name: "equals within tolerance", value: 7.00005, operator: models.OperatorEquals, threshold: 7.0, want: true},
		{name: "equals outside tolerance", value: 7.1, operator: models.OperatorEquals, threshold: 7.0, want: false},
		{name: "not equals within tolerance", value: 7.00005, operator: models.OperatorNotEquals, threshold: 7.0, want: false},
		{name: "not equals outside tolerance", value: 7.1, operator: models.OperatorNotEquals, threshold: 7.0, want: true},
		{name: "between inside", value: 25, operator: models.OperatorBetween, threshold: 20, thresholdMax: floatPtr(30), want: true},
		{name: "between lower bound inclusive", value: 20, operator: models.OperatorBetween, threshold: 20, thresholdMax: floatPtr(30), want: true},
		{name: "between upper bound inclusive", value: 30, operator: models.OperatorBetween, threshold: 20, thresholdMax: floatPtr(30), want: true},
		{name: "between just above upper bound", value: 30.01, operator: models.OperatorBetween, threshold: 20, thresholdMax: floatPtr(30), want: false},
		{name: "between without max collapses to point", value: 20, operator: models.OperatorBetween, threshold: 20, want: true},
		{name: "between without max rejects off point", value: 20.5, operator: models.OperatorBetween, threshold: 20, want: false},
		{name: "between inverted range never matches", value: 25, operator: models.OperatorBetween, threshold: 30, thresholdMax: floatPtr(20), want: false},
		{name: "not between outside", value: 35, operator: models.OperatorNotBetween, threshold: 20, thresholdMax: floatPtr(30), want: true},
		{name: "not between inside", value: 25, operator: models.OperatorNotBetween, threshold: 20, thresholdMax: floatPtr(30), want: false},
		{name: "not between inverted range always matches", value: 25, operator: models.OperatorNotBetween, threshold: 30, thresholdMax: floatPtr(20), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EvaluateCondition(tt.value, tt.operator, tt.threshold, tt.thresholdMax)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateConditionUnknownOperator(t *testing.T) {
	got, err := EvaluateCondition(42, "bogus", 35, nil)

	assert.False(t, got)
	require.Error(t, err)
	assert.True(t, IsConfigError(err))
	assert.Contains(t, err.Error(), "bogus")
}

func TestEvaluateConditionDeterministic(t *testing.T) {
	for i := 0; i < 10; i++ {
		got, err := EvaluateCondition(40, models.OperatorGreaterThan, 35, nil)
		require.NoError(t, err)
		assert.True(t, got)
	}
}
