package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSensorDefinitionsKnownType(t *testing.T) {
	defs := SensorDefinitions("centrifuge")

	require.Len(t, defs, 3)
	assert.Equal(t, "rpm", defs[0].ID)
	assert.Equal(t, "RPM", defs[0].Unit)
	assert.Equal(t, [2]float64{3000, 5000}, defs[0].Range)
}

func TestSensorDefinitionsUnknownTypeFallsBack(t *testing.T) {
	defs := SensorDefinitions("hovercraft")

	require.Len(t, defs, 1)
	assert.Equal(t, "temp", defs[0].ID)
}

func TestEquipmentTypesHaveDefinitions(t *testing.T) {
	for _, eqType := range EquipmentTypes() {
		assert.NotEmpty(t, SensorDefinitions(eqType), eqType)
	}
}
