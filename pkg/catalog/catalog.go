// Package catalog exposes the static per-equipment-type sensor definitions
// the configuration surface offers when building trigger nodes. The engine
// never reads it; node configs carry pre-validated sensor types.
package catalog

// SensorDefinition describes one selectable sensor of an equipment type.
type SensorDefinition struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Unit  string     `json:"unit"`
	Range [2]float64 `json:"range"`
}

var definitions = map[string][]SensorDefinition{
	"analyzer": {
		{ID: "temp", Name: "Temperature", Unit: "°C", Range: [2]float64{15, 30}},
		{ID: "ph", Name: "pH Level", Unit: "pH", Range: [2]float64{6.5, 7.5}},
		{ID: "turbidity", Name: "Turbidity", Unit: "NTU", Range: [2]float64{0, 5}},
	},
	"robot": {
		{ID: "x_pos", Name: "X Position", Unit: "mm", Range: [2]float64{0, 2000}},
		{ID: "y_pos", Name: "Y Position", Unit: "mm", Range: [2]float64{0, 1500}},
		{ID: "vibration", Name: "Vibration", Unit: "mm/s", Range: [2]float64{0, 5}},
		{ID: "current", Name: "Motor Current", Unit: "A", Range: [2]float64{0.5, 2.0}},
	},
	"centrifuge": {
		{ID: "rpm", Name: "RPM", Unit: "RPM", Range: [2]float64{3000, 5000}},
		{ID: "vibration", Name: "Vibration", Unit: "mm/s", Range: [2]float64{0, 3}},
		{ID: "temp", Name: "Temperature", Unit: "°C", Range: [2]float64{20, 35}},
	},
	"storage": {
		{ID: "level", Name: "Fill Level", Unit: "%", Range: [2]float64{20, 90}},
		{ID: "temp", Name: "Temperature", Unit: "°C", Range: [2]float64{15, 25}},
		{ID: "humidity", Name: "Humidity", Unit: "%RH", Range: [2]float64{30, 60}},
	},
	"conveyor": {
		{ID: "speed", Name: "Belt Speed", Unit: "m/min", Range: [2]float64{5, 30}},
		{ID: "current", Name: "Motor Current", Unit: "A", Range: [2]float64{1, 3}},
		{ID: "vibration", Name: "Vibration", Unit: "mm/s", Range: [2]float64{0, 2}},
	},
}

// fallback is offered for equipment types without a definition set.
var fallback = []SensorDefinition{
	{ID: "temp", Name: "Temperature", Unit: "°C", Range: [2]float64{0, 100}},
}

// SensorDefinitions returns the selectable sensors for an equipment type.
// Unknown types get a generic temperature sensor.
func SensorDefinitions(equipmentType string) []SensorDefinition {
	defs, ok := definitions[equipmentType]
	if !ok {
		return fallback
	}

	return defs
}

// EquipmentTypes lists the types with a real definition set.
func EquipmentTypes() []string {
	return []string{"analyzer", "centrifuge", "conveyor", "robot", "storage"}
}
