package models

// SensorSnapshot maps "{equipment_id}.{sensor_type}" keys to the values
// reported on one tick. Ephemeral: produced per tick, never persisted as a
// unit.
type SensorSnapshot map[string]float64

// SensorKey builds the snapshot key for an equipment sensor.
func SensorKey(equipmentID, sensorType string) string {
	return equipmentID + "." + sensorType
}
