// Package simulator generates realistic sensor data for demo and testing:
// per-equipment-type default sensors, sinusoidal drift with gaussian noise,
// and injectable anomalies for exercising workflow triggers without real
// equipment.
package simulator

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/nexuslab/vigil/pkg/models"
)

// AnomalyType selects the failure pattern an injected anomaly follows.
type AnomalyType string

const (
	AnomalySpike       AnomalyType = "spike"       // Sudden spike above the normal range
	AnomalyDrift       AnomalyType = "drift"       // Gradual increase over time
	AnomalyOscillation AnomalyType = "oscillation" // Rapidly fluctuating values
	AnomalyFlatline    AnomalyType = "flatline"    // Stuck at a single value
)

// driftWindow is how long an injected drift anomaly takes to reach full
// displacement.
const driftWindow = 30 * time.Second

// sensorSpec is one default sensor definition for an equipment type.
type sensorSpec struct {
	sensorType string
	unit       string
	minNormal  float64
	maxNormal  float64
}

// sensorDefaults holds the default sensor set per equipment type.
var sensorDefaults = map[string][]sensorSpec{
	"analyzer": {
		{"temp", "°C", 18, 28},
		{"ph", "pH", 6.8, 7.2},
		{"turbidity", "NTU", 0.5, 3.0},
		{"conductivity", "µS/cm", 200, 400},
	},
	"robot": {
		{"x_pos", "mm", 0, 2000},
		{"y_pos", "mm", 0, 1500},
		{"z_pos", "mm", 0, 1000},
		{"vibration", "mm/s", 0.5, 2.5},
		{"current", "A", 0.8, 1.5},
		{"cycle_time", "s", 2, 8},
	},
	"centrifuge": {
		{"rpm", "RPM", 3500, 4500},
		{"vibration", "mm/s", 0.3, 1.5},
		{"temp", "°C", 22, 32},
		{"imbalance", "g", 0, 5},
	},
	"storage": {
		{"level", "%", 30, 80},
		{"temp", "°C", 18, 23},
		{"humidity", "%RH", 35, 55},
		{"pressure", "bar", 0.95, 1.05},
	},
	"conveyor": {
		{"speed", "m/min", 10, 25},
		{"current", "A", 1.2, 2.5},
		{"vibration", "mm/s", 0.2, 1.0},
		{"tension", "N", 200, 400},
	},
}

// sensor is one registered simulated sensor.
type sensor struct {
	equipmentID string
	sensorType  string
	unit        string
	minNormal   float64
	maxNormal   float64
	current     float64
	noiseLevel  float64
}

// Simulator produces one snapshot per tick for every registered sensor. It
// implements the driver's SensorSource and is safe for concurrent use.
type Simulator struct {
	mu      sync.Mutex
	rng     *rand.Rand
	sensors map[string]*sensor
	order   []string

	anomalyType   AnomalyType
	anomalySensor string
	anomalyStart  time.Time
	tickCount     int

	logger *slog.Logger
}

func New(logger *slog.Logger) *Simulator {
	return NewWithSeed(time.Now().UnixNano(), logger)
}

// NewWithSeed returns a deterministic simulator for tests.
func NewWithSeed(seed int64, logger *slog.Logger) *Simulator {
	return &Simulator{
		rng:     rand.New(rand.NewSource(seed)),
		sensors: make(map[string]*sensor),
		logger:  logger.With("module", "simulator"),
	}
}

// RegisterEquipment adds the default sensor set for the equipment type and
// returns the registered snapshot keys. Unknown types register nothing.
func (s *Simulator) RegisterEquipment(equipmentID, equipmentType string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var keys []string

	for _, spec := range sensorDefaults[equipmentType] {
		key := models.SensorKey(equipmentID, spec.sensorType)

		s.sensors[key] = &sensor{
			equipmentID: equipmentID,
			sensorType:  spec.sensorType,
			unit:        spec.unit,
			minNormal:   spec.minNormal,
			maxNormal:   spec.maxNormal,
			current:     spec.minNormal + s.rng.Float64()*(spec.maxNormal-spec.minNormal),
			noiseLevel:  0.05,
		}
		s.order = append(s.order, key)
		keys = append(keys, key)
	}

	return keys
}

// Snapshot advances the simulation one tick and returns the new values.
func (s *Simulator) Snapshot(_ context.Context) models.SensorSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tickCount++
	values := make(models.SensorSnapshot, len(s.sensors))

	for _, key := range s.order {
		sn := s.sensors[key]

		var value float64
		if s.anomalySensor == key {
			value = s.anomalyValue(sn)
		} else {
			value = s.normalValue(sn)
		}

		sn.current = value
		values[key] = value
	}

	return values
}

// CurrentValues returns the latest values without advancing the simulation.
func (s *Simulator) CurrentValues() models.SensorSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	values := make(models.SensorSnapshot, len(s.sensors))
	for key, sn := range s.sensors {
		values[key] = sn.current
	}

	return values
}

// normalValue drifts sinusoidally around the center of the normal range with
// gaussian noise, clamped to the range plus a 10% margin.
func (s *Simulator) normalValue(sn *sensor) float64 {
	center := (sn.minNormal + sn.maxNormal) / 2
	rangeSize := sn.maxNormal - sn.minNormal

	drift := math.Sin(float64(s.tickCount)*0.1) * rangeSize * 0.1
	noise := s.rng.NormFloat64() * rangeSize * sn.noiseLevel

	value := center + drift + noise

	margin := rangeSize * 0.1

	return math.Max(sn.minNormal-margin, math.Min(sn.maxNormal+margin, value))
}

func (s *Simulator) anomalyValue(sn *sensor) float64 {
	rangeSize := sn.maxNormal - sn.minNormal

	switch s.anomalyType {
	case AnomalyDrift:
		elapsed := time.Since(s.anomalyStart)
		factor := math.Min(elapsed.Seconds()/driftWindow.Seconds(), 1.0)

		return sn.maxNormal + rangeSize*factor
	case AnomalyOscillation:
		return sn.maxNormal + math.Sin(float64(s.tickCount)*2.0)*rangeSize
	case AnomalyFlatline:
		return sn.maxNormal * 1.1
	case AnomalySpike:
		fallthrough
	default:
		return sn.maxNormal * (1.5 + s.rng.Float64()*0.5)
	}
}

// InjectAnomaly makes the named sensor misbehave until ClearAnomaly. Only one
// anomaly is active at a time; injecting replaces the previous one.
func (s *Simulator) InjectAnomaly(sensorKey string, anomalyType AnomalyType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sensors[sensorKey]; !ok {
		return fmt.Errorf("unknown sensor: %s", sensorKey)
	}

	s.anomalySensor = sensorKey
	s.anomalyType = anomalyType
	s.anomalyStart = time.Now()

	s.logger.Info("Injected anomaly", "sensor", sensorKey, "type", anomalyType)

	return nil
}

// ClearAnomaly returns all sensors to normal behavior.
func (s *Simulator) ClearAnomaly() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.anomalySensor = ""
	s.anomalyType = ""
	s.anomalyStart = time.Time{}

	s.logger.Info("Anomaly cleared")
}

// GenerateTriggeringData synthesizes a snapshot that satisfies every
// configured trigger in the workflow, for demo runs that should visibly fire.
func (s *Simulator) GenerateTriggeringData(workflow *models.Workflow) models.SensorSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	data := make(models.SensorSnapshot)

	for _, node := range workflow.Nodes {
		if !node.IsTriggerNode() || node.Trigger == nil || node.Trigger.SensorType == "" {
			continue
		}

		trigger := node.Trigger
		key := models.SensorKey(node.SensorEquipmentID(), trigger.SensorType)

		switch trigger.Operator {
		case models.OperatorGreaterThan, models.OperatorGreaterOrEqual:
			data[key] = trigger.Threshold + 5 + s.rng.Float64()*15
		case models.OperatorLessThan, models.OperatorLessOrEqual:
			data[key] = trigger.Threshold - 5 - s.rng.Float64()*15
		case models.OperatorEquals:
			data[key] = trigger.Threshold
		case models.OperatorBetween:
			upper := trigger.Threshold
			if trigger.ThresholdMax != nil {
				upper = *trigger.ThresholdMax
			}

			data[key] = (trigger.Threshold + upper) / 2
		case models.OperatorNotBetween:
			upper := trigger.Threshold
			if trigger.ThresholdMax != nil {
				upper = *trigger.ThresholdMax
			}

			data[key] = upper + 5 + s.rng.Float64()*10
		default:
			data[key] = trigger.Threshold * 1.5
		}
	}

	return data
}
