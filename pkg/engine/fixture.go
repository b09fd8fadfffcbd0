package engine

import (
	"math/rand"
	"time"

	"github.com/nexuslab/vigil/pkg/models"
)

// FixtureGenerator synthesizes preview snapshots for workflow dry runs when
// the caller supplies no sensor data. Each configured trigger gets a value
// that satisfies its condition roughly half the time, so previews show both
// outcomes. Only the preview path uses it; tick-mode evaluation never does.
type FixtureGenerator struct {
	rng *rand.Rand
}

func NewFixtureGenerator() *FixtureGenerator {
	return &FixtureGenerator{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewSeededFixtureGenerator returns a deterministic generator for tests.
func NewSeededFixtureGenerator(seed int64) *FixtureGenerator {
	return &FixtureGenerator{rng: rand.New(rand.NewSource(seed))}
}

// Snapshot builds one sensor value per configured trigger.
func (g *FixtureGenerator) Snapshot(workflow *models.Workflow) models.SensorSnapshot {
	snapshot := make(models.SensorSnapshot)

	for _, node := range workflow.Nodes {
		if !node.IsTriggerNode() || !node.Configured || node.Trigger == nil || node.Trigger.SensorType == "" {
			continue
		}

		key := models.SensorKey(node.SensorEquipmentID(), node.Trigger.SensorType)
		snapshot[key] = g.valueFor(node.Trigger)
	}

	return snapshot
}

// valueFor picks a value on the firing or non-firing side of the condition
// with equal probability.
func (g *FixtureGenerator) valueFor(trigger *models.TriggerConfig) float64 {
	fire := g.rng.Float64() < 0.5
	margin := 1 + g.rng.Float64()*4

	min := trigger.Threshold
	max := min

	if trigger.ThresholdMax != nil {
		max = *trigger.ThresholdMax
	}

	switch trigger.Operator {
	case models.OperatorGreaterThan, models.OperatorGreaterOrEqual:
		if fire {
			return trigger.Threshold + margin
		}

		return trigger.Threshold - margin
	case models.OperatorLessThan, models.OperatorLessOrEqual:
		if fire {
			return trigger.Threshold - margin
		}

		return trigger.Threshold + margin
	case models.OperatorEquals:
		if fire {
			return trigger.Threshold
		}

		return trigger.Threshold + margin
	case models.OperatorNotEquals:
		if fire {
			return trigger.Threshold + margin
		}

		return trigger.Threshold
	case models.OperatorBetween:
		if fire {
			return (min + max) / 2
		}

		return max + margin
	case models.OperatorNotBetween:
		if fire {
			return max + margin
		}

		return (min + max) / 2
	default:
		return trigger.Threshold
	}
}
