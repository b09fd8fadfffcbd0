package models

// Severity classifies how urgent a fired alert is.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Operator is a threshold comparison operator for trigger conditions.
type Operator string

const (
	OperatorGreaterThan    Operator = ">"
	OperatorLessThan       Operator = "<"
	OperatorGreaterOrEqual Operator = ">="
	OperatorLessOrEqual    Operator = "<="
	OperatorEquals         Operator = "=="
	OperatorNotEquals      Operator = "!="
	OperatorBetween        Operator = "between"
	OperatorNotBetween     Operator = "not_between"
)

// Node is either a sensor trigger or a notification action, discriminated by
// IsAction. A trigger node carries Trigger config, an action node carries
// Action config; nodes with Configured=false are skipped by the engine.
type Node struct {
	ID         string         `json:"id"       validate:"required"`
	Label      string         `json:"label"`
	Category   string         `json:"category"` // Equipment-type tag for triggers, channel tag for actions
	IsAction   bool           `json:"is_action"`
	Configured bool           `json:"configured"`
	// Config structs are schema-checked only when Configured is set, so they
	// are excluded from struct-tag validation: draft nodes hold partial
	// config.
	Trigger *TriggerConfig `json:"trigger,omitempty" validate:"-"`
	Action  *ActionConfig  `json:"action,omitempty"  validate:"-"`
}

// TriggerConfig binds a node to one equipment sensor and a threshold condition.
type TriggerConfig struct {
	EquipmentID  string   `json:"equipment_id" validate:"required"`
	SensorType   string   `json:"sensor_type"  validate:"required"`
	Operator     Operator `json:"operator"     validate:"required"`
	Threshold    float64  `json:"threshold"`
	ThresholdMax *float64 `json:"threshold_max,omitempty"`
	Unit         string   `json:"unit"`
	Severity     Severity `json:"severity"`

	// SpecificEquipmentID, when set, names the equipment a visual layer
	// should highlight when this trigger fires. Distinct from EquipmentID,
	// which keys the sensor snapshot.
	SpecificEquipmentID string `json:"specific_equipment_id,omitempty"`
}

// ActionConfig describes the notification an action node dispatches.
type ActionConfig struct {
	Channel   string   `json:"channel"  validate:"required"`
	Recipient string   `json:"recipient"` // Phone number, email address or webhook URL; empty means inert
	Severity  Severity `json:"severity"`
}

// Edge is a directed connection between two nodes. Outgoing edges from one
// trigger fan out to multiple actions.
type Edge struct {
	ID       string `json:"id"`
	SourceID string `json:"source" validate:"required"`
	TargetID string `json:"target" validate:"required"`
}

// IsTriggerNode reports whether the node is a sensor trigger.
func (n *Node) IsTriggerNode() bool {
	return !n.IsAction
}

// IsActionNode reports whether the node is a notification action.
func (n *Node) IsActionNode() bool {
	return n.IsAction
}

// Label or id, for human-readable output.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}

	return n.ID
}

// SensorEquipmentID returns the equipment id used to key the sensor
// snapshot, falling back to the node id when the config leaves it empty.
func (n *Node) SensorEquipmentID() string {
	if n.Trigger != nil && n.Trigger.EquipmentID != "" {
		return n.Trigger.EquipmentID
	}

	return n.ID
}
