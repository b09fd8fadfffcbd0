package engine

import (
	"errors"
	"fmt"
)

// ErrWorkflowNotActive is returned when batch execution is attempted on a
// workflow that is not in the active status.
var ErrWorkflowNotActive = errors.New("workflow is not active")

// ConfigError marks malformed node configuration: an unknown operator or a
// missing required field. Non-fatal; the affected node is skipped and
// evaluation of sibling nodes continues.
type ConfigError struct {
	NodeID string
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.NodeID != "" {
		return fmt.Sprintf("node %s: invalid %s: %s", e.NodeID, e.Field, e.Reason)
	}

	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsConfigError reports whether err is a node configuration error.
func IsConfigError(err error) bool {
	var configErr *ConfigError

	return errors.As(err, &configErr)
}
