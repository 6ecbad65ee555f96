package engine

import "fmt"

// ConfigError reports an invalid configuration or parameter value.
// Configuration is validated up front: a bad value is rejected before any
// frame is processed, never silently clamped into range.
type ConfigError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

// PreconditionError reports malformed input to ProcessFrame, such as a frame
// whose length differs from the session frame size. The call fails before any
// persistent state (filter weights, history, gate envelope) is touched.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string {
	return "precondition violated: " + e.Reason
}
