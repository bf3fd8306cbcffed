package model

import "fmt"

// ConfigError reports an invalid hyperparameter combination. It is returned
// at construction time; no partial model state is retained.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("model config: %s %s", e.Field, e.Reason)
}

// ShapeError reports input dimensions incompatible with the configured model
// shape. It is raised where the mismatch is first detected and never retried.
type ShapeError struct {
	Op           string
	WantR, WantC int
	GotR, GotC   int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: input shape %dx%d does not match configured %dx%d",
		e.Op, e.GotR, e.GotC, e.WantR, e.WantC)
}
