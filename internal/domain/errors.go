package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError reports physically invalid input. Context fields are filled in
// as the error travels up from the surface to the run.
type ValidationError struct {
	Catchment string `json:"catchment,omitempty"`
	Surface   string `json:"surface,omitempty"`
	Event     string `json:"event,omitempty"`
	Field     string `json:"field"`
	Value     any    `json:"value,omitempty"`
	Reason    string `json:"reason"`
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "invalid %s", e.Field)
	if e.Value != nil {
		fmt.Fprintf(&b, "=%v", e.Value)
	}
	var scope []string
	if e.Catchment != "" {
		scope = append(scope, "catchment "+e.Catchment)
	}
	if e.Surface != "" {
		scope = append(scope, "surface "+e.Surface)
	}
	if e.Event != "" {
		scope = append(scope, "event "+e.Event)
	}
	if len(scope) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(scope, ", "))
	}
	b.WriteString(": ")
	b.WriteString(e.Reason)
	return b.String()
}

func invalid(field string, value any, reason string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Reason: reason}
}

// withScope returns err with empty ValidationError context fields filled in.
// Other errors are wrapped with the same context.
func withScope(err error, catchment, surface, event string) error {
	if err == nil {
		return nil
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		scoped := *ve
		if scoped.Catchment == "" {
			scoped.Catchment = catchment
		}
		if scoped.Surface == "" {
			scoped.Surface = surface
		}
		if scoped.Event == "" {
			scoped.Event = event
		}
		return &scoped
	}
	return fmt.Errorf("catchment %s surface %s event %s: %w", catchment, surface, event, err)
}

// CatchmentError records a catchment that could not be computed for one event.
// The rest of the run is unaffected.
type CatchmentError struct {
	Catchment string `json:"catchment"`
	Event     string `json:"event"`
	Reason    string `json:"reason"`
	Err       error  `json:"-"`
}

// NewCatchmentError wraps err for the given catchment and event.
func NewCatchmentError(catchment, event string, err error) *CatchmentError {
	return &CatchmentError{Catchment: catchment, Event: event, Reason: err.Error(), Err: err}
}

func (e *CatchmentError) Error() string {
	return fmt.Sprintf("catchment %s, event %s: %s", e.Catchment, e.Event, e.Reason)
}

func (e *CatchmentError) Unwrap() error { return e.Err }
