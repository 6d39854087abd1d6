package domain

import "errors"

var (
	// ErrInvalidScenario tags every scenario authoring rejection.
	ErrInvalidScenario = errors.New("invalid scenario definition")
	// ErrScenarioNotFound indicates the scenario content could not be loaded.
	ErrScenarioNotFound = errors.New("scenario not found")
	// ErrIncidentNotFound is returned when an incident id does not resolve.
	ErrIncidentNotFound = errors.New("incident not found")
	// ErrIncidentClosed is returned when answering an incident that already completed.
	ErrIncidentClosed = errors.New("incident already completed")
	// ErrUserNotFound is returned when a user id does not resolve.
	ErrUserNotFound = errors.New("user not found")
	// ErrRoleNotFound is returned when a role id does not resolve.
	ErrRoleNotFound = errors.New("role not found")
	// ErrQuestionNotFound indicates a submitted question ID is invalid.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrOptionNotFound indicates a submitted option ID is invalid.
	ErrOptionNotFound = errors.New("option not found")
	// ErrInvalidRequest tags malformed directory or incident input.
	ErrInvalidRequest = errors.New("invalid request")
)

// ValidationError carries the reason a scenario definition was rejected.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return ErrInvalidScenario.Error() + ": " + e.Reason
}

// Is lets errors.Is(err, ErrInvalidScenario) match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidScenario
}

// InvalidScenario builds a ValidationError.
func InvalidScenario(reason string) error {
	return &ValidationError{Reason: reason}
}
