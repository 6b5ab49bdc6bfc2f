package correction

import (
	"errors"
	"fmt"
)

// ErrNoQuestions is returned when extraction produced zero questions.
// There is nothing to grade, so the pipeline stops before evaluation.
var ErrNoQuestions = errors.New("no questions identified in the image")

// ValidationError reports a missing or unusable request field, detected
// before any network call is made.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return "invalid request: field " + e.Field
}

// Pipeline stages, used to tell the caller which model call failed.
const (
	StageExtraction = "extraction"
	StageEvaluation = "evaluation"
)

// StageError wraps a gateway failure with the pipeline stage it
// occurred in, so "the vision call failed" and "the grading call
// failed" produce distinct user-facing errors.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
