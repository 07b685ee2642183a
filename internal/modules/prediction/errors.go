package prediction

import (
	"errors"
	"fmt"
)

var (
	// ErrArtifactLoad marks a missing, corrupt or mutually inconsistent
	// model/encoder pair.
	ErrArtifactLoad = errors.New("model artifacts could not be loaded")
	// ErrUnavailable is returned for every prediction while no artifacts are
	// loaded.
	ErrUnavailable = errors.New("model is not loaded on the server; predictions are unavailable")
)

// PredictionError wraps an unexpected failure during inference.
type PredictionError struct {
	Err error
}

func (e *PredictionError) Error() string {
	return fmt.Sprintf("prediction failed: %v", e.Err)
}

func (e *PredictionError) Unwrap() error { return e.Err }
