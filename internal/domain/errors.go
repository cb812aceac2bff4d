package domain

import (
	"fmt"

	"github.com/rotisserie/eris"
)

// ValidationError reports required location fields missing from a request.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("Missing required fields: %v", e.Missing)
}

// ErrArtifactNotFound is returned by artifact stores when nothing exists at a location.
var ErrArtifactNotFound = eris.New("artifact not found")
