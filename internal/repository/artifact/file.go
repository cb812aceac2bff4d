// Package artifact provides stores for serialized model artifacts.
package artifact

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/rotisserie/eris"

	"github.com/smartcity/evsite/internal/domain"
)

// FileStore reads artifacts from the local filesystem.
type FileStore struct{}

// NewFileStore creates a new file store
func NewFileStore() *FileStore {
	return &FileStore{}
}

// Fetch reads the artifact at path.
func (s *FileStore) Fetch(_ context.Context, path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, eris.Wrapf(domain.ErrArtifactNotFound, "artifact: %s", path)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "artifact: read %s", path)
	}
	return data, nil
}
