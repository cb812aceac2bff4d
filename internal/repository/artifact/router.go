package artifact

import (
	"context"

	"github.com/rotisserie/eris"
)

// Fetcher fetches an artifact by location.
type Fetcher interface {
	Fetch(ctx context.Context, location string) ([]byte, error)
}

// Router dispatches s3:// locations to the S3 store and everything else to
// the file store.
type Router struct {
	files Fetcher
	s3    Fetcher
}

// NewRouter creates a router. s3 may be nil when no S3 locations are used.
func NewRouter(files, s3 Fetcher) *Router {
	return &Router{files: files, s3: s3}
}

// Fetch reads the artifact from the store matching the location scheme.
func (r *Router) Fetch(ctx context.Context, location string) ([]byte, error) {
	if IsS3Location(location) {
		if r.s3 == nil {
			return nil, eris.Errorf("artifact: no s3 store configured for %s", location)
		}
		return r.s3.Fetch(ctx, location)
	}
	if r.files == nil {
		return nil, eris.Errorf("artifact: no file store configured for %s", location)
	}
	return r.files.Fetch(ctx, location)
}
