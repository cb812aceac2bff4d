package artifact

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rotisserie/eris"

	"github.com/smartcity/evsite/internal/domain"
)

// S3API is the subset of the S3 client used by S3Store.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Store reads artifacts addressed as s3://bucket/key.
type S3Store struct {
	client S3API
}

// NewS3Store creates a store over an existing client.
func NewS3Store(client S3API) *S3Store {
	return &S3Store{client: client}
}

// NewS3StoreFromConfig loads the default AWS configuration for region.
func NewS3StoreFromConfig(ctx context.Context, region string) (*S3Store, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, eris.Wrap(err, "artifact: load aws config")
	}
	return NewS3Store(s3.NewFromConfig(cfg)), nil
}

// Fetch downloads the object at location.
func (s *S3Store) Fetch(ctx context.Context, location string) ([]byte, error) {
	bucket, key, err := ParseS3Location(location)
	if err != nil {
		return nil, err
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, eris.Wrapf(domain.ErrArtifactNotFound, "artifact: %s", location)
		}
		return nil, eris.Wrapf(err, "artifact: get %s", location)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, eris.Wrapf(err, "artifact: read %s", location)
	}
	return data, nil
}

// ParseS3Location splits s3://bucket/key into its parts.
func ParseS3Location(location string) (bucket, key string, err error) {
	u, err := url.Parse(location)
	if err != nil {
		return "", "", eris.Wrapf(err, "artifact: parse %s", location)
	}
	if u.Scheme != "s3" || u.Host == "" {
		return "", "", eris.Errorf("artifact: %q is not an s3://bucket/key location", location)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return "", "", eris.Errorf("artifact: %q has no object key", location)
	}
	return u.Host, key, nil
}

// IsS3Location reports whether location uses the s3 scheme.
func IsS3Location(location string) bool {
	return strings.HasPrefix(location, "s3://")
}
