package archive

import (
	"context"
	"errors"
	"io"
	"path"

	"cloud.google.com/go/storage"

	"github.com/oksasatya/mailmerge/pkg/helpers"
)

var ErrGCSNotConfigured = errors.New("gcs not configured")

// GCSArchive uploads result exports into one bucket, under an optional prefix.
type GCSArchive struct {
	Client *storage.Client
	Bucket string
	Prefix string
}

func NewGCSArchive(client *storage.Client, bucket string) *GCSArchive {
	return &GCSArchive{Client: client, Bucket: bucket}
}

func (a *GCSArchive) Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error) {
	if a.Client == nil || a.Bucket == "" {
		return "", ErrGCSNotConfigured
	}
	if a.Prefix != "" {
		objectPath = path.Join(a.Prefix, objectPath)
	}
	return helpers.UploadObject(ctx, a.Client, a.Bucket, objectPath, contentType, r)
}
