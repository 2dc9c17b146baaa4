package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
)

// GCS stores the ledger object in a Google Cloud Storage bucket. It
// assumes Application Default Credentials are configured.
type GCS struct {
	client *gcs.Client
	bucket string
	object string
}

// NewGCS creates a store bound to one bucket/object pair. The client is
// injected so the process can share a single connection pool and close
// it on shutdown.
func NewGCS(client *gcs.Client, bucket, object string) *GCS {
	return &GCS{
		client: client,
		bucket: bucket,
		object: object,
	}
}

// Fetch downloads the full object bytes. A missing object maps to
// ErrNotFound.
func (g *GCS) Fetch(ctx context.Context) ([]byte, error) {
	r, err := g.client.Bucket(g.bucket).Object(g.object).NewReader(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: gs://%s/%s", ErrNotFound, g.bucket, g.object)
		}
		return nil, fmt.Errorf("Fetch: open reader for gs://%s/%s: %w", g.bucket, g.object, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("Fetch: read gs://%s/%s: %w", g.bucket, g.object, err)
	}
	return data, nil
}

// Store overwrites the object with data. The write is finalized only
// when the writer closes cleanly.
func (g *GCS) Store(ctx context.Context, data []byte) error {
	w := g.client.Bucket(g.bucket).Object(g.object).NewWriter(ctx)

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("Store: write gs://%s/%s: %w", g.bucket, g.object, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("Store: finalize gs://%s/%s: %w", g.bucket, g.object, err)
	}
	return nil
}

func isNotFound(err error) bool {
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return true
	}
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound
}

// Ensure GCS implements ObjectStore.
var _ ObjectStore = (*GCS)(nil)
