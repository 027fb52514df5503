// Package mediastore stores the media assets that accompany entry writes.
// Backends that keep entry text in a hosted repository can still park large
// binary uploads in an object store.
package mediastore

import (
	"context"
	"io"
)

// Store is the contract media-capable backends write uploads through.
type Store interface {
	// Upload stores one asset under key.
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) error

	// Download retrieves a stored asset.
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes a stored asset.
	Delete(ctx context.Context, key string) error

	// URL returns a public or signed URL for a stored asset, when the
	// store can produce one.
	URL(ctx context.Context, key string) (string, error)
}
