package ports

import (
	"context"
	"io"
)

// ImageStore persists candidate images.
type ImageStore interface {
	// Save writes the content under a name derived from originalName and
	// returns the stored file name.
	Save(ctx context.Context, originalName string, r io.Reader) (string, error)
	Remove(ctx context.Context, filename string) error
}

// ImageCleaner disposes of image files that are no longer referenced.
type ImageCleaner interface {
	Discard(filename string)
}

// ImageUpload is a validated image received from a client.
type ImageUpload struct {
	Filename string
	Content  io.Reader
}
