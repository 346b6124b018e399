package storage

import (
	"context"
	"io"
)

// ObjectStorage is the blob store holding uploaded statement files. The
// ingestion pipeline only ever downloads by the path stored on the Upload
// record; Upload/Delete exist for the intake side and cleanup tooling.
type ObjectStorage interface {
	// Upload stores an object under key.
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error

	// Download fetches an object's bytes by key.
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes an object.
	Delete(ctx context.Context, key string) error

	// Exists checks whether an object is present.
	Exists(ctx context.Context, key string) (bool, error)
}

// DownloadBytes reads a whole object into memory. Statement files are small
// spreadsheets; the parsers want the full byte slice anyway.
func DownloadBytes(ctx context.Context, s ObjectStorage, key string) ([]byte, error) {
	rc, err := s.Download(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
