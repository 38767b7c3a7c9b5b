package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/civicvote/voting-system/internal/core/domain"
	"github.com/civicvote/voting-system/internal/core/ports"
)

var _ ports.ImageStore = (*LocalStore)(nil)

// LocalStore keeps candidate images in a directory served under
// /public/image.
type LocalStore struct {
	dir      string
	maxBytes int64
	now      func() time.Time
}

func NewLocalStore(dir string, maxBytes int64) *LocalStore {
	return &LocalStore{dir: dir, maxBytes: maxBytes, now: time.Now}
}

func (s *LocalStore) Dir() string { return s.dir }

// EnsureDir creates the upload directory when missing.
func (s *LocalStore) EnsureDir() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}
	return nil
}

// Writable reports an error when the upload directory cannot accept files.
func (s *LocalStore) Writable(_ context.Context) error {
	f, err := os.CreateTemp(s.dir, ".probe-*")
	if err != nil {
		return err
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}

// Save validates the content signature and writes r under a generated name,
// returning that name. Partial files never become visible.
func (s *LocalStore) Save(ctx context.Context, originalName string, r io.Reader) (string, error) {
	if !domain.AllowedImageExtension(originalName) {
		return "", domain.ErrInvalidFileType
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read image: %w", err)
	}
	head = head[:n]
	if !MatchesSignature(originalName, head) {
		return "", domain.ErrInvalidFileType
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	body := io.MultiReader(bytes.NewReader(head), r)
	if s.maxBytes > 0 {
		body = io.LimitReader(body, s.maxBytes+1)
	}
	written, err := io.Copy(tmp, body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	if s.maxBytes > 0 && written > s.maxBytes {
		return "", domain.ErrFileTooLarge
	}

	name := StoredName(originalName, s.now())
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		return "", fmt.Errorf("store image: %w", err)
	}
	return name, nil
}

// Remove deletes a stored image. Missing files are not an error.
func (s *LocalStore) Remove(_ context.Context, filename string) error {
	if filename == "" || filepath.Base(filename) != filename {
		return fmt.Errorf("invalid image name %q", filename)
	}
	err := os.Remove(filepath.Join(s.dir, filename))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove image: %w", err)
	}
	return nil
}
