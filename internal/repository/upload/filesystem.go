package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"ecofinds-api/internal/domain"
	"github.com/gabriel-vasile/mimetype"
)

type filesystemRepo struct {
	dir string
}

// NewFilesystem stores blobs as files under dir, creating it if needed.
func NewFilesystem(dir string) (Repository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &filesystemRepo{dir: dir}, nil
}

func (r *filesystemRepo) Save(_ context.Context, obj Object, body io.Reader) error {
	if !ValidName(obj.Name) {
		return fmt.Errorf("invalid object name %q", obj.Name)
	}
	target := filepath.Join(r.dir, obj.Name)
	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", obj.Name, err)
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		os.Remove(target)
		return fmt.Errorf("write %s: %w", obj.Name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(target)
		return fmt.Errorf("close %s: %w", obj.Name, err)
	}
	return nil
}

func (r *filesystemRepo) Open(_ context.Context, name string) (io.ReadCloser, *Object, error) {
	if !ValidName(name) {
		return nil, nil, domain.ErrNotFound
	}
	target := filepath.Join(r.dir, name)
	f, err := os.Open(target)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, fmt.Errorf("open %s: %w", name, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("stat %s: %w", name, err)
	}
	if info.IsDir() {
		f.Close()
		return nil, nil, domain.ErrNotFound
	}

	contentType := "application/octet-stream"
	if mt, err := mimetype.DetectFile(target); err == nil {
		contentType = mt.String()
	}
	return f, &Object{Name: name, Size: info.Size(), ContentType: contentType}, nil
}
