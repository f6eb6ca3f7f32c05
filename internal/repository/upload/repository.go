package upload

import (
	"context"
	"io"
	"path"
	"strings"
)

// Object describes a stored blob.
type Object struct {
	Name        string
	Size        int64
	ContentType string
}

// Repository is a name-addressed blob store. Open returns domain.ErrNotFound
// for names that were never stored.
type Repository interface {
	Save(ctx context.Context, obj Object, body io.Reader) error
	Open(ctx context.Context, name string) (io.ReadCloser, *Object, error)
}

// ValidName reports whether name is a plain file name that cannot escape the
// store root.
func ValidName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return false
	}
	return path.Base(name) == name
}
