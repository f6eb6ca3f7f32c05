package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"ecofinds-api/internal/domain"
	uploadrepo "ecofinds-api/internal/repository/upload"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	MaxFiles = 5

	MsgNoFile       = "No image file provided"
	MsgNoFiles      = "No image files provided"
	MsgTooManyFiles = "Too many files"
	MsgFileTooLarge = "File too large"
	MsgFileNotFound = "File not found"
)

// File is one incoming upload.
type File struct {
	OriginalName string
	Size         int64
	Body         io.ReadSeeker
}

// Stored describes a saved upload.
type Stored struct {
	Path         string `json:"filePath"`
	Name         string `json:"filename"`
	OriginalName string `json:"originalName"`
	Size         int64  `json:"size"`
}

type Service struct {
	store      uploadrepo.Repository
	maxBytes   int64
	publicPath string
	logger     *zap.Logger
	now        func() time.Time
}

// New builds the service. Files larger than maxBytes are rejected when
// maxBytes is positive; stored paths are published under publicPath.
func New(store uploadrepo.Repository, maxBytes int64, publicPath string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:      store,
		maxBytes:   maxBytes,
		publicPath: strings.TrimSuffix(publicPath, "/"),
		logger:     logger.Named("upload_service"),
		now:        time.Now,
	}
}

func (s *Service) SaveOne(ctx context.Context, f *File) (*Stored, error) {
	if f == nil {
		return nil, domain.Validation(MsgNoFile)
	}
	return s.save(ctx, *f)
}

// SaveMany stores up to MaxFiles files. Files saved before a failure are kept.
func (s *Service) SaveMany(ctx context.Context, files []File) ([]Stored, error) {
	if len(files) == 0 {
		return nil, domain.Validation(MsgNoFiles)
	}
	if len(files) > MaxFiles {
		return nil, domain.Validation(MsgTooManyFiles)
	}
	for _, f := range files {
		if err := s.checkSize(f); err != nil {
			return nil, err
		}
	}

	out := make([]Stored, 0, len(files))
	for _, f := range files {
		stored, err := s.save(ctx, f)
		if err != nil {
			return nil, err
		}
		out = append(out, *stored)
	}
	return out, nil
}

// Open returns the stored bytes for name.
func (s *Service) Open(ctx context.Context, name string) (io.ReadCloser, *uploadrepo.Object, error) {
	rc, obj, err := s.store.Open(ctx, name)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, domain.NotFound(MsgFileNotFound)
		}
		return nil, nil, fmt.Errorf("open upload: %w", err)
	}
	return rc, obj, nil
}

func (s *Service) save(ctx context.Context, f File) (*Stored, error) {
	if err := s.checkSize(f); err != nil {
		return nil, err
	}

	contentType := "application/octet-stream"
	if mt, err := mimetype.DetectReader(f.Body); err == nil {
		contentType = mt.String()
	}
	if _, err := f.Body.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind upload: %w", err)
	}

	name := s.storageName(f.OriginalName)
	if err := s.store.Save(ctx, uploadrepo.Object{Name: name, Size: f.Size, ContentType: contentType}, f.Body); err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}
	s.logger.Info("stored upload",
		zap.String("name", name),
		zap.String("original_name", f.OriginalName),
		zap.Int64("size", f.Size),
		zap.String("content_type", contentType),
	)

	return &Stored{
		Path:         s.publicPath + "/" + name,
		Name:         name,
		OriginalName: f.OriginalName,
		Size:         f.Size,
	}, nil
}

func (s *Service) checkSize(f File) error {
	if s.maxBytes > 0 && f.Size > s.maxBytes {
		return domain.Validation(MsgFileTooLarge)
	}
	return nil
}

// storageName is <unix-millis>-<uuid><ext>, with the original extension lowercased.
func (s *Service) storageName(original string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(original)))
	if !uploadrepo.ValidName("x" + ext) {
		ext = ""
	}
	return strconv.FormatInt(s.now().UnixMilli(), 10) + "-" + uuid.NewString() + ext
}
