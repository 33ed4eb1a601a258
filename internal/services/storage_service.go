package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxImageSize caps a single trail image upload.
const MaxImageSize = 5 << 20

var (
	ErrInvalidImage     = errors.New("only jpg, jpeg, png, gif and webp images are allowed")
	ErrImageTooLarge    = errors.New("image exceeds the 5MB limit")
	ErrInvalidImageName = errors.New("invalid image filename")
)

var allowedImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

type StorageService interface {
	SaveImage(ctx context.Context, src io.Reader, originalName string) (string, error)
	DeleteImage(ctx context.Context, filename string) error
}

// LocalImageStorage keeps uploaded images as flat files in one directory.
// Filenames handed out are bare names, never paths.
type LocalImageStorage struct {
	dir string
	now func() time.Time
}

func NewLocalImageStorage(dir string) (*LocalImageStorage, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("storage: directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: ensure directory: %w", err)
	}
	return &LocalImageStorage{dir: dir, now: time.Now}, nil
}

func (s *LocalImageStorage) Dir() string {
	return s.dir
}

func (s *LocalImageStorage) SaveImage(ctx context.Context, src io.Reader, originalName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(originalName)))
	if !allowedImageExtensions[ext] {
		return "", ErrInvalidImage
	}

	filename := buildImageFilename(s.now(), ext)
	fullPath := filepath.Join(s.dir, filename)

	file, err := os.OpenFile(fullPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("storage: create image: %w", err)
	}

	written, copyErr := io.Copy(file, io.LimitReader(src, MaxImageSize+1))
	closeErr := file.Close()
	switch {
	case copyErr != nil:
		_ = os.Remove(fullPath)
		return "", fmt.Errorf("storage: write image: %w", copyErr)
	case closeErr != nil:
		_ = os.Remove(fullPath)
		return "", fmt.Errorf("storage: close image: %w", closeErr)
	case written > MaxImageSize:
		_ = os.Remove(fullPath)
		return "", ErrImageTooLarge
	}

	return filename, nil
}

// DeleteImage removes filename. A file that is already gone is not an error.
func (s *LocalImageStorage) DeleteImage(ctx context.Context, filename string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fullPath, err := s.Path(filename)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("storage: delete image: %w", err)
	}
	return nil
}

// Path resolves filename inside the storage directory, refusing anything that
// is not a plain file name.
func (s *LocalImageStorage) Path(filename string) (string, error) {
	filename = strings.TrimSpace(filename)
	if filename == "" || filename == "." || filename == ".." ||
		strings.ContainsAny(filename, `/\`) || filepath.Base(filename) != filename {
		return "", ErrInvalidImageName
	}
	return filepath.Join(s.dir, filename), nil
}

func buildImageFilename(now time.Time, ext string) string {
	return fmt.Sprintf("trail-%d-%s%s", now.UnixNano(), uuid.NewString()[:8], ext)
}
