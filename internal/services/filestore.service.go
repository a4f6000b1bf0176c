package services

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"hearth/config"
	"hearth/internal/apperrors"

	logger "github.com/Bparsons0904/goLogger"
)

const (
	MaxUploadSize     = 5 * 1024 * 1024 // 5MB per file
	MaxFilesPerUpload = 5
)

var allowedImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// FileStoreService persists uploaded photos under a single base directory.
// Stored paths are relative to the base so the directory can move between
// environments without rewriting rows.
type FileStoreService struct {
	basePath string
	log      logger.Logger
}

func NewFileStoreService(config config.Config) (*FileStoreService, error) {
	log := logger.New("fileStoreService").Function("New")

	basePath := config.UploadPath
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, log.Err("failed to create upload directory", err, "path", basePath)
	}

	return &FileStoreService{
		basePath: basePath,
		log:      logger.New("fileStoreService"),
	}, nil
}

// Save writes the bytes under a collision-resistant generated name and
// returns the relative path to store. Rejects non-image extensions and
// oversized payloads before touching disk.
func (s *FileStoreService) Save(originalName string, data []byte) (string, error) {
	log := s.log.Function("Save")

	if len(data) == 0 {
		return "", apperrors.NewValidation(map[string]string{
			"file": "file is empty",
		})
	}
	if len(data) > MaxUploadSize {
		return "", apperrors.NewValidation(map[string]string{
			"file": "file exceeds the 5MB limit",
		})
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	if !allowedImageExtensions[ext] {
		return "", apperrors.NewValidation(map[string]string{
			"file": "only image files are allowed",
		})
	}

	filename := fmt.Sprintf("photos-%d-%d%s", time.Now().UnixNano(), rand.Int63n(1_000_000_000), ext)
	fullPath := filepath.Join(s.basePath, filename)

	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return "", log.Err("failed to write file", err, "path", fullPath)
	}

	return filename, nil
}

// Delete removes a stored file. Missing files are not an error; the point of
// deletion is that the file is gone.
func (s *FileStoreService) Delete(path string) error {
	log := s.log.Function("Delete")

	fullPath, err := s.resolve(path)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return log.Err("failed to delete file", err, "path", path)
	}

	return nil
}

// Resolve returns the absolute on-disk path for serving, refusing anything
// that escapes the base directory.
func (s *FileStoreService) Resolve(path string) (string, error) {
	return s.resolve(path)
}

func (s *FileStoreService) resolve(path string) (string, error) {
	cleaned := filepath.Clean(path)
	if cleaned == "." || strings.Contains(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", apperrors.ErrNotFound
	}
	return filepath.Join(s.basePath, cleaned), nil
}
