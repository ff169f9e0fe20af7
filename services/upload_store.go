package services

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nindyaadesyana/chatbot/models"
)

// UploadStore manages the uploaded knowledge documents on local disk.
type UploadStore struct {
	Dir string // absolute path of the uploads directory
}

// NewUploadStore creates a store rooted at dir, creating it if needed.
func NewUploadStore(dir string) (*UploadStore, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("could not determine absolute path for uploads dir: %w", err)
	}
	if err := os.MkdirAll(absPath, 0755); err != nil {
		return nil, fmt.Errorf("could not create uploads dir: %w", err)
	}
	return &UploadStore{Dir: absPath}, nil
}

// sanitizeFilename keeps the file inside the uploads directory and rejects
// anything that is not a PDF. Guards against path traversal in the filename.
func (s *UploadStore) sanitizeFilename(filename string) (string, error) {
	if !strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		return "", fmt.Errorf("only PDF files are supported")
	}
	cleanPath := filepath.Join(s.Dir, filepath.Base(filename))
	if !strings.HasPrefix(cleanPath, s.Dir) {
		return "", fmt.Errorf("invalid filename, attempts to escape uploads directory")
	}
	return cleanPath, nil
}

// Save writes an uploaded file to disk and returns its full path.
func (s *UploadStore) Save(filename string, content []byte) (string, error) {
	path, err := s.sanitizeFilename(filename)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		return "", fmt.Errorf("failed to save file %s: %w", filename, err)
	}
	return path, nil
}

// List returns metadata for every file in the uploads directory, newest
// first.
func (s *UploadStore) List() ([]models.UploadedFile, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read uploads dir: %w", err)
	}

	files := make([]models.UploadedFile, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		fileType := strings.TrimPrefix(filepath.Ext(entry.Name()), ".")
		if fileType == "" {
			fileType = "unknown"
		}
		files = append(files, models.UploadedFile{
			Name:       entry.Name(),
			Size:       info.Size(),
			UploadDate: info.ModTime().Format("2/1/2006"),
			Type:       fileType,
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// Delete removes a named file from the uploads directory.
func (s *UploadStore) Delete(filename string) error {
	path, err := s.sanitizeFilename(filename)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to delete file %s: %w", filename, err)
	}
	return nil
}

// Path resolves a stored filename to its location on disk.
func (s *UploadStore) Path(filename string) (string, error) {
	return s.sanitizeFilename(filename)
}
