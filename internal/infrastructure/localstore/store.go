package localstore

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store manages attachment bytes on local disk before they are offloaded.
// Public files live under <base>/public/files, private files under
// <base>/private/files, mirroring the locator paths "/files/<name>" and
// "/private/files/<name>".
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// Resolve maps a local locator onto the on-disk path. Public locators are
// rooted under the shared public directory, private locators directly under
// the site directory.
func (s *Store) Resolve(fileURL string, isPrivate bool) string {
	if isPrivate {
		return filepath.Join(s.baseDir, filepath.FromSlash(fileURL))
	}
	return filepath.Join(s.baseDir, "public", filepath.FromSlash(fileURL))
}

func (s *Store) Exists(fileURL string, isPrivate bool) bool {
	_, err := os.Stat(s.Resolve(fileURL, isPrivate))
	return err == nil
}

func (s *Store) Open(fileURL string, isPrivate bool) (io.ReadCloser, error) {
	return os.Open(s.Resolve(fileURL, isPrivate))
}

func (s *Store) Remove(fileURL string, isPrivate bool) error {
	return os.Remove(s.Resolve(fileURL, isPrivate))
}

// Save writes uploaded bytes to disk and returns the local locator. Name
// collisions get a short random prefix instead of overwriting.
func (s *Store) Save(content io.Reader, fileName string, isPrivate bool) (string, error) {
	name := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "", fmt.Errorf("invalid file name %q", fileName)
	}

	fileURL := "/files/" + name
	if isPrivate {
		fileURL = "/private/files/" + name
	}

	if s.Exists(fileURL, isPrivate) {
		name = uuid.New().String()[:8] + "-" + name
		if isPrivate {
			fileURL = "/private/files/" + name
		} else {
			fileURL = "/files/" + name
		}
	}

	target := s.Resolve(fileURL, isPrivate)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", err
	}

	out, err := os.Create(target)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, content); err != nil {
		os.Remove(target)
		return "", err
	}

	return fileURL, nil
}
