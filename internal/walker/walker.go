package walker

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// DefaultMaxFileSize is the largest page the walker hands out (8 MB).
const DefaultMaxFileSize int64 = 8 << 20

// DefaultInclude matches every HTML page of a built site.
var DefaultInclude = []string{"**/*.html"}

// FileInfo holds metadata about a single page discovered during traversal.
type FileInfo struct {
	Path        string // Absolute path on disk.
	RelPath     string // Path relative to the site root, slash-separated.
	Size        int64  // File size in bytes.
	ContentHash string // SHA-256 hex digest of the file content.
}

// WalkerConfig controls the behaviour of the Walk function.
type WalkerConfig struct {
	RootDir     string   // Root directory of the built site.
	Include     []string // Glob patterns; only matching pages are included (default **/*.html).
	Exclude     []string // Glob patterns; matching pages are excluded.
	MaxFileSize int64    // Pages larger than this are skipped (0 = use default).
}

// Walk traverses the site rooted at config.RootDir and returns every page
// that passes filtering, in lexical order.
func Walk(config WalkerConfig) ([]FileInfo, error) {
	root, err := filepath.Abs(config.RootDir)
	if err != nil {
		return nil, fmt.Errorf("walker: resolve root: %w", err)
	}
	if info, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("walker: %w", err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("walker: %s is not a directory", root)
	}

	maxSize := config.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	include := config.Include
	if len(include) == 0 {
		include = DefaultInclude
	}
	filter, err := NewFilter(include, config.Exclude)
	if err != nil {
		return nil, fmt.Errorf("walker: %w", err)
	}

	var files []FileInfo

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			// Skip entries we cannot read instead of aborting.
			return nil
		}

		if d.IsDir() {
			if path != root && shouldExcludeDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}

		if !filter.Match(relPath) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.Size() > maxSize {
			return nil
		}

		hash, err := HashFile(path)
		if err != nil {
			return nil
		}

		files = append(files, FileInfo{
			Path:        path,
			RelPath:     filepath.ToSlash(relPath),
			Size:        info.Size(),
			ContentHash: hash,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walker: traversal: %w", err)
	}

	return files, nil
}

// HashFile computes the SHA-256 digest of the given file.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashBytes computes the SHA-256 digest of data.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// IsPage reports whether a path names an HTML page.
func IsPage(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".html" || ext == ".htm"
}

// ErrPageNotFound is returned by ResolvePage when no file backs a URL path.
var ErrPageNotFound = errors.New("page not found")

// ResolvePage maps a site URL path to a file under root. Directory paths
// resolve to their index.html. The result never leaves root.
func ResolvePage(root, urlPath string) (string, error) {
	clean := path.Clean("/" + urlPath)
	full := filepath.Join(root, filepath.FromSlash(clean))

	rel, err := filepath.Rel(root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrPageNotFound
	}

	info, err := os.Stat(full)
	if err == nil && info.IsDir() {
		full = filepath.Join(full, "index.html")
		info, err = os.Stat(full)
	}
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", ErrPageNotFound
		}
		return "", err
	}
	if info.IsDir() {
		return "", ErrPageNotFound
	}
	return full, nil
}
