package ingest

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/MikeSquared-Agency/tally/internal/transcript"
)

// ScanDir walks a directory tree, ingests every file with a recognized
// extension, and returns the combined sessions plus per-file results. Used
// for operator-driven batch runs over historical transcript dumps. A file
// that cannot be read is reported in its result entry and does not stop the
// scan; only a completely unreadable root is an error.
func ScanDir(dir string, logger *slog.Logger) ([]transcript.Session, []FileResult, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(p))
		if textExtensions[ext] || ext == ".zip" {
			paths = append(paths, p)
		}
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	sort.Strings(paths)

	var files []File
	var failures []FileResult
	for _, p := range paths {
		rel, relErr := filepath.Rel(dir, p)
		if relErr != nil {
			rel = p
		}
		content, err := os.ReadFile(p)
		if err != nil {
			logger.Warn("skipping unreadable file", "path", p, "error", err)
			failures = append(failures, FileResult{
				Filename: rel,
				Status:   StatusError,
				Error:    fmt.Sprintf("read failed: %v", err),
			})
			continue
		}
		files = append(files, File{Name: rel, Content: content})
	}

	sessions, results := Process(files)
	results = append(results, failures...)

	logger.Info("directory scan complete",
		"dir", dir,
		"files", len(files),
		"sessions", len(sessions),
		"failures", len(failures),
	)
	return sessions, results, nil
}
