package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ExportArchive keeps a copy of every generated export on disk, partitioned
// by generation date so old batches can be pruned in one pass.
type ExportArchive struct {
	baseDir string
	now     func() time.Time
}

// NewExportArchive ensures the archive directory exists and returns a handle.
func NewExportArchive(baseDir string) (*ExportArchive, error) {
	if baseDir == "" {
		baseDir = "./exports"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create archive directory: %w", err)
	}
	return &ExportArchive{baseDir: baseDir, now: time.Now}, nil
}

// Save writes the payload under today's partition and returns the relative
// archive path.
func (a *ExportArchive) Save(filename string, data []byte) (string, error) {
	rel := filepath.Join(a.now().UTC().Format("2006-01-02"), filename)
	path := filepath.Join(a.baseDir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("prepare archive partition: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write archived export: %w", err)
	}
	return rel, nil
}

// Open returns a read-only handle for an archived export.
func (a *ExportArchive) Open(rel string) (*os.File, error) {
	file, err := os.Open(filepath.Join(a.baseDir, rel))
	if err != nil {
		return nil, fmt.Errorf("open archived export: %w", err)
	}
	return file, nil
}

// CleanupOlderThan prunes archived exports past the retention window and
// returns the removed relative paths.
func (a *ExportArchive) CleanupOlderThan(retention time.Duration) ([]string, error) {
	cutoff := a.now().Add(-retention)
	removed := make([]string, 0)
	err := filepath.WalkDir(a.baseDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.ModTime().After(cutoff) {
			return nil
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
		rel, err := filepath.Rel(a.baseDir, path)
		if err != nil {
			rel = path
		}
		removed = append(removed, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("cleanup archive: %w", err)
	}
	return removed, nil
}

// Path exposes the absolute path of an archived export.
func (a *ExportArchive) Path(rel string) string {
	return filepath.Join(a.baseDir, rel)
}
