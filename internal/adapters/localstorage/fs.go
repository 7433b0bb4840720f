package localstorage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hashicorp/go-multierror"

	"github.com/danilodaat/automat/internal/core/ports"
)

// partialSuffixes mark files left behind by an interrupted download.
var partialSuffixes = []string{".part", ".tmp", ".temp", ".ytdl"}

// LocalStorage hands out per-job workspaces under BaseDir.
type LocalStorage struct {
	BaseDir string
}

// NewLocalStorage creates a new LocalStorage instance.
func NewLocalStorage(baseDir string) *LocalStorage {
	return &LocalStorage{BaseDir: baseDir}
}

// InitJob creates the job directory and returns its workspace.
func (s *LocalStorage) InitJob(ctx context.Context, jobID string) (*Workspace, error) {
	if jobID == "" || strings.ContainsAny(jobID, `/\`) {
		return nil, fmt.Errorf("invalid job id %q", jobID)
	}
	path := s.GetJobPath(jobID)
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create job directory %s: %w", path, err)
	}
	return &Workspace{dir: path}, nil
}

// Open implements ports.WorkspaceProvider.
func (s *LocalStorage) Open(ctx context.Context, jobID string) (ports.Workspace, error) {
	ws, err := s.InitJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return ws, nil
}

// GetJobPath returns the path for a job directory.
func (s *LocalStorage) GetJobPath(jobID string) string {
	return filepath.Join(s.BaseDir, jobID)
}

// Workspace is the temporary area owned by one job. It is safe for use by
// the goroutines of a single job.
type Workspace struct {
	dir     string
	mu      sync.Mutex
	tracked []string
}

// Dir is the directory owned by the job.
func (w *Workspace) Dir() string { return w.dir }

// Path returns a tracked path for name inside the job directory.
func (w *Workspace) Path(name string) string {
	p := filepath.Join(w.dir, filepath.Base(name))
	w.Track(p)
	return p
}

// Track registers path for cleanup.
func (w *Workspace) Track(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, p := range w.tracked {
		if p == path {
			return
		}
	}
	w.tracked = append(w.tracked, path)
}

// Tracked returns the registered paths.
func (w *Workspace) Tracked() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, len(w.tracked))
	copy(out, w.tracked)
	return out
}

// Remove deletes path. Missing files are not an error.
func (w *Workspace) Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}

// SweepPartials deletes partially-written download files in the job directory.
func (w *Workspace) SweepPartials() error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", w.dir, err)
	}
	var result *multierror.Error
	for _, e := range entries {
		if e.IsDir() || !isPartial(e.Name()) {
			continue
		}
		if err := w.Remove(filepath.Join(w.dir, e.Name())); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// Cleanup deletes every tracked path and the job directory itself. It can be
// called more than once.
func (w *Workspace) Cleanup() error {
	var result *multierror.Error
	for _, p := range w.Tracked() {
		if err := w.Remove(p); err != nil {
			result = multierror.Append(result, err)
		}
	}
	if err := os.RemoveAll(w.dir); err != nil {
		result = multierror.Append(result, fmt.Errorf("remove %s: %w", w.dir, err))
	}
	return result.ErrorOrNil()
}

func isPartial(name string) bool {
	for _, suffix := range partialSuffixes {
		if strings.HasSuffix(name, suffix) || strings.Contains(name, suffix+".") || strings.Contains(name, suffix+"-") {
			return true
		}
	}
	return false
}

// NonEmptyFile reports whether path exists and has content.
func NonEmptyFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir() && info.Size() > 0
}
