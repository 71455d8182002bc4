package workspace

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bnema/repostctl/internal/adapters/fsutil"
	"github.com/bnema/repostctl/internal/ports"
)

const (
	RetainedPrefix = "downloaded_"
	StagedPrefix   = "temp_post_"
)

type Workspace struct {
	tempDir string
}

var _ ports.Workspace = (*Workspace)(nil)

func New(tempDir string) (*Workspace, error) {
	tempDir = strings.TrimSpace(tempDir)
	if tempDir == "" {
		return nil, errors.New("workspace temp dir is empty")
	}

	abs, err := filepath.Abs(tempDir)
	if err != nil {
		return nil, fmt.Errorf("resolve workspace temp dir: %w", err)
	}
	if err := os.MkdirAll(abs, fsutil.PrivateDirMode); err != nil {
		return nil, fmt.Errorf("create workspace temp dir: %w", err)
	}

	return &Workspace{tempDir: abs}, nil
}

func (w *Workspace) TempDir() string {
	return w.tempDir
}

func (w *Workspace) StageCopy(path string) (string, error) {
	src, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("stage %s: is a directory", path)
	}

	target := filepath.Join(w.tempDir, StagedPrefix+filepath.Base(path))
	dst, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fsutil.PrivateFileMode)
	if err != nil {
		return "", fmt.Errorf("create staged copy: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = os.Remove(target)
		return "", fmt.Errorf("copy %s: %w", path, err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(target)
		return "", fmt.Errorf("close staged copy: %w", err)
	}

	return target, nil
}

// IsRetained reports whether path belongs to the user: explicit downloads
// and anything outside the temp dir.
func (w *Workspace) IsRetained(path string) bool {
	if strings.HasPrefix(filepath.Base(path), RetainedPrefix) {
		return true
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return true
	}
	rel, err := filepath.Rel(w.tempDir, abs)
	if err != nil {
		return true
	}

	return rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func (w *Workspace) Discard(path string) error {
	if path == "" || w.IsRetained(path) {
		return nil
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("discard %s: %w", filepath.Base(path), err)
	}

	return nil
}

// taggedFor reports whether name was written for username: "<user>_..."
// directly or behind the staged or retained prefix.
func taggedFor(name, username string) bool {
	tag := username + "_"
	for _, prefix := range []string{"", StagedPrefix, RetainedPrefix} {
		if rest, ok := strings.CutPrefix(name, prefix); ok && strings.HasPrefix(rest, tag) {
			return true
		}
	}
	return false
}

func (w *Workspace) PurgeAccount(username string) (int, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return 0, nil
	}

	entries, err := os.ReadDir(w.tempDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("list workspace: %w", err)
	}

	var (
		removed int
		errs    []error
	)
	for _, entry := range entries {
		if entry.IsDir() || !taggedFor(entry.Name(), username) {
			continue
		}
		if err := os.Remove(filepath.Join(w.tempDir, entry.Name())); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
			continue
		}
		removed++
	}

	if err := errors.Join(errs...); err != nil {
		return removed, fmt.Errorf("purge workspace files for %q: %w", username, err)
	}

	return removed, nil
}
