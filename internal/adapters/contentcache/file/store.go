package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bnema/repostctl/internal/adapters/fsutil"
	"github.com/bnema/repostctl/internal/domain"
	"github.com/bnema/repostctl/internal/ports"
)

const filePrefix = "media_cache_"

type Store struct {
	dir   string
	ttl   time.Duration
	clock ports.Clock
	mu    sync.RWMutex
}

var _ ports.ContentCache = (*Store)(nil)

func NewStore(dir string, ttl time.Duration, clock ports.Clock) *Store {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &Store{dir: filepath.Clean(dir), ttl: ttl, clock: clock}
}

func (s *Store) Load(ctx context.Context, username string) ([]domain.ContentItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := s.pathFor(username)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrCacheMiss
		}
		return nil, fmt.Errorf("stat content cache %q: %w", username, err)
	}
	if s.clock.Now().Sub(info.ModTime()) > s.ttl {
		return nil, domain.ErrCacheMiss
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read content cache %q: %w", username, err)
	}

	var items []domain.ContentItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode content cache %q: %w", username, err)
	}

	return items, nil
}

func (s *Store) Store(ctx context.Context, username string, items []domain.ContentItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := s.pathFor(username)
	if err != nil {
		return err
	}

	if items == nil {
		items = []domain.ContentItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode content cache %q: %w", username, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := fsutil.WriteAtomic(path, data, fsutil.PrivateFileMode); err != nil {
		return fmt.Errorf("write content cache %q: %w", username, err)
	}

	return nil
}

func (s *Store) Delete(ctx context.Context, username string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := s.pathFor(username)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete content cache %q: %w", username, err)
	}

	return nil
}

func (s *Store) pathFor(username string) (string, error) {
	trimmed := strings.TrimSpace(username)
	if trimmed == "" {
		return "", errors.New("content cache username is empty")
	}
	if strings.ContainsAny(trimmed, `/\`) || strings.Contains(trimmed, "..") {
		return "", fmt.Errorf("invalid content cache username %q", username)
	}

	return filepath.Join(s.dir, filePrefix+trimmed+".json"), nil
}
