package chain

import (
	"context"
	"errors"
	"fmt"

	"github.com/bnema/repostctl/internal/domain"
	"github.com/bnema/repostctl/internal/ports"
)

type Store struct {
	primary  ports.ContentCache
	fallback ports.ContentCache
}

var _ ports.ContentCache = (*Store)(nil)

var (
	errNilPrimaryStore  = errors.New("primary content cache is nil")
	errNilFallbackStore = errors.New("fallback content cache is nil")
)

func NewStore(primary ports.ContentCache, fallback ports.ContentCache) *Store {
	store, err := NewStoreChecked(primary, fallback)
	if err != nil {
		panic(err)
	}

	return store
}

func NewStoreChecked(primary ports.ContentCache, fallback ports.ContentCache) (*Store, error) {
	if primary == nil {
		return nil, errNilPrimaryStore
	}
	if fallback == nil {
		return nil, errNilFallbackStore
	}

	return &Store{primary: primary, fallback: fallback}, nil
}

func (s *Store) Load(ctx context.Context, username string) ([]domain.ContentItem, error) {
	items, err := s.primary.Load(ctx, username)
	if err == nil {
		return items, nil
	}
	if shouldSkipFallback(err) {
		return nil, err
	}

	fallbackItems, fallbackErr := s.fallback.Load(ctx, username)
	if fallbackErr == nil {
		return fallbackItems, nil
	}
	if errors.Is(err, domain.ErrCacheMiss) && errors.Is(fallbackErr, domain.ErrCacheMiss) {
		return nil, domain.ErrCacheMiss
	}

	return nil, fmt.Errorf("primary cache load failed: %w; fallback cache load failed: %w", err, fallbackErr)
}

func (s *Store) Store(ctx context.Context, username string, items []domain.ContentItem) error {
	err := s.primary.Store(ctx, username, items)
	if err == nil {
		return nil
	}
	if shouldSkipFallback(err) {
		return err
	}

	fallbackErr := s.fallback.Store(ctx, username, items)
	if fallbackErr == nil {
		return nil
	}

	return fmt.Errorf("primary cache store failed: %w; fallback cache store failed: %w", err, fallbackErr)
}

// Delete clears both backends; an entry may live in either one.
func (s *Store) Delete(ctx context.Context, username string) error {
	var errs []error
	if err := s.primary.Delete(ctx, username); err != nil {
		errs = append(errs, fmt.Errorf("primary cache delete failed: %w", err))
	}
	if err := s.fallback.Delete(ctx, username); err != nil {
		errs = append(errs, fmt.Errorf("fallback cache delete failed: %w", err))
	}

	return errors.Join(errs...)
}

func shouldSkipFallback(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
