package ports

import (
	"context"

	"github.com/bnema/repostctl/internal/domain"
)

// ContentCache keeps a short-lived copy of an account's recent content.
// Load returns domain.ErrCacheMiss when nothing fresh is stored.
type ContentCache interface {
	Load(ctx context.Context, username string) ([]domain.ContentItem, error)
	Store(ctx context.Context, username string, items []domain.ContentItem) error
	Delete(ctx context.Context, username string) error
}
