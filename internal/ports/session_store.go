package ports

import (
	"context"

	"github.com/bnema/repostctl/internal/domain"
)

type SessionStore interface {
	Load(ctx context.Context, username string) (domain.Session, error)
	Save(ctx context.Context, session domain.Session) error
	Delete(ctx context.Context, username string) error
}
