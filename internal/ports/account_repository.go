package ports

import (
	"context"

	"github.com/bnema/repostctl/internal/domain"
)

type AccountRepository interface {
	Load(ctx context.Context) (domain.AccountSet, error)
	Save(ctx context.Context, accounts domain.AccountSet) error
}
