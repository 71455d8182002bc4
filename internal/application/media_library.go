package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/bnema/repostctl/internal/domain"
	"github.com/bnema/repostctl/internal/ports"
	"go.uber.org/zap"
)

// MediaLibrary lists the main account's recent content and which alts
// already carry each item.
type MediaLibrary struct {
	accounts ports.AccountRepository
	sessions *SessionManager
	cache    *RepostCache
	content  ports.ContentCache
	caller   *Caller
	logger   *zap.Logger
	policy   Policy
}

func NewMediaLibrary(accounts ports.AccountRepository, sessions *SessionManager, cache *RepostCache, content ports.ContentCache, caller *Caller, logger *zap.Logger, policy Policy) *MediaLibrary {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &MediaLibrary{
		accounts: accounts,
		sessions: sessions,
		cache:    cache,
		content:  content,
		caller:   caller,
		logger:   logger,
		policy:   policy,
	}
}

const DefaultRecentCount = 12

func (l *MediaLibrary) Recent(ctx context.Context, count int, refresh bool) ([]domain.MediaStatus, error) {
	if count <= 0 {
		count = DefaultRecentCount
	}

	accounts, err := l.accounts.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}
	if accounts.Main == nil {
		return nil, domain.ErrNoMainAccount
	}
	mainUser := accounts.Main.Username

	items, err := l.items(ctx, mainUser, count, refresh)
	if err != nil {
		return nil, err
	}

	reposted := l.cache.CheckMany(ctx, items, accounts.AltUsernames())
	out := make([]domain.MediaStatus, 0, len(items))
	for _, item := range items {
		out = append(out, domain.MediaStatus{Item: item, RepostedTo: reposted[item.ID]})
	}

	return out, nil
}

func (l *MediaLibrary) items(ctx context.Context, mainUser string, count int, refresh bool) ([]domain.ContentItem, error) {
	if !refresh {
		cached, err := l.content.Load(ctx, mainUser)
		switch {
		case err == nil && len(cached) >= count:
			return cached[:count], nil
		case err != nil && !errors.Is(err, domain.ErrCacheMiss):
			l.logger.Warn("content cache unreadable", zap.String("account", mainUser), zap.Error(err))
		}
	}

	handle, err := l.sessions.Ensure(ctx, mainUser)
	if err != nil {
		return nil, fmt.Errorf("connect main account: %w", err)
	}

	items, err := Call(ctx, l.caller, "fetch_recent_media", l.policy, func(ctx context.Context) ([]domain.ContentItem, error) {
		return handle.Client.FetchRecentMedia(ctx, handle.UserID, count)
	})
	if err != nil {
		return nil, fmt.Errorf("fetch recent media: %w", err)
	}

	if err := l.content.Store(ctx, mainUser, items); err != nil {
		l.logger.Warn("store content cache failed", zap.String("account", mainUser), zap.Error(err))
	}

	return items, nil
}
