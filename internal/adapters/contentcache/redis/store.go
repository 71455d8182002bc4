package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bnema/repostctl/internal/domain"
	"github.com/bnema/repostctl/internal/ports"
	goredis "github.com/redis/go-redis/v9"
)

const (
	keyPrefix   = "repostctl:media_cache:"
	pingTimeout = 5 * time.Second
)

type Store struct {
	client *goredis.Client
	ttl    time.Duration
}

var _ ports.ContentCache = (*Store)(nil)

func NewStore(client *goredis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

// Connect parses a redis:// URL and checks the server answers a ping.
func Connect(ctx context.Context, rawURL string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := goredis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return client, nil
}

func (s *Store) Load(ctx context.Context, username string) ([]domain.ContentItem, error) {
	data, err := s.client.Get(ctx, keyFor(username)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, domain.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get content cache %q: %w", username, err)
	}

	var items []domain.ContentItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode content cache %q: %w", username, err)
	}

	return items, nil
}

func (s *Store) Store(ctx context.Context, username string, items []domain.ContentItem) error {
	if items == nil {
		items = []domain.ContentItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode content cache %q: %w", username, err)
	}

	if err := s.client.Set(ctx, keyFor(username), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set content cache %q: %w", username, err)
	}

	return nil
}

func (s *Store) Delete(ctx context.Context, username string) error {
	if err := s.client.Del(ctx, keyFor(username)).Err(); err != nil {
		return fmt.Errorf("redis delete content cache %q: %w", username, err)
	}

	return nil
}

func keyFor(username string) string {
	return keyPrefix + username
}
