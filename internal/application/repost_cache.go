package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/bnema/repostctl/internal/domain"
	"github.com/bnema/repostctl/internal/metrics"
	"github.com/bnema/repostctl/internal/ports"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type CacheConfig struct {
	TTL                 time.Duration
	RefreshItems        int
	RefreshPolicy       Policy
	ReconnectTimeout    time.Duration
	ProcessBudget       time.Duration
	RefreshBudget       time.Duration
	RefreshConcurrency  int
	FallbackItems       int
	FallbackTimeout     time.Duration
	SimilarityThreshold float64
	SimilarityMinLength int
}

func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		TTL:                 300 * time.Second,
		RefreshItems:        15,
		RefreshPolicy:       Policy{Timeout: 12 * time.Second, Attempts: 3, Backoff: 2 * time.Second},
		ReconnectTimeout:    15 * time.Second,
		ProcessBudget:       8 * time.Second,
		RefreshBudget:       15 * time.Second,
		RefreshConcurrency:  2,
		FallbackItems:       5,
		FallbackTimeout:     5 * time.Second,
		SimilarityThreshold: 0.9,
		SimilarityMinLength: 10,
	}
}

// RepostCache answers whether an item already went to an alt account. It
// keeps one fingerprint entry per alt; committed entries are never mutated.
type RepostCache struct {
	sessions *SessionManager
	caller   *Caller
	clock    ports.Clock
	logger   *zap.Logger
	metrics  *metrics.Metrics
	cfg      CacheConfig

	mu          sync.Mutex
	entries     map[string]domain.CacheEntry
	generations map[string]uint64

	background sync.WaitGroup
}

func NewRepostCache(sessions *SessionManager, caller *Caller, clock ports.Clock, logger *zap.Logger, m *metrics.Metrics, cfg CacheConfig) *RepostCache {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.RefreshConcurrency < 1 {
		cfg.RefreshConcurrency = 1
	}

	return &RepostCache{
		sessions:    sessions,
		caller:      caller,
		clock:       clock,
		logger:      logger,
		metrics:     m,
		cfg:         cfg,
		entries:     map[string]domain.CacheEntry{},
		generations: map[string]uint64{},
	}
}

// Check returns the sorted alt usernames that already carry item.
func (c *RepostCache) Check(ctx context.Context, item domain.ContentItem, alts []string) []string {
	if item.Caption() == "" {
		return []string{}
	}

	return c.CheckMany(ctx, []domain.ContentItem{item}, alts)[item.ID]
}

// CheckMany refreshes stale entries once and matches every item against
// the same snapshot. The result is keyed by item ID.
func (c *RepostCache) CheckMany(ctx context.Context, items []domain.ContentItem, alts []string) map[string][]string {
	out := make(map[string][]string, len(items))
	for _, item := range items {
		out[item.ID] = []string{}
	}

	alts = cleanUsernames(alts)
	if len(alts) == 0 || !anyCaption(items) {
		return out
	}

	c.refreshStale(ctx, alts)
	snapshot := c.snapshot(alts)

	if allEmpty(snapshot) {
		c.metrics.IncCacheFallback()
		recent := c.fallbackFetch(ctx, alts)
		for _, item := range items {
			out[item.ID] = c.matchFallback(item, recent)
		}
		return out
	}

	for _, item := range items {
		if item.Caption() == "" {
			continue
		}
		matched := []string{}
		for _, username := range alts {
			entry, ok := snapshot[username]
			if !ok || entry.IsEmpty() {
				continue
			}
			if entry.Match(item) != domain.MatchNone {
				matched = append(matched, username)
			}
		}
		sort.Strings(matched)
		out[item.ID] = matched
	}

	return out
}

// MarkReposted records a successful upload without waiting for a refresh.
func (c *RepostCache) MarkReposted(username string, item domain.ContentItem) {
	username = domain.NormalizeUsername(username)
	if username == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[username]
	if !ok {
		entry = domain.NewCacheEntry(time.Time{})
	}
	c.entries[username] = entry.With(item)
}

func (c *RepostCache) Forget(username string) {
	username = domain.NormalizeUsername(username)

	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, username)
	c.generations[username]++
}

func (c *RepostCache) Entry(username string) (domain.CacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[domain.NormalizeUsername(username)]
	return entry, ok
}

func (c *RepostCache) Snapshot() []domain.CacheSummary {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]domain.CacheSummary, 0, len(c.entries))
	for username, entry := range c.entries {
		out = append(out, domain.CacheSummary{
			Username:        username,
			Items:           len(entry.ContentIDs),
			LastRefreshedAt: entry.LastRefreshedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })

	return out
}

type refreshedEntry struct {
	username   string
	generation uint64
	entry      domain.CacheEntry
}

// refreshStale refreshes missing or stale entries with bounded concurrency.
// Whatever has not finished when the budget runs out is discarded, and a
// failed refresh leaves the previous entry in place.
func (c *RepostCache) refreshStale(ctx context.Context, alts []string) {
	now := c.clock.Now()

	c.mu.Lock()
	stale := make([]string, 0, len(alts))
	generations := make(map[string]uint64, len(alts))
	for _, username := range alts {
		entry, ok := c.entries[username]
		if !ok || entry.IsStale(now, c.cfg.TTL) {
			stale = append(stale, username)
			generations[username] = c.generations[username]
		}
	}
	c.mu.Unlock()

	if len(stale) == 0 {
		return
	}

	budgetCtx, cancel := context.WithTimeout(ctx, c.cfg.RefreshBudget)
	defer cancel()

	results := make(chan refreshedEntry, len(stale))
	done := make(chan struct{})
	c.background.Add(1)
	go func() {
		defer c.background.Done()
		defer close(done)

		var group errgroup.Group
		group.SetLimit(c.cfg.RefreshConcurrency)
		for _, username := range stale {
			group.Go(func() error {
				if budgetCtx.Err() != nil {
					return nil
				}
				entry, err := c.refreshAccount(ctx, budgetCtx, username)
				if err != nil {
					c.metrics.IncCacheRefresh(refreshOutcome(err))
					c.logger.Warn("cache refresh failed",
						zap.String("account", username),
						zap.Error(err),
					)
					return nil
				}
				c.metrics.IncCacheRefresh(metrics.OutcomeOK)
				results <- refreshedEntry{username: username, generation: generations[username], entry: entry}
				return nil
			})
		}
		_ = group.Wait()
	}()

	select {
	case <-done:
	case <-budgetCtx.Done():
		c.logger.Warn("cache refresh budget exhausted, keeping partial results",
			zap.Duration("budget", c.cfg.RefreshBudget),
			zap.Int("accounts", len(stale)),
		)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for {
		select {
		case result := <-results:
			c.commitLocked(result)
		default:
			return
		}
	}
}

func (c *RepostCache) commitLocked(result refreshedEntry) {
	if c.generations[result.username] != result.generation {
		return
	}

	if previous, ok := c.entries[result.username]; ok && previous.LastRefreshedAt.After(result.entry.LastRefreshedAt) {
		result.entry.LastRefreshedAt = previous.LastRefreshedAt
	}
	c.entries[result.username] = result.entry
}

// refreshAccount fetches username's recent items within budgetCtx. A fetch
// that times out while budget remains is retried once on a fresh login; one
// cut off by the budget itself still gets its reconnect, on ctx, so the next
// refresh starts from a live session.
func (c *RepostCache) refreshAccount(ctx, budgetCtx context.Context, username string) (domain.CacheEntry, error) {
	handle, err := c.sessions.Ensure(budgetCtx, username)
	if err != nil {
		return domain.CacheEntry{}, err
	}

	items, err := c.fetchRecent(budgetCtx, handle, c.cfg.RefreshItems, c.cfg.RefreshPolicy)
	switch {
	case err == nil:
	case budgetCtx.Err() == nil && errors.Is(err, domain.ErrRemoteTimeout):
		c.logger.Info("fetch timed out, reconnecting", zap.String("account", username))

		handle, reconnectErr := c.sessions.Reconnect(budgetCtx, username)
		if reconnectErr != nil {
			return domain.CacheEntry{}, errors.Join(err, fmt.Errorf("reconnect: %w", reconnectErr))
		}
		items, err = c.fetchRecent(budgetCtx, handle, c.cfg.RefreshItems, Policy{Timeout: c.cfg.ReconnectTimeout, Attempts: 1})
	case budgetCtx.Err() != nil && ctx.Err() == nil && isTimeout(err):
		c.reconnectDetached(ctx, username)
	}
	if err != nil {
		return domain.CacheEntry{}, err
	}

	return c.buildEntry(username, items), nil
}

// reconnectDetached logs username in again outside the refresh budget,
// bounded by ReconnectTimeout. Nothing fetched here reaches the cache.
func (c *RepostCache) reconnectDetached(ctx context.Context, username string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.cfg.ReconnectTimeout)
	defer cancel()

	c.logger.Info("fetch outlived refresh budget, reconnecting", zap.String("account", username))
	if _, err := c.sessions.Reconnect(ctx, username); err != nil {
		c.logger.Warn("reconnect after refresh budget failed",
			zap.String("account", username),
			zap.Error(err),
		)
	}
}

func isTimeout(err error) bool {
	return errors.Is(err, domain.ErrRemoteTimeout) || errors.Is(err, context.DeadlineExceeded)
}

// Wait blocks until refresh work that outlived its budget, detached
// reconnects included, has finished.
func (c *RepostCache) Wait() {
	c.background.Wait()
}

func (c *RepostCache) fetchRecent(ctx context.Context, handle *Handle, count int, policy Policy) ([]domain.ContentItem, error) {
	return Call(ctx, c.caller, "fetch_recent_media", policy, func(ctx context.Context) ([]domain.ContentItem, error) {
		return handle.Client.FetchRecentMedia(ctx, handle.UserID, count)
	})
}

func (c *RepostCache) buildEntry(username string, items []domain.ContentItem) domain.CacheEntry {
	entry := domain.NewCacheEntry(c.clock.Now())
	deadline := time.Now().Add(c.cfg.ProcessBudget)

	for i, item := range items {
		if c.cfg.ProcessBudget > 0 && time.Now().After(deadline) {
			c.logger.Warn("cache index budget exhausted",
				zap.String("account", username),
				zap.Int("indexed", i),
				zap.Int("fetched", len(items)),
			)
			break
		}
		entry.Index(item)
	}

	return entry
}

// fallbackFetch pulls a few recent items per alt directly, once, with a
// short timeout. Failures leave that alt out.
func (c *RepostCache) fallbackFetch(ctx context.Context, alts []string) map[string][]domain.ContentItem {
	var (
		mu     sync.Mutex
		recent = make(map[string][]domain.ContentItem, len(alts))
		group  errgroup.Group
	)
	group.SetLimit(c.cfg.RefreshConcurrency)

	for _, username := range alts {
		group.Go(func() error {
			handle, err := c.sessions.Ensure(ctx, username)
			if err == nil {
				var items []domain.ContentItem
				items, err = c.fetchRecent(ctx, handle, c.cfg.FallbackItems, Policy{Timeout: c.cfg.FallbackTimeout, Attempts: 1})
				if err == nil {
					mu.Lock()
					recent[username] = items
					mu.Unlock()
					return nil
				}
			}
			c.logger.Debug("fallback fetch failed", zap.String("account", username), zap.Error(err))
			return nil
		})
	}
	_ = group.Wait()

	return recent
}

func (c *RepostCache) matchFallback(item domain.ContentItem, recent map[string][]domain.ContentItem) []string {
	matched := []string{}
	caption := item.Caption()
	if caption == "" {
		return matched
	}

	for username, items := range recent {
		for _, candidate := range items {
			if c.similarCaption(caption, candidate.Caption()) {
				matched = append(matched, username)
				break
			}
		}
	}
	sort.Strings(matched)

	return matched
}

func (c *RepostCache) similarCaption(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	if a == b {
		return true
	}
	if utf8.RuneCountInString(a) <= c.cfg.SimilarityMinLength || utf8.RuneCountInString(b) <= c.cfg.SimilarityMinLength {
		return false
	}

	return domain.SimilarityRatio(a, b) > c.cfg.SimilarityThreshold
}

func (c *RepostCache) snapshot(alts []string) map[string]domain.CacheEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[string]domain.CacheEntry, len(alts))
	for _, username := range alts {
		if entry, ok := c.entries[username]; ok {
			out[username] = entry
		}
	}
	return out
}

func refreshOutcome(err error) string {
	if isTimeout(err) {
		return metrics.OutcomeTimeout
	}
	return metrics.OutcomeError
}

func allEmpty(entries map[string]domain.CacheEntry) bool {
	for _, entry := range entries {
		if !entry.IsEmpty() {
			return false
		}
	}
	return true
}

func anyCaption(items []domain.ContentItem) bool {
	for _, item := range items {
		if item.Caption() != "" {
			return true
		}
	}
	return false
}

func cleanUsernames(usernames []string) []string {
	seen := make(map[string]struct{}, len(usernames))
	out := make([]string, 0, len(usernames))
	for _, username := range usernames {
		username = domain.NormalizeUsername(username)
		if username == "" {
			continue
		}
		if _, ok := seen[username]; ok {
			continue
		}
		seen[username] = struct{}{}
		out = append(out, username)
	}
	return out
}
