package application

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bnema/repostctl/internal/domain"
	"github.com/bnema/repostctl/internal/ports"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap/zaptest"
)

func mockAnyContext() interface{} {
	return mock.Anything
}

type inMemoryAccountRepo struct {
	mu       sync.Mutex
	accounts domain.AccountSet
	saves    int
}

func (r *inMemoryAccountRepo) Load(ctx context.Context) (domain.AccountSet, error) {
	if err := ctx.Err(); err != nil {
		return domain.AccountSet{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.accounts.Clone(), nil
}

func (r *inMemoryAccountRepo) Save(ctx context.Context, accounts domain.AccountSet) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := accounts.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accounts = accounts.Clone()
	r.saves++
	return nil
}

func (r *inMemoryAccountRepo) snapshot() domain.AccountSet {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.accounts.Clone()
}

type inMemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
	deleted  []string
}

func newInMemorySessionStore() *inMemorySessionStore {
	return &inMemorySessionStore{sessions: map[string]domain.Session{}}
}

func (s *inMemorySessionStore) Load(_ context.Context, username string) (domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[username]
	if !ok {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	return session, nil
}

func (s *inMemorySessionStore) Save(_ context.Context, session domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session.Legacy = false
	s.sessions[session.Username] = session
	return nil
}

func (s *inMemorySessionStore) Delete(_ context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, username)
	s.deleted = append(s.deleted, username)
	return nil
}

func (s *inMemorySessionStore) get(username string) (domain.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[username]
	return session, ok
}

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// prefixCipher stands in for the vault: "enc:" + plaintext.
type prefixCipher struct{}

func (prefixCipher) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", errors.New("encrypt: plaintext is empty")
	}
	return "enc:" + plaintext, nil
}

func (prefixCipher) Decrypt(ciphertext string) (string, error) {
	plaintext, ok := strings.CutPrefix(ciphertext, "enc:")
	if !ok || plaintext == "" {
		return "", fmt.Errorf("%w: not sealed by this key", domain.ErrDecryption)
	}
	return plaintext, nil
}

type fakeBehavior struct {
	login    func(ctx context.Context, password string) (domain.Session, error)
	resolve  func(ctx context.Context, code string) (domain.Session, error)
	restore  func(ctx context.Context, session domain.Session) (domain.Session, error)
	recent   func(ctx context.Context, count int) ([]domain.ContentItem, error)
	media    func(ctx context.Context, id string) (domain.ContentItem, error)
	download func(ctx context.Context, id, dir, prefix string) (string, error)
	upload   func(ctx context.Context, path, caption string, mediaType domain.MediaType) (domain.UploadResult, error)
}

// fakePlatform plays the remote side for every account and counts calls
// per "username:op".
type fakePlatform struct {
	mu        sync.Mutex
	behaviors map[string]*fakeBehavior
	calls     map[string]int
	uploads   map[string][]string
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		behaviors: map[string]*fakeBehavior{},
		calls:     map[string]int{},
		uploads:   map[string][]string{},
	}
}

func (p *fakePlatform) on(username string) *fakeBehavior {
	p.mu.Lock()
	defer p.mu.Unlock()
	behavior, ok := p.behaviors[username]
	if !ok {
		behavior = &fakeBehavior{}
		p.behaviors[username] = behavior
	}
	return behavior
}

func (p *fakePlatform) record(username, op string) *fakeBehavior {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls[username+":"+op]++
	behavior, ok := p.behaviors[username]
	if !ok {
		behavior = &fakeBehavior{}
		p.behaviors[username] = behavior
	}
	return behavior
}

func (p *fakePlatform) count(username, op string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[username+":"+op]
}

func (p *fakePlatform) captionsUploadedTo(username string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.uploads[username]...)
}

func (p *fakePlatform) NewClient(username string) (ports.RemoteClient, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls[username+":new_client"]++
	return &fakeClient{platform: p, username: username}, nil
}

type fakeClient struct {
	platform *fakePlatform
	username string
}

func (c *fakeClient) Login(ctx context.Context, username, password string) (domain.Session, error) {
	behavior := c.platform.record(c.username, "login")
	if behavior.login != nil {
		return behavior.login(ctx, password)
	}
	return defaultSession(username), nil
}

func (c *fakeClient) ResolveChallenge(ctx context.Context, code string) (domain.Session, error) {
	behavior := c.platform.record(c.username, "resolve")
	if behavior.resolve != nil {
		return behavior.resolve(ctx, code)
	}
	return defaultSession(c.username), nil
}

func (c *fakeClient) RestoreSession(ctx context.Context, session domain.Session) (domain.Session, error) {
	behavior := c.platform.record(c.username, "restore")
	if behavior.restore != nil {
		return behavior.restore(ctx, session)
	}
	return domain.Session{}, domain.ErrSessionRejected
}

func (c *fakeClient) FetchRecentMedia(ctx context.Context, userID string, count int) ([]domain.ContentItem, error) {
	behavior := c.platform.record(c.username, "recent")
	if behavior.recent != nil {
		return behavior.recent(ctx, count)
	}
	return nil, nil
}

func (c *fakeClient) FetchMediaByID(ctx context.Context, id string) (domain.ContentItem, error) {
	behavior := c.platform.record(c.username, "media")
	if behavior.media != nil {
		return behavior.media(ctx, id)
	}
	return domain.ContentItem{ID: id, CaptionText: "caption of " + id, MediaType: domain.MediaPhoto}, nil
}

func (c *fakeClient) DownloadMedia(ctx context.Context, id, destDir, namePrefix string) (string, error) {
	behavior := c.platform.record(c.username, "download")
	if behavior.download != nil {
		return behavior.download(ctx, id, destDir, namePrefix)
	}
	path := filepath.Join(destDir, namePrefix+".jpg")
	if err := os.WriteFile(path, []byte("media "+id), 0o600); err != nil {
		return "", err
	}
	return path, nil
}

func (c *fakeClient) UploadMedia(ctx context.Context, path, caption string, mediaType domain.MediaType) (domain.UploadResult, error) {
	behavior := c.platform.record(c.username, "upload")
	if behavior.upload != nil {
		result, err := behavior.upload(ctx, path, caption, mediaType)
		if err != nil {
			return result, err
		}
	}
	if _, err := os.Stat(path); err != nil {
		return domain.UploadResult{}, fmt.Errorf("upload payload missing: %w", err)
	}

	c.platform.mu.Lock()
	c.platform.uploads[c.username] = append(c.platform.uploads[c.username], caption)
	c.platform.mu.Unlock()

	return domain.UploadResult{ID: "up-" + c.username, Code: "UP" + c.username}, nil
}

func defaultSession(username string) domain.Session {
	return domain.Session{
		Username: username,
		UserID:   "id-" + username,
		Settings: []byte(`{"cookie":"` + username + `"}`),
	}
}

func waitForCancel(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func accountSet(main string, alts ...string) domain.AccountSet {
	set := domain.AccountSet{}
	if main != "" {
		set.Main = &domain.Account{Username: main, EncryptedPassword: "enc:pw-" + main, Role: domain.RoleMain}
	}
	for _, alt := range alts {
		set.Alts = append(set.Alts, domain.Account{Username: alt, EncryptedPassword: "enc:pw-" + alt, Role: domain.RoleAlt})
	}
	return set
}

func newTestCaller(t *testing.T, concurrency int64) *Caller {
	t.Helper()

	caller := NewCaller(CallerOptions{Concurrency: concurrency, RateLimit: 10000, Burst: 1000}, zaptest.NewLogger(t), nil)
	caller.sleep = func(ctx context.Context, _ time.Duration) error { return ctx.Err() }
	return caller
}

func testSessionConfig() SessionConfig {
	return SessionConfig{
		VerificationTimeout: 2 * time.Second,
		MaxChallengeRounds:  3,
		LoginPolicy:         Policy{Timeout: time.Second, Attempts: 2},
		RestorePolicy:       Policy{Timeout: time.Second, Attempts: 1},
		ChallengePolicy:     Policy{Timeout: time.Second, Attempts: 1},
	}
}

func testCacheConfig() CacheConfig {
	cfg := DefaultCacheConfig()
	cfg.RefreshPolicy = Policy{Timeout: 40 * time.Millisecond, Attempts: 3, Backoff: time.Millisecond}
	cfg.ReconnectTimeout = 40 * time.Millisecond
	cfg.ProcessBudget = time.Second
	cfg.RefreshBudget = 3 * time.Second
	cfg.FallbackTimeout = 40 * time.Millisecond
	return cfg
}

func testPipelineConfig() PipelineConfig {
	return PipelineConfig{
		MetadataPolicy: Policy{Timeout: time.Second, Attempts: 2},
		DownloadPolicy: Policy{Timeout: time.Second, Attempts: 2},
		UploadPolicy:   Policy{Timeout: time.Second, Attempts: 2},
	}
}

type harness struct {
	repo     *inMemoryAccountRepo
	store    *inMemorySessionStore
	platform *fakePlatform
	clock    *manualClock
	caller   *Caller
	sessions *SessionManager
	cache    *RepostCache
}

func newHarness(t *testing.T, accounts domain.AccountSet, verifier ports.VerificationCallback) *harness {
	t.Helper()

	h := &harness{
		repo:     &inMemoryAccountRepo{accounts: accounts},
		store:    newInMemorySessionStore(),
		platform: newFakePlatform(),
		clock:    newManualClock(),
		caller:   newTestCaller(t, 2),
	}
	logger := zaptest.NewLogger(t)
	h.sessions = NewSessionManager(SessionDeps{
		Accounts: h.repo,
		Cipher:   prefixCipher{},
		Store:    h.store,
		Factory:  h.platform,
		Verifier: verifier,
		Caller:   h.caller,
		Logger:   logger,
		Clock:    h.clock,
	}, testSessionConfig())
	h.cache = NewRepostCache(h.sessions, h.caller, h.clock, logger, nil, testCacheConfig())

	return h
}
