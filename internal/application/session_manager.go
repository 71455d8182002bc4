package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bnema/repostctl/internal/domain"
	"github.com/bnema/repostctl/internal/ports"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Handle is an authenticated client for one account. Handles are never
// mutated; a reconnect installs a new one.
type Handle struct {
	Username string
	UserID   string
	Client   ports.RemoteClient
}

type SessionConfig struct {
	VerificationTimeout time.Duration
	MaxChallengeRounds  int
	LoginPolicy         Policy
	RestorePolicy       Policy
	ChallengePolicy     Policy
}

func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		VerificationTimeout: 180 * time.Second,
		MaxChallengeRounds:  3,
		LoginPolicy:         Policy{Timeout: 30 * time.Second, Attempts: 3, Backoff: 2 * time.Second},
		RestorePolicy:       Policy{Timeout: 10 * time.Second, Attempts: 1},
		ChallengePolicy:     Policy{Timeout: 30 * time.Second, Attempts: 2, Backoff: 2 * time.Second},
	}
}

type SessionManager struct {
	accounts ports.AccountRepository
	cipher   ports.Cipher
	store    ports.SessionStore
	factory  ports.ClientFactory
	verifier ports.VerificationCallback
	caller   *Caller
	logger   *zap.Logger
	clock    ports.Clock
	cfg      SessionConfig

	flight singleflight.Group

	mu      sync.RWMutex
	handles map[string]*Handle
	main    *Handle
	alts    []*Handle
	states  map[string]domain.SessionState

	// epochs moves on Disconnect and Forget, rosterGen on SyncRoles. A
	// connect that started under older values never installs its handle
	// against them.
	epochs    map[string]uint64
	rosterGen uint64
	roster    domain.AccountSet
}

type SessionDeps struct {
	Accounts ports.AccountRepository
	Cipher   ports.Cipher
	Store    ports.SessionStore
	Factory  ports.ClientFactory
	Verifier ports.VerificationCallback
	Caller   *Caller
	Logger   *zap.Logger
	Clock    ports.Clock
}

func NewSessionManager(deps SessionDeps, cfg SessionConfig) *SessionManager {
	defaults := DefaultSessionConfig()
	if cfg.VerificationTimeout <= 0 {
		cfg.VerificationTimeout = defaults.VerificationTimeout
	}
	if cfg.MaxChallengeRounds < 1 {
		cfg.MaxChallengeRounds = defaults.MaxChallengeRounds
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Clock == nil {
		deps.Clock = ports.SystemClock{}
	}
	if deps.Caller == nil {
		deps.Caller = NewCaller(DefaultCallerOptions(), deps.Logger, nil)
	}

	return &SessionManager{
		accounts: deps.Accounts,
		cipher:   deps.Cipher,
		store:    deps.Store,
		factory:  deps.Factory,
		verifier: deps.Verifier,
		caller:   deps.Caller,
		logger:   deps.Logger,
		clock:    deps.Clock,
		cfg:      cfg,
		handles:  map[string]*Handle{},
		states:   map[string]domain.SessionState{},
		epochs:   map[string]uint64{},
	}
}

// Connect authenticates username, restoring its persisted session when the
// remote still accepts it and falling back to a full login otherwise.
func (m *SessionManager) Connect(ctx context.Context, username string) (*Handle, error) {
	return m.connectOnce(ctx, domain.NormalizeUsername(username), false)
}

// Reconnect forces a full login and swaps the new handle in. Callers still
// holding the previous handle finish against it.
func (m *SessionManager) Reconnect(ctx context.Context, username string) (*Handle, error) {
	return m.connectOnce(ctx, domain.NormalizeUsername(username), true)
}

// Ensure returns the live handle for username, connecting on first use.
func (m *SessionManager) Ensure(ctx context.Context, username string) (*Handle, error) {
	username = domain.NormalizeUsername(username)

	m.mu.RLock()
	handle, ok := m.handles[username]
	m.mu.RUnlock()
	if ok {
		return handle, nil
	}

	return m.connectOnce(ctx, username, false)
}

func (m *SessionManager) connectOnce(ctx context.Context, username string, fresh bool) (*Handle, error) {
	key := username
	if fresh {
		key = "reconnect:" + username
	}

	result, err, _ := m.flight.Do(key, func() (any, error) {
		return m.connect(ctx, username, fresh)
	})
	if err != nil {
		return nil, err
	}

	return result.(*Handle), nil
}

func (m *SessionManager) connect(ctx context.Context, username string, fresh bool) (*Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if username == "" {
		return nil, domain.ErrInvalidUsername
	}

	epoch, rosterGen := m.generation(username)

	accounts, err := m.accounts.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}
	account, ok := accounts.Find(username)
	if !ok {
		return nil, fmt.Errorf("connect %q: %w", username, domain.ErrAccountNotFound)
	}

	logger := m.logger.With(zap.String("account", username), zap.String("role", string(account.Role)))
	setState := func(state domain.SessionState) {
		m.setStateAt(username, epoch, state)
	}
	setState(domain.StateAuthenticating)

	client, err := m.factory.NewClient(username)
	if err != nil {
		setState(domain.StateLoggedOut)
		return nil, fmt.Errorf("create client for %q: %w", username, err)
	}

	var session domain.Session
	restored := false
	if !fresh {
		session, restored = m.restore(ctx, client, username, logger)
	}
	if err := ctx.Err(); err != nil {
		setState(domain.StateLoggedOut)
		return nil, err
	}

	if !restored {
		password, err := m.password(account)
		if err != nil {
			setState(domain.StateLoggedOut)
			return nil, err
		}

		session, err = m.login(ctx, client, username, password, setState)
		if err != nil {
			setState(domain.StateLoggedOut)
			logger.Warn("login failed", zap.Error(err))
			return nil, err
		}
	}

	handle := &Handle{Username: username, UserID: session.UserID, Client: client}
	if !m.install(accounts, handle, epoch, rosterGen) {
		logger.Info("account dropped while connecting, discarding session")
		return nil, fmt.Errorf("connect %q: %w", username, domain.ErrNotConnected)
	}

	session.Username = username
	session.SavedAt = m.clock.Now()
	if err := m.store.Save(ctx, session); err != nil {
		logger.Warn("persist session failed", zap.Error(err))
	}
	logger.Info("account connected", zap.Bool("restored", restored))

	return handle, nil
}

func (m *SessionManager) restore(ctx context.Context, client ports.RemoteClient, username string, logger *zap.Logger) (domain.Session, bool) {
	saved, err := m.store.Load(ctx, username)
	if err != nil {
		if !errors.Is(err, domain.ErrSessionNotFound) {
			logger.Warn("persisted session unreadable, logging in again", zap.Error(err))
		}
		return domain.Session{}, false
	}

	session, err := Call(ctx, m.caller, "restore_session", m.cfg.RestorePolicy, func(ctx context.Context) (domain.Session, error) {
		return client.RestoreSession(ctx, saved)
	})
	if err != nil {
		logger.Info("persisted session rejected, logging in again", zap.Error(err))
		return domain.Session{}, false
	}
	if session.UserID == "" {
		session.UserID = saved.UserID
	}
	if len(session.Settings) == 0 {
		session.Settings = saved.Settings
	}
	if saved.Legacy {
		logger.Info("upgrading legacy session file to encrypted form")
	}

	return session, true
}

func (m *SessionManager) password(account domain.Account) (string, error) {
	if strings.TrimSpace(account.EncryptedPassword) == "" {
		return "", fmt.Errorf("account %q: %w", account.Username, domain.ErrMissingPassword)
	}

	password, err := m.cipher.Decrypt(account.EncryptedPassword)
	if err != nil {
		return "", fmt.Errorf("decrypt password for %q: %w", account.Username, err)
	}

	return password, nil
}

func (m *SessionManager) login(ctx context.Context, client ports.RemoteClient, username, password string, onState func(domain.SessionState)) (domain.Session, error) {
	session, err := Call(ctx, m.caller, "login", m.cfg.LoginPolicy, func(ctx context.Context) (domain.Session, error) {
		return client.Login(ctx, username, password)
	})

	for round := 1; err != nil && errors.Is(err, domain.ErrChallengeRequired); round++ {
		if round > m.cfg.MaxChallengeRounds {
			return domain.Session{}, fmt.Errorf("authenticate %q: gave up after %d verification rounds: %w", username, m.cfg.MaxChallengeRounds, err)
		}

		kind := domain.ChallengeEmail
		var challenge *domain.ChallengeRequiredError
		if errors.As(err, &challenge) {
			kind = challenge.Kind.Normalize()
		}

		onState(domain.StateChallengePending)
		code, codeErr := m.awaitCode(ctx, username, kind)
		if codeErr != nil {
			return domain.Session{}, fmt.Errorf("authenticate %q: %w", username, codeErr)
		}
		onState(domain.StateAuthenticating)

		session, err = Call(ctx, m.caller, "resolve_challenge", m.cfg.ChallengePolicy, func(ctx context.Context) (domain.Session, error) {
			return client.ResolveChallenge(ctx, code)
		})
	}
	if err != nil {
		var blocked *domain.IPBlacklistError
		if errors.As(err, &blocked) {
			blocked.Username = username
			return domain.Session{}, blocked
		}
		return domain.Session{}, fmt.Errorf("authenticate %q: %w", username, err)
	}

	return session, nil
}

type codeAnswer struct {
	code string
	ok   bool
	err  error
}

// awaitCode asks the verifier for a code on its own goroutine and waits on a
// single-slot channel, bounded by the verification timeout.
func (m *SessionManager) awaitCode(ctx context.Context, username string, kind domain.ChallengeKind) (string, error) {
	if m.verifier == nil {
		return "", fmt.Errorf("%w: no verification handler", domain.ErrVerificationCancelled)
	}

	askCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	answers := make(chan codeAnswer, 1)
	go func() {
		code, ok, err := m.verifier.RequestCode(askCtx, username, kind)
		answers <- codeAnswer{code: code, ok: ok, err: err}
	}()

	timer := time.NewTimer(m.cfg.VerificationTimeout)
	defer timer.Stop()

	select {
	case answer := <-answers:
		if answer.err != nil {
			return "", fmt.Errorf("request verification code: %w", answer.err)
		}
		code := strings.TrimSpace(answer.code)
		if !answer.ok || code == "" {
			return "", domain.ErrVerificationCancelled
		}
		return code, nil
	case <-timer.C:
		return "", fmt.Errorf("%w after %s", domain.ErrVerificationTimeout, m.cfg.VerificationTimeout)
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// ConnectAll connects the main account first and then every alt, recording
// failures per account.
func (m *SessionManager) ConnectAll(ctx context.Context) (domain.BatchResult, error) {
	result := domain.NewBatchResult(uuid.NewString())

	accounts, err := m.accounts.Load(ctx)
	if err != nil {
		return result, fmt.Errorf("load accounts: %w", err)
	}

	for _, username := range accounts.Usernames() {
		if err := ctx.Err(); err != nil {
			result.Fail(username, err)
			continue
		}
		if _, err := m.Connect(ctx, username); err != nil {
			result.Fail(username, err)
			continue
		}
		result.Succeed(username)
	}

	m.logger.Info("connect all finished",
		zap.String("operation_id", result.OperationID),
		zap.String("summary", result.Summary()),
	)

	return result, nil
}

// TestConnection logs in with a throwaway client. Nothing is persisted and
// no handle is installed.
func (m *SessionManager) TestConnection(ctx context.Context, username, password string) error {
	username = domain.NormalizeUsername(username)
	if username == "" {
		return domain.ErrInvalidUsername
	}
	if password == "" {
		return fmt.Errorf("account %q: %w", username, domain.ErrMissingPassword)
	}

	client, err := m.factory.NewClient(username)
	if err != nil {
		return fmt.Errorf("create client for %q: %w", username, err)
	}

	_, err = m.login(ctx, client, username, password, func(domain.SessionState) {})
	return err
}

func (m *SessionManager) Disconnect(username string) {
	username = domain.NormalizeUsername(username)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.dropLocked(username)
	m.epochs[username]++
	m.states[username] = domain.StateLoggedOut
}

// Forget drops every in-memory trace of username.
func (m *SessionManager) Forget(username string) {
	username = domain.NormalizeUsername(username)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.dropLocked(username)
	m.epochs[username]++
	delete(m.states, username)
}

// SyncRoles re-files live handles after the main account changed.
func (m *SessionManager) SyncRoles(ctx context.Context) error {
	accounts, err := m.accounts.Load(ctx)
	if err != nil {
		return fmt.Errorf("load accounts: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for username := range m.handles {
		if _, ok := accounts.Find(username); !ok {
			delete(m.handles, username)
			delete(m.states, username)
		}
	}
	m.rosterGen++
	m.roster = accounts
	m.refileLocked(accounts)

	return nil
}

func (m *SessionManager) Main() (*Handle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.main == nil {
		return nil, fmt.Errorf("main account: %w", domain.ErrNotConnected)
	}
	return m.main, nil
}

func (m *SessionManager) Alt(username string) (*Handle, error) {
	username = domain.NormalizeUsername(username)

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, handle := range m.alts {
		if handle.Username == username {
			return handle, nil
		}
	}
	return nil, fmt.Errorf("alt account %q: %w", username, domain.ErrNotConnected)
}

func (m *SessionManager) Alts() []*Handle {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]*Handle(nil), m.alts...)
}

func (m *SessionManager) States() map[string]domain.SessionState {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]domain.SessionState, len(m.states))
	for username, state := range m.states {
		out[username] = state
	}
	return out
}

func (m *SessionManager) State(username string) domain.SessionState {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if state, ok := m.states[domain.NormalizeUsername(username)]; ok {
		return state
	}
	return domain.StateLoggedOut
}

func (m *SessionManager) generation(username string) (uint64, uint64) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.epochs[username], m.rosterGen
}

// setStateAt records state unless username was disconnected or forgotten
// after epoch was taken.
func (m *SessionManager) setStateAt(username string, epoch uint64, state domain.SessionState) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.epochs[username] != epoch {
		return
	}
	m.states[username] = state
}

// install files handle under the roles of accounts, or of the set the last
// SyncRoles loaded when that ran after the connect began. It reports false
// and leaves everything untouched when the account was dropped meanwhile.
func (m *SessionManager) install(accounts domain.AccountSet, handle *Handle, epoch, rosterGen uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.epochs[handle.Username] != epoch {
		return false
	}
	if m.rosterGen != rosterGen {
		accounts = m.roster
		if _, ok := accounts.Find(handle.Username); !ok {
			delete(m.states, handle.Username)
			return false
		}
	}

	m.handles[handle.Username] = handle
	m.states[handle.Username] = domain.StateLoggedIn
	m.refileLocked(accounts)
	return true
}

func (m *SessionManager) refileLocked(accounts domain.AccountSet) {
	m.main = nil
	if accounts.Main != nil {
		m.main = m.handles[accounts.Main.Username]
	}

	m.alts = m.alts[:0:0]
	for _, alt := range accounts.Alts {
		if handle, ok := m.handles[alt.Username]; ok {
			m.alts = append(m.alts, handle)
		}
	}
}

func (m *SessionManager) dropLocked(username string) {
	delete(m.handles, username)
	if m.main != nil && m.main.Username == username {
		m.main = nil
	}

	alts := m.alts[:0:0]
	for _, handle := range m.alts {
		if handle.Username != username {
			alts = append(alts, handle)
		}
	}
	m.alts = alts
}
