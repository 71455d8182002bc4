package application

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bnema/repostctl/internal/domain"
	"github.com/bnema/repostctl/internal/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionManagerConnectLogsInAndPersists(t *testing.T) {
	t.Parallel()

	h := newHarness(t, accountSet("alice", "bob"), nil)
	var gotPassword string
	h.platform.on("alice").login = func(_ context.Context, password string) (domain.Session, error) {
		gotPassword = password
		return defaultSession("alice"), nil
	}

	handle, err := h.sessions.Connect(context.Background(), "@alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", handle.Username)
	assert.Equal(t, "id-alice", handle.UserID)
	assert.Equal(t, "pw-alice", gotPassword)

	saved, ok := h.store.get("alice")
	require.True(t, ok)
	assert.Equal(t, h.clock.Now(), saved.SavedAt)
	assert.JSONEq(t, `{"cookie":"alice"}`, string(saved.Settings))

	main, err := h.sessions.Main()
	require.NoError(t, err)
	assert.Same(t, handle, main)
	assert.Equal(t, domain.StateLoggedIn, h.sessions.State("alice"))
	assert.Empty(t, h.sessions.Alts())
}

func TestSessionManagerRestoresPersistedSession(t *testing.T) {
	t.Parallel()

	h := newHarness(t, accountSet("alice", "bob"), nil)
	require.NoError(t, h.store.Save(context.Background(), domain.Session{
		Username: "bob",
		UserID:   "id-bob",
		Settings: json.RawMessage(`{"cookie":"legacy"}`),
		Legacy:   true,
	}))
	h.platform.on("bob").restore = func(_ context.Context, session domain.Session) (domain.Session, error) {
		return domain.Session{Username: session.Username}, nil
	}

	handle, err := h.sessions.Connect(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, "id-bob", handle.UserID)
	assert.Zero(t, h.platform.count("bob", "login"))

	saved, ok := h.store.get("bob")
	require.True(t, ok)
	assert.False(t, saved.Legacy)
	assert.JSONEq(t, `{"cookie":"legacy"}`, string(saved.Settings))

	alt, err := h.sessions.Alt("bob")
	require.NoError(t, err)
	assert.Same(t, handle, alt)
}

func TestSessionManagerFallsBackToLoginWhenSessionRejected(t *testing.T) {
	t.Parallel()

	h := newHarness(t, accountSet("alice"), nil)
	require.NoError(t, h.store.Save(context.Background(), domain.Session{Username: "alice", UserID: "stale"}))

	handle, err := h.sessions.Connect(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, h.platform.count("alice", "restore"))
	assert.Equal(t, 1, h.platform.count("alice", "login"))
	assert.Equal(t, "id-alice", handle.UserID)
}

func TestSessionManagerResolvesChallengeThroughVerifier(t *testing.T) {
	t.Parallel()

	verifier := mocks.NewMockVerificationCallback(t)
	h := newHarness(t, accountSet("alice"), verifier)
	h.platform.on("alice").login = func(context.Context, string) (domain.Session, error) {
		return domain.Session{}, &domain.ChallengeRequiredError{Kind: domain.ChallengeSMS}
	}
	var gotCode string
	h.platform.on("alice").resolve = func(_ context.Context, code string) (domain.Session, error) {
		gotCode = code
		return defaultSession("alice"), nil
	}
	verifier.EXPECT().RequestCode(mockAnyContext(), "alice", domain.ChallengeSMS).
		Run(func(context.Context, string, domain.ChallengeKind) {
			assert.Equal(t, domain.StateChallengePending, h.sessions.State("alice"))
		}).
		Return(" 123456 ", true, nil).Once()

	_, err := h.sessions.Connect(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "123456", gotCode)
	assert.Equal(t, domain.StateLoggedIn, h.sessions.State("alice"))
}

func TestSessionManagerChoiceChallengeFallsBackToEmail(t *testing.T) {
	t.Parallel()

	verifier := mocks.NewMockVerificationCallback(t)
	h := newHarness(t, accountSet("alice"), verifier)
	h.platform.on("alice").login = func(context.Context, string) (domain.Session, error) {
		return domain.Session{}, &domain.ChallengeRequiredError{Kind: domain.ChallengeChoice}
	}
	verifier.EXPECT().RequestCode(mockAnyContext(), "alice", domain.ChallengeEmail).Return("42", true, nil).Once()

	_, err := h.sessions.Connect(context.Background(), "alice")
	require.NoError(t, err)
}

func TestSessionManagerVerificationCancelled(t *testing.T) {
	t.Parallel()

	verifier := mocks.NewMockVerificationCallback(t)
	h := newHarness(t, accountSet("alice"), verifier)
	h.platform.on("alice").login = func(context.Context, string) (domain.Session, error) {
		return domain.Session{}, &domain.ChallengeRequiredError{Kind: domain.ChallengeEmail}
	}
	verifier.EXPECT().RequestCode(mockAnyContext(), "alice", domain.ChallengeEmail).Return("", false, nil).Once()

	_, err := h.sessions.Connect(context.Background(), "alice")
	require.ErrorIs(t, err, domain.ErrVerificationCancelled)
	assert.ErrorIs(t, err, domain.ErrChallenge)
	assert.Equal(t, domain.StateLoggedOut, h.sessions.State("alice"))
	assert.Zero(t, h.platform.count("alice", "resolve"))

	_, ok := h.store.get("alice")
	assert.False(t, ok)
}

func TestSessionManagerVerificationTimesOut(t *testing.T) {
	t.Parallel()

	verifier := mocks.NewMockVerificationCallback(t)
	h := newHarness(t, accountSet("alice"), verifier)
	h.sessions.cfg.VerificationTimeout = 30 * time.Millisecond
	h.platform.on("alice").login = func(context.Context, string) (domain.Session, error) {
		return domain.Session{}, &domain.ChallengeRequiredError{Kind: domain.ChallengeOTP}
	}
	verifier.EXPECT().RequestCode(mockAnyContext(), "alice", domain.ChallengeOTP).
		RunAndReturn(func(ctx context.Context, _ string, _ domain.ChallengeKind) (string, bool, error) {
			<-ctx.Done()
			return "", false, ctx.Err()
		}).Once()

	started := time.Now()
	_, err := h.sessions.Connect(context.Background(), "alice")
	require.ErrorIs(t, err, domain.ErrVerificationTimeout)
	assert.Less(t, time.Since(started), time.Second)
}

func TestSessionManagerLimitsChallengeRounds(t *testing.T) {
	t.Parallel()

	verifier := mocks.NewMockVerificationCallback(t)
	h := newHarness(t, accountSet("alice"), verifier)
	challenge := func(context.Context, string) (domain.Session, error) {
		return domain.Session{}, &domain.ChallengeRequiredError{Kind: domain.ChallengeEmail}
	}
	h.platform.on("alice").login = challenge
	h.platform.on("alice").resolve = func(context.Context, string) (domain.Session, error) {
		return domain.Session{}, &domain.ChallengeRequiredError{Kind: domain.ChallengeEmail}
	}
	verifier.EXPECT().RequestCode(mockAnyContext(), "alice", domain.ChallengeEmail).Return("000000", true, nil).Times(3)

	_, err := h.sessions.Connect(context.Background(), "alice")
	require.ErrorIs(t, err, domain.ErrChallengeRequired)
	assert.ErrorContains(t, err, "3 verification rounds")
	assert.Equal(t, 3, h.platform.count("alice", "resolve"))
}

func TestSessionManagerBadCredentialsAreTerminal(t *testing.T) {
	t.Parallel()

	h := newHarness(t, accountSet("alice"), nil)
	h.platform.on("alice").login = func(context.Context, string) (domain.Session, error) {
		return domain.Session{}, errors.New("bad_password")
	}

	_, err := h.sessions.Connect(context.Background(), "alice")
	require.ErrorIs(t, err, domain.ErrBadCredentials)
	assert.ErrorIs(t, err, domain.ErrCredential)
	assert.Equal(t, 1, h.platform.count("alice", "login"))
	assert.Equal(t, domain.StateLoggedOut, h.sessions.State("alice"))
}

func TestSessionManagerSurfacesIPBlacklist(t *testing.T) {
	t.Parallel()

	h := newHarness(t, accountSet("alice", "bob"), nil)
	h.platform.on("bob").login = func(context.Context, string) (domain.Session, error) {
		return domain.Session{}, errors.New("We can't complete this request. Please change your IP address, it is on a blacklist.")
	}

	_, err := h.sessions.Connect(context.Background(), "bob")
	require.ErrorIs(t, err, domain.ErrIPBlacklisted)

	var blocked *domain.IPBlacklistError
	require.ErrorAs(t, err, &blocked)
	assert.Equal(t, "bob", blocked.Username)
	assert.Contains(t, err.Error(), domain.IPBlacklistGuidance)
	assert.Equal(t, 1, h.platform.count("bob", "login"))
}

func TestSessionManagerRetriesTransientLoginFailure(t *testing.T) {
	t.Parallel()

	h := newHarness(t, accountSet("alice"), nil)
	var calls int
	h.platform.on("alice").login = func(context.Context, string) (domain.Session, error) {
		calls++
		if calls == 1 {
			return domain.Session{}, errors.New("503 service unavailable, try later")
		}
		return defaultSession("alice"), nil
	}

	_, err := h.sessions.Connect(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestSessionManagerMissingPasswordAndUnknownAccount(t *testing.T) {
	t.Parallel()

	accounts := accountSet("alice")
	accounts.Main.EncryptedPassword = ""
	h := newHarness(t, accounts, nil)

	_, err := h.sessions.Connect(context.Background(), "alice")
	require.ErrorIs(t, err, domain.ErrMissingPassword)

	_, err = h.sessions.Connect(context.Background(), "nobody")
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
	assert.Zero(t, h.platform.count("nobody", "new_client"))
}

func TestSessionManagerReconnectSwapsHandle(t *testing.T) {
	t.Parallel()

	h := newHarness(t, accountSet("alice", "bob"), nil)

	first, err := h.sessions.Connect(context.Background(), "bob")
	require.NoError(t, err)
	inFlight := first

	second, err := h.sessions.Reconnect(context.Background(), "bob")
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.NotSame(t, inFlight.Client, second.Client)

	current, err := h.sessions.Alt("bob")
	require.NoError(t, err)
	assert.Same(t, second, current)
	assert.Equal(t, 2, h.platform.count("bob", "login"))
	assert.Zero(t, h.platform.count("bob", "restore"), "reconnect must skip session restore")

	ensured, err := h.sessions.Ensure(context.Background(), "bob")
	require.NoError(t, err)
	assert.Same(t, second, ensured)
}

func TestSessionManagerSyncRolesAfterMainChange(t *testing.T) {
	t.Parallel()

	h := newHarness(t, accountSet("alice", "bob", "carol"), nil)
	result, err := h.sessions.ConnectAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob", "carol"}, result.Succeeded)

	updated, err := h.repo.snapshot().SetMain("bob")
	require.NoError(t, err)
	require.NoError(t, h.repo.Save(context.Background(), updated))
	require.NoError(t, h.sessions.SyncRoles(context.Background()))

	main, err := h.sessions.Main()
	require.NoError(t, err)
	assert.Equal(t, "bob", main.Username)

	var alts []string
	for _, handle := range h.sessions.Alts() {
		alts = append(alts, handle.Username)
	}
	assert.Equal(t, []string{"carol", "alice"}, alts)
}

func TestSessionManagerConnectAllCollectsFailures(t *testing.T) {
	t.Parallel()

	h := newHarness(t, accountSet("alice", "bob", "carol"), nil)
	h.platform.on("bob").login = func(context.Context, string) (domain.Session, error) {
		return domain.Session{}, errors.New("incorrect password")
	}

	result, err := h.sessions.ConnectAll(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, result.OperationID)
	assert.Equal(t, []string{"alice", "carol"}, result.Succeeded)
	assert.Equal(t, []string{"bob"}, result.FailedUsernames())
	assert.ErrorIs(t, result.Failed["bob"], domain.ErrBadCredentials)
	assert.Equal(t, "2 succeeded, 1 failed, 0 skipped as duplicate", result.Summary())
}

func TestSessionManagerDisconnectAndForget(t *testing.T) {
	t.Parallel()

	h := newHarness(t, accountSet("alice", "bob"), nil)
	_, err := h.sessions.ConnectAll(context.Background())
	require.NoError(t, err)

	h.sessions.Disconnect("bob")
	_, err = h.sessions.Alt("bob")
	require.ErrorIs(t, err, domain.ErrNotConnected)
	assert.Equal(t, domain.StateLoggedOut, h.sessions.States()["bob"])

	h.sessions.Forget("alice")
	_, err = h.sessions.Main()
	require.ErrorIs(t, err, domain.ErrNotConnected)
	_, tracked := h.sessions.States()["alice"]
	assert.False(t, tracked)
}

// holdLogin parks the next login of username until release is called.
func holdLogin(h *harness, username string) (<-chan struct{}, func()) {
	entered := make(chan struct{})
	gate := make(chan struct{})
	var once sync.Once
	h.platform.on(username).login = func(ctx context.Context, _ string) (domain.Session, error) {
		once.Do(func() { close(entered) })
		select {
		case <-gate:
			return defaultSession(username), nil
		case <-ctx.Done():
			return domain.Session{}, ctx.Err()
		}
	}
	return entered, func() { close(gate) }
}

func connectAsync(h *harness, username string) <-chan error {
	errc := make(chan error, 1)
	go func() {
		_, err := h.sessions.Connect(context.Background(), username)
		errc <- err
	}()
	return errc
}

func TestSessionManagerForgetDuringConnectDiscardsHandle(t *testing.T) {
	t.Parallel()

	h := newHarness(t, accountSet("alice", "bob"), nil)
	entered, release := holdLogin(h, "bob")
	errc := connectAsync(h, "bob")
	<-entered

	remaining, _, err := h.repo.snapshot().Remove("bob")
	require.NoError(t, err)
	require.NoError(t, h.repo.Save(context.Background(), remaining))
	h.sessions.Forget("bob")
	release()

	require.ErrorIs(t, <-errc, domain.ErrNotConnected)
	assert.Empty(t, h.sessions.Alts())
	_, err = h.sessions.Alt("bob")
	require.ErrorIs(t, err, domain.ErrNotConnected)
	_, tracked := h.sessions.States()["bob"]
	assert.False(t, tracked)
	_, saved := h.store.get("bob")
	assert.False(t, saved)
}

func TestSessionManagerSyncRolesDuringConnectFilesNewRole(t *testing.T) {
	t.Parallel()

	h := newHarness(t, accountSet("alice", "bob"), nil)
	entered, release := holdLogin(h, "bob")
	errc := connectAsync(h, "bob")
	<-entered

	updated, err := h.repo.snapshot().SetMain("bob")
	require.NoError(t, err)
	require.NoError(t, h.repo.Save(context.Background(), updated))
	require.NoError(t, h.sessions.SyncRoles(context.Background()))
	release()

	require.NoError(t, <-errc)
	main, err := h.sessions.Main()
	require.NoError(t, err)
	assert.Equal(t, "bob", main.Username)
	assert.Empty(t, h.sessions.Alts())
}

func TestSessionManagerSyncRolesDuringConnectDropsRemovedAccount(t *testing.T) {
	t.Parallel()

	h := newHarness(t, accountSet("alice", "bob", "carol"), nil)
	entered, release := holdLogin(h, "bob")
	errc := connectAsync(h, "bob")
	<-entered

	remaining, _, err := h.repo.snapshot().Remove("bob")
	require.NoError(t, err)
	require.NoError(t, h.repo.Save(context.Background(), remaining))
	require.NoError(t, h.sessions.SyncRoles(context.Background()))
	release()

	require.ErrorIs(t, <-errc, domain.ErrNotConnected)
	assert.Empty(t, h.sessions.Alts())
	_, tracked := h.sessions.States()["bob"]
	assert.False(t, tracked)
}

func TestSessionManagerDisconnectDuringConnectStaysLoggedOut(t *testing.T) {
	t.Parallel()

	h := newHarness(t, accountSet("alice", "bob"), nil)
	entered, release := holdLogin(h, "bob")
	errc := connectAsync(h, "bob")
	<-entered

	h.sessions.Disconnect("bob")
	release()

	require.ErrorIs(t, <-errc, domain.ErrNotConnected)
	assert.Equal(t, domain.StateLoggedOut, h.sessions.State("bob"))
	assert.Empty(t, h.sessions.Alts())

	handle, err := h.sessions.Connect(context.Background(), "bob")
	require.NoError(t, err)
	alt, err := h.sessions.Alt("bob")
	require.NoError(t, err)
	assert.Same(t, handle, alt)
}

func TestSessionManagerTestConnectionPersistsNothing(t *testing.T) {
	t.Parallel()

	h := newHarness(t, domain.AccountSet{}, nil)

	require.NoError(t, h.sessions.TestConnection(context.Background(), "dave", "pw"))
	_, ok := h.store.get("dave")
	assert.False(t, ok)
	assert.Empty(t, h.sessions.States())

	h.platform.on("erin").login = func(context.Context, string) (domain.Session, error) {
		return domain.Session{}, errors.New("bad_password")
	}
	err := h.sessions.TestConnection(context.Background(), "erin", "nope")
	require.ErrorIs(t, err, domain.ErrBadCredentials)
}
