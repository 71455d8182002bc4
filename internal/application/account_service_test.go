package application

import (
	"context"
	"errors"
	"testing"

	"github.com/bnema/repostctl/internal/domain"
	"github.com/bnema/repostctl/internal/ports"
	"github.com/bnema/repostctl/internal/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type accountServiceFixture struct {
	*harness
	service   *AccountService
	content   *mocks.MockContentCache
	workspace *mocks.MockWorkspace
}

func newAccountServiceFixture(t *testing.T, accounts domain.AccountSet, repo ports.AccountRepository, cipher ports.Cipher) *accountServiceFixture {
	t.Helper()

	h := newHarness(t, accounts, nil)
	if repo == nil {
		repo = h.repo
	}
	if cipher == nil {
		cipher = prefixCipher{}
	}

	f := &accountServiceFixture{
		harness:   h,
		content:   mocks.NewMockContentCache(t),
		workspace: mocks.NewMockWorkspace(t),
	}
	f.service = NewAccountService(AccountDeps{
		Repo:      repo,
		Cipher:    cipher,
		Sessions:  h.sessions,
		Store:     h.store,
		Cache:     h.cache,
		Content:   f.content,
		Workspace: f.workspace,
		Logger:    zaptest.NewLogger(t),
	})

	return f
}

func TestAddAccountRejectsDuplicateBeforeSaving(t *testing.T) {
	t.Parallel()

	repo := mocks.NewMockAccountRepository(t)
	repo.EXPECT().Load(mock.Anything).Return(accountSet("alice", "carol"), nil)
	f := newAccountServiceFixture(t, domain.AccountSet{}, repo, nil)

	_, err := f.service.AddAccount(context.Background(), AddAccountInput{Username: "@carol", Password: "pw"})
	require.ErrorIs(t, err, domain.ErrAccountExists)
	assert.Zero(t, f.platform.count("carol", "new_client"))
}

func TestAddAccountEncryptsPassword(t *testing.T) {
	t.Parallel()

	cipher := mocks.NewMockCipher(t)
	cipher.EXPECT().Encrypt("s3cret").Return("sealed", nil).Once()
	f := newAccountServiceFixture(t, accountSet("alice"), nil, cipher)

	account, err := f.service.AddAccount(context.Background(), AddAccountInput{Username: " bob ", Password: "s3cret"})
	require.NoError(t, err)

	assert.Equal(t, domain.Account{Username: "bob", EncryptedPassword: "sealed", Role: domain.RoleAlt}, account)
	stored := f.repo.snapshot()
	require.Len(t, stored.Alts, 1)
	assert.Equal(t, "sealed", stored.Alts[0].EncryptedPassword)
	assert.Equal(t, 1, f.repo.saves)
}

func TestAddAccountAsMain(t *testing.T) {
	t.Parallel()

	f := newAccountServiceFixture(t, accountSet("", "bob"), nil, nil)

	account, err := f.service.AddAccount(context.Background(), AddAccountInput{Username: "alice", Password: "pw", Main: true})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleMain, account.Role)

	stored := f.repo.snapshot()
	require.NotNil(t, stored.Main)
	assert.Equal(t, "alice", stored.Main.Username)
	assert.Equal(t, "enc:pw", stored.Main.EncryptedPassword)

	_, err = f.service.AddAccount(context.Background(), AddAccountInput{Username: "dave", Password: "pw", Main: true})
	assert.Error(t, err, "a second main is rejected")
}

func TestAddAccountValidatesInput(t *testing.T) {
	t.Parallel()

	f := newAccountServiceFixture(t, accountSet("alice"), nil, nil)

	_, err := f.service.AddAccount(context.Background(), AddAccountInput{Username: "  ", Password: "pw"})
	assert.ErrorIs(t, err, domain.ErrInvalidUsername)

	_, err = f.service.AddAccount(context.Background(), AddAccountInput{Username: "bob"})
	assert.ErrorIs(t, err, domain.ErrMissingPassword)
	assert.Zero(t, f.repo.saves)
}

func TestAddAccountVerifyFailureSavesNothing(t *testing.T) {
	t.Parallel()

	f := newAccountServiceFixture(t, accountSet("alice"), nil, nil)
	f.platform.on("erin").login = func(context.Context, string) (domain.Session, error) {
		return domain.Session{}, errors.New("bad_password")
	}

	_, err := f.service.AddAccount(context.Background(), AddAccountInput{Username: "erin", Password: "wrong", Verify: true})
	require.ErrorIs(t, err, domain.ErrBadCredentials)
	assert.Zero(t, f.repo.saves)
	_, stored := f.store.get("erin")
	assert.False(t, stored)

	_, err = f.service.AddAccount(context.Background(), AddAccountInput{Username: "bob", Password: "right", Verify: true})
	require.NoError(t, err)
	assert.Equal(t, 1, f.platform.count("bob", "login"))
	_, stored = f.store.get("bob")
	assert.False(t, stored, "a verification login is not persisted")
}

func TestRemoveAccountPurgesDerivedState(t *testing.T) {
	t.Parallel()

	f := newAccountServiceFixture(t, accountSet("alice", "bob", "carol"), nil, nil)
	f.platform.on("bob").recent = recentItems(domain.ContentItem{ID: "b1", CaptionText: "hello"})
	f.platform.on("carol").recent = recentItems(domain.ContentItem{ID: "c1", CaptionText: "other"})

	ctx := context.Background()
	require.Equal(t, []string{"bob"}, f.cache.Check(ctx, domain.ContentItem{ID: "x", CaptionText: "hello"}, []string{"bob", "carol"}))
	_, stored := f.store.get("bob")
	require.True(t, stored)

	f.content.EXPECT().Delete(mock.Anything, "bob").Return(nil).Once()
	f.workspace.EXPECT().PurgeAccount("bob").Return(2, nil).Once()

	report, err := f.service.RemoveAccount(ctx, "@bob")
	require.NoError(t, err)
	assert.Equal(t, "bob", report.Account.Username)
	assert.Equal(t, 2, report.TempFilesRemoved)

	_, stored = f.store.get("bob")
	assert.False(t, stored)
	_, cached := f.cache.Entry("bob")
	assert.False(t, cached)
	assert.Equal(t, domain.StateLoggedOut, f.sessions.State("bob"))
	_, found := f.repo.snapshot().Find("bob")
	assert.False(t, found)

	accounts, err := f.service.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, f.cache.Check(ctx, domain.ContentItem{ID: "y", CaptionText: "hello"}, accounts.AltUsernames()))
}

func TestRemoveAccountReportsPurgeFailures(t *testing.T) {
	t.Parallel()

	f := newAccountServiceFixture(t, accountSet("alice", "bob"), nil, nil)
	f.content.EXPECT().Delete(mock.Anything, "bob").Return(errors.New("redis down")).Once()
	f.workspace.EXPECT().PurgeAccount("bob").Return(1, nil).Once()

	report, err := f.service.RemoveAccount(context.Background(), "bob")
	require.Error(t, err)
	assert.ErrorContains(t, err, "redis down")
	assert.Equal(t, 1, report.TempFilesRemoved)
	_, found := f.repo.snapshot().Find("bob")
	assert.False(t, found, "the account is removed even when purging fails")

	_, err = f.service.RemoveAccount(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestSetMainAccountRefilesSessions(t *testing.T) {
	t.Parallel()

	f := newAccountServiceFixture(t, accountSet("alice", "bob"), nil, nil)
	ctx := context.Background()
	_, err := f.sessions.ConnectAll(ctx)
	require.NoError(t, err)

	require.NoError(t, f.service.SetMainAccount(ctx, "bob"))

	main, err := f.sessions.Main()
	require.NoError(t, err)
	assert.Equal(t, "bob", main.Username)
	alt, err := f.sessions.Alt("alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", alt.Username)
	assert.Equal(t, 1, f.platform.count("bob", "login"), "live sessions are kept")

	assert.ErrorIs(t, f.service.SetMainAccount(ctx, "ghost"), domain.ErrAccountNotFound)
}

func TestStatusesCombineRolesSessionsAndCache(t *testing.T) {
	t.Parallel()

	f := newAccountServiceFixture(t, accountSet("alice", "bob", "carol"), nil, nil)
	f.platform.on("bob").recent = recentItems(domain.ContentItem{ID: "b1", CaptionText: "x"}, domain.ContentItem{ID: "b2", CaptionText: "y"})

	ctx := context.Background()
	f.cache.Check(ctx, domain.ContentItem{ID: "z", CaptionText: "z"}, []string{"bob"})

	statuses, err := f.service.Statuses(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, 3)

	assert.Equal(t, "alice", statuses[0].Username)
	assert.Equal(t, domain.RoleMain, statuses[0].Role)
	assert.Equal(t, domain.StateLoggedOut, statuses[0].State)
	assert.Nil(t, statuses[0].Cache)

	assert.Equal(t, domain.StateLoggedIn, statuses[1].State)
	require.NotNil(t, statuses[1].Cache)
	assert.Equal(t, 2, statuses[1].Cache.Items)
	assert.Nil(t, statuses[2].Cache)
}

func TestImportSkipsKnownAccounts(t *testing.T) {
	t.Parallel()

	f := newAccountServiceFixture(t, accountSet("alice", "bob"), nil, nil)

	result, err := f.service.Import(context.Background(), accountSet("zoe", "bob", "carol"))
	require.NoError(t, err)

	assert.Equal(t, []string{"zoe", "carol"}, result.Added)
	assert.Equal(t, []string{"bob"}, result.Skipped)

	stored := f.repo.snapshot()
	assert.Equal(t, "alice", stored.Main.Username, "an existing main is kept")
	zoe, ok := stored.Find("zoe")
	require.True(t, ok)
	assert.Equal(t, domain.RoleAlt, zoe.Role)
	assert.Equal(t, 1, f.repo.saves)

	again, err := f.service.Import(context.Background(), accountSet("zoe"))
	require.NoError(t, err)
	assert.Empty(t, again.Added)
	assert.Equal(t, 1, f.repo.saves, "nothing new, nothing saved")
}

func TestVerifyCredentials(t *testing.T) {
	t.Parallel()

	accounts := accountSet("alice", "bob", "carol")
	accounts.Alts[0].EncryptedPassword = "garbage"
	accounts.Alts[1].EncryptedPassword = ""
	f := newAccountServiceFixture(t, accounts, nil, nil)

	result, err := f.service.VerifyCredentials(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"alice"}, result.Succeeded)
	assert.ErrorIs(t, result.Failed["bob"], domain.ErrDecryption)
	assert.ErrorIs(t, result.Failed["carol"], domain.ErrMissingPassword)
	assert.Zero(t, f.platform.count("alice", "login"), "verification stays offline")
}
