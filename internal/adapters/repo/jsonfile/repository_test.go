package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/bnema/repostctl/internal/domain"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) (*Repository, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.json")
	cfg := viper.New()
	cfg.Set(AccountsPathKey, path)

	repo, err := NewRepository(cfg)
	require.NoError(t, err)
	return repo, path
}

func TestRepositoryMissingFileIsEmptyDefault(t *testing.T) {
	t.Parallel()

	repo, path := newTestRepository(t)

	accounts, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, accounts.Main)
	assert.Empty(t, accounts.Alts)

	_, err = os.Stat(path)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRepositoryRoundTrip(t *testing.T) {
	t.Parallel()

	repo, path := newTestRepository(t)
	want := domain.AccountSet{
		Main: &domain.Account{Username: "alice", EncryptedPassword: "c2VjcmV0LWE=", Role: domain.RoleMain},
		Alts: []domain.Account{
			{Username: "bob", EncryptedPassword: "c2VjcmV0LWI=", Role: domain.RoleAlt},
			{Username: "carol", EncryptedPassword: "c2VjcmV0LWM=", Role: domain.RoleAlt},
		},
	}

	require.NoError(t, repo.Save(context.Background(), want))

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{
  "main_account": {"username": "alice", "password": "c2VjcmV0LWE="},
  "alt_accounts": [
    {"username": "bob", "password": "c2VjcmV0LWI="},
    {"username": "carol", "password": "c2VjcmV0LWM="}
  ]
}`, string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestRepositoryLoadsNullMainAccount(t *testing.T) {
	t.Parallel()

	repo, path := newTestRepository(t)
	require.NoError(t, os.WriteFile(path, []byte(`{"main_account": null, "alt_accounts": [{"username": "bob", "password": "x"}]}`), 0o600))

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got.Main)
	assert.Equal(t, []string{"bob"}, got.AltUsernames())
}

func TestRepositorySaveRejectsDuplicates(t *testing.T) {
	t.Parallel()

	repo, path := newTestRepository(t)
	err := repo.Save(context.Background(), domain.AccountSet{
		Alts: []domain.Account{{Username: "bob"}, {Username: "bob"}},
	})
	require.ErrorIs(t, err, domain.ErrAccountExists)

	_, statErr := os.Stat(path)
	assert.ErrorIs(t, statErr, os.ErrNotExist)
}

func TestRepositoryRejectsCorruptFile(t *testing.T) {
	t.Parallel()

	repo, path := newTestRepository(t)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := repo.Load(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "decode accounts file")
}

func TestRepositoryHonorsCanceledContext(t *testing.T) {
	t.Parallel()

	repo, _ := newTestRepository(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.Load(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.ErrorIs(t, repo.Save(ctx, domain.AccountSet{}), context.Canceled)
}

func TestRepositoriesSharePathLock(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.json")
	newRepo := func() *Repository {
		cfg := viper.New()
		cfg.Set(AccountsPathKey, path)
		repo, err := NewRepository(cfg)
		require.NoError(t, err)
		return repo
	}

	first, second := newRepo(), newRepo()
	assert.Same(t, first.mu, second.mu)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = first.Save(context.Background(), domain.AccountSet{Alts: []domain.Account{{Username: "bob", EncryptedPassword: "x"}}})
			_, _ = second.Load(context.Background())
		}()
	}
	wg.Wait()

	got, err := first.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, got.AltUsernames())
}

func TestDecodeDocumentValidates(t *testing.T) {
	t.Parallel()

	_, err := DecodeDocument([]byte(`{"main_account": {"username": "bob", "password": "x"}, "alt_accounts": [{"username": "bob", "password": "y"}]}`))
	require.ErrorIs(t, err, domain.ErrAccountExists)

	accounts, err := DecodeDocument([]byte(`{"alt_accounts": [{"username": "@dave", "password": "y"}]}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"dave"}, accounts.AltUsernames())

	encoded, err := EncodeDocument(accounts)
	require.NoError(t, err)
	assert.JSONEq(t, `{"main_account": null, "alt_accounts": [{"username": "dave", "password": "y"}]}`, string(encoded))
}
