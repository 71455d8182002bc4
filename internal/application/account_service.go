package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/bnema/repostctl/internal/domain"
	"github.com/bnema/repostctl/internal/ports"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AccountService struct {
	repo      ports.AccountRepository
	cipher    ports.Cipher
	sessions  *SessionManager
	store     ports.SessionStore
	cache     *RepostCache
	content   ports.ContentCache
	workspace ports.Workspace
	logger    *zap.Logger
}

type AccountDeps struct {
	Repo      ports.AccountRepository
	Cipher    ports.Cipher
	Sessions  *SessionManager
	Store     ports.SessionStore
	Cache     *RepostCache
	Content   ports.ContentCache
	Workspace ports.Workspace
	Logger    *zap.Logger
}

func NewAccountService(deps AccountDeps) *AccountService {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	return &AccountService{
		repo:      deps.Repo,
		cipher:    deps.Cipher,
		sessions:  deps.Sessions,
		store:     deps.Store,
		cache:     deps.Cache,
		content:   deps.Content,
		workspace: deps.Workspace,
		logger:    deps.Logger,
	}
}

type AddAccountInput struct {
	Username string
	Password string
	Main     bool
	// Verify logs in once before anything is saved.
	Verify bool
}

func (s *AccountService) AddAccount(ctx context.Context, in AddAccountInput) (domain.Account, error) {
	username := domain.NormalizeUsername(in.Username)
	if username == "" {
		return domain.Account{}, domain.ErrInvalidUsername
	}
	if in.Password == "" {
		return domain.Account{}, fmt.Errorf("account %q: %w", username, domain.ErrMissingPassword)
	}

	accounts, err := s.repo.Load(ctx)
	if err != nil {
		return domain.Account{}, fmt.Errorf("load accounts: %w", err)
	}
	if _, exists := accounts.Find(username); exists {
		return domain.Account{}, fmt.Errorf("add %q: %w", username, domain.ErrAccountExists)
	}

	if in.Verify {
		if err := s.sessions.TestConnection(ctx, username, in.Password); err != nil {
			return domain.Account{}, fmt.Errorf("verify %q: %w", username, err)
		}
	}

	encrypted, err := s.cipher.Encrypt(in.Password)
	if err != nil {
		return domain.Account{}, fmt.Errorf("encrypt password for %q: %w", username, err)
	}

	account := domain.Account{Username: username, EncryptedPassword: encrypted, Role: domain.RoleAlt}
	if in.Main {
		account.Role = domain.RoleMain
	}

	updated, err := accounts.Add(account)
	if err != nil {
		return domain.Account{}, err
	}
	if err := s.repo.Save(ctx, updated); err != nil {
		return domain.Account{}, fmt.Errorf("save accounts: %w", err)
	}

	s.logger.Info("account added", zap.String("account", username), zap.String("role", string(account.Role)))
	return account, nil
}

type RemovalReport struct {
	Account          domain.Account
	TempFilesRemoved int
}

// RemoveAccount deletes the account and every piece of state derived from
// it. Purge failures are reported after the account itself is gone.
func (s *AccountService) RemoveAccount(ctx context.Context, username string) (RemovalReport, error) {
	accounts, err := s.repo.Load(ctx)
	if err != nil {
		return RemovalReport{}, fmt.Errorf("load accounts: %w", err)
	}

	updated, removed, err := accounts.Remove(username)
	if err != nil {
		return RemovalReport{}, err
	}
	if err := s.repo.Save(ctx, updated); err != nil {
		return RemovalReport{}, fmt.Errorf("save accounts: %w", err)
	}

	report := RemovalReport{Account: removed}
	var errs []error

	s.sessions.Forget(removed.Username)
	s.cache.Forget(removed.Username)
	if err := s.store.Delete(ctx, removed.Username); err != nil {
		errs = append(errs, fmt.Errorf("delete session: %w", err))
	}
	if err := s.content.Delete(ctx, removed.Username); err != nil {
		errs = append(errs, fmt.Errorf("delete content cache: %w", err))
	}
	count, err := s.workspace.PurgeAccount(removed.Username)
	report.TempFilesRemoved = count
	if err != nil {
		errs = append(errs, err)
	}

	if err := errors.Join(errs...); err != nil {
		return report, fmt.Errorf("purge %q: %w", removed.Username, err)
	}

	s.logger.Info("account removed",
		zap.String("account", removed.Username),
		zap.Int("temp_files_removed", count),
	)
	return report, nil
}

func (s *AccountService) SetMainAccount(ctx context.Context, username string) error {
	accounts, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load accounts: %w", err)
	}

	updated, err := accounts.SetMain(username)
	if err != nil {
		return err
	}
	if err := s.repo.Save(ctx, updated); err != nil {
		return fmt.Errorf("save accounts: %w", err)
	}

	return s.sessions.SyncRoles(ctx)
}

func (s *AccountService) List(ctx context.Context) (domain.AccountSet, error) {
	accounts, err := s.repo.Load(ctx)
	if err != nil {
		return domain.AccountSet{}, fmt.Errorf("load accounts: %w", err)
	}
	return accounts, nil
}

func (s *AccountService) Statuses(ctx context.Context) ([]domain.AccountStatus, error) {
	accounts, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	summaries := map[string]domain.CacheSummary{}
	for _, summary := range s.cache.Snapshot() {
		summaries[summary.Username] = summary
	}

	statuses := make([]domain.AccountStatus, 0, len(accounts.Alts)+1)
	for _, username := range accounts.Usernames() {
		account, _ := accounts.Find(username)
		status := domain.AccountStatus{
			Username: username,
			Role:     account.Role,
			State:    s.sessions.State(username),
		}
		if summary, ok := summaries[username]; ok {
			status.Cache = &summary
		}
		statuses = append(statuses, status)
	}

	return statuses, nil
}

type ImportResult struct {
	Added   []string
	Skipped []string
}

// Import merges incoming accounts into the stored set. Known usernames are
// skipped, and an incoming main only takes the main role when none is set.
func (s *AccountService) Import(ctx context.Context, incoming domain.AccountSet) (ImportResult, error) {
	accounts, err := s.repo.Load(ctx)
	if err != nil {
		return ImportResult{}, fmt.Errorf("load accounts: %w", err)
	}

	var result ImportResult
	merge := func(account domain.Account, role domain.Role) error {
		if _, exists := accounts.Find(account.Username); exists {
			result.Skipped = append(result.Skipped, account.Username)
			return nil
		}
		if role == domain.RoleMain && accounts.Main != nil {
			role = domain.RoleAlt
		}
		account.Role = role

		updated, err := accounts.Add(account)
		if err != nil {
			return err
		}
		accounts = updated
		result.Added = append(result.Added, account.Username)
		return nil
	}

	if incoming.Main != nil {
		if err := merge(*incoming.Main, domain.RoleMain); err != nil {
			return ImportResult{}, err
		}
	}
	for _, alt := range incoming.Alts {
		if err := merge(alt, domain.RoleAlt); err != nil {
			return ImportResult{}, err
		}
	}

	if len(result.Added) == 0 {
		return result, nil
	}
	if err := s.repo.Save(ctx, accounts); err != nil {
		return ImportResult{}, fmt.Errorf("save accounts: %w", err)
	}

	return result, nil
}

// VerifyCredentials checks that every stored password decrypts under the
// current key.
func (s *AccountService) VerifyCredentials(ctx context.Context) (domain.BatchResult, error) {
	result := domain.NewBatchResult(uuid.NewString())

	accounts, err := s.List(ctx)
	if err != nil {
		return result, err
	}

	for _, username := range accounts.Usernames() {
		account, _ := accounts.Find(username)
		if account.EncryptedPassword == "" {
			result.Fail(username, domain.ErrMissingPassword)
			continue
		}
		if _, err := s.cipher.Decrypt(account.EncryptedPassword); err != nil {
			result.Fail(username, err)
			continue
		}
		result.Succeed(username)
	}

	return result, nil
}
