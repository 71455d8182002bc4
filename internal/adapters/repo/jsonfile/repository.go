package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bnema/repostctl/internal/adapters/fsutil"
	"github.com/bnema/repostctl/internal/domain"
	"github.com/bnema/repostctl/internal/ports"
	"github.com/spf13/viper"
)

const (
	AccountsPathKey    = "accounts.path"
	accountsConfigDir  = ".repostctl"
	accountsConfigFile = "config.json"
)

type Repository struct {
	accountsPath string
	mu           *sync.RWMutex
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.AccountRepository = (*Repository)(nil)

func NewRepository(cfg *viper.Viper) (*Repository, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	if !cfg.IsSet(AccountsPathKey) {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		cfg.SetDefault(AccountsPathKey, filepath.Join(homeDir, accountsConfigDir, accountsConfigFile))
	}

	accountsPath := cfg.GetString(AccountsPathKey)
	if accountsPath == "" {
		return nil, errors.New("accounts path is empty")
	}
	accountsPath, err := normalizeAccountsPath(accountsPath)
	if err != nil {
		return nil, err
	}

	return &Repository{accountsPath: accountsPath, mu: lockForPath(accountsPath)}, nil
}

func (r *Repository) Path() string {
	return r.accountsPath
}

func (r *Repository) Load(ctx context.Context) (domain.AccountSet, error) {
	if err := ctx.Err(); err != nil {
		return domain.AccountSet{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.readSchema()
	if err != nil {
		return domain.AccountSet{}, err
	}

	return fromSchema(file), nil
}

func (r *Repository) Save(ctx context.Context, accounts domain.AccountSet) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := accounts.Validate(); err != nil {
		return fmt.Errorf("validate accounts: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	return r.writeSchema(toSchema(accounts))
}

func (r *Repository) readSchema() (fileSchema, error) {
	data, err := os.ReadFile(r.accountsPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			file := fileSchema{}
			file.applyDefaults()
			return file, nil
		}
		return fileSchema{}, fmt.Errorf("read accounts file: %w", err)
	}

	var file fileSchema
	if err := json.Unmarshal(data, &file); err != nil {
		return fileSchema{}, fmt.Errorf("decode accounts file: %w", err)
	}
	file.applyDefaults()

	return file, nil
}

func normalizeAccountsPath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve accounts path: %w", err)
	}

	return filepath.Clean(absPath), nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}

func (r *Repository) writeSchema(file fileSchema) error {
	file.applyDefaults()

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("encode accounts file: %w", err)
	}

	if err := fsutil.WriteAtomic(r.accountsPath, data, fsutil.PrivateFileMode); err != nil {
		return fmt.Errorf("write accounts file: %w", err)
	}

	return nil
}
