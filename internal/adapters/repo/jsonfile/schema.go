package jsonfile

import (
	"encoding/json"
	"fmt"

	"github.com/bnema/repostctl/internal/domain"
)

type fileSchema struct {
	MainAccount *accountSchema  `json:"main_account"`
	AltAccounts []accountSchema `json:"alt_accounts"`
}

type accountSchema struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *fileSchema) applyDefaults() {
	if s.AltAccounts == nil {
		s.AltAccounts = []accountSchema{}
	}
}

func toSchema(accounts domain.AccountSet) fileSchema {
	file := fileSchema{AltAccounts: make([]accountSchema, 0, len(accounts.Alts))}
	if accounts.Main != nil {
		file.MainAccount = &accountSchema{Username: accounts.Main.Username, Password: accounts.Main.EncryptedPassword}
	}
	for _, alt := range accounts.Alts {
		file.AltAccounts = append(file.AltAccounts, accountSchema{Username: alt.Username, Password: alt.EncryptedPassword})
	}

	return file
}

func fromSchema(file fileSchema) domain.AccountSet {
	accounts := domain.AccountSet{Alts: make([]domain.Account, 0, len(file.AltAccounts))}
	if file.MainAccount != nil && file.MainAccount.Username != "" {
		accounts.Main = &domain.Account{
			Username:          domain.NormalizeUsername(file.MainAccount.Username),
			EncryptedPassword: file.MainAccount.Password,
			Role:              domain.RoleMain,
		}
	}
	for _, alt := range file.AltAccounts {
		if alt.Username == "" {
			continue
		}
		accounts.Alts = append(accounts.Alts, domain.Account{
			Username:          domain.NormalizeUsername(alt.Username),
			EncryptedPassword: alt.Password,
			Role:              domain.RoleAlt,
		})
	}

	return accounts
}

// EncodeDocument renders accounts in the on-disk configuration format.
func EncodeDocument(accounts domain.AccountSet) ([]byte, error) {
	data, err := json.MarshalIndent(toSchema(accounts), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode accounts document: %w", err)
	}

	return data, nil
}

// DecodeDocument parses a configuration document.
func DecodeDocument(data []byte) (domain.AccountSet, error) {
	var file fileSchema
	if err := json.Unmarshal(data, &file); err != nil {
		return domain.AccountSet{}, fmt.Errorf("decode accounts document: %w", err)
	}
	file.applyDefaults()

	accounts := fromSchema(file)
	if err := accounts.Validate(); err != nil {
		return domain.AccountSet{}, fmt.Errorf("validate accounts document: %w", err)
	}

	return accounts, nil
}
