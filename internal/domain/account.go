package domain

import (
	"fmt"
	"strings"
)

type Role string

const (
	RoleMain Role = "main"
	RoleAlt  Role = "alt"
)

type Account struct {
	Username          string
	EncryptedPassword string
	Role              Role
}

// AccountSet is the persisted configuration: one optional main account and
// an ordered list of alt accounts.
type AccountSet struct {
	Main *Account
	Alts []Account
}

func NormalizeUsername(raw string) string {
	return strings.TrimPrefix(strings.TrimSpace(raw), "@")
}

func (s AccountSet) Find(username string) (Account, bool) {
	username = NormalizeUsername(username)
	if s.Main != nil && s.Main.Username == username {
		return *s.Main, true
	}
	for _, alt := range s.Alts {
		if alt.Username == username {
			return alt, true
		}
	}

	return Account{}, false
}

func (s AccountSet) Usernames() []string {
	names := make([]string, 0, len(s.Alts)+1)
	if s.Main != nil {
		names = append(names, s.Main.Username)
	}
	for _, alt := range s.Alts {
		names = append(names, alt.Username)
	}

	return names
}

func (s AccountSet) AltUsernames() []string {
	names := make([]string, 0, len(s.Alts))
	for _, alt := range s.Alts {
		names = append(names, alt.Username)
	}

	return names
}

func (s AccountSet) Clone() AccountSet {
	out := AccountSet{Alts: append([]Account(nil), s.Alts...)}
	if s.Main != nil {
		main := *s.Main
		out.Main = &main
	}

	return out
}

// Add appends account with the requested role. Asking for RoleMain while a
// main account exists is rejected; callers promote through SetMain instead.
func (s AccountSet) Add(account Account) (AccountSet, error) {
	account.Username = NormalizeUsername(account.Username)
	if account.Username == "" {
		return s, ErrInvalidUsername
	}
	if _, exists := s.Find(account.Username); exists {
		return s, fmt.Errorf("add %q: %w", account.Username, ErrAccountExists)
	}

	out := s.Clone()
	switch account.Role {
	case RoleMain:
		if out.Main != nil {
			return s, fmt.Errorf("add %q as main: main account %q already set", account.Username, out.Main.Username)
		}
		out.Main = &account
	default:
		account.Role = RoleAlt
		out.Alts = append(out.Alts, account)
	}

	return out, nil
}

func (s AccountSet) Remove(username string) (AccountSet, Account, error) {
	username = NormalizeUsername(username)
	out := s.Clone()
	if out.Main != nil && out.Main.Username == username {
		removed := *out.Main
		out.Main = nil
		return out, removed, nil
	}

	for i, alt := range out.Alts {
		if alt.Username == username {
			out.Alts = append(out.Alts[:i], out.Alts[i+1:]...)
			return out, alt, nil
		}
	}

	return s, Account{}, fmt.Errorf("remove %q: %w", username, ErrAccountNotFound)
}

// SetMain promotes username to main. The displaced main account, if any, is
// appended to the alt list.
func (s AccountSet) SetMain(username string) (AccountSet, error) {
	username = NormalizeUsername(username)
	if s.Main != nil && s.Main.Username == username {
		return s.Clone(), nil
	}

	out := s.Clone()
	index := -1
	for i, alt := range out.Alts {
		if alt.Username == username {
			index = i
			break
		}
	}
	if index < 0 {
		return s, fmt.Errorf("set main %q: %w", username, ErrAccountNotFound)
	}

	promoted := out.Alts[index]
	promoted.Role = RoleMain
	out.Alts = append(out.Alts[:index], out.Alts[index+1:]...)

	if out.Main != nil {
		demoted := *out.Main
		demoted.Role = RoleAlt
		out.Alts = append(out.Alts, demoted)
	}
	out.Main = &promoted

	return out, nil
}

func (s AccountSet) Validate() error {
	seen := map[string]struct{}{}
	check := func(account Account) error {
		if account.Username == "" {
			return ErrInvalidUsername
		}
		if _, ok := seen[account.Username]; ok {
			return fmt.Errorf("duplicate username %q: %w", account.Username, ErrAccountExists)
		}
		seen[account.Username] = struct{}{}
		return nil
	}

	if s.Main != nil {
		if err := check(*s.Main); err != nil {
			return err
		}
	}
	for _, alt := range s.Alts {
		if err := check(alt); err != nil {
			return err
		}
	}

	return nil
}
