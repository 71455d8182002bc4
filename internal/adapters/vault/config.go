package vault

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const (
	mainAccountKey = "main_account"
	altAccountsKey = "alt_accounts"
	passwordKey    = "password"
	usernameKey    = "username"
)

// EncryptConfig encrypts every account password of a configuration
// document. Other fields are carried over as they are.
func (v *Vault) EncryptConfig(doc []byte) ([]byte, error) {
	return transformConfig(doc, v.Encrypt)
}

// DecryptConfig is the inverse of EncryptConfig.
func (v *Vault) DecryptConfig(doc []byte) ([]byte, error) {
	return transformConfig(doc, v.Decrypt)
}

func transformConfig(doc []byte, transform func(string) (string, error)) ([]byte, error) {
	var root map[string]json.RawMessage
	if err := json.Unmarshal(doc, &root); err != nil {
		return nil, fmt.Errorf("decode config document: %w", err)
	}

	if raw, ok := root[mainAccountKey]; ok && !isNull(raw) {
		updated, err := transformAccount(raw, transform)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", mainAccountKey, err)
		}
		root[mainAccountKey] = updated
	}

	if raw, ok := root[altAccountsKey]; ok && !isNull(raw) {
		var alts []json.RawMessage
		if err := json.Unmarshal(raw, &alts); err != nil {
			return nil, fmt.Errorf("decode %s: %w", altAccountsKey, err)
		}
		for i := range alts {
			updated, err := transformAccount(alts[i], transform)
			if err != nil {
				return nil, fmt.Errorf("%s[%d]: %w", altAccountsKey, i, err)
			}
			alts[i] = updated
		}
		encoded, err := json.Marshal(alts)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", altAccountsKey, err)
		}
		root[altAccountsKey] = encoded
	}

	out, err := json.MarshalIndent(root, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode config document: %w", err)
	}

	return out, nil
}

func transformAccount(raw json.RawMessage, transform func(string) (string, error)) (json.RawMessage, error) {
	var account map[string]json.RawMessage
	if err := json.Unmarshal(raw, &account); err != nil {
		return nil, fmt.Errorf("decode account: %w", err)
	}

	var username string
	if rawName, ok := account[usernameKey]; ok {
		_ = json.Unmarshal(rawName, &username)
	}

	rawPassword, ok := account[passwordKey]
	if !ok || isNull(rawPassword) {
		return raw, nil
	}

	var password string
	if err := json.Unmarshal(rawPassword, &password); err != nil {
		return nil, fmt.Errorf("account %q: password is not a string", username)
	}

	converted, err := transform(password)
	if err != nil {
		return nil, fmt.Errorf("account %q: %w", username, err)
	}

	encoded, err := json.Marshal(converted)
	if err != nil {
		return nil, err
	}
	account[passwordKey] = encoded

	return json.Marshal(account)
}

func isNull(raw json.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
