package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bnema/repostctl/internal/adapters/fsutil"
	"github.com/bnema/repostctl/internal/domain"
	"github.com/bnema/repostctl/internal/ports"
)

const (
	encryptionVersion = 1
	backupSuffix      = ".backup"
	challengeSuffix   = "_challenge.json"
)

type envelope struct {
	EncryptedData     string `json:"encrypted_data"`
	EncryptionVersion int    `json:"encryption_version"`
}

type Store struct {
	root   string
	cipher ports.Cipher
	mu     sync.RWMutex
}

var _ ports.SessionStore = (*Store)(nil)

func NewStore(root string, cipher ports.Cipher) *Store {
	return &Store{root: filepath.Clean(root), cipher: cipher}
}

func (s *Store) Save(ctx context.Context, session domain.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := s.pathFor(session.Username)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session %q: %w", session.Username, err)
	}

	encrypted, err := s.cipher.Encrypt(string(payload))
	if err != nil {
		return fmt.Errorf("encrypt session %q: %w", session.Username, err)
	}

	data, err := json.MarshalIndent(envelope{EncryptedData: encrypted, EncryptionVersion: encryptionVersion}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session envelope %q: %w", session.Username, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if previous, err := os.ReadFile(path); err == nil {
		if err := fsutil.WriteAtomic(path+backupSuffix, previous, fsutil.PrivateFileMode); err != nil {
			return fmt.Errorf("back up session %q: %w", session.Username, err)
		}
	}

	if err := fsutil.WriteAtomic(path, data, fsutil.PrivateFileMode); err != nil {
		return fmt.Errorf("write session %q: %w", session.Username, err)
	}

	return nil
}

func (s *Store) Load(ctx context.Context, username string) (domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return domain.Session{}, err
	}

	path, err := s.pathFor(username)
	if err != nil {
		return domain.Session{}, err
	}

	s.mu.RLock()
	data, err := os.ReadFile(path)
	s.mu.RUnlock()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.Session{}, fmt.Errorf("session %q: %w", username, domain.ErrSessionNotFound)
		}
		return domain.Session{}, fmt.Errorf("read session %q: %w", username, err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return domain.Session{}, fmt.Errorf("decode session %q: %w", username, err)
	}

	if _, encrypted := fields["encrypted_data"]; !encrypted {
		return domain.Session{Username: username, Settings: json.RawMessage(data), Legacy: true}, nil
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return domain.Session{}, fmt.Errorf("decode session envelope %q: %w", username, err)
	}
	if env.EncryptionVersion > encryptionVersion {
		return domain.Session{}, fmt.Errorf("session %q: unsupported encryption version %d", username, env.EncryptionVersion)
	}

	plaintext, err := s.cipher.Decrypt(env.EncryptedData)
	if err != nil {
		return domain.Session{}, fmt.Errorf("decrypt session %q: %w", username, err)
	}

	var session domain.Session
	if err := json.Unmarshal([]byte(plaintext), &session); err != nil {
		return domain.Session{}, fmt.Errorf("decode session payload %q: %w", username, err)
	}
	if session.Username == "" {
		session.Username = username
	}

	return session, nil
}

// Delete removes the session file together with its backup and any
// pending challenge state. Missing files are ignored.
func (s *Store) Delete(ctx context.Context, username string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := s.pathFor(username)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for _, candidate := range []string{path, path + backupSuffix, filepath.Join(s.root, username+challengeSuffix)} {
		if err := os.Remove(candidate); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, fmt.Errorf("delete %s: %w", filepath.Base(candidate), err))
		}
	}

	return errors.Join(errs...)
}

func (s *Store) pathFor(username string) (string, error) {
	trimmed := strings.TrimSpace(username)
	if trimmed == "" {
		return "", errors.New("session username is empty")
	}
	if strings.ContainsAny(trimmed, `/\`) || trimmed == "." || trimmed == ".." {
		return "", fmt.Errorf("invalid session username %q", username)
	}

	return filepath.Join(s.root, trimmed+".json"), nil
}
