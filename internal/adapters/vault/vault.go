package vault

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/bnema/repostctl/internal/domain"
	"github.com/bnema/repostctl/internal/ports"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

const (
	KeyLen     = 32
	keyDirMode = 0o700
	keyFileMod = 0o600
	keyInfo    = "repostctl vault v1"
)

var errEmptyPlaintext = errors.New("encrypt: plaintext is empty")

type Vault struct {
	aead cipher.AEAD
}

var _ ports.Cipher = (*Vault)(nil)

// Open loads the key at keyPath, creating it on first use.
func Open(keyPath string) (*Vault, error) {
	key, err := GenerateOrLoadKey(keyPath)
	if err != nil {
		return nil, err
	}

	return New(key)
}

func New(key []byte) (*Vault, error) {
	if len(key) != KeyLen {
		return nil, fmt.Errorf("vault key must be %d bytes, got %d", KeyLen, len(key))
	}

	derived := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, key, nil, []byte(keyInfo)), derived); err != nil {
		return nil, fmt.Errorf("derive vault key: %w", err)
	}

	aead, err := chacha20poly1305.NewX(derived)
	if err != nil {
		return nil, fmt.Errorf("init vault cipher: %w", err)
	}

	return &Vault{aead: aead}, nil
}

// GenerateOrLoadKey returns the key stored at path. A missing file is
// created with fresh random bytes; an existing file is never replaced.
func GenerateOrLoadKey(path string) ([]byte, error) {
	key, err := os.ReadFile(path)
	if err == nil {
		if len(key) != KeyLen {
			return nil, fmt.Errorf("key file %s: expected %d bytes, found %d", path, KeyLen, len(key))
		}
		return key, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read key file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), keyDirMode); err != nil {
		return nil, fmt.Errorf("create key directory: %w", err)
	}

	key = make([]byte, KeyLen)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}

	// O_EXCL: never overwrite a key another process created meanwhile.
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, keyFileMod)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return GenerateOrLoadKey(path)
		}
		return nil, fmt.Errorf("create key file: %w", err)
	}

	if _, err := file.Write(key); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("write key file: %w", err)
	}
	if err := file.Close(); err != nil {
		return nil, fmt.Errorf("close key file: %w", err)
	}

	return key, nil
}

func (v *Vault) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", errEmptyPlaintext
	}

	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("encrypt: generate nonce: %w", err)
	}

	out := make([]byte, 0, len(nonce)+len(plaintext)+v.aead.Overhead())
	out = append(out, nonce...)
	out = v.aead.Seal(out, nonce, []byte(plaintext), nil)

	return base64.StdEncoding.EncodeToString(out), nil
}

func (v *Vault) Decrypt(ciphertext string) (string, error) {
	if ciphertext == "" {
		return "", fmt.Errorf("%w: ciphertext is empty", domain.ErrDecryption)
	}

	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: ciphertext is not base64", domain.ErrDecryption)
	}
	if len(raw) < chacha20poly1305.NonceSizeX+v.aead.Overhead() {
		return "", fmt.Errorf("%w: ciphertext too short", domain.ErrDecryption)
	}

	nonce := raw[:chacha20poly1305.NonceSizeX]
	plaintext, err := v.aead.Open(nil, nonce, raw[chacha20poly1305.NonceSizeX:], nil)
	if err != nil {
		return "", fmt.Errorf("%w: wrong key or corrupted data", domain.ErrDecryption)
	}

	return string(plaintext), nil
}
