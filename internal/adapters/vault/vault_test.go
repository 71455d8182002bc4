package vault

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/bnema/repostctl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOrLoadKeyCreatesOnceAndReloads(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "crypto.key")

	first, err := GenerateOrLoadKey(path)
	require.NoError(t, err)
	assert.Len(t, first, KeyLen)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(keyFileMod), info.Mode().Perm())

	second, err := GenerateOrLoadKey(path)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestGenerateOrLoadKeyRefusesToReplaceMalformedKey(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "crypto.key")
	require.NoError(t, os.WriteFile(path, []byte("short"), 0o600))

	_, err := GenerateOrLoadKey(path)
	require.Error(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "short", string(data))
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	t.Parallel()

	v, err := Open(filepath.Join(t.TempDir(), "crypto.key"))
	require.NoError(t, err)

	for _, plaintext := range []string{"pw", "pässwörd with spaces", `{"cookie":"abc"}`} {
		ciphertext, err := v.Encrypt(plaintext)
		require.NoError(t, err)
		assert.NotContains(t, ciphertext, plaintext)

		got, err := v.Decrypt(ciphertext)
		require.NoError(t, err)
		assert.Equal(t, plaintext, got)
	}
}

func TestEncryptRejectsEmptyPlaintext(t *testing.T) {
	t.Parallel()

	v, err := Open(filepath.Join(t.TempDir(), "crypto.key"))
	require.NoError(t, err)

	_, err = v.Encrypt("")
	require.Error(t, err)
}

func TestDecryptFailsWithCredentialError(t *testing.T) {
	t.Parallel()

	v, err := Open(filepath.Join(t.TempDir(), "crypto.key"))
	require.NoError(t, err)
	other, err := Open(filepath.Join(t.TempDir(), "crypto.key"))
	require.NoError(t, err)

	foreign, err := other.Encrypt("secret")
	require.NoError(t, err)

	testCases := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "not base64", input: "%%%"},
		{name: "too short", input: "AAAA"},
		{name: "different key", input: foreign},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := v.Decrypt(tc.input)
			require.ErrorIs(t, err, domain.ErrDecryption)
			assert.ErrorIs(t, err, domain.ErrCredential)
		})
	}
}

func TestConfigDocumentRoundTripKeepsStructure(t *testing.T) {
	t.Parallel()

	v, err := Open(filepath.Join(t.TempDir(), "crypto.key"))
	require.NoError(t, err)

	doc := []byte(`{
  "main_account": {"username": "alice", "password": "pw-a", "note": "keep"},
  "alt_accounts": [{"username": "bob", "password": "pw-b"}, {"username": "carol", "password": "pw-c"}],
  "extra": 42
}`)

	encrypted, err := v.EncryptConfig(doc)
	require.NoError(t, err)
	assert.NotContains(t, string(encrypted), "pw-a")
	assert.NotContains(t, string(encrypted), "pw-c")

	decrypted, err := v.DecryptConfig(encrypted)
	require.NoError(t, err)

	var want, got map[string]any
	require.NoError(t, json.Unmarshal(doc, &want))
	require.NoError(t, json.Unmarshal(decrypted, &got))
	assert.Equal(t, want, got)
}

func TestConfigDocumentNullMainAccount(t *testing.T) {
	t.Parallel()

	v, err := Open(filepath.Join(t.TempDir(), "crypto.key"))
	require.NoError(t, err)

	out, err := v.EncryptConfig([]byte(`{"main_account": null, "alt_accounts": []}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"main_account": null, "alt_accounts": []}`, string(out))
}

func TestDecryptConfigNamesFailingAccount(t *testing.T) {
	t.Parallel()

	v, err := Open(filepath.Join(t.TempDir(), "crypto.key"))
	require.NoError(t, err)

	_, err = v.DecryptConfig([]byte(`{"main_account": null, "alt_accounts": [{"username": "bob", "password": "garbage"}]}`))
	require.ErrorIs(t, err, domain.ErrCredential)
	assert.ErrorContains(t, err, `"bob"`)
}
