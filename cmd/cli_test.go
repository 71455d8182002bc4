package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/bnema/repostctl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "repostctl "))
}

func TestConfigInitThenShow(t *testing.T) {
	home := t.TempDir()

	stdout, _, err := executeCLI(t, home, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Wrote "+filepath.Join(home, "settings.toml"))
	assert.FileExists(t, filepath.Join(home, "settings.toml"))

	_, _, err = executeCLI(t, home, "config", "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, _, err = executeCLI(t, home, "config", "init", "--force")
	require.NoError(t, err)

	t.Setenv("REPOSTCTL_BRIDGE_URL", "http://10.0.0.5:9000")
	stdout, _, err = executeCLI(t, home, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "[bridge]")
	assert.Contains(t, stdout, "http://10.0.0.5:9000")

	stdout, _, err = executeCLI(t, home, "config", "show", "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, stdout, "bridge:")

	_, _, err = executeCLI(t, home, "config", "show", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}

func TestAccountAddListRemove(t *testing.T) {
	home := t.TempDir()

	stdout, _, err := executeCLI(t, home, "account", "add", "@alice", "--main", "--password", "alice-secret")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Added @alice as main")

	_, _, err = executeCLI(t, home, "account", "add", "bob", "--password", "bob-secret")
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(home, "config.json"))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "alice-secret")
	assert.NotContains(t, string(raw), "bob-secret")

	stdout, _, err = executeCLI(t, home, "account", "list")
	require.NoError(t, err)
	assert.Equal(t, "alice\tmain\nbob\talt\n", stdout)

	stdout, _, err = executeCLI(t, home, "account", "list", "--json")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"username":"alice","role":"main"},{"username":"bob","role":"alt"}]`, stdout)

	stdout, _, err = executeCLI(t, home, "account", "remove", "bob")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Removed @bob (alt)")

	stdout, _, err = executeCLI(t, home, "account", "list")
	require.NoError(t, err)
	assert.Equal(t, "alice\tmain\n", stdout)
}

func TestAccountAddRejectsDuplicates(t *testing.T) {
	home := t.TempDir()

	_, _, err := executeCLI(t, home, "account", "add", "bob", "--password", "pw")
	require.NoError(t, err)

	_, _, err = executeCLI(t, home, "account", "add", "@bob", "--password", "pw")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAccountExists)
}

func TestAccountRemoveUnknown(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "account", "remove", "ghost")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestAccountSetMainSwapsRoles(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, addAccounts(t, home, "alice", "bob"))

	stdout, _, err := executeCLI(t, home, "account", "set-main", "bob")
	require.NoError(t, err)
	assert.Contains(t, stdout, "@bob is now the main account")

	stdout, _, err = executeCLI(t, home, "account", "list")
	require.NoError(t, err)
	assert.Equal(t, "bob\tmain\nalice\talt\n", stdout)
}

func TestAccountExportImportAcrossKeys(t *testing.T) {
	source := t.TempDir()
	require.NoError(t, addAccounts(t, source, "alice", "bob"))

	stdout, _, err := executeCLI(t, source, "account", "export")
	require.NoError(t, err)
	assert.NotContains(t, stdout, "pw-bob")

	exported := filepath.Join(t.TempDir(), "accounts.json")
	_, _, err = executeCLI(t, source, "account", "export", "--decrypt", "--output", exported)
	require.NoError(t, err)
	raw, err := os.ReadFile(exported)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "pw-bob")

	target := t.TempDir()
	require.NoError(t, addAccounts(t, target, "zoe"))

	stdout, _, err = executeCLI(t, target, "account", "import", "--plaintext", exported)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Imported 2 account(s)")

	stdout, _, err = executeCLI(t, target, "account", "verify")
	require.NoError(t, err)
	assert.Contains(t, stdout, "3 succeeded, 0 failed")
}

func TestAccountVerifyReportsForeignCiphertext(t *testing.T) {
	source := t.TempDir()
	require.NoError(t, addAccounts(t, source, "alice"))
	exported := filepath.Join(t.TempDir(), "accounts.json")
	_, _, err := executeCLI(t, source, "account", "export", "--output", exported)
	require.NoError(t, err)

	target := t.TempDir()
	_, _, err = executeCLI(t, target, "account", "import", exported)
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, target, "account", "verify")
	require.Error(t, err)
	assert.Contains(t, stdout, "0 succeeded, 1 failed")
	assert.Contains(t, stdout, "failed  @alice")
}

func TestStatusShowsAccounts(t *testing.T) {
	home := t.TempDir()

	stdout, _, err := executeCLI(t, home, "status")
	require.NoError(t, err)
	assert.Contains(t, stdout, "accounts: 0")

	require.NoError(t, addAccounts(t, home, "alice", "bob"))

	stdout, _, err = executeCLI(t, home, "status")
	require.NoError(t, err)
	assert.Contains(t, stdout, "accounts: 2")
	assert.Contains(t, stdout, "@alice")
	assert.Contains(t, stdout, "(main)")
	assert.Contains(t, stdout, "@bob")
	assert.Contains(t, stdout, "not loaded")

	stdout, _, err = executeCLI(t, home, "status", "--json")
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(stdout)))
	assert.Contains(t, stdout, `"Username": "bob"`)
}

func TestUnknownCommandFails(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "frobnicate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
}

func TestWatchRejectsBadSchedule(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "watch", "--schedule", "every so often")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse schedule")
}

func TestRepostWithoutMainAccount(t *testing.T) {
	home := t.TempDir()
	_, _, err := executeCLI(t, home, "account", "add", "bob", "--password", "pw")
	require.NoError(t, err)

	_, _, err = executeCLI(t, home, "repost", "m1")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNoMainAccount)
}

func TestRepostFileRejectsUnknownType(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "repost-file", "clip.gif", "--type", "gif")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported media type")
}

func TestRepostThroughBridge(t *testing.T) {
	bridge := newFakeBridge(t)
	t.Setenv("REPOSTCTL_BRIDGE_URL", bridge.server.URL)

	home := t.TempDir()
	require.NoError(t, addAccounts(t, home, "alice", "bob", "carol"))

	stdout, _, err := executeCLI(t, home, "repost", "m1", "--caption", "new words", "--to", "bob")
	require.NoError(t, err)
	assert.Contains(t, stdout, "1 succeeded, 0 failed, 0 skipped as duplicate")
	assert.Contains(t, stdout, "ok      @bob")
	assert.Equal(t, []string{"bob: new words"}, bridge.uploaded())

	entries, err := os.ReadDir(filepath.Join(home, "tmp"))
	require.NoError(t, err)
	assert.Empty(t, entries)

	assert.FileExists(t, filepath.Join(home, "sessions", "alice.json"))
}

func TestDownloadURLThroughBridge(t *testing.T) {
	bridge := newFakeBridge(t)
	t.Setenv("REPOSTCTL_BRIDGE_URL", bridge.server.URL)

	home := t.TempDir()
	require.NoError(t, addAccounts(t, home, "alice"))
	dir := t.TempDir()

	stdout, _, err := executeCLI(t, home, "download-url", "https://www.instagram.com/p/BA/", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Saved "+filepath.Join(dir, "downloaded_64.jpg"))

	stdout, _, err = executeCLI(t, home, "download-url", "https://www.instagram.com/stories/alice/1/", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Not available")
}

type fakeBridge struct {
	server *httptest.Server

	mu      sync.Mutex
	uploads []string
}

func newFakeBridge(t *testing.T) *fakeBridge {
	t.Helper()

	b := &fakeBridge{}
	b.server = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.server.Close)
	return b
}

func (b *fakeBridge) serve(w http.ResponseWriter, r *http.Request) {
	user := r.Header.Get("X-Bridge-User")
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/v1/login":
		var body struct {
			Username string `json:"username"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		_, _ = fmt.Fprintf(w, `{"user_id":"id-%s","settings":{"cookie":"%s"}}`, body.Username, body.Username)
	case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/download"):
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte("jpeg bytes"))
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/v1/users/"):
		_, _ = w.Write([]byte(`{"items":[]}`))
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/v1/media/"):
		id := strings.TrimPrefix(r.URL.Path, "/v1/media/")
		_, _ = fmt.Fprintf(w, `{"id":"%s","code":"C%s","caption_text":"sunset","media_type":1}`, id, id)
	case r.Method == http.MethodPost && r.URL.Path == "/v1/media":
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		b.mu.Lock()
		b.uploads = append(b.uploads, user+": "+r.FormValue("caption"))
		b.mu.Unlock()
		_, _ = w.Write([]byte(`{"id":"u1","code":"U1"}`))
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"not_found"}`))
	}
}

func (b *fakeBridge) uploaded() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.uploads...)
}

// addAccounts adds the first username as main and the rest as alts, each
// with password "pw-<username>".
func addAccounts(t *testing.T, home string, usernames ...string) error {
	t.Helper()

	for i, username := range usernames {
		args := []string{"account", "add", username, "--password", "pw-" + username}
		if i == 0 {
			args = append(args, "--main")
		}
		if _, _, err := executeCLI(t, home, args...); err != nil {
			return err
		}
	}
	return nil
}

func executeCLI(t *testing.T, home string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("REPOSTCTL_HOME", home)

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}
