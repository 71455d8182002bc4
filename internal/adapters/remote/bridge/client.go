package bridge

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bnema/repostctl/internal/domain"
	"github.com/bnema/repostctl/internal/ports"
)

const (
	SessionHeader  = "X-Bridge-Session"
	UsernameHeader = "X-Bridge-User"

	maxResponseBytes = 8 << 20
	defaultTimeout   = 150 * time.Second
)

// Factory creates bridge clients that share one HTTP client.
type Factory struct {
	BaseURL        string
	HTTPClient     *http.Client
	RequestTimeout time.Duration
}

var _ ports.ClientFactory = (*Factory)(nil)

func NewFactory(baseURL string, requestTimeout time.Duration) (*Factory, error) {
	if _, err := buildURL(baseURL, "/v1/login"); err != nil {
		return nil, err
	}

	return &Factory{
		BaseURL:        strings.TrimRight(baseURL, "/"),
		HTTPClient:     &http.Client{},
		RequestTimeout: requestTimeout,
	}, nil
}

func (f *Factory) NewClient(username string) (ports.RemoteClient, error) {
	username = domain.NormalizeUsername(username)
	if username == "" {
		return nil, domain.ErrInvalidUsername
	}

	return &Client{factory: f, username: username}, nil
}

// Client is one account's session on the bridge. The session blob travels
// base64-encoded in SessionHeader and is replaced by whatever the bridge
// sends back.
type Client struct {
	factory  *Factory
	username string

	mu       sync.Mutex
	userID   string
	settings []byte
}

var _ ports.RemoteClient = (*Client)(nil)

type sessionPayload struct {
	UserID   string          `json:"user_id"`
	Settings json.RawMessage `json:"settings,omitempty"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type challengeRequest struct {
	Username string `json:"username"`
	Code     string `json:"code"`
}

type restoreRequest struct {
	Username string          `json:"username"`
	UserID   string          `json:"user_id,omitempty"`
	Settings json.RawMessage `json:"settings"`
}

type mediaListResponse struct {
	Items []domain.ContentItem `json:"items"`
}

type uploadResponse struct {
	ID   string `json:"id"`
	Code string `json:"code"`
}

func (c *Client) Login(ctx context.Context, username, password string) (domain.Session, error) {
	return c.authenticate(ctx, "/v1/login", loginRequest{Username: domain.NormalizeUsername(username), Password: password})
}

func (c *Client) ResolveChallenge(ctx context.Context, code string) (domain.Session, error) {
	return c.authenticate(ctx, "/v1/challenge", challengeRequest{Username: c.username, Code: code})
}

func (c *Client) RestoreSession(ctx context.Context, session domain.Session) (domain.Session, error) {
	if len(session.Settings) == 0 {
		return domain.Session{}, fmt.Errorf("restore %q: %w", c.username, domain.ErrSessionRejected)
	}

	c.mu.Lock()
	c.userID = session.UserID
	c.settings = append([]byte(nil), session.Settings...)
	c.mu.Unlock()

	return c.authenticate(ctx, "/v1/session/restore", restoreRequest{
		Username: c.username,
		UserID:   session.UserID,
		Settings: session.Settings,
	})
}

func (c *Client) authenticate(ctx context.Context, path string, body any) (domain.Session, error) {
	var payload sessionPayload
	if err := c.doJSON(ctx, http.MethodPost, path, body, &payload); err != nil {
		return domain.Session{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if payload.UserID != "" {
		c.userID = payload.UserID
	}
	if len(payload.Settings) > 0 {
		c.settings = append([]byte(nil), payload.Settings...)
	}

	return domain.Session{
		Username: c.username,
		UserID:   c.userID,
		Settings: append(json.RawMessage(nil), c.settings...),
	}, nil
}

func (c *Client) FetchRecentMedia(ctx context.Context, userID string, count int) ([]domain.ContentItem, error) {
	if userID == "" {
		c.mu.Lock()
		userID = c.userID
		c.mu.Unlock()
	}
	if userID == "" {
		return nil, fmt.Errorf("fetch recent media for %q: %w", c.username, domain.ErrLoginRequired)
	}

	path := "/v1/users/" + url.PathEscape(userID) + "/media?count=" + strconv.Itoa(count)
	var resp mediaListResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (c *Client) FetchMediaByID(ctx context.Context, id string) (domain.ContentItem, error) {
	var item domain.ContentItem
	if err := c.doJSON(ctx, http.MethodGet, "/v1/media/"+url.PathEscape(id), nil, &item); err != nil {
		return domain.ContentItem{}, err
	}
	if item.ID == "" {
		item.ID = id
	}
	return item, nil
}

// DownloadMedia streams the payload into destDir as namePrefix plus the
// extension of the served filename.
func (c *Client) DownloadMedia(ctx context.Context, id string, destDir string, namePrefix string) (string, error) {
	resp, cancel, err := c.do(ctx, http.MethodGet, "/v1/media/"+url.PathEscape(id)+"/download", nil, "")
	if err != nil {
		return "", err
	}
	defer cancel()
	defer func() { _ = resp.Body.Close() }()

	target := filepath.Join(destDir, namePrefix+payloadExtension(resp.Header))
	tmp, err := os.CreateTemp(destDir, ".download-*")
	if err != nil {
		return "", fmt.Errorf("create download file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("download media %s: %w", id, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("close download file: %w", err)
	}
	if err := os.Rename(tmpPath, target); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("move download into place: %w", err)
	}

	return target, nil
}

func (c *Client) UploadMedia(ctx context.Context, path string, caption string, mediaType domain.MediaType) (domain.UploadResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return domain.UploadResult{}, fmt.Errorf("open upload payload: %w", err)
	}
	defer func() { _ = file.Close() }()

	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeUploadForm(form, file, filepath.Base(path), caption, mediaType))
	}()

	resp, cancel, err := c.do(ctx, http.MethodPost, "/v1/media", pr, form.FormDataContentType())
	_ = pr.Close()
	if err != nil {
		return domain.UploadResult{}, err
	}
	defer cancel()
	defer func() { _ = resp.Body.Close() }()

	var payload uploadResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&payload); err != nil {
		return domain.UploadResult{}, fmt.Errorf("decode upload response: %w", err)
	}
	return domain.UploadResult{ID: payload.ID, Code: payload.Code}, nil
}

func writeUploadForm(form *multipart.Writer, payload io.Reader, filename, caption string, mediaType domain.MediaType) error {
	if err := form.WriteField("caption", caption); err != nil {
		return err
	}
	if err := form.WriteField("media_type", strconv.Itoa(int(mediaType))); err != nil {
		return err
	}
	part, err := form.CreateFormFile("file", filename)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, payload); err != nil {
		return err
	}
	return form.Close()
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any) error {
	var (
		reader      io.Reader
		contentType string
	)
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", path, err)
		}
		reader = bytes.NewReader(encoded)
		contentType = "application/json"
	}

	resp, cancel, err := c.do(ctx, method, path, reader, contentType)
	if err != nil {
		return err
	}
	defer cancel()
	defer func() { _ = resp.Body.Close() }()

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// do sends the request and returns a 2xx response. The caller closes the
// body and then calls cancel.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, context.CancelFunc, error) {
	endpoint, err := buildURL(c.factory.BaseURL, path)
	if err != nil {
		return nil, nil, err
	}

	requestCtx, cancel := c.requestContext(ctx)
	req, err := http.NewRequestWithContext(requestCtx, method, endpoint, body)
	if err != nil {
		cancel()
		return nil, nil, fmt.Errorf("create %s request: %w", path, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(UsernameHeader, c.username)

	c.mu.Lock()
	if len(c.settings) > 0 {
		req.Header.Set(SessionHeader, base64.StdEncoding.EncodeToString(c.settings))
	}
	c.mu.Unlock()

	resp, err := c.httpClient().Do(req)
	if err != nil {
		cancel()
		return nil, nil, fmt.Errorf("%s %s: %w", method, path, err)
	}

	c.captureSession(resp.Header)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		defer cancel()
		defer func() { _ = resp.Body.Close() }()
		return nil, nil, decodeError(resp)
	}

	return resp, cancel, nil
}

func (c *Client) captureSession(header http.Header) {
	encoded := header.Get(SessionHeader)
	if encoded == "" {
		return
	}
	settings, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil || !json.Valid(settings) {
		return
	}

	c.mu.Lock()
	c.settings = settings
	c.mu.Unlock()
}

func (c *Client) httpClient() *http.Client {
	if c.factory.HTTPClient != nil {
		return c.factory.HTTPClient
	}
	return http.DefaultClient
}

func (c *Client) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return context.WithCancel(ctx)
	}

	timeout := c.factory.RequestTimeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

func payloadExtension(header http.Header) string {
	if _, params, err := mime.ParseMediaType(header.Get("Content-Disposition")); err == nil {
		if ext := filepath.Ext(filepath.Base(params["filename"])); ext != "" {
			return strings.ToLower(ext)
		}
	}

	mediaType, _, err := mime.ParseMediaType(header.Get("Content-Type"))
	if err == nil {
		switch mediaType {
		case "image/jpeg":
			return ".jpg"
		case "video/mp4":
			return ".mp4"
		}
		if exts, _ := mime.ExtensionsByType(mediaType); len(exts) > 0 {
			return exts[0]
		}
	}

	return ".jpg"
}

func buildURL(baseURL string, path string) (string, error) {
	if baseURL == "" {
		return "", errors.New("bridge url is required")
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse bridge url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", errors.New("bridge url must use http or https")
	}
	if parsed.Host == "" {
		return "", errors.New("bridge url host is required")
	}

	endpoint, err := parsed.Parse(path)
	if err != nil {
		return "", fmt.Errorf("parse bridge path: %w", err)
	}
	return endpoint.String(), nil
}
