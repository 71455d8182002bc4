package bridge

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/bnema/repostctl/internal/domain"
)

const maxErrorBodyBytes = 64 << 10

type errorBody struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Challenge *struct {
		Kind string `json:"kind"`
	} `json:"challenge,omitempty"`
}

// APIError is a non-2xx answer from the bridge that maps to no domain family.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	switch {
	case e.Code != "" && e.Message != "":
		return fmt.Sprintf("bridge status %d: %s: %s", e.Status, e.Code, e.Message)
	case e.Code != "":
		return fmt.Sprintf("bridge status %d: %s", e.Status, e.Code)
	default:
		return fmt.Sprintf("bridge status %d", e.Status)
	}
}

func decodeError(resp *http.Response) error {
	var body errorBody
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	if err := json.Unmarshal(raw, &body); err != nil {
		body.Message = strings.TrimSpace(string(raw))
	}

	apiErr := &APIError{Status: resp.StatusCode, Code: body.Error, Message: body.Message}

	switch strings.ToLower(body.Error) {
	case "challenge_required", "checkpoint_required":
		kind := domain.ChallengeEmail
		if body.Challenge != nil {
			kind = domain.ChallengeKind(strings.ToLower(body.Challenge.Kind)).Normalize()
		}
		return &domain.ChallengeRequiredError{Kind: kind}
	case "bad_password", "invalid_user", "bad_credentials":
		return fmt.Errorf("%w: %w", domain.ErrBadCredentials, apiErr)
	case "ip_blacklisted":
		return &domain.IPBlacklistError{Cause: apiErr}
	case "login_required":
		return fmt.Errorf("%w: %w", domain.ErrLoginRequired, apiErr)
	case "session_rejected":
		return fmt.Errorf("%w: %w", domain.ErrSessionRejected, apiErr)
	case "rate_limited":
		return fmt.Errorf("%w: %w", domain.ErrRateLimited, apiErr)
	case "not_found", "media_not_found", "private":
		return fmt.Errorf("%w: %w", domain.ErrDataUnavailable, apiErr)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", domain.ErrRateLimited, apiErr)
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return fmt.Errorf("%w: %w", domain.ErrDataUnavailable, apiErr)
	case resp.StatusCode == http.StatusGatewayTimeout:
		return fmt.Errorf("%w: %w", domain.ErrRemoteTimeout, apiErr)
	case resp.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("%w: %w", domain.ErrTransientRemote, apiErr)
	default:
		return apiErr
	}
}
