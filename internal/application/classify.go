package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bnema/repostctl/internal/domain"
)

var classifiedFamilies = []error{
	domain.ErrCredential,
	domain.ErrChallenge,
	domain.ErrIPBlacklisted,
	domain.ErrTransientRemote,
	domain.ErrLoginRequired,
	domain.ErrDataUnavailable,
	domain.ErrSessionRejected,
}

// ClassifyRemoteError maps an error returned by a RemoteClient onto the
// domain taxonomy. Errors that already belong to a family pass through.
func ClassifyRemoteError(err error) error {
	if err == nil {
		return nil
	}
	for _, family := range classifiedFamilies {
		if errors.Is(err, family) {
			return err
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", domain.ErrRemoteTimeout, err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "change your ip address") && strings.Contains(msg, "blacklist"):
		return &domain.IPBlacklistError{Cause: err}
	case containsAny(msg, "challenge_required", "checkpoint_required"):
		return fmt.Errorf("%w: %w", domain.ErrChallengeRequired, err)
	case containsAny(msg, "bad_password", "incorrect password", "invalid_user", "invalid credentials"):
		return fmt.Errorf("%w: %w", domain.ErrBadCredentials, err)
	case strings.Contains(msg, "login_required"):
		return fmt.Errorf("%w: %w", domain.ErrLoginRequired, err)
	case containsAny(msg, "timeout", "timed out", "deadline exceeded"):
		return fmt.Errorf("%w: %w", domain.ErrRemoteTimeout, err)
	case containsAny(msg, "rate limit", "please wait", "too many requests", "429"):
		return fmt.Errorf("%w: %w", domain.ErrRateLimited, err)
	case containsAny(msg, "not found", "media_not_found", "private", "deleted"):
		return fmt.Errorf("%w: %w", domain.ErrDataUnavailable, err)
	default:
		return fmt.Errorf("%w: %w", domain.ErrTransientRemote, err)
	}
}

// IsRetryable reports whether the Caller may try err again.
func IsRetryable(err error) bool {
	return errors.Is(err, domain.ErrTransientRemote)
}

func containsAny(s string, needles ...string) bool {
	for _, needle := range needles {
		if strings.Contains(s, needle) {
			return true
		}
	}
	return false
}
