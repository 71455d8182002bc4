package domain

import (
	"errors"
	"fmt"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrAccountExists   = errors.New("account already exists")
	ErrNoMainAccount   = errors.New("no main account configured")
	ErrInvalidUsername = errors.New("username is required")
	ErrNotConnected    = errors.New("account is not connected")
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionRejected = errors.New("session rejected by remote")
	ErrCacheMiss       = errors.New("cache miss")
)

var (
	ErrCredential      = errors.New("credential error")
	ErrDecryption      = fmt.Errorf("%w: decryption failed", ErrCredential)
	ErrBadCredentials  = fmt.Errorf("%w: bad username or password", ErrCredential)
	ErrMissingPassword = fmt.Errorf("%w: password is required", ErrCredential)
)

var (
	ErrChallenge             = errors.New("challenge error")
	ErrChallengeRequired     = fmt.Errorf("%w: verification required", ErrChallenge)
	ErrVerificationCancelled = fmt.Errorf("%w: verification cancelled", ErrChallenge)
	ErrVerificationTimeout   = fmt.Errorf("%w: verification timed out", ErrChallenge)
)

var ErrIPBlacklisted = errors.New("ip address blacklisted by remote")

const IPBlacklistGuidance = "The remote platform has temporarily blocked this IP address. " +
	"Wait a few hours before retrying, switch to a different network (for example a mobile hotspot), " +
	"or log in once from the official app on this network to clear the block."

var (
	ErrTransientRemote = errors.New("transient remote error")
	ErrRemoteTimeout   = fmt.Errorf("%w: timeout", ErrTransientRemote)
	ErrRateLimited     = fmt.Errorf("%w: rate limited", ErrTransientRemote)
	ErrLoginRequired   = errors.New("remote login required")
)

var ErrDataUnavailable = errors.New("content unavailable")

type ChallengeKind string

const (
	ChallengeEmail  ChallengeKind = "email"
	ChallengeSMS    ChallengeKind = "sms"
	ChallengeOTP    ChallengeKind = "otp"
	ChallengeChoice ChallengeKind = "choice"
)

// Normalize resolves "choice" and unknown kinds to email delivery.
func (k ChallengeKind) Normalize() ChallengeKind {
	switch k {
	case ChallengeSMS, ChallengeOTP:
		return k
	default:
		return ChallengeEmail
	}
}

func (k ChallengeKind) Label() string {
	switch k.Normalize() {
	case ChallengeSMS:
		return "SMS"
	case ChallengeOTP:
		return "Authenticator App"
	default:
		return "Email"
	}
}

type ChallengeRequiredError struct {
	Kind ChallengeKind
}

func (e *ChallengeRequiredError) Error() string {
	return fmt.Sprintf("verification required via %s", e.Kind.Label())
}

func (e *ChallengeRequiredError) Is(target error) bool {
	return target == ErrChallengeRequired || target == ErrChallenge
}

type IPBlacklistError struct {
	Username string
	Cause    error
}

func (e *IPBlacklistError) Error() string {
	return fmt.Sprintf("account %q: %s: %s", e.Username, ErrIPBlacklisted, IPBlacklistGuidance)
}

func (e *IPBlacklistError) Is(target error) bool {
	return target == ErrIPBlacklisted
}

func (e *IPBlacklistError) Unwrap() error {
	return e.Cause
}
