package ports

import (
	"context"

	"github.com/bnema/repostctl/internal/domain"
)

// VerificationCallback asks the user for a challenge code. ok=false means
// the user cancelled.
type VerificationCallback interface {
	RequestCode(ctx context.Context, username string, kind domain.ChallengeKind) (code string, ok bool, err error)
}
