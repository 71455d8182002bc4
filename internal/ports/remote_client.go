package ports

import (
	"context"

	"github.com/bnema/repostctl/internal/domain"
)

// RemoteClient is one account's handle on the remote platform. Login may
// fail with *domain.ChallengeRequiredError, after which ResolveChallenge
// completes the same login.
type RemoteClient interface {
	Login(ctx context.Context, username, password string) (domain.Session, error)
	ResolveChallenge(ctx context.Context, code string) (domain.Session, error)
	RestoreSession(ctx context.Context, session domain.Session) (domain.Session, error)
	FetchRecentMedia(ctx context.Context, userID string, count int) ([]domain.ContentItem, error)
	FetchMediaByID(ctx context.Context, id string) (domain.ContentItem, error)
	DownloadMedia(ctx context.Context, id string, destDir string, namePrefix string) (string, error)
	UploadMedia(ctx context.Context, path string, caption string, mediaType domain.MediaType) (domain.UploadResult, error)
}

type ClientFactory interface {
	NewClient(username string) (RemoteClient, error)
}
