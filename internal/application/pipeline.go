package application

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bnema/repostctl/internal/domain"
	"github.com/bnema/repostctl/internal/metrics"
	"github.com/bnema/repostctl/internal/ports"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const retainedPrefix = "downloaded_"

type PipelineConfig struct {
	MetadataPolicy Policy
	DownloadPolicy Policy
	UploadPolicy   Policy
}

func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		MetadataPolicy: Policy{Timeout: 10 * time.Second, Attempts: 3, Backoff: 2 * time.Second},
		DownloadPolicy: Policy{Timeout: 30 * time.Second, Attempts: 2, Backoff: 2 * time.Second},
		UploadPolicy:   Policy{Timeout: 120 * time.Second, Attempts: 2, Backoff: 2 * time.Second},
	}
}

type RepostOptions struct {
	// Caption replaces the original caption on every upload when set.
	Caption string
	// Targets restricts the upload to these alts. Empty means every alt.
	Targets []string
}

// Pipeline moves content from the main account to the alts.
type Pipeline struct {
	accounts  ports.AccountRepository
	sessions  *SessionManager
	cache     *RepostCache
	caller    *Caller
	workspace ports.Workspace
	logger    *zap.Logger
	metrics   *metrics.Metrics
	cfg       PipelineConfig
}

type PipelineDeps struct {
	Accounts  ports.AccountRepository
	Sessions  *SessionManager
	Cache     *RepostCache
	Caller    *Caller
	Workspace ports.Workspace
	Logger    *zap.Logger
	Metrics   *metrics.Metrics
}

func NewPipeline(deps PipelineDeps, cfg PipelineConfig) *Pipeline {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	return &Pipeline{
		accounts:  deps.Accounts,
		sessions:  deps.Sessions,
		cache:     deps.Cache,
		caller:    deps.Caller,
		workspace: deps.Workspace,
		logger:    deps.Logger,
		metrics:   deps.Metrics,
		cfg:       cfg,
	}
}

// Repost copies the main account's item itemID to the alts that do not
// carry it yet. Per-account failures land in the result, not in the error.
func (p *Pipeline) Repost(ctx context.Context, itemID string, opts RepostOptions) (domain.BatchResult, error) {
	result := domain.NewBatchResult(uuid.NewString())
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return result, errors.New("repost: media id is required")
	}

	main, targets, err := p.prepare(ctx, opts.Targets)
	if err != nil {
		return result, err
	}

	item, err := p.fetchItem(ctx, main, itemID)
	if err != nil {
		return result, err
	}

	path, err := p.download(ctx, main, item.ID, p.workspace.TempDir(), fmt.Sprintf("%s_%s", main.Username, item.ID))
	if err != nil {
		return result, err
	}
	defer p.discard(path)
	item.LocalPath = path

	caption := item.CaptionText
	if opts.Caption != "" {
		caption = opts.Caption
	}
	p.fanOut(ctx, &result, item, caption, targets)

	return result, nil
}

// DownloadByReference saves the item behind a shared link into targetDir.
// Links that cannot be resolved come back as Unavailable, not as an error.
func (p *Pipeline) DownloadByReference(ctx context.Context, ref string, targetDir string) (domain.DownloadResult, error) {
	item, unavailable, err := p.resolveReference(ctx, ref)
	if err != nil || unavailable != nil {
		return domain.DownloadResult{Unavailable: unavailable}, err
	}

	main, err := p.mainHandle(ctx)
	if err != nil {
		return domain.DownloadResult{}, err
	}

	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return domain.DownloadResult{}, fmt.Errorf("create download directory: %w", err)
	}

	path, err := p.download(ctx, main, item.ID, targetDir, retainedPrefix+item.ID)
	if err != nil {
		if errors.Is(err, domain.ErrDataUnavailable) {
			return domain.DownloadResult{Item: item, Unavailable: &domain.Unavailable{Reference: ref, Reason: err.Error()}}, nil
		}
		return domain.DownloadResult{Item: item}, err
	}
	item.LocalPath = path

	p.logger.Info("content downloaded", zap.String("reference", ref), zap.String("path", path))
	return domain.DownloadResult{Item: item, Path: path}, nil
}

// RepostByReference resolves a shared link and uploads it to every alt,
// with the original caption unless captionOverride is set.
func (p *Pipeline) RepostByReference(ctx context.Context, ref string, captionOverride string) (domain.RepostResult, error) {
	result := domain.RepostResult{Batch: domain.NewBatchResult(uuid.NewString())}

	item, unavailable, err := p.resolveReference(ctx, ref)
	if err != nil || unavailable != nil {
		result.Unavailable = unavailable
		return result, err
	}
	result.Item = item

	main, targets, err := p.prepare(ctx, nil)
	if err != nil {
		return result, err
	}

	path, err := p.download(ctx, main, item.ID, p.workspace.TempDir(), fmt.Sprintf("%s_%s", main.Username, item.ID))
	if err != nil {
		if errors.Is(err, domain.ErrDataUnavailable) {
			result.Unavailable = &domain.Unavailable{Reference: ref, Reason: err.Error()}
			return result, nil
		}
		return result, err
	}
	defer p.discard(path)
	item.LocalPath = path
	result.Item = item

	caption := item.CaptionText
	if captionOverride != "" {
		caption = captionOverride
	}
	p.fanOut(ctx, &result.Batch, item, caption, targets)

	return result, nil
}

// RepostLocalFile uploads a file from disk to every alt. The user's file is
// never touched; a staged copy is uploaded and removed afterwards.
func (p *Pipeline) RepostLocalFile(ctx context.Context, path string, caption string, mediaType domain.MediaType) (domain.BatchResult, error) {
	result := domain.NewBatchResult(uuid.NewString())

	_, targets, err := p.prepare(ctx, nil)
	if err != nil {
		return result, err
	}

	staged, err := p.workspace.StageCopy(path)
	if err != nil {
		return result, fmt.Errorf("stage %s: %w", filepath.Base(path), err)
	}
	defer p.discard(staged)

	item := domain.ContentItem{
		ID:          "local:" + filepath.Base(path),
		CaptionText: caption,
		MediaType:   mediaType,
		LocalPath:   staged,
	}
	p.fanOut(ctx, &result, item, caption, targets)

	return result, nil
}

func (p *Pipeline) fanOut(ctx context.Context, result *domain.BatchResult, item domain.ContentItem, caption string, targets []string) {
	logger := p.logger.With(zap.String("operation_id", result.OperationID), zap.String("media_id", item.ID))

	skip := map[string]struct{}{}
	for _, username := range p.cache.Check(ctx, item, targets) {
		skip[username] = struct{}{}
	}

	for _, username := range targets {
		if _, ok := skip[username]; ok {
			result.Skip(username)
			p.metrics.IncUpload(metrics.OutcomeSkipped)
			logger.Info("already reposted, skipping", zap.String("account", username))
			continue
		}
		if err := ctx.Err(); err != nil {
			result.Fail(username, err)
			continue
		}

		uploaded, err := p.upload(ctx, username, item, caption)
		if err != nil {
			result.Fail(username, err)
			p.metrics.IncUpload(metrics.OutcomeError)
			logger.Warn("upload failed", zap.String("account", username), zap.Error(err))
			continue
		}

		result.Succeed(username)
		p.metrics.IncUpload(metrics.OutcomeOK)
		p.cache.MarkReposted(username, item)
		logger.Info("reposted",
			zap.String("account", username),
			zap.String("uploaded_id", uploaded.ID),
		)
	}

	logger.Info("repost finished", zap.String("summary", result.Summary()))
}

func (p *Pipeline) upload(ctx context.Context, username string, item domain.ContentItem, caption string) (domain.UploadResult, error) {
	handle, err := p.sessions.Ensure(ctx, username)
	if err != nil {
		return domain.UploadResult{}, err
	}

	return Call(ctx, p.caller, "upload_media", p.cfg.UploadPolicy, func(ctx context.Context) (domain.UploadResult, error) {
		return handle.Client.UploadMedia(ctx, item.LocalPath, caption, item.MediaType)
	})
}

func (p *Pipeline) prepare(ctx context.Context, requested []string) (*Handle, []string, error) {
	accounts, err := p.accounts.Load(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load accounts: %w", err)
	}
	if accounts.Main == nil {
		return nil, nil, domain.ErrNoMainAccount
	}

	targets := accounts.AltUsernames()
	if len(requested) > 0 {
		targets = targets[:0:0]
		for _, username := range cleanUsernames(requested) {
			account, ok := accounts.Find(username)
			if !ok || account.Role != domain.RoleAlt {
				return nil, nil, fmt.Errorf("target %q: %w", username, domain.ErrAccountNotFound)
			}
			targets = append(targets, username)
		}
	}

	main, err := p.sessions.Ensure(ctx, accounts.Main.Username)
	if err != nil {
		return nil, nil, fmt.Errorf("connect main account: %w", err)
	}

	return main, targets, nil
}

func (p *Pipeline) mainHandle(ctx context.Context) (*Handle, error) {
	accounts, err := p.accounts.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}
	if accounts.Main == nil {
		return nil, domain.ErrNoMainAccount
	}

	handle, err := p.sessions.Ensure(ctx, accounts.Main.Username)
	if err != nil {
		return nil, fmt.Errorf("connect main account: %w", err)
	}
	return handle, nil
}

func (p *Pipeline) resolveReference(ctx context.Context, ref string) (domain.ContentItem, *domain.Unavailable, error) {
	parsed, err := domain.ParseContentReference(ref)
	if err != nil {
		return domain.ContentItem{}, &domain.Unavailable{Reference: ref, Reason: err.Error()}, nil
	}
	if parsed.Kind == domain.ReferenceStory {
		return domain.ContentItem{}, &domain.Unavailable{Reference: ref, Reason: "stories are not supported"}, nil
	}

	mediaID, err := parsed.MediaID()
	if err != nil {
		return domain.ContentItem{}, &domain.Unavailable{Reference: ref, Reason: err.Error()}, nil
	}

	main, err := p.mainHandle(ctx)
	if err != nil {
		return domain.ContentItem{}, nil, err
	}

	item, err := p.fetchItem(ctx, main, mediaID)
	if err != nil {
		if errors.Is(err, domain.ErrDataUnavailable) {
			return domain.ContentItem{}, &domain.Unavailable{Reference: ref, Reason: err.Error()}, nil
		}
		return domain.ContentItem{}, nil, err
	}
	if item.Code == "" {
		item.Code = parsed.Shortcode
	}

	return item, nil, nil
}

func (p *Pipeline) fetchItem(ctx context.Context, main *Handle, id string) (domain.ContentItem, error) {
	item, err := Call(ctx, p.caller, "fetch_media", p.cfg.MetadataPolicy, func(ctx context.Context) (domain.ContentItem, error) {
		return main.Client.FetchMediaByID(ctx, id)
	})
	if err != nil {
		return domain.ContentItem{}, err
	}
	if item.ID == "" {
		item.ID = id
	}
	return item, nil
}

func (p *Pipeline) download(ctx context.Context, main *Handle, id, dir, prefix string) (string, error) {
	return Call(ctx, p.caller, "download_media", p.cfg.DownloadPolicy, func(ctx context.Context) (string, error) {
		return main.Client.DownloadMedia(ctx, id, dir, prefix)
	})
}

func (p *Pipeline) discard(path string) {
	if err := p.workspace.Discard(path); err != nil {
		p.logger.Warn("remove temp payload failed", zap.String("path", path), zap.Error(err))
	}
}
