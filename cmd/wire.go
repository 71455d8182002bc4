package cmd

import (
	"context"
	"fmt"
	"time"

	chaincache "github.com/bnema/repostctl/internal/adapters/contentcache/chain"
	filecache "github.com/bnema/repostctl/internal/adapters/contentcache/file"
	rediscache "github.com/bnema/repostctl/internal/adapters/contentcache/redis"
	"github.com/bnema/repostctl/internal/adapters/remote/bridge"
	statusadapter "github.com/bnema/repostctl/internal/adapters/render/status"
	"github.com/bnema/repostctl/internal/adapters/repo/jsonfile"
	sessionfile "github.com/bnema/repostctl/internal/adapters/sessions/file"
	"github.com/bnema/repostctl/internal/adapters/vault"
	"github.com/bnema/repostctl/internal/adapters/workspace"
	"github.com/bnema/repostctl/internal/application"
	"github.com/bnema/repostctl/internal/config"
	"github.com/bnema/repostctl/internal/domain"
	"github.com/bnema/repostctl/internal/logging"
	"github.com/bnema/repostctl/internal/metrics"
	"github.com/bnema/repostctl/internal/ports"
	"go.uber.org/zap"
)

type app struct {
	settings  config.Settings
	logger    *zap.Logger
	metrics   *metrics.Metrics
	vault     *vault.Vault
	repo      *jsonfile.Repository
	content   ports.ContentCache
	workspace *workspace.Workspace
	verifier  *promptVerifier

	sessionStore *sessionfile.Store

	sessions *application.SessionManager
	cache    *application.RepostCache
	pipeline *application.Pipeline
	library  *application.MediaLibrary
	accounts *application.AccountService

	statusRenderer func([]domain.AccountStatus, statusadapter.RenderOptions) (string, error)
	now            func() time.Time
	closers        []func() error
}

func wireApp() (*app, error) {
	root, err := config.ResolveRoot()
	if err != nil {
		return nil, err
	}

	v, settings, err := config.Load(root)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	logger, err := logging.New(logging.Options{Level: settings.Log.Level, Format: settings.Log.Format})
	if err != nil {
		return nil, fmt.Errorf("wire logger: %w", err)
	}

	keyVault, err := vault.Open(settings.Key.Path)
	if err != nil {
		return nil, fmt.Errorf("wire credential vault: %w", err)
	}

	repo, err := jsonfile.NewRepository(v)
	if err != nil {
		return nil, fmt.Errorf("wire account repository: %w", err)
	}

	ws, err := workspace.New(settings.Workspace.TempDir)
	if err != nil {
		return nil, fmt.Errorf("wire workspace: %w", err)
	}

	factory, err := bridge.NewFactory(settings.Bridge.URL, settings.Bridge.Timeout)
	if err != nil {
		return nil, fmt.Errorf("wire bridge client: %w", err)
	}

	a := &app{
		settings:       settings,
		logger:         logger,
		metrics:        metrics.New(nil),
		vault:          keyVault,
		repo:           repo,
		workspace:      ws,
		verifier:       &promptVerifier{},
		sessionStore:   sessionfile.NewStore(settings.Sessions.Dir, keyVault),
		statusRenderer: statusadapter.Render,
		now:            time.Now,
	}
	a.content = a.wireContentCache()

	clock := ports.SystemClock{}
	caller := application.NewCaller(application.CallerOptions{
		Concurrency: settings.Remote.Concurrency,
		RateLimit:   settings.Remote.RateLimit,
		Burst:       settings.Remote.Burst,
	}, logger.Named("remote"), a.metrics)

	sessionCfg := application.DefaultSessionConfig()
	sessionCfg.VerificationTimeout = settings.Timeouts.Verification
	a.sessions = application.NewSessionManager(application.SessionDeps{
		Accounts: repo,
		Cipher:   keyVault,
		Store:    a.sessionStore,
		Factory:  factory,
		Verifier: a.verifier,
		Caller:   caller,
		Logger:   logger.Named("sessions"),
		Clock:    clock,
	}, sessionCfg)

	cacheCfg := application.DefaultCacheConfig()
	cacheCfg.TTL = settings.Cache.TTL
	a.cache = application.NewRepostCache(a.sessions, caller, clock, logger.Named("cache"), a.metrics, cacheCfg)

	pipelineCfg := application.DefaultPipelineConfig()
	pipelineCfg.MetadataPolicy.Timeout = settings.Timeouts.Metadata
	pipelineCfg.DownloadPolicy.Timeout = settings.Timeouts.Download
	pipelineCfg.UploadPolicy.Timeout = settings.Timeouts.Upload
	pipelineCfg.UploadPolicy.Attempts = settings.Remote.UploadAttempts
	a.pipeline = application.NewPipeline(application.PipelineDeps{
		Accounts:  repo,
		Sessions:  a.sessions,
		Cache:     a.cache,
		Caller:    caller,
		Workspace: ws,
		Logger:    logger.Named("pipeline"),
		Metrics:   a.metrics,
	}, pipelineCfg)

	a.library = application.NewMediaLibrary(repo, a.sessions, a.cache, a.content, caller, logger.Named("media"), pipelineCfg.MetadataPolicy)

	a.accounts = application.NewAccountService(application.AccountDeps{
		Repo:      repo,
		Cipher:    keyVault,
		Sessions:  a.sessions,
		Store:     a.sessionStore,
		Cache:     a.cache,
		Content:   a.content,
		Workspace: ws,
		Logger:    logger.Named("accounts"),
	})

	return a, nil
}

// wireContentCache prefers redis when configured and reachable, with the
// file store behind it.
func (a *app) wireContentCache() ports.ContentCache {
	files := filecache.NewStore(a.settings.Cache.Dir, a.settings.Cache.TTL, ports.SystemClock{})
	if a.settings.Cache.RedisURL == "" {
		return files
	}

	client, err := rediscache.Connect(context.Background(), a.settings.Cache.RedisURL)
	if err != nil {
		a.logger.Warn("redis content cache unavailable, using files only", zap.Error(err))
		return files
	}
	a.closers = append(a.closers, client.Close)

	return chaincache.NewStore(rediscache.NewStore(client, a.settings.Cache.TTL), files)
}

func (a *app) close() {
	for _, closer := range a.closers {
		if err := closer(); err != nil {
			a.logger.Debug("close resource", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}
