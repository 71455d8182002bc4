package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bnema/repostctl/internal/adapters/fsutil"
	"github.com/bnema/repostctl/internal/adapters/repo/jsonfile"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	EnvPrefix    = "REPOSTCTL"
	HomeEnv      = EnvPrefix + "_HOME"
	rootDirName  = ".repostctl"
	settingsName = "settings.toml"
	dotEnvName   = ".env"
)

type Settings struct {
	Root      string            `mapstructure:"-"`
	Accounts  AccountsSettings  `mapstructure:"accounts"`
	Key       KeySettings       `mapstructure:"key"`
	Sessions  SessionsSettings  `mapstructure:"sessions"`
	Cache     CacheSettings     `mapstructure:"cache"`
	Workspace WorkspaceSettings `mapstructure:"workspace"`
	Bridge    BridgeSettings    `mapstructure:"bridge"`
	Remote    RemoteSettings    `mapstructure:"remote"`
	Timeouts  TimeoutSettings   `mapstructure:"timeouts"`
	Log       LogSettings       `mapstructure:"log"`
	Metrics   MetricsSettings   `mapstructure:"metrics"`
}

type AccountsSettings struct {
	Path string `mapstructure:"path"`
}

type KeySettings struct {
	Path string `mapstructure:"path"`
}

type SessionsSettings struct {
	Dir string `mapstructure:"dir"`
}

type CacheSettings struct {
	Dir      string        `mapstructure:"dir"`
	TTL      time.Duration `mapstructure:"ttl"`
	RedisURL string        `mapstructure:"redis_url"`
}

type WorkspaceSettings struct {
	TempDir     string `mapstructure:"temp_dir"`
	DownloadDir string `mapstructure:"download_dir"`
}

type BridgeSettings struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type RemoteSettings struct {
	Concurrency    int64   `mapstructure:"concurrency"`
	RateLimit      float64 `mapstructure:"rate_limit"`
	Burst          int     `mapstructure:"burst"`
	UploadAttempts int     `mapstructure:"upload_attempts"`
}

type TimeoutSettings struct {
	Metadata     time.Duration `mapstructure:"metadata"`
	Download     time.Duration `mapstructure:"download"`
	Upload       time.Duration `mapstructure:"upload"`
	Verification time.Duration `mapstructure:"verification"`
}

type LogSettings struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type MetricsSettings struct {
	Addr string `mapstructure:"addr"`
}

// ResolveRoot returns $REPOSTCTL_HOME, or ~/.repostctl.
func ResolveRoot() (string, error) {
	if root := strings.TrimSpace(os.Getenv(HomeEnv)); root != "" {
		return filepath.Abs(root)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}

	return filepath.Join(homeDir, rootDirName), nil
}

func SettingsPath(root string) string {
	return filepath.Join(root, settingsName)
}

// Load reads settings.toml under root when it exists and applies
// REPOSTCTL_* environment overrides on top of the defaults. Variables from
// root/.env fill in any that the process environment does not set. The
// returned viper instance is shared with adapters that read their own keys.
func Load(root string) (*viper.Viper, Settings, error) {
	if err := loadDotEnv(root); err != nil {
		return nil, Settings{}, err
	}

	v := viper.New()
	setDefaults(v, root)

	v.SetConfigType("toml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path := SettingsPath(root)
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, Settings{}, fmt.Errorf("read settings file: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, Settings{}, fmt.Errorf("stat settings file: %w", err)
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, Settings{}, fmt.Errorf("decode settings: %w", err)
	}
	settings.Root = root

	if err := settings.Validate(); err != nil {
		return nil, Settings{}, err
	}

	return v, settings, nil
}

func loadDotEnv(root string) error {
	path := filepath.Join(root, dotEnvName)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat env file: %w", err)
	}

	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

func Defaults(root string) Settings {
	return Settings{
		Root:      root,
		Accounts:  AccountsSettings{Path: filepath.Join(root, "config.json")},
		Key:       KeySettings{Path: filepath.Join(root, "crypto.key")},
		Sessions:  SessionsSettings{Dir: filepath.Join(root, "sessions")},
		Cache:     CacheSettings{Dir: filepath.Join(root, "cache"), TTL: 300 * time.Second},
		Workspace: WorkspaceSettings{TempDir: filepath.Join(root, "tmp"), DownloadDir: filepath.Join(root, "downloads")},
		Bridge:    BridgeSettings{URL: "http://127.0.0.1:8421", Timeout: 150 * time.Second},
		Remote:    RemoteSettings{Concurrency: 2, RateLimit: 2, Burst: 4, UploadAttempts: 2},
		Timeouts: TimeoutSettings{
			Metadata:     10 * time.Second,
			Download:     30 * time.Second,
			Upload:       120 * time.Second,
			Verification: 180 * time.Second,
		},
		Log: LogSettings{Level: "warn", Format: "console"},
	}
}

func setDefaults(v *viper.Viper, root string) {
	d := Defaults(root)
	v.SetDefault(jsonfile.AccountsPathKey, d.Accounts.Path)
	v.SetDefault("key.path", d.Key.Path)
	v.SetDefault("sessions.dir", d.Sessions.Dir)
	v.SetDefault("cache.dir", d.Cache.Dir)
	v.SetDefault("cache.ttl", d.Cache.TTL)
	v.SetDefault("cache.redis_url", d.Cache.RedisURL)
	v.SetDefault("workspace.temp_dir", d.Workspace.TempDir)
	v.SetDefault("workspace.download_dir", d.Workspace.DownloadDir)
	v.SetDefault("bridge.url", d.Bridge.URL)
	v.SetDefault("bridge.timeout", d.Bridge.Timeout)
	v.SetDefault("remote.concurrency", d.Remote.Concurrency)
	v.SetDefault("remote.rate_limit", d.Remote.RateLimit)
	v.SetDefault("remote.burst", d.Remote.Burst)
	v.SetDefault("remote.upload_attempts", d.Remote.UploadAttempts)
	v.SetDefault("timeouts.metadata", d.Timeouts.Metadata)
	v.SetDefault("timeouts.download", d.Timeouts.Download)
	v.SetDefault("timeouts.upload", d.Timeouts.Upload)
	v.SetDefault("timeouts.verification", d.Timeouts.Verification)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("metrics.addr", d.Metrics.Addr)
}

func (s Settings) Validate() error {
	var errs []error
	if s.Remote.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("remote.concurrency must be at least 1, got %d", s.Remote.Concurrency))
	}
	if s.Remote.RateLimit <= 0 {
		errs = append(errs, fmt.Errorf("remote.rate_limit must be positive, got %v", s.Remote.RateLimit))
	}
	if s.Remote.Burst < 1 {
		errs = append(errs, fmt.Errorf("remote.burst must be at least 1, got %d", s.Remote.Burst))
	}
	if s.Remote.UploadAttempts < 1 {
		errs = append(errs, fmt.Errorf("remote.upload_attempts must be at least 1, got %d", s.Remote.UploadAttempts))
	}
	if s.Cache.TTL <= 0 {
		errs = append(errs, fmt.Errorf("cache.ttl must be positive, got %s", s.Cache.TTL))
	}
	for name, d := range map[string]time.Duration{
		"timeouts.metadata":     s.Timeouts.Metadata,
		"timeouts.download":     s.Timeouts.Download,
		"timeouts.upload":       s.Timeouts.Upload,
		"timeouts.verification": s.Timeouts.Verification,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %s", name, d))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	return nil
}

type fileSchema struct {
	Accounts struct {
		Path string `toml:"path" yaml:"path"`
	} `toml:"accounts" yaml:"accounts"`
	Key struct {
		Path string `toml:"path" yaml:"path"`
	} `toml:"key" yaml:"key"`
	Sessions struct {
		Dir string `toml:"dir" yaml:"dir"`
	} `toml:"sessions" yaml:"sessions"`
	Cache struct {
		Dir      string `toml:"dir" yaml:"dir"`
		TTL      string `toml:"ttl" yaml:"ttl"`
		RedisURL string `toml:"redis_url" yaml:"redis_url"`
	} `toml:"cache" yaml:"cache"`
	Workspace struct {
		TempDir     string `toml:"temp_dir" yaml:"temp_dir"`
		DownloadDir string `toml:"download_dir" yaml:"download_dir"`
	} `toml:"workspace" yaml:"workspace"`
	Bridge struct {
		URL     string `toml:"url" yaml:"url"`
		Timeout string `toml:"timeout" yaml:"timeout"`
	} `toml:"bridge" yaml:"bridge"`
	Remote struct {
		Concurrency    int64   `toml:"concurrency" yaml:"concurrency"`
		RateLimit      float64 `toml:"rate_limit" yaml:"rate_limit"`
		Burst          int     `toml:"burst" yaml:"burst"`
		UploadAttempts int     `toml:"upload_attempts" yaml:"upload_attempts"`
	} `toml:"remote" yaml:"remote"`
	Timeouts struct {
		Metadata     string `toml:"metadata" yaml:"metadata"`
		Download     string `toml:"download" yaml:"download"`
		Upload       string `toml:"upload" yaml:"upload"`
		Verification string `toml:"verification" yaml:"verification"`
	} `toml:"timeouts" yaml:"timeouts"`
	Log struct {
		Level  string `toml:"level" yaml:"level"`
		Format string `toml:"format" yaml:"format"`
	} `toml:"log" yaml:"log"`
	Metrics struct {
		Addr string `toml:"addr" yaml:"addr"`
	} `toml:"metrics" yaml:"metrics"`
}

func toSchema(s Settings) fileSchema {
	var f fileSchema
	f.Accounts.Path = s.Accounts.Path
	f.Key.Path = s.Key.Path
	f.Sessions.Dir = s.Sessions.Dir
	f.Cache.Dir = s.Cache.Dir
	f.Cache.TTL = s.Cache.TTL.String()
	f.Cache.RedisURL = s.Cache.RedisURL
	f.Workspace.TempDir = s.Workspace.TempDir
	f.Workspace.DownloadDir = s.Workspace.DownloadDir
	f.Bridge.URL = s.Bridge.URL
	f.Bridge.Timeout = s.Bridge.Timeout.String()
	f.Remote.Concurrency = s.Remote.Concurrency
	f.Remote.RateLimit = s.Remote.RateLimit
	f.Remote.Burst = s.Remote.Burst
	f.Remote.UploadAttempts = s.Remote.UploadAttempts
	f.Timeouts.Metadata = s.Timeouts.Metadata.String()
	f.Timeouts.Download = s.Timeouts.Download.String()
	f.Timeouts.Upload = s.Timeouts.Upload.String()
	f.Timeouts.Verification = s.Timeouts.Verification.String()
	f.Log.Level = s.Log.Level
	f.Log.Format = s.Log.Format
	f.Metrics.Addr = s.Metrics.Addr
	return f
}

// Encode renders settings in the settings.toml layout.
func Encode(s Settings) ([]byte, error) {
	data, err := toml.Marshal(toSchema(s))
	if err != nil {
		return nil, fmt.Errorf("encode settings: %w", err)
	}
	return data, nil
}

// EncodeYAML renders settings with the same keys as Encode.
func EncodeYAML(s Settings) ([]byte, error) {
	data, err := yaml.Marshal(toSchema(s))
	if err != nil {
		return nil, fmt.Errorf("encode settings: %w", err)
	}
	return data, nil
}

// WriteDefault writes the default settings file under root. An existing file
// is left alone unless overwrite is set.
func WriteDefault(root string, overwrite bool) (string, error) {
	path := SettingsPath(root)
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return path, fmt.Errorf("settings file %s already exists", path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return path, fmt.Errorf("stat settings file: %w", err)
		}
	}

	data, err := Encode(Defaults(root))
	if err != nil {
		return path, err
	}

	if err := os.MkdirAll(root, fsutil.PrivateDirMode); err != nil {
		return path, fmt.Errorf("create config directory: %w", err)
	}
	if err := fsutil.WriteAtomic(path, data, fsutil.PrivateFileMode); err != nil {
		return path, fmt.Errorf("write settings file: %w", err)
	}

	return path, nil
}
