// Copyright 2025, the BiliRead contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog/log"

	"codeberg.org/biliread/biliread/core/credential"
	"codeberg.org/biliread/biliread/core/requests"
)

// Global exposes the server configuration.
var Global ServerConfig

// Possible values for XRef.Store.
const (
	MemoryStore XRefStoreKind = "memory"
	SQLiteStore XRefStoreKind = "sqlite"
)

// XRefStoreKind selects the backend of the article/dynamic cross-reference registry.
type XRefStoreKind string

// randomUserAgent as Request.UserAgent picks one browser user agent at startup.
const randomUserAgent = "random"

// ServerConfig holds the application configuration.
type ServerConfig struct {
	Build buildInfo `yaml:"-"`

	Basic struct {
		Host                     string      `env:"BILIREAD_HOST,overwrite" yaml:"host"`
		Port                     string      `env:"BILIREAD_PORT,overwrite" yaml:"port"`
		UnixSocket               string      `env:"BILIREAD_UNIXSOCKET" yaml:"unixSocket"`
		RawUnixSocketPermissions string      `env:"BILIREAD_UNIXSOCKET_PERMISSIONS" yaml:"unixSocketPermissions"`
		UnixSocketPermissions    os.FileMode `yaml:"-"`
		UnixSocketUser           string      `env:"BILIREAD_UNIXSOCKET_USER" yaml:"unixSocketUser"`
		UnixSocketGroup          string      `env:"BILIREAD_UNIXSOCKET_GROUP" yaml:"unixSocketGroup"`
	} `yaml:"basic"`

	// Credential is sent with every upstream call. Leave empty to browse anonymously.
	Credential struct {
		SESSDATA   string `env:"BILIREAD_SESSDATA" yaml:"sessdata"`
		BiliJct    string `env:"BILIREAD_BILI_JCT" yaml:"biliJct"`
		Buvid3     string `env:"BILIREAD_BUVID3" yaml:"buvid3"`
		DedeUserID string `env:"BILIREAD_DEDEUSERID" yaml:"dedeUserId"`
	} `yaml:"credential"`

	Request struct {
		UserAgent         string        `env:"BILIREAD_USER_AGENT,overwrite" yaml:"userAgent"`
		AcceptLanguage    string        `env:"BILIREAD_ACCEPTLANGUAGE,overwrite" yaml:"acceptLanguage"`
		Referer           string        `env:"BILIREAD_REFERER,overwrite" yaml:"referer"`
		Timeout           time.Duration `env:"BILIREAD_REQUEST_TIMEOUT,overwrite" yaml:"timeout"`
		RequestsPerSecond float64       `env:"BILIREAD_REQUESTS_PER_SECOND,overwrite" yaml:"requestsPerSecond"`
		Burst             int           `env:"BILIREAD_REQUEST_BURST,overwrite" yaml:"burst"`
	} `yaml:"request"`

	Cache struct {
		Enabled bool          `env:"BILIREAD_CACHE,overwrite" yaml:"enabled"`
		Size    int           `env:"BILIREAD_CACHE_SIZE,overwrite" yaml:"cacheSize"`
		TTL     time.Duration `env:"BILIREAD_CACHE_TTL,overwrite" yaml:"cacheTTL"`
	} `yaml:"cache"`

	XRef struct {
		Store XRefStoreKind `env:"BILIREAD_XREF_STORE,overwrite" yaml:"store"`
		// Path of the SQLite database file, used when Store is "sqlite".
		Path string `env:"BILIREAD_XREF_PATH,overwrite" yaml:"path"`
	} `yaml:"xref"`

	Article struct {
		// Number of empty links resolved at once while converting one article.
		ResolveConcurrency int `env:"BILIREAD_RESOLVE_CONCURRENCY,overwrite" yaml:"resolveConcurrency"`
	} `yaml:"article"`

	Instance struct {
		StartingTime string `yaml:"-"`
	} `yaml:"instance"`

	Development struct {
		InDevelopment        bool   `env:"BILIREAD_DEV" yaml:"inDevelopment"`
		SaveResponses        bool   `env:"BILIREAD_SAVE_RESPONSES,overwrite" yaml:"saveResponses"`
		ResponseSaveLocation string `env:"BILIREAD_RESPONSE_SAVE_LOCATION,overwrite" yaml:"responseSaveLocation"`
	} `yaml:"development"`

	Log struct {
		Level   string   `env:"BILIREAD_LOG_LEVEL,overwrite" yaml:"logLevel"`
		Outputs []string `env:"BILIREAD_LOG_OUTPUTS,overwrite" yaml:"logOutputs"`
		Format  string   `env:"BILIREAD_LOG_FORMAT,overwrite" yaml:"logFormat"`
	} `yaml:"log"`
}

// LoadConfig loads the configuration from various sources.
func (cfg *ServerConfig) LoadConfig() error {
	file := locateConfigFile()

	cfg.SetDefaults()

	cfg.Build.load()

	cfg.Instance.StartingTime = time.Now().UTC().Format("2006-01-02 15:04")

	if err := cfg.readYAML(file); err != nil {
		return fmt.Errorf("error loading YAML config: %w", err)
	}

	if err := useDotEnv(); err != nil {
		return fmt.Errorf("error using .env file: %w", err)
	}

	if err := cfg.readEnv(); err != nil {
		return fmt.Errorf("error loading environment variables: %w", err)
	}

	if err := cfg.validateAndSet(); err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}

	cfg.setupAudit()

	cfg.print()

	if isContainerized() && cfg.Basic.UnixSocket == "" && cfg.Basic.Host != "0.0.0.0" && cfg.Basic.Host != "::" {
		log.Warn().
			Str("host", cfg.Basic.Host).
			Msg("Running in a containerized environment but host is not a wildcard address (e.g., '0.0.0.0' or '::'). This may prevent the service from being accessible outside the container.")
	}

	return nil
}

// UpstreamCredential returns the configured bilibili credential, or nil when none is set.
func (cfg *ServerConfig) UpstreamCredential() *credential.Credential {
	c := cfg.Credential
	if c.SESSDATA == "" && c.BiliJct == "" && c.Buvid3 == "" && c.DedeUserID == "" {
		return nil
	}

	return &credential.Credential{
		SESSDATA:   c.SESSDATA,
		BiliJct:    c.BiliJct,
		Buvid3:     c.Buvid3,
		DedeUserID: c.DedeUserID,
	}
}

// RequestOptions translates the request and cache sections for requests.New.
func (cfg *ServerConfig) RequestOptions() requests.Options {
	opts := requests.Options{
		UserAgent:         cfg.Request.UserAgent,
		AcceptLanguage:    cfg.Request.AcceptLanguage,
		Referer:           cfg.Request.Referer,
		Timeout:           cfg.Request.Timeout,
		RequestsPerSecond: cfg.Request.RequestsPerSecond,
		Burst:             cfg.Request.Burst,
	}

	if cfg.Cache.Enabled {
		opts.CacheSize = cfg.Cache.Size
		opts.CacheTTL = cfg.Cache.TTL
	}

	return opts
}

var skippedPaths = []string{"/healthz"}

// ShouldSkipServerLogging determines if a request should bypass the logging middleware.
func (cfg *ServerConfig) ShouldSkipServerLogging(path string) bool {
	for _, p := range skippedPaths {
		if path == p {
			return !cfg.Development.InDevelopment
		}
	}

	return false
}

// isContainerized checks for common indicators of a containerized environment.
//
// This is a heuristic and may not be 100% accurate.
func isContainerized() bool {
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true
	}

	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}

	if _, err := os.Stat("/.containerenv"); err == nil {
		return true
	}

	// #nosec G304 -- We are checking for the existence and content of a well-known system file for heuristics.
	cgroup, err := os.ReadFile("/proc/self/cgroup")
	if err == nil {
		content := string(cgroup)

		return strings.Contains(content, "docker") ||
			strings.Contains(content, "kubepods") ||
			strings.Contains(content, "containerd") ||
			strings.Contains(content, "lxc") ||
			strings.Contains(content, "crio") ||
			// systemd-nspawn containers
			strings.Contains(content, ".machine")
	}

	return false
}

// GetDurationEncoderOption returns a YAML encoder option that marshals
// time.Duration into a human-readable string format (e.g., "30m", "1h").
func GetDurationEncoderOption() yaml.EncodeOption {
	return yaml.CustomMarshaler[time.Duration](
		func(d time.Duration) ([]byte, error) {
			return yaml.Marshal(d.String())
		},
	)
}
