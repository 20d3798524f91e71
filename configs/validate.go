// Copyright 2025, the BiliRead contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"regexp"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/rs/zerolog/log"
)

// validation errors.
var (
	errUnixSocketWithHostPort       = errors.New("unix socket configured - cannot specify Host and Port simultaneously")
	errUnixSocketInvalidPermissions = errors.New("invalid Basic.UnixSocketPermissions value")
	errUnixSocketUserDoesNotExist   = errors.New("user does not exist")
	errUnixSocketGroupDoesNotExist  = errors.New("group does not exist")
	errWriteCredentialIncomplete    = errors.New("credential.biliJct is set without credential.sessdata")
)

var (
	fileModeOctalRegexp  = regexp.MustCompile(`^0?[0-7]{3}$`)
	fileModeStringRegexp = regexp.MustCompile(`^(?:[r-][w-][x-]){3}$`)
	digitsRegexp         = regexp.MustCompile(`^[0-9]+$`)
)

// validateAndSet validates the server configuration and populates some fields.
func (cfg *ServerConfig) validateAndSet() error {
	if err := cfg.validateListener(); err != nil {
		return err
	}

	if err := validation.ValidateStruct(&cfg.Request,
		validation.Field(&cfg.Request.Referer, is.URL),
		validation.Field(&cfg.Request.Timeout, validation.Required, validation.Min(0)),
		validation.Field(&cfg.Request.RequestsPerSecond, validation.Min(0.0)),
		validation.Field(&cfg.Request.Burst, validation.Min(0)),
	); err != nil {
		return fmt.Errorf("request: %w", err)
	}

	if cfg.Request.UserAgent == randomUserAgent {
		cfg.Request.UserAgent = GetRandomUserAgent()

		log.Info().
			Str("user_agent", cfg.Request.UserAgent).
			Msg("Picked a random user agent")
	}

	if cfg.Cache.Enabled {
		if err := validation.ValidateStruct(&cfg.Cache,
			validation.Field(&cfg.Cache.Size, validation.Required, validation.Min(1)),
			validation.Field(&cfg.Cache.TTL, validation.Required),
		); err != nil {
			return fmt.Errorf("cache: %w", err)
		}
	}

	if err := validation.ValidateStruct(&cfg.XRef,
		validation.Field(&cfg.XRef.Store, validation.Required, validation.In(MemoryStore, SQLiteStore)),
		validation.Field(&cfg.XRef.Path, validation.When(cfg.XRef.Store == SQLiteStore, validation.Required)),
	); err != nil {
		return fmt.Errorf("xref: %w", err)
	}

	if err := validation.ValidateStruct(&cfg.Article,
		validation.Field(&cfg.Article.ResolveConcurrency, validation.Required, validation.Min(1)),
	); err != nil {
		return fmt.Errorf("article: %w", err)
	}

	if err := validation.ValidateStruct(&cfg.Log,
		validation.Field(&cfg.Log.Level, validation.In("debug", "info", "warn", "error")),
		validation.Field(&cfg.Log.Format, validation.In("console", "json")),
	); err != nil {
		return fmt.Errorf("log: %w", err)
	}

	if cfg.Credential.BiliJct != "" && cfg.Credential.SESSDATA == "" {
		return errWriteCredentialIncomplete
	}

	return nil
}

func (cfg *ServerConfig) validateListener() error {
	if cfg.Basic.UnixSocket == "" {
		// Set TCP defaults
		if cfg.Basic.Host == "" {
			cfg.Basic.Host = DefaultHost
			log.Info().
				Str("host", cfg.Basic.Host).
				Msg("Binding to default host")
		}

		if cfg.Basic.Port == "" {
			cfg.Basic.Port = DefaultPort
			log.Info().
				Str("port", cfg.Basic.Port).
				Msg("Using default port")
		}

		return nil
	}

	if cfg.Basic.Host != "" || cfg.Basic.Port != "" {
		return errUnixSocketWithHostPort
	}

	switch {
	case cfg.Basic.RawUnixSocketPermissions == "":
		cfg.Basic.UnixSocketPermissions = 0o666
	case fileModeOctalRegexp.MatchString(cfg.Basic.RawUnixSocketPermissions):
		rawModeUint64, _ := strconv.ParseUint(cfg.Basic.RawUnixSocketPermissions, 8, 32)

		cfg.Basic.UnixSocketPermissions = os.FileMode(rawModeUint64)
	case fileModeStringRegexp.MatchString(cfg.Basic.RawUnixSocketPermissions):
		mode := os.FileMode(0)

		for i, c := range cfg.Basic.RawUnixSocketPermissions {
			if c != '-' {
				// Set i-th bit from the end
				const bitsInByte = 8

				mode |= 1 << (bitsInByte - i)
			}
		}

		cfg.Basic.UnixSocketPermissions = mode
	default:
		return errUnixSocketInvalidPermissions
	}

	if u := cfg.Basic.UnixSocketUser; u != "" {
		lookup := user.Lookup
		if digitsRegexp.MatchString(u) {
			lookup = user.LookupId
		}

		if _, err := lookup(u); err != nil {
			return errUnixSocketUserDoesNotExist
		}
	}

	if g := cfg.Basic.UnixSocketGroup; g != "" {
		lookup := user.LookupGroup
		if digitsRegexp.MatchString(g) {
			lookup = user.LookupGroupId
		}

		if _, err := lookup(g); err != nil {
			return errUnixSocketGroupDoesNotExist
		}
	}

	return nil
}
