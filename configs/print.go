// Copyright 2025, the BiliRead contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog/log"
)

const redactedValue = "[redacted]"

func (cfg *ServerConfig) print() {
	log.Info().
		Str("version", BuildVersion).
		Str("revision", cfg.Build.Revision()).
		Str("started", cfg.Instance.StartingTime).
		Msg("Starting BiliRead")

	printableConfig := cfg.redacted()

	configYAML, err := yaml.MarshalWithOptions(
		printableConfig,
		GetDurationEncoderOption(),
	)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal config to YAML for printing")

		return
	}

	log.Info().
		Msg("Application configuration:")
	fmt.Fprintln(os.Stderr, string(configYAML))
}

// redacted returns a shallow copy with cookie values replaced.
func (cfg *ServerConfig) redacted() ServerConfig {
	c := *cfg

	for _, field := range []*string{
		&c.Credential.SESSDATA,
		&c.Credential.BiliJct,
		&c.Credential.Buvid3,
	} {
		if *field != "" {
			*field = redactedValue
		}
	}

	return c
}
