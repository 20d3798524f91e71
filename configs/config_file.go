// Copyright 2025, the BiliRead contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog/log"
)

const configFileEnvVar = "BILIREAD_CONFIGFILE"

// configFileCandidates are tried in order when no file was named explicitly.
var configFileCandidates = []string{"./config.yaml", "./config.yml"}

// configFile names the YAML file to load: -config, then BILIREAD_CONFIGFILE, then the first
// candidate that exists. explicit is false for candidates, whose absence is not an error.
type configFile struct {
	path     string
	explicit bool
}

func locateConfigFile() configFile {
	if flag.Lookup("config") == nil {
		flag.String("config", "", "Path to a BiliRead configuration file in YAML format.")
	}

	if !flag.Parsed() {
		flag.Parse()
	}

	if path := flag.Lookup("config").Value.String(); path != "" {
		return configFile{path: path, explicit: true}
	}

	if path := os.Getenv(configFileEnvVar); path != "" {
		return configFile{path: path, explicit: true}
	}

	for _, path := range configFileCandidates {
		if _, err := os.Stat(path); err == nil {
			return configFile{path: path}
		}
	}

	return configFile{}
}

// readYAML overlays file onto cfg. Unknown keys are rejected.
func (cfg *ServerConfig) readYAML(file configFile) error {
	if file.path == "" {
		log.Info().Msg("No YAML configuration file found, skipping")

		return nil
	}

	data, err := os.ReadFile(file.path) // #nosec G304 -- Only loading a config file
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !file.explicit {
			return nil
		}

		return fmt.Errorf("failed to read configuration file %s: %w", file.path, err)
	}

	if err := yaml.UnmarshalWithOptions(data, cfg, yaml.Strict()); err != nil {
		return fmt.Errorf("failed to parse YAML from %s: %w", file.path, err)
	}

	log.Info().Str("path", file.path).Msg("Loaded configuration file")

	return nil
}
