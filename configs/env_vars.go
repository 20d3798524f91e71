// Copyright 2025, the BiliRead contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

var errUnsupportedFieldType = errors.New("unsupported field type")

// envField is one BILIREAD_* variable bound to a ServerConfig field.
type envField struct {
	name      string
	overwrite bool
	target    reflect.Value
}

// envFields lists the env-tagged fields of every ServerConfig section, in declaration order.
func (cfg *ServerConfig) envFields() []envField {
	var fields []envField

	root := reflect.ValueOf(cfg).Elem()

	for i := range root.NumField() {
		section := root.Field(i)
		if section.Kind() != reflect.Struct {
			continue
		}

		for j := range section.NumField() {
			tag, ok := section.Type().Field(j).Tag.Lookup("env")
			if !ok {
				continue
			}

			name, opts, _ := strings.Cut(tag, ",")
			fields = append(fields, envField{
				name:      name,
				overwrite: slices.Contains(strings.Split(opts, ","), "overwrite"),
				target:    section.Field(j),
			})
		}
	}

	return fields
}

// readEnv applies BILIREAD_* variables to cfg.
//
// A variable tagged "overwrite" replaces whatever defaults or YAML set; the others only fill a field
// that is still empty. Variables set to the empty string are ignored for non-string fields.
// Every malformed variable is reported, not only the first.
func (cfg *ServerConfig) readEnv() error {
	var result *multierror.Error

	for _, field := range cfg.envFields() {
		raw, ok := os.LookupEnv(field.name)
		if !ok {
			continue
		}

		if !field.overwrite && !field.target.IsZero() {
			continue
		}

		if err := setEnvValue(field.target, raw); err != nil {
			result = multierror.Append(result, fmt.Errorf("%s=%q: %w", field.name, raw, err))

			continue
		}

		log.Debug().Str("variable", field.name).Msg("Applied environment variable")
	}

	return result.ErrorOrNil()
}

// setEnvValue parses raw into the field types ServerConfig uses.
func setEnvValue(target reflect.Value, raw string) error {
	raw = strings.TrimSpace(raw)

	switch ptr := target.Addr().Interface().(type) {
	case *string:
		*ptr = raw

		return nil
	case *XRefStoreKind:
		*ptr = XRefStoreKind(strings.ToLower(raw))

		return nil
	}

	if raw == "" {
		return nil
	}

	switch ptr := target.Addr().Interface().(type) {
	case *bool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}

		*ptr = v
	case *int:
		v, err := strconv.Atoi(raw)
		if err != nil {
			return err
		}

		*ptr = v
	case *float64:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return err
		}

		*ptr = v
	case *time.Duration:
		v, err := time.ParseDuration(raw)
		if err != nil {
			return err
		}

		*ptr = v
	case *[]string:
		values := strings.Split(raw, ",")
		for i := range values {
			values[i] = strings.TrimSpace(values[i])
		}

		*ptr = slices.DeleteFunc(values, func(s string) bool { return s == "" })
	default:
		return fmt.Errorf("%w: %s", errUnsupportedFieldType, target.Type())
	}

	return nil
}

// useDotEnv loads a .env file from the working directory, falling back to the directory of the
// binary. Variables already present in the environment win over the file.
func useDotEnv() error {
	dirs := make([]string, 0, 2)

	if cwd, err := os.Getwd(); err == nil {
		dirs = append(dirs, cwd)
	} else {
		log.Warn().Err(err).Msg("Could not get current working directory")
	}

	if exe, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Dir(exe))
	}

	for _, dir := range dirs {
		path := filepath.Join(dir, ".env")

		err := godotenv.Load(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}

		if err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}

		log.Info().Str("path", path).Msg("Loaded configuration from .env file")

		return nil
	}

	log.Info().Msg("No .env file found, skipping")

	return nil
}
