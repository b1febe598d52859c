/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package config loads the typed droidctl configuration from a JSON file or
// from environment variables, layered over built-in defaults.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/carverauto/droidctl/pkg/logger"
)

var (
	errInvalidConfigSource = errors.New("invalid CONFIG_SOURCE value")
	errInvalidConfigPtr    = errors.New("config must be a non-nil pointer")
)

const (
	configSourceFile = "file"
	configSourceEnv  = "env"

	// DefaultEnvPrefix prefixes every environment variable read by the env loader.
	DefaultEnvPrefix = "DROIDCTL_"
)

// Loader selects a ConfigLoader from CONFIG_SOURCE and validates the result.
type Loader struct {
	defaultLoader ConfigLoader
	logger        logger.Logger
	envFiles      []string
}

// NewLoader returns a Loader reading JSON files by default.
// envFiles are .env files merged into the process environment before loading;
// missing files are ignored.
func NewLoader(log logger.Logger, envFiles ...string) *Loader {
	if log == nil {
		log = logger.NewTestLogger()
	}

	return &Loader{
		defaultLoader: &FileConfigLoader{},
		logger:        log,
		envFiles:      envFiles,
	}
}

// ValidateConfig validates a configuration if it implements Validator.
func ValidateConfig(cfg interface{}) error {
	v, ok := cfg.(Validator)
	if !ok {
		return nil
	}

	return v.Validate()
}

// LoadAndValidate loads cfg from the configured source on top of whatever
// values cfg already holds and then validates it.
func (l *Loader) LoadAndValidate(ctx context.Context, path string, cfg interface{}) error {
	if cfg == nil {
		return errInvalidConfigPtr
	}

	if err := l.loadEnvFiles(); err != nil {
		return err
	}

	source := strings.ToLower(os.Getenv("CONFIG_SOURCE"))

	var loader ConfigLoader

	switch source {
	case configSourceEnv:
		prefix := os.Getenv("CONFIG_ENV_PREFIX")
		if prefix == "" {
			prefix = DefaultEnvPrefix
		}

		loader = NewEnvConfigLoader(l.logger, prefix)
	case configSourceFile, "":
		if path == "" {
			l.logger.Debug().Msg("No configuration file given, using defaults")

			return ValidateConfig(cfg)
		}

		loader = l.defaultLoader
	default:
		return fmt.Errorf("%w: %s (expected '%s' or '%s')",
			errInvalidConfigSource, source, configSourceFile, configSourceEnv)
	}

	if err := loader.Load(ctx, path, cfg); err != nil {
		return err
	}

	return ValidateConfig(cfg)
}

func (l *Loader) loadEnvFiles() error {
	for _, file := range l.envFiles {
		err := godotenv.Load(file)

		switch {
		case err == nil:
			l.logger.Debug().Str("file", file).Msg("Loaded environment file")
		case errors.Is(err, fs.ErrNotExist):
			continue
		default:
			return fmt.Errorf("failed to load environment file '%s': %w", file, err)
		}
	}

	return nil
}

// Load builds the droidctl configuration: defaults, then the configured source, then validation.
func Load(ctx context.Context, log logger.Logger, path string) (*Config, error) {
	cfg := Default()

	if err := NewLoader(log, ".env").LoadAndValidate(ctx, path, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
