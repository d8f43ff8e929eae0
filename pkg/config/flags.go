// Copyright 2019 Hewlett Packard Enterprise Development LP

// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at

//     http://www.apache.org/licenses/LICENSE-2.0

// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"fmt"
	"os"

	"github.com/bluek8s/licensewatchdog/pkg/shared"
	"github.com/spf13/pflag"
)

// Flags holds the command line settings that locate or override the
// config file.
type Flags struct {
	ConfigPath       string
	SampleIntervalMs string
	Strategy         string
}

// AddFlags registers the watchdog flags on fs.
func (f *Flags) AddFlags(
	fs *pflag.FlagSet,
) {

	fs.StringVar(
		&f.ConfigPath,
		"config",
		"",
		"path to the watchdog config file (defaults to $"+shared.ConfigPathEnvVar+")",
	)
	fs.StringVar(
		&f.SampleIntervalMs,
		"sample-interval-ms",
		"",
		"override sampleIntervalMs; an integer number of milliseconds",
	)
	fs.StringVar(
		&f.Strategy,
		"strategy",
		"",
		"override the enforcement strategy (scale or ingress)",
	)
}

// Load reads the config file named by the flags or the environment and
// applies any flag overrides.
func (f *Flags) Load() (*Config, error) {

	path := f.ConfigPath
	if path == "" {
		path = os.Getenv(shared.ConfigPathEnvVar)
	}
	if path == "" {
		return nil, fmt.Errorf("%w: no config file given (use --config or $%s)", ErrInvalidConfig, shared.ConfigPathEnvVar)
	}

	config, err := read(path)
	if err != nil {
		return nil, err
	}
	if err := f.apply(config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return config, nil
}

// apply copies flag overrides into config.
func (f *Flags) apply(
	config *Config,
) error {

	if f.SampleIntervalMs != "" {
		interval, err := ParseSampleInterval(f.SampleIntervalMs)
		if err != nil {
			return err
		}
		ms := interval.Milliseconds()
		config.SampleIntervalMs = &ms
	}
	if f.Strategy != "" {
		config.Strategy = f.Strategy
	}
	return nil
}
