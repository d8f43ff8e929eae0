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
	"errors"
	"fmt"
	"io/ioutil"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/bluek8s/licensewatchdog/pkg/catalog"
	"github.com/bluek8s/licensewatchdog/pkg/enforcement"
	"sigs.k8s.io/yaml"
)

const (
	// MaxMilliseconds is the largest interval that fits a time.Duration.
	MaxMilliseconds = math.MaxInt64 / int64(time.Millisecond)

	// DefaultSampleIntervalMs is used when the config file does not set
	// sampleIntervalMs.
	DefaultSampleIntervalMs = 1000

	// ValidatorTypeHTTP probes an HTTP endpoint.
	ValidatorTypeHTTP = "http"
	// ValidatorTypeSecret checks for a license Secret in the cluster.
	ValidatorTypeSecret = "secret"
)

// ErrInvalidConfig is wrapped by every configuration error.
var ErrInvalidConfig = errors.New("invalid configuration")

// SecretRef locates the license Secret for the secret validator.
type SecretRef struct {
	Namespace string `json:"namespace,omitempty"`
	Name      string `json:"name"`
	Key       string `json:"key"`
}

// ValidatorConfig selects and configures the license validator.
type ValidatorConfig struct {
	Type      string     `json:"type,omitempty"`
	Host      string     `json:"host,omitempty"`
	Port      int        `json:"port,omitempty"`
	Path      string     `json:"path,omitempty"`
	Secure    bool       `json:"secure,omitempty"`
	TimeoutMs int64      `json:"timeoutMs,omitempty"`
	Secret    *SecretRef `json:"secret,omitempty"`
}

// Config is the complete watchdog configuration. Intervals are integer
// milliseconds; a fractional value fails to parse.
type Config struct {
	SampleIntervalMs *int64                 `json:"sampleIntervalMs,omitempty"`
	InitialDelayMs   int64                  `json:"initialDelayMs,omitempty"`
	ReassertValid    bool                   `json:"reassertValid,omitempty"`
	Strategy         string                 `json:"strategy,omitempty"`
	WriteTimeoutMs   int64                  `json:"writeTimeoutMs,omitempty"`
	Validator        ValidatorConfig        `json:"validator"`
	Resources        []catalog.Resource     `json:"resources,omitempty"`
	Ingresses        []catalog.IngressRoute `json:"ingresses,omitempty"`
}

// Load reads, defaults and validates the config file at path.
func Load(
	path string,
) (*Config, error) {

	config, err := read(path)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return config, nil
}

// Parse decodes a YAML or JSON config document, applies defaults and
// validates the result. Unknown fields are rejected.
func Parse(
	data []byte,
) (*Config, error) {

	config, err := decode(data)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// read loads and defaults the config file at path without validating it.
func read(
	path string,
) (*Config, error) {

	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	config, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return config, nil
}

// decode unmarshals data strictly and applies defaults.
func decode(
	data []byte,
) (*Config, error) {

	config := &Config{}
	if err := yaml.UnmarshalStrict(data, config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	config.setDefaults()
	return config, nil
}

// ParseSampleInterval parses a sample interval given as an integer count
// of milliseconds.
func ParseSampleInterval(
	value string,
) (time.Duration, error) {

	ms, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: sample interval %q must be an integer number of milliseconds", ErrInvalidConfig, value)
	}
	if err := checkMilliseconds("sample interval", ms); err != nil {
		return 0, err
	}
	return time.Duration(ms) * time.Millisecond, nil
}

// checkMilliseconds rejects negative values and values that overflow a
// time.Duration.
func checkMilliseconds(
	field string,
	ms int64,
) error {

	if ms < 0 {
		return fmt.Errorf("%w: %s %d must not be negative", ErrInvalidConfig, field, ms)
	}
	if ms > MaxMilliseconds {
		return fmt.Errorf("%w: %s %d exceeds %d milliseconds", ErrInvalidConfig, field, ms, int64(MaxMilliseconds))
	}
	return nil
}

func (c *Config) setDefaults() {

	if c.SampleIntervalMs == nil {
		ms := int64(DefaultSampleIntervalMs)
		c.SampleIntervalMs = &ms
	}
	if c.Strategy == "" {
		c.Strategy = string(enforcement.StrategyScale)
	}
	if c.Validator.Type == "" {
		c.Validator.Type = ValidatorTypeHTTP
	}
	if c.Validator.Secret != nil && c.Validator.Secret.Namespace == "" {
		c.Validator.Secret.Namespace = catalog.DefaultNamespace
	}
}

// Validate checks every setting. It is safe to call again after
// overrides have been applied.
func (c *Config) Validate() error {

	if c.SampleIntervalMs == nil {
		return fmt.Errorf("%w: sampleIntervalMs must be a non-negative integer", ErrInvalidConfig)
	}
	durations := []struct {
		field string
		ms    int64
	}{
		{"sampleIntervalMs", *c.SampleIntervalMs},
		{"initialDelayMs", c.InitialDelayMs},
		{"writeTimeoutMs", c.WriteTimeoutMs},
		{"validator.timeoutMs", c.Validator.TimeoutMs},
	}
	for _, d := range durations {
		if err := checkMilliseconds(d.field, d.ms); err != nil {
			return err
		}
	}

	strategy, err := enforcement.ParseStrategy(c.Strategy)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	switch c.Validator.Type {
	case ValidatorTypeHTTP:
		if c.Validator.Host == "" {
			return fmt.Errorf("%w: validator.host is required for the http validator", ErrInvalidConfig)
		}
	case ValidatorTypeSecret:
		if c.Validator.Secret == nil || c.Validator.Secret.Name == "" || c.Validator.Secret.Key == "" {
			return fmt.Errorf("%w: validator.secret.name and validator.secret.key are required for the secret validator", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown validator.type %q", ErrInvalidConfig, c.Validator.Type)
	}

	registry, err := c.Catalog()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if strategy == enforcement.StrategyScale && len(registry.Resources()) == 0 {
		return fmt.Errorf("%w: strategy scale requires at least one entry in resources", ErrInvalidConfig)
	}
	if strategy == enforcement.StrategyIngress && len(registry.Ingresses()) == 0 {
		return fmt.Errorf("%w: strategy ingress requires at least one entry in ingresses", ErrInvalidConfig)
	}
	return nil
}

// Catalog builds the protected resource registry.
func (c *Config) Catalog() (*catalog.Catalog, error) {
	return catalog.New(c.Resources, c.Ingresses)
}

// EnforcementStrategy returns the configured strategy. Only meaningful
// on a validated config.
func (c *Config) EnforcementStrategy() enforcement.Strategy {

	strategy, _ := enforcement.ParseStrategy(c.Strategy)
	return strategy
}

// SampleInterval is the wait between samples.
func (c *Config) SampleInterval() time.Duration {
	return time.Duration(*c.SampleIntervalMs) * time.Millisecond
}

// InitialDelay is the wait before the first sample.
func (c *Config) InitialDelay() time.Duration {
	return time.Duration(c.InitialDelayMs) * time.Millisecond
}

// WriteTimeout bounds each cluster write.
func (c *Config) WriteTimeout() time.Duration {
	return time.Duration(c.WriteTimeoutMs) * time.Millisecond
}

// ValidatorTimeout bounds each license validation.
func (c *Config) ValidatorTimeout() time.Duration {
	return time.Duration(c.Validator.TimeoutMs) * time.Millisecond
}
