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

package validator

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-logr/logr"
	utilnet "k8s.io/apimachinery/pkg/util/net"
)

// HTTPConfig locates the license endpoint probed by HTTPValidator.
type HTTPConfig struct {
	Host string
	// Port defaults to DefaultPort when zero.
	Port int
	// Path must be empty or start with "/".
	Path string
	// Secure selects https instead of http.
	Secure bool
	// Timeout bounds one probe, DefaultTimeout when zero.
	Timeout time.Duration
}

// HTTPValidator reports Valid when a GET of the configured endpoint
// answers with status 200.
type HTTPValidator struct {
	log    logr.Logger
	url    string
	client *http.Client
}

// blank assignment to verify that HTTPValidator implements Validator.
var _ Validator = &HTTPValidator{}

// NewHTTPValidator checks the endpoint settings and builds a validator
// for them.
func NewHTTPValidator(
	log logr.Logger,
	config HTTPConfig,
) (*HTTPValidator, error) {

	endpoint, err := config.endpoint()
	if err != nil {
		return nil, err
	}

	timeout := config.Timeout
	if timeout < 0 {
		return nil, fmt.Errorf("%w: timeout must not be negative", ErrInvalidConfig)
	}
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	return &HTTPValidator{
		log: log.WithValues("url", endpoint),
		url: endpoint,
		client: &http.Client{
			Transport: utilnet.SetTransportDefaults(&http.Transport{}),
			Timeout:   timeout,
		},
	}, nil
}

// URL returns the probed endpoint.
func (v *HTTPValidator) URL() string {
	return v.url
}

// Validate probes the endpoint once.
func (v *HTTPValidator) Validate(
	ctx context.Context,
) Outcome {

	req, err := http.NewRequest(http.MethodGet, v.url, nil)
	if err != nil {
		v.log.Error(err, "failed to build license request")
		return Invalid
	}

	resp, err := v.client.Do(req.WithContext(ctx))
	if err != nil {
		v.log.Error(err, "license endpoint unreachable")
		return Invalid
	}
	defer resp.Body.Close()
	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)

	v.log.V(1).Info("license endpoint responded", "status", resp.StatusCode)
	if resp.StatusCode != http.StatusOK {
		return Invalid
	}
	return Valid
}

// endpoint validates the config and renders the probe URL.
func (c HTTPConfig) endpoint() (string, error) {

	if strings.TrimSpace(c.Host) == "" {
		return "", fmt.Errorf("%w: host must be at least one character", ErrInvalidConfig)
	}
	if strings.ContainsAny(c.Host, "/?#@ ") {
		return "", fmt.Errorf("%w: host %q must be a bare hostname", ErrInvalidConfig, c.Host)
	}

	port := c.Port
	if port == 0 {
		port = DefaultPort
	}
	if port < 1 || port > 65535 {
		return "", fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, c.Port)
	}

	if c.Path != "" && !strings.HasPrefix(c.Path, "/") {
		return "", fmt.Errorf("%w: path %q must start with \"/\"", ErrInvalidConfig, c.Path)
	}

	scheme := "http"
	if c.Secure {
		scheme = "https"
	}

	endpoint := scheme + "://" + net.JoinHostPort(c.Host, strconv.Itoa(port)) + c.Path
	if _, err := url.Parse(endpoint); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return endpoint, nil
}
