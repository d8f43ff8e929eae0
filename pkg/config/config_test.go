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
	"io/ioutil"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/bluek8s/licensewatchdog/pkg/catalog"
	"github.com/bluek8s/licensewatchdog/pkg/enforcement"
	"github.com/bluek8s/licensewatchdog/pkg/shared"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
sampleIntervalMs: 5000
initialDelayMs: 250
writeTimeoutMs: 3000
validator:
  host: license.example.com
  port: 8443
  path: /v1/check
  secure: true
  timeoutMs: 2000
resources:
  - kind: Deployment
    name: web
    namespace: shop
    replicas: 3
  - kind: statefulset
    name: cassandra
    namespace: cassandra
    replicas: 3
ingresses:
  - name: web
    host: app.example.com
    backend:
      serviceName: web
      servicePort: 80
    restrictedBackend:
      serviceName: license-expired
      servicePort: 8080
`

func writeConfig(
	t *testing.T,
	content string,
) string {

	dir, err := ioutil.TempDir("", "watchdog-config")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	path := filepath.Join(dir, "watchdog.yaml")
	require.NoError(t, ioutil.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {

	config, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, config.SampleInterval())
	assert.Equal(t, 250*time.Millisecond, config.InitialDelay())
	assert.Equal(t, 3*time.Second, config.WriteTimeout())
	assert.Equal(t, 2*time.Second, config.ValidatorTimeout())
	assert.Equal(t, enforcement.StrategyScale, config.EnforcementStrategy())
	assert.False(t, config.ReassertValid)
	assert.Equal(t, ValidatorTypeHTTP, config.Validator.Type)
	assert.Equal(t, 8443, config.Validator.Port)

	registry, err := config.Catalog()
	require.NoError(t, err)
	resources := registry.Resources()
	require.Len(t, resources, 2)
	assert.Equal(t, catalog.StatefulSet, resources[1].Kind)
	assert.Equal(t, int32(0), resources[1].RestrictedReplicas)
	ingresses := registry.Ingresses()
	require.Len(t, ingresses, 1)
	assert.Equal(t, catalog.DefaultNamespace, ingresses[0].Namespace)
	assert.Equal(t, "license-expired", ingresses[0].RestrictedBackend.ServiceName)
}

func TestParseDefaults(t *testing.T) {

	config, err := Parse([]byte(`
validator:
  host: license.example.com
resources:
  - kind: Deployment
    name: web
    replicas: 1
`))
	require.NoError(t, err)
	assert.Equal(t, time.Duration(DefaultSampleIntervalMs)*time.Millisecond, config.SampleInterval())
	assert.Equal(t, time.Duration(0), config.InitialDelay())
	assert.Equal(t, enforcement.StrategyScale, config.EnforcementStrategy())
}

func TestParseZeroSampleInterval(t *testing.T) {

	config, err := Parse([]byte(`
sampleIntervalMs: 0
validator:
  host: license.example.com
resources:
  - kind: Deployment
    name: web
    replicas: 1
`))
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), config.SampleInterval())
}

func TestParseRejects(t *testing.T) {

	base := `
validator:
  host: license.example.com
resources:
  - kind: Deployment
    name: web
    replicas: 1
`
	cases := []struct {
		name    string
		content string
	}{
		{"fractional interval", "sampleIntervalMs: 1.5" + base},
		{"textual interval", "sampleIntervalMs: abc" + base},
		{"negative interval", "sampleIntervalMs: -1" + base},
		{"negative delay", "initialDelayMs: -5" + base},
		{"unknown field", "sampleIntervalSecs: 5" + base},
		{"unknown strategy", "strategy: delete" + base},
		{"unknown kind", `
validator:
  host: license.example.com
resources:
  - kind: DaemonSet
    name: agent
    replicas: 1
`},
		{"missing host", `
resources:
  - kind: Deployment
    name: web
    replicas: 1
`},
		{"secret without key", `
validator:
  type: secret
  secret:
    name: license
resources:
  - kind: Deployment
    name: web
    replicas: 1
`},
		{"unknown validator", `
validator:
  type: dns
resources:
  - kind: Deployment
    name: web
    replicas: 1
`},
		{"scale without resources", `
validator:
  host: license.example.com
`},
		{"ingress without ingresses", "strategy: ingress" + base},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Parse([]byte(c.content))
			assert.True(t, errors.Is(err, ErrInvalidConfig), "%v", err)
		})
	}
}

func TestParseSecretValidatorDefaultsNamespace(t *testing.T) {

	config, err := Parse([]byte(`
validator:
  type: secret
  secret:
    name: license
    key: token
resources:
  - kind: ReplicaSet
    name: worker
    replicas: 2
`))
	require.NoError(t, err)
	require.NotNil(t, config.Validator.Secret)
	assert.Equal(t, catalog.DefaultNamespace, config.Validator.Secret.Namespace)
}

func TestParseSampleInterval(t *testing.T) {

	good := map[string]time.Duration{
		"0":     0,
		"1000":  time.Second,
		" 250 ": 250 * time.Millisecond,
	}
	for input, want := range good {
		got, err := ParseSampleInterval(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	for _, input := range []string{"1.5", "abc", "-1", "", "1e3", "5s"} {
		_, err := ParseSampleInterval(input)
		assert.True(t, errors.Is(err, ErrInvalidConfig), input)
	}
}

func TestLoadMissingFile(t *testing.T) {

	_, err := Load(filepath.Join(os.TempDir(), "no-such-watchdog-config.yaml"))
	assert.True(t, errors.Is(err, ErrInvalidConfig), "%v", err)
}

func TestFlagsOverride(t *testing.T) {

	path := writeConfig(t, sampleConfig)

	flags := &Flags{}
	fs := pflag.NewFlagSet("watchdog", pflag.ContinueOnError)
	flags.AddFlags(fs)
	require.NoError(t, fs.Parse([]string{
		"--config", path,
		"--sample-interval-ms", "200",
		"--strategy", "Ingress",
	}))

	config, err := flags.Load()
	require.NoError(t, err)
	assert.Equal(t, 200*time.Millisecond, config.SampleInterval())
	assert.Equal(t, enforcement.StrategyIngress, config.EnforcementStrategy())
}

func TestFlagsRejectFractionalOverride(t *testing.T) {

	flags := &Flags{
		ConfigPath:       writeConfig(t, sampleConfig),
		SampleIntervalMs: "1.5",
	}
	_, err := flags.Load()
	assert.True(t, errors.Is(err, ErrInvalidConfig), "%v", err)
}

func TestFlagsUseEnvironment(t *testing.T) {

	path := writeConfig(t, sampleConfig)
	old, had := os.LookupEnv(shared.ConfigPathEnvVar)
	require.NoError(t, os.Setenv(shared.ConfigPathEnvVar, path))
	defer func() {
		if had {
			os.Setenv(shared.ConfigPathEnvVar, old)
		} else {
			os.Unsetenv(shared.ConfigPathEnvVar)
		}
	}()

	config, err := (&Flags{}).Load()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, config.SampleInterval())
}

func TestFlagsRequireConfigPath(t *testing.T) {

	old, had := os.LookupEnv(shared.ConfigPathEnvVar)
	os.Unsetenv(shared.ConfigPathEnvVar)
	if had {
		defer os.Setenv(shared.ConfigPathEnvVar, old)
	}

	_, err := (&Flags{}).Load()
	assert.True(t, errors.Is(err, ErrInvalidConfig), "%v", err)
}

func TestFlagsStrategyOverrideAppliesBeforeValidation(t *testing.T) {

	// No strategy in the file, so it defaults to scale, which has no
	// resources. The override must be applied before that is checked.
	path := writeConfig(t, `
validator:
  host: license.example.com
ingresses:
  - name: web
    host: app.example.com
    backend:
      serviceName: web
      servicePort: 80
    restrictedBackend:
      serviceName: license-expired
      servicePort: 8080
`)

	_, err := Load(path)
	assert.True(t, errors.Is(err, ErrInvalidConfig), "%v", err)

	config, err := (&Flags{ConfigPath: path, Strategy: "ingress"}).Load()
	require.NoError(t, err)
	assert.Equal(t, enforcement.StrategyIngress, config.EnforcementStrategy())
}

func TestDurationOverflowRejected(t *testing.T) {

	_, err := ParseSampleInterval(strconv.FormatInt(MaxMilliseconds, 10))
	assert.NoError(t, err)

	tooLarge := strconv.FormatInt(MaxMilliseconds+1, 10)
	_, err = ParseSampleInterval(tooLarge)
	assert.True(t, errors.Is(err, ErrInvalidConfig), "%v", err)

	base := `
validator:
  host: license.example.com
resources:
  - kind: Deployment
    name: web
    replicas: 1
`
	for _, field := range []string{"sampleIntervalMs", "initialDelayMs", "writeTimeoutMs"} {
		_, err := Parse([]byte(field + ": " + tooLarge + base))
		assert.True(t, errors.Is(err, ErrInvalidConfig), "%s: %v", field, err)
	}
	_, err = Parse([]byte(`
validator:
  host: license.example.com
  timeoutMs: ` + tooLarge + `
resources:
  - kind: Deployment
    name: web
    replicas: 1
`))
	assert.True(t, errors.Is(err, ErrInvalidConfig), "%v", err)
}
