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

package enforcement

import (
	"fmt"
	"strings"
	"time"

	"github.com/bluek8s/licensewatchdog/pkg/catalog"
	"github.com/bluek8s/licensewatchdog/pkg/executor"
	"github.com/go-logr/logr"
	"k8s.io/client-go/tools/record"
)

// Options carries the collaborators shared by every strategy.
type Options struct {
	Log          logr.Logger
	Recorder     record.EventRecorder
	Client       executor.ClusterClient
	Catalog      *catalog.Catalog
	WriteTimeout time.Duration
}

// ParseStrategy converts a configured strategy name into a Strategy.
func ParseStrategy(
	name string,
) (Strategy, error) {

	switch Strategy(strings.ToLower(strings.TrimSpace(name))) {
	case StrategyScale:
		return StrategyScale, nil
	case StrategyIngress:
		return StrategyIngress, nil
	}
	return "", fmt.Errorf("%w: %q (must be scale or ingress)", ErrUnknownStrategy, name)
}

// New creates the enforcer for the selected strategy. Only the registry
// entries belonging to that strategy are used; the strategy must have at
// least one.
func New(
	strategy Strategy,
	opts Options,
) (Enforcer, error) {

	switch strategy {
	case StrategyScale:
		resources := opts.Catalog.Resources()
		if len(resources) == 0 {
			return nil, fmt.Errorf("%w: scale", ErrNoTargets)
		}
		return NewScaleEnforcer(opts.Log, opts.Recorder, opts.Client, resources, opts.WriteTimeout), nil
	case StrategyIngress:
		routes := opts.Catalog.Ingresses()
		if len(routes) == 0 {
			return nil, fmt.Errorf("%w: ingress", ErrNoTargets)
		}
		return NewIngressEnforcer(opts.Log, opts.Recorder, opts.Client, routes, opts.WriteTimeout), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, string(strategy))
}
