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
	"context"
	"fmt"
	"time"

	"github.com/bluek8s/licensewatchdog/pkg/catalog"
	"github.com/bluek8s/licensewatchdog/pkg/executor"
	"github.com/bluek8s/licensewatchdog/pkg/validator"
	"github.com/go-logr/logr"
	"k8s.io/client-go/tools/record"
)

// IngressEnforcer restricts access by routing each protected host to its
// restricted backend, and back to its normal backend once the license is
// valid. Each write replaces every rule on the Ingress.
type IngressEnforcer struct {
	runner
	client executor.ClusterClient
	routes []catalog.IngressRoute
}

// blank assignment to verify that IngressEnforcer implements Enforcer.
var _ Enforcer = &IngressEnforcer{}

// NewIngressEnforcer creates an enforcer for the given routes.
func NewIngressEnforcer(
	log logr.Logger,
	recorder record.EventRecorder,
	client executor.ClusterClient,
	routes []catalog.IngressRoute,
	writeTimeout time.Duration,
) *IngressEnforcer {

	return &IngressEnforcer{
		runner: newRunner(log.WithValues("strategy", string(StrategyIngress)), recorder, writeTimeout),
		client: client,
		routes: append([]catalog.IngressRoute(nil), routes...),
	}
}

// Strategy returns StrategyIngress.
func (e *IngressEnforcer) Strategy() Strategy {
	return StrategyIngress
}

// Apply enforces outcome on every registered route.
func (e *IngressEnforcer) Apply(
	ctx context.Context,
	outcome validator.Outcome,
) Result {

	return e.run(ctx, e.Plan(outcome, e.routes))
}

// Plan builds the action enforcing outcome on routes. Unknown yields an
// empty action.
func (e *IngressEnforcer) Plan(
	outcome validator.Outcome,
	routes []catalog.IngressRoute,
) Action {

	action := Action{Outcome: outcome}
	if outcome != validator.Valid && outcome != validator.Invalid {
		return action
	}

	for _, route := range routes {
		route := route
		backend := route.Backend
		if outcome == validator.Invalid {
			backend = route.RestrictedBackend
		}
		action.Steps = append(action.Steps, Step{
			Target:    route.String(),
			Reference: route.Reference(),
			Detail:    fmt.Sprintf("%s -> %s:%d", route.Host, backend.ServiceName, backend.ServicePort),
			write: func(ctx context.Context) error {
				return e.client.SetIngressRule(
					ctx,
					route.Name,
					route.Namespace,
					route.Host,
					backend.ServiceName,
					backend.ServicePort,
				)
			},
		})
	}
	return action
}
