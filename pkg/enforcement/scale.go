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

// ScaleEnforcer restricts access by scaling protected workloads to their
// restricted replica count, and restores their normal count once the
// license is valid.
type ScaleEnforcer struct {
	runner
	client    executor.ClusterClient
	resources []catalog.Resource
}

// blank assignment to verify that ScaleEnforcer implements Enforcer.
var _ Enforcer = &ScaleEnforcer{}

// NewScaleEnforcer creates an enforcer for the given workloads.
func NewScaleEnforcer(
	log logr.Logger,
	recorder record.EventRecorder,
	client executor.ClusterClient,
	resources []catalog.Resource,
	writeTimeout time.Duration,
) *ScaleEnforcer {

	return &ScaleEnforcer{
		runner:    newRunner(log.WithValues("strategy", string(StrategyScale)), recorder, writeTimeout),
		client:    client,
		resources: append([]catalog.Resource(nil), resources...),
	}
}

// Strategy returns StrategyScale.
func (e *ScaleEnforcer) Strategy() Strategy {
	return StrategyScale
}

// Apply enforces outcome on every registered workload.
func (e *ScaleEnforcer) Apply(
	ctx context.Context,
	outcome validator.Outcome,
) Result {

	return e.ApplyTo(ctx, outcome, e.resources)
}

// ApplyTo enforces outcome on the given workloads.
func (e *ScaleEnforcer) ApplyTo(
	ctx context.Context,
	outcome validator.Outcome,
	resources []catalog.Resource,
) Result {

	return e.run(ctx, e.Plan(outcome, resources))
}

// Plan builds the action enforcing outcome on resources. Unknown yields
// an empty action.
func (e *ScaleEnforcer) Plan(
	outcome validator.Outcome,
	resources []catalog.Resource,
) Action {

	action := Action{Outcome: outcome}
	if outcome != validator.Valid && outcome != validator.Invalid {
		return action
	}

	for _, r := range resources {
		r := r
		replicas := r.Replicas
		if outcome == validator.Invalid {
			replicas = r.RestrictedReplicas
		}
		action.Steps = append(action.Steps, Step{
			Target:    r.String(),
			Reference: r.Reference(),
			Detail:    fmt.Sprintf("replicas=%d", replicas),
			write: func(ctx context.Context) error {
				return e.client.SetReplicas(ctx, r.Kind, r.Name, r.Namespace, replicas)
			},
		})
	}
	return action
}
