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

package watchdog

import (
	"context"
	"time"

	"github.com/bluek8s/licensewatchdog/pkg/catalog"
	"github.com/bluek8s/licensewatchdog/pkg/enforcement"
	"github.com/bluek8s/licensewatchdog/pkg/shared"
	"github.com/bluek8s/licensewatchdog/pkg/validator"
	"github.com/go-logr/logr"
	autoscalingv1 "k8s.io/api/autoscaling/v1"
	v1 "k8s.io/api/core/v1"
	extv1beta1 "k8s.io/api/extensions/v1beta1"
	"k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/client-go/tools/record"
)

// TargetObserver reads the current state of protected objects.
// observer.Observer implements it.
type TargetObserver interface {
	GetScale(ctx context.Context, resource catalog.Resource) (*autoscalingv1.Scale, error)
	GetIngress(ctx context.Context, route catalog.IngressRoute) (*extv1beta1.Ingress, error)
}

// Preflight reports the starting state of the targets the selected
// strategy will act on, then samples the license once. It only logs;
// nothing it finds prevents the loop from starting.
type Preflight struct {
	log      logr.Logger
	recorder record.EventRecorder
	observer TargetObserver
	catalog  *catalog.Catalog
	strategy enforcement.Strategy
	timeout  time.Duration
}

// DefaultReadTimeout bounds each preflight read when no timeout is given.
const DefaultReadTimeout = 10 * time.Second

// NewPreflight creates a Preflight for the given strategy's targets.
// Each read is bounded by timeout, DefaultReadTimeout when not positive.
func NewPreflight(
	log logr.Logger,
	recorder record.EventRecorder,
	observer TargetObserver,
	registry *catalog.Catalog,
	strategy enforcement.Strategy,
	timeout time.Duration,
) *Preflight {

	if timeout <= 0 {
		timeout = DefaultReadTimeout
	}
	return &Preflight{
		log:      log.WithName("preflight"),
		recorder: recorder,
		observer: observer,
		catalog:  registry,
		strategy: strategy,
		timeout:  timeout,
	}
}

// Run observes every target and runs v once. It returns the number of
// targets that could not be read.
func (p *Preflight) Run(
	ctx context.Context,
	v validator.Validator,
) int {

	missing := 0
	switch p.strategy {
	case enforcement.StrategyScale:
		for _, resource := range p.catalog.Resources() {
			if !p.checkResource(ctx, resource) {
				missing++
			}
		}
	case enforcement.StrategyIngress:
		for _, route := range p.catalog.Ingresses() {
			if !p.checkIngress(ctx, route) {
				missing++
			}
		}
	}

	if v != nil {
		p.log.Info("initial license check", "outcome", v.Validate(ctx))
	}
	return missing
}

func (p *Preflight) checkResource(
	ctx context.Context,
	resource catalog.Resource,
) bool {

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	scale, err := p.observer.GetScale(ctx, resource)
	if err != nil {
		p.targetError(err, resource.Reference(), resource.String())
		return false
	}
	p.log.Info(
		"target found",
		"target", resource.String(),
		"replicas", scale.Spec.Replicas,
		"validReplicas", resource.Replicas,
		"restrictedReplicas", resource.RestrictedReplicas,
	)
	return true
}

func (p *Preflight) checkIngress(
	ctx context.Context,
	route catalog.IngressRoute,
) bool {

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	ingress, err := p.observer.GetIngress(ctx, route)
	if err != nil {
		p.targetError(err, route.Reference(), route.String())
		return false
	}
	hosts := make([]string, 0, len(ingress.Spec.Rules))
	for _, rule := range ingress.Spec.Rules {
		hosts = append(hosts, rule.Host)
	}
	p.log.Info(
		"target found",
		"target", route.String(),
		"hosts", hosts,
		"routedHost", route.Host,
	)
	if !shared.StringInList(route.Host, hosts) {
		p.log.Info(
			"routed host has no rule yet; the first enforcement replaces the rules",
			"target", route.String(),
			"routedHost", route.Host,
		)
	}
	return true
}

func (p *Preflight) targetError(
	err error,
	ref *v1.ObjectReference,
	target string,
) {

	reason := shared.EventReasonNoEvent
	if errors.IsNotFound(err) {
		reason = shared.EventReasonTargetMissing
	}
	shared.LogErrorf(
		p.log,
		p.recorder,
		err,
		ref,
		reason,
		"cannot read %s",
		target,
	)
}
