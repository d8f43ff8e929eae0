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
	"testing"
	"time"

	"github.com/bluek8s/licensewatchdog/pkg/catalog"
	"github.com/bluek8s/licensewatchdog/pkg/enforcement"
	"github.com/bluek8s/licensewatchdog/pkg/validator"
	logtesting "github.com/go-logr/logr/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	autoscalingv1 "k8s.io/api/autoscaling/v1"
	extv1beta1 "k8s.io/api/extensions/v1beta1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/tools/record"
)

type fakeObserver struct {
	scales    map[string]int32
	ingresses map[string][]string
}

func (o *fakeObserver) GetScale(
	ctx context.Context,
	resource catalog.Resource,
) (*autoscalingv1.Scale, error) {

	replicas, ok := o.scales[resource.String()]
	if !ok {
		return nil, apierrors.NewNotFound(
			schema.GroupResource{Group: "apps", Resource: resource.Kind.Resource()},
			resource.Name,
		)
	}
	scale := &autoscalingv1.Scale{}
	scale.Spec.Replicas = replicas
	return scale, nil
}

func (o *fakeObserver) GetIngress(
	ctx context.Context,
	route catalog.IngressRoute,
) (*extv1beta1.Ingress, error) {

	hosts, ok := o.ingresses[route.String()]
	if !ok {
		return nil, apierrors.NewNotFound(
			schema.GroupResource{Group: "extensions", Resource: "ingresses"},
			route.Name,
		)
	}
	ingress := &extv1beta1.Ingress{}
	for _, host := range hosts {
		ingress.Spec.Rules = append(ingress.Spec.Rules, extv1beta1.IngressRule{Host: host})
	}
	return ingress, nil
}

func preflightCatalog(t *testing.T) *catalog.Catalog {

	registry, err := catalog.New(
		[]catalog.Resource{
			{Kind: catalog.Deployment, Name: "web", Namespace: "shop", Replicas: 2},
			{Kind: catalog.StatefulSet, Name: "cassandra", Namespace: "cassandra", Replicas: 3},
		},
		[]catalog.IngressRoute{
			{
				Name:              "web",
				Namespace:         "shop",
				Host:              "app.example.com",
				Backend:           catalog.Backend{ServiceName: "web", ServicePort: 80},
				RestrictedBackend: catalog.Backend{ServiceName: "license-expired", ServicePort: 80},
			},
		},
	)
	require.NoError(t, err)
	return registry
}

func TestPreflightReportsMissingTargets(t *testing.T) {

	observer := &fakeObserver{
		scales: map[string]int32{"Deployment shop/web": 2},
	}
	recorder := record.NewFakeRecorder(10)
	preflight := NewPreflight(
		logtesting.NullLogger{},
		recorder,
		observer,
		preflightCatalog(t),
		enforcement.StrategyScale,
		time.Second,
	)

	checked := 0
	missing := preflight.Run(context.Background(), validatorFunc(func(context.Context) validator.Outcome {
		checked++
		return valid
	}))

	assert.Equal(t, 1, missing)
	assert.Equal(t, 1, checked)
	require.Len(t, recorder.Events, 1)
	event := <-recorder.Events
	assert.Contains(t, event, "Warning TargetMissing cannot read StatefulSet cassandra/cassandra")
}

func TestPreflightIngressTargets(t *testing.T) {

	observer := &fakeObserver{
		ingresses: map[string][]string{"Ingress shop/web": {"app.example.com"}},
	}
	recorder := record.NewFakeRecorder(10)
	preflight := NewPreflight(
		logtesting.NullLogger{},
		recorder,
		observer,
		preflightCatalog(t),
		enforcement.StrategyIngress,
		time.Second,
	)

	assert.Equal(t, 0, preflight.Run(context.Background(), nil))
	assert.Len(t, recorder.Events, 0)
}

func TestPreflightRunsBeforeLoop(t *testing.T) {

	observer := &fakeObserver{}
	recorder := record.NewFakeRecorder(10)
	enforcer := &recordingEnforcer{}
	preflight := NewPreflight(
		logtesting.NullLogger{},
		recorder,
		observer,
		preflightCatalog(t),
		enforcement.StrategyIngress,
		time.Second,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	// The preflight validation is the first call; the loop's single
	// sample is the second and stops the run.
	v := &scriptedValidator{outcomes: []validator.Outcome{valid, valid}, done: cancel}
	w, err := New(Options{
		Log:       logtesting.NullLogger{},
		Validator: v,
		Enforcer:  enforcer,
		Preflight: preflight,
	})
	require.NoError(t, err)
	require.NoError(t, w.Run(ctx))

	assert.Equal(t, []validator.Outcome{valid}, enforcer.outcomes())
	assert.Equal(t, uint64(1), w.State().Samples)
	assert.Len(t, recorder.Events, 1)
}

// blockingObserver answers nothing until the read's context ends.
type blockingObserver struct{}

func (blockingObserver) GetScale(
	ctx context.Context,
	resource catalog.Resource,
) (*autoscalingv1.Scale, error) {

	<-ctx.Done()
	return nil, ctx.Err()
}

func (blockingObserver) GetIngress(
	ctx context.Context,
	route catalog.IngressRoute,
) (*extv1beta1.Ingress, error) {

	<-ctx.Done()
	return nil, ctx.Err()
}

func TestPreflightHungReadDoesNotBlockLoop(t *testing.T) {

	preflight := NewPreflight(
		logtesting.NullLogger{},
		nil,
		blockingObserver{},
		preflightCatalog(t),
		enforcement.StrategyScale,
		20*time.Millisecond,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	enforcer := &recordingEnforcer{}
	v := &scriptedValidator{outcomes: []validator.Outcome{invalid, invalid}, done: cancel}
	w, err := New(Options{
		Log:       logtesting.NullLogger{},
		Validator: v,
		Enforcer:  enforcer,
		Preflight: preflight,
	})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("loop did not start while preflight reads hung")
	}
	assert.Equal(t, []validator.Outcome{invalid}, enforcer.outcomes())
	assert.Equal(t, uint64(1), w.State().Samples)
}

func TestPreflightDefaultReadTimeout(t *testing.T) {

	preflight := NewPreflight(
		logtesting.NullLogger{},
		nil,
		&fakeObserver{},
		preflightCatalog(t),
		enforcement.StrategyScale,
		0,
	)
	assert.Equal(t, DefaultReadTimeout, preflight.timeout)
}
