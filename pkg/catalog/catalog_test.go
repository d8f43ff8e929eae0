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

package catalog

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {

	tests := []struct {
		in       string
		want     Kind
		resource string
	}{
		{"Deployment", Deployment, "deployments"},
		{"deployment", Deployment, "deployments"},
		{"statefulset", StatefulSet, "statefulsets"},
		{"STATEFULSET", StatefulSet, "statefulsets"},
		{"ReplicaSet", ReplicaSet, "replicasets"},
	}
	for _, tt := range tests {
		kind, err := ParseKind(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, kind)
		assert.Equal(t, tt.resource, kind.Resource())
	}
}

func TestParseKindRejectsUnknown(t *testing.T) {

	for _, name := range []string{"", "DaemonSet", "Pod", "deployments"} {
		_, err := ParseKind(name)
		assert.True(t, errors.Is(err, ErrUnknownKind), "kind %q", name)
	}
}

func TestKindUnmarshal(t *testing.T) {

	var r Resource
	err := json.Unmarshal([]byte(`{"kind":"statefulset","name":"cassandra","replicas":3}`), &r)
	require.NoError(t, err)
	assert.Equal(t, StatefulSet, r.Kind)

	err = json.Unmarshal([]byte(`{"kind":"cronjob","name":"backup","replicas":1}`), &r)
	assert.True(t, errors.Is(err, ErrUnknownKind))
}

func TestNewDefaultsNamespace(t *testing.T) {

	c, err := New(
		[]Resource{
			{Kind: Deployment, Name: "web", Replicas: 2},
			{Kind: StatefulSet, Name: "cassandra", Namespace: "cassandra", Replicas: 3},
		},
		[]IngressRoute{{
			Name:              "web",
			Host:              "app.example.com",
			Backend:           Backend{ServiceName: "web", ServicePort: 80},
			RestrictedBackend: Backend{ServiceName: "expired", ServicePort: 8080},
		}},
	)
	require.NoError(t, err)

	resources := c.Resources()
	require.Len(t, resources, 2)
	assert.Equal(t, DefaultNamespace, resources[0].Namespace)
	assert.Equal(t, "cassandra", resources[1].Namespace)
	assert.Equal(t, int32(0), resources[1].RestrictedReplicas)
	assert.Equal(t, DefaultNamespace, c.Ingresses()[0].Namespace)

	// The catalog hands out copies.
	resources[0].Replicas = 99
	assert.Equal(t, int32(2), c.Resources()[0].Replicas)
}

func TestNewRejectsBadEntries(t *testing.T) {

	good := Backend{ServiceName: "web", ServicePort: 80}
	tests := []struct {
		name      string
		resources []Resource
		ingresses []IngressRoute
		want      error
	}{
		{
			name:      "unknown kind",
			resources: []Resource{{Kind: "DaemonSet", Name: "agent"}},
			want:      ErrUnknownKind,
		},
		{
			name:      "missing name",
			resources: []Resource{{Kind: Deployment}},
			want:      ErrInvalidEntry,
		},
		{
			name:      "negative replicas",
			resources: []Resource{{Kind: Deployment, Name: "web", Replicas: -1}},
			want:      ErrInvalidEntry,
		},
		{
			name:      "negative restricted replicas",
			resources: []Resource{{Kind: Deployment, Name: "web", RestrictedReplicas: -2}},
			want:      ErrInvalidEntry,
		},
		{
			name: "duplicate",
			resources: []Resource{
				{Kind: Deployment, Name: "web"},
				{Kind: Deployment, Name: "web", Namespace: DefaultNamespace},
			},
			want: ErrInvalidEntry,
		},
		{
			name: "zero service port",
			ingresses: []IngressRoute{{
				Name:              "web",
				Host:              "app.example.com",
				Backend:           Backend{ServiceName: "web"},
				RestrictedBackend: good,
			}},
			want: ErrInvalidEntry,
		},
		{
			name: "missing host",
			ingresses: []IngressRoute{{
				Name:              "web",
				Backend:           good,
				RestrictedBackend: good,
			}},
			want: ErrInvalidEntry,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.resources, tt.ingresses)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestResourceReference(t *testing.T) {

	r := Resource{Kind: StatefulSet, Name: "cassandra", Namespace: "cassandra"}
	ref := r.Reference()
	assert.Equal(t, "StatefulSet", ref.Kind)
	assert.Equal(t, "apps/v1", ref.APIVersion)
	assert.Equal(t, "StatefulSet cassandra/cassandra", r.String())
}
