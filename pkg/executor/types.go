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

package executor

import (
	"context"
	"errors"

	"github.com/bluek8s/licensewatchdog/pkg/catalog"
)

// ClusterClient is the set of cluster writes the watchdog needs.
type ClusterClient interface {
	// SetReplicas sets the replica count of the named workload through
	// its scale subresource.
	SetReplicas(ctx context.Context, kind catalog.Kind, name string, namespace string, count int32) error

	// SetIngressRule replaces ALL rules of the named Ingress with a
	// single rule routing hostname to serviceName:servicePort. Any other
	// hosts or paths configured on the Ingress are lost.
	SetIngressRule(ctx context.Context, name string, namespace string, hostname string, serviceName string, servicePort int32) error
}

const (
	scaleSubresource = "scale"
	ingressResource  = "ingresses"
)

// ErrInvalidArgument is returned, without contacting the API server, for
// arguments that can never produce a valid patch.
var ErrInvalidArgument = errors.New("invalid argument")

// scalePatch is the merge patch body for a scale subresource. The
// autoscaling/v1 types omit a zero replica count, so they cannot be used
// to scale to zero.
type scalePatch struct {
	Spec scaleSpec `json:"spec"`
}

type scaleSpec struct {
	Replicas int32 `json:"replicas"`
}
