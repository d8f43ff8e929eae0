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
	"errors"
)

// Kind identifies the workload kind of a protected resource. Only the
// kinds listed in kindResources are valid.
type Kind string

const (
	// Deployment is an apps/v1 Deployment.
	Deployment Kind = "Deployment"
	// StatefulSet is an apps/v1 StatefulSet.
	StatefulSet Kind = "StatefulSet"
	// ReplicaSet is an apps/v1 ReplicaSet.
	ReplicaSet Kind = "ReplicaSet"
)

const (
	// DefaultNamespace is used for any registry entry that does not name
	// a namespace.
	DefaultNamespace = "default"
)

var (
	// ErrUnknownKind is returned when a registry entry names a workload
	// kind other than Deployment, StatefulSet or ReplicaSet.
	ErrUnknownKind = errors.New("unknown resource kind")

	// ErrInvalidEntry is returned for a registry entry that is missing
	// required properties or carries out-of-range values.
	ErrInvalidEntry = errors.New("invalid registry entry")
)

// Resource describes one workload whose scale is under watchdog control.
type Resource struct {
	Kind      Kind   `json:"kind"`
	Name      string `json:"name"`
	Namespace string `json:"namespace,omitempty"`

	// Replicas is the count restored while the license is valid.
	Replicas int32 `json:"replicas"`

	// RestrictedReplicas is the count applied while the license is
	// invalid.
	RestrictedReplicas int32 `json:"restrictedReplicas,omitempty"`
}

// Backend is the service an ingress rule routes to.
type Backend struct {
	ServiceName string `json:"serviceName"`
	ServicePort int32  `json:"servicePort"`
}

// IngressRoute describes one ingress host rule under watchdog control.
// While the license is valid the host routes to Backend, otherwise to
// RestrictedBackend.
type IngressRoute struct {
	Name              string  `json:"name"`
	Namespace         string  `json:"namespace,omitempty"`
	Host              string  `json:"host"`
	Backend           Backend `json:"backend"`
	RestrictedBackend Backend `json:"restrictedBackend"`
}

// Catalog is the validated registry of everything the watchdog protects.
// It is built once at startup and handed out by value afterwards.
type Catalog struct {
	resources []Resource
	ingresses []IngressRoute
}
