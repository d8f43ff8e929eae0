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
	"fmt"

	appsv1 "k8s.io/api/apps/v1"
	v1 "k8s.io/api/core/v1"
	extv1beta1 "k8s.io/api/extensions/v1beta1"
)

// New validates the given registry entries and builds a Catalog from
// them. Entries without a namespace are placed in the default namespace.
// The catalog keeps its own copies, so later changes to the input slices
// are not observed.
func New(
	resources []Resource,
	ingresses []IngressRoute,
) (*Catalog, error) {

	c := &Catalog{
		resources: make([]Resource, 0, len(resources)),
		ingresses: make([]IngressRoute, 0, len(ingresses)),
	}

	seen := make(map[string]bool)
	for i, r := range resources {
		if r.Namespace == "" {
			r.Namespace = DefaultNamespace
		}
		if err := r.validate(); err != nil {
			return nil, fmt.Errorf("resources[%d]: %w", i, err)
		}
		if seen[r.String()] {
			return nil, fmt.Errorf("resources[%d]: %w: duplicate entry for %s", i, ErrInvalidEntry, r)
		}
		seen[r.String()] = true
		c.resources = append(c.resources, r)
	}

	for i, in := range ingresses {
		if in.Namespace == "" {
			in.Namespace = DefaultNamespace
		}
		if err := in.validate(); err != nil {
			return nil, fmt.Errorf("ingresses[%d]: %w", i, err)
		}
		if seen[in.String()] {
			return nil, fmt.Errorf("ingresses[%d]: %w: duplicate entry for %s", i, ErrInvalidEntry, in)
		}
		seen[in.String()] = true
		c.ingresses = append(c.ingresses, in)
	}

	return c, nil
}

// Resources returns a copy of the protected workloads, in registry order.
func (c *Catalog) Resources() []Resource {

	result := make([]Resource, len(c.resources))
	copy(result, c.resources)
	return result
}

// Ingresses returns a copy of the protected ingress routes, in registry
// order.
func (c *Catalog) Ingresses() []IngressRoute {

	result := make([]IngressRoute, len(c.ingresses))
	copy(result, c.ingresses)
	return result
}

func (r Resource) validate() error {

	if !r.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownKind, string(r.Kind))
	}
	if r.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidEntry)
	}
	if r.Replicas < 0 {
		return fmt.Errorf("%w: replicas for %s must not be negative", ErrInvalidEntry, r)
	}
	if r.RestrictedReplicas < 0 {
		return fmt.Errorf("%w: restrictedReplicas for %s must not be negative", ErrInvalidEntry, r)
	}
	return nil
}

// String identifies the resource as Kind namespace/name.
func (r Resource) String() string {
	return string(r.Kind) + " " + r.Namespace + "/" + r.Name
}

// Reference returns an object reference suitable for posting events
// about the resource.
func (r Resource) Reference() *v1.ObjectReference {

	return &v1.ObjectReference{
		Kind:       string(r.Kind),
		APIVersion: appsv1.SchemeGroupVersion.String(),
		Namespace:  r.Namespace,
		Name:       r.Name,
	}
}

func (in IngressRoute) validate() error {

	if in.Name == "" {
		return fmt.Errorf("%w: ingress name is required", ErrInvalidEntry)
	}
	if in.Host == "" {
		return fmt.Errorf("%w: host is required for ingress %s", ErrInvalidEntry, in)
	}
	for _, b := range []Backend{in.Backend, in.RestrictedBackend} {
		if b.ServiceName == "" {
			return fmt.Errorf("%w: serviceName is required for ingress %s", ErrInvalidEntry, in)
		}
		if b.ServicePort <= 0 {
			return fmt.Errorf("%w: servicePort for ingress %s must be a positive integer", ErrInvalidEntry, in)
		}
	}
	return nil
}

// String identifies the route as Ingress namespace/name.
func (in IngressRoute) String() string {
	return "Ingress " + in.Namespace + "/" + in.Name
}

// Reference returns an object reference suitable for posting events
// about the ingress.
func (in IngressRoute) Reference() *v1.ObjectReference {

	return &v1.ObjectReference{
		Kind:       "Ingress",
		APIVersion: extv1beta1.SchemeGroupVersion.String(),
		Namespace:  in.Namespace,
		Name:       in.Name,
	}
}
