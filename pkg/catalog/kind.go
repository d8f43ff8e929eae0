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
	"fmt"
	"strings"
)

// kindResources maps each supported kind to its plural resource name in
// the apps/v1 API group. All three support the scale subresource.
var kindResources = map[Kind]string{
	Deployment:  "deployments",
	StatefulSet: "statefulsets",
	ReplicaSet:  "replicasets",
}

// ParseKind converts a user supplied kind name into a Kind. Matching is
// case-insensitive, so "statefulset" and "StatefulSet" are equivalent.
func ParseKind(
	name string,
) (Kind, error) {

	for kind := range kindResources {
		if strings.EqualFold(name, string(kind)) {
			return kind, nil
		}
	}
	return "", fmt.Errorf("%w: %q (must be one of Deployment, StatefulSet, ReplicaSet)", ErrUnknownKind, name)
}

// Resource returns the plural apps/v1 resource name for the kind. It
// panics for a kind that did not come from ParseKind or the constants.
func (k Kind) Resource() string {

	resource, ok := kindResources[k]
	if !ok {
		panic(fmt.Sprintf("no resource mapping for kind %q", string(k)))
	}
	return resource
}

// Valid reports whether the kind is one of the supported workload kinds.
func (k Kind) Valid() bool {

	_, ok := kindResources[k]
	return ok
}

// UnmarshalJSON parses and normalizes a kind, rejecting unknown kinds so
// that a bad registry fails at load time.
func (k *Kind) UnmarshalJSON(
	data []byte,
) error {

	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	kind, err := ParseKind(name)
	if err != nil {
		return err
	}
	*k = kind
	return nil
}
