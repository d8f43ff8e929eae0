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
	"encoding/json"
	"fmt"

	"github.com/bluek8s/licensewatchdog/pkg/catalog"
	"k8s.io/apimachinery/pkg/types"
)

// SetReplicas patches the scale subresource of the given workload to
// count replicas. An empty namespace means the default namespace.
func (e *Executor) SetReplicas(
	ctx context.Context,
	kind catalog.Kind,
	name string,
	namespace string,
	count int32,
) error {

	if !kind.Valid() {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, catalog.ErrUnknownKind)
	}
	if name == "" {
		return fmt.Errorf("%w: name must not be empty", ErrInvalidArgument)
	}
	if count < 0 {
		return fmt.Errorf("%w: replica count %d is negative", ErrInvalidArgument, count)
	}
	if namespace == "" {
		namespace = catalog.DefaultNamespace
	}

	body, err := json.Marshal(scalePatch{Spec: scaleSpec{Replicas: count}})
	if err != nil {
		return err
	}

	e.log.V(1).Info(
		"patching scale",
		"kind", string(kind),
		"namespace", namespace,
		"name", name,
		"replicas", count,
	)

	result := e.apps.Patch(types.MergePatchType).
		Namespace(namespace).
		Resource(kind.Resource()).
		Name(name).
		SubResource(scaleSubresource).
		Body(body).
		Context(ctx).
		Do()
	if err := checkResult(result); err != nil {
		return fmt.Errorf("failed to scale %s %s/%s to %d: %w", kind, namespace, name, count, err)
	}
	return nil
}
