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
	extv1beta1 "k8s.io/api/extensions/v1beta1"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/apimachinery/pkg/util/intstr"
)

// ingressPatch is the merge patch body for an Ingress. A merge patch
// replaces lists wholesale, which is what makes the rewrite total.
type ingressPatch struct {
	Spec ingressSpec `json:"spec"`
}

type ingressSpec struct {
	Rules []extv1beta1.IngressRule `json:"rules"`
}

// SetIngressRule rewrites the named Ingress to hold exactly one rule.
// servicePort must be positive.
func (e *Executor) SetIngressRule(
	ctx context.Context,
	name string,
	namespace string,
	hostname string,
	serviceName string,
	servicePort int32,
) error {

	if servicePort <= 0 {
		return fmt.Errorf("%w: service port %d must be a positive integer", ErrInvalidArgument, servicePort)
	}
	if name == "" || serviceName == "" {
		return fmt.Errorf("%w: ingress and service names must not be empty", ErrInvalidArgument)
	}
	if namespace == "" {
		namespace = catalog.DefaultNamespace
	}

	body, err := json.Marshal(singleRulePatch(hostname, serviceName, servicePort))
	if err != nil {
		return err
	}

	e.log.V(1).Info(
		"patching ingress",
		"namespace", namespace,
		"name", name,
		"host", hostname,
		"service", serviceName,
		"port", servicePort,
	)

	result := e.extensions.Patch(types.MergePatchType).
		Namespace(namespace).
		Resource(ingressResource).
		Name(name).
		Body(body).
		Context(ctx).
		Do()
	if err := checkResult(result); err != nil {
		return fmt.Errorf("failed to update Ingress %s/%s: %w", namespace, name, err)
	}
	return nil
}

// singleRulePatch builds a patch holding one host rule with one path.
func singleRulePatch(
	hostname string,
	serviceName string,
	servicePort int32,
) ingressPatch {

	return ingressPatch{
		Spec: ingressSpec{
			Rules: []extv1beta1.IngressRule{
				{
					Host: hostname,
					IngressRuleValue: extv1beta1.IngressRuleValue{
						HTTP: &extv1beta1.HTTPIngressRuleValue{
							Paths: []extv1beta1.HTTPIngressPath{
								{
									Backend: extv1beta1.IngressBackend{
										ServiceName: serviceName,
										ServicePort: intstr.FromInt(int(servicePort)),
									},
								},
							},
						},
					},
				},
			},
		},
	}
}
