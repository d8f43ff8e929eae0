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

package observer

import (
	"context"

	"github.com/bluek8s/licensewatchdog/pkg/catalog"
	autoscalingv1 "k8s.io/api/autoscaling/v1"
	extv1beta1 "k8s.io/api/extensions/v1beta1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
)

// Observer reads the current state of protected objects.
type Observer struct {
	apps       rest.Interface
	extensions rest.Interface
}

// New creates an Observer that reads through the given clientset.
func New(
	clientset kubernetes.Interface,
) *Observer {

	return &Observer{
		apps:       clientset.AppsV1().RESTClient(),
		extensions: clientset.ExtensionsV1beta1().RESTClient(),
	}
}

// GetScale fetches the scale subresource of the given workload.
func (o *Observer) GetScale(
	ctx context.Context,
	resource catalog.Resource,
) (*autoscalingv1.Scale, error) {

	result := &autoscalingv1.Scale{}
	err := o.apps.Get().
		Namespace(resource.Namespace).
		Resource(resource.Kind.Resource()).
		Name(resource.Name).
		SubResource("scale").
		Context(ctx).
		Do().
		Into(result)
	return result, err
}

// GetIngress fetches the Ingress behind the given route.
func (o *Observer) GetIngress(
	ctx context.Context,
	route catalog.IngressRoute,
) (*extv1beta1.Ingress, error) {

	result := &extv1beta1.Ingress{}
	err := o.extensions.Get().
		Namespace(route.Namespace).
		Resource("ingresses").
		Name(route.Name).
		Context(ctx).
		Do().
		Into(result)
	return result, err
}
