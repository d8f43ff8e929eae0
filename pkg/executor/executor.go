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
	"fmt"
	"net/http"

	"github.com/go-logr/logr"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
)

// Executor implements ClusterClient on top of the apps/v1 and
// extensions/v1beta1 REST clients.
type Executor struct {
	log        logr.Logger
	apps       rest.Interface
	extensions rest.Interface
}

// blank assignment to verify that Executor implements ClusterClient.
var _ ClusterClient = &Executor{}

// New creates an Executor that writes through the given clientset.
func New(
	log logr.Logger,
	clientset kubernetes.Interface,
) *Executor {

	return &Executor{
		log:        log,
		apps:       clientset.AppsV1().RESTClient(),
		extensions: clientset.ExtensionsV1beta1().RESTClient(),
	}
}

// checkResult converts a REST result into an error. Anything other than
// a 2xx answer is a failure.
func checkResult(
	result rest.Result,
) error {

	var statusCode int
	result.StatusCode(&statusCode)
	if err := result.Error(); err != nil {
		return err
	}
	if statusCode < http.StatusOK || statusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("unexpected response status %d", statusCode)
	}
	return nil
}
