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

package shared

import (
	"fmt"
	"os"

	"github.com/operator-framework/operator-sdk/pkg/k8sutil"
)

// StringInList is a utility function that checks if a given string is
// present at least once in the given slice of strings.
func StringInList(
	test string,
	list []string,
) bool {

	for _, s := range list {
		if s == test {
			return true
		}
	}
	return false
}

// GetWatchdogNamespace is a utility function to fetch the namespace
// where the watchdog is running. MY_NAMESPACE takes precedence over the
// service account namespace of the pod.
func GetWatchdogNamespace() (string, error) {

	if ns, found := os.LookupEnv(WatchdogNamespaceEnvVar); found && ns != "" {
		return ns, nil
	}
	ns, err := k8sutil.GetOperatorNamespace()
	if err != nil {
		return "", fmt.Errorf("%s is not set and %v", WatchdogNamespaceEnvVar, err)
	}
	return ns, nil
}
