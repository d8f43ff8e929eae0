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

package watchdog

import (
	"github.com/bluek8s/licensewatchdog/pkg/validator"
)

// shouldEnforce decides whether a sample is handed to the enforcer.
// Invalid is re-asserted on every sample. Valid is applied on the
// transition into Valid, and on every sample only when reassertValid is
// set. Unknown is never enforced.
func shouldEnforce(
	previous validator.Outcome,
	current validator.Outcome,
	reassertValid bool,
) bool {

	switch current {
	case validator.Invalid:
		return true
	case validator.Valid:
		return previous != validator.Valid || reassertValid
	default:
		return false
	}
}
