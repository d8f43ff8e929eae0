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

package validator

import (
	"context"
	"errors"
	"time"
)

// Outcome is the result of one license validation.
type Outcome int

const (
	// Unknown is the state before the first sample completes. A validator
	// never returns it.
	Unknown Outcome = iota
	// Valid means the license was confirmed.
	Valid
	// Invalid means the license was rejected or could not be confirmed.
	Invalid
)

func (o Outcome) String() string {

	switch o {
	case Valid:
		return "valid"
	case Invalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Validator yields the current license validity.
type Validator interface {
	// Validate returns Valid or Invalid. It returns within the
	// validator's own timeout even if ctx has no deadline.
	Validate(ctx context.Context) Outcome
}

// CheckFunc reports license validity. Returning an error is equivalent
// to returning false.
type CheckFunc func(ctx context.Context) (bool, error)

const (
	// DefaultTimeout bounds a single validation when no timeout is
	// configured.
	DefaultTimeout = 10 * time.Second

	// DefaultPort is used by the HTTP validator when no port is given.
	DefaultPort = 80
)

// ErrInvalidConfig is returned by constructors given unusable settings.
var ErrInvalidConfig = errors.New("invalid validator configuration")
