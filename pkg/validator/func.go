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
	"fmt"
	"time"

	"github.com/go-logr/logr"
)

// FuncValidator adapts a CheckFunc into a Validator.
type FuncValidator struct {
	log     logr.Logger
	check   CheckFunc
	timeout time.Duration
}

// blank assignment to verify that FuncValidator implements Validator.
var _ Validator = &FuncValidator{}

type checkResult struct {
	valid bool
	err   error
}

// NewFuncValidator wraps the given check. A non-positive timeout selects
// DefaultTimeout.
func NewFuncValidator(
	log logr.Logger,
	check CheckFunc,
	timeout time.Duration,
) (*FuncValidator, error) {

	if check == nil {
		return nil, fmt.Errorf("%w: check function must not be nil", ErrInvalidConfig)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &FuncValidator{
		log:     log,
		check:   check,
		timeout: timeout,
	}, nil
}

// Validate runs the check. Errors, panics and checks that outlive the
// timeout all yield Invalid.
func (v *FuncValidator) Validate(
	ctx context.Context,
) Outcome {

	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	// Buffered so an abandoned check can still finish and exit.
	done := make(chan checkResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- checkResult{err: fmt.Errorf("check panicked: %v", r)}
			}
		}()
		valid, err := v.check(ctx)
		done <- checkResult{valid: valid, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			v.log.Error(res.err, "license check failed")
			return Invalid
		}
		if !res.valid {
			return Invalid
		}
		return Valid
	case <-ctx.Done():
		v.log.Error(ctx.Err(), "license check did not complete", "timeout", v.timeout.String())
		return Invalid
	}
}
