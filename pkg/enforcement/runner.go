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

package enforcement

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bluek8s/licensewatchdog/pkg/shared"
	"github.com/go-logr/logr"
	"k8s.io/client-go/tools/record"
)

// runner executes the steps of an Action concurrently.
type runner struct {
	log      logr.Logger
	recorder record.EventRecorder
	timeout  time.Duration
}

func newRunner(
	log logr.Logger,
	recorder record.EventRecorder,
	timeout time.Duration,
) runner {

	if timeout <= 0 {
		timeout = DefaultWriteTimeout
	}
	return runner{
		log:      log,
		recorder: recorder,
		timeout:  timeout,
	}
}

// run performs every step and waits for all of them.
func (r *runner) run(
	ctx context.Context,
	action Action,
) Result {

	result := Result{
		Outcome: action.Outcome,
		Items:   make([]ItemResult, len(action.Steps)),
	}

	var wg sync.WaitGroup
	for i := range action.Steps {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			step := action.Steps[i]
			result.Items[i] = ItemResult{
				Target:    step.Target,
				Reference: step.Reference,
				Detail:    step.Detail,
				Err:       r.write(ctx, step),
			}
		}(i)
	}
	wg.Wait()

	for _, item := range result.Items {
		if item.Err != nil {
			shared.LogErrorf(
				r.log,
				r.recorder,
				item.Err,
				item.Reference,
				shared.EventReasonEnforcementFailed,
				"failed to enforce %s license state on %s (%s)",
				action.Outcome,
				item.Target,
				item.Detail,
			)
			continue
		}
		r.log.V(1).Info(
			"enforced license state",
			"outcome", action.Outcome.String(),
			"target", item.Target,
			"detail", item.Detail,
		)
	}
	return result
}

// write runs a single step under the per-write timeout. A write that
// ignores its context is abandoned once the timeout expires.
func (r *runner) write(
	ctx context.Context,
	step Step,
) error {

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- fmt.Errorf("write panicked: %v", p)
			}
		}()
		done <- step.write(ctx)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("write to %s abandoned: %v", step.Target, ctx.Err())
	}
}
