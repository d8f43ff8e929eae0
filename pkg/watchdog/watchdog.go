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
	"context"
	"fmt"
	"time"

	"github.com/bluek8s/licensewatchdog/pkg/enforcement"
	"github.com/bluek8s/licensewatchdog/pkg/shared"
	"github.com/bluek8s/licensewatchdog/pkg/validator"
)

// New builds a Watchdog from opts.
func New(
	opts Options,
) (*Watchdog, error) {

	if opts.Log == nil {
		return nil, fmt.Errorf("%w: logger is required", ErrInvalidOptions)
	}
	if opts.Validator == nil {
		return nil, fmt.Errorf("%w: validator is required", ErrInvalidOptions)
	}
	if opts.Enforcer == nil {
		return nil, fmt.Errorf("%w: enforcer is required", ErrInvalidOptions)
	}
	if opts.SampleInterval < 0 {
		return nil, fmt.Errorf("%w: sample interval %v is negative", ErrInvalidOptions, opts.SampleInterval)
	}
	if opts.InitialDelay < 0 {
		return nil, fmt.Errorf("%w: initial delay %v is negative", ErrInvalidOptions, opts.InitialDelay)
	}

	return &Watchdog{
		log:            opts.Log.WithName("watchdog"),
		recorder:       opts.Recorder,
		validator:      opts.Validator,
		enforcer:       opts.Enforcer,
		sampleInterval: opts.SampleInterval,
		initialDelay:   opts.InitialDelay,
		reassertValid:  opts.ReassertValid,
		metrics:        opts.Metrics,
		preflight:      opts.Preflight,
	}, nil
}

// State returns a copy of the loop state.
func (w *Watchdog) State() LoopState {

	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Start implements the controller-runtime Runnable interface. The loop
// stops when stop is closed.
func (w *Watchdog) Start(
	stop <-chan struct{},
) error {

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-stop:
			cancel()
		case <-ctx.Done():
		}
	}()
	return w.Run(ctx)
}

// Run executes the loop until ctx is cancelled, returning nil, or until
// a cycle fails unrecoverably, returning that error. Cancellation is
// only observed between cycles; a cycle in progress runs to completion
// under the validator and write timeouts.
func (w *Watchdog) Run(
	ctx context.Context,
) error {

	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return ErrAlreadyRunning
	}
	w.running = true
	w.mu.Unlock()

	w.log.Info(
		"starting",
		"strategy", w.enforcer.Strategy(),
		"sampleInterval", w.sampleInterval,
		"initialDelay", w.initialDelay,
		"reassertValid", w.reassertValid,
	)

	if w.preflight != nil {
		w.preflight.Run(ctx, w.validator)
	}

	wait := w.initialDelay
	for {
		if !w.sleep(ctx, wait) {
			w.stop(nil)
			return nil
		}
		if err := w.cycle(); err != nil {
			w.stop(err)
			return err
		}
		wait = w.sampleInterval
	}
}

// sleep waits for d and reports false if ctx was cancelled first.
func (w *Watchdog) sleep(
	ctx context.Context,
	d time.Duration,
) bool {

	if ctx.Err() != nil {
		return false
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// cycle takes one sample and enforces it if the policy says so.
func (w *Watchdog) cycle() (err error) {

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrCyclePanicked, r)
		}
	}()

	// Cycles ignore loop cancellation; a cancelled probe reads as Invalid.
	ctx := context.Background()

	w.setPhase(Sampling)
	outcome := w.validator.Validate(ctx)
	if outcome != validator.Valid && outcome != validator.Invalid {
		return fmt.Errorf("%w: %v", ErrUnknownOutcome, outcome)
	}

	previous, samples := w.recordSample(outcome)
	w.metrics.observeSample(outcome)
	if previous != outcome {
		w.log.Info(
			"license outcome changed",
			"from", previous,
			"to", outcome,
			"sample", samples,
		)
	} else {
		w.log.V(1).Info("license sampled", "outcome", outcome, "sample", samples)
	}

	if !shouldEnforce(previous, outcome, w.reassertValid) {
		w.setPhase(Idle)
		return nil
	}

	w.setPhase(Enforcing)
	result := w.enforcer.Apply(ctx, outcome)
	w.metrics.observeEnforcement(w.enforcer.Strategy(), result)
	w.report(previous, result)
	w.setPhase(Idle)
	return nil
}

// recordSample stores outcome and returns the previous outcome and the
// new sample count. The outcome is stored whether or not enforcement
// later succeeds.
func (w *Watchdog) recordSample(
	outcome validator.Outcome,
) (validator.Outcome, uint64) {

	w.mu.Lock()
	defer w.mu.Unlock()
	previous := w.state.Outcome
	w.state.Outcome = outcome
	w.state.Samples++
	return previous, w.state.Samples
}

func (w *Watchdog) setPhase(
	phase Phase,
) {

	w.mu.Lock()
	from := w.state.Phase
	w.state.Phase = phase
	w.mu.Unlock()

	if from != phase {
		w.log.V(1).Info("phase change", "from", from, "to", phase)
	}
}

func (w *Watchdog) stop(
	err error,
) {

	w.mu.Lock()
	w.state.Phase = Stopped
	w.state.Stopped = true
	w.mu.Unlock()

	if err != nil {
		w.log.Error(err, "stopped")
	} else {
		w.log.Info("stopped")
	}
}

// report logs the enforcement result. On a transition it also posts an
// event on every target that now reflects the new outcome.
func (w *Watchdog) report(
	previous validator.Outcome,
	result enforcement.Result,
) {

	failed := len(result.Failed())
	if failed > 0 {
		w.log.Info(
			"enforcement incomplete",
			"outcome", result.Outcome,
			"targets", len(result.Items),
			"failed", failed,
		)
	} else {
		w.log.V(1).Info(
			"enforcement complete",
			"outcome", result.Outcome,
			"targets", len(result.Items),
		)
	}

	if previous == result.Outcome {
		return
	}

	reason := shared.EventReasonRestored
	verb := "restored"
	if result.Outcome == validator.Invalid {
		reason = shared.EventReasonRestricted
		verb = "restricted"
	}
	for _, item := range result.Items {
		if item.Err != nil || item.Reference == nil {
			continue
		}
		shared.LogInfof(
			w.log,
			w.recorder,
			item.Reference,
			reason,
			"license %s: %s %s",
			result.Outcome,
			verb,
			item.Detail,
		)
	}
}
