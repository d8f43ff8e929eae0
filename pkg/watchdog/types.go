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
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bluek8s/licensewatchdog/pkg/enforcement"
	"github.com/bluek8s/licensewatchdog/pkg/validator"
	"github.com/go-logr/logr"
	"k8s.io/client-go/tools/record"
)

// Phase is the step of the cycle the loop is in.
type Phase int

const (
	// Idle is waiting for the next sample.
	Idle Phase = iota
	// Sampling is running the validator.
	Sampling
	// Enforcing is applying the sampled outcome.
	Enforcing
	// Stopped is terminal.
	Stopped
)

var phaseNames = map[Phase]string{
	Idle:      "idle",
	Sampling:  "sampling",
	Enforcing: "enforcing",
	Stopped:   "stopped",
}

func (p Phase) String() string {

	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// LoopState is a snapshot of the loop.
type LoopState struct {
	// Outcome is the most recent sample, Unknown before the first one.
	Outcome validator.Outcome
	// Samples counts completed samples. It only increases.
	Samples uint64
	Phase   Phase
	Stopped bool
}

var (
	// ErrInvalidOptions is returned by New for missing collaborators or
	// negative intervals.
	ErrInvalidOptions = errors.New("invalid watchdog options")

	// ErrUnknownOutcome stops the loop when a validator reports Unknown,
	// which validators must never do.
	ErrUnknownOutcome = errors.New("validator returned unknown outcome")

	// ErrCyclePanicked wraps a panic recovered from a loop cycle.
	ErrCyclePanicked = errors.New("watchdog cycle panicked")

	// ErrAlreadyRunning is returned by a second call to Run.
	ErrAlreadyRunning = errors.New("watchdog already running")
)

// Options configures a Watchdog. Log, Validator and Enforcer are
// required.
type Options struct {
	Log       logr.Logger
	Recorder  record.EventRecorder
	Validator validator.Validator
	Enforcer  enforcement.Enforcer

	// SampleInterval is the wait between samples; zero samples
	// back-to-back.
	SampleInterval time.Duration
	// InitialDelay is the wait before the first sample.
	InitialDelay time.Duration
	// ReassertValid enforces Valid on every Valid sample instead of only
	// on the transition into Valid.
	ReassertValid bool

	// Metrics and Preflight are optional.
	Metrics   *Metrics
	Preflight *Preflight
}

// Watchdog is the license control loop.
type Watchdog struct {
	log            logr.Logger
	recorder       record.EventRecorder
	validator      validator.Validator
	enforcer       enforcement.Enforcer
	sampleInterval time.Duration
	initialDelay   time.Duration
	reassertValid  bool
	metrics        *Metrics
	preflight      *Preflight

	mu      sync.Mutex
	state   LoopState
	running bool
}
