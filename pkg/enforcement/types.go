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
	"errors"
	"time"

	"github.com/bluek8s/licensewatchdog/pkg/validator"
	v1 "k8s.io/api/core/v1"
)

// Strategy names an enforcement mechanism.
type Strategy string

const (
	// StrategyScale restricts access by scaling workloads.
	StrategyScale Strategy = "scale"
	// StrategyIngress restricts access by rerouting an ingress host.
	StrategyIngress Strategy = "ingress"
)

// DefaultWriteTimeout bounds a single cluster write when no timeout is
// configured.
const DefaultWriteTimeout = 10 * time.Second

var (
	// ErrUnknownStrategy is returned for a strategy other than scale or
	// ingress.
	ErrUnknownStrategy = errors.New("unknown enforcement strategy")

	// ErrNoTargets is returned when the selected strategy has nothing in
	// the registry to act on.
	ErrNoTargets = errors.New("no targets registered for strategy")
)

// Enforcer applies or lifts restriction for a license outcome.
type Enforcer interface {
	// Strategy reports which mechanism the enforcer uses.
	Strategy() Strategy

	// Apply enforces outcome on every registered target. Failures are
	// reported in the Result, never returned or panicked.
	Apply(ctx context.Context, outcome validator.Outcome) Result
}

// Step is a single write toward one target.
type Step struct {
	// Target identifies the object, e.g. "StatefulSet cassandra/cassandra".
	Target string
	// Reference is used to post events about the target.
	Reference *v1.ObjectReference
	// Detail describes the written state, e.g. "replicas=0".
	Detail string

	write func(ctx context.Context) error
}

// Action is one enforcement pass: the outcome being enforced and the
// ordered writes that enforce it. It is built per pass and consumed once.
type Action struct {
	Outcome validator.Outcome
	Steps   []Step
}

// ItemResult is the outcome of one Step.
type ItemResult struct {
	Target    string
	Reference *v1.ObjectReference
	Detail    string
	// Err is nil when the write succeeded.
	Err error
}

// Result collects the outcome of every Step of an Action, in Step order.
type Result struct {
	Outcome validator.Outcome
	Items   []ItemResult
}

// Succeeded reports whether every target was reconciled.
func (r Result) Succeeded() bool {

	for _, item := range r.Items {
		if item.Err != nil {
			return false
		}
	}
	return true
}

// Failed returns the items whose write failed.
func (r Result) Failed() []ItemResult {

	var failed []ItemResult
	for _, item := range r.Items {
		if item.Err != nil {
			failed = append(failed, item)
		}
	}
	return failed
}
