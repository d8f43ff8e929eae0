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

// Package enforcement translates a license outcome into cluster writes.
//
// Two interchangeable strategies exist: scaling protected workloads to a
// restricted replica count, or rewriting an Ingress host rule to a
// restricted backend. A deployment of the watchdog uses exactly one of
// them, chosen by configuration. Within one pass every target is written
// independently and concurrently; a failing target never prevents the
// others from being attempted, and the pass returns only once every
// write has finished or timed out.
package enforcement
