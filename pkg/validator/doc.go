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

// Package validator samples the license signal that the watchdog enforces.
//
// A Validator never fails: any problem reaching or interpreting the
// license source is reported as Invalid, so a flaky network can only ever
// lead to restriction, never to a crashed watchdog. Configuration problems
// are reported once, when the validator is constructed.
package validator
