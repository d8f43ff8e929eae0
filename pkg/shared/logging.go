// Copyright 2018 BlueData Software, Inc.

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

	"github.com/go-logr/logr"
	"k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/tools/record"
	"k8s.io/client-go/tools/reference"
)

// LogInfof logs the given message format and payload at Info level, and
// posts it as a Normal event on obj unless eventReason is
// EventReasonNoEvent or recorder is nil.
func LogInfof(
	logger logr.Logger,
	recorder record.EventRecorder,
	obj runtime.Object,
	eventReason string,
	format string,
	args ...interface{},
) {

	logger.Info(fmt.Sprintf(format, args...))

	if eventReason != EventReasonNoEvent {
		LogEventf(
			recorder,
			obj,
			v1.EventTypeNormal,
			eventReason,
			format,
			args...,
		)
	}
}

// LogErrorf logs the given message format and payload at Error level,
// and posts it as a Warning event on obj unless eventReason is
// EventReasonNoEvent or recorder is nil.
func LogErrorf(
	logger logr.Logger,
	recorder record.EventRecorder,
	err error,
	obj runtime.Object,
	eventReason string,
	format string,
	args ...interface{},
) {

	logger.Error(err, fmt.Sprintf(format, args...))

	if eventReason != EventReasonNoEvent {
		LogEventf(
			recorder,
			obj,
			v1.EventTypeWarning,
			eventReason,
			format+": %v",
			append(args, err)...,
		)
	}
}

// LogEventf posts an event to the event recorder with the given message
// format and payload using obj as reference.
func LogEventf(
	recorder record.EventRecorder,
	obj runtime.Object,
	eventType string,
	eventReason string,
	format string,
	args ...interface{},
) {

	if recorder == nil {
		return
	}

	ref, err := reference.GetReference(scheme.Scheme, obj)
	if err != nil {
		return
	}

	recorder.Eventf(
		ref,
		eventType,
		eventReason,
		format,
		args...,
	)
}
