/*
 * Copyright 2025 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package compose

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is the root of every composition or call configuration error.
	// Such errors are returned before any callback fires and before any step runs.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrBatchConfigLength is returned by Batch when per-input configs do not match the inputs one to one.
	ErrBatchConfigLength = fmt.Errorf("%w: batch configs must match inputs one to one", ErrInvalidArgument)

	// ErrUnsupportedType is returned when a value cannot be coerced to a Runnable.
	ErrUnsupportedType = fmt.Errorf("%w: value cannot be coerced to a runnable", ErrInvalidArgument)

	// ErrSequenceTooShort is returned when a sequence is built from fewer than two steps.
	ErrSequenceTooShort = fmt.Errorf("%w: a sequence needs at least two steps", ErrInvalidArgument)

	// ErrUnexpectedInputType is returned by typed lambdas receiving an input of another type.
	ErrUnexpectedInputType = errors.New("unexpected input type")

	// ErrStreamClosed is reported to the callbacks of a streamed run whose consumer closed the stream early.
	ErrStreamClosed = errors.New("stream closed by consumer")

	// ErrEmptyStream is returned when a stream has to be concatenated into one value but yielded no chunk.
	ErrEmptyStream = errors.New("stream reader is empty, concat failed")
)
