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

package callbacks

import (
	"os"
	"strconv"
	"sync"
)

// VerboseEnv is the environment variable turning on the console handler for every root run.
const VerboseEnv = "LCEL_VERBOSE"

var (
	globalHandlers []Handler

	verboseOnce sync.Once
	verbose     bool
)

// AppendGlobalHandlers appends the given handlers to the global callback handlers.
// Global handlers are inherited by every root run and therefore by the whole run tree below it.
// Note: This function is not thread-safe and should only be called during process initialization.
func AppendGlobalHandlers(handlers ...Handler) {
	globalHandlers = append(globalHandlers, handlers...)
}

// ResetGlobalHandlers removes every global handler.
// Note: This function is not thread-safe.
func ResetGlobalHandlers() {
	globalHandlers = nil
}

// SetVerbose turns the console handler on or off for every root run,
// overriding LCEL_VERBOSE.
// Note: This function is not thread-safe and should only be called during process initialization.
func SetVerbose(v bool) {
	verboseOnce.Do(func() {})
	verbose = v
}

func isVerbose() bool {
	verboseOnce.Do(func() {
		verbose, _ = strconv.ParseBool(os.Getenv(VerboseEnv))
	})
	return verbose
}
