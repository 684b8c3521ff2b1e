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

// Package compose provides the runnables and the ways to combine them.
//
// A Runnable can be invoked on one input, batched over many inputs or streamed.
// Runnables are combined with Pipe into a Sequence, feeding the output of each
// step to the next, or into a Map, running several runnables on the same input.
// Plain functions and maps are coerced into runnables wherever a runnable is expected.
//
//	seq, err := compose.NewSequence(
//		func(input any) any { return strings.TrimSpace(input.(string)) },
//		map[string]any{
//			"upper": func(input any) any { return strings.ToUpper(input.(string)) },
//			"raw":   compose.NewPassthrough(),
//		},
//	)
//	out, err := seq.Invoke(ctx, "  hi  ", compose.WithCallbacks(handler))
//	// out: map[string]any{"raw": "hi", "upper": "HI"}
//
// Every call is observed through callbacks: each runnable reports one run,
// nested under the run of the composite that called it.
package compose
