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
	"context"
	"errors"
	"fmt"
	"io"
	"runtime/debug"

	"github.com/cloudwego/lcel/callbacks"
	"github.com/cloudwego/lcel/internal"
	"github.com/cloudwego/lcel/internal/safe"
	"github.com/cloudwego/lcel/logs"
	"github.com/cloudwego/lcel/schema"
)

// RegisterStreamChunkConcatFunc registers a function to concat stream chunks of type T.
// It is used to accumulate the output reported when a streamed run ends,
// and to turn a stream into one value when a streaming lambda is invoked.
// Strings, map[string]any, []any and other slices are concatenated without registration.
// Note: This function is not thread-safe and should only be called during process initialization.
func RegisterStreamChunkConcatFunc[T any](fn func([]T) (T, error)) {
	internal.RegisterStreamChunkConcatFunc(fn)
}

// concatStreamReader drains sr and concatenates its chunks into one value.
func concatStreamReader(sr *schema.StreamReader[any]) (any, error) {
	defer sr.Close()

	var (
		acc   any
		count int
	)
	for {
		chunk, err := sr.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		if count == 0 {
			acc = chunk
		} else if acc, err = internal.ConcatChunks(acc, chunk); err != nil {
			return nil, fmt.Errorf("concat stream chunks: %w", err)
		}
		count++
	}

	if count == 0 {
		return nil, ErrEmptyStream
	}
	return acc, nil
}

// forwardStream relays src to the returned reader chunk by chunk and reports the run
// once src is exhausted. The output reported is the concatenation of the chunks;
// after a chunk fails to concatenate, the output is dropped for the rest of the stream.
func forwardStream(ctx context.Context, rm *callbacks.RunManager, src *schema.StreamReader[any]) *schema.StreamReader[any] {
	sr, sw := schema.Pipe[any](0)

	go func() {
		defer sw.Close()
		defer src.Close()
		defer func() {
			if p := recover(); p != nil {
				err := safe.NewPanicErr(p, debug.Stack())
				_ = sw.Send(nil, err)
				rm.OnChainError(ctx, err)
			}
		}()

		var (
			acc         any
			accumulated = true
		)
		for {
			chunk, err := src.Recv()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				_ = sw.Send(nil, err)
				rm.OnChainError(ctx, err)
				return
			}

			if accumulated {
				merged, mErr := internal.ConcatChunks(acc, chunk)
				if mErr != nil {
					logs.Default().Debug("stream output is not concatenable, dropping the reported output", mErr,
						map[string]any{"run_id": rm.RunID(), "chunk_type": fmt.Sprintf("%T", chunk)})
					acc, accumulated = nil, false
				} else {
					acc = merged
				}
			}

			if closed := sw.Send(chunk, nil); closed {
				rm.OnChainError(ctx, ErrStreamClosed)
				return
			}
		}

		rm.OnChainEnd(ctx, chainOutput(acc))
	}()

	return sr
}
