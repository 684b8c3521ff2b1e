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

package internal

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConcatChunks(t *testing.T) {
	t.Run("strings", func(t *testing.T) {
		v, err := ConcatChunks("hel", "lo")
		assert.NoError(t, err)
		assert.Equal(t, "hello", v)
	})

	t.Run("nil accumulator takes the chunk", func(t *testing.T) {
		v, err := ConcatChunks(nil, "a")
		assert.NoError(t, err)
		assert.Equal(t, "a", v)
	})

	t.Run("nested objects", func(t *testing.T) {
		v, err := ConcatChunks(
			map[string]any{"text": "foo", "meta": map[string]any{"a": "x"}, "n": 1},
			map[string]any{"text": "bar", "meta": map[string]any{"a": "y", "b": "z"}, "n": 1},
		)
		assert.NoError(t, err)
		assert.Equal(t, map[string]any{
			"text": "foobar",
			"meta": map[string]any{"a": "xy", "b": "z"},
			"n":    1,
		}, v)
	})

	t.Run("lists upsert by index", func(t *testing.T) {
		v, err := ConcatChunks(
			[]any{map[string]any{"index": 0, "args": "{\"a\""}},
			[]any{map[string]any{"index": 0, "args": ": 1}"}, map[string]any{"index": 1, "args": "{}"}, "tail"},
		)
		assert.NoError(t, err)
		assert.Equal(t, []any{
			map[string]any{"index": 0, "args": "{\"a\": 1}"},
			map[string]any{"index": 1, "args": "{}"},
			"tail",
		}, v)
	})

	t.Run("typed slices append", func(t *testing.T) {
		v, err := ConcatChunks([]int{1, 2}, []int{3})
		assert.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3}, v)
	})

	t.Run("typed maps merge", func(t *testing.T) {
		v, err := ConcatChunks(map[string]string{"a": "x"}, map[string]string{"a": "y", "b": "z"})
		assert.NoError(t, err)
		assert.Equal(t, map[string]string{"a": "xy", "b": "z"}, v)
	})

	t.Run("unsupported", func(t *testing.T) {
		_, err := ConcatChunks(1, 2)
		assert.True(t, errors.Is(err, ErrConcatUnsupported))

		_, err = ConcatChunks("a", 1)
		assert.True(t, errors.Is(err, ErrConcatUnsupported))

		_, err = ConcatChunks(map[string]any{"a": 1}, map[string]any{"a": 2})
		assert.True(t, errors.Is(err, ErrConcatUnsupported))
	})

	t.Run("typed slices do not share the base", func(t *testing.T) {
		base := make([]int, 1, 4)
		base[0] = 1

		first, err := ConcatChunks(base, []int{2})
		assert.NoError(t, err)
		second, err := ConcatChunks(base, []int{9})
		assert.NoError(t, err)

		assert.Equal(t, []int{1, 2}, first)
		assert.Equal(t, []int{1, 9}, second)
		assert.Equal(t, []int{1}, base)
		assert.Equal(t, []int{1, 0}, base[:2])
	})

	t.Run("registered func", func(t *testing.T) {
		type counter struct{ n int }
		RegisterStreamChunkConcatFunc(func(cs []counter) (counter, error) {
			var sum counter
			for _, c := range cs {
				sum.n += c.n
			}
			return sum, nil
		})

		v, err := ConcatChunks(counter{1}, counter{2})
		assert.NoError(t, err)
		assert.Equal(t, counter{3}, v)
	})
}
