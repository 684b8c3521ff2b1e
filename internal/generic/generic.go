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

// Package generic holds small type-level helpers shared by the other packages.
package generic

import "reflect"

// TypeOf returns the reflect.Type of T, including interface types.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// PtrOf returns a pointer to a copy of v.
func PtrOf[T any](v T) *T {
	return &v
}

// Reverse returns a reversed copy of s.
func Reverse[S ~[]E, E any](s S) S {
	d := make(S, len(s))
	for i := 0; i < len(s); i++ {
		d[i] = s[len(s)-i-1]
	}

	return d
}

// CopyMap returns a shallow copy of src. A nil src yields an empty map.
func CopyMap[K comparable, V any](src map[K]V) map[K]V {
	dst := make(map[K]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// MergeMaps copies every entry of the given maps into a new map, later maps winning.
func MergeMaps[K comparable, V any](ms ...map[K]V) map[K]V {
	n := 0
	for _, m := range ms {
		n += len(m)
	}
	dst := make(map[K]V, n)
	for _, m := range ms {
		for k, v := range m {
			dst[k] = v
		}
	}
	return dst
}

// AppendUnique appends the elements of add to base that base does not already hold,
// keeping first-seen order. base is never modified.
func AppendUnique[E comparable](base []E, add ...E) []E {
	ret := make([]E, 0, len(base)+len(add))
	seen := make(map[E]struct{}, len(base)+len(add))
	for _, group := range [][]E{base, add} {
		for _, e := range group {
			if _, ok := seen[e]; ok {
				continue
			}
			seen[e] = struct{}{}
			ret = append(ret, e)
		}
	}
	return ret
}
