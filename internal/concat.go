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
	"fmt"
	"reflect"
	"strings"

	"github.com/cloudwego/lcel/internal/generic"
)

// ErrConcatUnsupported is returned when two chunks cannot be merged into one value.
var ErrConcatUnsupported = errors.New("chunk type is not concatenable")

var concatFuncs = map[reflect.Type]any{
	generic.TypeOf[string](): concatStrings,
}

func concatStrings(ss []string) (string, error) {
	var n int
	for _, s := range ss {
		n += len(s)
	}

	var b strings.Builder
	b.Grow(n)
	for _, s := range ss {
		_, err := b.WriteString(s)
		if err != nil {
			return "", err
		}
	}

	return b.String(), nil
}

// RegisterStreamChunkConcatFunc registers the function merging chunks of type T.
// NOT concurrency safe, call it during process initialization.
func RegisterStreamChunkConcatFunc[T any](fn func([]T) (T, error)) {
	concatFuncs[generic.TypeOf[T]()] = fn
}

// GetConcatFunc returns the registered concat function for typ, or nil.
func GetConcatFunc(typ reflect.Type) func(reflect.Value) (reflect.Value, error) {
	if fn, ok := concatFuncs[typ]; ok {
		return func(a reflect.Value) (reflect.Value, error) {
			rvs := reflect.ValueOf(fn).Call([]reflect.Value{a})
			var err error
			if !rvs[1].IsNil() {
				err = rvs[1].Interface().(error)
			}
			return rvs[0], err
		}
	}

	return nil
}

// ConcatChunks merges next into prev.
//
// Registered functions win. Otherwise map[string]any values are merged recursively,
// []any values are merged with index-keyed upsert, other slices are appended and
// other maps are merged key by key. Anything else fails with ErrConcatUnsupported.
func ConcatChunks(prev, next any) (any, error) {
	if prev == nil {
		return next, nil
	}
	if next == nil {
		return prev, nil
	}

	pt, nt := reflect.TypeOf(prev), reflect.TypeOf(next)
	if pt != nt {
		return nil, fmt.Errorf("%w: cannot concat %v with %v", ErrConcatUnsupported, pt, nt)
	}

	if f := GetConcatFunc(pt); f != nil {
		s := reflect.MakeSlice(reflect.SliceOf(pt), 0, 2)
		s = reflect.Append(s, reflect.ValueOf(prev), reflect.ValueOf(next))
		v, err := f(s)
		if err != nil {
			return nil, err
		}
		return v.Interface(), nil
	}

	switch p := prev.(type) {
	case map[string]any:
		return mergeObjects(p, next.(map[string]any))
	case []any:
		return mergeLists(p, next.([]any))
	}

	switch pt.Kind() {
	case reflect.Slice:
		// never append into prev, its backing array may be shared with a consumer
		pv, nv := reflect.ValueOf(prev), reflect.ValueOf(next)
		merged := reflect.MakeSlice(pt, 0, pv.Len()+nv.Len())
		merged = reflect.AppendSlice(merged, pv)
		return reflect.AppendSlice(merged, nv).Interface(), nil
	case reflect.Map:
		return mergeMapValues(reflect.ValueOf(prev), reflect.ValueOf(next))
	default:
		return nil, fmt.Errorf("%w: %v", ErrConcatUnsupported, pt)
	}
}

func mergeObjects(left, right map[string]any) (map[string]any, error) {
	merged := generic.CopyMap(left)
	for k, rv := range right {
		lv, ok := merged[k]
		if !ok || lv == nil {
			merged[k] = rv
			continue
		}
		if rv == nil {
			continue
		}

		v, err := mergeField(k, lv, rv)
		if err != nil {
			return nil, err
		}
		merged[k] = v
	}

	return merged, nil
}

func mergeField(key string, lv, rv any) (any, error) {
	if reflect.TypeOf(lv) != reflect.TypeOf(rv) {
		return nil, fmt.Errorf("%w: field %q has type %T in one chunk and %T in another",
			ErrConcatUnsupported, key, lv, rv)
	}

	switch lv.(type) {
	case string, map[string]any, []any:
		return ConcatChunks(lv, rv)
	}

	if reflect.DeepEqual(lv, rv) {
		return lv, nil
	}
	if reflect.ValueOf(lv).IsZero() {
		return rv, nil
	}
	if reflect.ValueOf(rv).IsZero() {
		return lv, nil
	}

	return nil, fmt.Errorf("%w: field %q holds different values %v and %v",
		ErrConcatUnsupported, key, lv, rv)
}

// mergeLists appends right to left, except that map items carrying an "index" key
// are merged into the left item with the same index.
func mergeLists(left, right []any) ([]any, error) {
	merged := make([]any, len(left), len(left)+len(right))
	copy(merged, left)

	for _, item := range right {
		m, ok := item.(map[string]any)
		if !ok {
			merged = append(merged, item)
			continue
		}
		idx, ok := m["index"]
		if !ok {
			merged = append(merged, item)
			continue
		}

		pos := -1
		for i, existing := range merged {
			em, isMap := existing.(map[string]any)
			if isMap && reflect.DeepEqual(em["index"], idx) {
				pos = i
				break
			}
		}
		if pos < 0 {
			merged = append(merged, item)
			continue
		}

		v, err := mergeObjects(merged[pos].(map[string]any), m)
		if err != nil {
			return nil, err
		}
		merged[pos] = v
	}

	return merged, nil
}

func mergeMapValues(left, right reflect.Value) (any, error) {
	merged := reflect.MakeMapWithSize(left.Type(), left.Len()+right.Len())
	iter := left.MapRange()
	for iter.Next() {
		merged.SetMapIndex(iter.Key(), iter.Value())
	}

	iter = right.MapRange()
	for iter.Next() {
		key, rv := iter.Key(), iter.Value()
		lv := merged.MapIndex(key)
		if !lv.IsValid() {
			merged.SetMapIndex(key, rv)
			continue
		}

		v, err := ConcatChunks(lv.Interface(), rv.Interface())
		if err != nil {
			return nil, err
		}
		if v == nil {
			merged.SetMapIndex(key, reflect.Zero(left.Type().Elem()))
			continue
		}
		merged.SetMapIndex(key, reflect.ValueOf(v))
	}

	return merged.Interface(), nil
}
