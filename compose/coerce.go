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
	"fmt"
	"reflect"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Coerce turns v into a Runnable:
//   - a non-nil Runnable is returned as is,
//   - a function of a LambdaFunc shape becomes a Lambda,
//   - a map[string]any or *orderedmap.OrderedMap[string, any] becomes a Map of its coerced values.
//
// Anything else fails with ErrUnsupportedType.
func Coerce(v any) (Runnable, error) {
	switch t := v.(type) {
	case Runnable:
		if rv := reflect.ValueOf(t); rv.Kind() == reflect.Pointer && rv.IsNil() {
			return nil, fmt.Errorf("%w: nil %T", ErrUnsupportedType, v)
		}
		return t, nil
	case func(ctx context.Context, input any) (any, error):
		return NewLambda(t), nil
	case func(input any) (any, error):
		return NewLambda(t), nil
	case func(input any) any:
		return NewLambda(t), nil
	case map[string]any:
		return NewMap(t)
	case *orderedmap.OrderedMap[string, any]:
		return NewOrderedMap(t)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedType, v)
	}
}
