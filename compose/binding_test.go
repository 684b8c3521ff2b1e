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
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/cloudwego/lcel/schema"
)

func TestBinding(t *testing.T) {
	ctx := context.Background()

	Convey("bound config is laid under the call config", t, func() {
		c, withCollector := newCollector()
		b := Bind(upperLambda(), WithTags("bound"), WithMetadata(map[string]any{"a": 1, "b": 1}), WithRunName("bound-name"))

		out, err := b.Invoke(ctx, "x", withCollector, WithTags("call"), WithMetadata(map[string]any{"b": 2}))
		So(err, ShouldBeNil)
		So(out, ShouldEqual, "X")

		roots := c.Roots()
		So(len(roots), ShouldEqual, 1)
		So(roots[0].Name, ShouldEqual, "bound-name")
		So(roots[0].Tags, ShouldResemble, []string{"bound", "call"})
		So(roots[0].Metadata, ShouldResemble, map[string]any{"a": 1, "b": 2})

		c.Reset()
		_, err = b.Invoke(ctx, "x", withCollector, WithRunName("call-name"))
		So(err, ShouldBeNil)
		So(c.Roots()[0].Name, ShouldEqual, "call-name")
	})

	Convey("a binding starts no run of its own", t, func() {
		c, withCollector := newCollector()
		seq, err := Bind(trimLambda(), withCollector).Pipe(upperLambda())
		So(err, ShouldBeNil)

		out, err := seq.Invoke(ctx, " y ", withCollector)
		So(err, ShouldBeNil)
		So(out, ShouldEqual, "Y")

		roots := c.Roots()
		So(len(roots), ShouldEqual, 1)
		So(len(roots[0].Children), ShouldEqual, 2)
		So(roots[0].Children[0].Name, ShouldEqual, "trim")
		So(roots[0].Children[0].Tags, ShouldContain, stepTag(0))
	})

	Convey("binding a binding merges the configs", t, func() {
		c, withCollector := newCollector()
		inner := Bind(upperLambda(), WithTags("inner"))
		outer := Bind(inner, WithTags("outer"), withCollector)
		So(outer.Unwrap(), ShouldEqual, inner.Unwrap())

		_, err := outer.Invoke(ctx, "z")
		So(err, ShouldBeNil)
		So(c.Roots()[0].Tags, ShouldResemble, []string{"inner", "outer"})
		So(outer.Serialize().DisplayName(), ShouldEqual, "upper")
	})

	Convey("stream uses the merged config", t, func() {
		c, withCollector := newCollector()
		b := Bind(upperLambda(), WithRunName("streamed"), withCollector)

		sr, err := b.Stream(ctx, "s")
		So(err, ShouldBeNil)
		chunks, err := schema.ReadAll(sr)
		So(err, ShouldBeNil)
		So(chunks, ShouldResemble, []any{"S"})
		So(len(c.Find("streamed")), ShouldEqual, 1)
	})

	Convey("batch", t, func() {
		Convey("every input gets the bound config", func() {
			c, withCollector := newCollector()
			b := Bind(upperLambda(), WithTags("bound"), withCollector)

			outs, err := b.Batch(ctx, []any{"a", "b"}, WithBatchOptions(WithTags("call")))
			So(err, ShouldBeNil)
			So(outs, ShouldResemble, []any{"A", "B"})

			roots := c.Roots()
			So(len(roots), ShouldEqual, 2)
			for _, run := range roots {
				So(run.Tags, ShouldResemble, []string{"bound", "call"})
			}
		})

		Convey("the bound concurrency bounds the batch", func() {
			var inFlight, maxSeen atomic.Int32
			slow := NewLambda(func(input any) any {
				n := inFlight.Add(1)
				for {
					m := maxSeen.Load()
					if n <= m || maxSeen.CompareAndSwap(m, n) {
						break
					}
				}
				time.Sleep(10 * time.Millisecond)
				inFlight.Add(-1)
				return input
			})

			outs, err := Bind(slow, WithMaxConcurrency(1)).Batch(ctx, []any{1, 2, 3})
			So(err, ShouldBeNil)
			So(outs, ShouldResemble, []any{1, 2, 3})
			So(maxSeen.Load(), ShouldEqual, int32(1))
		})

		Convey("mismatched configs", func() {
			_, err := Bind(upperLambda()).Batch(ctx, []any{"a"}, WithBatchConfigs())
			So(errors.Is(err, ErrBatchConfigLength), ShouldBeTrue)
		})
	})
}
