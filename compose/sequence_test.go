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
	"io"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/cloudwego/lcel/callbacks"
	"github.com/cloudwego/lcel/callbacks/collector"
	"github.com/cloudwego/lcel/schema"
)

type runIDKey struct{}

// runContextChecker stores the run ID in the start context and counts
// the end and error events that do not receive it back.
func runContextChecker(finished, lost *atomic.Int32) callbacks.Handler {
	check := func(ctx context.Context, info *callbacks.RunInfo) context.Context {
		finished.Add(1)
		if id, _ := ctx.Value(runIDKey{}).(string); id != info.RunID {
			lost.Add(1)
		}
		return ctx
	}

	return callbacks.NewHandlerBuilder().
		OnStartFn(func(ctx context.Context, info *callbacks.RunInfo, _ callbacks.CallbackInput) context.Context {
			return context.WithValue(ctx, runIDKey{}, info.RunID)
		}).
		OnEndFn(func(ctx context.Context, info *callbacks.RunInfo, _ callbacks.CallbackOutput) context.Context {
			return check(ctx, info)
		}).
		OnErrorFn(func(ctx context.Context, info *callbacks.RunInfo, _ error) context.Context {
			return check(ctx, info)
		}).
		Build()
}

func TestSequenceInvoke(t *testing.T) {
	ctx := context.Background()

	Convey("trim then upper", t, func() {
		seq, err := trimLambda().Pipe(upperLambda())
		So(err, ShouldBeNil)

		out, err := seq.Invoke(ctx, "  hi  ")
		So(err, ShouldBeNil)
		So(out, ShouldEqual, "HI")
	})

	Convey("the run tree mirrors the steps", t, func() {
		c, withCollector := newCollector()
		seq, err := NewSequence(trimLambda(), upperLambda(), func(input any) any { return input.(string) + "!" })
		So(err, ShouldBeNil)

		out, err := seq.Invoke(ctx, " a ", withCollector, WithTags("root"), WithRunName("pipeline"))
		So(err, ShouldBeNil)
		So(out, ShouldEqual, "A!")

		roots := c.Roots()
		So(len(roots), ShouldEqual, 1)
		root := roots[0]
		So(root.Name, ShouldEqual, "pipeline")
		So(root.Input, ShouldResemble, map[string]any{"input": " a "})
		So(root.Output, ShouldResemble, map[string]any{"output": "A!"})

		So(len(root.Children), ShouldEqual, 3)
		So(root.Children[0].Name, ShouldEqual, "trim")
		So(root.Children[1].Name, ShouldEqual, "upper")
		So(root.Children[2].Name, ShouldEqual, "RunnableLambda")
		for i, child := range root.Children {
			So(child.ParentID, ShouldEqual, root.ID)
			So(child.Tags, ShouldContain, "root")
			So(child.Tags, ShouldContain, stepTag(i))
			So(child.Done(), ShouldBeTrue)
		}
		So(root.Children[1].Input, ShouldResemble, map[string]any{"input": "a"})
	})

	Convey("a failing step stops the sequence", t, func() {
		c, withCollector := newCollector()
		boom := errors.New("boom")
		var thirdCalled atomic.Bool

		seq, err := NewSequence(
			upperLambda(),
			NewLambda(func(input any) (any, error) { return nil, boom }, WithLambdaName("fail")),
			NewLambda(func(input any) any { thirdCalled.Store(true); return input }),
		)
		So(err, ShouldBeNil)

		_, err = seq.Invoke(ctx, "x", withCollector)
		So(err, ShouldEqual, boom)
		So(thirdCalled.Load(), ShouldBeFalse)

		root := c.Roots()[0]
		So(root.Err, ShouldEqual, boom)
		So(len(root.Children), ShouldEqual, 2)
		So(root.Children[0].Err, ShouldBeNil)
		So(root.Children[0].Output, ShouldResemble, map[string]any{"output": "X"})
		So(root.Children[1].Name, ShouldEqual, "fail")
		So(root.Children[1].Err, ShouldEqual, boom)
	})

	Convey("nested sequences nest their runs", t, func() {
		c, withCollector := newCollector()
		inner, _ := NewSequence(trimLambda(), upperLambda())
		outer, err := NewSequence(inner, NewPassthrough())
		So(err, ShouldBeNil)
		So(len(outer.Steps()), ShouldEqual, 2)

		out, err := outer.Invoke(ctx, " b ", withCollector)
		So(err, ShouldBeNil)
		So(out, ShouldEqual, "B")

		root := c.Roots()[0]
		So(root.Children[0].Name, ShouldEqual, "RunnableSequence")
		So(len(root.Children[0].Children), ShouldEqual, 2)
		So(root.Children[1].Name, ShouldEqual, "RunnablePassthrough")
	})
}

func TestSequenceConstruction(t *testing.T) {
	Convey("pipe flattens", t, func() {
		a, b, c := trimLambda(), upperLambda(), NewPassthrough()

		ab, err := a.Pipe(b)
		So(err, ShouldBeNil)
		abc, err := ab.Pipe(c)
		So(err, ShouldBeNil)

		steps := abc.Steps()
		So(len(steps), ShouldEqual, 3)
		So(steps[0], ShouldEqual, a)
		So(steps[1], ShouldEqual, b)
		So(steps[2], ShouldEqual, c)

		Convey("without mutating the receiver", func() {
			So(len(ab.Steps()), ShouldEqual, 2)
		})

		Convey("sequence arguments are spliced in", func() {
			d, e := NewPassthrough(), upperLambda()
			de, _ := d.Pipe(e)
			all, err := abc.Pipe(de)
			So(err, ShouldBeNil)
			So(all.Steps(), ShouldResemble, []Runnable{a, b, c, d, e})

			prefixed, err := a.Pipe(de)
			So(err, ShouldBeNil)
			So(prefixed.Steps(), ShouldResemble, []Runnable{a, d, e})
		})

		Convey("plain values are coerced", func() {
			s, err := ab.Pipe(map[string]any{"raw": NewPassthrough()})
			So(err, ShouldBeNil)
			_, ok := s.Steps()[2].(*Map)
			So(ok, ShouldBeTrue)

			_, err = ab.Pipe(42)
			So(errors.Is(err, ErrUnsupportedType), ShouldBeTrue)
		})
	})

	Convey("sequences need two steps", t, func() {
		_, err := NewSequence(trimLambda())
		So(errors.Is(err, ErrSequenceTooShort), ShouldBeTrue)
		So(errors.Is(err, ErrInvalidArgument), ShouldBeTrue)

		_, err = NewSequence()
		So(errors.Is(err, ErrSequenceTooShort), ShouldBeTrue)

		_, err = NewSequence(trimLambda(), "not a runnable")
		So(errors.Is(err, ErrUnsupportedType), ShouldBeTrue)
	})
}

func TestSequenceBatch(t *testing.T) {
	ctx := context.Background()

	Convey("every input has its own sequence run", t, func() {
		c, withCollector := newCollector()
		seq, _ := trimLambda().Pipe(upperLambda())

		outs, err := seq.Batch(ctx, []any{" a ", " b ", " c "},
			WithBatchOptions(withCollector), WithBatchConcurrency(2))
		So(err, ShouldBeNil)
		So(outs, ShouldResemble, []any{"A", "B", "C"})

		roots := c.Roots()
		So(len(roots), ShouldEqual, 3)
		for _, root := range roots {
			So(root.Name, ShouldEqual, "RunnableSequence")
			So(len(root.Children), ShouldEqual, 2)
			So(root.Children[0].Name, ShouldEqual, "trim")
			So(root.Children[1].Name, ShouldEqual, "upper")
		}
	})

	Convey("per input configs", t, func() {
		c := collector.New()
		seq, _ := trimLambda().Pipe(upperLambda())

		_, err := seq.Batch(ctx, []any{"a", "b"}, WithBatchConfigs(
			&Config{Callbacks: handlersOf(c), RunName: "first"},
			&Config{Callbacks: handlersOf(c), RunName: "second"},
		))
		So(err, ShouldBeNil)
		So(len(c.Find("first")), ShouldEqual, 1)
		So(len(c.Find("second")), ShouldEqual, 1)
		So(len(c.Find("trim")), ShouldEqual, 2)

		Convey("a mismatched config list fails before any run", func() {
			c.Reset()
			_, err := seq.Batch(ctx, []any{"a", "b"}, WithBatchConfigs(&Config{Callbacks: handlersOf(c)}))
			So(errors.Is(err, ErrBatchConfigLength), ShouldBeTrue)
			So(c.Runs(), ShouldBeEmpty)
		})
	})

	Convey("a failing step fails every run", t, func() {
		c, withCollector := newCollector()
		boom := errors.New("boom")
		seq, _ := NewSequence(upperLambda(), func(input any) (any, error) {
			if input == "B" {
				return nil, boom
			}
			return input, nil
		})

		_, err := seq.Batch(ctx, []any{"a", "b"}, WithBatchOptions(withCollector))
		So(err, ShouldEqual, boom)
		for _, root := range c.Roots() {
			So(root.Err, ShouldEqual, boom)
		}
	})

	Convey("empty batch", t, func() {
		seq, _ := trimLambda().Pipe(upperLambda())
		outs, err := seq.Batch(ctx, nil)
		So(err, ShouldBeNil)
		So(outs, ShouldBeEmpty)

		Convey("with a cancelled context", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			outs, err := seq.Batch(cctx, nil)
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
			So(outs, ShouldBeNil)
		})
	})

	Convey("every run gets back the context of its start", t, func() {
		var finished, lost atomic.Int32
		h := runContextChecker(&finished, &lost)
		seq, _ := trimLambda().Pipe(upperLambda())

		_, err := seq.Batch(ctx, []any{"a", "b"}, WithBatchOptions(WithCallbacks(h)))
		So(err, ShouldBeNil)
		// two sequence runs and two runs per step
		So(finished.Load(), ShouldEqual, int32(6))
		So(lost.Load(), ShouldEqual, int32(0))

		Convey("also when a step fails", func() {
			finished.Store(0)
			boom := errors.New("boom")
			failing, _ := NewSequence(upperLambda(), func(input any) (any, error) { return nil, boom })

			_, err := failing.Batch(ctx, []any{"a", "b"}, WithBatchOptions(WithCallbacks(h)))
			So(err, ShouldEqual, boom)
			So(finished.Load(), ShouldBeGreaterThanOrEqualTo, int32(4))
			So(lost.Load(), ShouldEqual, int32(0))
		})
	})
}

func TestSequenceStream(t *testing.T) {
	ctx := context.Background()

	words := func(chunks ...any) *Lambda {
		return StreamableLambda(func(_ context.Context, _ any) (*schema.StreamReader[any], error) {
			return schema.StreamReaderFromArray(chunks), nil
		}, WithLambdaName("words"))
	}

	Convey("the last step is streamed", t, func() {
		c, withCollector := newCollector()
		seq, _ := upperLambda().Pipe(words("a", "b", "c"))

		sr, err := seq.Stream(ctx, "x", withCollector)
		So(err, ShouldBeNil)
		chunks, err := schema.ReadAll(sr)
		So(err, ShouldBeNil)
		So(chunks, ShouldResemble, []any{"a", "b", "c"})

		root := c.Roots()[0]
		So(root.Output, ShouldResemble, map[string]any{"output": "abc"})
		So(len(root.Children), ShouldEqual, 2)
		So(root.Children[1].Name, ShouldEqual, "words")
		So(root.Children[1].ParentID, ShouldEqual, root.ID)
	})

	Convey("map chunks are merged", t, func() {
		c, withCollector := newCollector()
		seq, _ := NewPassthrough().Pipe(words(
			map[string]any{"text": "Hel", "tool_calls": []any{map[string]any{"index": 0, "args": `{"a"`}}},
			map[string]any{"text": "lo", "tool_calls": []any{map[string]any{"index": 0, "args": `:1}`}}},
		))

		sr, _ := seq.Stream(ctx, nil, withCollector)
		_, err := schema.ReadAll(sr)
		So(err, ShouldBeNil)
		So(c.Roots()[0].Output, ShouldResemble, map[string]any{
			"text":       "Hello",
			"tool_calls": []any{map[string]any{"index": 0, "args": `{"a":1}`}},
		})
	})

	Convey("chunks that cannot be merged drop the reported output", t, func() {
		c, withCollector := newCollector()
		seq, _ := NewPassthrough().Pipe(words(1, 2, 3))

		sr, _ := seq.Stream(ctx, nil, withCollector)
		chunks, err := schema.ReadAll(sr)
		So(err, ShouldBeNil)
		So(chunks, ShouldResemble, []any{1, 2, 3})

		root := c.Roots()[0]
		So(root.Err, ShouldBeNil)
		So(root.Output, ShouldResemble, map[string]any{"output": nil})
	})

	Convey("an early step failure is returned by Stream", t, func() {
		c, withCollector := newCollector()
		boom := errors.New("boom")
		seq, _ := NewSequence(func(input any) (any, error) { return nil, boom }, words("a"))

		sr, err := seq.Stream(ctx, "x", withCollector)
		So(sr, ShouldBeNil)
		So(err, ShouldEqual, boom)
		So(c.Roots()[0].Err, ShouldEqual, boom)
		So(len(c.Roots()[0].Children), ShouldEqual, 1)
	})

	Convey("a stream error reaches the consumer and the callbacks", t, func() {
		c, withCollector := newCollector()
		boom := errors.New("boom")
		failing := StreamableLambda(func(_ context.Context, _ any) (*schema.StreamReader[string], error) {
			sr, sw := schema.Pipe[string](0)
			go func() {
				defer sw.Close()
				sw.Send("a", nil)
				sw.Send("", boom)
			}()
			return sr, nil
		})
		seq, _ := NewPassthrough().Pipe(failing)

		sr, err := seq.Stream(ctx, nil, withCollector)
		So(err, ShouldBeNil)
		defer sr.Close()

		chunk, err := sr.Recv()
		So(err, ShouldBeNil)
		So(chunk, ShouldEqual, "a")
		_, err = sr.Recv()
		So(err, ShouldEqual, boom)

		So(waitDone(c, c.Roots()[0].ID), ShouldBeTrue)
		So(c.Roots()[0].Err, ShouldEqual, boom)
	})

	Convey("closing the stream early ends the run", t, func() {
		c, withCollector := newCollector()
		seq, _ := NewPassthrough().Pipe(words("a", "b", "c"))

		sr, _ := seq.Stream(ctx, nil, withCollector)
		chunk, err := sr.Recv()
		So(err, ShouldBeNil)
		So(chunk, ShouldEqual, "a")
		sr.Close()

		So(waitDone(c, c.Roots()[0].ID), ShouldBeTrue)
		So(errors.Is(c.Roots()[0].Err, ErrStreamClosed), ShouldBeTrue)
	})

	Convey("a sequence of plain steps streams one chunk", t, func() {
		seq, _ := trimLambda().Pipe(upperLambda())
		sr, err := seq.Stream(ctx, " z ")
		So(err, ShouldBeNil)
		chunk, err := sr.Recv()
		So(err, ShouldBeNil)
		So(chunk, ShouldEqual, "Z")
		_, err = sr.Recv()
		So(err, ShouldEqual, io.EOF)
	})
}

// waitDone waits for a run ended from another goroutine.
func waitDone(c *collector.Collector, id string) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if c.Finished(id) {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}
