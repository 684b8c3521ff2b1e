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

package schema

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/smartystreets/goconvey/convey"
	"github.com/stretchr/testify/assert"
)

func TestPipe(t *testing.T) {
	convey.Convey("Pipe", t, func() {
		convey.Convey("chunks arrive in order and the reader ends with EOF", func() {
			sr, sw := Pipe[int](2)
			go func() {
				defer sw.Close()
				for i := 0; i < 5; i++ {
					sw.Send(i, nil)
				}
			}()

			chunks, err := ReadAll(sr)
			convey.So(err, convey.ShouldBeNil)
			convey.So(chunks, convey.ShouldResemble, []int{0, 1, 2, 3, 4})

			_, err = sr.Recv()
			convey.So(err, convey.ShouldEqual, io.EOF)
		})

		convey.Convey("errors are delivered in band", func() {
			boom := errors.New("boom")
			sr, sw := Pipe[string](1)
			go func() {
				defer sw.Close()
				sw.Send("a", nil)
				sw.Send("", boom)
			}()

			chunks, err := ReadAll(sr)
			convey.So(err, convey.ShouldEqual, boom)
			convey.So(chunks, convey.ShouldResemble, []string{"a"})
		})

		convey.Convey("the sender learns when the reader is closed", func() {
			sr, sw := Pipe[int](0)
			sr.Close()
			sr.Close()

			convey.So(sw.Send(1, nil), convey.ShouldBeTrue)
			sw.Close()
		})
	})
}

func TestStreamReaderFromArray(t *testing.T) {
	sr := StreamReaderFromArray([]string{"x", "y"})
	defer sr.Close()

	v, err := sr.Recv()
	assert.NoError(t, err)
	assert.Equal(t, "x", v)
	v, err = sr.Recv()
	assert.NoError(t, err)
	assert.Equal(t, "y", v)
	_, err = sr.Recv()
	assert.Equal(t, io.EOF, err)

	chunks, err := ReadAll(StreamReaderFromArray[int](nil))
	assert.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestStreamReaderWithConvert(t *testing.T) {
	t.Run("convert and skip", func(t *testing.T) {
		sr := StreamReaderWithConvert(StreamReaderFromArray([]int{1, 2, 3, 4}), func(i int) (string, error) {
			if i%2 == 0 {
				return "", ErrNoValue
			}
			return fmt.Sprintf("val_%d", i), nil
		})

		chunks, err := ReadAll(sr)
		assert.NoError(t, err)
		assert.Equal(t, []string{"val_1", "val_3"}, chunks)
	})

	t.Run("convert error", func(t *testing.T) {
		boom := errors.New("boom")
		sr := StreamReaderWithConvert(StreamReaderFromArray([]int{1, 2}), func(i int) (int, error) {
			if i == 2 {
				return 0, boom
			}
			return i * 10, nil
		})

		chunks, err := ReadAll(sr)
		assert.Equal(t, boom, err)
		assert.Equal(t, []int{10}, chunks)
	})

	t.Run("close reaches the source", func(t *testing.T) {
		src, sw := Pipe[int](0)
		sr := StreamReaderWithConvert(src, func(i int) (int, error) { return i, nil })
		sr.Close()

		assert.True(t, sw.Send(1, nil))
		sw.Close()
	})
}

func TestDocument(t *testing.T) {
	doc := &Document{ID: "1", Content: "hello"}
	assert.Equal(t, "hello", doc.String())
	assert.Zero(t, doc.Score())

	assert.Same(t, doc, doc.WithScore(0.5))
	assert.Equal(t, 0.5, doc.Score())
	assert.Equal(t, map[string]any{"_score": 0.5}, doc.MetaData)
}
