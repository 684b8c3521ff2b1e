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
	"io"
	"sync"
)

// ErrNoValue is used during StreamReaderWithConvert to skip a chunk, excluding it from the converted stream.
// e.g.
//
//	outStream = schema.StreamReaderWithConvert(s,
//		func(src string) (string, error) {
//			if len(src) == 0 {
//				return "", schema.ErrNoValue
//			}
//			return src, nil
//		})
//
// DO NOT use it under other circumstances.
var ErrNoValue = errors.New("no value")

// Pipe creates a new stream with the given capacity, represented by a StreamReader and a StreamWriter.
// The capacity is the maximum number of chunks that can be buffered in the stream.
// e.g.
//
//	sr, sw := schema.Pipe[string](3)
//	go func() {
//		defer sw.Close()
//		for i := 0; i < 10; i++ {
//			sw.Send(strconv.Itoa(i), nil)
//		}
//	}()
//
//	defer sr.Close()
//	for {
//		chunk, err := sr.Recv()
//		if errors.Is(err, io.EOF) {
//			break
//		}
//		fmt.Println(chunk)
//	}
func Pipe[T any](cap int) (*StreamReader[T], *StreamWriter[T]) {
	stm := newStream[T](cap)
	return stm.asReader(), &StreamWriter[T]{stm: stm}
}

// StreamWriter the sender of a stream, created by Pipe.
type StreamWriter[T any] struct {
	stm *stream[T]
}

// Send sends a chunk, or an error, to the stream.
// closed reports that the receiver has stopped receiving, the sender should stop sending.
func (sw *StreamWriter[T]) Send(chunk T, err error) (closed bool) {
	return sw.stm.send(chunk, err)
}

// Close notifies the receiver that the sender has finished.
// The receiver will get io.EOF from StreamReader.Recv.
// Notice: always remember to call Close() after sending all data.
func (sw *StreamWriter[T]) Close() {
	sw.stm.closeSend()
}

// StreamReader the receiver of a stream.
// Created by Pipe, StreamReaderFromArray or StreamReaderWithConvert.
//
//	defer sr.Close()
//	for {
//		chunk, err := sr.Recv()
//		if errors.Is(err, io.EOF) {
//			break
//		}
//		if err != nil {
//			// handle error
//		}
//		fmt.Println(chunk)
//	}
type StreamReader[T any] struct {
	typ readerType

	st *stream[T]

	ar *arrayReader[T]

	srw *streamReaderWithConvert[T]
}

// Recv receives the next chunk. It returns io.EOF once the stream is exhausted.
func (sr *StreamReader[T]) Recv() (T, error) {
	switch sr.typ {
	case readerTypeStream:
		return sr.st.recv()
	case readerTypeArray:
		return sr.ar.recv()
	case readerTypeWithConvert:
		return sr.srw.recv()
	default:
		panic("impossible")
	}
}

// Close tells the sender that no more chunks will be received.
// Closing more than once is a no-op.
// Notice: always remember to call Close() after using Recv().
func (sr *StreamReader[T]) Close() {
	switch sr.typ {
	case readerTypeStream:
		sr.st.closeRecv()
	case readerTypeArray:

	case readerTypeWithConvert:
		sr.srw.close()
	default:
		panic("impossible")
	}
}

func (sr *StreamReader[T]) recvAny() (any, error) {
	return sr.Recv()
}

type readerType int

const (
	readerTypeStream readerType = iota
	readerTypeArray
	readerTypeWithConvert
)

type iStreamReader interface {
	recvAny() (any, error)
	Close()
}

// stream is a channel-based stream with 1 sender and 1 receiver.
// The sender calls closeSend() to notify the receiver that the stream sender has finished.
// The receiver calls closeRecv() to notify the sender that the receiver stop receiving.
type stream[T any] struct {
	items chan streamItem[T]

	closed    chan struct{}
	closeOnce sync.Once
}

type streamItem[T any] struct {
	chunk T
	err   error
}

func newStream[T any](cap int) *stream[T] {
	return &stream[T]{
		items:  make(chan streamItem[T], cap),
		closed: make(chan struct{}),
	}
}

func (s *stream[T]) asReader() *StreamReader[T] {
	return &StreamReader[T]{typ: readerTypeStream, st: s}
}

func (s *stream[T]) recv() (chunk T, err error) {
	item, ok := <-s.items

	if !ok {
		item.err = io.EOF
	}

	return item.chunk, item.err
}

func (s *stream[T]) send(chunk T, err error) (closed bool) {
	// if the stream is closed, return immediately
	select {
	case <-s.closed:
		return true
	default:
	}

	item := streamItem[T]{chunk, err}

	select {
	case <-s.closed:
		return true
	case s.items <- item:
		return false
	}
}

func (s *stream[T]) closeSend() {
	close(s.items)
}

func (s *stream[T]) closeRecv() {
	s.closeOnce.Do(func() {
		close(s.closed)
	})
}

// StreamReaderFromArray creates a StreamReader yielding the elements of arr in order.
//
//	sr := schema.StreamReaderFromArray([]int{1, 2, 3})
//	defer sr.Close()
func StreamReaderFromArray[T any](arr []T) *StreamReader[T] {
	return &StreamReader[T]{ar: &arrayReader[T]{arr: arr}, typ: readerTypeArray}
}

type arrayReader[T any] struct {
	arr   []T
	index int
}

func (ar *arrayReader[T]) recv() (T, error) {
	if ar.index < len(ar.arr) {
		ret := ar.arr[ar.index]
		ar.index++

		return ret, nil
	}

	var t T
	return t, io.EOF
}

type streamReaderWithConvert[T any] struct {
	sr iStreamReader

	convert func(any) (T, error)
}

// StreamReaderWithConvert converts the stream reader to another stream reader.
// Chunks for which convert returns ErrNoValue are dropped.
//
//	intReader := schema.StreamReaderFromArray([]int{1, 2, 3})
//	stringReader := schema.StreamReaderWithConvert(intReader, func(i int) (string, error) {
//		return fmt.Sprintf("val_%d", i), nil
//	})
//
//	defer stringReader.Close() // Close the reader if you using Recv(), or may cause memory/goroutine leak.
//	s, err := stringReader.Recv()
//	fmt.Println(s) // Output: val_1
func StreamReaderWithConvert[T, D any](sr *StreamReader[T], convert func(T) (D, error)) *StreamReader[D] {
	c := func(a any) (D, error) {
		return convert(a.(T))
	}

	return &StreamReader[D]{
		typ: readerTypeWithConvert,
		srw: &streamReaderWithConvert[D]{sr: sr, convert: c},
	}
}

func (srw *streamReaderWithConvert[T]) recv() (T, error) {
	for {
		out, err := srw.sr.recvAny()
		if err != nil {
			var t T
			return t, err
		}

		t, err := srw.convert(out)
		if err == nil {
			return t, nil
		}

		if !errors.Is(err, ErrNoValue) {
			return t, err
		}
	}
}

func (srw *streamReaderWithConvert[T]) close() {
	srw.sr.Close()
}

// ReadAll drains sr into a slice, closing it afterwards.
// It stops at the first error other than io.EOF and returns the chunks read so far.
func ReadAll[T any](sr *StreamReader[T]) ([]T, error) {
	defer sr.Close()

	var ret []T
	for {
		chunk, err := sr.Recv()
		if errors.Is(err, io.EOF) {
			return ret, nil
		}
		if err != nil {
			return ret, err
		}
		ret = append(ret, chunk)
	}
}
