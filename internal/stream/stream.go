/*
 * Licensed to the Apache Software Foundation (ASF) under one or more
 * contributor license agreements.  See the NOTICE file distributed with
 * this work for additional information regarding copyright ownership.
 * The ASF licenses this file to You under the Apache License, Version 2.0
 * (the "License"); you may not use this file except in compliance with
 * the License.  You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package stream produces fixed-width key streams for sketch evaluation.
package stream

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math/rand"
)

// Source yields keys one at a time. Next returns io.EOF after the last key.
// The returned slice is only valid until the following call.
type Source interface {
	Next() ([]byte, error)
}

type zipfSource struct {
	zipf      *rand.Zipf
	key       []byte
	remaining int
}

// NewZipf returns a deterministic stream of length keys whose ids follow a
// Zipf distribution with the given skew over numKeys ids. Ids are written
// big endian into the last bytes of a keyLen-byte key.
func NewZipf(keyLen, numKeys int, skew float64, length int, seed int64) (Source, error) {
	if keyLen <= 0 {
		return nil, fmt.Errorf("key length must be positive, got %d", keyLen)
	}
	if numKeys < 1 {
		return nil, fmt.Errorf("number of keys must be positive, got %d", numKeys)
	}
	if skew <= 1 {
		return nil, fmt.Errorf("zipf skew must be greater than 1, got %v", skew)
	}
	if length < 0 {
		return nil, fmt.Errorf("stream length must not be negative, got %d", length)
	}
	rng := rand.New(rand.NewSource(seed))
	return &zipfSource{
		zipf:      rand.NewZipf(rng, skew, 1, uint64(numKeys-1)),
		key:       make([]byte, keyLen),
		remaining: length,
	}, nil
}

func (z *zipfSource) Next() ([]byte, error) {
	if z.remaining == 0 {
		return nil, io.EOF
	}
	z.remaining--
	PutID(z.key, z.zipf.Uint64())
	return z.key, nil
}

// PutID writes id big endian into the tail of key, truncating high bytes when
// the key is shorter than 8 bytes.
func PutID(key []byte, id uint64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], id)
	for i := range key {
		key[i] = 0
	}
	if len(key) >= 8 {
		copy(key[len(key)-8:], buf[:])
		return
	}
	copy(key, buf[8-len(key):])
}

type traceReader struct {
	r   *bufio.Reader
	key []byte
}

// NewTraceReader reads back-to-back keyLen-byte records, such as packet
// 5-tuples dumped from a capture.
func NewTraceReader(r io.Reader, keyLen int) (Source, error) {
	if keyLen <= 0 {
		return nil, fmt.Errorf("key length must be positive, got %d", keyLen)
	}
	return &traceReader{r: bufio.NewReader(r), key: make([]byte, keyLen)}, nil
}

func (t *traceReader) Next() ([]byte, error) {
	_, err := io.ReadFull(t.r, t.key)
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("truncated trace record: %w", err)
		}
		return nil, err
	}
	return t.key, nil
}

// Collect drains src into owned copies of every key.
func Collect(src Source) ([][]byte, error) {
	var keys [][]byte
	for {
		k, err := src.Next()
		if errors.Is(err, io.EOF) {
			return keys, nil
		}
		if err != nil {
			return nil, err
		}
		keys = append(keys, append([]byte(nil), k...))
	}
}
