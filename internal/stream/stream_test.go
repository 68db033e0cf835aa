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

package stream

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZipf(t *testing.T) {
	_, err := NewZipf(0, 10, 1.1, 10, 1)
	assert.Error(t, err)
	_, err = NewZipf(4, 0, 1.1, 10, 1)
	assert.Error(t, err)
	_, err = NewZipf(4, 10, 1.0, 10, 1)
	assert.Error(t, err)
	_, err = NewZipf(4, 10, 1.1, -1, 1)
	assert.Error(t, err)

	src, err := NewZipf(13, 1000, 1.1, 5000, 42)
	require.NoError(t, err)
	keys, err := Collect(src)
	require.NoError(t, err)
	assert.Len(t, keys, 5000)

	counts := make(map[string]int)
	for _, k := range keys {
		assert.Len(t, k, 13)
		counts[string(k)]++
	}
	var zero [13]byte
	// id 0 is the most frequent id
	for k, c := range counts {
		assert.LessOrEqual(t, c, counts[string(zero[:])], "%x", k)
	}

	src2, err := NewZipf(13, 1000, 1.1, 5000, 42)
	require.NoError(t, err)
	again, err := Collect(src2)
	require.NoError(t, err)
	assert.Equal(t, keys, again)
}

func TestPutID(t *testing.T) {
	k := make([]byte, 4)
	PutID(k, 0x01020304)
	assert.Equal(t, []byte{1, 2, 3, 4}, k)

	k = make([]byte, 10)
	PutID(k, 0x0102)
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0, 0, 1, 2}, k)

	k = []byte{9, 9}
	PutID(k, 0x010203)
	assert.Equal(t, []byte{2, 3}, k)
}

func TestTraceReader(t *testing.T) {
	_, err := NewTraceReader(bytes.NewReader(nil), 0)
	assert.Error(t, err)

	data := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	src, err := NewTraceReader(bytes.NewReader(data), 4)
	require.NoError(t, err)
	keys, err := Collect(src)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{{1, 2, 3, 4}, {5, 6, 7, 8}}, keys)

	src, err = NewTraceReader(bytes.NewReader(data[:6]), 4)
	require.NoError(t, err)
	_, err = Collect(src)
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))

	src, err = NewTraceReader(bytes.NewReader(nil), 4)
	require.NoError(t, err)
	_, err = src.Next()
	assert.Equal(t, io.EOF, err)
}
