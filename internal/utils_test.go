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

package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFloorPowerOf2(t *testing.T) {
	assert.Equal(t, 0, FloorPowerOf2(-1))
	assert.Equal(t, 0, FloorPowerOf2(0))
	assert.Equal(t, 1, FloorPowerOf2(1))
	assert.Equal(t, 2, FloorPowerOf2(2))
	assert.Equal(t, 2, FloorPowerOf2(3))
	assert.Equal(t, 4, FloorPowerOf2(4))
	assert.Equal(t, 32, FloorPowerOf2(32))
	assert.Equal(t, 32, FloorPowerOf2(63))
	assert.Equal(t, 1<<30, FloorPowerOf2((1<<31)-1))
}

func TestExactLog2(t *testing.T) {
	for i := 0; i < 31; i++ {
		k, err := ExactLog2(1 << i)
		assert.NoError(t, err)
		assert.Equal(t, i, k)
	}

	_, err := ExactLog2(0)
	assert.Error(t, err)
	_, err = ExactLog2(12)
	assert.Error(t, err)
}

func TestIsPowerOf2(t *testing.T) {
	assert.False(t, IsPowerOf2(-4))
	assert.False(t, IsPowerOf2(0))
	assert.True(t, IsPowerOf2(1))
	assert.True(t, IsPowerOf2(64))
	assert.False(t, IsPowerOf2(96))
}
