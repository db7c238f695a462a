// Copyright 2026 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package base

import (
	"math/rand"
	"time"
)

// RandomGenerator is the random generator used by place sampling.
type RandomGenerator struct {
	*rand.Rand
}

// NewRandomGenerator creates a RandomGenerator.
func NewRandomGenerator(seed int64) RandomGenerator {
	return RandomGenerator{rand.New(rand.NewSource(seed))}
}

// NewClockGenerator creates a RandomGenerator seeded from the wall clock in milliseconds,
// truncated to 32 bits. Two generators created in the same millisecond produce the same stream.
func NewClockGenerator() RandomGenerator {
	return NewRandomGenerator(ClockSeed())
}

// ClockSeed derives a seed from the current time.
func ClockSeed() int64 {
	return time.Now().UnixMilli() % (1 << 32)
}

// Choice picks n distinct indices from [0, size) uniformly at random, in random order.
// All indices are returned (in random order) when n >= size.
func (rng RandomGenerator) Choice(size, n int) []int {
	if n > size {
		n = size
	}
	if n <= 0 {
		return []int{}
	}
	pool := make([]int, size)
	for i := range pool {
		pool[i] = i
	}
	// partial Fisher-Yates
	for i := 0; i < n; i++ {
		j := i + rng.Intn(size-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:n]
}

// WeightedChoice picks an index with probability proportional to its weight.
func (rng RandomGenerator) WeightedChoice(weights []float64) int {
	var sum float64
	for _, w := range weights {
		sum += w
	}
	r := rng.Float64() * sum
	for i, w := range weights {
		if r < w {
			return i
		}
		r -= w
	}
	return len(weights) - 1
}
