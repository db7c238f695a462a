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
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float64{1, 0, 1, 0}, []float64{1, 0, 1, 0}), 1e-9)
	assert.InDelta(t, 0.5, CosineSimilarity([]float64{1, 0, 1, 0}, []float64{1, 0, 0, 1}), 1e-9)
	assert.InDelta(t, 0.0, CosineSimilarity([]float64{1, 0, 1, 0}, []float64{0, 1, 0, 1}), 1e-9)
	assert.InDelta(t, 1.5/math.Sqrt(3), CosineSimilarity([]float64{.5, .5, 1, 0}, []float64{1, 0, 1, 0}), 1e-9)
	assert.Zero(t, CosineSimilarity([]float64{0, 0}, []float64{1, 0}))
}

func TestMeanVector(t *testing.T) {
	assert.Equal(t, []float64{.5, .5, 1}, MeanVector([]float64{1, 0, 1}, []float64{0, 1, 1}))
	assert.Nil(t, MeanVector())
}
