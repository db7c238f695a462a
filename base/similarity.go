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

import "math"

// CosineSimilarity computes the cosine similarity between a pair of dense vectors.
// Zero vectors are similar to nothing.
func CosineSimilarity(a, b []float64) float64 {
	m, n, l := .0, .0, .0
	for i := range a {
		if i >= len(b) {
			break
		}
		m += a[i] * a[i]
		n += b[i] * b[i]
		l += a[i] * b[i]
	}
	if m == 0 || n == 0 {
		return 0
	}
	return l / (math.Sqrt(m) * math.Sqrt(n))
}

// MeanVector computes the element-wise mean of vectors with the same length.
func MeanVector(vectors ...[]float64) []float64 {
	if len(vectors) == 0 {
		return nil
	}
	mean := make([]float64, len(vectors[0]))
	for _, vector := range vectors {
		for i := range mean {
			mean[i] += vector[i]
		}
	}
	for i := range mean {
		mean[i] /= float64(len(vectors))
	}
	return mean
}
