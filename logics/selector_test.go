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

package logics

import (
	"testing"

	"github.com/gorse-io/tourism/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boostedForSoloMale(t *testing.T) []ScoredCategory {
	scorer, err := NewSimilarityScorer(testEncoder(), testRules())
	require.NoError(t, err)
	scored := scorer.Score(Profile{Gender: dataset.GenderMale, AgeGroup: dataset.AgeYoungAdult})
	return NewFractionalBooster(DefaultTripTypeBonus).Boost(scored, dataset.SoloTrip)
}

func TestAvailabilityFirstSelector(t *testing.T) {
	index, err := NewPlaceIndex(testPlaces(), "")
	require.NoError(t, err)
	selector := NewAvailabilityFirstSelector(index)
	assert.Equal(t, AvailabilityFirstPolicy, selector.Name())
	boosted := boostedForSoloMale(t)

	selected := selector.Select(boosted, "Yogyakarta", 3)
	assert.Equal(t, []dataset.Category{dataset.CagarAlam, dataset.Budaya, dataset.TamanHiburan}, categoriesOf(selected))

	// categories without places come last in score order
	selected = selector.Select(boosted, "Yogyakarta", 10)
	assert.Equal(t, []dataset.Category{
		dataset.CagarAlam, dataset.Budaya, dataset.TamanHiburan, dataset.TempatIbadah, dataset.Bahari, dataset.PusatPerbelanjaan,
	}, categoriesOf(selected))

	// no places at all
	selected = selector.Select(boosted, "Surabaya", 2)
	assert.Equal(t, []dataset.Category{dataset.CagarAlam, dataset.Budaya}, categoriesOf(selected))

	assert.Empty(t, selector.Select(boosted, "Yogyakarta", 0))
}

func TestAvailabilityFirstSelector_Property(t *testing.T) {
	index, err := NewPlaceIndex(testPlaces(), "")
	require.NoError(t, err)
	selector := NewAvailabilityFirstSelector(index)
	boosted := boostedForSoloMale(t)
	for _, city := range []string{"Yogyakarta", "Jakarta", "Bandung"} {
		for n := 1; n <= len(boosted); n++ {
			selected := selector.Select(boosted, city, n)
			assert.Len(t, selected, n)
			// an unavailable category is never picked before an available one
			seenUnavailable := false
			for _, category := range selected {
				if !index.Available(city, category.Category) {
					seenUnavailable = true
				} else {
					assert.False(t, seenUnavailable, "city %s n %d", city, n)
				}
			}
		}
	}
}

func TestTopNSelector(t *testing.T) {
	selector := &TopNSelector{}
	assert.Equal(t, TopNPolicy, selector.Name())
	boosted := boostedForSoloMale(t)
	selected := selector.Select(boosted, "Yogyakarta", 3)
	assert.Equal(t, []dataset.Category{dataset.CagarAlam, dataset.Budaya, dataset.Bahari}, categoriesOf(selected))
	assert.Len(t, selector.Select(boosted, "Yogyakarta", 100), len(boosted))
	assert.Empty(t, selector.Select(boosted, "Yogyakarta", -1))

	// the result does not alias the input
	selected[0].FinalScore = -1
	assert.NotEqual(t, -1.0, boosted[0].FinalScore)
}
