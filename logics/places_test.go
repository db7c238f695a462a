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

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/gorse-io/tourism/dataset"
	"github.com/gorse-io/tourism/storage/data"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaceIndex(t *testing.T) {
	index, err := NewPlaceIndex(testPlaces(), "")
	require.NoError(t, err)
	assert.Equal(t, 13, index.Len())
	assert.Equal(t, []string{"Jakarta", "Yogyakarta"}, index.Cities())
	assert.Equal(t, 4, index.Count("Yogyakarta", dataset.Budaya))
	assert.Equal(t, []int{3, 4, 5, 6}, placeIds(index.Places("Yogyakarta", dataset.Budaya)))
	assert.True(t, index.Available("Jakarta", dataset.Bahari))
	assert.False(t, index.Available("Yogyakarta", dataset.Bahari))
	assert.False(t, index.Available("Surabaya", dataset.Bahari))
	assert.Empty(t, index.Places("Surabaya", dataset.Bahari))

	place, ok := index.Place(13)
	assert.True(t, ok)
	assert.Equal(t, "Grand Indonesia", place.PlaceName)
	_, ok = index.Place(99)
	assert.False(t, ok)
}

func TestPlaceIndex_Filter(t *testing.T) {
	index, err := NewPlaceIndex(testPlaces(), `place.City == "Yogyakarta" && place.PlaceId != 10`)
	require.NoError(t, err)
	assert.Equal(t, 9, index.Len())
	assert.Equal(t, []string{"Yogyakarta"}, index.Cities())
	assert.False(t, index.Available("Yogyakarta", dataset.TempatIbadah))

	_, err = NewPlaceIndex(testPlaces(), "place.City ==")
	assert.Error(t, err)
	_, err = NewPlaceIndex(testPlaces(), "place.PlaceId")
	assert.True(t, errors.Is(err, errors.NotValid))
}

func TestSamplingSelector(t *testing.T) {
	index, err := NewPlaceIndex(testPlaces(), "")
	require.NoError(t, err)
	selector := NewSamplingSelector(index, 42)
	assert.Equal(t, SamplingSelection, selector.Name())
	profile := Profile{Gender: dataset.GenderMale, AgeGroup: dataset.AgeYoungAdult, City: "Yogyakarta", TripType: dataset.SoloTrip}

	places := selector.Select(dataset.Budaya, "Yogyakarta", profile, 2, nil)
	assert.Len(t, places, 2)
	assert.Len(t, lo.Uniq(placeIds(places)), 2)
	for _, place := range places {
		assert.Equal(t, "Budaya", place.Category)
		assert.Equal(t, "Yogyakarta", place.City)
	}
	// a fixed seed gives the same places
	assert.Equal(t, places, selector.Select(dataset.Budaya, "Yogyakarta", profile, 2, nil))

	// fewer candidates than requested
	assert.Equal(t, []int{1, 2}, placeIds(selector.Select(dataset.CagarAlam, "Yogyakarta", profile, 3, nil)))
	// empty bucket
	assert.Empty(t, selector.Select(dataset.Bahari, "Yogyakarta", profile, 3, nil))
	assert.Empty(t, selector.Select(dataset.Budaya, "Yogyakarta", profile, 0, nil))
	// excluded places are never picked
	places = selector.Select(dataset.Budaya, "Yogyakarta", profile, 3, mapset.NewSet(3, 4))
	assert.Equal(t, []int{5, 6}, placeIds(places))
}

func TestSamplingSelector_ClockSeed(t *testing.T) {
	index, err := NewPlaceIndex(testPlaces(), "")
	require.NoError(t, err)
	selector := NewSamplingSelector(index, 0)
	for i := 0; i < 10; i++ {
		places := selector.Select(dataset.Budaya, "Yogyakarta", Profile{}, 3, nil)
		assert.Len(t, places, 3)
		assert.Len(t, lo.Uniq(placeIds(places)), 3)
		assert.Subset(t, []int{3, 4, 5, 6}, placeIds(places))
	}
}

func TestRatingSelector(t *testing.T) {
	index, err := NewPlaceIndex(testPlaces(), "")
	require.NoError(t, err)
	selector := NewRatingSelector(index, testPlaceRatings())
	assert.Equal(t, RatingSelection, selector.Name())
	male := Profile{Gender: dataset.GenderMale, AgeGroup: dataset.AgeYoungAdult, City: "Yogyakarta", TripType: dataset.SoloTrip}

	places := selector.Select(dataset.Budaya, "Yogyakarta", male, 3, nil)
	assert.Equal(t, []int{4, 3, 5}, placeIds(places))
	assert.Equal(t, 4.5, *places[0].Rating)
	assert.Equal(t, 20, *places[0].RatingCount)
	assert.Equal(t, "Keraton Yogyakarta", places[0].PlaceName)
	// the index keeps its own copy
	place, _ := index.Place(4)
	assert.Nil(t, place.Rating)

	// deterministic
	assert.Equal(t, places, selector.Select(dataset.Budaya, "Yogyakarta", male, 3, nil))
	assert.Equal(t, []int{4}, placeIds(selector.Select(dataset.Budaya, "Yogyakarta", male, 1, nil)))
	assert.Equal(t, []int{3, 5}, placeIds(selector.Select(dataset.Budaya, "Yogyakarta", male, 3, mapset.NewSet(4))))

	// places without ratings are not returned
	assert.Empty(t, selector.Select(dataset.CagarAlam, "Yogyakarta", male, 3, nil))
	adult := male
	adult.AgeGroup = dataset.AgeAdult
	assert.Empty(t, selector.Select(dataset.Budaya, "Yogyakarta", adult, 3, nil))
}

func TestRatingSelector_Unspecified(t *testing.T) {
	index, err := NewPlaceIndex(testPlaces(), "")
	require.NoError(t, err)
	selector := NewRatingSelector(index, testPlaceRatings())
	profile := Profile{Gender: dataset.GenderUnspecified, AgeGroup: dataset.AgeYoungAdult, City: "Yogyakarta", TripType: dataset.SoloTrip}
	places := selector.Select(dataset.Budaya, "Yogyakarta", profile, 3, nil)
	assert.Equal(t, []int{6, 5, 4}, placeIds(places))
	assert.Equal(t, 4.8, *places[1].Rating)
	assert.Equal(t, 7, *places[1].RatingCount)
}

func TestRatingSelector_UnknownPlaces(t *testing.T) {
	index, err := NewPlaceIndex(testPlaces(), `place.PlaceId != 4`)
	require.NoError(t, err)
	selector := NewRatingSelector(index, append(testPlaceRatings(), data.PlaceRating{
		PlaceId: 4, Gender: "Laki-laki", AgeGroup: "Young Adult", AverageRating: 5, RatingCount: 1,
	}))
	profile := Profile{Gender: dataset.GenderMale, AgeGroup: dataset.AgeYoungAdult, City: "Yogyakarta", TripType: dataset.SoloTrip}
	assert.Equal(t, []int{3, 5}, placeIds(selector.Select(dataset.Budaya, "Yogyakarta", profile, 3, nil)))
}
