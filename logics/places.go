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
	"reflect"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/gorse-io/tourism/base"
	"github.com/gorse-io/tourism/dataset"
	"github.com/gorse-io/tourism/storage/data"
	"github.com/juju/errors"
	"github.com/samber/lo"
)

const (
	SamplingSelection = "sampling"
	RatingSelection   = "rating"
)

// PlaceIndex groups places by city and category. Places rejected by the filter are left out.
type PlaceIndex struct {
	places  map[int]data.Place
	buckets map[string]map[dataset.Category][]data.Place
	cities  []string
}

// NewPlaceIndex indexes places. The filter is an expression over place, e.g. `place.Description != ""`.
func NewPlaceIndex(places []data.Place, filter string) (*PlaceIndex, error) {
	var filterFunc *vm.Program
	if filter != "" {
		var err error
		filterFunc, err = expr.Compile(filter, expr.Env(map[string]any{
			"place": data.Place{},
		}))
		if err != nil {
			return nil, errors.Trace(err)
		}
		if filterFunc.Node().Type().Kind() != reflect.Bool {
			return nil, errors.NotValidf("place filter %q must return bool", filter)
		}
	}
	index := &PlaceIndex{
		places:  make(map[int]data.Place),
		buckets: make(map[string]map[dataset.Category][]data.Place),
	}
	for _, place := range places {
		if filterFunc != nil {
			result, err := expr.Run(filterFunc, map[string]any{
				"place": place,
			})
			if err != nil {
				return nil, errors.Annotatef(err, "evaluate place filter on place %d", place.PlaceId)
			}
			if !result.(bool) {
				continue
			}
		}
		index.places[place.PlaceId] = place
		if _, exist := index.buckets[place.City]; !exist {
			index.buckets[place.City] = make(map[dataset.Category][]data.Place)
			index.cities = append(index.cities, place.City)
		}
		category := dataset.Category(place.Category)
		index.buckets[place.City][category] = append(index.buckets[place.City][category], place)
	}
	sort.Strings(index.cities)
	return index, nil
}

// Places in a city and category, in table order.
func (idx *PlaceIndex) Places(city string, category dataset.Category) []data.Place {
	return idx.buckets[city][category]
}

func (idx *PlaceIndex) Count(city string, category dataset.Category) int {
	return len(idx.buckets[city][category])
}

func (idx *PlaceIndex) Available(city string, category dataset.Category) bool {
	return idx.Count(city, category) > 0
}

func (idx *PlaceIndex) Place(id int) (data.Place, bool) {
	place, ok := idx.places[id]
	return place, ok
}

// Cities with at least one place.
func (idx *PlaceIndex) Cities() []string {
	return idx.cities
}

func (idx *PlaceIndex) Len() int {
	return len(idx.places)
}

// PlaceSelector picks up to n places of a category in a city. Places in exclude are never picked.
// The result may be shorter than n or empty.
type PlaceSelector interface {
	Name() string
	Select(category dataset.Category, city string, profile Profile, n int, exclude mapset.Set[int]) []data.Place
}

func available(places []data.Place, exclude mapset.Set[int]) []data.Place {
	if exclude == nil || exclude.Cardinality() == 0 {
		return places
	}
	return lo.Filter(places, func(place data.Place, _ int) bool {
		return !exclude.Contains(place.PlaceId)
	})
}

// SamplingSelector samples places uniformly without replacement. A zero seed derives a new seed from
// the clock on every call, so identical requests may get different places.
type SamplingSelector struct {
	index *PlaceIndex
	seed  int64
}

func NewSamplingSelector(index *PlaceIndex, seed int64) *SamplingSelector {
	return &SamplingSelector{index: index, seed: seed}
}

func (s *SamplingSelector) Name() string {
	return SamplingSelection
}

func (s *SamplingSelector) Select(category dataset.Category, city string, _ Profile, n int, exclude mapset.Set[int]) []data.Place {
	candidates := available(s.index.Places(city, category), exclude)
	if n <= 0 || len(candidates) == 0 {
		return []data.Place{}
	}
	if len(candidates) < n {
		return append([]data.Place{}, candidates...)
	}
	var rng base.RandomGenerator
	if s.seed != 0 {
		rng = base.NewRandomGenerator(s.seed)
	} else {
		rng = base.NewClockGenerator()
	}
	return lo.Map(rng.Choice(len(candidates), n), func(i int, _ int) data.Place {
		return candidates[i]
	})
}

type ratingKey struct {
	City     string
	Category dataset.Category
	Gender   dataset.Gender
	AgeGroup dataset.AgeGroup
}

// RatingSelector ranks places by the average rating given by the same demographic. An unspecified
// gender merges the ratings of every concrete gender, keeping the better rating of each place.
type RatingSelector struct {
	index   *PlaceIndex
	ratings map[ratingKey][]data.PlaceRating
}

func NewRatingSelector(index *PlaceIndex, ratings []data.PlaceRating) *RatingSelector {
	selector := &RatingSelector{
		index:   index,
		ratings: make(map[ratingKey][]data.PlaceRating),
	}
	for _, rating := range ratings {
		place, ok := index.Place(rating.PlaceId)
		if !ok {
			continue
		}
		key := ratingKey{
			City:     place.City,
			Category: dataset.Category(place.Category),
			Gender:   dataset.Gender(rating.Gender),
			AgeGroup: dataset.AgeGroup(rating.AgeGroup),
		}
		selector.ratings[key] = append(selector.ratings[key], rating)
	}
	return selector
}

func (s *RatingSelector) Name() string {
	return RatingSelection
}

func higherRated(a, b data.PlaceRating) bool {
	if a.AverageRating != b.AverageRating {
		return a.AverageRating > b.AverageRating
	}
	if a.RatingCount != b.RatingCount {
		return a.RatingCount > b.RatingCount
	}
	return a.PlaceId < b.PlaceId
}

func (s *RatingSelector) Select(category dataset.Category, city string, profile Profile, n int, exclude mapset.Set[int]) []data.Place {
	if n <= 0 {
		return []data.Place{}
	}
	genders := []dataset.Gender{profile.Gender}
	if profile.Gender.IsUnspecified() {
		genders = dataset.ConcreteGenders
	}
	best := make(map[int]data.PlaceRating)
	for _, gender := range genders {
		for _, rating := range s.ratings[ratingKey{city, category, gender, profile.AgeGroup}] {
			if exclude != nil && exclude.Contains(rating.PlaceId) {
				continue
			}
			if current, exist := best[rating.PlaceId]; !exist || higherRated(rating, current) {
				best[rating.PlaceId] = rating
			}
		}
	}
	ratings := lo.Values(best)
	sort.Slice(ratings, func(i, j int) bool {
		return higherRated(ratings[i], ratings[j])
	})
	if len(ratings) > n {
		ratings = ratings[:n]
	}
	return lo.Map(ratings, func(rating data.PlaceRating, _ int) data.Place {
		place, _ := s.index.Place(rating.PlaceId)
		place.Rating = lo.ToPtr(rating.AverageRating)
		place.RatingCount = lo.ToPtr(rating.RatingCount)
		return place
	})
}
