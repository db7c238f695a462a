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

const (
	AvailabilityFirstPolicy = "availability_first"
	TopNPolicy              = "top_n"
)

// CategorySelector picks n categories from boosted categories sorted by final score.
type CategorySelector interface {
	Name() string
	Select(boosted []ScoredCategory, city string, n int) []ScoredCategory
}

// AvailabilityFirstSelector picks categories with places in the city before categories without.
// Both groups keep their score order.
type AvailabilityFirstSelector struct {
	index *PlaceIndex
}

func NewAvailabilityFirstSelector(index *PlaceIndex) *AvailabilityFirstSelector {
	return &AvailabilityFirstSelector{index: index}
}

func (s *AvailabilityFirstSelector) Name() string {
	return AvailabilityFirstPolicy
}

func (s *AvailabilityFirstSelector) Select(boosted []ScoredCategory, city string, n int) []ScoredCategory {
	var availableCategories, unavailableCategories []ScoredCategory
	for _, category := range boosted {
		if s.index.Available(city, category.Category) {
			availableCategories = append(availableCategories, category)
		} else {
			unavailableCategories = append(unavailableCategories, category)
		}
	}
	return takeFirst(append(availableCategories, unavailableCategories...), n)
}

// TopNSelector picks the first n categories regardless of places.
type TopNSelector struct{}

func (s *TopNSelector) Name() string {
	return TopNPolicy
}

func (s *TopNSelector) Select(boosted []ScoredCategory, _ string, n int) []ScoredCategory {
	return takeFirst(boosted, n)
}

func takeFirst(categories []ScoredCategory, n int) []ScoredCategory {
	if n < 0 {
		n = 0
	}
	if len(categories) > n {
		categories = categories[:n]
	}
	return append([]ScoredCategory{}, categories...)
}
