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
	"sort"

	"github.com/gorse-io/tourism/dataset"
)

const (
	FractionalBoosting = "fractional"
	RankBoosting       = "rank"
)

// DefaultTripTypeBonus is added when the trip type recorded by a rule equals the requested trip type.
const DefaultTripTypeBonus = 0.1

var fractionalWeights = map[dataset.TripType]map[dataset.Category]float64{
	dataset.SoloTrip: {
		dataset.CagarAlam:         0.3,
		dataset.Bahari:            0.25,
		dataset.Budaya:            0.2,
		dataset.TamanHiburan:      0.15,
		dataset.TempatIbadah:      0.1,
		dataset.PusatPerbelanjaan: 0.05,
	},
	dataset.FamilyTrip: {
		dataset.TamanHiburan:      0.3,
		dataset.PusatPerbelanjaan: 0.25,
		dataset.Bahari:            0.2,
		dataset.CagarAlam:         0.15,
		dataset.Budaya:            0.1,
		dataset.TempatIbadah:      0.05,
	},
	dataset.CoupleTrip: {
		dataset.Bahari:            0.3,
		dataset.Budaya:            0.25,
		dataset.TamanHiburan:      0.2,
		dataset.PusatPerbelanjaan: 0.15,
		dataset.CagarAlam:         0.1,
		dataset.TempatIbadah:      0.05,
	},
	dataset.FriendsTrip: {
		dataset.TamanHiburan:      0.3,
		dataset.Bahari:            0.25,
		dataset.PusatPerbelanjaan: 0.2,
		dataset.CagarAlam:         0.15,
		dataset.Budaya:            0.1,
		dataset.TempatIbadah:      0.05,
	},
}

var rankWeights = map[dataset.TripType]map[dataset.Category]int{
	dataset.SoloTrip: {
		dataset.CagarAlam:         6,
		dataset.Bahari:            5,
		dataset.Budaya:            4,
		dataset.TamanHiburan:      3,
		dataset.TempatIbadah:      2,
		dataset.PusatPerbelanjaan: 1,
	},
	dataset.FamilyTrip: {
		dataset.TamanHiburan:      6,
		dataset.PusatPerbelanjaan: 5,
		dataset.Bahari:            4,
		dataset.CagarAlam:         3,
		dataset.Budaya:            2,
		dataset.TempatIbadah:      1,
	},
	dataset.CoupleTrip: {
		dataset.Bahari:            6,
		dataset.Budaya:            5,
		dataset.TamanHiburan:      4,
		dataset.PusatPerbelanjaan: 3,
		dataset.CagarAlam:         2,
		dataset.TempatIbadah:      1,
	},
	dataset.FriendsTrip: {
		dataset.TamanHiburan:      6,
		dataset.Bahari:            5,
		dataset.PusatPerbelanjaan: 4,
		dataset.CagarAlam:         3,
		dataset.Budaya:            2,
		dataset.TempatIbadah:      1,
	},
}

// Booster re-ranks categories by how well they fit a trip type.
type Booster interface {
	Name() string
	Boost(categories []ScoredCategory, trip dataset.TripType) []ScoredCategory
}

// FractionalBooster adds fractional weights and a bonus for rules recorded with the same trip type.
type FractionalBooster struct {
	Bonus float64
}

func NewFractionalBooster(bonus float64) *FractionalBooster {
	return &FractionalBooster{Bonus: bonus}
}

func (b *FractionalBooster) Name() string {
	return FractionalBoosting
}

func (b *FractionalBooster) Boost(categories []ScoredCategory, trip dataset.TripType) []ScoredCategory {
	return boost(categories, func(category ScoredCategory) float64 {
		weight := fractionalWeights[trip][category.Category]
		if category.Rule.TripType == string(trip) {
			weight += b.Bonus
		}
		return weight
	})
}

// RankBooster adds integer weights from 1 to 6.
type RankBooster struct{}

func (b *RankBooster) Name() string {
	return RankBoosting
}

func (b *RankBooster) Boost(categories []ScoredCategory, trip dataset.TripType) []ScoredCategory {
	return boost(categories, func(category ScoredCategory) float64 {
		return float64(rankWeights[trip][category.Category])
	})
}

// boost returns boosted copies sorted by final score, then by base score, then by name.
func boost(categories []ScoredCategory, weight func(ScoredCategory) float64) []ScoredCategory {
	boosted := make([]ScoredCategory, len(categories))
	for i, category := range categories {
		category.Boost = weight(category)
		category.FinalScore = category.Similarity + category.Boost
		boosted[i] = category
	}
	sort.SliceStable(boosted, func(i, j int) bool {
		if boosted[i].FinalScore != boosted[j].FinalScore {
			return boosted[i].FinalScore > boosted[j].FinalScore
		}
		if boosted[i].Similarity != boosted[j].Similarity {
			return boosted[i].Similarity > boosted[j].Similarity
		}
		return boosted[i].Category < boosted[j].Category
	})
	return boosted
}
