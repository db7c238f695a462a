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

package dataset

import (
	"strings"

	"github.com/gorse-io/tourism/base"
	"github.com/gorse-io/tourism/base/log"
	"github.com/gorse-io/tourism/storage/data"
	"go.uber.org/zap"
)

const (
	// MinPositiveRating is the lowest rating counted as a positive experience.
	MinPositiveRating = 4
	fillSeed          = 42
)

var (
	genderFill   = []Gender{GenderMale, GenderFemale}
	genderWeight = []float64{0.5, 0.5}
	tripFill     = []TripType{FriendsTrip, FamilyTrip, CoupleTrip, SoloTrip}
	tripWeight   = []float64{0.35, 0.30, 0.25, 0.10}
)

type segment struct {
	Category string
	Gender   string
	AgeGroup string
}

type respondent struct {
	Location string
	Gender   string
	AgeGroup string
}

// UserLocation extracts the city from a "City, Province" location.
func UserLocation(location string) string {
	city, _, _ := strings.Cut(location, ",")
	return strings.TrimSpace(city)
}

// prepareUsers derives age groups and locations. Missing genders are drawn with equal probability.
func prepareUsers(users []data.User) map[int]respondent {
	rng := base.NewRandomGenerator(fillSeed)
	result := make(map[int]respondent, len(users))
	for _, user := range users {
		gender := user.Gender
		if gender == "" {
			gender = string(genderFill[rng.WeightedChoice(genderWeight)])
		}
		result[user.UserId] = respondent{
			Location: UserLocation(user.Location),
			Gender:   gender,
			AgeGroup: string(AgeGroupOf(user.Age)),
		}
	}
	return result
}

// prepareRatings fills missing trip types. Friends trips are the most likely.
func prepareRatings(ratings []data.Rating) []data.Rating {
	rng := base.NewRandomGenerator(fillSeed)
	result := make([]data.Rating, len(ratings))
	for i, rating := range ratings {
		if rating.TripType == "" {
			rating.TripType = string(tripFill[rng.WeightedChoice(tripWeight)])
		}
		result[i] = rating
	}
	return result
}

// BuildRules aggregates ratings of at least MinPositiveRating into one rule per (category, gender, age group).
// The location and trip type of a rule are the most common among its ratings, and the total is the number
// of ratings. Ratings of unknown users or places are skipped.
func BuildRules(places []data.Place, users []data.User, ratings []data.Rating) []data.Rule {
	categories := make(map[int]string, len(places))
	for _, place := range places {
		categories[place.PlaceId] = place.Category
	}
	respondents := prepareUsers(users)

	type aggregate struct {
		locations *FreqDict
		tripTypes *FreqDict
		count     int
	}
	var (
		order      []segment
		aggregates = make(map[segment]*aggregate)
		skipped    int
	)
	for _, rating := range prepareRatings(ratings) {
		if rating.PlaceRating < MinPositiveRating {
			continue
		}
		category, ok := categories[rating.PlaceId]
		if !ok {
			skipped++
			continue
		}
		user, ok := respondents[rating.UserId]
		if !ok {
			skipped++
			continue
		}
		key := segment{Category: category, Gender: user.Gender, AgeGroup: user.AgeGroup}
		agg, exist := aggregates[key]
		if !exist {
			agg = &aggregate{locations: NewFreqDict(), tripTypes: NewFreqDict()}
			aggregates[key] = agg
			order = append(order, key)
		}
		agg.locations.Id(user.Location)
		agg.tripTypes.Id(rating.TripType)
		agg.count++
	}
	if skipped > 0 {
		log.Logger().Warn("skip ratings of unknown users or places", zap.Int("n_skipped", skipped))
	}

	rules := make([]data.Rule, 0, len(order))
	for _, key := range order {
		agg := aggregates[key]
		location, _ := agg.locations.Mode()
		tripType, _ := agg.tripTypes.Mode()
		rules = append(rules, data.Rule{
			Category:   key.Category,
			Gender:     key.Gender,
			AgeGroup:   key.AgeGroup,
			Location:   location,
			TripType:   tripType,
			TotalUsers: agg.count,
		})
	}
	return data.DeduplicateRules(rules)
}

// BuildPlaceRatings averages all ratings of each place per (gender, age group).
func BuildPlaceRatings(users []data.User, ratings []data.Rating) []data.PlaceRating {
	type key struct {
		PlaceId  int
		Gender   string
		AgeGroup string
	}
	respondents := prepareUsers(users)
	var (
		order []key
		sums  = make(map[key]int)
		cnts  = make(map[key]int)
	)
	for _, rating := range ratings {
		user, ok := respondents[rating.UserId]
		if !ok {
			continue
		}
		k := key{PlaceId: rating.PlaceId, Gender: user.Gender, AgeGroup: user.AgeGroup}
		if _, exist := cnts[k]; !exist {
			order = append(order, k)
		}
		sums[k] += rating.PlaceRating
		cnts[k]++
	}
	result := make([]data.PlaceRating, len(order))
	for i, k := range order {
		result[i] = data.PlaceRating{
			PlaceId:       k.PlaceId,
			Gender:        k.Gender,
			AgeGroup:      k.AgeGroup,
			AverageRating: float64(sums[k]) / float64(cnts[k]),
			RatingCount:   cnts[k],
		}
	}
	return result
}
