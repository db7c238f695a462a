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
	"context"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/gorse-io/tourism/base/log"
	"github.com/gorse-io/tourism/config"
	"github.com/gorse-io/tourism/dataset"
	"github.com/gorse-io/tourism/storage/data"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	NextBestBackfill = "next_best"
	RelatedBackfill  = "related"
	NoBackfill       = "none"
)

// relatedCategories lists alternates of each category, used by related backfill.
var relatedCategories = map[dataset.Category][]dataset.Category{
	dataset.Bahari:            {dataset.CagarAlam, dataset.TamanHiburan},
	dataset.Budaya:            {dataset.TempatIbadah, dataset.CagarAlam},
	dataset.CagarAlam:         {dataset.Bahari, dataset.TamanHiburan},
	dataset.PusatPerbelanjaan: {dataset.TamanHiburan, dataset.Budaya},
	dataset.TamanHiburan:      {dataset.PusatPerbelanjaan, dataset.Bahari},
	dataset.TempatIbadah:      {dataset.Budaya, dataset.PusatPerbelanjaan},
}

type Score struct {
	Method     string  `json:"method"`
	Similarity float64 `json:"similarity"`
	Boost      float64 `json:"boost"`
	FinalScore float64 `json:"final_score"`
}

// UserMatch describes the segment of the winning rule.
type UserMatch struct {
	Gender   string `json:"gender"`
	AgeGroup string `json:"age_group"`
	TripType string `json:"trip_type"`
	Location string `json:"location"`
}

// Recommendation is a recommended category and its places.
type Recommendation struct {
	Category          string       `json:"category"`
	Description       string       `json:"description"`
	Score             Score        `json:"score"`
	UserMatch         UserMatch    `json:"user_match"`
	Places            []data.Place `json:"places"`
	PlacesFound       int          `json:"places_found"`
	PlacesRequested   int          `json:"places_requested"`
	AlternateCategory string       `json:"alternate_category,omitempty"`
}

// pending is a recommendation still waiting for places.
type pending struct {
	Recommendation
	category dataset.Category
	needed   int
}

// Engine recommends categories and places. It never mutates its tables, so it can serve
// concurrent requests.
type Engine struct {
	scorer        Scorer
	booster       Booster
	categories    CategorySelector
	places        PlaceSelector
	index         *PlaceIndex
	backfill      string
	numCategories int
	numPlaces     int
}

// NewEngine builds the strategies selected by cfg. The encoder is required by similarity scoring.
// Tables with values outside the vocabulary are rejected.
func NewEngine(cfg config.RecommendConfig, tables *data.Tables, encoder *dataset.Encoder) (*Engine, error) {
	if err := ValidateTables(tables); err != nil {
		return nil, errors.Trace(err)
	}
	index, err := NewPlaceIndex(tables.Places, cfg.PlaceFilter)
	if err != nil {
		return nil, errors.Trace(err)
	}
	engine := &Engine{
		index:         index,
		backfill:      cfg.Backfill,
		numCategories: cfg.NumCategories,
		numPlaces:     cfg.NumPlaces,
	}

	switch cfg.Scoring {
	case SimilarityScoring:
		if engine.scorer, err = NewSimilarityScorer(encoder, tables.Rules); err != nil {
			return nil, errors.Trace(err)
		}
	case CollaborativeScoring:
		engine.scorer = NewCollaborativeScorer(tables.Rules)
	default:
		return nil, errors.NotValidf("scoring %q", cfg.Scoring)
	}

	switch cfg.Boosting {
	case FractionalBoosting:
		engine.booster = NewFractionalBooster(cfg.TripTypeBonus)
	case RankBoosting:
		engine.booster = &RankBooster{}
	default:
		return nil, errors.NotValidf("boosting %q", cfg.Boosting)
	}

	switch cfg.CategoryPolicy {
	case AvailabilityFirstPolicy:
		engine.categories = NewAvailabilityFirstSelector(index)
	case TopNPolicy:
		engine.categories = &TopNSelector{}
	default:
		return nil, errors.NotValidf("category policy %q", cfg.CategoryPolicy)
	}

	switch cfg.PlaceSelector {
	case SamplingSelection:
		engine.places = NewSamplingSelector(index, cfg.RandomSeed)
	case RatingSelection:
		if len(tables.PlaceRatings) == 0 {
			return nil, errors.NotFoundf("place ratings")
		}
		engine.places = NewRatingSelector(index, tables.PlaceRatings)
	default:
		return nil, errors.NotValidf("place selector %q", cfg.PlaceSelector)
	}

	switch cfg.Backfill {
	case NextBestBackfill, RelatedBackfill, NoBackfill:
	default:
		return nil, errors.NotValidf("backfill %q", cfg.Backfill)
	}
	if cfg.CategoryPolicy == TopNPolicy && cfg.Backfill == NextBestBackfill {
		// top n reports shortfalls instead of borrowing from unrelated categories
		return nil, errors.NotValidf("backfill %q with category policy %q", cfg.Backfill, cfg.CategoryPolicy)
	}

	log.Logger().Info("recommendation engine ready",
		zap.String("scoring", engine.scorer.Name()),
		zap.String("boosting", engine.booster.Name()),
		zap.String("category_policy", engine.categories.Name()),
		zap.String("place_selector", engine.places.Name()),
		zap.String("backfill", engine.backfill),
		zap.Int("n_places", index.Len()),
		zap.Int("n_rules", len(tables.Rules)))
	return engine, nil
}

// ValidateTables checks categories, genders, age groups and trip types against the vocabulary.
func ValidateTables(tables *data.Tables) error {
	for _, place := range tables.Places {
		if _, err := dataset.ParseCategory(place.Category); err != nil {
			return errors.Annotatef(err, "place %d", place.PlaceId)
		}
	}
	for _, rule := range tables.Rules {
		if _, err := dataset.ParseCategory(rule.Category); err != nil {
			return errors.Annotate(err, "rule")
		}
		if err := validateSegment(rule.Gender, rule.AgeGroup); err != nil {
			return errors.Annotate(err, "rule")
		}
		if _, err := dataset.ParseTripType(rule.TripType); err != nil {
			return errors.Annotate(err, "rule")
		}
	}
	for _, rating := range tables.PlaceRatings {
		if err := validateSegment(rating.Gender, rating.AgeGroup); err != nil {
			return errors.Annotatef(err, "rating of place %d", rating.PlaceId)
		}
	}
	return nil
}

func validateSegment(gender, ageGroup string) error {
	if g, err := dataset.ParseGender(gender); err != nil {
		return errors.Trace(err)
	} else if g.IsUnspecified() {
		return errors.NotValidf("gender %q", gender)
	}
	_, err := dataset.ParseAgeGroup(ageGroup)
	return errors.Trace(err)
}

// Index returns the places served by the engine.
func (e *Engine) Index() *PlaceIndex {
	return e.index
}

// Recommend categories and places for a profile. Non-positive counts fall back to the configured
// defaults. An invalid profile is rejected before scoring. Categories without enough places are
// still returned and report how many places were found.
func (e *Engine) Recommend(ctx context.Context, profile Profile, nCategories, nPlaces int) ([]Recommendation, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Trace(err)
	}
	profile, err := profile.Validate()
	if err != nil {
		return nil, errors.Trace(err)
	}
	_, span := otel.Tracer("tourism").Start(ctx, "Recommend", trace.WithAttributes(
		attribute.String("city", profile.City),
		attribute.String("trip_type", string(profile.TripType)),
		attribute.String("scoring", e.scorer.Name()),
		attribute.String("boosting", e.booster.Name())))
	defer span.End()
	if nCategories <= 0 {
		nCategories = e.numCategories
	}
	if nPlaces <= 0 {
		nPlaces = e.numPlaces
	}

	boosted := e.booster.Boost(e.scorer.Score(profile), profile.TripType)
	selected := e.categories.Select(boosted, profile.City, nCategories)
	selectedSet := mapset.NewSet(lo.Map(selected, func(category ScoredCategory, _ int) dataset.Category {
		return category.Category
	})...)
	emitted := mapset.NewSet[int]()

	results := make([]*pending, len(selected))
	for i, category := range selected {
		places := e.places.Select(category.Category, profile.City, profile, nPlaces, emitted)
		emitted.Append(placeIds(places)...)
		results[i] = &pending{
			Recommendation: Recommendation{
				Category:    string(category.Category),
				Description: category.Category.Description(),
				Score: Score{
					Method:     category.Method,
					Similarity: category.Similarity,
					Boost:      category.Boost,
					FinalScore: category.FinalScore,
				},
				UserMatch: UserMatch{
					Gender:   category.Rule.Gender,
					AgeGroup: category.Rule.AgeGroup,
					TripType: category.Rule.TripType,
					Location: category.Rule.Location,
				},
				Places: places,
			},
			category: category.Category,
			needed:   nPlaces - len(places),
		}
	}

	// backfill from alternate categories
	if e.backfill != NoBackfill {
		for _, result := range results {
			if result.needed <= 0 {
				continue
			}
			for _, alternate := range e.alternates(result.category, boosted, selectedSet) {
				if !e.index.Available(profile.City, alternate) {
					continue
				}
				places := e.places.Select(alternate, profile.City, profile, result.needed, emitted)
				if len(places) == 0 {
					continue
				}
				emitted.Append(placeIds(places)...)
				result.Places = append(result.Places, places...)
				result.needed -= len(places)
				if result.AlternateCategory == "" {
					result.AlternateCategory = string(alternate)
				}
				if result.needed <= 0 {
					break
				}
			}
		}
	}

	recommendations := make([]Recommendation, len(results))
	for i, result := range results {
		recommendation := result.Recommendation
		recommendation.PlacesFound = len(recommendation.Places)
		recommendation.PlacesRequested = nPlaces
		if recommendation.PlacesFound < nPlaces {
			span.AddEvent("shortfall", trace.WithAttributes(
				attribute.String("category", recommendation.Category),
				attribute.Int("n_found", recommendation.PlacesFound)))
			ShortfallTotal.WithLabelValues(recommendation.Category).Inc()
			log.Logger().Debug("not enough places",
				zap.String("category", recommendation.Category),
				zap.String("city", profile.City),
				zap.Int("n_found", recommendation.PlacesFound),
				zap.Int("n_requested", nPlaces))
		}
		recommendations[i] = recommendation
	}
	span.SetStatus(codes.Ok, "")
	return recommendations, nil
}

// alternates lists candidate categories for backfill in priority order. Selected categories are skipped.
func (e *Engine) alternates(category dataset.Category, boosted []ScoredCategory, selected mapset.Set[dataset.Category]) []dataset.Category {
	var candidates []dataset.Category
	switch e.backfill {
	case NextBestBackfill:
		for _, c := range boosted {
			candidates = append(candidates, c.Category)
		}
	case RelatedBackfill:
		related := relatedCategories[category]
		// related categories with scores come first, in score order
		for _, c := range boosted {
			if lo.Contains(related, c.Category) {
				candidates = append(candidates, c.Category)
			}
		}
		for _, c := range related {
			if !lo.Contains(candidates, c) {
				candidates = append(candidates, c)
			}
		}
	}
	return lo.Filter(candidates, func(c dataset.Category, _ int) bool {
		return !selected.Contains(c)
	})
}

func placeIds(places []data.Place) []int {
	return lo.Map(places, func(place data.Place, _ int) int {
		return place.PlaceId
	})
}
