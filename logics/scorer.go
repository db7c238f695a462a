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
	"math"
	"sort"

	"github.com/gorse-io/tourism/base"
	"github.com/gorse-io/tourism/dataset"
	"github.com/gorse-io/tourism/storage/data"
	"github.com/juju/errors"
	"github.com/samber/lo"
)

const (
	SimilarityScoring    = "similarity"
	CollaborativeScoring = "collaborative"
)

// maxCollaborativeScore is the score of the most popular category.
const maxCollaborativeScore = 6

// ScoredCategory is the winning rule of a category and its scores.
type ScoredCategory struct {
	Category   dataset.Category
	Rule       data.Rule
	Method     string
	Similarity float64
	Boost      float64
	FinalScore float64
}

// Scorer picks the best rule of each category for a profile.
type Scorer interface {
	Name() string
	Score(profile Profile) []ScoredCategory
}

// better reports whether rule a wins over rule b when their scores tie.
func better(a, b data.Rule) bool {
	if a.TotalUsers != b.TotalUsers {
		return a.TotalUsers > b.TotalUsers
	}
	if a.Gender != b.Gender {
		return a.Gender < b.Gender
	}
	return a.AgeGroup < b.AgeGroup
}

// SimilarityScorer scores rules by the cosine similarity between one-hot encoded profiles.
type SimilarityScorer struct {
	encoder *dataset.Encoder
	rules   []data.Rule
	vectors [][]float64
}

func NewSimilarityScorer(encoder *dataset.Encoder, rules []data.Rule) (*SimilarityScorer, error) {
	if encoder == nil {
		return nil, errors.NotValidf("missing encoder")
	}
	if err := encoder.Verify(rules); err != nil {
		return nil, errors.Trace(err)
	}
	scorer := &SimilarityScorer{
		encoder: encoder,
		rules:   rules,
		vectors: make([][]float64, len(rules)),
	}
	for i, rule := range rules {
		vec, err := encoder.Transform(rule.Gender, rule.AgeGroup)
		if err != nil {
			return nil, errors.Trace(err)
		}
		scorer.vectors[i] = vec
	}
	return scorer, nil
}

func (s *SimilarityScorer) Name() string {
	return SimilarityScoring
}

// Encode a profile. An unspecified gender is the mean of every concrete gender.
func (s *SimilarityScorer) Encode(profile Profile) []float64 {
	if profile.Gender.IsUnspecified() {
		vectors := lo.Map(s.encoder.Genders(), func(gender dataset.Gender, _ int) []float64 {
			return s.encoder.Encode(string(gender), string(profile.AgeGroup))
		})
		return base.MeanVector(vectors...)
	}
	return s.encoder.Encode(string(profile.Gender), string(profile.AgeGroup))
}

func (s *SimilarityScorer) Score(profile Profile) []ScoredCategory {
	query := s.Encode(profile)
	best := make(map[string]ScoredCategory)
	for i, rule := range s.rules {
		similarity := math.Min(1, math.Max(0, base.CosineSimilarity(query, s.vectors[i])))
		current, exist := best[rule.Category]
		if !exist || similarity > current.Similarity || (similarity == current.Similarity && better(rule, current.Rule)) {
			best[rule.Category] = ScoredCategory{
				Category:   dataset.Category(rule.Category),
				Rule:       rule,
				Method:     SimilarityScoring,
				Similarity: similarity,
			}
		}
	}
	scored := lo.Values(best)
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Similarity != scored[j].Similarity {
			return scored[i].Similarity > scored[j].Similarity
		}
		return scored[i].Category < scored[j].Category
	})
	return scored
}

// CollaborativeScorer ranks categories by the popularity of the rule of the same segment
// and scores them 6, 5, 4 and so on, but never below 1.
type CollaborativeScorer struct {
	rules []data.Rule
}

func NewCollaborativeScorer(rules []data.Rule) *CollaborativeScorer {
	return &CollaborativeScorer{rules: rules}
}

func (s *CollaborativeScorer) Name() string {
	return CollaborativeScoring
}

func (s *CollaborativeScorer) Score(profile Profile) []ScoredCategory {
	genders := []dataset.Gender{profile.Gender}
	if profile.Gender.IsUnspecified() {
		genders = dataset.ConcreteGenders
	}
	// widen the segment if nobody in it rated anything
	best := s.bestRules(func(rule data.Rule) bool {
		return rule.AgeGroup == string(profile.AgeGroup) && lo.Contains(genders, dataset.Gender(rule.Gender))
	})
	if len(best) == 0 {
		best = s.bestRules(func(rule data.Rule) bool {
			return rule.AgeGroup == string(profile.AgeGroup)
		})
	}
	if len(best) == 0 {
		best = s.bestRules(func(data.Rule) bool { return true })
	}
	rules := lo.Values(best)
	sort.Slice(rules, func(i, j int) bool {
		if rules[i].TotalUsers != rules[j].TotalUsers {
			return rules[i].TotalUsers > rules[j].TotalUsers
		}
		return rules[i].Category < rules[j].Category
	})
	return lo.Map(rules, func(rule data.Rule, rank int) ScoredCategory {
		return ScoredCategory{
			Category:   dataset.Category(rule.Category),
			Rule:       rule,
			Method:     CollaborativeScoring,
			Similarity: float64(max(maxCollaborativeScore-rank, 1)),
		}
	})
}

func (s *CollaborativeScorer) bestRules(match func(data.Rule) bool) map[string]data.Rule {
	best := make(map[string]data.Rule)
	for _, rule := range s.rules {
		if !match(rule) {
			continue
		}
		if current, exist := best[rule.Category]; !exist || better(rule, current) {
			best[rule.Category] = rule
		}
	}
	return best
}
