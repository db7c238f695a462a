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
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/gorse-io/tourism/storage/data"
	"github.com/juju/errors"
	"github.com/samber/lo"
)

const (
	GenderFeature   = "Gender"
	AgeGroupFeature = "Age_Group"
)

// Encoder one-hot encodes (gender, age group) pairs. Its vocabulary is fitted on the rule table
// and must match the rule table it is deployed with.
type Encoder struct {
	Features   []string   `json:"features"`
	Categories [][]string `json:"categories"`
}

// FitEncoder collects the sorted gender and age group vocabularies of rules.
func FitEncoder(rules []data.Rule) *Encoder {
	genders := lo.Uniq(lo.Map(rules, func(rule data.Rule, _ int) string { return rule.Gender }))
	ageGroups := lo.Uniq(lo.Map(rules, func(rule data.Rule, _ int) string { return rule.AgeGroup }))
	sort.Strings(genders)
	sort.Strings(ageGroups)
	return &Encoder{
		Features:   []string{GenderFeature, AgeGroupFeature},
		Categories: [][]string{genders, ageGroups},
	}
}

// LoadEncoder reads an encoder artifact.
func LoadEncoder(path string) (*Encoder, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	var encoder Encoder
	if err = json.Unmarshal(b, &encoder); err != nil {
		return nil, errors.NewNotValid(err, "malformed encoder")
	}
	if err = encoder.validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return &encoder, nil
}

func (e *Encoder) Save(path string) error {
	b, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return errors.Trace(err)
	}
	if err = os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(os.WriteFile(path, b, 0644))
}

func (e *Encoder) validate() error {
	if len(e.Features) != 2 || e.Features[0] != GenderFeature || e.Features[1] != AgeGroupFeature {
		return errors.NotValidf("encoder features %v", e.Features)
	}
	if len(e.Categories) != 2 {
		return errors.NotValidf("encoder categories")
	}
	for i, categories := range e.Categories {
		if len(categories) == 0 {
			return errors.NotValidf("empty %s vocabulary", e.Features[i])
		}
		if len(lo.Uniq(categories)) != len(categories) {
			return errors.NotValidf("duplicate %s vocabulary", e.Features[i])
		}
	}
	for _, gender := range e.Categories[0] {
		if g, err := ParseGender(gender); err != nil {
			return errors.Trace(err)
		} else if g.IsUnspecified() {
			return errors.NotValidf("gender %q in encoder", gender)
		}
	}
	for _, ageGroup := range e.Categories[1] {
		if _, err := ParseAgeGroup(ageGroup); err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}

// Dim is the width of encoded vectors.
func (e *Encoder) Dim() int {
	return len(e.Categories[0]) + len(e.Categories[1])
}

// Genders returns the concrete genders in the vocabulary.
func (e *Encoder) Genders() []Gender {
	return lo.Map(e.Categories[0], func(gender string, _ int) Gender { return Gender(gender) })
}

// Transform encodes a (gender, age group) pair. Values outside the vocabulary are rejected.
func (e *Encoder) Transform(gender, ageGroup string) ([]float64, error) {
	if !lo.Contains(e.Categories[0], gender) {
		return nil, errors.NotValidf("unknown gender %q", gender)
	}
	if !lo.Contains(e.Categories[1], ageGroup) {
		return nil, errors.NotValidf("unknown age group %q", ageGroup)
	}
	return e.Encode(gender, ageGroup), nil
}

// Encode a (gender, age group) pair. Unknown values leave their block zero.
func (e *Encoder) Encode(gender, ageGroup string) []float64 {
	vec := make([]float64, e.Dim())
	if i := lo.IndexOf(e.Categories[0], gender); i >= 0 {
		vec[i] = 1
	}
	if i := lo.IndexOf(e.Categories[1], ageGroup); i >= 0 {
		vec[len(e.Categories[0])+i] = 1
	}
	return vec
}

// Verify checks that the vocabulary equals the vocabulary of a rule table.
func (e *Encoder) Verify(rules []data.Rule) error {
	fitted := FitEncoder(rules)
	for i, feature := range e.Features {
		expected := mapset.NewSet(fitted.Categories[i]...)
		actual := mapset.NewSet(e.Categories[i]...)
		if !expected.Equal(actual) {
			return errors.NotValidf("%s vocabulary %v of encoder mismatches %v of rules", feature, e.Categories[i], fitted.Categories[i])
		}
	}
	return nil
}
