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
	"strings"

	"github.com/gorse-io/tourism/dataset"
	"github.com/juju/errors"
)

// Profile is the demographic and trip context of a recommendation request.
type Profile struct {
	Gender   dataset.Gender   `json:"gender"`
	AgeGroup dataset.AgeGroup `json:"age_group"`
	City     string           `json:"city"`
	TripType dataset.TripType `json:"trip_type"`
}

// NewProfile creates a profile from a numeric age.
func NewProfile(gender string, age int, city, tripType string) (Profile, error) {
	if age < dataset.MinAge || age > dataset.MaxAge {
		return Profile{}, incompleteProfile(errors.NotValidf("age %d", age))
	}
	return ParseProfile(gender, string(dataset.AgeGroupOf(age)), city, tripType)
}

// ParseProfile creates a profile from raw values. Every field is required.
func ParseProfile(gender, ageGroup, city, tripType string) (Profile, error) {
	var (
		profile Profile
		err     error
	)
	if profile.Gender, err = dataset.ParseGender(gender); err != nil {
		return Profile{}, incompleteProfile(err)
	}
	if profile.AgeGroup, err = dataset.ParseAgeGroup(ageGroup); err != nil {
		return Profile{}, incompleteProfile(err)
	}
	if profile.TripType, err = dataset.ParseTripType(tripType); err != nil {
		return Profile{}, incompleteProfile(err)
	}
	profile.City = strings.TrimSpace(city)
	if profile.City == "" {
		return Profile{}, incompleteProfile(errors.NotValidf("empty city"))
	}
	return profile, nil
}

// Validate checks a profile built without ParseProfile and returns its normalized copy.
func (p Profile) Validate() (Profile, error) {
	return ParseProfile(string(p.Gender), string(p.AgeGroup), p.City, string(p.TripType))
}

// IsIncompleteProfile reports whether err rejects a profile.
func IsIncompleteProfile(err error) bool {
	return errors.Is(err, errors.NotValid)
}

func incompleteProfile(err error) error {
	return errors.NewNotValid(err, "incomplete profile")
}
