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
	"github.com/juju/errors"
	"github.com/samber/lo"
)

// Gender is the declared gender of a traveller.
type Gender string

const (
	GenderMale        Gender = "Laki-laki"
	GenderFemale      Gender = "Perempuan"
	GenderUnspecified Gender = "Tidak ingin menyebutkan"
)

// Genders lists every accepted gender, including unspecified.
var Genders = []Gender{GenderMale, GenderFemale, GenderUnspecified}

// ConcreteGenders lists genders that appear in rating data.
var ConcreteGenders = []Gender{GenderMale, GenderFemale}

func ParseGender(s string) (Gender, error) {
	if g := Gender(s); lo.Contains(Genders, g) {
		return g, nil
	}
	return "", errors.NotValidf("gender %q", s)
}

func (g Gender) IsUnspecified() bool {
	return g == GenderUnspecified
}

// AgeGroup is a bucket of ages.
type AgeGroup string

const (
	AgeTeenCollege AgeGroup = "Teen/College"
	AgeYoungAdult  AgeGroup = "Young Adult"
	AgeAdult       AgeGroup = "Adult"
	AgeMatureAdult AgeGroup = "Mature Adult"
)

var AgeGroups = []AgeGroup{AgeTeenCollege, AgeYoungAdult, AgeAdult, AgeMatureAdult}

const (
	MinAge = 18
	MaxAge = 100
)

// AgeGroupOf maps an age to its group: 18-22, 23-27, 28-32 and 33+.
func AgeGroupOf(age int) AgeGroup {
	switch {
	case age >= 18 && age <= 22:
		return AgeTeenCollege
	case age >= 23 && age <= 27:
		return AgeYoungAdult
	case age >= 28 && age <= 32:
		return AgeAdult
	default:
		return AgeMatureAdult
	}
}

func ParseAgeGroup(s string) (AgeGroup, error) {
	if a := AgeGroup(s); lo.Contains(AgeGroups, a) {
		return a, nil
	}
	return "", errors.NotValidf("age group %q", s)
}

// TripType describes who the traveller goes with.
type TripType string

const (
	SoloTrip    TripType = "Solo Trip"
	CoupleTrip  TripType = "Couple Trip"
	FamilyTrip  TripType = "Family Trip"
	FriendsTrip TripType = "Friends Trip"
)

var TripTypes = []TripType{SoloTrip, CoupleTrip, FamilyTrip, FriendsTrip}

func ParseTripType(s string) (TripType, error) {
	if t := TripType(s); lo.Contains(TripTypes, t) {
		return t, nil
	}
	return "", errors.NotValidf("trip type %q", s)
}

// Category is a tourism category.
type Category string

const (
	Bahari            Category = "Bahari"
	Budaya            Category = "Budaya"
	CagarAlam         Category = "Cagar Alam"
	PusatPerbelanjaan Category = "Pusat Perbelanjaan"
	TamanHiburan      Category = "Taman Hiburan"
	TempatIbadah      Category = "Tempat Ibadah"
)

var Categories = []Category{Bahari, Budaya, CagarAlam, PusatPerbelanjaan, TamanHiburan, TempatIbadah}

var categoryDescriptions = map[Category]string{
	Bahari:            "Wisata bahari mencakup pantai, laut, dan aktivitas air.",
	Budaya:            "Wisata budaya mencakup museum, situs sejarah, dan atraksi budaya lokal.",
	CagarAlam:         "Wisata alam mencakup taman nasional, gunung, dan kawasan konservasi.",
	PusatPerbelanjaan: "Pusat perbelanjaan seperti mall, pasar tradisional, dan kawasan belanja serta kuliner.",
	TamanHiburan:      "Taman hiburan seperti taman bermain, wahana rekreasi, dan tempat hiburan.",
	TempatIbadah:      "Tempat ibadah seperti masjid, gereja, pura, dan vihara bersejarah.",
}

func ParseCategory(s string) (Category, error) {
	if c := Category(s); lo.Contains(Categories, c) {
		return c, nil
	}
	return "", errors.NotValidf("category %q", s)
}

// Description returns a short description shown next to the category.
func (c Category) Description() string {
	return categoryDescriptions[c]
}

// Cities served by the default place table.
var Cities = []string{"Jakarta", "Bandung", "Semarang", "Yogyakarta", "Surabaya"}
