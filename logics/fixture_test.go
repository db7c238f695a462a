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
	"github.com/gorse-io/tourism/dataset"
	"github.com/gorse-io/tourism/storage/data"
)

func testRules() []data.Rule {
	return []data.Rule{
		{"Bahari", "Laki-laki", "Young Adult", "Jakarta", "Friends Trip", 40},
		{"Budaya", "Laki-laki", "Young Adult", "Bandung", "Solo Trip", 30},
		{"Cagar Alam", "Laki-laki", "Young Adult", "Bogor", "Solo Trip", 25},
		{"Taman Hiburan", "Laki-laki", "Young Adult", "Jakarta", "Family Trip", 20},
		{"Pusat Perbelanjaan", "Laki-laki", "Young Adult", "Depok", "Couple Trip", 10},
		{"Tempat Ibadah", "Laki-laki", "Young Adult", "Semarang", "Family Trip", 5},
		{"Bahari", "Perempuan", "Young Adult", "Bekasi", "Couple Trip", 35},
		{"Pusat Perbelanjaan", "Perempuan", "Young Adult", "Jakarta", "Friends Trip", 45},
		{"Budaya", "Perempuan", "Young Adult", "Yogyakarta", "Friends Trip", 12},
		{"Taman Hiburan", "Laki-laki", "Teen/College", "Surabaya", "Friends Trip", 22},
		{"Budaya", "Perempuan", "Adult", "Bandung", "Family Trip", 8},
		{"Tempat Ibadah", "Laki-laki", "Mature Adult", "Semarang", "Family Trip", 9},
	}
}

func testPlaces() []data.Place {
	place := func(id int, name, city, category string) data.Place {
		return data.Place{PlaceId: id, PlaceName: name, City: city, Category: category, Description: name + " di " + city}
	}
	return []data.Place{
		place(1, "Hutan Pinus Mangunan", "Yogyakarta", "Cagar Alam"),
		place(2, "Goa Pindul", "Yogyakarta", "Cagar Alam"),
		place(3, "Candi Prambanan", "Yogyakarta", "Budaya"),
		place(4, "Keraton Yogyakarta", "Yogyakarta", "Budaya"),
		place(5, "Museum Sonobudoyo", "Yogyakarta", "Budaya"),
		place(6, "Taman Sari", "Yogyakarta", "Budaya"),
		place(7, "Kids Fun Parks", "Yogyakarta", "Taman Hiburan"),
		place(8, "Sindu Kusuma Edupark", "Yogyakarta", "Taman Hiburan"),
		place(9, "Taman Pelangi", "Yogyakarta", "Taman Hiburan"),
		place(10, "Masjid Gedhe Kauman", "Yogyakarta", "Tempat Ibadah"),
		place(11, "Pantai Ancol", "Jakarta", "Bahari"),
		place(12, "Pulau Tidung", "Jakarta", "Bahari"),
		place(13, "Grand Indonesia", "Jakarta", "Pusat Perbelanjaan"),
	}
}

func testPlaceRatings() []data.PlaceRating {
	return []data.PlaceRating{
		{3, "Laki-laki", "Young Adult", 4.5, 10},
		{4, "Laki-laki", "Young Adult", 4.5, 20},
		{5, "Laki-laki", "Young Adult", 3.0, 5},
		{6, "Perempuan", "Young Adult", 5.0, 3},
		{5, "Perempuan", "Young Adult", 4.8, 7},
		{99, "Laki-laki", "Young Adult", 5.0, 100},
	}
}

func testTables() *data.Tables {
	return &data.Tables{
		Places:       testPlaces(),
		Rules:        testRules(),
		PlaceRatings: testPlaceRatings(),
	}
}

func testEncoder() *dataset.Encoder {
	return dataset.FitEncoder(testRules())
}
