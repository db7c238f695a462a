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

package data

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gorse-io/tourism/base"
	"github.com/juju/errors"
	"github.com/samber/lo"
)

const (
	PlacesFile       = "tourism_processed.csv"
	RulesFile        = "rules_data.csv"
	PlaceRatingsFile = "place_ratings.csv"
	UsersFile        = "user.csv"
	RatingsFile      = "tourism_rating.csv"
)

var (
	placeColumns       = []string{"Place_Id", "Place_Name", "Description", "Category", "City", "Rating", "Rating_Count", "image_urls"}
	ruleColumns        = []string{"Category", "Gender", "Age_Group", "User Location", "Tipe_Perjalanan", "Total_Users"}
	placeRatingColumns = []string{"Place_Id", "Gender", "Age_Group", "Average_Rating", "Rating_Count"}
	userColumns        = []string{"User_Id", "Location", "Age", "Gender"}
	ratingColumns      = []string{"User_Id", "Place_Id", "Place_Ratings", "Tipe_Perjalanan"}
)

// CSVDatabase reads tables from a directory of CSV files produced by the offline pipeline.
// Inserts append rows, so they never overwrite existing records.
type CSVDatabase struct {
	dir string
}

func (d *CSVDatabase) Init() error {
	return errors.Trace(os.MkdirAll(d.dir, os.ModePerm))
}

func (d *CSVDatabase) Close() error {
	return nil
}

func (d *CSVDatabase) Purge() error {
	for _, name := range []string{PlacesFile, RulesFile, PlaceRatingsFile, UsersFile, RatingsFile} {
		if err := os.Remove(filepath.Join(d.dir, name)); err != nil && !os.IsNotExist(err) {
			return errors.Trace(err)
		}
	}
	return nil
}

func (d *CSVDatabase) GetPlaces(_ context.Context) ([]Place, error) {
	var places []Place
	err := d.readTable(PlacesFile, func(row map[string]string) error {
		var (
			place Place
			err   error
		)
		if place.PlaceId, err = parseInt(row["Place_Id"]); err != nil {
			return errors.NotValidf("place id %q", row["Place_Id"])
		}
		place.PlaceName = row["Place_Name"]
		place.Description = row["Description"]
		place.Category = row["Category"]
		place.City = row["City"]
		if s := row["Rating"]; s != "" {
			rating, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return errors.NotValidf("rating %q of place %d", s, place.PlaceId)
			}
			place.Rating = &rating
		}
		if s := row["Rating_Count"]; s != "" {
			count, err := parseInt(s)
			if err != nil {
				return errors.NotValidf("rating count %q of place %d", s, place.PlaceId)
			}
			place.RatingCount = &count
		}
		place.ImageUrls = splitImageUrls(row["image_urls"])
		places = append(places, place)
		return nil
	})
	return places, errors.Trace(err)
}

func (d *CSVDatabase) GetRules(_ context.Context) ([]Rule, error) {
	var rules []Rule
	err := d.readTable(RulesFile, func(row map[string]string) error {
		totalUsers, err := parseInt(row["Total_Users"])
		if err != nil {
			return errors.NotValidf("total users %q", row["Total_Users"])
		}
		rules = append(rules, Rule{
			Category:   row["Category"],
			Gender:     row["Gender"],
			AgeGroup:   row["Age_Group"],
			Location:   row["User Location"],
			TripType:   row["Tipe_Perjalanan"],
			TotalUsers: totalUsers,
		})
		return nil
	})
	return rules, errors.Trace(err)
}

func (d *CSVDatabase) GetPlaceRatings(_ context.Context) ([]PlaceRating, error) {
	var ratings []PlaceRating
	err := d.readTable(PlaceRatingsFile, func(row map[string]string) error {
		var (
			rating PlaceRating
			err    error
		)
		if rating.PlaceId, err = parseInt(row["Place_Id"]); err != nil {
			return errors.NotValidf("place id %q", row["Place_Id"])
		}
		if rating.AverageRating, err = strconv.ParseFloat(row["Average_Rating"], 64); err != nil {
			return errors.NotValidf("average rating %q", row["Average_Rating"])
		}
		if rating.RatingCount, err = parseInt(row["Rating_Count"]); err != nil {
			return errors.NotValidf("rating count %q", row["Rating_Count"])
		}
		rating.Gender = row["Gender"]
		rating.AgeGroup = row["Age_Group"]
		ratings = append(ratings, rating)
		return nil
	})
	return ratings, errors.Trace(err)
}

func (d *CSVDatabase) GetUsers(_ context.Context) ([]User, error) {
	var users []User
	err := d.readTable(UsersFile, func(row map[string]string) error {
		var (
			user User
			err  error
		)
		if user.UserId, err = parseInt(row["User_Id"]); err != nil {
			return errors.NotValidf("user id %q", row["User_Id"])
		}
		if user.Age, err = parseInt(row["Age"]); err != nil {
			return errors.NotValidf("age %q of user %d", row["Age"], user.UserId)
		}
		user.Location = row["Location"]
		user.Gender = row["Gender"]
		users = append(users, user)
		return nil
	})
	return users, errors.Trace(err)
}

func (d *CSVDatabase) GetRatings(_ context.Context) ([]Rating, error) {
	var ratings []Rating
	err := d.readTable(RatingsFile, func(row map[string]string) error {
		var (
			rating Rating
			err    error
		)
		if rating.UserId, err = parseInt(row["User_Id"]); err != nil {
			return errors.NotValidf("user id %q", row["User_Id"])
		}
		if rating.PlaceId, err = parseInt(row["Place_Id"]); err != nil {
			return errors.NotValidf("place id %q", row["Place_Id"])
		}
		if rating.PlaceRating, err = parseInt(row["Place_Ratings"]); err != nil {
			return errors.NotValidf("place rating %q", row["Place_Ratings"])
		}
		rating.TripType = row["Tipe_Perjalanan"]
		ratings = append(ratings, rating)
		return nil
	})
	return ratings, errors.Trace(err)
}

func (d *CSVDatabase) BatchInsertPlaces(_ context.Context, places []Place) error {
	return d.appendTable(PlacesFile, placeColumns, lo.Map(places, func(place Place, _ int) []string {
		var rating, ratingCount string
		if place.Rating != nil {
			rating = strconv.FormatFloat(*place.Rating, 'f', -1, 64)
		}
		if place.RatingCount != nil {
			ratingCount = strconv.Itoa(*place.RatingCount)
		}
		return []string{strconv.Itoa(place.PlaceId), place.PlaceName, place.Description, place.Category, place.City,
			rating, ratingCount, strings.Join(place.ImageUrls, "|")}
	}))
}

func (d *CSVDatabase) BatchInsertRules(_ context.Context, rules []Rule) error {
	return d.appendTable(RulesFile, ruleColumns, lo.Map(rules, func(rule Rule, _ int) []string {
		return []string{rule.Category, rule.Gender, rule.AgeGroup, rule.Location, rule.TripType, strconv.Itoa(rule.TotalUsers)}
	}))
}

func (d *CSVDatabase) BatchInsertPlaceRatings(_ context.Context, ratings []PlaceRating) error {
	return d.appendTable(PlaceRatingsFile, placeRatingColumns, lo.Map(ratings, func(rating PlaceRating, _ int) []string {
		return []string{strconv.Itoa(rating.PlaceId), rating.Gender, rating.AgeGroup,
			strconv.FormatFloat(rating.AverageRating, 'f', -1, 64), strconv.Itoa(rating.RatingCount)}
	}))
}

func (d *CSVDatabase) BatchInsertUsers(_ context.Context, users []User) error {
	return d.appendTable(UsersFile, userColumns, lo.Map(users, func(user User, _ int) []string {
		return []string{strconv.Itoa(user.UserId), user.Location, strconv.Itoa(user.Age), user.Gender}
	}))
}

func (d *CSVDatabase) BatchInsertRatings(_ context.Context, ratings []Rating) error {
	return d.appendTable(RatingsFile, ratingColumns, lo.Map(ratings, func(rating Rating, _ int) []string {
		return []string{strconv.Itoa(rating.UserId), strconv.Itoa(rating.PlaceId), strconv.Itoa(rating.PlaceRating), rating.TripType}
	}))
}

// readTable reads a CSV file. A missing file is an empty table.
func (d *CSVDatabase) readTable(name string, handler func(row map[string]string) error) error {
	file, err := os.Open(filepath.Join(d.dir, name))
	if os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return errors.Trace(err)
	}
	defer file.Close()
	if err = base.ReadTable(file, handler); err != nil {
		return errors.Annotatef(err, "failed to read %s", name)
	}
	return nil
}

// appendTable appends rows to a CSV file. The header is written if the file is empty.
func (d *CSVDatabase) appendTable(name string, header []string, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}
	defer observeBatchInsert(name, time.Now())
	file, err := os.OpenFile(filepath.Join(d.dir, name), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return errors.Trace(err)
	}
	defer file.Close()
	info, err := file.Stat()
	if err != nil {
		return errors.Trace(err)
	}
	if info.Size() == 0 {
		if err = base.WriteLine(file, header...); err != nil {
			return errors.Trace(err)
		}
	}
	for _, row := range rows {
		if err = base.WriteLine(file, row...); err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}

func splitImageUrls(s string) []string {
	return lo.Filter(lo.Map(strings.Split(s, "|"), func(url string, _ int) string {
		return strings.TrimSpace(url)
	}), func(url string, _ int) bool {
		return url != ""
	})
}

// parseInt accepts integers written as floats, such as "12.0".
func parseInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	if i, err := strconv.Atoi(s); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, errors.NotValidf("integer %q", s)
	}
	return int(f), nil
}
