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

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/gorse-io/tourism/base/log"
	"github.com/gorse-io/tourism/logics"
	"github.com/gorse-io/tourism/storage/data"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var recommendCommand = &cobra.Command{
	Use:   "recommend",
	Short: "Recommend categories and places for a traveller",
	Run: func(cmd *cobra.Command, args []string) {
		conf := loadConfig(cmd)
		gender, _ := cmd.Flags().GetString("gender")
		age, _ := cmd.Flags().GetInt("age")
		ageGroup, _ := cmd.Flags().GetString("age-group")
		city, _ := cmd.Flags().GetString("city")
		tripType, _ := cmd.Flags().GetString("trip-type")
		nCategories, _ := cmd.Flags().GetInt("n-categories")
		nPlaces, _ := cmd.Flags().GetInt("n-places")
		if cmd.Flags().Changed("seed") {
			conf.Recommend.RandomSeed, _ = cmd.Flags().GetInt64("seed")
		}

		var (
			profile logics.Profile
			err     error
		)
		if ageGroup != "" {
			profile, err = logics.ParseProfile(gender, ageGroup, city, tripType)
		} else {
			profile, err = logics.NewProfile(gender, age, city, tripType)
		}
		if err != nil {
			log.Logger().Fatal("invalid profile", zap.Error(err))
		}
		engine, err := logics.LoadEngine(cmd.Context(), conf)
		if err != nil {
			log.Logger().Fatal("failed to load recommendation engine", zap.Error(err))
		}
		recommendations, err := engine.Recommend(cmd.Context(), profile, nCategories, nPlaces)
		if err != nil {
			log.Logger().Fatal("failed to recommend", zap.Error(err))
		}
		if err = printRecommendations(recommendations); err != nil {
			log.Logger().Fatal("failed to print recommendations", zap.Error(err))
		}
	},
}

func printRecommendations(recommendations []logics.Recommendation) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Category", "Similarity", "Boost", "Final", "Matched Segment", "Places", "Found", "Alternate")
	for _, recommendation := range recommendations {
		places := lo.Map(recommendation.Places, func(place data.Place, _ int) string {
			return place.PlaceName
		})
		if err := table.Append(
			recommendation.Category,
			fmt.Sprintf("%.4f", recommendation.Score.Similarity),
			fmt.Sprintf("%.4f", recommendation.Score.Boost),
			fmt.Sprintf("%.4f", recommendation.Score.FinalScore),
			fmt.Sprintf("%s / %s / %s", recommendation.UserMatch.Gender, recommendation.UserMatch.AgeGroup, recommendation.UserMatch.TripType),
			strings.Join(places, "\n"),
			fmt.Sprintf("%d/%d", recommendation.PlacesFound, recommendation.PlacesRequested),
			recommendation.AlternateCategory,
		); err != nil {
			return err
		}
	}
	return table.Render()
}

func init() {
	recommendCommand.Flags().String("gender", "", "gender of the traveller")
	recommendCommand.Flags().Int("age", 0, "age of the traveller")
	recommendCommand.Flags().String("age-group", "", "age group of the traveller, used instead of age")
	recommendCommand.Flags().String("city", "", "destination city")
	recommendCommand.Flags().String("trip-type", "", "trip type")
	recommendCommand.Flags().Int("n-categories", 0, "number of recommended categories")
	recommendCommand.Flags().Int("n-places", 0, "number of places per category")
	recommendCommand.Flags().Int64("seed", 0, "random seed of place sampling")
	cliCommand.AddCommand(recommendCommand)
}
