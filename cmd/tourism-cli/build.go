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
	"github.com/gorse-io/tourism/base/log"
	"github.com/gorse-io/tourism/dataset"
	"github.com/gorse-io/tourism/storage/data"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var buildRulesCommand = &cobra.Command{
	Use:   "build-rules",
	Short: "Build rules and place ratings from raw users and ratings",
	Run: func(cmd *cobra.Command, args []string) {
		conf := loadConfig(cmd)
		ctx := cmd.Context()
		db, err := data.Open(conf.Database.DataStore, conf.Database.TablePrefix)
		if err != nil {
			log.Logger().Fatal("failed to open data store", zap.Error(err))
		}
		defer db.Close()
		if err = db.Init(); err != nil {
			log.Logger().Fatal("failed to init data store", zap.Error(err))
		}

		places, err := db.GetPlaces(ctx)
		if err != nil {
			log.Logger().Fatal("failed to load places", zap.Error(err))
		}
		users, err := db.GetUsers(ctx)
		if err != nil {
			log.Logger().Fatal("failed to load users", zap.Error(err))
		}
		ratings, err := db.GetRatings(ctx)
		if err != nil {
			log.Logger().Fatal("failed to load ratings", zap.Error(err))
		}
		rules := dataset.BuildRules(places, users, ratings)
		placeRatings := dataset.BuildPlaceRatings(users, ratings)
		if err = insertRules(cmd, db, rules); err != nil {
			log.Logger().Fatal("failed to write rules", zap.Error(err))
		}
		if err = insertPlaceRatings(cmd, db, placeRatings); err != nil {
			log.Logger().Fatal("failed to write place ratings", zap.Error(err))
		}
		log.Logger().Info("build rules",
			zap.Int("n_users", len(users)),
			zap.Int("n_ratings", len(ratings)),
			zap.Int("n_rules", len(rules)),
			zap.Int("n_place_ratings", len(placeRatings)))
	},
}

var fitEncoderCommand = &cobra.Command{
	Use:   "fit-encoder",
	Short: "Fit the one-hot encoder on the rule table",
	Run: func(cmd *cobra.Command, args []string) {
		conf := loadConfig(cmd)
		db, err := data.Open(conf.Database.DataStore, conf.Database.TablePrefix)
		if err != nil {
			log.Logger().Fatal("failed to open data store", zap.Error(err))
		}
		defer db.Close()
		rules, err := db.GetRules(cmd.Context())
		if err != nil {
			log.Logger().Fatal("failed to load rules", zap.Error(err))
		}
		if len(rules) == 0 {
			log.Logger().Fatal("no rules to fit", zap.String("data_store", log.RedactDBURL(conf.Database.DataStore)))
		}
		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			output = conf.Database.EncoderPath
		}
		encoder := dataset.FitEncoder(rules)
		if err = encoder.Save(output); err != nil {
			log.Logger().Fatal("failed to save encoder", zap.Error(err))
		}
		log.Logger().Info("fit encoder",
			zap.String("output", output),
			zap.Int("dim", encoder.Dim()),
			zap.Int("n_rules", len(rules)))
	},
}

func init() {
	buildRulesCommand.Flags().Int("batch-size", 1000, "number of rows per insert")
	fitEncoderCommand.Flags().StringP("output", "o", "", "path of the encoder, defaults to database.encoder_path")
	cliCommand.AddCommand(buildRulesCommand, fitEncoderCommand)
}
