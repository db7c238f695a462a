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
	"context"

	"github.com/gorse-io/tourism/base/log"
	"github.com/gorse-io/tourism/storage/data"
	"github.com/juju/errors"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var importCommand = &cobra.Command{
	Use:   "import <source>",
	Short: "Copy every table from a source data store into the configured data store",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		conf := loadConfig(cmd)
		ctx := cmd.Context()
		sourcePrefix, _ := cmd.Flags().GetString("source-table-prefix")
		source, err := data.Open(args[0], sourcePrefix)
		if err != nil {
			log.Logger().Fatal("failed to open source", zap.Error(err))
		}
		defer source.Close()
		target, err := data.Open(conf.Database.DataStore, conf.Database.TablePrefix)
		if err != nil {
			log.Logger().Fatal("failed to open data store", zap.Error(err))
		}
		defer target.Close()
		if err = target.Init(); err != nil {
			log.Logger().Fatal("failed to init data store", zap.Error(err))
		}
		if purge, _ := cmd.Flags().GetBool("purge"); purge {
			if err = target.Purge(); err != nil {
				log.Logger().Fatal("failed to purge data store", zap.Error(err))
			}
		}

		places, err := source.GetPlaces(ctx)
		if err != nil {
			log.Logger().Fatal("failed to read places", zap.Error(err))
		}
		if err = copyRows(cmd, "places", places, target.BatchInsertPlaces); err != nil {
			log.Logger().Fatal("failed to import places", zap.Error(err))
		}
		rules, err := source.GetRules(ctx)
		if err != nil {
			log.Logger().Fatal("failed to read rules", zap.Error(err))
		}
		if err = insertRules(cmd, target, rules); err != nil {
			log.Logger().Fatal("failed to import rules", zap.Error(err))
		}
		placeRatings, err := source.GetPlaceRatings(ctx)
		if err != nil {
			log.Logger().Fatal("failed to read place ratings", zap.Error(err))
		}
		if err = insertPlaceRatings(cmd, target, placeRatings); err != nil {
			log.Logger().Fatal("failed to import place ratings", zap.Error(err))
		}
		users, err := source.GetUsers(ctx)
		if err != nil {
			log.Logger().Fatal("failed to read users", zap.Error(err))
		}
		if err = copyRows(cmd, "users", users, target.BatchInsertUsers); err != nil {
			log.Logger().Fatal("failed to import users", zap.Error(err))
		}
		ratings, err := source.GetRatings(ctx)
		if err != nil {
			log.Logger().Fatal("failed to read ratings", zap.Error(err))
		}
		if err = copyRows(cmd, "ratings", ratings, target.BatchInsertRatings); err != nil {
			log.Logger().Fatal("failed to import ratings", zap.Error(err))
		}
		log.Logger().Info("import data store",
			zap.String("source", log.RedactDBURL(args[0])),
			zap.String("target", log.RedactDBURL(conf.Database.DataStore)),
			zap.Int("n_places", len(places)),
			zap.Int("n_rules", len(rules)),
			zap.Int("n_place_ratings", len(placeRatings)),
			zap.Int("n_users", len(users)),
			zap.Int("n_ratings", len(ratings)))
	},
}

func init() {
	importCommand.Flags().Int("batch-size", 1000, "number of rows per insert")
	importCommand.Flags().String("source-table-prefix", "", "table prefix of the source data store")
	importCommand.Flags().Bool("purge", false, "purge the data store before importing")
	cliCommand.AddCommand(importCommand)
}

// copyRows inserts rows in batches and shows the progress.
func copyRows[T any](cmd *cobra.Command, name string, rows []T, insert func(context.Context, []T) error) error {
	batchSize, _ := cmd.Flags().GetInt("batch-size")
	if batchSize <= 0 {
		batchSize = 1000
	}
	bar := progressbar.Default(int64(len(rows)), name)
	for start := 0; start < len(rows); start += batchSize {
		end := min(start+batchSize, len(rows))
		if err := insert(cmd.Context(), rows[start:end]); err != nil {
			return errors.Annotatef(err, "insert %s [%d, %d)", name, start, end)
		}
		if err := bar.Add(end - start); err != nil {
			return errors.Trace(err)
		}
	}
	return errors.Trace(bar.Finish())
}

func insertRules(cmd *cobra.Command, db data.Database, rules []data.Rule) error {
	return copyRows(cmd, "rules", rules, db.BatchInsertRules)
}

func insertPlaceRatings(cmd *cobra.Command, db data.Database, ratings []data.PlaceRating) error {
	return copyRows(cmd, "place ratings", ratings, db.BatchInsertPlaceRatings)
}
