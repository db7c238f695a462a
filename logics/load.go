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

	"github.com/gorse-io/tourism/base/log"
	"github.com/gorse-io/tourism/config"
	"github.com/gorse-io/tourism/dataset"
	"github.com/gorse-io/tourism/storage/data"
	"github.com/juju/errors"
	"go.uber.org/zap"
)

// LoadEngine loads the reference tables from the data store and builds an engine. The encoder
// is only loaded for similarity scoring.
func LoadEngine(ctx context.Context, cfg *config.Config) (*Engine, error) {
	db, err := data.Open(cfg.Database.DataStore, cfg.Database.TablePrefix)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Logger().Warn("failed to close data store", zap.Error(err))
		}
	}()
	tables, err := data.LoadTables(ctx, db)
	if err != nil {
		return nil, errors.Trace(err)
	}
	log.Logger().Info("load tables",
		zap.String("data_store", log.RedactDBURL(cfg.Database.DataStore)),
		zap.Int("n_places", len(tables.Places)),
		zap.Int("n_rules", len(tables.Rules)),
		zap.Int("n_place_ratings", len(tables.PlaceRatings)))

	var encoder *dataset.Encoder
	if cfg.Recommend.Scoring == SimilarityScoring {
		if encoder, err = dataset.LoadEncoder(cfg.Database.EncoderPath); err != nil {
			return nil, errors.Annotatef(err, "load encoder from %s", cfg.Database.EncoderPath)
		}
	}
	return NewEngine(cfg.Recommend, tables, encoder)
}
