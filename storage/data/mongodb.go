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
	"time"

	"github.com/gorse-io/tourism/storage"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoDB stores tables as collections.
type MongoDB struct {
	storage.TablePrefix
	client *mongo.Client
	dbName string
}

// Init collections and indices in MongoDB.
func (db *MongoDB) Init() error {
	ctx := context.Background()
	d := db.client.Database(db.dbName)
	collections, err := d.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return errors.Trace(err)
	}
	for _, name := range []string{db.PlacesTable(), db.RulesTable(), db.PlaceRatingsTable(), db.UsersTable(), db.RatingsTable()} {
		if !lo.Contains(collections, name) {
			if err = d.CreateCollection(ctx, name); err != nil {
				return errors.Trace(err)
			}
		}
	}
	// create indices
	if _, err = d.Collection(db.PlacesTable()).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{"city", 1}, {"category", 1}},
	}); err != nil {
		return errors.Trace(err)
	}
	if _, err = d.Collection(db.RulesTable()).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{"category", 1}, {"gender", 1}, {"age_group", 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return errors.Trace(err)
	}
	if _, err = d.Collection(db.PlaceRatingsTable()).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{"place_id", 1}, {"gender", 1}, {"age_group", 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return errors.Trace(err)
	}
	return nil
}

func (db *MongoDB) Close() error {
	return db.client.Disconnect(context.Background())
}

func (db *MongoDB) Purge() error {
	ctx := context.Background()
	d := db.client.Database(db.dbName)
	for _, name := range []string{db.PlacesTable(), db.RulesTable(), db.PlaceRatingsTable(), db.UsersTable(), db.RatingsTable()} {
		if _, err := d.Collection(name).DeleteMany(ctx, bson.D{}); err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}

func (db *MongoDB) GetPlaces(ctx context.Context) ([]Place, error) {
	var places []Place
	err := db.find(ctx, db.PlacesTable(), bson.D{{"_id", 1}}, &places)
	return places, errors.Trace(err)
}

func (db *MongoDB) GetRules(ctx context.Context) ([]Rule, error) {
	var rules []Rule
	err := db.find(ctx, db.RulesTable(), bson.D{{"category", 1}, {"total_users", -1}}, &rules)
	return rules, errors.Trace(err)
}

func (db *MongoDB) GetPlaceRatings(ctx context.Context) ([]PlaceRating, error) {
	var ratings []PlaceRating
	err := db.find(ctx, db.PlaceRatingsTable(), bson.D{{"place_id", 1}, {"gender", 1}, {"age_group", 1}}, &ratings)
	return ratings, errors.Trace(err)
}

func (db *MongoDB) GetUsers(ctx context.Context) ([]User, error) {
	var users []User
	err := db.find(ctx, db.UsersTable(), bson.D{{"_id", 1}}, &users)
	return users, errors.Trace(err)
}

func (db *MongoDB) GetRatings(ctx context.Context) ([]Rating, error) {
	var ratings []Rating
	err := db.find(ctx, db.RatingsTable(), nil, &ratings)
	return ratings, errors.Trace(err)
}

func (db *MongoDB) BatchInsertPlaces(ctx context.Context, places []Place) error {
	return db.upsert(ctx, db.PlacesTable(), lo.Map(places, func(place Place, _ int) mongo.WriteModel {
		return mongo.NewUpdateOneModel().
			SetUpsert(true).
			SetFilter(bson.M{"_id": place.PlaceId}).
			SetUpdate(bson.M{"$set": place})
	}))
}

func (db *MongoDB) BatchInsertRules(ctx context.Context, rules []Rule) error {
	return db.upsert(ctx, db.RulesTable(), lo.Map(rules, func(rule Rule, _ int) mongo.WriteModel {
		return mongo.NewUpdateOneModel().
			SetUpsert(true).
			SetFilter(bson.M{"category": rule.Category, "gender": rule.Gender, "age_group": rule.AgeGroup}).
			SetUpdate(bson.M{"$set": rule})
	}))
}

func (db *MongoDB) BatchInsertPlaceRatings(ctx context.Context, ratings []PlaceRating) error {
	return db.upsert(ctx, db.PlaceRatingsTable(), lo.Map(ratings, func(rating PlaceRating, _ int) mongo.WriteModel {
		return mongo.NewUpdateOneModel().
			SetUpsert(true).
			SetFilter(bson.M{"place_id": rating.PlaceId, "gender": rating.Gender, "age_group": rating.AgeGroup}).
			SetUpdate(bson.M{"$set": rating})
	}))
}

func (db *MongoDB) BatchInsertUsers(ctx context.Context, users []User) error {
	return db.upsert(ctx, db.UsersTable(), lo.Map(users, func(user User, _ int) mongo.WriteModel {
		return mongo.NewUpdateOneModel().
			SetUpsert(true).
			SetFilter(bson.M{"_id": user.UserId}).
			SetUpdate(bson.M{"$set": user})
	}))
}

func (db *MongoDB) BatchInsertRatings(ctx context.Context, ratings []Rating) error {
	return db.upsert(ctx, db.RatingsTable(), lo.Map(ratings, func(rating Rating, _ int) mongo.WriteModel {
		return mongo.NewInsertOneModel().SetDocument(rating)
	}))
}

func (db *MongoDB) find(ctx context.Context, collection string, sort bson.D, results any) error {
	opt := options.Find()
	if sort != nil {
		opt.SetSort(sort)
	}
	c := db.client.Database(db.dbName).Collection(collection)
	cursor, err := c.Find(ctx, bson.M{}, opt)
	if err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(cursor.All(ctx, results))
}

func (db *MongoDB) upsert(ctx context.Context, collection string, models []mongo.WriteModel) error {
	if len(models) == 0 {
		return nil
	}
	defer observeBatchInsert(collection, time.Now())
	c := db.client.Database(db.dbName).Collection(collection)
	_, err := c.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	return errors.Trace(err)
}
