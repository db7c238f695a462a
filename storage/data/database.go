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
	"sort"
	"strings"
	"time"

	"github.com/XSAM/otelsql"
	"github.com/gorse-io/tourism/storage"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/mongo/otelmongo"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var (
	ErrNoPlaces = errors.NotFoundf("places")
	ErrNoRules  = errors.NotFoundf("rules")
)

// Place is a tourism destination. Places are reference data and never mutated after loading.
type Place struct {
	PlaceId     int      `gorm:"primaryKey;autoIncrement:false" bson:"_id" json:"place_id"`
	PlaceName   string   `bson:"place_name" json:"place_name"`
	City        string   `gorm:"index" bson:"city" json:"city"`
	Category    string   `gorm:"index" bson:"category" json:"category"`
	Description string   `bson:"description" json:"description"`
	Rating      *float64 `bson:"rating,omitempty" json:"rating,omitempty"`
	RatingCount *int     `bson:"rating_count,omitempty" json:"rating_count,omitempty"`
	ImageUrls   []string `gorm:"serializer:json" bson:"image_urls" json:"image_urls,omitempty"`
}

// Rule is the popularity of a category among a (gender, age group) segment.
type Rule struct {
	Category   string `gorm:"primaryKey" bson:"category" json:"category"`
	Gender     string `gorm:"primaryKey" bson:"gender" json:"gender"`
	AgeGroup   string `gorm:"primaryKey" bson:"age_group" json:"age_group"`
	Location   string `bson:"location" json:"location"`
	TripType   string `bson:"trip_type" json:"trip_type"`
	TotalUsers int    `bson:"total_users" json:"total_users"`
}

// PlaceRating is the average rating of a place given by a (gender, age group) segment.
type PlaceRating struct {
	PlaceId       int     `gorm:"primaryKey;autoIncrement:false" bson:"place_id" json:"place_id"`
	Gender        string  `gorm:"primaryKey" bson:"gender" json:"gender"`
	AgeGroup      string  `gorm:"primaryKey" bson:"age_group" json:"age_group"`
	AverageRating float64 `bson:"average_rating" json:"average_rating"`
	RatingCount   int     `bson:"rating_count" json:"rating_count"`
}

type User struct {
	UserId   int    `gorm:"primaryKey;autoIncrement:false" bson:"_id" json:"user_id"`
	Location string `bson:"location" json:"location"`
	Age      int    `bson:"age" json:"age"`
	Gender   string `bson:"gender" json:"gender"`
}

type Rating struct {
	UserId      int    `gorm:"index" bson:"user_id" json:"user_id"`
	PlaceId     int    `gorm:"index" bson:"place_id" json:"place_id"`
	PlaceRating int    `bson:"place_rating" json:"place_rating"`
	TripType    string `bson:"trip_type" json:"trip_type"`
}

type Database interface {
	Init() error
	Close() error
	Purge() error
	GetPlaces(ctx context.Context) ([]Place, error)
	GetRules(ctx context.Context) ([]Rule, error)
	GetPlaceRatings(ctx context.Context) ([]PlaceRating, error)
	GetUsers(ctx context.Context) ([]User, error)
	GetRatings(ctx context.Context) ([]Rating, error)
	BatchInsertPlaces(ctx context.Context, places []Place) error
	BatchInsertRules(ctx context.Context, rules []Rule) error
	BatchInsertPlaceRatings(ctx context.Context, ratings []PlaceRating) error
	BatchInsertUsers(ctx context.Context, users []User) error
	BatchInsertRatings(ctx context.Context, ratings []Rating) error
}

// Open a connection to a database.
func Open(path, tablePrefix string) (Database, error) {
	var err error
	if strings.HasPrefix(path, storage.CSVPrefix) {
		return &CSVDatabase{dir: path[len(storage.CSVPrefix):]}, nil
	} else if strings.HasPrefix(path, storage.MySQLPrefix) {
		name := path[len(storage.MySQLPrefix):]
		if name, err = storage.AppendMySQLParams(name, map[string]string{
			"sql_mode":  "'ONLY_FULL_GROUP_BY,STRICT_TRANS_TABLES,ERROR_FOR_DIVISION_BY_ZERO,NO_ENGINE_SUBSTITUTION'",
			"parseTime": "true",
		}); err != nil {
			return nil, errors.Trace(err)
		}
		database := new(SQLDatabase)
		database.driver = MySQL
		database.TablePrefix = storage.TablePrefix(tablePrefix)
		if database.client, err = otelsql.Open("mysql", name,
			otelsql.WithAttributes(attribute.String("db.system", "mysql")),
			otelsql.WithSpanOptions(otelsql.SpanOptions{DisableErrSkip: true}),
		); err != nil {
			return nil, errors.Trace(err)
		}
		database.gormDB, err = gorm.Open(mysql.New(mysql.Config{Conn: database.client}), storage.NewGORMConfig(tablePrefix))
		if err != nil {
			return nil, errors.Trace(err)
		}
		return database, nil
	} else if strings.HasPrefix(path, storage.PostgresPrefix) || strings.HasPrefix(path, storage.PostgreSQLPrefix) {
		database := new(SQLDatabase)
		database.driver = Postgres
		database.TablePrefix = storage.TablePrefix(tablePrefix)
		if database.client, err = otelsql.Open("postgres", path,
			otelsql.WithAttributes(attribute.String("db.system", "postgresql")),
			otelsql.WithSpanOptions(otelsql.SpanOptions{DisableErrSkip: true}),
		); err != nil {
			return nil, errors.Trace(err)
		}
		database.gormDB, err = gorm.Open(postgres.New(postgres.Config{Conn: database.client}), storage.NewGORMConfig(tablePrefix))
		if err != nil {
			return nil, errors.Trace(err)
		}
		return database, nil
	} else if strings.HasPrefix(path, storage.MongoPrefix) || strings.HasPrefix(path, storage.MongoSrvPrefix) {
		database := new(MongoDB)
		opts := options.Client()
		opts.Monitor = otelmongo.NewMonitor()
		opts.ApplyURI(path)
		if database.client, err = mongo.Connect(context.Background(), opts); err != nil {
			return nil, errors.Trace(err)
		}
		// parse DSN and extract database name
		if cs, err := connstring.ParseAndValidate(path); err != nil {
			return nil, errors.Trace(err)
		} else {
			database.dbName = cs.Database
			database.TablePrefix = storage.TablePrefix(tablePrefix)
		}
		return database, nil
	} else if strings.HasPrefix(path, storage.SQLitePrefix) {
		if path, err = storage.AppendURLParams(path, []lo.Tuple2[string, string]{
			{"_pragma", "busy_timeout(10000)"},
			{"_pragma", "journal_mode(wal)"},
		}); err != nil {
			return nil, errors.Trace(err)
		}
		name := path[len(storage.SQLitePrefix):]
		database := new(SQLDatabase)
		database.driver = SQLite
		database.TablePrefix = storage.TablePrefix(tablePrefix)
		if database.client, err = otelsql.Open("sqlite", name,
			otelsql.WithAttributes(attribute.String("db.system", "sqlite")),
			otelsql.WithSpanOptions(otelsql.SpanOptions{DisableErrSkip: true}),
		); err != nil {
			return nil, errors.Trace(err)
		}
		database.gormDB, err = gorm.Open(sqlite.Dialector{Conn: database.client}, storage.NewGORMConfig(tablePrefix))
		if err != nil {
			return nil, errors.Trace(err)
		}
		return database, nil
	}
	return nil, errors.Errorf("Unknown database: %s", path)
}

// Tables are the reference tables served by the recommender.
type Tables struct {
	Places       []Place
	Rules        []Rule
	PlaceRatings []PlaceRating
}

// LoadTables reads places, rules and place ratings. Empty place or rule tables are fatal. The place
// rating table is optional.
func LoadTables(ctx context.Context, db Database) (*Tables, error) {
	var (
		tables Tables
		err    error
	)
	start := time.Now()
	if tables.Places, err = db.GetPlaces(ctx); err != nil {
		return nil, errors.Trace(err)
	} else if len(tables.Places) == 0 {
		return nil, errors.Trace(ErrNoPlaces)
	}
	LoadPlacesSeconds.Observe(time.Since(start).Seconds())
	seen := make(map[int]struct{}, len(tables.Places))
	for _, place := range tables.Places {
		if _, exist := seen[place.PlaceId]; exist {
			return nil, errors.NotValidf("duplicate place id %d", place.PlaceId)
		}
		seen[place.PlaceId] = struct{}{}
	}

	start = time.Now()
	rules, err := db.GetRules(ctx)
	if err != nil {
		return nil, errors.Trace(err)
	} else if len(rules) == 0 {
		return nil, errors.Trace(ErrNoRules)
	}
	tables.Rules = DeduplicateRules(rules)
	LoadRulesSeconds.Observe(time.Since(start).Seconds())

	start = time.Now()
	if tables.PlaceRatings, err = db.GetPlaceRatings(ctx); err != nil {
		return nil, errors.Trace(err)
	}
	LoadPlaceRatingsSeconds.Observe(time.Since(start).Seconds())
	return &tables, nil
}

// DeduplicateRules keeps one rule per (category, gender, age group), the one with the most users.
// The first occurrence wins a tie. The result is sorted by category, then by users in descending order.
func DeduplicateRules(rules []Rule) []Rule {
	type key struct {
		Category string
		Gender   string
		AgeGroup string
	}
	best := make(map[key]int)
	var result []Rule
	for _, rule := range rules {
		k := key{rule.Category, rule.Gender, rule.AgeGroup}
		if i, exist := best[k]; !exist {
			best[k] = len(result)
			result = append(result, rule)
		} else if rule.TotalUsers > result[i].TotalUsers {
			result[i] = rule
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Category != result[j].Category {
			return result[i].Category < result[j].Category
		}
		return result[i].TotalUsers > result[j].TotalUsers
	})
	return result
}
