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
	"database/sql"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/gorse-io/tourism/storage"
	"github.com/juju/errors"
	_ "github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	_ "modernc.org/sqlite"
)

type SQLDriver int

const (
	MySQL SQLDriver = iota
	Postgres
	SQLite
)

// SQLDatabase stores tables in MySQL, Postgres or SQLite.
type SQLDatabase struct {
	storage.TablePrefix
	gormDB *gorm.DB
	client *sql.DB
	driver SQLDriver
}

// Init tables and indices.
func (d *SQLDatabase) Init() error {
	db := d.gormDB
	if d.driver == MySQL {
		db = db.Set("gorm:table_options", "ENGINE=InnoDB")
	}
	if err := db.AutoMigrate(&Place{}, &Rule{}, &PlaceRating{}, &User{}, &Rating{}); err != nil {
		return errors.Trace(err)
	}
	return nil
}

func (d *SQLDatabase) Close() error {
	return d.client.Close()
}

// Purge deletes every row but keeps the tables.
func (d *SQLDatabase) Purge() error {
	for _, tableName := range []string{d.PlacesTable(), d.RulesTable(), d.PlaceRatingsTable(), d.UsersTable(), d.RatingsTable()} {
		if err := d.gormDB.Exec("DELETE FROM " + tableName).Error; err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}

func (d *SQLDatabase) GetPlaces(ctx context.Context) ([]Place, error) {
	var places []Place
	if err := d.gormDB.WithContext(ctx).Order("place_id").Find(&places).Error; err != nil {
		return nil, errors.Trace(err)
	}
	return places, nil
}

func (d *SQLDatabase) GetRules(ctx context.Context) ([]Rule, error) {
	var rules []Rule
	if err := d.gormDB.WithContext(ctx).Order("category").Order("total_users DESC").Find(&rules).Error; err != nil {
		return nil, errors.Trace(err)
	}
	return rules, nil
}

func (d *SQLDatabase) GetPlaceRatings(ctx context.Context) ([]PlaceRating, error) {
	var ratings []PlaceRating
	if err := d.gormDB.WithContext(ctx).Order("place_id").Order("gender").Order("age_group").Find(&ratings).Error; err != nil {
		return nil, errors.Trace(err)
	}
	return ratings, nil
}

func (d *SQLDatabase) GetUsers(ctx context.Context) ([]User, error) {
	var users []User
	if err := d.gormDB.WithContext(ctx).Order("user_id").Find(&users).Error; err != nil {
		return nil, errors.Trace(err)
	}
	return users, nil
}

func (d *SQLDatabase) GetRatings(ctx context.Context) ([]Rating, error) {
	var ratings []Rating
	if err := d.gormDB.WithContext(ctx).Find(&ratings).Error; err != nil {
		return nil, errors.Trace(err)
	}
	return ratings, nil
}

// BatchInsertPlaces inserts places. Existing places are overwritten.
func (d *SQLDatabase) BatchInsertPlaces(ctx context.Context, places []Place) error {
	if len(places) == 0 {
		return nil
	}
	defer observeBatchInsert(d.PlacesTable(), time.Now())
	return errors.Trace(d.gormDB.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&places).Error)
}

// BatchInsertRules inserts rules. Existing rules of the same segment are overwritten.
func (d *SQLDatabase) BatchInsertRules(ctx context.Context, rules []Rule) error {
	if len(rules) == 0 {
		return nil
	}
	defer observeBatchInsert(d.RulesTable(), time.Now())
	return errors.Trace(d.gormDB.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&rules).Error)
}

func (d *SQLDatabase) BatchInsertPlaceRatings(ctx context.Context, ratings []PlaceRating) error {
	if len(ratings) == 0 {
		return nil
	}
	defer observeBatchInsert(d.PlaceRatingsTable(), time.Now())
	return errors.Trace(d.gormDB.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&ratings).Error)
}

func (d *SQLDatabase) BatchInsertUsers(ctx context.Context, users []User) error {
	if len(users) == 0 {
		return nil
	}
	defer observeBatchInsert(d.UsersTable(), time.Now())
	return errors.Trace(d.gormDB.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&users).Error)
}

// BatchInsertRatings appends ratings. Ratings have no key, so duplicates are kept.
func (d *SQLDatabase) BatchInsertRatings(ctx context.Context, ratings []Rating) error {
	if len(ratings) == 0 {
		return nil
	}
	defer observeBatchInsert(d.RatingsTable(), time.Now())
	return errors.Trace(d.gormDB.WithContext(ctx).Create(&ratings).Error)
}

func observeBatchInsert(table string, start time.Time) {
	BatchInsertSeconds.WithLabelValues(table).Observe(time.Since(start).Seconds())
}
