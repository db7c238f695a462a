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

package config

import (
	"context"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/go-viper/mapstructure/v2"
	"github.com/gorse-io/tourism/base/log"
	"github.com/gorse-io/tourism/storage"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/zipkin"
	"go.opentelemetry.io/otel/sdk/resource"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

// Config is the configuration for the recommender.
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	Recommend RecommendConfig `mapstructure:"recommend"`
	Server    ServerConfig    `mapstructure:"server"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
}

// DatabaseConfig is the configuration for the reference tables.
type DatabaseConfig struct {
	DataStore   string `mapstructure:"data_store" validate:"required,data_store"`
	TablePrefix string `mapstructure:"table_prefix"`
	EncoderPath string `mapstructure:"encoder_path"`
}

// RecommendConfig selects the strategies of the recommendation pipeline.
type RecommendConfig struct {
	NumCategories  int     `mapstructure:"n_categories" validate:"gt=0"`
	NumPlaces      int     `mapstructure:"n_places" validate:"gt=0"`
	Scoring        string  `mapstructure:"scoring" validate:"oneof=similarity collaborative"`
	Boosting       string  `mapstructure:"boosting" validate:"oneof=fractional rank"`
	TripTypeBonus  float64 `mapstructure:"trip_type_bonus" validate:"gte=0"`
	CategoryPolicy string  `mapstructure:"category_policy" validate:"oneof=availability_first top_n"`
	PlaceSelector  string  `mapstructure:"place_selector" validate:"oneof=sampling rating"`
	Backfill       string  `mapstructure:"backfill" validate:"oneof=next_best related none"`
	RandomSeed     int64   `mapstructure:"random_seed"`
	PlaceFilter    string  `mapstructure:"place_filter"`
}

// ServerConfig is the configuration for the REST server.
type ServerConfig struct {
	Host   string `mapstructure:"host" validate:"required"`
	Port   int    `mapstructure:"port" validate:"gte=0,lte=65535"`
	APIKey string `mapstructure:"api_key"`
}

// TracingConfig is the configuration for the opentelemetry exporter.
type TracingConfig struct {
	EnableTracing     bool    `mapstructure:"enable_tracing"`
	Exporter          string  `mapstructure:"exporter" validate:"oneof=zipkin otlp otlphttp"`
	CollectorEndpoint string  `mapstructure:"collector_endpoint"`
	Sampler           string  `mapstructure:"sampler" validate:"oneof=always never ratio"`
	Ratio             float64 `mapstructure:"ratio" validate:"gte=0,lte=1"`
}

// NewTracerProvider creates a tracer provider exporting spans of the given service.
func (config *TracingConfig) NewTracerProvider(ctx context.Context, service string) (trace.TracerProvider, error) {
	if !config.EnableTracing {
		return noop.NewTracerProvider(), nil
	}

	var (
		exporter tracesdk.SpanExporter
		err      error
	)
	switch config.Exporter {
	case "zipkin":
		exporter, err = zipkin.New(config.CollectorEndpoint)
	case "otlp":
		exporter, err = otlptracegrpc.New(ctx,
			otlptracegrpc.WithInsecure(),
			otlptracegrpc.WithEndpoint(config.CollectorEndpoint))
	case "otlphttp":
		exporter, err = otlptracehttp.New(ctx,
			otlptracehttp.WithInsecure(),
			otlptracehttp.WithEndpoint(config.CollectorEndpoint))
	default:
		return nil, errors.NotSupportedf("exporter %s", config.Exporter)
	}
	if err != nil {
		return nil, errors.Trace(err)
	}

	var sampler tracesdk.Sampler
	switch config.Sampler {
	case "always":
		sampler = tracesdk.AlwaysSample()
	case "never":
		sampler = tracesdk.NeverSample()
	case "ratio":
		sampler = tracesdk.TraceIDRatioBased(config.Ratio)
	default:
		return nil, errors.NotSupportedf("sampler %s", config.Sampler)
	}

	return tracesdk.NewTracerProvider(
		tracesdk.WithSampler(tracesdk.ParentBased(sampler)),
		tracesdk.WithBatcher(exporter),
		tracesdk.WithResource(resource.NewSchemaless(
			attribute.String("service.name", service),
		)),
	), nil
}

func GetDefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DataStore:   "csv://data/processed",
			EncoderPath: "models/encoder.json",
		},
		Recommend: RecommendConfig{
			NumCategories:  3,
			NumPlaces:      3,
			Scoring:        "similarity",
			Boosting:       "fractional",
			TripTypeBonus:  0.1,
			CategoryPolicy: "availability_first",
			PlaceSelector:  "sampling",
			Backfill:       "next_best",
		},
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8088,
		},
		Tracing: TracingConfig{
			Exporter: "otlp",
			Sampler:  "always",
			Ratio:    1,
		},
	}
}

func setDefault() {
	defaultConfig := GetDefaultConfig()
	// [database]
	viper.SetDefault("database.data_store", defaultConfig.Database.DataStore)
	viper.SetDefault("database.encoder_path", defaultConfig.Database.EncoderPath)
	// [recommend]
	viper.SetDefault("recommend.n_categories", defaultConfig.Recommend.NumCategories)
	viper.SetDefault("recommend.n_places", defaultConfig.Recommend.NumPlaces)
	viper.SetDefault("recommend.scoring", defaultConfig.Recommend.Scoring)
	viper.SetDefault("recommend.boosting", defaultConfig.Recommend.Boosting)
	viper.SetDefault("recommend.trip_type_bonus", defaultConfig.Recommend.TripTypeBonus)
	viper.SetDefault("recommend.category_policy", defaultConfig.Recommend.CategoryPolicy)
	viper.SetDefault("recommend.place_selector", defaultConfig.Recommend.PlaceSelector)
	viper.SetDefault("recommend.backfill", defaultConfig.Recommend.Backfill)
	// [server]
	viper.SetDefault("server.host", defaultConfig.Server.Host)
	viper.SetDefault("server.port", defaultConfig.Server.Port)
	// [tracing]
	viper.SetDefault("tracing.exporter", defaultConfig.Tracing.Exporter)
	viper.SetDefault("tracing.sampler", defaultConfig.Tracing.Sampler)
	viper.SetDefault("tracing.ratio", defaultConfig.Tracing.Ratio)
}

type configBinding struct {
	key string
	env string
}

// LoadConfig loads configuration from toml file. Environment variables override the file.
func LoadConfig(path string) (*Config, error) {
	// set default config
	setDefault()

	// bind environment bindings
	bindings := []configBinding{
		{"database.data_store", "TOURISM_DATA_STORE"},
		{"database.table_prefix", "TOURISM_TABLE_PREFIX"},
		{"database.encoder_path", "TOURISM_ENCODER_PATH"},
		{"recommend.random_seed", "TOURISM_RANDOM_SEED"},
		{"server.host", "TOURISM_SERVER_HOST"},
		{"server.port", "TOURISM_SERVER_PORT"},
		{"server.api_key", "TOURISM_SERVER_API_KEY"},
		{"tracing.enable_tracing", "TOURISM_ENABLE_TRACING"},
		{"tracing.collector_endpoint", "TOURISM_COLLECTOR_ENDPOINT"},
	}
	for _, binding := range bindings {
		err := viper.BindEnv(binding.key, binding.env)
		if err != nil {
			log.Logger().Fatal("failed to bind a Viper key to a ENV variable", zap.Error(err))
		}
	}

	// load config file
	if path != "" {
		viper.SetConfigType("toml")
		viper.SetConfigFile(path)
		if err := viper.ReadInConfig(); err != nil {
			return nil, errors.Trace(err)
		}
	}

	// unmarshal config file
	var conf Config
	if err := viper.Unmarshal(&conf, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))); err != nil {
		return nil, errors.Trace(err)
	}
	if err := conf.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return &conf, nil
}

// Validate checks every field and the combination of strategies.
func (config *Config) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		return strings.SplitN(field.Tag.Get("mapstructure"), ",", 2)[0]
	})
	if err := validate.RegisterValidation("data_store", func(fl validator.FieldLevel) bool {
		prefixes := []string{
			storage.CSVPrefix,
			storage.MySQLPrefix,
			storage.MongoPrefix,
			storage.MongoSrvPrefix,
			storage.PostgresPrefix,
			storage.PostgreSQLPrefix,
			storage.SQLitePrefix,
		}
		return lo.ContainsBy(prefixes, func(prefix string) bool {
			return strings.HasPrefix(fl.Field().String(), prefix)
		})
	}); err != nil {
		return errors.Trace(err)
	}
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return errors.Trace(err)
	}
	if err := validate.RegisterTranslation("data_store", trans, func(ut ut.Translator) error {
		return ut.Add("data_store", "{0} must start with a supported scheme", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("data_store", fe.Field())
		return t
	}); err != nil {
		return errors.Trace(err)
	}

	if err := validate.Struct(config); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			messages := lo.Map(validationErrors, func(fe validator.FieldError, _ int) string {
				return fe.Translate(trans)
			})
			return errors.NotValidf("config: %s", strings.Join(messages, "; "))
		}
		return errors.Trace(err)
	}
	if config.Recommend.CategoryPolicy == "top_n" && config.Recommend.Backfill == "next_best" {
		return errors.NotValidf("config: backfill next_best with category_policy top_n, use related or none")
	}
	if config.Recommend.Scoring == "similarity" && config.Database.EncoderPath == "" {
		return errors.NotValidf("config: encoder_path is required by similarity scoring")
	}
	return nil
}
