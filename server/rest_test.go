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

package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/emicklei/go-restful/v3"
	"github.com/gorse-io/tourism/config"
	"github.com/gorse-io/tourism/dataset"
	"github.com/gorse-io/tourism/logics"
	"github.com/gorse-io/tourism/storage/data"
	"github.com/samber/lo"
	"github.com/steinfletcher/apitest"
	"github.com/stretchr/testify/suite"
)

const apiKey = "test_api_key"

type ServerTestSuite struct {
	suite.Suite
	*RestServer
	handler *restful.Container
}

func (suite *ServerTestSuite) SetupSuite() {
	tables := &data.Tables{
		Places: []data.Place{
			{PlaceId: 1, PlaceName: "Candi Prambanan", City: "Yogyakarta", Category: "Budaya", ImageUrls: []string{"https://example.com/1.jpg"}},
			{PlaceId: 2, PlaceName: "Keraton Yogyakarta", City: "Yogyakarta", Category: "Budaya"},
			{PlaceId: 3, PlaceName: "Pantai Ancol", City: "Jakarta", Category: "Bahari"},
		},
		Rules: []data.Rule{
			{Category: "Bahari", Gender: "Laki-laki", AgeGroup: "Young Adult", Location: "Jakarta", TripType: "Friends Trip", TotalUsers: 40},
			{Category: "Budaya", Gender: "Laki-laki", AgeGroup: "Young Adult", Location: "Bandung", TripType: "Solo Trip", TotalUsers: 30},
			{Category: "Bahari", Gender: "Perempuan", AgeGroup: "Young Adult", Location: "Bekasi", TripType: "Couple Trip", TotalUsers: 35},
			{Category: "Budaya", Gender: "Perempuan", AgeGroup: "Adult", Location: "Yogyakarta", TripType: "Friends Trip", TotalUsers: 12},
		},
	}
	cfg := config.GetDefaultConfig()
	cfg.Recommend.RandomSeed = 42
	cfg.Server.APIKey = apiKey
	engine, err := logics.NewEngine(cfg.Recommend, tables, dataset.FitEncoder(tables.Rules))
	suite.Require().NoError(err)
	suite.RestServer = NewRestServer(cfg, engine)
	suite.handler = suite.CreateContainer()
}

func (suite *ServerTestSuite) marshal(v any) string {
	s, err := json.Marshal(v)
	suite.NoError(err)
	return string(s)
}

func bodyContains(substr string) func(*http.Response, *http.Request) error {
	return func(res *http.Response, _ *http.Request) error {
		body, err := io.ReadAll(res.Body)
		if err != nil {
			return err
		}
		if !strings.Contains(string(body), substr) {
			return fmt.Errorf("expect %q in response body %q", substr, string(body))
		}
		return nil
	}
}

func decodeBody(v any) func(*http.Response, *http.Request) error {
	return func(res *http.Response, _ *http.Request) error {
		return json.NewDecoder(res.Body).Decode(v)
	}
}

func (suite *ServerTestSuite) TestPostRecommend() {
	t := suite.T()
	var response RecommendResponse
	apitest.New().
		Handler(suite.handler).
		Post("/api/recommend").
		Header("X-API-Key", apiKey).
		JSON(RecommendRequest{
			Gender:        "Laki-laki",
			Age:           25,
			City:          "Yogyakarta",
			TripType:      "Solo Trip",
			NumCategories: 1,
			NumPlaces:     2,
		}).
		Expect(t).
		Status(http.StatusOK).
		Assert(decodeBody(&response)).
		End()
	suite.Equal(logics.Profile{
		Gender:   dataset.GenderMale,
		AgeGroup: dataset.AgeYoungAdult,
		City:     "Yogyakarta",
		TripType: dataset.SoloTrip,
	}, response.Profile)
	suite.Require().Len(response.Recommendations, 1)
	recommendation := response.Recommendations[0]
	suite.Equal("Budaya", recommendation.Category)
	suite.Equal(dataset.Budaya.Description(), recommendation.Description)
	suite.Equal(logics.SimilarityScoring, recommendation.Score.Method)
	suite.InDelta(1.3, recommendation.Score.FinalScore, 1e-9)
	suite.Equal("Solo Trip", recommendation.UserMatch.TripType)
	suite.ElementsMatch([]int{1, 2}, lo.Map(recommendation.Places, func(place data.Place, _ int) int {
		return place.PlaceId
	}))
	suite.Equal(2, recommendation.PlacesFound)
	suite.Equal(2, recommendation.PlacesRequested)
}

func (suite *ServerTestSuite) TestGetRecommend() {
	t := suite.T()
	var response RecommendResponse
	apitest.New().
		Handler(suite.handler).
		Get("/api/recommend").
		Header("X-API-Key", apiKey).
		QueryParams(map[string]string{
			"gender":    "Tidak ingin menyebutkan",
			"age_group": "Young Adult",
			"city":      "Jakarta",
			"trip_type": "Couple Trip",
		}).
		Expect(t).
		Status(http.StatusOK).
		Assert(decodeBody(&response)).
		End()
	// defaults from the configuration
	suite.Len(response.Recommendations, 2)
	bahari := response.Recommendations[0]
	suite.Equal("Bahari", bahari.Category)
	suite.Equal(1, bahari.PlacesFound)
	suite.Equal(3, bahari.PlacesRequested)
	suite.Equal("Budaya", response.Recommendations[1].Category)
	suite.Zero(response.Recommendations[1].PlacesFound)
	suite.NotNil(response.Recommendations[1].Places)
}

func (suite *ServerTestSuite) TestIncompleteProfile() {
	t := suite.T()
	for _, request := range []RecommendRequest{
		{Gender: "Laki-laki", Age: 25, TripType: "Solo Trip"},
		{Gender: "Laki-laki", City: "Yogyakarta", TripType: "Solo Trip"},
		{Gender: "Laki-laki", Age: 12, City: "Yogyakarta", TripType: "Solo Trip"},
		{Gender: "Pria", Age: 25, City: "Yogyakarta", TripType: "Solo Trip"},
		{Gender: "Laki-laki", AgeGroup: "Senior", City: "Yogyakarta", TripType: "Solo Trip"},
		{Gender: "Laki-laki", Age: 25, City: "  ", TripType: "Solo Trip"},
		{Gender: "Laki-laki", Age: 25, City: "Yogyakarta", TripType: "Business Trip"},
	} {
		apitest.New().
			Handler(suite.handler).
			Post("/api/recommend").
			Header("X-API-Key", apiKey).
			JSON(request).
			Expect(t).
			Status(http.StatusBadRequest).
			Assert(bodyContains("incomplete profile")).
			End()
	}
	apitest.New().
		Handler(suite.handler).
		Get("/api/recommend").
		Header("X-API-Key", apiKey).
		QueryParams(map[string]string{
			"gender":    "Laki-laki",
			"age":       "twenty",
			"city":      "Yogyakarta",
			"trip_type": "Solo Trip",
		}).
		Expect(t).
		Status(http.StatusBadRequest).
		Assert(bodyContains("incomplete profile")).
		End()
	apitest.New().
		Handler(suite.handler).
		Post("/api/recommend").
		Header("X-API-Key", apiKey).
		ContentType("application/json").
		Body("{").
		Expect(t).
		Status(http.StatusBadRequest).
		End()
}

func (suite *ServerTestSuite) TestAuth() {
	t := suite.T()
	apitest.New().
		Handler(suite.handler).
		Get("/api/categories").
		Expect(t).
		Status(http.StatusUnauthorized).
		End()
	apitest.New().
		Handler(suite.handler).
		Post("/api/recommend").
		Header("X-API-Key", "wrong").
		JSON(RecommendRequest{Gender: "Laki-laki", Age: 25, City: "Yogyakarta", TripType: "Solo Trip"}).
		Expect(t).
		Status(http.StatusUnauthorized).
		End()
	// health checks are public
	apitest.New().
		Handler(suite.handler).
		Get("/api/health").
		Expect(t).
		Status(http.StatusOK).
		Body(suite.marshal(Health{Ready: true, NumPlaces: 3})).
		End()
}

func (suite *ServerTestSuite) TestCategories() {
	apitest.New().
		Handler(suite.handler).
		Get("/api/categories").
		Header("X-API-Key", apiKey).
		Expect(suite.T()).
		Status(http.StatusOK).
		Body(suite.marshal(lo.Map(dataset.Categories, func(category dataset.Category, _ int) Category {
			return Category{Name: string(category), Description: category.Description()}
		}))).
		End()
}

func (suite *ServerTestSuite) TestCities() {
	apitest.New().
		Handler(suite.handler).
		Get("/api/cities").
		Header("X-API-Key", apiKey).
		Expect(suite.T()).
		Status(http.StatusOK).
		Body(`["Jakarta","Yogyakarta"]`).
		End()
}

func (suite *ServerTestSuite) TestPlace() {
	t := suite.T()
	apitest.New().
		Handler(suite.handler).
		Get("/api/place/1").
		Header("X-API-Key", apiKey).
		Expect(t).
		Status(http.StatusOK).
		Body(suite.marshal(data.Place{
			PlaceId:   1,
			PlaceName: "Candi Prambanan",
			City:      "Yogyakarta",
			Category:  "Budaya",
			ImageUrls: []string{"https://example.com/1.jpg"},
		})).
		End()
	apitest.New().
		Handler(suite.handler).
		Get("/api/place/99").
		Header("X-API-Key", apiKey).
		Expect(t).
		Status(http.StatusNotFound).
		End()
	apitest.New().
		Handler(suite.handler).
		Get("/api/place/abc").
		Header("X-API-Key", apiKey).
		Expect(t).
		Status(http.StatusBadRequest).
		End()
}

func (suite *ServerTestSuite) TestRequestId() {
	t := suite.T()
	apitest.New().
		Handler(suite.handler).
		Get("/api/health").
		Header("X-Request-ID", "0f3c").
		Expect(t).
		Status(http.StatusOK).
		Header("X-Request-ID", "0f3c").
		End()
	apitest.New().
		Handler(suite.handler).
		Get("/api/health").
		Expect(t).
		Status(http.StatusOK).
		HeaderPresent("X-Request-ID").
		End()
}

func (suite *ServerTestSuite) TestDocsAndMetrics() {
	t := suite.T()
	apitest.New().
		Handler(suite.handler).
		Get("/apidocs.json").
		Expect(t).
		Status(http.StatusOK).
		Assert(bodyContains("/api/recommend")).
		End()
	apitest.New().
		Handler(suite.handler).
		Get("/metrics").
		Expect(t).
		Status(http.StatusOK).
		End()
}

func TestServer(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}
