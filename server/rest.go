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
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	"github.com/emicklei/go-restful/v3"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/google/uuid"
	"github.com/gorse-io/tourism/base/log"
	"github.com/gorse-io/tourism/dataset"
	"github.com/gorse-io/tourism/logics"
	"github.com/gorse-io/tourism/storage/data"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"go.opentelemetry.io/contrib/instrumentation/github.com/emicklei/go-restful/otelrestful"
	"go.uber.org/zap"
)

// RecommendRequest is the profile submitted for a recommendation. Either age or age_group is required.
type RecommendRequest struct {
	Gender        string `json:"gender" validate:"required"`
	Age           int    `json:"age" validate:"gte=0"`
	AgeGroup      string `json:"age_group"`
	City          string `json:"city" validate:"required"`
	TripType      string `json:"trip_type" validate:"required"`
	NumCategories int    `json:"n_categories" validate:"gte=0"`
	NumPlaces     int    `json:"n_places" validate:"gte=0"`
}

// Profile converts the request to a profile. A non-empty age group wins over age.
func (r *RecommendRequest) Profile() (logics.Profile, error) {
	if r.AgeGroup != "" {
		return logics.ParseProfile(r.Gender, r.AgeGroup, r.City, r.TripType)
	}
	return logics.NewProfile(r.Gender, r.Age, r.City, r.TripType)
}

type RecommendResponse struct {
	Profile         logics.Profile          `json:"profile"`
	Recommendations []logics.Recommendation `json:"recommendations"`
}

type Category struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type Health struct {
	Ready     bool `json:"ready"`
	NumPlaces int  `json:"n_places"`
}

// LogFilter assigns a request id and logs every request with its status and latency.
func LogFilter(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
	requestId := req.HeaderParameter("X-Request-ID")
	if requestId == "" {
		requestId = uuid.NewString()
		req.Request.Header.Set("X-Request-ID", requestId)
	}
	resp.AddHeader("X-Request-ID", requestId)
	start := time.Now()
	chain.ProcessFilter(req, resp)
	latency := time.Since(start)
	RequestSeconds.WithLabelValues(req.SelectedRoutePath(), strconv.Itoa(resp.StatusCode())).Observe(latency.Seconds())
	log.RequestLogger(req).Info(fmt.Sprintf("%s %s", req.Request.Method, req.Request.URL),
		zap.Int("status_code", resp.StatusCode()),
		zap.Duration("latency", latency))
}

// CreateWebService creates web service.
func (s *RestServer) CreateWebService() {
	ws := s.WebService
	ws.Consumes(restful.MIME_JSON).Produces(restful.MIME_JSON)
	ws.Path("/api/")
	ws.Filter(otelrestful.OTelFilter("tourism"))
	ws.Filter(LogFilter)

	ws.Route(ws.GET("/health").To(s.getHealth).
		Doc("Check whether the server is ready.").
		Metadata(restfulspec.KeyOpenAPITags, []string{"health"}).
		Writes(Health{}))

	// Recommend categories and places
	ws.Route(ws.POST("/recommend").To(s.postRecommend).
		Doc("Recommend categories and places for a traveller.").
		Metadata(restfulspec.KeyOpenAPITags, []string{"recommendation"}).
		Param(ws.HeaderParameter("X-API-Key", "secret key for RESTful API")).
		Reads(RecommendRequest{}).
		Returns(http.StatusOK, "OK", RecommendResponse{}).
		Returns(http.StatusBadRequest, "incomplete profile", nil).
		Writes(RecommendResponse{}))
	ws.Route(ws.GET("/recommend").To(s.getRecommend).
		Doc("Recommend categories and places for a traveller.").
		Metadata(restfulspec.KeyOpenAPITags, []string{"recommendation"}).
		Param(ws.HeaderParameter("X-API-Key", "secret key for RESTful API")).
		Param(ws.QueryParameter("gender", "gender of the traveller").DataType("string")).
		Param(ws.QueryParameter("age", "age of the traveller").DataType("integer")).
		Param(ws.QueryParameter("age_group", "age group of the traveller, used instead of age").DataType("string")).
		Param(ws.QueryParameter("city", "destination city").DataType("string")).
		Param(ws.QueryParameter("trip_type", "trip type").DataType("string")).
		Param(ws.QueryParameter("n_categories", "number of returned categories").DataType("integer")).
		Param(ws.QueryParameter("n_places", "number of returned places per category").DataType("integer")).
		Returns(http.StatusOK, "OK", RecommendResponse{}).
		Returns(http.StatusBadRequest, "incomplete profile", nil).
		Writes(RecommendResponse{}))

	// Vocabulary
	ws.Route(ws.GET("/categories").To(s.getCategories).
		Doc("Get categories.").
		Metadata(restfulspec.KeyOpenAPITags, []string{"vocabulary"}).
		Param(ws.HeaderParameter("X-API-Key", "secret key for RESTful API")).
		Writes([]Category{}))
	ws.Route(ws.GET("/cities").To(s.getCities).
		Doc("Get cities with places.").
		Metadata(restfulspec.KeyOpenAPITags, []string{"vocabulary"}).
		Param(ws.HeaderParameter("X-API-Key", "secret key for RESTful API")).
		Writes([]string{}))

	// Get a place
	ws.Route(ws.GET("/place/{place-id}").To(s.getPlace).
		Doc("Get a place.").
		Metadata(restfulspec.KeyOpenAPITags, []string{"place"}).
		Param(ws.HeaderParameter("X-API-Key", "secret key for RESTful API")).
		Param(ws.PathParameter("place-id", "identifier of the place").DataType("integer")).
		Writes(data.Place{}))
}

// ParseInt parses integers from the query parameter.
func ParseInt(request *restful.Request, name string, fallback int) (value int, err error) {
	valueString := request.QueryParameter(name)
	value, err = strconv.Atoi(valueString)
	if err != nil && valueString == "" {
		value = fallback
		err = nil
	}
	return
}

func (s *RestServer) getHealth(_ *restful.Request, response *restful.Response) {
	Ok(response, Health{Ready: true, NumPlaces: s.Engine.Index().Len()})
}

func (s *RestServer) postRecommend(request *restful.Request, response *restful.Response) {
	if !s.auth(request, response) {
		return
	}
	var req RecommendRequest
	if err := request.ReadEntity(&req); err != nil {
		BadRequest(response, err)
		return
	}
	s.recommend(&req, request, response)
}

func (s *RestServer) getRecommend(request *restful.Request, response *restful.Response) {
	if !s.auth(request, response) {
		return
	}
	req := RecommendRequest{
		Gender:   request.QueryParameter("gender"),
		AgeGroup: request.QueryParameter("age_group"),
		City:     request.QueryParameter("city"),
		TripType: request.QueryParameter("trip_type"),
	}
	var err error
	if req.Age, err = ParseInt(request, "age", 0); err != nil {
		BadRequest(response, errors.NewNotValid(err, "incomplete profile"))
		return
	}
	if req.NumCategories, err = ParseInt(request, "n_categories", 0); err != nil {
		BadRequest(response, err)
		return
	}
	if req.NumPlaces, err = ParseInt(request, "n_places", 0); err != nil {
		BadRequest(response, err)
		return
	}
	s.recommend(&req, request, response)
}

func (s *RestServer) recommend(req *RecommendRequest, request *restful.Request, response *restful.Response) {
	if err := s.validateRequest(req); err != nil {
		BadRequest(response, err)
		return
	}
	profile, err := req.Profile()
	if err != nil {
		BadRequest(response, err)
		return
	}
	start := time.Now()
	recommendations, err := s.Engine.Recommend(request.Request.Context(), profile, req.NumCategories, req.NumPlaces)
	if logics.IsIncompleteProfile(err) {
		BadRequest(response, err)
		return
	} else if err != nil {
		InternalServerError(response, err)
		return
	}
	RecommendSeconds.Observe(time.Since(start).Seconds())
	for _, recommendation := range recommendations {
		RecommendedCategoriesTotal.WithLabelValues(recommendation.Category).Inc()
	}
	log.RequestLogger(request).Debug("recommend",
		zap.String("gender", string(profile.Gender)),
		zap.String("age_group", string(profile.AgeGroup)),
		zap.String("city", profile.City),
		zap.String("trip_type", string(profile.TripType)),
		zap.Strings("categories", lo.Map(recommendations, func(r logics.Recommendation, _ int) string {
			return r.Category
		})))
	Ok(response, RecommendResponse{Profile: profile, Recommendations: recommendations})
}

func (s *RestServer) getCategories(request *restful.Request, response *restful.Response) {
	if !s.auth(request, response) {
		return
	}
	Ok(response, lo.Map(dataset.Categories, func(category dataset.Category, _ int) Category {
		return Category{Name: string(category), Description: category.Description()}
	}))
}

func (s *RestServer) getCities(request *restful.Request, response *restful.Response) {
	if !s.auth(request, response) {
		return
	}
	Ok(response, s.Engine.Index().Cities())
}

func (s *RestServer) getPlace(request *restful.Request, response *restful.Response) {
	if !s.auth(request, response) {
		return
	}
	placeId, err := strconv.Atoi(request.PathParameter("place-id"))
	if err != nil {
		BadRequest(response, err)
		return
	}
	place, ok := s.Engine.Index().Place(placeId)
	if !ok {
		PageNotFound(response, errors.NotFoundf("place %d", placeId))
		return
	}
	Ok(response, place)
}

var (
	requestValidator  *validator.Validate
	requestTranslator ut.Translator
)

func init() {
	requestValidator = validator.New()
	requestValidator.RegisterTagNameFunc(func(field reflect.StructField) string {
		return strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	})
	english := en.New()
	uni := ut.New(english, english)
	requestTranslator, _ = uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(requestValidator, requestTranslator); err != nil {
		log.Logger().Fatal("failed to register validator translations", zap.Error(err))
	}
}

// validateRequest rejects requests with missing fields as incomplete profiles.
func (s *RestServer) validateRequest(req *RecommendRequest) error {
	if err := requestValidator.Struct(req); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			messages := lo.Map(validationErrors, func(fe validator.FieldError, _ int) string {
				return fe.Translate(requestTranslator)
			})
			return errors.NewNotValid(errors.New(strings.Join(messages, "; ")), "incomplete profile")
		}
		return errors.Trace(err)
	}
	return nil
}

// BadRequest returns a bad request error.
func BadRequest(response *restful.Response, err error) {
	response.Header().Set("Access-Control-Allow-Origin", "*")
	log.Logger().Warn("bad request", zap.Error(err))
	if err = response.WriteError(http.StatusBadRequest, err); err != nil {
		log.Logger().Error("failed to write error", zap.Error(err))
	}
}

// InternalServerError returns a internal server error.
func InternalServerError(response *restful.Response, err error) {
	response.Header().Set("Access-Control-Allow-Origin", "*")
	log.Logger().Error("internal server error", zap.Error(err))
	if err = response.WriteError(http.StatusInternalServerError, err); err != nil {
		log.Logger().Error("failed to write error", zap.Error(err))
	}
}

// PageNotFound returns a not found error.
func PageNotFound(response *restful.Response, err error) {
	response.Header().Set("Access-Control-Allow-Origin", "*")
	if err := response.WriteError(http.StatusNotFound, err); err != nil {
		log.Logger().Error("failed to write error", zap.Error(err))
	}
}

// Ok sends the content as JSON to the client.
func Ok(response *restful.Response, content any) {
	response.Header().Set("Access-Control-Allow-Origin", "*")
	if err := response.WriteAsJson(content); err != nil {
		log.Logger().Error("failed to write json", zap.Error(err))
	}
}

func (s *RestServer) auth(request *restful.Request, response *restful.Response) bool {
	if s.Config.Server.APIKey == "" {
		return true
	}
	if request.HeaderParameter("X-API-Key") == s.Config.Server.APIKey {
		return true
	}
	log.RequestLogger(request).Warn("unauthorized", zap.String("remote_addr", request.Request.RemoteAddr))
	if err := response.WriteErrorString(http.StatusUnauthorized, "unauthorized"); err != nil {
		log.Logger().Error("failed to write error", zap.Error(err))
	}
	return false
}
