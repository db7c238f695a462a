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
	"context"
	"fmt"
	"net/http"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	"github.com/emicklei/go-restful/v3"
	"github.com/gorse-io/tourism/base/log"
	"github.com/gorse-io/tourism/config"
	"github.com/gorse-io/tourism/logics"
	"github.com/juju/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggest/swgui/v5emb"
	"go.uber.org/zap"
)

const (
	apiDocsPath = "/apidocs.json"
	swaggerPath = "/apidocs/"
)

// RestServer implements a REST-ful API server.
type RestServer struct {
	Config     *config.Config
	Engine     *logics.Engine
	WebService *restful.WebService
	HttpServer *http.Server
}

// NewRestServer creates a server serving recommendations of the engine.
func NewRestServer(cfg *config.Config, engine *logics.Engine) *RestServer {
	return &RestServer{
		Config:     cfg,
		Engine:     engine,
		WebService: new(restful.WebService),
		HttpServer: &http.Server{Addr: fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)},
	}
}

// CreateContainer registers the REST API, the OpenAPI document, the Swagger UI and Prometheus metrics.
func (s *RestServer) CreateContainer() *restful.Container {
	s.CreateWebService()
	container := restful.NewContainer()
	container.Add(s.WebService)
	specConfig := restfulspec.Config{
		WebServices: container.RegisteredWebServices(),
		APIPath:     apiDocsPath,
	}
	container.Add(restfulspec.NewOpenAPIService(specConfig))
	container.Handle(swaggerPath, v5emb.New("Tourism Recommender", apiDocsPath, swaggerPath))
	container.Handle("/metrics", promhttp.Handler())
	return container
}

// StartHttpServer starts the REST-ful API server and blocks until it is shut down.
func (s *RestServer) StartHttpServer() error {
	s.HttpServer.Handler = s.CreateContainer()
	log.Logger().Info("start http server",
		zap.String("url", fmt.Sprintf("http://%s", s.HttpServer.Addr)),
		zap.Bool("auth", s.Config.Server.APIKey != ""))
	if err := s.HttpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Trace(err)
	}
	return nil
}

// Shutdown stops accepting requests and waits for active requests.
func (s *RestServer) Shutdown(ctx context.Context) error {
	return errors.Trace(s.HttpServer.Shutdown(ctx))
}
