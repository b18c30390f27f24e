// Package router wires the HTTP surface: the GraphQL endpoint plus the
// health and metrics endpoints.
package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/concert-ticketing/internal/config"
	"github.com/iliyamo/concert-ticketing/internal/graph"
	"github.com/iliyamo/concert-ticketing/internal/handler"
	"github.com/iliyamo/concert-ticketing/internal/middleware"
	"github.com/iliyamo/concert-ticketing/internal/pkg/metrics"
)

// Deps carries everything the router needs to register routes.
type Deps struct {
	GraphQL   *graph.Handler
	Metrics   *metrics.Metrics
	JWTSecret string
	RateLimit config.RateLimitConfig
	Redis     *redis.Client // nil disables rate limiting
}

// Register sets up middleware and routes on the echo instance. All GraphQL
// operations go through POST /graphql; authentication is optional at the
// HTTP layer and enforced per operation by the resolvers.
func Register(e *echo.Echo, d Deps) {
	e.Use(echomw.Recover())
	e.Use(middleware.Prometheus(d.Metrics))

	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	gql := e.Group("/graphql")
	gql.Use(middleware.Identity(d.JWTSecret))
	gql.Use(middleware.NewTokenBucket(d.RateLimit, d.Redis))
	gql.POST("", d.GraphQL.Serve)
}
