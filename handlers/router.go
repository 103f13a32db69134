package handlers

import (
	"io/fs"
	"net/http"

	"flight-delay-api/config"
	"flight-delay-api/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type AirportTable interface {
	AirportLister
	AirportDirectory
	Len() int
}

type Publisher interface {
	EventPublisher
	EventSubscriber
}

type RouterDeps struct {
	Airports  AirportTable
	Model     Predictor
	Publisher Publisher
	Frontend  fs.FS
	CORS      config.CORSConfig
	Logger    *zap.Logger
}

func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(deps.Logger))
	router.Use(middleware.SetupCORS(deps.CORS))

	info := NewInfoHandler(deps.Model.Version(), deps.Airports.Len())
	airports := NewAirportsHandler(deps.Airports)

	var events EventPublisher
	var feed EventSubscriber
	if deps.Publisher != nil {
		events, feed = deps.Publisher, deps.Publisher
	}
	prediction := NewPredictionHandler(deps.Airports, deps.Model, events)

	router.GET("/", info.Root)
	router.GET("/health", info.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/airports", airports.GetAirports)
	router.GET("/predict", prediction.GetPrediction)
	router.GET("/ws/predictions", LivePredictions(feed, deps.Logger))

	if deps.Frontend != nil {
		router.StaticFS("/app", http.FS(deps.Frontend))
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	return router
}
