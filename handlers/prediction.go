package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"flight-delay-api/models"
	"flight-delay-api/services"

	"github.com/gin-gonic/gin"
)

type AirportDirectory interface {
	Lookup(id int) (models.Airport, bool)
}

type Predictor interface {
	Predict(dayOfWeek, airportID int) (pDelay, pNoDelay float64)
	Version() string
}

type EventPublisher interface {
	PublishAsync(event models.PredictionEvent)
}

type PredictionHandler struct {
	airports  AirportDirectory
	model     Predictor
	publisher EventPublisher
}

func NewPredictionHandler(airports AirportDirectory, model Predictor, publisher EventPublisher) *PredictionHandler {
	return &PredictionHandler{airports: airports, model: model, publisher: publisher}
}

func (h *PredictionHandler) GetPrediction(c *gin.Context) {
	params, err := ParsePredictionParams(c)
	if err != nil {
		var pe *ParamError
		if errors.As(err, &pe) {
			services.PredictionsRejected.WithLabelValues(pe.Param).Inc()
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	airport, ok := h.airports.Lookup(params.AirportID)
	if !ok {
		services.PredictionsRejected.WithLabelValues("unknown_airport").Inc()
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("airport_id %d not found", params.AirportID)})
		return
	}

	pDelay, _ := h.model.Predict(params.DayOfWeek, params.AirportID)
	delay := services.Round3(pDelay)
	resp := models.PredictionResponse{
		DelayProbability: delay,
		Confidence:       services.Round3(services.Confidence(delay)),
	}

	services.PredictionsServed.Inc()
	services.DelayProbability.Observe(pDelay)

	if h.publisher != nil {
		h.publisher.PublishAsync(models.PredictionEvent{
			TS:               time.Now().UTC(),
			DayOfWeek:        params.DayOfWeek,
			AirportID:        airport.ID,
			AirportName:      airport.Name,
			DelayProbability: resp.DelayProbability,
			Confidence:       resp.Confidence,
			ModelVersion:     h.model.Version(),
		})
	}

	c.JSON(http.StatusOK, resp)
}
