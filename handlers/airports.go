package handlers

import (
	"net/http"

	"flight-delay-api/models"

	"github.com/gin-gonic/gin"
)

type AirportLister interface {
	List() []models.Airport
}

type AirportsHandler struct {
	airports AirportLister
}

func NewAirportsHandler(airports AirportLister) *AirportsHandler {
	return &AirportsHandler{airports: airports}
}

func (h *AirportsHandler) GetAirports(c *gin.Context) {
	c.JSON(http.StatusOK, h.airports.List())
}
