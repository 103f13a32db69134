package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const serviceName = "Flight Delay Prediction API"

type InfoHandler struct {
	modelVersion string
	airportCount int
}

func NewInfoHandler(modelVersion string, airportCount int) *InfoHandler {
	return &InfoHandler{modelVersion: modelVersion, airportCount: airportCount}
}

func (h *InfoHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": serviceName,
		"version": h.modelVersion,
		"endpoints": gin.H{
			"/predict":  "Predict flight delay probability (requires day_of_week and airport_id parameters)",
			"/airports": "Get list of all airports sorted alphabetically",
			"/app/":     "Web frontend",
		},
	})
}

func (h *InfoHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":        "UP",
		"message":       serviceName + " is running",
		"model_version": h.modelVersion,
		"airports":      h.airportCount,
	})
}
