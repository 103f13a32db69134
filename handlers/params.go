package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"flight-delay-api/models"

	"github.com/gin-gonic/gin"
)

const (
	MinDayOfWeek = 1
	MaxDayOfWeek = 7
)

// ParamError describes a query parameter that failed validation.
type ParamError struct {
	Param   string
	Message string
}

func (e *ParamError) Error() string {
	return e.Message
}

// ParsePredictionParams checks presence, type and range of the predict query.
// Airport existence is checked by the handler against the reference table.
func ParsePredictionParams(c *gin.Context) (models.PredictionRequest, error) {
	var p models.PredictionRequest

	day, err := requiredInt(c, "day_of_week")
	if err != nil {
		return p, err
	}
	airportID, err := requiredInt(c, "airport_id")
	if err != nil {
		return p, err
	}

	if day < MinDayOfWeek || day > MaxDayOfWeek {
		return p, &ParamError{
			Param:   "day_of_week",
			Message: fmt.Sprintf("day_of_week must be between %d and %d", MinDayOfWeek, MaxDayOfWeek),
		}
	}

	p.DayOfWeek = day
	p.AirportID = airportID
	return p, nil
}

func requiredInt(c *gin.Context, name string) (int, error) {
	raw, ok := c.GetQuery(name)
	raw = strings.TrimSpace(raw)
	if !ok || raw == "" {
		return 0, &ParamError{Param: name, Message: fmt.Sprintf("missing required parameter %s", name)}
	}
	v, err := strconv.Atoi(raw)
	if errors.Is(err, strconv.ErrRange) {
		return 0, &ParamError{Param: name, Message: fmt.Sprintf("%s is out of range, got %s", name, raw)}
	}
	if err != nil {
		return 0, &ParamError{Param: name, Message: fmt.Sprintf("%s must be an integer, got %q", name, raw)}
	}
	return v, nil
}
