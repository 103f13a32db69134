package models

import "time"

type PredictionRequest struct {
	DayOfWeek int
	AirportID int
}

// PredictionResponse is the body of a successful GET /predict.
type PredictionResponse struct {
	DelayProbability float64 `json:"delay_probability"`
	Confidence       float64 `json:"confidence"`
}

// PredictionEvent is what the live feed carries for every served prediction.
type PredictionEvent struct {
	TS               time.Time `json:"ts"`
	DayOfWeek        int       `json:"day_of_week"`
	AirportID        int       `json:"airport_id"`
	AirportName      string    `json:"airport_name"`
	DelayProbability float64   `json:"delay_probability"`
	Confidence       float64   `json:"confidence"`
	ModelVersion     string    `json:"model_version"`
}
