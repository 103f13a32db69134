package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"

	"gonum.org/v1/gonum/floats"
)

var ErrInvalidModel = errors.New("invalid model artifact")

var modelFeatures = []string{"day_of_week", "airport_id"}

// modelArtifact is the JSON export of a fitted binary logistic regression.
type modelArtifact struct {
	Version      string    `json:"version"`
	Features     []string  `json:"features"`
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
	Classes      []int     `json:"classes"`
}

// DelayModel scores (day_of_week, airport_id) pairs. Immutable after loading.
type DelayModel struct {
	version   string
	weights   []float64
	intercept float64
}

func LoadDelayModel(path string) (*DelayModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model artifact: %w", err)
	}

	var art modelArtifact
	if err := json.Unmarshal(data, &art); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidModel, err)
	}
	return newDelayModel(art)
}

func newDelayModel(art modelArtifact) (*DelayModel, error) {
	if len(art.Coefficients) != len(modelFeatures) {
		return nil, fmt.Errorf("%w: want %d coefficients, got %d",
			ErrInvalidModel, len(modelFeatures), len(art.Coefficients))
	}
	if len(art.Features) != 0 {
		if len(art.Features) != len(modelFeatures) {
			return nil, fmt.Errorf("%w: features %v, want %v", ErrInvalidModel, art.Features, modelFeatures)
		}
		for i, f := range art.Features {
			if f != modelFeatures[i] {
				return nil, fmt.Errorf("%w: features %v, want %v", ErrInvalidModel, art.Features, modelFeatures)
			}
		}
	}
	if len(art.Classes) != 0 && (len(art.Classes) != 2 || art.Classes[0] != 0 || art.Classes[1] != 1) {
		return nil, fmt.Errorf("%w: classes %v, want [0 1]", ErrInvalidModel, art.Classes)
	}
	if math.IsNaN(art.Intercept) || math.IsInf(art.Intercept, 0) || floats.HasNaN(art.Coefficients) {
		return nil, fmt.Errorf("%w: non-finite parameters", ErrInvalidModel)
	}
	for _, w := range art.Coefficients {
		if math.IsInf(w, 0) {
			return nil, fmt.Errorf("%w: non-finite parameters", ErrInvalidModel)
		}
	}

	weights := make([]float64, len(art.Coefficients))
	copy(weights, art.Coefficients)

	version := art.Version
	if version == "" {
		version = "unversioned"
	}
	return &DelayModel{version: version, weights: weights, intercept: art.Intercept}, nil
}

// Predict returns the probabilities of the delay and no-delay classes. They sum to 1.
func (m *DelayModel) Predict(dayOfWeek, airportID int) (pDelay, pNoDelay float64) {
	x := []float64{float64(dayOfWeek), float64(airportID)}
	z := m.intercept + floats.Dot(m.weights, x)
	pDelay = sigmoid(z)
	return pDelay, 1 - pDelay
}

func (m *DelayModel) Version() string {
	return m.version
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

// Round3 rounds to the three decimals the API reports.
func Round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// Confidence is the larger of the two class probabilities.
func Confidence(pDelay float64) float64 {
	return math.Max(pDelay, 1-pDelay)
}
