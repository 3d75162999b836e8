// Package api defines the wire types shared by the HTTP and gRPC surfaces and
// the Go client.
package api

import (
	"time"

	"github.com/HatiCode/storecast/pkg/features"
	"github.com/HatiCode/storecast/pkg/models"
	"github.com/HatiCode/storecast/pkg/pipeline"
)

// PredictRequest is the body of POST /api/v1/predict. Omitted fields take the
// form defaults.
type PredictRequest = features.RawInputs

// PredictionResponse is the JSON body returned for a successful prediction.
type PredictionResponse struct {
	ID              string    `json:"id"`
	GeneratedAt     time.Time `json:"generatedAt"`
	SalesPred       float64   `json:"salesPred"`
	SalesFormatted  string    `json:"salesFormatted"`
	DemandPred      int       `json:"demandPred"`
	SalesBucket     int       `json:"salesBucket"`
	CorrectedDemand int       `json:"correctedDemand"`
	DemandLabel     string    `json:"demandLabel"`
}

// NewPredictionResponse converts a pipeline result. formatted is the
// human-readable sales amount.
func NewPredictionResponse(res pipeline.Result, formatted string) PredictionResponse {
	return PredictionResponse{
		ID:              res.ID,
		GeneratedAt:     res.GeneratedAt.UTC(),
		SalesPred:       res.SalesPred,
		SalesFormatted:  formatted,
		DemandPred:      res.DemandPred,
		SalesBucket:     res.SalesBucket,
		CorrectedDemand: res.CorrectedDemand,
		DemandLabel:     res.DemandLabel,
	}
}

// ModelInfo describes one loaded artifact.
type ModelInfo struct {
	Role     string `json:"role"`
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Task     string `json:"task"`
	Features int    `json:"features"`
}

// ModelsResponse is the body of GET /api/v1/models.
type ModelsResponse struct {
	Models           []ModelInfo `json:"models"`
	BucketThresholds []float64   `json:"bucketThresholds"`
}

// NewModelInfo describes m under the given pipeline role.
func NewModelInfo(role string, m models.Model) ModelInfo {
	return ModelInfo{
		Role:     role,
		Name:     m.Name(),
		Kind:     m.Kind(),
		Task:     string(m.Task()),
		Features: m.Schema().Len(),
	}
}
