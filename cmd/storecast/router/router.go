// Package router configures HTTP routes for the storecast server.
//
// Routes configured:
//   - GET  /                 - Home view, or the prediction form with ?view=predict
//   - POST /predict          - Form submission, renders the result on the page
//   - POST /api/v1/predict   - JSON prediction API
//   - GET  /api/v1/models    - Loaded model artifacts and bucket thresholds
//   - GET  /healthz          - Health check endpoint (returns 200 OK)
//   - GET  /metrics          - Prometheus metrics endpoint
//
// Every route is wrapped with panic recovery and request logging.
package router

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/HatiCode/storecast/pkg/api"
	"github.com/HatiCode/storecast/pkg/bucket"
	"github.com/HatiCode/storecast/pkg/features"
	"github.com/HatiCode/storecast/pkg/httpx"
	"github.com/HatiCode/storecast/pkg/models"
	"github.com/HatiCode/storecast/pkg/pipeline"
	"github.com/HatiCode/storecast/pkg/web"
)

const maxBodyBytes = 1 << 16

// Predictor is the subset of *pipeline.Predictor the routes need.
type Predictor interface {
	Predict(ctx context.Context, in features.RawInputs) (pipeline.Result, error)
	Models() []models.Model
	Policy() bucket.Policy
}

// SetupRoutes builds the server's handler.
func SetupRoutes(predictor Predictor, gatherer prometheus.Gatherer, logger *slog.Logger) (http.Handler, error) {
	mux := http.NewServeMux()

	page, err := web.NewHandler(predictor, logger)
	if err != nil {
		return nil, fmt.Errorf("web handler: %w", err)
	}
	page.Register(mux)

	mux.HandleFunc("/api/v1/predict", handlePredict(predictor, logger))
	mux.HandleFunc("GET /api/v1/models", handleModels(predictor))

	mux.Handle("/healthz", httpx.HealthHandler())
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return httpx.Chain(mux, httpx.RecoveryMiddleware(logger), httpx.LoggingMiddleware(logger)), nil
}

// handlePredict returns a handler for POST /api/v1/predict.
func handlePredict(predictor Predictor, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			httpx.WriteErrorMessage(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		in := features.DefaultInputs()
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&in); err != nil {
			httpx.WriteErrorMessage(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
			return
		}
		if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
			httpx.WriteErrorMessage(w, http.StatusBadRequest, "invalid request body: trailing data after JSON object")
			return
		}

		res, err := predictor.Predict(r.Context(), in)
		switch {
		case errors.Is(err, features.ErrInputRange):
			httpx.WriteError(w, http.StatusBadRequest, err)
			return
		case err != nil:
			logger.Error("prediction failed", "error", err)
			httpx.WriteErrorMessage(w, http.StatusInternalServerError, "prediction failed")
			return
		}

		httpx.WriteJSON(w, http.StatusOK, api.NewPredictionResponse(res, web.FormatCurrency(res.SalesPred)))
	}
}

// handleModels returns a handler for GET /api/v1/models.
func handleModels(predictor Predictor) http.HandlerFunc {
	roles := []string{pipeline.StageSales, pipeline.StageDemand, pipeline.StageMeta}

	return func(w http.ResponseWriter, r *http.Request) {
		resp := api.ModelsResponse{BucketThresholds: predictor.Policy().Thresholds}
		for i, m := range predictor.Models() {
			resp.Models = append(resp.Models, api.NewModelInfo(roles[i], m))
		}
		httpx.WriteJSON(w, http.StatusOK, resp)
	}
}
