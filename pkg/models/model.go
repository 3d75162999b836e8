// Package models loads pre-trained model artifacts and evaluates them on
// feature vectors.
//
// Training happens offline. An artifact carries the ordered feature names it
// was fitted on, and loading fails when they do not match the vector layout
// the caller will feed it. Two artifact kinds are supported:
//
//   - tree_ensemble: gradient-boosted decision trees
//   - linear:        linear regression or multinomial linear classifier
//
// Every model exposes the same scalar Predict capability. Classifiers return
// the winning class index as a float64.
package models

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/HatiCode/storecast/pkg/features"
)

var (
	// ErrArtifactLoad is returned when an artifact is missing, malformed, or
	// does not match the expected feature schema.
	ErrArtifactLoad = errors.New("artifact load failed")

	// ErrModelInference is returned when a model cannot evaluate a vector.
	ErrModelInference = errors.New("model inference failed")
)

// Task is the kind of output a model produces.
type Task string

const (
	Regression     Task = "regression"
	Classification Task = "classification"
)

// Model is a loaded, immutable predictor. Implementations are safe for
// concurrent use.
type Model interface {
	// Name returns the artifact name.
	Name() string

	// Kind returns the artifact kind, e.g. "tree_ensemble".
	Kind() string

	// Task returns whether the model regresses a value or picks a class.
	Task() Task

	// Schema returns the feature layout Predict expects.
	Schema() features.Schema

	// Predict evaluates x and returns a single scalar. For classifiers the
	// scalar is the predicted class index.
	Predict(ctx context.Context, x features.Vector) (float64, error)
}

// checkInput validates a vector against a schema before evaluation.
func checkInput(ctx context.Context, name string, schema features.Schema, x features.Vector) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrModelInference, name, err)
	}
	if len(x) != schema.Len() {
		return fmt.Errorf("%w: %s expects %d features, got %d", ErrModelInference, name, schema.Len(), len(x))
	}
	for i, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s: feature %q is not finite", ErrModelInference, name, schema.Names[i])
		}
	}
	return nil
}

func checkOutput(name string, y float64) (float64, error) {
	if math.IsNaN(y) || math.IsInf(y, 0) {
		return 0, fmt.Errorf("%w: %s produced a non-finite value", ErrModelInference, name)
	}
	return y, nil
}

// checkScores rejects non-finite class scores before argmax picks a winner.
func checkScores(name string, scores []float64) error {
	for k, v := range scores {
		if !finite(v) {
			return fmt.Errorf("%w: %s produced a non-finite score for class %d", ErrModelInference, name, k)
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// argmax returns the index of the largest value. Ties go to the lowest index.
func argmax(values []float64) int {
	best := 0
	for i := 1; i < len(values); i++ {
		if values[i] > values[best] {
			best = i
		}
	}
	return best
}
