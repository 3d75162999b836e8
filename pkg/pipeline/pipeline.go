// Package pipeline runs the stacked sales and demand prediction:
// build features → regress sales → classify demand → bucket sales →
// stack → correct demand with the meta model → label.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/HatiCode/storecast/pkg/bucket"
	"github.com/HatiCode/storecast/pkg/features"
	"github.com/HatiCode/storecast/pkg/models"
)

// Stage names reported to the Observer.
const (
	StageFeatures = "features"
	StageSales    = "sales"
	StageDemand   = "demand"
	StageMeta     = "meta"
	StageTotal    = "total"
)

// Observer receives timings and outcomes of each prediction.
type Observer interface {
	ObserveStage(stage string, seconds float64)
	RecordError(component, reason string)
	RecordPrediction(label string, salesPred float64)
}

type nopObserver struct{}

func (nopObserver) ObserveStage(string, float64)     {}
func (nopObserver) RecordError(string, string)       {}
func (nopObserver) RecordPrediction(string, float64) {}

// Result holds every output of one prediction. Nothing is partially filled:
// Predict returns either a complete Result or an error.
type Result struct {
	ID          string
	GeneratedAt time.Time
	Inputs      features.RawInputs

	Base    features.Vector
	Stacked features.Vector

	SalesPred       float64
	DemandPred      int
	SalesBucket     int
	CorrectedDemand int
	DemandLabel     string
}

// Predictor orchestrates the two-stage prediction. The loaded models are
// read-only, so a Predictor is safe for concurrent use.
type Predictor struct {
	builder    *features.Builder
	regressor  models.Model
	classifier models.Model
	meta       models.Model
	policy     bucket.Policy
	labels     LabelTable
	observer   Observer
	logger     *slog.Logger
}

// New creates a Predictor. The first-stage models must accept the base
// feature layout and the meta model the stacked layout.
func New(
	regressor, classifier, meta models.Model,
	policy bucket.Policy,
	labels LabelTable,
	observer Observer,
	logger *slog.Logger,
) (*Predictor, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if observer == nil {
		observer = nopObserver{}
	}
	if labels == nil {
		labels = DefaultLabels()
	}

	checks := []struct {
		role   string
		model  models.Model
		schema features.Schema
		task   models.Task
	}{
		{"sales", regressor, features.BaseSchema, models.Regression},
		{"demand", classifier, features.BaseSchema, models.Classification},
		{"meta", meta, features.StackedSchema, models.Classification},
	}
	for _, c := range checks {
		if c.model == nil {
			return nil, fmt.Errorf("%s model is required", c.role)
		}
		if c.model.Task() != c.task {
			return nil, fmt.Errorf("%s model %q is a %s model, want %s", c.role, c.model.Name(), c.model.Task(), c.task)
		}
		if err := c.schema.Match(c.model.Schema().Names); err != nil {
			return nil, fmt.Errorf("%s model %q: %w", c.role, c.model.Name(), err)
		}
	}
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("bucket policy: %w", err)
	}

	return &Predictor{
		builder:    features.NewBuilder(),
		regressor:  regressor,
		classifier: classifier,
		meta:       meta,
		policy:     policy,
		labels:     labels,
		observer:   observer,
		logger:     logger,
	}, nil
}

// Models returns the sales, demand and meta models in pipeline order.
func (p *Predictor) Models() []models.Model {
	return []models.Model{p.regressor, p.classifier, p.meta}
}

// Policy returns the bucketing policy applied to predicted sales.
func (p *Predictor) Policy() bucket.Policy {
	return p.policy
}

// Predict runs the full pipeline for one set of inputs. Input problems wrap
// features.ErrInputRange; any model failure wraps models.ErrModelInference.
func (p *Predictor) Predict(ctx context.Context, in features.RawInputs) (Result, error) {
	start := time.Now()
	id := uuid.NewString()
	p.logger.Debug("starting prediction", "id", id, "store", in.StoreID)

	base, err := p.buildFeatures(in)
	if err != nil {
		p.observer.RecordError(StageFeatures, "invalid_input")
		return Result{}, fmt.Errorf("build features: %w", err)
	}

	salesPred, err := p.run(ctx, StageSales, p.regressor, base)
	if err != nil {
		return Result{}, err
	}

	demandRaw, err := p.run(ctx, StageDemand, p.classifier, base)
	if err != nil {
		return Result{}, err
	}
	demandPred, err := p.toClass(StageDemand, p.classifier, demandRaw)
	if err != nil {
		return Result{}, err
	}

	salesBucket := p.policy.Bucket(salesPred)
	stacked := features.Extend(base, salesPred, demandPred, salesBucket)

	correctedRaw, err := p.run(ctx, StageMeta, p.meta, stacked)
	if err != nil {
		return Result{}, err
	}
	corrected, err := p.toClass(StageMeta, p.meta, correctedRaw)
	if err != nil {
		return Result{}, err
	}
	label, _ := p.labels.Lookup(corrected)

	total := time.Since(start)
	p.observer.ObserveStage(StageTotal, total.Seconds())
	p.observer.RecordPrediction(label, salesPred)

	p.logger.Info("prediction complete",
		"id", id,
		"store", in.StoreID,
		"sales_pred", salesPred,
		"demand_pred", demandPred,
		"sales_bucket", salesBucket,
		"corrected_demand", corrected,
		"label", label,
		"total_ms", total.Milliseconds(),
	)

	return Result{
		ID:              id,
		GeneratedAt:     start,
		Inputs:          in,
		Base:            base,
		Stacked:         stacked,
		SalesPred:       salesPred,
		DemandPred:      demandPred,
		SalesBucket:     salesBucket,
		CorrectedDemand: corrected,
		DemandLabel:     label,
	}, nil
}

// buildFeatures validates inputs and assembles the base vector.
func (p *Predictor) buildFeatures(in features.RawInputs) (features.Vector, error) {
	start := time.Now()

	v, err := p.builder.Build(in)
	if err != nil {
		return nil, err
	}

	p.observer.ObserveStage(StageFeatures, time.Since(start).Seconds())
	p.logger.Debug("built features", "count", len(v))
	return v, nil
}

// run evaluates one model and records its timing.
func (p *Predictor) run(ctx context.Context, stage string, m models.Model, x features.Vector) (float64, error) {
	start := time.Now()

	y, err := m.Predict(ctx, x)
	if err != nil {
		p.observer.RecordError(stage, "predict_failed")
		if !errors.Is(err, models.ErrModelInference) {
			err = fmt.Errorf("%w: %w", models.ErrModelInference, err)
		}
		return 0, fmt.Errorf("%s model %q: %w", stage, m.Name(), err)
	}

	duration := time.Since(start)
	p.observer.ObserveStage(stage, duration.Seconds())
	p.logger.Debug("model evaluated",
		"stage", stage,
		"model", m.Name(),
		"output", y,
		"duration_ms", duration.Milliseconds(),
	)
	return y, nil
}

// toClass converts a classifier output to a class index known to the label table.
func (p *Predictor) toClass(stage string, m models.Model, y float64) (int, error) {
	class := int(y)
	if math.Trunc(y) != y || !p.labels.Has(class) {
		p.observer.RecordError(stage, "unknown_class")
		return 0, fmt.Errorf("%w: %s model %q returned class %v", models.ErrModelInference, stage, m.Name(), y)
	}
	return class, nil
}
