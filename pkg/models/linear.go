package models

import (
	"context"
	"fmt"

	"github.com/HatiCode/storecast/pkg/features"
)

// Linear is a linear regression, or a multinomial linear classifier that
// picks the class with the largest score.
type Linear struct {
	name   string
	task   Task
	schema features.Schema

	// one row per output: a single row for regression, one per class otherwise
	intercepts []float64
	weights    [][]float64
}

func newLinear(a artifact, schema features.Schema) (*Linear, error) {
	m := &Linear{name: a.Name, task: a.Task, schema: schema}
	idx := featureIndex(schema)

	addRow := func(intercept float64, named map[string]float64) error {
		if !finite(intercept) {
			return fmt.Errorf("intercept is not finite")
		}
		row := make([]float64, schema.Len())
		for name, w := range named {
			if !finite(w) {
				return fmt.Errorf("weight for %q is not finite", name)
			}
			i, ok := idx[name]
			if !ok {
				return fmt.Errorf("weight for unknown feature %q", name)
			}
			row[i] = w
		}
		m.intercepts = append(m.intercepts, intercept)
		m.weights = append(m.weights, row)
		return nil
	}

	switch a.Task {
	case Regression:
		if len(a.Classes) > 0 {
			return nil, fmt.Errorf("regression artifact must not define classes")
		}
		if err := addRow(a.Intercept, a.Weights); err != nil {
			return nil, err
		}
	case Classification:
		if len(a.Classes) != a.NumClass {
			return nil, fmt.Errorf("got %d class rows, num_class is %d", len(a.Classes), a.NumClass)
		}
		for k, c := range a.Classes {
			if err := addRow(c.Intercept, c.Weights); err != nil {
				return nil, fmt.Errorf("class %d: %w", k, err)
			}
		}
	}
	return m, nil
}

func (m *Linear) Name() string            { return m.name }
func (m *Linear) Kind() string            { return KindLinear }
func (m *Linear) Task() Task              { return m.task }
func (m *Linear) Schema() features.Schema { return m.schema }

// Predict computes intercept + w·x for each output row.
func (m *Linear) Predict(ctx context.Context, x features.Vector) (float64, error) {
	if err := checkInput(ctx, m.name, m.schema, x); err != nil {
		return 0, err
	}

	scores := make([]float64, len(m.weights))
	for k, row := range m.weights {
		s := m.intercepts[k]
		for i, w := range row {
			s += w * x[i]
		}
		scores[k] = s
	}

	if m.task == Classification {
		if err := checkScores(m.name, scores); err != nil {
			return 0, err
		}
		return float64(argmax(scores)), nil
	}
	return checkOutput(m.name, scores[0])
}
