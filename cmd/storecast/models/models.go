// Package models loads the three model artifacts named in the server
// configuration.
//
// Loading is fail-fast: New logs and exits the process when any artifact is
// missing, malformed, or fitted on a different feature layout. The server
// never starts with a partial pipeline.
package models

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/HatiCode/storecast/cmd/storecast/config"
	"github.com/HatiCode/storecast/pkg/features"
	"github.com/HatiCode/storecast/pkg/models"
)

// Set holds the loaded artifacts by pipeline role.
type Set struct {
	Sales  models.Model
	Demand models.Model
	Meta   models.Model
}

// Roles returns the models keyed by their role name, in pipeline order.
func (s Set) Roles() []Role {
	return []Role{
		{"sales", s.Sales},
		{"demand", s.Demand},
		{"meta", s.Meta},
	}
}

// Role pairs a model with its pipeline role.
type Role struct {
	Name  string
	Model models.Model
}

// Load reads all three artifacts. The returned error wraps
// models.ErrArtifactLoad.
func Load(cfg *config.Config) (Set, error) {
	var (
		set Set
		err error
	)
	if set.Sales, err = load("sales", cfg.SalesModel, features.BaseSchema, models.Regression); err != nil {
		return Set{}, err
	}
	if set.Demand, err = load("demand", cfg.DemandModel, features.BaseSchema, models.Classification); err != nil {
		return Set{}, err
	}
	if set.Meta, err = load("meta", cfg.MetaModel, features.StackedSchema, models.Classification); err != nil {
		return Set{}, err
	}
	return set, nil
}

func load(role, path string, schema features.Schema, task models.Task) (models.Model, error) {
	m, err := models.Load(path, schema, task)
	if err != nil {
		return nil, fmt.Errorf("%s model: %w", role, err)
	}
	return m, nil
}

// New loads all artifacts, exiting with status 1 on failure.
func New(cfg *config.Config, logger *slog.Logger) Set {
	set, err := Load(cfg)
	if err != nil {
		logger.Error("failed to load model artifacts", "error", err)
		os.Exit(1)
	}

	for _, r := range set.Roles() {
		logger.Info("loaded model artifact",
			"role", r.Name,
			"name", r.Model.Name(),
			"kind", r.Model.Kind(),
			"features", r.Model.Schema().Len(),
		)
	}
	return set
}
