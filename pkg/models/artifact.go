package models

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/HatiCode/storecast/pkg/features"
)

const (
	KindTreeEnsemble = "tree_ensemble"
	KindLinear       = "linear"
)

// artifact is the on-disk representation shared by all model kinds.
// JSON artifacts decode as well since YAML is a superset of JSON.
type artifact struct {
	Name     string   `yaml:"name"`
	Kind     string   `yaml:"kind"`
	Task     Task     `yaml:"task"`
	Features []string `yaml:"features"`
	NumClass int      `yaml:"num_class"`

	// tree_ensemble
	BaseScore float64    `yaml:"base_score"`
	Trees     []treeSpec `yaml:"trees"`

	// linear
	Intercept float64            `yaml:"intercept"`
	Weights   map[string]float64 `yaml:"weights"`
	Classes   []linearClassSpec  `yaml:"classes"`
}

type treeSpec struct {
	Class int        `yaml:"class"`
	Nodes []nodeSpec `yaml:"nodes"`
}

type nodeSpec struct {
	Feature   string   `yaml:"feature"`
	Threshold float64  `yaml:"threshold"`
	Yes       int      `yaml:"yes"`
	No        int      `yaml:"no"`
	Leaf      *float64 `yaml:"leaf"`
}

type linearClassSpec struct {
	Intercept float64            `yaml:"intercept"`
	Weights   map[string]float64 `yaml:"weights"`
}

// Load reads the artifact at path and builds a model from it. The artifact's
// feature list must equal want exactly and its task must equal task.
// All failures wrap ErrArtifactLoad.
func Load(path string, want features.Schema, task Task) (Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrArtifactLoad, err)
	}
	m, err := Parse(data, want, task)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Parse builds a model from artifact bytes. See Load.
func Parse(data []byte, want features.Schema, task Task) (Model, error) {
	var a artifact
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&a); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", ErrArtifactLoad, err)
	}

	if a.Name == "" {
		return nil, fmt.Errorf("%w: artifact name is required", ErrArtifactLoad)
	}
	if a.Task != task {
		return nil, fmt.Errorf("%w: %s: task is %q, want %q", ErrArtifactLoad, a.Name, a.Task, task)
	}
	if err := want.Match(a.Features); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrArtifactLoad, a.Name, err)
	}
	if task == Classification && a.NumClass < 2 {
		return nil, fmt.Errorf("%w: %s: classification needs num_class >= 2, got %d", ErrArtifactLoad, a.Name, a.NumClass)
	}

	schema := features.Schema{Name: want.Name, Names: a.Features}

	var (
		m   Model
		err error
	)
	switch a.Kind {
	case KindTreeEnsemble:
		m, err = newTreeEnsemble(a, schema)
	case KindLinear:
		m, err = newLinear(a, schema)
	default:
		return nil, fmt.Errorf("%w: %s: unknown kind %q", ErrArtifactLoad, a.Name, a.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrArtifactLoad, a.Name, err)
	}
	return m, nil
}

// featureIndex maps feature names to their position in the schema.
func featureIndex(schema features.Schema) map[string]int {
	idx := make(map[string]int, schema.Len())
	for i, name := range schema.Names {
		idx[name] = i
	}
	return idx
}
