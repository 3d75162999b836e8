package models

import (
	"context"
	"fmt"

	"github.com/HatiCode/storecast/pkg/features"
)

// TreeEnsemble is a gradient-boosted tree model. Each tree contributes its
// leaf value to the margin of one output group: the single group for
// regression, or one group per class for classification.
type TreeEnsemble struct {
	name      string
	task      Task
	schema    features.Schema
	numGroups int
	baseScore float64
	trees     []tree
}

type tree struct {
	group int
	nodes []node
}

// node is a split when leaf is false. Samples with x[feature] < threshold
// descend to yes, all others to no.
type node struct {
	leaf      bool
	value     float64
	feature   int
	threshold float64
	yes, no   int
}

func newTreeEnsemble(a artifact, schema features.Schema) (*TreeEnsemble, error) {
	if len(a.Trees) == 0 {
		return nil, fmt.Errorf("tree ensemble has no trees")
	}

	if !finite(a.BaseScore) {
		return nil, fmt.Errorf("base_score is not finite")
	}

	numGroups := 1
	if a.Task == Classification {
		numGroups = a.NumClass
	}

	idx := featureIndex(schema)
	trees := make([]tree, 0, len(a.Trees))
	for ti, ts := range a.Trees {
		if ts.Class < 0 || ts.Class >= numGroups {
			return nil, fmt.Errorf("tree %d: class %d outside [0, %d)", ti, ts.Class, numGroups)
		}
		if len(ts.Nodes) == 0 {
			return nil, fmt.Errorf("tree %d: no nodes", ti)
		}

		nodes := make([]node, len(ts.Nodes))
		for ni, ns := range ts.Nodes {
			if ns.Leaf != nil {
				if !finite(*ns.Leaf) {
					return nil, fmt.Errorf("tree %d node %d: leaf is not finite", ti, ni)
				}
				nodes[ni] = node{leaf: true, value: *ns.Leaf}
				continue
			}
			if !finite(ns.Threshold) {
				return nil, fmt.Errorf("tree %d node %d: threshold is not finite", ti, ni)
			}
			f, ok := idx[ns.Feature]
			if !ok {
				return nil, fmt.Errorf("tree %d node %d: unknown feature %q", ti, ni, ns.Feature)
			}
			// Children must come after their parent so evaluation always terminates.
			for _, child := range []int{ns.Yes, ns.No} {
				if child <= ni || child >= len(ts.Nodes) {
					return nil, fmt.Errorf("tree %d node %d: child %d out of range", ti, ni, child)
				}
			}
			nodes[ni] = node{feature: f, threshold: ns.Threshold, yes: ns.Yes, no: ns.No}
		}
		trees = append(trees, tree{group: ts.Class, nodes: nodes})
	}

	return &TreeEnsemble{
		name:      a.Name,
		task:      a.Task,
		schema:    schema,
		numGroups: numGroups,
		baseScore: a.BaseScore,
		trees:     trees,
	}, nil
}

func (m *TreeEnsemble) Name() string            { return m.name }
func (m *TreeEnsemble) Kind() string            { return KindTreeEnsemble }
func (m *TreeEnsemble) Task() Task              { return m.task }
func (m *TreeEnsemble) Schema() features.Schema { return m.schema }

// Predict sums the leaves reached in every tree. Regression returns the
// summed margin; classification returns the index of the largest class margin.
func (m *TreeEnsemble) Predict(ctx context.Context, x features.Vector) (float64, error) {
	if err := checkInput(ctx, m.name, m.schema, x); err != nil {
		return 0, err
	}

	margins := make([]float64, m.numGroups)
	for i := range margins {
		margins[i] = m.baseScore
	}
	for _, t := range m.trees {
		margins[t.group] += t.eval(x)
	}

	if m.task == Classification {
		if err := checkScores(m.name, margins); err != nil {
			return 0, err
		}
		return float64(argmax(margins)), nil
	}
	return checkOutput(m.name, margins[0])
}

func (t tree) eval(x features.Vector) float64 {
	i := 0
	for {
		n := t.nodes[i]
		if n.leaf {
			return n.value
		}
		if x[n.feature] < n.threshold {
			i = n.yes
		} else {
			i = n.no
		}
	}
}
