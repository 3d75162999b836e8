// Package bucket discretizes a predicted sales value into the tiers the
// meta model was trained with.
package bucket

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// DefaultThresholds are the tier boundaries computed from training-time sales
// quantiles. They must be regenerated whenever the models are retrained.
var DefaultThresholds = []float64{669926.827, 1279637.663}

// NumTiers is the number of sales tiers the meta model was trained on.
const NumTiers = 3

// Policy maps a continuous value to a tier index.
type Policy struct {
	// Thresholds must be finite, strictly increasing and NumTiers-1 long.
	Thresholds []float64
}

// DefaultPolicy returns a policy using DefaultThresholds.
func DefaultPolicy() Policy {
	return Policy{Thresholds: append([]float64(nil), DefaultThresholds...)}
}

// Bucket returns the number of thresholds less than or equal to v.
// Intervals are closed on the left: a value equal to a threshold belongs to
// the upper tier.
func (p Policy) Bucket(v float64) int {
	return sort.Search(len(p.Thresholds), func(i int) bool {
		return p.Thresholds[i] > v
	})
}

// Tiers returns the number of distinct tiers the policy produces.
func (p Policy) Tiers() int {
	return len(p.Thresholds) + 1
}

// Validate checks that the policy yields exactly NumTiers tiers and that
// thresholds are finite and strictly increasing.
func (p Policy) Validate() error {
	if p.Tiers() != NumTiers {
		return fmt.Errorf("need %d thresholds for %d tiers, got %d", NumTiers-1, NumTiers, len(p.Thresholds))
	}
	for i, t := range p.Thresholds {
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return fmt.Errorf("threshold %d is not finite", i)
		}
		if i > 0 && t <= p.Thresholds[i-1] {
			return fmt.Errorf("thresholds must be strictly increasing: %g after %g", t, p.Thresholds[i-1])
		}
	}
	return nil
}

// ParseThresholds parses a comma-separated list such as "669926.827,1279637.663".
func ParseThresholds(s string) (Policy, error) {
	parts := strings.Split(s, ",")
	thresholds := make([]float64, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		t, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return Policy{}, fmt.Errorf("invalid threshold %q: %w", part, err)
		}
		thresholds = append(thresholds, t)
	}

	p := Policy{Thresholds: thresholds}
	if err := p.Validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}

// String formats the thresholds the way ParseThresholds reads them.
func (p Policy) String() string {
	parts := make([]string, len(p.Thresholds))
	for i, t := range p.Thresholds {
		parts[i] = strconv.FormatFloat(t, 'f', -1, 64)
	}
	return strings.Join(parts, ",")
}
