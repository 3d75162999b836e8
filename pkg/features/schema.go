package features

import (
	"fmt"
	"slices"
)

// Schema names the features of a vector in order.
type Schema struct {
	Name  string
	Names []string
}

// BaseSchema is the layout of the first-stage feature vector.
var BaseSchema = Schema{
	Name: "base",
	Names: []string{
		"store",
		"holiday_flag",
		"temperature",
		"fuel_price",
		"cpi",
		"unemployment",
		"month",
		"day_of_week",
		"is_weekend",
		"rolling_mean_4",
		"season_spring",
		"season_summer",
		"season_winter",
	},
}

// StackedSchema is BaseSchema followed by the first-stage outputs.
var StackedSchema = Schema{
	Name:  "stacked",
	Names: append(slices.Clone(BaseSchema.Names), "sales_pred", "demand_pred", "sales_bucket"),
}

// Len returns the number of features.
func (s Schema) Len() int {
	return len(s.Names)
}

// Match reports whether names equals the schema exactly, in count and order.
func (s Schema) Match(names []string) error {
	if len(names) != len(s.Names) {
		return fmt.Errorf("schema %s expects %d features, got %d", s.Name, len(s.Names), len(names))
	}
	for i, name := range names {
		if name != s.Names[i] {
			return fmt.Errorf("schema %s: feature %d is %q, want %q", s.Name, i, name, s.Names[i])
		}
	}
	return nil
}
