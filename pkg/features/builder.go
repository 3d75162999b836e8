package features

import "fmt"

// Vector is an ordered feature vector as consumed by a model.
type Vector []float64

// DerivedFeatures are the engineered fields computed from RawInputs.
type DerivedFeatures struct {
	IsWeekend    bool
	SeasonSpring bool
	SeasonSummer bool
	SeasonWinter bool
}

// Derive computes the weekend flag and the one-hot season encoding.
// Saturday (5) and Sunday (6) count as weekend days.
func Derive(in RawInputs) DerivedFeatures {
	season, _ := ParseSeason(string(in.Season))
	return DerivedFeatures{
		IsWeekend:    in.DayOfWeek == 5 || in.DayOfWeek == 6,
		SeasonSpring: season == Spring,
		SeasonSummer: season == Summer,
		SeasonWinter: season == Winter,
	}
}

// Builder assembles the base feature vector fed to the first-stage models.
type Builder struct {
	schema Schema
}

// NewBuilder creates a builder producing vectors in BaseSchema order.
func NewBuilder() *Builder {
	return &Builder{schema: BaseSchema}
}

// Schema returns the layout of vectors produced by Build.
func (b *Builder) Schema() Schema {
	return b.schema
}

// Build converts validated inputs into the 13-element base vector:
//
//	store, holiday_flag, temperature, fuel_price, cpi, unemployment, month,
//	day_of_week, is_weekend, rolling_mean_4, season_spring, season_summer,
//	season_winter
//
// The order is part of the contract with the trained artifacts.
func (b *Builder) Build(in RawInputs) (Vector, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	d := Derive(in)

	v := Vector{
		float64(in.StoreID),
		float64(in.HolidayFlag),
		in.Temperature,
		in.FuelPrice,
		in.CPI,
		in.Unemployment,
		float64(in.Month),
		float64(in.DayOfWeek),
		flag(d.IsWeekend),
		in.RollingMean4,
		flag(d.SeasonSpring),
		flag(d.SeasonSummer),
		flag(d.SeasonWinter),
	}
	if len(v) != b.schema.Len() {
		return nil, fmt.Errorf("built %d features, schema %s expects %d", len(v), b.schema.Name, b.schema.Len())
	}
	return v, nil
}

// Extend appends the first-stage outputs to a base vector, producing the
// 16-element vector consumed by the meta model. The base vector is not modified.
func Extend(base Vector, salesPred float64, demandPred, salesBucket int) Vector {
	v := make(Vector, 0, len(base)+3)
	v = append(v, base...)
	return append(v, salesPred, float64(demandPred), float64(salesBucket))
}

func flag(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
