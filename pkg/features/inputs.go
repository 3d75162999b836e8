// Package features turns the store and economic inputs collected by the form
// into the fixed-order feature vectors the trained models were fitted on.
package features

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInputRange is returned when a raw input falls outside the range the
// models were trained on.
var ErrInputRange = errors.New("input out of range")

// Season is the categorical season selected on the form.
type Season string

const (
	Spring Season = "Spring"
	Summer Season = "Summer"
	Winter Season = "Winter"
)

// Seasons lists the selectable seasons in display order.
var Seasons = []Season{Spring, Summer, Winter}

// ParseSeason accepts a season name or a decorated label such as "Summer ☀️".
// Matching is case-insensitive.
func ParseSeason(s string) (Season, error) {
	lower := strings.ToLower(s)
	for _, season := range Seasons {
		if strings.Contains(lower, strings.ToLower(string(season))) {
			return season, nil
		}
	}
	return "", fmt.Errorf("%w: unknown season %q", ErrInputRange, s)
}

// RawInputs holds the values entered on the prediction form.
type RawInputs struct {
	StoreID      int     `json:"store" yaml:"store"`
	Month        int     `json:"month" yaml:"month"`
	HolidayFlag  int     `json:"holidayFlag" yaml:"holiday_flag"`
	Temperature  float64 `json:"temperature" yaml:"temperature"`
	FuelPrice    float64 `json:"fuelPrice" yaml:"fuel_price"`
	CPI          float64 `json:"cpi" yaml:"cpi"`
	Unemployment float64 `json:"unemployment" yaml:"unemployment"`
	RollingMean4 float64 `json:"rollingMean4" yaml:"rolling_mean_4"`
	Season       Season  `json:"season" yaml:"season"`
	DayOfWeek    int     `json:"dayOfWeek" yaml:"day_of_week"`
}

// DefaultInputs returns the values the form is pre-filled with.
func DefaultInputs() RawInputs {
	return RawInputs{
		StoreID:      1,
		Month:        1,
		HolidayFlag:  0,
		Temperature:  65.0,
		FuelPrice:    2.5,
		CPI:          210.0,
		Unemployment: 8.0,
		RollingMean4: 1_500_000.0,
		Season:       Spring,
		DayOfWeek:    0,
	}
}

// Validate checks every field against the form's documented bounds.
// The returned error wraps ErrInputRange and names the first offending field.
func (in RawInputs) Validate() error {
	switch {
	case in.StoreID < 1:
		return rangeErr("store", "must be >= 1, got %d", in.StoreID)
	case in.Month < 1 || in.Month > 12:
		return rangeErr("month", "must be in [1, 12], got %d", in.Month)
	case in.HolidayFlag != 0 && in.HolidayFlag != 1:
		return rangeErr("holiday_flag", "must be 0 or 1, got %d", in.HolidayFlag)
	case in.DayOfWeek < 0 || in.DayOfWeek > 6:
		return rangeErr("day_of_week", "must be in [0, 6], got %d", in.DayOfWeek)
	}

	floats := []struct {
		name  string
		value float64
	}{
		{"temperature", in.Temperature},
		{"fuel_price", in.FuelPrice},
		{"cpi", in.CPI},
		{"unemployment", in.Unemployment},
		{"rolling_mean_4", in.RollingMean4},
	}
	for _, f := range floats {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return rangeErr(f.name, "must be a finite number")
		}
	}

	if in.Temperature < 0 || in.Temperature > 120 {
		return rangeErr("temperature", "must be in [0, 120], got %g", in.Temperature)
	}
	if in.FuelPrice < 1 || in.FuelPrice > 5 {
		return rangeErr("fuel_price", "must be in [1, 5], got %g", in.FuelPrice)
	}
	if _, err := ParseSeason(string(in.Season)); err != nil {
		return err
	}
	return nil
}

func rangeErr(field, format string, args ...any) error {
	return fmt.Errorf("%w: %s %s", ErrInputRange, field, fmt.Sprintf(format, args...))
}
