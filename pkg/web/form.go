package web

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/HatiCode/storecast/pkg/features"
)

// ParseForm reads RawInputs from a submitted prediction form. Fields left
// empty keep their defaults. Unparsable values wrap features.ErrInputRange.
func ParseForm(r *http.Request) (features.RawInputs, error) {
	in := features.DefaultInputs()
	if err := r.ParseForm(); err != nil {
		return in, fmt.Errorf("%w: %w", features.ErrInputRange, err)
	}

	ints := []struct {
		field string
		dst   *int
	}{
		{"store", &in.StoreID},
		{"month", &in.Month},
		{"holiday_flag", &in.HolidayFlag},
		{"day_of_week", &in.DayOfWeek},
	}
	for _, f := range ints {
		raw := strings.TrimSpace(r.PostForm.Get(f.field))
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return in, fmt.Errorf("%w: %s must be a whole number, got %q", features.ErrInputRange, f.field, raw)
		}
		*f.dst = v
	}

	floats := []struct {
		field string
		dst   *float64
	}{
		{"temperature", &in.Temperature},
		{"fuel_price", &in.FuelPrice},
		{"cpi", &in.CPI},
		{"unemployment", &in.Unemployment},
		{"rolling_mean_4", &in.RollingMean4},
	}
	for _, f := range floats {
		raw := strings.TrimSpace(r.PostForm.Get(f.field))
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
		if err != nil {
			return in, fmt.Errorf("%w: %s must be a number, got %q", features.ErrInputRange, f.field, raw)
		}
		*f.dst = v
	}

	if raw := strings.TrimSpace(r.PostForm.Get("season")); raw != "" {
		season, err := features.ParseSeason(raw)
		if err != nil {
			return in, err
		}
		in.Season = season
	}

	return in, nil
}
