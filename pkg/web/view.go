// Package web serves the single-page prediction form.
//
// The page has two views, Home and Predict. The active view travels with each
// request in the "view" parameter; the server keeps no navigation state.
package web

import (
	"github.com/HatiCode/storecast/pkg/features"
	"github.com/HatiCode/storecast/pkg/pipeline"
)

// View is the page section being shown.
type View string

const (
	ViewHome    View = "home"
	ViewPredict View = "predict"
)

// ParseView maps a request parameter to a View, defaulting to Home.
func ParseView(s string) View {
	if View(s) == ViewPredict {
		return ViewPredict
	}
	return ViewHome
}

// PageContext carries everything a single render needs.
type PageContext struct {
	View  View
	Form  features.RawInputs
	Error string

	Result         *pipeline.Result
	SalesFormatted string

	Seasons []features.Season
	Days    []int
	Months  []int
}

func newPageContext(view View, form features.RawInputs) PageContext {
	return PageContext{
		View:    view,
		Form:    form,
		Seasons: features.Seasons,
		Days:    []int{0, 1, 2, 3, 4, 5, 6},
		Months:  []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12},
	}
}
