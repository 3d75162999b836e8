package web

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/HatiCode/storecast/pkg/features"
	"github.com/HatiCode/storecast/pkg/pipeline"
)

//go:embed templates/*.html
var templateFS embed.FS

// Predictor runs the stacked prediction for one set of inputs.
type Predictor interface {
	Predict(ctx context.Context, in features.RawInputs) (pipeline.Result, error)
}

// Handler renders the page and handles form submissions.
type Handler struct {
	predictor Predictor
	tmpl      *template.Template
	logger    *slog.Logger
}

// NewHandler parses the embedded templates.
func NewHandler(predictor Predictor, logger *slog.Logger) (*Handler, error) {
	if logger == nil {
		logger = slog.Default()
	}

	tmpl, err := template.New("page.html").Funcs(template.FuncMap{
		"num": formatNumber,
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	return &Handler{predictor: predictor, tmpl: tmpl, logger: logger}, nil
}

// Register mounts the page routes on mux:
//
//	GET  /         home or form view, selected by ?view=
//	POST /predict  run the pipeline and render the result
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.handleIndex)
	mux.HandleFunc("POST /predict", h.handlePredict)
	mux.HandleFunc("GET /predict", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/?view="+string(ViewPredict), http.StatusSeeOther)
	})
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	page := newPageContext(ParseView(r.URL.Query().Get("view")), features.DefaultInputs())
	h.render(w, http.StatusOK, page)
}

func (h *Handler) handlePredict(w http.ResponseWriter, r *http.Request) {
	in, err := ParseForm(r)
	page := newPageContext(ViewPredict, in)
	if err != nil {
		page.Error = err.Error()
		h.render(w, http.StatusBadRequest, page)
		return
	}

	res, err := h.predictor.Predict(r.Context(), in)
	switch {
	case errors.Is(err, features.ErrInputRange):
		page.Error = err.Error()
		h.render(w, http.StatusBadRequest, page)
		return
	case err != nil:
		h.logger.Error("prediction failed", "error", err)
		page.Error = "Prediction failed. Please check the model configuration and try again."
		h.render(w, http.StatusInternalServerError, page)
		return
	}

	page.Result = &res
	page.SalesFormatted = FormatCurrency(res.SalesPred)
	h.render(w, http.StatusOK, page)
}

// render buffers the page; nothing is written if the template fails.
func (h *Handler) render(w http.ResponseWriter, status int, page PageContext) {
	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, "page.html", page); err != nil {
		h.logger.Error("failed to render page", "view", page.View, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
