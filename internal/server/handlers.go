package server

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tanglestat/pkg/buildinfo"
	"github.com/matzehuels/tanglestat/pkg/errors"
	"github.com/matzehuels/tanglestat/pkg/pipeline"
	"github.com/matzehuels/tanglestat/pkg/render"
	"github.com/matzehuels/tanglestat/pkg/report"
)

const defaultSourceName = "request"

type handler struct {
	runner *pipeline.Runner
	logger *log.Logger
	opts   Options
}

type healthResponse struct {
	Status string `json:"status"`
	buildinfo.Info
}

type errorResponse struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Info: buildinfo.Get()})
}

func (h *handler) analyze(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format := q.Get("format")
	if format == "" {
		format = errors.FormatJSON
	}
	if format != errors.FormatJSON && format != errors.FormatText {
		h.fail(w, errors.New(errors.ErrCodeInvalidInput, "invalid format %q (valid: json, text)", format))
		return
	}
	precision := h.opts.Precision
	if p := q.Get("precision"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n > 17 {
			h.fail(w, errors.New(errors.ErrCodeInvalidInput, "invalid precision %q (0-17)", p))
			return
		}
		precision = n
	}
	name, data, ok := h.input(w, r)
	if !ok {
		return
	}

	res, err := h.runner.Analyze(r.Context(), name, data, pipeline.Options{Refresh: q.Get("refresh") == "true"})
	if err != nil {
		h.fail(w, err)
		return
	}

	w.Header().Set("X-Run-ID", res.Report.RunID)
	w.Header().Set("X-Cache", cacheStatus(res.CacheHit))
	if format == errors.FormatText {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_ = report.WriteText(w, res.Report, precision)
		return
	}
	writeJSON(w, http.StatusOK, res.Report)
}

func (h *handler) render(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	name, data, ok := h.input(w, r)
	if !ok {
		return
	}

	t, err := h.runner.Load(r.Context(), name, data)
	if err != nil {
		h.fail(w, err)
		return
	}
	if t.Len() > h.opts.MaxRenderNodes {
		h.fail(w, errors.New(errors.ErrCodeInvalidInput,
			"tangle has %d transactions, render accepts at most %d", t.Len(), h.opts.MaxRenderNodes))
		return
	}
	dot := render.ToDOT(t, render.Options{
		Detailed:    q.Get("detailed") == "true",
		RankByDepth: q.Get("rank") == "true",
	})
	svg, err := render.RenderSVG(r.Context(), dot)
	if err != nil {
		h.fail(w, errors.Wrap(errors.ErrCodeInternal, err, "render diagram"))
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(svg)
}

// input reads the source name and the size-capped request body. On failure
// it writes the error response and returns false.
func (h *handler) input(w http.ResponseWriter, r *http.Request) (string, []byte, bool) {
	name := defaultSourceName
	if r.URL.Query().Has("name") {
		name = r.URL.Query().Get("name")
		if err := errors.ValidateSourceName(name); err != nil {
			h.fail(w, err)
			return "", nil, false
		}
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.opts.MaxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			h.fail(w, errors.New(errors.ErrCodeInvalidInput, "request body exceeds %d bytes", tooLarge.Limit))
		} else {
			h.fail(w, errors.Wrap(errors.ErrCodeIO, err, "read request body"))
		}
		return "", nil, false
	}
	return name, data, true
}

func (h *handler) fail(w http.ResponseWriter, err error) {
	err = errors.Classify(err)
	status := statusFor(errors.GetCode(err))
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "err", err)
	}
	writeJSON(w, status, errorResponse{Code: errors.GetCode(err), Message: errors.UserMessage(err)})
}

func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput:
		return http.StatusBadRequest
	case errors.ErrCodeInvalidFormat, errors.ErrCodeCycle:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func cacheStatus(hit bool) string {
	if hit {
		return "HIT"
	}
	return "MISS"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
