package app

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Black-And-White-Club/campscore/app/apperrors"
	activityservice "github.com/Black-And-White-Club/campscore/app/modules/activity/application"
	clubservice "github.com/Black-And-White-Club/campscore/app/modules/club/application"
	criteriaservice "github.com/Black-And-White-Club/campscore/app/modules/criteria/application"
	evaluationservice "github.com/Black-And-White-Club/campscore/app/modules/evaluation/application"
	"github.com/Black-And-White-Club/frolf-bot-shared/observability/attr"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTPDeps are the read services exposed over HTTP.
type HTTPDeps struct {
	Clubs      clubservice.Service
	Activity   activityservice.Service
	Criteria   criteriaservice.Service
	Evaluation evaluationservice.Service
	Gatherer   prometheus.Gatherer
	Health     func(ctx context.Context) error
	Logger     *slog.Logger
}

// NewHTTPRouter serves health, metrics and read-only JSON views.
func NewHTTPRouter(deps HTTPDeps) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if deps.Health != nil {
			if err := deps.Health(req.Context()); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "error": err.Error()})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	h := &readHandlers{deps: deps}
	r.Route("/api", func(r chi.Router) {
		r.Get("/criteria", h.criteria)
		r.Get("/activity", h.allActivity)
		r.Get("/verify", h.verify)
		r.Route("/clubs", func(r chi.Router) {
			r.Get("/", h.listClubs)
			r.Route("/{clubID}", func(r chi.Router) {
				r.Get("/", h.getClub)
				r.Get("/activity", h.clubActivity)
				r.Get("/evaluations", h.evaluations)
			})
		})
	})
	return r
}

type readHandlers struct {
	deps HTTPDeps
}

func (h *readHandlers) listClubs(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"
	clubs, err := h.deps.Clubs.ListClubs(r.Context(), activeOnly)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, clubs)
}

func (h *readHandlers) getClub(w http.ResponseWriter, r *http.Request) {
	id, ok := h.clubID(w, r)
	if !ok {
		return
	}
	club, err := h.deps.Clubs.GetClub(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, club)
}

func (h *readHandlers) clubActivity(w http.ResponseWriter, r *http.Request) {
	id, ok := h.clubID(w, r)
	if !ok {
		return
	}
	logs, err := h.deps.Activity.GetClubActivityLogs(r.Context(), id, limitParam(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

func (h *readHandlers) allActivity(w http.ResponseWriter, r *http.Request) {
	logs, err := h.deps.Activity.GetAllActivityLogs(r.Context(), limitParam(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

func (h *readHandlers) evaluations(w http.ResponseWriter, r *http.Request) {
	id, ok := h.clubID(w, r)
	if !ok {
		return
	}
	evaluated, err := h.deps.Evaluation.GetEvaluatedCriteria(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, evaluated)
}

func (h *readHandlers) criteria(w http.ResponseWriter, r *http.Request) {
	catalog, err := h.deps.Criteria.GetCriteria(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, catalog)
}

func (h *readHandlers) verify(w http.ResponseWriter, r *http.Request) {
	drifts, err := h.deps.Evaluation.VerifyTotals(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"consistent": len(drifts) == 0, "drifts": drifts})
}

func (h *readHandlers) clubID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "clubID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Code: "invalid_request", Message: "club id must be a uuid"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *readHandlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		status = http.StatusNotFound
	case apperrors.IsDomain(err):
		status = http.StatusBadRequest
	default:
		h.deps.Logger.ErrorContext(r.Context(), "HTTP read failed",
			attr.String("path", r.URL.Path),
			attr.Error(err),
		)
	}
	writeJSON(w, status, errorBody{Code: apperrors.Code(err), Message: err.Error()})
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// limitParam returns the ?limit query value; the services clamp it.
func limitParam(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		return 0
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
