package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"riskd/internal/inference"
	"riskd/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	CustomerIDs() ([]int64, error)
	Score(id int64) (types.ScoreData, error)
	Features(id int64) (map[string]*float64, error)
	LocalExplanation(id int64) (types.ShapData, error)
	Bivariate(featX, featY string) (types.BivariateData, error)
	GlobalImage() ([]byte, error)
	Distribution(feature string) (types.DistributionData, error)
	GenerationID() string
	Status() types.StatusResponse
	Ready() bool
}

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Log-Level"},
		}))
	}
	r.Use(MetricsMiddleware)
	r.Use(requestLogger)
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/customers", func(w http.ResponseWriter, r *http.Request) {
		ids, err := svc.CustomerIDs()
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, types.CustomersResponse{CustomerIDs: ids})
	})

	r.Get("/customer/{id}/dashboard", func(w http.ResponseWriter, r *http.Request) {
		id, ok := customerID(w, r)
		if !ok {
			return
		}
		score, err := svc.Score(id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		features, err := svc.Features(id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		resp := types.DashboardResponse{
			Score:    score,
			Features: features,
			Meta: types.DashboardMeta{
				Timestamp:    time.Now().UTC().Format(time.RFC3339),
				GenerationID: svc.GenerationID(),
			},
		}
		// A degraded explanation artifact hides the shap panel only; the
		// rest of the dashboard still renders.
		if shap, err := svc.LocalExplanation(id); err == nil {
			resp.Shap = &shap
		} else if !inference.IsUnavailable(err) {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, resp)
	})

	r.Get("/customer/{id}/score", func(w http.ResponseWriter, r *http.Request) {
		id, ok := customerID(w, r)
		if !ok {
			return
		}
		score, err := svc.Score(id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, score)
	})

	r.Get("/customer/{id}/features", func(w http.ResponseWriter, r *http.Request) {
		id, ok := customerID(w, r)
		if !ok {
			return
		}
		features, err := svc.Features(id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, features)
	})

	r.Get("/customer/{id}/shap", func(w http.ResponseWriter, r *http.Request) {
		id, ok := customerID(w, r)
		if !ok {
			return
		}
		shap, err := svc.LocalExplanation(id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, shap)
	})

	r.Get("/features/bivariate_data", func(w http.ResponseWriter, r *http.Request) {
		featX := r.URL.Query().Get("feat_x")
		featY := r.URL.Query().Get("feat_y")
		if featX == "" || featY == "" {
			writeJSONError(w, http.StatusBadRequest, "feat_x and feat_y are required")
			return
		}
		data, err := svc.Bivariate(featX, featY)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, data)
	})

	r.Get("/features/{feature}/distribution", func(w http.ResponseWriter, r *http.Request) {
		data, err := svc.Distribution(chi.URLParam(r, "feature"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		w.Header().Set("Cache-Control", staticCacheControl)
		writeJSON(w, data)
	})

	r.Get("/shap/global", func(w http.ResponseWriter, r *http.Request) {
		img, err := svc.GlobalImage()
		if err != nil {
			writeServiceError(w, err)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", staticCacheControl)
		_, _ = w.Write(img)
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, svc.Status())
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("loading"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)

	return r
}

// customerID parses the {id} route param; a non-numeric id is a 400, not a
// 404, so typos are distinguishable from unknown customers.
func customerID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "customer id must be an integer")
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
	}
}
