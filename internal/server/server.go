package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/raysh454/policysim/internal/app"
	"github.com/raysh454/policysim/internal/charts"
	"github.com/raysh454/policysim/internal/dataset"
	"github.com/raysh454/policysim/internal/logging"
	"github.com/raysh454/policysim/internal/model"
	"github.com/raysh454/policysim/internal/risk"
)

// Server is the HTTP + WebSocket surface of the policy simulation dashboard.
type Server struct {
	cfg       Config
	dashboard *app.Dashboard
	router    chi.Router
	upgrader  websocket.Upgrader
	logger    logging.Logger

	closing   chan struct{}
	closeOnce sync.Once
}

// NewServer builds the router around dashboard.
func NewServer(cfg Config, dashboard *app.Dashboard) (*Server, error) {
	if dashboard == nil {
		return nil, errors.New("server needs a dashboard")
	}
	if cfg.AppConfig == nil {
		cfg.AppConfig = app.DefaultConfig()
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = cfg.AppConfig.Server.ListenAddr
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 15 * time.Second
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewStdoutLogger("Server")
	}

	r := chi.NewRouter()
	s := &Server{
		cfg:       cfg,
		dashboard: dashboard,
		router:    r,
		logger:    logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// The dashboard is served with permissive CORS as well.
				return true
			},
		},
		closing: make(chan struct{}),
	}

	s.routes()
	return s, nil
}

// Dashboard returns the underlying dashboard for advanced use (tests, etc.).
func (s *Server) Dashboard() *app.Dashboard {
	return s.dashboard
}

func (s *Server) routes() {
	r := s.router

	r.Use(s.corsMiddleware)

	// CORS preflight
	r.Options("/api/view", s.optionsHandler("GET"))
	r.Options("/api/regions", s.optionsHandler("GET"))
	r.Options("/api/metrics", s.optionsHandler("GET"))
	r.Options("/api/risk", s.optionsHandler("GET"))
	r.Options("/api/records", s.optionsHandler("GET"))
	r.Options("/api/reload", s.optionsHandler("POST"))
	r.Options("/charts/{chart}.{format}", s.optionsHandler("GET"))

	// Dashboard page
	r.Get("/", s.handleIndex)

	// Evaluation API
	r.Get("/api/view", s.handleView)
	r.Get("/api/regions", s.handleRegions)
	r.Get("/api/metrics", s.handleMetrics)
	r.Get("/api/risk", s.handleRisk)
	r.Get("/api/records", s.handleRecords)

	// Dataset
	r.Post("/api/reload", s.handleReload)
	r.Get("/healthz", s.handleHealth)

	// Charts
	r.Get("/charts/{chart}.{format}", s.handleChart)

	// WebSocket for live lever changes
	r.Get("/ws", s.handleWS)

	// API docs
	r.Get("/swagger/*", swaggerHandler())
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		next.ServeHTTP(w, r)
	})
}

func (s *Server) optionsHandler(methods string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Methods", methods)
		w.WriteHeader(http.StatusNoContent)
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fields := []logging.Field{
		{Key: "method", Value: r.Method},
		{Key: "path", Value: r.URL.Path},
	}

	if q := r.URL.Query(); len(q) > 0 {
		fields = append(fields, logging.Field{Key: "query", Value: q})
	}

	if r.Body != nil && (r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch) {
		if bodyBytes, err := io.ReadAll(r.Body); err == nil {
			fields = append(fields, logging.Field{Key: "body", Value: string(bodyBytes)})
			r.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		}
	}

	s.logger.Info("http_request", fields...)

	s.router.ServeHTTP(w, r)
}

// Close ends open websocket sessions.
func (s *Server) Close() {
	s.closeOnce.Do(func() { close(s.closing) })
}

// HTTPServer creates an *http.Server ready to ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.cfg.ListenAddr,
		Handler:      s,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: 0, // websocket sessions are long-lived
	}
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// --- lever parsing ---

// parseLevers reads the audit, ast and therapy query parameters. Absent
// parameters take the configured defaults.
func (s *Server) parseLevers(r *http.Request) (model.LeverState, error) {
	levers := s.cfg.AppConfig.Levers
	q := r.URL.Query()
	for name, dst := range map[string]*bool{
		"audit":   &levers.AuditEffect,
		"ast":     &levers.ASTEffect,
		"therapy": &levers.TherapyAdjustment,
	} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return levers, errors.New("invalid boolean for " + name + ": " + raw)
		}
		*dst = v
	}
	return levers, nil
}

// evaluate parses levers and evaluates the view, writing the error response
// itself when either step fails.
func (s *Server) evaluate(w http.ResponseWriter, r *http.Request) (*app.View, bool) {
	levers, err := s.parseLevers(r)
	if err != nil {
		s.logger.Warn("parsing levers", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	v, err := s.dashboard.Evaluate(levers)
	if err != nil {
		s.logger.Warn("evaluating dashboard", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return nil, false
	}
	return v, true
}

// --- HTTP handlers ---

// handleIndex godoc
// @Summary Dashboard page
// @Produce html
// @Param audit query bool false "Increase Audit Score"
// @Param ast query bool false "Use Rapid AST"
// @Param therapy query bool false "Apply Targeted Therapy"
// @Router / [get]
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	v, ok := s.evaluate(w, r)
	if !ok {
		return
	}
	body, err := renderPage(v)
	if err != nil {
		s.logger.Error("rendering page", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// handleView godoc
// @Summary Evaluate the dashboard for a lever state
// @Tags dashboard
// @Produce json
// @Param audit query bool false "Increase Audit Score"
// @Param ast query bool false "Use Rapid AST"
// @Param therapy query bool false "Apply Targeted Therapy"
// @Success 200 {object} app.View
// @Failure 400 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /api/view [get]
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	v, ok := s.evaluate(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// handleRegions godoc
// @Summary Summed MDR change per region
// @Tags dashboard
// @Produce json
// @Success 200 {array} model.RegionDelta
// @Router /api/regions [get]
func (s *Server) handleRegions(w http.ResponseWriter, r *http.Request) {
	v, ok := s.evaluate(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, v.Regions)
}

// handleMetrics godoc
// @Summary Summary metrics
// @Tags dashboard
// @Produce json
// @Success 200 {object} model.Metrics
// @Router /api/metrics [get]
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	v, ok := s.evaluate(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, v.Metrics)
}

// handleRisk godoc
// @Summary Risk bucket counts
// @Tags dashboard
// @Produce json
// @Success 200 {object} RiskResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /api/risk [get]
func (s *Server) handleRisk(w http.ResponseWriter, r *http.Request) {
	v, ok := s.evaluate(w, r)
	if !ok {
		return
	}
	switch {
	case !v.RiskAvailable:
		writeError(w, http.StatusNotFound, risk.ErrProbabilityUnavailable.Error())
	case v.RiskError != "":
		writeError(w, http.StatusUnprocessableEntity, v.RiskError)
	default:
		writeJSON(w, http.StatusOK, RiskResponse{Buckets: v.Risk, Total: v.RiskTotal})
	}
}

// handleRecords godoc
// @Summary Derived records with MDR change and risk level
// @Tags dashboard
// @Produce json
// @Success 200 {object} RecordsResponse
// @Router /api/records [get]
func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	levers, err := s.parseLevers(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	recs, err := s.dashboard.Records(levers)
	if err != nil {
		s.logger.Warn("listing records", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, RecordsResponse{Levers: levers, Records: recs})
}

// handleReload godoc
// @Summary Reload the dataset from its source
// @Tags dataset
// @Produce json
// @Success 200 {object} ReloadResponse
// @Failure 422 {object} ErrorResponse
// @Router /api/reload [post]
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	ds, err := s.dashboard.Store().Reload(r.Context())
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, dataset.ErrSchema), errors.Is(err, dataset.ErrInvalidValue):
			status = http.StatusUnprocessableEntity
		case errors.Is(err, dataset.ErrNoSource):
			status = http.StatusConflict
		}
		writeError(w, status, err.Error())
		return
	}
	s.logger.Info("reloaded dataset", logging.Field{Key: "dataset_id", Value: ds.ID})
	writeJSON(w, http.StatusOK, ReloadResponse{
		DatasetID:      ds.ID,
		Records:        ds.Len(),
		HasProbability: ds.HasProbability,
	})
}

// handleHealth godoc
// @Summary Loaded dataset status
// @Tags dataset
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /healthz [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ds := s.dashboard.Store().Current()
	if ds == nil {
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "no dataset"})
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		DatasetID: ds.ID,
		Source:    ds.Source,
		Records:   ds.Len(),
		LoadedAt:  ds.LoadedAt,
	})
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	format, err := charts.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	name := chi.URLParam(r, "chart")
	if name != "regions" && name != "risk" {
		writeError(w, http.StatusNotFound, "unknown chart "+name)
		return
	}

	v, ok := s.evaluate(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	opts := s.cfg.AppConfig.Charts
	if name == "regions" {
		err = charts.RenderRegionDelta(&buf, v.Regions, format, opts)
	} else {
		switch {
		case !v.RiskAvailable:
			writeError(w, http.StatusNotFound, risk.ErrProbabilityUnavailable.Error())
			return
		case v.RiskError != "":
			writeError(w, http.StatusUnprocessableEntity, v.RiskError)
			return
		}
		err = charts.RenderRiskLevels(&buf, v.Risk, format, opts)
	}
	if errors.Is(err, charts.ErrNoData) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		s.logger.Error("rendering chart", logging.Field{Key: "chart", Value: name}, logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
