package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/mingyueshfjksnkm/RAO-Calculator/db"
	"github.com/mingyueshfjksnkm/RAO-Calculator/monitoring"
	"github.com/mingyueshfjksnkm/RAO-Calculator/risk"
)

var (
	scorer       *risk.Scorer
	eventHub     *monitoring.Hub
	metrics      *monitoring.Metrics
	auditEnabled bool
	handlerLog   = zap.NewNop()
)

func SetScorer(s *risk.Scorer) {
	scorer = s
}

func SetEventHub(h *monitoring.Hub) {
	eventHub = h
}

func SetMetrics(m *monitoring.Metrics) {
	metrics = m
}

func SetAuditEnabled(enabled bool) {
	auditEnabled = enabled
}

func SetLogger(logger *zap.Logger) {
	handlerLog = logger
}

func RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", handleCalculatorPage)
	mux.HandleFunc("GET /api/health", handleHealth)
	mux.HandleFunc("POST /api/predict", handlePredict)
	mux.HandleFunc("GET /api/defaults", handleDefaults)
	mux.HandleFunc("GET /api/assessments", handleAssessments)
	mux.HandleFunc("GET /api/metrics", handleMetrics)
	mux.HandleFunc("GET /api/ws/events", handleEvents)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":       "ok",
		"model_loaded": scorer != nil,
	})
}

// predictResponse carries the structured fields plus the formatted text block
// the original page rendered. On failure only "result" is set, with the ❌
// prefix, so callers branch on the prefix.
type predictResponse struct {
	Probability    float64 `json:"probability,omitempty"`
	RiskLevel      string  `json:"risk_level,omitempty"`
	Icon           string  `json:"icon,omitempty"`
	Recommendation string  `json:"recommendation,omitempty"`
	Policy         string  `json:"policy,omitempty"`
	Result         string  `json:"result"`
}

func handlePredict(w http.ResponseWriter, r *http.Request) {
	if scorer == nil {
		writeResult(w, http.StatusServiceUnavailable, predictResponse{
			Result: risk.FormatError(errors.New("model not loaded")),
		})
		return
	}

	var input risk.Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeResult(w, http.StatusBadRequest, predictResponse{
			Result: risk.FormatError(err),
		})
		return
	}

	assessment, err := scorer.Assess(input)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, risk.ErrMissingInput) || errors.Is(err, risk.ErrInvalidInput) {
			status = http.StatusBadRequest
		} else if metrics != nil {
			metrics.RecordFailure()
		}
		writeResult(w, status, predictResponse{Result: risk.FormatError(err)})
		return
	}

	if metrics != nil {
		metrics.RecordAssessment(string(assessment.Level))
	}
	if eventHub != nil {
		eventHub.BroadcastAssessment(assessment)
	}
	if auditEnabled {
		if err := db.SaveAssessment(assessment); err != nil {
			// audit is best effort, the caller still gets the result
			handlerLog.Warn("save assessment", zap.Error(err))
		}
	}

	writeResult(w, http.StatusOK, predictResponse{
		Probability:    assessment.Probability,
		RiskLevel:      string(assessment.Level),
		Icon:           assessment.Icon,
		Recommendation: assessment.Recommendation,
		Policy:         assessment.Policy,
		Result:         risk.FormatResult(assessment),
	})
}

// handleDefaults returns the reset tuple of the form.
func handleDefaults(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(risk.Defaults())
}

func handleAssessments(w http.ResponseWriter, r *http.Request) {
	if !auditEnabled {
		http.Error(w, `{"error":"assessment audit is disabled"}`, http.StatusNotFound)
		return
	}

	limitStr := r.URL.Query().Get("limit")
	limit := 50
	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	assessments, err := db.QueryRecentAssessments(limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"data": assessments,
	})
}

func handleMetrics(w http.ResponseWriter, r *http.Request) {
	if metrics == nil {
		http.Error(w, `{"error":"metrics not initialized"}`, http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(metrics.Snapshot())
}

func handleEvents(w http.ResponseWriter, r *http.Request) {
	if eventHub == nil {
		http.Error(w, `{"error":"event hub not initialized"}`, http.StatusServiceUnavailable)
		return
	}
	eventHub.ServeWS(w, r)
}

func writeResult(w http.ResponseWriter, status int, resp predictResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}
