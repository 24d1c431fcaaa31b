package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mingyueshfjksnkm/RAO-Calculator/ml"
	"github.com/mingyueshfjksnkm/RAO-Calculator/monitoring"
	"github.com/mingyueshfjksnkm/RAO-Calculator/risk"
)

type fakeClassifier struct {
	prob  float64
	err   error
	calls int
}

func (f *fakeClassifier) PredictProba(features []float64) (float64, error) {
	f.calls++
	return f.prob, f.err
}

func newHandlerScorer(t *testing.T, classifier ml.Classifier) *risk.Scorer {
	t.Helper()
	scaler, err := ml.NewStandardScaler(
		map[string]float64{
			risk.FeatureCompressionTime: 120,
			risk.FeatureNitroglycerin:   200,
			risk.FeatureRadialDiameter:  0.25,
			risk.FeatureSheathRatio:     0.6,
		},
		map[string]float64{
			risk.FeatureCompressionTime: 30,
			risk.FeatureNitroglycerin:   100,
			risk.FeatureRadialDiameter:  0.05,
			risk.FeatureSheathRatio:     0.1,
		},
	)
	if err != nil {
		t.Fatalf("build scaler: %v", err)
	}
	scorer, err := risk.NewScorer(risk.ScorerConfig{
		Scaler:     scaler,
		Classifier: classifier,
		Policy:     risk.PolicyA,
	})
	if err != nil {
		t.Fatalf("build scorer: %v", err)
	}
	return scorer
}

const validBody = `{
	"compression_time": 120,
	"nitroglycerin_dose": 200,
	"radial_diameter_mm": 2.5,
	"sheath_ratio": 0.6,
	"heparin_category": "1",
	"puncture_attempts": "1",
	"prior_catheterization": "0"
}`

func TestHandlePredict(t *testing.T) {
	mux := http.NewServeMux()
	RegisterHandlers(mux)
	fake := &fakeClassifier{prob: 0.08}
	SetScorer(newHandlerScorer(t, fake))
	SetMetrics(monitoring.NewMetrics())
	defer func() {
		SetScorer(nil)
		SetMetrics(nil)
	}()

	req := httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(validBody))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if payload["risk_level"].(string) != "Medium Risk" {
		t.Fatalf("unexpected risk level: %v", payload["risk_level"])
	}
	if payload["probability"].(float64) != 0.08 {
		t.Fatalf("unexpected probability: %v", payload["probability"])
	}
	result := payload["result"].(string)
	if strings.HasPrefix(result, risk.FailurePrefix) {
		t.Fatalf("success result carries failure prefix: %q", result)
	}
	if !strings.Contains(result, "8.00%") {
		t.Fatalf("result missing formatted probability: %q", result)
	}
	if fake.calls != 1 {
		t.Fatalf("expected one classifier call, got %d", fake.calls)
	}
}

func TestHandlePredictMissingInput(t *testing.T) {
	mux := http.NewServeMux()
	RegisterHandlers(mux)
	fake := &fakeClassifier{prob: 0.08}
	SetScorer(newHandlerScorer(t, fake))
	defer SetScorer(nil)

	body := `{"nitroglycerin_dose": 200, "heparin_category": "1", "puncture_attempts": "1", "prior_catheterization": "0"}`
	req := httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(body))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	var payload map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if !strings.HasPrefix(payload["result"].(string), risk.FailurePrefix) {
		t.Fatalf("failure result must carry the prefix: %v", payload["result"])
	}
	if fake.calls != 0 {
		t.Fatalf("classifier must not be reached, got %d calls", fake.calls)
	}
}

func TestHandlePredictClassifierFailure(t *testing.T) {
	mux := http.NewServeMux()
	RegisterHandlers(mux)
	SetScorer(newHandlerScorer(t, &fakeClassifier{err: errors.New("feature mismatch")}))
	SetMetrics(monitoring.NewMetrics())
	defer func() {
		SetScorer(nil)
		SetMetrics(nil)
	}()

	req := httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(validBody))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	var payload map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if !strings.HasPrefix(payload["result"].(string), risk.FailurePrefix) {
		t.Fatalf("failure result must carry the prefix: %v", payload["result"])
	}
}

func TestHandlePredictWithoutScorer(t *testing.T) {
	mux := http.NewServeMux()
	RegisterHandlers(mux)
	SetScorer(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(validBody))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when model not loaded, got %d", w.Code)
	}
}
