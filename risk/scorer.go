package risk

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/mingyueshfjksnkm/RAO-Calculator/ml"
)

// Policy maps a probability to a risk tier through two ordered cutoffs.
// Boundary values land on the upper tier (strict < comparisons), so the
// tiers partition [0,1] with no gaps.
type Policy struct {
	Name      string
	LowMax    float64
	MediumMax float64
}

var (
	// PolicyA is the canonical cutoff set of the calculator.
	PolicyA = Policy{Name: "A", LowMax: 0.05, MediumMax: 0.15}
	// PolicyB is the alternative cutoff set used by one deployment variant.
	PolicyB = Policy{Name: "B", LowMax: 0.10, MediumMax: 0.30}
)

func PolicyByName(name string) (Policy, error) {
	switch name {
	case "", "A", "a":
		return PolicyA, nil
	case "B", "b":
		return PolicyB, nil
	default:
		return Policy{}, fmt.Errorf("unknown threshold policy %q", name)
	}
}

type Level string

const (
	LevelLow    Level = "Low Risk"
	LevelMedium Level = "Medium Risk"
	LevelHigh   Level = "High Risk"
)

// Tier classifies a probability under this policy.
func (p Policy) Tier(prob float64) (Level, string, string) {
	switch {
	case prob < p.LowMax:
		return LevelLow, "🟢", "Routine care recommended"
	case prob < p.MediumMax:
		return LevelMedium, "🟡", "Enhanced post-operative monitoring advised"
	default:
		return LevelHigh, "🔴", "Preventive measures and close monitoring required"
	}
}

// Assessment is one scoring result. Created per request, never persisted by
// the scorer itself.
type Assessment struct {
	Record         Record    `json:"-"`
	Probability    float64   `json:"probability"`
	Level          Level     `json:"risk_level"`
	Icon           string    `json:"icon"`
	Recommendation string    `json:"recommendation"`
	Policy         string    `json:"policy"`
	CreatedAt      time.Time `json:"created_at"`
}

// ScorerConfig wires the scorer's collaborators and tunables.
type ScorerConfig struct {
	Scaler     *ml.StandardScaler
	Classifier ml.Classifier
	Policy     Policy
	Limits     Limits
	CacheSize  int // 0 disables memoization
}

// Scorer runs the full pipeline: validate, assemble, standardize, predict,
// tier. The scaler and classifier are loaded once and read-only afterwards;
// policy and limits may be swapped by the config reloader, guarded by mu.
type Scorer struct {
	scaler     *ml.StandardScaler
	classifier ml.Classifier
	cache      *assessmentCache

	mu     sync.RWMutex
	policy Policy
	limits Limits
}

func NewScorer(cfg ScorerConfig) (*Scorer, error) {
	if cfg.Scaler == nil {
		return nil, errors.New("standardization table not loaded")
	}
	if cfg.Classifier == nil {
		return nil, errors.New("classifier not loaded")
	}
	if cfg.Policy.Name == "" {
		cfg.Policy = PolicyA
	}
	if cfg.Limits == (Limits{}) {
		cfg.Limits = DefaultLimits()
	}

	var cache *assessmentCache
	if cfg.CacheSize > 0 {
		var err error
		cache, err = newAssessmentCache(cfg.CacheSize)
		if err != nil {
			return nil, err
		}
	}

	return &Scorer{
		scaler:     cfg.Scaler,
		classifier: cfg.Classifier,
		cache:      cache,
		policy:     cfg.Policy,
		limits:     cfg.Limits,
	}, nil
}

func (s *Scorer) Policy() Policy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.policy
}

func (s *Scorer) SetPolicy(policy Policy) {
	s.mu.Lock()
	s.policy = policy
	s.mu.Unlock()
	if s.cache != nil {
		s.cache.purge()
	}
}

func (s *Scorer) Limits() Limits {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.limits
}

func (s *Scorer) SetLimits(limits Limits) {
	s.mu.Lock()
	s.limits = limits
	s.mu.Unlock()
}

// Assess scores one set of form inputs. Input errors short-circuit before the
// classifier is touched; classifier failures come back wrapped, never as a
// panic.
func (s *Scorer) Assess(input Input) (*Assessment, error) {
	record, err := AssembleRecord(input, s.Limits())
	if err != nil {
		return nil, err
	}
	policy := s.Policy()

	if s.cache != nil {
		if cached, ok := s.cache.get(record, policy.Name); ok {
			return cached, nil
		}
	}

	vector, err := s.standardize(record)
	if err != nil {
		return nil, fmt.Errorf("standardize features: %w", err)
	}

	prob, err := s.classifier.PredictProba(vector)
	if err != nil {
		return nil, fmt.Errorf("classifier prediction: %w", err)
	}
	if math.IsNaN(prob) || prob < 0 || prob > 1 {
		return nil, fmt.Errorf("classifier returned probability %v outside [0,1]", prob)
	}

	level, icon, recommendation := policy.Tier(prob)
	assessment := &Assessment{
		Record:         record,
		Probability:    prob,
		Level:          level,
		Icon:           icon,
		Recommendation: recommendation,
		Policy:         policy.Name,
		CreatedAt:      time.Now().UTC(),
	}

	if s.cache != nil {
		s.cache.add(record, policy.Name, assessment)
	}
	return assessment, nil
}

// standardize rescales the four numeric slots of the vector and leaves the
// categorical codes untouched.
func (s *Scorer) standardize(record Record) ([]float64, error) {
	vector := record.Vector()
	for i, name := range NumericFeatureNames() {
		scaled, err := s.scaler.Standardize(name, vector[i])
		if err != nil {
			return nil, err
		}
		vector[i] = scaled
	}
	return vector, nil
}
