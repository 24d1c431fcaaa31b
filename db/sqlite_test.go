package db

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/mingyueshfjksnkm/RAO-Calculator/risk"
)

func TestSaveAndQueryAssessments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rao.db")
	if err := InitDB(path); err != nil {
		t.Fatalf("init db: %v", err)
	}
	defer Close()

	assessment := &risk.Assessment{
		Record: risk.Record{
			CompressionTime:      120,
			NitroglycerinDose:    200,
			RadialDiameterCM:     0.25,
			SheathRatio:          0.6,
			HeparinCategory:      1,
			PunctureAttempts:     2,
			PriorCatheterization: 1,
		},
		Probability:    0.08,
		Level:          risk.LevelMedium,
		Recommendation: "Enhanced post-operative monitoring advised",
		Policy:         "A",
		CreatedAt:      time.Now().UTC(),
	}
	if err := SaveAssessment(assessment); err != nil {
		t.Fatalf("save assessment: %v", err)
	}

	rows, err := QueryRecentAssessments(10)
	if err != nil {
		t.Fatalf("query assessments: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	row := rows[0]
	if row.Probability != 0.08 || row.RiskLevel != "Medium Risk" || row.Policy != "A" {
		t.Fatalf("unexpected row: %+v", row)
	}
	if row.RadialDiameterCM != 0.25 || row.PunctureAttempts != 2 || row.PriorCatheterization != 1 {
		t.Fatalf("record fields not persisted: %+v", row)
	}
}

func TestSaveWithoutInit(t *testing.T) {
	if err := Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := SaveAssessment(&risk.Assessment{}); err == nil {
		t.Fatal("expected error before InitDB")
	}
	if _, err := QueryRecentAssessments(5); err == nil {
		t.Fatal("expected error before InitDB")
	}
}
