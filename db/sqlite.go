package db

import (
	"database/sql"
	"errors"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mingyueshfjksnkm/RAO-Calculator/risk"
)

var database *sql.DB

// InitDB initializes the SQLite audit database
func InitDB(path string) error {
	var err error
	database, err = sql.Open("sqlite3", path)
	if err != nil {
		return err
	}

	query := `
    CREATE TABLE IF NOT EXISTS assessments (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        compression_time REAL NOT NULL,
        nitroglycerin_dose REAL NOT NULL,
        radial_diameter_cm REAL NOT NULL,
        sheath_ratio REAL NOT NULL,
        heparin_category INTEGER NOT NULL,
        puncture_attempts INTEGER NOT NULL,
        prior_catheterization INTEGER NOT NULL,
        probability REAL NOT NULL,
        risk_level TEXT NOT NULL,
        policy TEXT NOT NULL,
        created_at DATETIME NOT NULL
    );
    `

	_, err = database.Exec(query)
	return err
}

// Close releases the handle; safe to call when InitDB never ran.
func Close() error {
	if database == nil {
		return nil
	}
	err := database.Close()
	database = nil
	return err
}

// SaveAssessment appends one issued assessment to the audit trail.
func SaveAssessment(a *risk.Assessment) error {
	if database == nil {
		return errors.New("database not initialized")
	}
	_, err := database.Exec(`
        INSERT INTO assessments (
            compression_time, nitroglycerin_dose, radial_diameter_cm, sheath_ratio,
            heparin_category, puncture_attempts, prior_catheterization,
            probability, risk_level, policy, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `,
		a.Record.CompressionTime,
		a.Record.NitroglycerinDose,
		a.Record.RadialDiameterCM,
		a.Record.SheathRatio,
		a.Record.HeparinCategory,
		a.Record.PunctureAttempts,
		a.Record.PriorCatheterization,
		a.Probability,
		string(a.Level),
		a.Policy,
		a.CreatedAt,
	)
	return err
}

type AssessmentRow struct {
	ID                   int64     `json:"id"`
	CompressionTime      float64   `json:"compression_time"`
	NitroglycerinDose    float64   `json:"nitroglycerin_dose"`
	RadialDiameterCM     float64   `json:"radial_diameter_cm"`
	SheathRatio          float64   `json:"sheath_ratio"`
	HeparinCategory      int       `json:"heparin_category"`
	PunctureAttempts     int       `json:"puncture_attempts"`
	PriorCatheterization int       `json:"prior_catheterization"`
	Probability          float64   `json:"probability"`
	RiskLevel            string    `json:"risk_level"`
	Policy               string    `json:"policy"`
	CreatedAt            time.Time `json:"created_at"`
}

// QueryRecentAssessments returns the newest audit rows, newest first.
func QueryRecentAssessments(limit int) ([]AssessmentRow, error) {
	if database == nil {
		return nil, errors.New("database not initialized")
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := database.Query(`
        SELECT id, compression_time, nitroglycerin_dose, radial_diameter_cm, sheath_ratio,
               heparin_category, puncture_attempts, prior_catheterization,
               probability, risk_level, policy, created_at
        FROM assessments
        ORDER BY created_at DESC, id DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assessments := make([]AssessmentRow, 0)
	for rows.Next() {
		var row AssessmentRow
		err := rows.Scan(&row.ID, &row.CompressionTime, &row.NitroglycerinDose,
			&row.RadialDiameterCM, &row.SheathRatio,
			&row.HeparinCategory, &row.PunctureAttempts, &row.PriorCatheterization,
			&row.Probability, &row.RiskLevel, &row.Policy, &row.CreatedAt)
		if err != nil {
			return nil, err
		}
		assessments = append(assessments, row)
	}
	return assessments, rows.Err()
}
