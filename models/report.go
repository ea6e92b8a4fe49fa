package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Risk levels reported by score generation.
const (
	RiskLow      = "baixo"
	RiskMedium   = "medio"
	RiskHigh     = "alto"
	RiskCritical = "critico"
)

// Per-feature delivery status values used in detailed analyses.
const (
	FeatureConforme    = "conforme"
	FeatureParcial     = "parcial"
	FeatureNaoEntregue = "não_entregue"
)

// FeatureAnalysis is one line of a function-point breakdown.
type FeatureAnalysis struct {
	Feature     string `json:"feature"`
	Points      int    `json:"points"`
	Status      string `json:"status"`
	Observation string `json:"observation,omitempty"`
}

// AnalysisReport is the structured result of a contract analysis run, as
// requested from the reasoning service.
type AnalysisReport struct {
	TotalContractedPoints int               `json:"total_contracted_points"`
	TotalDeliveredPoints  int               `json:"total_delivered_points"`
	Summary               string            `json:"summary"`
	Discrepancies         []string          `json:"discrepancies,omitempty"`
	DetailedAnalysis      []FeatureAnalysis `json:"detailed_analysis,omitempty"`
}

// ScoreReport is the structured result of chat-session score generation.
// It extends the analysis report with a 0-100 compliance score,
// recommendations and a risk level.
type ScoreReport struct {
	Score                 int               `json:"score"`
	TotalContractedPoints int               `json:"total_contracted_points"`
	TotalDeliveredPoints  int               `json:"total_delivered_points"`
	Summary               string            `json:"summary"`
	Discrepancies         []string          `json:"discrepancies,omitempty"`
	Recommendations       []string          `json:"recommendations,omitempty"`
	DetailedAnalysis      []FeatureAnalysis `json:"detailed_analysis,omitempty"`
	RiskLevel             string            `json:"risk_level,omitempty"`
}

func (r AnalysisReport) Value() (driver.Value, error) {
	return json.Marshal(r)
}

func (r *AnalysisReport) Scan(value interface{}) error {
	return scanJSON(value, r)
}

func (r ScoreReport) Value() (driver.Value, error) {
	return json.Marshal(r)
}

func (r *ScoreReport) Scan(value interface{}) error {
	return scanJSON(value, r)
}

// ProcessingSteps is the ordered step list stored as a JSON column.
type ProcessingSteps []ProcessingStep

func (s ProcessingSteps) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	return json.Marshal(s)
}

func (s *ProcessingSteps) Scan(value interface{}) error {
	if value == nil {
		*s = ProcessingSteps{}
		return nil
	}
	return scanJSON(value, s)
}

func scanJSON(value, dest interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	case nil:
		return nil
	default:
		return fmt.Errorf("unsupported column type %T", value)
	}
}
