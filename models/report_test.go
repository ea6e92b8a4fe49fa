package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreReport_ValueAndScan(t *testing.T) {
	report := &ScoreReport{
		Score:                 82,
		TotalContractedPoints: 300,
		TotalDeliveredPoints:  246,
		Summary:               "Entrega majoritariamente conforme.",
		Discrepancies:         []string{"Relatórios parciais"},
		Recommendations:       []string{"Aplicar glosa proporcional"},
		DetailedAnalysis: []FeatureAnalysis{
			{Feature: "Cadastro", Points: 120, Status: FeatureConforme, Observation: "ok"},
		},
		RiskLevel: RiskMedium,
	}

	value, err := report.Value()
	require.NoError(t, err)

	var decoded ScoreReport
	require.NoError(t, decoded.Scan(value))

	assert.Equal(t, report.Score, decoded.Score)
	assert.Equal(t, report.Summary, decoded.Summary)
	assert.Equal(t, report.RiskLevel, decoded.RiskLevel)
	require.Len(t, decoded.DetailedAnalysis, 1)
	assert.Equal(t, FeatureConforme, decoded.DetailedAnalysis[0].Status)
}

func TestScoreReport_ScanString(t *testing.T) {
	var report ScoreReport
	require.NoError(t, report.Scan(`{"score":78,"risk_level":"medio"}`))
	assert.Equal(t, 78, report.Score)
	assert.Equal(t, RiskMedium, report.RiskLevel)
}

func TestScoreReport_ScanNil(t *testing.T) {
	var report ScoreReport
	require.NoError(t, report.Scan(nil))
	assert.Zero(t, report.Score)
}

func TestProcessingSteps_RoundTrip(t *testing.T) {
	steps := ProcessingSteps{
		{Label: "Compilando contexto", Detail: "Transcrição", Status: StepStatusDone, Elapsed: "0.8s"},
		{Label: "Calculando score", Detail: "Índice 0-100", Status: StepStatusDone, Elapsed: "0.6s"},
	}

	value, err := steps.Value()
	require.NoError(t, err)

	var decoded ProcessingSteps
	require.NoError(t, decoded.Scan(value))
	require.Len(t, decoded, 2)
	assert.Equal(t, "Compilando contexto", decoded[0].Label)
	assert.Equal(t, StepStatusDone, decoded[1].Status)
}
