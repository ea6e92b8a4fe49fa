package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leocezardev/pifc/models"
)

func TestClassifyIntent(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    Intent
	}{
		{"function points keyword", "Quantos pontos de função foram entregues?", IntentFunctionPoints},
		{"apf keyword", "Faça a contagem APF do contrato", IntentFunctionPoints},
		{"funcao without accent", "analise as funcoes entregues", IntentFunctionPoints},
		{"requirements keyword", "Quero validar os requisitos do sistema", IntentRequirements},
		{"requisito keyword", "O requisito RF-01 foi atendido?", IntentRequirements},
		{"general question", "Olá, como você pode me ajudar?", IntentGeneral},
		{"empty message", "", IntentGeneral},
		{"case insensitive", "CONTAGEM DE PONTOS DE FUNÇÃO", IntentFunctionPoints},
		{"function points wins over requirements", "validar os pontos de função", IntentFunctionPoints},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyIntent(tt.message))
		})
	}
}

func TestFallbackReply_MatchesIntent(t *testing.T) {
	apf := FallbackReply("contagem de pontos de função")
	req := FallbackReply("validar requisitos")
	general := FallbackReply("bom dia")

	assert.Contains(t, apf, "pontos de função")
	assert.Contains(t, req, "requisito")
	assert.Contains(t, general, "fiscalização")
	assert.NotEqual(t, apf, req)
}

func TestStepsFor_ReturnsCopy(t *testing.T) {
	steps := StepsFor("contagem apf")
	require.NotEmpty(t, steps)

	steps[0].Label = "alterado"

	again := StepsFor("contagem apf")
	assert.NotEqual(t, "alterado", again[0].Label)
}

func TestStepsFor_AllDone(t *testing.T) {
	for _, message := range []string{"apf", "requisito", "olá"} {
		for _, step := range StepsFor(message) {
			assert.Equal(t, models.StepStatusDone, step.Status)
			assert.NotEmpty(t, step.Label)
		}
	}
}

func TestScoringSteps_FixedTrace(t *testing.T) {
	steps := ScoringSteps()
	require.Len(t, steps, 5)
	assert.Equal(t, "Compilando contexto", steps[0].Label)
	assert.Equal(t, "Gerando relatório", steps[4].Label)
	for _, step := range steps {
		assert.Equal(t, models.StepStatusDone, step.Status)
	}
}

func TestFallbackScoreReport_Invariants(t *testing.T) {
	report := FallbackScoreReport()

	assert.Equal(t, 78, report.Score)
	assert.Equal(t, 450, report.TotalContractedPoints)
	assert.Equal(t, 351, report.TotalDeliveredPoints)
	assert.Equal(t, models.RiskMedium, report.RiskLevel)
	assert.NotEmpty(t, report.Summary)
	assert.NotEmpty(t, report.Discrepancies)
	assert.NotEmpty(t, report.Recommendations)
	assert.NotEmpty(t, report.DetailedAnalysis)
}

func TestRepoConnectedReply_IncludesURL(t *testing.T) {
	narrative, steps := RepoConnectedReply("https://github.com/orgao/sistema")

	assert.Contains(t, narrative, "https://github.com/orgao/sistema")
	require.Len(t, steps, 3)
	assert.Equal(t, "https://github.com/orgao/sistema", steps[0].Detail)
}
