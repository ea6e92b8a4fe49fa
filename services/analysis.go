package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/leocezardev/pifc/models"
	"github.com/leocezardev/pifc/repository"
)

var (
	ErrContractNotFound = errors.New("contract not found")
	ErrAnalysisNotFound = errors.New("analysis not found")
)

const analysisSystemPrompt = `You are an expert IT Contract Auditor for the Brazilian public sector.
Your job is to analyze contract documents and code to perform a Function Point Analysis (APF).

Compare the delivered code functionalities against the contracted requirements.

Return a JSON object with:
- total_contracted_points (number)
- total_delivered_points (number)
- summary (string, executive summary in Portuguese)
- discrepancies (array of strings, listing missing or extra features)
- detailed_analysis (array of objects with 'feature', 'points', 'status')

Be strict but fair. Use the SISP guidelines.`

// filePreviewLimit bounds how much extracted content per file goes into the
// reasoning context.
const filePreviewLimit = 500

// AnalysisService drives a contract from draft through analyzing to
// completed or failed, invoking the reasoning service once per run.
type AnalysisService struct {
	store     repository.Store
	reasoning Reasoning
	locks     *KeyedMutex
}

func NewAnalysisService(store repository.Store, reasoning Reasoning, locks *KeyedMutex) *AnalysisService {
	return &AnalysisService{
		store:     store,
		reasoning: reasoning,
		locks:     locks,
	}
}

// StartAnalysis runs one full analysis for the contract. The status flips to
// analyzing before the external call and to completed or failed exactly once
// after it. Re-invocation is the retry mechanism: legal from failed and from
// completed (a new run appends to the analysis history).
func (s *AnalysisService) StartAnalysis(ctx context.Context, contractID string) (*models.Analysis, error) {
	// One analysis in flight per contract.
	s.locks.Lock(contractID)
	defer s.locks.Unlock(contractID)

	contract, err := s.store.GetContract(ctx, contractID)
	if err != nil {
		return nil, fmt.Errorf("failed to load contract: %w", err)
	}
	if contract == nil {
		return nil, ErrContractNotFound
	}

	// Visible to readers before the external call returns.
	if err := s.store.UpdateContractStatus(ctx, contractID, models.ContractStatusAnalyzing); err != nil {
		return nil, fmt.Errorf("failed to mark contract analyzing: %w", err)
	}

	analysis, err := s.runAnalysis(ctx, contract)
	if err != nil {
		slog.Error("Contract analysis failed", "error", err, "contract_id", contractID)
		if failErr := s.store.UpdateContractStatus(ctx, contractID, models.ContractStatusFailed); failErr != nil {
			slog.Error("Failed to mark contract failed", "error", failErr, "contract_id", contractID)
		}
		return nil, err
	}

	slog.Info("Contract analysis completed",
		"contract_id", contractID,
		"analysis_id", analysis.ID,
		"total_points", analysis.TotalPoints,
		"delivered_points", analysis.DeliveredPoints)
	return analysis, nil
}

func (s *AnalysisService) runAnalysis(ctx context.Context, contract *models.Contract) (*models.Analysis, error) {
	files, err := s.store.GetContractFiles(ctx, contract.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load contract files: %w", err)
	}

	prompt := fmt.Sprintf("Analyze this contract: %s - %s\n\nFiles Context:\n%s",
		contract.Title, contract.Description, buildFileContext(files))

	reply, err := s.reasoning.Complete(ctx, analysisSystemPrompt, []Prompt{{Role: models.RoleUser, Content: prompt}}, true)
	if err != nil {
		return nil, fmt.Errorf("reasoning call failed: %w", err)
	}

	var report models.AnalysisReport
	if err := json.Unmarshal([]byte(reply), &report); err != nil {
		return nil, fmt.Errorf("failed to parse analysis report: %w", err)
	}

	// Lenient defaults when the model omits expected fields.
	if report.TotalContractedPoints == 0 {
		report.TotalContractedPoints = 100
	}
	if report.Summary == "" {
		report.Summary = "Análise concluída."
	}

	analysis := &models.Analysis{
		ContractID:      contract.ID,
		TotalPoints:     report.TotalContractedPoints,
		DeliveredPoints: report.TotalDeliveredPoints,
		Summary:         report.Summary,
		Report:          report,
	}
	if err := s.store.CreateAnalysisCompleting(ctx, analysis); err != nil {
		return nil, fmt.Errorf("failed to persist analysis: %w", err)
	}
	return analysis, nil
}

// GetAnalysis returns one analysis by id.
func (s *AnalysisService) GetAnalysis(ctx context.Context, id string) (*models.Analysis, error) {
	analysis, err := s.store.GetAnalysis(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load analysis: %w", err)
	}
	if analysis == nil {
		return nil, ErrAnalysisNotFound
	}
	return analysis, nil
}

// buildFileContext concatenates, per file, its name, type and a bounded
// content preview into the textual reasoning context.
func buildFileContext(files []models.ContractFile) string {
	parts := make([]string, 0, len(files))
	for _, f := range files {
		preview := f.Content
		if len(preview) > filePreviewLimit {
			preview = preview[:filePreviewLimit]
		}
		parts = append(parts, fmt.Sprintf("File: %s (%s)\nContent Preview: %s...", f.Filename, f.FileType, preview))
	}
	return strings.Join(parts, "\n\n")
}
