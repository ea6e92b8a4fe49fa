package services

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/leocezardev/pifc/models"
	"github.com/leocezardev/pifc/repository"
)

// uploadPreviewLimit bounds how much of an uploaded file is kept as the
// stored content preview.
const uploadPreviewLimit = 5000

type ContractEndpoints struct {
	store       repository.Store
	analysis    *AnalysisService
	maxFileSize int64
}

type CreateContractRequest struct {
	Title        string `json:"title"`
	SupplierName string `json:"supplierName"`
	ContractDate string `json:"contractDate"`
	Value        string `json:"value"`
	Description  string `json:"description"`
}

func NewContractEndpoints(store repository.Store, analysis *AnalysisService, maxFileSize int64) *ContractEndpoints {
	return &ContractEndpoints{
		store:       store,
		analysis:    analysis,
		maxFileSize: maxFileSize,
	}
}

func (e *ContractEndpoints) RegisterRoutes(r chi.Router) {
	r.Route("/contracts", func(r chi.Router) {
		r.Get("/", e.ListContractsHandler)
		r.Post("/", e.CreateContractHandler)
		r.Get("/{contractID}", e.GetContractHandler)
		r.Post("/{contractID}/files", e.UploadFileHandler)
		r.Post("/{contractID}/analyze", e.AnalyzeContractHandler)
	})
	r.Get("/analyses/{analysisID}", e.GetAnalysisHandler)
}

func (e *ContractEndpoints) ListContractsHandler(w http.ResponseWriter, r *http.Request) {
	contracts, err := e.store.GetContracts(r.Context())
	if err != nil {
		slog.Error("Failed to list contracts", "error", err)
		http.Error(w, "Failed to list contracts", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(contracts)
}

func (e *ContractEndpoints) CreateContractHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateContractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if msg := validateContractRequest(req); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	contractDate, err := parseContractDate(req.ContractDate)
	if err != nil {
		http.Error(w, "contractDate must be a valid date (YYYY-MM-DD)", http.StatusBadRequest)
		return
	}

	contract := &models.Contract{
		Title:        strings.TrimSpace(req.Title),
		SupplierName: strings.TrimSpace(req.SupplierName),
		ContractDate: contractDate,
		Value:        strings.TrimSpace(req.Value),
		Description:  req.Description,
		Status:       models.ContractStatusDraft,
	}

	if err := e.store.CreateContract(r.Context(), contract); err != nil {
		slog.Error("Failed to create contract", "error", err)
		http.Error(w, "Failed to create contract", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(contract)

	slog.Info("Contract created", "contract_id", contract.ID, "title", contract.Title)
}

func (e *ContractEndpoints) GetContractHandler(w http.ResponseWriter, r *http.Request) {
	contractID := chi.URLParam(r, "contractID")

	contract, err := e.store.GetContractWithChildren(r.Context(), contractID)
	if err != nil {
		slog.Error("Failed to get contract", "error", err, "contract_id", contractID)
		http.Error(w, "Failed to get contract", http.StatusInternalServerError)
		return
	}
	if contract == nil {
		http.Error(w, "Contract not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(contract)
}

func (e *ContractEndpoints) UploadFileHandler(w http.ResponseWriter, r *http.Request) {
	contractID := chi.URLParam(r, "contractID")

	contract, err := e.store.GetContract(r.Context(), contractID)
	if err != nil {
		slog.Error("Failed to get contract", "error", err, "contract_id", contractID)
		http.Error(w, "Failed to get contract", http.StatusInternalServerError)
		return
	}
	if contract == nil {
		http.Error(w, "Contract not found", http.StatusNotFound)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, e.maxFileSize)
	if err := r.ParseMultipartForm(e.maxFileSize); err != nil {
		http.Error(w, "File too large or malformed upload", http.StatusBadRequest)
		return
	}

	fileType := r.FormValue("fileType")
	if !validFileType(fileType) {
		http.Error(w, "fileType must be one of: contract, requirements, code", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Missing file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, uploadPreviewLimit))
	if err != nil {
		slog.Error("Failed to read upload", "error", err, "contract_id", contractID)
		http.Error(w, "Failed to read upload", http.StatusInternalServerError)
		return
	}

	contractFile := &models.ContractFile{
		ContractID: contractID,
		Filename:   header.Filename,
		FileType:   fileType,
		FileSize:   header.Size,
		Content:    string(content),
	}

	if err := e.store.CreateContractFile(r.Context(), contractFile); err != nil {
		slog.Error("Failed to store file", "error", err, "contract_id", contractID)
		http.Error(w, "Failed to store file", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(contractFile)

	slog.Info("Contract file uploaded", "contract_id", contractID, "file_id", contractFile.ID, "file_type", fileType)
}

func (e *ContractEndpoints) AnalyzeContractHandler(w http.ResponseWriter, r *http.Request) {
	contractID := chi.URLParam(r, "contractID")

	analysis, err := e.analysis.StartAnalysis(r.Context(), contractID)
	if err != nil {
		if errors.Is(err, ErrContractNotFound) {
			http.Error(w, "Contract not found", http.StatusNotFound)
			return
		}
		slog.Error("Contract analysis failed", "error", err, "contract_id", contractID)
		http.Error(w, "Analysis failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":    "Análise concluída com sucesso",
		"analysisId": analysis.ID,
	})
}

func (e *ContractEndpoints) GetAnalysisHandler(w http.ResponseWriter, r *http.Request) {
	analysisID := chi.URLParam(r, "analysisID")

	analysis, err := e.analysis.GetAnalysis(r.Context(), analysisID)
	if err != nil {
		if errors.Is(err, ErrAnalysisNotFound) {
			http.Error(w, "Analysis not found", http.StatusNotFound)
			return
		}
		slog.Error("Failed to get analysis", "error", err, "analysis_id", analysisID)
		http.Error(w, "Failed to get analysis", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(analysis)
}

func validateContractRequest(req CreateContractRequest) string {
	switch {
	case strings.TrimSpace(req.Title) == "":
		return "title is required"
	case strings.TrimSpace(req.SupplierName) == "":
		return "supplierName is required"
	case strings.TrimSpace(req.ContractDate) == "":
		return "contractDate is required"
	case strings.TrimSpace(req.Value) == "":
		return "value is required"
	}
	return ""
}

func validFileType(fileType string) bool {
	switch fileType {
	case models.FileTypeContract, models.FileTypeRequirements, models.FileTypeCode:
		return true
	}
	return false
}

func parseContractDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}
