package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leocezardev/pifc/models"
	"github.com/leocezardev/pifc/repository"
)

func newContractRouter(reasoning Reasoning) (chi.Router, *repository.MemoryStore) {
	store := repository.NewMemoryStore()
	analysis := NewAnalysisService(store, reasoning, NewKeyedMutex())
	endpoints := NewContractEndpoints(store, analysis, 5*1024*1024)

	r := chi.NewRouter()
	endpoints.RegisterRoutes(r)
	return r, store
}

func TestCreateContractHandler(t *testing.T) {
	r, _ := newContractRouter(&stubReasoning{})

	body := `{"title":"Sistema de Ouvidoria","supplierName":"Fornecedora Delta","contractDate":"2024-04-01","value":"99000.00","description":"Portal de ouvidoria"}`
	req := httptest.NewRequest(http.MethodPost, "/contracts", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var contract models.Contract
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&contract))
	assert.NotEmpty(t, contract.ID)
	assert.Equal(t, "Sistema de Ouvidoria", contract.Title)
	assert.Equal(t, models.ContractStatusDraft, contract.Status)
	assert.False(t, contract.CreatedAt.IsZero())
}

func TestCreateContractHandler_Validation(t *testing.T) {
	r, _ := newContractRouter(&stubReasoning{})

	tests := []struct {
		name string
		body string
	}{
		{"missing title", `{"supplierName":"F","contractDate":"2024-04-01","value":"1.00"}`},
		{"missing supplier", `{"title":"T","contractDate":"2024-04-01","value":"1.00"}`},
		{"missing date", `{"title":"T","supplierName":"F","value":"1.00"}`},
		{"missing value", `{"title":"T","supplierName":"F","contractDate":"2024-04-01"}`},
		{"bad date", `{"title":"T","supplierName":"F","contractDate":"not-a-date","value":"1.00"}`},
		{"malformed json", `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/contracts", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestGetContractHandler_NotFound(t *testing.T) {
	r, _ := newContractRouter(&stubReasoning{})

	req := httptest.NewRequest(http.MethodGet, "/contracts/missing-id", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListContractsHandler(t *testing.T) {
	r, store := newContractRouter(&stubReasoning{})

	for i := 0; i < 3; i++ {
		contract := &models.Contract{
			Title:        fmt.Sprintf("Contrato %d", i),
			SupplierName: "Fornecedora",
			Value:        "10.00",
		}
		require.NoError(t, store.CreateContract(context.Background(), contract))
	}

	req := httptest.NewRequest(http.MethodGet, "/contracts", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var contracts []models.Contract
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&contracts))
	assert.Len(t, contracts, 3)
	// Newest first.
	assert.Equal(t, "Contrato 2", contracts[0].Title)
}

func TestUploadFileHandler(t *testing.T) {
	r, store := newContractRouter(&stubReasoning{})

	contract := &models.Contract{Title: "C", SupplierName: "F", Value: "1.00"}
	require.NoError(t, store.CreateContract(context.Background(), contract))

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("fileType", models.FileTypeRequirements))
	part, err := w.CreateFormFile("file", "requisitos.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("RF-01: o sistema deve registrar protocolos"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/contracts/"+contract.ID+"/files", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var file models.ContractFile
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&file))
	assert.Equal(t, "requisitos.txt", file.Filename)
	assert.Equal(t, models.FileTypeRequirements, file.FileType)
	assert.Contains(t, file.Content, "RF-01")
}

func TestUploadFileHandler_InvalidFileType(t *testing.T) {
	r, store := newContractRouter(&stubReasoning{})

	contract := &models.Contract{Title: "C", SupplierName: "F", Value: "1.00"}
	require.NoError(t, store.CreateContract(context.Background(), contract))

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("fileType", "spreadsheet"))
	part, err := w.CreateFormFile("file", "dados.xlsx")
	require.NoError(t, err)
	_, err = part.Write([]byte("dados"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/contracts/"+contract.ID+"/files", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadFileHandler_ContractNotFound(t *testing.T) {
	r, _ := newContractRouter(&stubReasoning{})

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("fileType", models.FileTypeContract))
	part, err := w.CreateFormFile("file", "contrato.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("texto"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/contracts/missing/files", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAnalyzeContractHandler(t *testing.T) {
	reasoning := &stubReasoning{
		reply: `{"total_contracted_points": 450, "total_delivered_points": 300, "summary": "Parcial"}`,
	}
	r, store := newContractRouter(reasoning)

	contract := &models.Contract{Title: "C", SupplierName: "F", Value: "1.00"}
	ctx := context.Background()
	require.NoError(t, store.CreateContract(ctx, contract))

	req := httptest.NewRequest(http.MethodPost, "/contracts/"+contract.ID+"/analyze", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.NotEmpty(t, resp["analysisId"])
	assert.NotEmpty(t, resp["message"])

	found, err := store.GetContract(ctx, contract.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ContractStatusCompleted, found.Status)
}

func TestAnalyzeContractHandler_NotFound(t *testing.T) {
	r, _ := newContractRouter(&stubReasoning{})

	req := httptest.NewRequest(http.MethodPost, "/contracts/missing/analyze", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAnalyzeContractHandler_ReasoningFailure(t *testing.T) {
	r, store := newContractRouter(&stubReasoning{err: errors.New("down")})

	contract := &models.Contract{Title: "C", SupplierName: "F", Value: "1.00"}
	ctx := context.Background()
	require.NoError(t, store.CreateContract(ctx, contract))

	req := httptest.NewRequest(http.MethodPost, "/contracts/"+contract.ID+"/analyze", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	found, err := store.GetContract(ctx, contract.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ContractStatusFailed, found.Status)
}

func TestGetAnalysisHandler_NotFound(t *testing.T) {
	r, _ := newContractRouter(&stubReasoning{})

	req := httptest.NewRequest(http.MethodGet, "/analyses/missing", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
