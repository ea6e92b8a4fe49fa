package testutil

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/leocezardev/pifc/models"
)

// TestContract creates a draft contract row.
func TestContract(t *testing.T, db *gorm.DB, opts ...func(*models.Contract)) *models.Contract {
	t.Helper()

	contract := &models.Contract{
		Title:        fmt.Sprintf("Contrato de Teste %d", time.Now().UnixNano()%10000),
		SupplierName: "Fornecedora Teste Ltda",
		ContractDate: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		Value:        "100000.00",
		Status:       models.ContractStatusDraft,
	}

	for _, opt := range opts {
		opt(contract)
	}

	if err := db.Create(contract).Error; err != nil {
		t.Fatalf("Failed to create test contract: %v", err)
	}

	return contract
}

// WithStatus sets the contract status.
func WithStatus(status string) func(*models.Contract) {
	return func(c *models.Contract) {
		c.Status = status
	}
}

// TestContractFile attaches a file to a contract.
func TestContractFile(t *testing.T, db *gorm.DB, contractID, fileType string) *models.ContractFile {
	t.Helper()

	file := &models.ContractFile{
		ContractID: contractID,
		Filename:   fmt.Sprintf("documento_%s.pdf", fileType),
		FileType:   fileType,
		FileSize:   2048,
		Content:    "Conteúdo extraído do documento para análise.",
	}

	if err := db.Create(file).Error; err != nil {
		t.Fatalf("Failed to create test contract file: %v", err)
	}

	return file
}

// TestSession creates an active chat session.
func TestSession(t *testing.T, db *gorm.DB, opts ...func(*models.ChatSession)) *models.ChatSession {
	t.Helper()

	session := &models.ChatSession{
		SessionType: models.SessionTypeChat,
		Title:       fmt.Sprintf("Sessão de Teste %d", time.Now().UnixNano()%10000),
		Status:      models.SessionStatusActive,
	}

	for _, opt := range opts {
		opt(session)
	}

	if err := db.Create(session).Error; err != nil {
		t.Fatalf("Failed to create test session: %v", err)
	}

	return session
}

// WithSessionType sets the session entry mode.
func WithSessionType(sessionType string) func(*models.ChatSession) {
	return func(s *models.ChatSession) {
		s.SessionType = sessionType
	}
}

// WithSessionStatus sets the session status.
func WithSessionStatus(status string) func(*models.ChatSession) {
	return func(s *models.ChatSession) {
		s.Status = status
	}
}

// TestMessage appends a message to a session's transcript.
func TestMessage(t *testing.T, db *gorm.DB, sessionID, role, content string) *models.ChatMessage {
	t.Helper()

	message := &models.ChatMessage{
		SessionID: sessionID,
		Role:      role,
		Content:   content,
	}

	if err := db.Create(message).Error; err != nil {
		t.Fatalf("Failed to create test message: %v", err)
	}

	return message
}

// TestUser creates an auditor account.
func TestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	user := &models.User{
		Email:    fmt.Sprintf("auditor_%d@example.com", time.Now().UnixNano()),
		Password: "$2a$10$abcdefghijklmnopqrstuvwxyz123456",
		FullName: "Auditor de Teste",
		Role:     "auditor",
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}
