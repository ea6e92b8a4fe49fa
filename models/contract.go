package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Contract status values. Transitions only move forward:
// draft -> analyzing -> completed|failed, with analyzing re-enterable
// from failed (and from completed, for a fresh analysis run).
const (
	ContractStatusDraft     = "draft"
	ContractStatusAnalyzing = "analyzing"
	ContractStatusCompleted = "completed"
	ContractStatusFailed    = "failed"
)

// Contract file types accepted by the upload endpoint.
const (
	FileTypeContract     = "contract"
	FileTypeRequirements = "requirements"
	FileTypeCode         = "code"
)

// Contract represents an audited procurement agreement.
type Contract struct {
	ID           string    `gorm:"type:uuid;primaryKey" json:"id"`
	Title        string    `gorm:"size:255;not null" json:"title"`
	SupplierName string    `gorm:"size:255;not null" json:"supplier_name"`
	ContractDate time.Time `gorm:"not null" json:"contract_date"`
	// Monetary value as a fixed-point decimal string, e.g. "150000.00".
	Value       string    `gorm:"type:decimal(12,2);not null" json:"value"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	Status      string    `gorm:"size:20;not null;default:'draft';index;check:status IN ('draft', 'analyzing', 'completed', 'failed')" json:"status"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relationships
	Files    []ContractFile `gorm:"foreignKey:ContractID" json:"files,omitempty"`
	Analyses []Analysis     `gorm:"foreignKey:ContractID" json:"analyses,omitempty"`
}

func (Contract) TableName() string {
	return "contracts"
}

// BeforeCreate hook to set the ID if not provided (sqlite has no uuid default)
func (c *Contract) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// ContractFile is an uploaded artifact attached to a contract. Files are
// immutable once created; the core never updates or deletes them.
type ContractFile struct {
	ID         string `gorm:"type:uuid;primaryKey" json:"id"`
	ContractID string `gorm:"type:uuid;not null;index" json:"contract_id"`
	Filename   string `gorm:"size:500;not null" json:"filename"`
	FileType   string `gorm:"size:20;not null;check:file_type IN ('contract', 'requirements', 'code')" json:"file_type"`
	FileSize   int64  `gorm:"not null" json:"file_size"`
	// Extracted text content, bounded to a preview of the document.
	Content   string    `gorm:"type:text" json:"content,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	// Relationships
	Contract *Contract `gorm:"foreignKey:ContractID" json:"contract,omitempty"`
}

func (ContractFile) TableName() string {
	return "contract_files"
}

func (f *ContractFile) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	return nil
}

// Analysis is the persisted result of one contract analysis run. Rows are
// append-only history; readers consume the most recent one.
type Analysis struct {
	ID              string         `gorm:"type:uuid;primaryKey" json:"id"`
	ContractID      string         `gorm:"type:uuid;not null;index" json:"contract_id"`
	TotalPoints     int            `gorm:"not null" json:"total_points"`
	DeliveredPoints int            `gorm:"not null" json:"delivered_points"`
	Summary         string         `gorm:"type:text;not null" json:"summary"`
	Report          AnalysisReport `gorm:"type:json" json:"report"`
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`

	// Relationships
	Contract *Contract `gorm:"foreignKey:ContractID" json:"contract,omitempty"`
}

func (Analysis) TableName() string {
	return "analyses"
}

func (a *Analysis) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}
