package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Chat session status values. active -> analyzing -> completed|failed;
// sendMessage never changes status, only generateScore does.
const (
	SessionStatusActive    = "active"
	SessionStatusAnalyzing = "analyzing"
	SessionStatusCompleted = "completed"
	SessionStatusFailed    = "failed"
)

// Session entry modes.
const (
	SessionTypeChat   = "chat"
	SessionTypeRepo   = "repo"
	SessionTypeUpload = "upload"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Processing step display states.
const (
	StepStatusDone    = "done"
	StepStatusLoading = "loading"
	StepStatusPending = "pending"
)

// ChatSession is a conversational fiscalization session, the alternative
// entry point to contract analysis. Score and ScoreReport are set together
// when the session completes, never independently.
type ChatSession struct {
	ID          string       `gorm:"type:uuid;primaryKey" json:"id"`
	SessionType string       `gorm:"size:20;not null;check:session_type IN ('chat', 'repo', 'upload')" json:"session_type"`
	Title       string       `gorm:"size:255" json:"title,omitempty"`
	RepoURL     string       `gorm:"size:500" json:"repo_url,omitempty"`
	ContractID  *string      `gorm:"type:uuid;index" json:"contract_id,omitempty"`
	Status      string       `gorm:"size:20;not null;default:'active';index;check:status IN ('active', 'analyzing', 'completed', 'failed')" json:"status"`
	Score       *int         `json:"score,omitempty"`
	ScoreReport *ScoreReport `gorm:"type:json" json:"score_report,omitempty"`
	CreatedAt   time.Time    `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`

	// Relationships
	Messages []ChatMessage `gorm:"foreignKey:SessionID" json:"messages,omitempty"`
}

func (ChatSession) TableName() string {
	return "chat_sessions"
}

func (s *ChatSession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}

// ChatMessage is one turn in a session's transcript. Messages are append-only
// and totally ordered by creation time ascending.
type ChatMessage struct {
	ID        string          `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID string          `gorm:"type:uuid;not null;index" json:"session_id"`
	Role      string          `gorm:"size:20;not null;check:role IN ('user', 'assistant', 'system')" json:"role"`
	Content   string          `gorm:"type:text;not null" json:"content"`
	Steps     ProcessingSteps `gorm:"type:json" json:"steps,omitempty"`
	CreatedAt time.Time       `gorm:"index" json:"created_at"`

	// Relationships
	Session *ChatSession `gorm:"foreignKey:SessionID" json:"session,omitempty"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}

func (m *ChatMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}

// ProcessingStep is a decorative record describing one stage of a simulated
// "thinking" trace attached to an assistant message. It does not measure
// real computation.
type ProcessingStep struct {
	Label   string `json:"label"`
	Detail  string `json:"detail,omitempty"`
	Status  string `json:"status"`
	Elapsed string `json:"elapsed,omitempty"`
}
