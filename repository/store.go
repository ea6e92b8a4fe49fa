package repository

import (
	"context"

	"github.com/leocezardev/pifc/models"
)

// Store is the persistence gateway consumed by the workflow services. Reads
// for missing rows return (nil, nil) rather than an error; callers decide
// whether absence is a not-found condition.
//
// Two implementations exist: GormStore (relational) and MemoryStore. The
// implementation is selected once in process startup and passed by reference
// into the services that need it.
type Store interface {
	// Contracts
	CreateContract(ctx context.Context, contract *models.Contract) error
	GetContract(ctx context.Context, id string) (*models.Contract, error)
	GetContractWithChildren(ctx context.Context, id string) (*models.Contract, error)
	GetContracts(ctx context.Context) ([]models.Contract, error)
	UpdateContractStatus(ctx context.Context, id, status string) error

	// Contract files
	CreateContractFile(ctx context.Context, file *models.ContractFile) error
	GetContractFiles(ctx context.Context, contractID string) ([]models.ContractFile, error)

	// Analyses
	// CreateAnalysisCompleting inserts the analysis and marks its contract
	// completed in a single transaction, so a contract is never left
	// completed without its analysis or vice versa.
	CreateAnalysisCompleting(ctx context.Context, analysis *models.Analysis) error
	GetAnalyses(ctx context.Context, contractID string) ([]models.Analysis, error)
	GetAnalysis(ctx context.Context, id string) (*models.Analysis, error)

	// Chat sessions
	CreateSession(ctx context.Context, session *models.ChatSession) error
	GetSession(ctx context.Context, id string) (*models.ChatSession, error)
	GetSessionWithMessages(ctx context.Context, id string) (*models.ChatSession, error)
	GetSessions(ctx context.Context) ([]models.ChatSession, error)
	UpdateSessionStatus(ctx context.Context, id, status string) error
	// SetSessionScore stores score and report and marks the session
	// completed as one update; score and report are never set apart.
	SetSessionScore(ctx context.Context, id string, score int, report *models.ScoreReport) error

	// Chat messages
	CreateMessage(ctx context.Context, message *models.ChatMessage) error
	GetMessages(ctx context.Context, sessionID string) ([]models.ChatMessage, error)

	// Users and tokens
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error
	GetRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error)
	DeleteRefreshToken(ctx context.Context, token string) error
	DeleteAllUserTokens(ctx context.Context, userID string) error
}
