package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/leocezardev/pifc/models"
	"gorm.io/gorm"
)

// GormStore is the relational implementation of Store.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// AutoMigrate runs database migrations
func (r *GormStore) AutoMigrate() error {
	return r.db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Contract{},
		&models.ContractFile{},
		&models.Analysis{},
		&models.ChatSession{},
		&models.ChatMessage{},
	)
}

// Contract operations

func (r *GormStore) CreateContract(ctx context.Context, contract *models.Contract) error {
	if err := r.db.WithContext(ctx).Create(contract).Error; err != nil {
		slog.Error("Failed to create contract", "error", err)
		return err
	}
	slog.Info("Contract created", "contract_id", contract.ID, "title", contract.Title)
	return nil
}

func (r *GormStore) GetContract(ctx context.Context, id string) (*models.Contract, error) {
	var contract models.Contract
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&contract).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get contract", "error", err, "contract_id", id)
		return nil, err
	}
	return &contract, nil
}

func (r *GormStore) GetContractWithChildren(ctx context.Context, id string) (*models.Contract, error) {
	var contract models.Contract
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Preload("Files").
		Preload("Analyses", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		First(&contract).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get contract with children", "error", err, "contract_id", id)
		return nil, err
	}
	return &contract, nil
}

func (r *GormStore) GetContracts(ctx context.Context) ([]models.Contract, error) {
	var contracts []models.Contract
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&contracts).Error; err != nil {
		slog.Error("Failed to get contracts", "error", err)
		return nil, err
	}
	return contracts, nil
}

func (r *GormStore) UpdateContractStatus(ctx context.Context, id, status string) error {
	res := r.db.WithContext(ctx).
		Model(&models.Contract{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		slog.Error("Failed to update contract status", "error", res.Error, "contract_id", id, "status", status)
		return res.Error
	}
	slog.Info("Contract status updated", "contract_id", id, "status", status)
	return nil
}

// Contract file operations

func (r *GormStore) CreateContractFile(ctx context.Context, file *models.ContractFile) error {
	if err := r.db.WithContext(ctx).Create(file).Error; err != nil {
		slog.Error("Failed to create contract file", "error", err, "contract_id", file.ContractID)
		return err
	}
	slog.Info("Contract file created", "file_id", file.ID, "contract_id", file.ContractID, "file_type", file.FileType)
	return nil
}

func (r *GormStore) GetContractFiles(ctx context.Context, contractID string) ([]models.ContractFile, error) {
	var files []models.ContractFile
	err := r.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Order("created_at ASC").
		Find(&files).Error
	if err != nil {
		slog.Error("Failed to get contract files", "error", err, "contract_id", contractID)
		return nil, err
	}
	return files, nil
}

// Analysis operations

func (r *GormStore) CreateAnalysisCompleting(ctx context.Context, analysis *models.Analysis) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(analysis).Error; err != nil {
			return err
		}
		return tx.Model(&models.Contract{}).
			Where("id = ?", analysis.ContractID).
			Update("status", models.ContractStatusCompleted).Error
	})
	if err != nil {
		slog.Error("Failed to persist analysis", "error", err, "contract_id", analysis.ContractID)
		return err
	}
	slog.Info("Analysis persisted", "analysis_id", analysis.ID, "contract_id", analysis.ContractID)
	return nil
}

func (r *GormStore) GetAnalyses(ctx context.Context, contractID string) ([]models.Analysis, error) {
	var analyses []models.Analysis
	err := r.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Order("created_at DESC").
		Find(&analyses).Error
	if err != nil {
		slog.Error("Failed to get analyses", "error", err, "contract_id", contractID)
		return nil, err
	}
	return analyses, nil
}

func (r *GormStore) GetAnalysis(ctx context.Context, id string) (*models.Analysis, error) {
	var analysis models.Analysis
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&analysis).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get analysis", "error", err, "analysis_id", id)
		return nil, err
	}
	return &analysis, nil
}

// Chat session operations

func (r *GormStore) CreateSession(ctx context.Context, session *models.ChatSession) error {
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		slog.Error("Failed to create chat session", "error", err)
		return err
	}
	slog.Info("Chat session created", "session_id", session.ID, "session_type", session.SessionType)
	return nil
}

func (r *GormStore) GetSession(ctx context.Context, id string) (*models.ChatSession, error) {
	var session models.ChatSession
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&session).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get chat session", "error", err, "session_id", id)
		return nil, err
	}
	return &session, nil
}

func (r *GormStore) GetSessionWithMessages(ctx context.Context, id string) (*models.ChatSession, error) {
	var session models.ChatSession
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&session).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get chat session with messages", "error", err, "session_id", id)
		return nil, err
	}
	return &session, nil
}

func (r *GormStore) GetSessions(ctx context.Context) ([]models.ChatSession, error) {
	var sessions []models.ChatSession
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&sessions).Error; err != nil {
		slog.Error("Failed to get chat sessions", "error", err)
		return nil, err
	}
	return sessions, nil
}

func (r *GormStore) UpdateSessionStatus(ctx context.Context, id, status string) error {
	res := r.db.WithContext(ctx).
		Model(&models.ChatSession{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		slog.Error("Failed to update session status", "error", res.Error, "session_id", id, "status", status)
		return res.Error
	}
	slog.Info("Session status updated", "session_id", id, "status", status)
	return nil
}

func (r *GormStore) SetSessionScore(ctx context.Context, id string, score int, report *models.ScoreReport) error {
	res := r.db.WithContext(ctx).
		Model(&models.ChatSession{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"score":        score,
			"score_report": report,
			"status":       models.SessionStatusCompleted,
			"updated_at":   time.Now(),
		})
	if res.Error != nil {
		slog.Error("Failed to set session score", "error", res.Error, "session_id", id)
		return res.Error
	}
	slog.Info("Session score set", "session_id", id, "score", score)
	return nil
}

// Chat message operations

func (r *GormStore) CreateMessage(ctx context.Context, message *models.ChatMessage) error {
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		slog.Error("Failed to create chat message", "error", err, "session_id", message.SessionID)
		return err
	}
	slog.Info("Chat message created", "message_id", message.ID, "session_id", message.SessionID, "role", message.Role)
	return nil
}

func (r *GormStore) GetMessages(ctx context.Context, sessionID string) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&messages).Error
	if err != nil {
		slog.Error("Failed to get chat messages", "error", err, "session_id", sessionID)
		return nil, err
	}
	return messages, nil
}

// User operations

func (r *GormStore) CreateUser(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		slog.Error("Failed to create user", "error", err)
		return err
	}
	slog.Info("User created", "user_id", user.ID, "email", user.Email)
	return nil
}

func (r *GormStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get user by email", "error", err, "email", email)
		return nil, err
	}
	return &user, nil
}

func (r *GormStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get user by ID", "error", err, "user_id", id)
		return nil, err
	}
	return &user, nil
}

// Token operations

func (r *GormStore) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if err := r.db.WithContext(ctx).Create(token).Error; err != nil {
		slog.Error("Failed to create refresh token", "error", err)
		return err
	}
	return nil
}

func (r *GormStore) GetRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	var refreshToken models.RefreshToken
	if err := r.db.WithContext(ctx).Where("token = ? AND expires_at > ?", token, time.Now()).First(&refreshToken).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get refresh token", "error", err)
		return nil, err
	}
	return &refreshToken, nil
}

func (r *GormStore) DeleteRefreshToken(ctx context.Context, token string) error {
	if err := r.db.WithContext(ctx).Where("token = ?", token).Delete(&models.RefreshToken{}).Error; err != nil {
		slog.Error("Failed to delete refresh token", "error", err)
		return err
	}
	return nil
}

func (r *GormStore) DeleteAllUserTokens(ctx context.Context, userID string) error {
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.RefreshToken{}).Error; err != nil {
		slog.Error("Failed to delete user refresh tokens", "error", err, "user_id", userID)
		return err
	}
	return nil
}
