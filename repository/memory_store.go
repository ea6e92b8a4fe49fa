package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/leocezardev/pifc/models"
)

// MemoryStore is the in-memory implementation of Store, used when no
// database URL is configured and throughout the test suite.
type MemoryStore struct {
	mu            sync.RWMutex
	contracts     map[string]*models.Contract
	contractFiles map[string]*models.ContractFile
	analyses      map[string]*models.Analysis
	sessions      map[string]*models.ChatSession
	messages      map[string]*models.ChatMessage
	users         map[string]*models.User
	refreshTokens map[string]*models.RefreshToken
	seq           int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		contracts:     make(map[string]*models.Contract),
		contractFiles: make(map[string]*models.ContractFile),
		analyses:      make(map[string]*models.Analysis),
		sessions:      make(map[string]*models.ChatSession),
		messages:      make(map[string]*models.ChatMessage),
		users:         make(map[string]*models.User),
		refreshTokens: make(map[string]*models.RefreshToken),
	}
}

// nextTime returns a strictly increasing timestamp so that creation order
// and creation-time order always agree, even within one clock tick.
func (s *MemoryStore) nextTime() time.Time {
	s.seq++
	return time.Now().Add(time.Duration(s.seq) * time.Microsecond)
}

// Contract operations

func (s *MemoryStore) CreateContract(ctx context.Context, contract *models.Contract) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if contract.ID == "" {
		contract.ID = uuid.New().String()
	}
	if contract.Status == "" {
		contract.Status = models.ContractStatusDraft
	}
	contract.CreatedAt = s.nextTime()
	contract.UpdatedAt = contract.CreatedAt

	stored := *contract
	s.contracts[contract.ID] = &stored
	return nil
}

func (s *MemoryStore) GetContract(ctx context.Context, id string) (*models.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	contract, ok := s.contracts[id]
	if !ok {
		return nil, nil
	}
	c := *contract
	return &c, nil
}

func (s *MemoryStore) GetContractWithChildren(ctx context.Context, id string) (*models.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	contract, ok := s.contracts[id]
	if !ok {
		return nil, nil
	}
	c := *contract
	c.Files = s.filesOf(id)
	c.Analyses = s.analysesOf(id)
	return &c, nil
}

func (s *MemoryStore) GetContracts(ctx context.Context) ([]models.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	contracts := make([]models.Contract, 0, len(s.contracts))
	for _, c := range s.contracts {
		contracts = append(contracts, *c)
	}
	sort.SliceStable(contracts, func(i, j int) bool {
		return contracts[i].CreatedAt.After(contracts[j].CreatedAt)
	})
	return contracts, nil
}

func (s *MemoryStore) UpdateContractStatus(ctx context.Context, id, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if contract, ok := s.contracts[id]; ok {
		contract.Status = status
		contract.UpdatedAt = time.Now()
	}
	return nil
}

// Contract file operations

func (s *MemoryStore) CreateContractFile(ctx context.Context, file *models.ContractFile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if file.ID == "" {
		file.ID = uuid.New().String()
	}
	file.CreatedAt = s.nextTime()

	stored := *file
	s.contractFiles[file.ID] = &stored
	return nil
}

func (s *MemoryStore) GetContractFiles(ctx context.Context, contractID string) ([]models.ContractFile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filesOf(contractID), nil
}

func (s *MemoryStore) filesOf(contractID string) []models.ContractFile {
	files := make([]models.ContractFile, 0)
	for _, f := range s.contractFiles {
		if f.ContractID == contractID {
			files = append(files, *f)
		}
	}
	sort.SliceStable(files, func(i, j int) bool {
		return files[i].CreatedAt.Before(files[j].CreatedAt)
	})
	return files
}

// Analysis operations

func (s *MemoryStore) CreateAnalysisCompleting(ctx context.Context, analysis *models.Analysis) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if analysis.ID == "" {
		analysis.ID = uuid.New().String()
	}
	analysis.CreatedAt = s.nextTime()

	stored := *analysis
	s.analyses[analysis.ID] = &stored
	if contract, ok := s.contracts[analysis.ContractID]; ok {
		contract.Status = models.ContractStatusCompleted
		contract.UpdatedAt = time.Now()
	}
	return nil
}

func (s *MemoryStore) GetAnalyses(ctx context.Context, contractID string) ([]models.Analysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.analysesOf(contractID), nil
}

func (s *MemoryStore) analysesOf(contractID string) []models.Analysis {
	analyses := make([]models.Analysis, 0)
	for _, a := range s.analyses {
		if a.ContractID == contractID {
			analyses = append(analyses, *a)
		}
	}
	sort.SliceStable(analyses, func(i, j int) bool {
		return analyses[i].CreatedAt.After(analyses[j].CreatedAt)
	})
	return analyses
}

func (s *MemoryStore) GetAnalysis(ctx context.Context, id string) (*models.Analysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	analysis, ok := s.analyses[id]
	if !ok {
		return nil, nil
	}
	a := *analysis
	return &a, nil
}

// Chat session operations

func (s *MemoryStore) CreateSession(ctx context.Context, session *models.ChatSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	if session.Status == "" {
		session.Status = models.SessionStatusActive
	}
	session.CreatedAt = s.nextTime()
	session.UpdatedAt = session.CreatedAt

	stored := *session
	s.sessions[session.ID] = &stored
	return nil
}

func (s *MemoryStore) GetSession(ctx context.Context, id string) (*models.ChatSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, nil
	}
	sess := *session
	return &sess, nil
}

func (s *MemoryStore) GetSessionWithMessages(ctx context.Context, id string) (*models.ChatSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, nil
	}
	sess := *session
	sess.Messages = s.messagesOf(id)
	return &sess, nil
}

func (s *MemoryStore) GetSessions(ctx context.Context) ([]models.ChatSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]models.ChatSession, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, *sess)
	}
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})
	return sessions, nil
}

func (s *MemoryStore) UpdateSessionStatus(ctx context.Context, id, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session, ok := s.sessions[id]; ok {
		session.Status = status
		session.UpdatedAt = time.Now()
	}
	return nil
}

func (s *MemoryStore) SetSessionScore(ctx context.Context, id string, score int, report *models.ScoreReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session, ok := s.sessions[id]; ok {
		session.Score = &score
		session.ScoreReport = report
		session.Status = models.SessionStatusCompleted
		session.UpdatedAt = time.Now()
	}
	return nil
}

// Chat message operations

func (s *MemoryStore) CreateMessage(ctx context.Context, message *models.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	message.CreatedAt = s.nextTime()

	stored := *message
	s.messages[message.ID] = &stored
	return nil
}

func (s *MemoryStore) GetMessages(ctx context.Context, sessionID string) ([]models.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.messagesOf(sessionID), nil
}

func (s *MemoryStore) messagesOf(sessionID string) []models.ChatMessage {
	messages := make([]models.ChatMessage, 0)
	for _, m := range s.messages {
		if m.SessionID == sessionID {
			messages = append(messages, *m)
		}
	}
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})
	return messages
}

// User operations

func (s *MemoryStore) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	user.CreatedAt = s.nextTime()
	user.UpdatedAt = user.CreatedAt

	stored := *user
	s.users[user.ID] = &stored
	return nil
}

func (s *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			user := *u
			return &user, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	u := *user
	return &u, nil
}

// Token operations

func (s *MemoryStore) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token.ID == "" {
		token.ID = uuid.New().String()
	}
	token.CreatedAt = s.nextTime()

	stored := *token
	s.refreshTokens[token.Token] = &stored
	return nil
}

func (s *MemoryStore) GetRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	refreshToken, ok := s.refreshTokens[token]
	if !ok || refreshToken.ExpiresAt.Before(time.Now()) {
		return nil, nil
	}
	t := *refreshToken
	return &t, nil
}

func (s *MemoryStore) DeleteRefreshToken(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.refreshTokens, token)
	return nil
}

func (s *MemoryStore) DeleteAllUserTokens(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, t := range s.refreshTokens {
		if t.UserID == userID {
			delete(s.refreshTokens, key)
		}
	}
	return nil
}
