package services

import (
	"context"
	"encoding/json"
	"errors"
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

func newSessionRouter(reasoning Reasoning) (chi.Router, *repository.MemoryStore) {
	store := repository.NewMemoryStore()
	chat := NewChatService(store, reasoning, NewKeyedMutex(), nil)
	endpoints := NewSessionEndpoints(store, chat, nil, "http://localhost:5173")

	r := chi.NewRouter()
	endpoints.RegisterRoutes(r)
	return r, store
}

func TestCreateSessionHandler(t *testing.T) {
	r, _ := newSessionRouter(&stubReasoning{})

	body := `{"sessionType":"chat","title":"Fiscalização"}`
	req := httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var session models.ChatSession
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&session))
	assert.NotEmpty(t, session.ID)
	assert.Equal(t, models.SessionStatusActive, session.Status)
}

func TestCreateSessionHandler_InvalidType(t *testing.T) {
	r, _ := newSessionRouter(&stubReasoning{})

	body := `{"sessionType":"video"}`
	req := httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateSessionHandler_RepoWithInitialMessage(t *testing.T) {
	r, _ := newSessionRouter(&stubReasoning{reply: "Analisando o repositório."})

	body := `{"sessionType":"repo","repoUrl":"https://github.com/orgao/sistema","initialMessage":"valide os requisitos"}`
	req := httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var session models.ChatSession
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&session))
	assert.Len(t, session.Messages, 3)
}

func TestGetSessionHandler_NotFound(t *testing.T) {
	r, _ := newSessionRouter(&stubReasoning{})

	req := httptest.NewRequest(http.MethodGet, "/sessions/missing", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListSessionsHandler(t *testing.T) {
	r, store := newSessionRouter(&stubReasoning{})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		session := &models.ChatSession{SessionType: models.SessionTypeChat, Status: models.SessionStatusActive}
		require.NoError(t, store.CreateSession(ctx, session))
	}

	req := httptest.NewRequest(http.MethodGet, "/sessions", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var sessions []models.ChatSession
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&sessions))
	assert.Len(t, sessions, 2)
}

func TestSendMessageHandler(t *testing.T) {
	r, store := newSessionRouter(&stubReasoning{reply: "Resposta."})
	ctx := context.Background()

	session := &models.ChatSession{SessionType: models.SessionTypeChat, Status: models.SessionStatusActive}
	require.NoError(t, store.CreateSession(ctx, session))

	body := `{"content":"Quantos pontos de função?"}`
	req := httptest.NewRequest(http.MethodPost, "/sessions/"+session.ID+"/messages", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		UserMessage      models.ChatMessage `json:"userMessage"`
		AssistantMessage models.ChatMessage `json:"assistantMessage"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, models.RoleUser, resp.UserMessage.Role)
	assert.Equal(t, models.RoleAssistant, resp.AssistantMessage.Role)
	assert.Equal(t, "Resposta.", resp.AssistantMessage.Content)
}

func TestSendMessageHandler_NotFound(t *testing.T) {
	r, _ := newSessionRouter(&stubReasoning{})

	body := `{"content":"olá"}`
	req := httptest.NewRequest(http.MethodPost, "/sessions/missing/messages", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSendMessageHandler_EmptyContent(t *testing.T) {
	r, _ := newSessionRouter(&stubReasoning{})

	req := httptest.NewRequest(http.MethodPost, "/sessions/any/messages", strings.NewReader(`{"content":""}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerateScoreHandler(t *testing.T) {
	// Reasoning down; score generation still succeeds with the fallback.
	r, store := newSessionRouter(&stubReasoning{err: errors.New("down")})
	ctx := context.Background()

	session := &models.ChatSession{SessionType: models.SessionTypeChat, Status: models.SessionStatusActive}
	require.NoError(t, store.CreateSession(ctx, session))

	req := httptest.NewRequest(http.MethodPost, "/sessions/"+session.ID+"/generate-score", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Score   int                 `json:"score"`
		Report  *models.ScoreReport `json:"report"`
		Message *models.ChatMessage `json:"message"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 78, resp.Score)
	require.NotNil(t, resp.Report)
	require.NotNil(t, resp.Message)

	found, err := store.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusCompleted, found.Status)
}

func TestGenerateScoreHandler_NotFound(t *testing.T) {
	r, _ := newSessionRouter(&stubReasoning{})

	req := httptest.NewRequest(http.MethodPost, "/sessions/missing/generate-score", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSessionSocketHandler_NotFound(t *testing.T) {
	r, _ := newSessionRouter(&stubReasoning{})

	req := httptest.NewRequest(http.MethodGet, "/sessions/missing/ws", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
