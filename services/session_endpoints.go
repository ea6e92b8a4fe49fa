package services

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/leocezardev/pifc/repository"
	ws "github.com/leocezardev/pifc/websocket"
)

type SessionEndpoints struct {
	store    repository.Store
	chat     *ChatService
	hub      *ws.Hub
	upgrader websocket.Upgrader
}

type CreateSessionRequest struct {
	SessionType    string  `json:"sessionType"`
	Title          string  `json:"title"`
	RepoURL        string  `json:"repoUrl"`
	ContractID     *string `json:"contractId"`
	InitialMessage string  `json:"initialMessage"`
}

type SendMessageRequest struct {
	Content string `json:"content"`
}

func NewSessionEndpoints(store repository.Store, chat *ChatService, hub *ws.Hub, allowedOrigins string) *SessionEndpoints {
	return &SessionEndpoints{
		store: store,
		chat:  chat,
		hub:   hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     MakeOriginChecker(allowedOrigins),
		},
	}
}

func (e *SessionEndpoints) RegisterRoutes(r chi.Router) {
	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", e.ListSessionsHandler)
		r.Post("/", e.CreateSessionHandler)
		r.Get("/{sessionID}", e.GetSessionHandler)
		r.Post("/{sessionID}/messages", e.SendMessageHandler)
		r.Post("/{sessionID}/generate-score", e.GenerateScoreHandler)
		r.Get("/{sessionID}/ws", e.SessionSocketHandler)
	})
}

func (e *SessionEndpoints) ListSessionsHandler(w http.ResponseWriter, r *http.Request) {
	sessions, err := e.store.GetSessions(r.Context())
	if err != nil {
		slog.Error("Failed to list sessions", "error", err)
		http.Error(w, "Failed to list sessions", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sessions)
}

func (e *SessionEndpoints) CreateSessionHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	session, err := e.chat.CreateSession(r.Context(), CreateSessionInput{
		SessionType:    req.SessionType,
		Title:          req.Title,
		RepoURL:        req.RepoURL,
		ContractID:     req.ContractID,
		InitialMessage: req.InitialMessage,
	})
	if err != nil {
		if errors.Is(err, ErrInvalidSessionType) {
			http.Error(w, "sessionType must be one of: chat, repo, upload", http.StatusBadRequest)
			return
		}
		slog.Error("Failed to create session", "error", err)
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(session)

	slog.Info("Session created", "session_id", session.ID, "session_type", session.SessionType)
}

func (e *SessionEndpoints) GetSessionHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	session, err := e.store.GetSessionWithMessages(r.Context(), sessionID)
	if err != nil {
		slog.Error("Failed to get session", "error", err, "session_id", sessionID)
		http.Error(w, "Failed to get session", http.StatusInternalServerError)
		return
	}
	if session == nil {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(session)
}

func (e *SessionEndpoints) SendMessageHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Content == "" {
		http.Error(w, "content is required", http.StatusBadRequest)
		return
	}

	userMessage, assistantMessage, err := e.chat.SendMessage(r.Context(), sessionID, req.Content)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			http.Error(w, "Session not found", http.StatusNotFound)
			return
		}
		slog.Error("Failed to send message", "error", err, "session_id", sessionID)
		http.Error(w, "Failed to send message", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"userMessage":      userMessage,
		"assistantMessage": assistantMessage,
	})
}

func (e *SessionEndpoints) GenerateScoreHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	score, report, message, err := e.chat.GenerateScore(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			http.Error(w, "Session not found", http.StatusNotFound)
			return
		}
		if errors.Is(err, ErrSessionCompleted) {
			http.Error(w, "Session already completed", http.StatusConflict)
			return
		}
		slog.Error("Failed to generate score", "error", err, "session_id", sessionID)
		http.Error(w, "Failed to generate score", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"score":   score,
		"report":  report,
		"message": message,
	})
}

// SessionSocketHandler upgrades the connection and streams session events
// (new messages, score completion) to the client.
func (e *SessionEndpoints) SessionSocketHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	session, err := e.store.GetSession(r.Context(), sessionID)
	if err != nil {
		slog.Error("Failed to get session", "error", err, "session_id", sessionID)
		http.Error(w, "Failed to get session", http.StatusInternalServerError)
		return
	}
	if session == nil {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	conn, err := e.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("WebSocket upgrade failed", "error", err, "session_id", sessionID)
		return
	}

	client := e.hub.RegisterClient(conn, sessionID)
	go client.WritePump()
	go client.ReadPump()

	slog.Info("WebSocket client connected", "session_id", sessionID)
}
