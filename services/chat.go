package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/leocezardev/pifc/models"
	"github.com/leocezardev/pifc/repository"
	ws "github.com/leocezardev/pifc/websocket"
)

var (
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionCompleted   = errors.New("session already completed")
	ErrInvalidSessionType = errors.New("invalid session type")
)

const chatSystemPrompt = `Você é um agente de fiscalização de contratos de TI do setor público brasileiro.
Sua função é auxiliar auditores na análise de conformidade entre o escopo contratado e o escopo entregue.

Você domina:
- Análise de Pontos de Função (APF) conforme IFPUG e o roteiro de métricas do SISP
- Validação de requisitos funcionais contra evidências de entrega
- Identificação de divergências, glosas e riscos contratuais

Responda sempre em português, de forma objetiva e profissional.
Quando faltarem informações, indique quais documentos ou evidências o auditor deve fornecer.`

const scoringSystemPrompt = `Você é um auditor de contratos de TI do setor público brasileiro.
A partir da transcrição de uma sessão de fiscalização, produza o parecer final de conformidade.

Return a JSON object with:
- score (number, 0-100 compliance score)
- total_contracted_points (number)
- total_delivered_points (number)
- summary (string, executive summary in Portuguese)
- discrepancies (array of strings)
- recommendations (array of strings)
- detailed_analysis (array of objects with 'feature', 'points', 'status', 'observation';
  status is one of 'conforme', 'parcial', 'não_entregue')
- risk_level (one of 'baixo', 'medio', 'alto', 'critico')

Be strict but fair. Use the SISP guidelines.`

// CreateSessionInput carries the validated payload for session creation.
type CreateSessionInput struct {
	SessionType    string
	Title          string
	RepoURL        string
	ContractID     *string
	InitialMessage string
}

// ChatService is the chat-session workflow: session creation, message
// exchange and final score generation. The chat experience never visibly
// fails: a reasoning failure always falls back to a deterministic canned
// reply or report.
type ChatService struct {
	store     repository.Store
	reasoning Reasoning
	locks     *KeyedMutex
	hub       *ws.Hub
}

func NewChatService(store repository.Store, reasoning Reasoning, locks *KeyedMutex, hub *ws.Hub) *ChatService {
	return &ChatService{
		store:     store,
		reasoning: reasoning,
		locks:     locks,
		hub:       hub,
	}
}

// CreateSession creates a session in active status and seeds its transcript
// according to the session type. The returned session carries the seeded
// messages so callers need no second fetch.
func (s *ChatService) CreateSession(ctx context.Context, input CreateSessionInput) (*models.ChatSession, error) {
	switch input.SessionType {
	case models.SessionTypeChat, models.SessionTypeRepo, models.SessionTypeUpload:
	default:
		return nil, ErrInvalidSessionType
	}

	session := &models.ChatSession{
		SessionType: input.SessionType,
		Title:       input.Title,
		RepoURL:     input.RepoURL,
		ContractID:  input.ContractID,
		Status:      models.SessionStatusActive,
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	// Synthetic onboarding turns; no reasoning call on these paths.
	switch {
	case input.SessionType == models.SessionTypeRepo && input.RepoURL != "":
		narrative, steps := RepoConnectedReply(input.RepoURL)
		if err := s.appendAssistant(ctx, session.ID, narrative, steps); err != nil {
			return nil, err
		}
	case input.SessionType == models.SessionTypeUpload:
		narrative, steps := UploadReceivedReply()
		if err := s.appendAssistant(ctx, session.ID, narrative, steps); err != nil {
			return nil, err
		}
	}

	if input.InitialMessage != "" {
		if _, _, err := s.exchange(ctx, session.ID, input.InitialMessage); err != nil {
			return nil, err
		}
	}

	created, err := s.store.GetSessionWithMessages(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload session: %w", err)
	}
	slog.Info("Chat session created", "session_id", session.ID, "session_type", input.SessionType, "messages", len(created.Messages))
	return created, nil
}

// SendMessage appends the user's message, asks the reasoning service for a
// reply over the full transcript and appends the assistant's answer. A
// reasoning failure falls back to the canned reply; this operation never
// surfaces an external-service error and never changes the session status.
func (s *ChatService) SendMessage(ctx context.Context, sessionID, content string) (*models.ChatMessage, *models.ChatMessage, error) {
	s.locks.Lock(sessionID)
	defer s.locks.Unlock(sessionID)

	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		return nil, nil, ErrSessionNotFound
	}

	return s.exchange(ctx, sessionID, content)
}

// exchange persists one user message and one assistant reply. Callers hold
// the session lock or own the freshly created session exclusively.
func (s *ChatService) exchange(ctx context.Context, sessionID, content string) (*models.ChatMessage, *models.ChatMessage, error) {
	userMsg := &models.ChatMessage{
		SessionID: sessionID,
		Role:      models.RoleUser,
		Content:   content,
	}
	if err := s.store.CreateMessage(ctx, userMsg); err != nil {
		return nil, nil, fmt.Errorf("failed to persist user message: %w", err)
	}
	s.publishMessage(userMsg)

	transcript, err := s.store.GetMessages(ctx, sessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load transcript: %w", err)
	}

	prompts := make([]Prompt, 0, len(transcript))
	for _, m := range transcript {
		prompts = append(prompts, Prompt{Role: m.Role, Content: m.Content})
	}

	reply, err := s.reasoning.Complete(ctx, chatSystemPrompt, prompts, false)
	if err != nil {
		// The chat never visibly fails; fall back to the canned reply.
		slog.Warn("Reasoning call failed, using canned reply", "error", err, "session_id", sessionID)
		reply = FallbackReply(content)
	}

	assistantMsg := &models.ChatMessage{
		SessionID: sessionID,
		Role:      models.RoleAssistant,
		Content:   reply,
		// The trace is keyword-derived from the user's message, whichever
		// path produced the reply content.
		Steps: StepsFor(content),
	}
	if err := s.store.CreateMessage(ctx, assistantMsg); err != nil {
		return nil, nil, fmt.Errorf("failed to persist assistant message: %w", err)
	}
	s.publishMessage(assistantMsg)

	return userMsg, assistantMsg, nil
}

func (s *ChatService) appendAssistant(ctx context.Context, sessionID, content string, steps models.ProcessingSteps) error {
	msg := &models.ChatMessage{
		SessionID: sessionID,
		Role:      models.RoleAssistant,
		Content:   content,
		Steps:     steps,
	}
	if err := s.store.CreateMessage(ctx, msg); err != nil {
		return fmt.Errorf("failed to persist assistant message: %w", err)
	}
	s.publishMessage(msg)
	return nil
}

// GenerateScore converts the accumulated transcript into a scored compliance
// report. A reasoning failure degrades to the fixed fallback report and the
// session still completes; only a persistence failure marks it failed.
func (s *ChatService) GenerateScore(ctx context.Context, sessionID string) (int, *models.ScoreReport, *models.ChatMessage, error) {
	s.locks.Lock(sessionID)
	defer s.locks.Unlock(sessionID)

	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		return 0, nil, nil, ErrSessionNotFound
	}
	// Completed sessions are terminal; failed sessions may retry.
	if session.Status == models.SessionStatusCompleted {
		return 0, nil, nil, ErrSessionCompleted
	}

	if err := s.store.UpdateSessionStatus(ctx, sessionID, models.SessionStatusAnalyzing); err != nil {
		return 0, nil, nil, fmt.Errorf("failed to mark session analyzing: %w", err)
	}

	report, err := s.buildScoreReport(ctx, sessionID)
	if err != nil {
		slog.Warn("Score generation degraded to fallback report", "error", err, "session_id", sessionID)
		report = FallbackScoreReport()
	}

	if err := s.store.SetSessionScore(ctx, sessionID, report.Score, report); err != nil {
		s.failSession(ctx, sessionID)
		return 0, nil, nil, fmt.Errorf("failed to persist score: %w", err)
	}

	msg := &models.ChatMessage{
		SessionID: sessionID,
		Role:      models.RoleAssistant,
		Content:   RenderScoreReport(report),
		Steps:     ScoringSteps(),
	}
	if err := s.store.CreateMessage(ctx, msg); err != nil {
		s.failSession(ctx, sessionID)
		return 0, nil, nil, fmt.Errorf("failed to persist report message: %w", err)
	}

	s.publishMessage(msg)
	s.publishScore(sessionID, report)
	slog.Info("Session score generated", "session_id", sessionID, "score", report.Score, "risk_level", report.RiskLevel)
	return report.Score, report, msg, nil
}

func (s *ChatService) buildScoreReport(ctx context.Context, sessionID string) (*models.ScoreReport, error) {
	messages, err := s.store.GetMessages(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transcript: %w", err)
	}

	// Flattened, role-prefixed transcript.
	var transcript strings.Builder
	for _, m := range messages {
		transcript.WriteString(m.Role)
		transcript.WriteString(": ")
		transcript.WriteString(m.Content)
		transcript.WriteString("\n")
	}

	reply, err := s.reasoning.Complete(ctx, scoringSystemPrompt,
		[]Prompt{{Role: models.RoleUser, Content: transcript.String()}}, true)
	if err != nil {
		return nil, err
	}

	var report models.ScoreReport
	if err := json.Unmarshal([]byte(reply), &report); err != nil {
		return nil, fmt.Errorf("failed to parse score report: %w", err)
	}

	if report.Score < 0 {
		report.Score = 0
	}
	if report.Score > 100 {
		report.Score = 100
	}
	return &report, nil
}

func (s *ChatService) failSession(ctx context.Context, sessionID string) {
	if err := s.store.UpdateSessionStatus(ctx, sessionID, models.SessionStatusFailed); err != nil {
		slog.Error("Failed to mark session failed", "error", err, "session_id", sessionID)
	}
}

func (s *ChatService) publishMessage(msg *models.ChatMessage) {
	if s.hub == nil {
		return
	}
	s.hub.PublishToSession(msg.SessionID, ws.Event{
		Type:      ws.EventMessage,
		SessionID: msg.SessionID,
		Payload:   msg,
	})
}

func (s *ChatService) publishScore(sessionID string, report *models.ScoreReport) {
	if s.hub == nil {
		return
	}
	s.hub.PublishToSession(sessionID, ws.Event{
		Type:      ws.EventScore,
		SessionID: sessionID,
		Payload:   report,
	})
}

// RenderScoreReport renders the structured report as the narrative text of
// the final assistant message.
func RenderScoreReport(report *models.ScoreReport) string {
	var b strings.Builder

	b.WriteString("Relatório de Conformidade\n\n")
	fmt.Fprintf(&b, "Score de conformidade: %d/100\n", report.Score)
	if report.RiskLevel != "" {
		fmt.Fprintf(&b, "Nível de risco: %s\n", report.RiskLevel)
	}
	fmt.Fprintf(&b, "Pontos de função: %d entregues de %d contratados\n\n",
		report.TotalDeliveredPoints, report.TotalContractedPoints)
	b.WriteString(report.Summary)
	b.WriteString("\n")

	if len(report.Discrepancies) > 0 {
		b.WriteString("\nDivergências identificadas:\n")
		for _, d := range report.Discrepancies {
			fmt.Fprintf(&b, "- %s\n", d)
		}
	}
	if len(report.Recommendations) > 0 {
		b.WriteString("\nRecomendações:\n")
		for _, r := range report.Recommendations {
			fmt.Fprintf(&b, "- %s\n", r)
		}
	}
	if len(report.DetailedAnalysis) > 0 {
		b.WriteString("\nAnálise detalhada:\n")
		for _, f := range report.DetailedAnalysis {
			fmt.Fprintf(&b, "- %s (%d PF): %s", f.Feature, f.Points, f.Status)
			if f.Observation != "" {
				fmt.Fprintf(&b, " (%s)", f.Observation)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}
