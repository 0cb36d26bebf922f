package agent

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/legallink/assist/internal/domain"
	"github.com/legallink/assist/internal/rag"
	"github.com/legallink/assist/internal/store"
)

const apologyMessage = "I apologize, but I encountered an error processing your request. Please try again."

var unsafeChars = regexp.MustCompile(`[<>"']`)

// Orchestrator drives one conversation turn: validate, load session, RAG
// pre-pass, quality gate, fusion branch, response assembly, persist.
type Orchestrator struct {
	store      store.SessionStore
	engine     *rag.Engine
	gate       *rag.QualityGate
	graph      *Graph
	classifier Classifier

	maxMessageLength int
	ragTimeout       time.Duration
	now              func() time.Time

	mu    sync.Mutex
	locks map[string]*turnLock
}

// turnLock serializes turns for one session. Locks are reference-counted so
// the table holds entries only for sessions with in-flight turns.
type turnLock struct {
	mu   sync.Mutex
	refs int
}

// NewOrchestrator wires the turn controller. engine may be nil to disable the
// RAG pre-pass entirely.
func NewOrchestrator(sessions store.SessionStore, engine *rag.Engine, gate *rag.QualityGate, graph *Graph, classifier Classifier, maxMessageLength int, ragTimeout time.Duration) *Orchestrator {
	if maxMessageLength <= 0 {
		maxMessageLength = 1000
	}
	if ragTimeout <= 0 {
		ragTimeout = 30 * time.Second
	}
	return &Orchestrator{
		store:            sessions,
		engine:           engine,
		gate:             gate,
		graph:            graph,
		classifier:       classifier,
		maxMessageLength: maxMessageLength,
		ragTimeout:       ragTimeout,
		now:              time.Now,
		locks:            make(map[string]*turnLock),
	}
}

// HandleTurn processes one inbound message and always returns a response
// envelope; failures surface as assistant-style error messages, never as
// transport errors.
func (o *Orchestrator) HandleTurn(ctx context.Context, req domain.TurnRequest) *domain.TurnResponse {
	message := o.sanitize(req.Message)
	if message == "" {
		return o.errorResponse(req.SessionID, "Please provide a message so I can help you.")
	}

	// Turns within one session are strictly serialized around load and
	// persist: turn N+1 must not read the session before turn N's mutation
	// is written.
	lockKey := req.SessionID
	if lockKey == "" {
		lockKey = uuid.NewString()
	}
	unlock := o.lockSession(lockKey)
	defer unlock()

	session, err := o.loadOrCreateSession(ctx, req)
	if err != nil {
		slog.Error("session load failed", "session_id", req.SessionID, "error", err)
		return o.errorResponse(req.SessionID, apologyMessage)
	}

	resp := o.processTurn(ctx, session, message)

	session.Touch(o.now())
	if err := o.persist(ctx, session); err != nil {
		slog.Error("session persist failed", "session_id", session.SessionID, "error", err)
	}

	return resp
}

func (o *Orchestrator) processTurn(ctx context.Context, session *domain.Session, message string) *domain.TurnResponse {
	ragResult := o.ragPrePass(ctx, session, message)

	if ragResult != nil {
		assessment := o.gate.Assess(ragResult.Content, ragResult.Sources, ragResult.ContextUsed)
		slog.Info("rag quality assessed",
			"session_id", session.SessionID,
			"score", assessment.Score,
			"enhancement_type", assessment.EnhancementType)

		if o.gate.Sufficient(assessment, ragResult.Content) {
			return o.ragPrimaryResponse(session, message, ragResult, assessment)
		}
		return o.fullGraphResponse(ctx, session, message, ragResult, &assessment)
	}

	return o.fullGraphResponse(ctx, session, message, nil, nil)
}

// ragPrePass runs retrieval-augmented generation under its own timeout. Any
// failure degrades to nil so the agent graph carries the turn alone.
func (o *Orchestrator) ragPrePass(ctx context.Context, session *domain.Session, message string) *rag.Result {
	if o.engine == nil {
		return nil
	}

	ragCtx, cancel := context.WithTimeout(ctx, o.ragTimeout)
	defer cancel()

	location := ""
	if city, ok := session.UserContext.Location["city"]; ok {
		location = city
	}

	result, err := o.engine.Process(ragCtx, rag.Query{
		Text:      message,
		UserID:    session.UserID,
		SessionID: session.SessionID,
		QueryType: rag.InferQueryType(message),
		Location:  location,
		Urgency:   o.classifier.Urgency(message),
	})
	if err != nil {
		slog.Warn("rag pre-pass failed, falling back to agent graph",
			"session_id", session.SessionID, "error", err)
		return nil
	}
	return result
}

// ragPrimaryResponse serves the RAG answer directly with a light interactive
// enhancement pass instead of the full graph.
func (o *Orchestrator) ragPrimaryResponse(session *domain.Session, message string, result *rag.Result, assessment rag.Assessment) *domain.TurnResponse {
	legalDomain := o.classifier.Domain(message)
	urgency := o.classifier.Urgency(message).AtLeast(result.Urgency)

	o.recordTurn(session, message, "legal_help", result.Content)
	session.UserContext.Urgency = session.UserContext.Urgency.AtLeast(urgency)

	resp := &domain.TurnResponse{
		Type:      domain.MessageAssistant,
		Content:   result.Content,
		Timestamp: o.now(),
		SessionID: session.SessionID,
		Metadata: domain.ResponseMetadata{
			Intent:            "legal_help",
			Confidence:        assessment.Score,
			LegalDomain:       legalDomain,
			UrgencyLevel:      urgency,
			ConversationStage: session.Stage,
			RAGConfidence:     assessment.Score,
			TrainingDataUsed:  result.TrainingDataUsed,
			Enhancement:       "rag_with_agent_interactivity",
		},
		SuggestedActions: result.SuggestedActions,
	}

	for _, action := range result.SuggestedActions {
		resp.QuickActions = append(resp.QuickActions, domain.QuickAction{
			ID:          action.Type,
			Label:       action.Description,
			Action:      action.Type,
			Description: action.Timeline,
		})
	}

	resp.AdvocateRecommendations = []domain.AdvocateRecommendation{{
		Type: "criteria_based",
		Criteria: domain.AdvocateCriteria{
			Specialization: mapSpecialization(legalDomain),
			Location:       session.UserContext.Location,
			Urgency:        urgency,
			Budget:         session.UserContext.Budget,
		},
	}}

	return resp
}

// fullGraphResponse runs the complete agent graph, merging any RAG output in
// as auxiliary material.
func (o *Orchestrator) fullGraphResponse(ctx context.Context, session *domain.Session, message string, ragResult *rag.Result, assessment *rag.Assessment) *domain.TurnResponse {
	state := NewState(session, message)

	if _, err := o.graph.Execute(ctx, state); err != nil {
		slog.Error("agent graph execution failed", "session_id", session.SessionID, "error", err)
		return o.errorResponse(session.SessionID, apologyMessage)
	}

	resp := AssembleResponse(state, session.InteractionCount, o.now())

	if ragResult != nil && assessment != nil {
		// Agent-derived actions first, RAG-derived appended.
		resp.SuggestedActions = append(resp.SuggestedActions, ragResult.SuggestedActions...)
		resp.Metadata.RAGConfidence = assessment.Score
		resp.Metadata.TrainingDataUsed = ragResult.TrainingDataUsed
		resp.Metadata.Enhancement = string(assessment.EnhancementType)
	}

	// Fold the turn state back into the session.
	session.Stage = state.Stage
	session.UserContext = state.UserContext
	session.Memory = state.Memory
	session.QueryHistory = state.History
	session.QueryHistory = append(session.QueryHistory, domain.HistoryEntry{
		Timestamp: o.now(),
		Role:      domain.MessageAssistant,
		Content:   resp.Content,
	})

	return resp
}

func (o *Orchestrator) recordTurn(session *domain.Session, message, intent, answer string) {
	now := o.now()
	session.QueryHistory = append(session.QueryHistory,
		domain.HistoryEntry{Timestamp: now, Role: domain.MessageUser, Content: message, Intent: intent},
		domain.HistoryEntry{Timestamp: now, Role: domain.MessageAssistant, Content: answer},
	)
}

func (o *Orchestrator) loadOrCreateSession(ctx context.Context, req domain.TurnRequest) (*domain.Session, error) {
	if req.SessionID != "" {
		session, err := o.store.Get(ctx, req.SessionID)
		if err == nil {
			return session, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
	}

	now := o.now()
	session := &domain.Session{
		SessionID:    uuid.NewString(),
		UserID:       req.UserID,
		Stage:        domain.StageGreeting,
		Memory:       make(map[string]any),
		CreatedAt:    now,
		LastActivity: now,
	}
	if err := o.store.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (o *Orchestrator) persist(ctx context.Context, session *domain.Session) error {
	return o.store.Update(ctx, session)
}

func (o *Orchestrator) sanitize(message string) string {
	sanitized := unsafeChars.ReplaceAllString(message, "")
	if len(sanitized) > o.maxMessageLength {
		sanitized = sanitized[:o.maxMessageLength] + "..."
	}
	return strings.TrimSpace(sanitized)
}

// lockSession acquires the per-session turn lock and returns its release
// function. The entry is removed once the last holder releases.
func (o *Orchestrator) lockSession(sessionID string) func() {
	o.mu.Lock()
	lock, ok := o.locks[sessionID]
	if !ok {
		lock = &turnLock{}
		o.locks[sessionID] = lock
	}
	lock.refs++
	o.mu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()

		o.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(o.locks, sessionID)
		}
		o.mu.Unlock()
	}
}

func (o *Orchestrator) errorResponse(sessionID, message string) *domain.TurnResponse {
	return &domain.TurnResponse{
		Type:      domain.MessageError,
		Content:   message,
		Timestamp: o.now(),
		SessionID: sessionID,
	}
}
