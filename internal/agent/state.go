// Package agent implements the agentic conversation core: nine specialist
// agents, the execution graph that runs them, and the per-turn orchestrator.
package agent

import (
	"context"
	"fmt"

	"github.com/legallink/assist/internal/domain"
)

// State is the shared per-turn working state. It is derived from the session
// at the start of a turn and folded back into it at the end.
type State struct {
	SessionID      string
	UserID         string
	CurrentMessage string
	History        []domain.HistoryEntry
	UserContext    domain.UserContext
	Stage          domain.ConversationStage
	Entities       Entities
	Intent         string
	Confidence     float64
	Urgency        domain.UrgencyLevel
	LegalDomain    string
	NextAction     string
	ResponseData   map[string]any
	Memory         map[string]any
}

// Entities are the structured facts extracted from the current message.
type Entities struct {
	Location   map[string]string `json:"location,omitempty"`
	LegalTerms []string          `json:"legal_terms,omitempty"`
	Amounts    []Amount          `json:"amounts,omitempty"`
	Dates      []string          `json:"dates,omitempty"`
}

// Amount is one monetary value mentioned in a message.
type Amount struct {
	Value    float64 `json:"value"`
	Currency string  `json:"currency"`
	Text     string  `json:"text"`
}

// Empty reports whether no entities were extracted.
func (e Entities) Empty() bool {
	return len(e.Location) == 0 && len(e.LegalTerms) == 0 && len(e.Amounts) == 0 && len(e.Dates) == 0
}

// Map flattens the entities for history records.
func (e Entities) Map() map[string]any {
	m := make(map[string]any)
	if len(e.Location) > 0 {
		m["location"] = e.Location
	}
	if len(e.LegalTerms) > 0 {
		m["legal_terms"] = e.LegalTerms
	}
	if len(e.Amounts) > 0 {
		m["amounts"] = e.Amounts
	}
	if len(e.Dates) > 0 {
		m["dates"] = e.Dates
	}
	return m
}

// NewState builds the per-turn state from a session and the incoming message.
func NewState(session *domain.Session, message string) *State {
	memory := session.Memory
	if memory == nil {
		memory = make(map[string]any)
	}
	return &State{
		SessionID:      session.SessionID,
		UserID:         session.UserID,
		CurrentMessage: message,
		History:        session.QueryHistory,
		UserContext:    session.UserContext,
		Stage:          session.Stage,
		Urgency:        domain.UrgencyLow,
		ResponseData:   make(map[string]any),
		Memory:         memory,
	}
}

// Snapshot is the read-only view handed to parallel agents. Parallel agents
// must not mutate shared state; they return deltas instead.
type Snapshot struct {
	SessionID      string
	UserID         string
	CurrentMessage string
	History        []domain.HistoryEntry
	UserContext    domain.UserContext
	Stage          domain.ConversationStage
	Entities       Entities
	Intent         string
	Urgency        domain.UrgencyLevel
	LegalDomain    string
	Memory         map[string]any
}

// Snapshot captures the current state for a parallel agent.
func (s *State) Snapshot() Snapshot {
	return Snapshot{
		SessionID:      s.SessionID,
		UserID:         s.UserID,
		CurrentMessage: s.CurrentMessage,
		History:        s.History,
		UserContext:    s.UserContext,
		Stage:          s.Stage,
		Entities:       s.Entities,
		Intent:         s.Intent,
		Urgency:        s.Urgency,
		LegalDomain:    s.LegalDomain,
		Memory:         s.Memory,
	}
}

// Delta is the immutable output of a parallel agent: response-data entries,
// memory writes, and optionally a next action.
type Delta struct {
	Response   map[string]any
	MemorySet  map[string]any
	NextAction string
}

// MergeDeltas folds a fan-out's deltas into the state. Response keys must be
// disjoint across the deltas of one fan-out; a collision is an execution
// error. A later graph iteration may legitimately overwrite keys written by
// an earlier one, so disjointness is checked among the deltas only.
func MergeDeltas(state *State, deltas []Delta) error {
	claimed := make(map[string]string)
	for i, d := range deltas {
		for k := range d.Response {
			if prev, taken := claimed[k]; taken {
				return fmt.Errorf("response data key %q claimed by two parallel agents (%s, delta %d)", k, prev, i)
			}
			claimed[k] = fmt.Sprintf("delta %d", i)
		}
	}

	for _, d := range deltas {
		for k, v := range d.Response {
			state.ResponseData[k] = v
		}
		for k, v := range d.MemorySet {
			state.Memory[k] = v
		}
		if d.NextAction != "" {
			state.NextAction = d.NextAction
		}
	}
	return nil
}

// SequentialAgent mutates the shared state in place. Only one runs at a time.
type SequentialAgent interface {
	Name() string
	Process(ctx context.Context, state *State) error
}

// DeltaAgent reads a snapshot and returns a delta. Delta agents run
// concurrently during the fan-out stage.
type DeltaAgent interface {
	Name() string
	Evaluate(ctx context.Context, snap Snapshot) (Delta, error)
}
