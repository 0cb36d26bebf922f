package agent

import (
	"context"
	"log/slog"
	"time"

	"github.com/legallink/assist/internal/domain"
)

// ContextAgent records the current turn into the conversation history and
// accumulates topical memory. It runs first, so later agents see the message
// in context.
type ContextAgent struct {
	now func() time.Time
}

// NewContext creates the context agent.
func NewContext() *ContextAgent {
	return &ContextAgent{now: time.Now}
}

func (a *ContextAgent) Name() string { return "context" }

// Process appends the turn to history and updates topic memory.
func (a *ContextAgent) Process(ctx context.Context, state *State) error {
	slog.Debug("context agent processing", "session_id", state.SessionID)

	state.History = append(state.History, domain.HistoryEntry{
		Timestamp: a.now(),
		Role:      domain.MessageUser,
		Content:   state.CurrentMessage,
		Intent:    state.Intent,
		Entities:  state.Entities.Map(),
	})

	if len(state.Entities.Location) > 0 {
		state.UserContext.MergeLocation(state.Entities.Location)
	}

	a.updateTopicMemory(state)

	return nil
}

func (a *ContextAgent) updateTopicMemory(state *State) {
	topics, _ := state.Memory["conversation_topics"].([]string)
	if state.LegalDomain != "" && !contains(topics, state.LegalDomain) {
		topics = append(topics, state.LegalDomain)
	}
	state.Memory["conversation_topics"] = topics

	entities, _ := state.Memory["key_entities"].(map[string]any)
	if entities == nil {
		entities = make(map[string]any)
	}
	for k, v := range state.Entities.Map() {
		entities[k] = v
	}
	state.Memory["key_entities"] = entities
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
