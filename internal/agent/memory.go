package agent

import (
	"context"
	"log/slog"
)

// shortTermWindow caps how many recent messages short-term memory retains.
const shortTermWindow = 5

// MemoryAgent maintains the session's short-term and long-term memory scopes
// and surfaces a memory snapshot to response assembly.
type MemoryAgent struct{}

// NewMemory creates the memory agent.
func NewMemory() *MemoryAgent {
	return &MemoryAgent{}
}

func (a *MemoryAgent) Name() string { return "memory" }

// Process updates both memory scopes and attaches context_from_memory.
func (a *MemoryAgent) Process(ctx context.Context, state *State) error {
	slog.Debug("memory agent processing", "session_id", state.SessionID)

	a.updateShortTerm(state)
	a.updateLongTerm(state)

	state.ResponseData["context_from_memory"] = a.relevantMemories(state)

	return nil
}

func (a *MemoryAgent) updateShortTerm(state *State) {
	shortTerm, _ := state.Memory["short_term"].(map[string]any)
	if shortTerm == nil {
		shortTerm = map[string]any{
			"recent_messages": []string{},
			"current_focus":   nil,
			"pending_actions": []string{},
		}
	}

	recent, _ := shortTerm["recent_messages"].([]string)
	recent = append(recent, state.CurrentMessage)
	if len(recent) > shortTermWindow {
		recent = recent[len(recent)-shortTermWindow:]
	}
	shortTerm["recent_messages"] = recent
	shortTerm["current_focus"] = state.LegalDomain

	state.Memory["short_term"] = shortTerm
}

func (a *MemoryAgent) updateLongTerm(state *State) {
	longTerm, _ := state.Memory["long_term"].(map[string]any)
	if longTerm == nil {
		longTerm = map[string]any{
			"user_profile": map[string]any{},
			"case_history": []any{},
			"preferences":  map[string]any{},
		}
	}

	profile, _ := longTerm["user_profile"].(map[string]any)
	if profile == nil {
		profile = make(map[string]any)
	}

	if len(state.UserContext.Location) > 0 {
		profile["location"] = state.UserContext.Location
	}

	if state.LegalDomain != "" {
		interests, _ := profile["legal_interests"].([]string)
		if !contains(interests, state.LegalDomain) {
			interests = append(interests, state.LegalDomain)
		}
		profile["legal_interests"] = interests
	}

	longTerm["user_profile"] = profile
	state.Memory["long_term"] = longTerm
}

func (a *MemoryAgent) relevantMemories(state *State) map[string]any {
	relevant := make(map[string]any)

	if longTerm, ok := state.Memory["long_term"].(map[string]any); ok {
		if profile, ok := longTerm["user_profile"]; ok {
			relevant["user_profile"] = profile
		}
	}
	if shortTerm, ok := state.Memory["short_term"].(map[string]any); ok {
		relevant["recent_context"] = shortTerm["current_focus"]
	}

	return relevant
}
