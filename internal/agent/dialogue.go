package agent

import (
	"context"
	"log/slog"
	"strings"

	"github.com/legallink/assist/internal/domain"
)

// conversationPatterns map dialogue intents to their trigger phrases. The
// slice order makes intent resolution deterministic.
var conversationPatterns = []struct {
	intent   string
	patterns []string
}{
	{"greeting", []string{
		"hello", "hi", "hey", "good morning", "good afternoon",
		"good evening", "namaste", "namaskar",
	}},
	{"legal_help", []string{
		"legal", "law", "lawyer", "advocate", "court", "case",
		"legal advice", "help", "problem", "issue",
	}},
	{"emergency", []string{
		"urgent", "emergency", "immediate", "help", "crisis",
		"police", "arrest", "bail", "threat",
	}},
}

// DialogueAgent manages conversation flow: stage, intent, and next action.
type DialogueAgent struct{}

// NewDialogue creates the dialogue agent.
func NewDialogue() *DialogueAgent {
	return &DialogueAgent{}
}

func (a *DialogueAgent) Name() string { return "dialogue" }

// Process derives the conversation stage, the user's intent, a confidence
// score, and the tentative next action.
func (a *DialogueAgent) Process(ctx context.Context, state *State) error {
	slog.Debug("dialogue agent processing", "session_id", state.SessionID)

	state.Stage = determineStage(state)
	state.Intent = extractIntent(state.CurrentMessage)
	state.Confidence = intentConfidence(state.CurrentMessage, state.Intent)
	state.NextAction = nextActionForStage(state.Stage)

	return nil
}

func determineStage(state *State) domain.ConversationStage {
	if len(state.History) == 0 {
		return domain.StageGreeting
	}

	if state.UserContext.LegalIssue == "" {
		return domain.StageInformationGathering
	}

	if _, ok := state.Memory["legal_guidance_provided"]; !ok {
		return domain.StageLegalGuidance
	}

	// Advocate interest in the last few turns moves the conversation to
	// recommendations.
	recent := state.History
	if len(recent) > 3 {
		recent = recent[len(recent)-3:]
	}
	for _, entry := range recent {
		if strings.Contains(strings.ToLower(entry.Content), "advocate") {
			return domain.StageAdvocateRecommendation
		}
	}

	return domain.StageFollowUp
}

func extractIntent(message string) string {
	lower := strings.ToLower(message)

	for _, entry := range conversationPatterns {
		for _, pattern := range entry.patterns {
			if strings.Contains(lower, pattern) {
				return entry.intent
			}
		}
	}

	for _, word := range []string{"find", "search", "recommend", "suggest"} {
		if strings.Contains(lower, word) {
			return "search_request"
		}
	}
	if strings.Contains(message, "?") {
		return "question"
	}
	return "statement"
}

func intentConfidence(message, intent string) float64 {
	lower := strings.ToLower(message)
	for _, entry := range conversationPatterns {
		if entry.intent != intent {
			continue
		}
		matches := 0
		for _, pattern := range entry.patterns {
			if strings.Contains(lower, pattern) {
				matches++
			}
		}
		confidence := float64(matches) / float64(len(entry.patterns)) * 2
		if confidence > 1.0 {
			confidence = 1.0
		}
		return confidence
	}
	return 0.5
}

func nextActionForStage(stage domain.ConversationStage) string {
	switch stage {
	case domain.StageGreeting:
		return "provide_greeting"
	case domain.StageInformationGathering:
		return "gather_information"
	case domain.StageLegalGuidance:
		return "provide_legal_guidance"
	case domain.StageAdvocateRecommendation:
		return "recommend_advocates"
	default:
		return "continue_conversation"
	}
}
