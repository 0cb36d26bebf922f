package agent

import (
	"fmt"
	"strings"
	"time"

	"github.com/legallink/assist/internal/domain"
)

var greetingTemplates = []string{
	"Hello! I'm your Legal AI Assistant. I'm here to help you with your legal questions and connect you with qualified advocates.",
	"Welcome to LegalLink AI! How can I assist you with your legal matter today?",
	"Hi there! I'm here to provide legal guidance and help you find the right advocate for your case.",
}

// AssembleResponse turns the final graph state into a response envelope. The
// greeting template rotates with the interaction count so repeated greetings
// stay deterministic per session.
func AssembleResponse(state *State, interactionCount int, now time.Time) *domain.TurnResponse {
	resp := &domain.TurnResponse{
		Type:      domain.MessageAssistant,
		Timestamp: now,
		SessionID: state.SessionID,
		Metadata: domain.ResponseMetadata{
			Intent:            state.Intent,
			Confidence:        state.Confidence,
			LegalDomain:       state.LegalDomain,
			UrgencyLevel:      state.Urgency,
			ConversationStage: state.Stage,
		},
	}

	switch state.NextAction {
	case "provide_greeting":
		resp.Content = greetingTemplates[interactionCount%len(greetingTemplates)]
	case "request_clarification":
		resp.Content = clarificationContent(state)
	case "provide_legal_guidance", "proceed_with_guidance":
		resp.Content = guidanceContent(state)
	case "recommend_advocates":
		resp.Content = recommendationContent(state)
	default:
		resp.Content = generalContent(state)
	}

	resp.QuickActions = quickActions(state)

	if criteria, ok := state.ResponseData["advocate_search"].(domain.AdvocateCriteria); ok {
		resp.AdvocateRecommendations = []domain.AdvocateRecommendation{{
			Type:     "criteria_based",
			Criteria: criteria,
			Message:  "I can help you find qualified advocates matching these criteria.",
		}}
	}

	if progress, ok := state.ResponseData["progress"].(domain.Progress); ok {
		resp.Progress = &progress
	}

	return resp
}

func clarificationContent(state *State) string {
	base := "I'd like to better understand your situation to provide the most helpful guidance. "

	if questions, ok := state.ResponseData["questions"].([]ClarificationQuestion); ok && len(questions) > 0 {
		return base + questions[0].Question
	}
	return base + "Could you provide more details about your legal issue?"
}

func guidanceContent(state *State) string {
	guidance, _ := state.ResponseData["legal_guidance"].(string)
	laws, _ := state.ResponseData["relevant_laws"].([]string)
	steps, _ := state.ResponseData["next_steps"].([]string)

	var b strings.Builder
	b.WriteString(guidance)

	if len(laws) > 0 {
		b.WriteString("\n\nRelevant laws that may apply: ")
		b.WriteString(strings.Join(laws, ", "))
	}

	if len(steps) > 0 {
		b.WriteString("\n\nRecommended next steps:\n")
		for i, step := range steps {
			fmt.Fprintf(&b, "%d. %s\n", i+1, step)
		}
	}

	return b.String()
}

func recommendationContent(state *State) string {
	recs, _ := state.ResponseData["recommendations"].([]string)

	var b strings.Builder
	b.WriteString("Based on your legal issue, I recommend the following:\n\n")
	for i, rec := range recs {
		fmt.Fprintf(&b, "%d. %s\n", i+1, rec)
	}
	b.WriteString("\nWould you like me to help you find qualified advocates in your area?")

	return b.String()
}

func generalContent(state *State) string {
	if state.LegalDomain != "" && state.LegalDomain != "general" {
		return fmt.Sprintf("I understand you have a %s related matter. Let me help you with that.", strings.ToLower(state.LegalDomain))
	}
	return "I'm here to help with your legal question. Could you tell me more about your situation?"
}

func quickActions(state *State) []domain.QuickAction {
	var actions []domain.QuickAction

	if _, ok := state.ResponseData["advocate_search"]; ok {
		actions = append(actions, domain.QuickAction{
			ID:     "find_advocates",
			Label:  "Find Advocates",
			Action: "search_advocates",
		})
	}
	if needed, ok := state.ResponseData["clarification_needed"].(bool); ok && needed {
		actions = append(actions, domain.QuickAction{
			ID:     "provide_details",
			Label:  "Provide More Details",
			Action: "continue_conversation",
		})
	}
	if assessment, ok := state.ResponseData["risk_assessment"].(RiskAssessment); ok && assessment.RequiresLegalCounsel {
		actions = append(actions, domain.QuickAction{
			ID:          "urgent_consult",
			Label:       "Urgent Consultation",
			Action:      "request_consultation",
			Description: "Connect with an advocate immediately",
		})
	}

	return actions
}
