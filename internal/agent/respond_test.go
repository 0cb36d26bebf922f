package agent

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/legallink/assist/internal/domain"
)

func TestAssembleResponseGreetingRotates(t *testing.T) {
	t.Parallel()

	now := time.Now()
	state := newTestState("hello")
	state.NextAction = "provide_greeting"

	first := AssembleResponse(state, 0, now)
	second := AssembleResponse(state, 1, now)
	wrapped := AssembleResponse(state, len(greetingTemplates), now)

	assert.Equal(t, greetingTemplates[0], first.Content)
	assert.Equal(t, greetingTemplates[1], second.Content)
	assert.Equal(t, first.Content, wrapped.Content)
}

func TestAssembleResponseClarification(t *testing.T) {
	t.Parallel()

	state := newTestState("I have a problem")
	state.NextAction = "request_clarification"
	state.ResponseData["clarification_needed"] = true
	state.ResponseData["questions"] = []ClarificationQuestion{
		{Field: "location", Question: "Where are you located?", Type: "text"},
		{Field: "budget", Question: "What is your budget?", Type: "text"},
	}

	resp := AssembleResponse(state, 0, time.Now())

	assert.Contains(t, resp.Content, "Where are you located?")
	assert.NotContains(t, resp.Content, "What is your budget?")

	require.Len(t, resp.QuickActions, 1)
	assert.Equal(t, "provide_details", resp.QuickActions[0].ID)
}

func TestAssembleResponseGuidance(t *testing.T) {
	t.Parallel()

	state := newTestState("rent dispute")
	state.NextAction = "provide_legal_guidance"
	state.ResponseData["legal_guidance"] = "Tenants have specific rights under the Rent Control Act."
	state.ResponseData["relevant_laws"] = []string{"Rent Control Act", "Transfer of Property Act"}
	state.ResponseData["next_steps"] = []string{"Gather documents", "Consult an advocate"}

	resp := AssembleResponse(state, 0, time.Now())

	assert.Contains(t, resp.Content, "Rent Control Act")
	assert.Contains(t, resp.Content, "Relevant laws that may apply: Rent Control Act, Transfer of Property Act")
	assert.Contains(t, resp.Content, "1. Gather documents")
	assert.Contains(t, resp.Content, "2. Consult an advocate")
}

func TestAssembleResponseAdvocateSearch(t *testing.T) {
	t.Parallel()

	state := newTestState("find me an advocate")
	state.NextAction = "recommend_advocates"
	state.ResponseData["recommendations"] = []string{"Schedule a consultation"}
	state.ResponseData["advocate_search"] = domain.AdvocateCriteria{
		Specialization: domain.SpecCivil,
		Urgency:        domain.UrgencyMedium,
	}

	resp := AssembleResponse(state, 0, time.Now())

	assert.Contains(t, resp.Content, "1. Schedule a consultation")
	require.Len(t, resp.AdvocateRecommendations, 1)
	assert.Equal(t, "criteria_based", resp.AdvocateRecommendations[0].Type)
	assert.Equal(t, domain.SpecCivil, resp.AdvocateRecommendations[0].Criteria.Specialization)

	require.NotEmpty(t, resp.QuickActions)
	assert.Equal(t, "find_advocates", resp.QuickActions[0].ID)
}

func TestAssembleResponseUrgentConsultAction(t *testing.T) {
	t.Parallel()

	state := newTestState("I was arrested")
	state.ResponseData["risk_assessment"] = RiskAssessment{
		Level:                "HIGH",
		RequiresLegalCounsel: true,
	}

	resp := AssembleResponse(state, 0, time.Now())

	require.Len(t, resp.QuickActions, 1)
	assert.Equal(t, "urgent_consult", resp.QuickActions[0].ID)
}

func TestAssembleResponseCarriesMetadataAndProgress(t *testing.T) {
	t.Parallel()

	now := time.Now()
	state := newTestState("property question")
	state.Intent = "legal_help"
	state.Confidence = 0.4
	state.LegalDomain = "property"
	state.Urgency = domain.UrgencyMedium
	state.Stage = domain.StageLegalGuidance
	state.ResponseData["progress"] = domain.Progress{
		Percentage:     40,
		CompletedSteps: 2,
		TotalSteps:     5,
		CurrentStage:   domain.StageLegalGuidance,
	}

	resp := AssembleResponse(state, 0, now)

	assert.Equal(t, domain.MessageAssistant, resp.Type)
	assert.Equal(t, "sess-1", resp.SessionID)
	assert.Equal(t, "legal_help", resp.Metadata.Intent)
	assert.Equal(t, "property", resp.Metadata.LegalDomain)
	assert.Equal(t, domain.UrgencyMedium, resp.Metadata.UrgencyLevel)
	require.NotNil(t, resp.Progress)
	assert.Equal(t, 2, resp.Progress.CompletedSteps)

	// Default action falls back to a domain-aware prompt.
	assert.Contains(t, resp.Content, "property")
}
