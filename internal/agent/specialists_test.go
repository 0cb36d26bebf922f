package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/legallink/assist/internal/domain"
)

func TestClarificationFindsMissingFields(t *testing.T) {
	t.Parallel()

	a := NewClarification()

	d, err := a.Evaluate(context.Background(), Snapshot{SessionID: "sess-1"})
	require.NoError(t, err)

	assert.Equal(t, true, d.Response["clarification_needed"])
	assert.Equal(t, "request_clarification", d.NextAction)

	questions, ok := d.Response["questions"].([]ClarificationQuestion)
	require.True(t, ok)
	require.Len(t, questions, 4)
	assert.Equal(t, "location", questions[0].Field)
	assert.Equal(t, "legal_issue", questions[1].Field)
	assert.Equal(t, "urgency", questions[2].Field)
	assert.Equal(t, "budget", questions[3].Field)
}

func TestClarificationProceedsWhenContextComplete(t *testing.T) {
	t.Parallel()

	a := NewClarification()
	snap := Snapshot{
		UserContext: domain.UserContext{
			LegalIssue: "property dispute",
			Location:   map[string]string{"city": "Pune"},
			Urgency:    domain.UrgencyMedium,
			Budget:     &domain.BudgetRange{Max: 20000},
		},
	}

	d, err := a.Evaluate(context.Background(), snap)
	require.NoError(t, err)

	assert.Equal(t, false, d.Response["clarification_needed"])
	assert.Equal(t, "proceed_with_guidance", d.NextAction)
	assert.NotContains(t, d.Response, "questions")
}

func TestClarificationUrgentIssueTextSkipsUrgencyQuestion(t *testing.T) {
	t.Parallel()

	missing := missingFields(domain.UserContext{
		LegalIssue: "urgent eviction notice",
		Location:   map[string]string{"city": "Delhi"},
		Budget:     &domain.BudgetRange{Max: 5000},
	})

	assert.NotContains(t, missing, "urgency")
	assert.Empty(t, missing)
}

func TestLegalReasoningMatchesKnownIssues(t *testing.T) {
	t.Parallel()

	a := NewLegalReasoning()
	snap := Snapshot{
		LegalDomain:    "property",
		CurrentMessage: "my landlord keeps raising the rent",
		Urgency:        domain.UrgencyLow,
	}

	d, err := a.Evaluate(context.Background(), snap)
	require.NoError(t, err)

	guidance, _ := d.Response["legal_guidance"].(string)
	assert.Contains(t, guidance, "Rent Control Act")

	laws, _ := d.Response["relevant_laws"].([]string)
	assert.Contains(t, laws, "Transfer of Property Act")

	steps, _ := d.Response["next_steps"].([]string)
	assert.Contains(t, steps, "Gather all relevant documents")

	assert.Equal(t, true, d.MemorySet["legal_guidance_provided"])
}

func TestLegalReasoningUnknownDomainFallsBack(t *testing.T) {
	t.Parallel()

	a := NewLegalReasoning()

	d, err := a.Evaluate(context.Background(), Snapshot{LegalDomain: "general"})
	require.NoError(t, err)

	guidance, _ := d.Response["legal_guidance"].(string)
	assert.Contains(t, guidance, "qualified advocate")

	laws, _ := d.Response["relevant_laws"].([]string)
	assert.Equal(t, []string{"Indian Constitution", "Relevant State and Central Acts"}, laws)
}

func TestLegalReasoningUrgentNextSteps(t *testing.T) {
	t.Parallel()

	steps := nextSteps(domain.UrgencyHigh)
	assert.Equal(t, "Seek immediate legal consultation", steps[0])

	steps = nextSteps(domain.UrgencyLow)
	assert.Equal(t, "Gather all relevant documents", steps[0])
}

func TestRiskAssessmentHighIndicators(t *testing.T) {
	t.Parallel()

	a := NewRiskAssessment()
	snap := Snapshot{
		CurrentMessage: "I was arrested and need bail before the hearing",
		Urgency:        domain.UrgencyLow,
	}

	d, err := a.Evaluate(context.Background(), snap)
	require.NoError(t, err)

	assessment, ok := d.Response["risk_assessment"].(RiskAssessment)
	require.True(t, ok)

	assert.Equal(t, "HIGH", assessment.Level)
	assert.True(t, assessment.RequiresLegalCounsel)
	assert.Contains(t, assessment.Factors, "criminal")
	assert.Contains(t, assessment.Factors, "time_sensitive")
	assert.Contains(t, assessment.Recommendations, "Seek immediate legal consultation")
}

func TestRiskLevelTiers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		message string
		urgency domain.UrgencyLevel
		want    string
	}{
		{"received a court notice yesterday", domain.UrgencyLow, "HIGH"},
		{"ordinary question", domain.UrgencyHigh, "HIGH"},
		{"ordinary question", domain.UrgencyMedium, "MEDIUM"},
		{"there is a dispute with my vendor", domain.UrgencyLow, "MEDIUM"},
		{"how does registration work", domain.UrgencyLow, "LOW"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, riskLevel(tt.message, tt.urgency),
			"message=%q urgency=%s", tt.message, tt.urgency)
	}
}

func TestRecommendationBuildsCriteria(t *testing.T) {
	t.Parallel()

	a := NewRecommendation()
	snap := Snapshot{
		LegalDomain: "criminal",
		Urgency:     domain.UrgencyCritical,
		UserContext: domain.UserContext{
			Location: map[string]string{"city": "Delhi"},
			Budget:   &domain.BudgetRange{Max: 30000},
		},
	}

	d, err := a.Evaluate(context.Background(), snap)
	require.NoError(t, err)

	criteria, ok := d.Response["advocate_search"].(domain.AdvocateCriteria)
	require.True(t, ok)
	assert.Equal(t, domain.SpecCriminal, criteria.Specialization)
	assert.Equal(t, domain.UrgencyCritical, criteria.Urgency)
	assert.Equal(t, 30000, criteria.Budget.Max)

	recs, _ := d.Response["recommendations"].([]string)
	require.NotEmpty(t, recs)
	assert.Contains(t, recs[0], "immediately")
	assert.Contains(t, recs, "Do not speak to authorities without legal representation")
}

func TestMapSpecializationFallsBackToOther(t *testing.T) {
	t.Parallel()

	assert.Equal(t, domain.SpecOther, mapSpecialization("general"))
	assert.Equal(t, domain.SpecTaxation, mapSpecialization("tax"))
}

func TestProgressAgentScoresCompletion(t *testing.T) {
	t.Parallel()

	a := NewProgress()
	state := newTestState("follow up")
	state.History = append(state.History, domain.HistoryEntry{Content: "earlier"})
	state.UserContext.LegalIssue = "property dispute"
	state.UserContext.Location = map[string]string{"city": "Mumbai"}
	state.Memory["legal_guidance_provided"] = true
	state.ResponseData["advocate_search"] = domain.AdvocateCriteria{}
	state.ResponseData["recommendations"] = []string{"consult"}

	require.NoError(t, a.Process(context.Background(), state))

	progress, ok := state.ResponseData["progress"].(domain.Progress)
	require.True(t, ok)
	assert.Equal(t, 4, progress.CompletedSteps)
	assert.Equal(t, 5, progress.TotalSteps)
	assert.InDelta(t, 80.0, progress.Percentage, 0.001)

	completion, ok := state.ResponseData["completion_status"].(CompletionStatus)
	require.True(t, ok)
	assert.InDelta(t, 1.0, completion.CompletionScore, 0.001)
	assert.True(t, completion.ReadyForClosure)
}

func TestProgressAgentNotReadyEarly(t *testing.T) {
	t.Parallel()

	a := NewProgress()
	state := newTestState("hello")

	require.NoError(t, a.Process(context.Background(), state))

	completion := state.ResponseData["completion_status"].(CompletionStatus)
	assert.False(t, completion.ReadyForClosure)
	assert.InDelta(t, 0.0, completion.CompletionScore, 0.001)
}

func TestContextAgentRecordsTurn(t *testing.T) {
	t.Parallel()

	a := NewContext()
	state := newTestState("my property case in Mumbai")
	state.Entities = Entities{
		Location:   map[string]string{"city": "Mumbai", "state": "Maharashtra"},
		LegalTerms: []string{"property"},
	}
	state.LegalDomain = "property"

	require.NoError(t, a.Process(context.Background(), state))

	require.Len(t, state.History, 1)
	assert.Equal(t, domain.MessageUser, state.History[0].Role)
	assert.Equal(t, "my property case in Mumbai", state.History[0].Content)

	assert.Equal(t, "Mumbai", state.UserContext.Location["city"])

	topics, _ := state.Memory["conversation_topics"].([]string)
	assert.Equal(t, []string{"property"}, topics)
}

func TestMemoryAgentKeepsShortTermWindow(t *testing.T) {
	t.Parallel()

	a := NewMemory()
	state := newTestState("first")
	state.LegalDomain = "property"

	for i := 0; i < shortTermWindow+2; i++ {
		require.NoError(t, a.Process(context.Background(), state))
	}

	shortTerm := state.Memory["short_term"].(map[string]any)
	recent := shortTerm["recent_messages"].([]string)
	assert.Len(t, recent, shortTermWindow)
	assert.Equal(t, "property", shortTerm["current_focus"])

	fromMemory := state.ResponseData["context_from_memory"].(map[string]any)
	assert.Equal(t, "property", fromMemory["recent_context"])
}
