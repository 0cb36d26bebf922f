package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/legallink/assist/internal/domain"
)

func TestDetermineStage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		state *State
		want  domain.ConversationStage
	}{
		{
			name:  "no history means greeting",
			state: &State{Memory: map[string]any{}},
			want:  domain.StageGreeting,
		},
		{
			name: "no legal issue means information gathering",
			state: &State{
				History: []domain.HistoryEntry{{Content: "hello"}},
				Memory:  map[string]any{},
			},
			want: domain.StageInformationGathering,
		},
		{
			name: "issue known but no guidance yet means legal guidance",
			state: &State{
				History:     []domain.HistoryEntry{{Content: "hello"}},
				UserContext: domain.UserContext{LegalIssue: "property"},
				Memory:      map[string]any{},
			},
			want: domain.StageLegalGuidance,
		},
		{
			name: "recent advocate mention moves to recommendation",
			state: &State{
				History: []domain.HistoryEntry{
					{Content: "hello"},
					{Content: "can you find me an advocate?"},
				},
				UserContext: domain.UserContext{LegalIssue: "property"},
				Memory:      map[string]any{"legal_guidance_provided": true},
			},
			want: domain.StageAdvocateRecommendation,
		},
		{
			name: "otherwise follow up",
			state: &State{
				History:     []domain.HistoryEntry{{Content: "thanks for the guidance"}},
				UserContext: domain.UserContext{LegalIssue: "property"},
				Memory:      map[string]any{"legal_guidance_provided": true},
			},
			want: domain.StageFollowUp,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, determineStage(tt.state))
		})
	}
}

func TestExtractIntent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		message string
		want    string
	}{
		{"hello there", "greeting"},
		{"namaste", "greeting"},
		{"I need legal advice about my case", "legal_help"},
		{"urgent, the police are at my door", "emergency"},
		{"can you recommend someone?", "search_request"},
		{"what happens after filing?", "question"},
		{"the landlord stopped responding", "statement"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, extractIntent(tt.message), "message=%q", tt.message)
	}
}

func TestIntentConfidence(t *testing.T) {
	t.Parallel()

	// Two greeting patterns match out of eight: 2/8*2 = 0.5.
	assert.InDelta(t, 0.5, intentConfidence("hi, good morning", "greeting"), 0.001)

	// Intents without a pattern table fall back to 0.5.
	assert.InDelta(t, 0.5, intentConfidence("what next?", "question"), 0.001)

	// Confidence is capped at 1.0.
	many := "legal law lawyer advocate court case help problem issue"
	assert.InDelta(t, 1.0, intentConfidence(many, "legal_help"), 0.001)
}

func TestDialogueProcess(t *testing.T) {
	t.Parallel()

	a := NewDialogue()
	state := &State{
		CurrentMessage: "hello, I need help with a legal issue",
		History:        []domain.HistoryEntry{{Content: "hello, I need help with a legal issue"}},
		Memory:         map[string]any{},
	}

	require.NoError(t, a.Process(context.Background(), state))

	assert.Equal(t, domain.StageInformationGathering, state.Stage)
	assert.Equal(t, "greeting", state.Intent)
	assert.Equal(t, "gather_information", state.NextAction)
	assert.Greater(t, state.Confidence, 0.0)
}

func TestNextActionForStage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "provide_greeting", nextActionForStage(domain.StageGreeting))
	assert.Equal(t, "gather_information", nextActionForStage(domain.StageInformationGathering))
	assert.Equal(t, "provide_legal_guidance", nextActionForStage(domain.StageLegalGuidance))
	assert.Equal(t, "recommend_advocates", nextActionForStage(domain.StageAdvocateRecommendation))
	assert.Equal(t, "continue_conversation", nextActionForStage(domain.StageFollowUp))
}
