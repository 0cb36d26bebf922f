package agent

import (
	"context"
	"log/slog"
	"strings"

	"github.com/legallink/assist/internal/domain"
)

// ClarificationQuestion is one question asked to fill a missing context field.
type ClarificationQuestion struct {
	Field    string `json:"field"`
	Question string `json:"question"`
	Type     string `json:"type"`
}

// clarificationQuestions are the canned questions per missing field, in the
// order they should be asked.
var clarificationQuestions = []ClarificationQuestion{
	{Field: "location", Question: "I need to know your location to provide relevant legal guidance and find local advocates.", Type: "text"},
	{Field: "legal_issue", Question: "Could you please describe your legal issue in more detail?", Type: "text"},
	{Field: "urgency", Question: "How urgent is this matter? Is this an emergency situation?", Type: "text"},
	{Field: "budget", Question: "Do you have a budget range in mind for legal consultation?", Type: "text"},
}

// ClarificationAgent detects missing context and asks for it.
type ClarificationAgent struct{}

// NewClarification creates the clarification agent.
func NewClarification() *ClarificationAgent {
	return &ClarificationAgent{}
}

func (a *ClarificationAgent) Name() string { return "clarification" }

// Evaluate checks the user context for gaps and proposes questions.
func (a *ClarificationAgent) Evaluate(ctx context.Context, snap Snapshot) (Delta, error) {
	slog.Debug("clarification agent processing", "session_id", snap.SessionID)

	missing := missingFields(snap.UserContext)

	if len(missing) == 0 {
		return Delta{
			Response: map[string]any{
				"clarification_needed": false,
			},
			NextAction: "proceed_with_guidance",
		}, nil
	}

	questions := make([]ClarificationQuestion, 0, len(missing))
	for _, q := range clarificationQuestions {
		for _, field := range missing {
			if q.Field == field {
				questions = append(questions, q)
			}
		}
	}

	return Delta{
		Response: map[string]any{
			"clarification_needed": true,
			"questions":            questions,
		},
		NextAction: "request_clarification",
	}, nil
}

func missingFields(uc domain.UserContext) []string {
	var missing []string

	if !uc.HasLocation() {
		missing = append(missing, "location")
	}
	if uc.LegalIssue == "" {
		missing = append(missing, "legal_issue")
	}
	if (uc.Urgency == "" || uc.Urgency == domain.UrgencyLow) &&
		!strings.Contains(strings.ToLower(uc.LegalIssue), "urgent") {
		missing = append(missing, "urgency")
	}
	if uc.Budget == nil {
		missing = append(missing, "budget")
	}

	return missing
}
