package agent

import (
	"context"
	"log/slog"
	"strings"

	"github.com/legallink/assist/internal/domain"
)

// ClassificationAgent classifies the legal domain and urgency of the current
// message and extracts structured entities into the shared state.
type ClassificationAgent struct {
	classifier Classifier
}

// NewClassification creates the classification agent over a classifier.
func NewClassification(classifier Classifier) *ClassificationAgent {
	return &ClassificationAgent{classifier: classifier}
}

func (a *ClassificationAgent) Name() string { return "classification" }

// Process fills in legal domain, urgency, and entities, then folds newly
// learned facts into the user context.
func (a *ClassificationAgent) Process(ctx context.Context, state *State) error {
	slog.Debug("classification agent processing", "session_id", state.SessionID)

	state.LegalDomain = a.classifier.Domain(state.CurrentMessage)
	state.Urgency = state.Urgency.AtLeast(a.classifier.Urgency(state.CurrentMessage))
	state.Entities = a.classifier.ExtractEntities(state.CurrentMessage)

	a.updateUserContext(state)

	return nil
}

func (a *ClassificationAgent) updateUserContext(state *State) {
	if len(state.Entities.Location) > 0 {
		state.UserContext.MergeLocation(state.Entities.Location)
	}

	if len(state.Entities.LegalTerms) > 0 && state.UserContext.LegalIssue == "" {
		state.UserContext.LegalIssue = strings.Join(state.Entities.LegalTerms, " ")
	}

	if len(state.Entities.Amounts) > 0 {
		max := 0.0
		for _, amt := range state.Entities.Amounts {
			if amt.Value > max {
				max = amt.Value
			}
		}
		state.UserContext.Budget = &domain.BudgetRange{Min: 0, Max: int(max)}
	}

	state.UserContext.Urgency = state.UserContext.Urgency.AtLeast(state.Urgency)
}
