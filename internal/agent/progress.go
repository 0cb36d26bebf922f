package agent

import (
	"context"
	"log/slog"

	"github.com/legallink/assist/internal/domain"
)

// CompletionStatus summarizes which consultation goals have been met.
type CompletionStatus struct {
	RequirementsMet map[string]bool `json:"requirements_met"`
	CompletionScore float64         `json:"completion_score"`
	ReadyForClosure bool            `json:"ready_for_closure"`
}

// progressTotalSteps covers greeting, information gathering, legal guidance,
// recommendations, and closure.
const progressTotalSteps = 5

// ProgressAgent tracks how far the consultation has advanced and whether it
// can close.
type ProgressAgent struct{}

// NewProgress creates the progress agent.
func NewProgress() *ProgressAgent {
	return &ProgressAgent{}
}

func (a *ProgressAgent) Name() string { return "progress" }

// Process computes progress metrics and the completion status.
func (a *ProgressAgent) Process(ctx context.Context, state *State) error {
	slog.Debug("progress agent processing", "session_id", state.SessionID)

	state.ResponseData["progress"] = a.calculateProgress(state)
	state.ResponseData["completion_status"] = a.assessCompletion(state)

	return nil
}

func (a *ProgressAgent) calculateProgress(state *State) domain.Progress {
	completed := 0
	if len(state.History) > 0 {
		completed++ // greeting
	}
	if state.UserContext.LegalIssue != "" {
		completed++ // information gathering
	}
	if _, ok := state.Memory["legal_guidance_provided"]; ok {
		completed++ // legal guidance
	}
	if _, ok := state.ResponseData["advocate_search"]; ok {
		completed++ // recommendations
	}

	return domain.Progress{
		Percentage:     float64(completed) / float64(progressTotalSteps) * 100,
		CompletedSteps: completed,
		TotalSteps:     progressTotalSteps,
		CurrentStage:   state.Stage,
	}
}

func (a *ProgressAgent) assessCompletion(state *State) CompletionStatus {
	_, guidanceProvided := state.Memory["legal_guidance_provided"]
	_, recommendationsGiven := state.ResponseData["recommendations"]

	requirements := map[string]bool{
		"legal_issue_identified":  state.UserContext.LegalIssue != "",
		"location_provided":       state.UserContext.HasLocation(),
		"legal_guidance_provided": guidanceProvided,
		"recommendations_given":   recommendationsGiven,
	}

	met := 0
	for _, ok := range requirements {
		if ok {
			met++
		}
	}
	score := float64(met) / float64(len(requirements))

	return CompletionStatus{
		RequirementsMet: requirements,
		CompletionScore: score,
		ReadyForClosure: score >= 0.75,
	}
}
