package agent

import (
	"context"
	"log/slog"
	"strings"

	"github.com/legallink/assist/internal/domain"
)

// RiskAssessment is the risk agent's verdict for a turn.
type RiskAssessment struct {
	Level                string   `json:"level"`
	Factors              []string `json:"factors"`
	Recommendations      []string `json:"recommendations"`
	RequiresLegalCounsel bool     `json:"requires_legal_counsel"`
}

var highRiskIndicators = []string{"lawsuit", "court notice", "arrest", "bail", "eviction", "seizure"}
var mediumRiskIndicators = []string{"dispute", "contract breach", "warning", "notice"}

// riskFactorCategories tag a message with the kinds of risk it carries. The
// slice order keeps factor output deterministic.
var riskFactorCategories = []struct {
	category string
	keywords []string
}{
	{"time_sensitive", []string{"deadline", "court date", "hearing", "urgent", "immediate"}},
	{"financial", []string{"money", "damages", "compensation", "payment", "fine"}},
	{"legal_proceedings", []string{"case", "lawsuit", "court", "judge", "hearing"}},
	{"criminal", []string{"police", "arrest", "charges", "bail", "crime"}},
}

// RiskAssessmentAgent grades legal risk independently of the classifier's
// urgency signal; the fusion policy reads both.
type RiskAssessmentAgent struct{}

// NewRiskAssessment creates the risk agent.
func NewRiskAssessment() *RiskAssessmentAgent {
	return &RiskAssessmentAgent{}
}

func (a *RiskAssessmentAgent) Name() string { return "risk_assessment" }

// Evaluate derives the risk tier, contributing factors, and recommendations.
func (a *RiskAssessmentAgent) Evaluate(ctx context.Context, snap Snapshot) (Delta, error) {
	slog.Debug("risk assessment agent processing", "session_id", snap.SessionID)

	level := riskLevel(snap.CurrentMessage, snap.Urgency)

	assessment := RiskAssessment{
		Level:                level,
		Factors:              riskFactors(snap.CurrentMessage),
		Recommendations:      riskRecommendations(level),
		RequiresLegalCounsel: level == "HIGH",
	}

	return Delta{
		Response: map[string]any{
			"risk_assessment": assessment,
		},
	}, nil
}

func riskLevel(message string, urgency domain.UrgencyLevel) string {
	lower := strings.ToLower(message)

	for _, indicator := range highRiskIndicators {
		if strings.Contains(lower, indicator) {
			return "HIGH"
		}
	}

	switch urgency {
	case domain.UrgencyHigh, domain.UrgencyCritical:
		return "HIGH"
	case domain.UrgencyMedium:
		return "MEDIUM"
	}

	for _, indicator := range mediumRiskIndicators {
		if strings.Contains(lower, indicator) {
			return "MEDIUM"
		}
	}

	return "LOW"
}

func riskFactors(message string) []string {
	lower := strings.ToLower(message)
	var factors []string
	for _, entry := range riskFactorCategories {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				factors = append(factors, entry.category)
				break
			}
		}
	}
	return factors
}

func riskRecommendations(level string) []string {
	switch level {
	case "HIGH":
		return []string{
			"Seek immediate legal consultation",
			"Do not delay in taking action",
			"Document everything immediately",
			"Consider emergency legal remedies",
		}
	case "MEDIUM":
		return []string{
			"Consult with an advocate soon",
			"Gather all relevant documents",
			"Avoid making any commitments without legal advice",
		}
	default:
		return []string{
			"Consider legal consultation for guidance",
			"Research your rights and options",
			"Keep records of all relevant information",
		}
	}
}
