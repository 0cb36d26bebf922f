package agent

import (
	"context"
	"log/slog"
	"strings"

	"github.com/legallink/assist/internal/domain"
)

var specializationMapping = map[string]domain.Specialization{
	"PROPERTY":  domain.SpecCivil,
	"FAMILY":    domain.SpecFamily,
	"CONSUMER":  domain.SpecCivil,
	"CRIMINAL":  domain.SpecCriminal,
	"CIVIL":     domain.SpecCivil,
	"CORPORATE": domain.SpecCorporate,
	"CYBER":     domain.SpecCyber,
	"TAXATION":  domain.SpecTaxation,
	"TAX":       domain.SpecTaxation,
	"LABOR":     domain.SpecLabor,
}

var domainRecommendations = map[string]string{
	"PROPERTY": "Ensure all property documents are in order before consultation",
	"FAMILY":   "Gather marriage certificate and relevant family documents",
	"CONSUMER": "Keep all purchase receipts and communication records",
	"CRIMINAL": "Do not speak to authorities without legal representation",
}

// RecommendationAgent builds advocate search criteria and general advice.
type RecommendationAgent struct{}

// NewRecommendation creates the recommendation agent.
func NewRecommendation() *RecommendationAgent {
	return &RecommendationAgent{}
}

func (a *RecommendationAgent) Name() string { return "recommendation" }

// Evaluate emits advocate search criteria and urgency-tiered recommendations.
func (a *RecommendationAgent) Evaluate(ctx context.Context, snap Snapshot) (Delta, error) {
	slog.Debug("recommendation agent processing", "session_id", snap.SessionID)

	criteria := domain.AdvocateCriteria{
		Specialization: mapSpecialization(snap.LegalDomain),
		Location:       snap.UserContext.Location,
		Urgency:        snap.Urgency,
		Budget:         snap.UserContext.Budget,
	}

	return Delta{
		Response: map[string]any{
			"advocate_search": criteria,
			"recommendations": generalRecommendations(snap),
		},
	}, nil
}

func mapSpecialization(legalDomain string) domain.Specialization {
	if spec, ok := specializationMapping[strings.ToUpper(legalDomain)]; ok {
		return spec
	}
	return domain.SpecOther
}

func generalRecommendations(snap Snapshot) []string {
	var recs []string

	switch snap.Urgency {
	case domain.UrgencyCritical:
		recs = append(recs, "Contact an advocate immediately or visit the nearest legal aid center")
	case domain.UrgencyHigh:
		recs = append(recs, "Schedule a consultation with an advocate within 24-48 hours")
	default:
		recs = append(recs, "Consider scheduling a consultation with an advocate")
	}

	if rec, ok := domainRecommendations[strings.ToUpper(snap.LegalDomain)]; ok {
		recs = append(recs, rec)
	}

	return recs
}
