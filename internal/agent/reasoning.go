package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/legallink/assist/internal/domain"
)

// knowledgeBase maps legal domain → issue type → canned guidance.
var knowledgeBase = map[string][]struct {
	issue    string
	guidance string
}{
	"PROPERTY": {
		{"rent_disputes", "Under the Rent Control Act, tenants have specific rights regarding rent increases and eviction."},
		{"property_purchase", "Property transactions require due diligence including title verification and registration."},
		{"neighbor_disputes", "Property boundary disputes can be resolved through civil court or mediation."},
	},
	"FAMILY": {
		{"divorce", "Divorce proceedings can be filed under Hindu Marriage Act, Special Marriage Act, or personal laws."},
		{"child_custody", "Child custody decisions are made based on the best interests of the child."},
		{"domestic_violence", "Domestic Violence Act provides protection and relief to women and children."},
	},
	"CONSUMER": {
		{"product_defects", "Consumer Protection Act provides remedies for defective goods and services."},
		{"service_complaints", "Consumer courts have jurisdiction over service-related complaints."},
		{"refund_issues", "Consumers have right to refund for defective products or unsatisfactory services."},
	},
}

var lawMapping = map[string][]string{
	"PROPERTY": {"Transfer of Property Act", "Rent Control Act", "Indian Registration Act"},
	"FAMILY":   {"Hindu Marriage Act", "Special Marriage Act", "Domestic Violence Act"},
	"CONSUMER": {"Consumer Protection Act", "Indian Contract Act"},
	"CRIMINAL": {"Indian Penal Code", "Code of Criminal Procedure"},
	"CIVIL":    {"Civil Procedure Code", "Indian Contract Act"},
	"LABOR":    {"Industrial Disputes Act", "Payment of Wages Act"},
}

// LegalReasoningAgent produces guidance text, relevant laws, and next steps.
type LegalReasoningAgent struct{}

// NewLegalReasoning creates the reasoning agent.
func NewLegalReasoning() *LegalReasoningAgent {
	return &LegalReasoningAgent{}
}

func (a *LegalReasoningAgent) Name() string { return "legal_reasoning" }

// Evaluate looks up domain guidance and marks guidance as provided in memory.
func (a *LegalReasoningAgent) Evaluate(ctx context.Context, snap Snapshot) (Delta, error) {
	slog.Debug("legal reasoning agent processing", "session_id", snap.SessionID)

	return Delta{
		Response: map[string]any{
			"legal_guidance": guidanceFor(snap),
			"relevant_laws":  relevantLaws(snap.LegalDomain),
			"next_steps":     nextSteps(snap.Urgency),
		},
		MemorySet: map[string]any{
			"legal_guidance_provided": true,
		},
	}, nil
}

func guidanceFor(snap Snapshot) string {
	domainKey := strings.ToUpper(snap.LegalDomain)

	entries, ok := knowledgeBase[domainKey]
	if !ok {
		return "I recommend consulting with a qualified advocate who can provide specific guidance for your situation."
	}

	issue := strings.ToLower(snap.CurrentMessage)
	for _, entry := range entries {
		for _, keyword := range strings.Split(entry.issue, "_") {
			if strings.Contains(issue, keyword) {
				return entry.guidance
			}
		}
	}

	return fmt.Sprintf("For %s matters, it's important to understand your rights and legal options.", strings.ToLower(domainKey))
}

func relevantLaws(legalDomain string) []string {
	if laws, ok := lawMapping[strings.ToUpper(legalDomain)]; ok {
		return laws
	}
	return []string{"Indian Constitution", "Relevant State and Central Acts"}
}

func nextSteps(urgency domain.UrgencyLevel) []string {
	var steps []string
	if urgency == domain.UrgencyHigh || urgency == domain.UrgencyCritical {
		steps = append(steps, "Seek immediate legal consultation", "Document all relevant evidence")
	} else {
		steps = append(steps, "Gather all relevant documents", "Consult with a qualified advocate")
	}
	steps = append(steps,
		"Consider alternative dispute resolution if applicable",
		"Keep detailed records of all communications")
	return steps
}
