// Package rag combines retrieved legal knowledge with model generation and
// gates the result for quality before it reaches the conversation layer.
package rag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/legallink/assist/internal/domain"
	"github.com/legallink/assist/internal/inference"
	"github.com/legallink/assist/internal/retrieval"
)

// Query carries one user question into the RAG pipeline.
type Query struct {
	Text      string
	UserID    string
	SessionID string
	QueryType string // procedure, case_law, rights, urgent
	Location  string
	Urgency   domain.UrgencyLevel
}

// Result is the RAG pipeline output for one query.
type Result struct {
	Content          string
	Sources          []string
	ContextUsed      bool
	TrainingDataUsed bool
	CaseLawUsed      bool
	Simplified       bool
	SuggestedActions []domain.SuggestedAction
	Urgency          domain.UrgencyLevel
}

// Engine runs retrieval-augmented generation over the legal corpus.
type Engine struct {
	legal      inference.Client
	language   inference.Client
	vector     retrieval.Searcher
	caseLaw    retrieval.CaseLawSearcher
	vectorTopK int
	caseLimit  int
}

// NewEngine wires the two models and the retrieval backends. vector and
// caseLaw may be nil; the engine then generates without that context.
func NewEngine(legal, language inference.Client, vector retrieval.Searcher, caseLaw retrieval.CaseLawSearcher, vectorTopK, caseLimit int) *Engine {
	if vectorTopK <= 0 {
		vectorTopK = 5
	}
	if caseLimit <= 0 {
		caseLimit = 5
	}
	return &Engine{
		legal:      legal,
		language:   language,
		vector:     vector,
		caseLaw:    caseLaw,
		vectorTopK: vectorTopK,
		caseLimit:  caseLimit,
	}
}

// contextTokenBudget caps the retrieved context so the prompt leaves room for
// the query and the answer.
const contextTokenBudget = 1500

// Process answers a legal query: retrieve context, generate with the legal
// model, simplify with the language model when warranted, then format.
func (e *Engine) Process(ctx context.Context, q Query) (*Result, error) {
	trainingContext := e.trainingContext(ctx, q)
	caseLawContext := e.caseLawContext(ctx, q)
	combined := combineContexts(trainingContext, caseLawContext)

	system := e.systemPrompt(q)

	answer, err := e.legal.Generate(ctx, q.Text, combined, system)
	if err != nil {
		return nil, fmt.Errorf("legal model generation: %w", err)
	}

	simplified, didSimplify := e.simplifyIfNeeded(ctx, answer, q)

	formatted := formatAnswer(simplified, q)

	return &Result{
		Content:          formatted,
		Sources:          extractSources(combined),
		ContextUsed:      combined != "",
		TrainingDataUsed: trainingContext != "",
		CaseLawUsed:      caseLawContext != "",
		Simplified:       didSimplify,
		SuggestedActions: ExtractSuggestedActions(formatted),
		Urgency:          AssessUrgency(formatted, q.Text),
	}, nil
}

func (e *Engine) trainingContext(ctx context.Context, q Query) string {
	if e.vector == nil {
		return ""
	}

	docs, err := e.vector.SemanticSearch(ctx, enhanceQuery(q), e.vectorTopK)
	if err != nil {
		slog.Warn("semantic search failed, continuing without training context", "error", err)
		return ""
	}

	var b strings.Builder
	for _, doc := range docs {
		if b.Len()+len(doc.Content) > contextTokenBudget*4 { // rough chars-per-token bound
			break
		}
		b.WriteString(doc.Content)
		b.WriteString("\n\n")
	}
	return strings.TrimSpace(b.String())
}

func (e *Engine) caseLawContext(ctx context.Context, q Query) string {
	if e.caseLaw == nil {
		return ""
	}

	cases, err := e.caseLaw.CaseLawSearch(ctx, q.Text, q.Location, e.caseLimit)
	if err != nil {
		slog.Warn("case-law search failed, continuing without precedents", "error", err)
		return ""
	}

	parts := make([]string, 0, len(cases))
	for _, c := range cases {
		parts = append(parts, fmt.Sprintf(
			"Case Law: %s\nCourt: %s\nDate: %s\nSummary: %s\nRelevance: %.0f%%",
			c.Title, c.Court, c.Date, c.Summary, c.Relevance))
	}
	return strings.Join(parts, "\n---\n")
}

// enhanceQuery widens the search query with query-type, jurisdiction, and
// practice-area hints inferred from the question.
func enhanceQuery(q Query) string {
	parts := []string{q.Text}

	if q.QueryType != "" {
		parts = append(parts, q.QueryType)
	}
	if q.Location != "" {
		parts = append(parts, "jurisdiction "+q.Location)
	}

	lower := strings.ToLower(q.Text)
	switch {
	case containsAny(lower, []string{"fir", "police", "crime", "criminal"}):
		parts = append(parts, "criminal law procedure")
	case containsAny(lower, []string{"property", "land", "title", "ownership"}):
		parts = append(parts, "property law real estate")
	case containsAny(lower, []string{"marriage", "divorce", "family"}):
		parts = append(parts, "family law")
	case containsAny(lower, []string{"contract", "agreement", "business"}):
		parts = append(parts, "contract law civil")
	}

	return strings.Join(parts, " ")
}

func combineContexts(training, caseLaw string) string {
	var parts []string
	if training != "" {
		parts = append(parts, "=== TRAINING DATA CONTEXT ===\n"+training)
	}
	if caseLaw != "" {
		parts = append(parts, "=== CASE LAW CONTEXT ===\n"+caseLaw)
	}
	return strings.Join(parts, "\n\n")
}

const baseSystemPrompt = `You are LegalLink AI, an expert legal assistant specializing in Indian law.
You have access to comprehensive legal training data including case law, procedures, and legal principles.

Your responsibilities:
1. Provide accurate legal guidance based on Indian legal system
2. Cite relevant sections, acts, cases, and legal precedents when applicable
3. Explain legal procedures step-by-step when asked
4. Clarify legal concepts in simple, understandable language
5. Always emphasize the importance of consulting qualified legal professionals for specific cases

Guidelines:
- Be precise and factual in your responses
- Use the provided context to enhance your answers
- If uncertain about any legal point, clearly state your limitations
- Provide practical, actionable advice while maintaining legal accuracy
- Structure your responses clearly with headings and bullet points when appropriate`

func (e *Engine) systemPrompt(q Query) string {
	prompt := baseSystemPrompt

	switch {
	case q.QueryType == "procedure":
		prompt += "\n\nFocus on: Providing step-by-step procedural guidance with timeline and required documents."
	case q.QueryType == "case_law":
		prompt += "\n\nFocus on: Relevant case precedents, legal principles, and judicial interpretations."
	case q.QueryType == "rights":
		prompt += "\n\nFocus on: Legal rights, protections available, and remedies under Indian law."
	case q.Urgency == domain.UrgencyHigh || q.Urgency == domain.UrgencyCritical:
		prompt += "\n\nNote: This appears to be an urgent legal matter. Prioritize immediate actionable steps and emergency procedures."
	}

	return prompt
}

// InferQueryType classifies the question for prompt selection.
func InferQueryType(query string) string {
	lower := strings.ToLower(query)
	switch {
	case containsAny(lower, []string{"how to", "procedure", "process", "steps"}):
		return "procedure"
	case containsAny(lower, []string{"case", "judgment", "precedent", "court"}):
		return "case_law"
	case containsAny(lower, []string{"right", "rights", "entitled", "protection"}):
		return "rights"
	case containsAny(lower, []string{"urgent", "emergency", "immediate", "asap"}):
		return "urgent"
	default:
		return ""
	}
}

var complexLegalTerms = []string{
	"whereas", "heretofore", "notwithstanding", "pursuant", "aforementioned",
	"inter alia", "prima facie", "res judicata", "ultra vires", "bona fide",
}

func (e *Engine) simplifyIfNeeded(ctx context.Context, answer string, q Query) (string, bool) {
	if e.language == nil || !needsSimplification(answer, q.Text) {
		return answer, false
	}

	prompt := fmt.Sprintf(`Please simplify the following legal response to make it more understandable for a general audience while maintaining accuracy:

Original Response:
%s

Requirements:
- Use simpler language
- Maintain all legal accuracy
- Keep all important information
- Make it more accessible to non-lawyers
- If the query was in Hindi or other regional language, provide translation support

Simplified Response:`, answer)

	simplified, err := e.language.Generate(ctx, prompt, "",
		"You are a legal language simplification expert. Simplify complex legal language while maintaining accuracy.")
	if err != nil {
		slog.Warn("simplification failed, keeping original answer", "error", err)
		return answer, false
	}
	return simplified, true
}

// needsSimplification triggers on dense legal jargon, a regional-language
// query, or a very long technical answer.
func needsSimplification(answer, query string) bool {
	lower := strings.ToLower(answer)
	complexCount := 0
	for _, term := range complexLegalTerms {
		if strings.Contains(lower, term) {
			complexCount++
		}
	}

	nonASCII := false
	for _, r := range query {
		if r > 127 {
			nonASCII = true
			break
		}
	}

	return complexCount >= 3 || nonASCII || len(answer) > 1500
}

func formatAnswer(answer string, q Query) string {
	formatted := strings.TrimSpace(answer)

	if !strings.Contains(strings.ToLower(formatted), "legal professional") {
		formatted += "\n\n⚠️ **Important Disclaimer**: This is general legal information based on Indian law. For specific legal advice tailored to your situation, please consult with a qualified legal professional."
	}

	if q.Urgency == domain.UrgencyHigh || q.Urgency == domain.UrgencyCritical {
		formatted = "🚨 **Urgent Legal Matter Detected**\n\n" + formatted
	}

	return formatted
}

func extractSources(combined string) []string {
	var sources []string
	if strings.Contains(combined, "Case Law:") || strings.Contains(combined, "Case:") {
		sources = append(sources, "Case Law Database")
	}
	if strings.Contains(combined, "Court:") {
		sources = append(sources, "Court Hierarchy Information")
	}
	if strings.Contains(combined, "Section") {
		sources = append(sources, "Legal Acts and Sections")
	}
	if strings.Contains(strings.ToLower(combined), "procedure") {
		sources = append(sources, "Legal Procedures")
	}
	return sources
}

// ExtractSuggestedActions pulls actionable recommendations out of an answer.
func ExtractSuggestedActions(content string) []domain.SuggestedAction {
	lower := strings.ToLower(content)
	var actions []domain.SuggestedAction

	if strings.Contains(lower, "immediate") || strings.Contains(lower, "urgent") {
		actions = append(actions, domain.SuggestedAction{
			Type:        "immediate",
			Description: "Urgent action required",
			Priority:    "high",
			Timeline:    "within 24 hours",
		})
	}
	if strings.Contains(lower, "file") && (strings.Contains(lower, "complaint") || strings.Contains(lower, "petition")) {
		actions = append(actions, domain.SuggestedAction{
			Type:        "filing",
			Description: "File legal complaint or petition",
			Priority:    "medium",
			Timeline:    "within 1-2 weeks",
		})
	}
	if strings.Contains(lower, "advocate") || strings.Contains(lower, "lawyer") {
		actions = append(actions, domain.SuggestedAction{
			Type:        "consultation",
			Description: "Consult with legal professional",
			Priority:    "high",
			Timeline:    "as soon as possible",
		})
	}

	return actions
}

var highUrgencyKeywords = []string{
	"urgent", "immediate", "deadline", "time limit", "expire", "arrest",
	"detention", "seizure", "eviction", "termination", "emergency",
}

var mediumUrgencyKeywords = []string{
	"court date", "hearing", "notice", "summons", "legal action",
	"complaint", "dispute", "violation",
}

// AssessUrgency grades how time-critical the matter looks from the generated
// answer and the user's question.
func AssessUrgency(content, query string) domain.UrgencyLevel {
	lowerContent := strings.ToLower(content)
	lowerQuery := strings.ToLower(query)

	score := 0
	for _, kw := range highUrgencyKeywords {
		if strings.Contains(lowerContent, kw) || strings.Contains(lowerQuery, kw) {
			score += 2
		}
	}
	for _, kw := range mediumUrgencyKeywords {
		if strings.Contains(lowerContent, kw) || strings.Contains(lowerQuery, kw) {
			score++
		}
	}

	switch {
	case score >= 4:
		return domain.UrgencyCritical
	case score >= 2:
		return domain.UrgencyHigh
	case score >= 1:
		return domain.UrgencyMedium
	default:
		return domain.UrgencyLow
	}
}
