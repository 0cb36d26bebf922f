package rag

import (
	"regexp"
	"strings"
)

// EnhancementType classifies how much agentic work a RAG answer still needs.
type EnhancementType string

const (
	EnhancementNone  EnhancementType = "none"
	EnhancementMinor EnhancementType = "minor_enhancement"
	EnhancementAgent EnhancementType = "agentic_enhancement"
	EnhancementFull  EnhancementType = "full_agentic_processing"
)

// Indicators are the boolean/count signals behind a quality score.
type Indicators struct {
	HasContent        bool `json:"has_content"`
	HasSources        bool `json:"has_sources"`
	ContextUtilized   bool `json:"context_utilized"`
	ResponseLength    int  `json:"response_length"`
	SourceDiversity   int  `json:"source_diversity"`
	LegalTerminology  bool `json:"legal_terminology"`
	ActionableGuide   bool `json:"actionable_guidance"`
	CaseLawReferences bool `json:"case_law_references"`
}

// Assessment is the quality gate's verdict on a RAG answer.
type Assessment struct {
	Score            float64         `json:"score"`
	Indicators       Indicators      `json:"indicators"`
	NeedsEnhancement bool            `json:"needs_enhancement"`
	MissingElements  []string        `json:"missing_elements"`
	EnhancementType  EnhancementType `json:"enhancement_type"`
}

var legalTerms = []string{
	"section", "act", "law", "court", "petition", "complaint", "jurisdiction",
	"precedent", "statute", "regulation", "legal", "rights", "liability",
	"contract", "agreement", "violation", "offense", "penalty", "damages",
}

var actionTerms = []string{
	"should", "need to", "must", "recommended", "steps", "process",
	"file", "submit", "apply", "contact", "gather", "prepare", "visit",
}

var caseLawPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b\d{4}\b.*\b(SC|HC|SCC|AIR|PLD)\b`),
	regexp.MustCompile(`(?i)\bv\.\s+\w+`),
	regexp.MustCompile(`(?i)\bcase\s+of\b`),
	regexp.MustCompile(`(?i)\bjudgment\b`),
	regexp.MustCompile(`(?i)\bruling\b`),
}

// QualityGate scores RAG answers deterministically: the same answer always
// yields the same assessment.
type QualityGate struct{}

// NewQualityGate creates the scorer.
func NewQualityGate() *QualityGate {
	return &QualityGate{}
}

// Assess scores a generated answer given its sources and whether retrieved
// context fed the generation.
func (g *QualityGate) Assess(content string, sources []string, contextUsed bool) Assessment {
	ind := Indicators{
		HasContent:        len(strings.TrimSpace(content)) > 50,
		HasSources:        len(sources) > 0,
		ContextUtilized:   contextUsed,
		ResponseLength:    len(content),
		SourceDiversity:   distinct(sources),
		LegalTerminology:  containsAny(content, legalTerms),
		ActionableGuide:   containsAny(content, actionTerms),
		CaseLawReferences: matchesAny(content, caseLawPatterns),
	}

	score := 0.0
	if ind.HasContent {
		score += 0.2
	}
	if ind.HasSources {
		score += 0.2
	}
	if ind.ContextUtilized {
		score += 0.2
	}
	if ind.LegalTerminology {
		score += 0.1
	}
	if ind.ActionableGuide {
		score += 0.15
	}
	if ind.CaseLawReferences {
		score += 0.1
	}
	if ind.ResponseLength > 200 {
		score += 0.05
	}

	needsEnhancement := score < 0.7

	var missing []string
	if !ind.ActionableGuide {
		missing = append(missing, "actionable_guidance")
	}
	if !ind.CaseLawReferences && score > 0.3 {
		missing = append(missing, "case_law_references")
	}
	if ind.SourceDiversity < 2 {
		missing = append(missing, "diverse_sources")
	}

	enhancement := EnhancementNone
	if needsEnhancement {
		switch {
		case score < 0.3:
			enhancement = EnhancementFull
		case score < 0.6:
			enhancement = EnhancementAgent
		default:
			enhancement = EnhancementMinor
		}
	}

	return Assessment{
		Score:            score,
		Indicators:       ind,
		NeedsEnhancement: needsEnhancement,
		MissingElements:  missing,
		EnhancementType:  enhancement,
	}
}

// Sufficient reports whether an assessed answer can stand on its own as the
// primary response: high score, no enhancement flag, substantial content.
func (g *QualityGate) Sufficient(a Assessment, content string) bool {
	return a.Score > 0.7 && !a.NeedsEnhancement && len(strings.TrimSpace(content)) > 50
}

func containsAny(content string, terms []string) bool {
	lower := strings.ToLower(content)
	for _, term := range terms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

func matchesAny(content string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if p.MatchString(content) {
			return true
		}
	}
	return false
}

func distinct(values []string) int {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		seen[v] = struct{}{}
	}
	return len(seen)
}
