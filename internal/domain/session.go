// Package domain contains core domain types for the LegalLink assistant.
package domain

import (
	"time"
)

// ConversationStage identifies where a session is in the consultation flow.
type ConversationStage string

const (
	StageGreeting               ConversationStage = "greeting"
	StageInformationGathering   ConversationStage = "information_gathering"
	StageLegalGuidance          ConversationStage = "legal_guidance"
	StageAdvocateRecommendation ConversationStage = "advocate_recommendation"
	StageFollowUp               ConversationStage = "follow_up"
	StageClosure                ConversationStage = "closure"
)

// UrgencyLevel grades how time-critical a legal matter is.
type UrgencyLevel string

const (
	UrgencyLow      UrgencyLevel = "LOW"
	UrgencyMedium   UrgencyLevel = "MEDIUM"
	UrgencyHigh     UrgencyLevel = "HIGH"
	UrgencyCritical UrgencyLevel = "CRITICAL"
)

// urgencyRank orders urgency levels for monotonic raises.
var urgencyRank = map[UrgencyLevel]int{
	UrgencyLow:      0,
	UrgencyMedium:   1,
	UrgencyHigh:     2,
	UrgencyCritical: 3,
}

// AtLeast returns the higher of the two urgency levels. Within a single turn
// urgency may only be raised, never lowered.
func (u UrgencyLevel) AtLeast(other UrgencyLevel) UrgencyLevel {
	if urgencyRank[other] > urgencyRank[u] {
		return other
	}
	return u
}

// Specialization is the advocate practice-area tag used for matching.
type Specialization string

const (
	SpecCriminal  Specialization = "CRIMINAL"
	SpecCivil     Specialization = "CIVIL"
	SpecCorporate Specialization = "CORPORATE"
	SpecFamily    Specialization = "FAMILY"
	SpecCyber     Specialization = "CYBER"
	SpecIP        Specialization = "INTELLECTUAL_PROPERTY"
	SpecTaxation  Specialization = "TAXATION"
	SpecLabor     Specialization = "LABOR"
	SpecOther     Specialization = "OTHER"
)

// BudgetRange bounds what a user expects to spend on consultation, in INR.
type BudgetRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// UserContext accumulates what is known about the user's legal matter.
type UserContext struct {
	LegalIssue string            `json:"legal_issue,omitempty"`
	Location   map[string]string `json:"location,omitempty"` // city, state
	Urgency    UrgencyLevel      `json:"urgency,omitempty"`
	Budget     *BudgetRange      `json:"budget,omitempty"`
	Language   string            `json:"language,omitempty"`
}

// HasLocation reports whether any location field carries a value.
func (c *UserContext) HasLocation() bool {
	for _, v := range c.Location {
		if v != "" {
			return true
		}
	}
	return false
}

// MergeLocation adds location fields without overwriting existing values.
func (c *UserContext) MergeLocation(loc map[string]string) {
	if len(loc) == 0 {
		return
	}
	if c.Location == nil {
		c.Location = make(map[string]string, len(loc))
	}
	for k, v := range loc {
		if c.Location[k] == "" {
			c.Location[k] = v
		}
	}
}

// HistoryEntry is one recorded turn in a session's query history.
type HistoryEntry struct {
	Timestamp time.Time      `json:"timestamp"`
	Role      MessageType    `json:"role"`
	Content   string         `json:"content"`
	Intent    string         `json:"intent,omitempty"`
	Entities  map[string]any `json:"entities,omitempty"`
}

// Session is the durable cross-turn conversational context for a user.
// It is owned by the orchestrator for the duration of a turn and by the
// session store between turns.
type Session struct {
	SessionID        string            `json:"session_id"`
	UserID           string            `json:"user_id"`
	Stage            ConversationStage `json:"conversation_stage"`
	QueryHistory     []HistoryEntry    `json:"query_history"`
	UserContext      UserContext       `json:"user_context"`
	Memory           map[string]any    `json:"memory"`
	InteractionCount int               `json:"interaction_count"`
	CreatedAt        time.Time         `json:"created_at"`
	LastActivity     time.Time         `json:"last_activity"`
}

// Touch records activity on the session.
func (s *Session) Touch(now time.Time) {
	s.LastActivity = now
	s.InteractionCount++
}

// Expired reports whether the session has exceeded the inactivity TTL.
func (s *Session) Expired(ttl time.Duration, now time.Time) bool {
	return now.Sub(s.LastActivity) > ttl
}
