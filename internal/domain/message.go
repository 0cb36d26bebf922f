package domain

import (
	"time"
)

// MessageType categorizes chat messages and response envelopes.
type MessageType string

const (
	MessageUser      MessageType = "user"
	MessageAssistant MessageType = "assistant"
	MessageSystem    MessageType = "system"
	MessageError     MessageType = "error"
)

// TurnRequest is the transport-agnostic inbound message envelope.
type TurnRequest struct {
	SessionID string         `json:"session_id,omitempty"`
	UserID    string         `json:"user_id"`
	Message   string         `json:"message"`
	Context   map[string]any `json:"context,omitempty"`
}

// QuickAction is an interactive shortcut offered alongside a response.
type QuickAction struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Action      string `json:"action"`
	Description string `json:"description,omitempty"`
}

// SuggestedAction is an actionable recommendation extracted from guidance.
type SuggestedAction struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Timeline    string `json:"timeline,omitempty"`
}

// AdvocateCriteria describes the search profile for advocate matching.
type AdvocateCriteria struct {
	Specialization Specialization    `json:"specialization"`
	Location       map[string]string `json:"location,omitempty"`
	Urgency        UrgencyLevel      `json:"urgency"`
	Budget         *BudgetRange      `json:"budget,omitempty"`
}

// AdvocateRecommendation pairs search criteria with a human-readable pitch.
type AdvocateRecommendation struct {
	Type     string           `json:"type"`
	Criteria AdvocateCriteria `json:"criteria"`
	Message  string           `json:"message,omitempty"`
}

// Progress summarizes how far the consultation has advanced.
type Progress struct {
	Percentage     float64           `json:"percentage"`
	CompletedSteps int               `json:"completed_steps"`
	TotalSteps     int               `json:"total_steps"`
	CurrentStage   ConversationStage `json:"current_stage"`
}

// ResponseMetadata carries per-turn classification details back to the client.
type ResponseMetadata struct {
	Intent            string            `json:"intent,omitempty"`
	Confidence        float64           `json:"confidence"`
	LegalDomain       string            `json:"legal_domain,omitempty"`
	UrgencyLevel      UrgencyLevel      `json:"urgency_level,omitempty"`
	ConversationStage ConversationStage `json:"conversation_stage,omitempty"`
	RAGConfidence     float64           `json:"rag_confidence,omitempty"`
	TrainingDataUsed  bool              `json:"training_data_used,omitempty"`
	Enhancement       string            `json:"enhancement,omitempty"`
}

// TurnResponse is the transport-agnostic outbound envelope for one turn.
type TurnResponse struct {
	Type                    MessageType              `json:"type"`
	Content                 string                   `json:"content"`
	Timestamp               time.Time                `json:"timestamp"`
	SessionID               string                   `json:"session_id,omitempty"`
	Metadata                ResponseMetadata         `json:"metadata"`
	QuickActions            []QuickAction            `json:"quick_actions,omitempty"`
	AdvocateRecommendations []AdvocateRecommendation `json:"advocate_recommendations,omitempty"`
	SuggestedActions        []SuggestedAction        `json:"suggested_actions,omitempty"`
	Progress                *Progress                `json:"progress,omitempty"`
}
