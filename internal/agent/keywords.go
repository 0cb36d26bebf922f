package agent

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/legallink/assist/internal/domain"
)

// Classifier extracts the legal domain, urgency, and entities from a message.
// The default implementation is keyword-driven; a model-backed classifier can
// be substituted without touching the agents.
type Classifier interface {
	Domain(message string) string
	Urgency(message string) domain.UrgencyLevel
	ExtractEntities(message string) Entities
}

// domainEntry pairs a legal domain with its trigger keywords. The table is an
// ordered slice: on a score tie the earlier domain wins, so classification is
// deterministic.
type domainEntry struct {
	name     string
	keywords []string
}

var domainTable = []domainEntry{
	{"criminal", []string{"crime", "criminal", "police", "fir", "arrest", "bail", "murder", "theft", "assault"}},
	{"civil", []string{"civil", "contract", "breach", "damages", "tort", "negligence", "liability"}},
	{"property", []string{"property", "land", "real estate", "sale", "purchase", "title", "ownership", "boundary"}},
	{"family", []string{"family", "marriage", "divorce", "custody", "maintenance", "adoption", "inheritance"}},
	{"corporate", []string{"company", "corporate", "business", "shares", "director", "board", "compliance"}},
	{"tax", []string{"tax", "income tax", "gst", "taxation", "return", "assessment", "revenue"}},
	{"consumer", []string{"consumer", "product", "service", "complaint", "deficiency", "compensation"}},
	{"labor", []string{"labor", "employment", "worker", "salary", "termination", "pf", "esi"}},
	{"intellectual", []string{"patent", "trademark", "copyright", "ip", "intellectual property", "brand"}},
	{"constitutional", []string{"constitutional", "fundamental rights", "article", "constitution", "writ"}},
}

var urgentKeywords = []string{"urgent", "emergency", "immediate", "asap", "quickly", "rush", "critical"}
var mediumKeywords = []string{"soon", "within", "week", "month", "need help", "important"}

// cityTable maps city mentions to city/state location info.
var cityTable = []struct {
	key   string
	city  string
	state string
}{
	{"mumbai", "Mumbai", "Maharashtra"},
	{"delhi", "Delhi", "Delhi"},
	{"bangalore", "Bangalore", "Karnataka"},
	{"bengaluru", "Bangalore", "Karnataka"},
	{"chennai", "Chennai", "Tamil Nadu"},
	{"kolkata", "Kolkata", "West Bengal"},
	{"hyderabad", "Hyderabad", "Telangana"},
	{"pune", "Pune", "Maharashtra"},
	{"ahmedabad", "Ahmedabad", "Gujarat"},
	{"jaipur", "Jaipur", "Rajasthan"},
	{"lucknow", "Lucknow", "Uttar Pradesh"},
	{"kanpur", "Kanpur", "Uttar Pradesh"},
	{"nagpur", "Nagpur", "Maharashtra"},
	{"indore", "Indore", "Madhya Pradesh"},
	{"bhopal", "Bhopal", "Madhya Pradesh"},
}

var legalTermVocab = []string{
	"contract", "agreement", "breach", "damages", "compensation",
	"lawsuit", "litigation", "settlement", "court", "judge",
	"property", "tenant", "landlord", "rent", "lease",
	"divorce", "custody", "alimony", "marriage", "separation",
	"criminal", "theft", "assault", "bail", "arrest",
}

var amountPattern = regexp.MustCompile(`(?i)(?:₹|Rs\.?|INR)\s*(\d+(?:,\d{3})*(?:\.\d{2})?)|(\d+(?:,\d{3})*(?:\.\d{2})?)\s*(?:₹|Rs\.?|INR|rupees?)`)

var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d{1,2}[/-]\d{1,2}[/-]\d{4}`),
	regexp.MustCompile(`(?i)\d{1,2}\s+(January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{4}`),
	regexp.MustCompile(`(?i)(last|next|this)\s+(week|month|year)`),
	regexp.MustCompile(`(?i)\b(yesterday|today|tomorrow)\b`),
}

// KeywordClassifier classifies messages with fixed dictionaries. Same message
// in, same classification out.
type KeywordClassifier struct{}

// NewKeywordClassifier creates the dictionary-based classifier.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

// Domain scores each legal domain by keyword hits and returns the highest.
// Returns "general" when nothing matches.
func (c *KeywordClassifier) Domain(message string) string {
	lower := strings.ToLower(message)

	best := "general"
	bestScore := 0
	for _, entry := range domainTable {
		score := 0
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				score++
			}
		}
		if score > bestScore {
			best = entry.name
			bestScore = score
		}
	}
	return best
}

// Urgency grades how time-critical a message reads.
func (c *KeywordClassifier) Urgency(message string) domain.UrgencyLevel {
	lower := strings.ToLower(message)

	for _, kw := range urgentKeywords {
		if strings.Contains(lower, kw) {
			return domain.UrgencyHigh
		}
	}
	for _, kw := range mediumKeywords {
		if strings.Contains(lower, kw) {
			return domain.UrgencyMedium
		}
	}
	return domain.UrgencyLow
}

// ExtractEntities pulls location, legal terms, amounts, and dates from text.
func (c *KeywordClassifier) ExtractEntities(message string) Entities {
	return Entities{
		Location:   extractLocation(message),
		LegalTerms: extractLegalTerms(message),
		Amounts:    extractAmounts(message),
		Dates:      extractDates(message),
	}
}

func extractLocation(message string) map[string]string {
	lower := strings.ToLower(message)
	for _, entry := range cityTable {
		if strings.Contains(lower, entry.key) {
			return map[string]string{"city": entry.city, "state": entry.state}
		}
	}
	return nil
}

func extractLegalTerms(message string) []string {
	lower := strings.ToLower(message)
	var found []string
	for _, term := range legalTermVocab {
		if strings.Contains(lower, term) {
			found = append(found, term)
		}
	}
	return found
}

func extractAmounts(message string) []Amount {
	var amounts []Amount
	for _, match := range amountPattern.FindAllStringSubmatch(message, -1) {
		raw := match[1]
		if raw == "" {
			raw = match[2]
		}
		if raw == "" {
			continue
		}
		value, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
		if err != nil {
			continue
		}
		amounts = append(amounts, Amount{Value: value, Currency: "INR", Text: match[0]})
	}
	return amounts
}

func extractDates(message string) []string {
	var dates []string
	for _, p := range datePatterns {
		dates = append(dates, p.FindAllString(message, -1)...)
	}
	return dates
}
