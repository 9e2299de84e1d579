package scoring

// Factor identifies one of the five scoring categories.
type Factor string

const (
	FactorEngagement Factor = "engagement"
	FactorRecency    Factor = "recency"
	FactorFrequency  Factor = "frequency"
	FactorMonetary   Factor = "monetary"
	FactorBehavior   Factor = "behavior"
)

// InteractionType is the fixed vocabulary of client touchpoints.
// The recorder rejects anything outside this set; the calculator treats
// unknown historical types as zero-point interactions.
type InteractionType string

const (
	InteractionEmailOpen     InteractionType = "email_open"
	InteractionEmailClick    InteractionType = "email_click"
	InteractionWebsiteVisit  InteractionType = "website_visit"
	InteractionDemoRequest   InteractionType = "demo_request"
	InteractionDownload      InteractionType = "download"
	InteractionSupportTicket InteractionType = "support_ticket"
	InteractionPayment       InteractionType = "payment"
	InteractionReferral      InteractionType = "referral"
)

// Maximum contribution of each factor category. The five ceilings sum to 100,
// so the final min(total, 100) clamp only matters if the rule table grows
// past a ceiling in a future edit.
const (
	maxEngagement = 30
	maxRecency    = 20
	maxFrequency  = 20
	maxMonetary   = 15
	maxBehavior   = 15
)

// Recency step thresholds: days since last activity -> points.
const (
	recencyHotDays  = 7
	recencyWarmDays = 30
	recencyColdDays = 90

	recencyHotPoints  = 20
	recencyWarmPoints = 15
	recencyColdPoints = 10
)

// Frequency step thresholds: interactions in window -> points.
const (
	frequencyHighCount = 20
	frequencyMidCount  = 10
	frequencyLowCount  = 5

	frequencyHighPoints = 20
	frequencyMidPoints  = 15
	frequencyLowPoints  = 10
)

// engagementPoints maps interaction types to engagement rule points.
// The values sum exactly to maxEngagement; rules_test.go guards this.
var engagementPoints = map[InteractionType]int{
	InteractionEmailOpen:    2,
	InteractionEmailClick:   3,
	InteractionWebsiteVisit: 5,
	InteractionDemoRequest:  15,
	InteractionDownload:     5,
}

// behaviorPoints maps interaction types to behavior rule points.
// The sum can exceed maxBehavior; the calculator clamps after summing.
var behaviorPoints = map[InteractionType]int{
	InteractionSupportTicket: 5,
	InteractionPayment:       10,
	InteractionReferral:      15,
}

// Rule is one row of the human-readable scoring rule table.
type Rule struct {
	Factor      Factor `json:"factor"`
	Condition   string `json:"condition"`
	Points      int    `json:"points"`
	Description string `json:"description"`
}

// ruleTable is the ordered, read-only rule list exposed for auditability.
// Engagement and behavior rows are matched against interaction types; the
// recency and frequency rows document the step functions the calculator
// applies directly, they are not looked up per interaction.
var ruleTable = []Rule{
	{FactorEngagement, string(InteractionEmailOpen), 2, "Opened a marketing or sales email"},
	{FactorEngagement, string(InteractionEmailClick), 3, "Clicked a link in an email"},
	{FactorEngagement, string(InteractionWebsiteVisit), 5, "Visited the website"},
	{FactorEngagement, string(InteractionDemoRequest), 15, "Requested a product demo"},
	{FactorEngagement, string(InteractionDownload), 5, "Downloaded content or resources"},
	{FactorRecency, "last_7_days", 20, "Active within the last 7 days"},
	{FactorRecency, "last_30_days", 15, "Active within the last 30 days"},
	{FactorRecency, "last_90_days", 10, "Active within the last 90 days"},
	{FactorFrequency, "20_plus_interactions", 20, "20 or more interactions in the lookback window"},
	{FactorFrequency, "10_plus_interactions", 15, "10 or more interactions in the lookback window"},
	{FactorFrequency, "5_plus_interactions", 10, "5 or more interactions in the lookback window"},
	{FactorBehavior, string(InteractionSupportTicket), 5, "Opened a support ticket"},
	{FactorBehavior, string(InteractionPayment), 10, "Made a payment"},
	{FactorBehavior, string(InteractionReferral), 15, "Referred another client"},
}

// RuleTable returns the scoring rule table. Callers must not modify the
// returned slice; a copy is returned to keep the table immutable.
func RuleTable() []Rule {
	out := make([]Rule, len(ruleTable))
	copy(out, ruleTable)
	return out
}

// InteractionTypes returns the accepted touchpoint vocabulary.
func InteractionTypes() []InteractionType {
	return []InteractionType{
		InteractionEmailOpen,
		InteractionEmailClick,
		InteractionWebsiteVisit,
		InteractionDemoRequest,
		InteractionDownload,
		InteractionSupportTicket,
		InteractionPayment,
		InteractionReferral,
	}
}

// KnownInteractionType reports whether value is part of the accepted
// touchpoint vocabulary.
func KnownInteractionType(value string) bool {
	for _, t := range InteractionTypes() {
		if string(t) == value {
			return true
		}
	}
	return false
}
