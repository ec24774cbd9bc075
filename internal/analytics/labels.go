package analytics

import "strings"

// OtherLabel is the category label for agents matching no rule.
const OtherLabel = "Other"

var categoryRules = []string{"Chrome", "Firefox", "Safari", "Edge", "Mobile"}

// The activity table has no Edge rule.
var rowRules = []string{"Chrome", "Firefox", "Safari", "Mobile"}

// CategoryLabel maps a raw user agent to its chart label. First match wins.
func CategoryLabel(raw string) string {
	if label, ok := matchRule(raw, categoryRules); ok {
		return label
	}
	return OtherLabel
}

// RowAgentLabel maps a raw user agent for the activity table. Unmatched
// agents keep their raw string.
func RowAgentLabel(raw string) string {
	if label, ok := matchRule(raw, rowRules); ok {
		return label
	}
	return raw
}

func matchRule(raw string, rules []string) (string, bool) {
	for _, rule := range rules {
		if strings.Contains(raw, rule) {
			return rule, true
		}
	}
	return "", false
}
