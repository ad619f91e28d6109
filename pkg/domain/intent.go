package domain

import "strings"

// Intent is the coarse purpose behind a sequence of phrase tokens.
type Intent string

const (
	IntentEmergency Intent = "EMERGENCY"
	IntentRequest   Intent = "REQUEST"
	IntentStatus    Intent = "STATUS"
	IntentOther     Intent = "OTHER"
)

// Intents lists every valid intent label.
var Intents = []Intent{IntentEmergency, IntentRequest, IntentStatus, IntentOther}

// ParseIntent uppercases s and reports whether it names a known intent.
// Whitespace is not trimmed; callers decide how lenient to be.
func ParseIntent(s string) (Intent, bool) {
	candidate := Intent(strings.ToUpper(s))
	for _, known := range Intents {
		if candidate == known {
			return candidate, true
		}
	}
	return "", false
}
