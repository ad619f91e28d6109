package domain

// RuleStatus is the verdict returned by a verification node.
type RuleStatus string

const (
	StatusOK        RuleStatus = "OK"
	StatusRewrite   RuleStatus = "REWRITE"
	StatusTooLong   RuleStatus = "TOO_LONG"
	StatusNotPolite RuleStatus = "NOT_POLITE"
	StatusUnclear   RuleStatus = "UNCLEAR"
)

// Track identifies one of the two sub-paths of the workflow graph.
type Track string

const (
	TrackEmergency Track = "emergency"
	TrackNormal    Track = "normal"
)

// Verdicts returns the replies a verifier may give on the track.
func (t Track) Verdicts() []RuleStatus {
	if t == TrackEmergency {
		return []RuleStatus{StatusOK, StatusRewrite}
	}
	return []RuleStatus{StatusOK, StatusTooLong, StatusNotPolite, StatusUnclear}
}

// Fallback is the verdict used when a verifier reply is outside Verdicts.
func (t Track) Fallback() RuleStatus {
	if t == TrackEmergency {
		return StatusRewrite
	}
	return StatusUnclear
}

// ParseVerdict maps a raw verifier reply onto the track's closed set.
// Matching is exact; anything else becomes the track fallback.
func (t Track) ParseVerdict(reply string) RuleStatus {
	for _, v := range t.Verdicts() {
		if RuleStatus(reply) == v {
			return v
		}
	}
	return t.Fallback()
}
