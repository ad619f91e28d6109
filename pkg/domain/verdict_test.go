package domain

import "testing"

func TestTrack_ParseVerdict(t *testing.T) {
	tests := []struct {
		track Track
		reply string
		want  RuleStatus
	}{
		{TrackEmergency, "OK", StatusOK},
		{TrackEmergency, "REWRITE", StatusRewrite},
		{TrackEmergency, "TOO_LONG", StatusRewrite},
		{TrackEmergency, "ok", StatusRewrite},
		{TrackNormal, "OK", StatusOK},
		{TrackNormal, "TOO_LONG", StatusTooLong},
		{TrackNormal, "NOT_POLITE", StatusNotPolite},
		{TrackNormal, "UNCLEAR", StatusUnclear},
		{TrackNormal, "REWRITE", StatusUnclear},
		{TrackNormal, "Looks fine to me", StatusUnclear},
		{TrackNormal, "", StatusUnclear},
	}

	for _, tt := range tests {
		t.Run(string(tt.track)+"/"+tt.reply, func(t *testing.T) {
			if got := tt.track.ParseVerdict(tt.reply); got != tt.want {
				t.Errorf("ParseVerdict(%q) = %s, want %s", tt.reply, got, tt.want)
			}
		})
	}
}

func TestParseIntent(t *testing.T) {
	tests := []struct {
		in     string
		want   Intent
		wantOK bool
	}{
		{"EMERGENCY", IntentEmergency, true},
		{"emergency", IntentEmergency, true},
		{"Request", IntentRequest, true},
		{"status", IntentStatus, true},
		{"other", IntentOther, true},
		{"BOGUS", "", false},
		{" emergency", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseIntent(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseIntent(%q) = (%s, %v), want (%s, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}
