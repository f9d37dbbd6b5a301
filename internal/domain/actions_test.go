package domain

import "testing"

func TestParseAction(t *testing.T) {
	tests := []struct {
		input    string
		expected ActionType
	}{
		{"DAMAGE", ActionDamage},
		{"damage", ActionDamage},
		{"Change_State", ActionChangeState},
		{"CAST", ActionCast},
		{"INIT", ActionInit},
		{"UNKNOWN_ACTION", ActionUnknown},
		{"", ActionUnknown},
	}

	for _, tt := range tests {
		result := ParseAction(tt.input)
		if result != tt.expected {
			t.Errorf("ParseAction(%q) = %v, want %v", tt.input, result, tt.expected)
		}
	}
}

func TestActionType_String(t *testing.T) {
	tests := []struct {
		action   ActionType
		expected string
	}{
		{ActionHeal, "HEAL"},
		{ActionInvulnerable, "INVULNERABLE"},
		{ActionUnknown, "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.action.String(); got != tt.expected {
			t.Errorf("ActionType(%d).String() = %q, want %q", tt.action, got, tt.expected)
		}
	}
}

func TestActionType_Mutating(t *testing.T) {
	if ActionInit.Mutating() {
		t.Error("INIT must not be recorded")
	}
	if !ActionDamage.Mutating() {
		t.Error("DAMAGE must be recorded")
	}
}

func TestReplaySession_Duration(t *testing.T) {
	r := &ReplaySession{
		Commands: []ReplayCommand{{Time: 4}},
		Events:   []Event{{Time: 1}, {Time: 2.5}},
	}
	if got := r.Duration(); got != 4 {
		t.Errorf("Duration() = %v, want 4", got)
	}
}
