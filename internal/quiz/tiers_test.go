package quiz

import "testing"

func TestTierPolicyEvaluate(t *testing.T) {
	p := DefaultTierPolicy()
	tests := []struct {
		score, total int
		want         TierName
	}{
		{50, 50, TierPerfect},
		{49, 50, TierExcellent},
		{45, 50, TierExcellent},
		{44, 50, TierVeryGood},
		{40, 50, TierVeryGood},
		{39, 50, TierKeepPracticing},
		{0, 50, TierKeepPracticing},
		{9, 10, TierExcellent},
		{0, 0, TierKeepPracticing},
	}
	for _, tt := range tests {
		got := p.Evaluate(Percent(tt.score, tt.total))
		if got.Name != tt.want {
			t.Errorf("%d/%d -> %s, want %s", tt.score, tt.total, got.Name, tt.want)
		}
	}
}

func TestTierPolicyValidate(t *testing.T) {
	if err := DefaultTierPolicy().Validate(); err != nil {
		t.Fatalf("default policy invalid: %v", err)
	}
	bad := []TierPolicy{
		nil,
		{{Threshold: 50}, {Threshold: 90}, {Threshold: 0}},
		{{Threshold: 90}, {Threshold: 90}, {Threshold: 0}},
		{{Threshold: 90}, {Threshold: 10}},
	}
	for i, p := range bad {
		if err := p.Validate(); err == nil {
			t.Errorf("policy %d: expected error", i)
		}
	}
}
