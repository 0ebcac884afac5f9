package support

import (
	"strings"
	"testing"
)

func TestReplyMatchesKeywords(t *testing.T) {
	bot := NewBot()

	cases := []struct {
		message string
		want    string
	}{
		{"How much is SHIPPING to my area?", "ship free"},
		{"do you have any promo running", "cheapest unit"},
		{"my discount code is not working", "minimum spend"},
		{"where is my order??", "order history"},
		{"I want a refund", "14 days"},
		{"do I need ID?", "age verification"},
	}
	for _, tc := range cases {
		reply, matched := bot.Reply(tc.message)
		if !matched {
			t.Fatalf("expected a rule match for %q", tc.message)
		}
		if !strings.Contains(reply, tc.want) {
			t.Fatalf("reply for %q = %q, want it to mention %q", tc.message, reply, tc.want)
		}
	}
}

func TestReplyFallsBack(t *testing.T) {
	bot := NewBot()
	reply, matched := bot.Reply("what is the meaning of life")
	if matched {
		t.Fatal("no rule should match")
	}
	if reply != bot.Fallback {
		t.Fatalf("expected fallback reply, got %q", reply)
	}
}

func TestReplyFirstRuleWins(t *testing.T) {
	bot := &Bot{
		Rules: []Rule{
			{Keywords: []string{"alpha"}, Reply: "first"},
			{Keywords: []string{"alpha", "beta"}, Reply: "second"},
		},
		Fallback: "none",
	}
	reply, matched := bot.Reply("alpha beta")
	if !matched || reply != "first" {
		t.Fatalf("expected first rule, got %q (matched=%v)", reply, matched)
	}
}
