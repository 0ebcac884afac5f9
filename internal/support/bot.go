package support

import "strings"

// Rule maps trigger keywords to a canned reply. The first rule whose
// keyword appears in the normalized message wins.
type Rule struct {
	Keywords []string
	Reply    string
}

// Bot answers common storefront questions without a human in the loop.
type Bot struct {
	Rules    []Rule
	Fallback string
}

// DefaultRules covers the questions the shop actually gets asked.
func DefaultRules() []Rule {
	return []Rule{
		{
			Keywords: []string{"shipping", "delivery", "ship"},
			Reply:    "Orders over 125 ship free. Below that a flat delivery fee applies, shown at checkout.",
		},
		{
			Keywords: []string{"promotion", "promo", "bulk", "free item"},
			Reply:    "Carts with 5 or more units get the cheapest unit free, applied automatically at checkout.",
		},
		{
			Keywords: []string{"coupon", "discount", "code", "voucher"},
			Reply:    "Apply a discount code on your cart before checkout. Codes may carry a minimum spend.",
		},
		{
			Keywords: []string{"order", "track", "status"},
			Reply:    "You can review your orders and their status under your order history.",
		},
		{
			Keywords: []string{"refund", "return", "cancel"},
			Reply:    "Unopened products can be returned within 14 days. Reply with your order id to start a return.",
		},
		{
			Keywords: []string{"age", "id", "verification"},
			Reply:    "All purchases require age verification at delivery. Couriers will ask for photo ID.",
		},
	}
}

// NewBot builds a bot with the default rule set.
func NewBot() *Bot {
	return &Bot{
		Rules:    DefaultRules(),
		Fallback: "Sorry, I could not help with that. Email support@embervale.example and a human will follow up.",
	}
}

// Reply returns the canned answer for the message and whether a rule matched.
func (b *Bot) Reply(message string) (string, bool) {
	normalized := strings.ToLower(message)
	for _, rule := range b.Rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(normalized, kw) {
				return rule.Reply, true
			}
		}
	}
	return b.Fallback, false
}
