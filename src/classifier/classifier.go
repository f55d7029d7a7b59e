// Package classifier maps ledger operation labels to a trade side.
package classifier

import (
	"strings"

	"github.com/username/cryptotax/backend/src/models"
)

// Incoming lists operations that credit the account and are treated as
// acquisitions.
var Incoming = []string{
	"Deposit",
	"Buy",
	"Distribution",
	"Staking Rewards",
	"Launchpool Airdrop - User Claim Distribution",
	"Commission History",
	"Transaction Revenue",
	"Commission Rebate",
	"Airdrop Assets",
	"Token Swap - Redenomination/Rebranding",
	"Simple Earn Locked Rewards",
	"Launchpool Airdrop - System Distribution",
	"Asset Recovery",
	"Megadrop Rewards",
	"Token Swap - Distribution",
	"HODLer Airdrops Distribution",
	"Transaction Buy",
}

// Outgoing lists operations that debit the account and are treated as
// disposals.
var Outgoing = []string{
	"Sell",
	"Fee",
	"Withdraw",
	"Asset - Transfer",
	"Launchpool Subscription/Redemption",
	"Transfer Between Main And Mining Account",
	"Transaction Spend",
	"Transaction Fee",
	"Transaction Sold",
	"Simple Earn Locked Subscription",
}

var sides = func() map[string]models.Side {
	m := make(map[string]models.Side, len(Incoming)+len(Outgoing))
	for _, label := range Incoming {
		m[normalize(label)] = models.SideBuy
	}
	for _, label := range Outgoing {
		m[normalize(label)] = models.SideSell
	}
	return m
}()

func normalize(label string) string {
	return strings.ToLower(strings.Join(strings.Fields(label), " "))
}

// Classify returns the side for an operation label. Labels are compared
// ignoring case and repeated whitespace. Unknown labels are BUY.
func Classify(label string) models.Side {
	if side, ok := sides[normalize(label)]; ok {
		return side
	}
	return models.SideBuy
}

// Known reports whether label belongs to either label set.
func Known(label string) bool {
	_, ok := sides[normalize(label)]
	return ok
}
