package eventstream

import (
	"fmt"

	"starsbot/events"
)

var subjects = map[events.EventType]string{
	events.EventTypeBalanceChange:       "ledger.balance_changed",
	events.EventTypeAccountCreated:      "accounts.created",
	events.EventTypeReferralConfirmed:   "accounts.referral_confirmed",
	events.EventTypeCodeRedeemed:        "codes.redeemed",
	events.EventTypeTaskRewarded:        "tasks.rewarded",
	events.EventTypeWagerSettled:        "slots.settled",
	events.EventTypeWithdrawalRequested: "withdrawals.requested",
	events.EventTypeWithdrawalResolved:  "withdrawals.resolved",
}

// Subject returns the subject an event is published on, below prefix
func Subject(prefix string, eventType events.EventType) string {
	name, ok := subjects[eventType]
	if !ok {
		name = fmt.Sprintf("unknown.%s", eventType)
	}
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

// EventTypes lists every event type that is mirrored
func EventTypes() []events.EventType {
	types := make([]events.EventType, 0, len(subjects))
	for eventType := range subjects {
		types = append(types, eventType)
	}
	return types
}
