package events

import (
	"context"
	"sync"

	"starsbot/models"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange       EventType = "balance_change"
	EventTypeAccountCreated      EventType = "account_created"
	EventTypeReferralConfirmed   EventType = "referral_confirmed"
	EventTypeCodeRedeemed        EventType = "code_redeemed"
	EventTypeTaskRewarded        EventType = "task_rewarded"
	EventTypeWagerSettled        EventType = "wager_settled"
	EventTypeWithdrawalRequested EventType = "withdrawal_requested"
	EventTypeWithdrawalResolved  EventType = "withdrawal_resolved"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent represents a balance change that occurred
type BalanceChangeEvent struct {
	UserID          int64
	OldBalance      int64
	NewBalance      int64
	TransactionType models.TransactionType
	ChangeAmount    int64
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// AccountCreatedEvent is emitted when an account is created lazily
type AccountCreatedEvent struct {
	UserID          int64
	Username        string
	PendingReferrer *int64
}

func (e AccountCreatedEvent) Type() EventType {
	return EventTypeAccountCreated
}

// ReferralConfirmedEvent is emitted once per referred account
type ReferralConfirmedEvent struct {
	ReferrerID int64
	ReferredID int64
	Reward     int64
}

func (e ReferralConfirmedEvent) Type() EventType {
	return EventTypeReferralConfirmed
}

// CodeRedeemedEvent represents a promo code or check activation
type CodeRedeemedEvent struct {
	UserID int64
	Kind   models.CodeKind
	Code   string
	Amount int64
}

func (e CodeRedeemedEvent) Type() EventType {
	return EventTypeCodeRedeemed
}

// TaskRewardedEvent represents a credited task reward
type TaskRewardedEvent struct {
	UserID    int64
	Signature string
	Reward    int64
}

func (e TaskRewardedEvent) Type() EventType {
	return EventTypeTaskRewarded
}

// WagerSettledEvent represents a finished slot spin
type WagerSettledEvent struct {
	UserID int64
	Stake  int64
	Won    bool
}

func (e WagerSettledEvent) Type() EventType {
	return EventTypeWagerSettled
}

// WithdrawalRequestedEvent represents a newly created withdrawal request
type WithdrawalRequestedEvent struct {
	WithdrawalID int64
	UserID       int64
	Amount       int64
}

func (e WithdrawalRequestedEvent) Type() EventType {
	return EventTypeWithdrawalRequested
}

// WithdrawalResolvedEvent represents a withdrawal transition out of pending
type WithdrawalResolvedEvent struct {
	WithdrawalID int64
	UserID       int64
	Amount       int64
	Status       models.WithdrawalStatus
	Refunded     bool
}

func (e WithdrawalResolvedEvent) Type() EventType {
	return EventTypeWithdrawalResolved
}

// Handler reacts to a committed event
type Handler func(ctx context.Context, event Event)

// Bus fans committed events out to subscribers
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe registers handler for one event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Emit runs every handler of the event's type on its own goroutine. A
// panicking handler is logged and does not affect the others.
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.handlers[event.Type()]...)
	b.mu.RUnlock()

	for _, handler := range handlers {
		go dispatch(ctx, handler, event)
	}
}

func dispatch(ctx context.Context, handler Handler, event Event) {
	defer func() {
		if r := recover(); r != nil {
			log.WithFields(log.Fields{
				"eventType": event.Type(),
				"panic":     r,
			}).Error("Event handler panicked")
		}
	}()
	handler(ctx, event)
}

// TransactionalBus holds the events of one unit of work until it commits
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

// Publish queues an event for delivery after commit
func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Flush delivers the queued events. It is called after a successful commit;
// handlers get a fresh context because the transaction's may already be done.
func (b *TransactionalBus) Flush(ctx context.Context) error {
	eventCtx := context.WithoutCancel(ctx)
	for _, e := range b.pending {
		log.WithField("eventType", e.Type()).Debug("Delivering committed event")
		b.real.Emit(eventCtx, e)
	}
	b.pending = nil
	return nil
}

// Discard drops the queued events after a rollback
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
