package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"starsbot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionalBus_FlushDeliversToSubscribers(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	received := make(chan BalanceChangeEvent, 1)
	mainBus.Subscribe(EventTypeBalanceChange, func(ctx context.Context, event Event) {
		if balanceEvent, ok := event.(BalanceChangeEvent); ok {
			received <- balanceEvent
		}
	})

	testEvent := BalanceChangeEvent{
		UserID:          123456,
		OldBalance:      10,
		NewBalance:      60,
		TransactionType: models.TransactionTypeCheckRedeem,
		ChangeAmount:    50,
	}
	transactionalBus.Publish(testEvent)

	require.NoError(t, transactionalBus.Flush(context.Background()))

	select {
	case got := <-received:
		assert.Equal(t, testEvent, got)
	case <-time.After(2 * time.Second):
		t.Fatal("event was not received within timeout")
	}
}

func TestTransactionalBus_RoutesByEventType(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	var wg sync.WaitGroup
	wg.Add(2)

	var mu sync.Mutex
	seen := make(map[EventType]int)
	record := func(ctx context.Context, event Event) {
		defer wg.Done()
		mu.Lock()
		seen[event.Type()]++
		mu.Unlock()
	}
	mainBus.Subscribe(EventTypeReferralConfirmed, record)
	mainBus.Subscribe(EventTypeWithdrawalResolved, record)

	transactionalBus.Publish(ReferralConfirmedEvent{ReferrerID: 1, ReferredID: 2, Reward: 1})
	transactionalBus.Publish(WithdrawalResolvedEvent{WithdrawalID: 7, UserID: 2, Amount: 100, Status: models.WithdrawalStatusDenied, Refunded: true})
	// No subscriber for this type; it must not block or panic.
	transactionalBus.Publish(WagerSettledEvent{UserID: 2, Stake: 5, Won: true})

	require.NoError(t, transactionalBus.Flush(context.Background()))
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, seen[EventTypeReferralConfirmed])
	assert.Equal(t, 1, seen[EventTypeWithdrawalResolved])
	assert.Zero(t, seen[EventTypeWagerSettled])
}

func TestTransactionalBus_DiscardDropsPendingEvents(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	eventReceived := make(chan bool, 1)
	mainBus.Subscribe(EventTypeBalanceChange, func(ctx context.Context, event Event) {
		eventReceived <- true
	})

	transactionalBus.Publish(BalanceChangeEvent{UserID: 1, OldBalance: 0, NewBalance: 5, ChangeAmount: 5})
	transactionalBus.Discard()

	// A flush after discard has nothing left to send.
	require.NoError(t, transactionalBus.Flush(context.Background()))

	select {
	case <-eventReceived:
		t.Fatal("event was received despite being discarded")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestBus_HandlerPanicDoesNotAffectOthers(t *testing.T) {
	bus := NewBus()

	done := make(chan struct{})
	bus.Subscribe(EventTypeCodeRedeemed, func(ctx context.Context, event Event) {
		panic("boom")
	})
	bus.Subscribe(EventTypeCodeRedeemed, func(ctx context.Context, event Event) {
		close(done)
	})

	bus.Emit(context.Background(), CodeRedeemedEvent{UserID: 1, Kind: models.CodeKindPromo, Code: "HELLO", Amount: 3})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("healthy handler was not called")
	}
}
