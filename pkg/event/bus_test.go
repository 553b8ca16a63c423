package event

import (
	"testing"

	"github.com/adxyz/admarket/pkg/ids"
	"github.com/adxyz/admarket/pkg/log"
	"github.com/stretchr/testify/require"
)

func TestPublishSubscribe(t *testing.T) {
	bus := NewBus(log.NoOp())

	events, cancel := bus.Subscribe(4)
	defer cancel()

	owner := ids.GenerateTestID()
	bus.Publish(SlotCreated{SlotID: "slot-1", Owner: owner})

	ev := <-events
	created, ok := ev.(SlotCreated)
	require.True(t, ok)
	require.Equal(t, "slot-1", created.SlotID)
	require.Equal(t, owner, created.Owner)
}

func TestHistoryOrder(t *testing.T) {
	bus := NewBus(log.NoOp())
	bidder := ids.GenerateTestID()

	bus.Publish(SlotCreated{SlotID: "s"})
	bus.Publish(BidPlaced{SlotID: "s", Bidder: bidder, Amount: 10})
	bus.Publish(BidPlaced{SlotID: "s", Bidder: bidder, Amount: 20})
	bus.Publish(AuctionClosed{SlotID: "s", Winner: bidder})

	history := bus.History()
	require.Len(t, history, 4)
	require.Equal(t, TypeSlotCreated, history[0].Type())
	require.Equal(t, TypeBidPlaced, history[1].Type())
	require.Equal(t, TypeBidPlaced, history[2].Type())
	require.Equal(t, TypeAuctionClosed, history[3].Type())
}

func TestSlowSubscriberDoesNotBlockPublish(t *testing.T) {
	bus := NewBus(log.NoOp())

	// Subscriber with a single-slot buffer that is never drained.
	_, cancel := bus.Subscribe(1)
	defer cancel()

	for i := 0; i < 100; i++ {
		bus.Publish(SlotCreated{SlotID: "s"})
	}

	// Publish survived a full subscriber; the history kept everything.
	require.Len(t, bus.History(), 100)
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	bus := NewBus(log.NoOp())

	events, cancel := bus.Subscribe(1)
	cancel()

	_, open := <-events
	require.False(t, open)

	// Publishing after unsubscribe must not panic.
	bus.Publish(SlotCreated{SlotID: "s"})
}
