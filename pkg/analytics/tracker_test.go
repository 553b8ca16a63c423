package analytics

import (
	"testing"

	"github.com/adxyz/admarket/pkg/event"
	"github.com/adxyz/admarket/pkg/ids"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestConsumeCounters(t *testing.T) {
	tr := NewTracker()
	bidder := ids.GenerateTestID()

	tr.Consume(event.SlotCreated{SlotID: "s"})
	tr.Consume(event.AdCreated{AdID: "a"})
	tr.Consume(event.BidPlaced{SlotID: "s", Bidder: bidder, Amount: 10})
	tr.Consume(event.BidPlaced{SlotID: "s", Bidder: bidder, Amount: 20})
	tr.Consume(event.AuctionClosed{SlotID: "s", Winner: bidder})
	tr.Consume(event.SlotPurchased{SlotID: "s2", Buyer: bidder})

	stats := tr.Stats()
	require.Equal(t, uint64(1), stats.Slots)
	require.Equal(t, uint64(1), stats.Ads)
	require.Equal(t, uint64(2), stats.Bids)
	require.Equal(t, uint64(1), stats.Auctions)
	require.Equal(t, uint64(1), stats.Sales)
	require.Zero(t, stats.Settled)
}

func TestSettlementRevenue(t *testing.T) {
	tr := NewTracker()
	publisher := ids.GenerateTestID()
	key := ids.GenerateTestID()

	tr.Consume(event.EscrowReleased{EscrowKey: key, Publisher: publisher, Amount: 1000})
	tr.Consume(event.EscrowReleased{EscrowKey: key, Publisher: publisher, Amount: 500})
	tr.Consume(event.EscrowRefunded{EscrowKey: key, Advertiser: ids.GenerateTestID(), Amount: 200})

	stats := tr.Stats()
	require.Equal(t, uint64(2), stats.Settled)
	require.Equal(t, uint64(1500), stats.VolumeSettled)
	require.Equal(t, uint64(1), stats.Refunded)
	require.Equal(t, uint64(200), stats.VolumeRefunded)

	ps, ok := tr.Publisher(publisher.String())
	require.True(t, ok)
	require.Equal(t, uint64(2), ps.Settlements)
	require.Equal(t, uint64(1500), ps.Revenue)
	require.True(t, ps.AvgSettlement.Equal(decimal.NewFromInt(750)))

	_, ok = tr.Publisher(ids.GenerateTestID().String())
	require.False(t, ok)
}
