package repository

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"neighborbid/internal/auctionerrors"
	model "neighborbid/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// Helper to create a new active Auction
func newAuction(auctionID, sellerID string, startPrice, bidUnit int64) model.Auction {
	now := time.Now().UTC()
	return model.Auction{
		AuctionID:    auctionID,
		Title:        fmt.Sprintf("%s title", auctionID),
		Description:  fmt.Sprintf("%s description", auctionID),
		SellerID:     sellerID,
		StartPrice:   decimal.NewFromInt(startPrice),
		CurrentPrice: decimal.Zero,
		BidUnit:      decimal.NewFromInt(bidUnit),
		StartTime:    now,
		EndTime:      now.Add(time.Hour),
		Status:       model.AuctionActive,
	}
}

// Helper to create a new Bid
func newBid(bidID, auctionID, bidderID string, amount int64) model.Bid {
	return model.Bid{
		BidID:     bidID,
		AuctionID: auctionID,
		BidderID:  bidderID,
		Amount:    decimal.NewFromInt(amount),
		Outcome:   model.BidLeading,
		CreatedAt: time.Now().UTC(),
	}
}

// Test AddAuction and GetAuction
func TestMemoryRepo_AddGetAuction(t *testing.T) {
	t.Parallel()

	repo := NewMemoryRepo()
	auction := newAuction("auction1", "seller1", 10000, 1000)
	require.NoError(t, repo.AddAuction(auction))

	// duplicate registration is rejected
	require.Error(t, repo.AddAuction(auction))

	got, err := repo.GetAuction("auction1")
	require.NoError(t, err)
	require.Equal(t, auction.AuctionID, got.AuctionID)
	require.True(t, got.StartPrice.Equal(auction.StartPrice))

	_, err = repo.GetAuction("missing")
	require.True(t, errors.Is(err, auctionerrors.ErrAuctionNotFound))
}

// Test RecordLeadingBid flips the previous leader to OUTBID
func TestMemoryRepo_RecordLeadingBid(t *testing.T) {
	t.Parallel()

	repo := NewMemoryRepo()
	require.NoError(t, repo.AddAuction(newAuction("auction1", "seller1", 10000, 1000)))

	first := newBid("bid1", "auction1", "user1", 10000)
	second := newBid("bid2", "auction1", "user2", 11000)

	require.NoError(t, repo.RecordLeadingBid(first))

	lead, err := repo.LeadingBid("auction1")
	require.NoError(t, err)
	require.Equal(t, "bid1", lead.BidID)
	require.Equal(t, model.BidLeading, lead.Outcome)

	require.NoError(t, repo.RecordLeadingBid(second))

	lead, err = repo.LeadingBid("auction1")
	require.NoError(t, err)
	require.Equal(t, "bid2", lead.BidID)

	bids, err := repo.GetBidsByAuction("auction1")
	require.NoError(t, err)
	require.Len(t, bids, 2)
	require.Equal(t, model.BidOutbid, bids[0].Outcome)
	require.Equal(t, model.BidLeading, bids[1].Outcome)

	// unknown auction
	require.Error(t, repo.RecordLeadingBid(newBid("bid3", "missing", "user1", 100)))
}

// Test LeadingBid error cases
func TestMemoryRepo_LeadingBid(t *testing.T) {
	t.Parallel()

	repo := NewMemoryRepo()
	require.NoError(t, repo.AddAuction(newAuction("auction1", "seller1", 10000, 1000)))

	_, err := repo.LeadingBid("auction1")
	require.True(t, errors.Is(err, auctionerrors.ErrNoBids))

	_, err = repo.LeadingBid("missing")
	require.True(t, errors.Is(err, auctionerrors.ErrAuctionNotFound))
}

// Test AdvancePrice is monotonic
func TestMemoryRepo_AdvancePrice(t *testing.T) {
	t.Parallel()

	repo := NewMemoryRepo()
	require.NoError(t, repo.AddAuction(newAuction("auction1", "seller1", 10000, 1000)))

	require.NoError(t, repo.AdvancePrice("auction1", decimal.NewFromInt(10000)))
	require.NoError(t, repo.AdvancePrice("auction1", decimal.NewFromInt(12000)))

	// lower than current is rejected
	require.Error(t, repo.AdvancePrice("auction1", decimal.NewFromInt(11000)))

	a, err := repo.GetAuction("auction1")
	require.NoError(t, err)
	require.True(t, a.CurrentPrice.Equal(decimal.NewFromInt(12000)))

	require.Error(t, repo.AdvancePrice("missing", decimal.NewFromInt(1)))
}

// Test SettleBids resolves outcomes and clears the leader
func TestMemoryRepo_SettleBids(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		leaderOutcome model.BidOutcome
	}{
		{name: "close_leader_wins", leaderOutcome: model.BidWon},
		{name: "cancel_leader_loses", leaderOutcome: model.BidLost},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			repo := NewMemoryRepo()
			require.NoError(t, repo.AddAuction(newAuction("auction1", "seller1", 10000, 1000)))
			require.NoError(t, repo.RecordLeadingBid(newBid("bid1", "auction1", "user1", 10000)))
			require.NoError(t, repo.RecordLeadingBid(newBid("bid2", "auction1", "user2", 11000)))

			require.NoError(t, repo.SettleBids("auction1", tc.leaderOutcome))

			bids, err := repo.GetBidsByAuction("auction1")
			require.NoError(t, err)
			require.Equal(t, model.BidLost, bids[0].Outcome)
			require.Equal(t, tc.leaderOutcome, bids[1].Outcome)

			// no leader remains after settlement
			_, err = repo.LeadingBid("auction1")
			require.True(t, errors.Is(err, auctionerrors.ErrNoBids))
		})
	}
}

// Test SetAuctionStatus
func TestMemoryRepo_SetAuctionStatus(t *testing.T) {
	t.Parallel()

	repo := NewMemoryRepo()
	require.NoError(t, repo.AddAuction(newAuction("auction1", "seller1", 10000, 1000)))

	require.NoError(t, repo.SetAuctionStatus("auction1", model.AuctionEnded))
	a, err := repo.GetAuction("auction1")
	require.NoError(t, err)
	require.Equal(t, model.AuctionEnded, a.Status)

	require.Error(t, repo.SetAuctionStatus("missing", model.AuctionEnded))
}

// Test GetAuctionsByBidder
func TestMemoryRepo_GetAuctionsByBidder(t *testing.T) {
	t.Parallel()

	repo := NewMemoryRepo()
	require.NoError(t, repo.AddAuction(newAuction("auction1", "seller1", 10000, 1000)))
	require.NoError(t, repo.AddAuction(newAuction("auction2", "seller1", 20000, 2000)))

	require.NoError(t, repo.RecordLeadingBid(newBid("bid1", "auction1", "user1", 10000)))
	require.NoError(t, repo.RecordLeadingBid(newBid("bid2", "auction2", "user1", 20000)))
	// a second bid on the same auction does not duplicate the listing
	require.NoError(t, repo.RecordLeadingBid(newBid("bid3", "auction1", "user1", 11000)))

	auctions, err := repo.GetAuctionsByBidder("user1")
	require.NoError(t, err)
	require.Len(t, auctions, 2)

	_, err = repo.GetAuctionsByBidder("userX")
	require.True(t, errors.Is(err, auctionerrors.ErrUserNoBids))

	_, err = repo.GetAuctionsByBidder("")
	require.Error(t, err)
}

// concurrency test
func TestMemoryRepo_ConcurrentRecordAndRead(t *testing.T) {
	t.Parallel()

	repo := NewMemoryRepo()
	require.NoError(t, repo.AddAuction(newAuction("auction1", "seller1", 0, 1)))

	var wg sync.WaitGroup
	concurrentCount := 50

	for i := 0; i < concurrentCount; i++ {
		wg.Add(1)
		i := i
		go func() {
			defer wg.Done()
			b := newBid(fmt.Sprintf("bid-%d", i), "auction1", fmt.Sprintf("user-%d", i), int64(100+i))
			require.NoError(t, repo.RecordLeadingBid(b))
			_, _ = repo.LeadingBid("auction1")
		}()
	}

	wg.Wait()

	bids, err := repo.GetBidsByAuction("auction1")
	require.NoError(t, err)
	require.Len(t, bids, concurrentCount)

	// exactly one bid remains LEADING after arbitrary interleaving
	leading := 0
	for _, b := range bids {
		if b.Outcome == model.BidLeading {
			leading++
		}
	}
	require.Equal(t, 1, leading)
}
