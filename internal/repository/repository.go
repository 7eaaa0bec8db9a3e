package repository

import (
	"fmt"
	"sync"

	"neighborbid/internal/auctionerrors"
	model "neighborbid/internal/models"

	"github.com/shopspring/decimal"
)

// AuctionDB defines auction price state and bid history storage for the
// bidding engine
type AuctionDB interface {
	AddAuction(a model.Auction) error
	GetAuction(auctionID string) (model.Auction, error)
	SetAuctionStatus(auctionID string, status model.AuctionStatus) error
	AdvancePrice(auctionID string, amount decimal.Decimal) error
	RecordLeadingBid(bid model.Bid) error
	LeadingBid(auctionID string) (model.Bid, error)
	SettleBids(auctionID string, leaderOutcome model.BidOutcome) error
	GetBidsByAuction(auctionID string) ([]model.Bid, error)
	GetAuctionsByBidder(bidderID string) ([]model.Auction, error)
}

// MemoryRepo is a concurrency-safe in-memory implementation of AuctionDB
type MemoryRepo struct {
	mu          sync.RWMutex
	auctions    map[string]*model.Auction // key: auctionID
	bids        map[string][]*model.Bid   // key: auctionID -> append-only bid history
	leading     map[string]*model.Bid     // key: auctionID -> current LEADING bid
	bidderItems map[string][]string       // key: bidderID -> auctionIDs bid on
}

// NewMemoryRepo creates a new in-memory repository instance
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		auctions:    make(map[string]*model.Auction),
		bids:        make(map[string][]*model.Bid),
		leading:     make(map[string]*model.Bid),
		bidderItems: make(map[string][]string),
	}
}

// AddAuction registers an auction created by the listing service.
func (r *MemoryRepo) AddAuction(a model.Auction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.auctions[a.AuctionID]; ok {
		return fmt.Errorf("add auction %s: already exists", a.AuctionID)
	}
	stored := a
	r.auctions[a.AuctionID] = &stored
	return nil
}

// GetAuction returns a snapshot of an auction.
func (r *MemoryRepo) GetAuction(auctionID string) (model.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.auctions[auctionID]
	if !ok {
		return model.Auction{}, fmt.Errorf("get auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	return *a, nil
}

// SetAuctionStatus moves an auction to a new lifecycle state.
func (r *MemoryRepo) SetAuctionStatus(auctionID string, status model.AuctionStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.auctions[auctionID]
	if !ok {
		return fmt.Errorf("set status for auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	a.Status = status
	return nil
}

// AdvancePrice raises the auction's current price. The price is
// monotonic; a lower amount is rejected.
func (r *MemoryRepo) AdvancePrice(auctionID string, amount decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.auctions[auctionID]
	if !ok {
		return fmt.Errorf("advance price for auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	if amount.LessThan(a.CurrentPrice) {
		return fmt.Errorf("advance price for auction %s: %s below current %s", auctionID, amount, a.CurrentPrice)
	}
	a.CurrentPrice = amount
	return nil
}

// RecordLeadingBid appends the bid as the auction's new leader and flips
// the previous leader, if any, to OUTBID in the same critical section.
func (r *MemoryRepo) RecordLeadingBid(bid model.Bid) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.auctions[bid.AuctionID]; !ok {
		return fmt.Errorf("record bid for auction %s: %w", bid.AuctionID, auctionerrors.ErrAuctionNotFound)
	}

	if prev, ok := r.leading[bid.AuctionID]; ok {
		prev.Outcome = model.BidOutbid
	}

	stored := bid
	stored.Outcome = model.BidLeading
	r.bids[bid.AuctionID] = append(r.bids[bid.AuctionID], &stored)
	r.leading[bid.AuctionID] = &stored

	for _, id := range r.bidderItems[bid.BidderID] {
		if id == bid.AuctionID {
			return nil
		}
	}
	r.bidderItems[bid.BidderID] = append(r.bidderItems[bid.BidderID], bid.AuctionID)

	return nil
}

// LeadingBid returns the auction's current LEADING bid.
func (r *MemoryRepo) LeadingBid(auctionID string) (model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.auctions[auctionID]; !ok {
		return model.Bid{}, fmt.Errorf("leading bid for auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	lead, ok := r.leading[auctionID]
	if !ok {
		return model.Bid{}, fmt.Errorf("leading bid for auction %s: %w", auctionID, auctionerrors.ErrNoBids)
	}
	return *lead, nil
}

// SettleBids resolves all outstanding outcomes when an auction closes:
// the leader becomes leaderOutcome (WON, or LOST on cancellation) and
// every OUTBID record becomes LOST.
func (r *MemoryRepo) SettleBids(auctionID string, leaderOutcome model.BidOutcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.auctions[auctionID]; !ok {
		return fmt.Errorf("settle bids for auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	for _, b := range r.bids[auctionID] {
		switch b.Outcome {
		case model.BidLeading:
			b.Outcome = leaderOutcome
		case model.BidOutbid:
			b.Outcome = model.BidLost
		}
	}
	delete(r.leading, auctionID)
	return nil
}

// GetBidsByAuction returns the full bid history for an auction.
func (r *MemoryRepo) GetBidsByAuction(auctionID string) ([]model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.auctions[auctionID]; !ok {
		return nil, fmt.Errorf("get bids for auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	bids := r.bids[auctionID]
	if len(bids) == 0 {
		return nil, fmt.Errorf("get bids for auction %s: %w", auctionID, auctionerrors.ErrNoBids)
	}
	out := make([]model.Bid, 0, len(bids))
	for _, b := range bids {
		out = append(out, *b)
	}
	return out, nil
}

// GetAuctionsByBidder returns all auctions a user has bid on
func (r *MemoryRepo) GetAuctionsByBidder(bidderID string) ([]model.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	auctionIDs, ok := r.bidderItems[bidderID]
	if !ok || len(auctionIDs) == 0 {
		return nil, fmt.Errorf("get auctions for user %s: %w", bidderID, auctionerrors.ErrUserNoBids)
	}

	auctions := make([]model.Auction, 0, len(auctionIDs))
	for _, id := range auctionIDs {
		if a, exists := r.auctions[id]; exists {
			auctions = append(auctions, *a)
		}
	}
	return auctions, nil
}
