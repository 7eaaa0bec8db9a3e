package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AuctionStatus is the lifecycle state of an auction.
type AuctionStatus string

const (
	AuctionActive    AuctionStatus = "ACTIVE"
	AuctionEnded     AuctionStatus = "ENDED"
	AuctionCancelled AuctionStatus = "CANCELLED"
)

// BidOutcome is the resolved state of a committed bid.
type BidOutcome string

const (
	BidLeading BidOutcome = "LEADING"
	BidOutbid  BidOutcome = "OUTBID"
	BidWon     BidOutcome = "WON"
	BidLost    BidOutcome = "LOST"
)

// User represents a participant in the auction system
type User struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// Wallet holds a user's spendable and reserved funds. Balance plus
// LockedBalance is conserved across all bid operations; only external
// deposits and withdrawals change the total.
type Wallet struct {
	UserID        string          `json:"user_id"`
	Balance       decimal.Decimal `json:"balance"`
	LockedBalance decimal.Decimal `json:"locked_balance"`
}

// Total returns the wallet's combined spendable and locked funds.
func (w Wallet) Total() decimal.Decimal {
	return w.Balance.Add(w.LockedBalance)
}

// Auction represents one sale
type Auction struct {
	AuctionID    string          `json:"auction_id"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	SellerID     string          `json:"seller_id"`
	StartPrice   decimal.Decimal `json:"start_price"`
	CurrentPrice decimal.Decimal `json:"current_price"`
	BidUnit      decimal.Decimal `json:"bid_unit"`
	StartTime    time.Time       `json:"start_time"`
	EndTime      time.Time       `json:"end_time"`
	Status       AuctionStatus   `json:"status"`
}

// IsOpen reports whether the auction accepts bids at the given instant.
func (a Auction) IsOpen(now time.Time) bool {
	return a.Status == AuctionActive && !now.Before(a.StartTime) && now.Before(a.EndTime)
}

// MinimumAcceptableBid returns the lowest amount the next bid may carry:
// the current price plus one bid unit, or the start price if that is higher.
func (a Auction) MinimumAcceptableBid() decimal.Decimal {
	next := a.CurrentPrice.Add(a.BidUnit)
	if next.LessThan(a.StartPrice) {
		return a.StartPrice
	}
	return next
}

// Bid represents one bid attempt that passed validation and committed
type Bid struct {
	BidID     string          `json:"bid_id"`
	AuctionID string          `json:"auction_id"`
	BidderID  string          `json:"bidder_id"`
	Amount    decimal.Decimal `json:"amount"`
	Outcome   BidOutcome      `json:"outcome"`
	CreatedAt time.Time       `json:"created_at"`
}
