package helpers

import (
	"github.com/shopspring/decimal"
)

// Request/Response DTOs
type PlaceBidRequest struct {
	AuctionID string          `json:"auction_id" binding:"required"`
	BidderID  string          `json:"bidder_id" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
}

type DepositRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

type BidResponse struct {
	BidID     string `json:"bid_id"`
	AuctionID string `json:"auction_id"`
	BidderID  string `json:"bidder_id"`
	Amount    string `json:"amount"`
	Outcome   string `json:"outcome"`
	CreatedAt string `json:"created_at"`
}

type AuctionResponse struct {
	AuctionID    string `json:"auction_id"`
	Title        string `json:"title"`
	SellerID     string `json:"seller_id"`
	StartPrice   string `json:"start_price"`
	CurrentPrice string `json:"current_price"`
	BidUnit      string `json:"bid_unit"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	Status       string `json:"status"`
}

type WalletResponse struct {
	UserID        string `json:"user_id"`
	Balance       string `json:"balance"`
	LockedBalance string `json:"locked_balance"`
}
