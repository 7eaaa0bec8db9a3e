package auctionerrors

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Repository-level errors
var (
	ErrAuctionNotFound = errors.New("auction not found")
	ErrWalletNotFound  = errors.New("wallet not found")
	ErrNoBids          = errors.New("no bids found for auction")
	ErrUserNoBids      = errors.New("user has not placed any bids")
)

// business logic errors
var (
	ErrInvalidBid          = errors.New("invalid bid")
	ErrBidTooLow           = errors.New("bid amount too low")
	ErrAuctionNotActive    = errors.New("auction not active")
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// ErrConcurrencyConflict signals a lock-wait timeout. It is the only
// error in the taxonomy that is safe to retry as-is.
var ErrConcurrencyConflict = errors.New("concurrent operation conflict, retry")

// InsufficientBalanceError reports a reservation exceeding the wallet's
// spendable balance. Unwraps to ErrInsufficientBalance.
type InsufficientBalanceError struct {
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: have %s, need %s", e.Available, e.Requested)
}

func (e *InsufficientBalanceError) Unwrap() error { return ErrInsufficientBalance }

// BidTooLowError reports a bid below the auction's minimum acceptable
// amount. Unwraps to ErrBidTooLow.
type BidTooLowError struct {
	Minimum decimal.Decimal
	Offered decimal.Decimal
}

func (e *BidTooLowError) Error() string {
	return fmt.Sprintf("bid amount too low: offered %s, minimum acceptable is %s", e.Offered, e.Minimum)
}

func (e *BidTooLowError) Unwrap() error { return ErrBidTooLow }

// AuctionNotActiveError reports a bid against an auction that is closed,
// cancelled, or outside its bidding window. Unwraps to ErrAuctionNotActive.
type AuctionNotActiveError struct {
	AuctionID string
	Status    string
}

func (e *AuctionNotActiveError) Error() string {
	return fmt.Sprintf("auction %s not accepting bids (status %s)", e.AuctionID, e.Status)
}

func (e *AuctionNotActiveError) Unwrap() error { return ErrAuctionNotActive }
