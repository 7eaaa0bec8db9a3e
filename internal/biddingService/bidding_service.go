package bidding

import (
	"errors"
	"fmt"
	"time"

	"neighborbid/internal/auctionerrors"
	"neighborbid/internal/keylock"
	"neighborbid/internal/ledger"
	"neighborbid/internal/models"
	"neighborbid/internal/repository"
	"neighborbid/utils"

	"github.com/shopspring/decimal"
)

// DefaultLockWait bounds how long a bid attempt may block on entity
// locks before failing with the retryable conflict error.
const DefaultLockWait = 3 * time.Second

// BiddingService orchestrates bid placement: it validates a bid against
// auction and wallet state, then reserves funds, advances the price,
// records the bid, and refunds the superseded leader as one indivisible
// unit guarded by per-entity locks.
type BiddingService struct {
	repo     repository.AuctionDB
	wallets  *ledger.Ledger
	locks    *keylock.Locker
	lockWait time.Duration
}

// NewBiddingService creates a new BiddingService instance. A
// non-positive lockWait falls back to DefaultLockWait.
func NewBiddingService(repo repository.AuctionDB, wallets *ledger.Ledger, lockWait time.Duration) *BiddingService {
	if lockWait <= 0 {
		lockWait = DefaultLockWait
	}
	return &BiddingService{
		repo:     repo,
		wallets:  wallets,
		locks:    keylock.NewLocker(),
		lockWait: lockWait,
	}
}

func walletKey(userID string) string     { return "wallet:" + userID }
func auctionKey(auctionID string) string { return "auction:" + auctionID }

// PlaceBid validates and commits a user's bid on an auction. It either
// fully commits (funds locked, price advanced, bid recorded, previous
// leader refunded) or has no effect at all.
func (s *BiddingService) PlaceBid(auctionID, bidderID string, amount decimal.Decimal) (models.Bid, error) {
	if err := validateBidInput(auctionID, bidderID, amount); err != nil {
		return models.Bid{}, err
	}

	// The bidder's wallet and the auction's price state are locked as
	// one sorted set, so concurrent bids on any (wallet, auction)
	// combination always contend in the same order.
	guard, err := s.locks.Acquire(s.lockWait, walletKey(bidderID), auctionKey(auctionID))
	if err != nil {
		return models.Bid{}, fmt.Errorf("service: place bid on auction %s: %w", auctionID, err)
	}
	defer guard.Release()

	auction, err := s.repo.GetAuction(auctionID)
	if err != nil {
		return models.Bid{}, fmt.Errorf("service: place bid: %w", err)
	}
	if !auction.IsOpen(time.Now().UTC()) {
		return models.Bid{}, fmt.Errorf("service: place bid: %w",
			&auctionerrors.AuctionNotActiveError{AuctionID: auctionID, Status: string(auction.Status)})
	}
	if min := auction.MinimumAcceptableBid(); amount.LessThan(min) {
		return models.Bid{}, fmt.Errorf("service: place bid: %w",
			&auctionerrors.BidTooLowError{Minimum: min, Offered: amount})
	}

	prev, err := s.repo.LeadingBid(auctionID)
	hasPrev := err == nil
	if err != nil && !errors.Is(err, auctionerrors.ErrNoBids) {
		return models.Bid{}, fmt.Errorf("service: place bid: %w", err)
	}

	// Reserving funds is the last step that can fail. Re-bidding
	// against oneself reserves only the increment over the amount
	// already locked for this auction, never the full amount twice.
	reserved := amount
	if hasPrev && prev.BidderID == bidderID {
		reserved = amount.Sub(prev.Amount)
	}
	if err := s.wallets.Reserve(bidderID, reserved); err != nil {
		return models.Bid{}, fmt.Errorf("service: place bid by user %s: %w", bidderID, err)
	}

	bid := models.Bid{
		BidID:     utils.GenerateID(),
		AuctionID: auctionID,
		BidderID:  bidderID,
		Amount:    amount,
		Outcome:   models.BidLeading,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.RecordLeadingBid(bid); err != nil {
		// Unreachable while the guard is held; undo the reservation so
		// a failed attempt leaves zero residual state.
		_ = s.wallets.Release(bidderID, reserved)
		return models.Bid{}, fmt.Errorf("service: failed to record bid on auction %s: %w", auctionID, err)
	}
	if err := s.repo.AdvancePrice(auctionID, amount); err != nil {
		return models.Bid{}, fmt.Errorf("service: failed to advance price on auction %s: %w", auctionID, err)
	}

	// Refund the outbid leader. A single ledger credit, atomic on its
	// own, so it needs no entity lock on the other bidder's wallet.
	if hasPrev && prev.BidderID != bidderID {
		if err := s.wallets.Release(prev.BidderID, prev.Amount); err != nil {
			return models.Bid{}, fmt.Errorf("service: failed to refund outbid user %s: %w", prev.BidderID, err)
		}
	}

	return bid, nil
}

// validateBid checks input validity before any lock is taken
func validateBidInput(auctionID, bidderID string, amount decimal.Decimal) error {
	if auctionID == "" || bidderID == "" {
		return fmt.Errorf("service: %w - missing auctionID or bidderID", auctionerrors.ErrInvalidBid)
	}
	if !amount.IsPositive() {
		return fmt.Errorf("service: %w - non-positive bid amount", auctionerrors.ErrInvalidBid)
	}
	return nil
}

// CloseAuction ends an active auction and settles it: the leading bid
// becomes WON, its reservation is captured, and the proceeds are
// deposited to the seller. Returns the winning bid if one existed.
func (s *BiddingService) CloseAuction(auctionID string) (models.Bid, bool, error) {
	if auctionID == "" {
		return models.Bid{}, false, fmt.Errorf("service: %w - empty auction ID", auctionerrors.ErrInvalidBid)
	}

	guard, err := s.locks.Acquire(s.lockWait, auctionKey(auctionID))
	if err != nil {
		return models.Bid{}, false, fmt.Errorf("service: close auction %s: %w", auctionID, err)
	}
	defer guard.Release()

	auction, err := s.repo.GetAuction(auctionID)
	if err != nil {
		return models.Bid{}, false, fmt.Errorf("service: close auction: %w", err)
	}
	if auction.Status != models.AuctionActive {
		return models.Bid{}, false, fmt.Errorf("service: close auction: %w",
			&auctionerrors.AuctionNotActiveError{AuctionID: auctionID, Status: string(auction.Status)})
	}

	leader, err := s.repo.LeadingBid(auctionID)
	hasLeader := err == nil
	if err != nil && !errors.Is(err, auctionerrors.ErrNoBids) {
		return models.Bid{}, false, fmt.Errorf("service: close auction: %w", err)
	}

	if err := s.repo.SetAuctionStatus(auctionID, models.AuctionEnded); err != nil {
		return models.Bid{}, false, fmt.Errorf("service: close auction: %w", err)
	}
	if err := s.repo.SettleBids(auctionID, models.BidWon); err != nil {
		return models.Bid{}, false, fmt.Errorf("service: close auction: %w", err)
	}

	if hasLeader {
		if err := s.wallets.Capture(leader.BidderID, leader.Amount); err != nil {
			return models.Bid{}, false, fmt.Errorf("service: close auction settlement: %w", err)
		}
		if err := s.wallets.Deposit(auction.SellerID, leader.Amount); err != nil {
			return models.Bid{}, false, fmt.Errorf("service: close auction settlement: %w", err)
		}
		leader.Outcome = models.BidWon
	}

	return leader, hasLeader, nil
}

// CancelAuction cancels an active auction, releasing the leading bid's
// reservation back to its bidder. All bids end LOST.
func (s *BiddingService) CancelAuction(auctionID string) error {
	if auctionID == "" {
		return fmt.Errorf("service: %w - empty auction ID", auctionerrors.ErrInvalidBid)
	}

	guard, err := s.locks.Acquire(s.lockWait, auctionKey(auctionID))
	if err != nil {
		return fmt.Errorf("service: cancel auction %s: %w", auctionID, err)
	}
	defer guard.Release()

	auction, err := s.repo.GetAuction(auctionID)
	if err != nil {
		return fmt.Errorf("service: cancel auction: %w", err)
	}
	if auction.Status != models.AuctionActive {
		return fmt.Errorf("service: cancel auction: %w",
			&auctionerrors.AuctionNotActiveError{AuctionID: auctionID, Status: string(auction.Status)})
	}

	leader, err := s.repo.LeadingBid(auctionID)
	hasLeader := err == nil
	if err != nil && !errors.Is(err, auctionerrors.ErrNoBids) {
		return fmt.Errorf("service: cancel auction: %w", err)
	}

	if err := s.repo.SetAuctionStatus(auctionID, models.AuctionCancelled); err != nil {
		return fmt.Errorf("service: cancel auction: %w", err)
	}
	if err := s.repo.SettleBids(auctionID, models.BidLost); err != nil {
		return fmt.Errorf("service: cancel auction: %w", err)
	}

	if hasLeader {
		if err := s.wallets.Release(leader.BidderID, leader.Amount); err != nil {
			return fmt.Errorf("service: cancel auction refund: %w", err)
		}
	}

	return nil
}

// GetAuction returns the auction's current price, status, and window.
func (s *BiddingService) GetAuction(auctionID string) (models.Auction, error) {
	if auctionID == "" {
		return models.Auction{}, fmt.Errorf("service: %w - empty auction ID", auctionerrors.ErrInvalidBid)
	}

	auction, err := s.repo.GetAuction(auctionID)
	if err != nil {
		return models.Auction{}, fmt.Errorf("service: failed to get auction %s: %w", auctionID, err)
	}
	return auction, nil
}

// GetBidsForAuction returns the full bid history for an auction
func (s *BiddingService) GetBidsForAuction(auctionID string) ([]models.Bid, error) {
	if auctionID == "" {
		return nil, fmt.Errorf("service: %w - empty auction ID", auctionerrors.ErrInvalidBid)
	}

	bids, err := s.repo.GetBidsByAuction(auctionID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get bids for auction %s: %w", auctionID, err)
	}
	return bids, nil
}

// GetLeadingBid returns the current leading bid for an auction
func (s *BiddingService) GetLeadingBid(auctionID string) (models.Bid, error) {
	if auctionID == "" {
		return models.Bid{}, fmt.Errorf("service: %w - empty auction ID", auctionerrors.ErrInvalidBid)
	}

	lead, err := s.repo.LeadingBid(auctionID)
	if err != nil {
		return models.Bid{}, fmt.Errorf("service: failed to get leading bid for auction %s: %w", auctionID, err)
	}
	return lead, nil
}

// GetAuctionsByBidder returns all auctions a user has placed bids on
func (s *BiddingService) GetAuctionsByBidder(bidderID string) ([]models.Auction, error) {
	if bidderID == "" {
		return nil, fmt.Errorf("service: %w - empty user ID", auctionerrors.ErrInvalidBid)
	}

	auctions, err := s.repo.GetAuctionsByBidder(bidderID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get auctions for user %s: %w", bidderID, err)
	}
	return auctions, nil
}

// WalletBalances returns a snapshot of a user's wallet.
func (s *BiddingService) WalletBalances(userID string) (models.Wallet, error) {
	if userID == "" {
		return models.Wallet{}, fmt.Errorf("service: %w - empty user ID", auctionerrors.ErrInvalidBid)
	}

	w, err := s.wallets.Balances(userID)
	if err != nil {
		return models.Wallet{}, fmt.Errorf("service: failed to get wallet for user %s: %w", userID, err)
	}
	return w, nil
}

// Deposit credits a user's wallet outside the bid flow. The deposit is
// serialized against the same wallet lock that bid placement takes.
func (s *BiddingService) Deposit(userID string, amount decimal.Decimal) (models.Wallet, error) {
	if userID == "" {
		return models.Wallet{}, fmt.Errorf("service: %w - empty user ID", auctionerrors.ErrInvalidBid)
	}
	if !amount.IsPositive() {
		return models.Wallet{}, fmt.Errorf("service: %w - non-positive deposit amount", auctionerrors.ErrInvalidBid)
	}

	guard, err := s.locks.Acquire(s.lockWait, walletKey(userID))
	if err != nil {
		return models.Wallet{}, fmt.Errorf("service: deposit for user %s: %w", userID, err)
	}
	defer guard.Release()

	if err := s.wallets.Deposit(userID, amount); err != nil {
		return models.Wallet{}, fmt.Errorf("service: deposit for user %s: %w", userID, err)
	}
	return s.wallets.Balances(userID)
}
