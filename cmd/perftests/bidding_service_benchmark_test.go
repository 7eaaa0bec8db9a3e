package perftests

import (
	"fmt"
	"math/rand"
	"sync/atomic"
	"testing"
	"time"

	bidding "neighborbid/internal/biddingService"
	"neighborbid/internal/ledger"
	model "neighborbid/internal/models"
	repository "neighborbid/internal/repository"

	"github.com/shopspring/decimal"
)

// newBenchAuction builds an open auction with a wide bidding window.
func newBenchAuction(auctionID string, startPrice int64) model.Auction {
	now := time.Now().UTC()
	return model.Auction{
		AuctionID:    auctionID,
		Title:        auctionID,
		Description:  "benchmark auction",
		SellerID:     "seller",
		StartPrice:   decimal.NewFromInt(startPrice),
		CurrentPrice: decimal.Zero,
		BidUnit:      decimal.NewFromInt(1),
		StartTime:    now.Add(-time.Hour),
		EndTime:      now.Add(24 * time.Hour),
		Status:       model.AuctionActive,
	}
}

// Benchmark 1: PlaceBid - Isolated Auctions (Low Contention - Micro Benchmark)
func Benchmark_PlaceBid_Isolated(b *testing.B) {
	repo := repository.NewMemoryRepo()
	wallets := ledger.NewLedger()
	svc := bidding.NewBiddingService(repo, wallets, 0)

	for i := 0; i < b.N; i++ {
		if err := repo.AddAuction(newBenchAuction(fmt.Sprintf("auction_%d", i), 50)); err != nil {
			b.Fatalf("failed to seed auction: %v", err)
		}
		wallets.CreateWallet(fmt.Sprintf("user_%d", i), decimal.NewFromInt(1000))
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		userID := fmt.Sprintf("user_%d", i)
		auctionID := fmt.Sprintf("auction_%d", i)
		amount := decimal.NewFromInt(int64(50 + rand.Intn(100)))
		if _, err := svc.PlaceBid(auctionID, userID, amount); err != nil {
			b.Fatalf("failed to place bid: %v", err)
		}
	}
}

// Benchmark 2: PlaceBid - Shared Auction (High Contention - Concurrency Benchmark)
func Benchmark_PlaceBid_ConcurrentSharedAuction(b *testing.B) {
	repo := repository.NewMemoryRepo()
	wallets := ledger.NewLedger()
	svc := bidding.NewBiddingService(repo, wallets, 0)

	if err := repo.AddAuction(newBenchAuction("shared_auction_1", 50)); err != nil {
		b.Fatalf("failed to seed auction: %v", err)
	}

	// one deep-pocketed wallet per worker, registered up front
	var workerSeq int64
	wallet := func() string {
		id := atomic.AddInt64(&workerSeq, 1)
		userID := fmt.Sprintf("user_parallel_%d", id)
		wallets.CreateWallet(userID, decimal.New(1, 12))
		return userID
	}

	b.ReportAllocs()
	b.ResetTimer()

	var lastBid int64 = 50

	b.RunParallel(func(pb *testing.PB) {
		rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
		userID := wallet()
		for pb.Next() {
			nextBid := atomic.AddInt64(&lastBid, int64(rnd.Intn(5)+1))
			_, _ = svc.PlaceBid("shared_auction_1", userID, decimal.NewFromInt(nextBid))
		}
	})
}

// Benchmark 3: GetLeadingBid - Single-Threaded (Low Contention)
func Benchmark_GetLeadingBid_SingleThreaded(b *testing.B) {
	repo := repository.NewMemoryRepo()
	wallets := ledger.NewLedger()
	svc := bidding.NewBiddingService(repo, wallets, 0)

	for i := 0; i < b.N; i++ {
		auctionID := fmt.Sprintf("auction_%d", i)
		if err := repo.AddAuction(newBenchAuction(auctionID, 50)); err != nil {
			b.Fatalf("failed to seed auction: %v", err)
		}

		for j := 0; j < 10; j++ {
			userID := fmt.Sprintf("user_%d_%d", i, j)
			wallets.CreateWallet(userID, decimal.NewFromInt(100000))
			amount := decimal.NewFromInt(int64(50 + j*10))
			_, _ = svc.PlaceBid(auctionID, userID, amount)
		}
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := svc.GetLeadingBid(fmt.Sprintf("auction_%d", i)); err != nil {
			b.Fatalf("failed to get leading bid: %v", err)
		}
	}
}

// Benchmark 4: GetLeadingBid - Concurrent (High Contention)
func Benchmark_GetLeadingBid_ConcurrentSharedAuction(b *testing.B) {
	repo := repository.NewMemoryRepo()
	wallets := ledger.NewLedger()
	svc := bidding.NewBiddingService(repo, wallets, 0)

	if err := repo.AddAuction(newBenchAuction("shared_auction_1", 50)); err != nil {
		b.Fatalf("failed to seed auction: %v", err)
	}

	for j := 0; j < 100; j++ {
		userID := fmt.Sprintf("user_%d", j)
		wallets.CreateWallet(userID, decimal.NewFromInt(100000))
		_, _ = svc.PlaceBid("shared_auction_1", userID, decimal.NewFromInt(int64(50+j)))
	}

	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := svc.GetLeadingBid("shared_auction_1"); err != nil {
				b.Fatalf("failed to get leading bid: %v", err)
			}
		}
	})
}
