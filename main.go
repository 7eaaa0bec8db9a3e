package main

import (
	"fmt"
	"os"
	"time"

	bidding "neighborbid/internal/biddingService"
	"neighborbid/internal/ledger"
	model "neighborbid/internal/models"
	"neighborbid/internal/repository"
	"neighborbid/internal/server"

	"github.com/shopspring/decimal"
)

func main() {

	repo := repository.NewMemoryRepo()
	wallets := ledger.NewLedger()

	prepopulate(repo, wallets)

	biddingSvc := bidding.NewBiddingService(repo, wallets, getLockWait())

	router := server.SetupRouter(biddingSvc)

	port := getPort()
	fmt.Printf("Starting auction server on %s...\n", port)
	if err := router.Run(port); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start server: %v\n", err)
		os.Exit(1)
	}
}

// prepopulate seeds sample auctions and wallets into the in-memory stores
func prepopulate(repo *repository.MemoryRepo, wallets *ledger.Ledger) {
	now := time.Now().UTC()
	auctions := []model.Auction{
		{
			AuctionID:   "auction1",
			Title:       "Road bike",
			Description: "Lightly used road bike",
			SellerID:    "seller1",
			StartPrice:  decimal.NewFromInt(10000),
			BidUnit:     decimal.NewFromInt(1000),
			StartTime:   now,
			EndTime:     now.Add(24 * time.Hour),
			Status:      model.AuctionActive,
		},
		{
			AuctionID:   "auction2",
			Title:       "Espresso machine",
			Description: "Dual boiler espresso machine",
			SellerID:    "seller1",
			StartPrice:  decimal.NewFromInt(20000),
			BidUnit:     decimal.NewFromInt(2000),
			StartTime:   now,
			EndTime:     now.Add(48 * time.Hour),
			Status:      model.AuctionActive,
		},
	}

	for _, a := range auctions {
		if err := repo.AddAuction(a); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to seed auction %s: %v\n", a.AuctionID, err)
			os.Exit(1)
		}
	}

	wallets.CreateWallet("seller1", decimal.Zero)
	wallets.CreateWallet("bidder1", decimal.NewFromInt(50000))
	wallets.CreateWallet("bidder2", decimal.NewFromInt(100000))
}

// getPort returns the server port from env or defaults to ":8080"
func getPort() string {
	if p := os.Getenv("PORT"); p != "" {
		return fmt.Sprintf(":%s", p)
	}
	return ":8080"
}

// getLockWait returns the lock-wait bound from env or zero for the service default
func getLockWait() time.Duration {
	if v := os.Getenv("LOCK_WAIT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		fmt.Fprintf(os.Stderr, "Ignoring invalid LOCK_WAIT %q\n", v)
	}
	return 0
}
